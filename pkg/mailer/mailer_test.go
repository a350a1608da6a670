package mailer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/quotedprintable"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"pizzeria-backend/pkg/utils"
)

func newTestMailer(t *testing.T, retries uint64) *SMTPMailer {
	t.Helper()
	m, err := NewSMTPMailer(utils.EmailConfig{
		Host:       "smtp.example.com",
		Port:       587,
		From:       "orders@pizzeria.example",
		FromName:   "Pizzeria",
		MaxRetries: retries,
	}, "https://pizzeria.example", zap.NewNop())
	require.NoError(t, err)
	return m
}

// messageBody renders msg and returns its decoded text body.
func messageBody(t *testing.T, msg *mail.Msg) string {
	t.Helper()
	var buf bytes.Buffer
	_, err := msg.WriteTo(&buf)
	require.NoError(t, err)

	_, raw, found := strings.Cut(buf.String(), "\r\n\r\n")
	require.True(t, found, "message has no body")

	body, err := io.ReadAll(quotedprintable.NewReader(strings.NewReader(raw)))
	require.NoError(t, err)
	return string(body)
}

func TestVerificationEmailCarriesLink(t *testing.T) {
	m := newTestMailer(t, 0)

	var sent *mail.Msg
	m.send = func(msg *mail.Msg) error {
		sent = msg
		return nil
	}

	err := m.SendVerificationEmail(context.Background(), "anna@example.com", "abc123")
	require.NoError(t, err)
	require.NotNil(t, sent)

	body := messageBody(t, sent)
	assert.Contains(t, body, "https://pizzeria.example/api/verify-email?email=anna%40example.com&token=abc123")
	assert.Contains(t, body, "Confirm your email address")
}

func TestPasswordResetLinkTarget(t *testing.T) {
	m := newTestMailer(t, 0)
	assert.Equal(t,
		"https://pizzeria.example/api/password/reset?email=anna%40example.com&token=abc123",
		m.PasswordResetLink("anna@example.com", "abc123"))

	m.cfg.PasswordResetURL = "https://app.pizzeria.example/reset?lang=en"
	assert.Equal(t,
		"https://app.pizzeria.example/reset?lang=en&email=anna%40example.com&token=abc123",
		m.PasswordResetLink("anna@example.com", "abc123"))
}

func TestPasswordResetEmailCarriesLink(t *testing.T) {
	m := newTestMailer(t, 0)

	var sent *mail.Msg
	m.send = func(msg *mail.Msg) error {
		sent = msg
		return nil
	}

	require.NoError(t, m.SendPasswordResetEmail(context.Background(), "anna@example.com", "abc123"))
	require.NotNil(t, sent)
	assert.Contains(t, messageBody(t, sent), m.PasswordResetLink("anna@example.com", "abc123"))
}

func TestDeliverStopsOnPermanentRejection(t *testing.T) {
	m := newTestMailer(t, 3)

	calls := 0
	m.send = func(msg *mail.Msg) error {
		calls++
		return &mail.SendError{Reason: mail.ErrSMTPRcptTo}
	}

	err := m.SendPasswordResetEmail(context.Background(), "anna@example.com", "reset-token")
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDeliverRetriesTransientFailures(t *testing.T) {
	m := newTestMailer(t, 2)

	calls := 0
	m.send = func(msg *mail.Msg) error {
		calls++
		if calls < 2 {
			return errors.New("connection reset")
		}
		return nil
	}

	err := m.SendPasswordResetEmail(context.Background(), "anna@example.com", "reset-token")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestDeliverGivesUp(t *testing.T) {
	m := newTestMailer(t, 1)

	calls := 0
	m.send = func(msg *mail.Msg) error {
		calls++
		return errors.New("relay down")
	}

	err := m.SendPasswordResetEmail(context.Background(), "anna@example.com", "reset-token")
	assert.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestNewSMTPMailerRequiresHost(t *testing.T) {
	_, err := NewSMTPMailer(utils.EmailConfig{From: "a@b.c"}, "", zap.NewNop())
	assert.Error(t, err)
}

func TestLogMailerNeverLogsToken(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := NewLogMailer(zap.New(core))

	require.NoError(t, m.SendVerificationEmail(context.Background(), "anna@example.com", "secret-token"))

	require.Equal(t, 1, logs.Len())
	for _, entry := range logs.All() {
		for _, field := range entry.Context {
			assert.False(t, strings.Contains(field.String, "secret-token"))
		}
	}
}
