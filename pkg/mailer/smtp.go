// Package mailer delivers account emails over SMTP.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"pizzeria-backend/pkg/utils"

	"github.com/sethvargo/go-retry"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// SMTPMailer sends verification and password reset emails through go-mail,
// retrying transient delivery failures with exponential backoff.
type SMTPMailer struct {
	cfg     utils.EmailConfig
	baseURL string
	log     *zap.Logger
	send    func(msg *mail.Msg) error
}

func NewSMTPMailer(cfg utils.EmailConfig, baseURL string, log *zap.Logger) (*SMTPMailer, error) {
	if cfg.Host == "" {
		return nil, errors.New("SMTP host is required")
	}
	if cfg.From == "" {
		return nil, errors.New("SMTP from address is required")
	}

	m := &SMTPMailer{
		cfg:     cfg,
		baseURL: baseURL,
		log:     log.With(zap.String("component", "mailer")),
	}
	m.send = m.dialAndSend
	return m, nil
}

func (m *SMTPMailer) SendVerificationEmail(ctx context.Context, to, token string) error {
	body := fmt.Sprintf("Welcome!\n\nConfirm your email address to activate your account:\n\n%s\n",
		m.VerificationLink(to, token))
	return m.deliver(ctx, to, "Confirm your email address", body)
}

func (m *SMTPMailer) SendPasswordResetEmail(ctx context.Context, to, token string) error {
	body := fmt.Sprintf("A password reset was requested for your account.\n\n%s\n\nIgnore this email if it was not you.\n",
		m.PasswordResetLink(to, token))
	return m.deliver(ctx, to, "Reset your password", body)
}

// VerificationLink points at the GET verify-email route of this service.
func (m *SMTPMailer) VerificationLink(to, token string) string {
	return withAccountQuery(m.baseURL+"/api/verify-email", to, token)
}

// PasswordResetLink points at the configured reset page, or at the GET
// password/reset route of this service when none is configured.
func (m *SMTPMailer) PasswordResetLink(to, token string) string {
	target := m.cfg.PasswordResetURL
	if target == "" {
		target = m.baseURL + "/api/password/reset"
	}
	return withAccountQuery(target, to, token)
}

func withAccountQuery(target, email, token string) string {
	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	return target + sep + "email=" + url.QueryEscape(email) + "&token=" + url.QueryEscape(token)
}

func (m *SMTPMailer) deliver(ctx context.Context, to, subject, body string) error {
	msg, err := m.buildMessage(to, subject, body)
	if err != nil {
		return err
	}

	backoff := retry.WithMaxRetries(m.cfg.MaxRetries, retry.NewExponential(500*time.Millisecond))

	attempt := 0
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := m.send(msg); err != nil {
			m.log.Warn("Email delivery attempt failed",
				zap.Error(err),
				zap.String("to", to),
				zap.Int("attempt", attempt))
			// a permanent SMTP rejection will not succeed on retry
			var sendErr *mail.SendError
			if errors.As(err, &sendErr) && !sendErr.IsTemp() {
				return err
			}
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("send %q to %s: %w", subject, to, err)
	}

	m.log.Info("Email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

func (m *SMTPMailer) buildMessage(to, subject, body string) (*mail.Msg, error) {
	msg := mail.NewMsg()

	if m.cfg.FromName != "" {
		if err := msg.FromFormat(m.cfg.FromName, m.cfg.From); err != nil {
			return nil, fmt.Errorf("setting from address: %w", err)
		}
	} else if err := msg.From(m.cfg.From); err != nil {
		return nil, fmt.Errorf("setting from address: %w", err)
	}

	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("setting to address: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	return msg, nil
}

func (m *SMTPMailer) dialAndSend(msg *mail.Msg) error {
	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
	}
	if m.cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(m.cfg.Timeout))
	}

	if m.cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		if m.cfg.Port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if m.cfg.User != "" && m.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.User),
			mail.WithPassword(m.cfg.Password),
		)
	}

	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	return client.DialAndSend(msg)
}
