package mailer

import (
	"context"

	"go.uber.org/zap"
)

// LogMailer stands in when no SMTP relay is configured. It records the
// recipient only; tokens are never written to the log.
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log.With(zap.String("component", "mailer"))}
}

func (m *LogMailer) SendVerificationEmail(ctx context.Context, to, token string) error {
	m.log.Info("SMTP not configured, verification email skipped", zap.String("to", to))
	return nil
}

func (m *LogMailer) SendPasswordResetEmail(ctx context.Context, to, token string) error {
	m.log.Info("SMTP not configured, password reset email skipped", zap.String("to", to))
	return nil
}
