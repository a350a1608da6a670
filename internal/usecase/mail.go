package usecase

import (
	"context"
	"time"

	"pizzeria-backend/pkg/metrics"

	"go.uber.org/zap"
)

const defaultMailTimeout = 30 * time.Second

// mailDispatcher sends emails off the request path. A failed delivery is
// logged as a warning and never reaches the caller.
type mailDispatcher struct {
	mailer  Mailer
	timeout time.Duration
	log     *zap.Logger
}

func newMailDispatcher(mailer Mailer, timeout time.Duration, log *zap.Logger) *mailDispatcher {
	if timeout <= 0 {
		timeout = defaultMailTimeout
	}
	return &mailDispatcher{
		mailer:  mailer,
		timeout: timeout,
		log:     log.With(zap.String("service", "mail")),
	}
}

func (d *mailDispatcher) dispatch(kind, to string, send func(ctx context.Context, m Mailer) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		err := send(ctx, d.mailer)
		metrics.EmailsTotal.WithLabelValues(kind, metrics.Result(err)).Inc()
		if err != nil {
			d.log.Warn("Email dispatch failed",
				zap.Error(err),
				zap.String("kind", kind),
				zap.String("to", to))
		}
	}()
}

func (d *mailDispatcher) verification(to, token string) {
	d.dispatch("verification", to, func(ctx context.Context, m Mailer) error {
		return m.SendVerificationEmail(ctx, to, token)
	})
}

func (d *mailDispatcher) passwordReset(to, token string) {
	d.dispatch("password_reset", to, func(ctx context.Context, m Mailer) error {
		return m.SendPasswordResetEmail(ctx, to, token)
	})
}
