package wire

import (
	"pizzeria-backend/internal/adaptor"
	"pizzeria-backend/pkg/middleware"
	"pizzeria-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireAuth(
	r chi.Router,
	authHandler *adaptor.AuthHandler,
	verifier middleware.TokenVerifier,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	// Credential endpoints are rate limited per IP
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitByIP(config.RateLimit.AuthRequestsPerMinute))

		r.Post("/api/register", authHandler.Register)
		r.Post("/api/login", authHandler.Login)
		r.Post("/api/refresh", authHandler.Refresh)
		r.Post("/api/resend-verification", authHandler.ResendVerification)
		r.Post("/api/password/forgot", authHandler.ForgotPassword)
		r.Post("/api/password/reset", authHandler.ResetPassword)
	})

	r.Post("/api/verify-email", authHandler.VerifyEmail)
	// GET /api/verify-email - link from the verification email
	r.Get("/api/verify-email", authHandler.VerifyEmailLink)
	// GET /api/password/reset - link from the password reset email
	r.Get("/api/password/reset", authHandler.ResetPasswordLink)

	// ==================== PROTECTED ROUTES ====================
	r.With(middleware.Authenticate(verifier, log)).Put("/api/user/password", authHandler.ChangePassword)
}
