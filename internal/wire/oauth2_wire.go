package wire

import (
	"pizzeria-backend/internal/adaptor"
	"pizzeria-backend/pkg/middleware"
	"pizzeria-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireOAuth2(
	r chi.Router,
	oauthHandler *adaptor.OAuth2Handler,
	verifier middleware.TokenVerifier,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitByIP(config.RateLimit.AuthRequestsPerMinute))

		// GET /api/oauth2/google - redirect to Google consent screen
		r.Get("/api/oauth2/google", oauthHandler.Start)

		// GET /api/oauth2/google/callback - Google redirects back here
		r.Get("/api/oauth2/google/callback", oauthHandler.Callback)
	})

	// ==================== COMPLETION TOKEN ONLY ====================
	// Session tokens are rejected here with 403
	r.With(middleware.AuthenticateCompletion(verifier, log)).
		Post("/api/oauth2/complete-profile", oauthHandler.CompleteProfile)
}
