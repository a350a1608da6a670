package wire

import (
	"pizzeria-backend/internal/adaptor"
	"pizzeria-backend/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireReview(
	r chi.Router,
	reviewHandler *adaptor.ReviewHandler,
	verifier middleware.TokenVerifier,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	// GET /api/pizzas/{id}/reviews - View pizza reviews (public)
	r.Get("/api/pizzas/{id}/reviews", reviewHandler.GetPizzaReviews)

	// ==================== PROTECTED ROUTES (require auth) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(verifier, log))

		// POST /api/reviews - one review per user and pizza
		r.Post("/api/reviews", reviewHandler.CreateReview)

		// GET /api/reviews/can?pizza_id= - whether the caller may still review
		r.Get("/api/reviews/can", reviewHandler.CanReview)

		// GET /api/user/reviews - View user's own reviews
		r.Get("/api/user/reviews", reviewHandler.GetUserReviews)

		// DELETE /api/reviews/{id} - Delete review (owner only)
		r.Delete("/api/reviews/{id}", reviewHandler.DeleteReview)
	})
}
