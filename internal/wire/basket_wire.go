package wire

import (
	"pizzeria-backend/internal/adaptor"
	"pizzeria-backend/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBasket(
	r chi.Router,
	basketHandler *adaptor.BasketHandler,
	verifier middleware.TokenVerifier,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(verifier, log))

		r.Get("/api/basket", basketHandler.GetBasket)
		r.Post("/api/basket/items", basketHandler.AddItem)

		// DELETE /api/basket/items/{pizzaId} - removes one occurrence
		r.Delete("/api/basket/items/{pizzaId}", basketHandler.RemoveItem)
	})
}
