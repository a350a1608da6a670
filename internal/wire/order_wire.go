package wire

import (
	"pizzeria-backend/internal/adaptor"
	"pizzeria-backend/internal/data/repository"
	"pizzeria-backend/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireOrder(
	r chi.Router,
	orderHandler *adaptor.OrderHandler,
	repo *repository.Repository,
	verifier middleware.TokenVerifier,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(verifier, log))

		// POST /api/orders - checkout the current basket
		r.Post("/api/orders", orderHandler.PlaceOrder)
		r.Get("/api/orders", orderHandler.GetUserOrders)
		r.Get("/api/orders/{id}", orderHandler.GetOrder)
	})

	// ==================== ADMIN ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(verifier, log))
		r.Use(middleware.Admin(repo.User, log))

		r.Put("/api/admin/orders/{id}/status", orderHandler.UpdateStatus)
	})
}
