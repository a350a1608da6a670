package wire

import (
	"pizzeria-backend/internal/adaptor"
	"pizzeria-backend/internal/data/repository"
	"pizzeria-backend/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireUser(
	r chi.Router,
	userHandler *adaptor.UserHandler,
	repo *repository.Repository,
	verifier middleware.TokenVerifier,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(verifier, log))

		r.Get("/api/user/profile", userHandler.GetProfile)
	})

	// ==================== ADMIN ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(verifier, log))
		r.Use(middleware.Admin(repo.User, log))

		r.Get("/api/admin/users", userHandler.GetAllUsers)
		r.Delete("/api/admin/users/{id}", userHandler.DeleteUser)
	})
}
