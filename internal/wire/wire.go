package wire

import (
	"net/http"

	"pizzeria-backend/internal/adaptor"
	"pizzeria-backend/internal/data/repository"
	"pizzeria-backend/internal/usecase"
	"pizzeria-backend/pkg/middleware"
	"pizzeria-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// App holds the assembled HTTP router.
type App struct {
	Router *chi.Mux
}

// Wiring builds services, handlers and routes.
func Wiring(repo *repository.Repository, deps usecase.Dependencies, config *utils.Config, logger *zap.Logger) *App {
	service := usecase.NewService(repo, deps, config, logger)
	handler := adaptor.NewHandler(service, config, logger)

	router := setupRouter(handler, repo, deps.Tokens, config, logger)

	return &App{
		Router: router,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	repo *repository.Repository,
	verifier middleware.TokenVerifier,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.Metrics)
	r.Use(middleware.CORS(config.CORS.AllowedOrigins))

	wireAuth(r, handler.Auth, verifier, config, logger)
	wireOAuth2(r, handler.OAuth2, verifier, config, logger)
	wireUser(r, handler.User, repo, verifier, logger)
	wirePizza(r, handler.Pizza)
	wireBasket(r, handler.Basket, verifier, logger)
	wireOrder(r, handler.Order, repo, verifier, logger)
	wireReview(r, handler.Review, verifier, logger)

	r.Handle("/metrics", promhttp.Handler())

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
