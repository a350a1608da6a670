package adaptor

import (
	"net/http"

	"pizzeria-backend/internal/usecase"
	"pizzeria-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type PizzaHandler struct {
	service usecase.PizzaService
	log     *zap.Logger
}

func NewPizzaHandler(service usecase.PizzaService, log *zap.Logger) *PizzaHandler {
	return &PizzaHandler{
		service: service,
		log:     log.With(zap.String("handler", "pizza")),
	}
}

// GetPizzas handles GET /api/pizzas?search=&page=&per_page=
func (h *PizzaHandler) GetPizzas(w http.ResponseWriter, r *http.Request) {
	pizzas, err := h.service.GetPizzas(r.Context(), paginationFromQuery(r), r.URL.Query().Get("search"))
	if err != nil {
		handleServiceError(w, h.log, err, "get pizzas")
		return
	}

	utils.ResponseSuccess(w, "success", pizzas)
}

// GetPizza handles GET /api/pizzas/{id}
func (h *PizzaHandler) GetPizza(w http.ResponseWriter, r *http.Request) {
	pizza, err := h.service.GetPizza(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get pizza")
		return
	}

	utils.ResponseSuccess(w, "success", pizza)
}
