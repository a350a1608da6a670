package adaptor

import (
	"net/http"

	"pizzeria-backend/internal/dto/request"
	"pizzeria-backend/internal/usecase"
	"pizzeria-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type BasketHandler struct {
	service usecase.BasketService
	log     *zap.Logger
}

func NewBasketHandler(service usecase.BasketService, log *zap.Logger) *BasketHandler {
	return &BasketHandler{
		service: service,
		log:     log.With(zap.String("handler", "basket")),
	}
}

// GetBasket handles GET /api/basket (protected)
func (h *BasketHandler) GetBasket(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	basket, err := h.service.GetBasket(r.Context(), userID)
	if err != nil {
		handleServiceError(w, h.log, err, "get basket")
		return
	}

	utils.ResponseSuccess(w, "success", basket)
}

// AddItem handles POST /api/basket/items (protected)
func (h *BasketHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.AddBasketItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	basket, err := h.service.AddItem(r.Context(), userID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "add basket item")
		return
	}

	utils.ResponseSuccess(w, "success", basket)
}

// RemoveItem handles DELETE /api/basket/items/{pizzaId} (protected)
func (h *BasketHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	basket, err := h.service.RemoveItem(r.Context(), userID, chi.URLParam(r, "pizzaId"))
	if err != nil {
		handleServiceError(w, h.log, err, "remove basket item")
		return
	}

	utils.ResponseSuccess(w, "success", basket)
}
