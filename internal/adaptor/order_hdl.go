package adaptor

import (
	"net/http"

	"pizzeria-backend/internal/dto/request"
	"pizzeria-backend/internal/usecase"
	"pizzeria-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type OrderHandler struct {
	service usecase.OrderService
	log     *zap.Logger
}

func NewOrderHandler(service usecase.OrderService, log *zap.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		log:     log.With(zap.String("handler", "order")),
	}
}

// PlaceOrder handles POST /api/orders (protected)
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	order, err := h.service.PlaceOrder(r.Context(), userID)
	if err != nil {
		handleServiceError(w, h.log, err, "place order")
		return
	}

	utils.ResponseCreated(w, "Order placed", order)
}

// GetUserOrders handles GET /api/orders (protected)
func (h *OrderHandler) GetUserOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	orders, err := h.service.GetUserOrders(r.Context(), userID, paginationFromQuery(r))
	if err != nil {
		handleServiceError(w, h.log, err, "get user orders")
		return
	}

	utils.ResponseSuccess(w, "success", orders)
}

// GetOrder handles GET /api/orders/{id} (protected)
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	order, err := h.service.GetOrder(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get order")
		return
	}

	utils.ResponseSuccess(w, "success", order)
}

// UpdateStatus handles PUT /api/admin/orders/{id}/status (admin)
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateOrderStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update order status")
		return
	}

	utils.ResponseSuccess(w, "success", order)
}
