package adaptor

import (
	"net/http"

	"pizzeria-backend/internal/dto/request"
	"pizzeria-backend/internal/usecase"
	"pizzeria-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ReviewHandler struct {
	service usecase.ReviewService
	log     *zap.Logger
}

func NewReviewHandler(service usecase.ReviewService, log *zap.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		log:     log.With(zap.String("handler", "review")),
	}
}

// CreateReview handles POST /api/reviews (protected)
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CreateReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	review, err := h.service.CreateReview(r.Context(), userID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create review")
		return
	}

	utils.ResponseCreated(w, "success", review)
}

// CanReview handles GET /api/reviews/can?pizza_id= (protected)
func (h *ReviewHandler) CanReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	pizzaID := r.URL.Query().Get("pizza_id")
	if pizzaID == "" {
		utils.ResponseBadRequest(w, "Pizza ID is required", nil)
		return
	}

	result, err := h.service.CanReview(r.Context(), userID, pizzaID)
	if err != nil {
		handleServiceError(w, h.log, err, "check review eligibility")
		return
	}

	utils.ResponseSuccess(w, "success", result)
}

// GetPizzaReviews handles GET /api/pizzas/{id}/reviews (public)
func (h *ReviewHandler) GetPizzaReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.service.GetPizzaReviews(r.Context(), chi.URLParam(r, "id"), paginationFromQuery(r))
	if err != nil {
		handleServiceError(w, h.log, err, "get pizza reviews")
		return
	}

	utils.ResponseSuccess(w, "success", reviews)
}

// GetUserReviews handles GET /api/user/reviews (protected)
func (h *ReviewHandler) GetUserReviews(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	reviews, err := h.service.GetUserReviews(r.Context(), userID, paginationFromQuery(r))
	if err != nil {
		handleServiceError(w, h.log, err, "get user reviews")
		return
	}

	utils.ResponseSuccess(w, "success", reviews)
}

// DeleteReview handles DELETE /api/reviews/{id} (owner only)
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	if err := h.service.DeleteReview(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.log, err, "delete review")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}
