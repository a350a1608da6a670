package adaptor

import (
	"encoding/json"
	"net/http"

	"pizzeria-backend/internal/dto/request"
	"pizzeria-backend/internal/usecase"
	"pizzeria-backend/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Auth   *AuthHandler
	OAuth2 *OAuth2Handler
	User   *UserHandler
	Pizza  *PizzaHandler
	Basket *BasketHandler
	Order  *OrderHandler
	Review *ReviewHandler
}

func NewHandler(service *usecase.Service, config *utils.Config, log *zap.Logger) *Handler {
	return &Handler{
		Auth:   NewAuthHandler(service.Auth, log),
		OAuth2: NewOAuth2Handler(service.OAuth2, config.OAuth, log),
		User:   NewUserHandler(service.User, log),
		Pizza:  NewPizzaHandler(service.Pizza, log),
		Basket: NewBasketHandler(service.Basket, log),
		Order:  NewOrderHandler(service.Order, log),
		Review: NewReviewHandler(service.Review, log),
	}
}

// decodeJSON writes a 400 and returns false when the body is not valid JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return false
	}
	return true
}

func paginationFromQuery(r *http.Request) *request.PaginatedRequest {
	query := r.URL.Query()
	return &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}
}
