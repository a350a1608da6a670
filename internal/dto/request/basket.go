package request

type AddBasketItemRequest struct {
	PizzaID string `json:"pizza_id" validate:"required,uuid"`
}
