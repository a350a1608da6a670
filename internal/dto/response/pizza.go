package response

import "pizzeria-backend/internal/data/entity"

type PizzaResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
}

func PizzaToResponse(pizza *entity.Pizza) PizzaResponse {
	return PizzaResponse{
		ID:          pizza.ID.String(),
		Name:        pizza.Name,
		Description: pizza.Description,
		Price:       pizza.Price,
	}
}
