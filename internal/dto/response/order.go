package response

import (
	"time"

	"pizzeria-backend/internal/data/entity"
)

type OrderItemResponse struct {
	PizzaID string `json:"pizza_id"`
	Name    string `json:"name"`
	Price   int64  `json:"price"`
}

type OrderResponse struct {
	ID         string              `json:"id"`
	UserID     string              `json:"user_id"`
	Items      []OrderItemResponse `json:"items"`
	TotalPrice int64               `json:"total_price"`
	Status     entity.OrderStatus  `json:"status"`
	CreatedAt  time.Time           `json:"created_at"`
}

func OrderToResponse(order *entity.Order) OrderResponse {
	items := make([]OrderItemResponse, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemResponse{
			PizzaID: item.PizzaID.String(),
			Name:    item.Name,
			Price:   item.Price,
		}
	}

	return OrderResponse{
		ID:         order.ID.String(),
		UserID:     order.UserID.String(),
		Items:      items,
		TotalPrice: order.TotalPrice,
		Status:     order.Status,
		CreatedAt:  order.CreatedAt,
	}
}
