package response

import (
	"time"

	"pizzeria-backend/internal/data/entity"
)

// Prices are in cents.
type BasketItemResponse struct {
	ID      string    `json:"id"`
	PizzaID string    `json:"pizza_id"`
	Name    string    `json:"name"`
	Price   int64     `json:"price"`
	AddedAt time.Time `json:"added_at"`
}

type BasketResponse struct {
	ID         string               `json:"id"`
	Items      []BasketItemResponse `json:"items"`
	ItemCount  int                  `json:"item_count"`
	TotalPrice int64                `json:"total_price"`
	UpdatedAt  time.Time            `json:"updated_at"`
}

func BasketToResponse(basket *entity.Basket) BasketResponse {
	items := make([]BasketItemResponse, len(basket.Items))
	for i, item := range basket.Items {
		items[i] = BasketItemResponse{
			ID:      item.ID.String(),
			PizzaID: item.PizzaID.String(),
			Name:    item.Name,
			Price:   item.Price,
			AddedAt: item.CreatedAt,
		}
	}

	return BasketResponse{
		ID:         basket.ID.String(),
		Items:      items,
		ItemCount:  len(items),
		TotalPrice: basket.TotalPrice,
		UpdatedAt:  basket.UpdatedAt,
	}
}
