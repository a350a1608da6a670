package response

import (
	"time"

	"pizzeria-backend/internal/data/entity"
)

type ReviewResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	PizzaID   string    `json:"pizza_id"`
	PizzaName string    `json:"pizza_name,omitempty"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type CanReviewResponse struct {
	PizzaID   string `json:"pizza_id"`
	CanReview bool   `json:"can_review"`
}

// Helper converter
func ReviewToResponse(review *entity.Review, username, pizzaName string) ReviewResponse {
	return ReviewResponse{
		ID:        review.ID.String(),
		UserID:    review.UserID.String(),
		Username:  username,
		PizzaID:   review.PizzaID.String(),
		PizzaName: pizzaName,
		Rating:    review.Rating,
		Comment:   review.Comment,
		CreatedAt: review.CreatedAt,
	}
}
