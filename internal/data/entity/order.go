package entity

import (
	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// CanTransitionTo allows PENDING -> PAID and PENDING -> CANCELLED only.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s != OrderStatusPending {
		return false
	}
	return next == OrderStatusPaid || next == OrderStatusCancelled
}

// Order is an immutable snapshot of a basket. Only Status changes.
type Order struct {
	Base
	UserID     uuid.UUID   `db:"user_id"`
	TotalPrice int64       `db:"total_price"`
	Status     OrderStatus `db:"status"`
	Items      []OrderItem `db:"-"`
}

type OrderItem struct {
	ID       uuid.UUID `db:"id"`
	OrderID  uuid.UUID `db:"order_id"`
	PizzaID  uuid.UUID `db:"pizza_id"`
	Name     string    `db:"name"`
	Price    int64     `db:"price"`
	Position int       `db:"position"`
}
