package entity

import (
	"time"

	"github.com/google/uuid"
)

// Basket belongs to exactly one user. TotalPrice always equals the sum of
// the prices captured on its items.
type Basket struct {
	Base
	UserID     uuid.UUID    `db:"user_id"`
	TotalPrice int64        `db:"total_price"`
	Version    int64        `db:"version"`
	Items      []BasketItem `db:"-"`
}

type BasketItem struct {
	ID        uuid.UUID `db:"id"`
	BasketID  uuid.UUID `db:"basket_id"`
	PizzaID   uuid.UUID `db:"pizza_id"`
	Name      string    `db:"name"`
	Price     int64     `db:"price"`
	Position  int       `db:"position"`
	CreatedAt time.Time `db:"created_at"`
}

func (b *Basket) IsEmpty() bool {
	return len(b.Items) == 0
}

// NextPosition returns the position for a newly appended item.
func (b *Basket) NextPosition() int {
	next := 1
	for _, item := range b.Items {
		if item.Position >= next {
			next = item.Position + 1
		}
	}
	return next
}

// LastItemFor returns the most recently added item for pizzaID.
func (b *Basket) LastItemFor(pizzaID uuid.UUID) (BasketItem, bool) {
	var (
		found BasketItem
		ok    bool
	)
	for _, item := range b.Items {
		if item.PizzaID == pizzaID && (!ok || item.Position > found.Position) {
			found, ok = item, true
		}
	}
	return found, ok
}
