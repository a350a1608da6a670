package entity

import (
	"github.com/google/uuid"
)

type Review struct {
	BaseSimple
	UserID  uuid.UUID `db:"user_id"`
	PizzaID uuid.UUID `db:"pizza_id"`
	Rating  int       `db:"rating"` // 1-5
	Comment *string   `db:"comment"`

	// Filled by list queries
	Username  string `db:"-"`
	PizzaName string `db:"-"`
}
