package repository

import (
	"pizzeria-backend/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	Tx     database.TxManager
	User   UserRepository
	Basket BasketRepository
	Order  OrderRepository
	Review ReviewRepository
	Pizza  PizzaRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		Tx:     database.NewTxManager(db),
		User:   NewUserRepository(db, log),
		Basket: NewBasketRepository(db, log),
		Order:  NewOrderRepository(db, log),
		Review: NewReviewRepository(db, log),
		Pizza:  NewPizzaRepository(db, log),
	}
}
