package wire

import (
	"pizzeria-backend/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wirePizza(r chi.Router, pizzaHandler *adaptor.PizzaHandler) {
	// ==================== PUBLIC ROUTES ====================
	r.Get("/api/pizzas", pizzaHandler.GetPizzas)
	r.Get("/api/pizzas/{id}", pizzaHandler.GetPizza)
}
