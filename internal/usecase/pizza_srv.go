package usecase

import (
	"context"
	"fmt"
	"strings"

	"pizzeria-backend/internal/data/repository"
	"pizzeria-backend/internal/dto/request"
	"pizzeria-backend/internal/dto/response"
	"pizzeria-backend/pkg/apperror"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PizzaService interface {
	GetPizzas(ctx context.Context, req *request.PaginatedRequest, search string) (*response.PaginatedResponse[response.PizzaResponse], error)
	GetPizza(ctx context.Context, pizzaID string) (*response.PizzaResponse, error)
}

type pizzaService struct {
	pizzaRepo repository.PizzaRepository
	log       *zap.Logger
}

func NewPizzaService(pizzaRepo repository.PizzaRepository, log *zap.Logger) PizzaService {
	return &pizzaService{
		pizzaRepo: pizzaRepo,
		log:       log.With(zap.String("service", "pizza")),
	}
}

func (s *pizzaService) GetPizzas(ctx context.Context, req *request.PaginatedRequest, search string) (*response.PaginatedResponse[response.PizzaResponse], error) {
	req.Normalize()

	var filter *string
	if search = strings.TrimSpace(search); search != "" {
		filter = &search
	}

	pizzas, err := s.pizzaRepo.FindAll(ctx, req.Limit(), req.Offset(), filter)
	if err != nil {
		return nil, fmt.Errorf("list pizzas: %w", err)
	}

	total, err := s.pizzaRepo.CountAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count pizzas: %w", err)
	}

	data := make([]response.PizzaResponse, 0, len(pizzas))
	for _, pizza := range pizzas {
		data = append(data, response.PizzaToResponse(pizza))
	}

	return response.NewPaginatedResponse(data, req.Page, req.PerPage, total), nil
}

func (s *pizzaService) GetPizza(ctx context.Context, pizzaID string) (*response.PizzaResponse, error) {
	id, err := uuid.Parse(pizzaID)
	if err != nil {
		return nil, apperror.FieldError(apperror.InvalidInput, "id", "invalid pizza ID")
	}

	pizza, err := s.pizzaRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find pizza: %w", err)
	}
	if pizza == nil {
		return nil, ErrPizzaNotFound
	}

	resp := response.PizzaToResponse(pizza)
	return &resp, nil
}
