package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pizzeria-backend/internal/data/entity"
	"pizzeria-backend/internal/data/repository"
	"pizzeria-backend/internal/dto/request"
	"pizzeria-backend/internal/dto/response"
	"pizzeria-backend/pkg/apperror"
	"pizzeria-backend/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrPizzaNotFound = apperror.New(apperror.NotFound, "pizza not found")

type BasketService interface {
	GetBasket(ctx context.Context, userID uuid.UUID) (*response.BasketResponse, error)
	AddItem(ctx context.Context, userID uuid.UUID, req *request.AddBasketItemRequest) (*response.BasketResponse, error)
	// RemoveItem drops the most recently added item for pizzaID. Removing a
	// pizza that is not in the basket succeeds without changes.
	RemoveItem(ctx context.Context, userID uuid.UUID, pizzaID string) (*response.BasketResponse, error)
}

type basketService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewBasketService(repo *repository.Repository, log *zap.Logger) BasketService {
	return &basketService{
		repo: repo,
		log:  log.With(zap.String("service", "basket")),
	}
}

func (s *basketService) GetBasket(ctx context.Context, userID uuid.UUID) (*response.BasketResponse, error) {
	basket, err := s.repo.Basket.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find basket: %w", err)
	}

	if basket == nil {
		err = s.repo.Tx.WithTx(ctx, func(ctx context.Context) error {
			basket, err = s.lockBasket(ctx, userID)
			return err
		})
		if err != nil {
			return nil, err
		}
	}

	resp := response.BasketToResponse(basket)
	return &resp, nil
}

func (s *basketService) AddItem(ctx context.Context, userID uuid.UUID, req *request.AddBasketItemRequest) (*response.BasketResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperror.Validation(errs)
	}

	pizzaID, err := uuid.Parse(req.PizzaID)
	if err != nil {
		return nil, apperror.FieldError(apperror.InvalidInput, "pizza_id", "invalid pizza ID")
	}

	pizza, err := s.repo.Pizza.FindByID(ctx, pizzaID)
	if err != nil {
		return nil, fmt.Errorf("find pizza: %w", err)
	}
	if pizza == nil {
		return nil, ErrPizzaNotFound
	}

	var basket *entity.Basket
	err = s.repo.Tx.WithTx(ctx, func(ctx context.Context) error {
		locked, err := s.lockBasket(ctx, userID)
		if err != nil {
			return err
		}

		// price is captured now; later catalog changes do not touch it
		item := &entity.BasketItem{
			ID:        uuid.New(),
			BasketID:  locked.ID,
			PizzaID:   pizza.ID,
			Name:      pizza.Name,
			Price:     pizza.Price,
			Position:  locked.NextPosition(),
			CreatedAt: time.Now(),
		}
		if err := s.repo.Basket.AddItem(ctx, item); err != nil {
			return err
		}

		basket, err = s.repo.Basket.FindByUserID(ctx, userID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("add basket item: %w", err)
	}

	s.log.Debug("Basket item added",
		zap.String("user_id", userID.String()),
		zap.String("pizza_id", pizza.ID.String()),
		zap.Int64("total_price", basket.TotalPrice))

	resp := response.BasketToResponse(basket)
	return &resp, nil
}

func (s *basketService) RemoveItem(ctx context.Context, userID uuid.UUID, pizzaID string) (*response.BasketResponse, error) {
	pizzaUUID, err := uuid.Parse(pizzaID)
	if err != nil {
		return nil, apperror.FieldError(apperror.InvalidInput, "pizza_id", "invalid pizza ID")
	}

	var basket *entity.Basket
	err = s.repo.Tx.WithTx(ctx, func(ctx context.Context) error {
		locked, err := s.lockBasket(ctx, userID)
		if err != nil {
			return err
		}

		item, ok := locked.LastItemFor(pizzaUUID)
		if !ok {
			basket = locked
			return nil
		}
		if err := s.repo.Basket.RemoveItem(ctx, &item); err != nil {
			return err
		}

		basket, err = s.repo.Basket.FindByUserID(ctx, userID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("remove basket item: %w", err)
	}

	resp := response.BasketToResponse(basket)
	return &resp, nil
}

// lockBasket locks the user's basket row for the rest of the transaction,
// recreating it first if the user has none.
func (s *basketService) lockBasket(ctx context.Context, userID uuid.UUID) (*entity.Basket, error) {
	basket, err := s.repo.Basket.LockByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if basket != nil {
		return basket, nil
	}

	created, err := s.repo.Basket.Ensure(ctx, userID)
	if err != nil {
		return nil, err
	}
	if created {
		s.log.Warn("Basket was missing and has been recreated", zap.String("user_id", userID.String()))
	}

	basket, err = s.repo.Basket.LockByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if basket == nil {
		return nil, errors.New("basket missing after repair")
	}
	return basket, nil
}
