package usecase

import (
	"context"
	"fmt"
	"time"

	"pizzeria-backend/internal/data/entity"
	"pizzeria-backend/internal/data/repository"
	"pizzeria-backend/internal/dto/request"
	"pizzeria-backend/internal/dto/response"
	"pizzeria-backend/pkg/apperror"
	"pizzeria-backend/pkg/metrics"
	"pizzeria-backend/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrEmptyBasket    = apperror.New(apperror.EmptyBasket, "basket is empty")
	ErrBasketNotFound = apperror.New(apperror.NotFound, "basket not found")
	ErrOrderNotFound  = apperror.New(apperror.NotFound, "order not found")
	ErrOrderChanged   = apperror.New(apperror.Conflict, "order status was changed concurrently")
)

type OrderService interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID) (*response.OrderResponse, error)
	GetUserOrders(ctx context.Context, userID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.OrderResponse], error)
	GetOrder(ctx context.Context, userID uuid.UUID, orderID string) (*response.OrderResponse, error)

	// Admin
	UpdateStatus(ctx context.Context, orderID string, req *request.UpdateOrderStatusRequest) (*response.OrderResponse, error)
}

type orderService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewOrderService(repo *repository.Repository, log *zap.Logger) OrderService {
	return &orderService{
		repo: repo,
		log:  log.With(zap.String("service", "order")),
	}
}

// PlaceOrder snapshots the basket into a PENDING order and empties the
// basket in one transaction. The basket row stays locked from the read until
// commit, so a concurrent call for the same user sees the emptied basket.
func (s *orderService) PlaceOrder(ctx context.Context, userID uuid.UUID) (resp *response.OrderResponse, err error) {
	defer func() {
		metrics.OrdersPlacedTotal.WithLabelValues(metrics.Result(err)).Inc()
	}()

	var order *entity.Order
	err = s.repo.Tx.WithTx(ctx, func(ctx context.Context) error {
		basket, err := s.repo.Basket.LockByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if basket == nil {
			return ErrBasketNotFound
		}
		if basket.IsEmpty() {
			return ErrEmptyBasket
		}

		now := time.Now()
		order = &entity.Order{
			Base: entity.Base{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			UserID:     userID,
			TotalPrice: basket.TotalPrice,
			Status:     entity.OrderStatusPending,
			Items:      make([]entity.OrderItem, len(basket.Items)),
		}
		for i, item := range basket.Items {
			order.Items[i] = entity.OrderItem{
				ID:       uuid.New(),
				OrderID:  order.ID,
				PizzaID:  item.PizzaID,
				Name:     item.Name,
				Price:    item.Price,
				Position: item.Position,
			}
		}

		if err := s.repo.Order.Create(ctx, order); err != nil {
			return err
		}
		return s.repo.Basket.Clear(ctx, basket.ID)
	})
	if err != nil {
		if _, ok := apperror.As(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("place order: %w", err)
	}

	s.log.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", userID.String()),
		zap.Int("items", len(order.Items)),
		zap.Int64("total_price", order.TotalPrice))

	out := response.OrderToResponse(order)
	return &out, nil
}

func (s *orderService) GetUserOrders(ctx context.Context, userID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.OrderResponse], error) {
	req.Normalize()

	orders, err := s.repo.Order.FindByUserID(ctx, userID, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	total, err := s.repo.Order.CountByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}

	data := make([]response.OrderResponse, 0, len(orders))
	for _, order := range orders {
		data = append(data, response.OrderToResponse(order))
	}

	return response.NewPaginatedResponse(data, req.Page, req.PerPage, total), nil
}

// GetOrder hides orders owned by other users behind NotFound.
func (s *orderService) GetOrder(ctx context.Context, userID uuid.UUID, orderID string) (*response.OrderResponse, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrOrderNotFound
	}

	out := response.OrderToResponse(order)
	return &out, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, orderID string, req *request.UpdateOrderStatusRequest) (*response.OrderResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperror.Validation(errs)
	}

	var order *entity.Order
	err := s.repo.Tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		if order, err = s.findOrder(ctx, orderID); err != nil {
			return err
		}

		next := entity.OrderStatus(req.Status)
		if !order.Status.CanTransitionTo(next) {
			return apperror.Newf(apperror.InvalidInput, "cannot change order status from %s to %s", order.Status, next)
		}
		updated, err := s.repo.Order.UpdateStatus(ctx, order.ID, order.Status, next)
		if err != nil {
			return err
		}
		if !updated {
			return ErrOrderChanged
		}
		order.Status = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Order status updated",
		zap.String("order_id", order.ID.String()),
		zap.String("status", string(order.Status)))

	out := response.OrderToResponse(order)
	return &out, nil
}

func (s *orderService) findOrder(ctx context.Context, orderID string) (*entity.Order, error) {
	id, err := uuid.Parse(orderID)
	if err != nil {
		return nil, apperror.FieldError(apperror.InvalidInput, "id", "invalid order ID")
	}

	order, err := s.repo.Order.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}
