package repository

import (
	"context"
	"errors"
	"fmt"

	"pizzeria-backend/internal/data/entity"
	"pizzeria-backend/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Order, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to entity.OrderStatus) (bool, error)
}

type orderRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewOrderRepository(db database.PgxIface, log *zap.Logger) OrderRepository {
	return &orderRepository{
		db:  db,
		log: log.With(zap.String("repository", "order")),
	}
}

// Create inserts the order with all its items. Call it inside a transaction
// so a partial order is never visible.
func (r *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	conn := database.Conn(ctx, r.db)

	_, err := conn.Exec(ctx, `
		INSERT INTO orders (id, user_id, total_price, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		order.ID,
		order.UserID,
		order.TotalPrice,
		order.Status,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create order",
			zap.Error(err),
			zap.String("user_id", order.UserID.String()),
		)
		return fmt.Errorf("create order for user %s: %w", order.UserID.String(), err)
	}

	for _, item := range order.Items {
		_, err := conn.Exec(ctx, `
			INSERT INTO order_items (id, order_id, pizza_id, name, price, position)
			VALUES ($1, $2, $3, $4, $5, $6)
		`,
			item.ID,
			order.ID,
			item.PizzaID,
			item.Name,
			item.Price,
			item.Position,
		)
		if err != nil {
			r.log.Error("Failed to create order item",
				zap.Error(err),
				zap.String("order_id", order.ID.String()),
				zap.String("pizza_id", item.PizzaID.String()),
			)
			return fmt.Errorf("create item for order %s: %w", order.ID.String(), err)
		}
	}

	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	query := `
		SELECT id, user_id, total_price, status, created_at, updated_at
		FROM orders
		WHERE id = $1
	`

	conn := database.Conn(ctx, r.db)

	var order entity.Order
	err := conn.QueryRow(ctx, query, id).Scan(
		&order.ID,
		&order.UserID,
		&order.TotalPrice,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find order by ID", zap.Error(err), zap.String("order_id", id.String()))
		return nil, fmt.Errorf("find order by ID %s: %w", id.String(), err)
	}

	if order.Items, err = r.findItems(ctx, conn, order.ID); err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Order, error) {
	query := `
		SELECT id, user_id, total_price, status, created_at, updated_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	conn := database.Conn(ctx, r.db)

	rows, err := conn.Query(ctx, query, userID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find orders by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find orders by user ID %s: %w", userID.String(), err)
	}

	var orders []*entity.Order
	for rows.Next() {
		var order entity.Order
		if err := rows.Scan(
			&order.ID,
			&order.UserID,
			&order.TotalPrice,
			&order.Status,
			&order.CreatedAt,
			&order.UpdatedAt,
		); err != nil {
			rows.Close()
			r.log.Error("Failed to scan order row", zap.Error(err))
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, &order)
	}
	rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	// items are loaded after the first result set is closed; a tx
	// connection cannot run two queries at once
	for _, order := range orders {
		if order.Items, err = r.findItems(ctx, conn, order.ID); err != nil {
			return nil, err
		}
	}

	return orders, nil
}

func (r *orderRepository) findItems(ctx context.Context, conn database.Querier, orderID uuid.UUID) ([]entity.OrderItem, error) {
	query := `
		SELECT id, order_id, pizza_id, name, price, position
		FROM order_items
		WHERE order_id = $1
		ORDER BY position
	`

	rows, err := conn.Query(ctx, query, orderID)
	if err != nil {
		r.log.Error("Failed to load order items", zap.Error(err), zap.String("order_id", orderID.String()))
		return nil, fmt.Errorf("find items of order %s: %w", orderID.String(), err)
	}
	defer rows.Close()

	items := []entity.OrderItem{}
	for rows.Next() {
		var item entity.OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.PizzaID,
			&item.Name,
			&item.Price,
			&item.Position,
		); err != nil {
			r.log.Error("Failed to scan order item row", zap.Error(err))
			return nil, fmt.Errorf("scan order item row: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func (r *orderRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := database.Conn(ctx, r.db).QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count orders", zap.Error(err), zap.String("user_id", userID.String()))
		return 0, fmt.Errorf("count orders by user ID %s: %w", userID.String(), err)
	}
	return count, nil
}

// UpdateStatus moves the order from one status to another. It reports false
// when the order is no longer in the from status.
func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to entity.OrderStatus) (bool, error) {
	query := `UPDATE orders SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`

	result, err := database.Conn(ctx, r.db).Exec(ctx, query, id, from, to)
	if err != nil {
		r.log.Error("Failed to update order status",
			zap.Error(err),
			zap.String("order_id", id.String()),
			zap.String("status", string(to)),
		)
		return false, fmt.Errorf("update status of order %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return false, nil
	}

	r.log.Info("Order status updated",
		zap.String("order_id", id.String()),
		zap.String("from", string(from)),
		zap.String("status", string(to)))
	return true, nil
}
