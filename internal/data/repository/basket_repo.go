package repository

import (
	"context"
	"fmt"
	"time"

	"pizzeria-backend/internal/data/entity"
	"pizzeria-backend/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BasketRepository interface {
	Create(ctx context.Context, basket *entity.Basket) error
	Ensure(ctx context.Context, userID uuid.UUID) (bool, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Basket, error)
	LockByUserID(ctx context.Context, userID uuid.UUID) (*entity.Basket, error)
	AddItem(ctx context.Context, item *entity.BasketItem) error
	RemoveItem(ctx context.Context, item *entity.BasketItem) error
	Clear(ctx context.Context, basketID uuid.UUID) error
}

type basketRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBasketRepository(db database.PgxIface, log *zap.Logger) BasketRepository {
	return &basketRepository{
		db:  db,
		log: log.With(zap.String("repository", "basket")),
	}
}

func (r *basketRepository) Create(ctx context.Context, basket *entity.Basket) error {
	query := `
		INSERT INTO baskets (id, user_id, total_price, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := database.Conn(ctx, r.db).Exec(ctx, query,
		basket.ID,
		basket.UserID,
		basket.TotalPrice,
		basket.Version,
		basket.CreatedAt,
		basket.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create basket",
			zap.Error(err),
			zap.String("user_id", basket.UserID.String()),
		)
		return fmt.Errorf("create basket for user %s: %w", basket.UserID.String(), err)
	}

	return nil
}

// Ensure creates an empty basket for userID unless one exists. It reports
// whether a basket was created.
func (r *basketRepository) Ensure(ctx context.Context, userID uuid.UUID) (bool, error) {
	query := `
		INSERT INTO baskets (id, user_id, total_price, version, created_at, updated_at)
		VALUES ($1, $2, 0, 0, NOW(), NOW())
		ON CONFLICT (user_id) DO NOTHING
	`

	result, err := database.Conn(ctx, r.db).Exec(ctx, query, uuid.New(), userID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, ErrUserNotFound
		}
		r.log.Error("Failed to ensure basket", zap.Error(err), zap.String("user_id", userID.String()))
		return false, fmt.Errorf("ensure basket for user %s: %w", userID.String(), err)
	}

	return result.RowsAffected() == 1, nil
}

// FindByUserID reads the basket and its items in one statement so the total
// and the item list come from the same snapshot.
func (r *basketRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Basket, error) {
	return r.find(ctx, userID, "")
}

// LockByUserID loads the basket and holds a row lock until the surrounding
// transaction ends. Must be called inside TxManager.WithTx.
func (r *basketRepository) LockByUserID(ctx context.Context, userID uuid.UUID) (*entity.Basket, error) {
	return r.find(ctx, userID, " FOR UPDATE OF b")
}

func (r *basketRepository) find(ctx context.Context, userID uuid.UUID, lock string) (*entity.Basket, error) {
	query := `
		SELECT b.id, b.user_id, b.total_price, b.version, b.created_at, b.updated_at,
		       i.id, i.pizza_id, i.name, i.price, i.position, i.created_at
		FROM baskets b
		LEFT JOIN basket_items i ON i.basket_id = b.id
		WHERE b.user_id = $1
		ORDER BY i.position` + lock

	rows, err := database.Conn(ctx, r.db).Query(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to find basket",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find basket for user %s: %w", userID.String(), err)
	}
	defer rows.Close()

	var basket *entity.Basket
	for rows.Next() {
		var (
			b         entity.Basket
			itemID    *uuid.UUID
			pizzaID   *uuid.UUID
			name      *string
			price     *int64
			position  *int
			createdAt *time.Time
		)
		if err := rows.Scan(
			&b.ID,
			&b.UserID,
			&b.TotalPrice,
			&b.Version,
			&b.CreatedAt,
			&b.UpdatedAt,
			&itemID,
			&pizzaID,
			&name,
			&price,
			&position,
			&createdAt,
		); err != nil {
			r.log.Error("Failed to scan basket row", zap.Error(err), zap.String("user_id", userID.String()))
			return nil, fmt.Errorf("scan basket row: %w", err)
		}

		if basket == nil {
			b.Items = []entity.BasketItem{}
			basket = &b
		}
		// an empty basket yields one row with NULL item columns
		if itemID == nil {
			continue
		}
		basket.Items = append(basket.Items, entity.BasketItem{
			ID:        *itemID,
			BasketID:  basket.ID,
			PizzaID:   *pizzaID,
			Name:      *name,
			Price:     *price,
			Position:  *position,
			CreatedAt: *createdAt,
		})
	}

	if err := rows.Err(); err != nil {
		r.log.Error("Failed to read basket rows", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("iterate basket rows: %w", err)
	}

	return basket, nil
}

// AddItem appends the item and adds its captured price to the basket total.
func (r *basketRepository) AddItem(ctx context.Context, item *entity.BasketItem) error {
	conn := database.Conn(ctx, r.db)

	_, err := conn.Exec(ctx, `
		INSERT INTO basket_items (id, basket_id, pizza_id, name, price, position, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		item.ID,
		item.BasketID,
		item.PizzaID,
		item.Name,
		item.Price,
		item.Position,
		item.CreatedAt,
	)
	if err != nil {
		r.log.Error("Failed to insert basket item",
			zap.Error(err),
			zap.String("basket_id", item.BasketID.String()),
			zap.String("pizza_id", item.PizzaID.String()),
		)
		return fmt.Errorf("add pizza %s to basket %s: %w", item.PizzaID.String(), item.BasketID.String(), err)
	}

	return r.adjustTotal(ctx, conn, item.BasketID, item.Price)
}

// RemoveItem deletes the item and subtracts its captured price.
func (r *basketRepository) RemoveItem(ctx context.Context, item *entity.BasketItem) error {
	conn := database.Conn(ctx, r.db)

	result, err := conn.Exec(ctx, `DELETE FROM basket_items WHERE id = $1 AND basket_id = $2`, item.ID, item.BasketID)
	if err != nil {
		r.log.Error("Failed to delete basket item",
			zap.Error(err),
			zap.String("basket_id", item.BasketID.String()),
			zap.String("item_id", item.ID.String()),
		)
		return fmt.Errorf("remove item %s from basket %s: %w", item.ID.String(), item.BasketID.String(), err)
	}
	if result.RowsAffected() == 0 {
		return nil
	}

	return r.adjustTotal(ctx, conn, item.BasketID, -item.Price)
}

func (r *basketRepository) adjustTotal(ctx context.Context, conn database.Querier, basketID uuid.UUID, delta int64) error {
	query := `
		UPDATE baskets
		SET total_price = total_price + $2, version = version + 1, updated_at = NOW()
		WHERE id = $1
	`

	if _, err := conn.Exec(ctx, query, basketID, delta); err != nil {
		r.log.Error("Failed to adjust basket total",
			zap.Error(err),
			zap.String("basket_id", basketID.String()),
			zap.Int64("delta", delta),
		)
		return fmt.Errorf("adjust total of basket %s: %w", basketID.String(), err)
	}
	return nil
}

// Clear removes every item and resets the total to zero.
func (r *basketRepository) Clear(ctx context.Context, basketID uuid.UUID) error {
	conn := database.Conn(ctx, r.db)

	if _, err := conn.Exec(ctx, `DELETE FROM basket_items WHERE basket_id = $1`, basketID); err != nil {
		r.log.Error("Failed to delete basket items", zap.Error(err), zap.String("basket_id", basketID.String()))
		return fmt.Errorf("clear items of basket %s: %w", basketID.String(), err)
	}

	query := `UPDATE baskets SET total_price = 0, version = version + 1, updated_at = NOW() WHERE id = $1`
	if _, err := conn.Exec(ctx, query, basketID); err != nil {
		r.log.Error("Failed to reset basket total", zap.Error(err), zap.String("basket_id", basketID.String()))
		return fmt.Errorf("reset basket %s: %w", basketID.String(), err)
	}

	return nil
}
