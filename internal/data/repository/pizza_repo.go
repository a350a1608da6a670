package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pizzeria-backend/internal/data/entity"
	"pizzeria-backend/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// PizzaRepository is the read side of the catalog.
type PizzaRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Pizza, error)
	FindAll(ctx context.Context, limit, offset int, search *string) ([]*entity.Pizza, error)
	CountAll(ctx context.Context, search *string) (int64, error)
}

type pizzaRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewPizzaRepository(db database.PgxIface, log *zap.Logger) PizzaRepository {
	return &pizzaRepository{
		db:  db,
		log: log.With(zap.String("repository", "pizza")),
	}
}

func (r *pizzaRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Pizza, error) {
	query := `
		SELECT id, name, description, price, created_at, updated_at
		FROM pizzas
		WHERE id = $1
	`

	var pizza entity.Pizza
	err := database.Conn(ctx, r.db).QueryRow(ctx, query, id).Scan(
		&pizza.ID,
		&pizza.Name,
		&pizza.Description,
		&pizza.Price,
		&pizza.CreatedAt,
		&pizza.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find pizza by ID",
			zap.Error(err),
			zap.String("pizza_id", id.String()),
		)
		return nil, fmt.Errorf("find pizza by ID %s: %w", id.String(), err)
	}

	return &pizza, nil
}

// searchClause builds the optional name filter starting at placeholder $n.
func searchClause(search *string, n int) (string, []any) {
	if search == nil || strings.TrimSpace(*search) == "" {
		return "", nil
	}
	return fmt.Sprintf(" WHERE name ILIKE $%d", n), []any{"%" + strings.TrimSpace(*search) + "%"}
}

func (r *pizzaRepository) FindAll(ctx context.Context, limit, offset int, search *string) ([]*entity.Pizza, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT id, name, description, price, created_at, updated_at
		FROM pizzas`)

	where, args := searchClause(search, 1)
	queryBuilder.WriteString(where)
	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY name LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2))
	args = append(args, limit, offset)

	rows, err := database.Conn(ctx, r.db).Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		r.log.Error("Failed to list pizzas",
			zap.Error(err),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find all pizzas: %w", err)
	}
	defer rows.Close()

	var pizzas []*entity.Pizza
	for rows.Next() {
		var pizza entity.Pizza
		if err := rows.Scan(
			&pizza.ID,
			&pizza.Name,
			&pizza.Description,
			&pizza.Price,
			&pizza.CreatedAt,
			&pizza.UpdatedAt,
		); err != nil {
			r.log.Error("Failed to scan pizza row", zap.Error(err))
			return nil, fmt.Errorf("scan pizza row: %w", err)
		}
		pizzas = append(pizzas, &pizza)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pizza rows: %w", err)
	}

	return pizzas, nil
}

func (r *pizzaRepository) CountAll(ctx context.Context, search *string) (int64, error) {
	where, args := searchClause(search, 1)

	var count int64
	err := database.Conn(ctx, r.db).QueryRow(ctx, `SELECT COUNT(*) FROM pizzas`+where, args...).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count pizzas", zap.Error(err))
		return 0, fmt.Errorf("count pizzas: %w", err)
	}

	return count, nil
}
