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

type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Review, error)
	FindByPizzaID(ctx context.Context, pizzaID uuid.UUID, limit, offset int) ([]*entity.Review, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Review, error)
	ExistsByUserAndPizza(ctx context.Context, userID, pizzaID uuid.UUID) (bool, error)
	CountByPizzaID(ctx context.Context, pizzaID uuid.UUID) (int64, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type reviewRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewReviewRepository(db database.PgxIface, log *zap.Logger) ReviewRepository {
	return &reviewRepository{
		db:  db,
		log: log.With(zap.String("repository", "review")),
	}
}

// Create inserts the review. The (user_id, pizza_id) unique constraint is
// the authoritative guard; a violation returns ErrAlreadyReviewed.
func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	query := `
		INSERT INTO reviews (id, user_id, pizza_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := database.Conn(ctx, r.db).Exec(ctx, query,
		review.ID,
		review.UserID,
		review.PizzaID,
		review.Rating,
		review.Comment,
		review.CreatedAt,
	)

	if err != nil {
		if _, ok := uniqueConstraint(err); ok {
			return ErrAlreadyReviewed
		}
		r.log.Error("Failed to create review",
			zap.Error(err),
			zap.String("user_id", review.UserID.String()),
			zap.String("pizza_id", review.PizzaID.String()),
		)
		return fmt.Errorf("create review for pizza %s by user %s: %w",
			review.PizzaID.String(), review.UserID.String(), err)
	}

	return nil
}

func scanReviews(rows pgx.Rows) ([]*entity.Review, error) {
	defer rows.Close()

	var reviews []*entity.Review
	for rows.Next() {
		var review entity.Review
		if err := rows.Scan(
			&review.ID,
			&review.UserID,
			&review.PizzaID,
			&review.Rating,
			&review.Comment,
			&review.CreatedAt,
			&review.Username,
			&review.PizzaName,
		); err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, &review)
	}

	return reviews, rows.Err()
}

func (r *reviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Review, error) {
	query := `
		SELECT id, user_id, pizza_id, rating, comment, created_at
		FROM reviews
		WHERE id = $1
	`

	var review entity.Review
	err := database.Conn(ctx, r.db).QueryRow(ctx, query, id).Scan(
		&review.ID,
		&review.UserID,
		&review.PizzaID,
		&review.Rating,
		&review.Comment,
		&review.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find review by ID",
			zap.Error(err),
			zap.String("review_id", id.String()),
		)
		return nil, fmt.Errorf("find review by ID %s: %w", id.String(), err)
	}

	return &review, nil
}

func (r *reviewRepository) FindByPizzaID(ctx context.Context, pizzaID uuid.UUID, limit, offset int) ([]*entity.Review, error) {
	query := `
		SELECT r.id, r.user_id, r.pizza_id, r.rating, r.comment, r.created_at,
		       u.username, p.name
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		JOIN pizzas p ON p.id = r.pizza_id
		WHERE r.pizza_id = $1
		ORDER BY r.created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := database.Conn(ctx, r.db).Query(ctx, query, pizzaID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find reviews by pizza ID",
			zap.Error(err),
			zap.String("pizza_id", pizzaID.String()),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find reviews by pizza ID %s: %w", pizzaID.String(), err)
	}

	reviews, err := scanReviews(rows)
	if err != nil {
		r.log.Error("Failed to scan review rows", zap.Error(err))
		return nil, err
	}
	return reviews, nil
}

func (r *reviewRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Review, error) {
	query := `
		SELECT r.id, r.user_id, r.pizza_id, r.rating, r.comment, r.created_at,
		       u.username, p.name
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		JOIN pizzas p ON p.id = r.pizza_id
		WHERE r.user_id = $1
		ORDER BY r.created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := database.Conn(ctx, r.db).Query(ctx, query, userID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find reviews by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find reviews by user ID %s: %w", userID.String(), err)
	}

	reviews, err := scanReviews(rows)
	if err != nil {
		r.log.Error("Failed to scan review rows", zap.Error(err))
		return nil, err
	}
	return reviews, nil
}

func (r *reviewRepository) ExistsByUserAndPizza(ctx context.Context, userID, pizzaID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM reviews WHERE user_id = $1 AND pizza_id = $2)`

	var exists bool
	if err := database.Conn(ctx, r.db).QueryRow(ctx, query, userID, pizzaID).Scan(&exists); err != nil {
		r.log.Error("Failed to check existing review",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.String("pizza_id", pizzaID.String()),
		)
		return false, fmt.Errorf("check review by user %s for pizza %s: %w",
			userID.String(), pizzaID.String(), err)
	}

	return exists, nil
}

func (r *reviewRepository) CountByPizzaID(ctx context.Context, pizzaID uuid.UUID) (int64, error) {
	var count int64
	err := database.Conn(ctx, r.db).QueryRow(ctx, `SELECT COUNT(*) FROM reviews WHERE pizza_id = $1`, pizzaID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count reviews by pizza ID",
			zap.Error(err),
			zap.String("pizza_id", pizzaID.String()),
		)
		return 0, fmt.Errorf("count reviews by pizza ID %s: %w", pizzaID.String(), err)
	}

	return count, nil
}

func (r *reviewRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := database.Conn(ctx, r.db).QueryRow(ctx, `SELECT COUNT(*) FROM reviews WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count reviews by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return 0, fmt.Errorf("count reviews by user ID %s: %w", userID.String(), err)
	}

	return count, nil
}

func (r *reviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := database.Conn(ctx, r.db).Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete review",
			zap.Error(err),
			zap.String("review_id", id.String()),
		)
		return fmt.Errorf("delete review %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("review %s not found", id.String())
	}

	r.log.Info("Review deleted", zap.String("review_id", id.String()))
	return nil
}
