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
	ErrReviewNotFound = apperror.New(apperror.NotFound, "review not found")
	ErrNotReviewOwner = apperror.New(apperror.Forbidden, "you can only delete your own reviews")
)

type ReviewService interface {
	CanReview(ctx context.Context, userID uuid.UUID, pizzaID string) (*response.CanReviewResponse, error)
	CreateReview(ctx context.Context, userID uuid.UUID, req *request.CreateReviewRequest) (*response.ReviewResponse, error)
	GetPizzaReviews(ctx context.Context, pizzaID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReviewResponse], error)
	GetUserReviews(ctx context.Context, userID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReviewResponse], error)
	DeleteReview(ctx context.Context, userID uuid.UUID, reviewID string) error
}

type reviewService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewReviewService(repo *repository.Repository, log *zap.Logger) ReviewService {
	return &reviewService{
		repo: repo,
		log:  log.With(zap.String("service", "review")),
	}
}

func (s *reviewService) CanReview(ctx context.Context, userID uuid.UUID, pizzaID string) (*response.CanReviewResponse, error) {
	pizza, err := s.findPizza(ctx, pizzaID)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.Review.ExistsByUserAndPizza(ctx, userID, pizza.ID)
	if err != nil {
		return nil, fmt.Errorf("check existing review: %w", err)
	}

	return &response.CanReviewResponse{PizzaID: pizza.ID.String(), CanReview: !exists}, nil
}

// CreateReview allows one review per user and pizza. The pre-check only
// short-circuits; the unique index decides when two submissions race.
func (s *reviewService) CreateReview(ctx context.Context, userID uuid.UUID, req *request.CreateReviewRequest) (resp *response.ReviewResponse, err error) {
	defer func() {
		metrics.ReviewsCreatedTotal.WithLabelValues(metrics.Result(err)).Inc()
	}()

	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create review validation failed", zap.Any("errors", errs))
		return nil, apperror.Validation(errs)
	}

	pizza, err := s.findPizza(ctx, req.PizzaID)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.Review.ExistsByUserAndPizza(ctx, userID, pizza.ID)
	if err != nil {
		return nil, fmt.Errorf("check existing review: %w", err)
	}
	if exists {
		return nil, repository.ErrAlreadyReviewed
	}

	review := &entity.Review{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		UserID:  userID,
		PizzaID: pizza.ID,
		Rating:  req.Rating,
		Comment: req.Comment,
	}

	if err := s.repo.Review.Create(ctx, review); err != nil {
		if apperror.IsKind(err, apperror.AlreadyExists) || apperror.IsKind(err, apperror.NotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.log.Info("Review created",
		zap.String("review_id", review.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("pizza_id", pizza.ID.String()),
		zap.Int("rating", review.Rating))

	out := response.ReviewToResponse(review, "", pizza.Name)
	return &out, nil
}

func (s *reviewService) GetPizzaReviews(ctx context.Context, pizzaID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReviewResponse], error) {
	req.Normalize()

	pizza, err := s.findPizza(ctx, pizzaID)
	if err != nil {
		return nil, err
	}

	reviews, err := s.repo.Review.FindByPizzaID(ctx, pizza.ID, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list pizza reviews: %w", err)
	}

	total, err := s.repo.Review.CountByPizzaID(ctx, pizza.ID)
	if err != nil {
		return nil, fmt.Errorf("count pizza reviews: %w", err)
	}

	data := make([]response.ReviewResponse, 0, len(reviews))
	for _, review := range reviews {
		data = append(data, response.ReviewToResponse(review, review.Username, pizza.Name))
	}

	return response.NewPaginatedResponse(data, req.Page, req.PerPage, total), nil
}

func (s *reviewService) GetUserReviews(ctx context.Context, userID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReviewResponse], error) {
	req.Normalize()

	reviews, err := s.repo.Review.FindByUserID(ctx, userID, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list user reviews: %w", err)
	}

	total, err := s.repo.Review.CountByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count user reviews: %w", err)
	}

	data := make([]response.ReviewResponse, 0, len(reviews))
	for _, review := range reviews {
		data = append(data, response.ReviewToResponse(review, review.Username, review.PizzaName))
	}

	return response.NewPaginatedResponse(data, req.Page, req.PerPage, total), nil
}

func (s *reviewService) DeleteReview(ctx context.Context, userID uuid.UUID, reviewID string) error {
	id, err := uuid.Parse(reviewID)
	if err != nil {
		return apperror.FieldError(apperror.InvalidInput, "id", "invalid review ID")
	}

	review, err := s.repo.Review.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find review: %w", err)
	}
	if review == nil {
		return ErrReviewNotFound
	}
	if review.UserID != userID {
		return ErrNotReviewOwner
	}

	if err := s.repo.Review.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	s.log.Info("Review deleted", zap.String("review_id", id.String()))
	return nil
}

func (s *reviewService) findPizza(ctx context.Context, pizzaID string) (*entity.Pizza, error) {
	id, err := uuid.Parse(pizzaID)
	if err != nil {
		return nil, apperror.FieldError(apperror.InvalidInput, "pizza_id", "invalid pizza ID")
	}

	pizza, err := s.repo.Pizza.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find pizza: %w", err)
	}
	if pizza == nil {
		return nil, ErrPizzaNotFound
	}
	return pizza, nil
}
