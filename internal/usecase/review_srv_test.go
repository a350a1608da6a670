package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"pizzeria-backend/internal/data/entity"
	"pizzeria-backend/internal/data/repository"
	"pizzeria-backend/internal/dto/request"
	"pizzeria-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateReviewOncePerPizza(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "mario")
	pizza := env.store.addPizza("Margherita", 850)

	can, err := env.svc.Review.CanReview(ctx, user.ID, pizza.ID.String())
	require.NoError(t, err)
	assert.True(t, can.CanReview)

	comment := "crispy crust"
	review, err := env.svc.Review.CreateReview(ctx, user.ID, &request.CreateReviewRequest{PizzaID: pizza.ID.String(), Rating: 5, Comment: &comment})
	require.NoError(t, err)
	assert.Equal(t, 5, review.Rating)
	assert.Equal(t, "Margherita", review.PizzaName)

	can, err = env.svc.Review.CanReview(ctx, user.ID, pizza.ID.String())
	require.NoError(t, err)
	assert.False(t, can.CanReview)

	_, err = env.svc.Review.CreateReview(ctx, user.ID, &request.CreateReviewRequest{PizzaID: pizza.ID.String(), Rating: 1})
	assert.ErrorIs(t, err, repository.ErrAlreadyReviewed)
	assert.Equal(t, 1, env.store.countReviews())
}

func TestCreateReviewConcurrentSubmissions(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "mario")
	pizza := env.store.addPizza("Margherita", 850)

	const callers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.svc.Review.CreateReview(context.Background(), user.ID, &request.CreateReviewRequest{PizzaID: pizza.ID.String(), Rating: 4})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case apperror.IsKind(err, apperror.AlreadyExists):
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, callers-1, conflicts)
	assert.Equal(t, 1, env.store.countReviews())
}

func TestCreateReviewValidation(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "mario")
	pizza := env.store.addPizza("Margherita", 850)

	_, err := env.svc.Review.CreateReview(context.Background(), user.ID, &request.CreateReviewRequest{PizzaID: pizza.ID.String(), Rating: 6})
	assert.True(t, apperror.IsKind(err, apperror.InvalidInput))

	_, err = env.svc.Review.CreateReview(context.Background(), user.ID, &request.CreateReviewRequest{PizzaID: uuid.NewString(), Rating: 3})
	assert.ErrorIs(t, err, ErrPizzaNotFound)
}

func TestListAndDeleteReviews(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	mario := env.seedUser(t, "mario")
	luigi := env.seedUser(t, "luigi")
	pizza := env.store.addPizza("Margherita", 850)

	review, err := env.svc.Review.CreateReview(ctx, mario.ID, &request.CreateReviewRequest{PizzaID: pizza.ID.String(), Rating: 4})
	require.NoError(t, err)
	_, err = env.svc.Review.CreateReview(ctx, luigi.ID, &request.CreateReviewRequest{PizzaID: pizza.ID.String(), Rating: 2})
	require.NoError(t, err)

	list, err := env.svc.Review.GetPizzaReviews(ctx, pizza.ID.String(), &request.PaginatedRequest{Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.Pagination.Total)
	usernames := []string{list.Data[0].Username, list.Data[1].Username}
	assert.ElementsMatch(t, []string{"mario", "luigi"}, usernames)

	mine, err := env.svc.Review.GetUserReviews(ctx, mario.ID, &request.PaginatedRequest{})
	require.NoError(t, err)
	require.Len(t, mine.Data, 1)
	assert.Equal(t, "Margherita", mine.Data[0].PizzaName)

	err = env.svc.Review.DeleteReview(ctx, luigi.ID, review.ID)
	assert.ErrorIs(t, err, ErrNotReviewOwner)

	require.NoError(t, env.svc.Review.DeleteReview(ctx, mario.ID, review.ID))
	err = env.svc.Review.DeleteReview(ctx, mario.ID, review.ID)
	assert.ErrorIs(t, err, ErrReviewNotFound)

	can, err := env.svc.Review.CanReview(ctx, mario.ID, pizza.ID.String())
	require.NoError(t, err)
	assert.True(t, can.CanReview)
}

// unreachableUsers and unreachablePizzas fail every single-row lookup.
type unreachableUsers struct{ repository.UserRepository }

func (unreachableUsers) FindByID(context.Context, uuid.UUID) (*entity.User, error) {
	return nil, errors.New("user lookup should not run")
}

type unreachablePizzas struct{ repository.PizzaRepository }

func (unreachablePizzas) FindByID(context.Context, uuid.UUID) (*entity.Pizza, error) {
	return nil, errors.New("pizza lookup should not run")
}

func TestUserReviewsCarryNamesFromListQuery(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	mario := env.seedUser(t, "mario")
	margherita := env.store.addPizza("Margherita", 850)
	diavola := env.store.addPizza("Diavola", 1050)

	for _, p := range []*entity.Pizza{margherita, diavola} {
		_, err := env.svc.Review.CreateReview(ctx, mario.ID, &request.CreateReviewRequest{PizzaID: p.ID.String(), Rating: 4})
		require.NoError(t, err)
	}

	repo := env.store.repository()
	repo.User = unreachableUsers{repo.User}
	repo.Pizza = unreachablePizzas{repo.Pizza}
	svc := NewReviewService(repo, nopLogger())

	mine, err := svc.GetUserReviews(ctx, mario.ID, &request.PaginatedRequest{})
	require.NoError(t, err)
	require.Len(t, mine.Data, 2)

	names := []string{mine.Data[0].PizzaName, mine.Data[1].PizzaName}
	assert.ElementsMatch(t, []string{"Margherita", "Diavola"}, names)
	assert.Equal(t, "mario", mine.Data[0].Username)
	assert.Equal(t, "mario", mine.Data[1].Username)
}
