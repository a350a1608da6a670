package usecase

import (
	"context"
	"sync"
	"testing"

	"pizzeria-backend/internal/data/entity"
	"pizzeria-backend/internal/dto/request"
	"pizzeria-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fillBasket(t *testing.T, env *testEnv, userID uuid.UUID, pizzas ...*entity.Pizza) {
	t.Helper()
	for _, p := range pizzas {
		_, err := env.svc.Basket.AddItem(context.Background(), userID, &request.AddBasketItemRequest{PizzaID: p.ID.String()})
		require.NoError(t, err)
	}
}

func TestPlaceOrderSnapshotsAndClearsBasket(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "mario")
	margherita := env.store.addPizza("Margherita", 850)
	diavola := env.store.addPizza("Diavola", 1100)
	fillBasket(t, env, user.ID, margherita, diavola, margherita)

	order, err := env.svc.Order.PlaceOrder(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPending, order.Status)
	assert.Equal(t, int64(2800), order.TotalPrice)
	require.Len(t, order.Items, 3)
	assert.Equal(t, "Margherita", order.Items[0].Name)
	assert.Equal(t, "Diavola", order.Items[1].Name)

	basket, err := env.svc.Basket.GetBasket(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, basket.Items)
	assert.Zero(t, basket.TotalPrice)

	_, err = env.svc.Order.PlaceOrder(ctx, user.ID)
	assert.ErrorIs(t, err, ErrEmptyBasket)

	// later basket changes do not reach the order
	fillBasket(t, env, user.ID, diavola)
	stored, err := env.svc.Order.GetOrder(ctx, user.ID, order.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Items, 3)
	assert.Equal(t, int64(2800), stored.TotalPrice)
}

func TestPlaceOrderConcurrentCallsSerialize(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "mario")
	fillBasket(t, env, user.ID, env.store.addPizza("Margherita", 850))

	const callers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		empties   int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.svc.Order.PlaceOrder(context.Background(), user.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case apperror.IsKind(err, apperror.EmptyBasket):
				empties++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, callers-1, empties)

	orders, err := env.svc.Order.GetUserOrders(context.Background(), user.ID, &request.PaginatedRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), orders.Pagination.Total)
}

func TestPlaceOrderWithoutBasket(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "mario")
	env.store.deleteBasket(user.ID)

	_, err := env.svc.Order.PlaceOrder(context.Background(), user.ID)
	assert.ErrorIs(t, err, ErrBasketNotFound)
}

func TestGetOrderHidesOtherUsersOrders(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.seedUser(t, "mario")
	other := env.seedUser(t, "luigi")
	fillBasket(t, env, owner.ID, env.store.addPizza("Margherita", 850))

	order, err := env.svc.Order.PlaceOrder(ctx, owner.ID)
	require.NoError(t, err)

	_, err = env.svc.Order.GetOrder(ctx, other.ID, order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	_, err = env.svc.Order.GetOrder(ctx, owner.ID, "bad-id")
	assert.True(t, apperror.IsKind(err, apperror.InvalidInput))
}

func TestUpdateOrderStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "mario")
	fillBasket(t, env, user.ID, env.store.addPizza("Margherita", 850))

	order, err := env.svc.Order.PlaceOrder(ctx, user.ID)
	require.NoError(t, err)

	_, err = env.svc.Order.UpdateStatus(ctx, order.ID, &request.UpdateOrderStatusRequest{Status: "PENDING"})
	assert.True(t, apperror.IsKind(err, apperror.InvalidInput))

	paid, err := env.svc.Order.UpdateStatus(ctx, order.ID, &request.UpdateOrderStatusRequest{Status: "PAID"})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPaid, paid.Status)

	_, err = env.svc.Order.UpdateStatus(ctx, order.ID, &request.UpdateOrderStatusRequest{Status: "CANCELLED"})
	assert.True(t, apperror.IsKind(err, apperror.InvalidInput))

	_, err = env.svc.Order.UpdateStatus(ctx, uuid.NewString(), &request.UpdateOrderStatusRequest{Status: "PAID"})
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

// staleOrderRepo hands out the order as it was before another admin changed it.
type staleOrderRepo struct {
	*memOrderRepo
	stale *entity.Order
}

func (r *staleOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Order, error) {
	return copyOrder(r.stale), nil
}

func TestUpdateStatusRejectsConcurrentChange(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "mario")
	fillBasket(t, env, user.ID, env.store.addPizza("Margherita", 850))

	placed, err := env.svc.Order.PlaceOrder(ctx, user.ID)
	require.NoError(t, err)

	orderID := uuid.MustParse(placed.ID)
	orders := &memOrderRepo{env.store}
	stale, err := orders.FindByID(ctx, orderID)
	require.NoError(t, err)

	// another admin cancels the order after this one read it as PENDING
	_, err = env.svc.Order.UpdateStatus(ctx, placed.ID, &request.UpdateOrderStatusRequest{Status: "CANCELLED"})
	require.NoError(t, err)

	repo := env.store.repository()
	repo.Order = &staleOrderRepo{memOrderRepo: orders, stale: stale}
	svc := NewOrderService(repo, nopLogger())

	_, err = svc.UpdateStatus(ctx, placed.ID, &request.UpdateOrderStatusRequest{Status: "PAID"})
	assert.ErrorIs(t, err, ErrOrderChanged)
	assert.True(t, apperror.IsKind(err, apperror.Conflict))

	current, err := orders.FindByID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCancelled, current.Status)
}
