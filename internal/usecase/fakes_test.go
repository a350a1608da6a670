package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"pizzeria-backend/internal/data/entity"
	"pizzeria-backend/internal/data/repository"
	"pizzeria-backend/pkg/oauth"
	"pizzeria-backend/pkg/token"
	"pizzeria-backend/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memStore backs every fake repository. txMu plays the role of the basket
// row lock: WithTx holds it for the whole callback.
type memStore struct {
	mu      sync.Mutex
	txMu    sync.Mutex
	users   map[uuid.UUID]*entity.User
	baskets map[uuid.UUID]*entity.Basket
	orders  map[uuid.UUID]*entity.Order
	reviews map[uuid.UUID]*entity.Review
	pizzas  map[uuid.UUID]*entity.Pizza
}

func newMemStore() *memStore {
	return &memStore{
		users:   map[uuid.UUID]*entity.User{},
		baskets: map[uuid.UUID]*entity.Basket{},
		orders:  map[uuid.UUID]*entity.Order{},
		reviews: map[uuid.UUID]*entity.Review{},
		pizzas:  map[uuid.UUID]*entity.Pizza{},
	}
}

func (m *memStore) repository() *repository.Repository {
	return &repository.Repository{
		Tx:     &memTx{store: m},
		User:   &memUserRepo{m},
		Basket: &memBasketRepo{m},
		Order:  &memOrderRepo{m},
		Review: &memReviewRepo{m},
		Pizza:  &memPizzaRepo{m},
	}
}

func (m *memStore) addPizza(name string, price int64) *entity.Pizza {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := &entity.Pizza{Base: entity.Base{ID: uuid.New()}, Name: name, Price: price}
	m.pizzas[p.ID] = p
	cp := *p
	return &cp
}

func (m *memStore) user(id uuid.UUID) *entity.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp
	}
	return nil
}

func (m *memStore) userByEmail(email string) *entity.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp
		}
	}
	return nil
}

func (m *memStore) countUsers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

func (m *memStore) countReviews() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.reviews)
}

func (m *memStore) setUser(u *entity.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.users[u.ID] = &cp
}

func (m *memStore) deleteBasket(userID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.baskets, userID)
}

type memTxKey struct{}

type memTx struct {
	store *memStore
}

func (t *memTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(memTxKey{}) != nil {
		return fn(ctx)
	}
	t.store.txMu.Lock()
	defer t.store.txMu.Unlock()
	return fn(context.WithValue(ctx, memTxKey{}, true))
}

// ==================== USERS ====================

type memUserRepo struct{ m *memStore }

func (r *memUserRepo) Create(_ context.Context, user *entity.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if strings.EqualFold(u.Username, user.Username) {
			return repository.ErrUsernameTaken
		}
		if strings.EqualFold(u.Email, user.Email) {
			return repository.ErrEmailRegistered
		}
	}
	cp := *user
	r.m.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) find(match func(*entity.User) bool) *entity.User {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if match(u) {
			cp := *u
			return &cp
		}
	}
	return nil
}

func (r *memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.ID == id }), nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return strings.EqualFold(u.Email, email) }), nil
}

func (r *memUserRepo) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return strings.EqualFold(u.Username, username) }), nil
}

func (r *memUserRepo) FindAll(_ context.Context, limit, offset int) ([]*entity.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var all []*entity.User
	for _, u := range r.m.users {
		cp := *u
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Username < all[j].Username })
	return page(all, limit, offset), nil
}

func (r *memUserRepo) CountAll(_ context.Context) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return int64(len(r.m.users)), nil
}

func (r *memUserRepo) Update(_ context.Context, user *entity.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for id, u := range r.m.users {
		if id == user.ID {
			continue
		}
		if strings.EqualFold(u.Username, user.Username) {
			return repository.ErrUsernameTaken
		}
		if strings.EqualFold(u.Email, user.Email) {
			return repository.ErrEmailRegistered
		}
	}
	existing, ok := r.m.users[user.ID]
	if !ok {
		return repository.ErrUserNotFound
	}
	cp := *user
	cp.PasswordHash = existing.PasswordHash
	cp.VerificationToken = existing.VerificationToken
	cp.ResetPasswordToken = existing.ResetPasswordToken
	r.m.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	delete(r.m.users, id)
	delete(r.m.baskets, id)
	for oid, o := range r.m.orders {
		if o.UserID == id {
			delete(r.m.orders, oid)
		}
	}
	for rid, rv := range r.m.reviews {
		if rv.UserID == id {
			delete(r.m.reviews, rid)
		}
	}
	return nil
}

func (r *memUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.users[id].PasswordHash = passwordHash
	return nil
}

func (r *memUserRepo) SetVerificationToken(_ context.Context, id uuid.UUID, tok string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.users[id].VerificationToken = &tok
	return nil
}

func (r *memUserRepo) ConsumeVerificationToken(_ context.Context, email, tok string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if strings.EqualFold(u.Email, email) && !u.IsEnabled &&
			u.VerificationToken != nil && *u.VerificationToken == tok {
			u.IsEnabled = true
			u.VerificationToken = nil
			return true, nil
		}
	}
	return false, nil
}

func (r *memUserRepo) SetResetToken(_ context.Context, id uuid.UUID, tok string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.users[id].ResetPasswordToken = &tok
	return nil
}

func (r *memUserRepo) ConsumeResetToken(_ context.Context, email, tok, passwordHash string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if strings.EqualFold(u.Email, email) &&
			u.ResetPasswordToken != nil && *u.ResetPasswordToken == tok {
			u.PasswordHash = passwordHash
			u.ResetPasswordToken = nil
			return true, nil
		}
	}
	return false, nil
}

// ==================== BASKETS ====================

type memBasketRepo struct{ m *memStore }

func copyBasket(b *entity.Basket) *entity.Basket {
	cp := *b
	cp.Items = append([]entity.BasketItem(nil), b.Items...)
	return &cp
}

func (r *memBasketRepo) Create(_ context.Context, basket *entity.Basket) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.users[basket.UserID]; !ok {
		return repository.ErrUserNotFound
	}
	r.m.baskets[basket.UserID] = copyBasket(basket)
	return nil
}

func (r *memBasketRepo) Ensure(_ context.Context, userID uuid.UUID) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.baskets[userID]; ok {
		return false, nil
	}
	if _, ok := r.m.users[userID]; !ok {
		return false, repository.ErrUserNotFound
	}
	r.m.baskets[userID] = &entity.Basket{Base: entity.Base{ID: uuid.New()}, UserID: userID}
	return true, nil
}

func (r *memBasketRepo) FindByUserID(_ context.Context, userID uuid.UUID) (*entity.Basket, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if b, ok := r.m.baskets[userID]; ok {
		return copyBasket(b), nil
	}
	return nil, nil
}

func (r *memBasketRepo) LockByUserID(ctx context.Context, userID uuid.UUID) (*entity.Basket, error) {
	return r.FindByUserID(ctx, userID)
}

func (r *memBasketRepo) byID(id uuid.UUID) *entity.Basket {
	for _, b := range r.m.baskets {
		if b.ID == id {
			return b
		}
	}
	return nil
}

func (r *memBasketRepo) AddItem(_ context.Context, item *entity.BasketItem) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	b := r.byID(item.BasketID)
	b.Items = append(b.Items, *item)
	b.TotalPrice += item.Price
	b.Version++
	return nil
}

func (r *memBasketRepo) RemoveItem(_ context.Context, item *entity.BasketItem) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	b := r.byID(item.BasketID)
	for i, it := range b.Items {
		if it.ID == item.ID {
			b.Items = append(b.Items[:i], b.Items[i+1:]...)
			b.TotalPrice -= it.Price
			b.Version++
			return nil
		}
	}
	return nil
}

func (r *memBasketRepo) Clear(_ context.Context, basketID uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	b := r.byID(basketID)
	b.Items = nil
	b.TotalPrice = 0
	b.Version++
	return nil
}

// ==================== ORDERS ====================

type memOrderRepo struct{ m *memStore }

func copyOrder(o *entity.Order) *entity.Order {
	cp := *o
	cp.Items = append([]entity.OrderItem(nil), o.Items...)
	return &cp
}

func (r *memOrderRepo) Create(_ context.Context, order *entity.Order) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.orders[order.ID] = copyOrder(order)
	return nil
}

func (r *memOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Order, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if o, ok := r.m.orders[id]; ok {
		return copyOrder(o), nil
	}
	return nil, nil
}

func (r *memOrderRepo) FindByUserID(_ context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Order, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*entity.Order
	for _, o := range r.m.orders {
		if o.UserID == userID {
			out = append(out, copyOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, limit, offset), nil
}

func (r *memOrderRepo) CountByUserID(_ context.Context, userID uuid.UUID) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var n int64
	for _, o := range r.m.orders {
		if o.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *memOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to entity.OrderStatus) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	o, ok := r.m.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	return true, nil
}

// ==================== REVIEWS ====================

type memReviewRepo struct{ m *memStore }

func (r *memReviewRepo) Create(_ context.Context, review *entity.Review) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, rv := range r.m.reviews {
		if rv.UserID == review.UserID && rv.PizzaID == review.PizzaID {
			return repository.ErrAlreadyReviewed
		}
	}
	cp := *review
	r.m.reviews[review.ID] = &cp
	return nil
}

func (r *memReviewRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Review, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if rv, ok := r.m.reviews[id]; ok {
		cp := *rv
		return &cp, nil
	}
	return nil, nil
}

func (r *memReviewRepo) filter(match func(*entity.Review) bool) []*entity.Review {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*entity.Review
	for _, rv := range r.m.reviews {
		if match(rv) {
			cp := *rv
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// joined fills the username and pizza name the way the list queries join them.
func (r *memReviewRepo) joined(reviews []*entity.Review) []*entity.Review {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, rv := range reviews {
		if u, ok := r.m.users[rv.UserID]; ok {
			rv.Username = u.Username
		}
		if p, ok := r.m.pizzas[rv.PizzaID]; ok {
			rv.PizzaName = p.Name
		}
	}
	return reviews
}

func (r *memReviewRepo) FindByPizzaID(_ context.Context, pizzaID uuid.UUID, limit, offset int) ([]*entity.Review, error) {
	return r.joined(page(r.filter(func(rv *entity.Review) bool { return rv.PizzaID == pizzaID }), limit, offset)), nil
}

func (r *memReviewRepo) FindByUserID(_ context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Review, error) {
	return r.joined(page(r.filter(func(rv *entity.Review) bool { return rv.UserID == userID }), limit, offset)), nil
}

func (r *memReviewRepo) ExistsByUserAndPizza(_ context.Context, userID, pizzaID uuid.UUID) (bool, error) {
	return len(r.filter(func(rv *entity.Review) bool { return rv.UserID == userID && rv.PizzaID == pizzaID })) > 0, nil
}

func (r *memReviewRepo) CountByPizzaID(_ context.Context, pizzaID uuid.UUID) (int64, error) {
	return int64(len(r.filter(func(rv *entity.Review) bool { return rv.PizzaID == pizzaID }))), nil
}

func (r *memReviewRepo) CountByUserID(_ context.Context, userID uuid.UUID) (int64, error) {
	return int64(len(r.filter(func(rv *entity.Review) bool { return rv.UserID == userID }))), nil
}

func (r *memReviewRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	delete(r.m.reviews, id)
	return nil
}

// ==================== PIZZAS ====================

type memPizzaRepo struct{ m *memStore }

func (r *memPizzaRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Pizza, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if p, ok := r.m.pizzas[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (r *memPizzaRepo) matching(search *string) []*entity.Pizza {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*entity.Pizza
	for _, p := range r.m.pizzas {
		if search == nil || strings.Contains(strings.ToLower(p.Name), strings.ToLower(*search)) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *memPizzaRepo) FindAll(_ context.Context, limit, offset int, search *string) ([]*entity.Pizza, error) {
	return page(r.matching(search), limit, offset), nil
}

func (r *memPizzaRepo) CountAll(_ context.Context, search *string) (int64, error) {
	return int64(len(r.matching(search))), nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// ==================== COLLABORATORS ====================

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }
func (plainHasher) Matches(password, hash string) bool   { return hash == "hashed:"+password }

type sentMail struct {
	kind  string
	to    string
	token string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeMailer) record(kind, to, tok string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{kind: kind, to: to, token: tok})
	return f.err
}

func (f *fakeMailer) SendVerificationEmail(_ context.Context, to, tok string) error {
	return f.record("verification", to, tok)
}

func (f *fakeMailer) SendPasswordResetEmail(_ context.Context, to, tok string) error {
	return f.record("password_reset", to, tok)
}

func (f *fakeMailer) messages() []sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMail(nil), f.sent...)
}

type fakeProvider struct {
	identity *oauth.ExternalIdentity
	err      error
}

func (f *fakeProvider) AuthCodeURL(state string) string {
	return "https://accounts.example.com/auth?state=" + state
}

func (f *fakeProvider) Exchange(_ context.Context, code string) (*oauth.ExternalIdentity, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.identity, nil
}

// ==================== ENV ====================

type testEnv struct {
	store    *memStore
	mailer   *fakeMailer
	provider *fakeProvider
	tokens   *token.Issuer
	svc      *Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tokens, err := token.NewIssuer("test-secret", "pizzeria-test")
	require.NoError(t, err)

	env := &testEnv{
		store:    newMemStore(),
		mailer:   &fakeMailer{},
		provider: &fakeProvider{},
		tokens:   tokens,
	}

	config := &utils.Config{
		JWT: utils.JWTConfig{
			AccessTTL:     time.Hour,
			RefreshTTL:    24 * time.Hour,
			RememberMeTTL: 30 * 24 * time.Hour,
			CompletionTTL: 10 * time.Minute,
		},
		Email: utils.EmailConfig{Timeout: time.Second},
	}

	env.svc = NewService(env.store.repository(), Dependencies{
		Tokens: tokens,
		Hasher: plainHasher{},
		Mailer: env.mailer,
		OAuth:  env.provider,
	}, config, zap.NewNop())

	return env
}

// seedUser stores an enabled LOCAL customer with an empty basket.
func (e *testEnv) seedUser(t *testing.T, username string) *entity.User {
	t.Helper()
	user := &entity.User{
		Base:         entity.Base{ID: uuid.New(), CreatedAt: time.Now()},
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hashed:password123",
		Role:         entity.RoleCustomer,
		IsEnabled:    true,
		Provider:     entity.ProviderLocal,
	}
	e.store.setUser(user)
	_, err := e.store.repository().Basket.Ensure(context.Background(), user.ID)
	require.NoError(t, err)
	return user
}

func nopLogger() *zap.Logger {
	return zap.NewNop()
}
