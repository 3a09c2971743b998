package service

import (
	"context"
	"sync"

	"github.com/hunter4ass/OWLD/internal/catalog"
	"github.com/hunter4ass/OWLD/internal/domain"
	"github.com/hunter4ass/OWLD/internal/identity"
	"github.com/hunter4ass/OWLD/internal/repository"
)

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[string]domain.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]domain.Order)}
}

func (r *fakeOrderRepo) Create(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = *order
	return nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return &order, nil
}

func (r *fakeOrderRepo) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Order
	for _, order := range r.orders {
		if order.UserID == userID {
			out = append(out, order)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) ListUnfinished(_ context.Context) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Order
	for _, order := range r.orders {
		if !order.Status.Terminal() {
			out = append(out, order)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, id string, status domain.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return repository.ErrOrderNotFound
	}
	order.Status = status
	r.orders[id] = order
	return nil
}

func (r *fakeOrderRepo) Update(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[order.ID]
	if !ok {
		return repository.ErrOrderNotFound
	}
	updated := *order
	updated.Status = stored.Status
	r.orders[order.ID] = updated
	return nil
}

func (r *fakeOrderRepo) statusOf(id string) domain.OrderStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.orders[id].Status
}

type fakeCartRepo struct {
	mu    sync.Mutex
	carts map[string]domain.Cart
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{carts: make(map[string]domain.Cart)}
}

func (r *fakeCartRepo) Get(_ context.Context, userID string) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cart := r.carts[userID]
	return &cart, nil
}

func (r *fakeCartRepo) Save(_ context.Context, userID string, cart *domain.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carts[userID] = *cart
	return nil
}

func (r *fakeCartRepo) Clear(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, userID)
	return nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return repository.ErrUserAlreadyExists
		}
	}
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, id string, input *domain.UpdateProfileInput) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Email != nil {
		user.Email = *input.Email
	}
	r.users[id] = user
	return &user, nil
}

type fakeIdentity struct {
	mu       sync.Mutex
	lookup   identity.Lookup
	created  []string
	updated  []string
	failNext bool
}

func (f *fakeIdentity) Create(_ context.Context, id, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		return context.DeadlineExceeded
	}
	f.created = append(f.created, id)
	return nil
}

func (f *fakeIdentity) Get(_ context.Context, _ string) identity.Lookup {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lookup
}

func (f *fakeIdentity) Update(_ context.Context, id string, _ identity.ProfileUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		return context.DeadlineExceeded
	}
	f.updated = append(f.updated, id)
	return nil
}

type fakeCatalog struct {
	products map[int64]domain.Product
}

func (f *fakeCatalog) GetAllProducts(_ context.Context) []domain.Product {
	var out []domain.Product
	for _, p := range f.products {
		out = append(out, p)
	}
	return out
}

func (f *fakeCatalog) GetProductsByCategory(_ context.Context, category string) []domain.Product {
	var out []domain.Product
	for _, p := range f.products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

func (f *fakeCatalog) GetCategories(_ context.Context) []string {
	return nil
}

func (f *fakeCatalog) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return &p, nil
}

type fakeProducer struct {
	mu     sync.Mutex
	events []map[string]any
}

func (f *fakeProducer) ProduceMessage(_ context.Context, _ string, message interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if envelope, ok := message.(map[string]any); ok {
		f.events = append(f.events, envelope)
	}
	return nil
}

func (f *fakeProducer) eventTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, e := range f.events {
		if name, ok := e["event"].(string); ok {
			out = append(out, name)
		}
	}
	return out
}
