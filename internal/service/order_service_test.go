package service

import (
	"context"
	"testing"
	"time"

	"github.com/hunter4ass/OWLD/internal/domain"
	"github.com/hunter4ass/OWLD/internal/progression"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func validCustomerInfo() domain.CustomerInfo {
	return domain.CustomerInfo{
		Name:          "Иван Петров",
		Phone:         "+7 (921) 123-45-67",
		Address:       "ул. Ленина, д. 12, кв. 5",
		PaymentMethod: domain.PaymentMethodCard,
	}
}

func seedCart(t *testing.T, cartRepo *fakeCartRepo, userID string) {
	t.Helper()

	err := cartRepo.Save(context.Background(), userID, &domain.Cart{Items: []domain.CartItem{
		{Product: domain.Product{ID: 1, Name: "Молоко", Price: 100}, Quantity: 2},
		{Product: domain.Product{ID: 2, Name: "Хлеб", Price: 50}, Quantity: 1},
	}})
	require.NoError(t, err)
}

// slowEngine never fires during a test unless delays are shortened.
func slowEngine() *progression.Engine {
	return progression.NewEngine(zap.NewNop(), progression.Delays{
		Pending:    time.Hour,
		Preparing:  time.Hour,
		Collecting: time.Hour,
		Delivering: time.Hour,
	})
}

func orderTestCatalog() *fakeCatalog {
	return &fakeCatalog{products: map[int64]domain.Product{
		1: {ID: 1, Name: "Молоко", Price: 100, Category: "dairy", InStock: true},
		2: {ID: 2, Name: "Хлеб", Price: 50, Category: "snacks", InStock: true},
	}}
}

func newOrderService(orderRepo *fakeOrderRepo, cartRepo *fakeCartRepo, engine *progression.Engine, producer *fakeProducer) OrderService {
	return NewOrderService(orderRepo, cartRepo, orderTestCatalog(), engine, producer, "order_events", zap.NewNop())
}

func TestCheckout_CreatesPendingOrderWithTotal(t *testing.T) {
	orderRepo := newFakeOrderRepo()
	cartRepo := newFakeCartRepo()
	producer := &fakeProducer{}
	engine := slowEngine()
	defer engine.StopAll()

	svc := newOrderService(orderRepo, cartRepo, engine, producer)

	seedCart(t, cartRepo, "user-1")

	order, err := svc.Checkout(context.Background(), "user-1", validCustomerInfo())
	require.NoError(t, err)

	assert.NotEmpty(t, order.ID)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, int64(250), order.Total)
	assert.Equal(t, "user-1", order.UserID)
	assert.True(t, order.EstimatedDelivery.After(order.CreatedAt))

	// The cart is consumed by checkout.
	cart, err := cartRepo.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	// Progression is scheduled for the new order.
	assert.True(t, engine.Active(order.ID))

	assert.Equal(t, []string{"OrderCreated"}, producer.eventTypes())
}

func TestCheckout_EmptyCartRejected(t *testing.T) {
	engine := slowEngine()
	defer engine.StopAll()

	svc := newOrderService(newFakeOrderRepo(), newFakeCartRepo(), engine, &fakeProducer{})

	_, err := svc.Checkout(context.Background(), "user-1", validCustomerInfo())
	assert.ErrorIs(t, err, ErrCartEmpty)
}

func TestCheckout_InvalidCustomerInfoNeverTouchesCart(t *testing.T) {
	cartRepo := newFakeCartRepo()
	engine := slowEngine()
	defer engine.StopAll()

	svc := newOrderService(newFakeOrderRepo(), cartRepo, engine, &fakeProducer{})

	seedCart(t, cartRepo, "user-1")

	info := validCustomerInfo()
	info.Phone = "12345"

	_, err := svc.Checkout(context.Background(), "user-1", info)
	require.Error(t, err)

	cart, err := cartRepo.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)
}

func TestCheckout_ProgressionPersistsAndAnnounces(t *testing.T) {
	orderRepo := newFakeOrderRepo()
	cartRepo := newFakeCartRepo()
	producer := &fakeProducer{}
	engine := progression.NewEngine(zap.NewNop(), progression.Delays{
		Pending:    10 * time.Millisecond,
		Preparing:  time.Hour,
		Collecting: time.Hour,
		Delivering: time.Hour,
	})
	defer engine.StopAll()

	svc := newOrderService(orderRepo, cartRepo, engine, producer)

	seedCart(t, cartRepo, "user-1")

	order, err := svc.Checkout(context.Background(), "user-1", validCustomerInfo())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return orderRepo.statusOf(order.ID) == domain.OrderStatusPreparing
	}, 2*time.Second, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		types := producer.eventTypes()
		return len(types) == 2 && types[1] == "OrderStatusChanged"
	}, 2*time.Second, 5*time.Millisecond)
}

func TestEditOrder_RecomputesTotal(t *testing.T) {
	orderRepo := newFakeOrderRepo()
	cartRepo := newFakeCartRepo()
	engine := slowEngine()
	defer engine.StopAll()

	svc := newOrderService(orderRepo, cartRepo, engine, &fakeProducer{})

	seedCart(t, cartRepo, "user-1")
	order, err := svc.Checkout(context.Background(), "user-1", validCustomerInfo())
	require.NoError(t, err)

	edited, err := svc.EditOrder(context.Background(), "user-1", order.ID, EditOrderInput{
		Items: []domain.CartItem{
			{Product: domain.Product{ID: 1, Name: "Молоко", Price: 100}, Quantity: 3},
			{Product: domain.Product{ID: 3, Name: "Сыр", Price: 200}, Quantity: 0}, // dropped
		},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(300), edited.Total)
	require.Len(t, edited.Items, 1)
	assert.Equal(t, int32(3), edited.Items[0].Quantity)

	stored, err := orderRepo.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(300), stored.Total)
}

func TestEditOrder_IgnoresSubmittedPrices(t *testing.T) {
	orderRepo := newFakeOrderRepo()
	cartRepo := newFakeCartRepo()
	engine := slowEngine()
	defer engine.StopAll()

	svc := newOrderService(orderRepo, cartRepo, engine, &fakeProducer{})

	seedCart(t, cartRepo, "user-1")
	order, err := svc.Checkout(context.Background(), "user-1", validCustomerInfo())
	require.NoError(t, err)

	// forged price, the catalog's price wins
	edited, err := svc.EditOrder(context.Background(), "user-1", order.ID, EditOrderInput{
		Items: []domain.CartItem{
			{Product: domain.Product{ID: 1, Name: "Молоко", Price: 1}, Quantity: 2},
		},
	})
	require.NoError(t, err)

	require.Len(t, edited.Items, 1)
	assert.Equal(t, int64(100), edited.Items[0].Price)
	assert.Equal(t, int64(200), edited.Total)
}

func TestEditOrder_UnknownProductRejected(t *testing.T) {
	orderRepo := newFakeOrderRepo()
	cartRepo := newFakeCartRepo()
	engine := slowEngine()
	defer engine.StopAll()

	svc := newOrderService(orderRepo, cartRepo, engine, &fakeProducer{})

	seedCart(t, cartRepo, "user-1")
	order, err := svc.Checkout(context.Background(), "user-1", validCustomerInfo())
	require.NoError(t, err)

	_, err = svc.EditOrder(context.Background(), "user-1", order.ID, EditOrderInput{
		Items: []domain.CartItem{
			{Product: domain.Product{ID: 999, Price: 100}, Quantity: 1},
		},
	})
	assert.Error(t, err)

	stored, err := orderRepo.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(250), stored.Total)
}

// dwellOrderRepo holds each read open long enough for a progression timer
// to fire in between.
type dwellOrderRepo struct {
	*fakeOrderRepo
	dwell time.Duration
}

func (r *dwellOrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	order, err := r.fakeOrderRepo.GetByID(ctx, id)
	time.Sleep(r.dwell)
	return order, err
}

func TestEditOrder_DoesNotRollBackAdvancedStatus(t *testing.T) {
	orderRepo := newFakeOrderRepo()
	cartRepo := newFakeCartRepo()
	producer := &fakeProducer{}
	engine := progression.NewEngine(zap.NewNop(), progression.Delays{
		Pending:    20 * time.Millisecond,
		Preparing:  time.Hour,
		Collecting: time.Hour,
		Delivering: time.Hour,
	})
	defer engine.StopAll()

	svc := NewOrderService(
		&dwellOrderRepo{fakeOrderRepo: orderRepo, dwell: 500 * time.Millisecond},
		cartRepo, orderTestCatalog(), engine, producer, "order_events", zap.NewNop(),
	)

	seedCart(t, cartRepo, "user-1")
	order, err := svc.Checkout(context.Background(), "user-1", validCustomerInfo())
	require.NoError(t, err)

	// the engine advances the order to preparing while the edit holds its
	// pending snapshot; persisting the edit must not rewind the status
	_, err = svc.EditOrder(context.Background(), "user-1", order.ID, EditOrderInput{
		Items: []domain.CartItem{
			{Product: domain.Product{ID: 1}, Quantity: 5},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusPreparing, orderRepo.statusOf(order.ID))

	stored, err := orderRepo.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(500), stored.Total)
}

func TestCheckout_StoresFormattedPhone(t *testing.T) {
	orderRepo := newFakeOrderRepo()
	cartRepo := newFakeCartRepo()
	engine := slowEngine()
	defer engine.StopAll()

	svc := newOrderService(orderRepo, cartRepo, engine, &fakeProducer{})

	seedCart(t, cartRepo, "user-1")

	info := validCustomerInfo()
	info.Phone = "89211234567"

	order, err := svc.Checkout(context.Background(), "user-1", info)
	require.NoError(t, err)
	assert.Equal(t, "+7 (921) 123-45-67", order.CustomerInfo.Phone)
}

func TestEditOrder_GateByStatus(t *testing.T) {
	orderRepo := newFakeOrderRepo()
	cartRepo := newFakeCartRepo()
	engine := slowEngine()
	defer engine.StopAll()

	svc := newOrderService(orderRepo, cartRepo, engine, &fakeProducer{})

	seedCart(t, cartRepo, "user-1")
	order, err := svc.Checkout(context.Background(), "user-1", validCustomerInfo())
	require.NoError(t, err)

	edit := EditOrderInput{CustomerInfo: func() *domain.CustomerInfo {
		info := validCustomerInfo()
		info.Address = "пр. Мира, д. 100, кв. 1"
		return &info
	}()}

	// pending and preparing accept edits
	_, err = svc.EditOrder(context.Background(), "user-1", order.ID, edit)
	require.NoError(t, err)

	require.NoError(t, orderRepo.UpdateStatus(context.Background(), order.ID, domain.OrderStatusPreparing))
	_, err = svc.EditOrder(context.Background(), "user-1", order.ID, edit)
	require.NoError(t, err)

	// delivering rejects them
	require.NoError(t, orderRepo.UpdateStatus(context.Background(), order.ID, domain.OrderStatusDelivering))
	_, err = svc.EditOrder(context.Background(), "user-1", order.ID, edit)
	assert.ErrorIs(t, err, ErrOrderNotEditable)
}

func TestEditOrder_AllItemsRemovedRejected(t *testing.T) {
	orderRepo := newFakeOrderRepo()
	cartRepo := newFakeCartRepo()
	engine := slowEngine()
	defer engine.StopAll()

	svc := newOrderService(orderRepo, cartRepo, engine, &fakeProducer{})

	seedCart(t, cartRepo, "user-1")
	order, err := svc.Checkout(context.Background(), "user-1", validCustomerInfo())
	require.NoError(t, err)

	_, err = svc.EditOrder(context.Background(), "user-1", order.ID, EditOrderInput{
		Items: []domain.CartItem{
			{Product: domain.Product{ID: 1, Price: 100}, Quantity: 0},
		},
	})
	assert.ErrorIs(t, err, ErrOrderEmpty)
}

func TestReorder_RehydratesCartAndPrefill(t *testing.T) {
	orderRepo := newFakeOrderRepo()
	cartRepo := newFakeCartRepo()
	engine := slowEngine()
	defer engine.StopAll()

	svc := newOrderService(orderRepo, cartRepo, engine, &fakeProducer{})

	seedCart(t, cartRepo, "user-1")
	order, err := svc.Checkout(context.Background(), "user-1", validCustomerInfo())
	require.NoError(t, err)

	cart, prefill, err := svc.Reorder(context.Background(), "user-1", order.ID)
	require.NoError(t, err)

	assert.Len(t, cart.Items, 2)
	assert.Equal(t, int64(250), cart.TotalPrice())
	assert.Equal(t, order.CustomerInfo, *prefill)

	stored, err := cartRepo.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, cart.Items, stored.Items)
}

func TestGetOrder_HiddenFromOtherUsers(t *testing.T) {
	orderRepo := newFakeOrderRepo()
	cartRepo := newFakeCartRepo()
	engine := slowEngine()
	defer engine.StopAll()

	svc := newOrderService(orderRepo, cartRepo, engine, &fakeProducer{})

	seedCart(t, cartRepo, "user-1")
	order, err := svc.Checkout(context.Background(), "user-1", validCustomerInfo())
	require.NoError(t, err)

	_, err = svc.GetOrder(context.Background(), "user-2", order.ID)
	assert.Error(t, err)
}

func TestEndSession_StopsProgressionAndClearsCart(t *testing.T) {
	orderRepo := newFakeOrderRepo()
	cartRepo := newFakeCartRepo()
	engine := slowEngine()

	svc := newOrderService(orderRepo, cartRepo, engine, &fakeProducer{})

	seedCart(t, cartRepo, "user-1")
	order, err := svc.Checkout(context.Background(), "user-1", validCustomerInfo())
	require.NoError(t, err)
	require.True(t, engine.Active(order.ID))

	seedCart(t, cartRepo, "user-1")

	require.NoError(t, svc.EndSession(context.Background(), "user-1"))

	assert.False(t, engine.Active(order.ID))

	cart, err := cartRepo.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestResumeProgressions_SkipsDelivered(t *testing.T) {
	orderRepo := newFakeOrderRepo()
	engine := slowEngine()
	defer engine.StopAll()

	svc := newOrderService(orderRepo, newFakeCartRepo(), engine, &fakeProducer{})

	require.NoError(t, orderRepo.Create(context.Background(), &domain.Order{
		ID: "active", UserID: "user-1", Status: domain.OrderStatusCollecting,
	}))
	require.NoError(t, orderRepo.Create(context.Background(), &domain.Order{
		ID: "done", UserID: "user-1", Status: domain.OrderStatusDelivered,
	}))

	require.NoError(t, svc.ResumeProgressions(context.Background()))

	assert.True(t, engine.Active("active"))
	assert.False(t, engine.Active("done"))
}

func TestTrack_RestartsOnlyUnfinishedOrders(t *testing.T) {
	orderRepo := newFakeOrderRepo()
	engine := slowEngine()
	defer engine.StopAll()

	svc := newOrderService(orderRepo, newFakeCartRepo(), engine, &fakeProducer{})

	require.NoError(t, orderRepo.Create(context.Background(), &domain.Order{
		ID: "o-1", UserID: "user-1", Status: domain.OrderStatusDelivering,
	}))
	require.NoError(t, orderRepo.Create(context.Background(), &domain.Order{
		ID: "o-2", UserID: "user-1", Status: domain.OrderStatusDelivered,
	}))

	_, err := svc.Track(context.Background(), "user-1", "o-1")
	require.NoError(t, err)
	assert.True(t, engine.Active("o-1"))

	_, err = svc.Track(context.Background(), "user-1", "o-2")
	require.NoError(t, err)
	assert.False(t, engine.Active("o-2"))
}

func TestOrderStatus_View(t *testing.T) {
	orderRepo := newFakeOrderRepo()
	engine := slowEngine()
	defer engine.StopAll()

	svc := newOrderService(orderRepo, newFakeCartRepo(), engine, &fakeProducer{})

	require.NoError(t, orderRepo.Create(context.Background(), &domain.Order{
		ID:                "o-1",
		UserID:            "user-1",
		Status:            domain.OrderStatusDelivering,
		EstimatedDelivery: time.Now().Add(30 * time.Minute),
	}))

	view, err := svc.OrderStatus(context.Background(), "user-1", "o-1")
	require.NoError(t, err)

	assert.Equal(t, 75, view.Info.Progress)
	assert.Equal(t, "В пути", view.Info.Title)
	assert.NotEmpty(t, view.EstimatedTime)
	assert.NotEqual(t, "Скоро", view.EstimatedTime)
}
