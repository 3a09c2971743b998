package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hunter4ass/OWLD/internal/catalog"
	"github.com/hunter4ass/OWLD/internal/domain"
	"github.com/hunter4ass/OWLD/internal/progression"
	"github.com/hunter4ass/OWLD/internal/repository"
	"github.com/hunter4ass/OWLD/pkg/logging"
	"github.com/hunter4ass/OWLD/pkg/validate"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// deliveryWindow is the promised night-delivery time communicated at
// checkout.
const deliveryWindow = 45 * time.Minute

// statusPersistTimeout bounds the background write performed when the
// progression engine advances an order.
const statusPersistTimeout = 5 * time.Second

type EventProducer interface {
	ProduceMessage(ctx context.Context, topic string, message interface{}) error
}

// StatusView is the tracking payload shown on the order screen.
type StatusView struct {
	Order         *domain.Order          `json:"order"`
	Info          progression.StatusInfo `json:"info"`
	EstimatedTime string                 `json:"estimatedTime"`
}

type EditOrderInput struct {
	Items        []domain.CartItem    `json:"items"`
	CustomerInfo *domain.CustomerInfo `json:"customerInfo"`
}

type OrderService interface {
	Checkout(ctx context.Context, userID string, info domain.CustomerInfo) (*domain.Order, error)
	ListOrders(ctx context.Context, userID string) ([]domain.Order, error)
	GetOrder(ctx context.Context, userID, orderID string) (*domain.Order, error)
	OrderStatus(ctx context.Context, userID, orderID string) (*StatusView, error)
	EditOrder(ctx context.Context, userID, orderID string, input EditOrderInput) (*domain.Order, error)
	Reorder(ctx context.Context, userID, orderID string) (*domain.Cart, *domain.CustomerInfo, error)
	Track(ctx context.Context, userID, orderID string) (*domain.Order, error)
	ResumeProgressions(ctx context.Context) error
	EndSession(ctx context.Context, userID string) error
	Shutdown()
}

type orderService struct {
	orderRepo repository.OrderRepository
	cartRepo  repository.CartRepository
	catalog   catalog.Service
	engine    *progression.Engine
	producer  EventProducer
	topic     string
	logger    *zap.Logger
	tracer    trace.Tracer
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	catalogService catalog.Service,
	engine *progression.Engine,
	producer EventProducer,
	topic string,
	logger *zap.Logger,
) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		cartRepo:  cartRepo,
		catalog:   catalogService,
		engine:    engine,
		producer:  producer,
		topic:     topic,
		logger:    logger,
		tracer:    otel.Tracer("service/order"),
	}
}

func (s *orderService) Checkout(ctx context.Context, userID string, info domain.CustomerInfo) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.Checkout")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", userID),
	)

	if err := validate.OrderForm(info.Name, info.Phone, info.Address); err != nil {
		return nil, err
	}
	info.Phone = validate.FormatPhone(info.Phone)
	if info.PaymentMethod == "" {
		info.PaymentMethod = domain.PaymentMethodCash
	}

	cart, err := s.cartRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, ErrCartEmpty
	}

	now := time.Now()
	order := &domain.Order{
		ID:                uuid.New().String(),
		UserID:            userID,
		Items:             cart.Items,
		Status:            domain.OrderStatusPending,
		CreatedAt:         now,
		EstimatedDelivery: now.Add(deliveryWindow),
		CustomerInfo:      info,
	}
	order.CalculateTotal()

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err := s.cartRepo.Clear(ctx, userID); err != nil {
		logging.Warn(
			ctx,
			s.logger,
			"Failed to clear cart after checkout",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}

	s.emitEvent(ctx, "OrderCreated", &domain.OrderCreatedEvent{
		OrderID: order.ID,
		UserID:  order.UserID,
		Total:   order.Total,
	})

	s.engine.Start(*order, s.onStatusChange)

	logging.Info(
		ctx,
		s.logger,
		"Order created",
		zap.String("order_id", order.ID),
		zap.String("user_id", userID),
		zap.Int64("total", order.Total),
	)

	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListOrders")
	defer span.End()

	return s.orderRepo.ListByUser(ctx, userID)
}

func (s *orderService) GetOrder(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetOrder")
	defer span.End()

	return s.ownedOrder(ctx, userID, orderID)
}

func (s *orderService) OrderStatus(ctx context.Context, userID, orderID string) (*StatusView, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.OrderStatus")
	defer span.End()

	order, err := s.ownedOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	info, _ := progression.GetStatusInfo(order.Status)

	return &StatusView{
		Order:         order,
		Info:          info,
		EstimatedTime: progression.EstimatedTime(*order),
	}, nil
}

// EditOrder replaces items and/or delivery details of an order that has
// not started collection yet. The total is recomputed together with the
// item change, never separately.
func (s *orderService) EditOrder(ctx context.Context, userID, orderID string, input EditOrderInput) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.EditOrder")
	defer span.End()

	span.SetAttributes(
		attribute.String("order_id", orderID),
	)

	order, err := s.ownedOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	if !order.Editable() {
		return nil, ErrOrderNotEditable
	}

	if input.Items != nil {
		items := make([]domain.CartItem, 0, len(input.Items))
		for _, item := range input.Items {
			if item.Quantity <= 0 {
				continue
			}

			// submitted product data is untrusted, the catalog owns prices
			product, err := s.catalog.GetProduct(ctx, item.ID)
			if err != nil {
				return nil, err
			}

			items = append(items, domain.CartItem{Product: *product, Quantity: item.Quantity})
		}
		if len(items) == 0 {
			return nil, ErrOrderEmpty
		}
		order.Items = items
	}

	if input.CustomerInfo != nil {
		info := *input.CustomerInfo
		if err := validate.OrderForm(info.Name, info.Phone, info.Address); err != nil {
			return nil, err
		}
		info.Phone = validate.FormatPhone(info.Phone)
		if info.PaymentMethod == "" {
			info.PaymentMethod = order.CustomerInfo.PaymentMethod
		}
		order.CustomerInfo = info
	}

	order.CalculateTotal()

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	logging.Info(
		ctx,
		s.logger,
		"Order edited",
		zap.String("order_id", order.ID),
		zap.Int64("total", order.Total),
	)

	return order, nil
}

// Reorder rehydrates the user's cart from a past order and returns the
// saved delivery details for checkout prefill.
func (s *orderService) Reorder(ctx context.Context, userID, orderID string) (*domain.Cart, *domain.CustomerInfo, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.Reorder")
	defer span.End()

	order, err := s.ownedOrder(ctx, userID, orderID)
	if err != nil {
		return nil, nil, err
	}

	cart := &domain.Cart{Items: append([]domain.CartItem(nil), order.Items...)}
	if err := s.cartRepo.Save(ctx, userID, cart); err != nil {
		return nil, nil, err
	}

	info := order.CustomerInfo
	return cart, &info, nil
}

// Track restarts progression for an order being watched again. Delivered
// orders are returned as-is, nothing is rescheduled for them.
func (s *orderService) Track(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.Track")
	defer span.End()

	order, err := s.ownedOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	if !order.Status.Terminal() {
		s.engine.Start(*order, s.onStatusChange)
	}

	return order, nil
}

// ResumeProgressions restarts the lifecycle of every undelivered order,
// picking up from the persisted status. Called once on startup.
func (s *orderService) ResumeProgressions(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "OrderService.ResumeProgressions")
	defer span.End()

	orders, err := s.orderRepo.ListUnfinished(ctx)
	if err != nil {
		return fmt.Errorf("failed to list unfinished orders: %w", err)
	}

	for _, order := range orders {
		s.engine.Start(order, s.onStatusChange)
	}

	logging.Info(
		ctx,
		s.logger,
		"Resumed order progressions",
		zap.Int("count", len(orders)),
	)

	return nil
}

// EndSession clears the user's cart and stops the progression of their
// undelivered orders; the orders themselves stay in history.
func (s *orderService) EndSession(ctx context.Context, userID string) error {
	ctx, span := s.tracer.Start(ctx, "OrderService.EndSession")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", userID),
	)

	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return err
	}

	for _, order := range orders {
		if !order.Status.Terminal() {
			s.engine.Stop(order.ID)
		}
	}

	return s.cartRepo.Clear(ctx, userID)
}

// Shutdown cancels every scheduled transition. After it returns no
// callback will fire.
func (s *orderService) Shutdown() {
	s.engine.StopAll()
}

// onStatusChange persists the advanced status and announces it. There is
// no retry: a failed write leaves the order at its previous persisted
// status and the simulation moves on.
func (s *orderService) onStatusChange(order domain.Order) {
	ctx, cancel := context.WithTimeout(context.Background(), statusPersistTimeout)
	defer cancel()

	if err := s.orderRepo.UpdateStatus(ctx, order.ID, order.Status); err != nil {
		logging.Warn(
			ctx,
			s.logger,
			"Failed to persist order status",
			zap.String("order_id", order.ID),
			zap.String("status", string(order.Status)),
			zap.Error(err),
		)
	}

	s.emitEvent(ctx, "OrderStatusChanged", &domain.OrderStatusChangedEvent{
		OrderID: order.ID,
		UserID:  order.UserID,
		Status:  order.Status,
	})

	logging.Info(
		ctx,
		s.logger,
		"Order status advanced",
		zap.String("order_id", order.ID),
		zap.String("status", string(order.Status)),
	)
}

func (s *orderService) emitEvent(ctx context.Context, eventType string, payload any) {
	if s.producer == nil {
		return
	}

	envelope := map[string]any{
		"event":   eventType,
		"payload": payload,
	}

	if err := s.producer.ProduceMessage(ctx, s.topic, envelope); err != nil {
		logging.Warn(
			ctx,
			s.logger,
			"Failed to emit event",
			zap.String("event", eventType),
			zap.Error(err),
		)
	}
}

// ownedOrder loads an order and hides it from anyone but its owner.
func (s *orderService) ownedOrder(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.UserID != userID {
		return nil, repository.ErrOrderNotFound
	}

	return order, nil
}
