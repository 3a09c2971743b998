package service

import (
	"context"
	"fmt"

	"github.com/hunter4ass/OWLD/internal/catalog"
	"github.com/hunter4ass/OWLD/internal/domain"
	"github.com/hunter4ass/OWLD/internal/repository"
	"github.com/hunter4ass/OWLD/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// CartService is the only write path to a user's cart: every mutation
// loads the record, applies the change and persists the whole cart before
// returning, so the stored and the returned state never diverge.
type CartService interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	AddItem(ctx context.Context, userID string, productID int64) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, userID string, productID int64, quantity int32) (*domain.Cart, error)
	RemoveItem(ctx context.Context, userID string, productID int64) (*domain.Cart, error)
}

type cartService struct {
	cartRepo repository.CartRepository
	catalog  catalog.Service
	logger   *zap.Logger
	tracer   trace.Tracer
}

func NewCartService(cartRepo repository.CartRepository, catalogService catalog.Service, logger *zap.Logger) CartService {
	return &cartService{
		cartRepo: cartRepo,
		catalog:  catalogService,
		logger:   logger,
		tracer:   otel.Tracer("service/cart"),
	}
}

func (s *cartService) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.GetCart")
	defer span.End()

	return s.cartRepo.Get(ctx, userID)
}

func (s *cartService) AddItem(ctx context.Context, userID string, productID int64) (*domain.Cart, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.AddItem")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.Int64("product_id", productID),
	)

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve product: %w", err)
	}

	cart, err := s.cartRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range cart.Items {
		if cart.Items[i].ID == productID {
			cart.Items[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		cart.Items = append(cart.Items, domain.CartItem{Product: *product, Quantity: 1})
	}

	if err := s.cartRepo.Save(ctx, userID, cart); err != nil {
		return nil, err
	}

	logging.Debug(
		ctx,
		s.logger,
		"Item added to cart",
		zap.String("user_id", userID),
		zap.Int64("product_id", productID),
	)

	return cart, nil
}

// UpdateQuantity sets an item's quantity; zero removes the item entirely,
// it is never retained at zero.
func (s *cartService) UpdateQuantity(ctx context.Context, userID string, productID int64, quantity int32) (*domain.Cart, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.UpdateQuantity")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.Int64("product_id", productID),
		attribute.Int("quantity", int(quantity)),
	)

	if quantity <= 0 {
		return s.RemoveItem(ctx, userID, productID)
	}

	cart, err := s.cartRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	for i := range cart.Items {
		if cart.Items[i].ID == productID {
			cart.Items[i].Quantity = quantity
			break
		}
	}

	if err := s.cartRepo.Save(ctx, userID, cart); err != nil {
		return nil, err
	}

	return cart, nil
}

func (s *cartService) RemoveItem(ctx context.Context, userID string, productID int64) (*domain.Cart, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.RemoveItem")
	defer span.End()

	cart, err := s.cartRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	filtered := cart.Items[:0]
	for _, item := range cart.Items {
		if item.ID != productID {
			filtered = append(filtered, item)
		}
	}
	cart.Items = filtered

	if err := s.cartRepo.Save(ctx, userID, cart); err != nil {
		return nil, err
	}

	return cart, nil
}
