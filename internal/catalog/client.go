// Package catalog fetches the product range from a remote fakestore-schema
// API. The remote side is treated as best effort: any transport failure,
// timeout or bad status degrades to the bundled dataset instead of
// surfacing an error, so catalog unavailability is never a hard failure
// for the storefront.
package catalog

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hunter4ass/OWLD/internal/domain"
	"github.com/hunter4ass/OWLD/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// priceFactor converts the source API's dollar prices to integer roubles.
const priceFactor = 80

type Service interface {
	GetAllProducts(ctx context.Context) []domain.Product
	GetProductsByCategory(ctx context.Context, category string) []domain.Product
	GetCategories(ctx context.Context) []string
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
}

// remoteProduct is the wire shape of the upstream catalog.
type remoteProduct struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
}

type client struct {
	http   *resty.Client
	logger *zap.Logger
	tracer trace.Tracer
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) Service {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout)

	return &client{
		http:   httpClient,
		logger: logger,
		tracer: otel.Tracer("catalog/client"),
	}
}

func toProduct(api remoteProduct) domain.Product {
	return domain.Product{
		ID:          api.ID,
		Name:        api.Title,
		Price:       int64(math.Round(api.Price * priceFactor)),
		Image:       api.Image,
		Category:    api.Category,
		Description: api.Description,
		InStock:     true,
	}
}

func (c *client) GetAllProducts(ctx context.Context) []domain.Product {
	ctx, span := c.tracer.Start(ctx, "CatalogClient.GetAllProducts")
	defer span.End()

	var remote []remoteProduct
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&remote).
		Get("/products")
	if err != nil || resp.IsError() {
		c.logFallback(ctx, "products", resp, err)
		return FallbackProducts()
	}

	products := make([]domain.Product, 0, len(remote))
	for _, p := range remote {
		products = append(products, toProduct(p))
	}
	return products
}

func (c *client) GetProductsByCategory(ctx context.Context, category string) []domain.Product {
	ctx, span := c.tracer.Start(ctx, "CatalogClient.GetProductsByCategory")
	defer span.End()

	var remote []remoteProduct
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&remote).
		Get(fmt.Sprintf("/products/category/%s", category))
	if err != nil || resp.IsError() {
		c.logFallback(ctx, "products by category", resp, err)

		var filtered []domain.Product
		for _, p := range FallbackProducts() {
			if p.Category == category {
				filtered = append(filtered, p)
			}
		}
		return filtered
	}

	products := make([]domain.Product, 0, len(remote))
	for _, p := range remote {
		products = append(products, toProduct(p))
	}
	return products
}

func (c *client) GetCategories(ctx context.Context) []string {
	ctx, span := c.tracer.Start(ctx, "CatalogClient.GetCategories")
	defer span.End()

	var categories []string
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&categories).
		Get("/products/categories")
	if err != nil || resp.IsError() {
		c.logFallback(ctx, "categories", resp, err)

		seen := make(map[string]struct{})
		var unique []string
		for _, p := range FallbackProducts() {
			if _, ok := seen[p.Category]; ok {
				continue
			}
			seen[p.Category] = struct{}{}
			unique = append(unique, p.Category)
		}
		return unique
	}

	return categories
}

func (c *client) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	ctx, span := c.tracer.Start(ctx, "CatalogClient.GetProduct")
	defer span.End()

	var remote remoteProduct
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&remote).
		Get(fmt.Sprintf("/products/%d", id))
	if err != nil || resp.IsError() || remote.ID == 0 {
		c.logFallback(ctx, "product", resp, err)

		for _, p := range FallbackProducts() {
			if p.ID == id {
				return &p, nil
			}
		}
		return nil, ErrProductNotFound
	}

	product := toProduct(remote)
	return &product, nil
}

func (c *client) logFallback(ctx context.Context, what string, resp *resty.Response, err error) {
	fields := []zap.Field{zap.String("resource", what)}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	if resp != nil && resp.RawResponse != nil {
		fields = append(fields, zap.Int("status", resp.StatusCode()))
	}

	logging.Warn(ctx, c.logger, "Catalog request failed, serving bundled data", fields...)
}
