package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGetAllProducts_MapsRemoteSchema(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/products", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": 7, "title": "Backpack", "price": 109.95, "description": "Fits laptops", "category": "bags", "image": "https://img/1.png"}
		]`))
	}))
	defer server.Close()

	c := NewClient(server.URL, time.Second, zap.NewNop())

	products := c.GetAllProducts(context.Background())
	require.Len(t, products, 1)

	p := products[0]
	assert.Equal(t, int64(7), p.ID)
	assert.Equal(t, "Backpack", p.Name)
	assert.Equal(t, int64(8796), p.Price) // 109.95 * 80, rounded
	assert.Equal(t, "bags", p.Category)
	assert.True(t, p.InStock)
}

func TestGetAllProducts_TimeoutFallsBackToBundled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	c := NewClient(server.URL, 20*time.Millisecond, zap.NewNop())

	products := c.GetAllProducts(context.Background())
	assert.Equal(t, FallbackProducts(), products)
	assert.NotEmpty(t, products)
}

func TestGetAllProducts_ServerErrorFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewClient(server.URL, time.Second, zap.NewNop())

	products := c.GetAllProducts(context.Background())
	assert.Equal(t, FallbackProducts(), products)
}

func TestGetProductsByCategory_FallbackFilters(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", 20*time.Millisecond, zap.NewNop())

	products := c.GetProductsByCategory(context.Background(), "dairy")
	require.NotEmpty(t, products)
	for _, p := range products {
		assert.Equal(t, "dairy", p.Category)
	}
}

func TestGetCategories_FallbackIsUniqueAndStable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", 20*time.Millisecond, zap.NewNop())

	categories := c.GetCategories(context.Background())
	assert.Equal(t, []string{"fruits", "vegetables", "dairy", "snacks", "beverages"}, categories)
}

func TestGetProduct_RemoteAndFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 3, "title": "Jacket", "price": 55.99, "description": "", "category": "clothing", "image": ""}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, time.Second, zap.NewNop())

	p, err := c.GetProduct(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), p.ID)
	assert.Equal(t, int64(4479), p.Price) // 55.99 * 80, rounded

	offline := NewClient("http://127.0.0.1:1", 20*time.Millisecond, zap.NewNop())

	p, err = offline.GetProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Бананы", p.Name)

	_, err = offline.GetProduct(context.Background(), 100500)
	assert.ErrorIs(t, err, ErrProductNotFound)
}
