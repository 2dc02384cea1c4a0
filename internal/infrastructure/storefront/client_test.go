package storefront

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curator/backend/internal/domain/merchandising"
	"github.com/curator/backend/internal/infrastructure/config"
)

// ---------------------------------------------------------------------------
// Constructor Tests
// ---------------------------------------------------------------------------

func TestNewClient(t *testing.T) {
	t.Run("nil config returns error", func(t *testing.T) {
		_, err := NewClient(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration is required")
	})

	t.Run("missing base URL returns error", func(t *testing.T) {
		cfg := &config.StorefrontConfig{Store: "gems", AccessToken: "token"}
		_, err := NewClient(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "base URL is required")
	})

	t.Run("missing store returns error", func(t *testing.T) {
		cfg := &config.StorefrontConfig{BaseURL: "https://api.example.com", AccessToken: "token"}
		_, err := NewClient(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "store identifier is required")
	})

	t.Run("missing access token returns error", func(t *testing.T) {
		cfg := &config.StorefrontConfig{BaseURL: "https://api.example.com", Store: "gems"}
		_, err := NewClient(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "access token is required")
	})

	t.Run("valid config creates client", func(t *testing.T) {
		cfg := &config.StorefrontConfig{
			BaseURL:     "https://api.example.com/",
			Store:       "gems",
			AccessToken: "token",
			Timeout:     10 * time.Second,
			PageSize:    25,
		}
		client, err := NewClient(cfg)
		require.NoError(t, err)
		require.NotNil(t, client)
		// Trailing slash is normalized away
		assert.Equal(t, "https://api.example.com", client.baseURL)
		assert.Equal(t, 25, client.pageSize)
	})

	t.Run("defaults applied for timeout and page size", func(t *testing.T) {
		cfg := &config.StorefrontConfig{
			BaseURL:     "https://api.example.com",
			Store:       "gems",
			AccessToken: "token",
		}
		client, err := NewClient(cfg)
		require.NoError(t, err)
		assert.Equal(t, 50, client.pageSize)
		assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
	})
}

// ---------------------------------------------------------------------------
// API Operation Tests
// ---------------------------------------------------------------------------

// newTestClient points a Client at a local fake storefront
func newTestClient(t *testing.T, handler http.HandlerFunc, pageSize int) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(&config.StorefrontConfig{
		BaseURL:     server.URL,
		Store:       "gems",
		AccessToken: "test-token",
		Timeout:     5 * time.Second,
		PageSize:    pageSize,
	})
	require.NoError(t, err)
	return client
}

func TestClient_ListProductsUpdatedSince(t *testing.T) {
	since := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)

	t.Run("single short page", func(t *testing.T) {
		var gotQuery map[string]string
		var gotToken string
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotToken = r.Header.Get("X-Storefront-Access-Token")
			q := r.URL.Query()
			gotQuery = map[string]string{
				"updated_at_min": q.Get("updated_at_min"),
				"page":           q.Get("page"),
				"limit":          q.Get("limit"),
			}
			assert.Equal(t, "/stores/gems/products", r.URL.Path)
			_ = json.NewEncoder(w).Encode(productListResponse{Products: []merchandising.Product{
				{ID: 1, Title: "Round Polished Amethyst"},
				{ID: 2, Title: "Rose Quartz Beads"},
			}})
		}, 10)

		products, err := client.ListProductsUpdatedSince(context.Background(), since)
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, "test-token", gotToken)
		assert.Equal(t, "2026-08-25T10:00:00Z", gotQuery["updated_at_min"])
		assert.Equal(t, "1", gotQuery["page"])
		assert.Equal(t, "10", gotQuery["limit"])
	})

	t.Run("walks pages until a short page", func(t *testing.T) {
		var pages []string
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			page := r.URL.Query().Get("page")
			pages = append(pages, page)
			if page == "1" {
				_ = json.NewEncoder(w).Encode(productListResponse{Products: []merchandising.Product{
					{ID: 1, Title: "One"},
					{ID: 2, Title: "Two"},
				}})
				return
			}
			_ = json.NewEncoder(w).Encode(productListResponse{Products: []merchandising.Product{
				{ID: 3, Title: "Three"},
			}})
		}, 2)

		products, err := client.ListProductsUpdatedSince(context.Background(), since)
		require.NoError(t, err)
		assert.Equal(t, []string{"1", "2"}, pages)
		require.Len(t, products, 3)
		assert.Equal(t, int64(3), products[2].ID)
	})

	t.Run("empty listing returns no products", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(productListResponse{Products: []merchandising.Product{}})
		}, 10)

		products, err := client.ListProductsUpdatedSince(context.Background(), since)
		require.NoError(t, err)
		assert.Empty(t, products)
	})

	t.Run("429 returns ErrRateLimited", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}, 10)

		_, err := client.ListProductsUpdatedSince(context.Background(), since)
		require.Error(t, err)
		assert.ErrorIs(t, err, merchandising.ErrRateLimited)
	})

	t.Run("server error returns ErrRequestFailed with excerpt", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("upstream exploded"))
		}, 10)

		_, err := client.ListProductsUpdatedSince(context.Background(), since)
		require.Error(t, err)
		assert.ErrorIs(t, err, merchandising.ErrRequestFailed)
		assert.Contains(t, err.Error(), "HTTP 500")
		assert.Contains(t, err.Error(), "upstream exploded")
	})

	t.Run("unparsable body returns ErrInvalidResponse", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>not json</html>"))
		}, 10)

		_, err := client.ListProductsUpdatedSince(context.Background(), since)
		require.Error(t, err)
		assert.ErrorIs(t, err, merchandising.ErrInvalidResponse)
	})
}

func TestClient_GetProduct(t *testing.T) {
	t.Run("fetches and parses the product", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/stores/gems/products/9912345", r.URL.Path)
			_, _ = w.Write([]byte(`{"product": {
				"id": 9912345,
				"title": "Round Faceted Rose Quartz Beads 8mm",
				"variants": [{"id": 1, "sku": "RQ-8MM", "price": "12.99"}]
			}}`))
		}, 10)

		product, err := client.GetProduct(context.Background(), 9912345)
		require.NoError(t, err)
		assert.Equal(t, int64(9912345), product.ID)
		assert.Equal(t, "Round Faceted Rose Quartz Beads 8mm", product.Title)
		require.Len(t, product.Variants, 1)
		assert.Equal(t, "RQ-8MM", product.Variants[0].SKU)
		assert.True(t, product.Variants[0].Price.Equal(decimal.RequireFromString("12.99")))
	})

	t.Run("404 returns ErrProductNotFound", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}, 10)

		_, err := client.GetProduct(context.Background(), 42)
		require.Error(t, err)
		assert.ErrorIs(t, err, merchandising.ErrProductNotFound)
	})

	t.Run("429 returns ErrRateLimited", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}, 10)

		_, err := client.GetProduct(context.Background(), 42)
		require.Error(t, err)
		assert.ErrorIs(t, err, merchandising.ErrRateLimited)
	})

	t.Run("missing product field returns ErrInvalidResponse", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		}, 10)

		_, err := client.GetProduct(context.Background(), 42)
		require.Error(t, err)
		assert.ErrorIs(t, err, merchandising.ErrInvalidResponse)
	})
}

func TestClient_AddProductToCollection(t *testing.T) {
	t.Run("writes membership", func(t *testing.T) {
		var gotBody addProductRequest
		var gotMethod, gotPath, gotContentType string
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotPath = r.URL.Path
			gotContentType = r.Header.Get("Content-Type")
			data, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(data, &gotBody))
			w.WriteHeader(http.StatusCreated)
		}, 10)

		err := client.AddProductToCollection(context.Background(), 9912345, merchandising.CollectionID(77))
		require.NoError(t, err)
		assert.Equal(t, http.MethodPost, gotMethod)
		assert.Equal(t, "/stores/gems/collections/77/products", gotPath)
		assert.Equal(t, "application/json", gotContentType)
		assert.Equal(t, int64(9912345), gotBody.ProductID)
	})

	t.Run("200 is also success", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}, 10)

		err := client.AddProductToCollection(context.Background(), 1, merchandising.CollectionID(77))
		assert.NoError(t, err)
	})

	t.Run("429 returns ErrRateLimited", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}, 10)

		err := client.AddProductToCollection(context.Background(), 1, merchandising.CollectionID(77))
		require.Error(t, err)
		assert.ErrorIs(t, err, merchandising.ErrRateLimited)
		assert.Contains(t, err.Error(), "collection 77")
	})

	t.Run("422 returns ErrRequestFailed", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"errors": "product already archived"}`))
		}, 10)

		err := client.AddProductToCollection(context.Background(), 1, merchandising.CollectionID(77))
		require.Error(t, err)
		assert.ErrorIs(t, err, merchandising.ErrRequestFailed)
		assert.Contains(t, err.Error(), "HTTP 422")
		assert.Contains(t, err.Error(), "already archived")
	})

	t.Run("unreachable storefront returns ErrRequestFailed", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		client, err := NewClient(&config.StorefrontConfig{
			BaseURL:     server.URL,
			Store:       "gems",
			AccessToken: "test-token",
			Timeout:     time.Second,
		})
		require.NoError(t, err)
		server.Close() // connection refused from here on

		err = client.AddProductToCollection(context.Background(), 1, merchandising.CollectionID(77))
		require.Error(t, err)
		assert.ErrorIs(t, err, merchandising.ErrRequestFailed)
	})
}

func TestBodyExcerpt(t *testing.T) {
	t.Run("short body passes through", func(t *testing.T) {
		assert.Equal(t, "oops", bodyExcerpt([]byte("  oops\n")))
	})

	t.Run("long body is truncated", func(t *testing.T) {
		long := make([]byte, 2*bodyExcerptLimit)
		for i := range long {
			long[i] = 'x'
		}
		got := bodyExcerpt(long)
		assert.Len(t, got, bodyExcerptLimit+3)
		assert.Contains(t, got, "...")
	})

	t.Run("empty body is labeled", func(t *testing.T) {
		assert.Equal(t, "<empty body>", bodyExcerpt(nil))
	})
}
