// Package storefront implements the outbound REST client for the remote
// catalog service and the HMAC verifier for the webhooks it sends back.
package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/curator/backend/internal/domain/merchandising"
	"github.com/curator/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const (
	// maxResponseSize limits the response body size to prevent memory exhaustion
	maxResponseSize = 10 * 1024 * 1024 // 10MB max response

	// accessTokenHeader authenticates every storefront API request
	accessTokenHeader = "X-Storefront-Access-Token"

	// bodyExcerptLimit caps how much of an error response lands in error text
	bodyExcerptLimit = 200
)

// Ensure Client implements StorefrontGateway
var _ merchandising.StorefrontGateway = (*Client)(nil)

// Client is the REST client for the storefront catalog API.
type Client struct {
	baseURL    string
	store      string
	token      string
	pageSize   int
	httpClient *http.Client
	logger     *zap.Logger
}

// ClientOption is a functional option for configuring Client
type ClientOption func(*Client)

// WithLogger sets a custom logger for Client
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a storefront API client from configuration
func NewClient(cfg *config.StorefrontConfig, opts ...ClientOption) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("storefront configuration is required")
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("storefront base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid storefront base URL: %w", err)
	}
	if cfg.Store == "" {
		return nil, errors.New("storefront store identifier is required")
	}
	if cfg.AccessToken == "" {
		return nil, errors.New("storefront access token is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	client := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		store:      cfg.Store,
		token:      cfg.AccessToken,
		pageSize:   pageSize,
		httpClient: &http.Client{Timeout: timeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// productListResponse is the paged listing envelope
type productListResponse struct {
	Products []merchandising.Product `json:"products"`
}

// productResponse is the single-product envelope
type productResponse struct {
	Product *merchandising.Product `json:"product"`
}

// addProductRequest is the collection membership write payload
type addProductRequest struct {
	ProductID int64 `json:"product_id"`
}

// ListProductsUpdatedSince fetches every product created or updated at or
// after the floor, walking pages until a short page. A 429 from any page
// returns ErrRateLimited; the caller decides whether to restart the query.
func (c *Client) ListProductsUpdatedSince(ctx context.Context, since time.Time) ([]merchandising.Product, error) {
	var all []merchandising.Product
	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("updated_at_min", since.UTC().Format(time.RFC3339))
		q.Set("page", strconv.Itoa(page))
		q.Set("limit", strconv.Itoa(c.pageSize))
		endpoint := fmt.Sprintf("%s/stores/%s/products?%s", c.baseURL, c.store, q.Encode())

		status, body, err := c.doRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		switch {
		case status == http.StatusTooManyRequests:
			return nil, fmt.Errorf("%w: listing products page %d", merchandising.ErrRateLimited, page)
		case status >= 400:
			return nil, fmt.Errorf("%w: HTTP %d: %s", merchandising.ErrRequestFailed, status, bodyExcerpt(body))
		}

		var resp productListResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("%w: parse product list: %v", merchandising.ErrInvalidResponse, err)
		}
		all = append(all, resp.Products...)

		// A short page means the listing is exhausted
		if len(resp.Products) < c.pageSize {
			break
		}
	}
	return all, nil
}

// GetProduct fetches one product by ID. A 404 returns ErrProductNotFound.
func (c *Client) GetProduct(ctx context.Context, id int64) (*merchandising.Product, error) {
	endpoint := fmt.Sprintf("%s/stores/%s/products/%d", c.baseURL, c.store, id)

	status, body, err := c.doRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: fetching product %d", merchandising.ErrRateLimited, id)
	case status == http.StatusNotFound:
		return nil, fmt.Errorf("%w: product %d", merchandising.ErrProductNotFound, id)
	case status >= 400:
		return nil, fmt.Errorf("%w: HTTP %d: %s", merchandising.ErrRequestFailed, status, bodyExcerpt(body))
	}

	var resp productResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: parse product: %v", merchandising.ErrInvalidResponse, err)
	}
	if resp.Product == nil {
		return nil, fmt.Errorf("%w: response has no product", merchandising.ErrInvalidResponse)
	}
	return resp.Product, nil
}

// AddProductToCollection writes one collection membership. The write is a
// single attempt; the caller owns retry policy. The storefront treats
// duplicate memberships as idempotent, so repeats of the same pair succeed.
func (c *Client) AddProductToCollection(ctx context.Context, productID int64, collectionID merchandising.CollectionID) error {
	endpoint := fmt.Sprintf("%s/stores/%s/collections/%s/products", c.baseURL, c.store, collectionID.String())

	status, body, err := c.doRequest(ctx, http.MethodPost, endpoint, addProductRequest{ProductID: productID})
	if err != nil {
		return err
	}
	switch {
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: adding product %d to collection %s", merchandising.ErrRateLimited, productID, collectionID)
	case status >= 400:
		return fmt.Errorf("%w: HTTP %d: %s", merchandising.ErrRequestFailed, status, bodyExcerpt(body))
	}
	return nil
}

// doRequest performs one storefront API call and returns the status code
// with the size-capped body. Transport and read failures wrap
// merchandising.ErrRequestFailed; status mapping is the caller's concern.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, payload any) (int, []byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("storefront: failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("storefront: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(accessTokenHeader, c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", merchandising.ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return 0, nil, fmt.Errorf("%w: failed to read response: %v", merchandising.ErrRequestFailed, err)
	}
	return resp.StatusCode, body, nil
}

// bodyExcerpt trims an error response body down to something loggable
func bodyExcerpt(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > bodyExcerptLimit {
		s = s[:bodyExcerptLimit] + "..."
	}
	if s == "" {
		return "<empty body>"
	}
	return s
}
