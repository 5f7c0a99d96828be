package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/fjod/go_storefront/internal/domain"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

const maxResponseBytes = 4 << 20 // 4MB

// Client talks to the remote read-only catalog service. Concurrent identical
// GETs collapse into one request, responses are optionally cached in redis,
// and a circuit breaker keeps a flapping upstream from being hammered.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
	limiter    *rate.Limiter
	sfg        singleflight.Group
	cache      *Cache
	logger     *slog.Logger
}

type ClientOption func(*Client)

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithCache enables the redis read-through cache. Optional; a nil cache means
// every miss goes to the network.
func WithCache(cache *Cache) ClientOption {
	return func(c *Client) { c.cache = cache }
}

func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

func WithClientLogger(l *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   15 * time.Second,
		},
		breaker: gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
			Name: "catalog",
		}),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListProducts fetches the product list matching the canonical query.
func (c *Client) ListProducts(ctx context.Context, q domain.CatalogQuery) ([]domain.Product, error) {
	path := "/products"
	if enc := q.Encode(); enc != "" {
		path += "?" + enc
	}

	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}

	var products []domain.Product
	if err := json.Unmarshal(body, &products); err != nil {
		return nil, fmt.Errorf("parse products: %w", err)
	}
	return products, nil
}

func (c *Client) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	body, err := c.get(ctx, fmt.Sprintf("/products/%d", id))
	if err != nil {
		return nil, err
	}

	var product domain.Product
	if err := json.Unmarshal(body, &product); err != nil {
		return nil, fmt.Errorf("parse product: %w", err)
	}
	return &product, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	body, err := c.get(ctx, "/categories")
	if err != nil {
		return nil, err
	}

	var categories []domain.Category
	if err := json.Unmarshal(body, &categories); err != nil {
		return nil, fmt.Errorf("parse categories: %w", err)
	}
	return categories, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	// Identical concurrent requests share one flight.
	v, err, _ := c.sfg.Do(path, func() (interface{}, error) {
		if c.cache != nil {
			body, errGet := c.cache.Get(ctx, path)
			if errGet == nil {
				return body, nil
			}
			if !errors.Is(errGet, ErrCacheMiss) {
				c.logger.Warn("catalog cache get failed", "path", path, "error", errGet)
			}
		}

		body, errFetch := c.breaker.Execute(func() ([]byte, error) {
			return c.fetch(ctx, path)
		})
		if errFetch != nil {
			return nil, errFetch
		}

		if c.cache != nil {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				if errSet := c.cache.Set(ctx, path, body); errSet != nil {
					c.logger.Warn("catalog cache set failed", "path", path, "error", errSet)
				}
			}()
		}
		return body, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (c *Client) fetch(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("catalog responded with status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}
