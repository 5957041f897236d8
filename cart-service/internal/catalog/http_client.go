package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fjod/kanap/cart-service/internal/domain"
	"github.com/fjod/kanap/pkg/circuitbreaker"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const maxResponseSize = 1 << 20 // 1MB

// errCallerDone marks a request abandoned by its caller. It says nothing
// about the health of the catalog, so the breaker does not count it.
var errCallerDone = errors.New("caller gave up")

// HTTPClient talks to the Kanap products API.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
}

func NewHTTPClient(baseURL string, timeout time.Duration, log *zap.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: circuitbreaker.New[[]byte](circuitbreaker.Config{
			Name: "catalog",
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, ErrProductNotFound) || errors.Is(err, errCallerDone)
			},
		}, log),
	}
}

func (c *HTTPClient) FetchProduct(ctx context.Context, id string) (*domain.Product, error) {
	if id == "" {
		return nil, ErrProductNotFound
	}

	body, err := c.do(ctx, http.MethodGet, "/api/products/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch product %s: %w", id, err)
	}

	var p domain.Product
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("decode product %s: %w", id, err)
	}
	if p.ID == "" {
		return nil, fmt.Errorf("fetch product %s: %w", id, ErrProductNotFound)
	}
	return &p, nil
}

func (c *HTTPClient) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/products", nil)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	var products []*domain.Product
	if err := json.Unmarshal(body, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}

func (c *HTTPClient) SubmitOrder(ctx context.Context, order *domain.Order) (*domain.OrderConfirmation, error) {
	payload, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("marshal order: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, "/api/products/order", payload)
	if err != nil {
		return nil, fmt.Errorf("submit order: %w", err)
	}

	var confirmation domain.OrderConfirmation
	if err := json.Unmarshal(body, &confirmation); err != nil {
		return nil, fmt.Errorf("decode order confirmation: %w", err)
	}
	if confirmation.OrderID == "" {
		return nil, errors.New("submit order: empty order id in response")
	}
	return &confirmation, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	data, err := c.breaker.Execute(func() ([]byte, error) {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, callerErr(ctx, err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		if err != nil {
			return nil, fmt.Errorf("read response: %w", callerErr(ctx, err))
		}

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return nil, ErrProductNotFound
		case resp.StatusCode < 200 || resp.StatusCode > 299:
			return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		return data, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	return data, err
}

func callerErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %w", errCallerDone, ctx.Err())
	}
	return err
}
