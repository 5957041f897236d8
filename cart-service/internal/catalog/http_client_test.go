package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fjod/kanap/cart-service/internal/domain"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productJSON = `{
	"colors": ["Blue", "White", "Black"],
	"_id": "107fb5b75607497b96722bda5b504926",
	"name": "Kanap Sinopé",
	"price": 1849,
	"imageUrl": "kanap01.jpeg",
	"description": "Excepteur sint occaecat cupidatat non proident.",
	"altTxt": "Photo d'un canapé bleu, deux places"
}`

func newTestServer(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPClient(srv.URL+"/", 2*time.Second, nil)
}

func TestFetchProduct_Success(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products/107fb5b75607497b96722bda5b504926", r.URL.Path)
		w.Write([]byte(productJSON))
	})

	p, err := client.FetchProduct(context.Background(), "107fb5b75607497b96722bda5b504926")
	require.NoError(t, err)
	assert.Equal(t, "Kanap Sinopé", p.Name)
	assert.Equal(t, 1849.0, p.Price)
	assert.Equal(t, "kanap01.jpeg", p.ImageURL)
	assert.Equal(t, []string{"Blue", "White", "Black"}, p.Colors)
}

func TestFetchProduct_NotFound(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.FetchProduct(context.Background(), "999")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestFetchProduct_NullBodyIsNotFound(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("null"))
	})

	_, err := client.FetchProduct(context.Background(), "999")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestFetchProduct_ServerError(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.FetchProduct(context.Background(), "1")
	assert.ErrorContains(t, err, "unexpected status 500")
}

func TestFetchProduct_NotFoundDoesNotTripBreaker(t *testing.T) {
	var calls atomic.Int32
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	})

	for i := 0; i < 10; i++ {
		_, err := client.FetchProduct(context.Background(), "gone")
		require.ErrorIs(t, err, ErrProductNotFound)
	}
	assert.Equal(t, int32(10), calls.Load())
	assert.Equal(t, gobreaker.StateClosed, client.breaker.State())
}

func TestFetchProduct_BreakerOpensOnFailures(t *testing.T) {
	var calls atomic.Int32
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	for i := 0; i < 8; i++ {
		_, err := client.FetchProduct(context.Background(), "1")
		require.Error(t, err)
	}
	assert.Equal(t, int32(5), calls.Load())
	assert.Equal(t, gobreaker.StateOpen, client.breaker.State())

	_, err := client.FetchProduct(context.Background(), "1")
	assert.ErrorIs(t, err, ErrCatalogUnavailable)
}

func TestListProducts(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products", r.URL.Path)
		w.Write([]byte("[" + productJSON + "]"))
	})

	products, err := client.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "107fb5b75607497b96722bda5b504926", products[0].ID)
}

func TestSubmitOrder(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/products/order", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var order domain.Order
		require.NoError(t, json.NewDecoder(r.Body).Decode(&order))
		assert.Equal(t, []string{"1", "2"}, order.Products)
		assert.Equal(t, "Ada", order.Contact.FirstName)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"orderId": "abc-123", "contact": order.Contact})
	})

	confirmation, err := client.SubmitOrder(context.Background(), &domain.Order{
		Contact:  domain.Contact{FirstName: "Ada"},
		Products: []string{"1", "2"},
	})
	require.NoError(t, err)
	assert.Equal(t, "abc-123", confirmation.OrderID)
}

func TestSubmitOrder_MissingOrderID(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	_, err := client.SubmitOrder(context.Background(), &domain.Order{Products: []string{"1"}})
	assert.ErrorContains(t, err, "empty order id")
}

func TestFetchProduct_CallerCancellationDoesNotOpenBreaker(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	})

	for i := 0; i < 8; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		_, err := client.FetchProduct(ctx, "1")
		cancel()
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	}
	assert.Equal(t, gobreaker.StateClosed, client.breaker.State())
}
