package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCartMetrics_NilIsNoop(t *testing.T) {
	var m *CartMetrics
	assert.NotPanics(t, func() {
		m.ObserveDropped(3)
		m.ObserveWrite("local_storage")
		m.ObserveReconcile(time.Second)
	})
}

func TestCartMetrics_Counts(t *testing.T) {
	m := NewCartMetrics(prometheus.NewRegistry())

	m.ObserveDropped(2)
	m.ObserveDropped(0)
	m.ObserveWrite("local_storage")
	m.ObserveWrite("local_storage")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Dropped))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.PersistWrites.WithLabelValues("local_storage")))
}

func TestServerMetrics_ExposedByHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewServerMetrics(reg)
	m.Observe("/api/v1/cart", http.StatusOK, 12*time.Millisecond)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `kanap_http_requests_total{route="/api/v1/cart",status="200"} 1`)
}
