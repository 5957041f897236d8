package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "kanap"

// CartMetrics observes cart reconciliation and persistence. A nil
// *CartMetrics is valid and records nothing.
type CartMetrics struct {
	Dropped        prometheus.Counter
	PersistWrites  *prometheus.CounterVec
	ReconcileDelay prometheus.Histogram
}

func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	dropped := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cart",
		Name:      "reconcile_dropped_total",
		Help:      "Cart entries dropped because their product no longer resolves.",
	})
	writes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cart",
		Name:      "persist_writes_total",
		Help:      "Cart writes to the persistence backend.",
	}, []string{"backend"})
	delay := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "cart",
		Name:      "reconcile_duration_seconds",
		Help:      "Time spent resolving cart entries against the catalog.",
		Buckets:   prometheus.DefBuckets,
	})

	reg.MustRegister(dropped, writes, delay)
	return &CartMetrics{Dropped: dropped, PersistWrites: writes, ReconcileDelay: delay}
}

func (m *CartMetrics) ObserveDropped(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.Dropped.Add(float64(n))
}

func (m *CartMetrics) ObserveWrite(backend string) {
	if m == nil {
		return
	}
	m.PersistWrites.WithLabelValues(backend).Inc()
}

func (m *CartMetrics) ObserveReconcile(d time.Duration) {
	if m == nil {
		return
	}
	m.ReconcileDelay.Observe(d.Seconds())
}

type ServerMetrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
}

func NewServerMetrics(reg prometheus.Registerer) *ServerMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"route", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"route"})

	reg.MustRegister(requests, latency)
	return &ServerMetrics{Requests: requests, LatencyMS: latency}
}

func (m *ServerMetrics) Observe(route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.LatencyMS.WithLabelValues(route).Observe(float64(d.Milliseconds()))
}

func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
