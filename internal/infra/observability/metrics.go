package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the gateway.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration      *prometheus.HistogramVec
	requestsTotal        *prometheus.CounterVec
	transportErrors      *prometheus.CounterVec
	cacheHits            *prometheus.CounterVec
	cacheMisses          *prometheus.CounterVec
	sessionInvalidations prometheus.Counter
}

// GatewaySnapshot is a point-in-time view of gateway counters, served by the
// BFF stats endpoint.
type GatewaySnapshot struct {
	RequestsTotal        float64 `json:"requestsTotal"`
	ErrorRate            float64 `json:"errorRate"`
	Timeouts             float64 `json:"timeouts"`
	CacheHitRate         float64 `json:"cacheHitRate"`
	SessionInvalidations float64 `json:"sessionInvalidations"`
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gateway_request_duration_seconds",
				Help:    "Duration of backend calls by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_requests_total",
				Help: "Total backend calls by HTTP status class.",
			},
			[]string{"class"},
		),
		transportErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_transport_errors_total",
				Help: "Total transport failures by kind.",
			},
			[]string{"kind"}, // timeout | network | http
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		sessionInvalidations: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "gateway_session_invalidations_total",
				Help: "Total forced session invalidations (401/440).",
			},
		),
	}
}

// RecordRequestDuration records the duration of a gateway operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrRequest increments the request counter for an HTTP status. Stored by
// class ("2xx", "4xx", ...) to keep cardinality low.
func (m *Metrics) IncrRequest(status int) {
	class := "net" // no HTTP response at all
	if status > 0 {
		class = strconv.Itoa(status/100) + "xx"
	}
	m.requestsTotal.WithLabelValues(class).Inc()
}

// IncrTransportError increments the transport failure counter.
func (m *Metrics) IncrTransportError(kind string) {
	m.transportErrors.WithLabelValues(kind).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrSessionInvalidation counts a forced logout.
func (m *Metrics) IncrSessionInvalidation() {
	m.sessionInvalidations.Inc()
}

// Snapshot returns current counter values for the stats endpoint.
// Note: Prometheus counters expose cumulative values.
func (m *Metrics) Snapshot() *GatewaySnapshot {
	total := getCounterValue(m.requestsTotal, "2xx") +
		getCounterValue(m.requestsTotal, "3xx") +
		getCounterValue(m.requestsTotal, "4xx") +
		getCounterValue(m.requestsTotal, "5xx") +
		getCounterValue(m.requestsTotal, "net")
	errs := getCounterValue(m.requestsTotal, "4xx") +
		getCounterValue(m.requestsTotal, "5xx") +
		getCounterValue(m.requestsTotal, "net")

	hits := getCounterValue(m.cacheHits, "categories")
	misses := getCounterValue(m.cacheMisses, "categories")

	errorRate := float64(0)
	if total > 0 {
		errorRate = errs / total
	}
	hitRate := float64(0)
	if hits+misses > 0 {
		hitRate = hits / (hits + misses)
	}

	return &GatewaySnapshot{
		RequestsTotal:        total,
		ErrorRate:            errorRate,
		Timeouts:             getCounterValue(m.transportErrors, "timeout"),
		CacheHitRate:         hitRate,
		SessionInvalidations: readCounter(m.sessionInvalidations),
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	return readCounter(cv.WithLabelValues(label))
}

func readCounter(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
