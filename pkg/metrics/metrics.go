package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector provides application metrics collection
type Collector struct {
	// API Metrics
	APIRequestsTotal   *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec

	// Fetch Metrics
	FetchDuration    *prometheus.HistogramVec
	FetchErrorsTotal *prometheus.CounterVec

	// Decoder Metrics
	DecodesTotal *prometheus.CounterVec

	// Websocket Metrics
	ActiveConnections prometheus.Gauge
}

// NewCollector creates a new metrics collector
func NewCollector(namespace string) *Collector {
	return &Collector{
		APIRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Total number of API requests by endpoint, method, and status",
			},
			[]string{"endpoint", "method", "status"},
		),

		APIRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1.0, 2.0, 5.0},
			},
			[]string{"endpoint"},
		),

		FetchDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "fetch_duration_seconds",
				Help:      "Upstream weather API fetch duration in seconds by data type",
				Buckets:   []float64{0.05, 0.1, 0.2, 0.5, 1.0, 2.0, 5.0, 10.0},
			},
			[]string{"type"},
		),

		FetchErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_errors_total",
				Help:      "Total number of upstream fetch errors by data type and reason",
			},
			[]string{"type", "reason"},
		),

		DecodesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "decodes_total",
				Help:      "Total number of report decode operations by outcome",
			},
			[]string{"outcome"},
		),

		ActiveConnections: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "websocket_active_connections",
				Help:      "Number of active websocket client connections",
			},
		),
	}
}

// RecordAPIRequest increments the API request counter
func (c *Collector) RecordAPIRequest(endpoint, method, status string) {
	c.APIRequestsTotal.WithLabelValues(endpoint, method, status).Inc()
}

// ObserveAPIRequest records the duration of an API request
func (c *Collector) ObserveAPIRequest(endpoint string, d time.Duration) {
	c.APIRequestDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// ObserveFetch records the duration of a successful upstream fetch
func (c *Collector) ObserveFetch(weatherType string, d time.Duration) {
	c.FetchDuration.WithLabelValues(weatherType).Observe(d.Seconds())
}

// RecordFetchError increments the upstream fetch error counter
func (c *Collector) RecordFetchError(weatherType, reason string) {
	c.FetchErrorsTotal.WithLabelValues(weatherType, reason).Inc()
}

// RecordDecode increments the decode counter
func (c *Collector) RecordDecode(outcome string) {
	c.DecodesTotal.WithLabelValues(outcome).Inc()
}

// ClientConnected increments the active websocket connection gauge
func (c *Collector) ClientConnected() {
	c.ActiveConnections.Inc()
}

// ClientDisconnected decrements the active websocket connection gauge
func (c *Collector) ClientDisconnected() {
	c.ActiveConnections.Dec()
}
