// Package observability holds the Prometheus metrics and OpenTelemetry
// spans recorded by the analysis pipeline and the HTTP server.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for moodsense.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestSeconds  *prometheus.HistogramVec
	RequestCostEURTotal prometheus.Counter

	// Analysis metrics
	AnalysesTotal     *prometheus.CounterVec
	StageSeconds      *prometheus.HistogramVec
	MessagesParsed    prometheus.Counter
	MediaMessages     *prometheus.CounterVec
	UnresolvedHeaders prometheus.Counter
	CacheLookupsTotal *prometheus.CounterVec
}

// NewMetrics creates and registers the metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moodsense_http_requests_total",
				Help: "Total HTTP requests by route and status",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "moodsense_http_request_seconds",
				Help:    "HTTP request latency",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"method", "route"},
		),
		RequestCostEURTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "moodsense_request_cost_eur_total",
				Help: "Estimated compute cost of served requests in EUR",
			},
		),
		AnalysesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moodsense_analyses_total",
				Help: "Total analyses by outcome",
			},
			[]string{"status"},
		),
		StageSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "moodsense_stage_seconds",
				Help:    "Analysis stage latency",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
			},
			[]string{"stage"},
		),
		MessagesParsed: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "moodsense_messages_parsed_total",
				Help: "Total chat messages parsed",
			},
		),
		MediaMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moodsense_media_messages_total",
				Help: "Total media placeholders by type",
			},
			[]string{"media_type"},
		),
		UnresolvedHeaders: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "moodsense_unresolved_headers_total",
				Help: "Header lines dropped because the timestamp did not parse",
			},
		),
		CacheLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moodsense_cache_lookups_total",
				Help: "Report cache lookups by result",
			},
			[]string{"result"},
		),
	}
}

// RecordHTTPRequest records a served request.
func (m *Metrics) RecordHTTPRequest(method, route, status string, seconds float64) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestSeconds.WithLabelValues(method, route).Observe(seconds)
}

// RecordRequestCost adds an estimated request cost.
func (m *Metrics) RecordRequestCost(eur float64) {
	m.RequestCostEURTotal.Add(eur)
}

// RecordAnalysis records an analysis outcome ("ok", "error", "cached").
func (m *Metrics) RecordAnalysis(status string) {
	m.AnalysesTotal.WithLabelValues(status).Inc()
}

// RecordStage records the latency of one pipeline stage.
func (m *Metrics) RecordStage(stage string, seconds float64) {
	m.StageSeconds.WithLabelValues(stage).Observe(seconds)
}

// RecordParse records parser output counts.
func (m *Metrics) RecordParse(messages, unresolved int, mediaByType map[string]int) {
	m.MessagesParsed.Add(float64(messages))
	m.UnresolvedHeaders.Add(float64(unresolved))
	for t, n := range mediaByType {
		m.MediaMessages.WithLabelValues(t).Add(float64(n))
	}
}

// RecordCacheLookup records a cache "hit", "miss" or "error".
func (m *Metrics) RecordCacheLookup(result string) {
	m.CacheLookupsTotal.WithLabelValues(result).Inc()
}
