// Package metrics exposes Prometheus instrumentation for analyses and the
// collaborators they depend on.
//
// All metrics live on a private registry so tests and multiple instances in one
// process never collide. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"TOSAnalyzer/internal/domain"
)

const namespace = "tos_analyzer"

// Metrics holds every collector the service records into.
type Metrics struct {
	registry *prometheus.Registry

	// AnalysesTotal counts analyze requests. Labels: status (ok, empty, error).
	AnalysesTotal *prometheus.CounterVec

	// AggressivePhrasesTotal counts flagged phrases. Labels: phrase.
	AggressivePhrasesTotal *prometheus.CounterVec

	// SuspiciousClausesTotal counts flagged clauses. Labels: clause.
	SuspiciousClausesTotal *prometheus.CounterVec

	// SummariesTotal counts summarizer calls. Labels: backend, outcome.
	SummariesTotal *prometheus.CounterVec

	// SummaryCacheTotal counts cache lookups. Labels: result (hit, miss, error).
	SummaryCacheTotal *prometheus.CounterVec

	// OCRRequestsTotal counts OCR extractions. Labels: outcome.
	OCRRequestsTotal *prometheus.CounterVec

	// AnalyzeDuration measures end-to-end analyze latency including summarization.
	AnalyzeDuration prometheus.Histogram

	// SummarizerReady is 1 while the summarizer answers its readiness probe.
	SummarizerReady prometheus.Gauge
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		AnalysesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Analyze requests by status.",
		}, []string{"status"}),
		AggressivePhrasesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggressive_phrases_total",
			Help:      "Aggressive language phrases flagged.",
		}, []string{"phrase"}),
		SuspiciousClausesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suspicious_clauses_total",
			Help:      "Suspicious clauses flagged.",
		}, []string{"clause"}),
		SummariesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summaries_total",
			Help:      "Summarizer calls by backend and outcome.",
		}, []string{"backend", "outcome"}),
		SummaryCacheTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summary_cache_total",
			Help:      "Summary cache lookups by result.",
		}, []string{"result"}),
		OCRRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ocr_requests_total",
			Help:      "OCR extractions by outcome.",
		}, []string{"outcome"}),
		AnalyzeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analyze_duration_seconds",
			Help:      "Analyze latency including summarization.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		SummarizerReady: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "summarizer_ready",
			Help:      "1 when the summarizer passed its last readiness probe.",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveAnalysis records a successful analysis and its findings.
func (m *Metrics) ObserveAnalysis(result domain.AnalysisResult, took time.Duration) {
	if m == nil {
		return
	}
	m.AnalysesTotal.WithLabelValues("ok").Inc()
	m.AnalyzeDuration.Observe(took.Seconds())
	for _, phrase := range result.AggressiveLanguage {
		m.AggressivePhrasesTotal.WithLabelValues(phrase).Inc()
	}
	for _, clause := range result.SuspiciousClauses {
		m.SuspiciousClausesTotal.WithLabelValues(clause.Name).Inc()
	}
}

// AnalysisFailed records a rejected or failed analysis.
func (m *Metrics) AnalysisFailed(status string) {
	if m == nil {
		return
	}
	m.AnalysesTotal.WithLabelValues(status).Inc()
}

// SummaryOutcome records one summarizer call.
func (m *Metrics) SummaryOutcome(backend, outcome string) {
	if m == nil {
		return
	}
	m.SummariesTotal.WithLabelValues(backend, outcome).Inc()
}

// CacheLookup records a summary cache lookup.
func (m *Metrics) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.SummaryCacheTotal.WithLabelValues(result).Inc()
}

// OCRRequest records one OCR extraction.
func (m *Metrics) OCRRequest(outcome string) {
	if m == nil {
		return
	}
	m.OCRRequestsTotal.WithLabelValues(outcome).Inc()
}

// SetSummarizerReady flips the readiness gauge.
func (m *Metrics) SetSummarizerReady(ready bool) {
	if m == nil {
		return
	}
	if ready {
		m.SummarizerReady.Set(1)
		return
	}
	m.SummarizerReady.Set(0)
}
