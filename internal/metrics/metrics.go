package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/kakaka820/Titanic/pkg/analysis"
)

// Metrics holds all Prometheus metrics for the service
type Metrics struct {
	// Analysis metrics
	AnalysisDuration prometheus.Histogram
	AnalysisRuns     prometheus.Counter
	ModelAccuracy    *prometheus.GaugeVec
	ModelCVScore     *prometheus.GaugeVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

var (
	metricsOnce   sync.Once
	sharedMetrics *Metrics
)

// NewMetrics creates and registers all Prometheus metrics on the default registry.
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		sharedMetrics = &Metrics{
			AnalysisDuration: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "titanic_analysis_duration_seconds",
					Help:    "Duration of a full analysis run in seconds",
					Buckets: prometheus.ExponentialBuckets(0.1, 2, 12), // 100ms to ~3.4min
				},
			),
			AnalysisRuns: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "titanic_analysis_runs_total",
					Help: "Total number of completed analysis runs",
				},
			),
			ModelAccuracy: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "titanic_model_accuracy",
					Help: "Held-out accuracy of the last run, by model",
				},
				[]string{"model"},
			),
			ModelCVScore: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "titanic_model_cv_score",
					Help: "Mean cross-validation accuracy of the last run, by model",
				},
				[]string{"model"},
			),
			HTTPRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "titanic_http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "route", "status"},
			),
			HTTPRequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "titanic_http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"method", "route"},
			),
		}
	})
	return sharedMetrics
}

// ObserveRun records one finished analysis.
func (m *Metrics) ObserveRun(d time.Duration) {
	m.AnalysisDuration.Observe(d.Seconds())
	m.AnalysisRuns.Inc()
}

// ObserveMetric publishes one model's scores.
func (m *Metrics) ObserveMetric(metric analysis.Metric) {
	m.ModelAccuracy.WithLabelValues(metric.Model).Set(metric.Accuracy)
	m.ModelCVScore.WithLabelValues(metric.Model).Set(metric.CVScore)
}

// RecordHTTPRequest records one served request.
func (m *Metrics) RecordHTTPRequest(method, route string, status int, d time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
