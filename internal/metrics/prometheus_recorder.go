package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "mdblog"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stageDuration *prom.HistogramVec
	buildDuration prom.Histogram
	buildOutcome  *prom.CounterVec
	articles      prom.Gauge
	pages         *prom.CounterVec
	warnings      *prom.CounterVec
}

// NewPrometheusRecorder registers the build metrics on reg (a fresh registry
// when nil).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual build stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"}),
		articles: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "articles",
			Help:      "Articles ingested by the last build",
		}),
		pages: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "pages_written_total",
			Help:      "Pages written by kind",
		}, []string{"kind"}),
		warnings: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "warnings_total",
			Help:      "Build warnings by kind",
		}, []string{"kind"}),
	}
	reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.buildOutcome, pr.articles, pr.pages, pr.warnings)
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome Outcome) {
	if p == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) SetArticles(n int) {
	if p == nil {
		return
	}
	p.articles.Set(float64(n))
}

func (p *PrometheusRecorder) AddPages(kind string, n int) {
	if p == nil || n <= 0 {
		return
	}
	p.pages.WithLabelValues(kind).Add(float64(n))
}

func (p *PrometheusRecorder) IncWarning(kind string) {
	if p == nil {
		return
	}
	p.warnings.WithLabelValues(kind).Inc()
}
