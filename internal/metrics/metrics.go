// Package metrics exposes Prometheus counters for normalization, replies,
// Telegram updates and scheduled tasks. A nil *Metrics records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "plainbot"

// Metrics holds all Prometheus metrics for plainbot.
type Metrics struct {
	registry *prometheus.Registry

	NormalizationsTotal *prometheus.CounterVec
	BytesSavedTotal     prometheus.Counter
	RepliesSentTotal    prometheus.Counter
	AIFailuresTotal     prometheus.Counter
	AIDurationSeconds   prometheus.Histogram
	UpdatesTotal        *prometheus.CounterVec
	TaskRunsTotal       *prometheus.CounterVec
}

// New creates the metrics on a dedicated registry that also carries the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		NormalizationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "normalizations_total",
			Help:      "Total number of texts normalized, by mode",
		}, []string{"mode"}),
		BytesSavedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "normalized_bytes_saved_total",
			Help:      "Total number of bytes removed by normalization",
		}),
		RepliesSentTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "replies_sent_total",
			Help:      "Total number of reply messages sent to Telegram",
		}),
		AIFailuresTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "ai_failures_total",
			Help:      "Total number of failed AI reply generations",
		}),
		AIDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "ai_reply_duration_seconds",
			Help:      "Duration of AI reply generation in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 8), // 0.25s to 32s
		}),
		UpdatesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "updates_total",
			Help:      "Total number of Telegram updates received, by type",
		}, []string{"type"}),
		TaskRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "task_runs_total",
			Help:      "Total number of scheduled task runs, by task and status",
		}, []string{"task", "status"}),
	}
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveNormalization counts one normalization and the bytes it removed.
func (m *Metrics) ObserveNormalization(mode, input, output string) {
	if m == nil {
		return
	}
	m.NormalizationsTotal.WithLabelValues(mode).Inc()
	if saved := len(input) - len(output); saved > 0 {
		m.BytesSavedTotal.Add(float64(saved))
	}
}

// ObserveReply records the outcome of one AI reply generation.
func (m *Metrics) ObserveReply(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.AIDurationSeconds.Observe(d.Seconds())
	if err != nil {
		m.AIFailuresTotal.Inc()
	}
}

// AddRepliesSent counts n messages delivered to a chat.
func (m *Metrics) AddRepliesSent(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.RepliesSentTotal.Add(float64(n))
}

// ObserveUpdate counts one Telegram update of the given type.
func (m *Metrics) ObserveUpdate(updateType string) {
	if m == nil {
		return
	}
	m.UpdatesTotal.WithLabelValues(updateType).Inc()
}

// ObserveTask counts one scheduled task run.
func (m *Metrics) ObserveTask(task string, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.TaskRunsTotal.WithLabelValues(task, status).Inc()
}
