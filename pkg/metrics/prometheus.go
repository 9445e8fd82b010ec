// Package metrics provides Prometheus metrics for the ekiden race engine.
//
// The engine runs as short batch ticks, so metrics are kept on a custom registry
// and exported after each tick either to a node-exporter textfile or to a
// Pushgateway.
package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Manager manages all Prometheus metrics for the engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Tick metrics
	ticksTotal       *prometheus.CounterVec
	tickDuration     *prometheus.HistogramVec
	lastTickUnix     prometheus.Gauge
	raceDay          prometheus.Gauge
	teamsRunning     prometheus.Gauge
	teamsFinished    prometheus.Gauge
	legsCompleted    prometheus.Counter
	feedErrors       prometheus.Counter
	shadowWarps      prometheus.Counter
	commentsAccepted prometheus.Counter
	commentsSkipped  prometheus.Counter

	// News metrics
	newsFired     *prometheus.CounterVec
	newsPreserved prometheus.Counter
	newsCleared   prometheus.Counter

	// Repository metrics
	repositoryLoadLatency prometheus.Histogram
	repositorySaveLatency prometheus.Histogram
	repositoryErrors      *prometheus.CounterVec
	historyReinits        *prometheus.CounterVec

	// Delivery metrics
	webhookDeliveries *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "ekiden",
		subsystem:        "engine",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.ticksTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "ticks_total",
		Help:        "Total number of ticks by mode and outcome",
		ConstLabels: m.constLabels,
	}, []string{"mode", "outcome"})

	m.tickDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "tick_duration_milliseconds",
		Help:        "Duration of a tick in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"mode"})

	m.lastTickUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "last_tick_unix_seconds",
		Help:        "Unix time of the last completed tick",
		ConstLabels: m.constLabels,
	})

	m.raceDay = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "race_day",
		Help:        "Race day of the last tick",
		ConstLabels: m.constLabels,
	})

	m.teamsRunning = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "teams_running",
		Help:        "Competitive teams still on the course",
		ConstLabels: m.constLabels,
	})

	m.teamsFinished = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "teams_finished",
		Help:        "Competitive teams past the final boundary",
		ConstLabels: m.constLabels,
	})

	m.legsCompleted = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "legs_completed_total",
		Help:        "Leg completions observed by ticks",
		ConstLabels: m.constLabels,
	})

	m.feedErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "feed_errors_total",
		Help:        "Runner readings recovered as zero distance",
		ConstLabels: m.constLabels,
	})

	m.shadowWarps = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "shadow_handoffs_total",
		Help:        "Shadow team hand-offs to the next leg",
		ConstLabels: m.constLabels,
	})

	m.commentsAccepted = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "comments_accepted_total",
		Help:        "Commentary items passed to the news detector",
		ConstLabels: m.constLabels,
	})

	m.commentsSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "comments_skipped_total",
		Help:        "Commentary items already in the processed ledger",
		ConstLabels: m.constLabels,
	})

	m.newsFired = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "news_fired_total",
		Help:        "New breaking-news messages by rule",
		ConstLabels: m.constLabels,
	}, []string{"rule"})

	m.newsPreserved = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "news_preserved_total",
		Help:        "Ticks that kept the displayed message",
		ConstLabels: m.constLabels,
	})

	m.newsCleared = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "news_cleared_total",
		Help:        "Ticks that ended with no message displayed",
		ConstLabels: m.constLabels,
	})

	m.repositoryLoadLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "repository_load_latency_milliseconds",
		Help:        "Latency of document loads in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})

	m.repositorySaveLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "repository_save_latency_milliseconds",
		Help:        "Latency of batch saves in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})

	m.repositoryErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "repository_errors_total",
		Help:        "Repository errors by operation",
		ConstLabels: m.constLabels,
	}, []string{"operation"})

	m.historyReinits = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "history_reinitialized_total",
		Help:        "Missing or corrupt documents replaced by an empty shape",
		ConstLabels: m.constLabels,
	}, []string{"document"})

	m.webhookDeliveries = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "webhook_deliveries_total",
		Help:        "Webhook deliveries by outcome",
		ConstLabels: m.constLabels,
	}, []string{"outcome"})
}

// RecordTick records a finished tick.
func RecordTick(mode, outcome string, durationMs float64, unix int64) {
	globalManager.ticksTotal.WithLabelValues(mode, outcome).Inc()
	globalManager.tickDuration.WithLabelValues(mode).Observe(durationMs)
	globalManager.lastTickUnix.Set(float64(unix))
}

// UpdateRaceDay sets the race day gauge.
func UpdateRaceDay(day int) {
	globalManager.raceDay.Set(float64(day))
}

// UpdateTeams sets the running and finished team gauges.
func UpdateTeams(running, finished int) {
	globalManager.teamsRunning.Set(float64(running))
	globalManager.teamsFinished.Set(float64(finished))
}

// RecordLegsCompleted adds leg completions.
func RecordLegsCompleted(n int) {
	if n > 0 {
		globalManager.legsCompleted.Add(float64(n))
	}
}

// RecordFeedError increments the feed error counter.
func RecordFeedError() {
	globalManager.feedErrors.Inc()
}

// RecordShadowHandoff increments the shadow hand-off counter.
func RecordShadowHandoff() {
	globalManager.shadowWarps.Inc()
}

// RecordCommentAccepted increments the accepted commentary counter.
func RecordCommentAccepted() {
	globalManager.commentsAccepted.Inc()
}

// RecordCommentSkipped increments the skipped commentary counter.
func RecordCommentSkipped() {
	globalManager.commentsSkipped.Inc()
}

// RecordNewsFired counts a new message by rule.
func RecordNewsFired(rule string) {
	globalManager.newsFired.WithLabelValues(rule).Inc()
}

// RecordNewsPreserved counts a kept message.
func RecordNewsPreserved() {
	globalManager.newsPreserved.Inc()
}

// RecordNewsCleared counts a tick without message.
func RecordNewsCleared() {
	globalManager.newsCleared.Inc()
}

// RecordRepositoryLoadLatency records a load latency.
func RecordRepositoryLoadLatency(latencyMs float64) {
	globalManager.repositoryLoadLatency.Observe(latencyMs)
}

// RecordRepositorySaveLatency records a batch save latency.
func RecordRepositorySaveLatency(latencyMs float64) {
	globalManager.repositorySaveLatency.Observe(latencyMs)
}

// RecordRepositoryError counts a repository error by operation.
func RecordRepositoryError(operation string) {
	globalManager.repositoryErrors.WithLabelValues(operation).Inc()
}

// RecordHistoryReinit counts a reinitialized document.
func RecordHistoryReinit(document string) {
	globalManager.historyReinits.WithLabelValues(document).Inc()
}

// RecordWebhookDelivery counts a webhook delivery by outcome.
func RecordWebhookDelivery(outcome string) {
	globalManager.webhookDeliveries.WithLabelValues(outcome).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// WriteTextfile writes the registry in text format for the node exporter
// textfile collector. The file is replaced atomically.
func WriteTextfile(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty textfile path", ErrExportFailed)
	}
	if err := prometheus.WriteToTextfile(path, customRegistry); err != nil {
		return fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	return nil
}

// Push sends the registry to a Pushgateway under job.
func Push(ctx context.Context, url, job string) error {
	if url == "" {
		return fmt.Errorf("%w: empty pushgateway url", ErrExportFailed)
	}
	if err := push.New(url, job).Gatherer(customRegistry).PushContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	return nil
}
