package orchestrator

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "g1_actions_total",
		Help: "Primitive actions by outcome (ok, error, skipped)",
	}, []string{"action", "status"})

	metricActionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "g1_action_duration_seconds",
		Help:    "Wall time of primitive actions",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	}, []string{"action"})

	metricPairDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "g1_pair_duration_seconds",
		Help:    "Wall time of synchronized speech+motion pairs",
		Buckets: prometheus.ExponentialBuckets(0.25, 1.6, 10),
	})

	metricFormatViolations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "g1_format_violations_total",
		Help: "Waveforms skipped because they were not 16 kHz mono PCM16",
	})
)

func observe(ctx context.Context, action string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	elapsed := time.Since(start)
	metricActions.WithLabelValues(action, status).Inc()
	metricActionDuration.WithLabelValues(action).Observe(elapsed.Seconds())

	if err != nil {
		events.ErrorContext(ctx, "action failed", "action", action, "elapsed", elapsed, "error", err)
		return
	}
	events.InfoContext(ctx, "action finished", "action", action, "elapsed", elapsed)
}
