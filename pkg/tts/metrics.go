package tts

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "g1_tts_requests_total",
		Help: "Synthesis requests by provider and outcome.",
	}, []string{"provider", "status"})

	requestSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "g1_tts_request_seconds",
		Help:    "Synthesis latency including retries.",
		Buckets: []float64{.1, .25, .5, 1, 2, 4, 8, 16},
	}, []string{"provider"})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "g1_tts_cache_lookups_total",
		Help: "Utterance cache lookups by result.",
	}, []string{"result"})
)

func observeRequest(provider, status string, start time.Time) {
	requestsTotal.WithLabelValues(provider, status).Inc()
	requestSeconds.WithLabelValues(provider).Observe(time.Since(start).Seconds())
}
