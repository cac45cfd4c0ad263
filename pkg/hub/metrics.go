package hub

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	clientsGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "g1_hub_clients",
		Help: "Connected websocket clients per hub.",
	}, []string{"hub"})

	droppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "g1_hub_dropped_total",
		Help: "Messages dropped, by reason (slow_client, backlog).",
	}, []string{"hub", "reason"})
)
