package ws

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	activeConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "crm_copilot",
		Subsystem: "chat",
		Name:      "active_connections",
		Help:      "Number of live websocket connections.",
	})

	messagesPersisted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crm_copilot",
		Subsystem: "chat",
		Name:      "messages_persisted_total",
		Help:      "Messages persisted per sender tag.",
	}, []string{"sender"})

	aiTurnDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "crm_copilot",
		Subsystem: "chat",
		Name:      "ai_turn_duration_seconds",
		Help:      "Wall time of the context-assembly plus completion step.",
		Buckets:   prometheus.DefBuckets,
	})
)
