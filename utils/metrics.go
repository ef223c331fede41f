package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WSConnections tracks currently connected relay clients.
	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "farmwise_ws_connections",
		Help: "Number of connected websocket clients.",
	})

	// MessagesSent counts persisted chat messages by transport.
	MessagesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "farmwise_messages_sent_total",
		Help: "Chat messages persisted and broadcast.",
	}, []string{"transport"})

	// WSAuthFailures counts rejected websocket handshakes by reason.
	WSAuthFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "farmwise_ws_auth_failures_total",
		Help: "Websocket handshakes rejected during authentication.",
	}, []string{"reason"})
)
