// internal/messaging/metrics.go

package messaging

import (
    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promauto"
)

var (
    messagesSent = promauto.NewCounter(prometheus.CounterOpts{
        Name: "messaging_messages_sent_total",
        Help: "Total number of chat messages persisted",
    })

    activeConnections = promauto.NewGauge(prometheus.GaugeOpts{
        Name: "messaging_ws_connections",
        Help: "Current number of live websocket connections",
    })
)

func RecordMessageSent() {
    messagesSent.Inc()
}

func SetActiveConnections(n int) {
    activeConnections.Set(float64(n))
}
