package eventfabric

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Presence is a snapshot of the hub's live connection counts, served at
// GET /api/v1/administrative/fabric for administrators.
type Presence struct {
	TotalSockets int            `json:"total_sockets"`
	AdminSockets int            `json:"admin_sockets"`
	PerScope     map[string]int `json:"per_scope"`
}

var (
	socketsConnected = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "sectorwars",
		Subsystem: "fabric",
		Name:      "sockets_connected",
		Help:      "Current number of connected event-fabric sockets.",
	})

	eventsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sectorwars",
		Subsystem: "fabric",
		Name:      "events_published_total",
		Help:      "Total number of events routed through the event fabric.",
	}, []string{"type", "durable"})

	durableSendTimeouts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sectorwars",
		Subsystem: "fabric",
		Name:      "durable_send_timeouts_total",
		Help:      "Total number of durable sends that hit their deadline.",
	})
)

// Register adds the event fabric's collectors to reg. Called once at
// startup with the process-wide Prometheus registry.
func Register(reg *prometheus.Registry) {
	reg.MustRegister(socketsConnected, eventsPublished, durableSendTimeouts)
}

func durableLabel(durable bool) string {
	if durable {
		return "true"
	}
	return "false"
}
