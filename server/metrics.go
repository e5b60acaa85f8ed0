package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects the server's Prometheus instruments.
type Metrics struct {
	Commands       *prometheus.CounterVec
	CommandErrors  *prometheus.CounterVec
	LayoutDuration prometheus.Histogram
	Connections    prometheus.Gauge
}

// NewMetrics creates and registers the metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jasmdbg_commands_total",
			Help: "Debug commands received, by kind.",
		}, []string{"kind"}),
		CommandErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jasmdbg_command_errors_total",
			Help: "Debug commands that failed to apply, by kind.",
		}, []string{"kind"}),
		LayoutDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "jasmdbg_layout_seconds",
			Help:    "Time spent laying out a machine description.",
			Buckets: prometheus.ExponentialBuckets(1e-5, 4, 8),
		}),
		Connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "jasmdbg_connections",
			Help: "Currently connected debugged processes.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.Commands, m.CommandErrors, m.LayoutDuration, m.Connections)
	}
	return m
}
