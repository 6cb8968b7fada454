package router

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles the Prometheus collectors exported through the
// admin API's /metrics route, mirroring how caddyserver-caddy wires a
// *prometheus.Registry into its Context (context.go's metricsRegistry
// field / initMetrics), scaled down to this router's counters.
type Metrics struct {
	Registry *prometheus.Registry

	PacketsDropped *prometheus.CounterVec
	PacketsPushed  *prometheus.CounterVec
	Runcount       prometheus.Gauge
	QueueDepth     *prometheus.GaugeVec
}

// NewMetrics constructs a fresh, pedantic registry and collector set.
func NewMetrics() *Metrics {
	reg := prometheus.NewPedanticRegistry()
	m := &Metrics{
		Registry: reg,
		PacketsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "router_packets_dropped_total",
			Help: "Packets dropped, labeled by element and reason.",
		}, []string{"element", "reason"}),
		PacketsPushed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "router_packets_pushed_total",
			Help: "Packets successfully pushed, labeled by element and output port.",
		}, []string{"element", "port"}),
		Runcount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "router_runcount",
			Help: "Current router runcount; <= 0 requests a stop.",
		}),
		QueueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "router_queue_depth",
			Help: "Depth of a named queue-like element.",
		}, []string{"element"}),
	}
	reg.MustRegister(m.PacketsDropped, m.PacketsPushed, m.Runcount, m.QueueDepth)
	return m
}
