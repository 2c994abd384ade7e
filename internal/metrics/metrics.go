// Package metrics exports the lift state as Prometheus metrics.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sweeney/lift-controller/internal/logic"
	"github.com/sweeney/lift-controller/internal/status"
)

const namespace = "lift"

// Collector owns a registry with the lift metrics.
type Collector struct {
	registry *prometheus.Registry

	state       *prometheus.GaugeVec
	position    prometheus.Gauge
	distance    prometheus.Gauge
	target      prometheus.Gauge
	motion      prometheus.Gauge
	transitions prometheus.Counter
	connected   prometheus.Gauge
	queued      prometheus.Gauge
	messages    *prometheus.CounterVec

	mu              sync.Mutex
	lastTransitions int
}

// New creates a Collector with Go runtime and process metrics included.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		state: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "state",
			Help:      "1 for the active controller state, 0 otherwise.",
		}, []string{"state"}),
		position: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "position_cm",
			Help:      "Measured lift position.",
		}),
		distance: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "distance_cm",
			Help:      "Last distance sensor reading.",
		}),
		target: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "move_to_cm",
			Help:      "Last commanded target position.",
		}),
		motion: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "motion",
			Help:      "1 while the PIR occupancy signal is held.",
		}),
		transitions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "State machine transitions since start.",
		}),
		connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mqtt_connected",
			Help:      "1 while the broker connection is open.",
		}),
		queued: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mqtt_queued_messages",
			Help:      "Publications waiting for the broker connection.",
		}),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mqtt_messages_total",
			Help:      "Inbound messages handled, by kind and name.",
		}, []string{"kind", "name"}),
	}

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.state, c.position, c.distance, c.target, c.motion,
		c.transitions, c.connected, c.queued, c.messages,
	)
	return c
}

// Observe updates the gauges from a status snapshot.
func (c *Collector) Observe(snap status.Snapshot) {
	lift := snap.Lift
	for _, s := range logic.States() {
		c.state.WithLabelValues(s.String()).Set(boolValue(s == lift.State))
	}
	c.position.Set(lift.Position)
	c.distance.Set(lift.Distance)
	c.target.Set(lift.MoveTo)
	c.motion.Set(boolValue(lift.Motion))
	c.connected.Set(boolValue(snap.MQTTConnected))
	c.queued.Set(float64(snap.Queued))

	c.mu.Lock()
	if d := lift.Transitions - c.lastTransitions; d > 0 {
		c.transitions.Add(float64(d))
	}
	c.lastTransitions = lift.Transitions
	c.mu.Unlock()
}

// Message counts an inbound message.
func (c *Collector) Message(kind, name string) {
	c.messages.WithLabelValues(kind, name).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
