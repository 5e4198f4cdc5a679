// Package metrics exposes prometheus metrics about the runner's
// lifecycle, fed from the event bus and served over HTTP while the
// reactor runs.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smazurov/procrun/internal/events"
)

// Lifecycle holds the runner's prometheus collectors on a private
// registry.
type Lifecycle struct {
	registry *prometheus.Registry

	steps          *prometheus.CounterVec
	killRequests   prometheus.Counter
	reactorRunning prometheus.Gauge
	reactorUptime  prometheus.Gauge
	childExits     *prometheus.CounterVec

	unsubs []func()
}

// NewLifecycle creates the collectors and registers them alongside the
// standard go and process collectors.
func NewLifecycle() *Lifecycle {
	l := &Lifecycle{
		registry: prometheus.NewRegistry(),
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "procrun_lifecycle_steps_total",
			Help: "Lifecycle steps entered, by step name.",
		}, []string{"step"}),
		killRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "procrun_kill_requests_total",
			Help: "Termination signals sent to a prior instance.",
		}),
		reactorRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "procrun_reactor_running",
			Help: "Whether the reactor is currently active.",
		}),
		reactorUptime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "procrun_reactor_uptime_seconds",
			Help: "Uptime of the last completed reactor run.",
		}),
		childExits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "procrun_child_exits_total",
			Help: "Supervised command exits, by exit code.",
		}, []string{"exit_code"}),
	}

	l.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		l.steps,
		l.killRequests,
		l.reactorRunning,
		l.reactorUptime,
		l.childExits,
	)
	return l
}

// Observe subscribes the collectors to lifecycle events on the bus.
func (l *Lifecycle) Observe(bus *events.Bus) {
	l.unsubs = append(l.unsubs,
		bus.Subscribe(func(e events.StepEvent) {
			l.steps.WithLabelValues(e.Step).Inc()
		}),
		bus.Subscribe(func(_ events.KillRequestedEvent) {
			l.killRequests.Inc()
		}),
		bus.Subscribe(func(_ events.ReactorRunningEvent) {
			l.reactorRunning.Set(1)
		}),
		bus.Subscribe(func(e events.ReactorStoppedEvent) {
			l.reactorRunning.Set(0)
			l.reactorUptime.Set(e.Uptime.Seconds())
		}),
		bus.Subscribe(func(e events.ChildExitedEvent) {
			l.childExits.WithLabelValues(strconv.Itoa(e.ExitCode)).Inc()
		}),
	)
}

// Close unsubscribes from the bus.
func (l *Lifecycle) Close() {
	for _, unsub := range l.unsubs {
		unsub()
	}
	l.unsubs = nil
}

// Handler returns the HTTP handler serving the registry.
func (l *Lifecycle) Handler() http.Handler {
	return promhttp.HandlerFor(l.registry, promhttp.HandlerOpts{
		Timeout: 10 * time.Second,
	})
}

// StepEntered records a lifecycle step directly, bypassing the bus.
func (l *Lifecycle) StepEntered(step string) {
	l.steps.WithLabelValues(step).Inc()
}
