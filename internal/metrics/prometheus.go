// Package metrics exposes the daemon's Prometheus instrumentation.
package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder holds the daemon's Prometheus metrics.
type Recorder struct {
	registry *prom.Registry

	focusChanges    prom.Counter
	records         prom.Counter
	recordSeconds   prom.Histogram
	storeErrors     prom.Counter
	idleTransitions *prom.CounterVec
	reconnects      prom.Counter
	publishErrors   prom.Counter
}

// NewRecorder constructs and registers the daemon metrics on reg.
// A nil reg gets a fresh registry with the standard Go process collectors.
func NewRecorder(reg *prom.Registry) *Recorder {
	if reg == nil {
		reg = prom.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	r := &Recorder{registry: reg}
	r.focusChanges = prom.NewCounter(prom.CounterOpts{
		Namespace: "appusage",
		Name:      "focus_changes_total",
		Help:      "Window focus changes observed from the compositor",
	})
	r.records = prom.NewCounter(prom.CounterOpts{
		Namespace: "appusage",
		Name:      "records_total",
		Help:      "Usage records written to the store",
	})
	r.recordSeconds = prom.NewHistogram(prom.HistogramOpts{
		Namespace: "appusage",
		Name:      "record_seconds",
		Help:      "Length of recorded usage intervals",
		Buckets:   []float64{1, 5, 15, 60, 300, 900, 1800, 3600},
	})
	r.storeErrors = prom.NewCounter(prom.CounterOpts{
		Namespace: "appusage",
		Name:      "store_errors_total",
		Help:      "Failed store writes",
	})
	r.idleTransitions = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "appusage",
		Name:      "idle_transitions_total",
		Help:      "Idle state transitions by direction",
	}, []string{"state"})
	r.reconnects = prom.NewCounter(prom.CounterOpts{
		Namespace: "appusage",
		Name:      "compositor_reconnects_total",
		Help:      "Reconnection attempts to the compositor socket",
	})
	r.publishErrors = prom.NewCounter(prom.CounterOpts{
		Namespace: "appusage",
		Name:      "publish_errors_total",
		Help:      "Failed NATS record publications",
	})
	reg.MustRegister(
		r.focusChanges, r.records, r.recordSeconds, r.storeErrors,
		r.idleTransitions, r.reconnects, r.publishErrors,
	)
	return r
}

func (r *Recorder) FocusChange()  { r.focusChanges.Inc() }
func (r *Recorder) StoreError()   { r.storeErrors.Inc() }
func (r *Recorder) Reconnect()    { r.reconnects.Inc() }
func (r *Recorder) PublishError() { r.publishErrors.Inc() }

func (r *Recorder) RecordWritten(d time.Duration) {
	r.records.Inc()
	r.recordSeconds.Observe(d.Seconds())
}

func (r *Recorder) IdleTransition(idle bool) {
	state := "active"
	if idle {
		state = "idle"
	}
	r.idleTransitions.WithLabelValues(state).Inc()
}

// Handler exposes the registry for the daemon's /metrics endpoint.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
