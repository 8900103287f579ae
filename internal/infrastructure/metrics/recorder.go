// Package metrics exposes Prometheus instruments for command processing and
// queue transport.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/depthchart-hub/depth-chart-hub/internal/interface/interpreter"
)

const namespace = "depthchart"

// Recorder holds the service's Prometheus collectors on a private registry.
// A nil *Recorder records nothing.
type Recorder struct {
	registry *prometheus.Registry

	commands        *prometheus.CounterVec
	commandDuration *prometheus.HistogramVec
	transportErrors *prometheus.CounterVec
	journalState    *prometheus.GaugeVec
	queueDepth      *prometheus.GaugeVec
	jobRuns         *prometheus.CounterVec
}

var _ interpreter.Observer = (*Recorder)(nil)

// NewRecorder registers all collectors on a fresh registry, together with
// the Go runtime and process collectors.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Payloads processed, by sport, command type and status.",
		}, []string{"sport", "type", "status"}),
		commandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Time spent processing one payload.",
			Buckets:   []float64{.00005, .0001, .00025, .0005, .001, .0025, .005, .01, .05},
		}, []string{"sport", "type"}),
		transportErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transport_errors_total",
			Help:      "Failed queue pops, by queue.",
		}, []string{"queue"}),
		journalState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "journal_circuit_state",
			Help:      "Journal circuit breaker state: 0 closed, 1 open, 2 half-open.",
		}, []string{"breaker"}),
		queueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_depth",
			Help:      "Payloads waiting on a sport queue at the last sample.",
		}, []string{"sport", "queue"}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduler_job_runs_total",
			Help:      "Housekeeping job runs, by job and result.",
		}, []string{"job", "result"}),
	}
	reg.MustRegister(
		r.commands,
		r.commandDuration,
		r.transportErrors,
		r.journalState,
		r.queueDepth,
		r.jobRuns,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Observe implements interpreter.Observer.
func (r *Recorder) Observe(_ context.Context, o interpreter.Outcome) {
	if r == nil {
		return
	}
	typ := o.Type
	if typ == "" {
		typ = "none"
	}
	r.commands.WithLabelValues(o.Sport, typ, string(o.Status)).Inc()
	if o.Status != interpreter.StatusIgnored {
		r.commandDuration.WithLabelValues(o.Sport, typ).Observe(o.Duration.Seconds())
	}
}

// RecordTransportError counts a failed pop on queue.
func (r *Recorder) RecordTransportError(queue string, _ error) {
	if r == nil {
		return
	}
	r.transportErrors.WithLabelValues(queue).Inc()
}

// SetBreakerState records a circuit breaker state as a gauge value.
func (r *Recorder) SetBreakerState(name string, state int) {
	if r == nil {
		return
	}
	r.journalState.WithLabelValues(name).Set(float64(state))
}

// SetQueueDepth records the sampled length of a sport queue.
func (r *Recorder) SetQueueDepth(sport, queue string, depth int64) {
	if r == nil {
		return
	}
	r.queueDepth.WithLabelValues(sport, queue).Set(float64(depth))
}

// RecordJobRun counts one scheduler job run.
func (r *Recorder) RecordJobRun(job string, success bool) {
	if r == nil {
		return
	}
	result := "success"
	if !success {
		result = "failure"
	}
	r.jobRuns.WithLabelValues(job, result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
