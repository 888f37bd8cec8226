// Package metrics instruments the optimizer pool. The Collector interface
// keeps callers decoupled from Prometheus; tests use the no-op collector.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/me/roadmap/pkg/model"
)

// Collector receives optimization events.
type Collector interface {
	// RoundCompleted records one finished pool round and its duration in
	// seconds.
	RoundCompleted(seconds float64)

	// CandidateReturned counts one worker result, improved or not.
	CandidateReturned(improved bool)

	// WorkerFailed counts an isolated worker failure.
	WorkerFailed()

	// BestScore publishes the running best.
	BestScore(s model.Score)
}

// Nop discards all metrics.
type Nop struct{}

func (Nop) RoundCompleted(float64)     {}
func (Nop) CandidateReturned(bool)     {}
func (Nop) WorkerFailed()              {}
func (Nop) BestScore(model.Score)      {}

// Prometheus implements Collector on a Prometheus registry.
type Prometheus struct {
	rounds        prometheus.Counter
	roundDuration prometheus.Histogram
	candidates    *prometheus.CounterVec
	failures      prometheus.Counter
	deadlinesMet  prometheus.Gauge
	lateness      prometheus.Gauge
	makespan      prometheus.Gauge
}

// NewPrometheus registers the pool metrics on reg (DefaultRegisterer when
// nil) under the "roadmap" namespace.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	p := &Prometheus{
		rounds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "roadmap", Subsystem: "pool",
			Name: "rounds_total",
			Help: "Total completed optimization rounds.",
		}),
		roundDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "roadmap", Subsystem: "pool",
			Name:    "round_duration_seconds",
			Help:    "Wall-clock duration of optimization rounds.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		candidates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "roadmap", Subsystem: "pool",
			Name: "candidates_total",
			Help: "Worker candidates returned, by outcome.",
		}, []string{"outcome"}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "roadmap", Subsystem: "pool",
			Name: "worker_failures_total",
			Help: "Isolated worker failures.",
		}),
		deadlinesMet: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "roadmap", Subsystem: "best",
			Name: "deadlines_met",
			Help: "Milestones met by the running best schedule.",
		}),
		lateness: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "roadmap", Subsystem: "best",
			Name: "total_lateness_days",
			Help: "Total lateness of the running best schedule in days.",
		}),
		makespan: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "roadmap", Subsystem: "best",
			Name: "makespan_days",
			Help: "Makespan of the running best schedule in working days.",
		}),
	}

	reg.MustRegister(p.rounds, p.roundDuration, p.candidates, p.failures,
		p.deadlinesMet, p.lateness, p.makespan)
	return p
}

func (p *Prometheus) RoundCompleted(seconds float64) {
	p.rounds.Inc()
	p.roundDuration.Observe(seconds)
}

func (p *Prometheus) CandidateReturned(improved bool) {
	outcome := "baseline"
	if improved {
		outcome = "improved"
	}
	p.candidates.WithLabelValues(outcome).Inc()
}

func (p *Prometheus) WorkerFailed() { p.failures.Inc() }

func (p *Prometheus) BestScore(s model.Score) {
	p.deadlinesMet.Set(float64(s.DeadlinesMet))
	p.lateness.Set(float64(s.TotalLateness))
	p.makespan.Set(float64(s.MakespanDays))
}
