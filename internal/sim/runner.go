package sim

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	mmetrics "metro-twin/internal/metrics"
	"metro-twin/internal/sched"
	"metro-twin/internal/twin"
)

// Presenter shows the runner's progress.
type Presenter interface {
	SimulationStarted(s twin.Scenario)
	SimulationFinished(im twin.Impact)
	SimulationReset()
}

// Runner is the what-if simulation: idle -> running -> idle. A started run
// always completes after the fixed latency; there is no cancel.
type Runner struct {
	sched   sched.Scheduler
	rng     *rand.Rand
	p       Presenter
	latency time.Duration
	metrics *mmetrics.Collector

	running bool
}

func NewRunner(s sched.Scheduler, rng *rand.Rand, p Presenter, latency time.Duration, metrics *mmetrics.Collector) *Runner {
	return &Runner{sched: s, rng: rng, p: p, latency: latency, metrics: metrics}
}

func (r *Runner) Running() bool { return r.running }

// Run starts a simulation of s. It is a no-op returning false while a run is
// already in progress.
func (r *Runner) Run(s twin.Scenario) bool {
	if r.running {
		if r.metrics != nil {
			r.metrics.SimulationsIgnored.Inc()
		}
		return false
	}
	s = s.Normalized()
	r.running = true
	r.p.SimulationStarted(s)
	if r.metrics != nil {
		r.metrics.SimulationsStarted.Inc()
		r.metrics.SimulationRunning.Set(1)
	}
	r.sched.After(r.latency, func() {
		r.p.SimulationFinished(r.estimate(s))
		r.running = false
		if r.metrics != nil {
			r.metrics.SimulationRunning.Set(0)
		}
	})
	return true
}

// Reset clears the results panel and restores default form values.
func (r *Runner) Reset() { r.p.SimulationReset() }

func (r *Runner) estimate(s twin.Scenario) twin.Impact {
	return twin.Impact{
		RunID:             uuid.New(),
		Scenario:          s,
		AffectedServices:  2 + r.rng.Intn(8),
		PassengerImpact:   1000 + r.rng.Intn(5000),
		RevenueLoss:       10000 + r.rng.Intn(50000),
		RecoveryMinutes:   30 + r.rng.Intn(60),
		AlternativeRoutes: 1 + r.rng.Intn(3),
		CompletedAt:       r.sched.Now(),
	}
}
