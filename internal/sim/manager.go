package sim

import (
	"log"
	"sync"
	"time"

	"metro-twin/internal/sched"
	"metro-twin/internal/twin"
)

// Manager owns the timer drivers for the lifetime of the process: the
// periodic mutator, the header clock and the simulation runner.
type Manager struct {
	sched          sched.Scheduler
	mutator        *Mutator
	clock          *Clock
	runner         *Runner
	mutateInterval time.Duration
	sink           func(twin.Field)

	mu     sync.Mutex
	timers []sched.Timer
}

func NewManager(s sched.Scheduler, mutator *Mutator, clock *Clock, runner *Runner, mutateInterval time.Duration, sink func(twin.Field)) *Manager {
	return &Manager{
		sched:          s,
		mutator:        mutator,
		clock:          clock,
		runner:         runner,
		mutateInterval: mutateInterval,
		sink:           sink,
	}
}

// Start arms the clock and the mutator. It must run on the scheduler thread.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.timers) > 0 {
		return
	}
	if m.clock != nil {
		m.timers = append(m.timers, m.clock.Start())
	}
	if m.mutator != nil && m.mutateInterval > 0 {
		m.timers = append(m.timers, m.mutator.Start(m.sched, m.mutateInterval, m.sink))
	}
	log.Printf("timers started (mutate every %s)", m.mutateInterval)
}

func (m *Manager) Runner() *Runner { return m.runner }

// Stop disarms every timer. A simulation already in flight still completes
// if the scheduler keeps running.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.timers {
		t.Stop()
	}
	m.timers = nil
}
