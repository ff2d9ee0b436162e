package sim

import (
	"math/rand"
	"time"

	mmetrics "metro-twin/internal/metrics"
	"metro-twin/internal/sched"
	"metro-twin/internal/twin"
)

type MutatorOptions struct {
	// AdvanceProbability is the per-tick chance an in-service train moves
	// on to the next station.
	AdvanceProbability float64
	LoadStep           int     // passenger load moves by at most this much per tick
	PunctualityStep    float64 // punctuality moves by at most this much per tick
}

func DefaultMutatorOptions() MutatorOptions {
	return MutatorOptions{AdvanceProbability: 0.3, LoadStep: 100, PunctualityStep: 0.1}
}

// Mutator jitters the operations snapshot and moves trains along the line so
// the dashboard looks alive. Every mutation is bounded and total.
type Mutator struct {
	data    *twin.Data
	rng     *rand.Rand
	opts    MutatorOptions
	metrics *mmetrics.Collector
}

func NewMutator(data *twin.Data, rng *rand.Rand, opts MutatorOptions, metrics *mmetrics.Collector) *Mutator {
	if opts.LoadStep <= 0 {
		opts.LoadStep = 100
	}
	if opts.PunctualityStep <= 0 {
		opts.PunctualityStep = 0.1
	}
	opts.AdvanceProbability = twin.ClampFloat(opts.AdvanceProbability, 0, 1)
	return &Mutator{data: data, rng: rng, opts: opts, metrics: metrics}
}

// Tick applies one round of mutation and reports which fields changed.
func (m *Mutator) Tick() twin.Field {
	op := &m.data.Operations
	op.PassengerLoad += m.rng.Intn(2*m.opts.LoadStep) - m.opts.LoadStep
	op.PassengerLoad = twin.ClampInt(op.PassengerLoad, twin.MinPassengerLoad, twin.MaxPassengerLoad)
	op.Punctuality += (m.rng.Float64()*2 - 1) * m.opts.PunctualityStep
	op.Punctuality = twin.ClampFloat(op.Punctuality, twin.MinPunctuality, twin.MaxPunctuality)
	fields := twin.FieldOperations

	last := m.data.LastStation()
	advanced := 0
	for i := range m.data.Trains {
		t := &m.data.Trains[i]
		if t.Status != twin.InService || m.rng.Float64() >= m.opts.AdvanceProbability {
			continue
		}
		if next := min(last, t.CurrentStation+1); next != t.CurrentStation {
			t.CurrentStation = next
			advanced++
		}
	}
	if advanced > 0 {
		fields |= twin.FieldTrainPositions
	}

	if m.metrics != nil {
		m.metrics.MutatorTicks.Inc()
		m.metrics.TrainAdvances.Add(float64(advanced))
		m.metrics.PassengerLoad.Set(float64(op.PassengerLoad))
		m.metrics.Punctuality.Set(op.Punctuality)
	}
	return fields
}

// Start ticks every interval. The sink sees the changed fields in the same
// callback, after the mutation has completed.
func (m *Mutator) Start(s sched.Scheduler, interval time.Duration, sink func(twin.Field)) sched.Timer {
	return s.Every(interval, func() {
		start := time.Now()
		fields := m.Tick()
		if sink != nil {
			sink(fields)
		}
		if m.metrics != nil {
			m.metrics.TickDuration.Observe(time.Since(start).Seconds())
		}
	})
}
