package sim

import (
	"math/rand"
	"testing"
	"time"

	"metro-twin/internal/metrics"
	"metro-twin/internal/sched"
	"metro-twin/internal/twin"
)

var epoch = time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)

func TestMutatorStaysInBounds(t *testing.T) {
	d := twin.Seed()
	d.Operations.PassengerLoad = twin.MaxPassengerLoad
	d.Operations.Punctuality = twin.MinPunctuality
	m := NewMutator(d, rand.New(rand.NewSource(42)), DefaultMutatorOptions(), nil)

	last := d.LastStation()
	for i := 0; i < 20000; i++ {
		prevLoad, prevPunct := d.Operations.PassengerLoad, d.Operations.Punctuality
		m.Tick()
		op := d.Operations
		if op.PassengerLoad < twin.MinPassengerLoad || op.PassengerLoad > twin.MaxPassengerLoad {
			t.Fatalf("tick %d: passenger load %d out of bounds", i, op.PassengerLoad)
		}
		if op.Punctuality < twin.MinPunctuality || op.Punctuality > twin.MaxPunctuality {
			t.Fatalf("tick %d: punctuality %v out of bounds", i, op.Punctuality)
		}
		if diff := op.PassengerLoad - prevLoad; diff > 100 || diff < -100 {
			t.Fatalf("tick %d: load moved by %d", i, diff)
		}
		if diff := op.Punctuality - prevPunct; diff > 0.1+1e-9 || diff < -0.1-1e-9 {
			t.Fatalf("tick %d: punctuality moved by %v", i, diff)
		}
		for _, tr := range d.Trains {
			if tr.CurrentStation < 0 || tr.CurrentStation > last {
				t.Fatalf("tick %d: %s at station index %d", i, tr.ID, tr.CurrentStation)
			}
		}
	}
	if err := d.Validate(); err != nil {
		t.Errorf("model invalid after mutation: %v", err)
	}
}

func TestMutatorOnlyMovesInServiceTrains(t *testing.T) {
	d := twin.Seed()
	m := NewMutator(d, rand.New(rand.NewSource(1)), MutatorOptions{AdvanceProbability: 1}, nil)
	for i := 0; i < 20; i++ {
		m.Tick()
	}
	for _, tr := range d.Trains {
		switch tr.Status {
		case twin.InService:
			if tr.CurrentStation != d.LastStation() {
				t.Errorf("%s should have reached the terminal, at %d", tr.ID, tr.CurrentStation)
			}
		default:
			if tr.CurrentStation != 0 {
				t.Errorf("%s (%s) moved to %d", tr.ID, tr.Status, tr.CurrentStation)
			}
		}
	}
}

func TestMutatorReportsChangedFields(t *testing.T) {
	d := twin.Seed()
	d.Trains[0].CurrentStation = 0
	m := NewMutator(d, rand.New(rand.NewSource(1)), MutatorOptions{AdvanceProbability: 1}, nil)

	fields := m.Tick()
	if !fields.Has(twin.FieldOperations) || !fields.Has(twin.FieldTrainPositions) {
		t.Errorf("first tick fields = %b", fields)
	}

	for i := range d.Trains {
		d.Trains[i].CurrentStation = d.LastStation()
	}
	fields = m.Tick()
	if fields.Has(twin.FieldTrainPositions) {
		t.Error("no train moved, positions should not be reported")
	}

	still := NewMutator(d, rand.New(rand.NewSource(1)), MutatorOptions{AdvanceProbability: 0}, nil)
	d.Trains[0].CurrentStation = 0
	if still.Tick().Has(twin.FieldTrainPositions) {
		t.Error("probability 0 should never move a train")
	}
}

func TestMutatorSinkSeesCompletedTick(t *testing.T) {
	v := sched.NewVirtual(epoch)
	d := twin.Seed()
	col := metrics.NewCollector(5*time.Second, time.Second, 3*time.Second)
	m := NewMutator(d, rand.New(rand.NewSource(7)), DefaultMutatorOptions(), col)

	var seen []int
	m.Start(v, 5*time.Second, func(f twin.Field) {
		if !f.Has(twin.FieldOperations) {
			t.Errorf("sink got fields %b", f)
		}
		seen = append(seen, d.Operations.PassengerLoad)
	})

	v.Advance(4 * time.Second)
	if len(seen) != 0 {
		t.Fatalf("ticked before the interval: %v", seen)
	}
	v.Advance(21 * time.Second)
	if len(seen) != 5 {
		t.Fatalf("ticks = %d, want 5", len(seen))
	}
	if seen[4] != d.Operations.PassengerLoad {
		t.Errorf("sink saw %d, model holds %d", seen[4], d.Operations.PassengerLoad)
	}
}

type fakePresenter struct {
	started  []twin.Scenario
	finished []twin.Impact
	resets   int
}

func (p *fakePresenter) SimulationStarted(s twin.Scenario) { p.started = append(p.started, s) }
func (p *fakePresenter) SimulationFinished(im twin.Impact) { p.finished = append(p.finished, im) }
func (p *fakePresenter) SimulationReset()                  { p.resets++ }

func TestRunnerIgnoresRunWhileRunning(t *testing.T) {
	v := sched.NewVirtual(epoch)
	p := &fakePresenter{}
	r := NewRunner(v, rand.New(rand.NewSource(3)), p, 3*time.Second, nil)

	if !r.Run(twin.Scenario{Type: twin.TrainFailure, Asset: "KMRL-001"}) {
		t.Fatal("first run should start")
	}
	v.Advance(time.Second)
	if r.Run(twin.Scenario{Type: twin.WeatherImpact}) {
		t.Error("second run should be ignored")
	}
	if len(p.started) != 1 {
		t.Errorf("started %d runs", len(p.started))
	}

	v.Advance(time.Second)
	if len(p.finished) != 0 {
		t.Fatal("run finished before the latency elapsed")
	}
	v.Advance(time.Second)
	if len(p.finished) != 1 || r.Running() {
		t.Fatalf("finished = %d, running = %v", len(p.finished), r.Running())
	}

	if !r.Run(twin.Scenario{}) {
		t.Error("runner should accept a new run once idle")
	}
}

func TestRunnerEstimate(t *testing.T) {
	v := sched.NewVirtual(epoch)
	p := &fakePresenter{}
	r := NewRunner(v, rand.New(rand.NewSource(11)), p, 3*time.Second, nil)

	for i := 0; i < 50; i++ {
		r.Run(twin.Scenario{Type: "unknown", Duration: -5})
		v.Advance(3 * time.Second)
	}
	if len(p.finished) != 50 {
		t.Fatalf("finished %d runs", len(p.finished))
	}
	ids := map[string]bool{}
	for _, im := range p.finished {
		if im.AffectedServices < 2 || im.AffectedServices > 9 {
			t.Errorf("affected services %d", im.AffectedServices)
		}
		if im.PassengerImpact < 1000 || im.PassengerImpact >= 6000 {
			t.Errorf("passenger impact %d", im.PassengerImpact)
		}
		if im.RevenueLoss < 10000 || im.RevenueLoss >= 60000 {
			t.Errorf("revenue loss %d", im.RevenueLoss)
		}
		if im.RecoveryMinutes < 30 || im.RecoveryMinutes >= 90 {
			t.Errorf("recovery %d", im.RecoveryMinutes)
		}
		if im.AlternativeRoutes < 1 || im.AlternativeRoutes > 3 {
			t.Errorf("alternative routes %d", im.AlternativeRoutes)
		}
		if im.Scenario.Type != twin.TrainFailure || im.Scenario.Duration != twin.DefaultScenarioDuration {
			t.Errorf("scenario not normalized: %+v", im.Scenario)
		}
		ids[im.RunID.String()] = true
	}
	if len(ids) != 50 {
		t.Errorf("run ids not unique: %d distinct", len(ids))
	}
	if got := p.finished[0].CompletedAt; !got.Equal(epoch.Add(3 * time.Second)) {
		t.Errorf("first run completed at %v", got)
	}

	r.Reset()
	if p.resets != 1 {
		t.Errorf("resets = %d", p.resets)
	}
}

func TestClockFiresImmediatelyThenEveryInterval(t *testing.T) {
	v := sched.NewVirtual(epoch)
	var ticks []time.Time
	c := NewClock(v, time.Second, func(now time.Time) { ticks = append(ticks, now) })

	tm := c.Start()
	if len(ticks) != 1 || !ticks[0].Equal(epoch) {
		t.Fatalf("ticks after start = %v", ticks)
	}
	v.Advance(3 * time.Second)
	if len(ticks) != 4 {
		t.Fatalf("ticks = %d, want 4", len(ticks))
	}
	if !ticks[3].Equal(epoch.Add(3 * time.Second)) {
		t.Errorf("last tick at %v", ticks[3])
	}
	tm.Stop()
	v.Advance(3 * time.Second)
	if len(ticks) != 4 {
		t.Errorf("clock ticked after stop")
	}
}

func TestManagerStartStop(t *testing.T) {
	v := sched.NewVirtual(epoch)
	d := twin.Seed()
	clockTicks, refreshes := 0, 0
	m := NewManager(v,
		NewMutator(d, rand.New(rand.NewSource(1)), DefaultMutatorOptions(), nil),
		NewClock(v, time.Second, func(time.Time) { clockTicks++ }),
		NewRunner(v, rand.New(rand.NewSource(1)), &fakePresenter{}, 3*time.Second, nil),
		5*time.Second,
		func(twin.Field) { refreshes++ },
	)

	m.Start()
	m.Start()
	v.Advance(10 * time.Second)
	if clockTicks != 11 {
		t.Errorf("clock ticks = %d, want 11", clockTicks)
	}
	if refreshes != 2 {
		t.Errorf("refreshes = %d, want 2", refreshes)
	}
	if m.Runner() == nil {
		t.Fatal("runner missing")
	}

	m.Stop()
	if v.Pending() != 0 {
		t.Errorf("pending timers after stop = %d", v.Pending())
	}
}
