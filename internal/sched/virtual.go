package sched

import (
	"context"
	"sort"
	"time"
)

// Virtual is a deterministic scheduler for tests. Time only moves when
// Advance is called, and due callbacks run on the caller's goroutine in
// due-time order (ties in scheduling order).
type Virtual struct {
	now    time.Time
	seq    uint64
	timers []*vtimer
}

type vtimer struct {
	v       *Virtual
	due     time.Time
	period  time.Duration
	seq     uint64
	fn      func()
	stopped bool
}

func NewVirtual(start time.Time) *Virtual { return &Virtual{now: start} }

func (v *Virtual) Now() time.Time { return v.now }

func (v *Virtual) After(d time.Duration, fn func()) Timer { return v.add(d, 0, fn) }

func (v *Virtual) Every(d time.Duration, fn func()) Timer { return v.add(d, d, fn) }

// Do runs fn immediately; the caller is already the only thread.
func (v *Virtual) Do(_ context.Context, fn func()) error {
	fn()
	return nil
}

func (v *Virtual) add(d, period time.Duration, fn func()) *vtimer {
	v.seq++
	t := &vtimer{v: v, due: v.now.Add(d), period: period, seq: v.seq, fn: fn}
	v.timers = append(v.timers, t)
	return t
}

func (t *vtimer) Stop() bool {
	if t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves the clock forward by d, firing every callback that comes due.
func (v *Virtual) Advance(d time.Duration) {
	end := v.now.Add(d)
	for {
		t := v.next(end)
		if t == nil {
			break
		}
		v.now = t.due
		if t.period > 0 {
			t.due = t.due.Add(t.period)
			v.seq++
			t.seq = v.seq
		} else {
			t.stopped = true
		}
		t.fn()
	}
	v.now = end
}

// Pending is the number of timers that have not fired or been stopped.
func (v *Virtual) Pending() int {
	v.compact()
	return len(v.timers)
}

func (v *Virtual) next(end time.Time) *vtimer {
	v.compact()
	sort.SliceStable(v.timers, func(i, j int) bool {
		a, b := v.timers[i], v.timers[j]
		if !a.due.Equal(b.due) {
			return a.due.Before(b.due)
		}
		return a.seq < b.seq
	})
	if len(v.timers) == 0 || v.timers[0].due.After(end) {
		return nil
	}
	return v.timers[0]
}

func (v *Virtual) compact() {
	live := v.timers[:0]
	for _, t := range v.timers {
		if !t.stopped {
			live = append(live, t)
		}
	}
	v.timers = live
}
