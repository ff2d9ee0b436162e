// Package sched runs every controller callback on a single logical thread.
package sched

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// Scheduler defers callbacks. Implementations guarantee callbacks never run
// concurrently with each other, and each runs to completion.
type Scheduler interface {
	Now() time.Time
	After(d time.Duration, fn func()) Timer
	Every(d time.Duration, fn func()) Timer
}

// Executor runs fn on the scheduler's thread and waits for it.
type Executor interface {
	Do(ctx context.Context, fn func()) error
}

type Timer interface {
	Stop() bool
}

var ErrStopped = errors.New("sched: loop stopped")

// Loop is the real-time scheduler: timers fire on runtime goroutines but
// only post their callback; Run executes posted callbacks one at a time.
type Loop struct {
	tasks chan func()
	done  chan struct{}
}

func NewLoop(buffer int) *Loop {
	return &Loop{tasks: make(chan func(), buffer), done: make(chan struct{})}
}

// Run executes posted callbacks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-l.tasks:
			fn()
		}
	}
}

// Post queues fn. It reports false once the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.tasks <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Do runs fn on the loop and waits for it. If ctx ends while fn is still
// queued, fn is dropped and ctx.Err() returned; once fn has started, Do
// waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	const (
		queued int32 = iota
		running
		dropped
	)
	var state atomic.Int32
	finished := make(chan struct{})
	task := func() {
		if !state.CompareAndSwap(queued, running) {
			return
		}
		defer close(finished)
		fn()
	}
	select {
	case <-l.done:
		return ErrStopped
	default:
	}
	select {
	case l.tasks <- task:
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrStopped
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		if state.CompareAndSwap(queued, dropped) {
			return ctx.Err()
		}
		<-finished
		return nil
	case <-l.done:
		if state.CompareAndSwap(queued, dropped) {
			return ErrStopped
		}
		<-finished
		return nil
	}
}

func (l *Loop) Now() time.Time { return time.Now() }

func (l *Loop) After(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, func() { l.Post(fn) })
}

func (l *Loop) Every(d time.Duration, fn func()) Timer {
	t := &ticker{t: time.NewTicker(d), stop: make(chan struct{})}
	go func() {
		defer t.t.Stop()
		for {
			select {
			case <-t.stop:
				return
			case <-l.done:
				return
			case <-t.t.C:
				l.Post(fn)
			}
		}
	}()
	return t
}

type ticker struct {
	t    *time.Ticker
	stop chan struct{}
	once sync.Once
}

func (t *ticker) Stop() bool {
	stopped := false
	t.once.Do(func() {
		close(t.stop)
		stopped = true
	})
	return stopped
}
