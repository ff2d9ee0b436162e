package sim

import (
	"time"

	"metro-twin/internal/sched"
)

// Clock pushes the current time to a sink once immediately and then every
// interval. It never touches the model.
type Clock struct {
	sched    sched.Scheduler
	interval time.Duration
	sink     func(now time.Time)
}

func NewClock(s sched.Scheduler, interval time.Duration, sink func(now time.Time)) *Clock {
	return &Clock{sched: s, interval: interval, sink: sink}
}

func (c *Clock) Start() sched.Timer {
	c.sink(c.sched.Now())
	return c.sched.Every(c.interval, func() { c.sink(c.sched.Now()) })
}
