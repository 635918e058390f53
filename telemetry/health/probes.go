package health

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// TickWatchdog tracks the wall-clock time of the scheduler's most recent
// successful Collect/emit cycle and reports degraded/unhealthy once that
// tick falls too far behind the configured interval — the buswatch-side
// analogue of the teacher's resource-manager checkpoint watchdog.
type TickWatchdog struct {
	lastTickUnixNano atomic.Int64
	interval         time.Duration
}

// NewTickWatchdog creates a watchdog for a scheduler ticking every interval.
// Call Tick() once per successful cycle.
func NewTickWatchdog(interval time.Duration) *TickWatchdog {
	w := &TickWatchdog{interval: interval}
	w.Tick()
	return w
}

// Tick records that a scheduler cycle just completed.
func (w *TickWatchdog) Tick() {
	w.lastTickUnixNano.Store(time.Now().UnixNano())
}

// Probe reports degraded past 3x the interval since the last tick, and
// unhealthy past 10x.
func (w *TickWatchdog) Probe() Probe {
	return ProbeFunc(func(ctx context.Context) ProbeResult {
		last := time.Unix(0, w.lastTickUnixNano.Load())
		age := time.Since(last)
		switch {
		case w.interval <= 0:
			return Healthy("scheduler_tick")
		case age > 10*w.interval:
			return Unhealthy("scheduler_tick", fmt.Sprintf("no tick in %s (interval %s)", age.Round(time.Millisecond), w.interval))
		case age > 3*w.interval:
			return Degraded("scheduler_tick", fmt.Sprintf("tick lagging: %s since last (interval %s)", age.Round(time.Millisecond), w.interval))
		default:
			return Healthy("scheduler_tick")
		}
	})
}

// EmitterErrorCounter tracks consecutive emitter failures for one named
// emitter; the scheduler resets it to zero on every successful Emit call.
type EmitterErrorCounter struct {
	name        string
	consecutive atomic.Int64
}

// NewEmitterErrorCounter creates a counter for the named emitter.
func NewEmitterErrorCounter(name string) *EmitterErrorCounter {
	return &EmitterErrorCounter{name: name}
}

// RecordSuccess resets the consecutive-failure count.
func (c *EmitterErrorCounter) RecordSuccess() { c.consecutive.Store(0) }

// RecordFailure increments the consecutive-failure count.
func (c *EmitterErrorCounter) RecordFailure() { c.consecutive.Add(1) }

// Probe reports degraded at 3 consecutive failures, unhealthy at 10.
func (c *EmitterErrorCounter) Probe() Probe {
	return ProbeFunc(func(ctx context.Context) ProbeResult {
		n := c.consecutive.Load()
		switch {
		case n >= 10:
			return Unhealthy(c.name, fmt.Sprintf("%d consecutive emit failures", n))
		case n >= 3:
			return Degraded(c.name, fmt.Sprintf("%d consecutive emit failures", n))
		default:
			return Healthy(c.name)
		}
	})
}
