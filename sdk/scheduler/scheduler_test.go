package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowhung/buswatch/sdk/emit"
	"github.com/lowhung/buswatch/types"
)

type constCollector struct{ n atomic.Int64 }

func (c *constCollector) Collect() types.Snapshot {
	c.n.Add(1)
	return types.NewSnapshot(uint64(c.n.Load()))
}

type countingEmitter struct {
	emitted  atomic.Int64
	failNext atomic.Bool
}

func (e *countingEmitter) Emit(types.Snapshot) error {
	e.emitted.Add(1)
	if e.failNext.Swap(false) {
		return errors.New("boom")
	}
	return nil
}

func TestSchedulerTicksAndFansOut(t *testing.T) {
	collector := &constCollector{}
	good := &countingEmitter{}
	s := New(collector, Config{
		Interval: 10 * time.Millisecond,
		Emitters: []NamedEmitter{{Name: "good", Emitter: good}},
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	require.Eventually(t, func() bool { return good.emitted.Load() >= 2 }, time.Second, time.Millisecond)

	cancel()
	s.Stop()
}

func TestSchedulerSurvivesEmitterFailure(t *testing.T) {
	collector := &constCollector{}
	failing := &countingEmitter{}
	failing.failNext.Store(true)
	good := &countingEmitter{}

	s := New(collector, Config{
		Interval: 10 * time.Millisecond,
		Emitters: []NamedEmitter{
			{Name: "failing", Emitter: failing},
			{Name: "good", Emitter: good},
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	require.Eventually(t, func() bool { return good.emitted.Load() >= 2 }, time.Second, time.Millisecond)

	s.Stop()
	assert.GreaterOrEqual(t, failing.emitted.Load(), int64(1))
}

func TestSchedulerStopIsIdempotent(t *testing.T) {
	s := New(&constCollector{}, Config{Interval: time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	s.Stop()
	s.Stop()
}
