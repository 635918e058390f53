package sdk

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/lowhung/buswatch/types"
)

// moduleSeries holds one module's independent read and write topic series.
// Topic maps use the same shared-lock-to-read / exclusive-lock-to-create
// double-checked pattern as the registry's module map, just scoped smaller.
type moduleSeries struct {
	name string

	mu     sync.RWMutex
	reads  map[string]*topicSeries
	writes map[string]*topicSeries
}

func newModuleSeries(name string) *moduleSeries {
	return &moduleSeries{
		name:   name,
		reads:  make(map[string]*topicSeries),
		writes: make(map[string]*topicSeries),
	}
}

// topicSeries is one counter plus its pending cell and rate memo. The
// counter itself is lock-free; pending and the memo are guarded by a light
// mutex since they hold non-atomic multi-field state.
type topicSeries struct {
	count atomic.Uint64

	pendingMu    sync.RWMutex
	pendingSince *time.Time

	memoMu      sync.Mutex
	hasMemo     bool
	memoCount   uint64
	memoInstant time.Time
}

func (m *moduleSeries) getOrCreateRead(topic string) *topicSeries {
	return getOrCreate(&m.mu, m.reads, topic)
}

func (m *moduleSeries) getOrCreateWrite(topic string) *topicSeries {
	return getOrCreate(&m.mu, m.writes, topic)
}

// getOrCreate implements the registry's double-checked insertion contract
// for a single topic map guarded by mu.
func getOrCreate(mu *sync.RWMutex, m map[string]*topicSeries, topic string) *topicSeries {
	mu.RLock()
	ts := m[topic]
	mu.RUnlock()
	if ts != nil {
		return ts
	}
	mu.Lock()
	ts = m[topic]
	if ts == nil {
		ts = &topicSeries{}
		m[topic] = ts
	}
	mu.Unlock()
	return ts
}

func (t *topicSeries) add(delta uint64) {
	t.count.Add(delta)
}

func (t *topicSeries) setPending(since *time.Time) {
	t.pendingMu.Lock()
	t.pendingSince = since
	t.pendingMu.Unlock()
}

func (t *topicSeries) pending(now time.Time) *types.Microseconds {
	t.pendingMu.RLock()
	since := t.pendingSince
	t.pendingMu.RUnlock()
	if since == nil {
		return nil
	}
	v := types.FromDuration(now.Sub(*since))
	return &v
}

// rateAndMemo implements I2: computes the rate against the previous memo
// (or nil on first observation / sub-10ms intervals), then unconditionally
// writes back the new (count, now) memo.
func (t *topicSeries) rateAndMemo(now time.Time, count uint64) *float64 {
	t.memoMu.Lock()
	defer t.memoMu.Unlock()

	var rate *float64
	if t.hasMemo {
		elapsed := now.Sub(t.memoInstant)
		if elapsed >= 10*time.Millisecond {
			delta := count - t.memoCount
			r := float64(delta) / elapsed.Seconds()
			rate = &r
		}
	}
	t.hasMemo = true
	t.memoCount = count
	t.memoInstant = now
	return rate
}

// collect materializes this module's ModuleMetrics at instant now. Backlog
// resolution (I3) happens afterward at the registry level, across modules.
func (m *moduleSeries) collect(now time.Time) types.ModuleMetrics {
	mm := types.ModuleMetrics{Reads: map[string]types.ReadMetrics{}, Writes: map[string]types.WriteMetrics{}}

	m.mu.RLock()
	reads := make(map[string]*topicSeries, len(m.reads))
	for k, v := range m.reads {
		reads[k] = v
	}
	writes := make(map[string]*topicSeries, len(m.writes))
	for k, v := range m.writes {
		writes[k] = v
	}
	m.mu.RUnlock()

	for topic, ts := range reads {
		count := ts.count.Load()
		rate := ts.rateAndMemo(now, count)
		mm.Reads[topic] = types.ReadMetrics{
			Count:   count,
			Pending: ts.pending(now),
			Rate:    rate,
		}
	}
	for topic, ts := range writes {
		count := ts.count.Load()
		rate := ts.rateAndMemo(now, count)
		mm.Writes[topic] = types.WriteMetrics{
			Count:   count,
			Pending: ts.pending(now),
			Rate:    rate,
		}
	}
	return mm
}
