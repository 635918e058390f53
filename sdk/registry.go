// Package sdk is the in-process instrumentation core (§4.1): a lock-free-on
// -the-hot-path counter registry that turns per-call increments into
// consistent periodic snapshots.
//
// The registry is sharded the way the teacher's adaptive rate limiter shards
// per-domain state: callers hash to one of a small, fixed number of
// independently-locked shards, so the hot path never contends on a single
// global lock. Correctness only depends on per-series monotonicity, not
// cross-shard consistency — a collect() call is explicitly allowed to
// observe counters that are not mutually consistent at a single instant.
package sdk

import (
	"hash/fnv"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lowhung/buswatch/types"
)

// Registry is the process-wide module/topic registry (component B).
type Registry struct {
	moduleShards []*moduleShard
	topicShards  []*topicWriterShard
	mask         uint64
}

type moduleShard struct {
	mu      sync.RWMutex
	modules map[string]*moduleSeries
}

type topicWriterShard struct {
	mu       sync.RWMutex
	counters map[string]*atomic.Uint64
}

// NewRegistry creates an empty Registry sized to the host's parallelism.
func NewRegistry() *Registry {
	n := nextPow2(2 * runtime.GOMAXPROCS(0))
	if n < 1 {
		n = 1
	}
	r := &Registry{
		moduleShards: make([]*moduleShard, n),
		topicShards:  make([]*topicWriterShard, n),
		mask:         uint64(n - 1),
	}
	for i := range r.moduleShards {
		r.moduleShards[i] = &moduleShard{modules: make(map[string]*moduleSeries)}
		r.topicShards[i] = &topicWriterShard{counters: make(map[string]*atomic.Uint64)}
	}
	return r
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func shardIndex(key string, mask uint64) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return h.Sum64() & mask
}

func (r *Registry) moduleShardFor(name string) *moduleShard {
	return r.moduleShards[shardIndex(name, r.mask)]
}

func (r *Registry) topicShardFor(topic string) *topicWriterShard {
	return r.topicShards[shardIndex(topic, r.mask)]
}

// Register returns a ModuleHandle for name, creating a fresh series the
// first time name is seen and returning the existing live series on every
// subsequent call (idempotent per name).
func (r *Registry) Register(name string) *ModuleHandle {
	shard := r.moduleShardFor(name)

	shard.mu.RLock()
	series := shard.modules[name]
	shard.mu.RUnlock()
	if series != nil {
		return &ModuleHandle{name: name, series: series, registry: r}
	}

	shard.mu.Lock()
	series = shard.modules[name]
	if series == nil {
		series = newModuleSeries(name)
		shard.modules[name] = series
	}
	shard.mu.Unlock()
	return &ModuleHandle{name: name, series: series, registry: r}
}

// Unregister removes name from future Collect() calls. Outstanding handles
// obtained before the call keep mutating their (now orphaned) series; a
// later Register of the same name installs a brand new, independent series.
func (r *Registry) Unregister(name string) bool {
	shard := r.moduleShardFor(name)
	shard.mu.Lock()
	_, existed := shard.modules[name]
	delete(shard.modules, name)
	shard.mu.Unlock()
	return existed
}

// globalWriteCounter returns (creating if absent) the per-topic counter
// used exclusively for backlog computation across module boundaries.
func (r *Registry) globalWriteCounter(topic string) *atomic.Uint64 {
	shard := r.topicShardFor(topic)

	shard.mu.RLock()
	c := shard.counters[topic]
	shard.mu.RUnlock()
	if c != nil {
		return c
	}

	shard.mu.Lock()
	c = shard.counters[topic]
	if c == nil {
		c = &atomic.Uint64{}
		shard.counters[topic] = c
	}
	shard.mu.Unlock()
	return c
}

// Collect assembles a Snapshot per the algorithm in §4.1: one monotonic
// "now", one wall-clock timestamp, per-series rate memoization, and a final
// backlog resolution pass against the global write counters.
func (r *Registry) Collect() types.Snapshot {
	now := time.Now()
	snap := types.NewSnapshot(uint64(now.UnixMilli()))

	type pendingBacklog struct {
		module, topic string
		readCount     uint64
	}
	var backlogs []pendingBacklog

	for _, shard := range r.moduleShards {
		shard.mu.RLock()
		names := make([]string, 0, len(shard.modules))
		series := make([]*moduleSeries, 0, len(shard.modules))
		for name, s := range shard.modules {
			names = append(names, name)
			series = append(series, s)
		}
		shard.mu.RUnlock()

		for i, name := range names {
			mm := series[i].collect(now)
			snap.Modules[name] = mm
			for topic, rm := range mm.Reads {
				_ = rm
				backlogs = append(backlogs, pendingBacklog{module: name, topic: topic, readCount: mm.Reads[topic].Count})
			}
		}
	}

	for _, b := range backlogs {
		shard := r.topicShardFor(b.topic)
		shard.mu.RLock()
		counter := shard.counters[b.topic]
		shard.mu.RUnlock()
		if counter == nil {
			continue
		}
		globalWrite := counter.Load()
		if globalWrite > b.readCount {
			backlog := globalWrite - b.readCount
			rm := snap.Modules[b.module].Reads[b.topic]
			rm.Backlog = types.Uint64Ptr(backlog)
			snap.Modules[b.module].Reads[b.topic] = rm
		}
	}

	return snap
}
