// Package scheduler implements the emission scheduler (component D, §4.2):
// a single cooperative tick loop that collects a snapshot from a Registry
// and fans it out to every configured emitter, never letting one bad sink
// starve the others or stop the loop.
//
// The lifecycle mirrors the teacher's resource-manager checkpoint loop
// (engine/internal/resources/manager.go: NewManager spawns checkpointLoop
// under a sync.WaitGroup, Close closes a channel and waits) — here the
// ticker drives Collect+emit instead of a buffered write-behind log, and
// Stop plays the part of Close.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lowhung/buswatch/sdk/emit"
	"github.com/lowhung/buswatch/telemetry/health"
	"github.com/lowhung/buswatch/telemetry/logging"
	"github.com/lowhung/buswatch/telemetry/selfmetrics"
	"github.com/lowhung/buswatch/types"
)

// Collector is anything that can assemble a Snapshot on demand; sdk.Registry
// satisfies this.
type Collector interface {
	Collect() types.Snapshot
}

// NamedEmitter pairs an Emitter with a label used in logs, self-metrics, and
// health probe names.
type NamedEmitter struct {
	Name    string
	Emitter emit.Emitter
}

// Config configures a Scheduler.
type Config struct {
	Interval time.Duration
	Emitters []NamedEmitter

	Logger  logging.Logger
	Metrics *selfmetrics.Provider
	Health  *health.Evaluator
}

// Scheduler ticks a Collector on a fixed interval and fans each snapshot out
// to every configured emitter.
type Scheduler struct {
	collector Collector
	interval  time.Duration
	emitters  []NamedEmitter

	logger  logging.Logger
	metrics *selfmetrics.Provider

	tickCounter   selfmetrics.Counter
	collectGauge  selfmetrics.Gauge
	emitErrors    selfmetrics.Counter
	watchdog      *health.TickWatchdog
	emitterProbes map[string]*health.EmitterErrorCounter

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New creates a Scheduler. Call Start to begin ticking.
func New(collector Collector, cfg Config) *Scheduler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.New(nil)
	}

	s := &Scheduler{
		collector: collector,
		interval:  cfg.Interval,
		emitters:  cfg.Emitters,
		logger:    logger,
		metrics:   cfg.Metrics,
		stopCh:    make(chan struct{}),
	}

	if cfg.Metrics != nil {
		s.tickCounter = cfg.Metrics.NewCounter("scheduler_ticks_total", "scheduler ticks completed")
		s.collectGauge = cfg.Metrics.NewGauge("scheduler_collect_duration_seconds", "wall time of the most recent collect+emit pass")
		s.emitErrors = cfg.Metrics.NewCounter("emitter_errors_total", "emitter failures by emitter name", "emitter")
	}

	if cfg.Health != nil {
		s.watchdog = health.NewTickWatchdog(cfg.Interval)
		cfg.Health.Register(s.watchdog.Probe())
		s.emitterProbes = make(map[string]*health.EmitterErrorCounter, len(cfg.Emitters))
		for _, ne := range cfg.Emitters {
			ctr := health.NewEmitterErrorCounter("emitter_" + ne.Name)
			s.emitterProbes[ne.Name] = ctr
			cfg.Health.Register(ctr.Probe())
		}
	}

	return s
}

// Start spawns the tick loop. It is safe to call Stop at any point
// afterward, even before the first tick fires.
func (s *Scheduler) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.run(ctx)
}

// Stop signals the tick loop to terminate and waits for the in-flight tick,
// if any, to finish naturally. Idempotent.
func (s *Scheduler) Stop() {
	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()
	if s.interval <= 0 {
		s.interval = time.Second
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	start := time.Now()
	snap := s.collector.Collect()

	for _, ne := range s.emitters {
		if err := ne.Emitter.Emit(snap); err != nil {
			s.logger.WarnCtx(ctx, "emitter failed", slog.String("emitter", ne.Name), slog.Any("error", err))
			if s.emitErrors != nil {
				s.emitErrors.Inc(1, ne.Name)
			}
			if probe, ok := s.emitterProbes[ne.Name]; ok {
				probe.RecordFailure()
			}
			continue
		}
		if probe, ok := s.emitterProbes[ne.Name]; ok {
			probe.RecordSuccess()
		}
	}

	if s.watchdog != nil {
		s.watchdog.Tick()
	}
	if s.tickCounter != nil {
		s.tickCounter.Inc(1)
	}
	if s.collectGauge != nil {
		s.collectGauge.Set(time.Since(start).Seconds())
	}
}
