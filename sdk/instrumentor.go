package sdk

import (
	"context"
	"net/http"
	"time"

	"github.com/lowhung/buswatch/sdk/emit"
	"github.com/lowhung/buswatch/sdk/scheduler"
	"github.com/lowhung/buswatch/telemetry/health"
	"github.com/lowhung/buswatch/telemetry/logging"
	"github.com/lowhung/buswatch/telemetry/selfmetrics"
	"github.com/lowhung/buswatch/types"
)

// Config configures an Instrumentor.
type Config struct {
	// Interval is how often the scheduler collects and emits a snapshot.
	Interval time.Duration
	// Emitters are fanned out to on every tick, in the order given.
	Emitters []scheduler.NamedEmitter
	// Logger receives scheduler/emitter diagnostics. Defaults to slog.Default().
	Logger logging.Logger
	// SelfMetrics, if set, instruments tick counts, collect duration, and
	// per-emitter failure counts via Prometheus client_golang.
	SelfMetrics *selfmetrics.Provider
	// Health, if set, is fed a scheduler tick watchdog and one probe per
	// configured emitter.
	Health *health.Evaluator
}

// Instrumentor composes the registry and the emission scheduler behind one
// facade, mirroring the teacher's Engine (engine/engine.go): a single
// constructor wiring together otherwise-independent subsystems, plus
// Start/Stop lifecycle methods and an HTTP handler for whichever emitter
// wants one.
type Instrumentor struct {
	registry  *Registry
	scheduler *scheduler.Scheduler
}

// New constructs an Instrumentor. Call Register before Start to add module
// handles; the registry is otherwise idle until Start is called.
func New(cfg Config) *Instrumentor {
	registry := NewRegistry()
	sched := scheduler.New(registry, scheduler.Config{
		Interval: cfg.Interval,
		Emitters: cfg.Emitters,
		Logger:   cfg.Logger,
		Metrics:  cfg.SelfMetrics,
		Health:   cfg.Health,
	})
	return &Instrumentor{registry: registry, scheduler: sched}
}

// Register returns a ModuleHandle for name (see Registry.Register).
func (in *Instrumentor) Register(name string) *ModuleHandle {
	return in.registry.Register(name)
}

// Unregister removes name from future collection (see Registry.Unregister).
func (in *Instrumentor) Unregister(name string) bool {
	return in.registry.Unregister(name)
}

// Collect assembles a snapshot on demand, independent of the scheduler's
// tick cadence.
func (in *Instrumentor) Collect() types.Snapshot {
	return in.registry.Collect()
}

// Start begins the scheduler's tick loop. The loop runs until ctx is
// cancelled or Stop is called.
func (in *Instrumentor) Start(ctx context.Context) {
	in.scheduler.Start(ctx)
}

// Stop signals the scheduler to terminate and waits for the in-flight tick
// to finish. Idempotent; dropping the Instrumentor without calling Stop
// leaves the tick goroutine running until its context is cancelled.
func (in *Instrumentor) Stop() {
	in.scheduler.Stop()
}

// PrometheusHandler returns an HTTP handler serving the given emitter's
// exposition text and health endpoints, if e is a *emit.PrometheusEmitter.
// evaluator, if non-nil, is served as JSON at /health/detail. Returns nil
// if e is not a *emit.PrometheusEmitter.
func PrometheusHandler(e emit.Emitter, metricsPath string, evaluator *health.Evaluator) http.Handler {
	pe, ok := e.(*emit.PrometheusEmitter)
	if !ok {
		return nil
	}
	return pe.Handler(metricsPath, evaluator)
}
