package emit

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/lowhung/buswatch/types"
)

// OTLPEmitter records each numeric field of a snapshot as a labeled gauge on
// an OTel Meter. Attributes carry module and topic; flushing to a backend is
// the responsibility of whatever MeterProvider/exporter/PeriodicReader the
// caller wired up — this emitter only keeps the latest snapshot for the
// provider's observable-gauge callbacks to read at its own collection
// cadence, mirroring the teacher's OTel provider bridge
// (engine/telemetry/metrics/otel_provider.go) adapted from synchronous
// counters to the "latest value" push-on-read shape the spec calls for.
type OTLPEmitter struct {
	mu   sync.RWMutex
	snap *types.Snapshot
}

// NewOTLPEmitter registers one observable gauge per exported field on
// meter and returns an emitter whose Emit calls feed their callbacks.
func NewOTLPEmitter(meter metric.Meter) (*OTLPEmitter, error) {
	e := &OTLPEmitter{}

	readCount, err := meter.Float64ObservableGauge("buswatch.read.count", metric.WithDescription("messages observed as read"))
	if err != nil {
		return nil, err
	}
	writeCount, err := meter.Float64ObservableGauge("buswatch.write.count", metric.WithDescription("messages observed as written"))
	if err != nil {
		return nil, err
	}
	readBacklog, err := meter.Float64ObservableGauge("buswatch.read.backlog", metric.WithDescription("unread estimate for a read series"))
	if err != nil {
		return nil, err
	}
	readRate, err := meter.Float64ObservableGauge("buswatch.read.rate", metric.WithDescription("messages per second for a read series"))
	if err != nil {
		return nil, err
	}
	writeRate, err := meter.Float64ObservableGauge("buswatch.write.rate", metric.WithDescription("messages per second for a write series"))
	if err != nil {
		return nil, err
	}

	_, err = meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		snap, ok := e.latest()
		if !ok {
			return nil
		}
		eachRead(snap, func(module, topic string, rm types.ReadMetrics) {
			attrs := metric.WithAttributes(moduleTopicAttrs(module, topic)...)
			o.ObserveFloat64(readCount, float64(rm.Count), attrs)
			if rm.Backlog != nil {
				o.ObserveFloat64(readBacklog, float64(*rm.Backlog), attrs)
			}
			if rm.Rate != nil {
				o.ObserveFloat64(readRate, *rm.Rate, attrs)
			}
		})
		eachWrite(snap, func(module, topic string, wm types.WriteMetrics) {
			attrs := metric.WithAttributes(moduleTopicAttrs(module, topic)...)
			o.ObserveFloat64(writeCount, float64(wm.Count), attrs)
			if wm.Rate != nil {
				o.ObserveFloat64(writeRate, *wm.Rate, attrs)
			}
		})
		return nil
	}, readCount, writeCount, readBacklog, readRate, writeRate)
	if err != nil {
		return nil, err
	}

	return e, nil
}

func (e *OTLPEmitter) Emit(snap types.Snapshot) error {
	cloned := snap.Clone()
	e.mu.Lock()
	e.snap = &cloned
	e.mu.Unlock()
	return nil
}

func (e *OTLPEmitter) latest() (types.Snapshot, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.snap == nil {
		return types.Snapshot{}, false
	}
	return *e.snap, true
}

func moduleTopicAttrs(module, topic string) []attribute.KeyValue {
	return []attribute.KeyValue{attribute.String("module", module), attribute.String("topic", topic)}
}

func eachRead(snap types.Snapshot, fn func(module, topic string, rm types.ReadMetrics)) {
	for module, mm := range snap.Modules {
		for topic, rm := range mm.Reads {
			fn(module, topic, rm)
		}
	}
}

func eachWrite(snap types.Snapshot, fn func(module, topic string, wm types.WriteMetrics)) {
	for module, mm := range snap.Modules {
		for topic, wm := range mm.Writes {
			fn(module, topic, wm)
		}
	}
}
