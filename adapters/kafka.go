package adapters

import (
	"context"

	"github.com/lowhung/buswatch/types"
)

// TopicOffsets is one topic's committed-offset and high-watermark state for
// a single consumer group, as read from whatever stream client the
// OffsetSource wraps.
type TopicOffsets struct {
	Topic     string
	Committed uint64
	High      uint64
}

// OffsetSource abstracts the stream client enough that KafkaAdapter never
// depends on a concrete wire protocol — per spec.md's non-goals, the
// Kafka/NATS wire protocols themselves stay out of scope; only the shape of
// offsets and high-watermarks this adapter reads is in scope.
type OffsetSource interface {
	// Groups enumerates consumer group IDs.
	Groups(ctx context.Context) ([]string, error)
	// Offsets enumerates per-topic committed offsets and high watermarks for
	// group. An empty slice means the group has no committed offsets and is
	// skipped entirely by Collect.
	Offsets(ctx context.Context, group string) ([]TopicOffsets, error)
}

// KafkaAdapter implements the stream offset adapter of spec.md §4.3: one
// module per consumer group, read count the sum of committed offsets across
// its topics, backlog the sum of (high - committed) clamped to >= 0.
type KafkaAdapter struct {
	source OffsetSource
}

// NewKafkaAdapter wraps source.
func NewKafkaAdapter(source OffsetSource) *KafkaAdapter {
	return &KafkaAdapter{source: source}
}

// Collect enumerates groups and topics, skipping groups with no committed
// offsets.
func (a *KafkaAdapter) Collect(ctx context.Context) (types.Snapshot, error) {
	const op = "kafka.collect"

	groups, err := a.source.Groups(ctx)
	if err != nil {
		return types.Snapshot{}, classifySourceErr(op, err)
	}

	snap := types.NewSnapshot(0)
	for _, group := range groups {
		offsets, err := a.source.Offsets(ctx, group)
		if err != nil {
			return types.Snapshot{}, classifySourceErr(op, err)
		}
		if len(offsets) == 0 {
			continue
		}

		var committedSum, backlogSum uint64
		for _, o := range offsets {
			committedSum += o.Committed
			if o.High > o.Committed {
				backlogSum += o.High - o.Committed
			}
		}

		snap.Modules[group] = types.ModuleMetrics{
			Reads: map[string]types.ReadMetrics{
				"messages": {
					Count:   committedSum,
					Backlog: types.Uint64Ptr(backlogSum),
				},
			},
			Writes: map[string]types.WriteMetrics{},
		}
	}
	return snap, nil
}

// classifySourceErr wraps an arbitrary OffsetSource error as a Connection
// error, since the concrete client is a collaborator this adapter never
// inspects — a source that wants a more specific Kind can return an *Error
// directly, which errors.As-style unwrapping in the caller still sees.
func classifySourceErr(op string, err error) error {
	if adapterErr, ok := err.(*Error); ok {
		return adapterErr
	}
	return newErr(KindConnection, op, err)
}
