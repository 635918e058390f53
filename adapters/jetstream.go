package adapters

import (
	"context"

	"github.com/lowhung/buswatch/types"
)

// ConsumerState is one JetStream consumer's delivery progress against its
// parent stream.
type ConsumerState struct {
	Name               string
	DeliveredStreamSeq uint64
}

// StreamState is one JetStream stream and its attached consumers.
type StreamState struct {
	Name           string
	StreamMessages uint64
	Consumers      []ConsumerState
}

// StreamSource abstracts the JetStream/NATS client this adapter reads from,
// keeping the wire protocol itself out of scope per spec.md's non-goals.
type StreamSource interface {
	Streams(ctx context.Context) ([]StreamState, error)
}

// JetStreamAdapter implements the JetStream-like adapter of spec.md §4.3:
// one module per stream, one write series for the stream's own message
// count, one read series per consumer.
type JetStreamAdapter struct {
	source StreamSource
}

// NewJetStreamAdapter wraps source.
func NewJetStreamAdapter(source StreamSource) *JetStreamAdapter {
	return &JetStreamAdapter{source: source}
}

// Collect enumerates streams and their consumers.
func (a *JetStreamAdapter) Collect(ctx context.Context) (types.Snapshot, error) {
	const op = "jetstream.collect"

	streams, err := a.source.Streams(ctx)
	if err != nil {
		return types.Snapshot{}, classifySourceErr(op, err)
	}

	snap := types.NewSnapshot(0)
	for _, s := range streams {
		mm := types.ModuleMetrics{
			Reads: map[string]types.ReadMetrics{},
			Writes: map[string]types.WriteMetrics{
				"stream": {Count: s.StreamMessages},
			},
		}
		for _, c := range s.Consumers {
			mm.Reads[c.Name] = types.ReadMetrics{
				Count:   c.DeliveredStreamSeq,
				Backlog: types.Uint64Ptr(saturatingSub(s.StreamMessages, c.DeliveredStreamSeq)),
			}
		}
		snap.Modules[s.Name] = mm
	}
	return snap, nil
}

func saturatingSub(a, b uint64) uint64 {
	if b >= a {
		return 0
	}
	return a - b
}
