package emit

import "github.com/lowhung/buswatch/types"

// ChannelEmitter enqueues a clone of each snapshot onto a buffered channel,
// non-blocking. A full channel is not a failure: the policy is "prefer
// freshness", so the emission is dropped silently and Emit still reports
// success.
type ChannelEmitter struct {
	ch chan types.Snapshot
}

// NewChannelEmitter creates a ChannelEmitter backed by a channel of the
// given capacity, returning the emitter and the receive-only channel
// consumers should drain.
func NewChannelEmitter(capacity int) (*ChannelEmitter, <-chan types.Snapshot) {
	if capacity <= 0 {
		capacity = 1
	}
	ch := make(chan types.Snapshot, capacity)
	return &ChannelEmitter{ch: ch}, ch
}

func (e *ChannelEmitter) Emit(snap types.Snapshot) error {
	select {
	case e.ch <- snap.Clone():
	default:
		// Channel full: drop this emission silently, prefer freshness.
	}
	return nil
}
