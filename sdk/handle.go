package sdk

import "time"

// ModuleHandle is the cheap, cloneable public handle returned by
// Register. It carries a shared reference to the module's series and to the
// registry that owns the global per-topic write counters, so that
// RecordWrite can update both in one call.
type ModuleHandle struct {
	name     string
	series   *moduleSeries
	registry *Registry
}

// Name returns the module name this handle was registered under.
func (h *ModuleHandle) Name() string { return h.name }

// RecordRead adds count to topic's read counter.
func (h *ModuleHandle) RecordRead(topic string, count uint64) {
	h.series.getOrCreateRead(topic).add(count)
}

// RecordWrite adds count to topic's write counter on this module and to the
// topic's global writer counter used for cross-module backlog computation.
func (h *ModuleHandle) RecordWrite(topic string, count uint64) {
	h.series.getOrCreateWrite(topic).add(count)
	h.registry.globalWriteCounter(topic).Add(count)
}

// StartRead arms a pending token for topic: the series' pending_since is set
// to now, and stays set until the returned token is released. Re-entry
// overwrites the cell with the latest start time — overlapping tokens on the
// same series reduce to latest-wins, there is no nesting counter.
func (h *ModuleHandle) StartRead(topic string) *PendingToken {
	return newPendingToken(h.series.getOrCreateRead(topic))
}

// StartWrite is the write-side analogue of StartRead.
func (h *ModuleHandle) StartWrite(topic string) *PendingToken {
	return newPendingToken(h.series.getOrCreateWrite(topic))
}

// SetReadPending imperatively overrides the pending cell for callers that
// compute pending duration externally. Pass nil to clear it.
func (h *ModuleHandle) SetReadPending(topic string, since *time.Time) {
	h.series.getOrCreateRead(topic).setPending(since)
}

// SetWritePending is the write-side analogue of SetReadPending.
func (h *ModuleHandle) SetWritePending(topic string, since *time.Time) {
	h.series.getOrCreateWrite(topic).setPending(since)
}
