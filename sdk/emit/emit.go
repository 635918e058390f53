// Package emit implements the snapshot emitter variants of §4.2: every
// emitter shares one best-effort emit contract so the scheduler can fan a
// snapshot out to heterogeneous sinks without any one of them starving the
// others or stopping the run.
package emit

import "github.com/lowhung/buswatch/types"

// Emitter is the contract every sink implements. A transient failure is
// reported but never retried by the caller; emitters are not expected to be
// thread-safe across concurrent Emit calls (callers are single-writer per
// emitter).
type Emitter interface {
	Emit(snap types.Snapshot) error
}
