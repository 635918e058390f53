package sdk

import (
	"sync/atomic"
	"time"
)

// PendingToken is the state machine described in §4.1: Armed on creation,
// Released by Release. The transition is idempotent — double-release is a
// no-op — and a Release deferred by the caller clears the underlying
// series' pending_since cell on every exit path, including abnormal ones.
// SetReadPending/SetWritePending overwrite the cell but do not release an
// outstanding token; that token's later Release still clears the cell.
type PendingToken struct {
	series   *topicSeries
	released atomic.Bool
}

func newPendingToken(series *topicSeries) *PendingToken {
	now := time.Now()
	series.setPending(&now)
	return &PendingToken{series: series}
}

// Release transitions the token to Released, clearing pending_since. Safe
// to call more than once, and safe to call via defer on every return path.
func (t *PendingToken) Release() {
	if t == nil {
		return
	}
	if t.released.Swap(true) {
		return
	}
	t.series.setPending(nil)
}

// Released reports whether Release has already run.
func (t *PendingToken) Released() bool {
	if t == nil {
		return true
	}
	return t.released.Load()
}
