// Package source implements the snapshot sources of component F (§4.4):
// every variant satisfies a common non-blocking poll contract so the TUI's
// main loop can treat a file, a stream, a channel, or a bus subscription
// identically.
package source

import "github.com/lowhung/buswatch/types"

// Source is the contract every variant implements. Poll never blocks the
// calling goroutine.
type Source interface {
	// Poll returns a fresh snapshot if one has become available since the
	// last call, or false otherwise.
	Poll() (types.Snapshot, bool)
	// Description names this source for display (e.g. a file path or
	// connection string).
	Description() string
	// Error returns the last observed error message, cleared on the next
	// successful poll.
	Error() (string, bool)
}
