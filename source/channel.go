package source

import (
	"sync"

	"github.com/lowhung/buswatch/types"
)

// ChannelSource is a push handle plus a watch-style receiver: the producer
// calls Push, and Poll returns the newest pushed value if Push has been
// called since the last value Poll returned — intermediate values are
// coalesced away, and
// the first Poll always surfaces the initial empty snapshot once so the UI
// has something to render immediately.
type ChannelSource struct {
	description string

	mu      sync.Mutex
	current types.Snapshot
	version uint64
	seen    uint64
	lastErr string
	hasErr  bool
}

// NewChannelSource creates a source with an initial empty snapshot queued.
func NewChannelSource(description string) *ChannelSource {
	return &ChannelSource{description: description, current: types.NewSnapshot(0), version: 1}
}

// Push makes snap the newest value. Safe for concurrent use with Poll.
func (s *ChannelSource) Push(snap types.Snapshot) {
	s.mu.Lock()
	s.current = snap
	s.version++
	s.mu.Unlock()
}

// SetError records an out-of-band error (e.g. an upstream decode failure)
// without advancing the snapshot version.
func (s *ChannelSource) SetError(msg string) {
	s.mu.Lock()
	s.lastErr = msg
	s.hasErr = true
	s.mu.Unlock()
}

func (s *ChannelSource) Description() string { return s.description }

func (s *ChannelSource) Error() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr, s.hasErr
}

// Poll returns the current value iff its version differs from the last one
// returned.
func (s *ChannelSource) Poll() (types.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.version == s.seen {
		return types.Snapshot{}, false
	}
	s.seen = s.version
	s.hasErr = false
	s.lastErr = ""
	return s.current, true
}
