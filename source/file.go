package source

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/lowhung/buswatch/types"
)

// FileSource polls a path for snapshot JSON, gated on the file's mtime
// advancing since the last successful read — grounded in the teacher's
// hot-reload watcher's "only act if Op&Write" gate
// (engine/internal/runtime/runtime.go), adapted from an fsnotify event
// stream to a plain stat-based poll since scenario S5 requires Poll to
// return None on unmodified files even without an intervening fsnotify
// event loop running.
type FileSource struct {
	path string

	mu      sync.Mutex
	lastMod time.Time
	lastErr string
	hasErr  bool
}

// NewFileSource creates a source over path. The file need not exist yet.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Description() string { return s.path }

func (s *FileSource) Error() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr, s.hasErr
}

// Poll stats path; if its mtime has advanced since the last successful
// read, reads and parses it. Read/parse failures set Error and do not
// advance the mtime cursor, so a transient write-in-progress failure is
// retried on the next poll once the mtime settles.
func (s *FileSource) Poll() (types.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := os.Stat(s.path)
	if err != nil {
		s.setErrLocked(err.Error())
		return types.Snapshot{}, false
	}
	if !info.ModTime().After(s.lastMod) {
		return types.Snapshot{}, false
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		s.setErrLocked(err.Error())
		return types.Snapshot{}, false
	}

	var snap types.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.setErrLocked(err.Error())
		return types.Snapshot{}, false
	}

	s.lastMod = info.ModTime()
	s.hasErr = false
	s.lastErr = ""
	return snap, true
}

func (s *FileSource) setErrLocked(msg string) {
	s.hasErr = true
	s.lastErr = msg
}
