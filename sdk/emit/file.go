package emit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lowhung/buswatch/types"
)

// FileEmitter serializes each snapshot as pretty JSON and atomically
// replaces the target file's contents (write to a temp file, then rename
// over the target — no rotation).
type FileEmitter struct {
	Path string
}

// NewFileEmitter returns an Emitter that writes pretty-printed snapshots to
// path.
func NewFileEmitter(path string) *FileEmitter {
	return &FileEmitter{Path: path}
}

func (e *FileEmitter) Emit(snap types.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("buswatch: marshal snapshot: %w", err)
	}
	dir := filepath.Dir(e.Path)
	tmp, err := os.CreateTemp(dir, ".buswatch-snapshot-*.tmp")
	if err != nil {
		return fmt.Errorf("buswatch: create temp snapshot file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("buswatch: write temp snapshot file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("buswatch: close temp snapshot file: %w", err)
	}
	if err := os.Rename(tmpPath, e.Path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("buswatch: replace snapshot file: %w", err)
	}
	return nil
}
