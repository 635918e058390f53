package source

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowhung/buswatch/types"
)

// TestFileSourceMtimeGate is scenario S5 from spec.md §8.
func TestFileSourceMtimeGate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snapshot.json")
	s := NewFileSource(path)

	_, ok := s.Poll()
	assert.False(t, ok)
	_, hasErr := s.Error()
	assert.True(t, hasErr)

	snap := types.NewSnapshot(1)
	data, err := json.Marshal(snap)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	got, ok := s.Poll()
	require.True(t, ok)
	assert.Equal(t, snap, got)

	_, ok = s.Poll()
	assert.False(t, ok)

	time.Sleep(10 * time.Millisecond)
	snap2 := types.NewSnapshot(2)
	data2, err := json.Marshal(snap2)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data2, 0o644))

	got2, ok := s.Poll()
	require.True(t, ok)
	assert.Equal(t, snap2, got2)
}
