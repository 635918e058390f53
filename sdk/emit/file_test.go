package emit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowhung/buswatch/types"
)

func TestFileEmitterWritesPrettyJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snapshot.json")
	e := NewFileEmitter(path)

	snap := types.NewSnapshot(123)
	snap.Modules["api"] = types.ModuleMetrics{
		Reads:  map[string]types.ReadMetrics{},
		Writes: map[string]types.WriteMetrics{"orders": {Count: 10}},
	}
	require.NoError(t, e.Emit(snap))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  ")

	var decoded types.Snapshot
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, snap, decoded)
}

func TestFileEmitterReplacesExistingContents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snapshot.json")
	e := NewFileEmitter(path)

	require.NoError(t, e.Emit(types.NewSnapshot(1)))
	require.NoError(t, e.Emit(types.NewSnapshot(2)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded types.Snapshot
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.EqualValues(t, 2, decoded.TimestampMs)
}
