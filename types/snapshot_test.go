package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaVersionCompatibility(t *testing.T) {
	cur := CurrentVersion()
	assert.True(t, cur.IsCompatible())
	assert.True(t, SchemaVersion{Major: cur.Major, Minor: cur.Minor + 5}.IsCompatible())
	assert.False(t, SchemaVersion{Major: cur.Major + 1, Minor: cur.Minor}.IsCompatible())
}

func TestSnapshotOmitsAbsentOptionalFields(t *testing.T) {
	snap := NewSnapshot(1000)
	snap.Modules["processor"] = ModuleMetrics{
		Reads: map[string]ReadMetrics{
			"orders": {Count: 950, Backlog: Uint64Ptr(50)},
		},
		Writes: map[string]WriteMetrics{
			"notifications": {Count: 950},
		},
	}

	raw, err := json.Marshal(snap)
	require.NoError(t, err)
	s := string(raw)

	assert.Contains(t, s, `"count":950,"backlog":50`)
	assert.NotContains(t, s, "pending")
	assert.NotContains(t, s, "rate")
}

func TestSnapshotRoundTripsThroughJSON(t *testing.T) {
	snap := NewSnapshot(42)
	snap.Modules["api"] = ModuleMetrics{
		Reads: map[string]ReadMetrics{},
		Writes: map[string]WriteMetrics{
			"orders": {Count: 1000, Rate: Float64Ptr(12.5)},
		},
	}

	raw, err := json.Marshal(snap)
	require.NoError(t, err)

	var decoded Snapshot
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, snap, decoded)
}

func TestSnapshotCloneIsIndependent(t *testing.T) {
	snap := NewSnapshot(1)
	snap.Modules["api"] = ModuleMetrics{
		Reads:  map[string]ReadMetrics{"t": {Count: 1, Backlog: Uint64Ptr(2)}},
		Writes: map[string]WriteMetrics{},
	}

	clone := snap.Clone()
	assert.Equal(t, snap, clone)

	*clone.Modules["api"].Reads["t"].Backlog = 99
	clone.Modules["api"].Writes["extra"] = WriteMetrics{Count: 1}

	assert.Equal(t, uint64(2), *snap.Modules["api"].Reads["t"].Backlog)
	assert.NotContains(t, snap.Modules["api"].Writes, "extra")
}
