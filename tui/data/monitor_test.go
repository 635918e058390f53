package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowhung/buswatch/types"
)

func TestDeriveClassifiesPendingAndBacklog(t *testing.T) {
	snap := types.NewSnapshot(1000)
	snap.Modules["processor"] = types.ModuleMetrics{
		Reads: map[string]types.ReadMetrics{
			"orders": {
				Count:   5,
				Backlog: types.Uint64Ptr(6000),
				Pending: types.MicrosecondsPtr(types.FromDuration(0)),
			},
		},
		Writes: map[string]types.WriteMetrics{},
	}

	md := Derive(snap, DefaultThresholds())
	require.Len(t, md.Modules, 1)
	m := md.Modules[0]
	require.Len(t, m.Reads, 1)
	assert.Equal(t, StatusCritical, m.Reads[0].Status, "backlog over unread_critical must classify critical")
	assert.Equal(t, StatusCritical, m.Health)
}

func TestDeriveSortsModulesByHealthThenName(t *testing.T) {
	snap := types.NewSnapshot(1)
	snap.Modules["zeta"] = types.ModuleMetrics{
		Reads: map[string]types.ReadMetrics{"t": {Count: 1}},
		Writes: map[string]types.WriteMetrics{},
	}
	snap.Modules["alpha"] = types.ModuleMetrics{
		Reads: map[string]types.ReadMetrics{"t": {Count: 1, Backlog: types.Uint64Ptr(9000)}},
		Writes: map[string]types.WriteMetrics{},
	}

	md := Derive(snap, DefaultThresholds())
	require.Len(t, md.Modules, 2)
	assert.Equal(t, "alpha", md.Modules[0].Name, "critical module sorts before a healthy one regardless of name")
	assert.Equal(t, "zeta", md.Modules[1].Name)
}

func TestDeriveHandlesNilPendingAsHealthy(t *testing.T) {
	snap := types.NewSnapshot(1)
	snap.Modules["m"] = types.ModuleMetrics{
		Reads:  map[string]types.ReadMetrics{},
		Writes: map[string]types.WriteMetrics{"t": {Count: 3}},
	}
	md := Derive(snap, DefaultThresholds())
	require.Len(t, md.Modules, 1)
	require.Len(t, md.Modules[0].Writes, 1)
	assert.Equal(t, StatusHealthy, md.Modules[0].Writes[0].Status)
}
