package emit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowhung/buswatch/types"
)

// TestPrometheusRendering is scenario S4 from spec.md §8.
func TestPrometheusRendering(t *testing.T) {
	snap := types.NewSnapshot(1_700_000_000_000)
	snap.Modules["my-service"] = types.ModuleMetrics{
		Reads: map[string]types.ReadMetrics{
			"events": {
				Count:   1000,
				Backlog: types.Uint64Ptr(50),
				Pending: types.MicrosecondsPtr(100_000),
				Rate:    types.Float64Ptr(50.5),
			},
		},
		Writes: map[string]types.WriteMetrics{
			"output": {Count: 500, Rate: types.Float64Ptr(25.0)},
		},
	}

	e := NewPrometheusEmitter("")
	require.NoError(t, e.Emit(snap))
	body := e.Render()

	assert.Contains(t, body, `buswatch_read_count{module="my-service",topic="events"} 1000`)
	assert.Contains(t, body, `buswatch_read_backlog{module="my-service",topic="events"} 50`)
	assert.Contains(t, body, `buswatch_read_pending_seconds{module="my-service",topic="events"} 0.100000`)
	assert.Contains(t, body, `buswatch_read_rate_per_second{module="my-service",topic="events"} 50.50`)
	assert.Contains(t, body, `buswatch_write_count{module="my-service",topic="output"} 500`)
	assert.Contains(t, body, `buswatch_write_rate_per_second{module="my-service",topic="output"} 25.00`)
}

func TestPrometheusEmptyUntilFirstSnapshot(t *testing.T) {
	e := NewPrometheusEmitter("")
	assert.Empty(t, e.Render())
}

func TestPrometheusNamespacePrefix(t *testing.T) {
	snap := types.NewSnapshot(0)
	snap.Modules["m"] = types.ModuleMetrics{
		Reads:  map[string]types.ReadMetrics{"t": {Count: 1}},
		Writes: map[string]types.WriteMetrics{},
	}
	e := NewPrometheusEmitter("acme")
	require.NoError(t, e.Emit(snap))
	assert.Contains(t, e.Render(), `acme_buswatch_read_count{module="m",topic="t"} 1`)
}

func TestEscapeLabelValue(t *testing.T) {
	snap := types.NewSnapshot(0)
	snap.Modules[`weird "mod\name` + "\n"] = types.ModuleMetrics{
		Reads:  map[string]types.ReadMetrics{"t": {Count: 1}},
		Writes: map[string]types.WriteMetrics{},
	}
	e := NewPrometheusEmitter("")
	require.NoError(t, e.Emit(snap))
	body := e.Render()
	assert.Contains(t, body, `\"mod\\name\n`)
	assert.NotContains(t, body, "weird \"mod\\name\n\",topic") // raw unescaped form must not appear
}

func TestAbsentOptionalFieldsOmitLines(t *testing.T) {
	snap := types.NewSnapshot(0)
	snap.Modules["m"] = types.ModuleMetrics{
		Reads:  map[string]types.ReadMetrics{"t": {Count: 3}},
		Writes: map[string]types.WriteMetrics{},
	}
	e := NewPrometheusEmitter("")
	require.NoError(t, e.Emit(snap))
	body := e.Render()
	assert.NotContains(t, body, "read_backlog")
	assert.NotContains(t, body, "read_pending_seconds")
	assert.NotContains(t, body, "read_rate_per_second")
}
