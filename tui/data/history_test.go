package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryRateComputesFromTwoSamples(t *testing.T) {
	h := NewHistory()
	h.Observe(0, ModuleData{Name: "m", TotalRead: 0})
	h.Observe(1000, ModuleData{Name: "m", TotalRead: 100})

	rate, ok := h.Rate("m")
	assert.True(t, ok)
	assert.InDelta(t, 100.0, rate, 0.001)
}

// TestHistoryRateUsesMostRecentPairNotWholeWindow guards against
// accidentally averaging the rate over the whole retained window: a flat
// stretch followed by a recent burst must report the burst's rate, not a
// value smoothed across the whole history.
func TestHistoryRateUsesMostRecentPairNotWholeWindow(t *testing.T) {
	h := NewHistory()
	h.Observe(0, ModuleData{Name: "m", TotalRead: 0})
	h.Observe(1000, ModuleData{Name: "m", TotalRead: 0})
	h.Observe(2000, ModuleData{Name: "m", TotalRead: 1000})

	rate, ok := h.Rate("m")
	assert.True(t, ok)
	assert.InDelta(t, 1000.0, rate, 0.001, "rate must reflect the last two samples, not the first-to-last average")
}

func TestHistoryRateRequiresTwoSamples(t *testing.T) {
	h := NewHistory()
	h.Observe(0, ModuleData{Name: "m", TotalRead: 10})

	_, ok := h.Rate("m")
	assert.False(t, ok)
}

func TestHistoryEvictsBeyondDepth(t *testing.T) {
	h := NewHistory()
	for i := uint64(0); i < historyDepth+10; i++ {
		h.Observe(i*1000, ModuleData{Name: "m", TotalRead: i})
	}
	assert.Len(t, h.byModule["m"], historyDepth)
}

func TestHistorySparklineFlatSeries(t *testing.T) {
	h := NewHistory()
	h.Observe(0, ModuleData{Name: "m", TotalRead: 5})
	h.Observe(1000, ModuleData{Name: "m", TotalRead: 5})

	spark := h.Sparkline("m")
	assert.Equal(t, "▁", spark, "a single flat delta renders as the lowest level")
}

func TestHistorySparklineNormalizesRange(t *testing.T) {
	h := NewHistory()
	h.Observe(0, ModuleData{Name: "m", TotalRead: 0})
	h.Observe(1000, ModuleData{Name: "m", TotalRead: 10})
	h.Observe(2000, ModuleData{Name: "m", TotalRead: 110})

	spark := h.Sparkline("m")
	runes := []rune(spark)
	require.Len(t, runes, 2)
	assert.Equal(t, sparkLevels[0], runes[0], "smaller delta normalizes to the lowest level")
	assert.Equal(t, sparkLevels[len(sparkLevels)-1], runes[1], "larger delta normalizes to the highest level")
}

func TestHistorySparklineCapsAtEightDeltas(t *testing.T) {
	h := NewHistory()
	for i := uint64(0); i < 15; i++ {
		h.Observe(i*1000, ModuleData{Name: "m", TotalRead: i * i})
	}
	assert.Len(t, []rune(h.Sparkline("m")), sparkWidth)
}

func TestHistoryResetDropsSeries(t *testing.T) {
	h := NewHistory()
	h.Observe(0, ModuleData{Name: "m", TotalRead: 1})
	h.Reset("m")

	_, ok := h.Rate("m")
	assert.False(t, ok)
	assert.Empty(t, h.Sparkline("m"))
}
