package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDurationRoundTrip(t *testing.T) {
	cases := []Microseconds{0, 1, 1000, 1_000_000, 1_500_000, 3_600_000_000}
	for _, want := range cases {
		s := FormatDuration(want)
		got, err := ParseDuration(s)
		require.NoError(t, err)
		assert.Equal(t, want, got, "round trip through %q", s)
	}
}

func TestDurationFormatBuckets(t *testing.T) {
	assert.Equal(t, "0µs", FormatDuration(0))
	assert.Equal(t, "500µs", FormatDuration(500))
	assert.Equal(t, "1.50ms", FormatDuration(1500))
	assert.Equal(t, "1.50s", FormatDuration(1_500_000))
	assert.Contains(t, FormatDuration(3_600_000_000), "3600")
}

func TestParseDurationSuffixes(t *testing.T) {
	cases := map[string]Microseconds{
		"5s":      5_000_000,
		"100ms":   100_000,
		"500us":   500,
		"16.958µs": 17, // rounds to nearest microsecond
		"0ns":     0,
		"  100ms  ": 100_000,
	}
	for in, want := range cases {
		got, err := ParseDuration(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, "parsing %q", in)
	}
}

func TestParseDurationErrors(t *testing.T) {
	_, err := ParseDuration("100x")
	assert.Error(t, err)
	_, err = ParseDuration("abcms")
	assert.Error(t, err)
	_, err = ParseDuration("")
	assert.Error(t, err)
	_, err = ParseDuration("-5s")
	assert.Error(t, err)
}

func TestMicrosecondsDurationConversion(t *testing.T) {
	d := 1500 * time.Millisecond
	m := FromDuration(d)
	assert.Equal(t, Microseconds(1_500_000), m)
	assert.Equal(t, d, m.ToDuration())
}

func TestParseDurationBareInteger(t *testing.T) {
	got, err := ParseDuration("250")
	require.NoError(t, err)
	assert.Equal(t, Microseconds(250), got)
}
