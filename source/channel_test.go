package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowhung/buswatch/types"
)

func TestChannelSourceSurfacesInitialEmptyValueOnce(t *testing.T) {
	s := NewChannelSource("test")
	_, ok := s.Poll()
	assert.True(t, ok, "first poll must surface the initial empty value")

	_, ok = s.Poll()
	assert.False(t, ok, "second poll without a push must be empty")
}

func TestChannelSourceCoalescesIntermediateValues(t *testing.T) {
	s := NewChannelSource("test")
	_, _ = s.Poll() // consume initial value

	s.Push(types.NewSnapshot(1))
	s.Push(types.NewSnapshot(2))
	s.Push(types.NewSnapshot(3))

	got, ok := s.Poll()
	require.True(t, ok)
	assert.EqualValues(t, 3, got.TimestampMs)

	_, ok = s.Poll()
	assert.False(t, ok)
}
