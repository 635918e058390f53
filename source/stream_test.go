package source

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamSourceParsesNewlineDelimitedJSON(t *testing.T) {
	body := `{"version":{"major":1,"minor":0},"timestamp_ms":1,"modules":{}}
not valid json
{"version":{"major":1,"minor":0},"timestamp_ms":2,"modules":{}}
`
	s := NewStreamSource("test", strings.NewReader(body), 8)

	var got []uint64
	require.Eventually(t, func() bool {
		for {
			snap, ok := s.Poll()
			if !ok {
				break
			}
			got = append(got, snap.TimestampMs)
		}
		return len(got) == 2
	}, time.Second, time.Millisecond)

	assert.Equal(t, []uint64{1, 2}, got)
	msg, hasErr := s.Error()
	assert.True(t, hasErr)
	assert.NotEmpty(t, msg)
}
