package adapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOffsetSource struct {
	groups  []string
	offsets map[string][]TopicOffsets
}

func (f *fakeOffsetSource) Groups(ctx context.Context) ([]string, error) {
	return f.groups, nil
}

func (f *fakeOffsetSource) Offsets(ctx context.Context, group string) ([]TopicOffsets, error) {
	return f.offsets[group], nil
}

func TestKafkaAdapterSumsAcrossTopics(t *testing.T) {
	src := &fakeOffsetSource{
		groups: []string{"consumer-a", "empty-group"},
		offsets: map[string][]TopicOffsets{
			"consumer-a": {
				{Topic: "orders", Committed: 100, High: 150},
				{Topic: "shipments", Committed: 50, High: 50},
			},
			"empty-group": {},
		},
	}

	a := NewKafkaAdapter(src)
	snap, err := a.Collect(context.Background())
	require.NoError(t, err)

	consumerA := snap.Modules["consumer-a"]
	assert.EqualValues(t, 150, consumerA.Reads["messages"].Count)
	require.NotNil(t, consumerA.Reads["messages"].Backlog)
	assert.EqualValues(t, 50, *consumerA.Reads["messages"].Backlog)

	_, present := snap.Modules["empty-group"]
	assert.False(t, present)
}

func TestKafkaAdapterClampsBacklogAtZero(t *testing.T) {
	src := &fakeOffsetSource{
		groups: []string{"g"},
		offsets: map[string][]TopicOffsets{
			"g": {{Topic: "t", Committed: 200, High: 100}},
		},
	}
	a := NewKafkaAdapter(src)
	snap, err := a.Collect(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 0, *snap.Modules["g"].Reads["messages"].Backlog)
}
