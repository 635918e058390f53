package adapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStreamSource struct{ streams []StreamState }

func (f *fakeStreamSource) Streams(ctx context.Context) ([]StreamState, error) {
	return f.streams, nil
}

func TestJetStreamAdapterOneModulePerStream(t *testing.T) {
	src := &fakeStreamSource{streams: []StreamState{
		{
			Name:           "ORDERS",
			StreamMessages: 1000,
			Consumers: []ConsumerState{
				{Name: "billing", DeliveredStreamSeq: 800},
				{Name: "shipping", DeliveredStreamSeq: 1000},
			},
		},
	}}

	a := NewJetStreamAdapter(src)
	snap, err := a.Collect(context.Background())
	require.NoError(t, err)

	orders := snap.Modules["ORDERS"]
	assert.EqualValues(t, 1000, orders.Writes["stream"].Count)
	assert.EqualValues(t, 800, orders.Reads["billing"].Count)
	assert.EqualValues(t, 200, *orders.Reads["billing"].Backlog)
	assert.EqualValues(t, 0, *orders.Reads["shipping"].Backlog)
}
