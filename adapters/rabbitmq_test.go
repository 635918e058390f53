package adapters

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRabbitMQAdapterSynthesizesReadsAndWrites(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"name":"orders","consumers":2,"messages_ready":50,"messages_delivered":950,"messages_published":1000,
			 "deliver_get_details":{"rate":12.5},"publish_details":{"rate":20.0}},
			{"name":"idle","consumers":0,"messages_ready":0,"messages_delivered":0,"messages_published":10,
			 "deliver_get_details":{"rate":0},"publish_details":{"rate":1.0}}
		]`))
	}))
	defer srv.Close()

	a := NewRabbitMQAdapter(srv.URL, "/", "", "")
	snap, err := a.Collect(context.Background())
	require.NoError(t, err)

	orders := snap.Modules["orders"]
	assert.EqualValues(t, 950, orders.Reads["messages"].Count)
	require.NotNil(t, orders.Reads["messages"].Backlog)
	assert.EqualValues(t, 50, *orders.Reads["messages"].Backlog)
	require.NotNil(t, orders.Reads["messages"].Rate)
	assert.Equal(t, 12.5, *orders.Reads["messages"].Rate)
	assert.EqualValues(t, 1000, orders.Writes["messages"].Count)

	idle := snap.Modules["idle"]
	assert.EqualValues(t, 0, idle.Reads["messages"].Count)
	assert.Nil(t, idle.Reads["messages"].Rate)
}

func TestRabbitMQAdapterAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	a := NewRabbitMQAdapter(srv.URL, "/", "bad", "creds")
	_, err := a.Collect(context.Background())
	require.Error(t, err)
	var adapterErr *Error
	require.ErrorAs(t, err, &adapterErr)
	assert.Equal(t, KindAuth, adapterErr.Kind)
}

func TestRabbitMQAdapterParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	a := NewRabbitMQAdapter(srv.URL, "/", "", "")
	_, err := a.Collect(context.Background())
	require.Error(t, err)
	var adapterErr *Error
	require.ErrorAs(t, err, &adapterErr)
	assert.Equal(t, KindParse, adapterErr.Kind)
}
