package source

import (
	"context"
	"encoding/json"

	"github.com/lowhung/buswatch/types"
)

// Subscriber abstracts "consume a bus's published payloads" enough that the
// bus-subscription source never depends on a concrete wire protocol: an
// AMQP consumer and an MQTT client both satisfy it identically.
type Subscriber interface {
	Subscribe(ctx context.Context) (<-chan []byte, error)
}

// SubscriptionSource decodes each delivery from a Subscriber as JSON into a
// snapshot and forwards it through an embedded ChannelSource; decode
// failures are dropped rather than surfaced as a terminal error, since one
// malformed delivery on a long-lived subscription should not poison the
// whole feed the way a stream source's EOF does.
type SubscriptionSource struct {
	*ChannelSource
}

// NewSubscriptionSource subscribes via sub and starts forwarding decoded
// deliveries into the returned source. The background goroutine exits when
// ctx is cancelled or the delivery channel closes.
func NewSubscriptionSource(ctx context.Context, sub Subscriber, description string) (*SubscriptionSource, error) {
	deliveries, err := sub.Subscribe(ctx)
	if err != nil {
		return nil, err
	}

	s := &SubscriptionSource{ChannelSource: NewChannelSource(description)}
	go s.run(ctx, deliveries)
	return s, nil
}

func (s *SubscriptionSource) run(ctx context.Context, deliveries <-chan []byte) {
	for {
		select {
		case <-ctx.Done():
			return
		case payload, ok := <-deliveries:
			if !ok {
				return
			}
			var snap types.Snapshot
			if err := json.Unmarshal(payload, &snap); err != nil {
				s.SetError(err.Error())
				continue
			}
			s.Push(snap)
		}
	}
}
