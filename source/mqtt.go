package source

import (
	"context"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/lowhung/buswatch/telemetry/logging"
)

// MQTTSubscriber implements Subscriber against an MQTT broker, grounded in
// the pack's one real pub/sub wire client
// (jkaberg-byd-hass/internal/mqtt/client.go): connection options, auto
// -reconnect, and a bounded keep-alive/timeout policy are carried over,
// adapted from publishing device telemetry to subscribing on a snapshot
// topic.
type MQTTSubscriber struct {
	brokerURL string
	topic     string
	clientID  string
	logger    logging.Logger
}

// NewMQTTSubscriber targets brokerURL (e.g. "tcp://localhost:1883") and
// topic for snapshot deliveries.
func NewMQTTSubscriber(brokerURL, topic, clientID string, logger logging.Logger) *MQTTSubscriber {
	if logger == nil {
		logger = logging.New(nil)
	}
	return &MQTTSubscriber{brokerURL: brokerURL, topic: topic, clientID: clientID, logger: logger}
}

// Subscribe connects to the broker and returns a channel of raw message
// payloads for the configured topic. The connection is torn down when ctx
// is cancelled.
func (s *MQTTSubscriber) Subscribe(ctx context.Context) (<-chan []byte, error) {
	out := make(chan []byte, 64)

	opts := mqtt.NewClientOptions()
	opts.AddBroker(s.brokerURL)
	opts.SetClientID(s.clientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetConnectTimeout(5 * time.Second)
	opts.SetMaxReconnectInterval(10 * time.Second)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		s.logger.WarnCtx(ctx, "mqtt connection lost", "error", err)
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect to mqtt broker %s: %w", s.brokerURL, token.Error())
	}

	handler := func(_ mqtt.Client, msg mqtt.Message) {
		payload := append([]byte(nil), msg.Payload()...)
		select {
		case out <- payload:
		default:
			// bounded queue full: drop, consistent with the rest of the
			// system's "prefer freshness" back-pressure policy.
		}
	}
	const subscribeTimeout = 5 * time.Second
	token := client.Subscribe(s.topic, 1, handler)
	if !token.WaitTimeout(subscribeTimeout) {
		client.Disconnect(250)
		return nil, fmt.Errorf("subscribe to topic %s timed out", s.topic)
	}
	if token.Error() != nil {
		client.Disconnect(250)
		return nil, fmt.Errorf("subscribe to topic %s: %w", s.topic, token.Error())
	}

	go func() {
		<-ctx.Done()
		client.Disconnect(250)
	}()

	return out, nil
}
