package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nerrad567/gray-logic-authcore/internal/infrastructure/mqtt"
)

// Publisher is the subset of the MQTT client used by MQTTSink.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// MQTTSink publishes each event as JSON on authcore/events/auth/{action}.
// Events are not retained.
type MQTTSink struct {
	pub Publisher
	qos byte
}

// NewMQTTSink creates a sink publishing with the given QoS.
func NewMQTTSink(pub Publisher, qos byte) *MQTTSink {
	return &MQTTSink{pub: pub, qos: qos}
}

// Name implements Sink.
func (s *MQTTSink) Name() string { return "mqtt" }

// Write implements Sink.
func (s *MQTTSink) Write(_ context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshalling auth event: %w", err)
	}
	return s.pub.Publish(mqtt.Topics{}.AuthEvent(string(e.Action)), payload, s.qos, false)
}
