package sensor

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/SunilBaghel002/SankalpAlarm/internal/models"
)

const subscribeTimeout = 5 * time.Second

// MQTTSource consumes accelerometer samples published on an MQTT topic.
type MQTTSource struct {
	client mqtt.Client
	topic  string
	logger *zap.Logger
}

// NewMQTTSource wraps a connected MQTT client as a sample source.
func NewMQTTSource(client mqtt.Client, topic string, logger *zap.Logger) *MQTTSource {
	return &MQTTSource{
		client: client,
		topic:  topic,
		logger: logger,
	}
}

// samplePayload is the wire format published by the sensor bridge.
type samplePayload struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	Z  float64 `json:"z"`
	TS int64   `json:"ts"` // unix milliseconds
}

// SetSampleInterval is advisory for MQTT: the publisher controls its own
// rate, so the request is only logged.
func (s *MQTTSource) SetSampleInterval(ms int) {
	s.logger.Debug("Sample interval requested",
		zap.Int("interval_ms", ms),
		zap.String("topic", s.topic),
	)
}

// Subscribe attaches to the sample topic and decodes each message into an
// AccelerationSample. A broker that cannot be reached surfaces as
// ErrUnavailable.
func (s *MQTTSource) Subscribe(fn func(models.AccelerationSample)) (Subscription, error) {
	if !s.client.IsConnected() {
		return nil, fmt.Errorf("%w: mqtt client not connected", ErrUnavailable)
	}

	handler := func(_ mqtt.Client, msg mqtt.Message) {
		sample, err := decodeSample(msg.Payload())
		if err != nil {
			s.logger.Warn("Dropping malformed sample",
				zap.String("topic", msg.Topic()),
				zap.Error(err),
			)
			return
		}
		fn(sample)
	}

	token := s.client.Subscribe(s.topic, 0, handler)
	if !token.WaitTimeout(subscribeTimeout) {
		return nil, fmt.Errorf("%w: subscribe to %s timed out", ErrUnavailable, s.topic)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: subscribe to %s: %v", ErrUnavailable, s.topic, err)
	}

	s.logger.Info("Subscribed to sample topic",
		zap.String("topic", s.topic),
	)

	return &mqttSubscription{source: s}, nil
}

func decodeSample(payload []byte) (models.AccelerationSample, error) {
	var p samplePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return models.AccelerationSample{}, fmt.Errorf("failed to decode sample: %w", err)
	}
	return models.AccelerationSample{
		X:         p.X,
		Y:         p.Y,
		Z:         p.Z,
		Timestamp: time.UnixMilli(p.TS),
	}, nil
}

// mqttSubscription releases the topic subscription. Safe to call more than
// once.
type mqttSubscription struct {
	source *MQTTSource
	once   sync.Once
	err    error
}

func (sub *mqttSubscription) Unsubscribe() error {
	sub.once.Do(func() {
		token := sub.source.client.Unsubscribe(sub.source.topic)
		if !token.WaitTimeout(subscribeTimeout) {
			sub.err = fmt.Errorf("unsubscribe from %s timed out", sub.source.topic)
			return
		}
		sub.err = token.Error()
	})
	return sub.err
}
