package service

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/SunilBaghel002/SankalpAlarm/internal/models"
)

// Feedback is the device-facing surface the dismissal flow drives: the
// looping alarm sound and the per-step haptic pulse. Implementations live
// outside this module (device bridge, test double).
type Feedback interface {
	Vibrate(durationMs int)
	PlayLoopingSound()
	StopSound()
}

// LogFeedback is the fallback Feedback used when no device bridge is
// attached. It only records what would have been presented.
type LogFeedback struct {
	logger *zap.Logger
}

// NewLogFeedback creates the logging fallback.
func NewLogFeedback(logger *zap.Logger) *LogFeedback {
	return &LogFeedback{logger: logger}
}

func (f *LogFeedback) Vibrate(durationMs int) {
	f.logger.Debug("Vibrate", zap.Int("duration_ms", durationMs))
}

func (f *LogFeedback) PlayLoopingSound() {
	f.logger.Info("Alarm sound started")
}

func (f *LogFeedback) StopSound() {
	f.logger.Info("Alarm sound stopped")
}

// RingNotifier publishes ring lifecycle events over MQTT so companion
// devices (bedside display, phone app) can mirror the alarm state.
type RingNotifier struct {
	client mqtt.Client
	topic  string
	logger *zap.Logger
}

// NewRingNotifier creates the notifier for the given alert topic.
func NewRingNotifier(client mqtt.Client, topic string, logger *zap.Logger) *RingNotifier {
	return &RingNotifier{
		client: client,
		topic:  topic,
		logger: logger,
	}
}

// ringEvent is the wire payload for ring lifecycle notifications.
type ringEvent struct {
	Event       string `json:"event"` // "ring" | "progress" | "dismissed"
	AlarmID     string `json:"alarm_id"`
	Label       string `json:"label,omitempty"`
	StepsWalked int    `json:"steps_walked"`
	StepTarget  int    `json:"step_target"`
	Timestamp   int64  `json:"timestamp"`
}

// publish sends one lifecycle event. Publish failures are logged, not
// returned: companion mirroring is best effort and must never stall the ring.
func (n *RingNotifier) publish(event string, alarm models.AlarmConfig, steps int) {
	payload, err := json.Marshal(ringEvent{
		Event:       event,
		AlarmID:     alarm.ID,
		Label:       alarm.Label,
		StepsWalked: steps,
		StepTarget:  alarm.RequiredSteps,
		Timestamp:   time.Now().UnixMilli(),
	})
	if err != nil {
		n.logger.Error("Failed to marshal ring event",
			zap.String("event", event),
			zap.Error(err),
		)
		return
	}

	token := n.client.Publish(n.topic, 1, false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		n.logger.Warn("Ring event publish timed out",
			zap.String("event", event),
			zap.String("topic", n.topic),
		)
		return
	}
	if err := token.Error(); err != nil {
		n.logger.Error("Failed to publish ring event",
			zap.String("event", event),
			zap.String("topic", n.topic),
			zap.Error(err),
		)
	}
}

// NotifyRing announces that the alarm started ringing.
func (n *RingNotifier) NotifyRing(alarm models.AlarmConfig) {
	n.publish("ring", alarm, 0)
}

// NotifyProgress mirrors the current valid step count.
func (n *RingNotifier) NotifyProgress(alarm models.AlarmConfig, steps int) {
	n.publish("progress", alarm, steps)
}

// NotifyDismissed announces that the step target was reached.
func (n *RingNotifier) NotifyDismissed(alarm models.AlarmConfig, steps int) {
	n.publish("dismissed", alarm, steps)
}

// ensure the fallback satisfies the interface
var _ Feedback = (*LogFeedback)(nil)

// formatRingLabel renders the human label shown in logs for a ringing alarm.
func formatRingLabel(alarm models.AlarmConfig) string {
	if alarm.Label == "" {
		return fmt.Sprintf("%02d:%02d", alarm.Hour, alarm.Minute)
	}
	return fmt.Sprintf("%s (%02d:%02d)", alarm.Label, alarm.Hour, alarm.Minute)
}
