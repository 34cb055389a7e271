// Package sensor abstracts the accelerometer sample source consumed by the
// motion detection session.
package sensor

import (
	"errors"

	"github.com/SunilBaghel002/SankalpAlarm/internal/models"
)

// ErrUnavailable reports that the sample source cannot be reached. It is
// surfaced once at session start and is not retried by the engine.
var ErrUnavailable = errors.New("sensor source unavailable")

// Source delivers acceleration samples via callback at a fixed interval.
type Source interface {
	// SetSampleInterval requests the delivery period in milliseconds. Sources
	// that cannot influence the producer treat this as advisory.
	SetSampleInterval(ms int)

	// Subscribe starts sample delivery. The callback runs once per sample
	// and must not block. The returned subscription releases delivery.
	Subscribe(fn func(models.AccelerationSample)) (Subscription, error)
}

// Subscription is the capability handle for an active sample stream.
// Unsubscribe is idempotent.
type Subscription interface {
	Unsubscribe() error
}
