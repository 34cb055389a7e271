package motion

import (
	"time"

	"github.com/SunilBaghel002/SankalpAlarm/internal/models"
)

// StepDetector turns the magnitude stream into discrete step events. It is a
// two-state crossing detector: a sample above the dynamic threshold arms it,
// the next sample below completes an excursion, and an excursion of plausible
// duration that clears the debounce window becomes a StepEvent.
type StepDetector struct {
	cfg Config

	aboveThreshold bool
	lastPeakTime   time.Time
	lastStepTime   time.Time
}

// NewStepDetector creates a detector in the below-threshold state.
func NewStepDetector(cfg Config) *StepDetector {
	return &StepDetector{cfg: cfg}
}

// Process runs the state machine for one sample. It returns a step event when
// a full excursion completes, or nil. baseline and threshold come from the
// magnitude tracker at the same sample.
func (d *StepDetector) Process(t time.Time, m, baseline, threshold float64) *models.StepEvent {
	if m > threshold && !d.aboveThreshold {
		// Rising edge. Require a real deviation above the baseline so the
		// detector does not arm on jitter around a quiet threshold.
		if m-baseline > d.cfg.MinPeakDeviation {
			d.aboveThreshold = true
			d.lastPeakTime = t
		}
		return nil
	}

	if m < threshold && d.aboveThreshold {
		d.aboveThreshold = false

		excursion := t.Sub(d.lastPeakTime)
		if excursion < d.cfg.MinExcursion || excursion > d.cfg.MaxExcursion {
			// Too short or too long to be a foot strike.
			return nil
		}

		// Debounce: a second crossing inside the minimum step interval is the
		// same physical step bouncing, not a new one.
		if !d.lastStepTime.IsZero() && t.Sub(d.lastStepTime) < d.cfg.MinStepInterval {
			return nil
		}

		d.lastStepTime = t
		return &models.StepEvent{
			Timestamp:         t,
			PeakMagnitude:     m,
			ExcursionDuration: excursion,
		}
	}

	return nil
}

// Reset returns the detector to its initial state.
func (d *StepDetector) Reset() {
	d.aboveThreshold = false
	d.lastPeakTime = time.Time{}
	d.lastStepTime = time.Time{}
}
