package motion

import (
	"math"
	"time"

	"github.com/SunilBaghel002/SankalpAlarm/internal/models"
)

// Validator decides whether a sequence of step events looks like genuine
// walking rather than shaking, tapping or mechanical vibration. Checks run in
// order and short-circuit on the first failure. Each event is judged once,
// synchronously; there is no retry. A rejected step updates no counters but
// still feeds the timing and axis history so the validator recovers once real
// walking resumes.
type Validator struct {
	cfg Config

	// Inter-step intervals, raw events regardless of validity outcome.
	rhythm []time.Duration

	// Absolute lateral-axis samples, updated on every sensor sample.
	lateralX []float64
	lateralZ []float64

	lastStepTime  time.Time // previous raw step event
	lastValidTime time.Time // previous accepted step
	validStreak   int
}

// NewValidator creates a validator with empty history.
func NewValidator(cfg Config) *Validator {
	return &Validator{
		cfg:      cfg,
		rhythm:   make([]time.Duration, 0, cfg.RhythmHistorySize),
		lateralX: make([]float64, 0, cfg.AxisHistorySize),
		lateralZ: make([]float64, 0, cfg.AxisHistorySize),
	}
}

// PushSample records the lateral components of one raw sensor sample.
func (v *Validator) PushSample(x, z float64) {
	v.lateralX = pushBounded(v.lateralX, math.Abs(x), v.cfg.AxisHistorySize)
	v.lateralZ = pushBounded(v.lateralZ, math.Abs(z), v.cfg.AxisHistorySize)
}

// Validate judges one step event.
func (v *Validator) Validate(step models.StepEvent) models.ValidationResult {
	var rawInterval time.Duration
	if !v.lastStepTime.IsZero() {
		rawInterval = step.Timestamp.Sub(v.lastStepTime)
	}

	result := v.check(step, rawInterval)

	// History bookkeeping happens for accepted and rejected steps alike.
	if rawInterval > 0 && rawInterval <= v.cfg.MaxStepInterval {
		v.rhythm = pushBoundedDuration(v.rhythm, rawInterval, v.cfg.RhythmHistorySize)
	}
	v.lastStepTime = step.Timestamp

	if result.Valid {
		v.lastValidTime = step.Timestamp
		v.validStreak++
	} else {
		v.validStreak = 0
	}
	result.ConfidentWalk = v.validStreak >= v.cfg.ConfidentStreak

	return result
}

func (v *Validator) check(step models.StepEvent, rawInterval time.Duration) models.ValidationResult {
	// 1. Interval floor against the previous valid step.
	if !v.lastValidTime.IsZero() && step.Timestamp.Sub(v.lastValidTime) < v.cfg.MinStepInterval {
		return models.ValidationResult{Reason: models.ReasonTooFast}
	}

	// 2. Interval ceiling: a long gap means walking paused and resumed. The
	// rhythm restarts but the step itself stays in play.
	if rawInterval > v.cfg.MaxStepInterval {
		v.rhythm = v.rhythm[:0]
	}

	// 3. Lateral movement floor. Bouncing the device vertically produces
	// threshold excursions with near-zero lateral energy.
	if math.Max(mean(v.lateralX), mean(v.lateralZ)) < v.cfg.MinLateralMovement {
		return models.ValidationResult{Reason: models.ReasonVerticalOnly}
	}

	// 4. Rhythm variance, once enough intervals exist. Natural walking sits
	// between mechanically regular and erratic cadence.
	if len(v.rhythm) >= 3 {
		cv := rhythmVariance(v.rhythm)
		if cv < v.cfg.MinVariance {
			return models.ValidationResult{Reason: models.ReasonTooRegular}
		}
		if cv > v.cfg.MaxVariance {
			return models.ValidationResult{Reason: models.ReasonTooErratic}
		}
	}

	// 5. Axis dominance: bipedal gait spreads energy across both lateral
	// axes, single-axis shaking does not.
	if reason := v.checkAxisDominance(); reason != "" {
		return models.ValidationResult{Reason: reason}
	}

	return models.ValidationResult{Valid: true}
}

// checkAxisDominance examines the recent lateral window and reports
// single-axis shaking when one axis carries almost all the variance.
func (v *Validator) checkAxisDominance() models.RejectReason {
	n := v.cfg.AxisDominanceWindow
	xs := tail(v.lateralX, n)
	zs := tail(v.lateralZ, n)
	if len(xs) < 2 || len(zs) < 2 {
		return ""
	}

	varX := variance(xs)
	varZ := variance(zs)
	combined := varX + varZ
	if combined < 1e-9 {
		// No lateral variance at all; the lateral floor already covers this.
		return ""
	}

	ratio := math.Max(varX, varZ) / combined
	if ratio > v.cfg.AxisDominanceRatio {
		return models.ReasonSingleAxis
	}
	return ""
}

// ResetRhythm clears the inter-step interval history.
func (v *Validator) ResetRhythm() {
	v.rhythm = v.rhythm[:0]
}

// rhythmVariance is the coefficient of variation of the intervals: mean
// absolute deviation divided by the mean.
func rhythmVariance(intervals []time.Duration) float64 {
	var sum float64
	for _, iv := range intervals {
		sum += iv.Seconds()
	}
	m := sum / float64(len(intervals))
	if m <= 0 {
		return 0
	}

	var dev float64
	for _, iv := range intervals {
		dev += math.Abs(iv.Seconds() - m)
	}
	return (dev / float64(len(intervals))) / m
}

func pushBounded(s []float64, v float64, max int) []float64 {
	s = append(s, v)
	if len(s) > max {
		s = s[1:]
	}
	return s
}

func pushBoundedDuration(s []time.Duration, v time.Duration, max int) []time.Duration {
	s = append(s, v)
	if len(s) > max {
		s = s[1:]
	}
	return s
}

func tail(s []float64, n int) []float64 {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

func mean(s []float64) float64 {
	if len(s) == 0 {
		return 0
	}
	var sum float64
	for _, v := range s {
		sum += v
	}
	return sum / float64(len(s))
}

func variance(s []float64) float64 {
	m := mean(s)
	var sum float64
	for _, v := range s {
		d := v - m
		sum += d * d
	}
	return sum / float64(len(s))
}
