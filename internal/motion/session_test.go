package motion

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SunilBaghel002/SankalpAlarm/internal/models"
	"github.com/SunilBaghel002/SankalpAlarm/internal/sensor"
)

type fakeSource struct {
	fn           func(models.AccelerationSample)
	subscribeErr error
	unsubscribed bool
}

func (f *fakeSource) SetSampleInterval(ms int) {}

func (f *fakeSource) Subscribe(fn func(models.AccelerationSample)) (sensor.Subscription, error) {
	if f.subscribeErr != nil {
		return nil, f.subscribeErr
	}
	f.fn = fn
	return &fakeSubscription{source: f}, nil
}

type fakeSubscription struct {
	source *fakeSource
}

func (s *fakeSubscription) Unsubscribe() error {
	s.source.unsubscribed = true
	return nil
}

// lateralSwing alternates the lateral components the way a device carried
// while walking does: energy on both axes.
func lateralSwing(i int) (x, z float64) {
	if i%2 == 0 {
		return 0.34, -0.18
	}
	return -0.22, 0.34
}

// synthesizeWalk builds a sample stream resembling a real walk: a quiet
// warmup that fills the baseline window, then one magnitude excursion per
// step with slightly jittered cadence.
func synthesizeWalk(start time.Time, steps int) []models.AccelerationSample {
	var out []models.AccelerationSample
	i := 0
	quiet := func(t time.Time) models.AccelerationSample {
		x, z := lateralSwing(i)
		i++
		return models.AccelerationSample{X: x, Y: 0.95, Z: z, Timestamp: t}
	}
	peak := func(t time.Time) models.AccelerationSample {
		x, z := lateralSwing(i)
		i++
		return models.AccelerationSample{X: x, Y: 1.45, Z: z, Timestamp: t}
	}

	t := start
	for n := 0; n < 30; n++ {
		out = append(out, quiet(t))
		t = t.Add(40 * time.Millisecond)
	}

	stepStart := t
	for k := 0; k < steps; k++ {
		out = append(out, peak(stepStart))
		fall := stepStart.Add(120 * time.Millisecond)
		out = append(out, quiet(fall))

		interval := 460 * time.Millisecond
		if k%2 == 1 {
			interval = 540 * time.Millisecond
		}
		next := stepStart.Add(interval)
		for ft := fall.Add(40 * time.Millisecond); ft.Before(next); ft = ft.Add(40 * time.Millisecond) {
			out = append(out, quiet(ft))
		}
		stepStart = next
	}
	return out
}

// synthesizeBounce is a pure vertical oscillation: the same excursion shape
// with near-zero lateral energy.
func synthesizeBounce(start time.Time, bounces int) []models.AccelerationSample {
	var out []models.AccelerationSample
	sample := func(t time.Time, y float64) models.AccelerationSample {
		return models.AccelerationSample{X: 0.01, Y: y, Z: 0.01, Timestamp: t}
	}

	t := start
	for n := 0; n < 30; n++ {
		out = append(out, sample(t, 1.0))
		t = t.Add(40 * time.Millisecond)
	}

	stepStart := t
	for k := 0; k < bounces; k++ {
		out = append(out, sample(stepStart, 1.5))
		fall := stepStart.Add(120 * time.Millisecond)
		out = append(out, sample(fall, 1.0))

		next := stepStart.Add(500 * time.Millisecond)
		for ft := fall.Add(40 * time.Millisecond); ft.Before(next); ft = ft.Add(40 * time.Millisecond) {
			out = append(out, sample(ft, 1.0))
		}
		stepStart = next
	}
	return out
}

func TestSession_CompletesOnSyntheticWalk(t *testing.T) {
	src := &fakeSource{}
	session := NewSession(DefaultConfig(), 10, zap.NewNop())

	validSteps := 0
	session.OnStepResult(func(step models.StepEvent, result models.ValidationResult) {
		if result.Valid {
			validSteps++
		}
	})

	completions := 0
	completedAt := 0
	session.OnComplete(func(steps int) {
		completions++
		completedAt = steps
	})

	require.NoError(t, session.Start(src))
	require.NotNil(t, src.fn)

	for _, sample := range synthesizeWalk(time.Now(), 12) {
		src.fn(sample)
	}

	assert.Equal(t, 12, validSteps, "every synthetic step validates")
	assert.Equal(t, 1, completions, "completion fires exactly once")
	assert.Equal(t, 10, completedAt)
	assert.True(t, session.Completed())
	assert.Equal(t, 12, session.StepCount())
}

func TestSession_VerticalBounceNeverCompletes(t *testing.T) {
	src := &fakeSource{}
	session := NewSession(DefaultConfig(), 5, zap.NewNop())

	var reasons []models.RejectReason
	session.OnStepResult(func(step models.StepEvent, result models.ValidationResult) {
		if !result.Valid {
			reasons = append(reasons, result.Reason)
		}
	})

	require.NoError(t, session.Start(src))

	for _, sample := range synthesizeBounce(time.Now(), 20) {
		src.fn(sample)
	}

	assert.Equal(t, 0, session.StepCount(), "bounces must not count as steps")
	assert.False(t, session.Completed())
	require.NotEmpty(t, reasons, "the excursions were detected, then rejected")
	for _, reason := range reasons {
		assert.Equal(t, models.ReasonVerticalOnly, reason)
	}
}

func TestSession_StartSurfacesUnavailableSensor(t *testing.T) {
	src := &fakeSource{
		subscribeErr: sensor.ErrUnavailable,
	}
	session := NewSession(DefaultConfig(), 5, zap.NewNop())

	err := session.Start(src)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sensor.ErrUnavailable))
	assert.False(t, session.Active())
}

func TestSession_StartAndStopAreIdempotent(t *testing.T) {
	src := &fakeSource{}
	session := NewSession(DefaultConfig(), 5, zap.NewNop())

	require.NoError(t, session.Start(src))
	require.NoError(t, session.Start(src))
	assert.True(t, session.Active())

	require.NoError(t, session.Stop())
	assert.True(t, src.unsubscribed)
	assert.False(t, session.Active())
	require.NoError(t, session.Stop())
}

func TestSession_ResetClearsProgress(t *testing.T) {
	src := &fakeSource{}
	session := NewSession(DefaultConfig(), 3, zap.NewNop())
	require.NoError(t, session.Start(src))

	for _, sample := range synthesizeWalk(time.Now(), 4) {
		src.fn(sample)
	}
	require.True(t, session.Completed())

	session.Reset(8)
	assert.Equal(t, 0, session.StepCount())
	assert.False(t, session.Completed())
	assert.True(t, session.Active(), "the sensor subscription survives a reset")
}
