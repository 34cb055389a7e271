package motion

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/SunilBaghel002/SankalpAlarm/internal/models"
	"github.com/SunilBaghel002/SankalpAlarm/internal/sensor"
)

// Session owns the per-dismissal detection state: the rolling magnitude
// window, the step detector, the anti-cheat validator and the progress
// tracker. Samples are processed synchronously inside the sensor callback;
// there is no shared state outside the session struct.
type Session struct {
	cfg    Config
	logger *zap.Logger

	mu        sync.Mutex
	tracker   *MagnitudeTracker
	detector  *StepDetector
	validator *Validator
	progress  *ProgressTracker
	sub       sensor.Subscription
	active    bool

	onResult   func(models.StepEvent, models.ValidationResult)
	onComplete func(steps int)
}

// NewSession creates an idle session with the given step target.
func NewSession(cfg Config, targetSteps int, logger *zap.Logger) *Session {
	return &Session{
		cfg:       cfg,
		logger:    logger,
		tracker:   NewMagnitudeTracker(cfg),
		detector:  NewStepDetector(cfg),
		validator: NewValidator(cfg),
		progress:  NewProgressTracker(targetSteps),
	}
}

// OnStepResult registers a callback invoked for every detected step with its
// validation outcome. Must be set before Start.
func (s *Session) OnStepResult(fn func(models.StepEvent, models.ValidationResult)) {
	s.onResult = fn
}

// OnComplete registers the one-shot callback invoked when the step target is
// reached. Must be set before Start.
func (s *Session) OnComplete(fn func(steps int)) {
	s.onComplete = fn
}

// Start subscribes to the sample source. Idempotent: starting an active
// session is a no-op. A source that cannot deliver samples surfaces as
// sensor.ErrUnavailable and the session stays idle.
func (s *Session) Start(src sensor.Source) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		return nil
	}

	sub, err := src.Subscribe(s.OnSample)
	if err != nil {
		return fmt.Errorf("failed to start detection session: %w", err)
	}

	s.sub = sub
	s.active = true
	s.logger.Info("Detection session started",
		zap.Int("target_steps", s.progress.Target()),
	)
	return nil
}

// Stop releases the sensor subscription. Idempotent, and always clears the
// subscription even if the release itself fails.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return nil
	}
	s.active = false

	sub := s.sub
	s.sub = nil
	if sub == nil {
		return nil
	}

	if err := sub.Unsubscribe(); err != nil {
		s.logger.Error("Failed to release sensor subscription",
			zap.Error(err),
		)
		return err
	}

	s.logger.Info("Detection session stopped",
		zap.Int("valid_steps", s.progress.Count()),
	)
	return nil
}

// OnSample processes one raw acceleration sample through the full pipeline:
// magnitude window, step detection, validation, progress. Non-blocking; safe
// to call from the sensor delivery goroutine. Callbacks run outside the
// session lock so they may call back into the session.
func (s *Session) OnSample(sample models.AccelerationSample) {
	s.mu.Lock()

	m := Magnitude(sample.X, sample.Y, sample.Z)
	s.tracker.Push(m)
	s.validator.PushSample(sample.X, sample.Z)

	step := s.detector.Process(sample.Timestamp, m, s.tracker.Baseline(), s.tracker.Threshold())
	if step == nil {
		s.mu.Unlock()
		return
	}

	result := s.validator.Validate(*step)
	var reached bool
	var count int
	if result.Valid {
		reached = s.progress.Increment()
		count = s.progress.Count()
	}
	onResult := s.onResult
	onComplete := s.onComplete
	target := s.progress.Target()
	s.mu.Unlock()

	if onResult != nil {
		onResult(*step, result)
	}

	if !result.Valid {
		s.logger.Debug("Step rejected",
			zap.String("reason", string(result.Reason)),
			zap.Duration("excursion", step.ExcursionDuration),
		)
		return
	}

	s.logger.Debug("Step counted",
		zap.Int("count", count),
		zap.Int("target", target),
		zap.Bool("confident_walk", result.ConfidentWalk),
	)

	if reached && onComplete != nil {
		onComplete(count)
	}
}

// StepCount returns the valid steps accumulated so far.
func (s *Session) StepCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress.Count()
}

// Completed reports whether the target has been reached.
func (s *Session) Completed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress.Completed()
}

// Active reports whether the session holds a sensor subscription.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Reset clears all detection state for a fresh session with a new target.
// The sensor subscription, if any, is kept.
func (s *Session) Reset(targetSteps int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tracker.Reset()
	s.detector.Reset()
	s.validator = NewValidator(s.cfg)
	s.progress.Reset(targetSteps)
}
