// Package scheduler decides when a recurring alarm fires and guarantees the
// at-most-once-per-day trigger invariant across process restarts.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/SunilBaghel002/SankalpAlarm/internal/models"
)

// DateLayout is the calendar-date format of the dedup key.
const DateLayout = "2006-01-02"

// DateString renders the dedup key for an instant.
func DateString(t time.Time) string {
	return t.Format(DateLayout)
}

// Decide evaluates one alarm against the current wall clock. Pure function,
// computed fresh on every poll. The firing window spans the configured minute
// and the one after it, so a 10s poll cannot skip over the alarm; minute 59
// does not spill into the next hour.
func Decide(alarm models.AlarmConfig, now time.Time) models.TriggerDecision {
	decision := models.TriggerDecision{Alarm: alarm}

	if !alarm.Enabled {
		return decision
	}
	if !alarm.RepeatsOn(now.Weekday()) {
		return decision
	}
	if alarm.LastTriggeredDate != nil && *alarm.LastTriggeredDate == DateString(now) {
		// Already fired today.
		return decision
	}

	if now.Hour() == alarm.Hour && (now.Minute() == alarm.Minute || now.Minute() == alarm.Minute+1) {
		decision.ShouldTrigger = true
	}
	return decision
}

// TimeUntilNext projects the delta to the alarm's next fire instant. Today's
// configured time is used when it is still ahead, the weekday recurs and the
// alarm has not fired today; otherwise the search walks forward day by day,
// at most a week. An empty recurrence set yields ok=false instead of looping.
func TimeUntilNext(alarm models.AlarmConfig, now time.Time) (models.TimeUntil, bool) {
	if len(alarm.RecurrenceDays) == 0 {
		return models.TimeUntil{}, false
	}

	candidate := time.Date(now.Year(), now.Month(), now.Day(), alarm.Hour, alarm.Minute, 0, 0, now.Location())
	triggeredToday := alarm.LastTriggeredDate != nil && *alarm.LastTriggeredDate == DateString(now)

	usable := candidate.After(now) && alarm.RepeatsOn(now.Weekday()) && !triggeredToday
	if !usable {
		found := false
		for i := 1; i <= 7; i++ {
			next := candidate.AddDate(0, 0, i)
			if alarm.RepeatsOn(next.Weekday()) {
				candidate = next
				found = true
				break
			}
		}
		if !found {
			return models.TimeUntil{}, false
		}
	}

	total := int64(candidate.Sub(now) / time.Second)
	return models.TimeUntil{
		Hours:        int(total / 3600),
		Minutes:      int((total % 3600) / 60),
		Seconds:      int(total % 60),
		TotalSeconds: total,
	}, true
}

// AlarmStore is the persistence surface the scheduler needs: the enabled
// alarm set and the durable triggered-date mark.
type AlarmStore interface {
	ListAlarms(ctx context.Context) ([]models.AlarmConfig, error)
	MarkTriggered(ctx context.Context, alarmID, date string) error
}

// Scheduler polls the alarm set on a fixed period and raises the ring
// callback when an alarm becomes due. Polls are mutually exclusive: a new
// check never starts while a previous one is still completing or a ring is
// being presented.
type Scheduler struct {
	store        AlarmStore
	clock        Clock
	logger       *zap.Logger
	pollInterval time.Duration
	onRing       func(models.AlarmConfig)

	mu      sync.Mutex
	ringing bool
}

// New creates a scheduler. onRing is invoked outside the poll critical
// section, so it may call back into the scheduler (including RingFinished).
func New(store AlarmStore, clock Clock, pollInterval time.Duration, onRing func(models.AlarmConfig), logger *zap.Logger) *Scheduler {
	return &Scheduler{
		store:        store,
		clock:        clock,
		logger:       logger,
		pollInterval: pollInterval,
		onRing:       onRing,
	}
}

// Start runs the poll loop until the context is cancelled. The ticker is
// released deterministically on shutdown.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("Alarm scheduler started",
		zap.Duration("poll_interval", s.pollInterval),
	)

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	s.Check(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Alarm scheduler stopped")
			return nil
		case <-ticker.C:
			s.Check(ctx)
		}
	}
}

// Check evaluates every alarm once. Skipped entirely when a previous check or
// an active ring is in progress.
func (s *Scheduler) Check(ctx context.Context) {
	due := s.findDue(ctx)
	if due == nil {
		return
	}
	if s.onRing != nil {
		s.onRing(*due)
	}
}

// findDue holds the poll critical section: it evaluates the alarm set, makes
// the dedup mark durable and flips the ringing flag. The ring callback itself
// runs after the lock is released.
func (s *Scheduler) findDue(ctx context.Context) *models.AlarmConfig {
	if !s.mu.TryLock() {
		// Previous poll still completing.
		return nil
	}
	defer s.mu.Unlock()

	if s.ringing {
		return nil
	}

	alarms, err := s.store.ListAlarms(ctx)
	if err != nil {
		s.logger.Error("Failed to list alarms",
			zap.Error(err),
		)
		return nil
	}

	now := s.clock.Now()
	for _, alarm := range alarms {
		decision := Decide(alarm, now)
		if !decision.ShouldTrigger {
			continue
		}

		// The dedup mark must be durable before any ring is presented. A
		// failed write means the alarm is treated as not triggered and the
		// next poll retries; a duplicate ring is preferred over a missed one.
		if err := s.store.MarkTriggered(ctx, alarm.ID, DateString(now)); err != nil {
			s.logger.Error("Failed to persist trigger mark, will retry next poll",
				zap.String("alarm_id", alarm.ID),
				zap.Error(err),
			)
			continue
		}

		s.logger.Info("Alarm due",
			zap.String("alarm_id", alarm.ID),
			zap.String("label", alarm.Label),
			zap.String("date", DateString(now)),
		)

		s.ringing = true
		ring := decision.Alarm
		return &ring // one ring at a time
	}
	return nil
}

// RingFinished re-enables polling after the active ring has been dismissed
// or abandoned.
func (s *Scheduler) RingFinished() {
	s.mu.Lock()
	s.ringing = false
	s.mu.Unlock()
}

// Ringing reports whether a ring is currently being presented.
func (s *Scheduler) Ringing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ringing
}
