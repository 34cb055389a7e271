package models

import "time"

// AlarmConfig is one recurring wake alarm. It is persisted as a flat JSON
// record keyed by alarm id; LastTriggeredDate is mutated only by the
// scheduler's trigger path.
type AlarmConfig struct {
	ID            string `json:"id"`
	Hour          int    `json:"hour"`   // 0-23
	Minute        int    `json:"minute"` // 0-59
	Enabled       bool   `json:"enabled"`
	RequiredSteps int    `json:"required_steps"` // always > 0
	Label         string `json:"label"`

	// RecurrenceDays is the subset of weekdays the alarm repeats on
	// (time.Sunday == 0). Empty means the alarm never fires.
	RecurrenceDays []time.Weekday `json:"recurrence_days"`

	// LastTriggeredDate is a calendar date string ("2006-01-02"). Once set
	// to today the alarm cannot fire again until the date changes.
	LastTriggeredDate *string `json:"last_triggered_date,omitempty"`
}

// RepeatsOn reports whether the alarm recurs on the given weekday.
func (a *AlarmConfig) RepeatsOn(day time.Weekday) bool {
	for _, d := range a.RecurrenceDays {
		if d == day {
			return true
		}
	}
	return false
}

// TriggerDecision is the scheduler output for one alarm at one poll instant.
// It is computed fresh on every poll and never persisted.
type TriggerDecision struct {
	ShouldTrigger bool
	Alarm         AlarmConfig // snapshot at decision time
}

// TimeUntil is the decomposed delta to an alarm's next fire instant.
type TimeUntil struct {
	Hours        int
	Minutes      int
	Seconds      int
	TotalSeconds int64
}

// WakeEvent is one entry of the append-only wake history: what happened the
// last time this alarm rang. The store keeps at most 30 of these.
type WakeEvent struct {
	EventID     string    `json:"event_id"`
	AlarmID     string    `json:"alarm_id"`
	Date        string    `json:"date"` // "2006-01-02"
	StepsWalked int       `json:"steps_walked"`
	Success     bool      `json:"success"`
	WokeAt      time.Time `json:"woke_at"`
}
