package models

import "time"

// AccelerationSample is one raw 3-axis reading from the motion sensor, in
// source units (g). Y is the gravity axis in the carrying orientation; X and
// Z are the lateral axes.
type AccelerationSample struct {
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Z         float64   `json:"z"`
	Timestamp time.Time `json:"timestamp"`
}

// StepEvent is one completed above-then-below threshold excursion emitted by
// the step detector. It is consumed immediately by the validator and not
// retained.
type StepEvent struct {
	Timestamp         time.Time
	PeakMagnitude     float64
	ExcursionDuration time.Duration
}

// RejectReason classifies why the validator refused a step.
type RejectReason string

const (
	ReasonTooFast      RejectReason = "too_fast"
	ReasonVerticalOnly RejectReason = "vertical_only_motion"
	ReasonTooRegular   RejectReason = "rhythm_too_regular"
	ReasonTooErratic   RejectReason = "rhythm_too_erratic"
	ReasonSingleAxis   RejectReason = "single_axis_shaking"
)

// ValidationResult is the anti-cheat outcome for one step event. A rejected
// step is a normal classification outcome, never an error.
type ValidationResult struct {
	Valid  bool
	Reason RejectReason // empty when Valid

	// ConfidentWalk turns true once a short run of consecutive valid steps
	// has been observed. UI feedback only; it does not affect counting.
	ConfidentWalk bool
}
