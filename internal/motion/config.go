package motion

import "time"

// Config holds the detection and validation tunables.
type Config struct {
	// Rolling magnitude tracker
	WindowSize          int     // samples kept for the baseline, ~1s of data
	MinWindowFill       int     // entries required before the baseline is trusted
	NeutralBaseline     float64 // baseline reported before the window fills
	ThresholdMultiplier float64 // sensitivity knob, threshold = baseline * multiplier

	// Step detector
	MinPeakDeviation float64       // magnitude must exceed baseline by this much to arm
	MinExcursion     time.Duration // excursions shorter than this are noise
	MaxExcursion     time.Duration // excursions longer than this are noise
	MinStepInterval  time.Duration // debounce between accepted step events

	// Anti-cheat validator
	MaxStepInterval     time.Duration // longer gaps reset the rhythm, walking paused
	MinLateralMovement  float64       // mean |lateral| floor, guards vertical bouncing
	MinVariance         float64       // rhythm cv below this is mechanically regular
	MaxVariance         float64       // rhythm cv above this is erratic shaking
	AxisDominanceRatio  float64       // one lateral axis above this share of variance is shaking
	AxisDominanceWindow int           // lateral samples examined for dominance
	RhythmHistorySize   int           // recent inter-step intervals kept
	AxisHistorySize     int           // recent lateral samples kept
	ConfidentStreak     int           // consecutive valid steps before confident-walk
}

// DefaultConfig returns the tuning that ships with the engine.
func DefaultConfig() Config {
	return Config{
		WindowSize:          25,
		MinWindowFill:       10,
		NeutralBaseline:     1.0,
		ThresholdMultiplier: 1.10,

		MinPeakDeviation: 0.12,
		MinExcursion:     50 * time.Millisecond,
		MaxExcursion:     400 * time.Millisecond,
		MinStepInterval:  300 * time.Millisecond,

		MaxStepInterval:     1500 * time.Millisecond,
		MinLateralMovement:  0.15,
		MinVariance:         0.05,
		MaxVariance:         0.55,
		AxisDominanceRatio:  0.85,
		AxisDominanceWindow: 15,
		RhythmHistorySize:   8,
		AxisHistorySize:     20,
		ConfidentStreak:     3,
	}
}
