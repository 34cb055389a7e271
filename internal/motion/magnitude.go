package motion

import "math"

// MagnitudeTracker keeps a bounded window of recent acceleration magnitudes
// and derives an adaptive baseline and detection threshold from it. The
// threshold follows carrying position and stride intensity instead of being
// fixed. Pure numeric transform, no errors.
type MagnitudeTracker struct {
	window []float64
	head   int
	size   int

	minFill    int
	neutral    float64
	multiplier float64
}

// NewMagnitudeTracker creates a tracker with a fixed-capacity window.
func NewMagnitudeTracker(cfg Config) *MagnitudeTracker {
	return &MagnitudeTracker{
		window:     make([]float64, cfg.WindowSize),
		minFill:    cfg.MinWindowFill,
		neutral:    cfg.NeutralBaseline,
		multiplier: cfg.ThresholdMultiplier,
	}
}

// Magnitude computes the Euclidean norm of a 3-axis sample.
func Magnitude(x, y, z float64) float64 {
	return math.Sqrt(x*x + y*y + z*z)
}

// Push appends one magnitude, evicting the oldest when the window is full.
func (t *MagnitudeTracker) Push(m float64) {
	t.window[t.head] = m
	t.head = (t.head + 1) % len(t.window)
	if t.size < len(t.window) {
		t.size++
	}
}

// Baseline returns the mean of the window, or the neutral default until
// enough samples have accumulated to make the mean stable.
func (t *MagnitudeTracker) Baseline() float64 {
	if t.size < t.minFill {
		return t.neutral
	}
	var sum float64
	for i := 0; i < t.size; i++ {
		sum += t.window[i]
	}
	return sum / float64(t.size)
}

// Threshold returns the dynamic step detection threshold.
func (t *MagnitudeTracker) Threshold() float64 {
	return t.Baseline() * t.multiplier
}

// Size returns the number of magnitudes currently held.
func (t *MagnitudeTracker) Size() int {
	return t.size
}

// Reset discards the window contents.
func (t *MagnitudeTracker) Reset() {
	t.head = 0
	t.size = 0
}
