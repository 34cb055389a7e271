package motion

// ProgressTracker accumulates valid steps against a target and exposes
// completion as a one-shot event. The count is monotonic within a session;
// only an explicit Reset starts over.
type ProgressTracker struct {
	target    int
	count     int
	completed bool
}

// NewProgressTracker creates a tracker for the given step target.
func NewProgressTracker(target int) *ProgressTracker {
	return &ProgressTracker{target: target}
}

// Increment counts one valid step. It returns true exactly once, on the
// increment that first reaches the target; later increments still count but
// no longer signal.
func (p *ProgressTracker) Increment() bool {
	p.count++
	if !p.completed && p.count >= p.target {
		p.completed = true
		return true
	}
	return false
}

// Count returns the valid steps accumulated so far.
func (p *ProgressTracker) Count() int {
	return p.count
}

// Target returns the step goal.
func (p *ProgressTracker) Target() int {
	return p.target
}

// Completed reports whether the target has been reached.
func (p *ProgressTracker) Completed() bool {
	return p.completed
}

// Reset starts the session count over with a new target.
func (p *ProgressTracker) Reset(target int) {
	p.target = target
	p.count = 0
	p.completed = false
}
