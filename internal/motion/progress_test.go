package motion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker_SignalsExactlyOnce(t *testing.T) {
	p := NewProgressTracker(3)

	assert.False(t, p.Increment())
	assert.False(t, p.Increment())
	assert.False(t, p.Completed())

	assert.True(t, p.Increment(), "crossing the target signals")
	assert.True(t, p.Completed())

	assert.False(t, p.Increment(), "later steps still count but never re-signal")
	assert.Equal(t, 4, p.Count())
	assert.True(t, p.Completed())
}

func TestProgressTracker_Reset(t *testing.T) {
	p := NewProgressTracker(2)
	p.Increment()
	p.Increment()
	assert.True(t, p.Completed())

	p.Reset(5)
	assert.Equal(t, 0, p.Count())
	assert.Equal(t, 5, p.Target())
	assert.False(t, p.Completed())

	// The one-shot signal is re-armed by the reset.
	for i := 0; i < 4; i++ {
		assert.False(t, p.Increment())
	}
	assert.True(t, p.Increment())
}
