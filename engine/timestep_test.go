package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestApplyTimestepPassthrough(t *testing.T) {
	e := &engine{}

	assert.Equal(t, 16*time.Millisecond, e.applyTimestep(16*time.Millisecond))
	assert.Equal(t, 250*time.Millisecond, e.applyTimestep(250*time.Millisecond))
}

func TestApplyTimestepMinRateClamp(t *testing.T) {
	e := &engine{minFPS: 10}

	// A hitch longer than the 10 fps floor is clamped to 100ms so the
	// simulation never receives a runaway step.
	assert.Equal(t, 100*time.Millisecond, e.applyTimestep(250*time.Millisecond))
	assert.Equal(t, 100*time.Millisecond, e.applyTimestep(100*time.Millisecond))
	assert.Equal(t, 16*time.Millisecond, e.applyTimestep(16*time.Millisecond))
}

func TestApplyTimestepSmoothing(t *testing.T) {
	e := &engine{smoothWindow: 4}

	inputs := []time.Duration{
		10 * time.Millisecond,
		20 * time.Millisecond,
		30 * time.Millisecond,
		40 * time.Millisecond,
		50 * time.Millisecond,
	}

	var last time.Duration
	for _, input := range inputs {
		last = e.applyTimestep(input)
	}

	// Mean over the last four samples: (20+30+40+50)/4.
	assert.Equal(t, 35*time.Millisecond, last)
}

func TestApplyTimestepSmoothingPartialWindow(t *testing.T) {
	e := &engine{smoothWindow: 8}

	e.applyTimestep(10 * time.Millisecond)
	got := e.applyTimestep(30 * time.Millisecond)

	// With fewer samples than the window holds, the mean covers what exists.
	assert.Equal(t, 20*time.Millisecond, got)
}

func TestApplyTimestepClampFeedsSmoothing(t *testing.T) {
	e := &engine{minFPS: 10, smoothWindow: 2}

	e.applyTimestep(100 * time.Millisecond)
	got := e.applyTimestep(300 * time.Millisecond)

	// The hitch is clamped to 100ms before entering the window.
	assert.Equal(t, 100*time.Millisecond, got)
}

func TestApplyTimestepSmoothingDisabled(t *testing.T) {
	for _, window := range []int{0, 1} {
		e := &engine{smoothWindow: window}
		e.applyTimestep(10 * time.Millisecond)
		got := e.applyTimestep(30 * time.Millisecond)
		assert.Equal(t, 30*time.Millisecond, got)
	}
}
