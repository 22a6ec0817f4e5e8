package engine

import (
	"github.com/hoangpq/crayon/engine/graphics"
	"github.com/hoangpq/crayon/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithWindow sets a custom configured window for the engine to use rather than allowing the engine
// to create and manage one internally.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithVisitor injects a graphics backend, skipping WebGPU backend creation.
// Mainly useful for tests and headless tooling.
//
// Parameters:
//   - v: the backend visitor
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithVisitor(v graphics.Visitor) EngineBuilderOption {
	return func(e *engine) {
		e.visitor = v
	}
}

// WithMinFPS floors the effective frame rate: a frame slower than this rate
// contributes at most the rate's duration to the timestep.
//
// Parameters:
//   - fps: minimum frames per second (0 = no floor)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithMinFPS(fps uint32) EngineBuilderOption {
	return func(e *engine) {
		e.minFPS = fps
	}
}

// WithMaxFPS caps the frame rate while the window is focused.
//
// Parameters:
//   - fps: maximum frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithMaxFPS(fps uint32) EngineBuilderOption {
	return func(e *engine) {
		e.maxFPS = fps
	}
}

// WithMaxInactiveFPS caps the frame rate while the window is unfocused,
// replacing the focused cap.
//
// Parameters:
//   - fps: maximum frames per second while unfocused (0 = keep the focused cap)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithMaxInactiveFPS(fps uint32) EngineBuilderOption {
	return func(e *engine) {
		e.maxInactiveFPS = fps
	}
}

// WithTimeSmoothingWindow sets how many recent frame durations are averaged
// into the simulation timestep.
//
// Parameters:
//   - frames: sample window length (0 or 1 = no smoothing)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTimeSmoothingWindow(frames int) EngineBuilderOption {
	return func(e *engine) {
		e.smoothWindow = frames
	}
}

// WithWorkers sets the worker pool size backing the application's
// update/render phase.
//
// Parameters:
//   - workers: pool size (values < 1 keep the default)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWorkers(workers int) EngineBuilderOption {
	return func(e *engine) {
		if workers >= 1 {
			e.workers = workers
		}
	}
}
