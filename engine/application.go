package engine

import (
	"time"

	"github.com/hoangpq/crayon/engine/graphics"
	"github.com/hoangpq/crayon/engine/window"
)

// Application is the game-side half of the frame loop. The engine drives it
// through three phases per frame:
//
//	OnUpdate and OnRender run back to back on a worker, recording the next
//	frame, while the engine realizes the previous frame against the GPU.
//	OnPostUpdate runs after both halves joined, with the realized frame's
//	statistics in hand.
//
// An error from any phase stops the loop and is returned from Run.
type Application interface {
	// OnUpdate advances game logic by the frame's timestep.
	//
	// Parameters:
	//   - ctx: the frame context
	//
	// Returns:
	//   - error: a fatal application error
	OnUpdate(ctx *Context) error

	// OnRender records the frame's draw calls through ctx.Graphics.
	//
	// Parameters:
	//   - ctx: the frame context
	//
	// Returns:
	//   - error: a fatal application error
	OnRender(ctx *Context) error

	// OnPostUpdate runs once per frame after update, render and the previous
	// frame's GPU realization have all completed.
	//
	// Parameters:
	//   - ctx: the frame context
	//   - info: statistics of the frame that was just realized
	//
	// Returns:
	//   - error: a fatal application error
	OnPostUpdate(ctx *Context, info *FrameInfo) error
}

// Context carries the per-frame state handed to the application. The engine
// owns it; applications read it during their phase and must not retain it
// across frames.
type Context struct {
	// Graphics is the rendering front end for resource management and draw
	// submission.
	Graphics *graphics.GraphicsSystem

	// Window is the platform window.
	Window window.Window

	// Timestep is the smoothed, clamped duration the simulation should
	// advance this frame.
	Timestep time.Duration

	// Events holds the window and input events drained at the top of the
	// frame, in arrival order.
	Events []window.Event
}

// FrameInfo summarizes one completed frame.
type FrameInfo struct {
	// Duration is the wall time the frame's update/render/flush span took.
	Duration time.Duration

	// Timestep is the simulation timestep the frame ran with.
	Timestep time.Duration

	// Video is the rendering side of the frame: flush stats and live
	// resource counts.
	Video graphics.VideoFrameInfo
}
