package engine

import (
	"errors"
	"fmt"
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"

	"github.com/hoangpq/crayon/engine/graphics"
	"github.com/hoangpq/crayon/engine/graphics/webgpu"
	"github.com/hoangpq/crayon/engine/profiler"
	"github.com/hoangpq/crayon/engine/window"
)

// frameSleepThreshold is the remaining frame slack above which the pacing
// loop sleeps instead of yielding.
const frameSleepThreshold = 5 * time.Millisecond

// engine implements the Engine interface.
// Coordinates the frame loop: event pumping, pacing, the update/flush
// overlap and the post-update join.
type engine struct {
	running bool

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window   window.Window
	visitor  graphics.Visitor
	graphics *graphics.GraphicsSystem

	// pool runs the application's update/render phase while the engine
	// thread realizes the previous frame.
	pool    worker.DynamicWorkerPool
	workers int
	taskID  int

	profiler         *profiler.Profiler
	profilingEnabled bool

	// minFPS floors the effective frame rate: longer frames are clamped to
	// this rate's duration before smoothing. 0 disables the clamp.
	minFPS uint32

	// maxFPS caps the frame rate while the window is focused. 0 uncaps.
	maxFPS uint32

	// maxInactiveFPS replaces maxFPS while the window is unfocused. 0 keeps
	// the focused cap.
	maxInactiveFPS uint32

	// smoothWindow is the number of recent frame durations averaged into the
	// timestep. 0 or 1 disables smoothing.
	smoothWindow int
	samples      []time.Duration

	lastFrameTime time.Time
	timestep      time.Duration

	frameCount uint32
	fps        uint32
	fpsTimer   time.Time
}

// Engine is the main entry point. It owns the frame loop: window event
// pumping, frame pacing and timestep shaping, and the per-frame overlap
// where the application records frame N on a worker while the engine thread
// realizes frame N-1 against the GPU.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Graphics returns the rendering front end.
	//
	// Returns:
	//   - *graphics.GraphicsSystem: the graphics system
	Graphics() *graphics.GraphicsSystem

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// FPS returns the frame rate measured over the last full second.
	//
	// Returns:
	//   - uint32: frames per second
	FPS() uint32

	// TimestepInSeconds returns the current frame's shaped timestep.
	//
	// Returns:
	//   - float32: the timestep in seconds
	TimestepInSeconds() float32

	// Run drives the frame loop with the given application until the window
	// closes, Quit is called, or an application phase fails.
	// Must be called on the thread that created the window.
	//
	// Parameters:
	//   - app: the application to drive
	//
	// Returns:
	//   - error: the first fatal application error, or nil on a clean stop
	Run(app Application) error

	// Quit signals the frame loop to stop after the in-flight frame.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// A window must be supplied via WithWindow; the WebGPU backend is created
// against it unless WithVisitor injects one.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
//   - error: error if the backend cannot be created
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		quitChannel: make(chan struct{}),
		profiler:    profiler.NewProfiler(),
		maxFPS:      60,
		workers:     2,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.window == nil && e.visitor == nil {
		return nil, errors.New("engine: a window or a visitor is required")
	}

	if e.visitor == nil {
		visitor, err := webgpu.New(e.window.SurfaceDescriptor(), e.window.Width(), e.window.Height())
		if err != nil {
			return nil, fmt.Errorf("engine: create backend: %w", err)
		}
		e.visitor = visitor
	}
	e.graphics = graphics.NewGraphicsSystem(e.visitor)

	// Queue size of 256 leaves headroom; the loop submits one task per frame.
	e.pool = worker.NewDynamicWorkerPool(e.workers, 256, 1*time.Second)

	return e, nil
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Graphics() *graphics.GraphicsSystem {
	return e.graphics
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) FPS() uint32 {
	return e.fps
}

func (e *engine) TimestepInSeconds() float32 {
	return float32(e.timestep.Seconds())
}

// Quit signals the frame loop to stop after the in-flight frame.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

func (e *engine) Run(app Application) error {
	if app == nil {
		return errors.New("engine: Run requires an application")
	}

	e.running = true
	e.lastFrameTime = time.Now()
	e.fpsTimer = e.lastFrameTime

	ctx := &Context{
		Graphics: e.graphics,
		Window:   e.window,
	}

	for e.running {
		select {
		case <-e.quitChannel:
			e.running = false
			continue
		default:
		}

		closing := false
		var events []window.Event
		if e.window != nil {
			events = e.window.PollEvents()
			for _, event := range events {
				switch event.Kind {
				case window.EventClosed:
					closing = true
				case window.EventResized:
					if err := e.graphics.ConfigureSurface(event.Width, event.Height); err != nil {
						log.Printf("engine: surface reconfigure failed: %v", err)
					}
				}
			}
		}

		ctx.Timestep = e.advance()
		ctx.Events = events

		if err := e.graphics.SwapFrames(); err != nil {
			return fmt.Errorf("engine: frame swap: %w", err)
		}

		frameStart := time.Now()

		// Fork: the worker records frame N while this thread realizes the
		// draw calls frame N-1 queued.
		var wg sync.WaitGroup
		var appErr error
		wg.Add(1)
		e.taskID++
		e.pool.SubmitTask(worker.Task{
			ID: e.taskID,
			Do: func() (any, error) {
				defer wg.Done()
				if err := app.OnUpdate(ctx); err != nil {
					appErr = err
					return nil, err
				}
				if err := app.OnRender(ctx); err != nil {
					appErr = err
					return nil, err
				}
				return nil, nil
			},
		})

		width, height := e.frameSize()
		video, flushErr := e.graphics.Advance(width, height)

		wg.Wait()

		if appErr != nil {
			return appErr
		}
		// A flush failure drops the remainder of that frame's draws but is
		// not fatal to the loop.
		if flushErr != nil {
			log.Printf("engine: frame flush incomplete: %v", flushErr)
		}

		info := FrameInfo{
			Duration: time.Since(frameStart),
			Timestep: ctx.Timestep,
			Video:    video,
		}
		if err := app.OnPostUpdate(ctx, &info); err != nil {
			return err
		}

		if e.profilingEnabled && e.profiler != nil {
			e.profiler.Observe(video.Flush.DrawCalls, video.Flush.Primitives)
			e.profiler.Tick()
		}

		e.frameCount++
		if now := time.Now(); now.Sub(e.fpsTimer) >= time.Second {
			e.fps = e.frameCount
			e.frameCount = 0
			e.fpsTimer = now
		}

		if closing || (e.window != nil && !e.window.IsRunning()) {
			e.running = false
		}
	}

	return nil
}

// frameSize returns the current frame dimensions in pixels.
func (e *engine) frameSize() (uint16, uint16) {
	if e.window == nil {
		return 0, 0
	}
	return uint16(e.window.Width()), uint16(e.window.Height())
}

// advance paces the frame against the active frame-rate cap, then shapes the
// elapsed wall time into the simulation timestep.
func (e *engine) advance() time.Duration {
	limit := e.maxFPS
	if e.maxInactiveFPS > 0 && e.window != nil && !e.window.Focused() {
		limit = e.maxInactiveFPS
	}

	if limit > 0 {
		frameDuration := time.Second / time.Duration(limit)
		for {
			slack := frameDuration - time.Since(e.lastFrameTime)
			if slack <= 0 {
				break
			}
			// Coarse sleep while far from the deadline, busy yield close to
			// it: sleeping the whole slack overshoots on most schedulers.
			if slack > frameSleepThreshold {
				time.Sleep(time.Millisecond)
			} else {
				runtime.Gosched()
			}
		}
	}

	now := time.Now()
	elapsed := now.Sub(e.lastFrameTime)
	e.lastFrameTime = now

	e.timestep = e.applyTimestep(elapsed)
	return e.timestep
}

// applyTimestep clamps a frame duration to the minimum-rate floor, then
// smooths it over the recent sample window. With fewer samples than the
// window holds, the mean covers what has been collected so far.
func (e *engine) applyTimestep(elapsed time.Duration) time.Duration {
	if e.minFPS > 0 {
		if floor := time.Second / time.Duration(e.minFPS); elapsed > floor {
			elapsed = floor
		}
	}

	if e.smoothWindow > 1 {
		e.samples = append(e.samples, elapsed)
		if len(e.samples) > e.smoothWindow {
			e.samples = e.samples[len(e.samples)-e.smoothWindow:]
		}
		var sum time.Duration
		for _, sample := range e.samples {
			sum += sample
		}
		elapsed = sum / time.Duration(len(e.samples))
	}

	return elapsed
}
