package engine

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoangpq/crayon/engine/graphics"
	"github.com/hoangpq/crayon/engine/window"
)

// nopVisitor satisfies graphics.Visitor without touching any hardware.
type nopVisitor struct {
	nextID  uint32
	commits atomic.Int32
}

func (v *nopVisitor) alloc() uint32 { v.nextID++; return v.nextID }

func (v *nopVisitor) CreateBuffer(graphics.BufferKind, graphics.BufferHint, int, []byte) (uint32, error) {
	return v.alloc(), nil
}
func (v *nopVisitor) UpdateBuffer(uint32, graphics.BufferKind, int, []byte) error { return nil }
func (v *nopVisitor) DeleteBuffer(uint32, graphics.BufferKind) error              { return nil }
func (v *nopVisitor) CreateTexture(graphics.TextureSetup, []byte) (uint32, error) {
	return v.alloc(), nil
}
func (v *nopVisitor) CreateRenderTexture(graphics.RenderTextureSetup) (uint32, error) {
	return v.alloc(), nil
}
func (v *nopVisitor) DeleteTexture(uint32) error { return nil }
func (v *nopVisitor) CreateRenderBuffer(graphics.RenderBufferSetup) (uint32, error) {
	return v.alloc(), nil
}
func (v *nopVisitor) DeleteRenderBuffer(uint32) error    { return nil }
func (v *nopVisitor) CreateFrameBuffer() (uint32, error) { return v.alloc(), nil }
func (v *nopVisitor) AttachFrameBufferTexture(uint32, graphics.Attachment, uint32) error {
	return nil
}
func (v *nopVisitor) AttachFrameBufferRenderBuffer(uint32, graphics.Attachment, uint32) error {
	return nil
}
func (v *nopVisitor) DeleteFrameBuffer(uint32) error            { return nil }
func (v *nopVisitor) CreateProgram(_, _ string) (uint32, error) { return v.alloc(), nil }
func (v *nopVisitor) DeleteProgram(uint32) error                { return nil }
func (v *nopVisitor) GetUniformLocation(uint32, string) (int, error) {
	return 0, nil
}
func (v *nopVisitor) GetAttributeLocation(uint32, string) (int, error) {
	return 0, nil
}
func (v *nopVisitor) BindFrameBuffer(uint32) error                               { return nil }
func (v *nopVisitor) Clear(*graphics.Color, *float32, *int32) error              { return nil }
func (v *nopVisitor) SetViewport([2]uint16, [2]uint16) error                     { return nil }
func (v *nopVisitor) BindProgram(uint32) error                                   { return nil }
func (v *nopVisitor) BindUniform(int, graphics.UniformValue) error               { return nil }
func (v *nopVisitor) BindTexture(uint32, uint32) error                           { return nil }
func (v *nopVisitor) SetCullFace(graphics.CullFace) error                        { return nil }
func (v *nopVisitor) SetFrontFaceOrder(graphics.FrontFaceOrder) error            { return nil }
func (v *nopVisitor) SetDepthTest(graphics.Comparison) error                     { return nil }
func (v *nopVisitor) SetDepthWrite(bool, *[2]float32) error                      { return nil }
func (v *nopVisitor) SetColorBlend(*graphics.Blend) error                        { return nil }
func (v *nopVisitor) SetColorWrite(_, _, _, _ bool) error                        { return nil }
func (v *nopVisitor) BindVertexBuffer(uint32) error                              { return nil }
func (v *nopVisitor) BindIndexBuffer(uint32) error                               { return nil }
func (v *nopVisitor) BindAttributeLayout(_, _ graphics.AttributeLayout) error    { return nil }
func (v *nopVisitor) DrawElements(graphics.Primitive, graphics.IndexFormat, uint32, uint32) error {
	return nil
}
func (v *nopVisitor) DrawArrays(graphics.Primitive, uint32, uint32) error { return nil }
func (v *nopVisitor) Commit() error                                       { v.commits.Add(1); return nil }

// fakeWindow satisfies window.Window without a platform surface.
type fakeWindow struct {
	running bool
	events  []window.Event
}

func (w *fakeWindow) PollEvents() []window.Event {
	events := w.events
	w.events = nil
	return events
}

func (w *fakeWindow) Focused() bool                              { return true }
func (w *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }
func (w *fakeWindow) IsRunning() bool                            { return w.running }
func (w *fakeWindow) Close() error                               { w.running = false; return nil }
func (w *fakeWindow) Width() int                                 { return 640 }
func (w *fakeWindow) Height() int                                { return 480 }

// countingApp records how many times each phase ran and quits the engine
// after a fixed number of frames.
type countingApp struct {
	engine      Engine
	updates     int
	renders     int
	postUpdates int
	stopAfter   int

	updateErr error
	postErr   error
}

func (a *countingApp) OnUpdate(*Context) error {
	a.updates++
	return a.updateErr
}

func (a *countingApp) OnRender(*Context) error {
	a.renders++
	return nil
}

func (a *countingApp) OnPostUpdate(_ *Context, _ *FrameInfo) error {
	a.postUpdates++
	if a.postErr != nil {
		return a.postErr
	}
	if a.postUpdates >= a.stopAfter {
		a.engine.Quit()
	}
	return nil
}

func newTestEngine(t *testing.T, options ...EngineBuilderOption) Engine {
	t.Helper()
	options = append([]EngineBuilderOption{
		WithWindow(&fakeWindow{running: true}),
		WithVisitor(&nopVisitor{}),
		WithMaxFPS(0),
	}, options...)
	e, err := NewEngine(options...)
	require.NoError(t, err)
	return e
}

func TestNewEngineRequiresWindowOrVisitor(t *testing.T) {
	_, err := NewEngine()
	assert.Error(t, err)
}

func TestRunDrivesAllPhases(t *testing.T) {
	e := newTestEngine(t)
	app := &countingApp{engine: e, stopAfter: 3}

	require.NoError(t, e.Run(app))

	assert.Equal(t, 3, app.updates)
	assert.Equal(t, 3, app.renders)
	assert.Equal(t, 3, app.postUpdates)
}

func TestRunStopsOnUpdateError(t *testing.T) {
	e := newTestEngine(t)
	boom := errors.New("update failed")
	app := &countingApp{engine: e, stopAfter: 100, updateErr: boom}

	err := e.Run(app)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, app.updates)
	// The failing frame never reaches the post-update join.
	assert.Zero(t, app.postUpdates)
}

func TestRunStopsOnPostUpdateError(t *testing.T) {
	e := newTestEngine(t)
	boom := errors.New("post-update failed")
	app := &countingApp{engine: e, stopAfter: 100, postErr: boom}

	err := e.Run(app)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, app.postUpdates)
}

func TestRunStopsWhenWindowCloses(t *testing.T) {
	win := &fakeWindow{running: true, events: []window.Event{{Kind: window.EventClosed}}}
	e, err := NewEngine(WithWindow(win), WithVisitor(&nopVisitor{}), WithMaxFPS(0))
	require.NoError(t, err)

	app := &countingApp{engine: e, stopAfter: 100}
	require.NoError(t, e.Run(app))
	assert.Equal(t, 1, app.updates)
}

func TestRunRequiresApplication(t *testing.T) {
	e := newTestEngine(t)
	assert.Error(t, e.Run(nil))
}

func TestRunCommitsEveryFrame(t *testing.T) {
	visitor := &nopVisitor{}
	e, err := NewEngine(WithWindow(&fakeWindow{running: true}), WithVisitor(visitor), WithMaxFPS(0))
	require.NoError(t, err)

	app := &countingApp{engine: e, stopAfter: 2}
	require.NoError(t, e.Run(app))
	assert.Equal(t, int32(2), visitor.commits.Load())
}
