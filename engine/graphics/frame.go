package graphics

import (
	"fmt"
)

// frameBufferCapacity is the initial byte capacity of each frame's TaskBuffer.
const frameBufferCapacity = 64 * 1024

// VideoFrameInfo summarizes one realized frame: the backend activity of its
// flush plus the live resource population at the time of the flush.
type VideoFrameInfo struct {
	// Flush is the backend activity realized by the frame's flush.
	Flush FlushStats

	// AliveVertexBuffers is the number of live vertex buffers.
	AliveVertexBuffers int

	// AliveIndexBuffers is the number of live index buffers.
	AliveIndexBuffers int

	// AlivePipelines is the number of live pipelines.
	AlivePipelines int

	// AliveViews is the number of live views.
	AliveViews int

	// AliveTextures is the number of live textures, render textures included.
	AliveTextures int

	// AliveFrameBuffers is the number of live framebuffers.
	AliveFrameBuffers int
}

// SurfaceResizer is implemented by backends whose presentation surface must
// be reconfigured when the window size changes.
type SurfaceResizer interface {
	ConfigureSurface(width, height int) error
}

// GraphicsSystem is the application-facing front of the rendering core. It
// allocates generation-tagged handles, drives the Device, and owns the two
// per-frame TaskBuffers that carry serialized draw-call bindings.
//
// Handle allocation and draw submission run on the application's frame phase;
// Advance runs on the thread owning the graphics context.
type GraphicsSystem struct {
	device  *Device
	visitor Visitor

	vertexBuffers HandlePool
	indexBuffers  HandlePool
	pipelines     HandlePool
	views         HandlePool
	textures      HandlePool
	renderBuffers HandlePool
	frameBuffers  HandlePool

	// buffers holds the per-frame serialization arenas; writeSide mirrors the
	// Device's queue side and flips with it.
	buffers   [2]*TaskBuffer
	writeSide int
}

// NewGraphicsSystem creates a GraphicsSystem over the given backend visitor.
//
// Parameters:
//   - visitor: the backend adapter; must not be nil
//
// Returns:
//   - *GraphicsSystem: the newly created system
func NewGraphicsSystem(visitor Visitor) *GraphicsSystem {
	return &GraphicsSystem{
		device:  NewDevice(visitor),
		visitor: visitor,
		buffers: [2]*TaskBuffer{
			NewTaskBuffer(frameBufferCapacity),
			NewTaskBuffer(frameBufferCapacity),
		},
	}
}

// Device exposes the underlying device, mainly for tests and tooling.
//
// Returns:
//   - *Device: the device driven by this system
func (g *GraphicsSystem) Device() *Device {
	return g.device
}

// ConfigureSurface forwards a window resize to the backend when the backend
// presents through a configurable surface. Backends without one ignore it.
//
// Parameters:
//   - width: new surface width in pixels
//   - height: new surface height in pixels
//
// Returns:
//   - error: a backend error from the reconfiguration
func (g *GraphicsSystem) ConfigureSurface(width, height int) error {
	if resizer, ok := g.visitor.(SurfaceResizer); ok {
		return resizer.ConfigureSurface(width, height)
	}
	return nil
}

// CreateVertexBuffer allocates a handle and creates the backend buffer.
// The handle slot returns to the pool on backend failure.
//
// Parameters:
//   - setup: creation configuration
//   - data: initial contents, or nil
//
// Returns:
//   - VertexBufferHandle: the live handle
//   - error: a device or backend error
func (g *GraphicsSystem) CreateVertexBuffer(setup VertexBufferSetup, data []byte) (VertexBufferHandle, error) {
	handle := VertexBufferHandle(g.vertexBuffers.Allocate())
	if err := g.device.CreateVertexBuffer(handle, setup, data); err != nil {
		g.vertexBuffers.Free(Handle(handle))
		return VertexBufferHandle{}, err
	}
	return handle, nil
}

// UpdateVertexBuffer overwrites a byte range of a live vertex buffer.
func (g *GraphicsSystem) UpdateVertexBuffer(handle VertexBufferHandle, offset int, data []byte) error {
	return g.device.UpdateVertexBuffer(handle, offset, data)
}

// DeleteVertexBuffer releases the buffer and frees its handle.
func (g *GraphicsSystem) DeleteVertexBuffer(handle VertexBufferHandle) error {
	if err := g.device.DeleteVertexBuffer(handle); err != nil {
		return err
	}
	g.vertexBuffers.Free(Handle(handle))
	return nil
}

// CreateIndexBuffer allocates a handle and creates the backend buffer.
func (g *GraphicsSystem) CreateIndexBuffer(setup IndexBufferSetup, data []byte) (IndexBufferHandle, error) {
	handle := IndexBufferHandle(g.indexBuffers.Allocate())
	if err := g.device.CreateIndexBuffer(handle, setup, data); err != nil {
		g.indexBuffers.Free(Handle(handle))
		return IndexBufferHandle{}, err
	}
	return handle, nil
}

// UpdateIndexBuffer overwrites a byte range of a live index buffer.
func (g *GraphicsSystem) UpdateIndexBuffer(handle IndexBufferHandle, offset int, data []byte) error {
	return g.device.UpdateIndexBuffer(handle, offset, data)
}

// DeleteIndexBuffer releases the buffer and frees its handle.
func (g *GraphicsSystem) DeleteIndexBuffer(handle IndexBufferHandle) error {
	if err := g.device.DeleteIndexBuffer(handle); err != nil {
		return err
	}
	g.indexBuffers.Free(Handle(handle))
	return nil
}

// CreatePipeline allocates a handle and compiles the shader pair into a
// pipeline with the given layout and state.
func (g *GraphicsSystem) CreatePipeline(setup PipelineSetup, vs, fs string) (PipelineHandle, error) {
	handle := PipelineHandle(g.pipelines.Allocate())
	if err := g.device.CreatePipeline(handle, setup, vs, fs); err != nil {
		g.pipelines.Free(Handle(handle))
		return PipelineHandle{}, err
	}
	return handle, nil
}

// UpdatePipelineUniform persists a uniform value on a live pipeline.
func (g *GraphicsSystem) UpdatePipelineUniform(handle PipelineHandle, name string, value UniformValue) error {
	return g.device.UpdatePipelineUniform(handle, name, value)
}

// DeletePipeline releases the pipeline and frees its handle.
func (g *GraphicsSystem) DeletePipeline(handle PipelineHandle) error {
	if err := g.device.DeletePipeline(handle); err != nil {
		return err
	}
	g.pipelines.Free(Handle(handle))
	return nil
}

// CreateView allocates a handle and creates a view with the given setup.
func (g *GraphicsSystem) CreateView(setup ViewSetup) (ViewHandle, error) {
	handle := ViewHandle(g.views.Allocate())
	if err := g.device.CreateView(handle, setup); err != nil {
		g.views.Free(Handle(handle))
		return ViewHandle{}, err
	}
	return handle, nil
}

// DeleteView removes the view, discarding queued draw calls, and frees its
// handle.
func (g *GraphicsSystem) DeleteView(handle ViewHandle) error {
	if err := g.device.DeleteView(handle); err != nil {
		return err
	}
	g.views.Free(Handle(handle))
	return nil
}

// CreateTexture allocates a handle and creates a sampled texture.
func (g *GraphicsSystem) CreateTexture(setup TextureSetup, data []byte) (TextureHandle, error) {
	handle := TextureHandle(g.textures.Allocate())
	if err := g.device.CreateTexture(handle, setup, data); err != nil {
		g.textures.Free(Handle(handle))
		return TextureHandle{}, err
	}
	return handle, nil
}

// CreateRenderTexture allocates a handle and creates a texture usable both
// as a framebuffer attachment and for sampling.
func (g *GraphicsSystem) CreateRenderTexture(setup RenderTextureSetup) (TextureHandle, error) {
	handle := TextureHandle(g.textures.Allocate())
	if err := g.device.CreateRenderTexture(handle, setup); err != nil {
		g.textures.Free(Handle(handle))
		return TextureHandle{}, err
	}
	return handle, nil
}

// DeleteTexture releases the texture and frees its handle.
func (g *GraphicsSystem) DeleteTexture(handle TextureHandle) error {
	if err := g.device.DeleteTexture(handle); err != nil {
		return err
	}
	g.textures.Free(Handle(handle))
	return nil
}

// CreateRenderBuffer allocates a handle and creates a write-only render
// target attachment.
func (g *GraphicsSystem) CreateRenderBuffer(setup RenderBufferSetup) (RenderBufferHandle, error) {
	handle := RenderBufferHandle(g.renderBuffers.Allocate())
	if err := g.device.CreateRenderBuffer(handle, setup); err != nil {
		g.renderBuffers.Free(Handle(handle))
		return RenderBufferHandle{}, err
	}
	return handle, nil
}

// DeleteRenderBuffer releases the render buffer and frees its handle.
func (g *GraphicsSystem) DeleteRenderBuffer(handle RenderBufferHandle) error {
	if err := g.device.DeleteRenderBuffer(handle); err != nil {
		return err
	}
	g.renderBuffers.Free(Handle(handle))
	return nil
}

// CreateFrameBuffer allocates a handle and creates an empty framebuffer.
func (g *GraphicsSystem) CreateFrameBuffer() (FrameBufferHandle, error) {
	handle := FrameBufferHandle(g.frameBuffers.Allocate())
	if err := g.device.CreateFrameBuffer(handle); err != nil {
		g.frameBuffers.Free(Handle(handle))
		return FrameBufferHandle{}, err
	}
	return handle, nil
}

// UpdateFrameBufferTexture attaches a render texture to a framebuffer slot.
func (g *GraphicsSystem) UpdateFrameBufferTexture(handle FrameBufferHandle, texture TextureHandle, slot uint32) error {
	return g.device.UpdateFrameBufferTexture(handle, texture, slot)
}

// UpdateFrameBufferRenderBuffer attaches a render buffer to a framebuffer
// slot.
func (g *GraphicsSystem) UpdateFrameBufferRenderBuffer(handle FrameBufferHandle, buffer RenderBufferHandle, slot uint32) error {
	return g.device.UpdateFrameBufferRenderBuffer(handle, buffer, slot)
}

// DeleteFrameBuffer releases the framebuffer and frees its handle.
func (g *GraphicsSystem) DeleteFrameBuffer(handle FrameBufferHandle) error {
	if err := g.device.DeleteFrameBuffer(handle); err != nil {
		return err
	}
	g.frameBuffers.Free(Handle(handle))
	return nil
}

// Draw starts a draw-call builder recording into the current write-side
// frame. The builder serializes uniform and texture bindings into the frame's
// TaskBuffer; nothing reaches the Device until Submit.
//
// Returns:
//   - *DrawCallBuilder: a fresh builder with default state
func (g *GraphicsSystem) Draw() *DrawCallBuilder {
	return &DrawCallBuilder{graphics: g}
}

// SwapFrames flips both the Device's queue side and the TaskBuffer side, and
// resets the new write-side buffer. Called by the scheduler at the frame
// boundary, with both frame phases joined.
//
// Returns:
//   - error: a wrapped backend error from the device swap
func (g *GraphicsSystem) SwapFrames() error {
	g.writeSide ^= 1
	g.buffers[g.writeSide].Reset()
	return g.device.SwapFrames()
}

// Advance flushes the read-side frame against the backend and reports what
// was realized. Runs once per frame on the thread owning the graphics
// context, concurrently with the application recording the next frame.
//
// Parameters:
//   - width: frame width in pixels
//   - height: frame height in pixels
//
// Returns:
//   - VideoFrameInfo: flush stats and live resource counts
//   - error: the first binding or backend error of the flush, wrapped
func (g *GraphicsSystem) Advance(width, height uint16) (VideoFrameInfo, error) {
	stats, err := g.device.Flush(g.buffers[g.writeSide^1], width, height)

	counts := g.device.resourceCounts()
	info := VideoFrameInfo{
		Flush:              stats,
		AliveVertexBuffers: counts[0],
		AliveIndexBuffers:  counts[1],
		AlivePipelines:     counts[2],
		AliveViews:         counts[3],
		AliveTextures:      counts[4],
		AliveFrameBuffers:  counts[5],
	}
	return info, err
}

// DrawCallBuilder accumulates the configuration of one deferred draw call.
// Zero-value fields fall back to defaults: priority zero, the zero view and
// no index buffer.
type DrawCallBuilder struct {
	graphics *GraphicsSystem

	priority     uint64
	view         ViewHandle
	pipeline     PipelineHandle
	uniforms     []UniformBinding
	textures     []TextureBinding
	vertexBuffer VertexBufferHandle
	indexBuffer  IndexBufferHandle
}

// WithPriority sets the draw ordering rank within the view.
func (b *DrawCallBuilder) WithPriority(priority uint64) *DrawCallBuilder {
	b.priority = priority
	return b
}

// WithView targets the draw call at a view.
func (b *DrawCallBuilder) WithView(view ViewHandle) *DrawCallBuilder {
	b.view = view
	return b
}

// WithPipeline selects the pipeline to draw with.
func (b *DrawCallBuilder) WithPipeline(pipeline PipelineHandle) *DrawCallBuilder {
	b.pipeline = pipeline
	return b
}

// WithUniform records a per-draw uniform binding, serializing the name into
// the frame's TaskBuffer immediately.
func (b *DrawCallBuilder) WithUniform(name string, value UniformValue) *DrawCallBuilder {
	buf := b.graphics.buffers[b.graphics.writeSide]
	b.uniforms = append(b.uniforms, UniformBinding{
		Name:  WriteString(buf, name),
		Value: value,
	})
	return b
}

// WithTexture records a per-draw texture binding at the named sampler.
func (b *DrawCallBuilder) WithTexture(name string, texture TextureHandle) *DrawCallBuilder {
	buf := b.graphics.buffers[b.graphics.writeSide]
	b.textures = append(b.textures, TextureBinding{
		Name:    WriteString(buf, name),
		Texture: texture,
	})
	return b
}

// WithData sets the vertex source and optionally the index source. Pass the
// zero IndexBufferHandle for a non-indexed draw.
func (b *DrawCallBuilder) WithData(vertexBuffer VertexBufferHandle, indexBuffer IndexBufferHandle) *DrawCallBuilder {
	b.vertexBuffer = vertexBuffer
	b.indexBuffer = indexBuffer
	return b
}

// Submit finalizes the builder into the view's queue. The accumulated
// bindings are serialized into the frame's TaskBuffer and only their offsets
// travel with the draw call.
//
// Parameters:
//   - primitive: the primitive kind
//   - from: first element of the draw range
//   - count: element count of the draw range
//
// Returns:
//   - error: ErrInvalidHandle if the view does not exist
func (b *DrawCallBuilder) Submit(primitive Primitive, from, count uint32) error {
	if Handle(b.vertexBuffer).Nil() {
		return fmt.Errorf("graphics: draw call without vertex buffer: %w", ErrInvalidHandle)
	}

	buf := b.graphics.buffers[b.graphics.writeSide]
	uniforms := WriteSlice(buf, b.uniforms)
	textures := WriteSlice(buf, b.textures)

	return b.graphics.device.Submit(
		b.priority,
		b.view,
		b.pipeline,
		uniforms,
		textures,
		b.vertexBuffer,
		b.indexBuffer,
		primitive,
		from, count,
	)
}
