package graphics

import (
	"fmt"
	"sort"
	"sync"
)

// UniformBinding is one serialized uniform name/value pair of a draw call.
// The name lives in the frame's TaskBuffer.
type UniformBinding struct {
	// Name points at the uniform name within the frame's TaskBuffer.
	Name TaskBufferPtr[byte]

	// Value is the uniform payload.
	Value UniformValue
}

// TextureBinding is one serialized sampler name/texture pair of a draw call.
type TextureBinding struct {
	// Name points at the sampler uniform name within the frame's TaskBuffer.
	Name TaskBufferPtr[byte]

	// Texture is the texture to bind at the sampler.
	Texture TextureHandle
}

// drawCall is a recorded, deferred request to render primitives. Immutable
// once recorded; consumed and discarded at flush.
type drawCall struct {
	priority     uint64
	pipeline     PipelineHandle
	uniforms     TaskBufferPtr[UniformBinding]
	textures     TaskBufferPtr[TextureBinding]
	vertexBuffer VertexBufferHandle
	indexBuffer  IndexBufferHandle
	primitive    Primitive
	from         uint32
	count        uint32
}

// Resource objects pair the backend identifier with the setup used at
// creation, kept for validation and rebinding.
type (
	vertexBufferObject struct {
		id    uint32
		setup VertexBufferSetup
	}

	indexBufferObject struct {
		id    uint32
		setup IndexBufferSetup
	}

	pipelineObject struct {
		id    uint32
		setup PipelineSetup
		// uniforms persists the last value bound per name across frames,
		// independent of per-draw uniforms; re-applied on full pipeline bind.
		uniforms map[string]UniformValue
	}

	textureObject struct {
		id     uint32
		render bool
		setup  TextureSetup
		target RenderTextureSetup
	}

	renderBufferObject struct {
		id    uint32
		setup RenderBufferSetup
	}

	frameBufferObject struct {
		id uint32
	}
)

// viewObject is a render target configuration plus its double-buffered queue
// of pending draw calls. The queue side written by Submit and the side read
// by Flush are exchanged at the frame swap, never the same side at once.
type viewObject struct {
	setup ViewSetup

	mu     sync.Mutex
	queues [2][]drawCall
}

// FlushStats aggregates backend activity realized by one flush.
type FlushStats struct {
	// Views is the number of views whose target was bound this frame.
	Views uint32

	// DrawCalls is the number of draw calls issued to the backend.
	DrawCalls uint32

	// Primitives is the number of primitives those draw calls covered.
	Primitives uint32
}

// Device owns the per-kind handle tables, accepts deferred draw-call
// submissions into per-view queues, and executes the flush protocol that
// translates queued draw calls into ordered backend calls.
//
// Resource create/update/delete may run on the application phase concurrently
// with the previous frame's flush; the table lock serializes them. Everything
// from BindFrameBuffer to Commit happens only inside Flush, on the thread
// owning the graphics context.
type Device struct {
	visitor Visitor

	mu            sync.RWMutex
	vertexBuffers Table[vertexBufferObject]
	indexBuffers  Table[indexBufferObject]
	pipelines     Table[*pipelineObject]
	views         Table[*viewObject]
	textures      Table[textureObject]
	renderBuffers Table[renderBufferObject]
	frameBuffers  Table[frameBufferObject]

	// writeSide selects which per-view queue Submit appends to; Flush drains
	// the other. Flipped only by SwapFrames, with both frame phases joined.
	writeSide int

	// activePipeline caches the pipeline whose full state the backend
	// currently carries, so consecutive draw calls sharing a pipeline skip
	// the full rebinding sequence. Reset at every frame swap.
	activePipeline PipelineHandle
}

// NewDevice creates a Device driving the given backend visitor.
//
// Parameters:
//   - visitor: the backend adapter; must not be nil
//
// Returns:
//   - *Device: the newly created device
func NewDevice(visitor Visitor) *Device {
	if visitor == nil {
		panic("graphics: NewDevice requires a non-nil Visitor")
	}
	return &Device{visitor: visitor}
}

// CreateVertexBuffer allocates a backend vertex buffer at the handle.
// Fails with ErrDuplicatedHandle if the slot is occupied.
//
// Parameters:
//   - handle: the slot to occupy
//   - setup: creation configuration, kept for later validation
//   - data: initial contents, or nil
//
// Returns:
//   - error: ErrDuplicatedHandle, or a wrapped backend error
func (d *Device) CreateVertexBuffer(handle VertexBufferHandle, setup VertexBufferSetup, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.vertexBuffers.Get(Handle(handle)); ok {
		return ErrDuplicatedHandle
	}

	id, err := d.visitor.CreateBuffer(BufferKindVertex, setup.Hint, setup.Size(), data)
	if err != nil {
		return fmt.Errorf("graphics: create vertex buffer: %w", err)
	}

	d.vertexBuffers.Set(Handle(handle), vertexBufferObject{id: id, setup: setup})
	return nil
}

// UpdateVertexBuffer overwrites a byte range of an existing vertex buffer.
// Immutable-hint buffers reject updates unconditionally, checked before the
// bounds check.
//
// Parameters:
//   - handle: the buffer to update
//   - offset: byte offset of the write
//   - data: bytes to write
//
// Returns:
//   - error: ErrInvalidHandle, ErrImmutableResource, ErrOutOfBounds, or a
//     wrapped backend error
func (d *Device) UpdateVertexBuffer(handle VertexBufferHandle, offset int, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	vbo, ok := d.vertexBuffers.Get(Handle(handle))
	if !ok {
		return ErrInvalidHandle
	}
	if vbo.setup.Hint == BufferHintImmutable {
		return ErrImmutableResource
	}
	if offset < 0 || offset+len(data) > vbo.setup.Size() {
		return ErrOutOfBounds
	}

	if err := d.visitor.UpdateBuffer(vbo.id, BufferKindVertex, offset, data); err != nil {
		return fmt.Errorf("graphics: update vertex buffer: %w", err)
	}
	return nil
}

// DeleteVertexBuffer releases the backend buffer and frees the slot.
//
// Parameters:
//   - handle: the buffer to delete
//
// Returns:
//   - error: ErrInvalidHandle, or a wrapped backend error
func (d *Device) DeleteVertexBuffer(handle VertexBufferHandle) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	vbo, ok := d.vertexBuffers.Remove(Handle(handle))
	if !ok {
		return ErrInvalidHandle
	}
	if err := d.visitor.DeleteBuffer(vbo.id, BufferKindVertex); err != nil {
		return fmt.Errorf("graphics: delete vertex buffer: %w", err)
	}
	return nil
}

// CreateIndexBuffer allocates a backend index buffer at the handle.
// Fails with ErrDuplicatedHandle if the slot is occupied.
func (d *Device) CreateIndexBuffer(handle IndexBufferHandle, setup IndexBufferSetup, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.indexBuffers.Get(Handle(handle)); ok {
		return ErrDuplicatedHandle
	}

	id, err := d.visitor.CreateBuffer(BufferKindIndex, setup.Hint, setup.Size(), data)
	if err != nil {
		return fmt.Errorf("graphics: create index buffer: %w", err)
	}

	d.indexBuffers.Set(Handle(handle), indexBufferObject{id: id, setup: setup})
	return nil
}

// UpdateIndexBuffer overwrites a byte range of an existing index buffer,
// with the same validation order as UpdateVertexBuffer.
func (d *Device) UpdateIndexBuffer(handle IndexBufferHandle, offset int, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	ibo, ok := d.indexBuffers.Get(Handle(handle))
	if !ok {
		return ErrInvalidHandle
	}
	if ibo.setup.Hint == BufferHintImmutable {
		return ErrImmutableResource
	}
	if offset < 0 || offset+len(data) > ibo.setup.Size() {
		return ErrOutOfBounds
	}

	if err := d.visitor.UpdateBuffer(ibo.id, BufferKindIndex, offset, data); err != nil {
		return fmt.Errorf("graphics: update index buffer: %w", err)
	}
	return nil
}

// DeleteIndexBuffer releases the backend buffer and frees the slot.
func (d *Device) DeleteIndexBuffer(handle IndexBufferHandle) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	ibo, ok := d.indexBuffers.Remove(Handle(handle))
	if !ok {
		return ErrInvalidHandle
	}
	if err := d.visitor.DeleteBuffer(ibo.id, BufferKindIndex); err != nil {
		return fmt.Errorf("graphics: delete index buffer: %w", err)
	}
	return nil
}

// CreatePipeline compiles a program from the shader pair and validates that
// every attribute in the setup layout resolves to a location. A program that
// fails attribute validation is deleted before returning — the handle slot
// was never occupied, so nothing may leak at the backend.
//
// Parameters:
//   - handle: the slot to occupy
//   - setup: attribute layout and render state
//   - vs: vertex shader source
//   - fs: fragment shader source
//
// Returns:
//   - error: ErrDuplicatedHandle, a *BindingError for an unresolvable
//     attribute, or a wrapped backend error
func (d *Device) CreatePipeline(handle PipelineHandle, setup PipelineSetup, vs, fs string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.pipelines.Get(Handle(handle)); ok {
		return ErrDuplicatedHandle
	}

	id, err := d.visitor.CreateProgram(vs, fs)
	if err != nil {
		return fmt.Errorf("graphics: create program: %w", err)
	}

	for _, element := range setup.Layout {
		location, err := d.visitor.GetAttributeLocation(id, element.Attribute.Name())
		if err == nil && location == UnresolvedLocation {
			err = &BindingError{Kind: "attribute", Name: element.Attribute.Name()}
		}
		if err != nil {
			_ = d.visitor.DeleteProgram(id)
			return err
		}
	}

	d.pipelines.Set(Handle(handle), &pipelineObject{
		id:       id,
		setup:    setup,
		uniforms: make(map[string]UniformValue),
	})
	return nil
}

// UpdatePipelineUniform persists a uniform value on the pipeline. Persisted
// values survive across frames and are re-applied whenever the pipeline's
// full state is bound, independent of per-draw uniforms.
//
// Parameters:
//   - handle: the pipeline to update
//   - name: the uniform name
//   - value: the value to persist
//
// Returns:
//   - error: ErrInvalidHandle if the pipeline does not exist
func (d *Device) UpdatePipelineUniform(handle PipelineHandle, name string, value UniformValue) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	pso, ok := d.pipelines.Get(Handle(handle))
	if !ok {
		return ErrInvalidHandle
	}
	(*pso).uniforms[name] = value
	return nil
}

// DeletePipeline releases the backend program and frees the slot.
func (d *Device) DeletePipeline(handle PipelineHandle) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	pso, ok := d.pipelines.Remove(Handle(handle))
	if !ok {
		return ErrInvalidHandle
	}
	if err := d.visitor.DeleteProgram(pso.id); err != nil {
		return fmt.Errorf("graphics: delete pipeline: %w", err)
	}
	return nil
}

// CreateTexture allocates a sampled texture filled with pixel data.
func (d *Device) CreateTexture(handle TextureHandle, setup TextureSetup, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.textures.Get(Handle(handle)); ok {
		return ErrDuplicatedHandle
	}

	id, err := d.visitor.CreateTexture(setup, data)
	if err != nil {
		return fmt.Errorf("graphics: create texture: %w", err)
	}

	d.textures.Set(Handle(handle), textureObject{id: id, setup: setup})
	return nil
}

// CreateRenderTexture allocates a texture that draw calls can both target
// via a framebuffer attachment and sample.
func (d *Device) CreateRenderTexture(handle TextureHandle, setup RenderTextureSetup) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.textures.Get(Handle(handle)); ok {
		return ErrDuplicatedHandle
	}

	id, err := d.visitor.CreateRenderTexture(setup)
	if err != nil {
		return fmt.Errorf("graphics: create render texture: %w", err)
	}

	d.textures.Set(Handle(handle), textureObject{id: id, render: true, target: setup})
	return nil
}

// DeleteTexture releases the backend texture and frees the slot.
func (d *Device) DeleteTexture(handle TextureHandle) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	to, ok := d.textures.Remove(Handle(handle))
	if !ok {
		return ErrInvalidHandle
	}
	if err := d.visitor.DeleteTexture(to.id); err != nil {
		return fmt.Errorf("graphics: delete texture: %w", err)
	}
	return nil
}

// CreateRenderBuffer allocates a write-only render target attachment.
func (d *Device) CreateRenderBuffer(handle RenderBufferHandle, setup RenderBufferSetup) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.renderBuffers.Get(Handle(handle)); ok {
		return ErrDuplicatedHandle
	}

	id, err := d.visitor.CreateRenderBuffer(setup)
	if err != nil {
		return fmt.Errorf("graphics: create render buffer: %w", err)
	}

	d.renderBuffers.Set(Handle(handle), renderBufferObject{id: id, setup: setup})
	return nil
}

// DeleteRenderBuffer releases the backend render buffer and frees the slot.
func (d *Device) DeleteRenderBuffer(handle RenderBufferHandle) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	rbo, ok := d.renderBuffers.Remove(Handle(handle))
	if !ok {
		return ErrInvalidHandle
	}
	if err := d.visitor.DeleteRenderBuffer(rbo.id); err != nil {
		return fmt.Errorf("graphics: delete render buffer: %w", err)
	}
	return nil
}

// CreateFrameBuffer allocates an empty framebuffer. Attach render textures
// or render buffers to it before using it as a view target.
func (d *Device) CreateFrameBuffer(handle FrameBufferHandle) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.frameBuffers.Get(Handle(handle)); ok {
		return ErrDuplicatedHandle
	}

	id, err := d.visitor.CreateFrameBuffer()
	if err != nil {
		return fmt.Errorf("graphics: create framebuffer: %w", err)
	}

	d.frameBuffers.Set(Handle(handle), frameBufferObject{id: id})
	return nil
}

// UpdateFrameBufferTexture attaches a render texture to a framebuffer slot.
// Only textures created via CreateRenderTexture may attach; the attachment
// point (color, depth, depth-stencil) follows from the texture's format.
//
// Parameters:
//   - handle: the framebuffer
//   - texture: the render texture to attach
//   - slot: the color attachment slot (ignored for depth formats)
//
// Returns:
//   - error: ErrInvalidHandle for either handle, an error for a non-render
//     texture, or a wrapped backend error
func (d *Device) UpdateFrameBufferTexture(handle FrameBufferHandle, texture TextureHandle, slot uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	fbo, ok := d.frameBuffers.Get(Handle(handle))
	if !ok {
		return ErrInvalidHandle
	}
	to, ok := d.textures.Get(Handle(texture))
	if !ok {
		return ErrInvalidHandle
	}
	if !to.render {
		return fmt.Errorf("graphics: cannot attach sampled texture %d to framebuffer", to.id)
	}

	attachment := to.target.Format.attachment(slot)
	if err := d.visitor.AttachFrameBufferTexture(fbo.id, attachment, to.id); err != nil {
		return fmt.Errorf("graphics: attach framebuffer texture: %w", err)
	}
	return nil
}

// UpdateFrameBufferRenderBuffer attaches a render buffer to a framebuffer
// slot, with the attachment point following from the buffer's format.
func (d *Device) UpdateFrameBufferRenderBuffer(handle FrameBufferHandle, buffer RenderBufferHandle, slot uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	fbo, ok := d.frameBuffers.Get(Handle(handle))
	if !ok {
		return ErrInvalidHandle
	}
	rbo, ok := d.renderBuffers.Get(Handle(buffer))
	if !ok {
		return ErrInvalidHandle
	}

	attachment := rbo.setup.Format.attachment(slot)
	if err := d.visitor.AttachFrameBufferRenderBuffer(fbo.id, attachment, rbo.id); err != nil {
		return fmt.Errorf("graphics: attach framebuffer render buffer: %w", err)
	}
	return nil
}

// DeleteFrameBuffer releases the backend framebuffer and frees the slot.
func (d *Device) DeleteFrameBuffer(handle FrameBufferHandle) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	fbo, ok := d.frameBuffers.Remove(Handle(handle))
	if !ok {
		return ErrInvalidHandle
	}
	if err := d.visitor.DeleteFrameBuffer(fbo.id); err != nil {
		return fmt.Errorf("graphics: delete framebuffer: %w", err)
	}
	return nil
}

// CreateView creates a view: a render target configuration plus an empty
// draw-call queue. Views touch no backend state at creation.
func (d *Device) CreateView(handle ViewHandle, setup ViewSetup) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.views.Get(Handle(handle)); ok {
		return ErrDuplicatedHandle
	}

	d.views.Set(Handle(handle), &viewObject{setup: setup})
	return nil
}

// DeleteView removes the view and discards any queued draw calls.
func (d *Device) DeleteView(handle ViewHandle) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.views.Remove(Handle(handle)); !ok {
		return ErrInvalidHandle
	}
	return nil
}

// Submit validates the view handle and appends a draw call to that view's
// write-side queue. It touches no backend state, so it is safe to call from
// the application's update phase while the previous frame's flush reads the
// other queue side. An invalid view handle leaves no queue mutation.
//
// Parameters:
//   - priority: draw ordering rank within the view (higher first, unless the
//     view is sequence-flagged)
//   - view: the target view
//   - pipeline: the pipeline to draw with
//   - uniforms: per-draw uniform bindings serialized in the frame's TaskBuffer
//   - textures: per-draw texture bindings serialized in the frame's TaskBuffer
//   - vertexBuffer: the vertex source
//   - indexBuffer: the index source, or the zero handle for non-indexed draws
//   - primitive: the primitive kind
//   - from: first element of the draw range
//   - count: element count of the draw range
//
// Returns:
//   - error: ErrInvalidHandle if the view does not exist
func (d *Device) Submit(
	priority uint64,
	view ViewHandle,
	pipeline PipelineHandle,
	uniforms TaskBufferPtr[UniformBinding],
	textures TaskBufferPtr[TextureBinding],
	vertexBuffer VertexBufferHandle,
	indexBuffer IndexBufferHandle,
	primitive Primitive,
	from, count uint32,
) error {
	d.mu.RLock()
	slot, ok := d.views.Get(Handle(view))
	var vo *viewObject
	if ok {
		vo = *slot
	}
	side := d.writeSide
	d.mu.RUnlock()
	if !ok {
		return ErrInvalidHandle
	}

	dc := drawCall{
		priority:     priority,
		pipeline:     pipeline,
		uniforms:     uniforms,
		textures:     textures,
		vertexBuffer: vertexBuffer,
		indexBuffer:  indexBuffer,
		primitive:    primitive,
		from:         from,
		count:        count,
	}

	vo.mu.Lock()
	vo.queues[side] = append(vo.queues[side], dc)
	vo.mu.Unlock()
	return nil
}

// resourceCounts reports the live slot count of every resource table. Reads
// under the device lock so it is safe against concurrent create/delete calls.
//
// Returns:
//   - [6]int: vertex buffers, index buffers, pipelines, views, textures and
//     framebuffers, in that order
func (d *Device) resourceCounts() [6]int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return [6]int{
		d.vertexBuffers.Len(),
		d.indexBuffers.Len(),
		d.pipelines.Len(),
		d.views.Len(),
		d.textures.Len(),
		d.frameBuffers.Len(),
	}
}

// SwapFrames flips the queue side Submit writes into, clears the new write
// side exactly once for the upcoming frame, resets the active-pipeline cache
// and rebinds the default framebuffer. Called by the scheduler at the frame
// boundary, with both the update phase and the previous flush joined.
//
// Returns:
//   - error: a wrapped backend error from the framebuffer rebind
func (d *Device) SwapFrames() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.writeSide ^= 1
	d.views.Each(func(_ Handle, vo **viewObject) bool {
		(*vo).queues[d.writeSide] = (*vo).queues[d.writeSide][:0]
		return true
	})

	d.activePipeline = PipelineHandle{}
	if err := d.visitor.BindFrameBuffer(0); err != nil {
		return fmt.Errorf("graphics: swap frames: %w", err)
	}
	return nil
}

// Flush realizes all draw calls queued for the read-side frame against the
// backend, once per frame on the thread owning the graphics context:
//
//  1. Views with a non-zero Order flush first, highest Order first; zero-Order
//     views follow in table-iteration order.
//  2. Per view: bind its framebuffer (or the backbuffer), clear the configured
//     channels, set the viewport (explicit view size or the frame dimensions),
//     and sort its queue by descending draw priority unless Sequence is set.
//  3. Per draw call: resolve bindings from the TaskBuffer, bind the pipeline
//     (skipping the full rebinding sequence when it is already active), bind
//     every uniform and texture by name — an unresolvable name aborts the
//     flush — then bind the buffers and issue the draw.
//
// The first error aborts the remainder of the frame's realization; draws not
// yet processed are dropped, not retried, and already-issued backend calls
// are not rolled back. Commit runs in every case so the backend is never left
// with a dangling frame.
//
// Parameters:
//   - buf: the read-side frame's TaskBuffer
//   - width: frame width in pixels, used for views without an explicit size
//   - height: frame height in pixels
//
// Returns:
//   - FlushStats: backend activity realized before any failure
//   - error: the first binding or backend error, wrapped
func (d *Device) Flush(buf *TaskBuffer, width, height uint16) (FlushStats, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	stats, err := d.flushViews(buf, width, height)

	if commitErr := d.visitor.Commit(); commitErr != nil && err == nil {
		err = fmt.Errorf("graphics: commit: %w", commitErr)
	}
	return stats, err
}

func (d *Device) flushViews(buf *TaskBuffer, width, height uint16) (FlushStats, error) {
	var stats FlushStats

	// Partition live views into explicit-order and default-order sets,
	// preserving table-iteration order within each.
	type liveView struct {
		handle Handle
		view   *viewObject
	}
	var ordered, defaulted []liveView
	d.views.Each(func(h Handle, vo **viewObject) bool {
		if (*vo).setup.Order != 0 {
			ordered = append(ordered, liveView{handle: h, view: *vo})
		} else {
			defaulted = append(defaulted, liveView{handle: h, view: *vo})
		}
		return true
	})
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].view.setup.Order > ordered[j].view.setup.Order
	})
	sequence := append(ordered, defaulted...)

	readSide := d.writeSide ^ 1
	for _, lv := range sequence {
		vo := lv.view

		if !Handle(vo.setup.FrameBuffer).Nil() {
			fbo, ok := d.frameBuffers.Get(Handle(vo.setup.FrameBuffer))
			if !ok {
				return stats, ErrInvalidHandle
			}
			if err := d.visitor.BindFrameBuffer(fbo.id); err != nil {
				return stats, fmt.Errorf("graphics: bind framebuffer: %w", err)
			}
		} else {
			if err := d.visitor.BindFrameBuffer(0); err != nil {
				return stats, fmt.Errorf("graphics: bind backbuffer: %w", err)
			}
		}

		if err := d.visitor.Clear(vo.setup.ClearColor, vo.setup.ClearDepth, vo.setup.ClearStencil); err != nil {
			return stats, fmt.Errorf("graphics: clear: %w", err)
		}

		size := [2]uint16{width, height}
		if vo.setup.Viewport.Size != nil {
			size = *vo.setup.Viewport.Size
		}
		if err := d.visitor.SetViewport(vo.setup.Viewport.Position, size); err != nil {
			return stats, fmt.Errorf("graphics: set viewport: %w", err)
		}
		stats.Views++

		vo.mu.Lock()
		queue := vo.queues[readSide]
		vo.mu.Unlock()

		if !vo.setup.Sequence {
			sort.SliceStable(queue, func(i, j int) bool {
				return queue[i].priority > queue[j].priority
			})
		}

		for i := range queue {
			if err := d.draw(buf, &queue[i]); err != nil {
				return stats, err
			}
			stats.DrawCalls++
			stats.Primitives += queue[i].primitive.primitives(queue[i].count)
		}
	}

	return stats, nil
}

// draw realizes one recorded draw call against the backend.
func (d *Device) draw(buf *TaskBuffer, dc *drawCall) error {
	pso, err := d.bindPipeline(dc.pipeline)
	if err != nil {
		return err
	}

	for _, binding := range ReadSlice(buf, dc.uniforms) {
		name := ReadString(buf, binding.Name)
		location, err := d.visitor.GetUniformLocation(pso.id, name)
		if err != nil {
			return fmt.Errorf("graphics: locate uniform %q: %w", name, err)
		}
		if location == UnresolvedLocation {
			return &BindingError{Kind: "uniform", Name: name}
		}
		if err := d.visitor.BindUniform(location, binding.Value); err != nil {
			return fmt.Errorf("graphics: bind uniform %q: %w", name, err)
		}
	}

	for slot, binding := range ReadSlice(buf, dc.textures) {
		name := ReadString(buf, binding.Name)
		to, ok := d.textures.Get(Handle(binding.Texture))
		if !ok {
			return fmt.Errorf("graphics: texture %q: %w", name, ErrInvalidHandle)
		}
		location, err := d.visitor.GetUniformLocation(pso.id, name)
		if err != nil {
			return fmt.Errorf("graphics: locate texture %q: %w", name, err)
		}
		if location == UnresolvedLocation {
			return &BindingError{Kind: "texture", Name: name}
		}
		if err := d.visitor.BindUniform(location, UniformI32(int32(slot))); err != nil {
			return fmt.Errorf("graphics: bind texture slot %q: %w", name, err)
		}
		if err := d.visitor.BindTexture(uint32(slot), to.id); err != nil {
			return fmt.Errorf("graphics: bind texture %q: %w", name, err)
		}
	}

	vbo, ok := d.vertexBuffers.Get(Handle(dc.vertexBuffer))
	if !ok {
		return ErrInvalidHandle
	}
	if err := d.visitor.BindVertexBuffer(vbo.id); err != nil {
		return fmt.Errorf("graphics: bind vertex buffer: %w", err)
	}
	if err := d.visitor.BindAttributeLayout(pso.setup.Layout, vbo.setup.Layout); err != nil {
		return fmt.Errorf("graphics: bind attribute layout: %w", err)
	}

	if !Handle(dc.indexBuffer).Nil() {
		ibo, ok := d.indexBuffers.Get(Handle(dc.indexBuffer))
		if !ok {
			return ErrInvalidHandle
		}
		if err := d.visitor.BindIndexBuffer(ibo.id); err != nil {
			return fmt.Errorf("graphics: bind index buffer: %w", err)
		}
		if err := d.visitor.DrawElements(dc.primitive, ibo.setup.Format, dc.from, dc.count); err != nil {
			return fmt.Errorf("graphics: draw elements: %w", err)
		}
	} else {
		if err := d.visitor.DrawArrays(dc.primitive, dc.from, dc.count); err != nil {
			return fmt.Errorf("graphics: draw arrays: %w", err)
		}
	}

	return nil
}

// bindPipeline makes a pipeline current. When the pipeline is already the
// active one from the immediately preceding draw call, the full state-binding
// sequence is skipped; otherwise the program, fixed-function state and every
// persisted uniform value are re-applied.
func (d *Device) bindPipeline(handle PipelineHandle) (*pipelineObject, error) {
	pso, ok := d.pipelines.Get(Handle(handle))
	if !ok {
		return nil, ErrInvalidHandle
	}

	if d.activePipeline == handle {
		return *pso, nil
	}

	p := *pso
	if err := d.visitor.BindProgram(p.id); err != nil {
		return nil, fmt.Errorf("graphics: bind program: %w", err)
	}

	state := p.setup.State
	if err := d.visitor.SetCullFace(state.CullFace); err != nil {
		return nil, fmt.Errorf("graphics: set cull face: %w", err)
	}
	if err := d.visitor.SetFrontFaceOrder(state.FrontFaceOrder); err != nil {
		return nil, fmt.Errorf("graphics: set front face order: %w", err)
	}
	if err := d.visitor.SetDepthTest(state.DepthTest); err != nil {
		return nil, fmt.Errorf("graphics: set depth test: %w", err)
	}
	if err := d.visitor.SetDepthWrite(state.DepthWrite, state.DepthWriteOffset); err != nil {
		return nil, fmt.Errorf("graphics: set depth write: %w", err)
	}
	if err := d.visitor.SetColorBlend(state.ColorBlend); err != nil {
		return nil, fmt.Errorf("graphics: set color blend: %w", err)
	}
	w := state.ColorWrite
	if err := d.visitor.SetColorWrite(w[0], w[1], w[2], w[3]); err != nil {
		return nil, fmt.Errorf("graphics: set color write: %w", err)
	}

	// Persisted uniforms tolerate names the program no longer declares;
	// per-draw uniforms do not.
	for name, value := range p.uniforms {
		location, err := d.visitor.GetUniformLocation(p.id, name)
		if err != nil {
			return nil, fmt.Errorf("graphics: locate persisted uniform %q: %w", name, err)
		}
		if location == UnresolvedLocation {
			continue
		}
		if err := d.visitor.BindUniform(location, value); err != nil {
			return nil, fmt.Errorf("graphics: bind persisted uniform %q: %w", name, err)
		}
	}

	d.activePipeline = handle
	return p, nil
}
