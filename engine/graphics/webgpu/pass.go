package webgpu

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/hoangpq/crayon/engine/graphics"
)

func (b *backendImpl) BindFrameBuffer(id uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if id != 0 {
		if _, ok := b.framebuffers[id]; !ok {
			return fmt.Errorf("webgpu: unknown framebuffer %d", id)
		}
	}

	// A target switch ends the open pass; the next SetViewport begins a new
	// one against the staged target.
	b.endPass()
	b.staged.target = id
	b.staged.clearColor = nil
	b.staged.clearDepth = nil
	b.staged.clearStencil = nil
	return nil
}

func (b *backendImpl) Clear(color *graphics.Color, depth *float32, stencil *int32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.staged.clearColor = color
	b.staged.clearDepth = depth
	b.staged.clearStencil = stencil
	return nil
}

func (b *backendImpl) SetViewport(position [2]uint16, size [2]uint16) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.staged.viewportPos = position
	b.staged.viewportSize = size
	return b.beginPass()
}

// beginPass opens a render pass against the staged target, consuming the
// staged clear configuration as the pass's load operations.
func (b *backendImpl) beginPass() error {
	b.endPass()

	if b.frameEncoder == nil {
		encoder, err := b.device.CreateCommandEncoder(nil)
		if err != nil {
			return fmt.Errorf("webgpu: create command encoder: %w", err)
		}
		b.frameEncoder = encoder
	}

	colorViews, depthView, depthFormat, err := b.targetAttachments()
	if err != nil {
		return err
	}

	colorLoad := wgpu.LoadOpLoad
	var clearValue wgpu.Color
	if b.staged.clearColor != nil {
		colorLoad = wgpu.LoadOpClear
		c := *b.staged.clearColor
		clearValue = wgpu.Color{R: float64(c[0]), G: float64(c[1]), B: float64(c[2]), A: float64(c[3])}
	}

	attachments := make([]wgpu.RenderPassColorAttachment, 0, len(colorViews))
	for _, view := range colorViews {
		attachments = append(attachments, wgpu.RenderPassColorAttachment{
			View:       view,
			LoadOp:     colorLoad,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: clearValue,
		})
	}

	descriptor := &wgpu.RenderPassDescriptor{
		ColorAttachments: attachments,
	}
	if depthView != nil {
		depthLoad := wgpu.LoadOpLoad
		depthClear := float32(1.0)
		if b.staged.clearDepth != nil {
			depthLoad = wgpu.LoadOpClear
			depthClear = *b.staged.clearDepth
		}
		attachment := &wgpu.RenderPassDepthStencilAttachment{
			View:            depthView,
			DepthLoadOp:     depthLoad,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: depthClear,
		}
		if depthFormat == wgpu.TextureFormatDepth24PlusStencil8 {
			attachment.StencilLoadOp = wgpu.LoadOpLoad
			attachment.StencilStoreOp = wgpu.StoreOpStore
			if b.staged.clearStencil != nil {
				attachment.StencilLoadOp = wgpu.LoadOpClear
				attachment.StencilClearValue = uint32(*b.staged.clearStencil)
			}
		}
		descriptor.DepthStencilAttachment = attachment
	}

	b.framePass = b.frameEncoder.BeginRenderPass(descriptor)
	b.framePass.SetViewport(
		float32(b.staged.viewportPos[0]), float32(b.staged.viewportPos[1]),
		float32(b.staged.viewportSize[0]), float32(b.staged.viewportSize[1]),
		0, 1,
	)

	// A clear is consumed by exactly one pass.
	b.staged.clearColor = nil
	b.staged.clearDepth = nil
	b.staged.clearStencil = nil
	return nil
}

// targetAttachments resolves the staged render target into attachment views.
func (b *backendImpl) targetAttachments() ([]*wgpu.TextureView, *wgpu.TextureView, wgpu.TextureFormat, error) {
	if b.staged.target == 0 {
		if err := b.acquireSurface(); err != nil {
			return nil, nil, wgpu.TextureFormatUndefined, err
		}
		return []*wgpu.TextureView{b.frameView}, b.depthTextureView, wgpu.TextureFormatDepth24Plus, nil
	}

	fb, ok := b.framebuffers[b.staged.target]
	if !ok {
		return nil, nil, wgpu.TextureFormatUndefined, fmt.Errorf("webgpu: unknown framebuffer %d", b.staged.target)
	}
	var views []*wgpu.TextureView
	for _, view := range fb.colorViews {
		if view != nil {
			views = append(views, view)
		}
	}
	if len(views) == 0 && fb.depthView == nil {
		return nil, nil, wgpu.TextureFormatUndefined, fmt.Errorf("webgpu: framebuffer %d has no attachments", b.staged.target)
	}
	return views, fb.depthView, fb.depthFormat, nil
}

// acquireSurface grabs the swapchain texture for the frame, once; later
// backbuffer passes of the same frame reuse the view with load ops.
func (b *backendImpl) acquireSurface() error {
	if b.frameSurface != nil {
		return nil
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("webgpu: acquire surface texture: %w", err)
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return fmt.Errorf("webgpu: create surface view: %w", err)
	}

	b.frameSurface = surfaceTexture
	b.frameView = view
	return nil
}

func (b *backendImpl) endPass() {
	if b.framePass != nil {
		b.framePass.End()
		b.framePass = nil
	}
}

func (b *backendImpl) BindProgram(id uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.programs[id]; !ok {
		return fmt.Errorf("webgpu: unknown program %d", id)
	}
	b.staged.program = id
	clear(b.staged.boundTextures)
	clear(b.staged.textureRemap)
	return nil
}

func (b *backendImpl) BindUniform(location int, value graphics.UniformValue) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.programs[b.staged.program]
	if !ok {
		return fmt.Errorf("webgpu: no program bound")
	}

	if location >= textureLocationBase {
		// Texture pseudo-location: remember which declared slot the value's
		// runtime slot maps to; the payload never enters the uniform block.
		if value.Kind == graphics.UniformKindI32 {
			b.staged.textureRemap[uint32(value.Int)] = uint32(location - textureLocationBase)
		}
		return nil
	}

	offset := location * uniformSlotSize
	if location < 0 || offset+uniformSlotSize > len(p.uniformData) {
		return fmt.Errorf("webgpu: uniform location %d out of range", location)
	}

	slot := p.uniformData[offset : offset+uniformSlotSize]
	if value.Kind == graphics.UniformKindI32 {
		binary.LittleEndian.PutUint32(slot, uint32(value.Int))
		return nil
	}
	for i, f := range value.Data {
		binary.LittleEndian.PutUint32(slot[i*4:], math.Float32bits(f))
	}
	return nil
}

func (b *backendImpl) BindTexture(slot uint32, id uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.textures[id]; !ok {
		return fmt.Errorf("webgpu: unknown texture %d", id)
	}
	b.staged.boundTextures[slot] = id
	return nil
}

func (b *backendImpl) SetCullFace(cull graphics.CullFace) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.staged.cull = cull
	return nil
}

func (b *backendImpl) SetFrontFaceOrder(order graphics.FrontFaceOrder) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.staged.front = order
	return nil
}

func (b *backendImpl) SetDepthTest(comparison graphics.Comparison) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.staged.depthTest = comparison
	return nil
}

func (b *backendImpl) SetDepthWrite(enable bool, offset *[2]float32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.staged.depthWrite = enable
	b.staged.depthOffset = offset
	return nil
}

func (b *backendImpl) SetColorBlend(blend *graphics.Blend) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.staged.blend = blend
	return nil
}

func (b *backendImpl) SetColorWrite(r, g, bl, a bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.staged.colorWrite = [4]bool{r, g, bl, a}
	return nil
}

func (b *backendImpl) BindVertexBuffer(id uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	bo, ok := b.buffers[id]
	if !ok || bo.kind != graphics.BufferKindVertex {
		return fmt.Errorf("webgpu: unknown vertex buffer %d", id)
	}
	b.staged.vertexBuffer = id
	return nil
}

func (b *backendImpl) BindIndexBuffer(id uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	bo, ok := b.buffers[id]
	if !ok || bo.kind != graphics.BufferKindIndex {
		return fmt.Errorf("webgpu: unknown index buffer %d", id)
	}
	b.staged.indexBuffer = id
	return nil
}

func (b *backendImpl) BindAttributeLayout(pipeline graphics.AttributeLayout, buffer graphics.AttributeLayout) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.programs[b.staged.program]
	if !ok {
		return fmt.Errorf("webgpu: no program bound")
	}

	attributes := make([]wgpu.VertexAttribute, 0, len(pipeline))
	key := ""
	for _, element := range pipeline {
		location, ok := p.attributes[strings.ToLower(element.Attribute.Name())]
		if !ok {
			return fmt.Errorf("webgpu: attribute %s not declared by program", element.Attribute.Name())
		}

		offset := 0
		found := false
		for _, be := range buffer {
			if be.Attribute == element.Attribute {
				found = true
				break
			}
			offset += int(be.Num) * 4
		}
		if !found {
			return fmt.Errorf("webgpu: attribute %s missing from vertex buffer layout", element.Attribute.Name())
		}

		be, _ := buffer.Element(element.Attribute)
		attributes = append(attributes, wgpu.VertexAttribute{
			Format:         vertexFormat(be.Num),
			Offset:         uint64(offset),
			ShaderLocation: uint32(location),
		})
		key += fmt.Sprintf("%d/%d/%d;", location, offset, be.Num)
	}

	b.staged.vertexAttributes = attributes
	b.staged.vertexStride = uint64(buffer.Stride())
	b.staged.layoutKey = key
	return nil
}

func vertexFormat(num uint8) wgpu.VertexFormat {
	switch num {
	case 1:
		return wgpu.VertexFormatFloat32
	case 2:
		return wgpu.VertexFormatFloat32x2
	case 3:
		return wgpu.VertexFormatFloat32x3
	default:
		return wgpu.VertexFormatFloat32x4
	}
}

func (b *backendImpl) DrawElements(primitive graphics.Primitive, format graphics.IndexFormat, from, count uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.prepareDraw(primitive); err != nil {
		return err
	}

	ibo, ok := b.buffers[b.staged.indexBuffer]
	if !ok {
		return fmt.Errorf("webgpu: no index buffer bound")
	}
	indexFormat := wgpu.IndexFormatUint16
	if format == graphics.IndexFormatU32 {
		indexFormat = wgpu.IndexFormatUint32
	}
	b.framePass.SetIndexBuffer(ibo.buffer, indexFormat, 0, wgpu.WholeSize)
	b.framePass.DrawIndexed(count, 1, from, 0, 0)
	return nil
}

func (b *backendImpl) DrawArrays(primitive graphics.Primitive, from, count uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.prepareDraw(primitive); err != nil {
		return err
	}
	b.framePass.Draw(count, 1, from, 0)
	return nil
}

// prepareDraw resolves the staged binding state into a cached pipeline and
// fresh bind groups, and sets them on the open pass.
func (b *backendImpl) prepareDraw(primitive graphics.Primitive) error {
	if b.framePass == nil {
		return fmt.Errorf("webgpu: no active render pass")
	}
	p, ok := b.programs[b.staged.program]
	if !ok {
		return fmt.Errorf("webgpu: no program bound")
	}
	vbo, ok := b.buffers[b.staged.vertexBuffer]
	if !ok {
		return fmt.Errorf("webgpu: no vertex buffer bound")
	}

	pipeline, err := b.resolvePipeline(p, primitive)
	if err != nil {
		return err
	}
	b.framePass.SetPipeline(pipeline)

	group := uint32(0)
	if len(p.uniforms) > 0 {
		uniformGroup, err := b.createUniformGroup(p)
		if err != nil {
			return err
		}
		b.framePass.SetBindGroup(group, uniformGroup, nil)
	}
	if p.textureSlots > 0 {
		group = 1
		textureGroup, err := b.createTextureGroup(p)
		if err != nil {
			return err
		}
		b.framePass.SetBindGroup(group, textureGroup, nil)
	}

	b.framePass.SetVertexBuffer(0, vbo.buffer, 0, wgpu.WholeSize)
	return nil
}

// createUniformGroup uploads the program's staged uniform block into a fresh
// buffer and wraps it in a group-0 bind group. The buffer is released after
// the frame's submission.
func (b *backendImpl) createUniformGroup(p *programObject) (*wgpu.BindGroup, error) {
	buffer, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Uniform Block",
		Size:  uint64(len(p.uniformData)),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("webgpu: create uniform buffer: %w", err)
	}
	b.queue.WriteBuffer(buffer, 0, p.uniformData)
	b.garbage = append(b.garbage, buffer)

	group, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Uniform Block Group",
		Layout: p.uniformLayout,
		Entries: []wgpu.BindGroupEntry{
			{
				Binding: 0,
				Buffer:  buffer,
				Offset:  0,
				Size:    wgpu.WholeSize,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("webgpu: create uniform bind group: %w", err)
	}
	return group, nil
}

// createTextureGroup binds the draw call's textures and samplers into a
// group-1 bind group, remapping runtime slots onto the shader's declared
// slots.
func (b *backendImpl) createTextureGroup(p *programObject) (*wgpu.BindGroup, error) {
	bySlot := make(map[uint32]*textureObject, p.textureSlots)
	for runtime, id := range b.staged.boundTextures {
		declared := runtime
		if mapped, ok := b.staged.textureRemap[runtime]; ok {
			declared = mapped
		}
		to, ok := b.textures[id]
		if !ok {
			return nil, fmt.Errorf("webgpu: unknown texture %d", id)
		}
		bySlot[declared] = to
	}

	entries := make([]wgpu.BindGroupEntry, 0, p.textureSlots*2)
	for slot := 0; slot < p.textureSlots; slot++ {
		to, ok := bySlot[uint32(slot)]
		if !ok {
			return nil, fmt.Errorf("webgpu: no texture bound for slot %d", slot)
		}
		entries = append(entries,
			wgpu.BindGroupEntry{
				Binding:     uint32(slot * 2),
				TextureView: to.view,
			},
			wgpu.BindGroupEntry{
				Binding: uint32(slot*2 + 1),
				Sampler: to.sampler,
			},
		)
	}

	group, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   "Texture Group",
		Layout:  p.textureLayout,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("webgpu: create texture bind group: %w", err)
	}
	return group, nil
}

// resolvePipeline returns a render pipeline matching the staged state,
// building and caching it on first use.
func (b *backendImpl) resolvePipeline(p *programObject, primitive graphics.Primitive) (*wgpu.RenderPipeline, error) {
	colorFormats, depthFormat, hasDepth, err := b.targetFormats()
	if err != nil {
		return nil, err
	}

	blendKey := "-"
	if b.staged.blend != nil {
		blendKey = fmt.Sprintf("%d/%d/%d", b.staged.blend.Equation, b.staged.blend.Src, b.staged.blend.Dst)
	}
	offsetKey := "-"
	if b.staged.depthOffset != nil {
		offsetKey = fmt.Sprintf("%g/%g", b.staged.depthOffset[0], b.staged.depthOffset[1])
	}
	key := fmt.Sprintf("p%d|%d|%d|%d|%t|%s|%s|%v|%s|%v|%v|%t",
		b.staged.program, primitive, b.staged.cull, b.staged.front,
		b.staged.depthWrite, offsetKey, blendKey, b.staged.colorWrite,
		b.staged.layoutKey, colorFormats, depthFormat, hasDepth,
	)
	key += fmt.Sprintf("|dt%d", b.staged.depthTest)

	if pipeline, ok := b.pipelineCache[key]; ok {
		return pipeline, nil
	}

	targets := make([]wgpu.ColorTargetState, 0, len(colorFormats))
	for _, format := range colorFormats {
		state := wgpu.ColorTargetState{
			Format:    format,
			WriteMask: colorWriteMask(b.staged.colorWrite),
		}
		if b.staged.blend != nil {
			component := wgpu.BlendComponent{
				Operation: blendOperation(b.staged.blend.Equation),
				SrcFactor: blendFactor(b.staged.blend.Src),
				DstFactor: blendFactor(b.staged.blend.Dst),
			}
			state.Blend = &wgpu.BlendState{Color: component, Alpha: component}
		}
		targets = append(targets, state)
	}

	descriptor := &wgpu.RenderPipelineDescriptor{
		Label:  "Device Render Pipeline",
		Layout: p.layout,
		Vertex: wgpu.VertexState{
			Module:     p.vsModule,
			EntryPoint: p.vsEntry,
			Buffers: []wgpu.VertexBufferLayout{
				{
					ArrayStride: b.staged.vertexStride,
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes:  b.staged.vertexAttributes,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  primitiveTopology(primitive),
			FrontFace: frontFace(b.staged.front),
			CullMode:  cullMode(b.staged.cull),
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	}
	if len(targets) > 0 {
		descriptor.Fragment = &wgpu.FragmentState{
			Module:     p.fsModule,
			EntryPoint: p.fsEntry,
			Targets:    targets,
		}
	}
	if hasDepth {
		depthState := &wgpu.DepthStencilState{
			Format:            depthFormat,
			DepthWriteEnabled: b.staged.depthWrite,
			DepthCompare:      compareFunction(b.staged.depthTest),
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		}
		if b.staged.depthOffset != nil {
			depthState.DepthBiasSlopeScale = b.staged.depthOffset[0]
			depthState.DepthBias = int32(b.staged.depthOffset[1])
		}
		descriptor.DepthStencil = depthState
	}

	pipeline, err := b.device.CreateRenderPipeline(descriptor)
	if err != nil {
		return nil, fmt.Errorf("webgpu: create render pipeline: %w", err)
	}
	b.pipelineCache[key] = pipeline
	return pipeline, nil
}

// targetFormats reports the staged render target's color formats and depth
// attachment, for pipeline construction.
func (b *backendImpl) targetFormats() ([]wgpu.TextureFormat, wgpu.TextureFormat, bool, error) {
	if b.staged.target == 0 {
		return []wgpu.TextureFormat{b.surfaceFormat}, wgpu.TextureFormatDepth24Plus, true, nil
	}
	fb, ok := b.framebuffers[b.staged.target]
	if !ok {
		return nil, wgpu.TextureFormatUndefined, false, fmt.Errorf("webgpu: unknown framebuffer %d", b.staged.target)
	}
	var formats []wgpu.TextureFormat
	for slot, view := range fb.colorViews {
		if view != nil {
			formats = append(formats, fb.colorFormats[slot])
		}
	}
	return formats, fb.depthFormat, fb.depthView != nil, nil
}

func (b *backendImpl) Commit() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.endPass()

	if b.frameEncoder != nil {
		commandBuffer, err := b.frameEncoder.Finish(nil)
		if err != nil {
			b.frameEncoder.Release()
			b.frameEncoder = nil
			b.releaseFrame()
			return fmt.Errorf("webgpu: finish command encoder: %w", err)
		}
		b.queue.Submit(commandBuffer)
		commandBuffer.Release()
		b.frameEncoder.Release()
		b.frameEncoder = nil
	}

	if b.frameSurface != nil {
		b.surface.Present()
	}
	b.releaseFrame()
	return nil
}

// releaseFrame drops the swapchain references and the per-draw buffers of
// the completed frame.
func (b *backendImpl) releaseFrame() {
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
	for _, buffer := range b.garbage {
		buffer.Release()
	}
	b.garbage = b.garbage[:0]
}

func primitiveTopology(p graphics.Primitive) wgpu.PrimitiveTopology {
	switch p {
	case graphics.PrimitivePoints:
		return wgpu.PrimitiveTopologyPointList
	case graphics.PrimitiveLines:
		return wgpu.PrimitiveTopologyLineList
	case graphics.PrimitiveLineStrip:
		return wgpu.PrimitiveTopologyLineStrip
	case graphics.PrimitiveTriangleStrip:
		return wgpu.PrimitiveTopologyTriangleStrip
	default:
		return wgpu.PrimitiveTopologyTriangleList
	}
}

func cullMode(c graphics.CullFace) wgpu.CullMode {
	switch c {
	case graphics.CullFaceFront:
		return wgpu.CullModeFront
	case graphics.CullFaceBack:
		return wgpu.CullModeBack
	default:
		return wgpu.CullModeNone
	}
}

func frontFace(f graphics.FrontFaceOrder) wgpu.FrontFace {
	if f == graphics.FrontFaceCW {
		return wgpu.FrontFaceCW
	}
	return wgpu.FrontFaceCCW
}

func compareFunction(c graphics.Comparison) wgpu.CompareFunction {
	switch c {
	case graphics.ComparisonNever:
		return wgpu.CompareFunctionNever
	case graphics.ComparisonLess:
		return wgpu.CompareFunctionLess
	case graphics.ComparisonLessOrEqual:
		return wgpu.CompareFunctionLessEqual
	case graphics.ComparisonGreater:
		return wgpu.CompareFunctionGreater
	case graphics.ComparisonGreaterOrEqual:
		return wgpu.CompareFunctionGreaterEqual
	case graphics.ComparisonEqual:
		return wgpu.CompareFunctionEqual
	case graphics.ComparisonNotEqual:
		return wgpu.CompareFunctionNotEqual
	default:
		return wgpu.CompareFunctionAlways
	}
}

func blendFactor(f graphics.BlendFactor) wgpu.BlendFactor {
	switch f {
	case graphics.BlendFactorZero:
		return wgpu.BlendFactorZero
	case graphics.BlendFactorSrcAlpha:
		return wgpu.BlendFactorSrcAlpha
	case graphics.BlendFactorOneMinusSrcAlpha:
		return wgpu.BlendFactorOneMinusSrcAlpha
	case graphics.BlendFactorDstAlpha:
		return wgpu.BlendFactorDstAlpha
	case graphics.BlendFactorOneMinusDstAlpha:
		return wgpu.BlendFactorOneMinusDstAlpha
	default:
		return wgpu.BlendFactorOne
	}
}

func blendOperation(e graphics.BlendEquation) wgpu.BlendOperation {
	switch e {
	case graphics.BlendEquationSubtract:
		return wgpu.BlendOperationSubtract
	case graphics.BlendEquationReverseSubtract:
		return wgpu.BlendOperationReverseSubtract
	default:
		return wgpu.BlendOperationAdd
	}
}

func colorWriteMask(write [4]bool) wgpu.ColorWriteMask {
	var mask wgpu.ColorWriteMask
	if write[0] {
		mask |= wgpu.ColorWriteMaskRed
	}
	if write[1] {
		mask |= wgpu.ColorWriteMaskGreen
	}
	if write[2] {
		mask |= wgpu.ColorWriteMaskBlue
	}
	if write[3] {
		mask |= wgpu.ColorWriteMaskAlpha
	}
	return mask
}
