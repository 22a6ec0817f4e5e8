// Package webgpu implements the graphics backend on WebGPU via wgpu-native.
//
// The backend accepts the stateful binding sequence the Device emits and
// resolves it into WebGPU objects at draw time: fixed-function state and the
// bound program collapse into cached render pipelines, staged uniform values
// collapse into a per-draw uniform buffer, and bound textures collapse into a
// bind group.
//
// Shaders are WGSL and follow a fixed binding convention:
//
//   - Vertex attributes are fields of the vertex entry point's input struct,
//     named after the canonical attribute names (case-insensitive) with
//     explicit @location indices.
//   - All scalar/vector/matrix uniforms live in a single struct bound at
//     @group(0) @binding(0) var<uniform>. Every field except the last must
//     carry @size(64); a field's uniform location is its declaration index
//     and its byte offset is location*64.
//   - Textures and their samplers live at @group(1), texture at
//     @binding(2*slot) and sampler at @binding(2*slot+1).
package webgpu

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/hoangpq/crayon/engine/graphics"
)

// uniformSlotSize is the byte stride of one uniform location in the block.
const uniformSlotSize = 64

type bufferObject struct {
	buffer *wgpu.Buffer
	kind   graphics.BufferKind
	size   int
}

type textureObject struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
	sampler *wgpu.Sampler
	format  wgpu.TextureFormat
	depth   bool
}

type frameBufferObject struct {
	colorViews   []*wgpu.TextureView
	colorFormats []wgpu.TextureFormat
	depthView    *wgpu.TextureView
	depthFormat  wgpu.TextureFormat
}

type backendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat    wgpu.TextureFormat
	depthTextureView *wgpu.TextureView
	presentMode      wgpu.PresentMode
	width            uint32
	height           uint32

	nextID       uint32
	buffers      map[uint32]*bufferObject
	textures     map[uint32]*textureObject
	framebuffers map[uint32]*frameBufferObject
	programs     map[uint32]*programObject

	pipelineCache map[string]*wgpu.RenderPipeline

	// Frame state for the render passes recorded between flush start and Commit.
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView

	// garbage holds per-draw buffers released after the frame's submission.
	garbage []*wgpu.Buffer

	staged stagedState
}

// stagedState accumulates the Device's binding sequence until a draw call
// resolves it into a concrete pipeline and bind groups.
type stagedState struct {
	// target is the bound framebuffer id; 0 is the backbuffer.
	target uint32

	// targetCleared marks that the target's clear ops were consumed by a
	// pass begin, so later passes on the same frame load instead.
	clearColor   *graphics.Color
	clearDepth   *float32
	clearStencil *int32

	viewportPos  [2]uint16
	viewportSize [2]uint16

	program uint32

	cull        graphics.CullFace
	front       graphics.FrontFaceOrder
	depthTest   graphics.Comparison
	depthWrite  bool
	depthOffset *[2]float32
	blend       *graphics.Blend
	colorWrite  [4]bool

	// boundTextures maps sampler slot to texture id for the next draw;
	// textureRemap maps those slots to the shader's declared slots.
	boundTextures map[uint32]uint32
	textureRemap  map[uint32]uint32

	vertexBuffer uint32
	indexBuffer  uint32

	// vertexLayout is the wgpu vertex layout resolved by BindAttributeLayout.
	vertexAttributes []wgpu.VertexAttribute
	vertexStride     uint64
	layoutKey        string
}

var _ graphics.Visitor = &backendImpl{}
var _ graphics.SurfaceResizer = &backendImpl{}

// New creates the WebGPU backend against a window surface and configures it
// for the given framebuffer size. Must be called on the thread that owns the
// window; the calling goroutine is locked to its OS thread.
//
// Parameters:
//   - surfaceDescriptor: the platform surface to present into
//   - width: initial surface width in pixels
//   - height: initial surface height in pixels
//
// Returns:
//   - graphics.Visitor: the backend
//   - error: an error if no suitable adapter or device is available
func New(surfaceDescriptor *wgpu.SurfaceDescriptor, width, height int) (graphics.Visitor, error) {
	if surfaceDescriptor == nil {
		return nil, errors.New("webgpu: surface descriptor is required")
	}

	runtime.LockOSThread()
	b := &backendImpl{
		mu:            &sync.Mutex{},
		instance:      wgpu.CreateInstance(nil),
		presentMode:   wgpu.PresentModeFifo,
		buffers:       make(map[uint32]*bufferObject),
		textures:      make(map[uint32]*textureObject),
		framebuffers:  make(map[uint32]*frameBufferObject),
		programs:      make(map[uint32]*programObject),
		pipelineCache: make(map[string]*wgpu.RenderPipeline),
	}
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	adapter, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: b.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("webgpu: request adapter: %w", err)
	}
	b.adapter = adapter

	limits := wgpu.DefaultLimits()
	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: limits,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("webgpu: request device: %w", err)
	}
	b.device = device
	b.queue = device.GetQueue()

	if err := b.ConfigureSurface(width, height); err != nil {
		return nil, err
	}

	b.staged = defaultStagedState()
	return b, nil
}

func defaultStagedState() stagedState {
	return stagedState{
		depthTest:     graphics.ComparisonAlways,
		depthWrite:    true,
		colorWrite:    [4]bool{true, true, true, true},
		boundTextures: make(map[uint32]uint32),
		textureRemap:  make(map[uint32]uint32),
	}
}

// ConfigureSurface reconfigures the presentation surface and recreates the
// backbuffer depth texture. Called at creation and on every window resize.
//
// Parameters:
//   - width: the new width of the surface in pixels
//   - height: the new height of the surface in pixels
//
// Returns:
//   - error: an error if the depth texture cannot be recreated
func (b *backendImpl) ConfigureSurface(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
	b.width = uint32(width)
	b.height = uint32(height)

	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTextureView = nil
	}
	depthTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("webgpu: create depth texture: %w", err)
	}
	b.depthTextureView, err = depthTexture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("webgpu: create depth texture view: %w", err)
	}

	return nil
}

func (b *backendImpl) allocID() uint32 {
	b.nextID++
	return b.nextID
}

// pad4 pads a byte slice to a multiple of four, the queue write granularity.
func pad4(data []byte) []byte {
	if len(data)%4 == 0 {
		return data
	}
	padded := make([]byte, (len(data)+3)&^3)
	copy(padded, data)
	return padded
}

func (b *backendImpl) CreateBuffer(kind graphics.BufferKind, hint graphics.BufferHint, size int, data []byte) (uint32, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	usage := wgpu.BufferUsageCopyDst
	if kind == graphics.BufferKindVertex {
		usage |= wgpu.BufferUsageVertex
	} else {
		usage |= wgpu.BufferUsageIndex
	}

	capacity := uint64((size + 3) &^ 3)
	buffer, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            "Device Buffer",
		Size:             capacity,
		Usage:            usage,
		MappedAtCreation: false,
	})
	if err != nil {
		return 0, fmt.Errorf("webgpu: create buffer: %w", err)
	}
	if len(data) > 0 {
		b.queue.WriteBuffer(buffer, 0, pad4(data))
	}

	id := b.allocID()
	b.buffers[id] = &bufferObject{buffer: buffer, kind: kind, size: size}
	return id, nil
}

func (b *backendImpl) UpdateBuffer(id uint32, kind graphics.BufferKind, offset int, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	bo, ok := b.buffers[id]
	if !ok {
		return fmt.Errorf("webgpu: unknown buffer %d", id)
	}
	// Queue writes require a 4-byte aligned destination offset; rounding
	// would relocate the caller's bytes, so refuse instead.
	if offset%4 != 0 {
		return fmt.Errorf("webgpu: buffer write offset %d is not 4-byte aligned", offset)
	}
	b.queue.WriteBuffer(bo.buffer, uint64(offset), pad4(data))
	return nil
}

func (b *backendImpl) DeleteBuffer(id uint32, kind graphics.BufferKind) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	bo, ok := b.buffers[id]
	if !ok {
		return fmt.Errorf("webgpu: unknown buffer %d", id)
	}
	bo.buffer.Release()
	delete(b.buffers, id)
	return nil
}

func (b *backendImpl) CreateTexture(setup graphics.TextureSetup, data []byte) (uint32, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	pixels, err := expandToRGBA8(setup.Format, data, setup.Dimensions)
	if err != nil {
		return 0, err
	}

	texture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     "Sampled Texture",
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              setup.Dimensions[0],
			Height:             setup.Dimensions[1],
			DepthOrArrayLayers: 1,
		},
		Format:        wgpu.TextureFormatRGBA8Unorm,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return 0, fmt.Errorf("webgpu: create texture: %w", err)
	}

	if len(pixels) > 0 {
		b.queue.WriteTexture(
			&wgpu.ImageCopyTexture{
				Texture:  texture,
				MipLevel: 0,
				Origin:   wgpu.Origin3D{},
				Aspect:   wgpu.TextureAspectAll,
			},
			pixels,
			&wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  setup.Dimensions[0] * 4,
				RowsPerImage: setup.Dimensions[1],
			},
			&wgpu.Extent3D{
				Width:              setup.Dimensions[0],
				Height:             setup.Dimensions[1],
				DepthOrArrayLayers: 1,
			},
		)
	}

	view, err := texture.CreateView(nil)
	if err != nil {
		texture.Release()
		return 0, fmt.Errorf("webgpu: create texture view: %w", err)
	}

	sampler, err := b.createSampler(setup.Address, setup.Filter)
	if err != nil {
		view.Release()
		texture.Release()
		return 0, err
	}

	id := b.allocID()
	b.textures[id] = &textureObject{
		texture: texture,
		view:    view,
		sampler: sampler,
		format:  wgpu.TextureFormatRGBA8Unorm,
	}
	return id, nil
}

func (b *backendImpl) createSampler(address graphics.TextureAddress, filter graphics.TextureFilter) (*wgpu.Sampler, error) {
	mode := wgpu.AddressModeRepeat
	switch address {
	case graphics.TextureAddressMirror:
		mode = wgpu.AddressModeMirrorRepeat
	case graphics.TextureAddressClamp:
		mode = wgpu.AddressModeClampToEdge
	}
	filterMode := wgpu.FilterModeLinear
	mipFilter := wgpu.MipmapFilterModeLinear
	if filter == graphics.TextureFilterNearest {
		filterMode = wgpu.FilterModeNearest
		mipFilter = wgpu.MipmapFilterModeNearest
	}

	sampler, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Texture Sampler",
		AddressModeU:  mode,
		AddressModeV:  mode,
		AddressModeW:  mode,
		MagFilter:     filterMode,
		MinFilter:     filterMode,
		MipmapFilter:  mipFilter,
		LodMinClamp:   0.0,
		LodMaxClamp:   32.0,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("webgpu: create sampler: %w", err)
	}
	return sampler, nil
}

// expandToRGBA8 converts the engine's pixel formats to the RGBA8 layout the
// backend uploads. RGB8 gains an opaque alpha channel; RGBA4 unpacks each
// 16-bit texel to four bytes.
func expandToRGBA8(format graphics.TextureFormat, data []byte, dimensions [2]uint32) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	texels := int(dimensions[0]) * int(dimensions[1])

	switch format {
	case graphics.TextureFormatRGBA8:
		if len(data) < texels*4 {
			return nil, fmt.Errorf("webgpu: short texture data: %d bytes for %d texels", len(data), texels)
		}
		return data, nil

	case graphics.TextureFormatRGB8:
		if len(data) < texels*3 {
			return nil, fmt.Errorf("webgpu: short texture data: %d bytes for %d texels", len(data), texels)
		}
		out := make([]byte, texels*4)
		for i := 0; i < texels; i++ {
			out[i*4+0] = data[i*3+0]
			out[i*4+1] = data[i*3+1]
			out[i*4+2] = data[i*3+2]
			out[i*4+3] = 0xFF
		}
		return out, nil

	case graphics.TextureFormatRGBA4:
		if len(data) < texels*2 {
			return nil, fmt.Errorf("webgpu: short texture data: %d bytes for %d texels", len(data), texels)
		}
		out := make([]byte, texels*4)
		for i := 0; i < texels; i++ {
			packed := uint16(data[i*2]) | uint16(data[i*2+1])<<8
			out[i*4+0] = byte(packed>>12&0xF) * 17
			out[i*4+1] = byte(packed>>8&0xF) * 17
			out[i*4+2] = byte(packed>>4&0xF) * 17
			out[i*4+3] = byte(packed&0xF) * 17
		}
		return out, nil

	default:
		return nil, fmt.Errorf("webgpu: unsupported texture format %d", format)
	}
}

// renderTargetFormat maps the engine's render target formats onto the texture
// formats wgpu supports.
func renderTargetFormat(format graphics.RenderTextureFormat) (wgpu.TextureFormat, bool) {
	switch format {
	case graphics.RenderTextureFormatDepth16, graphics.RenderTextureFormatDepth24:
		return wgpu.TextureFormatDepth24Plus, true
	case graphics.RenderTextureFormatDepth32:
		return wgpu.TextureFormatDepth32Float, true
	case graphics.RenderTextureFormatDepth24Stencil8:
		return wgpu.TextureFormatDepth24PlusStencil8, true
	default:
		return wgpu.TextureFormatRGBA8Unorm, false
	}
}

func (b *backendImpl) CreateRenderTexture(setup graphics.RenderTextureSetup) (uint32, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	format, depth := renderTargetFormat(setup.Format)
	texture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     "Render Texture",
		Usage:     wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              setup.Dimensions[0],
			Height:             setup.Dimensions[1],
			DepthOrArrayLayers: 1,
		},
		Format:        format,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return 0, fmt.Errorf("webgpu: create render texture: %w", err)
	}
	view, err := texture.CreateView(nil)
	if err != nil {
		texture.Release()
		return 0, fmt.Errorf("webgpu: create render texture view: %w", err)
	}
	sampler, err := b.createSampler(graphics.TextureAddressClamp, graphics.TextureFilterLinear)
	if err != nil {
		view.Release()
		texture.Release()
		return 0, err
	}

	id := b.allocID()
	b.textures[id] = &textureObject{
		texture: texture,
		view:    view,
		sampler: sampler,
		format:  format,
		depth:   depth,
	}
	return id, nil
}

func (b *backendImpl) DeleteTexture(id uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	to, ok := b.textures[id]
	if !ok {
		return fmt.Errorf("webgpu: unknown texture %d", id)
	}
	if to.sampler != nil {
		to.sampler.Release()
	}
	if to.view != nil {
		to.view.Release()
	}
	if to.texture != nil {
		to.texture.Release()
	}
	delete(b.textures, id)
	return nil
}

func (b *backendImpl) CreateRenderBuffer(setup graphics.RenderBufferSetup) (uint32, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	format, depth := renderTargetFormat(setup.Format)
	texture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     "Render Buffer",
		Usage:     wgpu.TextureUsageRenderAttachment,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              setup.Dimensions[0],
			Height:             setup.Dimensions[1],
			DepthOrArrayLayers: 1,
		},
		Format:        format,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return 0, fmt.Errorf("webgpu: create render buffer: %w", err)
	}
	view, err := texture.CreateView(nil)
	if err != nil {
		texture.Release()
		return 0, fmt.Errorf("webgpu: create render buffer view: %w", err)
	}

	id := b.allocID()
	b.textures[id] = &textureObject{
		texture: texture,
		view:    view,
		format:  format,
		depth:   depth,
	}
	return id, nil
}

func (b *backendImpl) DeleteRenderBuffer(id uint32) error {
	return b.DeleteTexture(id)
}

func (b *backendImpl) CreateFrameBuffer() (uint32, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.allocID()
	b.framebuffers[id] = &frameBufferObject{}
	return id, nil
}

func (b *backendImpl) attachTarget(id uint32, attachment graphics.Attachment, target uint32) error {
	fb, ok := b.framebuffers[id]
	if !ok {
		return fmt.Errorf("webgpu: unknown framebuffer %d", id)
	}
	to, ok := b.textures[target]
	if !ok {
		return fmt.Errorf("webgpu: unknown attachment target %d", target)
	}

	switch attachment {
	case graphics.AttachmentDepth, graphics.AttachmentDepthStencil:
		if !to.depth {
			return fmt.Errorf("webgpu: target %d has no depth format", target)
		}
		fb.depthView = to.view
		fb.depthFormat = to.format
	default:
		slot := int(attachment)
		for len(fb.colorViews) <= slot {
			fb.colorViews = append(fb.colorViews, nil)
			fb.colorFormats = append(fb.colorFormats, wgpu.TextureFormatUndefined)
		}
		fb.colorViews[slot] = to.view
		fb.colorFormats[slot] = to.format
	}
	return nil
}

func (b *backendImpl) AttachFrameBufferTexture(id uint32, attachment graphics.Attachment, texture uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attachTarget(id, attachment, texture)
}

func (b *backendImpl) AttachFrameBufferRenderBuffer(id uint32, attachment graphics.Attachment, buffer uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attachTarget(id, attachment, buffer)
}

func (b *backendImpl) DeleteFrameBuffer(id uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.framebuffers[id]; !ok {
		return fmt.Errorf("webgpu: unknown framebuffer %d", id)
	}
	delete(b.framebuffers, id)
	return nil
}
