package graphics

// BufferKind distinguishes vertex from index buffers at the backend boundary.
type BufferKind uint8

const (
	// BufferKindVertex is a vertex data buffer.
	BufferKindVertex BufferKind = iota

	// BufferKindIndex is an index data buffer.
	BufferKindIndex
)

// Attachment is a framebuffer attachment point.
type Attachment uint8

const (
	// AttachmentColor0 is the first color attachment; higher slots follow it.
	AttachmentColor0 Attachment = iota

	// AttachmentDepth is the depth attachment.
	AttachmentDepth = 31

	// AttachmentDepthStencil is the combined depth-stencil attachment.
	AttachmentDepthStencil = 32
)

// UnresolvedLocation is returned by the Visitor's location lookups when a
// name does not exist in the bound program.
const UnresolvedLocation = -1

// Visitor is the backend adapter every hardware-touching call goes through.
// The Device is the only component that talks to it, and only from the thread
// owning the graphics context. Every method may fail with a backend-specific
// error, which the Device surfaces unchanged (wrapped, never swallowed).
//
// Resource identifiers returned by the Create methods are backend-private
// names; the Device maps its own handles onto them.
type Visitor interface {
	// CreateBuffer allocates a vertex or index buffer of the given byte size,
	// optionally filled with data.
	//
	// Parameters:
	//   - kind: vertex or index
	//   - hint: update-frequency hint
	//   - size: byte capacity
	//   - data: initial contents, or nil
	//
	// Returns:
	//   - uint32: the backend buffer identifier
	//   - error: a backend error if allocation fails
	CreateBuffer(kind BufferKind, hint BufferHint, size int, data []byte) (uint32, error)

	// UpdateBuffer overwrites a byte range of an existing buffer.
	UpdateBuffer(id uint32, kind BufferKind, offset int, data []byte) error

	// DeleteBuffer releases a buffer.
	DeleteBuffer(id uint32, kind BufferKind) error

	// CreateTexture allocates a sampled texture filled with pixel data.
	CreateTexture(setup TextureSetup, data []byte) (uint32, error)

	// CreateRenderTexture allocates a texture usable as a render target.
	CreateRenderTexture(setup RenderTextureSetup) (uint32, error)

	// DeleteTexture releases a texture.
	DeleteTexture(id uint32) error

	// CreateRenderBuffer allocates a write-only render target attachment.
	CreateRenderBuffer(setup RenderBufferSetup) (uint32, error)

	// DeleteRenderBuffer releases a render buffer.
	DeleteRenderBuffer(id uint32) error

	// CreateFrameBuffer allocates an empty framebuffer.
	CreateFrameBuffer() (uint32, error)

	// AttachFrameBufferTexture attaches a render texture to a framebuffer.
	AttachFrameBufferTexture(id uint32, attachment Attachment, texture uint32) error

	// AttachFrameBufferRenderBuffer attaches a render buffer to a framebuffer.
	AttachFrameBufferRenderBuffer(id uint32, attachment Attachment, buffer uint32) error

	// DeleteFrameBuffer releases a framebuffer.
	DeleteFrameBuffer(id uint32) error

	// CreateProgram compiles and links a vertex/fragment shader pair.
	//
	// Parameters:
	//   - vs: vertex shader source
	//   - fs: fragment shader source
	//
	// Returns:
	//   - uint32: the backend program identifier
	//   - error: a backend compile/link error
	CreateProgram(vs, fs string) (uint32, error)

	// DeleteProgram releases a program.
	DeleteProgram(id uint32) error

	// GetUniformLocation resolves a uniform name within a program, returning
	// UnresolvedLocation if the program has no such uniform.
	GetUniformLocation(program uint32, name string) (int, error)

	// GetAttributeLocation resolves a vertex attribute name within a program,
	// returning UnresolvedLocation if the program has no such attribute.
	GetAttributeLocation(program uint32, name string) (int, error)

	// BindFrameBuffer makes a framebuffer the current render target; id 0 is
	// the default backbuffer.
	BindFrameBuffer(id uint32) error

	// Clear clears the current render target's channels; nil arguments leave
	// the corresponding channel untouched.
	Clear(color *Color, depth *float32, stencil *int32) error

	// SetViewport sets the render area within the current target.
	SetViewport(position [2]uint16, size [2]uint16) error

	// BindProgram makes a program current for subsequent uniform binds and draws.
	BindProgram(id uint32) error

	// BindUniform assigns a value to a previously resolved uniform location
	// of the current program.
	BindUniform(location int, value UniformValue) error

	// BindTexture binds a texture to a sampler slot.
	BindTexture(slot uint32, id uint32) error

	// SetCullFace applies the face-culling state.
	SetCullFace(cull CullFace) error

	// SetFrontFaceOrder applies the front-face winding state.
	SetFrontFaceOrder(order FrontFaceOrder) error

	// SetDepthTest applies the depth comparison state.
	SetDepthTest(comparison Comparison) error

	// SetDepthWrite applies the depth write mask and optional polygon offset.
	SetDepthWrite(enable bool, offset *[2]float32) error

	// SetColorBlend applies the blend state; nil disables blending.
	SetColorBlend(blend *Blend) error

	// SetColorWrite applies the per-channel color write mask.
	SetColorWrite(r, g, b, a bool) error

	// BindVertexBuffer makes a vertex buffer current for layout binding and draws.
	BindVertexBuffer(id uint32) error

	// BindIndexBuffer makes an index buffer current for indexed draws.
	BindIndexBuffer(id uint32) error

	// BindAttributeLayout wires the current vertex buffer's layout to the
	// current program's expected layout. Every attribute the pipeline layout
	// names must exist in the buffer layout and resolve in the program.
	BindAttributeLayout(pipeline AttributeLayout, buffer AttributeLayout) error

	// DrawElements issues an indexed draw from the current buffers.
	DrawElements(primitive Primitive, format IndexFormat, from, count uint32) error

	// DrawArrays issues a non-indexed draw from the current vertex buffer.
	DrawArrays(primitive Primitive, from, count uint32) error

	// Commit finishes the frame's recorded work and blocks until the backend
	// has accepted all of it. Called exactly once at the end of a successful
	// or failed flush.
	Commit() error
}
