package graphics

// Color is an RGBA color with float32 channels in [0, 1].
type Color [4]float32

// BufferHint describes the expected update frequency of a buffer, letting the
// backend pick an appropriate memory strategy.
type BufferHint uint8

const (
	// BufferHintImmutable marks a buffer whose contents are set once at
	// creation and never updated. Update operations on immutable buffers are
	// rejected unconditionally.
	BufferHintImmutable BufferHint = iota

	// BufferHintDynamic marks a buffer updated occasionally.
	BufferHintDynamic

	// BufferHintStream marks a buffer rewritten nearly every frame.
	BufferHintStream
)

// Primitive selects the rasterization primitive for a draw call.
type Primitive uint8

const (
	// PrimitivePoints renders each vertex as a point.
	PrimitivePoints Primitive = iota

	// PrimitiveLines renders pairs of vertices as line segments.
	PrimitiveLines

	// PrimitiveLineStrip renders a connected polyline.
	PrimitiveLineStrip

	// PrimitiveTriangles renders triples of vertices as triangles. This is the default.
	PrimitiveTriangles

	// PrimitiveTriangleStrip renders a connected triangle strip.
	PrimitiveTriangleStrip
)

// vertices returns how many vertices of a count contribute whole primitives,
// used only for frame statistics.
func (p Primitive) primitives(count uint32) uint32 {
	switch p {
	case PrimitivePoints:
		return count
	case PrimitiveLines:
		return count / 2
	case PrimitiveLineStrip:
		if count < 2 {
			return 0
		}
		return count - 1
	case PrimitiveTriangleStrip:
		if count < 3 {
			return 0
		}
		return count - 2
	default:
		return count / 3
	}
}

// IndexFormat is the storage width of index buffer elements.
type IndexFormat uint8

const (
	// IndexFormatU16 stores 16-bit indices.
	IndexFormatU16 IndexFormat = iota

	// IndexFormatU32 stores 32-bit indices.
	IndexFormatU32
)

// Size returns the byte width of one index element.
//
// Returns:
//   - int: 2 for U16, 4 for U32
func (f IndexFormat) Size() int {
	if f == IndexFormatU32 {
		return 4
	}
	return 2
}

// VertexAttribute names the semantic of one vertex stream element. The name
// is used to resolve the attribute's binding location against the backend.
type VertexAttribute uint8

const (
	// AttributePosition is the vertex position stream.
	AttributePosition VertexAttribute = iota

	// AttributeNormal is the vertex normal stream.
	AttributeNormal

	// AttributeTangent is the vertex tangent stream.
	AttributeTangent

	// AttributeColor0 is the primary vertex color stream.
	AttributeColor0

	// AttributeColor1 is the secondary vertex color stream.
	AttributeColor1

	// AttributeTexcoord0 is the primary texture coordinate stream.
	AttributeTexcoord0

	// AttributeTexcoord1 is the secondary texture coordinate stream.
	AttributeTexcoord1

	// AttributeWeight is the skinning weight stream.
	AttributeWeight

	// AttributeIndices is the skinning joint index stream.
	AttributeIndices
)

var attributeNames = [...]string{
	AttributePosition:  "Position",
	AttributeNormal:    "Normal",
	AttributeTangent:   "Tangent",
	AttributeColor0:    "Color0",
	AttributeColor1:    "Color1",
	AttributeTexcoord0: "Texcoord0",
	AttributeTexcoord1: "Texcoord1",
	AttributeWeight:    "Weight",
	AttributeIndices:   "Indices",
}

// Name returns the canonical attribute name used for backend location lookup.
//
// Returns:
//   - string: the attribute name (e.g. "Position")
func (a VertexAttribute) Name() string {
	if int(a) < len(attributeNames) {
		return attributeNames[a]
	}
	return "Unknown"
}

// AttributeElement describes one attribute within a vertex layout.
type AttributeElement struct {
	// Attribute is the semantic of this element.
	Attribute VertexAttribute

	// Num is the component count (1–4).
	Num uint8

	// Normalized indicates integer data normalized to [0, 1] / [-1, 1].
	Normalized bool
}

// AttributeLayout is the ordered set of attributes in one interleaved vertex
// buffer, with float32 components.
type AttributeLayout []AttributeElement

// Stride returns the byte distance between consecutive vertices.
//
// Returns:
//   - int: bytes per vertex
func (l AttributeLayout) Stride() int {
	stride := 0
	for _, e := range l {
		stride += int(e.Num) * 4
	}
	return stride
}

// Element returns the layout entry for the given attribute semantic.
//
// Parameters:
//   - a: the attribute semantic to find
//
// Returns:
//   - AttributeElement: the matching element
//   - bool: true if the layout contains the attribute
func (l AttributeLayout) Element(a VertexAttribute) (AttributeElement, bool) {
	for _, e := range l {
		if e.Attribute == a {
			return e, true
		}
	}
	return AttributeElement{}, false
}

// UniformKind tags the payload type of a UniformValue.
type UniformKind uint8

const (
	// UniformKindI32 is a single signed integer.
	UniformKindI32 UniformKind = iota

	// UniformKindF32 is a single float.
	UniformKindF32

	// UniformKindVec2 is a 2-component float vector.
	UniformKindVec2

	// UniformKindVec3 is a 3-component float vector.
	UniformKindVec3

	// UniformKindVec4 is a 4-component float vector.
	UniformKindVec4

	// UniformKindMat2 is a column-major 2x2 float matrix.
	UniformKindMat2

	// UniformKindMat3 is a column-major 3x3 float matrix.
	UniformKindMat3

	// UniformKindMat4 is a column-major 4x4 float matrix.
	UniformKindMat4
)

// UniformValue is a fixed-size tagged union holding one uniform payload. It
// contains no Go pointers so it can be serialized into the TaskBuffer and
// compared for equality.
type UniformValue struct {
	// Kind selects which payload fields are meaningful.
	Kind UniformKind

	// Int holds the payload for UniformKindI32.
	Int int32

	// Data holds float payloads, column-major for matrices. Vec2/Vec3/Vec4
	// occupy the leading components; F32 occupies Data[0].
	Data [16]float32
}

// UniformI32 builds an integer uniform value.
func UniformI32(v int32) UniformValue {
	return UniformValue{Kind: UniformKindI32, Int: v}
}

// UniformF32 builds a float uniform value.
func UniformF32(v float32) UniformValue {
	u := UniformValue{Kind: UniformKindF32}
	u.Data[0] = v
	return u
}

// UniformVec2 builds a 2-component vector uniform value.
func UniformVec2(v [2]float32) UniformValue {
	u := UniformValue{Kind: UniformKindVec2}
	copy(u.Data[:], v[:])
	return u
}

// UniformVec3 builds a 3-component vector uniform value.
func UniformVec3(v [3]float32) UniformValue {
	u := UniformValue{Kind: UniformKindVec3}
	copy(u.Data[:], v[:])
	return u
}

// UniformVec4 builds a 4-component vector uniform value.
func UniformVec4(v [4]float32) UniformValue {
	u := UniformValue{Kind: UniformKindVec4}
	copy(u.Data[:], v[:])
	return u
}

// UniformMat4 builds a column-major 4x4 matrix uniform value.
func UniformMat4(v [16]float32) UniformValue {
	u := UniformValue{Kind: UniformKindMat4}
	copy(u.Data[:], v[:])
	return u
}

// CullFace selects which triangle faces are discarded before rasterization.
type CullFace uint8

const (
	// CullFaceNothing disables face culling.
	CullFaceNothing CullFace = iota

	// CullFaceFront culls front faces.
	CullFaceFront

	// CullFaceBack culls back faces.
	CullFaceBack
)

// FrontFaceOrder selects the winding that defines a front face.
type FrontFaceOrder uint8

const (
	// FrontFaceCCW treats counter-clockwise wound triangles as front-facing.
	FrontFaceCCW FrontFaceOrder = iota

	// FrontFaceCW treats clockwise wound triangles as front-facing.
	FrontFaceCW
)

// Comparison is a depth/stencil comparison function.
type Comparison uint8

const (
	// ComparisonNever always fails the test.
	ComparisonNever Comparison = iota

	// ComparisonLess passes when the incoming value is smaller.
	ComparisonLess

	// ComparisonLessOrEqual passes when the incoming value is not larger.
	ComparisonLessOrEqual

	// ComparisonGreater passes when the incoming value is larger.
	ComparisonGreater

	// ComparisonGreaterOrEqual passes when the incoming value is not smaller.
	ComparisonGreaterOrEqual

	// ComparisonEqual passes on exact equality.
	ComparisonEqual

	// ComparisonNotEqual passes on inequality.
	ComparisonNotEqual

	// ComparisonAlways always passes the test, disabling it in effect.
	ComparisonAlways
)

// BlendFactor is one operand factor of the color blend equation.
type BlendFactor uint8

const (
	// BlendFactorZero contributes nothing.
	BlendFactorZero BlendFactor = iota

	// BlendFactorOne contributes the full operand.
	BlendFactorOne

	// BlendFactorSrcAlpha scales by the source alpha.
	BlendFactorSrcAlpha

	// BlendFactorOneMinusSrcAlpha scales by one minus the source alpha.
	BlendFactorOneMinusSrcAlpha

	// BlendFactorDstAlpha scales by the destination alpha.
	BlendFactorDstAlpha

	// BlendFactorOneMinusDstAlpha scales by one minus the destination alpha.
	BlendFactorOneMinusDstAlpha
)

// BlendEquation combines the scaled source and destination colors.
type BlendEquation uint8

const (
	// BlendEquationAdd sums the scaled operands.
	BlendEquationAdd BlendEquation = iota

	// BlendEquationSubtract subtracts destination from source.
	BlendEquationSubtract

	// BlendEquationReverseSubtract subtracts source from destination.
	BlendEquationReverseSubtract
)

// Blend is a complete color blend configuration.
type Blend struct {
	// Equation combines the two scaled operands.
	Equation BlendEquation

	// Src scales the source color.
	Src BlendFactor

	// Dst scales the destination color.
	Dst BlendFactor
}

// RenderState is the fixed-function state applied when a pipeline is bound.
type RenderState struct {
	// CullFace selects face culling (default nothing).
	CullFace CullFace

	// FrontFaceOrder defines the front-facing winding (default CCW).
	FrontFaceOrder FrontFaceOrder

	// DepthTest is the depth comparison (ComparisonAlways disables testing).
	DepthTest Comparison

	// DepthWrite enables writes to the depth buffer.
	DepthWrite bool

	// DepthWriteOffset is an optional polygon (factor, units) depth offset.
	DepthWriteOffset *[2]float32

	// ColorBlend enables blending when non-nil.
	ColorBlend *Blend

	// ColorWrite masks the R, G, B, A channels.
	ColorWrite [4]bool
}

// DefaultRenderState returns the state crayon pipelines start from: no
// culling, CCW front faces, depth test always, depth write on, no blending,
// all color channels written.
//
// Returns:
//   - RenderState: the default state
func DefaultRenderState() RenderState {
	return RenderState{
		CullFace:       CullFaceNothing,
		FrontFaceOrder: FrontFaceCCW,
		DepthTest:      ComparisonAlways,
		DepthWrite:     true,
		ColorWrite:     [4]bool{true, true, true, true},
	}
}

// VertexBufferSetup is the creation configuration of a vertex buffer, kept
// for validation and rebinding after creation.
type VertexBufferSetup struct {
	// Layout describes the interleaved attribute streams.
	Layout AttributeLayout

	// Num is the vertex count.
	Num int

	// Hint is the update-frequency hint.
	Hint BufferHint
}

// Size returns the buffer's byte capacity.
//
// Returns:
//   - int: Num vertices times the layout stride
func (s VertexBufferSetup) Size() int {
	return s.Num * s.Layout.Stride()
}

// IndexBufferSetup is the creation configuration of an index buffer.
type IndexBufferSetup struct {
	// Format is the index element width.
	Format IndexFormat

	// Num is the index count.
	Num int

	// Hint is the update-frequency hint.
	Hint BufferHint
}

// Size returns the buffer's byte capacity.
//
// Returns:
//   - int: Num indices times the element width
func (s IndexBufferSetup) Size() int {
	return s.Num * s.Format.Size()
}

// PipelineSetup is the creation configuration of a pipeline state object.
type PipelineSetup struct {
	// Layout is the vertex attribute layout the pipeline's program expects.
	// Every attribute must resolve to a location in the program.
	Layout AttributeLayout

	// State is the fixed-function render state applied on bind.
	State RenderState
}

// Viewport is a view's render area: an origin plus an optional size. A nil
// Size means the frame's full dimensions at flush time.
type Viewport struct {
	// Position is the lower-left origin in pixels.
	Position [2]uint16

	// Size is the area in pixels, or nil to track the frame dimensions.
	Size *[2]uint16
}

// ViewSetup is the creation configuration of a view: where its draw calls
// render, what gets cleared, and how its queue is ordered during flush.
type ViewSetup struct {
	// FrameBuffer is the render target, or the zero handle for the backbuffer.
	FrameBuffer FrameBufferHandle

	// ClearColor clears the color channel when non-nil.
	ClearColor *Color

	// ClearDepth clears the depth channel when non-nil.
	ClearDepth *float32

	// ClearStencil clears the stencil channel when non-nil.
	ClearStencil *int32

	// Viewport is the view's render area.
	Viewport Viewport

	// Order ranks the view against other views at flush: views with non-zero
	// Order are flushed first, highest Order first; zero-Order views follow
	// in table-iteration order.
	Order uint64

	// Sequence preserves draw-call submission order instead of sorting the
	// view's queue by descending draw priority.
	Sequence bool
}

// TextureFormat is the pixel format of a sampled texture.
type TextureFormat uint8

const (
	// TextureFormatRGBA8 is 8-bit-per-channel RGBA. This is the default.
	TextureFormatRGBA8 TextureFormat = iota

	// TextureFormatRGB8 is 8-bit-per-channel RGB.
	TextureFormatRGB8

	// TextureFormatRGBA4 is 4-bit-per-channel RGBA.
	TextureFormatRGBA4
)

// RenderTextureFormat is the format of a render target texture or buffer.
type RenderTextureFormat uint8

const (
	// RenderTextureFormatRGB8 is an 8-bit RGB color target.
	RenderTextureFormatRGB8 RenderTextureFormat = iota

	// RenderTextureFormatRGBA4 is a 4-bit RGBA color target.
	RenderTextureFormatRGBA4

	// RenderTextureFormatRGBA8 is an 8-bit RGBA color target.
	RenderTextureFormatRGBA8

	// RenderTextureFormatDepth16 is a 16-bit depth target.
	RenderTextureFormatDepth16

	// RenderTextureFormatDepth24 is a 24-bit depth target.
	RenderTextureFormatDepth24

	// RenderTextureFormatDepth32 is a 32-bit depth target.
	RenderTextureFormatDepth32

	// RenderTextureFormatDepth24Stencil8 is a combined depth-stencil target.
	RenderTextureFormatDepth24Stencil8
)

// attachment returns the framebuffer attachment point implied by the format.
func (f RenderTextureFormat) attachment(slot uint32) Attachment {
	switch f {
	case RenderTextureFormatDepth16, RenderTextureFormatDepth24, RenderTextureFormatDepth32:
		return AttachmentDepth
	case RenderTextureFormatDepth24Stencil8:
		return AttachmentDepthStencil
	default:
		return AttachmentColor0 + Attachment(slot)
	}
}

// TextureAddress is the sampling behavior outside [0, 1] coordinates.
type TextureAddress uint8

const (
	// TextureAddressRepeat tiles the texture.
	TextureAddressRepeat TextureAddress = iota

	// TextureAddressMirror tiles with alternating reflection.
	TextureAddressMirror

	// TextureAddressClamp clamps to the edge texel.
	TextureAddressClamp
)

// TextureFilter is the sampling filter.
type TextureFilter uint8

const (
	// TextureFilterLinear interpolates between texels. This is the default.
	TextureFilterLinear TextureFilter = iota

	// TextureFilterNearest snaps to the nearest texel.
	TextureFilterNearest
)

// TextureSetup is the creation configuration of a sampled texture.
type TextureSetup struct {
	// Format is the pixel format.
	Format TextureFormat

	// Address is the out-of-range sampling behavior.
	Address TextureAddress

	// Filter is the sampling filter.
	Filter TextureFilter

	// Mipmap generates a mip chain at creation.
	Mipmap bool

	// Dimensions is the width and height in pixels.
	Dimensions [2]uint32
}

// RenderTextureSetup is the creation configuration of a render target
// texture, which can both be drawn into and sampled.
type RenderTextureSetup struct {
	// Format is the target format.
	Format RenderTextureFormat

	// Dimensions is the width and height in pixels.
	Dimensions [2]uint32
}

// RenderBufferSetup is the creation configuration of a render buffer, a
// write-only render target attachment.
type RenderBufferSetup struct {
	// Format is the target format.
	Format RenderTextureFormat

	// Dimensions is the width and height in pixels.
	Dimensions [2]uint32
}
