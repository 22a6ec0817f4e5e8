package graphics

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingVisitor is a backend double that records the order of realized
// calls and resolves names from configurable maps.
type recordingVisitor struct {
	nextID uint32

	// draws records the `from` argument of every issued draw, in order.
	draws []uint32

	programBinds    int
	commits         int
	deletedPrograms []uint32
	boundFrames     []uint32
	boundUniforms   map[int]UniformValue

	uniforms   map[string]int
	attributes map[string]int
}

func newRecordingVisitor() *recordingVisitor {
	return &recordingVisitor{
		boundUniforms: make(map[int]UniformValue),
		uniforms:      map[string]int{"u_Color": 0, "u_Model": 1},
		attributes:    map[string]int{"Position": 0, "Color0": 1},
	}
}

func (v *recordingVisitor) alloc() uint32 {
	v.nextID++
	return v.nextID
}

func (v *recordingVisitor) CreateBuffer(BufferKind, BufferHint, int, []byte) (uint32, error) {
	return v.alloc(), nil
}
func (v *recordingVisitor) UpdateBuffer(uint32, BufferKind, int, []byte) error { return nil }
func (v *recordingVisitor) DeleteBuffer(uint32, BufferKind) error              { return nil }
func (v *recordingVisitor) CreateTexture(TextureSetup, []byte) (uint32, error) {
	return v.alloc(), nil
}
func (v *recordingVisitor) CreateRenderTexture(RenderTextureSetup) (uint32, error) {
	return v.alloc(), nil
}
func (v *recordingVisitor) DeleteTexture(uint32) error { return nil }
func (v *recordingVisitor) CreateRenderBuffer(RenderBufferSetup) (uint32, error) {
	return v.alloc(), nil
}
func (v *recordingVisitor) DeleteRenderBuffer(uint32) error         { return nil }
func (v *recordingVisitor) CreateFrameBuffer() (uint32, error)      { return v.alloc(), nil }
func (v *recordingVisitor) DeleteFrameBuffer(uint32) error          { return nil }
func (v *recordingVisitor) CreateProgram(_, _ string) (uint32, error) {
	return v.alloc(), nil
}

func (v *recordingVisitor) DeleteProgram(id uint32) error {
	v.deletedPrograms = append(v.deletedPrograms, id)
	return nil
}

func (v *recordingVisitor) AttachFrameBufferTexture(uint32, Attachment, uint32) error { return nil }
func (v *recordingVisitor) AttachFrameBufferRenderBuffer(uint32, Attachment, uint32) error {
	return nil
}

func (v *recordingVisitor) GetUniformLocation(_ uint32, name string) (int, error) {
	if location, ok := v.uniforms[name]; ok {
		return location, nil
	}
	return UnresolvedLocation, nil
}

func (v *recordingVisitor) GetAttributeLocation(_ uint32, name string) (int, error) {
	if location, ok := v.attributes[name]; ok {
		return location, nil
	}
	return UnresolvedLocation, nil
}

func (v *recordingVisitor) BindFrameBuffer(id uint32) error {
	v.boundFrames = append(v.boundFrames, id)
	return nil
}
func (v *recordingVisitor) Clear(*Color, *float32, *int32) error         { return nil }
func (v *recordingVisitor) SetViewport([2]uint16, [2]uint16) error       { return nil }
func (v *recordingVisitor) BindProgram(uint32) error                     { v.programBinds++; return nil }
func (v *recordingVisitor) BindUniform(location int, value UniformValue) error {
	v.boundUniforms[location] = value
	return nil
}
func (v *recordingVisitor) BindTexture(uint32, uint32) error             { return nil }
func (v *recordingVisitor) SetCullFace(CullFace) error                   { return nil }
func (v *recordingVisitor) SetFrontFaceOrder(FrontFaceOrder) error       { return nil }
func (v *recordingVisitor) SetDepthTest(Comparison) error                { return nil }
func (v *recordingVisitor) SetDepthWrite(bool, *[2]float32) error        { return nil }
func (v *recordingVisitor) SetColorBlend(*Blend) error                   { return nil }
func (v *recordingVisitor) SetColorWrite(_, _, _, _ bool) error          { return nil }
func (v *recordingVisitor) BindVertexBuffer(uint32) error                { return nil }
func (v *recordingVisitor) BindIndexBuffer(uint32) error                 { return nil }
func (v *recordingVisitor) BindAttributeLayout(_, _ AttributeLayout) error {
	return nil
}

func (v *recordingVisitor) DrawElements(_ Primitive, _ IndexFormat, from, _ uint32) error {
	v.draws = append(v.draws, from)
	return nil
}

func (v *recordingVisitor) DrawArrays(_ Primitive, from, _ uint32) error {
	v.draws = append(v.draws, from)
	return nil
}

func (v *recordingVisitor) Commit() error { v.commits++; return nil }

var testLayout = AttributeLayout{
	{Attribute: AttributePosition, Num: 3},
}

// newTestScene creates a graphics system over a recording visitor, with one
// vertex buffer and one pipeline ready for draw submission.
func newTestScene(t *testing.T) (*GraphicsSystem, *recordingVisitor, VertexBufferHandle, PipelineHandle) {
	t.Helper()
	visitor := newRecordingVisitor()
	graphics := NewGraphicsSystem(visitor)

	vb, err := graphics.CreateVertexBuffer(VertexBufferSetup{
		Layout: testLayout,
		Num:    3,
		Hint:   BufferHintImmutable,
	}, make([]byte, 36))
	require.NoError(t, err)

	pso, err := graphics.CreatePipeline(PipelineSetup{
		Layout: testLayout,
		State:  DefaultRenderState(),
	}, "vs", "fs")
	require.NoError(t, err)

	return graphics, visitor, vb, pso
}

// submitMarked queues a non-indexed draw whose `from` argument serves as an
// order marker in the visitor's draw log.
func submitMarked(t *testing.T, g *GraphicsSystem, view ViewHandle, pso PipelineHandle, vb VertexBufferHandle, priority uint64, marker uint32) {
	t.Helper()
	err := g.Draw().
		WithView(view).
		WithPipeline(pso).
		WithPriority(priority).
		WithData(vb, IndexBufferHandle{}).
		Submit(PrimitiveTriangles, marker, 3)
	require.NoError(t, err)
}

func TestViewFlushOrder(t *testing.T) {
	graphics, visitor, vb, pso := newTestScene(t)

	viewA, err := graphics.CreateView(ViewSetup{Order: 0})
	require.NoError(t, err)
	viewB, err := graphics.CreateView(ViewSetup{Order: 5})
	require.NoError(t, err)
	viewC, err := graphics.CreateView(ViewSetup{Order: 10})
	require.NoError(t, err)

	submitMarked(t, graphics, viewA, pso, vb, 0, 1)
	submitMarked(t, graphics, viewB, pso, vb, 0, 2)
	submitMarked(t, graphics, viewC, pso, vb, 0, 3)

	require.NoError(t, graphics.SwapFrames())
	info, err := graphics.Advance(640, 480)
	require.NoError(t, err)

	// Highest explicit Order first, zero-Order views last.
	assert.Equal(t, []uint32{3, 2, 1}, visitor.draws)
	assert.Equal(t, uint32(3), info.Flush.Views)
	assert.Equal(t, uint32(3), info.Flush.DrawCalls)
	assert.Equal(t, 1, visitor.commits)
}

func TestDrawPrioritySorting(t *testing.T) {
	graphics, visitor, vb, pso := newTestScene(t)

	view, err := graphics.CreateView(ViewSetup{})
	require.NoError(t, err)

	submitMarked(t, graphics, view, pso, vb, 1, 1)
	submitMarked(t, graphics, view, pso, vb, 2, 2)
	submitMarked(t, graphics, view, pso, vb, 3, 3)

	require.NoError(t, graphics.SwapFrames())
	_, err = graphics.Advance(640, 480)
	require.NoError(t, err)

	assert.Equal(t, []uint32{3, 2, 1}, visitor.draws)
}

func TestDrawSequencePreservesSubmissionOrder(t *testing.T) {
	graphics, visitor, vb, pso := newTestScene(t)

	view, err := graphics.CreateView(ViewSetup{Sequence: true})
	require.NoError(t, err)

	submitMarked(t, graphics, view, pso, vb, 3, 3)
	submitMarked(t, graphics, view, pso, vb, 1, 1)
	submitMarked(t, graphics, view, pso, vb, 2, 2)

	require.NoError(t, graphics.SwapFrames())
	_, err = graphics.Advance(640, 480)
	require.NoError(t, err)

	assert.Equal(t, []uint32{3, 1, 2}, visitor.draws)
}

func TestPipelineBoundOncePerRun(t *testing.T) {
	graphics, visitor, vb, pso := newTestScene(t)

	view, err := graphics.CreateView(ViewSetup{Sequence: true})
	require.NoError(t, err)

	for i := uint32(0); i < 3; i++ {
		submitMarked(t, graphics, view, pso, vb, 0, i)
	}

	require.NoError(t, graphics.SwapFrames())
	_, err = graphics.Advance(640, 480)
	require.NoError(t, err)

	// Consecutive draws sharing a pipeline skip the full rebind.
	assert.Equal(t, 1, visitor.programBinds)
	assert.Len(t, visitor.draws, 3)
}

func TestPipelineReboundAfterSwitch(t *testing.T) {
	graphics, visitor, vb, psoA := newTestScene(t)

	psoB, err := graphics.CreatePipeline(PipelineSetup{
		Layout: testLayout,
		State:  DefaultRenderState(),
	}, "vs", "fs")
	require.NoError(t, err)

	view, err := graphics.CreateView(ViewSetup{Sequence: true})
	require.NoError(t, err)

	submitMarked(t, graphics, view, psoA, vb, 0, 1)
	submitMarked(t, graphics, view, psoB, vb, 0, 2)
	submitMarked(t, graphics, view, psoA, vb, 0, 3)

	require.NoError(t, graphics.SwapFrames())
	_, err = graphics.Advance(640, 480)
	require.NoError(t, err)

	assert.Equal(t, 3, visitor.programBinds)
}

func TestSubmitInvalidView(t *testing.T) {
	graphics, visitor, vb, pso := newTestScene(t)

	view, err := graphics.CreateView(ViewSetup{})
	require.NoError(t, err)
	require.NoError(t, graphics.DeleteView(view))

	err = graphics.Draw().
		WithView(view).
		WithPipeline(pso).
		WithData(vb, IndexBufferHandle{}).
		Submit(PrimitiveTriangles, 0, 3)
	assert.ErrorIs(t, err, ErrInvalidHandle)

	require.NoError(t, graphics.SwapFrames())
	info, err := graphics.Advance(640, 480)
	require.NoError(t, err)
	assert.Zero(t, info.Flush.DrawCalls)
	assert.Empty(t, visitor.draws)
}

func TestStaleViewHandleAfterReuse(t *testing.T) {
	visitor := newRecordingVisitor()
	device := NewDevice(visitor)

	stale := ViewHandle{index: 0, generation: 1}
	require.NoError(t, device.CreateView(stale, ViewSetup{}))
	require.NoError(t, device.DeleteView(stale))

	// The slot is reoccupied under a bumped generation; the stale handle must
	// not alias the new occupant.
	fresh := ViewHandle{index: 0, generation: 2}
	require.NoError(t, device.CreateView(fresh, ViewSetup{}))

	err := device.Submit(0, stale, PipelineHandle{}, TaskBufferPtr[UniformBinding]{}, TaskBufferPtr[TextureBinding]{}, VertexBufferHandle{}, IndexBufferHandle{}, PrimitiveTriangles, 0, 3)
	assert.ErrorIs(t, err, ErrInvalidHandle)
}

func TestDuplicateHandleRejected(t *testing.T) {
	visitor := newRecordingVisitor()
	device := NewDevice(visitor)

	handle := VertexBufferHandle{index: 1, generation: 1}
	setup := VertexBufferSetup{Layout: testLayout, Num: 3, Hint: BufferHintDynamic}
	require.NoError(t, device.CreateVertexBuffer(handle, setup, nil))

	err := device.CreateVertexBuffer(handle, setup, nil)
	assert.ErrorIs(t, err, ErrDuplicatedHandle)
}

func TestUpdateValidationOrder(t *testing.T) {
	visitor := newRecordingVisitor()
	device := NewDevice(visitor)

	immutable := VertexBufferHandle{index: 1, generation: 1}
	require.NoError(t, device.CreateVertexBuffer(immutable, VertexBufferSetup{
		Layout: testLayout,
		Num:    3,
		Hint:   BufferHintImmutable,
	}, make([]byte, 36)))

	// An out-of-bounds write into an immutable buffer reports the immutability
	// first.
	err := device.UpdateVertexBuffer(immutable, 0, make([]byte, 1024))
	assert.ErrorIs(t, err, ErrImmutableResource)

	dynamic := VertexBufferHandle{index: 2, generation: 1}
	require.NoError(t, device.CreateVertexBuffer(dynamic, VertexBufferSetup{
		Layout: testLayout,
		Num:    3,
		Hint:   BufferHintDynamic,
	}, nil))

	err = device.UpdateVertexBuffer(dynamic, 12, make([]byte, 36))
	assert.ErrorIs(t, err, ErrOutOfBounds)
	assert.NoError(t, device.UpdateVertexBuffer(dynamic, 12, make([]byte, 24)))

	err = device.UpdateVertexBuffer(VertexBufferHandle{index: 9, generation: 1}, 0, nil)
	assert.ErrorIs(t, err, ErrInvalidHandle)
}

func TestCreatePipelineValidatesAttributes(t *testing.T) {
	visitor := newRecordingVisitor()
	graphics := NewGraphicsSystem(visitor)

	_, err := graphics.CreatePipeline(PipelineSetup{
		Layout: AttributeLayout{
			{Attribute: AttributePosition, Num: 3},
			{Attribute: AttributeTexcoord0, Num: 2},
		},
		State: DefaultRenderState(),
	}, "vs", "fs")

	var bindErr *BindingError
	require.ErrorAs(t, err, &bindErr)
	assert.Equal(t, "attribute", bindErr.Kind)
	assert.Equal(t, "Texcoord0", bindErr.Name)

	// The rejected program must not leak at the backend.
	assert.Len(t, visitor.deletedPrograms, 1)
}

func TestUnresolvableUniformAbortsFlush(t *testing.T) {
	graphics, visitor, vb, pso := newTestScene(t)

	view, err := graphics.CreateView(ViewSetup{})
	require.NoError(t, err)

	err = graphics.Draw().
		WithView(view).
		WithPipeline(pso).
		WithUniform("u_Missing", UniformF32(1)).
		WithData(vb, IndexBufferHandle{}).
		Submit(PrimitiveTriangles, 0, 3)
	require.NoError(t, err)

	require.NoError(t, graphics.SwapFrames())
	info, err := graphics.Advance(640, 480)

	var bindErr *BindingError
	require.ErrorAs(t, err, &bindErr)
	assert.Equal(t, "uniform", bindErr.Kind)
	assert.Equal(t, "u_Missing", bindErr.Name)
	assert.Zero(t, info.Flush.DrawCalls)

	// Commit still runs so the backend never keeps a dangling frame.
	assert.Equal(t, 1, visitor.commits)
}

func TestPerDrawUniformsReachBackend(t *testing.T) {
	graphics, visitor, vb, pso := newTestScene(t)

	view, err := graphics.CreateView(ViewSetup{})
	require.NoError(t, err)

	value := UniformVec4([4]float32{1, 0, 0, 1})
	err = graphics.Draw().
		WithView(view).
		WithPipeline(pso).
		WithUniform("u_Color", value).
		WithData(vb, IndexBufferHandle{}).
		Submit(PrimitiveTriangles, 0, 3)
	require.NoError(t, err)

	require.NoError(t, graphics.SwapFrames())
	_, err = graphics.Advance(640, 480)
	require.NoError(t, err)

	assert.Equal(t, value, visitor.boundUniforms[0])
}

func TestPersistedUniformsReappliedOnBind(t *testing.T) {
	graphics, visitor, vb, pso := newTestScene(t)

	value := UniformF32(0.5)
	require.NoError(t, graphics.UpdatePipelineUniform(pso, "u_Model", value))

	// A persisted name the program no longer declares is skipped, not fatal.
	require.NoError(t, graphics.UpdatePipelineUniform(pso, "u_Gone", UniformF32(9)))

	view, err := graphics.CreateView(ViewSetup{})
	require.NoError(t, err)
	submitMarked(t, graphics, view, pso, vb, 0, 0)

	require.NoError(t, graphics.SwapFrames())
	_, err = graphics.Advance(640, 480)
	require.NoError(t, err)

	assert.Equal(t, value, visitor.boundUniforms[1])
}

func TestIndexedDrawUsesIndexBuffer(t *testing.T) {
	graphics, visitor, vb, pso := newTestScene(t)

	ib, err := graphics.CreateIndexBuffer(IndexBufferSetup{
		Format: IndexFormatU16,
		Num:    6,
		Hint:   BufferHintImmutable,
	}, make([]byte, 12))
	require.NoError(t, err)

	view, err := graphics.CreateView(ViewSetup{})
	require.NoError(t, err)

	err = graphics.Draw().
		WithView(view).
		WithPipeline(pso).
		WithData(vb, ib).
		Submit(PrimitiveTriangles, 0, 6)
	require.NoError(t, err)

	require.NoError(t, graphics.SwapFrames())
	info, err := graphics.Advance(640, 480)
	require.NoError(t, err)

	assert.Equal(t, uint32(1), info.Flush.DrawCalls)
	assert.Equal(t, uint32(2), info.Flush.Primitives)
	assert.Len(t, visitor.draws, 1)
}

func TestSubmitWithoutVertexBuffer(t *testing.T) {
	graphics, _, _, pso := newTestScene(t)

	view, err := graphics.CreateView(ViewSetup{})
	require.NoError(t, err)

	err = graphics.Draw().
		WithView(view).
		WithPipeline(pso).
		Submit(PrimitiveTriangles, 0, 3)
	assert.ErrorIs(t, err, ErrInvalidHandle)
}

func TestSwapIsolatesFrames(t *testing.T) {
	graphics, visitor, vb, pso := newTestScene(t)

	view, err := graphics.CreateView(ViewSetup{})
	require.NoError(t, err)

	submitMarked(t, graphics, view, pso, vb, 0, 1)
	require.NoError(t, graphics.SwapFrames())

	// Recorded after the swap; belongs to the next frame.
	submitMarked(t, graphics, view, pso, vb, 0, 2)

	_, err = graphics.Advance(640, 480)
	require.NoError(t, err)
	assert.Equal(t, []uint32{1}, visitor.draws)

	require.NoError(t, graphics.SwapFrames())
	_, err = graphics.Advance(640, 480)
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 2}, visitor.draws)
}

func TestViewTargetsFrameBuffer(t *testing.T) {
	graphics, visitor, vb, pso := newTestScene(t)

	fb, err := graphics.CreateFrameBuffer()
	require.NoError(t, err)
	target, err := graphics.CreateRenderTexture(RenderTextureSetup{
		Format:     RenderTextureFormatRGBA8,
		Dimensions: [2]uint32{256, 256},
	})
	require.NoError(t, err)
	require.NoError(t, graphics.UpdateFrameBufferTexture(fb, target, 0))

	view, err := graphics.CreateView(ViewSetup{FrameBuffer: fb})
	require.NoError(t, err)
	submitMarked(t, graphics, view, pso, vb, 0, 0)

	require.NoError(t, graphics.SwapFrames())
	_, err = graphics.Advance(640, 480)
	require.NoError(t, err)

	// SwapFrames rebinds the backbuffer, then the view binds its target.
	require.GreaterOrEqual(t, len(visitor.boundFrames), 2)
	assert.NotZero(t, visitor.boundFrames[len(visitor.boundFrames)-1])
}

func TestAttachNonRenderTextureRejected(t *testing.T) {
	graphics, _, _, _ := newTestScene(t)

	fb, err := graphics.CreateFrameBuffer()
	require.NoError(t, err)
	sampled, err := graphics.CreateTexture(TextureSetup{
		Format:     TextureFormatRGBA8,
		Dimensions: [2]uint32{4, 4},
	}, make([]byte, 64))
	require.NoError(t, err)

	err = graphics.UpdateFrameBufferTexture(fb, sampled, 0)
	assert.Error(t, err)
}

func TestAdvanceReportsAliveResources(t *testing.T) {
	graphics, _, vb, _ := newTestScene(t)

	_, err := graphics.CreateView(ViewSetup{})
	require.NoError(t, err)

	require.NoError(t, graphics.SwapFrames())
	info, err := graphics.Advance(640, 480)
	require.NoError(t, err)

	assert.Equal(t, 1, info.AliveVertexBuffers)
	assert.Equal(t, 1, info.AlivePipelines)
	assert.Equal(t, 1, info.AliveViews)

	require.NoError(t, graphics.DeleteVertexBuffer(vb))
	require.NoError(t, graphics.SwapFrames())
	info, err = graphics.Advance(640, 480)
	require.NoError(t, err)
	assert.Zero(t, info.AliveVertexBuffers)
}

func TestAdvanceStatsSafeDuringResourceEdits(t *testing.T) {
	graphics, _, _, _ := newTestScene(t)

	// Resource edits from the update phase may overlap Advance on the
	// control thread; the alive-resource counts must read under the device
	// lock while the tables churn.
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			vb, err := graphics.CreateVertexBuffer(VertexBufferSetup{
				Layout: testLayout,
				Num:    3,
				Hint:   BufferHintStream,
			}, nil)
			if err != nil {
				return
			}
			if err := graphics.DeleteVertexBuffer(vb); err != nil {
				return
			}
		}
	}()

	for i := 0; i < 200; i++ {
		_, err := graphics.Advance(640, 480)
		require.NoError(t, err)
	}
	wg.Wait()
}

func TestUpdateNegativeOffsetRejected(t *testing.T) {
	visitor := newRecordingVisitor()
	device := NewDevice(visitor)

	vb := VertexBufferHandle{index: 1, generation: 1}
	require.NoError(t, device.CreateVertexBuffer(vb, VertexBufferSetup{
		Layout: testLayout,
		Num:    3,
		Hint:   BufferHintDynamic,
	}, nil))
	err := device.UpdateVertexBuffer(vb, -4, make([]byte, 4))
	assert.ErrorIs(t, err, ErrOutOfBounds)

	ib := IndexBufferHandle{index: 1, generation: 1}
	require.NoError(t, device.CreateIndexBuffer(ib, IndexBufferSetup{
		Format: IndexFormatU16,
		Num:    6,
		Hint:   BufferHintDynamic,
	}, nil))
	err = device.UpdateIndexBuffer(ib, -1, make([]byte, 2))
	assert.ErrorIs(t, err, ErrOutOfBounds)
}
