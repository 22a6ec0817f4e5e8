// package graphics implements the deferred rendering core: handle-indexed
// GPU resource storage, a per-frame command arena, and a Device that buffers
// draw-call submissions and realizes them against a backend Visitor.
package graphics

// Handle is an opaque identifier for a logical resource slot. It pairs a slot
// index with a generation counter so that a handle outliving its object can
// never alias a newly created object reusing the same index.
//
// The zero Handle is never live; Nil reports whether a handle is the zero value.
type Handle struct {
	index      uint32
	generation uint32
}

// Index returns the slot index encoded in the handle.
//
// Returns:
//   - uint32: the slot index
func (h Handle) Index() uint32 {
	return h.index
}

// Generation returns the generation counter encoded in the handle.
//
// Returns:
//   - uint32: the generation counter (0 only for the zero Handle)
func (h Handle) Generation() uint32 {
	return h.generation
}

// Nil reports whether the handle is the zero value, i.e. refers to nothing.
//
// Returns:
//   - bool: true if the handle is the zero value
func (h Handle) Nil() bool {
	return h.generation == 0
}

// HandlePool allocates Handles for one resource kind. Freed slot indices are
// recycled, and every reuse bumps the slot's generation so stale handles held
// by the application stop resolving instead of aliasing the new occupant.
//
// Not thread-safe; callers serialize access (the GraphicsSystem allocates
// handles only from the application's update phase).
type HandlePool struct {
	generations []uint32
	freeList    []uint32
}

// NewHandlePool creates an empty HandlePool.
//
// Returns:
//   - *HandlePool: the newly created pool
func NewHandlePool() *HandlePool {
	return &HandlePool{}
}

// Allocate returns a fresh live handle, reusing a freed slot index if one is
// available. Reused slots carry a bumped generation.
//
// Returns:
//   - Handle: a live handle unique among all currently-live handles
func (p *HandlePool) Allocate() Handle {
	if n := len(p.freeList); n > 0 {
		index := p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
		p.generations[index]++
		return Handle{index: index, generation: p.generations[index]}
	}

	index := uint32(len(p.generations))
	p.generations = append(p.generations, 1)
	return Handle{index: index, generation: 1}
}

// Free returns the handle's slot to the pool for reuse. Freeing a stale or
// never-allocated handle is a no-op that reports false.
//
// Parameters:
//   - h: the handle to free
//
// Returns:
//   - bool: true if the handle was live and is now freed
func (p *HandlePool) Free(h Handle) bool {
	if !p.Alive(h) {
		return false
	}
	p.freeList = append(p.freeList, h.index)
	return true
}

// Alive reports whether the handle refers to a currently-allocated slot.
//
// Parameters:
//   - h: the handle to check
//
// Returns:
//   - bool: true if the handle is live
func (p *HandlePool) Alive(h Handle) bool {
	if h.Nil() || h.index >= uint32(len(p.generations)) {
		return false
	}
	if p.generations[h.index] != h.generation {
		return false
	}
	for _, free := range p.freeList {
		if free == h.index {
			return false
		}
	}
	return true
}

// Typed handle aliases, one per GPU resource kind. They share the Handle
// representation but are distinct types so a TextureHandle cannot be passed
// where a ViewHandle is expected.
type (
	// VertexBufferHandle identifies a vertex buffer slot.
	VertexBufferHandle Handle

	// IndexBufferHandle identifies an index buffer slot.
	IndexBufferHandle Handle

	// PipelineHandle identifies a pipeline state slot.
	PipelineHandle Handle

	// ViewHandle identifies a view (render target + draw queue) slot.
	ViewHandle Handle

	// TextureHandle identifies a texture slot.
	TextureHandle Handle

	// RenderBufferHandle identifies a render buffer slot.
	RenderBufferHandle Handle

	// FrameBufferHandle identifies a framebuffer slot.
	FrameBufferHandle Handle
)
