package graphics

// tableSlot is one entry of a Table. A slot remembers the generation of the
// handle that last occupied it so stale handles fail the lookup.
type tableSlot[T any] struct {
	value      T
	generation uint32
	occupied   bool
}

// Table is sparse, handle-indexed storage for one resource kind. Each occupied
// slot holds exactly one value together with the generation of the handle that
// owns it; lookups with a mismatched generation miss.
//
// The table does not manage backend cleanup — callers release backend objects
// before or during Remove. Not thread-safe by itself; the Device serializes
// access through frame-phase separation.
type Table[T any] struct {
	slots []tableSlot[T]
}

// Set stores a value at the handle's slot, growing the backing storage on
// demand and overwriting any existing occupant.
//
// Parameters:
//   - h: the handle identifying the slot
//   - value: the value to store
func (t *Table[T]) Set(h Handle, value T) {
	for uint32(len(t.slots)) <= h.index {
		t.slots = append(t.slots, tableSlot[T]{})
	}
	t.slots[h.index] = tableSlot[T]{value: value, generation: h.generation, occupied: true}
}

// Get returns a pointer to the slot's value if the slot is occupied by the
// same generation as the handle. The pointer is valid until the next Set that
// grows the table.
//
// Parameters:
//   - h: the handle to look up
//
// Returns:
//   - *T: pointer to the stored value, or nil
//   - bool: true if the slot is occupied and the generation matches
func (t *Table[T]) Get(h Handle) (*T, bool) {
	if h.Nil() || h.index >= uint32(len(t.slots)) {
		return nil, false
	}
	slot := &t.slots[h.index]
	if !slot.occupied || slot.generation != h.generation {
		return nil, false
	}
	return &slot.value, true
}

// Remove evacuates the slot and returns its value, leaving the slot free for
// reuse by a later handle generation.
//
// Parameters:
//   - h: the handle to remove
//
// Returns:
//   - T: the evacuated value (zero value on miss)
//   - bool: true if the slot was occupied and the generation matched
func (t *Table[T]) Remove(h Handle) (T, bool) {
	var zero T
	if h.Nil() || h.index >= uint32(len(t.slots)) {
		return zero, false
	}
	slot := &t.slots[h.index]
	if !slot.occupied || slot.generation != h.generation {
		return zero, false
	}
	value := slot.value
	*slot = tableSlot[T]{}
	return value, true
}

// Len returns the number of occupied slots.
//
// Returns:
//   - int: occupied slot count
func (t *Table[T]) Len() int {
	n := 0
	for i := range t.slots {
		if t.slots[i].occupied {
			n++
		}
	}
	return n
}

// Each calls fn for every occupied slot in table-iteration (index) order.
// Iteration stops early if fn returns false.
//
// Parameters:
//   - fn: callback receiving the live handle and a pointer to the slot value
func (t *Table[T]) Each(fn func(h Handle, value *T) bool) {
	for i := range t.slots {
		slot := &t.slots[i]
		if !slot.occupied {
			continue
		}
		if !fn(Handle{index: uint32(i), generation: slot.generation}, &slot.value) {
			return
		}
	}
}
