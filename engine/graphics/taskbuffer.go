package graphics

import (
	"unsafe"

	"github.com/hoangpq/crayon/common"
)

// TaskBuffer is the per-frame transient arena that serializes draw-call
// auxiliary data (uniform name/value pairs, texture bindings) so draw
// submission avoids per-call heap allocation. Data written to the buffer is
// referenced by TaskBufferPtr values and is valid only until the buffer is
// reset at the next frame swap.
type TaskBuffer struct {
	buf []byte
}

// TaskBufferPtr references a typed slice serialized into a TaskBuffer as an
// offset plus an element count. It is only meaningful against the buffer
// instance it was written to, and only for the lifetime of that frame.
type TaskBufferPtr[T any] struct {
	offset uint32
	count  uint32
}

// Nil reports whether the pointer references nothing (zero elements).
//
// Returns:
//   - bool: true if the pointer is empty
func (p TaskBufferPtr[T]) Nil() bool {
	return p.count == 0
}

// NewTaskBuffer creates a TaskBuffer with the given initial capacity in bytes.
//
// Parameters:
//   - capacity: initial byte capacity (grown on demand)
//
// Returns:
//   - *TaskBuffer: the newly created buffer
func NewTaskBuffer(capacity int) *TaskBuffer {
	return &TaskBuffer{buf: make([]byte, 0, capacity)}
}

// Reset clears the buffer for reuse by the next frame. All TaskBufferPtr
// values issued against the buffer become invalid by contract.
func (b *TaskBuffer) Reset() {
	b.buf = b.buf[:0]
}

// Len returns the number of bytes currently written.
//
// Returns:
//   - int: bytes written since the last Reset
func (b *TaskBuffer) Len() int {
	return len(b.buf)
}

// align pads the buffer so the next write starts at a multiple of n.
func (b *TaskBuffer) align(n uintptr) {
	for uintptr(len(b.buf))%n != 0 {
		b.buf = append(b.buf, 0)
	}
}

// WriteSlice serializes a slice of fixed-size values into the buffer and
// returns a typed pointer to it. T must not contain Go pointers — the buffer
// stores raw bytes only (handles and TaskBufferPtr values are fine).
//
// Parameters:
//   - b: the destination buffer
//   - values: the values to serialize
//
// Returns:
//   - TaskBufferPtr[T]: a pointer resolving back to the written slice
func WriteSlice[T any](b *TaskBuffer, values []T) TaskBufferPtr[T] {
	if len(values) == 0 {
		return TaskBufferPtr[T]{}
	}
	var zero T
	b.align(unsafe.Alignof(zero))
	offset := uint32(len(b.buf))
	b.buf = append(b.buf, common.SliceToBytes(values)...)
	return TaskBufferPtr[T]{offset: offset, count: uint32(len(values))}
}

// ReadSlice resolves a pointer back to a typed slice over the buffer's bytes.
// The returned slice shares memory with the buffer — do not retain it across
// the frame's flush.
//
// Parameters:
//   - b: the buffer the pointer was written to
//   - ptr: the pointer to resolve
//
// Returns:
//   - []T: the deserialized slice view (nil for an empty pointer)
func ReadSlice[T any](b *TaskBuffer, ptr TaskBufferPtr[T]) []T {
	if ptr.count == 0 {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&b.buf[ptr.offset])), ptr.count)
}

// WriteString serializes a string into the buffer.
//
// Parameters:
//   - b: the destination buffer
//   - s: the string to serialize
//
// Returns:
//   - TaskBufferPtr[byte]: a pointer resolving back to the string
func WriteString(b *TaskBuffer, s string) TaskBufferPtr[byte] {
	if len(s) == 0 {
		return TaskBufferPtr[byte]{}
	}
	offset := uint32(len(b.buf))
	b.buf = append(b.buf, s...)
	return TaskBufferPtr[byte]{offset: offset, count: uint32(len(s))}
}

// ReadString resolves a pointer back to a string. The result shares memory
// with the buffer and must not be retained across the frame's flush.
//
// Parameters:
//   - b: the buffer the pointer was written to
//   - ptr: the pointer to resolve
//
// Returns:
//   - string: the deserialized string
func ReadString(b *TaskBuffer, ptr TaskBufferPtr[byte]) string {
	if ptr.count == 0 {
		return ""
	}
	return unsafe.String(&b.buf[ptr.offset], int(ptr.count))
}
