package graphics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskBufferSliceRoundTrip(t *testing.T) {
	buf := NewTaskBuffer(256)

	values := []UniformBinding{
		{Value: UniformF32(1.5)},
		{Value: UniformI32(-7)},
	}
	ptr := WriteSlice(buf, values)
	require.False(t, ptr.Nil())

	got := ReadSlice(buf, ptr)
	require.Len(t, got, 2)
	assert.Equal(t, values[0].Value, got[0].Value)
	assert.Equal(t, values[1].Value, got[1].Value)
}

func TestTaskBufferStringRoundTrip(t *testing.T) {
	buf := NewTaskBuffer(256)

	ptr := WriteString(buf, "u_ModelViewProjection")
	assert.Equal(t, "u_ModelViewProjection", ReadString(buf, ptr))
}

func TestTaskBufferEmptyWrites(t *testing.T) {
	buf := NewTaskBuffer(256)

	slicePtr := WriteSlice[UniformBinding](buf, nil)
	assert.True(t, slicePtr.Nil())
	assert.Nil(t, ReadSlice(buf, slicePtr))

	stringPtr := WriteString(buf, "")
	assert.True(t, stringPtr.Nil())
	assert.Equal(t, "", ReadString(buf, stringPtr))

	assert.Zero(t, buf.Len())
}

func TestTaskBufferInterleavedWrites(t *testing.T) {
	buf := NewTaskBuffer(256)

	name := WriteString(buf, "u_Color")
	bindings := WriteSlice(buf, []UniformBinding{{Name: name, Value: UniformVec4([4]float32{1, 0, 0, 1})}})
	other := WriteString(buf, "u_Model")

	got := ReadSlice(buf, bindings)
	require.Len(t, got, 1)
	assert.Equal(t, "u_Color", ReadString(buf, got[0].Name))
	assert.Equal(t, "u_Model", ReadString(buf, other))
}

func TestTaskBufferReset(t *testing.T) {
	buf := NewTaskBuffer(64)

	WriteString(buf, "payload")
	require.NotZero(t, buf.Len())

	buf.Reset()
	assert.Zero(t, buf.Len())

	// The arena is reusable after a reset.
	ptr := WriteString(buf, "fresh")
	assert.Equal(t, "fresh", ReadString(buf, ptr))
}

func TestTaskBufferGrowsPastCapacity(t *testing.T) {
	buf := NewTaskBuffer(4)

	long := "a string well past the initial capacity of the arena"
	ptr := WriteString(buf, long)
	assert.Equal(t, long, ReadString(buf, ptr))
}
