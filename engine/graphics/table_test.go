package graphics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableSetGet(t *testing.T) {
	var table Table[string]

	h := Handle{index: 3, generation: 1}
	table.Set(h, "quad")

	value, ok := table.Get(h)
	require.True(t, ok)
	assert.Equal(t, "quad", *value)
	assert.Equal(t, 1, table.Len())
}

func TestTableStaleGenerationMisses(t *testing.T) {
	var table Table[int]

	first := Handle{index: 0, generation: 1}
	table.Set(first, 10)

	_, ok := table.Remove(first)
	require.True(t, ok)

	// The slot reoccupied under a bumped generation must be invisible to the
	// stale handle.
	second := Handle{index: 0, generation: 2}
	table.Set(second, 20)

	_, ok = table.Get(first)
	assert.False(t, ok)

	value, ok := table.Get(second)
	require.True(t, ok)
	assert.Equal(t, 20, *value)
}

func TestTableNilHandle(t *testing.T) {
	var table Table[int]

	_, ok := table.Get(Handle{})
	assert.False(t, ok)

	_, ok = table.Remove(Handle{})
	assert.False(t, ok)
}

func TestTableRemoveFreesSlot(t *testing.T) {
	var table Table[int]

	h := Handle{index: 1, generation: 1}
	table.Set(h, 7)

	value, ok := table.Remove(h)
	require.True(t, ok)
	assert.Equal(t, 7, value)
	assert.Zero(t, table.Len())

	_, ok = table.Remove(h)
	assert.False(t, ok)
}

func TestTableEachIndexOrder(t *testing.T) {
	var table Table[int]

	table.Set(Handle{index: 4, generation: 1}, 40)
	table.Set(Handle{index: 0, generation: 1}, 0)
	table.Set(Handle{index: 2, generation: 1}, 20)

	var visited []int
	table.Each(func(_ Handle, value *int) bool {
		visited = append(visited, *value)
		return true
	})
	assert.Equal(t, []int{0, 20, 40}, visited)
}

func TestTableEachStopsEarly(t *testing.T) {
	var table Table[int]

	table.Set(Handle{index: 0, generation: 1}, 1)
	table.Set(Handle{index: 1, generation: 1}, 2)

	count := 0
	table.Each(func(_ Handle, _ *int) bool {
		count++
		return false
	})
	assert.Equal(t, 1, count)
}

func TestHandlePoolReuseBumpsGeneration(t *testing.T) {
	pool := NewHandlePool()

	first := pool.Allocate()
	assert.False(t, first.Nil())
	assert.True(t, pool.Alive(first))

	require.True(t, pool.Free(first))
	assert.False(t, pool.Alive(first))

	second := pool.Allocate()
	assert.Equal(t, first.Index(), second.Index())
	assert.Greater(t, second.Generation(), first.Generation())
	assert.True(t, pool.Alive(second))
	assert.False(t, pool.Alive(first))
}

func TestHandlePoolDoubleFree(t *testing.T) {
	pool := NewHandlePool()

	h := pool.Allocate()
	require.True(t, pool.Free(h))
	assert.False(t, pool.Free(h))
	assert.False(t, pool.Free(Handle{}))
}

func TestHandlePoolDistinctLiveHandles(t *testing.T) {
	pool := NewHandlePool()

	seen := make(map[Handle]bool)
	for i := 0; i < 32; i++ {
		h := pool.Allocate()
		require.False(t, seen[h])
		seen[h] = true
	}
}
