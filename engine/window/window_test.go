package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPollEventsDrainsInArrivalOrder(t *testing.T) {
	w := &engineWindow{}

	w.push(Event{Kind: EventKeyDown, Key: 65})
	w.push(Event{Kind: EventMouseMove, X: 10, Y: 20})
	w.push(Event{Kind: EventKeyUp, Key: 65})

	events := w.PollEvents()
	require.Len(t, events, 3)
	assert.Equal(t, EventKeyDown, events[0].Kind)
	assert.Equal(t, uint32(65), events[0].Key)
	assert.Equal(t, EventMouseMove, events[1].Kind)
	assert.Equal(t, 10.0, events[1].X)
	assert.Equal(t, EventKeyUp, events[2].Kind)
}

func TestPollEventsReturnsNilWhenEmpty(t *testing.T) {
	w := &engineWindow{}

	assert.Nil(t, w.PollEvents())

	w.push(Event{Kind: EventResized, Width: 800, Height: 600})
	require.Len(t, w.PollEvents(), 1)

	// A drain consumes the queue; nothing is delivered twice.
	assert.Nil(t, w.PollEvents())
}

func TestPollEventsConcurrentPush(t *testing.T) {
	w := &engineWindow{}

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			w.push(Event{Kind: EventMouseMove, X: float64(i)})
		}
		close(done)
	}()

	total := 0
	for {
		total += len(w.PollEvents())
		select {
		case <-done:
			total += len(w.PollEvents())
			assert.Equal(t, 100, total)
			return
		default:
		}
	}
}

func TestUninitializedWindowState(t *testing.T) {
	w := &engineWindow{}

	assert.False(t, w.IsRunning())
	assert.False(t, w.Focused())
	assert.Nil(t, w.SurfaceDescriptor())
	assert.Error(t, w.Close())
}
