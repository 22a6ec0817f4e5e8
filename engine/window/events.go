package window

// EventKind identifies the kind of a window event.
type EventKind uint8

const (
	// EventClosed reports that the user requested the window to close.
	EventClosed EventKind = iota

	// EventResized reports a new framebuffer size in pixels.
	EventResized

	// EventFocusGained reports that the window received input focus.
	EventFocusGained

	// EventFocusLost reports that the window lost input focus.
	EventFocusLost

	// EventKeyDown reports a key press or repeat.
	EventKeyDown

	// EventKeyUp reports a key release.
	EventKeyUp

	// EventMouseDown reports a mouse button press.
	EventMouseDown

	// EventMouseUp reports a mouse button release.
	EventMouseUp

	// EventMouseMove reports a cursor position change.
	EventMouseMove

	// EventScroll reports a scroll wheel movement.
	EventScroll
)

// Event is one window or input event drained by PollEvents. Fields are
// populated per kind: Width/Height for resizes, Key for key events, Button
// and X/Y for mouse buttons, X/Y for cursor movement, DeltaX/DeltaY for
// scrolling.
type Event struct {
	Kind EventKind

	Width  int
	Height int

	Key    uint32
	Button uint8

	X float64
	Y float64

	DeltaX float64
	DeltaY float64
}
