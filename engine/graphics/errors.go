package graphics

import (
	"errors"
	"fmt"
)

// Sentinel errors for the Device's handle and update validation. Backend
// failures are surfaced wrapped, never swallowed; match them with errors.Is
// against these sentinels where the Device produced them itself.
var (
	// ErrInvalidHandle means an operation referenced a handle not present in
	// its table (never created, already deleted, or stale generation).
	ErrInvalidHandle = errors.New("graphics: invalid handle")

	// ErrDuplicatedHandle means a create operation targeted an occupied slot.
	ErrDuplicatedHandle = errors.New("graphics: duplicated handle")

	// ErrOutOfBounds means an update's offset plus data length exceeds the
	// resource's allocated size.
	ErrOutOfBounds = errors.New("graphics: update out of bounds")

	// ErrImmutableResource means an update targeted a buffer created with the
	// immutable hint.
	ErrImmutableResource = errors.New("graphics: update of immutable resource")
)

// BindingError reports a uniform or attribute name that the backend could not
// resolve to a location. A missing binding location indicates a shader or
// material contract violation, so flush fails fast on it.
type BindingError struct {
	// Kind is "uniform", "texture" or "attribute".
	Kind string

	// Name is the offending binding name.
	Name string
}

// Error implements the error interface.
//
// Returns:
//   - string: a description carrying the binding kind and name
func (e *BindingError) Error() string {
	return fmt.Sprintf("graphics: failed to locate %s %q", e.Kind, e.Name)
}
