package session

import "fmt"

// ParseError reports that the text view is not well-formed YAML. The failed
// transition leaves the text view untouched and the prior view authoritative.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("text view is not valid YAML: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ShapeError reports that the text view parsed to something other than a
// single mapping (a list, a scalar, or an empty document).
type ShapeError struct {
	Got string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("text view must contain a single mapping, got %s", e.Got)
}

// ErrClosed is returned when operating on a session that has already been
// committed or abandoned.
var ErrClosed = fmt.Errorf("edit session is closed")

// ErrWrongView is returned when a view-specific operation is invoked while
// the other view is active.
var ErrWrongView = fmt.Errorf("operation not valid in the active view")
