package store

import "errors"

var (
	// ErrInvalidPath is returned when a path string or segment is malformed
	// or contains a reserved character.
	ErrInvalidPath = errors.New("canopy: invalid path")

	// ErrInvalidValue is returned when a written value contains a Go type
	// that has no tree representation.
	ErrInvalidValue = errors.New("canopy: value type not storable")

	// ErrEmptyUpdate is returned when UpdateChildren is called with an
	// empty mapping.
	ErrEmptyUpdate = errors.New("canopy: update mapping is empty")
)
