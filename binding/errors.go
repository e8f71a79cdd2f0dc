// Package binding maps MIDI notes and velocities to recorded samples.
//
// Errors from this package wrap the sentinels below with
// github.com/pkg/errors so callers can match them with errors.Is or
// errors.Cause. The rest of the module wraps with fmt.Errorf.
package binding

import "github.com/pkg/errors"

var (
	// ErrInvalidArgument is returned when a note or velocity is outside of the
	// MIDI domain accepted by the resolver.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrEmptyGrid is returned when a grid is accessed before a successful
	// Regenerate or Load.
	ErrEmptyGrid = errors.New("empty grid")

	// ErrIndexOutOfRange is returned by direct slot access with coordinates
	// outside of the grid dimensions.
	ErrIndexOutOfRange = errors.New("index out of range")
)
