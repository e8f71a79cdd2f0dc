package binding

import (
	"math"

	"github.com/pkg/errors"
)

// Playback is a resolved sample together with the volume and pitch ratio it
// should be played at.
type Playback struct {
	Slot   Slot
	Volume float64
	Pitch  float64
}

// Resolver maps requested notes and velocities to grid slots. It owns the
// round robin cursor, which is shared by all notes.
type Resolver struct {
	grid *Grid
	next int
}

func NewResolver(g *Grid) *Resolver {
	return &Resolver{grid: g}
}

// SetGrid replaces the grid used for lookups. The round robin cursor wraps
// to the new round robin count on its next use.
func (r *Resolver) SetGrid(g *Grid) {
	r.grid = g
}

func (r *Resolver) Grid() *Grid { return r.grid }

// NextRoundRobin returns the round robin index to use for the next lookup
// and advances the cursor.
func (r *Resolver) NextRoundRobin() int {
	if r.grid == nil || r.grid.dims[2] == 0 {
		return 0
	}
	k := r.next % r.grid.dims[2]
	r.next = (k + 1) % r.grid.dims[2]
	return k
}

// Resolve returns the sample for note and velocity. Notes must be within
// 21-127 and velocities within 0-127; other values are rejected rather than
// clamped.
func (r *Resolver) Resolve(note, velocity int) (Playback, error) {
	if !IsValidNote(note) {
		return Playback{}, errors.Wrapf(ErrInvalidArgument, "note %d", note)
	}
	if !IsValidVelocity(velocity) {
		return Playback{}, errors.Wrapf(ErrInvalidArgument, "velocity %d", velocity)
	}
	return r.resolve(float64(note), float64(velocity), note, velocity)
}

// ResolveHiDef is like Resolve but accepts fractional notes and velocities,
// as produced by pitch bends or continuous controllers. Lookup uses the
// floor of both values while volume and pitch use the exact ones.
func (r *Resolver) ResolveHiDef(note, velocity float64) (Playback, error) {
	if math.IsNaN(note) || note < MinNote || note > MaxNote {
		return Playback{}, errors.Wrapf(ErrInvalidArgument, "note %g", note)
	}
	if math.IsNaN(velocity) || velocity < 0 || velocity > MaxVelocity {
		return Playback{}, errors.Wrapf(ErrInvalidArgument, "velocity %g", velocity)
	}
	return r.resolve(note, velocity, int(math.Floor(note)), int(math.Floor(velocity)))
}

func (r *Resolver) resolve(note, velocity float64, noteKey, velocityKey int) (Playback, error) {
	g := r.grid
	if g == nil || g.Empty() {
		return Playback{}, ErrEmptyGrid
	}
	i := g.noteTable[noteKey-MinNote]
	j := g.velocityTable[velocityKey]
	k := r.NextRoundRobin()
	s := g.slots[index(g.dims, i, j, k)]
	return Playback{
		Slot:   s,
		Volume: velocity / MaxVelocity * s.Volume,
		Pitch:  math.Pow(2, (note-float64(s.Note))/12),
	}, nil
}
