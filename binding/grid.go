package binding

import "github.com/pkg/errors"

// ClipRef identifies an audio clip managed outside of the grid. The empty
// ref means no clip has been assigned.
type ClipRef string

// Slot is a single recorded sample in a grid.
type Slot struct {
	Clip     ClipRef `json:"clip"`
	Note     int     `json:"note"`     // note the clip was recorded at
	Velocity int     `json:"velocity"` // upper bound of the velocity bucket
	Volume   float64 `json:"volume"`
}

const noteTableSize = MaxNote - MinNote + 1

// Grid maps note buckets, velocity buckets and round robins to slots. Slots
// are stored in a single buffer indexed by i*dimJ*dimK + j*dimK + k, which is
// also the layout used when a grid is saved.
//
// A Grid is not safe for concurrent use. Callers that share a grid with the
// audio thread mutate a Clone and swap it in.
type Grid struct {
	desc  Descriptor
	dims  [3]int
	slots []Slot

	noteTable     [noteTableSize]int
	velocityTable [MaxVelocity + 1]int
}

// NewGrid returns a grid generated from d.
func NewGrid(d Descriptor) *Grid {
	g := &Grid{}
	g.Regenerate(d)
	return g
}

// Regenerate rebuilds the grid for a new descriptor. Clips of slots that
// exist in both the old and the new layout are kept; velocity buckets are
// matched starting from the highest one. Slot metadata is always taken from
// the descriptor. A descriptor without any samples leaves the grid empty.
func (g *Grid) Regenerate(d Descriptor) {
	d.VolumeMultipliers = append([]float64(nil), d.VolumeMultipliers...)
	total := d.TotalSamples()
	if total == 0 {
		g.desc = d
		g.dims = [3]int{}
		g.slots = nil
		g.buildTables()
		return
	}

	dims := [3]int{d.NoteBuckets(), d.VelocityBuckets, d.RoundRobins}
	slots := make([]Slot, total)

	ni := min(g.dims[0], dims[0])
	nj := min(g.dims[1], dims[1])
	nk := min(g.dims[2], dims[2])
	for i := 0; i < ni; i++ {
		for t := 0; t < nj; t++ {
			oldJ, newJ := g.dims[1]-t-1, dims[1]-t-1
			for k := 0; k < nk; k++ {
				slots[index(dims, i, newJ, k)] = g.slots[index(g.dims, i, oldJ, k)]
			}
		}
	}

	for i := 0; i < dims[0]; i++ {
		note := d.NoteAt(i)
		for j := 0; j < dims[1]; j++ {
			velocity := d.VelocityCeilingAt(j)
			volume := d.volumeAt(j)
			for k := 0; k < dims[2]; k++ {
				s := &slots[index(dims, i, j, k)]
				s.Note = note
				s.Velocity = velocity
				s.Volume = volume
			}
		}
	}

	g.desc = d
	g.dims = dims
	g.slots = slots
	g.buildTables()
}

func index(dims [3]int, i, j, k int) int {
	return i*dims[1]*dims[2] + j*dims[2] + k
}

func (g *Grid) buildTables() {
	g.noteTable = [noteTableSize]int{}
	g.velocityTable = [MaxVelocity + 1]int{}
	if len(g.slots) == 0 {
		return
	}
	for note := MinNote; note <= MaxNote; note++ {
		g.noteTable[note-MinNote] = g.ReferenceNote(note)
	}

	// Ceilings are ascending, so one pass over the velocities is enough.
	bucket := 0
	for v := 0; v <= MaxVelocity; v++ {
		for bucket < g.dims[1]-1 && g.desc.VelocityCeilingAt(bucket) < v {
			bucket++
		}
		g.velocityTable[v] = bucket
	}
}

// ReferenceNote returns the note bucket closest to note. Notes halfway
// between two buckets use the higher one. Notes outside of the generated
// range map to the first or last bucket. It returns -1 for an empty grid.
func (g *Grid) ReferenceNote(note int) int {
	n := g.dims[0]
	if n == 0 {
		return -1
	}
	spacing := g.desc.NoteSpacing
	offset := note - g.desc.NoteStart
	if offset < 0 {
		return 0
	}
	i := offset / spacing
	if 2*(offset%spacing) >= spacing {
		i++
	}
	if i > n-1 {
		i = n - 1
	}
	return i
}

// SampleNoteIndex returns the note bucket recorded at exactly note, or -1 if
// no bucket holds that note.
func (g *Grid) SampleNoteIndex(note int) int {
	offset := note - g.desc.NoteStart
	if g.dims[0] == 0 || offset < 0 || offset%g.desc.NoteSpacing != 0 {
		return -1
	}
	if i := offset / g.desc.NoteSpacing; i < g.dims[0] {
		return i
	}
	return -1
}

// Slot returns the slot at the given coordinates.
func (g *Grid) Slot(i, j, k int) (Slot, error) {
	if err := g.check(i, j, k); err != nil {
		return Slot{}, err
	}
	return g.slots[index(g.dims, i, j, k)], nil
}

// SetClip assigns a clip to the slot at the given coordinates.
func (g *Grid) SetClip(i, j, k int, clip ClipRef) error {
	if err := g.check(i, j, k); err != nil {
		return err
	}
	g.slots[index(g.dims, i, j, k)].Clip = clip
	return nil
}

func (g *Grid) check(i, j, k int) error {
	if len(g.slots) == 0 {
		return ErrEmptyGrid
	}
	if i < 0 || i >= g.dims[0] || j < 0 || j >= g.dims[1] || k < 0 || k >= g.dims[2] {
		return errors.Wrapf(ErrIndexOutOfRange, "slot (%d, %d, %d) in grid of %dx%dx%d",
			i, j, k, g.dims[0], g.dims[1], g.dims[2])
	}
	return nil
}

// Dims returns the number of note buckets, velocity buckets and round robins.
func (g *Grid) Dims() (notes, velocities, roundRobins int) {
	return g.dims[0], g.dims[1], g.dims[2]
}

func (g *Grid) Descriptor() Descriptor {
	d := g.desc
	d.VolumeMultipliers = append([]float64(nil), d.VolumeMultipliers...)
	return d
}

func (g *Grid) Len() int    { return len(g.slots) }
func (g *Grid) Empty() bool { return len(g.slots) == 0 }

// Clips returns every distinct clip referenced by the grid in slot order.
func (g *Grid) Clips() []ClipRef {
	var clips []ClipRef
	seen := make(map[ClipRef]bool)
	for _, s := range g.slots {
		if s.Clip == "" || seen[s.Clip] {
			continue
		}
		seen[s.Clip] = true
		clips = append(clips, s.Clip)
	}
	return clips
}

// Clone returns a deep copy of g.
func (g *Grid) Clone() *Grid {
	c := *g
	c.desc.VolumeMultipliers = append([]float64(nil), g.desc.VolumeMultipliers...)
	c.slots = append([]Slot(nil), g.slots...)
	return &c
}
