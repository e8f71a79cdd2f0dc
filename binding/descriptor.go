package binding

import "github.com/pkg/errors"

const (
	MinNote     = 21
	MaxNote     = 127
	MaxVelocity = 127
)

// Descriptor describes how a sample grid is laid out: which notes carry a
// recording, how the velocity range is split up and how many alternate takes
// exist for every note and velocity.
type Descriptor struct {
	NoteStart         int       `json:"note_start"`
	NoteEndCutoff     int       `json:"note_end_cutoff"`
	NoteSpacing       int       `json:"note_spacing"`
	VelocityBuckets   int       `json:"velocity_buckets"`
	RoundRobins       int       `json:"round_robins"`
	VolumeMultipliers []float64 `json:"volume_multipliers"`
}

// DefaultDescriptor returns a descriptor with one recording every six notes
// starting at B0.
func DefaultDescriptor() Descriptor {
	return Descriptor{
		NoteStart:         23,
		NoteEndCutoff:     127,
		NoteSpacing:       6,
		VelocityBuckets:   1,
		RoundRobins:       1,
		VolumeMultipliers: []float64{1},
	}
}

// NoteBuckets returns the number of recorded notes.
func (d Descriptor) NoteBuckets() int {
	end := min(MaxNote, d.NoteEndCutoff)
	if end < d.NoteStart || d.NoteSpacing < 1 {
		return 0
	}
	return (end-d.NoteStart)/d.NoteSpacing + 1
}

// NoteAt returns the note recorded in the given note bucket.
func (d Descriptor) NoteAt(i int) int {
	return d.NoteStart + i*d.NoteSpacing
}

// VelocityCeilingAt returns the highest velocity represented by the given
// velocity bucket. The last bucket always ends at 127.
func (d Descriptor) VelocityCeilingAt(i int) int {
	return MaxVelocity - (d.VelocityBuckets-i-1)*MaxVelocity/d.VelocityBuckets
}

// TotalSamples returns the number of slots in a grid generated from d.
func (d Descriptor) TotalSamples() int {
	if d.VelocityBuckets < 1 || d.RoundRobins < 1 {
		return 0
	}
	return d.NoteBuckets() * d.VelocityBuckets * d.RoundRobins
}

// MaxVolumeAt returns the largest volume multiplier bucket i can use without
// clipping at full velocity.
func (d Descriptor) MaxVolumeAt(i int) float64 {
	v := d.VelocityCeilingAt(i)
	if v == 0 {
		return 1
	}
	return MaxVelocity / float64(v)
}

func (d Descriptor) volumeAt(j int) float64 {
	if j < 0 || j >= len(d.VolumeMultipliers) {
		return 1
	}
	return d.VolumeMultipliers[j]
}

// NormalizeVolumes resizes VolumeMultipliers to match VelocityBuckets. Values
// are kept starting from the highest bucket, new buckets default to 1 and
// every value is clamped to MaxVolumeAt.
func (d *Descriptor) NormalizeVolumes() {
	if d.VelocityBuckets < 1 {
		d.VolumeMultipliers = nil
		return
	}
	prev := d.VolumeMultipliers
	vols := make([]float64, d.VelocityBuckets)
	for i := range vols {
		vols[i] = 1
	}
	n := min(len(prev), len(vols))
	for i := 0; i < n; i++ {
		vols[len(vols)-i-1] = prev[len(prev)-i-1]
	}
	for i := range vols {
		if limit := d.MaxVolumeAt(i); vols[i] > limit {
			vols[i] = limit
		}
	}
	d.VolumeMultipliers = vols
}

// Validate reports descriptors that cannot produce a usable grid.
func (d Descriptor) Validate() error {
	switch {
	case d.NoteSpacing < 1:
		return errors.Wrapf(ErrInvalidArgument, "note spacing must be at least 1, got %d", d.NoteSpacing)
	case d.VelocityBuckets < 1:
		return errors.Wrapf(ErrInvalidArgument, "velocity buckets must be at least 1, got %d", d.VelocityBuckets)
	case d.RoundRobins < 1:
		return errors.Wrapf(ErrInvalidArgument, "round robins must be at least 1, got %d", d.RoundRobins)
	case d.NoteStart < 0 || d.NoteStart > MaxNote:
		return errors.Wrapf(ErrInvalidArgument, "note start out of range: %d", d.NoteStart)
	case d.NoteEndCutoff < 0:
		return errors.Wrapf(ErrInvalidArgument, "note end out of range: %d", d.NoteEndCutoff)
	}
	return nil
}

// IsValidNote reports whether note can be resolved.
func IsValidNote(note int) bool {
	return note >= MinNote && note <= MaxNote
}

// IsValidVelocity reports whether velocity can be resolved.
func IsValidVelocity(velocity int) bool {
	return velocity >= 0 && velocity <= MaxVelocity
}
