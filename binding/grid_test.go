package binding

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
)

func descriptor(velocities, roundRobins int) Descriptor {
	d := DefaultDescriptor()
	d.VelocityBuckets = velocities
	d.RoundRobins = roundRobins
	d.NormalizeVolumes()
	return d
}

// fill assigns a clip named after its coordinates to every slot.
func fill(t *testing.T, g *Grid) {
	t.Helper()
	ni, nj, nk := g.Dims()
	for i := 0; i < ni; i++ {
		for j := 0; j < nj; j++ {
			for k := 0; k < nk; k++ {
				if err := g.SetClip(i, j, k, ClipRef(fmt.Sprintf("%d/%d/%d", i, j, k))); err != nil {
					t.Fatal(err)
				}
			}
		}
	}
}

func mustSlot(t *testing.T, g *Grid, i, j, k int) Slot {
	t.Helper()
	s, err := g.Slot(i, j, k)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestRegenerateStampsMetadata(t *testing.T) {
	d := descriptor(2, 1)
	d.VolumeMultipliers = []float64{1.5, 0.5}
	g := NewGrid(d)

	if want, got := 18*2, g.Len(); want != got {
		t.Fatalf("wrong grid size: want %v, got %v", want, got)
	}
	s := mustSlot(t, g, 6, 0, 0)
	if want := (Slot{Note: 59, Velocity: 64, Volume: 1.5}); want != s {
		t.Errorf("wrong slot:\nwant: %+v\ngot:  %+v", want, s)
	}
	s = mustSlot(t, g, 17, 1, 0)
	if want := (Slot{Note: 125, Velocity: 127, Volume: 0.5}); want != s {
		t.Errorf("wrong slot:\nwant: %+v\ngot:  %+v", want, s)
	}
}

func TestRegenerateIdempotent(t *testing.T) {
	d := descriptor(3, 2)
	g := NewGrid(d)
	fill(t, g)
	before := g.Clone()

	g.Regenerate(d)
	g.Regenerate(d)

	for n := range g.slots {
		if want, got := before.slots[n], g.slots[n]; want != got {
			t.Errorf("slot %d changed:\nwant: %+v\ngot:  %+v", n, want, got)
		}
	}
}

func TestRegenerateShrinkVelocities(t *testing.T) {
	g := NewGrid(descriptor(4, 1))
	fill(t, g)

	g.Regenerate(descriptor(2, 1))

	for _, test := range []struct {
		j    int
		clip ClipRef
		vel  int
	}{
		{0, "0/2/0", 64},
		{1, "0/3/0", 127},
	} {
		s := mustSlot(t, g, 0, test.j, 0)
		if want, got := test.clip, s.Clip; want != got {
			t.Errorf("bucket %d: want clip %q, got %q", test.j, want, got)
		}
		if want, got := test.vel, s.Velocity; want != got {
			t.Errorf("bucket %d: want velocity %v, got %v", test.j, want, got)
		}
	}
}

func TestRegenerateGrow(t *testing.T) {
	g := NewGrid(descriptor(1, 1))
	fill(t, g)

	d := descriptor(2, 2)
	d.NoteEndCutoff = 140 // clipped to 127, same note buckets
	g.Regenerate(d)

	if want, got := ClipRef("5/0/0"), mustSlot(t, g, 5, 1, 0).Clip; want != got {
		t.Errorf("want %q, got %q", want, got)
	}
	for _, c := range [][3]int{{5, 0, 0}, {5, 1, 1}, {5, 0, 1}} {
		if got := mustSlot(t, g, c[0], c[1], c[2]).Clip; got != "" {
			t.Errorf("slot %v: want no clip, got %q", c, got)
		}
	}

	d.NoteStart = 21
	d.NoteSpacing = 12
	g.Regenerate(d)
	s := mustSlot(t, g, 3, 1, 0)
	if want, got := ClipRef("3/0/0"), s.Clip; want != got {
		t.Errorf("want %q, got %q", want, got)
	}
	if want, got := 57, s.Note; want != got {
		t.Errorf("want note %v, got %v", want, got)
	}
}

func TestEmptyGrid(t *testing.T) {
	d := DefaultDescriptor()
	d.NoteStart, d.NoteEndCutoff = 60, 50
	g := NewGrid(d)
	if !g.Empty() {
		t.Fatalf("expected empty grid")
	}
	if _, err := g.Slot(0, 0, 0); !errors.Is(err, ErrEmptyGrid) {
		t.Errorf("want ErrEmptyGrid, got %v", err)
	}
	if want, got := -1, g.ReferenceNote(60); want != got {
		t.Errorf("want %v, got %v", want, got)
	}

	d.NoteSpacing = 0
	if g := NewGrid(d); !g.Empty() {
		t.Errorf("expected empty grid for zero spacing")
	}

	d = DefaultDescriptor()
	d.NoteStart, d.NoteEndCutoff = 130, 130
	if want, got := 0, d.TotalSamples(); want != got {
		t.Errorf("start above 127: want %v samples, got %v", want, got)
	}
	g = NewGrid(DefaultDescriptor())
	g.Regenerate(d)
	if !g.Empty() {
		t.Errorf("expected empty grid for start above 127")
	}
}

func TestSlotOutOfRange(t *testing.T) {
	g := NewGrid(descriptor(2, 2))
	for _, c := range [][3]int{{18, 0, 0}, {0, 2, 0}, {0, 0, 2}, {-1, 0, 0}} {
		if _, err := g.Slot(c[0], c[1], c[2]); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("Slot%v: want ErrIndexOutOfRange, got %v", c, err)
		}
		if err := g.SetClip(c[0], c[1], c[2], "x"); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("SetClip%v: want ErrIndexOutOfRange, got %v", c, err)
		}
	}
}

func TestNoteTable(t *testing.T) {
	g := NewGrid(DefaultDescriptor())
	tests := []struct{ note, bucket int }{
		{21, 0},
		{23, 0},
		{25, 0},
		{26, 1}, // halfway rounds up
		{59, 6},
		{60, 6},
		{62, 7},
		{125, 17},
		{127, 17},
	}
	for _, test := range tests {
		if want, got := test.bucket, g.noteTable[test.note-MinNote]; want != got {
			t.Errorf("note %d: want bucket %v, got %v", test.note, want, got)
		}
	}

	d := DefaultDescriptor()
	d.NoteStart, d.NoteEndCutoff, d.NoteSpacing = 60, 72, 5
	g = NewGrid(d)
	for note := MinNote; note <= MaxNote; note++ {
		if b := g.noteTable[note-MinNote]; b < 0 || b > 2 {
			t.Errorf("note %d: bucket %d out of range", note, b)
		}
	}
	if want, got := 2, g.noteTable[127-MinNote]; want != got {
		t.Errorf("want %v, got %v", want, got)
	}
}

func TestVelocityTable(t *testing.T) {
	g := NewGrid(descriptor(1, 1))
	for v := 0; v <= MaxVelocity; v++ {
		if got := g.velocityTable[v]; got != 0 {
			t.Fatalf("velocity %d: want bucket 0, got %v", v, got)
		}
	}

	g = NewGrid(descriptor(4, 1))
	tests := []struct{ velocity, bucket int }{
		{0, 0}, {32, 0}, {33, 1}, {64, 1}, {65, 2}, {96, 2}, {97, 3}, {127, 3},
	}
	for _, test := range tests {
		if want, got := test.bucket, g.velocityTable[test.velocity]; want != got {
			t.Errorf("velocity %d: want bucket %v, got %v", test.velocity, want, got)
		}
	}
}

func TestSampleNoteIndex(t *testing.T) {
	g := NewGrid(DefaultDescriptor())
	tests := []struct{ note, want int }{
		{23, 0}, {29, 1}, {59, 6}, {60, -1}, {22, -1}, {125, 17}, {131, -1},
	}
	for _, test := range tests {
		if want, got := test.want, g.SampleNoteIndex(test.note); want != got {
			t.Errorf("SampleNoteIndex(%d): want %v, got %v", test.note, want, got)
		}
	}
}

func TestClips(t *testing.T) {
	g := NewGrid(descriptor(1, 1))
	g.SetClip(0, 0, 0, "a.wav")
	g.SetClip(1, 0, 0, "b.wav")
	g.SetClip(2, 0, 0, "a.wav")
	clips := g.Clips()
	if len(clips) != 2 || clips[0] != "a.wav" || clips[1] != "b.wav" {
		t.Errorf("wrong clips: %v", clips)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	g := NewGrid(descriptor(1, 1))
	c := g.Clone()
	c.SetClip(0, 0, 0, "a.wav")
	if got := mustSlot(t, g, 0, 0, 0).Clip; got != "" {
		t.Errorf("clone shares slots with original: %q", got)
	}
}
