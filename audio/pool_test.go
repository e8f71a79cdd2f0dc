package audio

import (
	"math"
	"reflect"
	"testing"

	"github.com/mrdg/xmusica/binding"
)

type fakeChannel struct {
	ops     []string
	clip    binding.ClipRef
	pitch   float64
	volume  float64
	playing bool
}

func (c *fakeChannel) SetClip(clip binding.ClipRef) {
	c.clip = clip
	c.ops = append(c.ops, "clip "+string(clip))
}

func (c *fakeChannel) SetPitch(ratio float64) { c.pitch = ratio }
func (c *fakeChannel) SetVolume(gain float64) { c.volume = gain }

func (c *fakeChannel) Play() {
	c.playing = true
	c.ops = append(c.ops, "play")
}

func (c *fakeChannel) Stop() {
	c.playing = false
	c.ops = append(c.ops, "stop")
}

// testGrid returns a default grid where every note bucket is bound to a clip
// named after the bucket's recorded note.
func testGrid(t *testing.T) *binding.Grid {
	t.Helper()
	g := binding.NewGrid(binding.DefaultDescriptor())
	d := g.Descriptor()
	for i := 0; i < d.NoteBuckets(); i++ {
		if err := g.SetClip(i, 0, 0, binding.ClipRef(binding.NoteName(d.NoteAt(i)))); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func newTestPool(t *testing.T, n int, env Envelope) (*Pool, []*fakeChannel) {
	t.Helper()
	fakes := make([]*fakeChannel, n)
	channels := make([]Channel, n)
	for i := range fakes {
		fakes[i] = &fakeChannel{}
		channels[i] = fakes[i]
	}
	return NewPool(channels, binding.NewResolver(testGrid(t)), env), fakes
}

func notes(p *Pool) []int {
	var notes []int
	for _, v := range p.Voices() {
		notes = append(notes, v.Note)
	}
	return notes
}

func TestPoolPressRelease(t *testing.T) {
	pool, channels := newTestPool(t, 4, NewADSR(0.1, 0.2, 0.5, 0.3))

	pool.Press(60, 127)
	ch := channels[1]
	if want, got := []int{0, 60, 0, 0}, notes(pool); !reflect.DeepEqual(want, got) {
		t.Fatalf("wrong voices: want %v, got %v", want, got)
	}
	if want, got := binding.ClipRef("B3"), ch.clip; want != got {
		t.Errorf("wrong clip: want %v, got %v", want, got)
	}
	if want, got := math.Pow(2, 1./12), ch.pitch; math.Abs(want-got) > epsilon {
		t.Errorf("wrong pitch: want %v, got %v", want, got)
	}
	if !ch.playing || ch.volume != 0 {
		t.Errorf("expected channel to start playing silently, got playing=%v volume=%v", ch.playing, ch.volume)
	}

	pool.Tick(0.05)
	if want, got := 0.5, ch.volume; math.Abs(want-got) > epsilon {
		t.Errorf("wrong attack volume: want %v, got %v", want, got)
	}

	before := ch.volume
	pool.Release(60, 0)
	pool.Tick(0)
	if math.Abs(before-ch.volume) > epsilon {
		t.Errorf("volume jumped on release: %v -> %v", before, ch.volume)
	}
	pool.Tick(0.15)
	if want, got := 0.25, ch.volume; math.Abs(want-got) > epsilon {
		t.Errorf("wrong release volume: want %v, got %v", want, got)
	}

	pool.Tick(0.2)
	if ch.playing {
		t.Errorf("expected channel to stop after release")
	}
	if want, got := 0, pool.Active(); want != got {
		t.Errorf("wrong number of active voices: want %v, got %v", want, got)
	}
}

func TestPoolReleaseAtMasterVolume(t *testing.T) {
	pool, channels := newTestPool(t, 1, NewADSR(0.1, 0.2, 0.5, 0.3))
	pool.SetMasterVolume(0.5)

	pool.Press(60, 127)
	pool.Tick(0.25)
	before := channels[0].volume
	pool.Release(60, 0)
	pool.Tick(0)
	if math.Abs(before-channels[0].volume) > epsilon {
		t.Errorf("volume jumped on release: %v -> %v", before, channels[0].volume)
	}
}

func TestPoolSteal(t *testing.T) {
	pool, channels := newTestPool(t, 2, DefaultEnvelope())

	pool.Press(60, 100)
	pool.Press(62, 100)
	pool.Press(64, 100)

	if want, got := []int{62, 64}, notes(pool); !reflect.DeepEqual(want, got) {
		t.Fatalf("wrong voices: want %v, got %v", want, got)
	}
	want := []string{"clip B3", "play", "stop", "clip F4", "play"}
	if got := channels[1].ops; !reflect.DeepEqual(want, got) {
		t.Errorf("wrong channel commands:\nwant: %v\ngot:  %v", want, got)
	}

	// the stolen note is gone
	pool.Release(60, 0)
	for _, v := range pool.Voices() {
		if !v.Pressed {
			t.Errorf("expected all voices to be held: %+v", v)
		}
	}
}

func TestPoolPrefersFreeChannel(t *testing.T) {
	pool, _ := newTestPool(t, 3, NewADSR(0, 0, 1, 0.1))

	pool.Press(60, 100)
	pool.Press(62, 100)
	pool.Press(64, 100)
	pool.Release(62, 0)
	pool.Tick(0.2)

	pool.Press(65, 100)
	if want, got := []int{64, 60, 65}, notes(pool); !reflect.DeepEqual(want, got) {
		t.Errorf("wrong voices: want %v, got %v", want, got)
	}
}

func TestPoolRetrigger(t *testing.T) {
	pool, channels := newTestPool(t, 1, DefaultEnvelope())

	pool.Press(60, 100)
	pool.Press(60, 100)

	want := []string{"clip B3", "play", "clip B3", "play"}
	if got := channels[0].ops; !reflect.DeepEqual(want, got) {
		t.Errorf("wrong channel commands:\nwant: %v\ngot:  %v", want, got)
	}
}

func TestPoolReleaseAllMatching(t *testing.T) {
	pool, _ := newTestPool(t, 3, DefaultEnvelope())

	pool.Press(60, 100)
	pool.Press(60, 100)
	pool.Press(67, 100)
	pool.Release(60, 0)

	var held []int
	for _, v := range pool.Voices() {
		if v.Pressed {
			held = append(held, v.Note)
		}
	}
	if want := []int{67}; !reflect.DeepEqual(want, held) {
		t.Errorf("wrong held notes: want %v, got %v", want, held)
	}
	if want, got := 3, pool.Active(); want != got {
		t.Errorf("wrong number of active voices: want %v, got %v", want, got)
	}
}

func TestPoolReleaseTwice(t *testing.T) {
	pool, channels := newTestPool(t, 1, NewADSR(0.1, 0.2, 0.5, 1))

	pool.Press(60, 127)
	pool.Tick(0.5)
	pool.Release(60, 0)
	pool.Tick(0.3)
	pool.Release(60, 0)

	v := pool.Voices()[0]
	if v.Pressed {
		t.Fatalf("expected voice to be releasing")
	}
	if want, got := 0.5, v.Gain; math.Abs(want-got) > epsilon {
		t.Errorf("wrong gain: want %v, got %v", want, got)
	}
	if want, got := 0.3, v.Elapsed; math.Abs(want-got) > epsilon {
		t.Errorf("wrong elapsed time: want %v, got %v", want, got)
	}

	pool.Tick(0.1)
	if want, got := 0.3, channels[0].volume; math.Abs(want-got) > epsilon {
		t.Errorf("wrong release volume: want %v, got %v", want, got)
	}
}

func TestPoolPanic(t *testing.T) {
	pool, channels := newTestPool(t, 4, DefaultEnvelope())

	pool.Press(60, 100)
	pool.Press(62, 100)
	pool.Press(64, 100)
	pool.Panic()

	if want, got := 0, pool.Active(); want != got {
		t.Errorf("wrong number of active voices: want %v, got %v", want, got)
	}
	for n, ch := range channels {
		if ch.playing {
			t.Errorf("channel %d still playing", n)
		}
	}
	if len(channels[0].ops) != 0 {
		t.Errorf("unused channel received commands: %v", channels[0].ops)
	}
}

func TestPoolDropsUnresolvable(t *testing.T) {
	pool, channels := newTestPool(t, 2, DefaultEnvelope())
	pool.SetGrid(binding.NewGrid(binding.Descriptor{}))

	pool.Press(60, 100)
	pool.Press(10, 100)
	pool.Release(10, 0)

	if want, got := 0, pool.Active(); want != got {
		t.Errorf("wrong number of active voices: want %v, got %v", want, got)
	}
	for n, ch := range channels {
		if len(ch.ops) != 0 {
			t.Errorf("channel %d received commands: %v", n, ch.ops)
		}
	}
}

func TestPoolWithoutChannels(t *testing.T) {
	pool := NewPool(nil, binding.NewResolver(testGrid(t)), DefaultEnvelope())
	pool.Press(60, 100)
	pool.Tick(1)
	if want, got := 0, pool.Active(); want != got {
		t.Errorf("wrong number of active voices: want %v, got %v", want, got)
	}
}
