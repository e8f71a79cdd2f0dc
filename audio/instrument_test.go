package audio

import (
	"testing"

	"github.com/mrdg/xmusica/binding"
)

// newTestSampler returns an instrument with a one second clip of ones bound
// to the note bucket of B3 and an envelope without attack.
func newTestSampler(t *testing.T, voices int) *Instrument {
	t.Helper()
	inst := NewSampler(NewProps(), voices)

	g := inst.Grid().Clone()
	if err := g.SetClip(6, 0, 0, "ones"); err != nil {
		t.Fatal(err)
	}
	if err := inst.SetGrid(g); err != nil {
		t.Fatal(err)
	}

	ones := make([]float64, SampleRate)
	for n := range ones {
		ones[n] = 1
	}
	clips := inst.Clips().With("ones", &Sound{buf: ones, rate: SampleRate})
	if err := inst.Set(PropClips, clips); err != nil {
		t.Fatal(err)
	}
	if err := inst.Set(PropEnvelope, NewADSR(0, 0, 1, 0.01)); err != nil {
		t.Fatal(err)
	}
	return inst
}

func TestInstrumentPressRelease(t *testing.T) {
	inst := newTestSampler(t, 2)
	sink := NewHeadlessSink()
	sink.AddSources(inst)

	inst.Press(59, 127)
	out := sink.Render(64)
	for c := range out {
		for n, sample := range out[c] {
			if sample != 1 {
				t.Fatalf("channel %d, frame %d: want 1, got %v", c, n, sample)
			}
		}
	}
	if want, got := 59, inst.Voices()[1].Note; want != got {
		t.Errorf("wrong voice note: want %v, got %v", want, got)
	}

	inst.Release(59, 0)
	out = sink.Render(1024)
	if want, got := float32(0), out[0][1023]; want != got {
		t.Errorf("expected silence after release, got %v", got)
	}
	for _, v := range inst.Voices() {
		if v.Note != 0 {
			t.Errorf("expected all voices to be free: %+v", v)
		}
	}
}

func TestInstrumentPlayNote(t *testing.T) {
	inst := newTestSampler(t, 2)
	sink := NewHeadlessSink()
	sink.AddSources(inst)

	inst.PlayNote(32, 59, 127, 32)
	out := sink.Render(128)[0]

	if want, got := float32(0), out[31]; want != got {
		t.Errorf("frame 31: want %v, got %v", want, got)
	}
	if want, got := float32(1), out[32]; want != got {
		t.Errorf("frame 32: want %v, got %v", want, got)
	}
	if want, got := float32(1), out[63]; want != got {
		t.Errorf("frame 63: want %v, got %v", want, got)
	}
	if got := out[64]; got >= 1 || got <= 0 {
		t.Errorf("frame 64: expected note to be releasing, got %v", got)
	}
}

func TestInstrumentPlayNoteNextBuffer(t *testing.T) {
	inst := newTestSampler(t, 2)
	sink := NewHeadlessSink()
	sink.AddSources(inst)

	inst.PlayNote(BufferSize+16, 59, 127, 16)
	out := sink.Render(BufferSize)[0]
	if want, got := float32(0), out[BufferSize-1]; want != got {
		t.Errorf("note played too early: %v", got)
	}
	out = sink.Render(BufferSize)[0]
	if want, got := float32(0), out[15]; want != got {
		t.Errorf("frame 15: want %v, got %v", want, got)
	}
	if want, got := float32(1), out[16]; want != got {
		t.Errorf("frame 16: want %v, got %v", want, got)
	}
}

func TestInstrumentVolume(t *testing.T) {
	inst := newTestSampler(t, 1)
	if err := inst.Set(PropVolume, 0.5); err != nil {
		t.Fatal(err)
	}
	sink := NewHeadlessSink()
	sink.AddSources(inst)

	inst.Press(59, 127)
	out := sink.Render(16)[0]
	if want, got := float32(0.5), out[0]; want != got {
		t.Errorf("want %v, got %v", want, got)
	}
}

func TestInstrumentPanic(t *testing.T) {
	inst := newTestSampler(t, 2)
	sink := NewHeadlessSink()
	sink.AddSources(inst)

	inst.Press(59, 127)
	inst.Press(60, 127)
	sink.Render(16)
	inst.Panic()
	out := sink.Render(16)[0]
	if want, got := float32(0), out[0]; want != got {
		t.Errorf("want silence after panic, got %v", got)
	}
}

func TestInstrumentSetGrid(t *testing.T) {
	inst := NewSampler(NewProps(), 1)
	if err := inst.SetGrid(nil); err == nil {
		t.Errorf("expected error for nil grid")
	}
	g := binding.NewGrid(binding.DefaultDescriptor())
	if err := inst.SetGrid(g); err != nil {
		t.Fatal(err)
	}
	if inst.Grid() != g {
		t.Errorf("grid was not replaced")
	}
}

func TestInstrumentHeadlessOverflow(t *testing.T) {
	inst := newTestSampler(t, 2)
	inst.SetHeadless()
	sink := NewHeadlessSink()
	sink.AddSources(inst)

	// more events than the buffer holds, with nothing rendering yet
	for n := 0; n < 300; n++ {
		inst.Press(59, 127)
		inst.Release(59, 0)
	}
	var sounding int
	for _, v := range inst.Voices() {
		if v.Note == 59 {
			sounding++
		}
	}
	if sounding == 0 {
		t.Fatalf("expected overflowing events to be applied: %+v", inst.Voices())
	}

	inst.Press(59, 127)
	sink.Render(64)
	var held int
	for _, v := range inst.Voices() {
		if v.Note == 59 && v.Pressed {
			held++
		}
	}
	if want, got := 1, held; want != got {
		t.Errorf("want %v held voice, got %v", want, got)
	}

	inst.Release(59, 0)
	sink.Render(1024)
	for _, v := range inst.Voices() {
		if v.Note != 0 {
			t.Errorf("expected all voices to be free: %+v", v)
		}
	}
}
