package audio

import (
	"math"
	"testing"

	"github.com/mrdg/xmusica/binding"
)

func TestTone(t *testing.T) {
	for _, wave := range Waveforms {
		snd, err := Tone(69, wave, 0.1)
		if err != nil {
			t.Fatalf("%s: %v", wave, err)
		}
		if want, got := 4410, snd.Len(); want != got {
			t.Errorf("%s: wrong length: want %v, got %v", wave, want, got)
		}
		if want, got := wave+"@A4", snd.File(); want != got {
			t.Errorf("want %v, got %v", want, got)
		}
		var peak float64
		for _, s := range snd.buf {
			peak = math.Max(peak, math.Abs(s))
		}
		if peak == 0 || peak > 1 {
			t.Errorf("%s: unexpected peak %v", wave, peak)
		}
		if last := snd.buf[snd.Len()-1]; last != 0 {
			t.Errorf("%s: expected clip to fade out, got %v", wave, last)
		}
	}
}

func TestToneInvalid(t *testing.T) {
	if _, err := Tone(69, "triangle", 1); err == nil {
		t.Errorf("expected error for unknown waveform")
	}
	if _, err := Tone(69, "sine", 0); err == nil {
		t.Errorf("expected error for empty tone")
	}
}

func TestBindTones(t *testing.T) {
	inst := NewSampler(NewProps(), 4)
	if err := inst.BindTones("saw"); err != nil {
		t.Fatal(err)
	}
	if want, got := len(inst.Grid().Clips()), inst.Clips().Len(); want != got {
		t.Errorf("want %v clips, got %v", want, got)
	}
	s, err := inst.Grid().Slot(6, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if want, got := binding.ClipRef("saw@B3"), s.Clip; want != got {
		t.Errorf("want %v, got %v", want, got)
	}

	sink := NewHeadlessSink()
	sink.AddSources(inst)
	inst.Press(60, 100)
	out := sink.Render(BufferSize)[0]
	var peak float32
	for _, s := range out {
		if s < 0 {
			s = -s
		}
		peak = max(peak, s)
	}
	if peak == 0 {
		t.Errorf("expected sound after binding tones")
	}

	if err := inst.SetGrid(binding.NewGrid(binding.Descriptor{})); err != nil {
		t.Fatal(err)
	}
	if err := inst.BindTones("saw"); err == nil {
		t.Errorf("expected error for empty grid")
	}
}
