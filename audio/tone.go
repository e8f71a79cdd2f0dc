package audio

import (
	"fmt"
	"math"

	"github.com/mrdg/xmusica/binding"
)

const twoPi = 2 * math.Pi

// Waveforms lists the shapes accepted by Tone.
var Waveforms = []string{"sine", "saw", "square"}

// Tone renders a clip of the given waveform at the pitch of a midi note.
// Tones are used to bind a grid without recorded samples.
func Tone(note int, wave string, seconds float64) (*Sound, error) {
	if seconds <= 0 {
		return nil, fmt.Errorf("tone length must be positive: %v", seconds)
	}
	o := osc{phaseDelta: midiToFreq(note) * twoPi / SampleRate}
	if err := o.setWaveform(wave); err != nil {
		return nil, err
	}

	buf := make([]float64, int(seconds*SampleRate))
	o.process(buf)

	// short fade out so the end of the clip doesn't click
	fade := min(len(buf), SampleRate/100)
	for n := 0; n < fade; n++ {
		buf[len(buf)-fade+n] *= 1 - float64(n+1)/float64(fade)
	}
	for n := range buf {
		buf[n] *= 0.5
	}
	return &Sound{
		buf:  buf,
		rate: SampleRate,
		file: fmt.Sprintf("%s@%s", wave, binding.NoteName(note)),
	}, nil
}

const toneSeconds = 2

// BindTones generates a tone for the recorded note of every note bucket and
// binds it to all of the bucket's slots.
func (i *Instrument) BindTones(wave string) error {
	g := i.Grid().Clone()
	if g.Empty() {
		return binding.ErrEmptyGrid
	}
	clips := i.Clips()
	d := g.Descriptor()
	notes, velocities, roundRobins := g.Dims()
	for n := 0; n < notes; n++ {
		snd, err := Tone(d.NoteAt(n), wave, toneSeconds)
		if err != nil {
			return err
		}
		ref := binding.ClipRef(snd.File())
		clips = clips.With(ref, snd)
		for j := 0; j < velocities; j++ {
			for k := 0; k < roundRobins; k++ {
				if err := g.SetClip(n, j, k, ref); err != nil {
					return err
				}
			}
		}
	}
	if err := i.Set(PropClips, clips); err != nil {
		return err
	}
	return i.SetGrid(g)
}

type osc struct {
	phase      float64
	phaseDelta float64
	fn         func(float64) float64
}

func (o *osc) process(buf []float64) {
	for n := range buf {
		buf[n] += o.fn(o.phase)
		o.phase += o.phaseDelta
		if o.phase >= twoPi {
			o.phase -= twoPi
		}
	}
}

func (o *osc) setWaveform(s string) error {
	switch s {
	case "sine":
		o.fn = math.Sin
	case "saw":
		o.fn = func(phase float64) float64 {
			return (2.0 * phase / twoPi) - 1.
		}
	case "square":
		o.fn = func(phase float64) float64 {
			if phase <= math.Pi {
				return 1.0
			}
			return -1.0
		}
	default:
		return fmt.Errorf("not a valid waveform type: %v", s)
	}
	return nil
}

func midiToFreq(note int) float64 {
	return math.Pow(2, float64(note-69)/12.0) * 440
}
