package audio

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/youpy/go-wav"

	"github.com/mrdg/xmusica/binding"
)

// Sound is a decoded mono clip.
type Sound struct {
	buf  []float64
	rate float64
	file string
}

func (s *Sound) File() string { return s.file }

// Len returns the number of frames in the sound.
func (s *Sound) Len() int { return len(s.buf) }

func LoadSound(file string) (*Sound, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := wav.NewReader(f)
	format, err := r.Format()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}
	snd := Sound{file: file, rate: float64(format.SampleRate)}
	for {
		samples, err := r.ReadSamples()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		for _, sample := range samples {
			snd.buf = append(snd.buf, r.FloatValue(sample, 0))
		}
	}
	return &snd, nil
}

// Clips maps clip refs to decoded sounds. A Clips value is never modified
// once it is shared; use With to derive an updated copy.
type Clips struct {
	sounds map[binding.ClipRef]*Sound
}

func (c *Clips) Get(ref binding.ClipRef) *Sound {
	if c == nil {
		return nil
	}
	return c.sounds[ref]
}

// With returns a copy of c where ref maps to snd.
func (c *Clips) With(ref binding.ClipRef, snd *Sound) *Clips {
	sounds := make(map[binding.ClipRef]*Sound)
	if c != nil {
		for k, v := range c.sounds {
			sounds[k] = v
		}
	}
	sounds[ref] = snd
	return &Clips{sounds: sounds}
}

func (c *Clips) Len() int {
	if c == nil {
		return 0
	}
	return len(c.sounds)
}

// SampleChannel is a Channel that mixes a clip from the shared clip store
// into the instrument's buffer. Pitch changes the playback rate.
type SampleChannel struct {
	clips      *atomic.Value
	sampleRate float64

	snd     *Sound
	pos     float64
	pitch   float64
	volume  float64
	playing bool
}

func NewSampleChannel(clips *atomic.Value, sampleRate float64) *SampleChannel {
	return &SampleChannel{clips: clips, sampleRate: sampleRate, pitch: 1}
}

func (c *SampleChannel) SetClip(ref binding.ClipRef) {
	c.snd = c.clips.Load().(*Clips).Get(ref)
	c.pos = 0
}

func (c *SampleChannel) SetPitch(ratio float64) { c.pitch = ratio }
func (c *SampleChannel) SetVolume(gain float64) { c.volume = gain }
func (c *SampleChannel) Playing() bool { return c.playing }
func (c *SampleChannel) Volume() float64 { return c.volume }

func (c *SampleChannel) Play() {
	c.pos = 0
	c.playing = c.snd != nil
}

func (c *SampleChannel) Stop() {
	c.playing = false
	c.pos = 0
}

// Process adds the next len(buf) frames of the clip to buf.
func (c *SampleChannel) Process(buf []float64) {
	if !c.playing {
		return
	}
	step := c.pitch * c.snd.rate / c.sampleRate
	for n := range buf {
		i := int(c.pos)
		if i >= len(c.snd.buf) {
			c.playing = false
			return
		}
		buf[n] += c.snd.buf[i] * c.volume
		c.pos += step
	}
}
