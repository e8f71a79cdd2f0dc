package audio

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/mrdg/xmusica/binding"
)

// Pulses per quarter note
const PPQN = 960.

// Phrase is a looping sequence of notes played on an instrument.
type Phrase struct {
	Length     int
	instrument Playable
	notes      []note
}

func NewPhrase(length float64, p Playable) *Phrase {
	return &Phrase{
		Length:     int(length * PPQN),
		instrument: p,
	}
}

type Playable interface {
	PlayNote(offset, pitch, velocity, duration int)
}

// AddNote adds a note at position with the given length, both in beats.
// Notes that cannot be played are ignored.
func (c *Phrase) AddNote(position float64, pitch, velocity int, length float64) {
	if !binding.IsValidNote(pitch) || !binding.IsValidVelocity(velocity) {
		return
	}
	c.notes = append(c.notes, note{
		pos:      int(position * PPQN),
		pitch:    pitch,
		velocity: velocity,
		length:   length,
	})
}

func (c *Phrase) Len() int { return len(c.notes) }

// With returns a copy of the phrase that plays on p.
func (c *Phrase) With(p Playable) *Phrase {
	return &Phrase{
		Length:     c.Length,
		instrument: p,
		notes:      append([]note(nil), c.notes...),
	}
}

type note struct {
	pos      int // position of the note measured in PPQN from the start of a phrase
	pitch    int // pitch as a midi note number
	velocity int
	length   float64 // note length in beats
}

const (
	PropBPM     = "bpm"
	PropPhrases = "phrases"
)

type Sequencer struct {
	*Props
	bpm         *atomic.Value
	phrases     *atomic.Value
	sampleRate  float64
	totalPulses uint64
}

func NewSequencer(props *Props) *Sequencer {
	phrases := make(map[string]*Phrase)
	seq := &Sequencer{
		Props:      props,
		sampleRate: SampleRate,
		phrases:    props.MustRegister(PropPhrases, setPhrases, phrases),
		bpm:        props.MustRegister(PropBPM, setFloat64(1, 500), 120.0),
	}
	return seq
}

// Phrases returns the phrases currently playing. The map must not be modified.
func (s *Sequencer) Phrases() map[string]*Phrase {
	return s.phrases.Load().(map[string]*Phrase)
}

// SetPhrase starts playing p under name, replacing any phrase with the same
// name. A nil phrase stops it.
func (s *Sequencer) SetPhrase(name string, p *Phrase) error {
	old := s.Phrases()
	// copy the map so we don't modify it in place.
	phrases := make(map[string]*Phrase, len(old)+1)
	for k, v := range old {
		phrases[k] = v
	}
	if p == nil {
		delete(phrases, name)
	} else {
		phrases[name] = p
	}
	return s.Set(PropPhrases, phrases)
}

func (s *Sequencer) Tick(numSamples int) {
	bpm := s.bpm.Load().(float64)
	phrases := s.phrases.Load().(map[string]*Phrase)

	// The number of pulses to schedule for each buffer will be fractional,
	// because the PPQN is not a multiple of the buffer size. Truncating it
	// causes the next pulse to be a few samples early, but it's not noticeable.
	numPulses := int(math.Floor(PPQN * (bpm / 60.) / (s.sampleRate / float64(numSamples))))
	samplesPerPulse := s.sampleRate / ((bpm * PPQN) / 60.)

	for _, phrase := range phrases {
		if phrase.Length <= 0 {
			continue
		}
		pos := int(s.totalPulses % uint64(phrase.Length)) // current position within the phrase
		nextPos := pos + numPulses                        // next position within the phrase

		for _, note := range phrase.notes {
			duration := int(note.length * s.sampleRate / (bpm / 60.))

			if nextPos > phrase.Length {
				// We've reached the end of the phrase so also check start of phrase for notes to schedule.
				if note.pos >= pos || note.pos < nextPos-phrase.Length {
					offset := int(math.Round(float64(phrase.Length-pos+note.pos) * samplesPerPulse))
					if note.pos >= pos {
						offset = int(math.Round(float64(note.pos-pos) * samplesPerPulse))
					}
					phrase.instrument.PlayNote(offset, note.pitch, note.velocity, duration)
				}
			} else {
				if note.pos >= pos && note.pos < nextPos {
					offset := int(math.Round(float64(note.pos-pos) * samplesPerPulse))
					phrase.instrument.PlayNote(offset, note.pitch, note.velocity, duration)
				}
			}
		}
	}
	s.totalPulses += uint64(numPulses)
}

func setPhrases(v interface{}, dest *atomic.Value) error {
	if c, ok := v.(map[string]*Phrase); ok {
		dest.Store(c)
		return nil
	}
	return fmt.Errorf("value is not a map of phrases: %v", v)
}
