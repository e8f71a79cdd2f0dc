package preset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mrdg/xmusica/audio"
)

// File is the JSON schema for instrument presets.
type File struct {
	Voices   *int          `json:"voices"`
	Volume   *float64      `json:"volume"`
	Envelope *EnvelopeFile `json:"envelope"`
	Binding  string        `json:"binding"`
	Tones    string        `json:"tones"`
}

// EnvelopeFile selects either an ADSR or a curve envelope.
type EnvelopeFile struct {
	ADSR  *audio.ADSR       `json:"adsr"`
	Curve *audio.CurveShape `json:"curve"`
}

// Settings is a preset resolved against the defaults.
type Settings struct {
	Voices      int
	Volume      float64
	Envelope    audio.Envelope
	BindingPath string
	Tones       string
}

func Default() *Settings {
	return &Settings{
		Voices:   audio.DefaultVoices,
		Volume:   1,
		Envelope: audio.DefaultEnvelope(),
	}
}

// LoadJSON loads a preset JSON file and applies it on top of the defaults.
func LoadJSON(path string) (*Settings, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse preset %s: %w", path, err)
	}

	s := Default()
	if err := ApplyFile(s, &f); err != nil {
		return nil, err
	}

	if s.BindingPath != "" && !filepath.IsAbs(s.BindingPath) {
		base := filepath.Dir(path)
		s.BindingPath = filepath.Clean(filepath.Join(base, s.BindingPath))
	}
	return s, nil
}

// ApplyFile applies a parsed preset file onto existing settings.
func ApplyFile(dst *Settings, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination settings")
	}
	if f == nil {
		return nil
	}

	if f.Voices != nil {
		if *f.Voices < 1 || *f.Voices > 128 {
			return fmt.Errorf("voices must be in 1..128")
		}
		dst.Voices = *f.Voices
	}
	if f.Volume != nil {
		if *f.Volume < 0 || *f.Volume > 2 {
			return fmt.Errorf("volume must be in 0..2")
		}
		dst.Volume = *f.Volume
	}
	if f.Binding != "" {
		dst.BindingPath = strings.TrimSpace(f.Binding)
	}
	if f.Tones != "" {
		dst.Tones = strings.TrimSpace(f.Tones)
	}

	if e := f.Envelope; e != nil {
		switch {
		case e.ADSR != nil && e.Curve != nil:
			return fmt.Errorf("envelope must be either adsr or curve")
		case e.ADSR != nil:
			a := e.ADSR
			dst.Envelope = audio.NewADSR(a.Attack, a.Decay, a.Sustain, a.Release)
		case e.Curve != nil:
			c := e.Curve
			dst.Envelope = audio.NewCurveEnvelope(
				audio.NewCurve(c.Press...), c.PressDuration,
				audio.NewCurve(c.Release...), c.ReleaseDuration,
			)
		}
	}
	return nil
}

// Apply configures inst with the settings. The number of voices is fixed
// when the instrument is created and is not changed here.
func (s *Settings) Apply(inst *audio.Instrument) error {
	if err := inst.Set(audio.PropVolume, s.Volume); err != nil {
		return err
	}
	if err := inst.Set(audio.PropEnvelope, s.Envelope); err != nil {
		return err
	}
	if s.BindingPath != "" {
		if err := inst.LoadBinding(s.BindingPath); err != nil {
			return fmt.Errorf("load binding: %w", err)
		}
	}
	if s.Tones != "" {
		if err := inst.BindTones(s.Tones); err != nil {
			return fmt.Errorf("bind tones: %w", err)
		}
	}
	return nil
}
