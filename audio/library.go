package audio

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mrdg/xmusica/binding"
)

// LoadBinding replaces the instrument's grid with the one stored at path and
// loads every clip it references. Relative clip paths are resolved against
// the directory of the binding file; clips named like "saw@C4" are
// regenerated as tones.
func (i *Instrument) LoadBinding(path string) error {
	g, err := binding.LoadFile(path)
	if err != nil {
		return err
	}
	clips := i.Clips()
	for _, ref := range g.Clips() {
		snd, err := loadClip(ref, filepath.Dir(path))
		if err != nil {
			return err
		}
		clips = clips.With(ref, snd)
	}
	if err := i.Set(PropClips, clips); err != nil {
		return err
	}
	return i.SetGrid(g)
}

// Bind loads the WAV file at path and assigns it to a single slot.
func (i *Instrument) Bind(note, velocity, roundRobin int, path string) error {
	g := i.Grid().Clone()
	ref := binding.ClipRef(path)
	if err := g.SetClip(note, velocity, roundRobin, ref); err != nil {
		return err
	}
	snd, err := loadClip(ref, "")
	if err != nil {
		return err
	}
	if err := i.Set(PropClips, i.Clips().With(ref, snd)); err != nil {
		return err
	}
	return i.SetGrid(g)
}

// Generate regenerates the grid from d. Clips of slots that survive the
// change stay bound.
func (i *Instrument) Generate(d binding.Descriptor) error {
	if err := d.Validate(); err != nil {
		return err
	}
	g := i.Grid().Clone()
	g.Regenerate(d)
	return i.SetGrid(g)
}

func loadClip(ref binding.ClipRef, dir string) (*Sound, error) {
	if wave, name, ok := strings.Cut(string(ref), "@"); ok {
		note, err := binding.ParseNote(name)
		if err != nil {
			return nil, fmt.Errorf("clip %s: %w", ref, err)
		}
		return Tone(note, wave, toneSeconds)
	}
	path := string(ref)
	if dir != "" && !filepath.IsAbs(path) {
		path = filepath.Clean(filepath.Join(dir, path))
	}
	return LoadSound(path)
}
