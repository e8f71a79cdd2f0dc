package audio

import (
	"fmt"
	"sort"
)

type Device interface {
	Set(key string, val interface{}) error
	Get(key string) (interface{}, error)
}

type preset map[string]interface{}

var presets = map[string]preset{
	"piano": {
		PropEnvelope: NewADSR(0.01, 0.15, 0.3, 0.4),
	},
	"organ": {
		PropEnvelope: NewADSR(0.005, 0, 1, 0.05),
	},
	"pad": {
		PropEnvelope: NewADSR(0.8, 0.5, 0.7, 2.5),
		PropVolume:   0.8,
	},
	"pluck": {
		PropEnvelope: NewCurveEnvelope(
			NewCurve(Key{0, 0}, Key{0.02, 1}, Key{1, 0.1}), 1.5,
			Linear(0, 1, 1, 0), 0.2,
		),
	},
}

func LoadPreset(name string, d Device) error {
	p, ok := presets[name]
	if !ok {
		return fmt.Errorf("unknown preset: %v", name)
	}
	for k, v := range p {
		if err := d.Set(k, v); err != nil {
			return err
		}
	}
	return nil
}

// Presets returns the names of all built in presets.
func Presets() []string {
	var names []string
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
