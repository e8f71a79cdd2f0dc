package audio

import (
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/mrdg/xmusica/binding"
)

// Props stores device configuration that can be updated without locks. All properties
// should be registered before any reads take place.
type Props struct {
	properties map[string]*atomic.Value
	setters    map[string]setter
}

func NewProps() *Props {
	return &Props{
		properties: make(map[string]*atomic.Value),
		setters:    make(map[string]setter),
	}
}

// Set updates the property with value. The key has to be registered first using Register.
func (p *Props) Set(key string, value interface{}) error {
	prop, ok := p.properties[key]
	if !ok {
		return fmt.Errorf("unknown property %s", key)
	}
	set, ok := p.setters[key]
	if !ok {
		return fmt.Errorf("unknown property %s", key)
	}
	if err := set(value, prop); err != nil {
		return fmt.Errorf("set property %s: %w", key, err)
	}
	return nil
}

func (p *Props) Get(key string) (interface{}, error) {
	prop, ok := p.properties[key]
	if !ok {
		return nil, fmt.Errorf("unknown property %s", key)
	}
	return prop.Load(), nil
}

// Keys returns the names of all registered properties in sorted order.
func (p *Props) Keys() []string {
	keys := make([]string, 0, len(p.properties))
	for k := range p.properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Register adds a new property.
func (p *Props) Register(key string, set setter, init interface{}) (*atomic.Value, error) {
	var prop atomic.Value
	p.properties[key] = &prop
	p.setters[key] = set
	return &prop, set(init, &prop)
}

func (p *Props) MustRegister(key string, set setter, init interface{}) *atomic.Value {
	if prop, err := p.Register(key, set, init); err != nil {
		panic(err)
	} else {
		return prop
	}
}

type setter func(val interface{}, dest *atomic.Value) error

var setVolume = setFloat64(0, 2)

const maxEnvTime = 15 // seconds

func setFloat64(min, max float64) setter {
	return func(v interface{}, dest *atomic.Value) error {
		var f float64
		switch n := v.(type) {
		case float64:
			f = n
		case int:
			f = float64(n)
		default:
			return fmt.Errorf("value is not a float64: %v", v)
		}
		if f < min || f > max {
			return fmt.Errorf("property value is not in valid range %v - %v: %v", min, max, f)
		}
		dest.Store(f)
		return nil
	}
}

func setEnvelope(v interface{}, dest *atomic.Value) error {
	env, ok := v.(Envelope)
	if !ok {
		return fmt.Errorf("value is not an envelope: %v", v)
	}
	if err := validateEnvelope(env); err != nil {
		return err
	}
	dest.Store(env)
	return nil
}

func validateEnvelope(env Envelope) error {
	var times []float64
	switch env.Kind {
	case KindADSR:
		a := env.ADSR
		if a.Sustain < 0 || a.Sustain > 1 {
			return fmt.Errorf("sustain is not in valid range 0 - 1: %v", a.Sustain)
		}
		times = []float64{a.Attack, a.Decay, a.Release}
	case KindCurve:
		c := env.Curve
		if len(c.Press) == 0 || len(c.Release) == 0 {
			return fmt.Errorf("curve envelope needs a press and a release curve")
		}
		times = []float64{c.PressDuration, c.ReleaseDuration}
	default:
		return fmt.Errorf("unknown envelope kind: %v", env.Kind)
	}
	for _, t := range times {
		if t < 0 || t > maxEnvTime {
			return fmt.Errorf("envelope time is not in valid range 0 - %v: %v", maxEnvTime, t)
		}
	}
	return nil
}

func setGrid(v interface{}, dest *atomic.Value) error {
	g, ok := v.(*binding.Grid)
	if !ok || g == nil {
		return fmt.Errorf("value is not a binding grid: %v", v)
	}
	dest.Store(g)
	return nil
}

func setClips(v interface{}, dest *atomic.Value) error {
	c, ok := v.(*Clips)
	if !ok || c == nil {
		return fmt.Errorf("value is not a clip store: %v", v)
	}
	dest.Store(c)
	return nil
}
