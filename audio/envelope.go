package audio

import (
	"fmt"
	"sort"
)

type EnvelopeKind int

const (
	KindADSR EnvelopeKind = iota
	KindCurve
)

func (k EnvelopeKind) String() string {
	switch k {
	case KindADSR:
		return "adsr"
	case KindCurve:
		return "curve"
	default:
		return fmt.Sprintf("EnvelopeKind(%d)", int(k))
	}
}

// Envelope shapes the amplitude of a voice over time. Down gives the
// amplitude while a key is held, Up the amplitude after it was released.
// Both take the time in seconds since the phase started.
//
// Only the field selected by Kind is used.
type Envelope struct {
	Kind  EnvelopeKind
	ADSR  ADSR
	Curve CurveShape
}

// ADSR is a piecewise linear envelope. Attack, Decay and Release are in
// seconds, Sustain is a level between 0 and 1.
type ADSR struct {
	Attack  float64 `json:"attack"`
	Decay   float64 `json:"decay"`
	Sustain float64 `json:"sustain"`
	Release float64 `json:"release"`
}

// CurveShape plays user defined curves stretched over the press and release
// durations. The release curve is scaled by the last value of the press curve.
type CurveShape struct {
	Press           Curve   `json:"press"`
	PressDuration   float64 `json:"press_duration"`
	Release         Curve   `json:"release"`
	ReleaseDuration float64 `json:"release_duration"`
}

func NewADSR(attack, decay, sustain, release float64) Envelope {
	return Envelope{
		Kind: KindADSR,
		ADSR: ADSR{Attack: attack, Decay: decay, Sustain: sustain, Release: release},
	}
}

func NewCurveEnvelope(press Curve, pressDuration float64, release Curve, releaseDuration float64) Envelope {
	return Envelope{
		Kind: KindCurve,
		Curve: CurveShape{
			Press:           press,
			PressDuration:   pressDuration,
			Release:         release,
			ReleaseDuration: releaseDuration,
		},
	}
}

// DefaultEnvelope is a short piano like ADSR.
func DefaultEnvelope() Envelope {
	return NewADSR(0.01, 0.15, 0.3, 0.4)
}

// Down returns the amplitude t seconds after the key was pressed.
func (e Envelope) Down(t float64) float64 {
	switch e.Kind {
	case KindADSR:
		return e.ADSR.down(t)
	case KindCurve:
		return e.Curve.down(t)
	}
	return 0
}

// Up returns the amplitude t seconds after the key was released. It returns
// false once the envelope has finished.
func (e Envelope) Up(t float64) (float64, bool) {
	switch e.Kind {
	case KindADSR:
		return e.ADSR.up(t)
	case KindCurve:
		return e.Curve.up(t)
	}
	return 0, false
}

func (e Envelope) String() string {
	switch e.Kind {
	case KindADSR:
		a := e.ADSR
		return fmt.Sprintf("adsr attack=%gs decay=%gs sustain=%g release=%gs", a.Attack, a.Decay, a.Sustain, a.Release)
	case KindCurve:
		c := e.Curve
		return fmt.Sprintf("curve press=%v (%gs) release=%v (%gs)", c.Press, c.PressDuration, c.Release, c.ReleaseDuration)
	}
	return e.Kind.String()
}

func (a ADSR) down(t float64) float64 {
	if t < a.Attack {
		return t / a.Attack
	}
	t -= a.Attack
	if t < a.Decay {
		return 1 + t/a.Decay*(a.Sustain-1)
	}
	return a.Sustain
}

func (a ADSR) up(t float64) (float64, bool) {
	if t < a.Release {
		return 1 - t/a.Release, true
	}
	return 0, false
}

func (c CurveShape) down(t float64) float64 {
	if t < c.PressDuration {
		return c.Press.Eval(t / c.PressDuration)
	}
	return c.Press.Last()
}

func (c CurveShape) up(t float64) (float64, bool) {
	if t < c.ReleaseDuration {
		return c.Release.Eval(t/c.ReleaseDuration) * c.Press.Last(), true
	}
	return 0, false
}

// Key is a point on a Curve.
type Key struct {
	Time  float64 `json:"time"`
	Value float64 `json:"value"`
}

// Curve is a piecewise linear function through its keys, which are sorted by
// time. It is constant before the first and after the last key.
type Curve []Key

// NewCurve returns a curve through keys.
func NewCurve(keys ...Key) Curve {
	c := append(Curve(nil), keys...)
	sort.SliceStable(c, func(i, j int) bool { return c[i].Time < c[j].Time })
	return c
}

// Linear returns a straight line from (t0, v0) to (t1, v1).
func Linear(t0, v0, t1, v1 float64) Curve {
	return NewCurve(Key{t0, v0}, Key{t1, v1})
}

// Eval returns the value of the curve at x.
func (c Curve) Eval(x float64) float64 {
	if len(c) == 0 {
		return 0
	}
	if x <= c[0].Time {
		return c[0].Value
	}
	for n := 1; n < len(c); n++ {
		if x > c[n].Time {
			continue
		}
		k0, k1 := c[n-1], c[n]
		if k1.Time == k0.Time {
			return k1.Value
		}
		f := (x - k0.Time) / (k1.Time - k0.Time)
		return k0.Value + f*(k1.Value-k0.Value)
	}
	return c[len(c)-1].Value
}

// Last returns the value of the last key.
func (c Curve) Last() float64 {
	if len(c) == 0 {
		return 0
	}
	return c[len(c)-1].Value
}
