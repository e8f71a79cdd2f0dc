package dub

import (
	"fmt"
	"math"
)

type matchItem struct {
	level   int
	matcher matcher
}

type matcher interface {
	match(i int) bool
}

type rangeMatch struct {
	start, end int
}

func (r rangeMatch) match(i int) bool {
	return (i >= r.start || r.start == -1) && (i <= r.end || r.end == -1)
}

var matchAll = rangeMatch{-1, -1}

type listMatch []int

func (l listMatch) match(i int) bool {
	for _, k := range l {
		if k == i {
			return true
		}
	}
	return false
}

// TimeSig is a time signature such as 7/8.
type TimeSig struct {
	Num, Denom int
}

func (t TimeSig) String() string { return fmt.Sprintf("%d/%d", t.Num, t.Denom) }

// Steps returns the number of steps in a bar when it is divided into
// stepSize steps per whole note.
func (t TimeSig) Steps(stepSize int) int {
	return (stepSize / t.Denom) * t.Num
}

// Steps evaluates the expression over one bar of sig divided into stepSize
// steps per whole note. The top level of the expression matches the beats
// of the bar, every '/' halves the note value.
func (m MatchExpr) Steps(sig TimeSig, stepSize int) ([]bool, error) {
	if sig.Num <= 0 || sig.Denom <= 0 || stepSize%sig.Denom != 0 {
		return nil, fmt.Errorf("can't divide %v into steps of 1/%d", sig, stepSize)
	}
	seq := make([]bool, sig.Steps(stepSize))

	for i := len(m.matchers) - 1; i >= 0; i-- {
		item := m.matchers[i]
		if item.matcher == nil {
			return nil, fmt.Errorf("incomplete match expression")
		}
		level := int(float64(sig.Denom) * math.Pow(2.0, float64(item.level)))
		if level > stepSize {
			return nil, fmt.Errorf("can't match on %d notes with step size %d", level, stepSize)
		}
		skip := stepSize / level
		notesPerBeat := level / sig.Denom

		for note, steps := 0, 0; note < len(seq); note += skip {
			// calculate a note number relative to other notes on the same division, e.g.
			// the 16th notes within a beat are numbered 0 to 3
			noteNum := steps % notesPerBeat
			if notesPerBeat == 1 {
				noteNum = steps
			}
			steps++

			// add 1 because match expects note numbers to start at 1
			if item.matcher.match(noteNum + 1) {
				if i == len(m.matchers)-1 {
					seq[note] = true
				}
			} else {
				// clear steps that are unmatched by the current level
				for n := note; n < note+skip && n < len(seq); n++ {
					seq[n] = false
				}
			}
		}
	}
	return seq, nil
}
