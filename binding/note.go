package binding

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const noteLetters = "CCDDEFFGGAAB"

// Octave returns the octave of a MIDI note, e.g. 0 for A0 (21).
func Octave(note int) int {
	return note/12 - 1
}

// NoteName formats note as a name like "C4" or "F#9". Notes outside of
// 21-127 are formatted as numbers.
func NoteName(note int) string {
	if !IsValidNote(note) {
		return strconv.Itoa(note)
	}
	m := note % 12
	var b strings.Builder
	b.WriteByte(noteLetters[m])
	switch m {
	case 1, 3, 6, 8, 10:
		b.WriteByte('#')
	}
	b.WriteString(strconv.Itoa(Octave(note)))
	return b.String()
}

// ParseNote parses a note name such as "A0", "c#4" or "Eb3".
func ParseNote(s string) (int, error) {
	if len(s) < 2 || len(s) > 3 {
		return 0, errors.Errorf("invalid note name: %q", s)
	}
	oct := int(s[len(s)-1] - '0')
	if oct < 0 || oct > 9 {
		return 0, errors.Errorf("invalid octave in note name: %q", s)
	}
	offset := 0
	if len(s) == 3 {
		switch s[1] {
		case '#':
			offset = 1
		case 'b':
			offset = -1
		default:
			return 0, errors.Errorf("invalid accidental in note name: %q", s)
		}
	}
	var n int
	switch s[0] {
	case 'c', 'C':
		n = 0
	case 'd', 'D':
		n = 2
	case 'e', 'E':
		n = 4
	case 'f', 'F':
		n = 5
	case 'g', 'G':
		n = 7
	case 'a', 'A':
		n = 9
	case 'b', 'B':
		n = 11
	default:
		return 0, errors.Errorf("invalid note letter in note name: %q", s)
	}
	return n + offset + (oct+1)*12, nil
}
