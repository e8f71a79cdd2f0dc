package audio

import (
	"fmt"
	"math"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// LoadMIDIFile reads the notes of all tracks in a standard MIDI file into a
// phrase played on p. The phrase is rounded up to whole beats.
func LoadMIDIFile(path string, p Playable) (*Phrase, error) {
	s, err := smf.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read midi file: %w", err)
	}
	return phraseFromSMF(s, p)
}

func phraseFromSMF(s *smf.SMF, p Playable) (*Phrase, error) {
	ticks, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok || ticks == 0 {
		return nil, fmt.Errorf("unsupported midi time format: %v", s.TimeFormat)
	}
	resolution := float64(ticks)

	type start struct {
		pos      float64
		velocity int
	}
	var notes []note
	var end float64
	for _, track := range s.Tracks {
		var abs uint64
		open := make(map[[2]uint8]start)
		for _, ev := range track {
			abs += uint64(ev.Delta)
			pos := float64(abs) / resolution
			end = math.Max(end, pos)

			var ch, key, vel uint8
			msg := midi.Message(ev.Message)
			switch {
			case msg.GetNoteStart(&ch, &key, &vel):
				open[[2]uint8{ch, key}] = start{pos: pos, velocity: int(vel)}
			case msg.GetNoteEnd(&ch, &key):
				st, ok := open[[2]uint8{ch, key}]
				if !ok {
					continue
				}
				delete(open, [2]uint8{ch, key})
				notes = append(notes, note{
					pos:      int(st.pos * PPQN),
					pitch:    int(key),
					velocity: st.velocity,
					length:   pos - st.pos,
				})
			}
		}
	}
	if len(notes) == 0 {
		return nil, fmt.Errorf("midi file has no notes")
	}

	phrase := NewPhrase(math.Max(1, math.Ceil(end)), p)
	for _, n := range notes {
		phrase.AddNote(float64(n.pos)/PPQN, n.pitch, n.velocity, n.length)
	}
	return phrase, nil
}
