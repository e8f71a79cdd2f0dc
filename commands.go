package main

import (
	"fmt"

	"github.com/mrdg/xmusica/audio"
	"github.com/mrdg/xmusica/binding"
	"github.com/mrdg/xmusica/dub"
)

const defaultVelocity = 100

func pressCommand(env *env, args []dub.Node) (dub.Node, error) {
	var n note
	velocity := defaultVelocity
	if len(args) > 2 {
		return nil, fmt.Errorf("too many arguments")
	}
	if len(args) == 2 {
		if err := readArgs(args, &n, &velocity); err != nil {
			return nil, err
		}
	} else if err := readArgs(args, &n); err != nil {
		return nil, err
	}
	if !binding.IsValidNote(int(n)) {
		return nil, fmt.Errorf("note out of range %d - %d: %d", binding.MinNote, binding.MaxNote, n)
	}
	if !binding.IsValidVelocity(velocity) {
		return nil, fmt.Errorf("velocity out of range 0 - %d: %d", binding.MaxVelocity, velocity)
	}
	env.instrument.Press(int(n), velocity)
	return nil, nil
}

func releaseCommand(env *env, args []dub.Node) (dub.Node, error) {
	var n note
	if err := readArgs(args, &n); err != nil {
		return nil, err
	}
	env.instrument.Release(int(n), 0)
	return nil, nil
}

func panicCommand(env *env, args []dub.Node) (dub.Node, error) {
	env.instrument.Panic()
	return nil, nil
}

func generateCommand(env *env, args []dub.Node) (dub.Node, error) {
	var start, end note
	var spacing, velocities, roundRobins int
	if err := readArgs(args, &start, &end, &spacing, &velocities, &roundRobins); err != nil {
		return nil, err
	}
	d := env.instrument.Grid().Descriptor()
	d.NoteStart = int(start)
	d.NoteEndCutoff = int(end)
	d.NoteSpacing = spacing
	d.VelocityBuckets = velocities
	d.RoundRobins = roundRobins
	d.NormalizeVolumes()
	if err := env.instrument.Generate(d); err != nil {
		return nil, err
	}
	return gridSummary(env.instrument.Grid()), nil
}

func volumesCommand(env *env, args []dub.Node) (dub.Node, error) {
	var list []dub.Node
	if err := readArgs(args, &list); err != nil {
		return nil, err
	}
	vols := make([]float64, len(list))
	for n, item := range list {
		if err := readArgs([]dub.Node{item}, &vols[n]); err != nil {
			return nil, err
		}
	}
	d := env.instrument.Grid().Descriptor()
	d.VolumeMultipliers = vols
	d.NormalizeVolumes()
	if err := env.instrument.Generate(d); err != nil {
		return nil, err
	}
	return dub.String(fmt.Sprint(d.VolumeMultipliers)), nil
}

func bindCommand(env *env, args []dub.Node) (dub.Node, error) {
	var velocity, roundRobin int
	var file string
	if err := readArgs(args[1:], &velocity, &roundRobin, &file); err != nil {
		return nil, err
	}
	i, err := noteBucket(env.instrument.Grid(), args[0])
	if err != nil {
		return nil, err
	}
	return nil, env.instrument.Bind(i, velocity, roundRobin, file)
}

// noteBucket reads a note bucket index, or the name of the note recorded in
// a bucket.
func noteBucket(g *binding.Grid, arg dub.Node) (int, error) {
	if i, ok := arg.(dub.Int); ok {
		return int(i), nil
	}
	n, err := readNote(arg)
	if err != nil {
		return 0, err
	}
	if g.Empty() {
		return 0, binding.ErrEmptyGrid
	}
	i := g.SampleNoteIndex(n)
	if i < 0 {
		return 0, fmt.Errorf("%s is not a recorded note, closest is %s",
			binding.NoteName(n), binding.NoteName(g.Descriptor().NoteAt(g.ReferenceNote(n))))
	}
	return i, nil
}

func tonesCommand(env *env, args []dub.Node) (dub.Node, error) {
	var wave string
	if err := readArgs(args, &wave); err != nil {
		return nil, err
	}
	return nil, env.instrument.BindTones(wave)
}

func saveCommand(env *env, args []dub.Node) (dub.Node, error) {
	var file string
	if err := readArgs(args, &file); err != nil {
		return nil, err
	}
	return nil, env.instrument.Grid().SaveFile(file)
}

func loadCommand(env *env, args []dub.Node) (dub.Node, error) {
	var file string
	if err := readArgs(args, &file); err != nil {
		return nil, err
	}
	if err := env.instrument.LoadBinding(file); err != nil {
		return nil, err
	}
	return gridSummary(env.instrument.Grid()), nil
}

func setCommand(env *env, args []dub.Node) (dub.Node, error) {
	var device, prop string
	if err := readArgs(args[:2], &device, &prop); err != nil {
		return nil, err
	}
	switch v := args[2].(type) {
	case dub.Float:
		return nil, env.setProp(device, prop, float64(v))
	case dub.Int:
		return nil, env.setProp(device, prop, float64(v))
	case dub.String:
		return nil, env.setProp(device, prop, string(v))
	case dub.Identifier:
		return nil, env.setProp(device, prop, string(v))
	default:
		return nil, fmt.Errorf("unsupported property type: %v", v)
	}
}

func getCommand(env *env, args []dub.Node) (dub.Node, error) {
	var device, prop string
	if err := readArgs(args, &device, &prop); err != nil {
		return nil, err
	}
	v, err := env.getProp(device, prop)
	if err != nil {
		return nil, err
	}
	switch v := v.(type) {
	case float64:
		return dub.Float(v), nil
	case *binding.Grid:
		return gridSummary(v), nil
	case *audio.Clips:
		return dub.String(fmt.Sprintf("%d clips", v.Len())), nil
	case map[string]*audio.Phrase:
		return dub.String(fmt.Sprint(sortedKeys(v))), nil
	default:
		return dub.String(fmt.Sprint(v)), nil
	}
}

func envelopeCommand(env *env, args []dub.Node) (dub.Node, error) {
	var attack, decay, sustain, release float64
	if err := readArgs(args, &attack, &decay, &sustain, &release); err != nil {
		return nil, err
	}
	return nil, env.instrument.Set(audio.PropEnvelope, audio.NewADSR(attack, decay, sustain, release))
}

func presetCommand(env *env, args []dub.Node) (dub.Node, error) {
	var name string
	if err := readArgs(args, &name); err != nil {
		return nil, err
	}
	return nil, audio.LoadPreset(name, env.instrument)
}

func loopCommand(env *env, args []dub.Node) (dub.Node, error) {
	var name string
	var length float64
	var pattern []dub.Node
	velocity := defaultVelocity
	if len(args) > 4 {
		return nil, fmt.Errorf("too many arguments")
	}
	if err := readArgs(args[:3], &name, &length, &pattern); err != nil {
		return nil, err
	}
	if len(args) == 4 {
		if err := readArgs(args[3:], &velocity); err != nil {
			return nil, err
		}
	}
	if length <= 0 {
		return nil, fmt.Errorf("loop length must be positive: %v", length)
	}
	phrase := audio.NewPhrase(length, env.instrument)
	if err := evalPattern(pattern, phrase, length, velocity, new(float64)); err != nil {
		return nil, err
	}
	return nil, env.sequencer.SetPhrase(name, phrase)
}

// evalPattern divides divLength beats evenly between the items of pattern.
// Nested arrays subdivide their step, tuples play chords. Notes outside of
// the playable range, such as 0, are rests.
func evalPattern(pattern dub.Array, phrase *audio.Phrase, divLength float64, velocity int, pos *float64) error {
	noteLength := divLength / float64(len(pattern))
	for _, item := range pattern {
		switch v := item.(type) {
		case dub.Int, dub.Identifier:
			n, err := readNote(v)
			if err != nil {
				return err
			}
			phrase.AddNote(*pos, n, velocity, noteLength)
			*pos += noteLength
		case dub.Tuple:
			for _, item := range v {
				n, err := readNote(item)
				if err != nil {
					return err
				}
				phrase.AddNote(*pos, n, velocity, noteLength)
			}
			*pos += noteLength
		case dub.Array:
			if err := evalPattern(v, phrase, noteLength, velocity, pos); err != nil {
				return err
			}
		default:
			return fmt.Errorf("invalid %v in pattern %v", v, pattern)
		}
	}
	return nil
}

const rhythmStepSize = 16

var rhythmTimeSig = dub.TimeSig{Num: 4, Denom: 4}

func rhythmCommand(env *env, args []dub.Node) (dub.Node, error) {
	var name string
	var n note
	var expr dub.MatchExpr
	velocity := defaultVelocity
	if len(args) > 4 {
		return nil, fmt.Errorf("too many arguments")
	}
	if err := readArgs(args[:2], &name, &n); err != nil {
		return nil, err
	}
	// the match expression runs to the end of the line
	if err := readArgs(args[len(args)-1:], &expr); err != nil {
		return nil, err
	}
	if len(args) == 4 {
		if err := readArgs(args[2:3], &velocity); err != nil {
			return nil, err
		}
	}
	steps, err := expr.Steps(rhythmTimeSig, rhythmStepSize)
	if err != nil {
		return nil, err
	}
	stepLength := 4. / rhythmStepSize // in beats
	phrase := audio.NewPhrase(float64(len(steps))*stepLength, env.instrument)
	for i, on := range steps {
		if on {
			phrase.AddNote(float64(i)*stepLength, int(n), velocity, stepLength)
		}
	}
	return nil, env.sequencer.SetPhrase(name, phrase)
}

func midiCommand(env *env, args []dub.Node) (dub.Node, error) {
	var name, file string
	if err := readArgs(args, &name, &file); err != nil {
		return nil, err
	}
	phrase, err := audio.LoadMIDIFile(file, env.instrument)
	if err != nil {
		return nil, err
	}
	if err := env.sequencer.SetPhrase(name, phrase); err != nil {
		return nil, err
	}
	return dub.String(fmt.Sprintf("%d notes", phrase.Len())), nil
}

func stopCommand(env *env, args []dub.Node) (dub.Node, error) {
	var name string
	if err := readArgs(args, &name); err != nil {
		return nil, err
	}
	if _, ok := env.sequencer.Phrases()[name]; !ok {
		return nil, fmt.Errorf("no phrase named %s", name)
	}
	return nil, env.sequencer.SetPhrase(name, nil)
}

func showCommand(env *env, args []dub.Node) (dub.Node, error) {
	renderGrid(env.out, env.instrument.Grid(), env.instrument.Clips())
	renderPhrases(env.out, env.sequencer.Phrases())
	return nil, nil
}

func voicesCommand(env *env, args []dub.Node) (dub.Node, error) {
	renderVoices(env.out, env.instrument.Voices())
	return nil, nil
}

func bounceCommand(env *env, args []dub.Node) (dub.Node, error) {
	var file string
	var seconds float64
	if err := readArgs(args, &file, &seconds); err != nil {
		return nil, err
	}
	sink, err := offlineCopy(env)
	if err != nil {
		return nil, err
	}
	if err := audio.Bounce(sink, file, seconds); err != nil {
		return nil, err
	}
	return dub.String(fmt.Sprintf("wrote %s", file)), nil
}

// offlineCopy returns a headless sink playing copies of the instrument and
// sequencer, so the live ones keep running on the audio thread.
func offlineCopy(env *env) (*audio.Sink, error) {
	inst := audio.NewSampler(audio.NewProps(), len(env.instrument.Voices()))
	for _, key := range env.instrument.Keys() {
		v, err := env.instrument.Get(key)
		if err != nil {
			return nil, err
		}
		if err := inst.Set(key, v); err != nil {
			return nil, err
		}
	}
	seq := audio.NewSequencer(audio.NewProps())
	bpm, err := env.sequencer.Get(audio.PropBPM)
	if err != nil {
		return nil, err
	}
	if err := seq.Set(audio.PropBPM, bpm); err != nil {
		return nil, err
	}
	for name, phrase := range env.sequencer.Phrases() {
		if err := seq.SetPhrase(name, phrase.With(inst)); err != nil {
			return nil, err
		}
	}
	sink := audio.NewHeadlessSink()
	sink.AddTicker(seq)
	sink.AddSources(inst)
	return sink, nil
}

func helpCommand(env *env, args []dub.Node) (dub.Node, error) {
	for _, cmd := range commands {
		fmt.Fprintln(env.out, cmd.help)
	}
	return nil, nil
}

func gridSummary(g *binding.Grid) dub.String {
	notes, velocities, roundRobins := g.Dims()
	return dub.String(fmt.Sprintf("%d notes x %d velocities x %d round robins, %d clips",
		notes, velocities, roundRobins, len(g.Clips())))
}
