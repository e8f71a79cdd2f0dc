package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/chzyer/readline"

	"github.com/mrdg/xmusica/audio"
	"github.com/mrdg/xmusica/binding"
	"github.com/mrdg/xmusica/dub"
)

const (
	deviceInstrument = "inst"
	deviceSequencer  = "seq"
)

type env struct {
	instrument *audio.Instrument
	sequencer  *audio.Sequencer
	devices    map[string]audio.Device
	out        io.Writer
}

func newEnv(inst *audio.Instrument, seq *audio.Sequencer, out io.Writer) *env {
	return &env{
		instrument: inst,
		sequencer:  seq,
		devices: map[string]audio.Device{
			deviceInstrument: inst,
			deviceSequencer:  seq,
		},
		out: out,
	}
}

func (e *env) setProp(device, prop string, v interface{}) error {
	instr, ok := e.devices[device]
	if !ok {
		return fmt.Errorf("unknown device: %s", device)
	}
	return instr.Set(prop, v)
}

func (e *env) getProp(device, prop string) (interface{}, error) {
	instr, ok := e.devices[device]
	if !ok {
		return nil, fmt.Errorf("unknown device: %s", device)
	}
	return instr.Get(prop)
}

func (e *env) print(result dub.Node) {
	if result != nil {
		fmt.Fprintln(e.out, result)
	}
}

func (e *env) eval(input string) (dub.Node, error) {
	command, err := dub.Parse(input)
	if err != nil {
		return nil, err
	}
	name := string(command.Name)
	for _, cmd := range commands {
		if name != cmd.name {
			continue
		}
		if cmd.arity < 0 {
			arity := -cmd.arity
			if len(command.Args) < arity {
				return nil, fmt.Errorf("%s: wrong number of arguments: need at least %v, got %v",
					cmd.name, arity, len(command.Args))
			}
		} else if len(command.Args) != cmd.arity {
			return nil, fmt.Errorf("%s: wrong number of arguments: want %v, got %v",
				cmd.name, cmd.arity, len(command.Args))
		}
		result, err := cmd.run(e, command.Args)
		if err != nil {
			return result, fmt.Errorf("%s error: %w", cmd.name, err)
		}
		return result, nil
	}
	return nil, fmt.Errorf("unknown command: %s", name)
}

func repl(env *env) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:       "> ",
		AutoComplete: completer(),
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == io.EOF {
			return err
		}
		if err == readline.ErrInterrupt {
			env.instrument.Panic()
			continue
		}
		if err != nil {
			fmt.Println(err)
			continue
		}
		if len(strings.TrimSpace(line)) == 0 {
			continue
		}
		if result, err := env.eval(line); err != nil {
			fmt.Fprintln(env.out, err)
		} else {
			env.print(result)
		}
	}
}

func completer() *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, cmd := range commands {
		items = append(items, readline.PcItem(cmd.name))
	}
	return readline.NewPrefixCompleter(items...)
}

type command struct {
	name  string
	run   func(*env, []dub.Node) (dub.Node, error)
	arity int // -n means len(args) must be >= n
	help  string
}

var commands []command

func init() {
	commands = []command{
		{"press", pressCommand, -1, "press <note> [velocity]"},
		{"release", releaseCommand, 1, "release <note>"},
		{"panic", panicCommand, 0, "panic"},
		{"generate", generateCommand, 5, "generate <start> <end> <spacing> <velocities> <round robins>"},
		{"volumes", volumesCommand, 1, "volumes [<multiplier>...]"},
		{"bind", bindCommand, 4, `bind <note> <velocity> <round robin> "file.wav"`},
		{"tones", tonesCommand, 1, "tones <sine|saw|square>"},
		{"save", saveCommand, 1, `save "binding.json"`},
		{"load", loadCommand, 1, `load "binding.json"`},
		{"set", setCommand, 3, "set <device> <property> <value>"},
		{"get", getCommand, 2, "get <device> <property>"},
		{"envelope", envelopeCommand, 4, "envelope <attack> <decay> <sustain> <release>"},
		{"preset", presetCommand, 1, "preset <name>"},
		{"loop", loopCommand, -3, "loop <name> <beats> [pattern] [velocity]"},
		{"rhythm", rhythmCommand, -3, "rhythm <name> <note> [velocity] '<match>"},
		{"midi", midiCommand, 2, `midi <name> "file.mid"`},
		{"stop", stopCommand, 1, "stop <name>"},
		{"show", showCommand, 0, "show"},
		{"voices", voicesCommand, 0, "voices"},
		{"bounce", bounceCommand, 2, `bounce "out.wav" <seconds>`},
		{"help", helpCommand, 0, "help"},
	}
}

// note is a readArgs destination that accepts midi note numbers and note
// names.
type note int

func readArgs(args []dub.Node, slots ...interface{}) error {
	if len(args) != len(slots) {
		return errors.New("not enough arguments")
	}
	for n, arg := range args {
		dest := slots[n]
		switch p := dest.(type) {
		case *string:
			switch s := arg.(type) {
			case dub.String:
				*p = string(s)
			case dub.Identifier:
				*p = string(s)
			default:
				return fmt.Errorf("argument error: expected a string or identifier")
			}
		case *float64:
			switch v := arg.(type) {
			case dub.Float:
				*p = float64(v)
			case dub.Int:
				*p = float64(v)
			default:
				return fmt.Errorf("argument error: expected a number")
			}
		case *int:
			v, ok := arg.(dub.Int)
			if !ok {
				return fmt.Errorf("argument error: expected an integer")
			}
			*p = int(v)
		case *note:
			v, err := readNote(arg)
			if err != nil {
				return err
			}
			*p = note(v)
		case *[]dub.Node:
			arr, ok := arg.(dub.Array)
			if !ok {
				return fmt.Errorf("argument error: expected an array")
			}
			*p = arr
		case *dub.MatchExpr:
			expr, ok := arg.(dub.MatchExpr)
			if !ok {
				return fmt.Errorf("argument error: expected a match expression")
			}
			*p = expr
		default:
			panic("readArgs: unhandled destination type: " + fmt.Sprint(p))
		}
	}
	return nil
}

func readNote(arg dub.Node) (int, error) {
	switch v := arg.(type) {
	case dub.Int:
		return int(v), nil
	case dub.Identifier:
		return binding.ParseNote(string(v))
	default:
		return 0, fmt.Errorf("argument error: expected a note")
	}
}

func sortedKeys(m map[string]*audio.Phrase) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
