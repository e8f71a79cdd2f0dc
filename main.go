package main

import (
	"bufio"
	"flag"
	"io"
	"log"
	"os"
	"strings"

	"github.com/mrdg/xmusica/audio"
	"github.com/mrdg/xmusica/preset"
)

func main() {
	var (
		presetFile = flag.String("preset", "", "JSON instrument preset")
		binding    = flag.String("binding", "", "binding file to load")
		voices     = flag.Int("voices", 0, "number of voices, overrides the preset")
		run        = flag.String("run", "", "file with commands to run on startup")
		render     = flag.String("render", "", "render to this WAV file instead of playing")
		seconds    = flag.Float64("seconds", 10, "length of the -render output in seconds")
	)
	flag.Parse()

	settings := preset.Default()
	if *presetFile != "" {
		var err error
		if settings, err = preset.LoadJSON(*presetFile); err != nil {
			log.Fatal(err)
		}
	}
	if *voices > 0 {
		settings.Voices = *voices
	}
	if *binding != "" {
		settings.BindingPath = *binding
	}

	inst := audio.NewSampler(audio.NewProps(), settings.Voices)
	if err := settings.Apply(inst); err != nil {
		log.Fatal(err)
	}
	seq := audio.NewSequencer(audio.NewProps())

	var sink *audio.Sink
	if *render != "" {
		sink = audio.NewHeadlessSink()
		inst.SetHeadless()
	} else {
		var err error
		if sink, err = audio.NewSink(); err != nil {
			log.Fatal(err)
		}
	}
	sink.AddTicker(seq)
	sink.AddSources(inst)

	env := newEnv(inst, seq, os.Stdout)

	if *run != "" {
		if err := runFile(env, *run); err != nil {
			log.Fatal(err)
		}
	}

	if *render != "" {
		if err := audio.Bounce(sink, *render, *seconds); err != nil {
			log.Fatal(err)
		}
		return
	}

	if err := sink.Start(); err != nil {
		log.Fatal(err)
	}
	defer sink.Stop()

	if err := repl(env); err != nil && err != io.EOF {
		log.Fatal(err)
	}
}

// runFile evaluates every line of a command file. Empty lines and lines
// starting with # are skipped.
func runFile(env *env, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		result, err := env.eval(line)
		if err != nil {
			return err
		}
		env.print(result)
	}
	return scanner.Err()
}
