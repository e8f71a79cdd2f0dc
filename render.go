package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/mrdg/xmusica/audio"
	"github.com/mrdg/xmusica/binding"
)

const clipWidth = 10

func renderGrid(w io.Writer, g *binding.Grid, clips *audio.Clips) {
	if g.Empty() {
		fmt.Fprintln(w, "empty binding")
		return
	}
	d := g.Descriptor()
	notes, velocities, roundRobins := g.Dims()

	header := "     "
	for j := 0; j < velocities; j++ {
		vol := 1.0
		if j < len(d.VolumeMultipliers) {
			vol = d.VolumeMultipliers[j]
		}
		label := fmt.Sprintf("≤%d ×%.2f", d.VelocityCeilingAt(j), vol)
		width := (clipWidth+1)*roundRobins - 1
		header += " " + colorize(pad(label, width), colorMagenta)
	}
	fmt.Fprintln(w, header)

	for i := notes - 1; i >= 0; i-- {
		row := colorize(pad(binding.NoteName(d.NoteAt(i)), 5), colorGreen)
		for j := 0; j < velocities; j++ {
			for k := 0; k < roundRobins; k++ {
				s, _ := g.Slot(i, j, k)
				row += " " + formatClip(s.Clip, clips)
			}
		}
		fmt.Fprintln(w, row)
	}
}

func formatClip(clip binding.ClipRef, clips *audio.Clips) string {
	if clip == "" {
		return pad("·", clipWidth)
	}
	name := formatSampleName(string(clip), clipWidth)
	if clips.Get(clip) == nil {
		return colorize(name, colorRed)
	}
	return colorize(name, colorBlue)
}

func renderPhrases(w io.Writer, phrases map[string]*audio.Phrase) {
	for _, name := range sortedKeys(phrases) {
		p := phrases[name]
		fmt.Fprintf(w, "%s %d notes in %g beats\n",
			colorize(name, colorYellow), p.Len(), float64(p.Length)/audio.PPQN)
	}
}

func renderVoices(w io.Writer, voices []audio.VoiceState) {
	for n, v := range voices {
		id := colorize(fmt.Sprintf("%2d", n), colorGreen)
		if v.Note == 0 {
			fmt.Fprintf(w, "%s %s\n", id, "-")
			continue
		}
		state := "held"
		if !v.Pressed {
			state = "released"
		}
		bar := strings.Repeat("▮", int(v.Gain*10+0.5))
		fmt.Fprintf(w, "%s %-4s %-8s %5.2fs %s\n",
			id, binding.NoteName(v.Note), state, v.Elapsed, colorize(bar, colorBlue))
	}
}

func formatSampleName(sample string, width int) string {
	return pad(displayName(sample), width)
}

// pad truncates or pads s with spaces to exactly width runes.
func pad(s string, width int) string {
	r := []rune(s)
	if len(r) > width {
		return string(r[:width-1]) + "…"
	}
	return s + strings.Repeat(" ", width-len(r))
}

func displayName(filename string) string {
	filename = filepath.Base(filename)
	return filename[:len(filename)-len(filepath.Ext(filename))]
}

const (
	colorBlack = iota + 30
	colorRed
	colorGreen
	colorYellow
	colorBlue
	colorMagenta
)

func colorize(text string, color int) string {
	return fmt.Sprintf("\033[%dm%s\033[0m", color, text)
}
