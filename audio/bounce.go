package audio

import (
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const bitDepth = 16

// WriteWAV encodes frames, one slice per channel, as 16 bit PCM.
func WriteWAV(w io.WriteSeeker, frames [][]float32, sampleRate int) error {
	if len(frames) == 0 {
		return fmt.Errorf("no channels to write")
	}
	numChannels := len(frames)
	n := len(frames[0])
	scale := float32(int(1)<<(bitDepth-1) - 1)

	data := make([]int, 0, n*numChannels)
	for i := 0; i < n; i++ {
		for c := range frames {
			s := frames[c][i]
			if s > 1 {
				s = 1
			} else if s < -1 {
				s = -1
			}
			data = append(data, int(s*scale))
		}
	}

	// Create encoder with 16-bit PCM (audioFormat = 1)
	encoder := wav.NewEncoder(w, sampleRate, bitDepth, numChannels, 1)
	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			SampleRate:  sampleRate,
			NumChannels: numChannels,
		},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := encoder.Write(buf); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	return encoder.Close()
}

// Bounce renders seconds of audio from sink and writes it to a WAV file.
func Bounce(sink *Sink, path string, seconds float64) error {
	if seconds <= 0 {
		return fmt.Errorf("bounce length must be positive: %v", seconds)
	}
	frames := sink.Render(int(seconds * SampleRate))

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteWAV(f, frames, SampleRate); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
