package audio

import (
	"github.com/gordonklaus/portaudio"
)

type Source interface {
	Process([][]float32)
}

type Ticker interface {
	Tick(numSamples int)
}

// Sink pulls audio from its sources, either from a portaudio output stream
// or offline through Render.
type Sink struct {
	sources []Source
	tickers []Ticker
	stream  *portaudio.Stream
}

// NewSink opens the default stereo output device.
func NewSink() (*Sink, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}
	var s Sink
	stream, err := portaudio.OpenDefaultStream(0, 2, SampleRate, BufferSize, s.Process)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}
	s.stream = stream
	return &s, nil
}

// NewHeadlessSink returns a sink without an output device. Audio is only
// produced by calling Render.
func NewHeadlessSink() *Sink {
	return &Sink{}
}

func (s *Sink) Start() error {
	if s.stream == nil {
		return nil
	}
	return s.stream.Start()
}

func (s *Sink) Stop() error {
	if s.stream == nil {
		return nil
	}
	s.stream.Close()
	return portaudio.Terminate()
}

func (s *Sink) AddSources(sources ...Source) {
	s.sources = append(s.sources, sources...)
}

func (s *Sink) AddTicker(ticker Ticker) {
	s.tickers = append(s.tickers, ticker)
}

// Render produces the given number of stereo frames, one buffer at a time.
func (s *Sink) Render(frames int) [][]float32 {
	out := [][]float32{make([]float32, frames), make([]float32, frames)}
	for n := 0; n < frames; n += BufferSize {
		end := min(n+BufferSize, frames)
		s.Process([][]float32{out[0][n:end], out[1][n:end]})
	}
	return out
}

func (s *Sink) Process(samples [][]float32) {
	for i := range samples {
		for j := range samples[i] {
			samples[i][j] = 0.
		}
	}
	for _, ticker := range s.tickers {
		ticker.Tick(len(samples[0]))
	}
	for _, source := range s.sources {
		source.Process(samples)
	}
}
