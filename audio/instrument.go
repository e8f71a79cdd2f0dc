package audio

import (
	"sort"
	"sync/atomic"

	"github.com/mrdg/xmusica/binding"
)

const (
	blockSize  = 16 // voices are ticked once per block, about 0.35ms
	SampleRate = 44100
	BufferSize = 512
)

const DefaultVoices = 10

type eventKind int

const (
	eventPress eventKind = iota
	eventRelease
	eventPanic
)

type event struct {
	kind     eventKind
	pitch    int
	offset   int
	velocity int
}

const (
	PropVolume   = "volume"
	PropEnvelope = "envelope"
	PropBinding  = "binding"
	PropClips    = "clips"
)

// Instrument plays a sample grid through a pool of sample channels. Key
// events can be sent from any single goroutine with Press, Release and Panic;
// they are applied on the audio thread at the start of the next buffer.
// Configuration is read from its Props once per buffer.
type Instrument struct {
	*Props
	pool     *Pool
	channels []*SampleChannel
	events   *eventBuffer
	pending  []event // scheduled from the audio thread by PlayNote
	buf      []float64

	volume   *atomic.Value
	envelope *atomic.Value
	grid     *atomic.Value
	clips    *atomic.Value

	voices atomic.Value // []VoiceState

	headless bool
}

// NewSampler returns an instrument with numVoices channels and an empty
// binding generated from the default descriptor.
func NewSampler(props *Props, numVoices int) *Instrument {
	inst := &Instrument{
		Props:    props,
		events:   newEventBuffer(256),
		buf:      make([]float64, BufferSize),
		volume:   props.MustRegister(PropVolume, setVolume, 1.0),
		envelope: props.MustRegister(PropEnvelope, setEnvelope, DefaultEnvelope()),
		grid:     props.MustRegister(PropBinding, setGrid, binding.NewGrid(binding.DefaultDescriptor())),
		clips:    props.MustRegister(PropClips, setClips, &Clips{}),
	}
	channels := make([]Channel, numVoices)
	for n := range channels {
		ch := NewSampleChannel(inst.clips, SampleRate)
		inst.channels = append(inst.channels, ch)
		channels[n] = ch
	}
	grid := inst.grid.Load().(*binding.Grid)
	inst.pool = NewPool(channels, binding.NewResolver(grid), inst.envelope.Load().(Envelope))
	inst.voices.Store(inst.pool.Voices())
	return inst
}

func (i *Instrument) Press(pitch, velocity int) {
	i.send(event{kind: eventPress, pitch: pitch, velocity: velocity})
}

func (i *Instrument) Release(pitch, velocity int) {
	i.send(event{kind: eventRelease, pitch: pitch, velocity: velocity})
}

// Panic silences all voices.
func (i *Instrument) Panic() {
	i.send(event{kind: eventPanic})
}

// SetHeadless marks the instrument as driven by Sink.Render from the same
// goroutine that sends key events. A full event buffer is then applied
// directly instead of waiting for an audio thread. It must be called before
// any events are sent.
func (i *Instrument) SetHeadless() {
	i.headless = true
}

func (i *Instrument) send(ev event) {
	if !i.headless {
		i.events.push(ev)
		return
	}
	if i.events.tryPush(ev) {
		return
	}
	i.sync()
	i.events.iter(-1, i.apply)
	i.voices.Store(i.pool.Voices())
	i.events.push(ev)
}

// PlayNote schedules a note at offset frames into the current buffer and
// releases it duration frames later. It must only be called from the audio
// thread, e.g. by a Ticker.
func (i *Instrument) PlayNote(offset, pitch, velocity, duration int) {
	i.pending = append(i.pending,
		event{kind: eventPress, pitch: pitch, velocity: velocity, offset: offset},
		event{kind: eventRelease, pitch: pitch, offset: offset + duration},
	)
}

// Voices returns the voice states as of the end of the last processed buffer.
func (i *Instrument) Voices() []VoiceState {
	return i.voices.Load().([]VoiceState)
}

// Grid returns the current binding. The grid must not be modified; use
// SetGrid with a modified Clone instead.
func (i *Instrument) Grid() *binding.Grid {
	return i.grid.Load().(*binding.Grid)
}

func (i *Instrument) SetGrid(g *binding.Grid) error {
	return i.Set(PropBinding, g)
}

func (i *Instrument) Clips() *Clips {
	return i.clips.Load().(*Clips)
}

func (i *Instrument) apply(ev event) {
	switch ev.kind {
	case eventPress:
		i.pool.Press(ev.pitch, ev.velocity)
	case eventRelease:
		i.pool.Release(ev.pitch, ev.velocity)
	case eventPanic:
		i.pool.Panic()
	}
}

// sync hands the current props to the pool.
func (i *Instrument) sync() {
	if g := i.grid.Load().(*binding.Grid); g != i.pool.Grid() {
		i.pool.SetGrid(g)
	}
	i.pool.SetEnvelope(i.envelope.Load().(Envelope))
	i.pool.SetMasterVolume(i.volume.Load().(float64))
}

func (i *Instrument) Process(samples [][]float32) {
	i.sync()

	// Releases go first so a note that is retriggered at the same offset
	// ends up pressed.
	sort.SliceStable(i.pending, func(a, b int) bool {
		if i.pending[a].offset != i.pending[b].offset {
			return i.pending[a].offset < i.pending[b].offset
		}
		return i.pending[a].kind == eventRelease && i.pending[b].kind != eventRelease
	})

	frames := len(samples[0])
	if len(i.buf) < frames {
		i.buf = make([]float64, frames)
	}
	buf := i.buf[:frames]
	for n := 0; n < frames; n += blockSize {
		end := min(n+blockSize, frames)
		i.events.iter(end, i.apply)
		var k int
		for k < len(i.pending) && i.pending[k].offset < end {
			i.apply(i.pending[k])
			k++
		}
		i.pending = i.pending[k:]

		i.pool.Tick(float64(end-n) / SampleRate)
		for _, ch := range i.channels {
			ch.Process(buf[n:end])
		}
	}
	for n := range i.pending {
		i.pending[n].offset -= frames
	}

	for n := range buf {
		sample := float32(buf[n])
		for c := range samples {
			samples[c][n] += sample
		}
		buf[n] = 0
	}
	i.voices.Store(i.pool.Voices())
}
