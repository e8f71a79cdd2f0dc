package audio

import (
	"log"

	"github.com/mrdg/xmusica/binding"
)

// Channel is an output that plays a single clip. The pool only issues
// commands to channels, it never touches audio data.
type Channel interface {
	SetClip(clip binding.ClipRef)
	SetPitch(ratio float64)
	SetVolume(gain float64)
	Play()
	Stop()
}

// VoiceState is a snapshot of a single voice.
type VoiceState struct {
	Note    int // 0 if the voice is free
	Pressed bool
	Elapsed float64
	Gain    float64
}

type voice struct {
	note    int
	pressed bool
	elapsed float64 // seconds since the last press or release
	gain    float64
	channel Channel
}

// Pool assigns pressed notes to a fixed set of channels and drives their
// volume from an envelope. A Pool is not safe for concurrent use; all calls
// are expected to come from the audio thread.
type Pool struct {
	voices   []voice
	next     int
	resolver *binding.Resolver
	env      Envelope
	master   float64
}

func NewPool(channels []Channel, resolver *binding.Resolver, env Envelope) *Pool {
	p := &Pool{
		voices:   make([]voice, len(channels)),
		resolver: resolver,
		env:      env,
		master:   1,
	}
	for n, ch := range channels {
		p.voices[n].channel = ch
	}
	return p
}

// poll returns the next channel to use. Free channels are preferred,
// starting at the channel after the one polled last. If all channels are
// busy the channel at the rotation pointer is stolen.
func (p *Pool) poll() int {
	p.next++
	if p.next >= len(p.voices) {
		p.next = 0
	}
	for n := range p.voices {
		i := (p.next + n) % len(p.voices)
		if p.voices[i].note == 0 {
			return i
		}
	}
	return p.next
}

// Press starts playing note. If no sample can be resolved the press is
// dropped.
func (p *Pool) Press(note, velocity int) {
	if len(p.voices) == 0 {
		return
	}
	pb, err := p.resolver.Resolve(note, velocity)
	if err != nil {
		log.Printf("sampler: press %s: %v", binding.NoteName(note), err)
		return
	}
	v := &p.voices[p.poll()]
	if v.note != 0 && v.note != note {
		v.channel.Stop()
	}
	v.note = note
	v.pressed = true
	v.elapsed = 0
	v.gain = pb.Volume

	v.channel.SetClip(pb.Slot.Clip)
	v.channel.SetPitch(pb.Pitch)
	v.channel.SetVolume(v.gain * p.env.Down(0) * p.master)
	v.channel.Play()
}

// Release moves every held voice playing note to its release phase. The
// gain reached so far is kept so the release starts at the current volume.
func (p *Pool) Release(note, velocity int) {
	if !binding.IsValidNote(note) {
		return
	}
	for n := range p.voices {
		v := &p.voices[n]
		// voices already releasing keep their gain and elapsed time
		if v.note != note || !v.pressed {
			continue
		}
		v.gain = p.env.Down(v.elapsed) * v.gain
		v.pressed = false
		v.elapsed = 0
	}
}

// Tick advances all active voices by dt seconds.
func (p *Pool) Tick(dt float64) {
	for n := range p.voices {
		v := &p.voices[n]
		if v.note == 0 {
			continue
		}
		v.elapsed += dt
		if v.pressed {
			v.channel.SetVolume(v.gain * p.env.Down(v.elapsed) * p.master)
			continue
		}
		a, ok := p.env.Up(v.elapsed)
		if !ok {
			v.channel.Stop()
			v.reset()
			continue
		}
		v.channel.SetVolume(v.gain * a * p.master)
	}
}

// Panic stops every voice immediately.
func (p *Pool) Panic() {
	for n := range p.voices {
		v := &p.voices[n]
		if v.note != 0 {
			v.channel.Stop()
		}
		v.reset()
	}
}

func (v *voice) reset() {
	v.note = 0
	v.pressed = false
	v.elapsed = 0
	v.gain = 0
}

func (p *Pool) SetGrid(g *binding.Grid) { p.resolver.SetGrid(g) }
func (p *Pool) Grid() *binding.Grid { return p.resolver.Grid() }
func (p *Pool) SetEnvelope(env Envelope) { p.env = env }
func (p *Pool) SetMasterVolume(gain float64) { p.master = gain }

// Voices returns the state of every voice in channel order.
func (p *Pool) Voices() []VoiceState {
	states := make([]VoiceState, len(p.voices))
	for n, v := range p.voices {
		states[n] = VoiceState{Note: v.note, Pressed: v.pressed, Elapsed: v.elapsed, Gain: v.gain}
	}
	return states
}

// Active returns the number of voices that are not free.
func (p *Pool) Active() int {
	var n int
	for _, v := range p.voices {
		if v.note != 0 {
			n++
		}
	}
	return n
}
