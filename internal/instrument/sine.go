package instrument

import "math"

// midiNoteToHz converts a MIDI note number to frequency using equal
// temperament tuned to A4 = 440Hz.
func midiNoteToHz(note int) float64 {
	return 440.0 * math.Pow(2, (float64(note)-69.0)/12.0)
}

// Sine is a single-voice sine oscillator instrument. It holds at most one
// note at a time; a NoteOff only releases the voice if its key matches the
// currently held note, so a stray note-off from a note that already lost
// the voice (because a newer note-on took over) is silently ignored (spec
// section 4.5).
type Sine struct {
	sampleRate int
	phase      float64
	heldKey    int
	held       bool
	gain       float64
}

// NewSine returns a Sine instrument with unit gain.
func NewSine() *Sine {
	return &Sine{gain: 1.0}
}

func (s *Sine) Init(sampleRate int) {
	s.sampleRate = sampleRate
	s.phase = 0
}

func (s *Sine) NextSample() float32 {
	if !s.held || s.sampleRate <= 0 {
		return 0
	}

	out := float32(math.Sin(s.phase) * s.gain)

	freq := midiNoteToHz(s.heldKey)
	s.phase += 2 * math.Pi * freq / float64(s.sampleRate)
	if s.phase > 2*math.Pi {
		s.phase -= 2 * math.Pi
	}

	return out
}

func (s *Sine) HandleEvent(e Event) {
	switch e.Kind {
	case NoteOn:
		s.heldKey = e.Key
		s.held = true
		s.phase = 0
	case NoteOff:
		if s.held && e.Key == s.heldKey {
			s.held = false
		}
	case ControlChange:
		if e.Controller == 0 {
			s.gain = e.Value
		}
	}
}

func (s *Sine) Reset() {
	s.held = false
	s.phase = 0
}

func (s *Sine) SetParam(idx int, val float64) {
	if idx == 0 {
		s.gain = val
	}
}

func (s *Sine) Param(idx int) float64 {
	if idx == 0 {
		return s.gain
	}
	return 0
}
