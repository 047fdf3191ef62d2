// Package instrument defines the synthesis/performance collaborator the
// player pulls samples from and pushes performance events into (spec
// section 4.5). Sine is monophonic: at most one note sounds at a time, and
// a note-off only silences the voice if it names the currently held note.
// MidiOut forwards every note event to its device unchanged.
package instrument

// EventKind distinguishes the kinds of performance events an Instrument
// reacts to.
type EventKind int

const (
	NoteOn EventKind = iota
	NoteOff
	ControlChange
)

// Event is a single performance event delivered to an Instrument from the
// control thread. Key and Velocity are meaningful for NoteOn/NoteOff;
// Controller and Value are meaningful for ControlChange.
type Event struct {
	Kind       EventKind
	Key        int
	Velocity   int
	Controller int
	Value      float64
}

// Instrument turns performance Events into a stream of samples. NextSample
// runs on the real-time audio thread; Init, HandleEvent, Reset, SetParam,
// and Param run on the control thread and must not block.
type Instrument interface {
	// Init prepares the instrument to render at sampleRate.
	Init(sampleRate int)

	// NextSample returns the next sample in [-1, 1].
	NextSample() float32

	// HandleEvent applies a single performance event.
	HandleEvent(e Event)

	// Reset silences any held note and clears transient state.
	Reset()

	// SetParam assigns instrument-specific parameter idx to val.
	SetParam(idx int, val float64)

	// Param returns the current value of instrument-specific parameter idx.
	Param(idx int) float64
}
