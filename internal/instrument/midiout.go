package instrument

import (
	"log"

	"github.com/branchpanic/operator/internal/midiconnector"
	"github.com/branchpanic/operator/internal/music"
)

// midiDevice is the subset of midiconnector.Device's API MidiOut drives.
// Extracted so tests can exercise HandleEvent/Reset against a fake instead
// of a real MIDI port.
type midiDevice interface {
	NoteOn(channel, note, velocity uint8) error
	NoteOff(channel, note uint8) error
	Close() error
}

// MidiOut is an Instrument that forwards performance events to an external
// hardware or software MIDI device instead of synthesizing samples itself.
// NextSample always returns silence: whatever sound results plays out of
// band through the MIDI device, not through the engine's own output.
type MidiOut struct {
	device  midiDevice
	channel uint8
}

// NewMidiOut opens a MIDI output port matching deviceName and returns an
// instrument that drives it.
func NewMidiOut(deviceName string, channel uint8) (*MidiOut, error) {
	d, err := midiconnector.New(deviceName)
	if err != nil {
		return nil, err
	}
	if err := d.Open(); err != nil {
		return nil, err
	}
	return &MidiOut{device: d, channel: channel}, nil
}

func (m *MidiOut) Init(sampleRate int) {}

func (m *MidiOut) NextSample() float32 { return 0 }

func (m *MidiOut) HandleEvent(e Event) {
	switch e.Kind {
	case NoteOn:
		if err := m.device.NoteOn(m.channel, uint8(e.Key), uint8(e.Velocity)); err != nil {
			log.Printf("midiout: note on %s failed: %v", music.MidiToNoteName(e.Key), err)
		}
	case NoteOff:
		if err := m.device.NoteOff(m.channel, uint8(e.Key)); err != nil {
			log.Printf("midiout: note off %s failed: %v", music.MidiToNoteName(e.Key), err)
		}
	case ControlChange:
		// Control changes are not forwarded in v1; the wire format and CC
		// mapping are an open question left to a future revision.
	}
}

func (m *MidiOut) Reset() {
	m.device.Close()
}

func (m *MidiOut) SetParam(idx int, val float64) {}

func (m *MidiOut) Param(idx int) float64 { return 0 }
