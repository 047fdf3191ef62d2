package instrument

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeMidiDevice struct {
	on, off []uint8
	closed  bool
	failOn  bool
	failOff bool
}

func (f *fakeMidiDevice) NoteOn(channel, note, velocity uint8) error {
	if f.failOn {
		return errors.New("fake: note on failed")
	}
	f.on = append(f.on, note)
	return nil
}

func (f *fakeMidiDevice) NoteOff(channel, note uint8) error {
	if f.failOff {
		return errors.New("fake: note off failed")
	}
	f.off = append(f.off, note)
	return nil
}

func (f *fakeMidiDevice) Close() error {
	f.closed = true
	return nil
}

func TestMidiOutForwardsNoteOn(t *testing.T) {
	dev := &fakeMidiDevice{}
	m := &MidiOut{device: dev, channel: 0}

	m.HandleEvent(Event{Kind: NoteOn, Key: 60, Velocity: 100})
	assert.Equal(t, []uint8{60}, dev.on)
}

func TestMidiOutForwardsNoteOff(t *testing.T) {
	dev := &fakeMidiDevice{}
	m := &MidiOut{device: dev, channel: 0}

	m.HandleEvent(Event{Kind: NoteOff, Key: 60})
	assert.Equal(t, []uint8{60}, dev.off)
}

func TestMidiOutIgnoresControlChange(t *testing.T) {
	dev := &fakeMidiDevice{}
	m := &MidiOut{device: dev, channel: 0}

	m.HandleEvent(Event{Kind: ControlChange, Controller: 1, Value: 64})
	assert.Empty(t, dev.on)
	assert.Empty(t, dev.off)
}

func TestMidiOutNoteOnFailureDoesNotPanic(t *testing.T) {
	dev := &fakeMidiDevice{failOn: true}
	m := &MidiOut{device: dev, channel: 0}

	assert.NotPanics(t, func() {
		m.HandleEvent(Event{Kind: NoteOn, Key: 60, Velocity: 100})
	})
	assert.Empty(t, dev.on)
}

func TestMidiOutNoteOffFailureDoesNotPanic(t *testing.T) {
	dev := &fakeMidiDevice{failOff: true}
	m := &MidiOut{device: dev, channel: 0}

	assert.NotPanics(t, func() {
		m.HandleEvent(Event{Kind: NoteOff, Key: 60})
	})
	assert.Empty(t, dev.off)
}

func TestMidiOutResetClosesDevice(t *testing.T) {
	dev := &fakeMidiDevice{}
	m := &MidiOut{device: dev, channel: 0}

	m.Reset()
	assert.True(t, dev.closed)
}

func TestMidiOutNextSampleIsSilent(t *testing.T) {
	m := &MidiOut{device: &fakeMidiDevice{}, channel: 0}
	assert.Equal(t, float32(0), m.NextSample())
}
