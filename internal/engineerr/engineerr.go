// Package engineerr defines the error kinds surfaced by the engine to its
// callers (spec section 7). Audio-thread code never returns these; it logs
// and substitutes silence instead.
package engineerr

import "fmt"

// Io wraps an underlying file or device I/O failure.
type Io struct {
	Op    string
	Cause error
}

func (e *Io) Error() string { return fmt.Sprintf("io: %s: %v", e.Op, e.Cause) }
func (e *Io) Unwrap() error { return e.Cause }

// SerializeError is returned when a Project fails to marshal to its saved
// representation.
type SerializeError struct {
	Message string
}

func (e *SerializeError) Error() string { return fmt.Sprintf("serialize: %s", e.Message) }

// DeserializeError is returned when a saved Project cannot be parsed back.
type DeserializeError struct {
	Message string
	Line    int
	Column  int
}

func (e *DeserializeError) Error() string {
	return fmt.Sprintf("deserialize: %s (line %d, column %d)", e.Message, e.Line, e.Column)
}

// ReadError wraps a failure to decode an imported audio file.
type ReadError struct {
	Cause error
}

func (e *ReadError) Error() string { return fmt.Sprintf("read: %v", e.Cause) }
func (e *ReadError) Unwrap() error { return e.Cause }

// UnsupportedSampleFormat is returned when an imported WAV isn't integer PCM,
// or its sample rate doesn't match the project.
type UnsupportedSampleFormat struct {
	BitsPerSample int
	Detail        string
}

func (e *UnsupportedSampleFormat) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("unsupported sample format: %s", e.Detail)
	}
	return fmt.Sprintf("unsupported sample format: %d-bit", e.BitsPerSample)
}

// InvalidBufferSize is returned when the audio host doesn't offer a fixed
// frame count per callback.
type InvalidBufferSize struct {
	Size int
}

func (e *InvalidBufferSize) Error() string {
	return fmt.Sprintf("invalid buffer size (expected a fixed frame count): %d", e.Size)
}

// BuildStreamFailed, PlayStreamFailed, PauseStreamFailed wrap host stream
// lifecycle failures from the audio backend.
type BuildStreamFailed struct{ Cause error }

func (e *BuildStreamFailed) Error() string { return fmt.Sprintf("build stream failed: %v", e.Cause) }
func (e *BuildStreamFailed) Unwrap() error { return e.Cause }

type PlayStreamFailed struct{ Cause error }

func (e *PlayStreamFailed) Error() string { return fmt.Sprintf("play stream failed: %v", e.Cause) }
func (e *PlayStreamFailed) Unwrap() error { return e.Cause }

type PauseStreamFailed struct{ Cause error }

func (e *PauseStreamFailed) Error() string { return fmt.Sprintf("pause stream failed: %v", e.Cause) }
func (e *PauseStreamFailed) Unwrap() error { return e.Cause }
