// Package session owns exactly one Project behind a multi-reader/single-
// writer lock, exactly one Player behind a mutex, and the audio host's
// output stream (spec section 4.8). It is the top-level object a control
// surface (cmd/operator, or any other embedding) talks to.
package session

import (
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/branchpanic/operator/internal/clip"
	"github.com/branchpanic/operator/internal/clipstore"
	"github.com/branchpanic/operator/internal/engineerr"
	"github.com/branchpanic/operator/internal/instrument"
	"github.com/branchpanic/operator/internal/player"
	"github.com/branchpanic/operator/internal/project"
	"github.com/branchpanic/operator/internal/telemetry"
	"github.com/branchpanic/operator/internal/track"
)

// FixedBufferFrames is the frame count per host callback that Open requests
// from PortAudio. Open returns InvalidBufferSize only if this configured
// size is not positive; it does not query the device for supported sizes.
const FixedBufferFrames = 128

// Session wires a Project, a Player, and an open audio output stream
// together, and starts paused.
type Session struct {
	projectMu sync.RWMutex
	proj      *project.Project

	playerMu sync.Mutex
	play     *player.Player

	stream    *portaudio.Stream
	telemetry *telemetry.Notifier
}

// Options configures Open.
type Options struct {
	// Telemetry, if non-nil, receives transport notifications. A nil
	// value disables telemetry entirely.
	Telemetry *telemetry.Notifier
}

// Open initializes PortAudio, opens the default output device with a
// fixed-size buffer, builds a callback wired to p, and starts the stream
// paused.
func Open(p *project.Project, opts Options) (*Session, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, &engineerr.BuildStreamFailed{Cause: err}
	}

	host, err := portaudio.DefaultHostApi()
	if err != nil {
		portaudio.Terminate()
		return nil, &engineerr.BuildStreamFailed{Cause: err}
	}

	params := portaudio.HighLatencyParameters(nil, host.DefaultOutputDevice)
	params.Output.Channels = 1
	params.SampleRate = float64(p.SampleRate)
	params.FramesPerBuffer = FixedBufferFrames

	if params.FramesPerBuffer <= 0 {
		portaudio.Terminate()
		return nil, &engineerr.InvalidBufferSize{Size: params.FramesPerBuffer}
	}

	s := &Session{
		proj:      p,
		play:      player.New(p.SampleRate),
		telemetry: opts.Telemetry,
	}
	s.play.SetHostFormat(int(params.SampleRate), FixedBufferFrames, params.Output.Channels)

	stream, err := portaudio.OpenStream(params, s.callback)
	if err != nil {
		portaudio.Terminate()
		return nil, &engineerr.BuildStreamFailed{Cause: err}
	}
	s.stream = stream

	if err := stream.Start(); err != nil {
		return nil, &engineerr.PlayStreamFailed{Cause: err}
	}

	s.play.SetPlaying(false)
	return s, nil
}

// callback runs on the real-time audio thread. It acquires the Player
// mutex and a reader lock on the Project, holding both only for the
// duration of one produce call (spec section 5).
func (s *Session) callback(out []float32) {
	s.playerMu.Lock()
	defer s.playerMu.Unlock()

	s.projectMu.RLock()
	defer s.projectMu.RUnlock()

	s.play.Produce(out, 1, s.proj.Timeline, s.proj.ClipStore, s.proj.Instrument)
}

// Close stops the stream and releases PortAudio.
func (s *Session) Close() error {
	if s.stream == nil {
		return nil
	}
	if err := s.stream.Close(); err != nil {
		portaudio.Terminate()
		return &engineerr.PauseStreamFailed{Cause: err}
	}
	return portaudio.Terminate()
}

// Play resumes playback.
func (s *Session) Play() {
	s.playerMu.Lock()
	s.play.SetPlaying(true)
	s.playerMu.Unlock()

	s.telemetry.PlaybackState(true)
}

// Pause stops playback without resetting the playhead.
func (s *Session) Pause() {
	s.playerMu.Lock()
	s.play.SetPlaying(false)
	s.playerMu.Unlock()

	s.telemetry.PlaybackState(false)
}

// Seek moves the playhead.
func (s *Session) Seek(t track.Time) {
	s.playerMu.Lock()
	s.play.Seek(t)
	s.playerMu.Unlock()

	s.telemetry.Playhead(t)
}

// Time returns the current playhead position.
func (s *Session) Time() track.Time {
	s.playerMu.Lock()
	defer s.playerMu.Unlock()
	return s.play.Time()
}

// SampleRate returns the live Project's sample rate.
func (s *Session) SampleRate() int {
	s.projectMu.RLock()
	defer s.projectMu.RUnlock()
	return s.proj.SampleRate
}

// SetRecording arms or disarms recording into armedTrack. When disarming
// with captured audio, the captured clip is inserted into the ClipStore
// and placed, under the Project's writer lock, on the track that was armed
// when recording started; the armedTrack of the disarming call is only
// passed on to telemetry.
func (s *Session) SetRecording(on bool, armedTrack int) error {
	s.playerMu.Lock()
	finished, finishedTrack, start := s.play.SetRecording(on, armedTrack)
	s.playerMu.Unlock()

	s.telemetry.RecordingState(on, armedTrack)

	if finished == nil {
		return nil
	}

	s.projectMu.Lock()
	defer s.projectMu.Unlock()

	id := s.proj.ClipStore.Add(clip.New(finished))
	_, err := s.proj.PlaceClip(finishedTrack, start, id)
	return err
}

// HandleNote forwards a performance event to the currently wired
// instrument.
func (s *Session) HandleNote(e instrument.Event) {
	s.playerMu.Lock()
	defer s.playerMu.Unlock()
	s.play.HandleNote(s.proj.Instrument, e)
}

// SetInstrument swaps the Project's wired instrument.
func (s *Session) SetInstrument(inst instrument.Instrument) {
	s.projectMu.Lock()
	defer s.projectMu.Unlock()
	s.proj.Instrument = inst
}

// Save persists the Project to dir.
func (s *Session) Save(dir string) error {
	s.projectMu.RLock()
	defer s.projectMu.RUnlock()
	return s.proj.Save(dir)
}

// Load replaces the live Project with a freshly loaded one from dir. The
// Player keeps running against whatever Project is current, so a load
// that lands mid-playback takes effect atomically at the next callback
// (the writer lock guarantees no in-flight Produce observes a torn
// swap).
func (s *Session) Load(dir string) error {
	loaded, err := project.Load(dir)
	if err != nil {
		return err
	}

	s.projectMu.Lock()
	defer s.projectMu.Unlock()
	s.proj = loaded
	return nil
}

// LoadClip loads a WAV file into the Project's ClipStore.
func (s *Session) LoadClip(path string) (clipstore.ID, error) {
	s.projectMu.Lock()
	defer s.projectMu.Unlock()
	return s.proj.LoadWav(path)
}

// PlaceClip places an existing clip id onto a track.
func (s *Session) PlaceClip(trackIndex int, t track.Time, id clipstore.ID) error {
	s.projectMu.Lock()
	defer s.projectMu.Unlock()
	_, err := s.proj.PlaceClip(trackIndex, t, id)
	return err
}

// ExportWav renders the Project's timeline to a WAV file.
func (s *Session) ExportWav(path string) error {
	s.projectMu.RLock()
	defer s.projectMu.RUnlock()
	return s.proj.ExportWav(path)
}
