package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branchpanic/operator/internal/clip"
	"github.com/branchpanic/operator/internal/instrument"
	"github.com/branchpanic/operator/internal/player"
	"github.com/branchpanic/operator/internal/project"
	"github.com/branchpanic/operator/internal/track"
)

// newTestSession builds a Session without touching PortAudio, so the
// transport/record/project-delegation logic can be exercised without a
// real audio device. Session.Open (which does touch PortAudio) is
// exercised manually, not by this suite.
func newTestSession(t *testing.T) *Session {
	t.Helper()
	p := project.New(44100)
	s := &Session{
		proj: p,
		play: player.New(p.SampleRate),
	}
	s.play.SetHostFormat(44100, 128, 1)
	return s
}

func TestPlayPauseTogglesTransport(t *testing.T) {
	s := newTestSession(t)
	id := s.proj.ClipStore.Add(clip.New(make([]float32, 1000)))
	require.NoError(t, s.PlaceClip(0, 0, id))
	out := make([]float32, 128)

	s.Play()
	assert.Equal(t, track.Time(0), s.Time())
	s.callback(out)
	assert.Equal(t, track.Time(128), s.Time())

	s.Pause()
	s.callback(out)
	assert.Equal(t, track.Time(128), s.Time())
}

func TestSeekMovesPlayhead(t *testing.T) {
	s := newTestSession(t)
	s.Seek(100)
	assert.Equal(t, track.Time(100), s.Time())
}

func TestSetRecordingInsertsClipOnDisarm(t *testing.T) {
	s := newTestSession(t)
	s.Play()

	require.NoError(t, s.SetRecording(true, 1))

	sine := instrument.NewSine()
	sine.Init(44100)
	sine.HandleEvent(instrument.Event{Kind: instrument.NoteOn, Key: 69, Velocity: 100})
	s.SetInstrument(sine)

	out := make([]float32, 16)
	s.callback(out)

	require.NoError(t, s.SetRecording(false, 1))

	instances := s.proj.Timeline.Tracks[1].Instances()
	require.Len(t, instances, 1)
}

func TestPlaceClipAddsInstance(t *testing.T) {
	s := newTestSession(t)
	id := s.proj.ClipStore.Add(clip.New([]float32{1, 1, 1}))

	require.NoError(t, s.PlaceClip(0, 10, id))
	instances := s.proj.Timeline.Tracks[0].Instances()
	require.Len(t, instances, 1)
	assert.Equal(t, track.Time(10), instances[0].Time)
}

func TestLoadReplacesLiveProject(t *testing.T) {
	s := newTestSession(t)
	dir := t.TempDir()

	other := project.New(48000)
	require.NoError(t, other.Save(dir))

	require.NoError(t, s.Load(dir))
	assert.Equal(t, 48000, s.proj.SampleRate)
}

func TestLoadMissingDirectoryLeavesProjectUntouched(t *testing.T) {
	s := newTestSession(t)
	original := s.proj

	err := s.Load("/nonexistent/project/dir")
	assert.Error(t, err)
	assert.Same(t, original, s.proj)
}

func TestHandleNoteReachesWiredInstrument(t *testing.T) {
	s := newTestSession(t)
	sine := instrument.NewSine()
	sine.Init(44100)
	s.SetInstrument(sine)

	s.HandleNote(instrument.Event{Kind: instrument.NoteOn, Key: 60, Velocity: 100})
	sine.NextSample() // phase restarts at 0 on NoteOn, so the first sample is sin(0) = 0
	assert.NotEqual(t, float32(0), sine.NextSample())
}
