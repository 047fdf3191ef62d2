// Package player implements the real-time sample producer (spec section
// 4.7): it pulls from the Project's timeline and instrument each audio
// callback, resampling from the project's native rate to whatever rate
// the host negotiated.
package player

import (
	"log"

	"github.com/branchpanic/operator/internal/clip"
	"github.com/branchpanic/operator/internal/clipstore"
	"github.com/branchpanic/operator/internal/instrument"
	"github.com/branchpanic/operator/internal/timeline"
	"github.com/branchpanic/operator/internal/track"
)

// Player holds the transport and the scratch buffers produce needs, none
// of which are safe to share without external synchronization (the caller
// — internal/session — takes a single mutex around every Player method,
// including Produce).
type Player struct {
	playhead    track.Time
	playing     bool
	recording   bool
	armedTrack  int
	recordStart track.Time
	recordBuf   []float32

	scratch []float32

	hostSampleRate   int
	hostBufferFrames int
	hostChannels     int

	projectSampleRate int
}

// New returns a paused, non-recording Player configured for the given
// project sample rate.
func New(projectSampleRate int) *Player {
	return &Player{
		projectSampleRate: projectSampleRate,
		armedTrack:        -1,
	}
}

// SetHostFormat records the negotiated host stream parameters. Must be
// called before the first Produce.
func (p *Player) SetHostFormat(sampleRate, bufferFrames, channels int) {
	p.hostSampleRate = sampleRate
	p.hostBufferFrames = bufferFrames
	p.hostChannels = channels
}

func (p *Player) SetPlaying(on bool) {
	p.playing = on
}

func (p *Player) Seek(t track.Time) {
	if t < 0 {
		t = 0
	}
	p.playhead = t
}

func (p *Player) Time() track.Time {
	return p.playhead
}

// SetRecording toggles record arming (spec section 4.7 recording
// lifecycle). Toggling to the current state is a no-op. Turning recording
// off with captured audio hands the caller that audio and the track it
// should land on, for insertion into the ClipStore under the writer lock;
// the caller (Session) does that insertion, not the Player, since the
// Player never touches the ClipStore itself.
func (p *Player) SetRecording(on bool, armedTrack int) (finishedClip []float32, finishedTrack int, recordStart track.Time) {
	if on == p.recording {
		return nil, 0, 0
	}

	if on {
		p.recording = true
		p.armedTrack = armedTrack
		p.recordStart = p.playhead
		p.recordBuf = p.recordBuf[:0]
		return nil, 0, 0
	}

	p.recording = false
	if len(p.recordBuf) == 0 {
		return nil, 0, 0
	}

	finishedClip = p.recordBuf
	finishedTrack = p.armedTrack
	recordStart = p.recordStart
	p.recordBuf = nil
	return finishedClip, finishedTrack, recordStart
}

func (p *Player) growScratch(n int) {
	if cap(p.scratch) >= n {
		p.scratch = p.scratch[:n]
		return
	}
	log.Printf("player: growing scratch buffer %d -> %d, possible audio glitch", cap(p.scratch), n)
	p.scratch = make([]float32, n)
}

func clampSample(s float32) float32 {
	if s > 1 {
		return 1
	}
	if s < -1 {
		return -1
	}
	return s
}

// Produce is called from the audio host callback (the real-time thread).
// outBuf holds hostChannels-interleaved frames; N = len(outBuf)/hostChannels.
// tl and store are read under the caller's reader lock for the duration of
// this call only. inst is whichever instrument is currently wired in.
func (p *Player) Produce(outBuf []float32, hostChannels int, tl *timeline.Timeline, store *clipstore.ClipStore[clip.Clip], inst instrument.Instrument) {
	if hostChannels <= 0 || len(outBuf)%hostChannels != 0 {
		for i := range outBuf {
			outBuf[i] = 0
		}
		return
	}

	n := len(outBuf) / hostChannels
	ratio := float64(p.projectSampleRate) / float64(p.hostSampleRate)
	sourceN := int(ratio*float64(n) + 0.5)
	if sourceN <= 0 {
		sourceN = 1
	}

	p.growScratch(sourceN)

	if p.playing {
		tl.Render(store, p.playhead, p.scratch[:sourceN])
		p.playhead += track.Time(sourceN)

		tlLen := tl.Len(store)
		if p.playhead > tlLen && !p.recording {
			p.playhead = 0
		}
	} else {
		for i := 0; i < sourceN; i++ {
			p.scratch[i] = 0
		}
	}

	for i := 0; i < sourceN; i++ {
		s := float32(0)
		if inst != nil {
			s = inst.NextSample()
		}
		p.scratch[i] = clampSample(p.scratch[i] + s)

		if p.playing && p.recording {
			p.recordBuf = append(p.recordBuf, s)
		}
	}

	if p.projectSampleRate == p.hostSampleRate {
		for i := 0; i < n; i++ {
			frame := p.scratch[i]
			for c := 0; c < hostChannels; c++ {
				outBuf[i*hostChannels+c] = frame
			}
		}
		return
	}

	// Linear interpolation resample: stride through scratch at `ratio`
	// source-samples per output frame.
	for i := 0; i < n; i++ {
		srcPos := float64(i) * ratio
		idx := int(srcPos)
		frac := float32(srcPos - float64(idx))

		var a, b float32
		if idx < sourceN {
			a = p.scratch[idx]
		}
		if idx+1 < sourceN {
			b = p.scratch[idx+1]
		} else {
			b = a
		}

		frame := a + (b-a)*frac
		for c := 0; c < hostChannels; c++ {
			outBuf[i*hostChannels+c] = frame
		}
	}
}

// HandleNote forwards a performance event straight to the wired-in
// instrument; it runs on the control thread but the instrument itself may
// be touched concurrently by Produce, so callers hold the Player mutex
// across this call exactly as they do across Produce.
func (p *Player) HandleNote(inst instrument.Instrument, e instrument.Event) {
	if inst == nil {
		return
	}
	inst.HandleEvent(e)
}
