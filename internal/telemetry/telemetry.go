// Package telemetry optionally broadcasts transport state to an external
// timeline-editor UI over OSC. It is fire-and-forget: failures are logged
// and never propagate, since telemetry is a convenience, not part of the
// engine's contract.
package telemetry

import (
	"log"

	"github.com/hypebeast/go-osc/osc"

	"github.com/branchpanic/operator/internal/track"
)

// Notifier sends transport updates to a listening OSC client. A nil
// *Notifier is valid and every method on it is a no-op, so callers can
// hold one unconditionally instead of branching on "telemetry enabled".
type Notifier struct {
	client *osc.Client
}

// New returns a Notifier that sends to host:port.
func New(host string, port int) *Notifier {
	return &Notifier{client: osc.NewClient(host, port)}
}

func (n *Notifier) send(address string, logFormat string, params ...interface{}) {
	if n == nil || n.client == nil {
		return
	}

	msg := osc.NewMessage(address)
	for _, p := range params {
		msg.Append(p)
	}

	if err := n.client.Send(msg); err != nil {
		log.Printf("telemetry: error sending %s: %v", address, err)
		return
	}
	if logFormat != "" {
		log.Printf(logFormat, params...)
	}
}

// PlaybackState notifies listeners that playback turned on or off.
func (n *Notifier) PlaybackState(playing bool) {
	playingInt := int32(0)
	if playing {
		playingInt = 1
	}
	n.send("/operator/playback", "telemetry: playback %d", playingInt)
}

// Playhead notifies listeners of the current transport position, in
// samples.
func (n *Notifier) Playhead(t track.Time) {
	n.send("/operator/playhead", "", int64(t))
}

// RecordingState notifies listeners that recording armed/disarmed on the
// given track index.
func (n *Notifier) RecordingState(recording bool, armedTrack int) {
	recordingInt := int32(0)
	if recording {
		recordingInt = 1
	}
	n.send("/operator/recording", "telemetry: recording %d track=%d", recordingInt, int32(armedTrack))
}
