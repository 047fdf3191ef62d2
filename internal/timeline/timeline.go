// Package timeline composes tracks into the full mix the player pulls
// samples from (spec section 4.4). Unlike a single track's overwrite
// policy, a timeline sums its tracks sample-by-sample and clamps to
// [-1, 1].
package timeline

import (
	"github.com/branchpanic/operator/internal/clip"
	"github.com/branchpanic/operator/internal/clipstore"
	"github.com/branchpanic/operator/internal/track"
)

// Timeline is an ordered list of tracks, mixed together on render.
type Timeline struct {
	Tracks []*track.Track
}

// New returns a timeline with n empty tracks.
func New(n int) *Timeline {
	tl := &Timeline{Tracks: make([]*track.Track, n)}
	for i := range tl.Tracks {
		tl.Tracks[i] = track.New()
	}
	return tl
}

// AddTrack appends a new empty track and returns its index.
func (tl *Timeline) AddTrack() int {
	tl.Tracks = append(tl.Tracks, track.New())
	return len(tl.Tracks) - 1
}

// clamp restricts s to [-1, 1].
func clamp(s float32) float32 {
	if s > 1 {
		return 1
	}
	if s < -1 {
		return -1
	}
	return s
}

// mix sums corresponding samples from each buffer and clamps the result.
// All buffers must share out's length.
func mix(out []float32, bufs [][]float32) {
	for i := range out {
		var sum float32
		for _, buf := range bufs {
			sum += buf[i]
		}
		out[i] = clamp(sum)
	}
}

// Render writes the mix of every track for the window
// [startTime, startTime+len(out)) into out.
func (tl *Timeline) Render(store *clipstore.ClipStore[clip.Clip], startTime track.Time, out []float32) {
	tl.RenderExclude(store, startTime, out, -1)
}

// RenderExclude is Render but omits the track at excludeIndex from the mix.
// Render calls it with -1, which excludes nothing; no other caller in the
// engine uses it (Player renders through Render).
func (tl *Timeline) RenderExclude(store *clipstore.ClipStore[clip.Clip], startTime track.Time, out []float32, excludeIndex int) {
	for i := range out {
		out[i] = 0
	}

	bufs := make([][]float32, 0, len(tl.Tracks))
	for i, tr := range tl.Tracks {
		if i == excludeIndex {
			continue
		}
		buf := make([]float32, len(out))
		tr.Render(store, startTime, buf)
		bufs = append(bufs, buf)
	}

	mix(out, bufs)
}

// Len returns the longest track's length.
func (tl *Timeline) Len(store *clipstore.ClipStore[clip.Clip]) track.Time {
	var maxLen track.Time
	for _, tr := range tl.Tracks {
		if n := tr.Len(store); n > maxLen {
			maxLen = n
		}
	}
	return maxLen
}

// RenderAll renders the full mixed timeline from sample 0 through Len().
func (tl *Timeline) RenderAll(store *clipstore.ClipStore[clip.Clip]) []float32 {
	n := tl.Len(store)
	if n == 0 {
		return nil
	}
	buf := make([]float32, n)
	tl.Render(store, 0, buf)
	return buf
}
