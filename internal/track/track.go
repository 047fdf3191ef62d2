// Package track implements the per-track clip placement algorithm (spec
// section 4.3): an ordered-by-insertion list of clip placements that
// renders itself into a caller-supplied buffer, with a later-starting
// placement overwriting everything from its start onward.
package track

import (
	"github.com/branchpanic/operator/internal/clip"
	"github.com/branchpanic/operator/internal/clipstore"
)

// Time is a monotonic sample index, expressed in the project's native
// sample rate (spec section 3).
type Time int64

// ClipInstance is a placement of a clip at a time on a track.
type ClipInstance struct {
	Time   Time
	ClipID clipstore.ID
}

// Track is an ordered-by-insertion list of clip placements. Ordering is
// load-bearing: among instances covering the same window start, or sharing
// a start time, the one inserted later wins (spec section 4.3).
type Track struct {
	clips []ClipInstance
}

// New returns an empty track.
func New() *Track {
	return &Track{}
}

// AddClip appends a new placement and returns a pointer to it. The pointer
// refers to the track's current backing array: a later AddClip may
// reallocate that array, after which writes through the pointer no longer
// reach the track. MoveClip edits placements by index instead.
func (t *Track) AddClip(time Time, id clipstore.ID) *ClipInstance {
	t.clips = append(t.clips, ClipInstance{Time: time, ClipID: id})
	return &t.clips[len(t.clips)-1]
}

// Instances returns the track's placements in insertion order. Callers
// must not mutate the returned slice's backing array directly except via
// MoveClip.
func (t *Track) Instances() []ClipInstance {
	return t.clips
}

// MoveClip sets the time of the placement at instanceIndex, clamping to a
// non-negative value.
func (t *Track) MoveClip(instanceIndex int, newTime Time) bool {
	if instanceIndex < 0 || instanceIndex >= len(t.clips) {
		return false
	}
	if newTime < 0 {
		newTime = 0
	}
	t.clips[instanceIndex].Time = newTime
	return true
}

// clipLen resolves an instance's clip length via the store, or 0 if the
// referenced clip is absent. Callers skip such instances; nothing is
// logged.
func clipLen(store *clipstore.ClipStore[clip.Clip], inst ClipInstance) (int, bool) {
	c, ok := store.Get(inst.ClipID)
	if !ok {
		return 0, false
	}
	return c.Len(), true
}

func instEnd(store *clipstore.ClipStore[clip.Clip], inst ClipInstance) (Time, bool) {
	n, ok := clipLen(store, inst)
	if !ok {
		return 0, false
	}
	return inst.Time + Time(n), true
}

// Len returns the max end() over all instances with resolvable clips, or 0.
func (t *Track) Len(store *clipstore.ClipStore[clip.Clip]) Time {
	var maxEnd Time
	for _, inst := range t.clips {
		end, ok := instEnd(store, inst)
		if !ok {
			continue
		}
		if end > maxEnd {
			maxEnd = end
		}
	}
	return maxEnd
}

// ongoingAt returns the index of the latest-inserted instance whose range
// covers t, or -1.
func (tr *Track) ongoingAt(store *clipstore.ClipStore[clip.Clip], t Time) int {
	found := -1
	for i, inst := range tr.clips {
		end, ok := instEnd(store, inst)
		if !ok {
			continue
		}
		if inst.Time <= t && t < end {
			found = i // later insertions overwrite found, by iteration order
		}
	}
	return found
}

// nextClipAfter returns the index of the instance with the smallest start
// strictly greater than t, or -1. Ties in start time are broken toward the
// latest-inserted instance, matching the overwrite-on-overlap policy.
func (tr *Track) nextClipAfter(store *clipstore.ClipStore[clip.Clip], t Time) int {
	found := -1
	for i, inst := range tr.clips {
		if _, ok := instEnd(store, inst); !ok {
			continue
		}
		if inst.Time <= t {
			continue
		}
		if found == -1 || inst.Time < tr.clips[found].Time ||
			(inst.Time == tr.clips[found].Time && i > found) {
			found = i
		}
	}
	return found
}

// copyClipData copies up to maxCopy samples from clip data (starting at
// clipStart) into buf (starting at bufStart), bounded by whichever of the
// two runs out first.
func copyClipData(data []float32, buf []float32, clipStart, bufStart, maxCopy int) {
	if clipStart >= len(data) || bufStart >= len(buf) {
		return
	}
	clipSpace := len(data) - clipStart
	bufSpace := len(buf) - bufStart
	n := maxCopy
	if clipSpace < n {
		n = clipSpace
	}
	if bufSpace < n {
		n = bufSpace
	}
	if n <= 0 {
		return
	}
	copy(buf[bufStart:bufStart+n], data[clipStart:clipStart+n])
}

// Render writes exactly len(out) samples representing what this track
// produces for the half-open sample window [startTime, startTime+len(out)).
// Overlapping instances do not mix. The window opens with the tail of the
// latest-inserted instance covering startTime; each instance that starts
// later inside the window then overwrites the buffer from its start
// onward, so samples after its end are silent even where an earlier
// instance is still running (spec section 4.3).
func (tr *Track) Render(store *clipstore.ClipStore[clip.Clip], startTime Time, out []float32) {
	for i := range out {
		out[i] = 0
	}

	trackLen := tr.Len(store)
	if startTime >= trackLen {
		return
	}

	endTime := startTime + Time(len(out))

	if idx := tr.ongoingAt(store, startTime); idx != -1 {
		inst := tr.clips[idx]
		c, _ := store.Get(inst.ClipID)
		clipStart := int(startTime - inst.Time)
		copyClipData(c.Data, out, clipStart, 0, len(c.Data)-clipStart)
	}

	t := startTime
	for {
		idx := tr.nextClipAfter(store, t)
		if idx == -1 {
			break
		}
		inst := tr.clips[idx]
		t = inst.Time
		if t >= endTime {
			break
		}
		c, _ := store.Get(inst.ClipID)
		bufStart := int(t - startTime)
		for i := bufStart; i < len(out); i++ {
			out[i] = 0
		}
		copyClipData(c.Data, out, 0, bufStart, len(c.Data))
	}
}

// RenderAll renders the whole track from sample 0 through Len().
func (tr *Track) RenderAll(store *clipstore.ClipStore[clip.Clip]) []float32 {
	n := tr.Len(store)
	if n == 0 {
		return nil
	}
	buf := make([]float32, n)
	tr.Render(store, 0, buf)
	return buf
}
