package track

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branchpanic/operator/internal/clip"
	"github.com/branchpanic/operator/internal/clipstore"
)

func newStoreWith(t *testing.T, clips ...[]float32) (*clipstore.ClipStore[clip.Clip], []clipstore.ID) {
	t.Helper()
	store := clipstore.New[clip.Clip]()
	ids := make([]clipstore.ID, len(clips))
	for i, data := range clips {
		ids[i] = store.Add(clip.New(data))
	}
	return store, ids
}

func TestAddClipReturnsStablePointer(t *testing.T) {
	tr := New()
	inst := tr.AddClip(0, clipstore.ID(1))
	inst.Time = 5
	require.Len(t, tr.Instances(), 1)
	assert.Equal(t, Time(5), tr.Instances()[0].Time)
}

func TestLastClipWinsOnOverlap(t *testing.T) {
	store, ids := newStoreWith(t, []float32{1, 1, 1, 1}, []float32{2, 2})
	tr := New()
	tr.AddClip(0, ids[0])
	tr.AddClip(1, ids[1])

	out := make([]float32, 4)
	tr.Render(store, 0, out)
	assert.Equal(t, []float32{1, 2, 2, 0}, out)
}

func TestOngoingAtFindsLatestCoveringInstance(t *testing.T) {
	store, ids := newStoreWith(t, []float32{1, 1, 1, 1, 1}, []float32{2, 2, 2})
	tr := New()
	tr.AddClip(0, ids[0])
	tr.AddClip(1, ids[1])

	assert.Equal(t, 1, tr.ongoingAt(store, 2))
	assert.Equal(t, 1, tr.ongoingAt(store, 3))
	assert.Equal(t, -1, tr.ongoingAt(store, 10))
}

func TestNextClipAfterTieBreaksToLatestInsertion(t *testing.T) {
	store, ids := newStoreWith(t, []float32{1}, []float32{2})
	tr := New()
	tr.AddClip(5, ids[0])
	tr.AddClip(5, ids[1])

	idx := tr.nextClipAfter(store, 0)
	require.NotEqual(t, -1, idx)
	assert.Equal(t, ids[1], tr.clips[idx].ClipID)
}

func TestRenderNonOverlappingPlayback(t *testing.T) {
	store, ids := newStoreWith(t, []float32{1, 1}, []float32{2, 2, 2})
	tr := New()
	tr.AddClip(0, ids[0])
	tr.AddClip(3, ids[1])

	out := make([]float32, 6)
	tr.Render(store, 0, out)
	assert.Equal(t, []float32{1, 1, 0, 2, 2, 2}, out)
}

func TestRenderOverlapLaterDominates(t *testing.T) {
	store, ids := newStoreWith(t, []float32{1, 1, 1, 1, 1}, []float32{9, 9})
	tr := New()
	tr.AddClip(0, ids[0])
	tr.AddClip(2, ids[1])

	out := make([]float32, 5)
	tr.Render(store, 0, out)
	assert.Equal(t, []float32{1, 1, 9, 9, 0}, out)
}

func TestRenderOverlapShortClipTruncatesIntoSilence(t *testing.T) {
	store, ids := newStoreWith(t, []float32{1, 1, 1, 1, 1, 1}, []float32{9})
	tr := New()
	tr.AddClip(0, ids[0])
	tr.AddClip(2, ids[1])

	out := make([]float32, 6)
	tr.Render(store, 0, out)
	assert.Equal(t, []float32{1, 1, 9, 0, 0, 0}, out)
}

func TestRenderPastTrackEndReturnsZeros(t *testing.T) {
	store, ids := newStoreWith(t, []float32{1, 1})
	tr := New()
	tr.AddClip(0, ids[0])

	out := []float32{7, 7, 7}
	tr.Render(store, 10, out)
	assert.Equal(t, []float32{0, 0, 0}, out)
}

func TestRenderMidClipStartOffset(t *testing.T) {
	store, ids := newStoreWith(t, []float32{1, 2, 3, 4, 5})
	tr := New()
	tr.AddClip(0, ids[0])

	out := make([]float32, 3)
	tr.Render(store, 2, out)
	assert.Equal(t, []float32{3, 4, 5}, out)
}

func TestLenTracksLatestInstanceEnd(t *testing.T) {
	store, ids := newStoreWith(t, []float32{1, 1}, []float32{2, 2, 2})
	tr := New()
	tr.AddClip(0, ids[0])
	tr.AddClip(10, ids[1])
	assert.Equal(t, Time(13), tr.Len(store))
}

func TestRenderAllProducesFullTrack(t *testing.T) {
	store, ids := newStoreWith(t, []float32{1, 1})
	tr := New()
	tr.AddClip(0, ids[0])

	out := tr.RenderAll(store)
	assert.Equal(t, []float32{1, 1}, out)
}

func TestMoveClipClampsToZero(t *testing.T) {
	tr := New()
	tr.AddClip(5, clipstore.ID(1))
	ok := tr.MoveClip(0, -100)
	require.True(t, ok)
	assert.Equal(t, Time(0), tr.Instances()[0].Time)
}

func TestMoveClipOutOfRangeFails(t *testing.T) {
	tr := New()
	tr.AddClip(5, clipstore.ID(1))
	assert.False(t, tr.MoveClip(3, 0))
}
