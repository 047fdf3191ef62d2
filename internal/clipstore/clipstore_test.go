package clipstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddGet(t *testing.T) {
	s := New[string]()

	id1 := s.Add("first")
	id2 := s.Add("second")

	assert.NotEqual(t, id1, id2)

	v, ok := s.Get(id1)
	require.True(t, ok)
	assert.Equal(t, "first", v)

	v, ok = s.Get(id2)
	require.True(t, ok)
	assert.Equal(t, "second", v)
}

func TestGetAbsent(t *testing.T) {
	s := New[string]()
	_, ok := s.Get(ID(1234))
	assert.False(t, ok)
}

func TestIdsStayStableAfterRestore(t *testing.T) {
	s := New[string]()
	s.Restore(map[ID]string{5: "loaded"})

	newID := s.Add("fresh")
	assert.Greater(t, newID, ID(5))

	v, ok := s.Get(5)
	require.True(t, ok)
	assert.Equal(t, "loaded", v)
}

func TestLen(t *testing.T) {
	s := New[int]()
	assert.Equal(t, 0, s.Len())
	s.Add(1)
	s.Add(2)
	assert.Equal(t, 2, s.Len())
}
