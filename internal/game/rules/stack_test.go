package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriggerStackIsLastInFirstOut(t *testing.T) {
	s := NewTriggerStack()
	_, err := s.Pop()
	assert.ErrorIs(t, err, ErrStackEmpty)

	s.PushAll([]PendingTrigger{
		{ID: "ap", ControllerID: "Alice"},
		{ID: "nap", ControllerID: "Bob"},
	})
	s.Push(PendingTrigger{ID: "late", ControllerID: "Alice"})
	require.Equal(t, 3, s.Len())

	top, ok := s.Peek()
	require.True(t, ok)
	assert.Equal(t, "late", top.ID)

	for _, want := range []string{"late", "nap", "ap"} {
		got, err := s.Pop()
		require.NoError(t, err)
		assert.Equal(t, want, got.ID)
	}
	_, ok = s.Peek()
	assert.False(t, ok)
}

func TestTriggerStackRemove(t *testing.T) {
	s := NewTriggerStack()
	s.PushAll([]PendingTrigger{
		{ID: "a", SourceID: "warden"},
		{ID: "b", SourceID: "artist"},
		{ID: "c", SourceID: "warden"},
	})

	removed, ok := s.Remove("b")
	require.True(t, ok)
	assert.Equal(t, "artist", removed.SourceID)
	_, ok = s.Remove("b")
	assert.False(t, ok)

	dropped := s.RemoveWhere(func(t PendingTrigger) bool { return t.SourceID == "warden" })
	assert.Equal(t, []string{"a", "c"}, dropped)
	assert.Empty(t, s.List())
}
