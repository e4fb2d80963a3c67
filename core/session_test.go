package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_ApplyStateDeltaAndClone(t *testing.T) {
	s := NewSession("s1")
	s.ApplyStateDelta(map[string]any{"a": 1, "b": "x"})

	v, ok := s.GetState("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	clone := s.Clone()
	assert.NotSame(t, s, clone)

	clone.ApplyStateDelta(map[string]any{"c": 2})

	_, exists := s.GetState("c")
	assert.False(t, exists, "original must not see clone's keys")

	snap := s.StateSnapshot()
	snap["a"] = 99
	v, _ = s.GetState("a")
	assert.Equal(t, 1, v, "snapshot must be a copy")
}

func TestSession_AddEventAndHistory(t *testing.T) {
	partial := true
	streaming := NewMessageEvent("run-1", "Detective", "Bus")
	streaming.Partial = &partial

	s := NewSession("s2")
	s.AddEvent(NewUserContentEvent("run-1", &Content{Role: "user", Parts: []Part{TextPart{Text: "hola"}}}))
	s.AddEvent(streaming)
	s.AddEvent(NewMessageEvent("run-1", "Detective", "Buscando el caso"))
	s.AddEvent(NewFunctionResponseEvent("run-1", "Detective", "call-1", "get_case_details", map[string]any{"id": "CASO-001"}, nil))
	s.AddEvent(NewErrorEvent("run-1", "boom", "failure"))

	all := s.GetEvents()
	require.Len(t, all, 5)

	all[0].Author = "changed"
	assert.Equal(t, "user", s.GetEvents()[0].Author, "events must be copied on read")

	history := s.ConversationHistory()
	require.Len(t, history, 3)
	assert.Equal(t, "user", history[0].Content.Role)
	assert.Equal(t, "assistant", history[1].Content.Role)
	assert.Equal(t, "tool", history[2].Content.Role)
}
