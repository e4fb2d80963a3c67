package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolContext_Identity(t *testing.T) {
	rc, _, _, _ := newRunContextForTest(t)
	tc := NewToolContext(rc, "call-1")

	assert.Equal(t, "call-1", tc.FunctionCallID())
	assert.Equal(t, "sess-x", tc.SessionID())
	assert.Equal(t, "run-x", tc.RunID())
	assert.Equal(t, "Detective", tc.AgentName())
	assert.Equal(t, rc.Context, tc.Context())
}

func TestToolContext_StateOverlay(t *testing.T) {
	rc, _, _, _ := newRunContextForTest(t)
	rc.Session.ApplyStateDelta(map[string]any{"last_case": "CASO-001"})

	tc := NewToolContext(rc, "call-1")

	v, ok := tc.GetState("last_case")
	require.True(t, ok)
	assert.Equal(t, "CASO-001", v)

	tc.SetState("last_case", "CASO-002")
	v, _ = tc.GetState("last_case")
	assert.Equal(t, "CASO-002", v)

	// run context untouched until the response event is applied
	v, _ = rc.GetState("last_case")
	assert.Equal(t, "CASO-001", v)
}

func TestToolContext_ApplyActions(t *testing.T) {
	rc, _, _, artifacts := newRunContextForTest(t)
	tc := NewToolContext(rc, "call-1")

	tc.SetState("k", 1)
	require.NoError(t, tc.SaveArtifact("RPT-1.json", []byte("abc")))
	tc.SkipSummarization()

	ev := NewFunctionResponseEvent(rc.RunID, rc.Agent.Name, "call-1", "create_case_report", "ok", nil)
	tc.ApplyActions(&ev)

	assert.Equal(t, 1, ev.Actions.StateDelta["k"])
	assert.Equal(t, 3, ev.Actions.ArtifactDelta["RPT-1.json"])
	require.NotNil(t, ev.Actions.SkipSummarization)
	assert.True(t, *ev.Actions.SkipSummarization)
	assert.Equal(t, []byte("abc"), artifacts.saved["sess-x"]["RPT-1.json"])

	data, err := tc.LoadArtifact("RPT-1.json")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), data)
}

func TestToolContext_Standalone(t *testing.T) {
	tc := NewStandaloneToolContext(context.Background(), nil, "mcp-1")

	assert.Empty(t, tc.SessionID())
	assert.Empty(t, tc.RunID())
	assert.Empty(t, tc.AgentName())
	assert.False(t, tc.HasArtifactStore())

	tc.SetState("x", "y")
	v, ok := tc.GetState("x")
	require.True(t, ok)
	assert.Equal(t, "y", v)

	require.ErrorIs(t, tc.SaveArtifact("a", []byte("b")), ErrNoArtifactStore)
	_, err := tc.LoadArtifact("a")
	require.ErrorIs(t, err, ErrNoArtifactStore)

	ev := NewEvent("", "")
	tc.ApplyActions(&ev)
	assert.Equal(t, "y", ev.Actions.StateDelta["x"])
	assert.Nil(t, ev.Actions.ArtifactDelta)
}
