package core

import (
	"context"
	"maps"

	"github.com/hupe1980/casemesh/logging"
)

// ToolContext is the scope a tool sees for one call. It buffers the call's
// side effects (state and artifact deltas) in EventActions until the flow
// attaches them to the function response event.
//
// A ToolContext created with NewStandaloneToolContext has no run behind it
// (e.g. a direct MCP request): state is local to the call and artifact
// helpers return ErrNoArtifactStore.
type ToolContext struct {
	ctx            context.Context
	runCtx         *RunContext
	functionCallID string
	actions        EventActions
	localState     map[string]any

	*loggerAdapter
}

// NewToolContext binds a tool call to the run.
func NewToolContext(runCtx *RunContext, functionCallID string) *ToolContext {
	return &ToolContext{
		ctx:            runCtx.Context,
		runCtx:         runCtx,
		functionCallID: functionCallID,
		loggerAdapter:  newLoggerAdapter(runCtx.Logger()),
	}
}

// NewStandaloneToolContext returns a context for a tool call outside any run.
func NewStandaloneToolContext(ctx context.Context, logger logging.Logger, functionCallID string) *ToolContext {
	return &ToolContext{
		ctx:            ctx,
		functionCallID: functionCallID,
		localState:     map[string]any{},
		loggerAdapter:  newLoggerAdapter(logger),
	}
}

// Context returns the call's cancellation context.
func (tc *ToolContext) Context() context.Context { return tc.ctx }

// FunctionCallID returns the id correlating the model call and this execution.
func (tc *ToolContext) FunctionCallID() string { return tc.functionCallID }

// SessionID returns the session id, or "" outside a run.
func (tc *ToolContext) SessionID() string {
	if tc.runCtx == nil {
		return ""
	}

	return tc.runCtx.SessionID
}

// RunID returns the run id, or "" outside a run.
func (tc *ToolContext) RunID() string {
	if tc.runCtx == nil {
		return ""
	}

	return tc.runCtx.RunID
}

// AgentName returns the owning agent's name, or "" outside a run.
func (tc *ToolContext) AgentName() string {
	if tc.runCtx == nil {
		return ""
	}

	return tc.runCtx.Agent.Name
}

// GetState reads state, preferring values set during this call.
func (tc *ToolContext) GetState(k string) (any, bool) {
	if v, ok := tc.actions.StateDelta[k]; ok {
		return v, true
	}

	if tc.runCtx == nil {
		v, ok := tc.localState[k]
		return v, ok
	}

	return tc.runCtx.GetState(k)
}

// SetState records a state change for the function response event.
func (tc *ToolContext) SetState(k string, v any) {
	if tc.actions.StateDelta == nil {
		tc.actions.StateDelta = map[string]any{}
	}

	tc.actions.StateDelta[k] = v

	if tc.runCtx == nil {
		tc.localState[k] = v
	}
}

// HasArtifactStore reports whether SaveArtifact can succeed.
func (tc *ToolContext) HasArtifactStore() bool {
	return tc.runCtx != nil && tc.runCtx.ArtifactStore != nil
}

// SaveArtifact stores data for the session and records its size.
func (tc *ToolContext) SaveArtifact(id string, data []byte) error {
	if !tc.HasArtifactStore() {
		return ErrNoArtifactStore
	}

	if err := tc.runCtx.ArtifactStore.Save(tc.runCtx.SessionID, id, data); err != nil {
		return err
	}

	if tc.actions.ArtifactDelta == nil {
		tc.actions.ArtifactDelta = map[string]int{}
	}

	tc.actions.ArtifactDelta[id] = len(data)

	tc.LogDebug("tool.artifact.saved", "artifact_id", id, "bytes", len(data), "fc_id", tc.functionCallID)

	return nil
}

// LoadArtifact reads a session artifact.
func (tc *ToolContext) LoadArtifact(id string) ([]byte, error) {
	if !tc.HasArtifactStore() {
		return nil, ErrNoArtifactStore
	}

	return tc.runCtx.ArtifactStore.Get(tc.runCtx.SessionID, id)
}

// SkipSummarization marks the function response as final.
func (tc *ToolContext) SkipSummarization() {
	b := true
	tc.actions.SkipSummarization = &b
}

// Actions returns the buffered actions.
func (tc *ToolContext) Actions() *EventActions { return &tc.actions }

// ApplyActions copies the buffered actions onto ev.
func (tc *ToolContext) ApplyActions(ev *Event) {
	if len(tc.actions.StateDelta) > 0 {
		if ev.Actions.StateDelta == nil {
			ev.Actions.StateDelta = map[string]any{}
		}

		maps.Copy(ev.Actions.StateDelta, tc.actions.StateDelta)
	}

	if len(tc.actions.ArtifactDelta) > 0 {
		if ev.Actions.ArtifactDelta == nil {
			ev.Actions.ArtifactDelta = map[string]int{}
		}

		maps.Copy(ev.Actions.ArtifactDelta, tc.actions.ArtifactDelta)
	}

	if tc.actions.SkipSummarization != nil {
		ev.Actions.SkipSummarization = tc.actions.SkipSummarization
	}
}
