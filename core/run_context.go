package core

import (
	"context"
	"errors"
	"maps"

	"github.com/hupe1980/casemesh/logging"
)

// ErrNoArtifactStore is returned by artifact helpers when the run has no store.
var ErrNoArtifactStore = errors.New("artifact store not configured")

// RunContext is the per-run scope handed to an agent. It bundles the
// cancellation context, identifiers, the user input, the emit / resume
// channel pair shared with the runner, backing stores, the working session
// snapshot and the staged state / artifact deltas.
//
// SetState and AddArtifact stage changes; EmitEvent attaches them to the next
// event so the runner applies them after persistence.
type RunContext struct {
	Context       context.Context
	SessionID     string
	RunID         string
	Agent         AgentInfo
	UserContent   Content
	Emit          chan<- Event
	Resume        <-chan struct{}
	SessionStore  SessionStore
	ArtifactStore ArtifactStore
	Limiter       *ModelLimiter
	Session       *Session
	StateDelta    map[string]any
	Artifacts     []string

	*loggerAdapter
}

// RunContextOptions carries the optional collaborators of a RunContext.
type RunContextOptions struct {
	MaxModelCalls int
	Emit          chan<- Event
	Resume        <-chan struct{}
	Session       *Session
	SessionStore  SessionStore
	ArtifactStore ArtifactStore
	Logger        logging.Logger
}

// NewRunContext builds a RunContext with empty deltas.
func NewRunContext(ctx context.Context, sessionID, runID string, agent AgentInfo, userContent Content, optFns ...func(o *RunContextOptions)) *RunContext {
	opts := RunContextOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &RunContext{
		Context:       ctx,
		SessionID:     sessionID,
		RunID:         runID,
		Agent:         agent,
		UserContent:   userContent,
		Emit:          opts.Emit,
		Resume:        opts.Resume,
		SessionStore:  opts.SessionStore,
		ArtifactStore: opts.ArtifactStore,
		Limiter:       NewModelLimiter(opts.MaxModelCalls),
		Session:       opts.Session,
		StateDelta:    map[string]any{},
		Artifacts:     []string{},
		loggerAdapter: newLoggerAdapter(opts.Logger),
	}
}

// Done is closed when the run is cancelled.
func (rc *RunContext) Done() <-chan struct{} { return rc.Context.Done() }

// Err returns the cancellation cause, if any.
func (rc *RunContext) Err() error { return rc.Context.Err() }

// GetState returns the staged value for k, falling back to the session.
func (rc *RunContext) GetState(k string) (any, bool) {
	if v, ok := rc.StateDelta[k]; ok {
		return v, true
	}

	if rc.Session != nil {
		return rc.Session.GetState(k)
	}

	return nil, false
}

// SetState stages a state change.
func (rc *RunContext) SetState(k string, v any) { rc.StateDelta[k] = v }

// AddArtifact stages an artifact id for the next emitted event.
func (rc *RunContext) AddArtifact(id string) { rc.Artifacts = append(rc.Artifacts, id) }

// SaveArtifact writes data to the artifact store and stages its id.
func (rc *RunContext) SaveArtifact(id string, data []byte) error {
	if rc.ArtifactStore == nil {
		return ErrNoArtifactStore
	}

	if err := rc.ArtifactStore.Save(rc.SessionID, id, data); err != nil {
		return err
	}

	rc.AddArtifact(id)

	return nil
}

// GetArtifact reads a saved artifact.
func (rc *RunContext) GetArtifact(id string) ([]byte, error) {
	if rc.ArtifactStore == nil {
		return nil, ErrNoArtifactStore
	}

	return rc.ArtifactStore.Get(rc.SessionID, id)
}

// RefreshSession reloads the session snapshot from the store.
func (rc *RunContext) RefreshSession() error {
	if rc.SessionStore == nil {
		return errors.New("session store not configured")
	}

	s, err := rc.SessionStore.Get(rc.SessionID)
	if err != nil {
		return err
	}

	rc.Session = s

	return nil
}

// History returns the conversation history of the working session.
func (rc *RunContext) History() []Event {
	if rc.Session == nil {
		return nil
	}

	return rc.Session.ConversationHistory()
}

// EmitEvent attaches the staged deltas to ev, sends it to the runner and
// clears the buffers.
func (rc *RunContext) EmitEvent(ev Event) error {
	if rc.Emit == nil {
		return errors.New("emit channel not configured")
	}

	if len(rc.StateDelta) > 0 {
		if ev.Actions.StateDelta == nil {
			ev.Actions.StateDelta = map[string]any{}
		}

		maps.Copy(ev.Actions.StateDelta, rc.StateDelta)
	}

	if len(rc.Artifacts) > 0 {
		if ev.Actions.ArtifactDelta == nil {
			ev.Actions.ArtifactDelta = map[string]int{}
		}

		for _, id := range rc.Artifacts {
			ev.Actions.ArtifactDelta[id]++
		}
	}

	select {
	case <-rc.Context.Done():
		return rc.Context.Err()
	case rc.Emit <- ev:
	}

	rc.StateDelta = map[string]any{}
	rc.Artifacts = []string{}

	return nil
}

// WaitForResume blocks until the runner has persisted the last event.
func (rc *RunContext) WaitForResume() error {
	if rc.Resume == nil {
		return nil
	}

	select {
	case <-rc.Resume:
		return nil
	case <-rc.Context.Done():
		return rc.Context.Err()
	}
}
