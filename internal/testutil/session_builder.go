package testutil

import (
	"context"

	"github.com/hupe1980/casemesh/core"
)

// SessionBuilder builds a *core.Session with state and history.
type SessionBuilder struct {
	id     string
	state  map[string]any
	events []core.Event
}

// NewSessionBuilder starts a session with the given id.
func NewSessionBuilder(id string) *SessionBuilder {
	return &SessionBuilder{id: id, state: map[string]any{}}
}

// State sets a state key.
func (b *SessionBuilder) State(key string, val any) *SessionBuilder {
	b.state[key] = val
	return b
}

// Events appends history events.
func (b *SessionBuilder) Events(evs ...core.Event) *SessionBuilder {
	b.events = append(b.events, evs...)
	return b
}

// UserTexts appends one user event per text.
func (b *SessionBuilder) UserTexts(texts ...string) *SessionBuilder {
	for _, t := range texts {
		b.events = append(b.events, NewEventBuilder().Author("user").UserText(t).Build())
	}

	return b
}

// Build returns the session.
func (b *SessionBuilder) Build() *core.Session {
	s := core.NewSession(b.id)
	s.ApplyStateDelta(b.state)

	for _, ev := range b.events {
		s.AddEvent(ev)
	}

	return s
}

// RunContext returns a run context over sess with no emit channel.
func RunContext(sess *core.Session, user core.Content) *core.RunContext {
	return core.NewRunContext(context.Background(), sess.ID, "run-1", core.AgentInfo{}, user,
		func(o *core.RunContextOptions) { o.Session = sess })
}
