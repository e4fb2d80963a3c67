// Package testutil has builders for events and sessions used in tests.
package testutil

import (
	"github.com/hupe1980/casemesh/core"
)

// EventBuilder builds core.Event values fluently:
//
//	ev := testutil.NewEventBuilder().Author("Detective").AssistantText("listo").Build()
type EventBuilder struct {
	author        string
	runID         string
	role          string
	textParts     []string
	funcCalls     []core.FunctionCall
	funcResponses []core.FunctionResponse
	partial       *bool
	stateDelta    map[string]any
}

// NewEventBuilder starts an event authored by "agent" in run "run-1".
func NewEventBuilder() *EventBuilder { return &EventBuilder{author: "agent", runID: "run-1"} }

// Author sets the author.
func (b *EventBuilder) Author(a string) *EventBuilder { b.author = a; return b }

// Run sets the run id.
func (b *EventBuilder) Run(id string) *EventBuilder { b.runID = id; return b }

// Partial marks the event as a streaming fragment.
func (b *EventBuilder) Partial() *EventBuilder { p := true; b.partial = &p; return b }

// UserText appends a text part with role user.
func (b *EventBuilder) UserText(t string) *EventBuilder {
	b.role = "user"
	b.textParts = append(b.textParts, t)

	return b
}

// AssistantText appends a text part with role assistant.
func (b *EventBuilder) AssistantText(t string) *EventBuilder {
	b.role = "assistant"
	b.textParts = append(b.textParts, t)

	return b
}

// FunctionCall appends a call with JSON arguments.
func (b *EventBuilder) FunctionCall(id, name, args string) *EventBuilder {
	b.role = "assistant"
	b.funcCalls = append(b.funcCalls, core.FunctionCall{ID: id, Name: name, Arguments: args})

	return b
}

// FunctionResponse appends a tool result and switches the role to tool.
func (b *EventBuilder) FunctionResponse(id, name string, result any) *EventBuilder {
	b.role = "tool"
	b.funcResponses = append(b.funcResponses, core.FunctionResponse{ID: id, Name: name, Response: result})

	return b
}

// State adds a state delta entry.
func (b *EventBuilder) State(key string, val any) *EventBuilder {
	if b.stateDelta == nil {
		b.stateDelta = map[string]any{}
	}

	b.stateDelta[key] = val

	return b
}

// Build returns the event.
func (b *EventBuilder) Build() core.Event {
	ev := core.NewEvent(b.runID, b.author)
	ev.Partial = b.partial
	ev.Actions.StateDelta = b.stateDelta

	parts := make([]core.Part, 0, len(b.textParts)+len(b.funcCalls)+len(b.funcResponses))
	for _, t := range b.textParts {
		parts = append(parts, core.TextPart{Text: t})
	}

	for _, fc := range b.funcCalls {
		parts = append(parts, core.FunctionCallPart{FunctionCall: fc})
	}

	for _, fr := range b.funcResponses {
		parts = append(parts, core.FunctionResponsePart{FunctionResponse: fr})
	}

	if len(parts) > 0 {
		role := b.role
		if role == "" {
			role = "assistant"
		}

		ev.Content = &core.Content{Role: role, Parts: parts}
	}

	return ev
}
