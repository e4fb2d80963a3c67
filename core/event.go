package core

import (
	"time"

	"github.com/hupe1980/casemesh/internal/util"
)

// EventActions are side effects the runner applies after persisting an event.
type EventActions struct {
	SkipSummarization *bool          `json:"skip_summarization,omitempty"`
	StateDelta        map[string]any `json:"state_delta,omitempty"`
	ArtifactDelta     map[string]int `json:"artifact_delta,omitempty"`
}

// Event is the unit exchanged between agent, runner and clients. Treat it as
// immutable once emitted.
type Event struct {
	ID           string            `json:"id"`
	RunID        string            `json:"run_id"`
	Author       string            `json:"author"`
	Actions      EventActions      `json:"actions"`
	Timestamp    time.Time         `json:"timestamp"`
	Content      *Content          `json:"content,omitempty"`
	Partial      *bool             `json:"partial,omitempty"`
	TurnComplete *bool             `json:"turn_complete,omitempty"`
	ErrorCode    *string           `json:"error_code,omitempty"`
	ErrorMessage *string           `json:"error_message,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// NewID returns a fresh random identifier.
func NewID() string { return util.NewID() }

// NewEvent returns an empty event for runID authored by author.
func NewEvent(runID, author string) Event {
	return Event{
		ID:        NewID(),
		RunID:     runID,
		Author:    author,
		Timestamp: time.Now().UTC(),
	}
}

// NewMessageEvent returns an assistant text event.
func NewMessageEvent(runID, author, text string) Event {
	e := NewEvent(runID, author)
	c := NewTextContent("assistant", text)
	e.Content = &c

	return e
}

// NewUserContentEvent returns a user-authored event wrapping content.
func NewUserContentEvent(runID string, content *Content) Event {
	e := NewEvent(runID, "user")
	e.Content = content

	return e
}

// NewErrorEvent returns a system event carrying an error code and message.
func NewErrorEvent(runID, code, msg string) Event {
	e := NewEvent(runID, "system")
	e.ErrorCode = &code
	e.ErrorMessage = &msg

	return e
}

// NewFunctionResponseEvent records the result (or error) of a tool call.
func NewFunctionResponseEvent(runID, author, callID, name string, result any, err error) Event {
	e := NewEvent(runID, author)

	fr := FunctionResponse{ID: callID, Name: name, Response: result}
	if err != nil {
		fr.Error = err.Error()
	}

	e.Content = &Content{Role: "tool", Parts: []Part{FunctionResponsePart{FunctionResponse: fr}}}

	return e
}

// IsPartial reports whether the event is a streaming fragment.
func (e Event) IsPartial() bool { return e.Partial != nil && *e.Partial }

// IsError reports whether the event carries an error.
func (e Event) IsError() bool { return e.ErrorMessage != nil }

// FunctionCalls returns the function call parts in order.
func (e Event) FunctionCalls() []FunctionCall {
	if e.Content == nil {
		return nil
	}

	var calls []FunctionCall

	for _, p := range e.Content.Parts {
		if fc, ok := p.(FunctionCallPart); ok {
			calls = append(calls, fc.FunctionCall)
		}
	}

	return calls
}

// FunctionResponses returns the function response parts in order.
func (e Event) FunctionResponses() []FunctionResponse {
	if e.Content == nil {
		return nil
	}

	var responses []FunctionResponse

	for _, p := range e.Content.Parts {
		if fr, ok := p.(FunctionResponsePart); ok {
			responses = append(responses, fr.FunctionResponse)
		}
	}

	return responses
}

// IsFinalResponse reports whether the event completes an assistant turn: no
// pending calls or responses and not partial.
func (e Event) IsFinalResponse() bool {
	if e.Actions.SkipSummarization != nil && *e.Actions.SkipSummarization {
		return true
	}

	return len(e.FunctionCalls()) == 0 && len(e.FunctionResponses()) == 0 && !e.IsPartial()
}
