package core

import (
	"encoding/json"
	"strings"
)

// Part is one segment of a Content. The set of implementations is closed.
type Part interface{ isPart() }

// TextPart is plain text.
type TextPart struct {
	Text     string
	Metadata map[string]any
}

func (TextPart) isPart() {}

// DataPart carries a structured payload, e.g. a tool result forwarded to a client.
type DataPart struct {
	Data     map[string]any
	Metadata map[string]any
}

func (DataPart) isPart() {}

// FunctionCall is a model's request to invoke a tool.
type FunctionCall struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Arguments string `json:"arguments,omitempty"` // JSON object
}

// FunctionCallPart wraps a FunctionCall.
type FunctionCallPart struct {
	FunctionCall FunctionCall
	Metadata     map[string]any
}

func (FunctionCallPart) isPart() {}

// FunctionResponse is the outcome of a FunctionCall.
type FunctionResponse struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Response any    `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

// ResponseText renders the response as the string handed back to a model:
// the JSON encoding of Response, or an {"error": ...} object on failure.
func (fr FunctionResponse) ResponseText() string {
	var v any = fr.Response
	if fr.Error != "" {
		v = map[string]any{"error": fr.Error}
	}

	if s, ok := v.(string); ok {
		return s
	}

	b, err := json.Marshal(v)
	if err != nil {
		return `{"error":"unserializable tool response"}`
	}

	return string(b)
}

// FunctionResponsePart wraps a FunctionResponse.
type FunctionResponsePart struct {
	FunctionResponse FunctionResponse
	Metadata         map[string]any
}

func (FunctionResponsePart) isPart() {}

// Content is a role-tagged ordered list of parts.
type Content struct {
	Role  string `json:"role,omitempty"` // user, assistant, tool or system
	Parts []Part `json:"parts"`
}

// NewTextContent builds a single-part text Content.
func NewTextContent(role, text string) Content {
	return Content{Role: role, Parts: []Part{TextPart{Text: text}}}
}

// Text concatenates all text parts.
func (c Content) Text() string {
	var sb strings.Builder

	for _, p := range c.Parts {
		if tp, ok := p.(TextPart); ok {
			sb.WriteString(tp.Text)
		}
	}

	return sb.String()
}
