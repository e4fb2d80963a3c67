package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/casemesh/core"
)

// ToolDefinition declaratively exposes a callable function to the model.
type ToolDefinition struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes an individual function (tool) exposed to the model.
// Parameters is a JSON Schema object (draft agnostic, minimal subset expected).
type FunctionDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"` // JSON Schema
}

// Request captures the normalized model input produced by flows.
type Request struct {
	Instructions string           `json:"instructions"` // Instructions for the model
	Contents     []core.Content   `json:"contents"`     // Higher-level content converted to provider messages
	Tools        []ToolDefinition `json:"tools,omitempty"`
	Stream       bool             `json:"stream,omitempty"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is a (partial or final) chunk emitted by a streaming model.
type Response struct {
	ID           string       `json:"id"`
	Partial      bool         `json:"partial"` // Indicates if this is a partial response
	Content      core.Content `json:"content"`
	FinishReason string       `json:"finish_reason"` // "stop", "length", "tool_calls", etc.
	Usage        *TokenUsage  `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "local", etc.
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface required by flows & agents to drive generation.
type Model interface {
	Generate(ctx context.Context, req Request) (<-chan Response, <-chan error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockModel is an in-memory Model for tests and the "mock" provider.
//
// Scripted turns queued with AddTurn are replayed in order, one per Generate
// call. Once the script is exhausted it answers from the prompt table, or
// echoes the last user text.
type MockModel struct {
	info Info

	mu        sync.Mutex
	responses map[string]string
	turns     []Response
	requests  []Request
}

// NewMockModel constructs a MockModel with tool support enabled.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info: Info{
			Name:          name,
			Provider:      provider,
			SupportsTools: true,
		},
		responses: make(map[string]string),
	}
}

// AddResponse registers a canned completion for an input prompt.
func (m *MockModel) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.responses[prompt] = response
}

// AddTurn queues a scripted final response.
func (m *MockModel) AddTurn(resp Response) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.turns = append(m.turns, resp)
}

// AddToolCallTurn queues a turn in which the model calls one tool.
func (m *MockModel) AddToolCallTurn(callID, name, arguments string) {
	m.AddTurn(Response{
		Content: core.Content{
			Role: "assistant",
			Parts: []core.Part{core.FunctionCallPart{FunctionCall: core.FunctionCall{
				ID:        callID,
				Name:      name,
				Arguments: arguments,
			}}},
		},
		FinishReason: "tool_calls",
	})
}

// AddTextTurn queues a plain assistant answer.
func (m *MockModel) AddTextTurn(text string) {
	m.AddTurn(Response{Content: core.NewTextContent("assistant", text), FinishReason: "stop"})
}

// Requests returns every request received so far.
func (m *MockModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]Request(nil), m.requests...)
}

// Generate implements Model. Text answers are streamed rune by rune when
// req.Stream is set.
func (m *MockModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 16)
	errCh := make(chan error, 1)

	m.mu.Lock()
	m.requests = append(m.requests, req)

	var (
		scripted *Response
		canned   string
	)

	if len(m.turns) > 0 {
		scripted = &m.turns[0]
		m.turns = m.turns[1:]
	} else if len(req.Contents) > 0 {
		canned = m.responses[req.Contents[len(req.Contents)-1].Text()]
	}
	m.mu.Unlock()

	go func() {
		defer close(respCh)
		defer close(errCh)

		if err := ctx.Err(); err != nil {
			errCh <- err
			return
		}

		if scripted != nil {
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
			case respCh <- *scripted:
			}

			return
		}

		if len(req.Contents) == 0 {
			errCh <- fmt.Errorf("no contents provided")
			return
		}

		full := canned
		if full == "" {
			full = fmt.Sprintf("Mock response to: %s", req.Contents[len(req.Contents)-1].Text())
		}

		if req.Stream {
			for _, r := range full {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case respCh <- Response{
					Partial: true,
					Content: core.NewTextContent("assistant", string(r)),
				}:
				}
			}
		}

		select {
		case <-ctx.Done():
			errCh <- ctx.Err()
		case respCh <- Response{Content: core.NewTextContent("assistant", full), FinishReason: "stop"}:
		}
	}()

	return respCh, errCh
}

// Info implements Model interface.
func (m *MockModel) Info() Info { return m.info }
