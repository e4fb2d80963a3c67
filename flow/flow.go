// Package flow drives one agent turn: it assembles the model request through
// request processors, streams the model output as events, executes the tool
// calls the model asks for and loops until the model produces a final answer.
package flow

import (
	"github.com/hupe1980/casemesh/core"
	"github.com/hupe1980/casemesh/model"
	"github.com/hupe1980/casemesh/tool"
)

// Flow runs an agent against a RunContext.
type Flow interface {
	// Execute starts the flow and returns its event stream. The channel is
	// closed when the flow finishes.
	Execute(runCtx *core.RunContext) (<-chan core.Event, error)
}

// FlowAgent is the view of an agent a flow needs.
type FlowAgent interface {
	// GetName returns the agent's display name, used as event author.
	GetName() string

	// GetLLM returns the language model instance.
	GetLLM() model.Model

	// ResolveInstructions returns the system prompt for this run.
	ResolveInstructions(runCtx *core.RunContext) (string, error)

	// GetTools returns the tools offered to the model.
	GetTools() *tool.Registry

	IsFunctionCallingEnabled() bool
	IsStreamingEnabled() bool

	// GetOutputKey returns the session state key the final answer is saved
	// under, or "".
	GetOutputKey() string

	// MaxHistoryMessages caps the history replayed to the model.
	MaxHistoryMessages() int

	// ExecuteTool runs the named tool with JSON encoded arguments.
	ExecuteTool(toolCtx *core.ToolContext, toolName string, args string) (any, error)
}

// RequestProcessor processes the request before sending it to the LLM.
type RequestProcessor interface {
	// Name returns the processor's identifier.
	Name() string
	// ProcessRequest modifies the chat request before LLM execution.
	ProcessRequest(runCtx *core.RunContext, req *model.Request, agent FlowAgent) error
}

// ResponseProcessor processes the response after receiving it from the LLM.
type ResponseProcessor interface {
	// Name returns the processor's identifier.
	Name() string
	// ProcessResponse inspects or rewrites a model chunk before it is emitted.
	ProcessResponse(runCtx *core.RunContext, resp *model.Response, agent FlowAgent) error
}
