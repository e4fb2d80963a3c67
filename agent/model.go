package agent

import (
	"encoding/json"
	"fmt"

	"github.com/hupe1980/casemesh/core"
	"github.com/hupe1980/casemesh/flow"
	"github.com/hupe1980/casemesh/model"
	"github.com/hupe1980/casemesh/tool"
)

// ModelAgentOptions configures a ModelAgent instance.
//
// Use functional options with NewModelAgent to override defaults.
type ModelAgentOptions struct {
	Instruction           Instruction
	Description           string
	EnableStreaming       bool
	EnableFunctionCalling bool
	OutputKey             string
	MaxHistoryMessages    int
	Executor              flow.FunctionExecutor
}

// ModelAgent answers with a language model and lets it call registered
// tools. It embeds BaseAgent for the lifecycle and implements
// flow.FlowAgent for the SingleAgentFlow it runs.
type ModelAgent struct {
	BaseAgent
	llm                   model.Model
	instruction           Instruction
	tools                 *tool.Registry
	enableFunctionCalling bool
	enableStreaming       bool
	outputKey             string
	maxHistoryMessages    int
	executor              flow.FunctionExecutor
}

// NewModelAgent creates a model-based agent.
//
// Defaults: function calling on, streaming off, 20 history messages and a
// generic instruction naming the agent.
func NewModelAgent(name string, llm model.Model, optFns ...func(o *ModelAgentOptions)) *ModelAgent {
	opts := ModelAgentOptions{
		Instruction:           NewInstructionFromText(fmt.Sprintf("You are %s, a helpful AI assistant.", name)),
		EnableFunctionCalling: true,
		MaxHistoryMessages:    20,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	tools, _ := tool.NewRegistry()

	a := &ModelAgent{
		BaseAgent:             NewBaseAgent(name),
		llm:                   llm,
		instruction:           opts.Instruction,
		tools:                 tools,
		enableStreaming:       opts.EnableStreaming,
		enableFunctionCalling: opts.EnableFunctionCalling,
		outputKey:             opts.OutputKey,
		maxHistoryMessages:    opts.MaxHistoryMessages,
		executor:              opts.Executor,
	}

	if opts.Description != "" {
		a.SetDescription(opts.Description)
	}

	return a
}

// RegisterTool makes t available to the model. Names must be unique.
func (a *ModelAgent) RegisterTool(t tool.Tool) error {
	return a.tools.Register(t)
}

// RegisterTools registers tools in order and stops at the first failure.
func (a *ModelAgent) RegisterTools(tools ...tool.Tool) error {
	for _, t := range tools {
		if err := a.RegisterTool(t); err != nil {
			return err
		}
	}

	return nil
}

// ListTools returns the registered tool names in registration order.
func (a *ModelAgent) ListTools() []string {
	all := a.tools.All()

	names := make([]string, 0, len(all))
	for _, t := range all {
		names = append(names, t.Name())
	}

	return names
}

// GetName returns the agent's display name.
func (a *ModelAgent) GetName() string { return a.Name() }

// GetLLM returns the language model instance.
func (a *ModelAgent) GetLLM() model.Model { return a.llm }

// GetTools returns the tool registry.
func (a *ModelAgent) GetTools() *tool.Registry { return a.tools }

// IsFunctionCallingEnabled returns whether function calling is enabled.
func (a *ModelAgent) IsFunctionCallingEnabled() bool { return a.enableFunctionCalling }

// IsStreamingEnabled returns whether streaming responses are enabled.
func (a *ModelAgent) IsStreamingEnabled() bool { return a.enableStreaming }

// GetOutputKey returns the session state key for saving responses.
func (a *ModelAgent) GetOutputKey() string { return a.outputKey }

// MaxHistoryMessages returns the maximum number of conversation history messages to keep.
func (a *ModelAgent) MaxHistoryMessages() int { return a.maxHistoryMessages }

// ResolveInstructions returns the system prompt for the run.
func (a *ModelAgent) ResolveInstructions(runCtx *core.RunContext) (string, error) {
	return a.instruction.Resolve(runCtx)
}

// ExecuteTool decodes the JSON arguments and invokes the named tool. An
// unknown name is reported as a NOT_FOUND tool error so the model can
// recover.
func (a *ModelAgent) ExecuteTool(toolCtx *core.ToolContext, toolName string, args string) (any, error) {
	t, ok := a.tools.Get(toolName)
	if !ok {
		return nil, tool.NewToolError(toolName, fmt.Sprintf("Herramienta '%s' no encontrada.", toolName), tool.CodeNotFound)
	}

	argMap := map[string]any{}
	if args != "" {
		if err := json.Unmarshal([]byte(args), &argMap); err != nil {
			return nil, tool.NewToolError(toolName, fmt.Sprintf("argumentos no válidos: %v", err), tool.CodeValidationError)
		}
	}

	return t.Call(toolCtx, argMap)
}

// Run executes a SingleAgentFlow and forwards its events to the runner.
func (a *ModelAgent) Run(runCtx *core.RunContext) error {
	runCtx.LogDebug("agent.run.start", "agent", a.Name(), "run", runCtx.RunID, "tools", a.tools.Len())

	fl := flow.NewSingleAgentFlow(a, func(o *flow.BaseFlowOptions) {
		if a.executor != nil {
			o.Executor = a.executor
		}
	})

	eventChan, err := fl.Execute(runCtx)
	if err != nil {
		runCtx.LogError("agent.flow.execute.error", "agent", a.Name(), "error", err.Error())

		return fmt.Errorf("flow execution failed: %w", err)
	}

	for event := range eventChan {
		if err := runCtx.EmitEvent(event); err != nil {
			runCtx.LogWarn("agent.run.context_done", "agent", a.Name(), "error", err.Error())

			// Unblock the flow goroutine so it can observe cancellation.
			for range eventChan {
			}

			return err
		}

		role := ""
		if event.Content != nil {
			role = event.Content.Role
		}

		runCtx.LogDebug(
			"agent.event.forward",
			"agent", a.Name(),
			"event_id", event.ID,
			"role", role,
			"fn_calls", len(event.FunctionCalls()),
		)
	}

	runCtx.LogDebug("agent.run.complete", "agent", a.Name(), "run", runCtx.RunID)

	return nil
}
