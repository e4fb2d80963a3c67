package flow

import (
	"fmt"

	"github.com/hupe1980/casemesh/core"
	internalutil "github.com/hupe1980/casemesh/internal/util"
	"github.com/hupe1980/casemesh/model"
)

// InstructionsProcessor resolves the agent instruction and renders it as a
// text/template against the session state.
type InstructionsProcessor struct{}

// NewInstructionsProcessor creates a new instructions processor.
func NewInstructionsProcessor() *InstructionsProcessor { return &InstructionsProcessor{} }

// Name returns the processor's identifier.
func (p *InstructionsProcessor) Name() string { return "instructions" }

// ProcessRequest sets req.Instructions.
func (p *InstructionsProcessor) ProcessRequest(runCtx *core.RunContext, req *model.Request, agent FlowAgent) error {
	instructions, err := agent.ResolveInstructions(runCtx)
	if err != nil {
		return fmt.Errorf("failed to resolve instruction: %w", err)
	}

	runCtx.LogDebug("flow.instruction.resolved", "agent", agent.GetName(), "length", len(instructions))

	state := map[string]any{}
	if runCtx.Session != nil {
		state = runCtx.Session.StateSnapshot()
	}

	req.Instructions, err = internalutil.RenderTemplate(instructions, state)
	if err != nil {
		return fmt.Errorf("failed to render template: %w", err)
	}

	return nil
}

// ContentsProcessor builds the message list: the system instruction followed
// by the most recent conversation history.
type ContentsProcessor struct{}

// NewContentsProcessor creates a new contents processor.
func NewContentsProcessor() *ContentsProcessor { return &ContentsProcessor{} }

// Name returns the processor's identifier.
func (p *ContentsProcessor) Name() string { return "contents" }

// ProcessRequest sets req.Contents.
func (p *ContentsProcessor) ProcessRequest(runCtx *core.RunContext, req *model.Request, agent FlowAgent) error {
	contents := []core.Content{core.NewTextContent("system", req.Instructions)}

	events := runCtx.History()
	if len(events) == 0 && len(runCtx.UserContent.Parts) > 0 {
		// No session store: the user input is not persisted yet.
		contents = append(contents, runCtx.UserContent)
	}

	events = trimHistory(events, agent.MaxHistoryMessages())

	for _, ev := range events {
		if ev.Content != nil && len(ev.Content.Parts) > 0 {
			contents = append(contents, *ev.Content)
		}
	}

	req.Contents = contents

	return nil
}

// trimHistory keeps the last max events without starting on a tool
// response whose call was cut off.
func trimHistory(events []core.Event, max int) []core.Event {
	if max <= 0 || len(events) <= max {
		return events
	}

	events = events[len(events)-max:]

	for len(events) > 0 && events[0].Content != nil && events[0].Content.Role == "tool" {
		events = events[1:]
	}

	return events
}
