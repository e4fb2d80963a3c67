package flow

import (
	"fmt"
	"sync"

	"github.com/hupe1980/casemesh/core"
	"github.com/hupe1980/casemesh/model"
)

// Error codes set on system events emitted by a flow.
const (
	ErrorCodeProcessor      = "PROCESSOR_ERROR"
	ErrorCodeModel          = "MODEL_ERROR"
	ErrorCodeModelCallLimit = "MODEL_CALL_LIMIT"
)

// BaseFlowOptions configures a BaseFlow.
type BaseFlowOptions struct {
	// Executor runs the tool calls of a model turn. Defaults to a parallel
	// executor preserving call order.
	Executor FunctionExecutor
}

// BaseFlow implements the request -> model -> tool loop with pluggable
// request and response processors.
type BaseFlow struct {
	agent              FlowAgent
	executor           FunctionExecutor
	requestProcessors  []RequestProcessor
	responseProcessors []ResponseProcessor
}

// NewBaseFlow creates a BaseFlow without processors.
func NewBaseFlow(agent FlowAgent, optFns ...func(o *BaseFlowOptions)) *BaseFlow {
	opts := BaseFlowOptions{
		Executor: NewParallelFunctionExecutor(FunctionExecutorConfig{PreserveOrder: true}),
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &BaseFlow{
		agent:              agent,
		executor:           opts.Executor,
		requestProcessors:  []RequestProcessor{},
		responseProcessors: []ResponseProcessor{},
	}
}

// AddRequestProcessor appends a request processor; registration order is
// execution order.
func (f *BaseFlow) AddRequestProcessor(processor RequestProcessor) {
	f.requestProcessors = append(f.requestProcessors, processor)
}

// AddResponseProcessor appends a processor run on every model chunk.
func (f *BaseFlow) AddResponseProcessor(processor ResponseProcessor) {
	f.responseProcessors = append(f.responseProcessors, processor)
}

// Execute launches the flow asynchronously. The returned channel is closed
// after a final response, an error event or cancellation.
func (f *BaseFlow) Execute(runCtx *core.RunContext) (<-chan core.Event, error) {
	eventChan := make(chan core.Event, 100)

	go func() {
		defer close(eventChan)

		e := &emitter{runCtx: runCtx, out: eventChan}

		for {
			last := f.runOnce(runCtx, e)
			if last == nil {
				return
			}

			// Tool results go back to the model.
			if len(last.FunctionResponses()) > 0 && !last.IsFinalResponse() {
				continue
			}

			if last.IsPartial() {
				runCtx.LogWarn("flow.turn.partial_tail", "agent", f.agent.GetName(), "event_id", last.ID)
				return
			}

			if last.IsFinalResponse() {
				return
			}
		}
	}()

	return eventChan, nil
}

// emitter serializes sends on the flow channel and waits for the runner to
// persist every complete event before the next one is produced.
type emitter struct {
	mu     sync.Mutex
	runCtx *core.RunContext
	out    chan<- core.Event
	last   *core.Event
}

func (e *emitter) emit(ev core.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	select {
	case <-e.runCtx.Done():
		return e.runCtx.Err()
	case e.out <- ev:
	}

	e.last = &ev

	if ev.IsPartial() {
		return nil
	}

	return e.runCtx.WaitForResume()
}

func (e *emitter) reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.last = nil
}

func (e *emitter) lastEvent() *core.Event {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.last
}

func (f *BaseFlow) emitError(runCtx *core.RunContext, e *emitter, code string, err error) {
	runCtx.LogError("flow.error", "agent", f.agent.GetName(), "code", code, "error", err.Error())

	if emitErr := e.emit(core.NewErrorEvent(runCtx.RunID, code, err.Error())); emitErr != nil {
		runCtx.LogWarn("flow.error.undelivered", "agent", f.agent.GetName(), "error", emitErr.Error())
	}
}

// runOnce performs one model turn including any tool executions and returns
// the last emitted event. A nil return terminates the flow.
func (f *BaseFlow) runOnce(runCtx *core.RunContext, e *emitter) *core.Event {
	e.reset()

	// Processors must see the tool responses persisted by the previous turn.
	if runCtx.SessionStore != nil {
		if err := runCtx.RefreshSession(); err != nil {
			runCtx.LogWarn("flow.session.refresh_failed", "session", runCtx.SessionID, "error", err.Error())
		}
	}

	req := new(model.Request)

	for _, processor := range f.requestProcessors {
		if err := processor.ProcessRequest(runCtx, req, f.agent); err != nil {
			f.emitError(runCtx, e, ErrorCodeProcessor, fmt.Errorf("request processor %s failed: %w", processor.Name(), err))
			return nil
		}
	}

	if f.agent.IsFunctionCallingEnabled() {
		if tools := f.agent.GetTools(); tools != nil && tools.Len() > 0 {
			req.Tools = tools.Definitions()
		}
	}

	req.Stream = f.agent.IsStreamingEnabled()

	if err := runCtx.Limiter.Increment(); err != nil {
		f.emitError(runCtx, e, ErrorCodeModelCallLimit, err)
		return nil
	}

	runCtx.LogDebug(
		"flow.model.request",
		"agent", f.agent.GetName(),
		"contents", len(req.Contents),
		"tools", len(req.Tools),
		"call", runCtx.Limiter.Count(),
	)

	respCh, errCh := f.agent.GetLLM().Generate(runCtx.Context, *req)

	for respCh != nil || errCh != nil {
		select {
		case <-runCtx.Done():
			return nil
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}

			f.emitError(runCtx, e, ErrorCodeModel, err)

			return nil
		case resp, ok := <-respCh:
			if !ok {
				respCh = nil
				continue
			}

			if !f.handleResponse(runCtx, e, resp) {
				return nil
			}
		}
	}

	return e.lastEvent()
}

// handleResponse emits one model chunk and runs the tool calls it carries.
// It reports false when the flow must stop.
func (f *BaseFlow) handleResponse(runCtx *core.RunContext, e *emitter, resp model.Response) bool {
	for _, processor := range f.responseProcessors {
		if err := processor.ProcessResponse(runCtx, &resp, f.agent); err != nil {
			f.emitError(runCtx, e, ErrorCodeProcessor, fmt.Errorf("response processor %s failed: %w", processor.Name(), err))
			return false
		}
	}

	content := resp.Content
	partial := resp.Partial

	ev := core.NewEvent(runCtx.RunID, f.agent.GetName())
	ev.Content = &content
	ev.Partial = &partial

	fnCalls := ev.FunctionCalls()

	if !partial && len(fnCalls) == 0 {
		complete := true
		ev.TurnComplete = &complete

		if key := f.agent.GetOutputKey(); key != "" {
			ev.Actions.StateDelta = map[string]any{key: content.Text()}
		}
	}

	if err := e.emit(ev); err != nil {
		runCtx.LogWarn("flow.emit.aborted", "agent", f.agent.GetName(), "error", err.Error())
		return false
	}

	if partial || len(fnCalls) == 0 {
		return true
	}

	f.executor.Execute(runCtx, f.agent, fnCalls, e.emit)

	return runCtx.Err() == nil
}
