package flow

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/hupe1980/casemesh/core"
	"github.com/hupe1980/casemesh/tool"
)

// FunctionExecutor executes the function calls of one model turn and emits
// one function response event per call. Implementations must:
//   - respect runCtx cancellation
//   - never panic (recover and emit an error response instead)
//   - apply the ToolContext actions to the emitted event
//
// emit persists the event; it blocks until the runner acknowledges it.
type FunctionExecutor interface {
	Execute(runCtx *core.RunContext, agent FlowAgent, fnCalls []core.FunctionCall, emit func(core.Event) error)
}

// FunctionExecutorConfig configures the default parallel executor.
type FunctionExecutorConfig struct {
	MaxParallel    int  // <1 means one goroutine per call
	PreserveOrder  bool // buffer results and emit them in call order
	LogStartEvents bool // log a start line per call
}

type parallelFunctionExecutor struct {
	cfg FunctionExecutorConfig
}

// NewParallelFunctionExecutor returns the default FunctionExecutor.
func NewParallelFunctionExecutor(cfg FunctionExecutorConfig) FunctionExecutor {
	return &parallelFunctionExecutor{cfg: cfg}
}

func (e *parallelFunctionExecutor) Execute(
	runCtx *core.RunContext,
	agent FlowAgent,
	fnCalls []core.FunctionCall,
	emit func(core.Event) error,
) {
	n := len(fnCalls)
	if n == 0 {
		return
	}

	if n == 1 {
		e.deliver(runCtx, fnCalls[0], emit, e.call(runCtx, agent, fnCalls[0]))
		return
	}

	maxPar := e.cfg.MaxParallel
	if maxPar <= 0 || maxPar > n {
		maxPar = n
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make([]*core.Event, n)
		sem     = make(chan struct{}, maxPar)
	)

	batchStart := time.Now()

	for i, fc := range fnCalls {
		if runCtx.Err() != nil {
			break
		}

		wg.Add(1)

		sem <- struct{}{}

		go func(idx int, fc core.FunctionCall) {
			defer wg.Done()
			defer func() { <-sem }()

			if runCtx.Err() != nil {
				return
			}

			ev := e.call(runCtx, agent, fc)

			if e.cfg.PreserveOrder {
				mu.Lock()
				results[idx] = &ev
				mu.Unlock()

				return
			}

			e.deliver(runCtx, fc, emit, ev)
		}(i, fc)
	}

	wg.Wait()

	if e.cfg.PreserveOrder {
		for i, ev := range results {
			if ev == nil {
				continue
			}

			e.deliver(runCtx, fnCalls[i], emit, *ev)
		}
	}

	runCtx.LogDebug(
		"flow.functions.batch.complete",
		"agent", agent.GetName(),
		"count", n,
		"parallelism", maxPar,
		"preserve_order", e.cfg.PreserveOrder,
		"duration_ms", time.Since(batchStart).Milliseconds(),
	)
}

// call executes one function call and builds its response event.
func (e *parallelFunctionExecutor) call(runCtx *core.RunContext, agent FlowAgent, fc core.FunctionCall) core.Event {
	toolCtx := core.NewToolContext(runCtx, fc.ID)

	if e.cfg.LogStartEvents {
		runCtx.LogInfo("flow.function.start", "agent", agent.GetName(), "function", fc.Name, "fc_id", fc.ID)
	}

	start := time.Now()

	var (
		result any
		err    error
	)

	func() {
		defer func() {
			if r := recover(); r != nil {
				err = panicError(r)
				runCtx.LogError("flow.function.panic", "agent", agent.GetName(), "function", fc.Name, "recover", r)
			}
		}()

		result, err = agent.ExecuteTool(toolCtx, fc.Name, fc.Arguments)
	}()

	runCtx.LogInfo(
		"flow.function.executed",
		"agent", agent.GetName(),
		"function", fc.Name,
		"duration_ms", time.Since(start).Milliseconds(),
		"error", err != nil,
	)

	result, err = functionResult(fc.Name, result, err)

	respEv := core.NewFunctionResponseEvent(runCtx.RunID, agent.GetName(), fc.ID, fc.Name, result, err)
	toolCtx.ApplyActions(&respEv)

	return respEv
}

func (e *parallelFunctionExecutor) deliver(runCtx *core.RunContext, fc core.FunctionCall, emit func(core.Event) error, ev core.Event) {
	if err := emit(ev); err != nil {
		runCtx.LogError("flow.function.emit.error", "function", fc.Name, "error", err.Error())
	}
}

// functionResult renders tool failures as their ToolError payload. Panics
// stay errors.
func functionResult(name string, result any, err error) (any, error) {
	if err == nil {
		return result, nil
	}

	var pe *panicErr
	if errors.As(err, &pe) {
		return nil, err
	}

	return tool.AsToolError(name, err).Payload(), nil
}

func panicError(r any) error { return &panicErr{val: r, stack: debug.Stack()} }

type panicErr struct {
	val   any
	stack []byte
}

func (p *panicErr) Error() string { return fmt.Sprintf("panic recovered: %v", p.val) }
