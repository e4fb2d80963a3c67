// Package a2a serves a runner over the Agent-to-Agent protocol: an
// executor translating A2A messages into runs, the capability card and the
// HTTP handler combining both.
package a2a

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	protocol "github.com/a2aproject/a2a-go/a2a"
	"github.com/a2aproject/a2a-go/a2asrv"
	"github.com/a2aproject/a2a-go/a2asrv/eventqueue"

	"github.com/hupe1980/casemesh/core"
	"github.com/hupe1980/casemesh/logging"
)

// ErrEmptyMessage is returned when a request carries no text.
var ErrEmptyMessage = errors.New("message has no text parts")

// ExecutorOptions configures NewAgentExecutor.
type ExecutorOptions struct {
	Logger logging.Logger
	// EmptyReply is sent when a run ends without assistant text.
	EmptyReply string
}

// eventWriter is the part of eventqueue.Queue the executor writes to.
type eventWriter interface {
	Write(ctx context.Context, event protocol.Event) error
}

type agentExecutor struct {
	runner core.Runner
	opts   ExecutorOptions
	// task id -> run id of the in-flight run
	runs sync.Map
}

// NewAgentExecutor adapts runner to a2asrv.AgentExecutor. The A2A context
// id is the session id, so follow-up messages share history.
func NewAgentExecutor(runner core.Runner, optFns ...func(o *ExecutorOptions)) a2asrv.AgentExecutor {
	opts := ExecutorOptions{
		Logger:     logging.NoOpLogger{},
		EmptyReply: "No se obtuvo respuesta del agente.",
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &agentExecutor{runner: runner, opts: opts}
}

// Execute runs the agent on the request message and writes the final
// assistant text back as an agent message.
func (e *agentExecutor) Execute(ctx context.Context, reqCtx *a2asrv.RequestContext, queue eventqueue.Queue) error {
	return e.execute(ctx, reqCtx, queue)
}

func (e *agentExecutor) execute(ctx context.Context, reqCtx *a2asrv.RequestContext, w eventWriter) error {
	text := messageText(reqCtx.Message)
	if text == "" {
		return ErrEmptyMessage
	}

	sessionID := reqCtx.ContextID
	if sessionID == "" {
		sessionID = string(reqCtx.TaskID)
	}

	e.opts.Logger.Info("a2a.execute.start", "task_id", string(reqCtx.TaskID), "session_id", sessionID, "length", len(text))

	runID, eventsCh, errorsCh, err := e.runner.Run(ctx, sessionID, core.NewTextContent("user", text))
	if err != nil {
		e.opts.Logger.Error("a2a.execute.run_failed", "task_id", string(reqCtx.TaskID), "error", err.Error())
		return fmt.Errorf("start run: %w", err)
	}

	e.runs.Store(reqCtx.TaskID, runID)
	defer e.runs.Delete(reqCtx.TaskID)

	var (
		reply    string
		runError string
	)

	for ev := range eventsCh {
		switch {
		case ev.IsError():
			runError = *ev.ErrorMessage
		case finalText(ev) != "":
			reply = finalText(ev)
		}
	}

	if err := <-errorsCh; err != nil {
		e.opts.Logger.Error("a2a.execute.failed", "task_id", string(reqCtx.TaskID), "run_id", runID, "error", err.Error())
		return fmt.Errorf("run %s: %w", runID, err)
	}

	if reply == "" {
		reply = e.opts.EmptyReply
		if runError != "" {
			reply = runError
		}
	}

	msg := protocol.NewMessage(protocol.MessageRoleAgent, protocol.TextPart{Text: reply})
	msg.TaskID = reqCtx.TaskID
	msg.ContextID = reqCtx.ContextID

	if err := w.Write(ctx, msg); err != nil {
		return fmt.Errorf("write reply: %w", err)
	}

	e.opts.Logger.Info("a2a.execute.complete", "task_id", string(reqCtx.TaskID), "run_id", runID, "length", len(reply))

	return nil
}

// Cancel stops the run serving the task and reports the task cancelled.
func (e *agentExecutor) Cancel(ctx context.Context, reqCtx *a2asrv.RequestContext, queue eventqueue.Queue) error {
	return e.cancel(ctx, reqCtx, queue)
}

func (e *agentExecutor) cancel(ctx context.Context, reqCtx *a2asrv.RequestContext, w eventWriter) error {
	v, ok := e.runs.Load(reqCtx.TaskID)
	if !ok {
		return fmt.Errorf("task %s has no active run", reqCtx.TaskID)
	}

	if err := e.runner.Cancel(v.(string)); err != nil {
		return err
	}

	e.opts.Logger.Info("a2a.cancel", "task_id", string(reqCtx.TaskID), "run_id", v.(string))

	return w.Write(ctx, &protocol.TaskStatusUpdateEvent{
		TaskID:    reqCtx.TaskID,
		ContextID: reqCtx.ContextID,
		Status:    protocol.TaskStatus{State: protocol.TaskStateCanceled},
		Final:     true,
	})
}

func messageText(msg *protocol.Message) string {
	if msg == nil {
		return ""
	}

	var parts []string

	for _, p := range msg.Parts {
		switch tp := p.(type) {
		case protocol.TextPart:
			parts = append(parts, tp.Text)
		case *protocol.TextPart:
			parts = append(parts, tp.Text)
		}
	}

	return strings.TrimSpace(strings.Join(parts, "\n"))
}

// finalText returns the text of a complete assistant answer.
func finalText(ev core.Event) string {
	if ev.Content == nil || ev.Content.Role != "assistant" || ev.IsPartial() || len(ev.FunctionCalls()) > 0 {
		return ""
	}

	return ev.Content.Text()
}
