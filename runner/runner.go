package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/casemesh/artifact"
	"github.com/hupe1980/casemesh/core"
	"github.com/hupe1980/casemesh/internal/util"
	"github.com/hupe1980/casemesh/logging"
	"github.com/hupe1980/casemesh/session"
)

// ErrTooManyRuns is returned by Run when MaxConcurrentRuns runs are active.
var ErrTooManyRuns = errors.New("too many concurrent runs")

// Options holds dependency and configuration overrides passed to New.
type Options struct {
	// MaxConcurrentRuns caps active runs; 0 means unlimited.
	MaxConcurrentRuns int
	// EventBufferSize sets channel buffering for events.
	EventBufferSize int
	// MaxModelCalls limits the number of model calls per run.
	MaxModelCalls int
	// AgentType is reported in RunContext.Agent.
	AgentType string
	// SessionStore persists conversation history and state.
	SessionStore core.SessionStore
	// ArtifactStore keeps files produced by tools, e.g. case reports.
	ArtifactStore core.ArtifactStore
	// Logger receives runner.* events.
	Logger logging.Logger
	// NewRunID generates run ids.
	NewRunID func() string
}

// Runner coordinates agent execution: it creates run contexts, streams
// events, applies their side effects and persists history. Public methods
// are safe for concurrent use.
type Runner struct {
	agent core.Agent

	eventBufferSize int
	maxModelCalls   int
	agentType       string
	slots           chan struct{}

	sessionStore  core.SessionStore
	artifactStore core.ArtifactStore
	logger        logging.Logger
	newRunID      func() string

	activeRuns map[string]context.CancelFunc
	mu         sync.RWMutex
}

var _ core.Runner = (*Runner)(nil)

// New constructs a Runner for agent. Unset stores default to in-memory
// implementations.
func New(agent core.Agent, optFns ...func(o *Options)) *Runner {
	opts := Options{
		MaxConcurrentRuns: 10,
		EventBufferSize:   100,
		MaxModelCalls:     25,
		AgentType:         "model",
		Logger:            logging.NoOpLogger{},
		NewRunID:          util.NewID,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.SessionStore == nil {
		opts.SessionStore = session.NewInMemoryStore()
	}

	if opts.ArtifactStore == nil {
		opts.ArtifactStore = artifact.NewInMemoryStore()
	}

	r := &Runner{
		agent:           agent,
		eventBufferSize: opts.EventBufferSize,
		maxModelCalls:   opts.MaxModelCalls,
		agentType:       opts.AgentType,
		sessionStore:    opts.SessionStore,
		artifactStore:   opts.ArtifactStore,
		logger:          opts.Logger,
		newRunID:        opts.NewRunID,
		activeRuns:      make(map[string]context.CancelFunc),
	}

	if opts.MaxConcurrentRuns > 0 {
		r.slots = make(chan struct{}, opts.MaxConcurrentRuns)
	}

	return r
}

// Agent returns the agent the runner executes.
func (r *Runner) Agent() core.Agent { return r.agent }

// SessionStore returns the session store.
func (r *Runner) SessionStore() core.SessionStore { return r.sessionStore }

// ArtifactStore returns the artifact store.
func (r *Runner) ArtifactStore() core.ArtifactStore { return r.artifactStore }

// Run starts an asynchronous run in sessionID. The user content is persisted
// before Run returns. The error channel carries at most one value; both
// channels are closed when the run ends.
func (r *Runner) Run(
	ctx context.Context,
	sessionID string,
	userContent core.Content,
) (string, <-chan core.Event, <-chan error, error) {
	if !r.acquire() {
		return "", nil, nil, ErrTooManyRuns
	}

	sess, err := r.sessionStore.Get(sessionID)
	if err != nil {
		r.release()
		return "", nil, nil, fmt.Errorf("failed to get session: %w", err)
	}

	runID := r.newRunID()

	userEvent := core.NewUserContentEvent(runID, &userContent)
	if err := r.sessionStore.AppendEvent(sessionID, userEvent); err != nil {
		r.release()
		return "", nil, nil, fmt.Errorf("failed to append user event: %w", err)
	}

	sess.AddEvent(userEvent)

	eventsCh := make(chan core.Event, r.eventBufferSize)
	errorsCh := make(chan error, 1)
	agentEmit := make(chan core.Event, r.eventBufferSize)
	resumeCh := make(chan struct{}, 1)

	ctx, cancel := context.WithCancel(ctx)

	r.mu.Lock()
	r.activeRuns[runID] = cancel
	r.mu.Unlock()

	runCtx := core.NewRunContext(
		ctx,
		sessionID,
		runID,
		core.AgentInfo{Name: r.agent.Name(), Type: r.agentType},
		userContent,
		func(o *core.RunContextOptions) {
			o.MaxModelCalls = r.maxModelCalls
			o.Emit = agentEmit
			o.Resume = resumeCh
			o.Session = sess
			o.SessionStore = r.sessionStore
			o.ArtifactStore = r.artifactStore
			o.Logger = r.logger
		},
	)

	r.logger.Info("runner.run.start", "run", runID, "session", sessionID, "agent", r.agent.Name())

	var (
		once  sync.Once
		wg    sync.WaitGroup
		start = time.Now()
	)

	report := func(err error) {
		once.Do(func() { errorsCh <- err })
	}

	wg.Add(2)

	go func() {
		defer wg.Done()
		defer close(agentEmit)

		if err := r.runAgent(runCtx); err != nil {
			report(fmt.Errorf("agent execution failed: %w", err))
		}
	}()

	go func() {
		defer wg.Done()

		if err := r.processEvents(runCtx, agentEmit, resumeCh, eventsCh); err != nil {
			report(err)
			cancel()

			for range agentEmit {
			}
		}
	}()

	go func() {
		wg.Wait()
		cancel()

		r.mu.Lock()
		delete(r.activeRuns, runID)
		r.mu.Unlock()
		r.release()

		close(eventsCh)
		close(errorsCh)

		r.logger.Info("runner.run.complete", "run", runID, "session", sessionID, "duration_ms", time.Since(start).Milliseconds())
	}()

	return runID, eventsCh, errorsCh, nil
}

// Result is the outcome of RunSync.
type Result struct {
	RunID  string
	Events []core.Event
}

// FinalText returns the text of the last complete assistant event.
func (res Result) FinalText() string {
	for i := len(res.Events) - 1; i >= 0; i-- {
		ev := res.Events[i]
		if ev.Content != nil && ev.Content.Role == "assistant" && !ev.IsPartial() && len(ev.FunctionCalls()) == 0 {
			return ev.Content.Text()
		}
	}

	return ""
}

// RunSync runs to completion and returns every event. Events collected
// before a failure are returned with the error.
func (r *Runner) RunSync(ctx context.Context, sessionID string, userContent core.Content) (Result, error) {
	runID, eventsCh, errorsCh, err := r.Run(ctx, sessionID, userContent)
	if err != nil {
		return Result{}, err
	}

	res := Result{RunID: runID}

	for ev := range eventsCh {
		res.Events = append(res.Events, ev)
	}

	if err := <-errorsCh; err != nil {
		return res, err
	}

	return res, nil
}

// Cancel cancels an active run.
func (r *Runner) Cancel(runID string) error {
	r.mu.RLock()
	cancel, exists := r.activeRuns[runID]
	r.mu.RUnlock()

	if !exists {
		return fmt.Errorf("run %s not found", runID)
	}

	cancel()

	r.logger.Info("runner.run.cancelled", "run", runID)

	return nil
}

// ActiveRuns returns the number of runs in progress.
func (r *Runner) ActiveRuns() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.activeRuns)
}

func (r *Runner) acquire() bool {
	if r.slots == nil {
		return true
	}

	select {
	case r.slots <- struct{}{}:
		return true
	default:
		return false
	}
}

func (r *Runner) release() {
	if r.slots != nil {
		<-r.slots
	}
}

func (r *Runner) runAgent(runCtx *core.RunContext) error {
	if err := r.agent.Start(runCtx); err != nil {
		return err
	}

	defer func() {
		if err := r.agent.Stop(runCtx); err != nil {
			r.logger.Warn("runner.agent.stop_failed", "agent", r.agent.Name(), "run", runCtx.RunID, "error", err.Error())
		}
	}()

	return r.agent.Run(runCtx)
}

// processEvents persists and forwards agent events until the agent closes
// its channel or the run is cancelled.
func (r *Runner) processEvents(
	runCtx *core.RunContext,
	agentEmit <-chan core.Event,
	resumeCh chan<- struct{},
	eventsCh chan<- core.Event,
) error {
	for {
		select {
		case <-runCtx.Done():
			return nil
		case ev, ok := <-agentEmit:
			if !ok {
				return nil
			}

			if !ev.IsPartial() {
				if err := r.sessionStore.AppendEvent(runCtx.SessionID, ev); err != nil {
					return fmt.Errorf("failed to append event to session: %w", err)
				}

				if err := r.applyEventActions(runCtx, ev); err != nil {
					return fmt.Errorf("failed to process event actions: %w", err)
				}
			}

			select {
			case <-runCtx.Done():
				return nil
			case eventsCh <- ev:
				r.logger.Debug("runner.event.delivered", "event_id", ev.ID, "session", runCtx.SessionID, "partial", ev.IsPartial())
			}

			if !ev.IsPartial() {
				select {
				case resumeCh <- struct{}{}:
				default:
				}
			}
		}
	}
}

func (r *Runner) applyEventActions(runCtx *core.RunContext, ev core.Event) error {
	if len(ev.Actions.StateDelta) > 0 {
		if err := r.sessionStore.ApplyDelta(runCtx.SessionID, ev.Actions.StateDelta); err != nil {
			return fmt.Errorf("failed to apply state delta: %w", err)
		}
	}

	for id, size := range ev.Actions.ArtifactDelta {
		r.logger.Info("runner.event.artifact", "session", runCtx.SessionID, "artifact_id", id, "bytes", size)
	}

	if ev.IsError() {
		code := ""
		if ev.ErrorCode != nil {
			code = *ev.ErrorCode
		}

		r.logger.Warn("runner.event.error", "run", runCtx.RunID, "code", code, "error", *ev.ErrorMessage)
	}

	return nil
}
