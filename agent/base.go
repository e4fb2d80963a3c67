package agent

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/casemesh/core"
)

// Lifecycle errors returned by Start and Stop.
var (
	ErrAlreadyRunning = errors.New("run is already active")
	ErrNotRunning     = errors.New("run is not active")
)

// BaseAgent bundles identity and the Start / Stop lifecycle. Embed it in a
// concrete agent and supply Run to satisfy core.Agent.
//
// One agent serves concurrent runs; Start and Stop are keyed by run id. All
// methods are safe for concurrent use.
type BaseAgent struct {
	name        string
	description string

	mu   sync.Mutex
	runs map[string]struct{}
}

// NewBaseAgent constructs a BaseAgent with a generated description.
func NewBaseAgent(name string) BaseAgent {
	return BaseAgent{
		name:        name,
		description: fmt.Sprintf("Agent %s", name),
		runs:        map[string]struct{}{},
	}
}

// Name returns the agent name.
func (b *BaseAgent) Name() string { return b.name }

// Description returns what the agent does.
func (b *BaseAgent) Description() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.description
}

// SetDescription replaces the description.
func (b *BaseAgent) SetDescription(desc string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.description = desc
}

// Start registers runCtx's run. Starting the same run twice fails with
// ErrAlreadyRunning.
func (b *BaseAgent) Start(runCtx *core.RunContext) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.runs[runCtx.RunID]; ok {
		return ErrAlreadyRunning
	}

	if b.runs == nil {
		b.runs = map[string]struct{}{}
	}

	b.runs[runCtx.RunID] = struct{}{}

	runCtx.LogDebug("agent.started", "agent", b.name, "run", runCtx.RunID)

	return nil
}

// Stop releases the run registered by Start.
func (b *BaseAgent) Stop(runCtx *core.RunContext) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.runs[runCtx.RunID]; !ok {
		return ErrNotRunning
	}

	delete(b.runs, runCtx.RunID)

	runCtx.LogDebug("agent.stopped", "agent", b.name, "run", runCtx.RunID)

	return nil
}

// ActiveRuns returns the number of runs between Start and Stop.
func (b *BaseAgent) ActiveRuns() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.runs)
}
