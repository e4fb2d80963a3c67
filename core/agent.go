package core

// Agent is a unit of work driven by the runner. Start and Stop bracket every
// Run; Run emits events through the RunContext and must honour cancellation.
type Agent interface {
	Name() string
	Description() string
	Start(runCtx *RunContext) error
	Stop(runCtx *RunContext) error
	Run(runCtx *RunContext) error
}

// AgentInfo identifies the agent that owns a run.
type AgentInfo struct{ Name, Type string }
