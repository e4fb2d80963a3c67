// Package runner executes the agent inside a session.
//
// A run goes through two goroutines. The agent goroutine brackets
// Agent.Run with Start / Stop and emits events on the RunContext. The
// event goroutine persists each complete event to the session store,
// applies its state delta, forwards it to the caller and then resumes the
// agent. The agent therefore never reads session state older than its own
// last event.
//
// Run is asynchronous; RunSync drains a run and returns its events.
package runner
