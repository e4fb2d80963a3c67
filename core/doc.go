// Package core holds the runtime types shared by the case agent: agents,
// sessions, events, content parts and the RunContext / ToolContext scopes
// handed to agents and tools during a run.
//
// Implementations (stores, flows, concrete agents, the runner) live in their
// own packages and depend only on the small interfaces declared here.
package core
