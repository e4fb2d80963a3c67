// Package agent provides the agents the runner drives.
//
// BaseAgent carries identity and the Start / Stop lifecycle. ModelAgent
// embeds it and runs the tool-calling conversation loop of the flow package
// against a model and a tool registry. Tools discovered from the case and
// informant MCP servers are registered on a ModelAgent by the agent command.
package agent
