package core

import "context"

// Runner executes the root agent inside a session.
//
// Run returns the run id, an ordered event stream and a terminal error
// channel (buffered, at most one value). Both channels are closed when the
// run ends. Cancel stops an in-flight run and errors for unknown ids.
type Runner interface {
	Run(ctx context.Context, sessionID string, userContent Content) (string, <-chan Event, <-chan error, error)
	Cancel(runID string) error
}
