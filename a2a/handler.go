package a2a

import (
	"net/http"

	protocol "github.com/a2aproject/a2a-go/a2a"
	"github.com/a2aproject/a2a-go/a2asrv"

	"github.com/hupe1980/casemesh/internal/httpserver"
	"github.com/hupe1980/casemesh/logging"
)

// NewHandler serves the card at the well-known path, /healthz, and JSON-RPC
// on every other path, behind the standard middleware chain.
func NewHandler(card *protocol.AgentCard, executor a2asrv.AgentExecutor, logger logging.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(a2asrv.WellKnownAgentCardPath, a2asrv.NewStaticAgentCardHandler(card))
	mux.Handle("/healthz", httpserver.Health(card.Name))
	mux.Handle("/", a2asrv.NewJSONRPCHandler(a2asrv.NewHandler(executor)))

	return httpserver.Chain(logger).Then(mux)
}
