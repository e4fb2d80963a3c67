// Package mcpserver serves a set of tool.Tool values over the Model Context
// Protocol using streamable HTTP.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hupe1980/casemesh/core"
	"github.com/hupe1980/casemesh/internal/httpserver"
	"github.com/hupe1980/casemesh/logging"
	"github.com/hupe1980/casemesh/tool"
)

// Defaults for the bind address and endpoint.
const (
	DefaultHost = "0.0.0.0"
	DefaultPort = 8080
	DefaultPath = "/mcp"
)

// Options configures a Server.
type Options struct {
	Host         string
	Port         int
	Path         string
	Instructions string
	Logger       logging.Logger
}

// Server wraps an MCP server exposing tools.
type Server struct {
	name   string
	mcp    *server.MCPServer
	tools  []tool.Tool
	opts   Options
	logger logging.Logger
}

// New builds an MCP server named name that exposes tools.
func New(name, version string, tools []tool.Tool, optFns ...func(o *Options)) (*Server, error) {
	opts := Options{
		Host:   DefaultHost,
		Port:   DefaultPort,
		Path:   DefaultPath,
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Port < 0 || opts.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", opts.Port)
	}

	serverOpts := []server.ServerOption{
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	}
	if opts.Instructions != "" {
		serverOpts = append(serverOpts, server.WithInstructions(opts.Instructions))
	}

	s := &Server{
		name:   name,
		mcp:    server.NewMCPServer(name, version, serverOpts...),
		opts:   opts,
		logger: opts.Logger,
	}

	seen := make(map[string]bool, len(tools))

	for _, t := range tools {
		if seen[t.Name()] {
			return nil, fmt.Errorf("duplicate tool %q", t.Name())
		}

		seen[t.Name()] = true

		def, err := Definition(t)
		if err != nil {
			return nil, err
		}

		s.mcp.AddTool(def, s.handler(t))
		s.tools = append(s.tools, t)
	}

	return s, nil
}

// Definition converts a tool into its MCP declaration.
func Definition(t tool.Tool) (mcp.Tool, error) {
	schema, err := json.Marshal(t.Parameters())
	if err != nil {
		return mcp.Tool{}, fmt.Errorf("marshal schema of %s: %w", t.Name(), err)
	}

	return mcp.NewToolWithRawSchema(t.Name(), t.Description(), schema), nil
}

// handler adapts a tool to an MCP tool handler. Tool failures become
// IsError results carrying {"error","code","tool","details"}.
func (s *Server) handler(t tool.Tool) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		toolCtx := core.NewStandaloneToolContext(ctx, s.logger, core.NewID())

		s.logger.Debug("mcp.tool.call", "server", s.name, "tool", t.Name(), "fc_id", toolCtx.FunctionCallID())

		result, err := t.Call(toolCtx, req.GetArguments())
		if err != nil {
			return ErrorResult(tool.AsToolError(t.Name(), err)), nil
		}

		return TextResult(result)
	}
}

// TextResult renders v as JSON text content.
func TextResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}

	return mcp.NewToolResultText(string(b)), nil
}

// ErrorResult renders a tool error as an IsError result.
func ErrorResult(te *tool.ToolError) *mcp.CallToolResult {
	b, err := json.Marshal(te.Payload())
	if err != nil {
		b = []byte(fmt.Sprintf(`{"error":%q,"code":%q,"tool":%q}`, te.Message, te.Code, te.Tool))
	}

	return mcp.NewToolResultError(string(b))
}

// Name returns the server name.
func (s *Server) Name() string { return s.name }

// Tools returns the exposed tools in registration order.
func (s *Server) Tools() []tool.Tool { return append([]tool.Tool(nil), s.tools...) }

// MCP returns the underlying MCP server, e.g. for in-process clients.
func (s *Server) MCP() *server.MCPServer { return s.mcp }

// Addr returns host:port.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.opts.Host, strconv.Itoa(s.opts.Port))
}

// Handler returns the HTTP handler: the MCP endpoint at the configured path
// plus /healthz, wrapped in the standard middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(s.opts.Path, server.NewStreamableHTTPServer(s.mcp, server.WithEndpointPath(s.opts.Path)))
	mux.Handle("/healthz", httpserver.Health(s.name))

	return httpserver.Chain(s.logger).Then(mux)
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, optFns ...func(o *httpserver.Options)) error {
	s.logger.Info("mcp.server.start", "server", s.name, "addr", s.Addr(), "path", s.opts.Path, "tools", len(s.tools))

	optFns = append([]func(o *httpserver.Options){func(o *httpserver.Options) { o.Logger = s.logger }}, optFns...)

	return httpserver.Serve(ctx, s.Addr(), s.Handler(), optFns...)
}
