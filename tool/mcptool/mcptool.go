// Package mcptool discovers tools served by a remote MCP server and adapts
// them to tool.Tool so agents can call them like local functions.
package mcptool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hupe1980/casemesh/core"
	"github.com/hupe1980/casemesh/logging"
	"github.com/hupe1980/casemesh/tool"
)

// Options configures a Client.
type Options struct {
	// ClientName and ClientVersion identify this side during initialization.
	ClientName    string
	ClientVersion string
	// CallTimeout bounds every tool call; zero means no extra bound.
	CallTimeout time.Duration
	Logger      logging.Logger
}

// Client is an initialized MCP session.
type Client struct {
	name   string
	mcp    *client.Client
	opts   Options
	server mcp.Implementation
}

// Connect opens a streamable HTTP session to url and initializes it.
func Connect(ctx context.Context, name, url string, optFns ...func(o *Options)) (*Client, error) {
	c, err := client.NewStreamableHttpClient(url)
	if err != nil {
		return nil, fmt.Errorf("mcp client %s: %w", name, err)
	}

	return New(ctx, name, c, optFns...)
}

// New starts and initializes an existing MCP client (any transport).
func New(ctx context.Context, name string, c *client.Client, optFns ...func(o *Options)) (*Client, error) {
	opts := Options{
		ClientName:    "casemesh",
		ClientVersion: "1.0.0",
		Logger:        logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if err := c.Start(ctx); err != nil {
		return nil, fmt.Errorf("start mcp client %s: %w", name, err)
	}

	req := mcp.InitializeRequest{}
	req.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	req.Params.ClientInfo = mcp.Implementation{Name: opts.ClientName, Version: opts.ClientVersion}

	res, err := c.Initialize(ctx, req)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("initialize mcp client %s: %w", name, err)
	}

	opts.Logger.Info("mcptool.client.initialized", "server", name, "server_name", res.ServerInfo.Name, "server_version", res.ServerInfo.Version)

	return &Client{name: name, mcp: c, opts: opts, server: res.ServerInfo}, nil
}

// ServerInfo returns the remote implementation info.
func (c *Client) ServerInfo() mcp.Implementation { return c.server }

// Close ends the session.
func (c *Client) Close() error { return c.mcp.Close() }

// Tools lists the remote tools.
func (c *Client) Tools(ctx context.Context) ([]tool.Tool, error) {
	res, err := c.mcp.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("list tools of %s: %w", c.name, err)
	}

	tools := make([]tool.Tool, 0, len(res.Tools))

	for _, def := range res.Tools {
		schema, err := inputSchema(def)
		if err != nil {
			return nil, err
		}

		tools = append(tools, &RemoteTool{client: c, def: def, schema: schema})
	}

	c.opts.Logger.Info("mcptool.tools.discovered", "server", c.name, "count", len(tools))

	return tools, nil
}

func inputSchema(def mcp.Tool) (map[string]any, error) {
	raw := def.RawInputSchema
	if len(raw) == 0 {
		b, err := json.Marshal(def.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("marshal schema of %s: %w", def.Name, err)
		}

		raw = b
	}

	var schema map[string]any
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, fmt.Errorf("decode schema of %s: %w", def.Name, err)
	}

	return schema, nil
}

// RemoteTool proxies calls to a tool on an MCP server.
type RemoteTool struct {
	client *Client
	def    mcp.Tool
	schema map[string]any
}

// Name returns the remote tool name.
func (t *RemoteTool) Name() string { return t.def.Name }

// Description returns the remote description.
func (t *RemoteTool) Description() string { return t.def.Description }

// Parameters returns the remote input schema.
func (t *RemoteTool) Parameters() map[string]any { return t.schema }

// Call invokes the remote tool. JSON text results are decoded; IsError
// results become *tool.ToolError with the server's code and message.
func (t *RemoteTool) Call(toolCtx *core.ToolContext, args map[string]any) (any, error) {
	ctx := toolCtx.Context()
	if t.client.opts.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.client.opts.CallTimeout)

		defer cancel()
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = t.def.Name
	req.Params.Arguments = args

	toolCtx.LogDebug("mcptool.call.start", "server", t.client.name, "tool", t.def.Name, "fc_id", toolCtx.FunctionCallID())

	res, err := t.client.mcp.CallTool(ctx, req)
	if err != nil {
		return nil, tool.NewToolError(t.def.Name, err.Error(), tool.CodeExecutionError)
	}

	text := resultText(res)

	if res.IsError {
		return nil, remoteError(t.def.Name, text)
	}

	var decoded any
	if err := json.Unmarshal([]byte(text), &decoded); err == nil {
		return decoded, nil
	}

	return text, nil
}

func resultText(res *mcp.CallToolResult) string {
	var sb strings.Builder

	for _, c := range res.Content {
		switch tc := c.(type) {
		case mcp.TextContent:
			sb.WriteString(tc.Text)
		case *mcp.TextContent:
			sb.WriteString(tc.Text)
		}
	}

	return sb.String()
}

func remoteError(name, text string) *tool.ToolError {
	var payload struct {
		Error   string `json:"error"`
		Code    string `json:"code"`
		Details any    `json:"details"`
	}

	if err := json.Unmarshal([]byte(text), &payload); err != nil || payload.Error == "" {
		return tool.NewToolError(name, text, tool.CodeExecutionError)
	}

	if payload.Code == "" {
		payload.Code = tool.CodeExecutionError
	}

	return &tool.ToolError{Tool: name, Message: payload.Error, Code: payload.Code, Details: payload.Details}
}
