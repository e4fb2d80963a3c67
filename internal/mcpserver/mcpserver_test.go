package mcpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/casemesh/core"
	"github.com/hupe1980/casemesh/internal/casestore"
	"github.com/hupe1980/casemesh/internal/toolset"
	"github.com/hupe1980/casemesh/tool"
)

func newInProcessClient(t *testing.T, s *Server) *client.Client {
	t.Helper()

	c, err := client.NewInProcessClient(s.MCP())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, c.Start(ctx))

	req := mcp.InitializeRequest{}
	req.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	req.Params.ClientInfo = mcp.Implementation{Name: "test", Version: "0.0.1"}

	_, err = c.Initialize(ctx, req)
	require.NoError(t, err)

	t.Cleanup(func() { _ = c.Close() })

	return c
}

func callTool(t *testing.T, c *client.Client, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	res, err := c.CallTool(context.Background(), req)
	require.NoError(t, err)

	return res
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()

	require.NotEmpty(t, res.Content)

	tc, ok := mcp.AsTextContent(res.Content[0])
	require.True(t, ok)

	return tc.Text
}

func newCaseServer(t *testing.T) *Server {
	t.Helper()

	s, err := New(toolset.CaseServerName, toolset.Version, toolset.CaseTools(casestore.New()), func(o *Options) {
		o.Instructions = toolset.CaseInstructions
	})
	require.NoError(t, err)

	return s
}

func TestNew_Defaults(t *testing.T) {
	s := newCaseServer(t)

	assert.Equal(t, "Case Management Server", s.Name())
	assert.Equal(t, "0.0.0.0:8080", s.Addr())
	assert.Len(t, s.Tools(), 8)
}

func TestNew_Rejects(t *testing.T) {
	tools := toolset.CaseTools(casestore.New())

	_, err := New("x", "1", append(tools, tools[0]))
	require.Error(t, err)

	_, err = New("x", "1", tools, func(o *Options) { o.Port = 70000 })
	require.Error(t, err)
}

func TestListTools(t *testing.T) {
	c := newInProcessClient(t, newCaseServer(t))

	res, err := c.ListTools(context.Background(), mcp.ListToolsRequest{})
	require.NoError(t, err)
	require.Len(t, res.Tools, 8)

	names := make([]string, 0, len(res.Tools))
	for _, def := range res.Tools {
		names = append(names, def.Name)
	}

	assert.Contains(t, names, "get_case_details")
	assert.Contains(t, names, "update_case_status")
}

func TestCallTool_Success(t *testing.T) {
	c := newInProcessClient(t, newCaseServer(t))

	res := callTool(t, c, "get_case_status", map[string]any{"case_id": "CASE-001"})
	assert.False(t, res.IsError)

	var status map[string]any
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &status))
	assert.Equal(t, "CASE-001", status["case_id"])
	assert.Equal(t, "abierto", status["status"])
}

func TestCallTool_ErrorPayload(t *testing.T) {
	c := newInProcessClient(t, newCaseServer(t))

	res := callTool(t, c, "get_case_details", map[string]any{"case_id": "CASE-404"})
	require.True(t, res.IsError)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &payload))
	assert.Equal(t, "Caso con ID 'CASE-404' no encontrado.", payload["error"])
	assert.Equal(t, tool.CodeNotFound, payload["code"])
	assert.Equal(t, "get_case_details", payload["tool"])
	assert.Contains(t, payload, "details")

	res = callTool(t, c, "update_case_status", map[string]any{"case_id": "CASE-001"})
	require.True(t, res.IsError)
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &payload))
	assert.Equal(t, tool.CodeValidationError, payload["code"])
}

func TestCallTool_StateSharedAcrossCalls(t *testing.T) {
	c := newInProcessClient(t, newCaseServer(t))

	res := callTool(t, c, "update_case_status", map[string]any{"case_id": "CASE-002", "new_status": "cerrado", "notes": "fin"})
	require.False(t, res.IsError)

	res = callTool(t, c, "get_case_status", map[string]any{"case_id": "CASE-002"})
	assert.Contains(t, text(t, res), `"status":"cerrado"`)
}

func TestHandler_Health(t *testing.T) {
	ts := httptest.NewServer(newCaseServer(t).Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)

	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestResults(t *testing.T) {
	res, err := TextResult(map[string]int{"count": 2})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, `{"count":2}`, text(t, res))

	_, err = TextResult(func() {})
	require.Error(t, err)

	errRes := ErrorResult(tool.NewToolError("t", "nope", tool.CodeConflict))
	assert.True(t, errRes.IsError)
	assert.JSONEq(t, `{"error":"nope","code":"CONFLICT","tool":"t"}`, text(t, errRes))
}

func TestDefinition(t *testing.T) {
	def, err := Definition(tool.NewFunctionTool("x", "desc", map[string]any{
		"type":       "object",
		"properties": map[string]any{"a": map[string]any{"type": "string", "enum": []string{"b"}}},
		"required":   []string{"a"},
	}, func(*core.ToolContext, map[string]any) (any, error) { return nil, nil }))
	require.NoError(t, err)

	assert.Equal(t, "x", def.Name)
	assert.Equal(t, "desc", def.Description)
	assert.JSONEq(t, `{"type":"object","properties":{"a":{"type":"string","enum":["b"]}},"required":["a"]}`, string(def.RawInputSchema))
}
