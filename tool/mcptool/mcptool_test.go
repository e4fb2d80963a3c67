package mcptool

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/casemesh/core"
	"github.com/hupe1980/casemesh/internal/informantstore"
	"github.com/hupe1980/casemesh/internal/mcpserver"
	"github.com/hupe1980/casemesh/internal/toolset"
	"github.com/hupe1980/casemesh/logging"
	"github.com/hupe1980/casemesh/tool"
)

func connect(t *testing.T) *Client {
	t.Helper()

	srv, err := mcpserver.New(toolset.InformantServerName, toolset.Version, toolset.InformantTools(informantstore.New()))
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	c, err := Connect(context.Background(), "informants", ts.URL+mcpserver.DefaultPath)
	require.NoError(t, err)

	t.Cleanup(func() { _ = c.Close() })

	return c
}

func toolsByName(t *testing.T, c *Client) map[string]tool.Tool {
	t.Helper()

	tools, err := c.Tools(context.Background())
	require.NoError(t, err)

	m := make(map[string]tool.Tool, len(tools))
	for _, tl := range tools {
		m[tl.Name()] = tl
	}

	return m
}

func newToolContext() *core.ToolContext {
	return core.NewStandaloneToolContext(context.Background(), logging.NoOpLogger{}, "fc-remote")
}

func TestConnectAndDiscover(t *testing.T) {
	c := connect(t)
	assert.Equal(t, "Informant Management Server", c.ServerInfo().Name)

	tools := toolsByName(t, c)
	require.Len(t, tools, 12)

	reg := tools["register_new_informant"]
	require.NotNil(t, reg)
	assert.Contains(t, reg.Description(), "Registra un nuevo informante")

	props := reg.Parameters()["properties"].(map[string]any)
	assert.Contains(t, props, "specialty")
	assert.Len(t, props["specialty"].(map[string]any)["enum"], 6)
}

func TestRemoteCall_Success(t *testing.T) {
	tools := toolsByName(t, connect(t))

	res, err := tools["get_active_informants_count"].Call(newToolContext(), map[string]any{})
	require.NoError(t, err)

	m, ok := res.(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 3, m["active_informants"], 0)
	assert.Equal(t, "75.0%", m["activity_rate"])
}

func TestRemoteCall_ErrorCodes(t *testing.T) {
	tools := toolsByName(t, connect(t))

	_, err := tools["schedule_informant_meeting"].Call(newToolContext(), map[string]any{
		"informant_id": "INF-003", "date": "2025-09-05", "time": "18:00", "location": "Puerto", "purpose": "x",
	})

	var te *tool.ToolError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, tool.CodeConflict, te.Code)
	assert.Contains(t, te.Message, "Cuervo")
	assert.Equal(t, "schedule_informant_meeting", te.Tool)

	_, err = tools["get_informant_profile"].Call(newToolContext(), map[string]any{"informant_id": "INF-999"})
	require.ErrorAs(t, err, &te)
	assert.Equal(t, tool.CodeNotFound, te.Code)
}

func TestRemoteError_Fallbacks(t *testing.T) {
	te := remoteError("t", "plain failure")
	assert.Equal(t, tool.CodeExecutionError, te.Code)
	assert.Equal(t, "plain failure", te.Message)

	te = remoteError("t", `{"error":"boom"}`)
	assert.Equal(t, tool.CodeExecutionError, te.Code)
	assert.Equal(t, "boom", te.Message)
}
