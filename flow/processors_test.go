package flow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/casemesh/core"
	"github.com/hupe1980/casemesh/internal/testutil"
	"github.com/hupe1980/casemesh/model"
)

func TestInstructionsProcessor_RendersSessionState(t *testing.T) {
	sess := testutil.NewSessionBuilder("sess-1").State("last_report_id", "RPT-0000ABCD").Build()
	runCtx := testutil.RunContext(sess, core.Content{})

	agent := newTestAgent(t, model.NewMockModel("mock", "mock"))
	agent.instruction = "Informe {{.last_report_id}}"

	req := new(model.Request)
	require.NoError(t, NewInstructionsProcessor().ProcessRequest(runCtx, req, agent))
	assert.Equal(t, "Informe RPT-0000ABCD", req.Instructions)
}

func TestInstructionsProcessor_InvalidTemplate(t *testing.T) {
	runCtx := core.NewRunContext(context.Background(), "sess-1", "run-1", core.AgentInfo{}, core.Content{})

	agent := newTestAgent(t, model.NewMockModel("mock", "mock"))
	agent.instruction = "{{.broken"

	err := NewInstructionsProcessor().ProcessRequest(runCtx, new(model.Request), agent)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to render template")
}

func TestContentsProcessor_UsesUserContentWithoutHistory(t *testing.T) {
	runCtx := core.NewRunContext(context.Background(), "sess-1", "run-1", core.AgentInfo{}, core.NewTextContent("user", "hola"))

	req := &model.Request{Instructions: "sys"}
	require.NoError(t, NewContentsProcessor().ProcessRequest(runCtx, req, newTestAgent(t, model.NewMockModel("mock", "mock"))))

	require.Len(t, req.Contents, 2)
	assert.Equal(t, "sys", req.Contents[0].Text())
	assert.Equal(t, "hola", req.Contents[1].Text())
}

func TestContentsProcessor_TrimsHistory(t *testing.T) {
	sess := testutil.NewSessionBuilder("sess-1").UserTexts("uno", "dos", "tres", "cuatro").Build()
	runCtx := testutil.RunContext(sess, core.Content{})

	agent := newTestAgent(t, model.NewMockModel("mock", "mock"))
	agent.maxHistory = 2

	req := new(model.Request)
	require.NoError(t, NewContentsProcessor().ProcessRequest(runCtx, req, agent))

	require.Len(t, req.Contents, 3)
	assert.Equal(t, "tres", req.Contents[1].Text())
	assert.Equal(t, "cuatro", req.Contents[2].Text())
}

func TestTrimHistory_DropsOrphanToolResponses(t *testing.T) {
	events := []core.Event{
		testutil.NewEventBuilder().Author("user").UserText("hola").Build(),
		testutil.NewEventBuilder().Author("Detective").FunctionCall("1", "echo", "{}").Build(),
		testutil.NewEventBuilder().Author("Detective").FunctionResponse("1", "echo", "ok").Build(),
		testutil.NewEventBuilder().Author("Detective").AssistantText("listo").Build(),
	}

	trimmed := trimHistory(events, 2)
	require.Len(t, trimmed, 1)
	assert.Equal(t, "listo", trimmed[0].Content.Text())

	assert.Len(t, trimHistory(events, 0), 4)
	assert.Len(t, trimHistory(events, 10), 4)
}
