package flow

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/casemesh/core"
	"github.com/hupe1980/casemesh/model"
	"github.com/hupe1980/casemesh/session"
	"github.com/hupe1980/casemesh/tool"
)

type testAgent struct {
	name        string
	llm         model.Model
	instruction string
	tools       *tool.Registry
	streaming   bool
	outputKey   string
	maxHistory  int
}

func newTestAgent(t *testing.T, llm model.Model, tools ...tool.Tool) *testAgent {
	t.Helper()

	reg, err := tool.NewRegistry(tools...)
	require.NoError(t, err)

	return &testAgent{name: "Detective", llm: llm, instruction: "Eres un asistente.", tools: reg, maxHistory: 20}
}

func (a *testAgent) GetName() string                                    { return a.name }
func (a *testAgent) GetLLM() model.Model                                { return a.llm }
func (a *testAgent) ResolveInstructions(*core.RunContext) (string, error) { return a.instruction, nil }
func (a *testAgent) GetTools() *tool.Registry                           { return a.tools }
func (a *testAgent) IsFunctionCallingEnabled() bool                     { return true }
func (a *testAgent) IsStreamingEnabled() bool                           { return a.streaming }
func (a *testAgent) GetOutputKey() string                               { return a.outputKey }
func (a *testAgent) MaxHistoryMessages() int                            { return a.maxHistory }

func (a *testAgent) ExecuteTool(toolCtx *core.ToolContext, name string, args string) (any, error) {
	t, ok := a.tools.Get(name)
	if !ok {
		return nil, tool.NewToolError(name, "unknown tool", tool.CodeNotFound)
	}

	argMap := map[string]any{}
	if args != "" {
		if err := json.Unmarshal([]byte(args), &argMap); err != nil {
			return nil, err
		}
	}

	return t.Call(toolCtx, argMap)
}

// drive runs the flow the way the runner does: persist every complete event,
// apply its state delta, then resume the flow.
func drive(t *testing.T, f Flow, maxCalls int, user string) ([]core.Event, *session.InMemoryStore) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	store := session.NewInMemoryStore()
	userContent := core.NewTextContent("user", user)

	_, err := store.Create("sess-1")
	require.NoError(t, err)
	require.NoError(t, store.AppendEvent("sess-1", core.NewUserContentEvent("run-1", &userContent)))

	resume := make(chan struct{})
	runCtx := core.NewRunContext(ctx, "sess-1", "run-1", core.AgentInfo{Name: "Detective"}, userContent,
		func(o *core.RunContextOptions) {
			o.MaxModelCalls = maxCalls
			o.Resume = resume
			o.SessionStore = store
		})

	events, err := f.Execute(runCtx)
	require.NoError(t, err)

	var out []core.Event

	for ev := range events {
		out = append(out, ev)

		if ev.IsPartial() {
			continue
		}

		require.NoError(t, store.AppendEvent("sess-1", ev))

		if len(ev.Actions.StateDelta) > 0 {
			require.NoError(t, store.ApplyDelta("sess-1", ev.Actions.StateDelta))
		}

		resume <- struct{}{}
	}

	return out, store
}

func echoTool() tool.Tool {
	return tool.NewFunctionTool("echo", "Devuelve el texto", map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text": map[string]any{"type": "string"},
		},
		"required": []string{"text"},
	}, func(tc *core.ToolContext, args map[string]any) (any, error) {
		tc.SetState("last_echo", args["text"])
		return map[string]any{"echo": args["text"]}, nil
	})
}

func TestSingleAgentFlow_TextAnswer(t *testing.T) {
	llm := model.NewMockModel("mock", "mock")
	llm.AddResponse("hola", "buenas tardes")

	agent := newTestAgent(t, llm)
	agent.outputKey = "answer"

	events, store := drive(t, NewSingleAgentFlow(agent), 0, "hola")

	require.Len(t, events, 1)
	assert.Equal(t, "buenas tardes", events[0].Content.Text())
	assert.True(t, events[0].IsFinalResponse())
	require.NotNil(t, events[0].TurnComplete)
	assert.True(t, *events[0].TurnComplete)

	sess, err := store.Get("sess-1")
	require.NoError(t, err)

	v, ok := sess.GetState("answer")
	require.True(t, ok)
	assert.Equal(t, "buenas tardes", v)

	reqs := llm.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "Eres un asistente.", reqs[0].Instructions)
	assert.Equal(t, "system", reqs[0].Contents[0].Role)
	assert.Equal(t, "hola", reqs[0].Contents[len(reqs[0].Contents)-1].Text())
}

func TestSingleAgentFlow_Streaming(t *testing.T) {
	llm := model.NewMockModel("mock", "mock")
	llm.AddResponse("hola", "ok")

	agent := newTestAgent(t, llm)
	agent.streaming = true

	events, _ := drive(t, NewSingleAgentFlow(agent), 0, "hola")

	require.Len(t, events, 3)
	assert.True(t, events[0].IsPartial())
	assert.True(t, events[1].IsPartial())
	assert.False(t, events[2].IsPartial())
	assert.Equal(t, "ok", events[2].Content.Text())
}

func TestSingleAgentFlow_ToolLoop(t *testing.T) {
	llm := model.NewMockModel("mock", "mock")
	llm.AddToolCallTurn("call-1", "echo", `{"text":"Cuervo"}`)
	llm.AddTextTurn("listo")

	events, store := drive(t, NewSingleAgentFlow(newTestAgent(t, llm, echoTool())), 0, "repite Cuervo")

	require.Len(t, events, 3)

	calls := events[0].FunctionCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "echo", calls[0].Name)

	responses := events[1].FunctionResponses()
	require.Len(t, responses, 1)
	assert.Equal(t, "call-1", responses[0].ID)
	assert.Equal(t, map[string]any{"echo": "Cuervo"}, responses[0].Response)
	assert.Equal(t, "Cuervo", events[1].Actions.StateDelta["last_echo"])

	assert.Equal(t, "listo", events[2].Content.Text())

	reqs := llm.Requests()
	require.Len(t, reqs, 2)
	require.Len(t, reqs[0].Tools, 1)
	assert.Equal(t, "echo", reqs[0].Tools[0].Function.Name)

	last := reqs[1].Contents[len(reqs[1].Contents)-1]
	assert.Equal(t, "tool", last.Role)

	sess, err := store.Get("sess-1")
	require.NoError(t, err)

	v, ok := sess.GetState("last_echo")
	require.True(t, ok)
	assert.Equal(t, "Cuervo", v)
}

func TestSingleAgentFlow_ToolErrorBecomesPayload(t *testing.T) {
	failing := tool.NewFunctionTool("get_case_details", "Detalle", map[string]any{
		"type":       "object",
		"properties": map[string]any{"case_id": map[string]any{"type": "string"}},
	}, func(*core.ToolContext, map[string]any) (any, error) {
		return nil, tool.NewToolError("get_case_details", "Caso con ID 'X' no encontrado.", tool.CodeNotFound)
	})

	llm := model.NewMockModel("mock", "mock")
	llm.AddToolCallTurn("call-1", "get_case_details", `{"case_id":"X"}`)
	llm.AddToolCallTurn("call-2", "missing_tool", `{}`)
	llm.AddTextTurn("no existe")

	events, _ := drive(t, NewSingleAgentFlow(newTestAgent(t, llm, failing)), 0, "caso X")

	require.Len(t, events, 5)

	fr := events[1].FunctionResponses()[0]
	assert.Empty(t, fr.Error)
	payload, ok := fr.Response.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, tool.CodeNotFound, payload["code"])
	assert.Equal(t, "Caso con ID 'X' no encontrado.", payload["error"])

	payload, ok = events[3].FunctionResponses()[0].Response.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, tool.CodeNotFound, payload["code"])
	assert.Equal(t, "missing_tool", payload["tool"])
}

func TestSingleAgentFlow_ModelCallLimit(t *testing.T) {
	llm := model.NewMockModel("mock", "mock")
	llm.AddToolCallTurn("call-1", "echo", `{"text":"a"}`)
	llm.AddToolCallTurn("call-2", "echo", `{"text":"b"}`)

	events, _ := drive(t, NewSingleAgentFlow(newTestAgent(t, llm, echoTool())), 1, "bucle")

	last := events[len(events)-1]
	require.True(t, last.IsError())
	assert.Equal(t, ErrorCodeModelCallLimit, *last.ErrorCode)
	assert.Len(t, llm.Requests(), 1)
}

type failingModel struct{}

func (failingModel) Generate(context.Context, model.Request) (<-chan model.Response, <-chan error) {
	respCh := make(chan model.Response)
	errCh := make(chan error, 1)
	errCh <- errors.New("upstream unavailable")

	close(respCh)
	close(errCh)

	return respCh, errCh
}

func (failingModel) Info() model.Info { return model.Info{Name: "failing"} }

func TestSingleAgentFlow_ModelError(t *testing.T) {
	events, _ := drive(t, NewSingleAgentFlow(newTestAgent(t, failingModel{})), 0, "hola")

	require.Len(t, events, 1)
	require.True(t, events[0].IsError())
	assert.Equal(t, ErrorCodeModel, *events[0].ErrorCode)
	assert.Equal(t, "upstream unavailable", *events[0].ErrorMessage)
}

func TestSingleAgentFlow_InstructionTemplate(t *testing.T) {
	llm := model.NewMockModel("mock", "mock")
	agent := newTestAgent(t, llm)
	agent.instruction = `Último informe: {{default "ninguno" .last_report_id}}`

	drive(t, NewSingleAgentFlow(agent), 0, "hola")

	reqs := llm.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "Último informe: ninguno", reqs[0].Instructions)
}
