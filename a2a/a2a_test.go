package a2a

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	protocol "github.com/a2aproject/a2a-go/a2a"
	"github.com/a2aproject/a2a-go/a2asrv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/casemesh/core"
	"github.com/hupe1980/casemesh/internal/config"
	"github.com/hupe1980/casemesh/logging"
)

type mockRunner struct {
	mock.Mock
}

func (m *mockRunner) Run(ctx context.Context, sessionID string, userContent core.Content) (string, <-chan core.Event, <-chan error, error) {
	args := m.Called(ctx, sessionID, userContent.Text())

	events := make(chan core.Event, 8)
	errs := make(chan error, 1)

	if evs, ok := args.Get(1).([]core.Event); ok {
		for _, ev := range evs {
			events <- ev
		}
	}

	if err := args.Error(2); err != nil {
		errs <- err
	}

	close(events)
	close(errs)

	return args.String(0), events, errs, args.Error(3)
}

func (m *mockRunner) Cancel(runID string) error { return m.Called(runID).Error(0) }

type recorder struct {
	mu     sync.Mutex
	events []protocol.Event
}

func (r *recorder) Write(_ context.Context, ev protocol.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, ev)

	return nil
}

func request(text string) *a2asrv.RequestContext {
	return &a2asrv.RequestContext{
		Message:   protocol.NewMessage(protocol.MessageRoleUser, protocol.TextPart{Text: text}),
		TaskID:    protocol.TaskID("task-1"),
		ContextID: "ctx-1",
	}
}

func newExecutor(r core.Runner) *agentExecutor {
	return NewAgentExecutor(r, func(o *ExecutorOptions) { o.Logger = logging.NoOpLogger{} }).(*agentExecutor)
}

func TestExecute_WritesFinalAnswer(t *testing.T) {
	partial := true
	fragment := core.NewMessageEvent("run-1", "Detective", "El caso")
	fragment.Partial = &partial

	r := new(mockRunner)
	r.On("Run", mock.Anything, "ctx-1", "¿Estado de CASE-001?").Return("run-1", []core.Event{
		fragment,
		core.NewMessageEvent("run-1", "Detective", "El caso CASE-001 está abierto."),
	}, nil, nil)

	w := &recorder{}
	require.NoError(t, newExecutor(r).execute(context.Background(), request("¿Estado de CASE-001?"), w))

	require.Len(t, w.events, 1)
	msg, ok := w.events[0].(*protocol.Message)
	require.True(t, ok)
	assert.Equal(t, protocol.MessageRoleAgent, msg.Role)
	assert.Equal(t, protocol.TaskID("task-1"), msg.TaskID)
	assert.Equal(t, "ctx-1", msg.ContextID)
	assert.Equal(t, "El caso CASE-001 está abierto.", messageText(msg))
	r.AssertExpectations(t)
}

func TestExecute_FallsBackToTaskID(t *testing.T) {
	r := new(mockRunner)
	r.On("Run", mock.Anything, "task-1", "hola").Return("run-1", []core.Event{}, nil, nil)

	req := request("hola")
	req.ContextID = ""

	w := &recorder{}
	require.NoError(t, newExecutor(r).execute(context.Background(), req, w))

	require.Len(t, w.events, 1)
	assert.Equal(t, "No se obtuvo respuesta del agente.", messageText(w.events[0].(*protocol.Message)))
}

func TestExecute_ReportsErrorEvent(t *testing.T) {
	r := new(mockRunner)
	r.On("Run", mock.Anything, "ctx-1", "hola").Return("run-1", []core.Event{
		core.NewErrorEvent("run-1", "MODEL_ERROR", "model unavailable"),
	}, nil, nil)

	w := &recorder{}
	require.NoError(t, newExecutor(r).execute(context.Background(), request("hola"), w))
	assert.Equal(t, "model unavailable", messageText(w.events[0].(*protocol.Message)))
}

func TestExecute_Failures(t *testing.T) {
	t.Run("empty message", func(t *testing.T) {
		err := newExecutor(new(mockRunner)).execute(context.Background(), request("   "), &recorder{})
		assert.ErrorIs(t, err, ErrEmptyMessage)
	})

	t.Run("run rejected", func(t *testing.T) {
		r := new(mockRunner)
		r.On("Run", mock.Anything, "ctx-1", "hola").Return("", nil, nil, errors.New("too many runs"))

		err := newExecutor(r).execute(context.Background(), request("hola"), &recorder{})
		assert.ErrorContains(t, err, "too many runs")
	})

	t.Run("run failed", func(t *testing.T) {
		r := new(mockRunner)
		r.On("Run", mock.Anything, "ctx-1", "hola").Return("run-1", []core.Event{}, errors.New("boom"), nil)

		w := &recorder{}
		err := newExecutor(r).execute(context.Background(), request("hola"), w)
		assert.ErrorContains(t, err, "run run-1: boom")
		assert.Empty(t, w.events)
	})
}

func TestCancel(t *testing.T) {
	r := new(mockRunner)
	r.On("Cancel", "run-7").Return(nil)

	e := newExecutor(r)
	w := &recorder{}

	assert.Error(t, e.cancel(context.Background(), request(""), w))

	e.runs.Store(protocol.TaskID("task-1"), "run-7")
	require.NoError(t, e.cancel(context.Background(), request(""), w))

	require.Len(t, w.events, 1)
	ev, ok := w.events[0].(*protocol.TaskStatusUpdateEvent)
	require.True(t, ok)
	assert.Equal(t, protocol.TaskStateCanceled, ev.Status.State)
	assert.True(t, ev.Final)
	r.AssertExpectations(t)
}

func TestMessageText(t *testing.T) {
	msg := protocol.NewMessage(protocol.MessageRoleUser,
		protocol.TextPart{Text: "uno"},
		&protocol.TextPart{Text: "dos"},
	)

	assert.Equal(t, "uno\ndos", messageText(msg))
	assert.Empty(t, messageText(nil))
}

func testConfig() *config.AgentConfig {
	return &config.AgentConfig{
		Metadata:     config.Metadata{Name: "case_agent", Description: "Asistente de casos", Version: "1.0.0"},
		Service:      config.Service{URL: "http://localhost:8080", Port: 8080},
		Capabilities: config.Capabilities{Streaming: true},
		Interface: config.Interface{
			DefaultInputModes:  []string{"text/plain"},
			DefaultOutputModes: []string{"text/plain"},
		},
		Skills: []config.Skill{{ID: "cases", Name: "Gestión de casos", Tags: []string{"casos"}, Examples: []string{"Estado de CASE-001"}}},
	}
}

func TestNewAgentCard(t *testing.T) {
	card := NewAgentCard(testConfig())

	assert.Equal(t, "case_agent", card.Name)
	assert.Equal(t, "http://localhost:8080", card.URL)
	assert.Equal(t, protocol.TransportProtocolJSONRPC, card.PreferredTransport)
	assert.True(t, card.Capabilities.Streaming)
	require.Len(t, card.Skills, 1)
	assert.Equal(t, "cases", card.Skills[0].ID)
	assert.Equal(t, []string{"Estado de CASE-001"}, card.Skills[0].Examples)
}

func TestNewHandler_ServesCardAndHealth(t *testing.T) {
	srv := httptest.NewServer(NewHandler(NewAgentCard(testConfig()), newExecutor(new(mockRunner)), logging.NoOpLogger{}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + a2asrv.WellKnownAgentCardPath)
	require.NoError(t, err)

	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var card map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&card))
	assert.Equal(t, "case_agent", card["name"])

	health, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)

	defer health.Body.Close()

	assert.Equal(t, http.StatusOK, health.StatusCode)
}
