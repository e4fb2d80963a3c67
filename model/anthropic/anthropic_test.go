package anthropic

import (
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/casemesh/core"
	"github.com/hupe1980/casemesh/model"
)

func TestBuildMessages_ToolResultsInUserTurn(t *testing.T) {
	m := NewModel(func(o *Options) { o.APIKey = "test-key" })

	contents := []core.Content{
		core.NewTextContent("system", "Eres un detective."),
		core.NewTextContent("user", "¿estado de CASE-001?"),
		{Role: "assistant", Parts: []core.Part{core.FunctionCallPart{FunctionCall: core.FunctionCall{
			ID: "toolu_1", Name: "get_case_status", Arguments: `{"case_id":"CASE-001"}`,
		}}}},
		{Role: "tool", Parts: []core.Part{core.FunctionResponsePart{FunctionResponse: core.FunctionResponse{
			ID: "toolu_1", Name: "get_case_status", Response: map[string]any{"status": "abierto"},
		}}}},
		core.NewTextContent("assistant", "Está abierto."),
	}

	msgs := m.buildMessages(contents)
	require.Len(t, msgs, 4)
	assert.Equal(t, anthropic.MessageParamRoleUser, msgs[0].Role)
	assert.Equal(t, anthropic.MessageParamRoleAssistant, msgs[1].Role)
	assert.Equal(t, anthropic.MessageParamRoleUser, msgs[2].Role)
	require.Len(t, msgs[2].Content, 1)
	assert.NotNil(t, msgs[2].Content[0].OfToolResult)
	assert.Equal(t, anthropic.MessageParamRoleAssistant, msgs[3].Role)

	system := m.extractSystemMessage(contents)
	require.Len(t, system, 1)
	assert.Equal(t, "Eres un detective.", system[0].Text)
}

func TestBuildTools(t *testing.T) {
	m := NewModel(func(o *Options) { o.APIKey = "test-key" })

	tools := m.buildTools([]model.ToolDefinition{{Type: "function", Function: model.FunctionDefinition{
		Name:        "get_case_status",
		Description: "Obtiene el estado actual de un caso.",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{"case_id": map[string]any{"type": "string"}},
			"required":   []any{"case_id"},
		},
	}}})

	require.Len(t, tools, 1)
	require.NotNil(t, tools[0].OfTool)
	assert.Equal(t, "get_case_status", tools[0].OfTool.Name)
	assert.Equal(t, []string{"case_id"}, tools[0].OfTool.InputSchema.Required)
	assert.Equal(t, "Obtiene el estado actual de un caso.", tools[0].OfTool.Description.Value)

	assert.Equal(t, "anthropic", m.Info().Provider)
}
