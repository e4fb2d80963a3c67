package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/casemesh/core"
)

func newTestRunContext(runID string) *core.RunContext {
	return core.NewRunContext(context.Background(), "test-session", runID,
		core.AgentInfo{Name: "Detective", Type: "model"}, core.NewTextContent("user", "hola"))
}

func fixedClock() time.Time { return time.Date(2025, 9, 6, 23, 45, 0, 0, time.UTC) }

func TestInstruction_Static(t *testing.T) {
	got, err := NewInstructionFromText("Eres un detective.").Resolve(newTestRunContext("run-1"))
	require.NoError(t, err)
	assert.Equal(t, "Eres un detective.", got)
}

func TestInstruction_Func(t *testing.T) {
	inst := NewInstructionFromFunc(func(rc *core.RunContext) (string, error) { return "run " + rc.RunID, nil })

	got, err := inst.Resolve(newTestRunContext("run-7"))
	require.NoError(t, err)
	assert.Equal(t, "run run-7", got)
}

func TestInstruction_WithCurrentDate(t *testing.T) {
	got, err := NewInstructionFromText("Eres un detective.").WithCurrentDate(fixedClock).Resolve(newTestRunContext("run-1"))
	require.NoError(t, err)
	assert.Equal(t, "Eres un detective.\n\nFecha actual: 2025-09-06.", got)
}

func TestInstruction_WithCurrentDateKeepsTemplate(t *testing.T) {
	got, err := NewInstructionFromText(`Último informe: {{default "ninguno" .last_report_id}}`).WithCurrentDate(fixedClock).Resolve(newTestRunContext("run-1"))
	require.NoError(t, err)
	assert.Equal(t, "Último informe: {{default \"ninguno\" .last_report_id}}\n\nFecha actual: 2025-09-06.", got)
}

func TestInstruction_ErrorPropagation(t *testing.T) {
	expectedErr := errors.New("boom")

	inst := NewInstructionFromFunc(func(*core.RunContext) (string, error) { return "", expectedErr }).WithCurrentDate(fixedClock)

	_, err := inst.Resolve(newTestRunContext("run-1"))
	assert.ErrorIs(t, err, expectedErr)
}
