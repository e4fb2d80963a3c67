package agent

import (
	"fmt"
	"time"

	"github.com/hupe1980/casemesh/core"
)

// Instruction is the system prompt of a ModelAgent: either fixed text or a
// function evaluated once per run.
type Instruction struct {
	text   string
	render func(*core.RunContext) (string, error)
}

// NewInstructionFromText creates an Instruction from a static string.
func NewInstructionFromText(text string) Instruction { return Instruction{text: text} }

// NewInstructionFromFunc creates an Instruction evaluated on every run.
func NewInstructionFromFunc(f func(*core.RunContext) (string, error)) Instruction {
	return Instruction{render: f}
}

// WithCurrentDate returns an Instruction that appends the date of the run,
// formatted YYYY-MM-DD as the meeting tools expect it.
func (i Instruction) WithCurrentDate(now func() time.Time) Instruction {
	return NewInstructionFromFunc(func(runCtx *core.RunContext) (string, error) {
		text, err := i.Resolve(runCtx)
		if err != nil {
			return "", err
		}

		return fmt.Sprintf("%s\n\nFecha actual: %s.", text, now().Format(time.DateOnly)), nil
	})
}

// Resolve returns the instruction text for the run.
func (i Instruction) Resolve(runCtx *core.RunContext) (string, error) {
	if i.render != nil {
		return i.render(runCtx)
	}

	return i.text, nil
}
