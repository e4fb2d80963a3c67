// Package toolset adapts the case and informant stores into tool.Tool values.
// Handlers are stateless: they decode typed arguments, call one store method
// and translate store errors into *tool.ToolError codes.
package toolset

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hupe1980/casemesh/core"
	"github.com/hupe1980/casemesh/internal/storeerr"
	"github.com/hupe1980/casemesh/tool"
)

// Server identities published over MCP.
const (
	CaseServerName      = "Case Management Server"
	InformantServerName = "Informant Management Server"
	Version             = "1.0.0"
)

// newTool builds a FunctionTool whose schema is derived from the argument
// struct A. Enums declared in `enum` tags are published but enforced by the
// store, which owns the error messages and the order of checks. Store
// failures are mapped onto tool error codes.
func newTool[A any](name, description string, fn func(tc *core.ToolContext, args A) (any, error)) tool.Tool {
	var zero A

	return tool.NewFunctionToolFromStruct(name, description, zero, func(tc *core.ToolContext, raw map[string]any) (any, error) {
		args, err := bind[A](raw)
		if err != nil {
			return nil, tool.NewToolError(name, fmt.Sprintf("argumentos no válidos: %v", err), tool.CodeValidationError)
		}

		res, err := fn(tc, args)
		if err != nil {
			return nil, storeError(name, err)
		}

		return res, nil
	}, func(o *tool.FunctionToolOptions) {
		o.DeferEnums = true
	})
}

// bind decodes validated arguments into A.
func bind[A any](raw map[string]any) (A, error) {
	var args A

	data, err := json.Marshal(raw)
	if err != nil {
		return args, err
	}

	err = json.Unmarshal(data, &args)

	return args, err
}

// noArgs is the argument struct of parameterless tools.
type noArgs struct{}

// storeError maps a store failure onto the tool error taxonomy.
func storeError(toolName string, err error) error {
	var se *storeerr.Error
	if !errors.As(err, &se) {
		return tool.AsToolError(toolName, err)
	}

	code := tool.CodeExecutionError

	switch se.Kind {
	case storeerr.KindNotFound:
		code = tool.CodeNotFound
	case storeerr.KindInvalidEnum:
		code = tool.CodeInvalidEnum
	case storeerr.KindInvalidFormat:
		code = tool.CodeInvalidFormat
	case storeerr.KindConflict:
		code = tool.CodeConflict
	}

	return &tool.ToolError{Tool: toolName, Message: se.Message, Code: code, Details: se}
}
