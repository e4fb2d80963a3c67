// Package tool implements the function calling subsystem: the Tool contract
// agents invoke, schema validated FunctionTool adapters, a name-keyed Registry
// and the ToolError type every failure is normalized into.
package tool

import (
	"errors"
	"fmt"

	"github.com/hupe1980/casemesh/core"
	"github.com/hupe1980/casemesh/internal/util"
)

// Tool is a capability exposed to a model or served over MCP.
//
// Implementations must be safe for concurrent use; the flow executes
// independent calls in parallel.
type Tool interface {
	// Name is the unique snake_case identifier used in function calls.
	Name() string

	// Description tells the model when to use the tool.
	Description() string

	// Parameters is the JSON schema of the argument object.
	Parameters() map[string]any

	// Call executes the tool with already decoded arguments.
	Call(toolCtx *core.ToolContext, args map[string]any) (any, error)
}

// ValidationError represents parameter validation errors with detailed information.
type ValidationError = util.ValidationError

// Error codes carried by ToolError.
const (
	CodeNotFound        = "NOT_FOUND"
	CodeInvalidEnum     = "INVALID_ENUM"
	CodeInvalidFormat   = "INVALID_FORMAT"
	CodeConflict        = "CONFLICT"
	CodeValidationError = "VALIDATION_ERROR"
	CodeExecutionError  = "EXECUTION_ERROR"
)

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`              // Name of the tool that failed
	Message string `json:"message"`           // Human readable message
	Code    string `json:"code"`              // One of the Code* constants
	Details any    `json:"details,omitempty"` // Structured cause, if any
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}

	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// Payload is the wire form sent to MCP clients and models on failure.
func (e *ToolError) Payload() map[string]any {
	p := map[string]any{"error": e.Message, "code": e.Code, "tool": e.Tool}
	if e.Details != nil {
		p["details"] = e.Details
	}

	return p
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}

// AsToolError returns err as a *ToolError, wrapping unknown errors as
// EXECUTION_ERROR. A nil err yields nil.
func AsToolError(toolName string, err error) *ToolError {
	if err == nil {
		return nil
	}

	var te *ToolError
	if errors.As(err, &te) {
		return te
	}

	return NewToolError(toolName, err.Error(), CodeExecutionError)
}
