package tool

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/casemesh/core"
	"github.com/hupe1980/casemesh/internal/util"
)

// HandlerFunc is the implementation behind a FunctionTool.
type HandlerFunc func(toolCtx *core.ToolContext, args map[string]any) (any, error)

// FunctionTool exposes a plain Go function as a Tool.
//
// Arguments are validated against the declared schema before the function
// runs. Failures are normalized into *ToolError:
//
//	schema enum violation  -> INVALID_ENUM
//	other schema mismatch  -> VALIDATION_ERROR
//	*ToolError from fn     -> forwarded unchanged
//	any other error        -> EXECUTION_ERROR
//
// A FunctionTool is immutable after construction and safe for concurrent use.
type FunctionTool struct {
	name        string
	description string
	parameters  map[string]any
	validation  map[string]any
	fn          HandlerFunc
}

// FunctionToolOptions configures a FunctionTool.
type FunctionToolOptions struct {
	// DeferEnums publishes enum lists in the schema but leaves enforcing them
	// to the function, which then owns the error message and check order.
	DeferEnums bool
}

// NewFunctionTool constructs a FunctionTool from an explicit schema.
//
// Example:
//
//	statusTool := NewFunctionTool(
//	  "get_case_status",
//	  "Obtiene el estado actual de un caso",
//	  map[string]any{
//	    "type": "object",
//	    "properties": map[string]any{
//	      "case_id": map[string]any{"type": "string"},
//	    },
//	    "required": []string{"case_id"},
//	  },
//	  func(tc *core.ToolContext, args map[string]any) (any, error) {
//	    return store.GetCaseStatus(args["case_id"].(string))
//	  },
//	)
func NewFunctionTool(name, description string, parameters map[string]any, fn HandlerFunc, optFns ...func(o *FunctionToolOptions)) *FunctionTool {
	opts := FunctionToolOptions{}
	for _, optFn := range optFns {
		optFn(&opts)
	}

	validation := parameters
	if opts.DeferEnums {
		validation = withoutEnums(parameters)
	}

	return &FunctionTool{
		name:        name,
		description: description,
		parameters:  parameters,
		validation:  validation,
		fn:          fn,
	}
}

// NewFunctionToolFromStruct derives the schema from a struct via util.CreateSchema.
// Fields tagged `enum:"a,b"` publish an enum list.
func NewFunctionToolFromStruct(name, description string, structType any, fn HandlerFunc, optFns ...func(o *FunctionToolOptions)) *FunctionTool {
	return NewFunctionTool(name, description, util.CreateSchema(structType), fn, optFns...)
}

// Name returns the tool name.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the description exposed to models.
func (t *FunctionTool) Description() string { return t.description }

// Parameters returns the JSON schema of the arguments.
func (t *FunctionTool) Parameters() map[string]any { return t.parameters }

// Call validates args then invokes the function.
//
// Logging fields: tool, fc_id, duration_ms.
func (t *FunctionTool) Call(toolCtx *core.ToolContext, args map[string]any) (any, error) {
	logger := toolCtx.Logger()
	start := time.Now()

	logger.Debug("tool.call.start", "tool", t.name, "fc_id", toolCtx.FunctionCallID())

	if args == nil {
		args = map[string]any{}
	}

	if err := util.ValidateParameters(args, t.validation); err != nil {
		logger.Warn("tool.call.validation_failed", "tool", t.name, "error", err.Error())

		return nil, validationToolError(t.name, err)
	}

	result, err := t.fn(toolCtx, args)
	if err != nil {
		toolErr := AsToolError(t.name, err)
		logger.Error("tool.call.error", "tool", t.name, "code", toolErr.Code, "error", toolErr.Message)

		return nil, toolErr
	}

	logger.Info("tool.call.success", "tool", t.name, "duration_ms", time.Since(start).Milliseconds())

	return result, nil
}

func validationToolError(name string, err error) *ToolError {
	var vErr *ValidationError
	if errors.As(err, &vErr) && len(vErr.Allowed) > 0 {
		return &ToolError{
			Tool:    name,
			Message: fmt.Sprintf("Valor '%v' no válido para '%s'. Valores válidos: %s", vErr.Value, vErr.Field, joinAllowed(vErr.Allowed)),
			Code:    CodeInvalidEnum,
			Details: vErr,
		}
	}

	return &ToolError{
		Tool:    name,
		Message: fmt.Sprintf("parameter validation failed: %v", err),
		Code:    CodeValidationError,
		Details: err,
	}
}

func joinAllowed(allowed []any) string {
	parts := make([]string, len(allowed))
	for i, a := range allowed {
		parts[i] = fmt.Sprint(a)
	}

	return strings.Join(parts, ", ")
}

// withoutEnums returns a shallow copy of schema whose properties carry no enum.
func withoutEnums(schema map[string]any) map[string]any {
	props, ok := schema["properties"].(map[string]any)
	if !ok {
		return schema
	}

	stripped := make(map[string]any, len(props))

	for name, raw := range props {
		prop, ok := raw.(map[string]any)
		if !ok {
			stripped[name] = raw
			continue
		}

		cp := make(map[string]any, len(prop))
		for k, v := range prop {
			if k != "enum" {
				cp[k] = v
			}
		}

		stripped[name] = cp
	}

	out := make(map[string]any, len(schema))
	for k, v := range schema {
		out[k] = v
	}

	out["properties"] = stripped

	return out
}
