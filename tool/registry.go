package tool

import (
	"fmt"
	"sync"

	"github.com/hupe1980/casemesh/model"
)

// Registry holds tools by name, preserving registration order.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

// NewRegistry creates a registry pre-populated with tools.
func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{tools: make(map[string]Tool)}

	for _, t := range tools {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Register adds a tool. Duplicate names are rejected.
func (r *Registry) Register(t Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t.Name() == "" {
		return fmt.Errorf("tool name must not be empty")
	}

	if _, exists := r.tools[t.Name()]; exists {
		return fmt.Errorf("tool %q already registered", t.Name())
	}

	r.tools[t.Name()] = t
	r.order = append(r.order, t.Name())

	return nil
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tools[name]

	return t, ok
}

// All returns the tools in registration order.
func (r *Registry) All() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		res = append(res, r.tools[name])
	}

	return res
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.order)
}

// Definitions converts the tools into model function declarations.
func (r *Registry) Definitions() []model.ToolDefinition {
	tools := r.All()
	defs := make([]model.ToolDefinition, 0, len(tools))

	for _, t := range tools {
		defs = append(defs, model.ToolDefinition{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}

	return defs
}
