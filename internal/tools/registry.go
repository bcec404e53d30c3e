// ABOUTME: Immutable registry mapping tool names to handlers and descriptors.
// ABOUTME: Built once at startup; lookups drive dispatch and the model prompt.

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

// ErrUnknownTool indicates an action named a tool that is not registered.
var ErrUnknownTool = errors.New("unknown tool")

// ErrToolCollision indicates two tools were registered under the same name.
var ErrToolCollision = errors.New("tool name collision")

// Param is one positional parameter of a tool. Parameters are bound from
// the action's positional input array in declaration order.
type Param struct {
	Name string
	Type string // "string" or "integer"
}

// Definition describes a tool to the model.
type Definition struct {
	Name            string
	Description     string
	Params          []Param
	InputSchemaJSON string
}

// Handler executes a tool. Input is a JSON object of named arguments
// produced by positional binding.
type Handler func(ctx context.Context, input json.RawMessage) (json.RawMessage, error)

// Tool pairs a definition with its handler.
type Tool struct {
	Definition *Definition
	Handler    Handler
}

// Descriptor is the model-facing description of one tool.
type Descriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// Registry holds the fixed set of tools for the process lifetime.
type Registry struct {
	order  []string
	tools  map[string]*Tool
	logger *slog.Logger
}

// NewRegistry creates a registry from the given tools.
// Returns ErrToolCollision if two tools share a name.
func NewRegistry(logger *slog.Logger, toolset ...*Tool) (*Registry, error) {
	r := &Registry{
		tools:  make(map[string]*Tool, len(toolset)),
		logger: logger,
	}

	for _, tool := range toolset {
		name := tool.Definition.Name
		if _, exists := r.tools[name]; exists {
			return nil, fmt.Errorf("%w: %q", ErrToolCollision, name)
		}
		r.tools[name] = tool
		r.order = append(r.order, name)
	}

	logger.Info("tool registry built", "tool_count", len(r.order))
	return r, nil
}

// Get returns the tool registered under name.
// Returns ErrUnknownTool when no such tool exists.
func (r *Registry) Get(name string) (*Tool, error) {
	tool, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
	return tool, nil
}

// Names returns the tool names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// All returns all tools in registration order.
func (r *Registry) All() []*Tool {
	result := make([]*Tool, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.tools[name])
	}
	return result
}

// Descriptors returns the model-facing descriptor list in registration order.
func (r *Registry) Descriptors() []Descriptor {
	result := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		def := r.tools[name].Definition
		result = append(result, Descriptor{
			Name:        def.Name,
			Description: def.Description,
			Parameters:  json.RawMessage(def.InputSchemaJSON),
		})
	}
	return result
}

// DescriptorsJSON serializes the descriptor list for embedding in the prompt.
func (r *Registry) DescriptorsJSON() (string, error) {
	b, err := json.MarshalIndent(r.Descriptors(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling tool descriptors: %w", err)
	}
	return string(b), nil
}
