package guide

import (
	"context"
	"encoding/json"
	"reflect"

	"github.com/namma-guide/guide-go/pkg/live/protocol"
)

// ToolHandler executes one tool call. The raw input is the JSON-encoded args
// object from the model; the returned value becomes the tool response (a
// map[string]any is sent as-is, anything else is wrapped as {"result": v}).
type ToolHandler func(ctx context.Context, input json.RawMessage) (any, error)

// ToolWithHandler pairs a function declaration with its handler so tools can
// be passed to LiveConnectRequest in one piece.
type ToolWithHandler struct {
	protocol.FunctionDeclaration
	Handler ToolHandler
}

// MakeTool creates a ToolWithHandler from a typed function.
// This is the preferred way to create tools with handlers.
//
// Example:
//
//	tool := guide.MakeTool("findPlaces", "Find places to eat nearby",
//	    func(ctx context.Context, input struct {
//	        Query string `json:"query" desc:"What to look for"`
//	    }) (map[string]any, error) {
//	        return map[string]any{"places": search(input.Query)}, nil
//	    },
//	)
func MakeTool[T any, R any](name, description string, fn func(context.Context, T) (R, error)) ToolWithHandler {
	var zero T
	schema := GenerateSchema(reflect.TypeOf(zero))

	handler := func(ctx context.Context, rawInput json.RawMessage) (any, error) {
		var input T
		if len(rawInput) > 0 {
			if err := json.Unmarshal(rawInput, &input); err != nil {
				return nil, err
			}
		}
		return fn(ctx, input)
	}

	return ToolWithHandler{
		FunctionDeclaration: protocol.FunctionDeclaration{
			Name:        name,
			Description: description,
			Parameters:  schema,
		},
		Handler: handler,
	}
}

// ToolSet is a collection of tools with their handlers.
type ToolSet struct {
	declarations []protocol.FunctionDeclaration
	handlers     map[string]ToolHandler
}

// NewToolSet creates a new empty tool set.
func NewToolSet() *ToolSet {
	return &ToolSet{
		handlers: make(map[string]ToolHandler),
	}
}

// Add adds a tool with its handler to the set.
func (ts *ToolSet) Add(tool ToolWithHandler) *ToolSet {
	ts.declarations = append(ts.declarations, tool.FunctionDeclaration)
	if tool.Handler != nil && tool.Name != "" {
		ts.handlers[tool.Name] = tool.Handler
	}
	return ts
}

// Declarations returns all function declarations.
func (ts *ToolSet) Declarations() []protocol.FunctionDeclaration {
	return ts.declarations
}

// Handler returns the handler for a specific tool.
func (ts *ToolSet) Handler(name string) (ToolHandler, bool) {
	h, ok := ts.handlers[name]
	return h, ok
}
