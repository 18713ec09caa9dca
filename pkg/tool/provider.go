package tool

import (
	"context"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// maxOutputBytes bounds tool output before it is fed back to the model
const maxOutputBytes = 10 * 1024

// Handler executes one tool call using parsed input
type Handler func(ctx context.Context, input map[string]any, execCtx ExecutionContext) (string, error)

// BasicProvider is a declarative Provider implementation: tools are
// registered up front with a definition and a handler func. Input is
// validated against the declared JSON Schema before the handler runs.
// Handlers must be safe for concurrent use; the provider itself adds no
// serialization.
type BasicProvider struct {
	name        string
	description string
	order       []string
	handlers    map[string]Handler
	definitions map[string]Definition
	schemas     map[string]*gojsonschema.Schema
}

// NewBasicProvider creates an empty provider with the given identity
func NewBasicProvider(name, description string) *BasicProvider {
	return &BasicProvider{
		name:        name,
		description: description,
		handlers:    make(map[string]Handler),
		definitions: make(map[string]Definition),
		schemas:     make(map[string]*gojsonschema.Schema),
	}
}

// Add registers one tool definition with its handler
func (p *BasicProvider) Add(def Definition, handler Handler) error {
	if def.Name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	if def.Description == "" {
		return fmt.Errorf("tool %s description cannot be empty", def.Name)
	}
	if handler == nil {
		return fmt.Errorf("tool %s handler cannot be nil", def.Name)
	}
	if _, exists := p.handlers[def.Name]; exists {
		return fmt.Errorf("tool %s is already registered", def.Name)
	}

	schema, err := CompileSchema(def)
	if err != nil {
		return fmt.Errorf("tool %s has invalid input schema: %w", def.Name, err)
	}

	p.order = append(p.order, def.Name)
	p.handlers[def.Name] = handler
	p.definitions[def.Name] = def
	p.schemas[def.Name] = schema
	return nil
}

// MustAdd registers a tool and panics on definition errors. Intended for
// static tool tables wired at startup.
func (p *BasicProvider) MustAdd(def Definition, handler Handler) *BasicProvider {
	if err := p.Add(def, handler); err != nil {
		panic(err)
	}
	return p
}

// Name returns the provider's registry key
func (p *BasicProvider) Name() string {
	return p.name
}

// Description returns the provider summary
func (p *BasicProvider) Description() string {
	return p.description
}

// Tools lists tool definitions in registration order
func (p *BasicProvider) Tools() []Definition {
	defs := make([]Definition, 0, len(p.order))
	for _, name := range p.order {
		defs = append(defs, p.definitions[name])
	}
	return defs
}

// Execute validates the input and runs the tool handler
func (p *BasicProvider) Execute(ctx context.Context, toolName string, input map[string]any, execCtx ExecutionContext) (ExecutionResult, error) {
	handler, ok := p.handlers[toolName]
	if !ok {
		return ExecutionResult{}, fmt.Errorf("%w: %s/%s", ErrUnknownTool, p.name, toolName)
	}

	if err := ctx.Err(); err != nil {
		return ExecutionResult{}, err
	}

	if err := validateInput(p.schemas[toolName], input); err != nil {
		return Fail("invalid input for %s: %v", toolName, err), nil
	}

	output, err := handler(ctx, input, execCtx)
	if err != nil {
		if ctx.Err() != nil {
			return ExecutionResult{}, ctx.Err()
		}
		return Fail("%v", err), nil
	}

	truncated := false
	if len(output) > maxOutputBytes {
		output = output[:maxOutputBytes] + "\n... [output truncated]"
		truncated = true
	}

	return ExecutionResult{Success: true, Output: output, Truncated: truncated}, nil
}

// CompileSchema compiles a definition's input schema, defaulting to an empty
// object schema when none is declared
func CompileSchema(def Definition) (*gojsonschema.Schema, error) {
	schemaMap := def.InputSchema
	if schemaMap == nil {
		schemaMap = map[string]any{"type": "object"}
	}
	return gojsonschema.NewSchema(gojsonschema.NewGoLoader(schemaMap))
}

// validateInput validates input against a compiled JSON Schema
func validateInput(schema *gojsonschema.Schema, input map[string]any) error {
	if schema == nil {
		return nil
	}
	if input == nil {
		input = map[string]any{}
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(input))
	if err != nil {
		return err
	}

	if !result.Valid() {
		msgs := []string{}
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("validation errors: %v", msgs)
	}

	return nil
}

// ObjectSchema builds a JSON Schema object from property schemas and a
// required list, the shape every tool definition uses
func ObjectSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// StringProperty builds a string property schema
func StringProperty(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

// NumberProperty builds a number property schema
func NumberProperty(description string) map[string]any {
	return map[string]any{"type": "number", "description": description}
}

// BooleanProperty builds a boolean property schema
func BooleanProperty(description string) map[string]any {
	return map[string]any{"type": "boolean", "description": description}
}
