package tool

import (
	"context"
	"fmt"
)

// Definition is the immutable description of one callable capability.
// InputSchema is a JSON Schema object describing the accepted input shape.
type Definition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// ExecutionContext identifies the caller environment for one agent run. It is
// a snapshot taken when the run starts and stays immutable for its duration;
// providers use it for permission decisions.
type ExecutionContext struct {
	UserID    string   `json:"user_id"`
	ChannelID string   `json:"channel_id"`
	Roles     []string `json:"roles,omitempty"`
}

// HasRole reports whether the caller snapshot carries the named role
func (ec ExecutionContext) HasRole(role string) bool {
	for _, r := range ec.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// ExecutionResult is the outcome of one tool execution. Expected failure
// modes (invalid input, downstream errors) set Success=false with Error
// populated rather than surfacing as Go errors.
type ExecutionResult struct {
	Success   bool   `json:"success"`
	Output    string `json:"output,omitempty"`
	Error     string `json:"error,omitempty"`
	Truncated bool   `json:"truncated,omitempty"`
}

// Provider is a named, cohesive group of callable tools.
//
// Execute must only be called with a tool name returned by Tools(); calling
// with an unknown name returns ErrUnknownTool, which is a programming error
// distinct from a tool-level failure. Providers must honor context
// cancellation and must not block indefinitely. Whether Execute is safe for
// concurrent calls is part of each provider's documented contract.
type Provider interface {
	// Name is the unique registry key for this provider
	Name() string

	// Description summarizes the provider's capability group
	Description() string

	// Tools lists the tool definitions this provider exposes
	Tools() []Definition

	// Execute runs one tool and reports its outcome
	Execute(ctx context.Context, toolName string, input map[string]any, execCtx ExecutionContext) (ExecutionResult, error)
}

// Succeed builds a successful execution result
func Succeed(output string) ExecutionResult {
	return ExecutionResult{Success: true, Output: output}
}

// Fail builds a failed execution result
func Fail(format string, args ...any) ExecutionResult {
	return ExecutionResult{Success: false, Error: fmt.Sprintf(format, args...)}
}
