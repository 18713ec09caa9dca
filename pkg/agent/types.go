package agent

import (
	"time"

	"github.com/orinbot/orin/pkg/llm"
	"github.com/orinbot/orin/pkg/tool"
)

// DefaultMaxToolIterations bounds the tool loop when the caller does not
// set an explicit cap.
const DefaultMaxToolIterations = 10

// Outcome classifies how a run terminated.
type Outcome string

const (
	// OutcomeSuccess means the model produced a final answer.
	OutcomeSuccess Outcome = "success"

	// OutcomeFailed means the backend or the run configuration failed.
	OutcomeFailed Outcome = "failed"

	// OutcomeCapped means the tool loop hit its iteration cap before the
	// model produced a final answer.
	OutcomeCapped Outcome = "capped"

	// OutcomeCancelled means the caller cancelled the run.
	OutcomeCancelled Outcome = "cancelled"
)

// RunConfiguration describes a single run. The zero value is not usable;
// Model is required.
type RunConfiguration struct {
	// SystemPrompt is passed through to the completion backend verbatim.
	SystemPrompt string

	// Registry supplies enabled tools. A nil registry runs the model
	// without tool use.
	Registry *tool.Registry

	// ExecContext carries caller identity into tool executions.
	ExecContext tool.ExecutionContext

	// Model names the backend model. Required.
	Model string

	// MaxTokens caps the completion length. Defaults to 4096.
	MaxTokens int

	// Temperature is the sampling temperature, 0 to 2. Defaults to 0.7
	// when left at zero value only if SetTemperature was not used; pass
	// the desired value explicitly.
	Temperature float64

	// MaxToolIterations caps how many tool rounds a run may perform.
	// Defaults to DefaultMaxToolIterations.
	MaxToolIterations int

	// Timeout bounds the wall-clock duration of the whole run. Zero
	// means no timeout beyond the caller's context.
	Timeout time.Duration

	// EnablePromptCaching asks the backend to cache the static prefix.
	// Ignored by backends without caching support.
	EnablePromptCaching bool
}

// ToolTrace records one tool execution inside a run.
type ToolTrace struct {
	CallID  string         `json:"call_id"`
	Name    string         `json:"name"`
	Input   map[string]any `json:"input,omitempty"`
	Output  string         `json:"output,omitempty"`
	IsError bool           `json:"is_error,omitempty"`
}

// RunResult is the terminal state of a run.
type RunResult struct {
	// RunID identifies the run for Abort and log correlation.
	RunID string `json:"run_id"`

	// Outcome classifies the termination.
	Outcome Outcome `json:"outcome"`

	// Text is the model's final text. May be non-empty on capped runs
	// when the model produced text alongside its last tool request.
	Text string `json:"text,omitempty"`

	// ErrorMessage describes the failure for failed, capped, and
	// cancelled outcomes.
	ErrorMessage string `json:"error_message,omitempty"`

	// Usage is the token usage accumulated across every completion call
	// in the run.
	Usage llm.Usage `json:"usage"`

	// Iterations is the number of tool rounds performed.
	Iterations int `json:"iterations"`

	// Trace lists every tool execution in order.
	Trace []ToolTrace `json:"trace,omitempty"`
}
