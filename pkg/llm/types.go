package llm

// Role identifies the author of a conversation turn
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// StopReason is the backend's signal for why generation stopped
type StopReason string

const (
	// StopReasonEndTurn means the model produced a final textual answer
	StopReasonEndTurn StopReason = "end_turn"
	// StopReasonToolUse means the model requested tool invocations
	StopReasonToolUse StopReason = "tool_use"
	// StopReasonMaxTokens means generation hit the token limit
	StopReasonMaxTokens StopReason = "max_tokens"
	// StopReasonError means the backend reported a failure
	StopReasonError StopReason = "error"
	// StopReasonOther covers vendor stop reasons with no portable mapping
	StopReasonOther StopReason = "other"
)

// ToolDefinition describes a callable capability offered to the model
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// ToolCall is a request from the model to invoke one tool. The ID is
// provider-assigned and must be echoed back unchanged in the matching
// ToolResult.
type ToolCall struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Input map[string]any `json:"input"`
}

// ToolResult answers one ToolCall from the preceding assistant turn
type ToolResult struct {
	ToolCallID string `json:"tool_call_id"`
	Content    string `json:"content"`
	IsError    bool   `json:"is_error,omitempty"`
}

// Message is one turn in the conversation. Content may be empty on
// tool-call-only assistant turns.
type Message struct {
	Role        Role         `json:"role"`
	Content     string       `json:"content,omitempty"`
	ToolCalls   []ToolCall   `json:"tool_calls,omitempty"`
	ToolResults []ToolResult `json:"tool_results,omitempty"`
}

// Usage tracks token accounting for one or more completion calls
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	CacheReadTokens  int `json:"cache_read_tokens,omitempty"`
	CacheWriteTokens int `json:"cache_write_tokens,omitempty"`
}

// Add accumulates another usage sample into u
func (u *Usage) Add(other Usage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.CacheReadTokens += other.CacheReadTokens
	u.CacheWriteTokens += other.CacheWriteTokens
}

// TotalTokens returns prompt plus completion tokens
func (u Usage) TotalTokens() int {
	return u.PromptTokens + u.CompletionTokens
}

// CompletionRequest is one vendor-agnostic completion call
type CompletionRequest struct {
	SystemPrompt        string
	Messages            []Message
	Tools               []ToolDefinition
	Model               string
	MaxTokens           int
	Temperature         float64
	EnablePromptCaching bool
}

// CompletionResponse is the normalized reply from a completion backend
type CompletionResponse struct {
	Success      bool
	Content      string
	StopReason   StopReason
	ToolCalls    []ToolCall
	Usage        Usage
	ErrorMessage string
}

// NewUserMessage builds a user turn
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage builds an assistant turn, optionally carrying tool calls
func NewAssistantMessage(content string, toolCalls []ToolCall) Message {
	return Message{Role: RoleAssistant, Content: content, ToolCalls: toolCalls}
}

// NewToolResultMessage builds the tool turn answering a batch of tool calls
func NewToolResultMessage(results []ToolResult) Message {
	return Message{Role: RoleTool, ToolResults: results}
}
