// Package llm abstracts one request/response round trip to an LLM backend.
//
// Invariants:
// - Ordinary backend failures (rate limits, network errors, malformed output)
//   come back as CompletionResponse{Success: false}, never as a Go error.
// - The error return of Client.Complete is reserved for cancellation.
// - StopReasonToolUse implies a non-empty ToolCalls list.
// - A request without tools never produces tool calls.
//
// Usage:
//
//	client, _ := llm.NewClient(llm.ClientConfig{Provider: "anthropic", APIKey: key})
//	resp, err := client.Complete(ctx, llm.CompletionRequest{
//		Model:     "claude-sonnet-4-5",
//		MaxTokens: 1024,
//		Messages:  []llm.Message{{Role: llm.RoleUser, Content: "hello"}},
//	})
package llm
