// Package agent orchestrates multi-turn LLM runs with bounded tool loops.
//
// Invariants:
// - Every ToolCall in an assistant turn gets exactly one ToolResult, in call
//   order, even when execution fails.
// - The enabled-tool snapshot is re-fetched from the registry every
//   iteration, so operators can disable a provider mid-run.
// - Iterations never exceed the configured cap; hitting the cap is a capped
//   outcome, not an error.
// - Cancellation, backend failure, and cap exhaustion are distinct outcomes.
//
// Usage:
//
//	runner, _ := agent.NewRunner(agent.Config{Client: client, Logger: logger})
//	result, _ := runner.Run(ctx, "what roles does dana have?", agent.RunConfiguration{
//		SystemPrompt: "You are a helpful assistant.",
//		Registry:     registry,
//		Model:        "claude-sonnet-4-5",
//	})
package agent
