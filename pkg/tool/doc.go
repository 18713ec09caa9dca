// Package tool defines the tool provider contract and the registry that
// routes tool executions for agent runs.
//
// Invariants:
// - Tool names are unique across all enabled providers.
// - Provider name collisions and malformed input schemas fail at
//   registration, never mid-run.
// - Registry.Execute never executes a disabled or unregistered tool.
// - Expected tool failures are ExecutionResult values, not Go errors.
//
// Usage:
//
//	registry := tool.NewRegistry(logger)
//	_ = registry.Register(myProvider, true)
//	defs, _ := registry.EnabledTools()
//	result, err := registry.Execute(ctx, "lookup_role", input, execCtx)
package tool
