package tool

import "errors"

var (
	// ErrProviderRegistered is returned when a provider name is already taken
	ErrProviderRegistered = errors.New("provider is already registered")

	// ErrProviderNotFound is returned when toggling an unknown provider
	ErrProviderNotFound = errors.New("provider is not registered")

	// ErrDuplicateTool is returned when two enabled providers expose the same
	// tool name
	ErrDuplicateTool = errors.New("duplicate tool name across enabled providers")

	// ErrToolNotSupported is returned when no enabled provider owns the
	// requested tool name
	ErrToolNotSupported = errors.New("tool is not supported")

	// ErrUnknownTool is returned by a provider asked to execute a tool it
	// never declared; this signals a routing bug, not a tool failure
	ErrUnknownTool = errors.New("unknown tool for provider")
)
