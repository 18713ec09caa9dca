package llm

import (
	"context"
	"fmt"
)

// Client abstracts a single request/response round trip to an LLM backend.
// One implementation exists per vendor.
type Client interface {
	// Complete sends one completion request. Ordinary backend failures are
	// reported inside the response with Success=false; the error return is
	// reserved for cancellation.
	Complete(ctx context.Context, request CompletionRequest) (CompletionResponse, error)

	// ProviderName returns the vendor identifier
	ProviderName() string

	// SupportsToolUse reports whether the backend can execute tool loops
	SupportsToolUse() bool

	// SupportsPromptCaching reports whether the backend honors the
	// EnablePromptCaching hint
	SupportsPromptCaching() bool
}

// ClientConfig captures the inputs required to construct a vendor client
type ClientConfig struct {
	Provider string
	APIKey   string
	// BaseURL overrides the vendor endpoint, mainly for tests
	BaseURL string
}

// NewClient returns a vendor client for the configured provider
func NewClient(cfg ClientConfig) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required for provider %q", cfg.Provider)
	}

	switch cfg.Provider {
	case "anthropic":
		return NewAnthropicClient(cfg.APIKey, cfg.BaseURL), nil
	case "openai":
		return NewOpenAIClient(cfg.APIKey, cfg.BaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}

// failureResponse normalizes a backend error into a failed response
func failureResponse(err error) CompletionResponse {
	return CompletionResponse{
		Success:      false,
		StopReason:   StopReasonError,
		ErrorMessage: err.Error(),
	}
}
