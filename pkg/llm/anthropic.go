package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicClient implements Client for Anthropic Claude
type AnthropicClient struct {
	client anthropic.Client
}

// NewAnthropicClient creates a new Anthropic completion client
func NewAnthropicClient(apiKey, baseURL string) *AnthropicClient {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &AnthropicClient{
		client: anthropic.NewClient(opts...),
	}
}

// ProviderName returns the provider name
func (c *AnthropicClient) ProviderName() string {
	return "anthropic"
}

// SupportsToolUse reports tool use support
func (c *AnthropicClient) SupportsToolUse() bool {
	return true
}

// SupportsPromptCaching reports prompt caching support
func (c *AnthropicClient) SupportsPromptCaching() bool {
	return true
}

// Complete makes one API call to Anthropic Claude
func (c *AnthropicClient) Complete(ctx context.Context, request CompletionRequest) (CompletionResponse, error) {
	params, err := c.buildParams(request)
	if err != nil {
		return failureResponse(err), nil
	}

	response, err := c.client.Messages.New(ctx, params)
	if err != nil {
		if ctx.Err() != nil {
			return CompletionResponse{}, ctx.Err()
		}
		return failureResponse(err), nil
	}

	// Extract content and tool calls
	content := ""
	toolCalls := []ToolCall{}

	for _, block := range response.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			content += b.Text
		case anthropic.ToolUseBlock:
			var input map[string]any
			if err := json.Unmarshal([]byte(b.JSON.Input.Raw()), &input); err != nil {
				return failureResponse(fmt.Errorf("failed to parse tool input: %w", err)), nil
			}
			toolCalls = append(toolCalls, ToolCall{
				ID:    b.ID,
				Name:  b.Name,
				Input: input,
			})
		}
	}

	if len(request.Tools) == 0 && len(toolCalls) > 0 {
		return failureResponse(fmt.Errorf("backend requested tool use but no tools were offered")), nil
	}

	stopReason := mapAnthropicStopReason(string(response.StopReason), len(toolCalls) > 0)

	return CompletionResponse{
		Success:    true,
		Content:    content,
		StopReason: stopReason,
		ToolCalls:  toolCalls,
		Usage: Usage{
			PromptTokens:     int(response.Usage.InputTokens),
			CompletionTokens: int(response.Usage.OutputTokens),
			CacheReadTokens:  int(response.Usage.CacheReadInputTokens),
			CacheWriteTokens: int(response.Usage.CacheCreationInputTokens),
		},
	}, nil
}

// buildParams converts a CompletionRequest into Anthropic message params
func (c *AnthropicClient) buildParams(request CompletionRequest) (anthropic.MessageNewParams, error) {
	anthropicMessages := []anthropic.MessageParam{}

	for _, msg := range request.Messages {
		switch msg.Role {
		case RoleSystem:
			// System prompt is carried separately
			continue

		case RoleTool:
			blocks := []anthropic.ContentBlockParamUnion{}
			for _, result := range msg.ToolResults {
				blocks = append(blocks, anthropic.NewToolResultBlock(result.ToolCallID, result.Content, result.IsError))
			}
			anthropicMessages = append(anthropicMessages, anthropic.NewUserMessage(blocks...))

		case RoleAssistant:
			blocks := []anthropic.ContentBlockParamUnion{}
			if msg.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
			}
			for _, tc := range msg.ToolCalls {
				blocks = append(blocks, anthropic.NewToolUseBlock(tc.ID, tc.Input, tc.Name))
			}
			if len(blocks) == 0 {
				continue
			}
			anthropicMessages = append(anthropicMessages, anthropic.MessageParam{
				Role:    anthropic.MessageParamRoleAssistant,
				Content: blocks,
			})

		case RoleUser:
			anthropicMessages = append(anthropicMessages, anthropic.NewUserMessage(
				anthropic.NewTextBlock(msg.Content),
			))

		default:
			return anthropic.MessageNewParams{}, fmt.Errorf("unsupported message role: %s", msg.Role)
		}
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(request.Model),
		Messages:  anthropicMessages,
		MaxTokens: int64(request.MaxTokens),
	}

	if request.SystemPrompt != "" {
		systemBlock := anthropic.TextBlockParam{Text: request.SystemPrompt}
		if request.EnablePromptCaching {
			systemBlock.CacheControl = anthropic.NewCacheControlEphemeralParam()
		}
		params.System = []anthropic.TextBlockParam{systemBlock}
	}

	if request.Temperature > 0 {
		params.Temperature = anthropic.Float(request.Temperature)
	}

	if len(request.Tools) > 0 {
		tools := []anthropic.ToolUnionParam{}
		for _, tool := range request.Tools {
			toolParam := anthropic.ToolParam{
				Name:        tool.Name,
				Description: anthropic.String(tool.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: tool.InputSchema["properties"],
				},
			}

			if required, ok := tool.InputSchema["required"]; ok {
				toolParam.InputSchema.Required = toStringSlice(required)
			}

			tools = append(tools, anthropic.ToolUnionParam{OfTool: &toolParam})
		}
		params.Tools = tools
	}

	return params, nil
}

// mapAnthropicStopReason normalizes the vendor stop reason
func mapAnthropicStopReason(reason string, hasToolCalls bool) StopReason {
	switch reason {
	case "tool_use":
		return StopReasonToolUse
	case "end_turn", "stop_sequence":
		return StopReasonEndTurn
	case "max_tokens":
		return StopReasonMaxTokens
	default:
		if hasToolCalls {
			return StopReasonToolUse
		}
		return StopReasonOther
	}
}

// toStringSlice converts a schema "required" value into a string slice
func toStringSlice(value any) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
