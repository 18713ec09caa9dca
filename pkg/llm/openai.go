package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIClient implements Client for OpenAI chat completions
type OpenAIClient struct {
	client openai.Client
}

// NewOpenAIClient creates a new OpenAI completion client
func NewOpenAIClient(apiKey, baseURL string) *OpenAIClient {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIClient{
		client: openai.NewClient(opts...),
	}
}

// ProviderName returns the provider name
func (c *OpenAIClient) ProviderName() string {
	return "openai"
}

// SupportsToolUse reports tool use support
func (c *OpenAIClient) SupportsToolUse() bool {
	return true
}

// SupportsPromptCaching reports prompt caching support. OpenAI caches
// server-side on its own; the request hint is ignored.
func (c *OpenAIClient) SupportsPromptCaching() bool {
	return false
}

// Complete makes one API call to OpenAI
func (c *OpenAIClient) Complete(ctx context.Context, request CompletionRequest) (CompletionResponse, error) {
	params, err := c.buildParams(request)
	if err != nil {
		return failureResponse(err), nil
	}

	response, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		if ctx.Err() != nil {
			return CompletionResponse{}, ctx.Err()
		}
		return failureResponse(err), nil
	}

	if len(response.Choices) == 0 {
		return failureResponse(fmt.Errorf("no response choices returned")), nil
	}

	choice := response.Choices[0]
	content := choice.Message.Content

	toolCalls := []ToolCall{}
	for _, tc := range choice.Message.ToolCalls {
		var input map[string]any
		if err := json.Unmarshal([]byte(tc.Function.Arguments), &input); err != nil {
			return failureResponse(fmt.Errorf("failed to parse tool arguments: %w", err)), nil
		}
		toolCalls = append(toolCalls, ToolCall{
			ID:    tc.ID,
			Name:  tc.Function.Name,
			Input: input,
		})
	}

	if len(request.Tools) == 0 && len(toolCalls) > 0 {
		return failureResponse(fmt.Errorf("backend requested tool use but no tools were offered")), nil
	}

	return CompletionResponse{
		Success:    true,
		Content:    content,
		StopReason: mapOpenAIFinishReason(choice.FinishReason, len(toolCalls) > 0),
		ToolCalls:  toolCalls,
		Usage: Usage{
			PromptTokens:     int(response.Usage.PromptTokens),
			CompletionTokens: int(response.Usage.CompletionTokens),
			CacheReadTokens:  int(response.Usage.PromptTokensDetails.CachedTokens),
		},
	}, nil
}

// buildParams converts a CompletionRequest into OpenAI chat params
func (c *OpenAIClient) buildParams(request CompletionRequest) (openai.ChatCompletionNewParams, error) {
	messages := []openai.ChatCompletionMessageParamUnion{}

	if request.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(request.SystemPrompt))
	}

	for _, msg := range request.Messages {
		switch msg.Role {
		case RoleSystem:
			continue

		case RoleUser:
			messages = append(messages, openai.UserMessage(msg.Content))

		case RoleAssistant:
			if len(msg.ToolCalls) == 0 {
				messages = append(messages, openai.AssistantMessage(msg.Content))
				continue
			}
			toolCalls := []openai.ChatCompletionMessageToolCall{}
			for _, tc := range msg.ToolCalls {
				inputJSON, err := json.Marshal(tc.Input)
				if err != nil {
					return openai.ChatCompletionNewParams{}, fmt.Errorf("failed to marshal tool input: %w", err)
				}
				toolCalls = append(toolCalls, openai.ChatCompletionMessageToolCall{
					ID:   tc.ID,
					Type: "function",
					Function: openai.ChatCompletionMessageToolCallFunction{
						Name:      tc.Name,
						Arguments: string(inputJSON),
					},
				})
			}
			assistantMsg := openai.ChatCompletionMessage{
				Role:      "assistant",
				Content:   msg.Content,
				ToolCalls: toolCalls,
			}
			messages = append(messages, assistantMsg.ToParam())

		case RoleTool:
			for _, result := range msg.ToolResults {
				messages = append(messages, openai.ToolMessage(result.Content, result.ToolCallID))
			}

		default:
			return openai.ChatCompletionNewParams{}, fmt.Errorf("unsupported message role: %s", msg.Role)
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(request.Model),
		Messages: messages,
	}

	if request.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(request.MaxTokens))
	}

	if request.Temperature > 0 {
		params.Temperature = openai.Float(request.Temperature)
	}

	if len(request.Tools) > 0 {
		tools := []openai.ChatCompletionToolParam{}
		for _, tool := range request.Tools {
			tools = append(tools, openai.ChatCompletionToolParam{
				Type: "function",
				Function: openai.FunctionDefinitionParam{
					Name:        tool.Name,
					Description: openai.String(tool.Description),
					Parameters:  openai.FunctionParameters(tool.InputSchema),
				},
			})
		}
		params.Tools = tools
	}

	return params, nil
}

// mapOpenAIFinishReason normalizes the vendor finish reason
func mapOpenAIFinishReason(reason string, hasToolCalls bool) StopReason {
	switch reason {
	case "tool_calls", "function_call":
		return StopReasonToolUse
	case "stop":
		if hasToolCalls {
			return StopReasonToolUse
		}
		return StopReasonEndTurn
	case "length":
		return StopReasonMaxTokens
	default:
		return StopReasonOther
	}
}
