package tool

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoProvider(t *testing.T) *BasicProvider {
	t.Helper()

	p := NewBasicProvider("echo", "Echo tools for tests")
	err := p.Add(Definition{
		Name:        "echo",
		Description: "Echo the input text",
		InputSchema: ObjectSchema(map[string]any{
			"text": StringProperty("Text to echo"),
		}, "text"),
	}, func(ctx context.Context, input map[string]any, execCtx ExecutionContext) (string, error) {
		return input["text"].(string), nil
	})
	require.NoError(t, err)
	return p
}

func TestBasicProviderAdd(t *testing.T) {
	t.Run("should reject empty name", func(t *testing.T) {
		p := NewBasicProvider("p", "d")
		err := p.Add(Definition{Description: "d"}, func(ctx context.Context, input map[string]any, execCtx ExecutionContext) (string, error) {
			return "", nil
		})
		assert.Error(t, err)
	})

	t.Run("should reject nil handler", func(t *testing.T) {
		p := NewBasicProvider("p", "d")
		err := p.Add(Definition{Name: "x", Description: "d"}, nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "handler")
	})

	t.Run("should reject duplicate tool name", func(t *testing.T) {
		p := echoProvider(t)
		err := p.Add(Definition{Name: "echo", Description: "again"}, func(ctx context.Context, input map[string]any, execCtx ExecutionContext) (string, error) {
			return "", nil
		})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already registered")
	})

	t.Run("should list tools in registration order", func(t *testing.T) {
		p := NewBasicProvider("p", "d")
		handler := func(ctx context.Context, input map[string]any, execCtx ExecutionContext) (string, error) {
			return "", nil
		}
		require.NoError(t, p.Add(Definition{Name: "b_tool", Description: "d"}, handler))
		require.NoError(t, p.Add(Definition{Name: "a_tool", Description: "d"}, handler))

		defs := p.Tools()
		require.Len(t, defs, 2)
		assert.Equal(t, "b_tool", defs[0].Name)
		assert.Equal(t, "a_tool", defs[1].Name)
	})
}

func TestBasicProviderExecute(t *testing.T) {
	t.Run("should execute a declared tool", func(t *testing.T) {
		p := echoProvider(t)

		result, err := p.Execute(context.Background(), "echo", map[string]any{"text": "hello"}, ExecutionContext{})
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, "hello", result.Output)
	})

	t.Run("should signal unknown tool distinctly", func(t *testing.T) {
		p := echoProvider(t)

		_, err := p.Execute(context.Background(), "nope", nil, ExecutionContext{})
		assert.ErrorIs(t, err, ErrUnknownTool)
	})

	t.Run("should fail on schema violation without running handler", func(t *testing.T) {
		p := NewBasicProvider("p", "d")
		ran := false
		require.NoError(t, p.Add(Definition{
			Name:        "strict",
			Description: "d",
			InputSchema: ObjectSchema(map[string]any{"n": NumberProperty("num")}, "n"),
		}, func(ctx context.Context, input map[string]any, execCtx ExecutionContext) (string, error) {
			ran = true
			return "", nil
		}))

		result, err := p.Execute(context.Background(), "strict", map[string]any{}, ExecutionContext{})
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "invalid input")
		assert.False(t, ran)
	})

	t.Run("should convert handler errors to failure results", func(t *testing.T) {
		p := NewBasicProvider("p", "d")
		require.NoError(t, p.Add(Definition{Name: "broken", Description: "d"},
			func(ctx context.Context, input map[string]any, execCtx ExecutionContext) (string, error) {
				return "", fmt.Errorf("downstream timeout")
			}))

		result, err := p.Execute(context.Background(), "broken", nil, ExecutionContext{})
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, "downstream timeout", result.Error)
	})

	t.Run("should propagate cancellation", func(t *testing.T) {
		p := echoProvider(t)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := p.Execute(ctx, "echo", map[string]any{"text": "x"}, ExecutionContext{})
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("should truncate oversized output", func(t *testing.T) {
		p := NewBasicProvider("p", "d")
		require.NoError(t, p.Add(Definition{Name: "big", Description: "d"},
			func(ctx context.Context, input map[string]any, execCtx ExecutionContext) (string, error) {
				return strings.Repeat("a", maxOutputBytes+100), nil
			}))

		result, err := p.Execute(context.Background(), "big", nil, ExecutionContext{})
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.True(t, result.Truncated)
		assert.Contains(t, result.Output, "[output truncated]")
	})
}

func TestExecutionContext(t *testing.T) {
	t.Run("should report role membership", func(t *testing.T) {
		ec := ExecutionContext{UserID: "u1", Roles: []string{"moderator", "member"}}

		assert.True(t, ec.HasRole("moderator"))
		assert.False(t, ec.HasRole("admin"))
	})
}

func TestSchemaHelpers(t *testing.T) {
	t.Run("should build an object schema with required fields", func(t *testing.T) {
		schema := ObjectSchema(map[string]any{
			"name": StringProperty("the name"),
			"on":   BooleanProperty("the flag"),
		}, "name")

		assert.Equal(t, "object", schema["type"])
		assert.Equal(t, []string{"name"}, schema["required"])

		_, err := CompileSchema(Definition{Name: "x", InputSchema: schema})
		assert.NoError(t, err)
	})
}
