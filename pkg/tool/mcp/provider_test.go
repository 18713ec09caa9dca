package mcp

import (
	"context"
	"testing"

	mcpproto "github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orinbot/orin/pkg/tool"
)

func TestConnectValidation(t *testing.T) {
	t.Run("should require a name", func(t *testing.T) {
		_, err := Connect(context.Background(), Config{Command: "server"}, zerolog.Nop())
		assert.ErrorContains(t, err, "name")
	})

	t.Run("should require a command", func(t *testing.T) {
		_, err := Connect(context.Background(), Config{Name: "files"}, zerolog.Nop())
		assert.ErrorContains(t, err, "command")
	})
}

func TestConvertSchema(t *testing.T) {
	t.Run("should preserve properties and required fields", func(t *testing.T) {
		out, err := convertSchema(mcpproto.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"path": map[string]any{"type": "string", "description": "file path"},
			},
			Required: []string{"path"},
		})
		require.NoError(t, err)

		assert.Equal(t, "object", out["type"])
		props, ok := out["properties"].(map[string]any)
		require.True(t, ok)
		assert.Contains(t, props, "path")
		assert.Equal(t, []any{"path"}, out["required"])
	})

	t.Run("should default an empty schema to an object", func(t *testing.T) {
		out, err := convertSchema(mcpproto.ToolInputSchema{})
		require.NoError(t, err)
		assert.Equal(t, "object", out["type"])
	})
}

func TestFlattenContent(t *testing.T) {
	t.Run("should join text blocks with newlines", func(t *testing.T) {
		got := flattenContent([]mcpproto.Content{
			mcpproto.TextContent{Type: "text", Text: "first"},
			mcpproto.TextContent{Type: "text", Text: "second"},
		})
		assert.Equal(t, "first\nsecond", got)
	})

	t.Run("should summarize non-text blocks", func(t *testing.T) {
		got := flattenContent([]mcpproto.Content{
			mcpproto.ImageContent{Type: "image", MIMEType: "image/png"},
		})
		assert.Contains(t, got, "image/png")
	})

	t.Run("should return empty for no content", func(t *testing.T) {
		assert.Empty(t, flattenContent(nil))
	})
}

func TestClosedProvider(t *testing.T) {
	t.Run("should reject calls to an unknown tool", func(t *testing.T) {
		p := &Provider{name: "files", logger: zerolog.Nop()}
		_, err := p.Execute(context.Background(), "read_file", nil, tool.ExecutionContext{})
		assert.Error(t, err)
	})

	t.Run("should be safe to close twice", func(t *testing.T) {
		p := &Provider{name: "files", logger: zerolog.Nop()}
		assert.NoError(t, p.Close())
		assert.NoError(t, p.Close())
	})
}
