package runtimetools

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orinbot/orin/pkg/tool"
)

func fixedClock() time.Time {
	return time.Date(2026, time.March, 14, 9, 26, 53, 0, time.UTC)
}

func execute(t *testing.T, name string, input map[string]any) tool.ExecutionResult {
	t.Helper()
	provider := New(fixedClock)
	res, err := provider.Execute(context.Background(), name, input, tool.ExecutionContext{})
	require.NoError(t, err)
	return res
}

func TestCurrentTime(t *testing.T) {
	t.Run("should default to UTC", func(t *testing.T) {
		res := execute(t, "current_time", map[string]any{})
		require.True(t, res.Success)
		assert.Equal(t, "Sat, 14 Mar 2026 09:26:53 UTC", res.Output)
	})

	t.Run("should honor a named timezone", func(t *testing.T) {
		res := execute(t, "current_time", map[string]any{"timezone": "America/New_York"})
		require.True(t, res.Success)
		assert.Contains(t, res.Output, "14 Mar 2026")
		assert.NotContains(t, res.Output, "UTC")
	})

	t.Run("should reject an unknown timezone", func(t *testing.T) {
		res := execute(t, "current_time", map[string]any{"timezone": "Mars/Olympus"})
		assert.False(t, res.Success)
		assert.Contains(t, res.Error, "Mars/Olympus")
	})
}

func TestGenerateID(t *testing.T) {
	t.Run("should default to nanoid", func(t *testing.T) {
		res := execute(t, "generate_id", map[string]any{})
		require.True(t, res.Success)
		assert.Len(t, res.Output, defaultIDLength)
	})

	t.Run("should generate a valid uuid on request", func(t *testing.T) {
		res := execute(t, "generate_id", map[string]any{"kind": "uuid"})
		require.True(t, res.Success)
		_, err := uuid.Parse(res.Output)
		assert.NoError(t, err)
	})

	t.Run("should reject an unknown kind", func(t *testing.T) {
		res := execute(t, "generate_id", map[string]any{"kind": "ulid"})
		assert.False(t, res.Success)
	})
}

func TestRenderTemplate(t *testing.T) {
	t.Run("should render variables into the template", func(t *testing.T) {
		res := execute(t, "render_template", map[string]any{
			"template":  "Hello {{.name}}, you have {{.count}} messages",
			"variables": map[string]any{"name": "dana", "count": 3},
		})
		require.True(t, res.Success)
		assert.Equal(t, "Hello dana, you have 3 messages", res.Output)
	})

	t.Run("should report a parse error", func(t *testing.T) {
		res := execute(t, "render_template", map[string]any{"template": "{{.broken"})
		assert.False(t, res.Success)
		assert.Contains(t, res.Error, "parse template")
	})

	t.Run("should report a missing variable", func(t *testing.T) {
		res := execute(t, "render_template", map[string]any{
			"template":  "{{.missing}}",
			"variables": map[string]any{},
		})
		assert.False(t, res.Success)
	})
}

func TestProviderShape(t *testing.T) {
	t.Run("should expose three tools in registration order", func(t *testing.T) {
		defs := New(nil).Tools()
		require.Len(t, defs, 3)
		assert.Equal(t, "current_time", defs[0].Name)
		assert.Equal(t, "generate_id", defs[1].Name)
		assert.Equal(t, "render_template", defs[2].Name)
	})
}
