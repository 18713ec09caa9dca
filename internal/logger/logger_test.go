package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("should create logger with defaults", func(t *testing.T) {
		l, err := New(DefaultConfig())
		require.NoError(t, err)
		defer l.Close()

		assert.NotNil(t, l)
		assert.NotNil(t, l.redactor)
	})

	t.Run("should fall back to info on invalid level", func(t *testing.T) {
		l, err := New(Config{Level: "bogus", Console: true})
		require.NoError(t, err)
		defer l.Close()

		assert.Equal(t, "info", l.GetZerolog().GetLevel().String())
	})

	t.Run("should create log file and parent directory", func(t *testing.T) {
		tmpDir := t.TempDir()
		logPath := filepath.Join(tmpDir, "logs", "orin.log")

		l, err := New(Config{Level: "debug", File: logPath})
		require.NoError(t, err)

		l.Info().Msg("hello")
		require.NoError(t, l.Close())

		data, err := os.ReadFile(logPath)
		require.NoError(t, err)
		assert.Contains(t, string(data), "hello")
	})

	t.Run("should write to file without console", func(t *testing.T) {
		tmpDir := t.TempDir()
		logPath := filepath.Join(tmpDir, "orin.log")

		l, err := New(Config{Level: "info", File: logPath, Console: false})
		require.NoError(t, err)

		l.Warn().Str("component", "test").Msg("warned")
		require.NoError(t, l.Close())

		data, err := os.ReadFile(logPath)
		require.NoError(t, err)
		assert.Contains(t, string(data), "warned")
		assert.Contains(t, string(data), "component")
	})

	t.Run("should redact secrets in file output", func(t *testing.T) {
		tmpDir := t.TempDir()
		logPath := filepath.Join(tmpDir, "orin.log")

		l, err := New(Config{Level: "info", File: logPath, Redaction: true})
		require.NoError(t, err)

		l.Info().Str("key", "sk-ant-REDACTED").Msg("configured")
		require.NoError(t, l.Close())

		data, err := os.ReadFile(logPath)
		require.NoError(t, err)
		assert.Contains(t, string(data), "[REDACTED]")
		assert.NotContains(t, string(data), "sk-ant-REDACTED")
	})
}

func TestRedactor(t *testing.T) {
	t.Run("should redact known secret shapes", func(t *testing.T) {
		r := NewRedactor()

		cases := []string{
			"sk-abcdefghijklmnopqrstuvwxyz123456",
			"Bearer eyJhbGciOiJIUzI1NiJ9.payload.sig",
			`password: "hunter22"`,
			`secret=deadbeefcafe`,
		}

		for _, in := range cases {
			out := r.Redact(in)
			assert.Contains(t, out, "[REDACTED]", "input %q", in)
		}
	})

	t.Run("should leave ordinary text alone", func(t *testing.T) {
		r := NewRedactor()
		assert.Equal(t, "tool executed in 12ms", r.Redact("tool executed in 12ms"))
	})

	t.Run("should support custom patterns", func(t *testing.T) {
		r := NewRedactor()
		require.NoError(t, r.AddPattern(`guild-[0-9]+`))
		assert.Equal(t, "[REDACTED]", r.Redact("guild-12345"))
	})

	t.Run("should reject invalid patterns", func(t *testing.T) {
		r := NewRedactor()
		assert.Error(t, r.AddPattern(`([`))
	})
}
