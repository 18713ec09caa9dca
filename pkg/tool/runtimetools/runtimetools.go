// Package runtimetools ships the builtin tool provider: small utilities the
// model can call without any external process or network dependency.
package runtimetools

import (
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/orinbot/orin/pkg/tool"
)

// ProviderName is the registry name of the builtin provider.
const ProviderName = "runtime"

const defaultIDLength = 21

// Clock abstracts time.Now for tests.
type Clock func() time.Time

// New builds the builtin provider. A nil clock uses time.Now.
func New(clock Clock) *tool.BasicProvider {
	if clock == nil {
		clock = time.Now
	}

	return tool.NewBasicProvider(ProviderName, "builtin runtime utilities").
		MustAdd(tool.Definition{
			Name:        "current_time",
			Description: "Get the current date and time, optionally in a named IANA timezone such as Europe/Amsterdam. Defaults to UTC.",
			InputSchema: tool.ObjectSchema(map[string]any{
				"timezone": tool.StringProperty("IANA timezone name, defaults to UTC"),
			}),
		}, func(ctx context.Context, input map[string]any, execCtx tool.ExecutionContext) (string, error) {
			return currentTime(clock, input)
		}).
		MustAdd(tool.Definition{
			Name:        "generate_id",
			Description: "Generate a unique identifier. Kind is either nanoid (URL-safe, default) or uuid (RFC 4122 v4).",
			InputSchema: tool.ObjectSchema(map[string]any{
				"kind": tool.StringProperty("identifier kind, nanoid or uuid"),
			}),
		}, func(ctx context.Context, input map[string]any, execCtx tool.ExecutionContext) (string, error) {
			return generateID(input)
		}).
		MustAdd(tool.Definition{
			Name:        "render_template",
			Description: "Render a Go text/template with the given variables and return the result.",
			InputSchema: tool.ObjectSchema(map[string]any{
				"template":  tool.StringProperty("template source using Go text/template syntax"),
				"variables": map[string]any{"type": "object", "description": "values available inside the template"},
			}, "template"),
		}, func(ctx context.Context, input map[string]any, execCtx tool.ExecutionContext) (string, error) {
			return renderTemplate(input)
		})
}

func currentTime(clock Clock, input map[string]any) (string, error) {
	loc := time.UTC
	if tz, ok := input["timezone"].(string); ok && tz != "" {
		parsed, err := time.LoadLocation(tz)
		if err != nil {
			return "", fmt.Errorf("unknown timezone %q", tz)
		}
		loc = parsed
	}
	return clock().In(loc).Format(time.RFC1123), nil
}

func generateID(input map[string]any) (string, error) {
	kind, _ := input["kind"].(string)
	switch kind {
	case "", "nanoid":
		return gonanoid.New(defaultIDLength)
	case "uuid":
		return uuid.NewString(), nil
	default:
		return "", fmt.Errorf("unknown identifier kind %q", kind)
	}
}

func renderTemplate(input map[string]any) (string, error) {
	source, _ := input["template"].(string)
	tmpl, err := template.New("tool").Option("missingkey=error").Parse(source)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	vars, _ := input["variables"].(map[string]any)
	var buf strings.Builder
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return buf.String(), nil
}
