// Package mcp bridges external Model Context Protocol servers into the tool
// registry. Each provider owns one stdio-spawned server process and exposes
// that server's tools under its own provider name.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	mcpclient "github.com/mark3labs/mcp-go/client"
	mcpproto "github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"

	"github.com/orinbot/orin/pkg/tool"
)

// Config describes one MCP server to spawn over stdio.
type Config struct {
	// Name is the provider name in the registry. Required.
	Name string

	// Description is shown in provider listings.
	Description string

	// Command is the executable to spawn. Required.
	Command string

	// Args are passed to the command.
	Args []string

	// Env entries in KEY=VALUE form, appended to the child's environment.
	Env []string
}

// Provider is a tool.Provider backed by a running MCP server.
type Provider struct {
	name        string
	description string
	logger      zerolog.Logger

	mu     sync.Mutex
	client *mcpclient.Client
	defs   []tool.Definition
}

// Connect spawns the server, performs the MCP handshake, and lists its
// tools. The caller owns the returned provider and must Close it.
func Connect(ctx context.Context, cfg Config, logger zerolog.Logger) (*Provider, error) {
	if cfg.Name == "" {
		return nil, errors.New("mcp: server name is required")
	}
	if cfg.Command == "" {
		return nil, fmt.Errorf("mcp: server %q: command is required", cfg.Name)
	}

	client, err := mcpclient.NewStdioMCPClient(cfg.Command, cfg.Env, cfg.Args...)
	if err != nil {
		return nil, fmt.Errorf("mcp: spawn %q: %w", cfg.Name, err)
	}

	p := &Provider{
		name:        cfg.Name,
		description: cfg.Description,
		logger:      logger.With().Str("mcp_server", cfg.Name).Logger(),
		client:      client,
	}

	initReq := mcpproto.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcpproto.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcpproto.Implementation{Name: "orin", Version: "0.1.0"}
	if _, err := client.Initialize(ctx, initReq); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("mcp: initialize %q: %w", cfg.Name, err)
	}

	if err := p.refreshTools(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}

	p.logger.Info().Int("tools", len(p.defs)).Msg("mcp server connected")
	return p, nil
}

// Name implements tool.Provider.
func (p *Provider) Name() string {
	return p.name
}

// Description implements tool.Provider.
func (p *Provider) Description() string {
	if p.description != "" {
		return p.description
	}
	return fmt.Sprintf("mcp server %s", p.name)
}

// Tools implements tool.Provider. It returns the snapshot taken at connect
// time; call RefreshTools to pick up server-side changes.
func (p *Provider) Tools() []tool.Definition {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]tool.Definition, len(p.defs))
	copy(out, p.defs)
	return out
}

// RefreshTools re-lists the server's tools.
func (p *Provider) RefreshTools(ctx context.Context) error {
	return p.refreshTools(ctx)
}

func (p *Provider) refreshTools(ctx context.Context) error {
	p.mu.Lock()
	client := p.client
	p.mu.Unlock()
	if client == nil {
		return fmt.Errorf("mcp: server %q is closed", p.name)
	}

	result, err := client.ListTools(ctx, mcpproto.ListToolsRequest{})
	if err != nil {
		return fmt.Errorf("mcp: list tools on %q: %w", p.name, err)
	}

	defs := make([]tool.Definition, 0, len(result.Tools))
	for _, t := range result.Tools {
		schema, err := convertSchema(t.InputSchema)
		if err != nil {
			return fmt.Errorf("mcp: tool %q on %q: %w", t.Name, p.name, err)
		}
		defs = append(defs, tool.Definition{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: schema,
		})
	}

	p.mu.Lock()
	p.defs = defs
	p.mu.Unlock()
	return nil
}

// Execute implements tool.Provider by forwarding the call to the server.
// Server-reported tool errors come back as failed results; transport errors
// do too, so a crashed server never aborts a whole run.
func (p *Provider) Execute(ctx context.Context, toolName string, input map[string]any, execCtx tool.ExecutionContext) (tool.ExecutionResult, error) {
	p.mu.Lock()
	client := p.client
	known := false
	for _, def := range p.defs {
		if def.Name == toolName {
			known = true
			break
		}
	}
	p.mu.Unlock()

	if !known {
		return tool.ExecutionResult{}, fmt.Errorf("mcp: server %q: %w: %s", p.name, tool.ErrUnknownTool, toolName)
	}
	if client == nil {
		return tool.Fail("mcp server %s is closed", p.name), nil
	}
	if err := ctx.Err(); err != nil {
		return tool.ExecutionResult{}, err
	}

	req := mcpproto.CallToolRequest{}
	req.Params.Name = toolName
	req.Params.Arguments = input

	result, err := client.CallTool(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return tool.ExecutionResult{}, ctx.Err()
		}
		p.logger.Warn().Err(err).Str("tool", toolName).Msg("mcp call failed")
		return tool.Fail("mcp call failed: %v", err), nil
	}

	text := flattenContent(result.Content)
	if result.IsError {
		return tool.Fail("%s", text), nil
	}
	return tool.Succeed(text), nil
}

// Close terminates the server process. Safe to call twice.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client == nil {
		return nil
	}
	err := p.client.Close()
	p.client = nil
	return err
}

// convertSchema turns the wire-format input schema into the plain map shape
// the registry compiles. A schema without a type gets the object default.
func convertSchema(schema mcpproto.ToolInputSchema) (map[string]any, error) {
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("marshal input schema: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode input schema: %w", err)
	}
	if out == nil {
		out = map[string]any{}
	}
	if _, ok := out["type"]; !ok {
		out["type"] = "object"
	}
	return out, nil
}

// flattenContent joins the text blocks of a tool response. Non-text blocks
// are summarized by type since the completion loop only carries text.
func flattenContent(blocks []mcpproto.Content) string {
	parts := make([]string, 0, len(blocks))
	for _, block := range blocks {
		switch c := block.(type) {
		case mcpproto.TextContent:
			parts = append(parts, c.Text)
		case mcpproto.ImageContent:
			parts = append(parts, fmt.Sprintf("[image content, %s]", c.MIMEType))
		case mcpproto.EmbeddedResource:
			parts = append(parts, "[embedded resource]")
		default:
			parts = append(parts, "[unsupported content]")
		}
	}
	return strings.Join(parts, "\n")
}
