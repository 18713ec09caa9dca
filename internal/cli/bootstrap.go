package cli

import (
	"context"
	"fmt"
	"net/http"

	"github.com/orinbot/orin/internal/config"
	"github.com/orinbot/orin/internal/logger"
	"github.com/orinbot/orin/internal/metrics"
	"github.com/orinbot/orin/pkg/llm"
	"github.com/orinbot/orin/pkg/tool"
	"github.com/orinbot/orin/pkg/tool/mcp"
	"github.com/orinbot/orin/pkg/tool/runtimetools"
)

// app bundles everything a command needs after bootstrap.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	metrics  *metrics.Metrics
	registry *tool.Registry

	mcpProviders []*mcp.Provider
}

// bootstrap loads config, opens the logger, and builds the tool registry
// with the builtin provider plus every configured MCP server.
func bootstrap(ctx context.Context) (*app, error) {
	loader := config.NewLoader(cfgFile)
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:     cfg.Logging.Level,
		File:      cfg.Logging.File,
		Console:   cfg.Logging.Console,
		Pretty:    cfg.Logging.Pretty,
		Redaction: cfg.Logging.Redaction,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	a := &app{
		cfg:     cfg,
		log:     log,
		metrics: metrics.New(),
	}

	a.registry = tool.NewRegistry(log.GetZerolog())
	a.registry.SetMetrics(a.metrics)

	if err := a.registry.Register(runtimetools.New(nil), true); err != nil {
		a.close()
		return nil, fmt.Errorf("failed to register builtin tools: %w", err)
	}

	for _, server := range cfg.MCPServers {
		provider, err := mcp.Connect(ctx, mcp.Config{
			Name:        server.Name,
			Description: server.Description,
			Command:     server.Command,
			Args:        server.Args,
			Env:         server.Env,
		}, log.GetZerolog())
		if err != nil {
			log.Warn().Err(err).Str("server", server.Name).Msg("skipping mcp server")
			continue
		}
		if err := a.registry.Register(provider, server.Enabled); err != nil {
			_ = provider.Close()
			a.close()
			return nil, fmt.Errorf("failed to register mcp server %q: %w", server.Name, err)
		}
		a.mcpProviders = append(a.mcpProviders, provider)
	}

	if cfg.Metrics.Enabled {
		a.serveMetrics(cfg.Metrics.Addr)
	}

	return a, nil
}

// client builds the completion client for the configured provider.
func (a *app) client() (llm.Client, error) {
	key := a.cfg.Providers.AnthropicAPIKey
	if a.cfg.Agent.Provider == "openai" {
		key = a.cfg.Providers.OpenAIAPIKey
	}
	return llm.NewClient(llm.ClientConfig{
		Provider: a.cfg.Agent.Provider,
		APIKey:   key,
	})
}

func (a *app) serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			a.log.Warn().Err(err).Str("addr", addr).Msg("metrics server stopped")
		}
	}()
	a.log.Info().Str("addr", addr).Msg("metrics exposition started")
}

// close shuts down MCP server processes and the log file.
func (a *app) close() {
	for _, p := range a.mcpProviders {
		if err := p.Close(); err != nil {
			a.log.Warn().Err(err).Str("server", p.Name()).Msg("failed to close mcp server")
		}
	}
	_ = a.log.Close()
}
