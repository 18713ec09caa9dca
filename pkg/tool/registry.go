package tool

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/orinbot/orin/internal/metrics"
)

// registration tracks one provider and its availability flag
type registration struct {
	provider Provider
	enabled  bool
}

// Registry owns the provider set and presents a single routing surface for
// agent runs. It is mutated only through Register/Enable/Disable and is safe
// for concurrent reads from many in-flight runs.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]*registration
	logger    zerolog.Logger
	metrics   *metrics.Metrics
}

// NewRegistry creates an empty registry
func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{
		providers: make(map[string]*registration),
		logger:    logger,
	}
}

// SetMetrics attaches a metrics recorder; nil leaves metrics disabled
func (r *Registry) SetMetrics(m *metrics.Metrics) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metrics = m
}

// Register adds a provider. Name collisions, malformed tool schemas, and
// duplicate tool names across enabled providers are all fatal here so
// misconfiguration is caught at startup, not mid-conversation.
func (r *Registry) Register(provider Provider, enabled bool) error {
	if provider == nil {
		return fmt.Errorf("provider cannot be nil")
	}
	name := provider.Name()
	if name == "" {
		return fmt.Errorf("provider name cannot be empty")
	}

	defs := provider.Tools()
	for _, def := range defs {
		if def.Name == "" {
			return fmt.Errorf("provider %s declares a tool with an empty name", name)
		}
		if _, err := CompileSchema(def); err != nil {
			return fmt.Errorf("provider %s tool %s has invalid schema: %w", name, def.Name, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("%w: %s", ErrProviderRegistered, name)
	}

	if enabled {
		if err := r.checkToolCollisions(name, defs); err != nil {
			return err
		}
	}

	r.providers[name] = &registration{provider: provider, enabled: enabled}

	r.logger.Info().
		Str("provider", name).
		Int("tools", len(defs)).
		Bool("enabled", enabled).
		Msg("Tool provider registered")

	return nil
}

// Enable makes a provider's tools available to new tool snapshots
func (r *Registry) Enable(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg, exists := r.providers[name]
	if !exists {
		return fmt.Errorf("%w: %s", ErrProviderNotFound, name)
	}
	if reg.enabled {
		return nil
	}

	if err := r.checkToolCollisions(name, reg.provider.Tools()); err != nil {
		return err
	}

	reg.enabled = true
	r.logger.Info().Str("provider", name).Msg("Tool provider enabled")
	return nil
}

// Disable removes a provider's tools from new tool snapshots. Runs already
// holding a snapshot may still complete calls against this provider.
func (r *Registry) Disable(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg, exists := r.providers[name]
	if !exists {
		return fmt.Errorf("%w: %s", ErrProviderNotFound, name)
	}

	reg.enabled = false
	r.logger.Info().Str("provider", name).Msg("Tool provider disabled")
	return nil
}

// IsEnabled reports a provider's availability flag
func (r *Registry) IsEnabled(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, exists := r.providers[name]
	return exists && reg.enabled
}

// EnabledTools returns the union of tool definitions from every enabled
// provider, ordered by provider name then declaration order. Duplicate tool
// names across enabled providers fail loudly rather than shadowing.
func (r *Registry) EnabledTools() ([]Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name, reg := range r.providers {
		if reg.enabled {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	seen := make(map[string]string)
	defs := []Definition{}
	for _, name := range names {
		for _, def := range r.providers[name].provider.Tools() {
			if owner, dup := seen[def.Name]; dup {
				return nil, fmt.Errorf("%w: %s exposed by %s and %s", ErrDuplicateTool, def.Name, owner, name)
			}
			seen[def.Name] = name
			defs = append(defs, def)
		}
	}

	return defs, nil
}

// Execute routes one tool call to the enabled provider owning it. A name with
// no enabled owner returns ErrToolNotSupported without executing provider
// code; cancellation propagates as the context error.
func (r *Registry) Execute(ctx context.Context, toolName string, input map[string]any, execCtx ExecutionContext) (ExecutionResult, error) {
	provider := r.findOwner(toolName)
	if provider == nil {
		r.logger.Warn().Str("tool", toolName).Msg("Tool requested with no enabled owner")
		r.metricsRef().RecordToolError(toolName, "not_supported")
		return ExecutionResult{}, fmt.Errorf("%w: %s", ErrToolNotSupported, toolName)
	}

	start := time.Now()
	result, err := provider.Execute(ctx, toolName, input, execCtx)
	duration := time.Since(start)

	if err != nil {
		r.metricsRef().RecordToolError(toolName, "execution_error")
		return ExecutionResult{}, err
	}

	r.metricsRef().RecordToolExecution(toolName, duration, result.Success)

	r.logger.Debug().
		Str("tool", toolName).
		Str("provider", provider.Name()).
		Dur("duration", duration).
		Bool("success", result.Success).
		Msg("Tool executed")

	return result, nil
}

// findOwner resolves the enabled provider exposing toolName. The provider
// reference is taken under the read lock but execution happens outside it so
// a slow tool never blocks registry mutation.
func (r *Registry) findOwner(toolName string) Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, reg := range r.providers {
		if !reg.enabled {
			continue
		}
		for _, def := range reg.provider.Tools() {
			if def.Name == toolName {
				return reg.provider
			}
		}
	}
	return nil
}

// checkToolCollisions verifies defs against every other enabled provider.
// Callers hold the write lock.
func (r *Registry) checkToolCollisions(name string, defs []Definition) error {
	owned := make(map[string]string)
	for otherName, reg := range r.providers {
		if otherName == name || !reg.enabled {
			continue
		}
		for _, def := range reg.provider.Tools() {
			owned[def.Name] = otherName
		}
	}

	for _, def := range defs {
		if owner, dup := owned[def.Name]; dup {
			return fmt.Errorf("%w: %s exposed by %s and %s", ErrDuplicateTool, def.Name, owner, name)
		}
	}
	return nil
}

// ProviderStatus describes one registered provider for operator surfaces
type ProviderStatus struct {
	Name        string
	Description string
	Enabled     bool
	ToolCount   int
	Tools       []Definition
}

// Providers lists registered providers sorted by name
func (r *Registry) Providers() []ProviderStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	statuses := make([]ProviderStatus, 0, len(r.providers))
	for _, reg := range r.providers {
		defs := reg.provider.Tools()
		statuses = append(statuses, ProviderStatus{
			Name:        reg.provider.Name(),
			Description: reg.provider.Description(),
			Enabled:     reg.enabled,
			ToolCount:   len(defs),
			Tools:       defs,
		})
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Name < statuses[j].Name })
	return statuses
}

// metricsRef returns the current metrics recorder under the read lock
func (r *Registry) metricsRef() *metrics.Metrics {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.metrics
}
