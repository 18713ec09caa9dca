package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/orinbot/orin/internal/metrics"
	"github.com/orinbot/orin/internal/tracing"
	"github.com/orinbot/orin/pkg/llm"
	"github.com/orinbot/orin/pkg/tool"
)

// ErrRunNotFound is returned by Abort when no active run has the given ID.
var ErrRunNotFound = errors.New("run not found")

// Config wires a Runner's collaborators.
type Config struct {
	Client  llm.Client
	Logger  zerolog.Logger
	Metrics *metrics.Metrics
}

// Runner drives the completion loop: call the model, execute requested
// tools, feed results back, repeat until a terminal state.
type Runner struct {
	client  llm.Client
	logger  zerolog.Logger
	metrics *metrics.Metrics

	runsMu     sync.Mutex
	activeRuns map[string]context.CancelFunc
}

// NewRunner builds a Runner. The client is required.
func NewRunner(cfg Config) (*Runner, error) {
	if cfg.Client == nil {
		return nil, errors.New("agent: client is required")
	}
	return &Runner{
		client:     cfg.Client,
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
		activeRuns: make(map[string]context.CancelFunc),
	}, nil
}

// Abort cancels the active run with the given ID.
func (r *Runner) Abort(runID string) error {
	r.runsMu.Lock()
	cancel, ok := r.activeRuns[runID]
	r.runsMu.Unlock()
	if !ok {
		return fmt.Errorf("agent: abort %q: %w", runID, ErrRunNotFound)
	}
	cancel()
	return nil
}

// IsRunning reports whether a run with the given ID is still active.
func (r *Runner) IsRunning(runID string) bool {
	r.runsMu.Lock()
	defer r.runsMu.Unlock()
	_, ok := r.activeRuns[runID]
	return ok
}

// Run executes one conversation turn for userMessage, looping through tool
// rounds until the model stops, the iteration cap is hit, the run fails, or
// the context is cancelled. The returned error is reserved for invalid
// configuration; every runtime condition is reported through
// RunResult.Outcome.
func (r *Runner) Run(ctx context.Context, userMessage string, cfg RunConfiguration) (RunResult, error) {
	if err := normalize(&cfg); err != nil {
		return RunResult{}, err
	}

	runID := gonanoid.Must()
	ctx = tracing.WithRunID(ctx, runID)
	if tracing.GetTraceID(ctx) == "" {
		ctx = tracing.WithTraceID(ctx, tracing.NewTraceID())
	}
	log := tracing.PropagateToLogger(ctx, r.logger)

	var cancel context.CancelFunc
	if cfg.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	r.runsMu.Lock()
	r.activeRuns[runID] = cancel
	r.runsMu.Unlock()
	defer func() {
		r.runsMu.Lock()
		delete(r.activeRuns, runID)
		r.runsMu.Unlock()
	}()

	started := time.Now()
	result := r.loop(ctx, log, userMessage, cfg, runID)
	r.metrics.RecordRun(r.client.ProviderName(), string(result.Outcome), time.Since(started), result.Iterations)

	log.Info().
		Str("outcome", string(result.Outcome)).
		Int("iterations", result.Iterations).
		Int("total_tokens", result.Usage.TotalTokens()).
		Dur("duration", time.Since(started)).
		Msg("run finished")
	return result, nil
}

func normalize(cfg *RunConfiguration) error {
	if cfg.Model == "" {
		return errors.New("agent: model is required")
	}
	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		return fmt.Errorf("agent: temperature %v out of range", cfg.Temperature)
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}
	if cfg.MaxToolIterations <= 0 {
		cfg.MaxToolIterations = DefaultMaxToolIterations
	}
	return nil
}

func (r *Runner) loop(ctx context.Context, log zerolog.Logger, userMessage string, cfg RunConfiguration, runID string) RunResult {
	result := RunResult{RunID: runID}
	messages := []llm.Message{llm.NewUserMessage(userMessage)}

	for {
		tools, err := r.enabledTools(cfg.Registry)
		if err != nil {
			result.Outcome = OutcomeFailed
			result.ErrorMessage = err.Error()
			return result
		}

		resp, err := r.client.Complete(ctx, llm.CompletionRequest{
			SystemPrompt:        cfg.SystemPrompt,
			Messages:            messages,
			Tools:               tools,
			Model:               cfg.Model,
			MaxTokens:           cfg.MaxTokens,
			Temperature:         cfg.Temperature,
			EnablePromptCaching: cfg.EnablePromptCaching,
		})
		result.Usage.Add(resp.Usage)
		r.metrics.RecordCompletionCall(r.client.ProviderName(), err == nil && resp.Success)
		r.metrics.RecordTokens(r.client.ProviderName(), resp.Usage.PromptTokens, resp.Usage.CompletionTokens, resp.Usage.CacheReadTokens, resp.Usage.CacheWriteTokens)
		if err != nil {
			if ctx.Err() != nil {
				result.Outcome = OutcomeCancelled
				result.ErrorMessage = ctx.Err().Error()
				return result
			}
			result.Outcome = OutcomeFailed
			result.ErrorMessage = err.Error()
			return result
		}
		if !resp.Success {
			log.Warn().Str("error", resp.ErrorMessage).Msg("completion failed")
			result.Outcome = OutcomeFailed
			result.ErrorMessage = resp.ErrorMessage
			return result
		}

		if resp.StopReason != llm.StopReasonToolUse {
			result.Outcome = OutcomeSuccess
			result.Text = resp.Content
			return result
		}

		if len(resp.ToolCalls) == 0 {
			result.Outcome = OutcomeFailed
			result.ErrorMessage = "backend reported tool use without any tool calls"
			return result
		}

		messages = append(messages, llm.NewAssistantMessage(resp.Content, resp.ToolCalls))

		toolResults, traces, err := r.executeToolCalls(ctx, log, cfg, resp.ToolCalls)
		result.Trace = append(result.Trace, traces...)
		if err != nil {
			result.Outcome = OutcomeCancelled
			result.ErrorMessage = err.Error()
			return result
		}
		messages = append(messages, llm.NewToolResultMessage(toolResults))
		result.Iterations++

		if result.Iterations >= cfg.MaxToolIterations {
			log.Warn().Int("iterations", result.Iterations).Msg("tool iteration cap reached")
			result.Outcome = OutcomeCapped
			result.Text = resp.Content
			result.ErrorMessage = fmt.Sprintf("stopped after %d tool iterations", result.Iterations)
			return result
		}
	}
}

// enabledTools snapshots the registry. Re-fetched every iteration so that
// providers toggled mid-run take effect on the next round.
func (r *Runner) enabledTools(registry *tool.Registry) ([]llm.ToolDefinition, error) {
	if registry == nil {
		return nil, nil
	}
	defs, err := registry.EnabledTools()
	if err != nil {
		return nil, err
	}
	out := make([]llm.ToolDefinition, len(defs))
	for i, def := range defs {
		out[i] = llm.ToolDefinition{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema,
		}
	}
	return out, nil
}

// executeToolCalls runs every requested tool concurrently and returns one
// result per call, in call order. A non-nil error means the batch was
// cancelled; partial traces are still returned.
func (r *Runner) executeToolCalls(ctx context.Context, log zerolog.Logger, cfg RunConfiguration, calls []llm.ToolCall) ([]llm.ToolResult, []ToolTrace, error) {
	results := make([]llm.ToolResult, len(calls))
	traces := make([]ToolTrace, len(calls))

	g, gctx := errgroup.WithContext(ctx)
	for i, call := range calls {
		g.Go(func() error {
			content, isError := r.executeOne(gctx, log, cfg, call)
			if gctx.Err() != nil {
				return gctx.Err()
			}
			results[i] = llm.ToolResult{ToolCallID: call.ID, Content: content, IsError: isError}
			traces[i] = ToolTrace{CallID: call.ID, Name: call.Name, Input: call.Input, Output: content, IsError: isError}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, compact(traces), err
	}
	return results, traces, nil
}

// executeOne maps every failure mode to a result the model can read.
// Unknown or unrouteable tools become error results rather than aborting
// the run, so the 1:1 call-to-result pairing holds.
func (r *Runner) executeOne(ctx context.Context, log zerolog.Logger, cfg RunConfiguration, call llm.ToolCall) (string, bool) {
	if cfg.Registry == nil {
		return fmt.Sprintf("tool %q is not available", call.Name), true
	}
	res, err := cfg.Registry.Execute(ctx, call.Name, call.Input, cfg.ExecContext)
	if err != nil {
		// Unrouteable tools become error results the model can read.
		// Cancellation also lands here; the goroutine's context check
		// turns it into a cancelled outcome before the result is used.
		return err.Error(), true
	}
	if !res.Success {
		log.Debug().Str("tool", call.Name).Str("error", res.Error).Msg("tool returned error result")
		return res.Error, true
	}
	return res.Output, false
}

func compact(traces []ToolTrace) []ToolTrace {
	out := traces[:0]
	for _, tr := range traces {
		if tr.CallID != "" {
			out = append(out, tr)
		}
	}
	return out
}
