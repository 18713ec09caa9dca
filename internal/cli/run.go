package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/orinbot/orin/internal/tracing"
	"github.com/orinbot/orin/pkg/agent"
	"github.com/orinbot/orin/pkg/prompt"
)

var (
	runSystemPrompt  string
	runModel         string
	runMaxIterations int
	runTimeout       time.Duration
	runShowTrace     bool
	runPromptVars    []string
)

var runCmd = &cobra.Command{
	Use:   "run [message]",
	Short: "Run one agent turn for the given message",
	Long: `Run a single agent turn: send the message to the configured model,
execute any tools it requests, and print the final answer.

The system prompt may be a Go text/template; use --var key=value to supply
template variables.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runSystemPrompt, "system", "", "system prompt override")
	runCmd.Flags().StringVar(&runModel, "model", "", "model override")
	runCmd.Flags().IntVar(&runMaxIterations, "max-iterations", 0, "tool iteration cap override")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "overall run timeout")
	runCmd.Flags().BoolVar(&runShowTrace, "trace", false, "print the tool execution trace")
	runCmd.Flags().StringArrayVar(&runPromptVars, "var", nil, "system prompt template variable (key=value, repeatable)")
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = tracing.NewRequestContext(ctx)

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	client, err := a.client()
	if err != nil {
		return fmt.Errorf("failed to build completion client: %w", err)
	}

	systemPrompt, err := resolveSystemPrompt(a)
	if err != nil {
		return err
	}

	runner, err := agent.NewRunner(agent.Config{
		Client:  client,
		Logger:  a.log.GetZerolog(),
		Metrics: a.metrics,
	})
	if err != nil {
		return err
	}

	cfg := agent.RunConfiguration{
		SystemPrompt:        systemPrompt,
		Registry:            a.registry,
		Model:               a.cfg.Agent.Model,
		MaxTokens:           a.cfg.Agent.MaxTokens,
		Temperature:         a.cfg.Agent.Temperature,
		MaxToolIterations:   a.cfg.Agent.MaxToolIterations,
		Timeout:             runTimeout,
		EnablePromptCaching: a.cfg.Agent.PromptCaching,
	}
	if runModel != "" {
		cfg.Model = runModel
	}
	if runMaxIterations > 0 {
		cfg.MaxToolIterations = runMaxIterations
	}

	result, err := runner.Run(ctx, args[0], cfg)
	if err != nil {
		return err
	}

	printResult(cmd, result)
	if result.Outcome == agent.OutcomeFailed {
		return fmt.Errorf("run failed: %s", result.ErrorMessage)
	}
	return nil
}

func resolveSystemPrompt(a *app) (string, error) {
	source := a.cfg.Agent.SystemPrompt
	if runSystemPrompt != "" {
		source = runSystemPrompt
	}
	if source == "" {
		return "", nil
	}

	vars, err := parsePromptVars(runPromptVars)
	if err != nil {
		return "", err
	}
	renderer := prompt.NewTemplateRenderer(nil)
	rendered, err := renderer.Render(source, vars)
	if err != nil {
		return "", fmt.Errorf("failed to render system prompt: %w", err)
	}
	return rendered, nil
}

func parsePromptVars(raw []string) (map[string]any, error) {
	vars := make(map[string]any, len(raw))
	for _, entry := range raw {
		key, value, found := strings.Cut(entry, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid --var %q, expected key=value", entry)
		}
		vars[key] = value
	}
	return vars, nil
}

func printResult(cmd *cobra.Command, result agent.RunResult) {
	out := cmd.OutOrStdout()

	if runShowTrace && len(result.Trace) > 0 {
		fmt.Fprintln(out, "Tool trace:")
		for i, tr := range result.Trace {
			status := "ok"
			if tr.IsError {
				status = "error"
			}
			fmt.Fprintf(out, "  %d. %s [%s]\n", i+1, tr.Name, status)
			if tr.Output != "" {
				fmt.Fprintf(out, "     %s\n", tr.Output)
			}
		}
		fmt.Fprintln(out)
	}

	switch result.Outcome {
	case agent.OutcomeSuccess:
		fmt.Fprintln(out, result.Text)
	case agent.OutcomeCapped:
		if result.Text != "" {
			fmt.Fprintln(out, result.Text)
		}
		fmt.Fprintf(out, "(stopped: %s)\n", result.ErrorMessage)
	case agent.OutcomeCancelled:
		fmt.Fprintln(out, "(cancelled)")
	case agent.OutcomeFailed:
		// reported through the returned error
	}

	fmt.Fprintf(out, "\n[%s] %d iterations, %d tokens\n",
		result.Outcome, result.Iterations, result.Usage.TotalTokens())
}
