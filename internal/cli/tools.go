package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List registered tool providers and their tools",
	Long: `List every registered tool provider, whether it is enabled, and the
tools it exposes. Includes builtin runtime tools and configured MCP servers.`,
	RunE: runTools,
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}

func runTools(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PROVIDER\tSTATE\tTOOL\tDESCRIPTION")
	for _, status := range a.registry.Providers() {
		state := "disabled"
		if status.Enabled {
			state = "enabled"
		}
		if len(status.Tools) == 0 {
			fmt.Fprintf(w, "%s\t%s\t-\t%s\n", status.Name, state, status.Description)
			continue
		}
		for _, def := range status.Tools {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", status.Name, state, def.Name, def.Description)
		}
	}
	return w.Flush()
}
