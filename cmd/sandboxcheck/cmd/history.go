package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/buildcamp/sandboxcheck/internal/config"
	"github.com/buildcamp/sandboxcheck/internal/history"
)

func newHistoryCmd() *cobra.Command {
	var (
		jsonOutput bool
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent validation runs",
		Long: `History lists recent validation runs for this sandbox, newest first,
with the score and the gates that failed.`,
		Example: `  # Last 10 runs
  sandboxcheck history

  # All retained runs as JSON
  sandboxcheck history --limit 0 --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd, jsonOutput, limit)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to show (0 for all)")
	return cmd
}

func runHistory(cmd *cobra.Command, jsonOutput bool, limit int) error {
	root, err := config.FindWorkspaceRoot(".")
	if err != nil {
		root, err = os.Getwd()
		if err != nil {
			return err
		}
	}

	cfg, err := config.Load(root)
	if err != nil {
		return err
	}

	store, err := history.New(historyPath(root), cfg.History.MaxRuns)
	if err != nil {
		return fmt.Errorf("open run history: %w", err)
	}
	defer store.Close()

	runs, err := store.List(cmd.Context(), limit)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		cmd.Println("No runs recorded yet. Run 'sandboxcheck validate' first.")
		return nil
	}

	for _, run := range runs {
		line := fmt.Sprintf("%s  %d/%d",
			run.Timestamp.Local().Format("2006-01-02 15:04:05"),
			run.Passed, run.Total)
		if len(run.FailedGates) > 0 {
			line += "  failed: " + strings.Join(run.FailedGates, ", ")
		}
		cmd.Println(line)
	}
	return nil
}
