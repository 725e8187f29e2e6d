package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/themis/pkg/cli"
	"mercator-hq/themis/pkg/policy/history"
)

var historyFlags struct {
	db     string
	limit  int
	format string
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the policy load history",
	Long: `List recorded policy load attempts, newest first.

Every load attempt is shown, including rejected ones, with the store
version it produced and the content hash of the source.

Examples:
  # Show the 20 most recent load attempts
  themis history --db data/history.db --limit 20

  # JSON output
  themis history --db data/history.db --format json`,
	RunE: showHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&historyFlags.db, "db", "data/history.db", "history database path")
	historyCmd.Flags().IntVar(&historyFlags.limit, "limit", 50, "maximum number of entries to show, 0 shows all")
	historyCmd.Flags().StringVar(&historyFlags.format, "format", "text", "output format: text, json")
}

func showHistory(cmd *cobra.Command, args []string) error {
	cfg := history.DefaultConfig()
	cfg.Path = historyFlags.db

	store, err := history.New(cfg)
	if err != nil {
		return cli.NewCommandError("history", err)
	}
	defer store.Close()

	entries, err := store.Recent(cmd.Context(), historyFlags.limit)
	if err != nil {
		return cli.NewCommandError("history", err)
	}

	switch historyFlags.format {
	case "json":
		out, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	case "text":
		if len(entries) == 0 {
			fmt.Println("no load attempts recorded")
			return nil
		}
		for _, e := range entries {
			line := fmt.Sprintf("%s  v%-3d %-8s %s query=%s hash=%.12s",
				e.Timestamp.Format(time.RFC3339), e.Version, e.Outcome,
				e.PolicyPath, e.Query, e.SourceHash)
			if e.Error != "" {
				line += " error=" + e.Error
			}
			fmt.Println(line)
		}
	default:
		return fmt.Errorf("invalid format %q, must be one of: text, json", historyFlags.format)
	}

	return nil
}
