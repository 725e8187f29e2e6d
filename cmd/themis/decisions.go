package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/themis/pkg/cli"
	"mercator-hq/themis/pkg/decisionlog"
)

var decisionsFlags struct {
	db      string
	limit   int
	outcome string
	since   string
	format  string

	retentionDays int
	maxRecords    int64
}

var decisionsCmd = &cobra.Command{
	Use:   "decisions",
	Short: "Inspect and prune the decision log",
	Long: `Query and prune recorded policy decisions.

Subcommands:
  query  - List recorded decisions with filters
  prune  - Apply retention to the decision database

Examples:
  # Show the 20 most recent decisions
  themis decisions query --db data/decisions.db --limit 20

  # Show failed evaluations since a point in time
  themis decisions query --db data/decisions.db --outcome error --since 2026-08-01T00:00:00Z

  # Drop decisions older than 30 days
  themis decisions prune --db data/decisions.db --retention-days 30`,
}

var decisionsQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "List recorded decisions",
	Long: `List recorded decisions, newest first.

The --since flag takes an RFC3339 timestamp.`,
	RunE: queryDecisions,
}

var decisionsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Apply retention to the decision database",
	Long: `Delete decisions past the retention window, then trim the total count
down to --max-records when set.`,
	RunE: pruneDecisions,
}

func init() {
	rootCmd.AddCommand(decisionsCmd)
	decisionsCmd.AddCommand(decisionsQueryCmd)
	decisionsCmd.AddCommand(decisionsPruneCmd)

	decisionsCmd.PersistentFlags().StringVar(&decisionsFlags.db, "db", "data/decisions.db", "decision database path")

	decisionsQueryCmd.Flags().IntVar(&decisionsFlags.limit, "limit", 50, "maximum number of decisions to show")
	decisionsQueryCmd.Flags().StringVar(&decisionsFlags.outcome, "outcome", "", "filter by outcome: success, error")
	decisionsQueryCmd.Flags().StringVar(&decisionsFlags.since, "since", "", "only show decisions at or after this RFC3339 timestamp")
	decisionsQueryCmd.Flags().StringVar(&decisionsFlags.format, "format", "text", "output format: text, json")

	decisionsPruneCmd.Flags().IntVar(&decisionsFlags.retentionDays, "retention-days", 90, "days of decisions to keep, 0 keeps all")
	decisionsPruneCmd.Flags().Int64Var(&decisionsFlags.maxRecords, "max-records", 0, "cap on total records, 0 means unlimited")
}

func openDecisionStore() (*decisionlog.SQLiteStore, error) {
	cfg := decisionlog.DefaultSQLiteConfig()
	cfg.Path = decisionsFlags.db
	return decisionlog.NewSQLiteStore(cfg)
}

func queryDecisions(cmd *cobra.Command, args []string) error {
	store, err := openDecisionStore()
	if err != nil {
		return cli.NewCommandError("decisions query", err)
	}
	defer store.Close()

	filter := decisionlog.QueryFilter{
		Limit:   decisionsFlags.limit,
		Outcome: decisionsFlags.outcome,
	}
	if decisionsFlags.since != "" {
		since, err := time.Parse(time.RFC3339, decisionsFlags.since)
		if err != nil {
			return fmt.Errorf("invalid --since timestamp: %w", err)
		}
		filter.Since = since
	}

	records, err := store.Query(cmd.Context(), filter)
	if err != nil {
		return cli.NewCommandError("decisions query", err)
	}

	switch decisionsFlags.format {
	case "json":
		out, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	case "text":
		if len(records) == 0 {
			fmt.Println("no decisions found")
			return nil
		}
		for _, r := range records {
			line := fmt.Sprintf("%s  v%-3d %-7s %s query=%s duration=%s",
				r.Timestamp.Format(time.RFC3339), r.PolicyVersion, r.Outcome,
				r.PolicyPath, r.Query, r.Duration)
			if r.Error != "" {
				line += " error=" + r.Error
			}
			fmt.Println(line)
		}
	default:
		return fmt.Errorf("invalid format %q, must be one of: text, json", decisionsFlags.format)
	}

	return nil
}

func pruneDecisions(cmd *cobra.Command, args []string) error {
	store, err := openDecisionStore()
	if err != nil {
		return cli.NewCommandError("decisions prune", err)
	}
	defer store.Close()

	pruner := decisionlog.NewPruner(store, &decisionlog.RetentionConfig{
		RetentionDays: decisionsFlags.retentionDays,
		MaxRecords:    decisionsFlags.maxRecords,
	})

	deleted, err := pruner.Prune(cmd.Context())
	if err != nil {
		return cli.NewCommandError("decisions prune", err)
	}

	fmt.Printf("deleted %d decisions\n", deleted)
	return nil
}
