package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"mercator-hq/themis/pkg/policy/engine"
)

var lintFlags struct {
	file   string
	dir    string
	query  string
	data   string
	format string
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Validate policy files",
	Long: `Validate Rego policy files without evaluating them.

The lint command compiles each policy the same way a load would, so a
policy that lints clean is guaranteed to load. When --query is given the
query is prepared against the policy as well, catching unknown references
the compile alone would miss.

Examples:
  # Lint a single file
  themis lint --file authz.rego

  # Lint a directory
  themis lint --dir policies/

  # Also validate the query
  themis lint --file authz.rego --query data.authz.allow

  # JSON output for CI/CD
  themis lint --file authz.rego --format json`,
	RunE: lintPolicies,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFlags.file, "file", "f", "", "policy file to validate")
	lintCmd.Flags().StringVarP(&lintFlags.dir, "dir", "d", "", "directory of policy files")
	lintCmd.Flags().StringVarP(&lintFlags.query, "query", "q", "", "query to prepare against each policy")
	lintCmd.Flags().StringVar(&lintFlags.data, "data", "", "static data JSON file")
	lintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format: text, json")
}

type lintResult struct {
	File  string `json:"file"`
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

func lintPolicies(cmd *cobra.Command, args []string) error {
	if lintFlags.file == "" && lintFlags.dir == "" {
		return fmt.Errorf("either --file or --dir must be specified")
	}

	var files []string
	if lintFlags.file != "" {
		files = append(files, lintFlags.file)
	}
	if lintFlags.dir != "" {
		matches, err := filepath.Glob(filepath.Join(lintFlags.dir, "*.rego"))
		if err != nil {
			return fmt.Errorf("failed to list policy directory: %w", err)
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return fmt.Errorf("no policy files found")
	}

	var dataJSON string
	if lintFlags.data != "" {
		data, err := os.ReadFile(lintFlags.data)
		if err != nil {
			return fmt.Errorf("failed to read data file: %w", err)
		}
		dataJSON = string(data)
	}

	query := lintFlags.query
	if query == "" {
		query = engine.DefaultQuery
	}

	ctx := context.Background()
	if cmd != nil {
		ctx = cmd.Context()
	}
	var results []lintResult
	failed := 0

	for _, file := range files {
		result := lintResult{File: file, Valid: true}

		source, err := os.ReadFile(file)
		if err != nil {
			result.Valid = false
			result.Error = err.Error()
		} else if _, err := engine.Compile(ctx, file, string(source), dataJSON, query); err != nil {
			result.Valid = false
			result.Error = err.Error()
		}

		if !result.Valid {
			failed++
		}
		results = append(results, result)
	}

	if err := printLintResults(results); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d policies failed validation", failed, len(results))
	}
	return nil
}

func printLintResults(results []lintResult) error {
	switch lintFlags.format {
	case "json":
		out, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	case "text":
		for _, r := range results {
			if r.Valid {
				fmt.Printf("ok    %s\n", r.File)
			} else {
				fmt.Printf("FAIL  %s: %s\n", r.File, r.Error)
			}
		}
		return nil
	default:
		return fmt.Errorf("invalid format %q, must be one of: text, json", lintFlags.format)
	}
}
