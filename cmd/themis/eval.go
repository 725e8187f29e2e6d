package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/themis/pkg/cli"
	"mercator-hq/themis/pkg/config"
	"mercator-hq/themis/pkg/decisionlog"
	"mercator-hq/themis/pkg/policy"
)

var evalFlags struct {
	policyFile string
	query      string
	input      string
	inputFile  string
	dataFile   string
	format     string
}

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Evaluate a query against a policy",
	Long: `Load a policy, evaluate its query against an input document, and print
the result.

The policy is validated before evaluation; a policy that does not compile
fails the command without evaluating anything.

Examples:
  # Evaluate with inline input
  themis eval --policy authz.rego --query data.authz.allow --input '{"role": "admin"}'

  # Read input from a file
  themis eval --policy authz.rego --query data.authz.allow --input-file request.json

  # Read input from stdin
  echo '{"role": "admin"}' | themis eval --policy authz.rego --query data.authz.allow

  # Provide static data alongside the policy
  themis eval --policy authz.rego --query data.authz.allow --data admins.json --input '{"user": "alice"}'

  # Use the policy settings from a config file
  themis eval --config themis.yaml --input '{"role": "admin"}'`,
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)

	evalCmd.Flags().StringVarP(&evalFlags.policyFile, "policy", "p", "", "policy file to load")
	evalCmd.Flags().StringVarP(&evalFlags.query, "query", "q", "", "query expression (default: the whole data document)")
	evalCmd.Flags().StringVarP(&evalFlags.input, "input", "i", "", "input document as inline JSON")
	evalCmd.Flags().StringVar(&evalFlags.inputFile, "input-file", "", "input document file (use - for stdin)")
	evalCmd.Flags().StringVar(&evalFlags.dataFile, "data", "", "static data JSON file")
	evalCmd.Flags().StringVar(&evalFlags.format, "format", "json", "output format: json, pretty")
}

func runEval(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfigFile()
	if err != nil {
		return cli.NewCommandError("eval", err)
	}
	if err := setupLogging(cfg); err != nil {
		return cli.NewCommandError("eval", err)
	}

	policyFile := evalFlags.policyFile
	query := evalFlags.query
	dataFile := evalFlags.dataFile
	if cfg != nil {
		if policyFile == "" {
			policyFile = cfg.Policy.Path
		}
		if query == "" {
			query = cfg.Policy.Query
		}
		if dataFile == "" {
			dataFile = cfg.Policy.DataFile
		}
	}
	if policyFile == "" {
		return fmt.Errorf("either --policy or --config must be specified")
	}

	input, err := readInput()
	if err != nil {
		return cli.NewCommandError("eval", err)
	}

	var svcOpts []policy.ServiceOption
	if cfg != nil && cfg.DecisionLog.Enabled {
		recorder, closeFn, err := buildRecorder(cfg)
		if err != nil {
			return cli.NewCommandError("eval", err)
		}
		defer closeFn()
		svcOpts = append(svcOpts, policy.WithDecisionLog(recorder))
	}

	svc := policy.NewService(svcOpts...)

	var loadOpts []policy.LoadOption
	if query != "" {
		loadOpts = append(loadOpts, policy.WithQuery(query))
	}
	if dataFile != "" {
		loadOpts = append(loadOpts, policy.WithDataFile(dataFile))
	}

	ctx := cmd.Context()
	if err := svc.LoadPolicy(ctx, policyFile, loadOpts...); err != nil {
		return cli.NewCommandError("eval", err)
	}

	result, err := svc.Evaluate(ctx, input)
	if err != nil {
		return cli.NewCommandError("eval", err)
	}

	return printResult(result)
}

// readInput resolves the input document from --input, --input-file, or
// stdin, in that order. Missing input defaults to an empty object.
func readInput() (string, error) {
	if evalFlags.input != "" {
		return evalFlags.input, nil
	}

	if evalFlags.inputFile != "" && evalFlags.inputFile != "-" {
		data, err := os.ReadFile(evalFlags.inputFile)
		if err != nil {
			return "", fmt.Errorf("failed to read input file: %w", err)
		}
		return string(data), nil
	}

	if evalFlags.inputFile == "-" {
		data, err := os.ReadFile("/dev/stdin")
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	// No input given: check whether stdin is a pipe.
	stat, err := os.Stdin.Stat()
	if err == nil && (stat.Mode()&os.ModeCharDevice) == 0 {
		data, err := os.ReadFile("/dev/stdin")
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	return "{}", nil
}

func printResult(result string) error {
	switch evalFlags.format {
	case "json":
		fmt.Println(result)
		return nil
	case "pretty":
		var buf any
		if err := json.Unmarshal([]byte(result), &buf); err != nil {
			fmt.Println(result)
			return nil
		}
		pretty, err := json.MarshalIndent(buf, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(pretty))
		return nil
	default:
		return fmt.Errorf("invalid format %q, must be one of: json, pretty", evalFlags.format)
	}
}

// buildRecorder constructs the configured decision log recorder and returns
// a close function for its backing store.
func buildRecorder(cfg *config.Config) (*decisionlog.Recorder, func(), error) {
	var store decisionlog.Store
	var err error

	switch cfg.DecisionLog.Backend {
	case "memory":
		store = decisionlog.NewMemoryStore(0)
	default:
		scfg := decisionlog.DefaultSQLiteConfig()
		scfg.Path = cfg.DecisionLog.SQLitePath
		store, err = decisionlog.NewSQLiteStore(scfg)
		if err != nil {
			return nil, nil, err
		}
	}

	rcfg := decisionlog.DefaultRecorderConfig()
	rcfg.WriteTimeout = cfg.DecisionLog.WriteTimeout

	return decisionlog.NewRecorder(store, rcfg), func() { store.Close() }, nil
}
