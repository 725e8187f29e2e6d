/*
Package cli provides command-line interface utilities for Themis.

The cli package includes the error types and signal handling helpers used
by the themis command.

Error Types:

Commands wrap failures in CommandError so the failing subcommand is named
in the output:

	if err := svc.LoadPolicy(ctx, path); err != nil {
		return cli.NewCommandError("eval", err)
	}

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx := cli.SetupSignalHandler()
	// Use ctx for operations that should be cancelled on shutdown
*/
package cli
