// Themis is an embeddable policy evaluation runtime with a CLI front end.
//
// It loads Rego policies, validates them before activation, and evaluates
// queries against them, keeping an optional audit trail of loads and
// decisions.
//
// Usage:
//
//	# Evaluate a query against a policy
//	themis eval --policy authz.rego --query data.authz.allow --input '{"role": "admin"}'
//
//	# Validate a policy without evaluating
//	themis lint --file authz.rego --query data.authz.allow
//
//	# Inspect recorded decisions
//	themis decisions query --db data/decisions.db --limit 20
//
//	# Inspect the policy load history
//	themis history --db data/history.db
//
//	# Show version information
//	themis version
//
// For complete documentation, see: https://github.com/mercator-hq/themis
package main

func main() {
	Execute()
}
