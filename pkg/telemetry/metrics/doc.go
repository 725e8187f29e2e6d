// Package metrics provides Prometheus instrumentation for the policy
// runtime.
//
// Metrics:
//   - themis_policy_loads_total: policy load attempts by outcome
//   - themis_policy_version: current policy version (0 = never loaded)
//   - themis_policy_compiles_total: evaluator rebuilds across all workers
//   - themis_policy_evaluations_total: evaluations by outcome
//   - themis_policy_evaluation_duration_seconds: evaluation latency
//
// All recording methods are safe to call on a nil *PolicyMetrics, so
// components can treat instrumentation as optional wiring.
//
// The package does not own an HTTP listener; Handler returns a standard
// http.Handler for the host to mount wherever it serves metrics.
package metrics
