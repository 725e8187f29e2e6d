// Package policy is the top-level facade for loading and evaluating
// policies.
//
// A Service wires the shared policy store, the per-goroutine evaluator
// pool, and the optional recording concerns (metrics, decision log, load
// history) behind three calls:
//
//	svc := policy.NewService()
//
//	if err := svc.LoadPolicy(ctx, "authz.rego",
//		policy.WithQuery("data.authz.allow")); err != nil {
//		return err
//	}
//
//	result, err := svc.Evaluate(ctx, `{"role": "admin"}`)
//
// # Loading
//
// LoadPolicy reads the policy from the filesystem; LoadPolicySource takes
// the source directly. Either way the policy is compiled for validation
// before it is published, so a bad policy never displaces a good one: a
// failed load leaves the previous policy active and returns a
// *store.LoadError describing the rejection.
//
// Loads may happen at any time, including while evaluations are in flight.
// Evaluators pick up a new policy on their next call; concurrent callers
// may briefly evaluate under the previous version.
//
// # Evaluating
//
// Evaluate takes and returns JSON text. EvaluateParsed returns native Go
// values instead of serialized JSON. EvaluateValue skips input parsing for
// callers that already hold a value.Value. All three are safe for
// unbounded concurrent use.
//
// # Recording
//
// With WithMetrics, loads, compiles, and evaluations are counted in
// Prometheus collectors. With WithDecisionLog, every evaluation is
// appended to a decision log. With WithHistory, every load attempt is
// appended to a durable audit trail. Recording failures are logged and
// never fail the call that produced them.
package policy
