// Package evaluator implements the per-worker evaluator cache that makes
// repeated policy evaluation cheap.
//
// Compiling a Rego policy is expensive; evaluating a compiled policy is not.
// A compiled policy, however, is not safe to share across goroutines. The
// package resolves that tension with a single-slot, externally-invalidated
// cache: each Worker holds at most one compiled evaluator tagged with the
// store version it was built from, and rebuilds only when the tag disagrees
// with the current version.
//
// # State machine
//
// A Worker is in one of two states, Empty or Ready(tag, evaluator):
//
//   - Empty -> Ready(v): first evaluation compiles against the current
//     configuration and tags the result with the version v read alongside it
//   - Ready(v) -> Ready(v): tag matches the store, the cached evaluator is
//     reused as-is (the fast path, no locks beyond one shared read)
//   - Ready(v) -> Ready(v'): a load bumped the store version, the worker
//     recompiles and replaces its slot
//
// A failed rebuild leaves the slot in its prior state and fails only that
// call; it does not poison later attempts.
//
// The configuration and version are read from the store as one consistent
// pair per evaluation, so a worker never compiles version v's source under a
// different version's tag.
//
// # Ownership
//
// A Worker must only ever be used by one goroutine at a time; its slot is
// deliberately unsynchronized. Hosts that want a shared, goroutine-safe
// entry point use Pool, which keeps a free list of Workers and guarantees
// each is checked out by at most one goroutine at once. Two workers may
// transiently evaluate different policy generations right after a load;
// consistency across workers is eventual, not linearizable.
//
// # Basic Usage
//
//	pool := evaluator.NewPool(st)
//
//	// From any goroutine:
//	result, err := pool.EvaluateJSON(ctx, `{"role": "admin"}`)
package evaluator
