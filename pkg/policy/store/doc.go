// Package store holds the process-wide "current policy" state: one active
// policy configuration plus a monotonically increasing version counter.
//
// The store is read-heavy and write-rare. Reads (Current) take a shared lock
// for the duration of two field copies; writes (Load) validate the candidate
// policy outside the lock and publish it under the exclusive lock. The
// configuration pointer and the version are always read and written inside
// the same critical section, so a reader can never observe a new version
// paired with an old configuration or vice versa.
//
// A published Config is never mutated in place. Every successful Load
// installs a wholly new Config and bumps the version by exactly one; a failed
// Load leaves both untouched, so readers keep evaluating the previous policy.
//
// The version is the invalidation signal for per-worker evaluator caches
// (see the evaluator package): a worker compares its tag against the version
// returned by Current and rebuilds on mismatch.
package store
