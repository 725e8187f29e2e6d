// Package history keeps a durable audit trail of policy load attempts.
//
// Every call to load a policy, successful or not, appends one entry
// recording the policy path, a content hash of the source, the query it
// was validated against, and the store version the load produced. The
// trail answers "what was running at version N" and "when did loads
// start failing" without inspecting live state.
//
// Entries are stored in SQLite. The store is safe for concurrent use.
package history
