// Package decisionlog records policy evaluation decisions for audit.
//
// Every recorded decision captures the policy identity and version it was
// made under, the query, a SHA-256 hash of the input document (the input
// itself is not persisted), the result, the outcome, and the evaluation
// duration.
//
// # Storage Backends
//
//   - SQLiteStore: durable single-node storage with WAL mode, prepared
//     statements, and a busy timeout
//   - MemoryStore: bounded in-memory ring for tests and ephemeral hosts
//
// # Retention
//
// The Pruner enforces an age-based and a count-based retention policy;
// the Scheduler runs it on a cron expression (e.g. "0 3 * * *").
//
// # Basic Usage
//
//	store, err := decisionlog.NewSQLiteStore(&decisionlog.SQLiteConfig{
//	    Path: "data/decisions.db",
//	})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	recorder := decisionlog.NewRecorder(store, nil)
//	recorder.Record(ctx, decisionlog.Decision{
//	    PolicyPath:    "authz.rego",
//	    PolicyVersion: 3,
//	    Query:         "data.authz.allow",
//	    Input:         `{"role": "admin"}`,
//	    Result:        "true",
//	    Outcome:       decisionlog.OutcomeSuccess,
//	    Duration:      42 * time.Microsecond,
//	})
package decisionlog
