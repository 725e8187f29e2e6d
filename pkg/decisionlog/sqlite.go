package decisionlog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// decisionSchema creates the decision log table and its indexes.
const decisionSchema = `
CREATE TABLE IF NOT EXISTS decisions (
    id TEXT PRIMARY KEY,
    timestamp TIMESTAMP NOT NULL,
    policy_path TEXT NOT NULL,
    policy_version INTEGER NOT NULL,
    query TEXT NOT NULL,
    input_hash TEXT NOT NULL,
    result TEXT,
    outcome TEXT NOT NULL,
    error TEXT,
    duration_us INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_decisions_timestamp ON decisions(timestamp);
CREATE INDEX IF NOT EXISTS idx_decisions_outcome ON decisions(outcome);
`

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/decisions.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	config *SQLiteConfig
	insert *sql.Stmt
	logger *slog.Logger
}

// NewSQLiteStore opens (creating if necessary) the decision database at the
// configured path and initializes the schema.
func NewSQLiteStore(config *SQLiteConfig) (*SQLiteStore, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "decisionlog.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStore{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("decision log storage initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
	)

	return s, nil
}

// initialize sets up the schema and connection pragmas.
func (s *SQLiteStore) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return NewStorageError("sqlite", "enable_wal", err)
		}
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(decisionSchema); err != nil {
		return NewStorageError("sqlite", "create_schema", err)
	}

	insert, err := s.db.Prepare(`
		INSERT INTO decisions (id, timestamp, policy_path, policy_version, query, input_hash, result, outcome, error, duration_us)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return NewStorageError("sqlite", "prepare_insert", err)
	}
	s.insert = insert

	return nil
}

// Store implements Store.
func (s *SQLiteStore) Store(ctx context.Context, record *Record) error {
	if record == nil {
		return NewStorageError("sqlite", "store", errNilRecord)
	}

	_, err := s.insert.ExecContext(ctx,
		record.ID,
		record.Timestamp,
		record.PolicyPath,
		int64(record.PolicyVersion),
		record.Query,
		record.InputHash,
		record.Result,
		record.Outcome,
		record.Error,
		record.Duration.Microseconds(),
	)
	if err != nil {
		return NewStorageError("sqlite", "store", err)
	}
	return nil
}

// Query implements Store. Records are returned newest first.
func (s *SQLiteStore) Query(ctx context.Context, filter QueryFilter) ([]*Record, error) {
	q := `SELECT id, timestamp, policy_path, policy_version, query, input_hash, result, outcome, error, duration_us
		FROM decisions WHERE 1=1`
	var args []any

	if filter.Outcome != "" {
		q += " AND outcome = ?"
		args = append(args, filter.Outcome)
	}
	if !filter.Since.IsZero() {
		q += " AND timestamp >= ?"
		args = append(args, filter.Since)
	}

	q += " ORDER BY timestamp DESC"

	if filter.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		var r Record
		var version, durationUs int64
		if err := rows.Scan(&r.ID, &r.Timestamp, &r.PolicyPath, &version, &r.Query,
			&r.InputHash, &r.Result, &r.Outcome, &r.Error, &durationUs); err != nil {
			return nil, NewStorageError("sqlite", "scan", err)
		}
		r.PolicyVersion = uint64(version)
		r.Duration = time.Duration(durationUs) * time.Microsecond
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError("sqlite", "query", err)
	}

	return out, nil
}

// Count implements Store.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM decisions").Scan(&count); err != nil {
		return 0, NewStorageError("sqlite", "count", err)
	}
	return count, nil
}

// DeleteOlderThan implements Store.
func (s *SQLiteStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM decisions WHERE timestamp < ?", cutoff)
	if err != nil {
		return 0, NewStorageError("sqlite", "delete_older_than", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, NewStorageError("sqlite", "rows_affected", err)
	}
	return deleted, nil
}

// DeleteOldest implements Store.
func (s *SQLiteStore) DeleteOldest(ctx context.Context, n int64) (int64, error) {
	if n <= 0 {
		return 0, nil
	}

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM decisions WHERE id IN (
			SELECT id FROM decisions ORDER BY timestamp ASC LIMIT ?
		)`, n)
	if err != nil {
		return 0, NewStorageError("sqlite", "delete_oldest", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, NewStorageError("sqlite", "rows_affected", err)
	}
	return deleted, nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	if s.insert != nil {
		s.insert.Close()
	}
	return s.db.Close()
}
