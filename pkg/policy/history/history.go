package history

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// Load outcomes.
const (
	OutcomeLoaded   = "loaded"
	OutcomeRejected = "rejected"
)

// Entry is one recorded load attempt.
type Entry struct {
	// ID is the entry's row identifier, assigned on append
	ID int64

	// Timestamp is when the load was attempted
	Timestamp time.Time

	// PolicyPath is the path the policy was loaded under
	PolicyPath string

	// SourceHash is the hex SHA-256 of the policy source
	SourceHash string

	// Query is the query the policy was validated against
	Query string

	// Version is the store version after a successful load, 0 when rejected
	Version uint64

	// Outcome is "loaded" or "rejected"
	Outcome string

	// Error is the rejection reason, empty when loaded
	Error string
}

const schema = `
CREATE TABLE IF NOT EXISTS policy_loads (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp INTEGER NOT NULL,
    policy_path TEXT NOT NULL,
    source_hash TEXT NOT NULL,
    query TEXT NOT NULL,
    version INTEGER NOT NULL,
    outcome TEXT NOT NULL,
    error TEXT
);

CREATE INDEX IF NOT EXISTS idx_policy_loads_timestamp ON policy_loads(timestamp);
`

// Config contains configuration for the load history store.
type Config struct {
	// Path is the database file path.
	Path string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultConfig returns the default history configuration.
func DefaultConfig() *Config {
	return &Config{
		Path:        "data/history.db",
		BusyTimeout: 5 * time.Second,
	}
}

// Store persists the load audit trail in SQLite.
type Store struct {
	db     *sql.DB
	insert *sql.Stmt
	logger *slog.Logger
}

// New opens (creating if necessary) the history database at the configured
// path and initializes the schema.
func New(config *Config) (*Store, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Path == "" {
		return nil, fmt.Errorf("history db path cannot be empty")
	}
	if config.BusyTimeout == 0 {
		config.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		config.Path, int(config.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}

	insert, err := db.Prepare(`
		INSERT INTO policy_loads (timestamp, policy_path, source_hash, query, version, outcome, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare history insert: %w", err)
	}

	logger := slog.Default().With("component", "policy.history")
	logger.Info("load history storage initialized", "path", config.Path)

	return &Store{db: db, insert: insert, logger: logger}, nil
}

// Append records one load attempt and fills in the entry's ID. A zero
// Timestamp is replaced with the current time.
func (s *Store) Append(ctx context.Context, entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("history entry cannot be nil")
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	res, err := s.insert.ExecContext(ctx,
		entry.Timestamp.UnixMicro(),
		entry.PolicyPath,
		entry.SourceHash,
		entry.Query,
		int64(entry.Version),
		entry.Outcome,
		entry.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to append history entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read history entry id: %w", err)
	}
	entry.ID = id
	return nil
}

// Recent returns the n most recent entries, newest first. A non-positive
// n returns all entries.
func (s *Store) Recent(ctx context.Context, n int) ([]*Entry, error) {
	q := `SELECT id, timestamp, policy_path, source_hash, query, version, outcome, error
		FROM policy_loads ORDER BY id DESC`
	var args []any
	if n > 0 {
		q += " LIMIT ?"
		args = append(args, n)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var out []*Entry
	for rows.Next() {
		var e Entry
		var tsMicro, version int64
		if err := rows.Scan(&e.ID, &tsMicro, &e.PolicyPath, &e.SourceHash,
			&e.Query, &version, &e.Outcome, &e.Error); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		e.Timestamp = time.UnixMicro(tsMicro).UTC()
		e.Version = uint64(version)
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	return out, nil
}

// Count returns the total number of recorded load attempts.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM policy_loads").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count history entries: %w", err)
	}
	return count, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	if s.insert != nil {
		s.insert.Close()
	}
	return s.db.Close()
}

// HashSource returns the hex SHA-256 of a policy source, the form stored
// in SourceHash.
func HashSource(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}
