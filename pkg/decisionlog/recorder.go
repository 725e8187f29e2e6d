package decisionlog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// RecorderConfig contains configuration for the decision recorder.
type RecorderConfig struct {
	// Enabled enables decision recording. A disabled recorder drops
	// everything without touching storage.
	Enabled bool

	// WriteTimeout bounds each storage write. Default: 5 seconds.
	WriteTimeout time.Duration
}

// DefaultRecorderConfig returns the default recorder configuration.
func DefaultRecorderConfig() *RecorderConfig {
	return &RecorderConfig{
		Enabled:      true,
		WriteTimeout: 5 * time.Second,
	}
}

// Decision describes one evaluation for recording. The raw Input is hashed
// before persistence and never stored.
type Decision struct {
	PolicyPath    string
	PolicyVersion uint64
	Query         string
	Input         string
	Result        string
	Outcome       string
	Error         string
	Duration      time.Duration
}

// Recorder turns evaluation decisions into stored records: it assigns
// record IDs, hashes inputs, and timestamps entries.
type Recorder struct {
	storage Store
	config  *RecorderConfig
	logger  *slog.Logger
}

// NewRecorder creates a decision recorder over the given storage backend.
func NewRecorder(storage Store, config *RecorderConfig) *Recorder {
	if config == nil {
		config = DefaultRecorderConfig()
	}
	return &Recorder{
		storage: storage,
		config:  config,
		logger:  slog.Default().With("component", "decisionlog.recorder"),
	}
}

// Record persists one decision. Recording failures are reported to the
// caller but must not fail the evaluation that produced the decision;
// callers typically log and continue.
func (r *Recorder) Record(ctx context.Context, d Decision) error {
	if !r.config.Enabled {
		return nil
	}

	record := &Record{
		ID:            uuid.New().String(),
		Timestamp:     time.Now().UTC(),
		PolicyPath:    d.PolicyPath,
		PolicyVersion: d.PolicyVersion,
		Query:         d.Query,
		InputHash:     hashInput(d.Input),
		Result:        d.Result,
		Outcome:       d.Outcome,
		Error:         d.Error,
		Duration:      d.Duration,
	}

	writeCtx, cancel := context.WithTimeout(ctx, r.config.WriteTimeout)
	defer cancel()

	if err := r.storage.Store(writeCtx, record); err != nil {
		return err
	}

	r.logger.Debug("decision recorded",
		"record_id", record.ID,
		"policy", record.PolicyPath,
		"version", record.PolicyVersion,
		"outcome", record.Outcome,
	)

	return nil
}

// hashInput returns the hex SHA-256 of the input document.
func hashInput(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}
