package evaluator

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"mercator-hq/themis/pkg/policy/engine"
	"mercator-hq/themis/pkg/policy/store"
	"mercator-hq/themis/pkg/policy/value"
	"mercator-hq/themis/pkg/telemetry/metrics"
)

// Worker evaluates policies on behalf of a single goroutine. It owns one
// cache slot holding the compiled evaluator for the store version it last
// observed.
//
// Worker is NOT safe for concurrent use; see the package documentation.
type Worker struct {
	store *store.Store

	// cache slot: empty when compiled is nil
	version  uint64
	compiled *engine.CompiledPolicy

	// compiles counts rebuilds over the worker's lifetime
	compiles uint64

	id      string
	logger  *slog.Logger
	metrics *metrics.PolicyMetrics
}

// Option configures a Worker or a Pool.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	metrics *metrics.PolicyMetrics
}

// WithLogger sets the structured logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics sets the metrics sink. Defaults to none.
func WithMetrics(pm *metrics.PolicyMetrics) Option {
	return func(o *options) { o.metrics = pm }
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// NewWorker creates a Worker bound to the given store. The cache slot starts
// empty; the first evaluation compiles.
func NewWorker(st *store.Store, opts ...Option) *Worker {
	o := applyOptions(opts)
	id := uuid.New().String()
	return &Worker{
		store:   st,
		id:      id,
		logger:  o.logger.With("component", "policy.worker", "worker_id", id),
		metrics: o.metrics,
	}
}

// ID returns the worker's correlation identifier.
func (w *Worker) ID() string {
	return w.id
}

// Compiles returns how many times this worker has rebuilt its evaluator.
func (w *Worker) Compiles() uint64 {
	return w.compiles
}

// CachedVersion returns the version tag of the cached evaluator, or 0 when
// the slot is empty.
func (w *Worker) CachedVersion() uint64 {
	if w.compiled == nil {
		return 0
	}
	return w.version
}

// Evaluate runs the configured query against the current policy with the
// given input and returns the result.
//
// The store's (config, version) pair is read once; if the worker's cache tag
// differs from the version, the evaluator is rebuilt from that same config
// before evaluating. The store is never mutated.
func (w *Worker) Evaluate(ctx context.Context, input value.Value) (value.Value, error) {
	start := time.Now()

	result, err := w.evaluate(ctx, input)
	if err != nil {
		w.metrics.RecordEvaluation(metrics.OutcomeError, time.Since(start))
		return value.Value{}, err
	}

	w.metrics.RecordEvaluation(metrics.OutcomeSuccess, time.Since(start))
	return result, nil
}

func (w *Worker) evaluate(ctx context.Context, input value.Value) (value.Value, error) {
	cfg, version, ok := w.store.Current()
	if !ok {
		return value.Value{}, ErrNotLoaded
	}

	// Rebuild only when the version tag disagrees (including "never
	// built"). On failure the slot keeps its previous contents.
	if w.compiled == nil || w.version != version {
		compiled, err := engine.Compile(ctx, cfg.Path, cfg.Source, cfg.Data, cfg.Query)
		if err != nil {
			return value.Value{}, &CompileFailedError{
				Path:    cfg.Path,
				Version: version,
				Cause:   err,
			}
		}

		w.compiled = compiled
		w.version = version
		w.compiles++
		w.metrics.RecordCompile()

		w.logger.Debug("evaluator rebuilt",
			"policy", cfg.Path,
			"version", version,
			"compiles", w.compiles,
		)
	}

	result, err := w.compiled.Evaluate(ctx, cfg.Query, input)
	if err != nil {
		return value.Value{}, &EvaluationFailedError{
			Path:  cfg.Path,
			Query: cfg.Query,
			Cause: err,
		}
	}

	return result, nil
}

// EvaluateJSON parses inputJSON, evaluates it, and returns the result as
// compact JSON text.
func (w *Worker) EvaluateJSON(ctx context.Context, inputJSON string) (string, error) {
	input, err := value.ParseString(inputJSON)
	if err != nil {
		return "", &InvalidInputError{Cause: err}
	}

	result, err := w.Evaluate(ctx, input)
	if err != nil {
		return "", err
	}

	return result.String(), nil
}

// EvaluateParsed parses inputJSON, evaluates it, and returns the result
// converted to native Go types (nil, bool, int64, float64, string, []any,
// map[string]any).
func (w *Worker) EvaluateParsed(ctx context.Context, inputJSON string) (any, error) {
	input, err := value.ParseString(inputJSON)
	if err != nil {
		return nil, &InvalidInputError{Cause: err}
	}

	result, err := w.Evaluate(ctx, input)
	if err != nil {
		return nil, err
	}

	return result.Interface(), nil
}
