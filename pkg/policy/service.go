package policy

import (
	"context"
	"log/slog"
	"os"
	"time"

	"mercator-hq/themis/pkg/decisionlog"
	"mercator-hq/themis/pkg/policy/evaluator"
	"mercator-hq/themis/pkg/policy/history"
	"mercator-hq/themis/pkg/policy/store"
	"mercator-hq/themis/pkg/policy/value"
	"mercator-hq/themis/pkg/telemetry/metrics"
)

// Service is the top-level policy runtime: one shared store, one evaluator
// pool, and the optional recording concerns. Safe for concurrent use.
type Service struct {
	store    *store.Store
	pool     *evaluator.Pool
	logger   *slog.Logger
	metrics  *metrics.PolicyMetrics
	recorder *decisionlog.Recorder
	history  *history.Store
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the structured logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics enables Prometheus instrumentation of loads, compiles, and
// evaluations.
func WithMetrics(pm *metrics.PolicyMetrics) ServiceOption {
	return func(s *Service) { s.metrics = pm }
}

// WithDecisionLog enables decision recording. Every evaluation, successful
// or not, is appended to the recorder's store.
func WithDecisionLog(r *decisionlog.Recorder) ServiceOption {
	return func(s *Service) { s.recorder = r }
}

// WithHistory enables load auditing. Every load attempt, accepted or
// rejected, is appended to the history store.
func WithHistory(h *history.Store) ServiceOption {
	return func(s *Service) { s.history = h }
}

// NewService creates a Service with an empty store. Evaluations fail with
// evaluator.ErrNotLoaded until the first successful load.
func NewService(opts ...ServiceOption) *Service {
	s := &Service{}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	base := s.logger
	s.logger = base.With("component", "policy.service")

	s.store = store.New(base)

	workerOpts := []evaluator.Option{evaluator.WithLogger(base)}
	if s.metrics != nil {
		workerOpts = append(workerOpts, evaluator.WithMetrics(s.metrics))
	}
	s.pool = evaluator.NewPool(s.store, workerOpts...)

	return s
}

// LoadOption configures a single load.
type LoadOption func(*loadOptions)

type loadOptions struct {
	query    string
	data     string
	dataFile string
}

// WithQuery sets the query evaluated on every call against this policy.
// Defaults to "data", the whole document.
func WithQuery(query string) LoadOption {
	return func(o *loadOptions) { o.query = query }
}

// WithDataJSON supplies a static JSON data document compiled in alongside
// the policy.
func WithDataJSON(dataJSON string) LoadOption {
	return func(o *loadOptions) { o.data = dataJSON }
}

// WithDataFile supplies the static data document from a JSON file.
// Overrides WithDataJSON when both are given.
func WithDataFile(path string) LoadOption {
	return func(o *loadOptions) { o.dataFile = path }
}

// LoadPolicy reads a policy source file and publishes it. A read failure
// returns a *store.LoadError with reason LoadUnreadable; a compile failure
// returns one with reason LoadInvalidPolicy. Either way the previously
// active policy, if any, stays in effect.
func (s *Service) LoadPolicy(ctx context.Context, path string, opts ...LoadOption) error {
	source, err := os.ReadFile(path)
	if err != nil {
		lerr := &store.LoadError{
			Path:   path,
			Reason: store.LoadUnreadable,
			Cause:  err,
		}
		s.logger.Warn("policy unreadable", "path", path, "error", err)
		s.metrics.RecordLoad(metrics.OutcomeError, s.store.Version())
		s.recordLoad(ctx, path, "", "", lerr)
		return lerr
	}
	return s.LoadPolicySource(ctx, path, string(source), opts...)
}

// LoadPolicySource publishes a policy from source text already in hand.
// The path is an opaque identifier used in diagnostics.
func (s *Service) LoadPolicySource(ctx context.Context, path, source string, opts ...LoadOption) error {
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}

	if o.dataFile != "" {
		data, err := os.ReadFile(o.dataFile)
		if err != nil {
			lerr := &store.LoadError{
				Path:   path,
				Reason: store.LoadUnreadable,
				Cause:  err,
			}
			s.logger.Warn("policy data file unreadable", "path", o.dataFile, "error", err)
			s.metrics.RecordLoad(metrics.OutcomeError, s.store.Version())
			s.recordLoad(ctx, path, source, o.query, lerr)
			return lerr
		}
		o.data = string(data)
	}

	err := s.store.Load(ctx, store.Config{
		Path:   path,
		Source: source,
		Data:   o.data,
		Query:  o.query,
	})
	if err != nil {
		s.metrics.RecordLoad(metrics.OutcomeError, s.store.Version())
		s.recordLoad(ctx, path, source, o.query, err)
		return err
	}

	s.metrics.RecordLoad(metrics.OutcomeSuccess, s.store.Version())
	s.recordLoad(ctx, path, source, o.query, nil)
	return nil
}

// recordLoad appends a load attempt to the history store, if configured.
// History failures are logged and never fail the load.
func (s *Service) recordLoad(ctx context.Context, path, source, query string, loadErr error) {
	if s.history == nil {
		return
	}

	entry := &history.Entry{
		PolicyPath: path,
		SourceHash: history.HashSource(source),
		Query:      query,
	}
	if loadErr != nil {
		entry.Outcome = history.OutcomeRejected
		entry.Error = loadErr.Error()
	} else {
		entry.Outcome = history.OutcomeLoaded
		entry.Version = s.store.Version()
	}

	if err := s.history.Append(ctx, entry); err != nil {
		s.logger.Error("failed to record policy load", "path", path, "error", err)
	}
}

// Evaluate runs the active policy's query against inputJSON and returns
// the result as compact JSON text.
func (s *Service) Evaluate(ctx context.Context, inputJSON string) (string, error) {
	start := time.Now()
	result, err := s.pool.EvaluateJSON(ctx, inputJSON)
	s.recordDecision(ctx, inputJSON, result, time.Since(start), err)
	return result, err
}

// EvaluateParsed runs the active policy's query against inputJSON and
// returns the result converted to native Go types (nil, bool, int64,
// float64, string, []any, map[string]any).
func (s *Service) EvaluateParsed(ctx context.Context, inputJSON string) (any, error) {
	start := time.Now()
	result, err := s.pool.EvaluateParsed(ctx, inputJSON)

	var resultJSON string
	if err == nil {
		if v, verr := value.FromInterface(result); verr == nil {
			resultJSON = v.String()
		}
	}
	s.recordDecision(ctx, inputJSON, resultJSON, time.Since(start), err)

	return result, err
}

// EvaluateValue runs the active policy's query against an already-parsed
// input and returns the result as a value.Value.
func (s *Service) EvaluateValue(ctx context.Context, input value.Value) (value.Value, error) {
	start := time.Now()
	result, err := s.pool.Evaluate(ctx, input)

	var resultJSON string
	if err == nil {
		resultJSON = result.String()
	}
	s.recordDecision(ctx, input.String(), resultJSON, time.Since(start), err)

	return result, err
}

// recordDecision appends one evaluation to the decision log, if configured.
// Recording failures are logged and never fail the evaluation.
func (s *Service) recordDecision(ctx context.Context, input, result string, duration time.Duration, evalErr error) {
	if s.recorder == nil {
		return
	}

	cfg, version, ok := s.store.Current()
	d := decisionlog.Decision{
		PolicyVersion: version,
		Input:         input,
		Result:        result,
		Duration:      duration,
	}
	if ok {
		d.PolicyPath = cfg.Path
		d.Query = cfg.Query
	}
	if evalErr != nil {
		d.Outcome = decisionlog.OutcomeError
		d.Error = evalErr.Error()
	} else {
		d.Outcome = decisionlog.OutcomeSuccess
	}

	if err := s.recorder.Record(ctx, d); err != nil {
		s.logger.Error("failed to record decision", "error", err)
	}
}

// Store exposes the underlying policy store for callers that need direct
// access, such as a host runtime managing its own workers.
func (s *Service) Store() *store.Store {
	return s.store
}

// Worker creates a standalone evaluator bound to this service's store.
func (s *Service) Worker() *evaluator.Worker {
	return s.pool.Worker()
}

// Version returns the store version: 0 before the first successful load,
// incremented by one on every successful load after that.
func (s *Service) Version() uint64 {
	return s.store.Version()
}
