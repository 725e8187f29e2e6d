package evaluator

import (
	"context"
	"sync"

	"mercator-hq/themis/pkg/policy/store"
	"mercator-hq/themis/pkg/policy/value"
)

// Pool is a goroutine-safe evaluation front end. It keeps a free list of
// Workers; each call checks one out for its duration, so no worker is ever
// used by two goroutines at once while cached evaluators still get reused
// across calls.
//
// Under steady load the pool converges on roughly one worker per concurrent
// caller. Workers evicted by the runtime are simply dropped; replacements
// compile on their first call.
type Pool struct {
	store *store.Store
	opts  []Option
	pool  sync.Pool
}

// NewPool creates a Pool over the given store. The options are applied to
// every worker the pool creates.
func NewPool(st *store.Store, opts ...Option) *Pool {
	p := &Pool{
		store: st,
		opts:  opts,
	}
	p.pool.New = func() any {
		return NewWorker(st, opts...)
	}
	return p
}

// Evaluate checks out a worker, evaluates input, and returns the worker to
// the pool.
func (p *Pool) Evaluate(ctx context.Context, input value.Value) (value.Value, error) {
	w := p.pool.Get().(*Worker)
	defer p.pool.Put(w)
	return w.Evaluate(ctx, input)
}

// EvaluateJSON is Evaluate with JSON text in and out.
func (p *Pool) EvaluateJSON(ctx context.Context, inputJSON string) (string, error) {
	w := p.pool.Get().(*Worker)
	defer p.pool.Put(w)
	return w.EvaluateJSON(ctx, inputJSON)
}

// EvaluateParsed is Evaluate with JSON text in and a native Go value out.
func (p *Pool) EvaluateParsed(ctx context.Context, inputJSON string) (any, error) {
	w := p.pool.Get().(*Worker)
	defer p.pool.Put(w)
	return w.EvaluateParsed(ctx, inputJSON)
}

// Worker creates a standalone worker for callers that manage their own
// per-goroutine state, such as a fixed worker-per-thread host runtime.
func (p *Pool) Worker() *Worker {
	return NewWorker(p.store, p.opts...)
}
