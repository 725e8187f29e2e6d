package evaluator

import (
	"context"
	"testing"

	"mercator-hq/themis/pkg/policy/store"
	"mercator-hq/themis/pkg/policy/value"
)

func benchStore(b *testing.B) *store.Store {
	b.Helper()

	st := store.New(nil)
	err := st.Load(context.Background(), store.Config{
		Path:   "example.rego",
		Source: rolePolicy,
		Query:  "data.example.allow",
	})
	if err != nil {
		b.Fatalf("Load() error = %v", err)
	}
	return st
}

// BenchmarkWorker_CachedEvaluate measures the fast path: version unchanged,
// evaluator reused on every call.
func BenchmarkWorker_CachedEvaluate(b *testing.B) {
	st := benchStore(b)
	w := NewWorker(st)
	ctx := context.Background()

	input, err := value.ParseString(`{"role": "admin"}`)
	if err != nil {
		b.Fatalf("ParseString() error = %v", err)
	}

	// Warm the cache so the loop measures only cached evaluations.
	if _, err := w.Evaluate(ctx, input); err != nil {
		b.Fatalf("Evaluate() error = %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := w.Evaluate(ctx, input); err != nil {
			b.Fatalf("Evaluate() error = %v", err)
		}
	}
}

// BenchmarkWorker_EvaluateJSON includes input parsing and result
// serialization, the full host-facing path.
func BenchmarkWorker_EvaluateJSON(b *testing.B) {
	st := benchStore(b)
	w := NewWorker(st)
	ctx := context.Background()

	if _, err := w.EvaluateJSON(ctx, `{"role": "admin"}`); err != nil {
		b.Fatalf("EvaluateJSON() error = %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := w.EvaluateJSON(ctx, `{"role": "admin"}`); err != nil {
			b.Fatalf("EvaluateJSON() error = %v", err)
		}
	}
}

// BenchmarkWorker_Rebuild measures the slow path: every iteration simulates
// a version change by clearing the slot.
func BenchmarkWorker_Rebuild(b *testing.B) {
	st := benchStore(b)
	ctx := context.Background()

	input, err := value.ParseString(`{"role": "admin"}`)
	if err != nil {
		b.Fatalf("ParseString() error = %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w := NewWorker(st)
		if _, err := w.Evaluate(ctx, input); err != nil {
			b.Fatalf("Evaluate() error = %v", err)
		}
	}
}

// BenchmarkPool_Parallel measures the shared front end under contention.
func BenchmarkPool_Parallel(b *testing.B) {
	st := benchStore(b)
	p := NewPool(st)
	ctx := context.Background()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := p.EvaluateJSON(ctx, `{"role": "admin"}`); err != nil {
				b.Fatalf("EvaluateJSON() error = %v", err)
			}
		}
	})
}
