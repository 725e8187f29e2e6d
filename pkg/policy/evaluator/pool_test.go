package evaluator

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"mercator-hq/themis/pkg/policy/store"
)

func TestPool_Evaluate(t *testing.T) {
	st := loadedStore(t, rolePolicy)
	p := NewPool(st)

	got, err := p.EvaluateJSON(context.Background(), `{"role": "admin"}`)
	if err != nil {
		t.Fatalf("EvaluateJSON() error = %v, want nil", err)
	}
	if got != "true" {
		t.Errorf("EvaluateJSON() = %q, want %q", got, "true")
	}
}

func TestPool_WorkerIsolation(t *testing.T) {
	// Many goroutines submit distinct inputs at the same instant; every
	// result must correspond to that goroutine's own input. Shared or
	// cross-contaminated evaluator state would mix them up.
	st := store.New(nil)
	ctx := context.Background()

	src := `package example

echo := input.who
`
	err := st.Load(ctx, store.Config{Path: "echo.rego", Source: src, Query: "data.example.echo"})
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}

	p := NewPool(st)

	const goroutines = 16
	const iterations = 200

	var wg sync.WaitGroup
	errCh := make(chan error, goroutines)

	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			input := fmt.Sprintf(`{"who": "worker-%d"}`, g)
			want := fmt.Sprintf("%q", fmt.Sprintf("worker-%d", g))

			for i := 0; i < iterations; i++ {
				got, err := p.EvaluateJSON(ctx, input)
				if err != nil {
					errCh <- fmt.Errorf("goroutine %d iteration %d: %w", g, i, err)
					return
				}
				if got != want {
					errCh <- fmt.Errorf("goroutine %d iteration %d: got %s, want %s", g, i, got, want)
					return
				}
			}
		}(g)
	}

	wg.Wait()
	close(errCh)

	for err := range errCh {
		t.Error(err)
	}
}

func TestPool_ConcurrentEvaluationDuringReload(t *testing.T) {
	st := loadedStore(t, rolePolicy)
	ctx := context.Background()
	p := NewPool(st)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	errCh := make(chan error, 8)

	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				// Both policy generations answer this query; only
				// transport-level failures are errors here.
				if _, err := p.EvaluateJSON(ctx, `{"role": "admin"}`); err != nil {
					errCh <- err
					return
				}
			}
		}()
	}

	for i := 0; i < 10; i++ {
		src := rolePolicy
		if i%2 == 1 {
			src = flippedPolicy
		}
		err := st.Load(ctx, store.Config{Path: "example.rego", Source: src, Query: "data.example.allow"})
		if err != nil {
			t.Fatalf("Load() #%d error = %v, want nil", i, err)
		}
	}

	close(stop)
	wg.Wait()
	close(errCh)

	for err := range errCh {
		t.Errorf("evaluation during reload failed: %v", err)
	}
}

func TestPool_StandaloneWorker(t *testing.T) {
	st := loadedStore(t, rolePolicy)
	p := NewPool(st)

	w1 := p.Worker()
	w2 := p.Worker()

	if w1 == w2 {
		t.Fatal("Worker() returned the same instance twice")
	}
	if w1.ID() == w2.ID() {
		t.Error("two workers share an ID")
	}
}
