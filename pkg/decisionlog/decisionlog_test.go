package decisionlog

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func testRecord(id string, ts time.Time, outcome string) *Record {
	return &Record{
		ID:            id,
		Timestamp:     ts,
		PolicyPath:    "example.rego",
		PolicyVersion: 1,
		Query:         "data.example.allow",
		InputHash:     "deadbeef",
		Result:        "true",
		Outcome:       outcome,
		Duration:      25 * time.Microsecond,
	}
}

// storeFactories builds each backend fresh for the shared conformance tests.
func storeFactories(t *testing.T) map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store {
			return NewMemoryStore(0)
		},
		"sqlite": func(t *testing.T) Store {
			cfg := DefaultSQLiteConfig()
			cfg.Path = filepath.Join(t.TempDir(), "decisions.db")
			s, err := NewSQLiteStore(cfg)
			if err != nil {
				t.Fatalf("NewSQLiteStore() error = %v, want nil", err)
			}
			t.Cleanup(func() { s.Close() })
			return s
		},
	}
}

func TestStore_StoreAndQuery(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := factory(t)
			ctx := context.Background()
			base := time.Now().UTC().Truncate(time.Second)

			for i := 0; i < 5; i++ {
				outcome := OutcomeSuccess
				if i == 4 {
					outcome = OutcomeError
				}
				rec := testRecord(fmt.Sprintf("rec-%d", i), base.Add(time.Duration(i)*time.Minute), outcome)
				if err := s.Store(ctx, rec); err != nil {
					t.Fatalf("Store() error = %v, want nil", err)
				}
			}

			count, err := s.Count(ctx)
			if err != nil {
				t.Fatalf("Count() error = %v, want nil", err)
			}
			if count != 5 {
				t.Errorf("Count() = %d, want 5", count)
			}

			// Newest first.
			all, err := s.Query(ctx, QueryFilter{})
			if err != nil {
				t.Fatalf("Query() error = %v, want nil", err)
			}
			if len(all) != 5 {
				t.Fatalf("Query() returned %d records, want 5", len(all))
			}
			if all[0].ID != "rec-4" {
				t.Errorf("newest record = %q, want rec-4", all[0].ID)
			}

			// Limit.
			limited, err := s.Query(ctx, QueryFilter{Limit: 2})
			if err != nil {
				t.Fatalf("Query(limit) error = %v, want nil", err)
			}
			if len(limited) != 2 {
				t.Errorf("Query(limit=2) returned %d records, want 2", len(limited))
			}

			// Outcome filter.
			errored, err := s.Query(ctx, QueryFilter{Outcome: OutcomeError})
			if err != nil {
				t.Fatalf("Query(outcome) error = %v, want nil", err)
			}
			if len(errored) != 1 || errored[0].ID != "rec-4" {
				t.Errorf("Query(outcome=error) = %v, want [rec-4]", errored)
			}

			// Since filter.
			recent, err := s.Query(ctx, QueryFilter{Since: base.Add(3 * time.Minute)})
			if err != nil {
				t.Fatalf("Query(since) error = %v, want nil", err)
			}
			if len(recent) != 2 {
				t.Errorf("Query(since) returned %d records, want 2", len(recent))
			}
		})
	}
}

func TestStore_RoundTripFields(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := factory(t)
			ctx := context.Background()

			in := &Record{
				ID:            "field-check",
				Timestamp:     time.Now().UTC().Truncate(time.Second),
				PolicyPath:    "authz.rego",
				PolicyVersion: 42,
				Query:         "data.authz.allow",
				InputHash:     "abc123",
				Result:        `{"allowed":true}`,
				Outcome:       OutcomeSuccess,
				Error:         "",
				Duration:      1500 * time.Microsecond,
			}
			if err := s.Store(ctx, in); err != nil {
				t.Fatalf("Store() error = %v, want nil", err)
			}

			out, err := s.Query(ctx, QueryFilter{Limit: 1})
			if err != nil {
				t.Fatalf("Query() error = %v, want nil", err)
			}
			if len(out) != 1 {
				t.Fatalf("Query() returned %d records, want 1", len(out))
			}

			got := out[0]
			if got.PolicyVersion != 42 {
				t.Errorf("PolicyVersion = %d, want 42", got.PolicyVersion)
			}
			if got.Duration != 1500*time.Microsecond {
				t.Errorf("Duration = %v, want 1.5ms", got.Duration)
			}
			if got.Result != in.Result {
				t.Errorf("Result = %q, want %q", got.Result, in.Result)
			}
		})
	}
}

func TestStore_NilRecord(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := factory(t)
			if err := s.Store(context.Background(), nil); err == nil {
				t.Error("Store(nil) error = nil, want error")
			}
		})
	}
}

func TestMemoryStore_Capacity(t *testing.T) {
	s := NewMemoryStore(3)
	ctx := context.Background()
	base := time.Now().UTC()

	for i := 0; i < 5; i++ {
		rec := testRecord(fmt.Sprintf("rec-%d", i), base.Add(time.Duration(i)*time.Second), OutcomeSuccess)
		if err := s.Store(ctx, rec); err != nil {
			t.Fatalf("Store() error = %v, want nil", err)
		}
	}

	count, _ := s.Count(ctx)
	if count != 3 {
		t.Errorf("Count() = %d, want 3 (capacity)", count)
	}

	all, _ := s.Query(ctx, QueryFilter{})
	if all[len(all)-1].ID != "rec-2" {
		t.Errorf("oldest surviving record = %q, want rec-2", all[len(all)-1].ID)
	}
}

func TestRecorder(t *testing.T) {
	s := NewMemoryStore(0)
	r := NewRecorder(s, nil)
	ctx := context.Background()

	err := r.Record(ctx, Decision{
		PolicyPath:    "example.rego",
		PolicyVersion: 7,
		Query:         "data.example.allow",
		Input:         `{"role":"admin"}`,
		Result:        "true",
		Outcome:       OutcomeSuccess,
		Duration:      30 * time.Microsecond,
	})
	if err != nil {
		t.Fatalf("Record() error = %v, want nil", err)
	}

	records, err := s.Query(ctx, QueryFilter{})
	if err != nil {
		t.Fatalf("Query() error = %v, want nil", err)
	}
	if len(records) != 1 {
		t.Fatalf("stored %d records, want 1", len(records))
	}

	got := records[0]
	if got.ID == "" {
		t.Error("record ID not assigned")
	}
	if got.Timestamp.IsZero() {
		t.Error("record timestamp not assigned")
	}
	if got.InputHash == "" || got.InputHash == `{"role":"admin"}` {
		t.Errorf("input not hashed: %q", got.InputHash)
	}
	if got.PolicyVersion != 7 {
		t.Errorf("PolicyVersion = %d, want 7", got.PolicyVersion)
	}

	// Same input, same hash; different input, different hash.
	_ = r.Record(ctx, Decision{Input: `{"role":"admin"}`, Outcome: OutcomeSuccess})
	_ = r.Record(ctx, Decision{Input: `{"role":"user"}`, Outcome: OutcomeSuccess})
	records, _ = s.Query(ctx, QueryFilter{})
	if records[1].InputHash != got.InputHash {
		t.Error("identical inputs produced different hashes")
	}
	if records[0].InputHash == got.InputHash {
		t.Error("different inputs produced identical hashes")
	}
}

func TestRecorder_Disabled(t *testing.T) {
	s := NewMemoryStore(0)
	r := NewRecorder(s, &RecorderConfig{Enabled: false, WriteTimeout: time.Second})

	if err := r.Record(context.Background(), Decision{Input: "{}"}); err != nil {
		t.Fatalf("Record() error = %v, want nil", err)
	}

	count, _ := s.Count(context.Background())
	if count != 0 {
		t.Errorf("disabled recorder stored %d records, want 0", count)
	}
}

func TestPruner_ByAge(t *testing.T) {
	s := NewMemoryStore(0)
	ctx := context.Background()
	now := time.Now().UTC()

	_ = s.Store(ctx, testRecord("old-1", now.AddDate(0, 0, -10), OutcomeSuccess))
	_ = s.Store(ctx, testRecord("old-2", now.AddDate(0, 0, -8), OutcomeSuccess))
	_ = s.Store(ctx, testRecord("new-1", now, OutcomeSuccess))

	p := NewPruner(s, &RetentionConfig{RetentionDays: 7})
	deleted, err := p.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune() error = %v, want nil", err)
	}
	if deleted != 2 {
		t.Errorf("Prune() deleted %d, want 2", deleted)
	}

	count, _ := s.Count(ctx)
	if count != 1 {
		t.Errorf("Count() after prune = %d, want 1", count)
	}
}

func TestPruner_ByCount(t *testing.T) {
	s := NewMemoryStore(0)
	ctx := context.Background()
	base := time.Now().UTC()

	for i := 0; i < 10; i++ {
		_ = s.Store(ctx, testRecord(fmt.Sprintf("rec-%d", i), base.Add(time.Duration(i)*time.Second), OutcomeSuccess))
	}

	p := NewPruner(s, &RetentionConfig{RetentionDays: 0, MaxRecords: 4})
	deleted, err := p.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune() error = %v, want nil", err)
	}
	if deleted != 6 {
		t.Errorf("Prune() deleted %d, want 6", deleted)
	}

	all, _ := s.Query(ctx, QueryFilter{})
	if len(all) != 4 {
		t.Fatalf("kept %d records, want 4", len(all))
	}
	if all[len(all)-1].ID != "rec-6" {
		t.Errorf("oldest kept record = %q, want rec-6", all[len(all)-1].ID)
	}
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	p := NewPruner(NewMemoryStore(0), &RetentionConfig{PruneSchedule: "not a cron"})
	s := NewScheduler(p)

	if err := s.Start(context.Background()); err == nil {
		t.Error("Start() error = nil for invalid schedule, want error")
	}
}

func TestScheduler_EmptyScheduleIsNoop(t *testing.T) {
	p := NewPruner(NewMemoryStore(0), &RetentionConfig{PruneSchedule: ""})
	s := NewScheduler(p)

	if err := s.Start(context.Background()); err != nil {
		t.Errorf("Start() error = %v, want nil", err)
	}
	s.Stop()
}
