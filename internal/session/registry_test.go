package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type memSnapshots struct {
	mu      sync.Mutex
	records map[string]*Record
	loadErr error
	saves   int
}

func (m *memSnapshots) LoadSession(_ context.Context, id string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	rec, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return rec.Clone(), nil
}

func (m *memSnapshots) SaveSession(_ context.Context, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.records == nil {
		m.records = make(map[string]*Record)
	}
	m.records[rec.SessionID] = rec.Clone()
	m.saves++
	return nil
}

func TestRegistry_CreatesOnFirstUse(t *testing.T) {
	reg := NewRegistry(nil, discardLogger())

	err := reg.With(context.Background(), "abc", func(rec *Record) error {
		if rec.SessionID != "abc" || rec.Stage != StageHook {
			t.Errorf("unexpected new record: %+v", rec)
		}
		rec.TurnCount++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, ok := reg.Get("abc")
	if !ok {
		t.Fatal("expected record to be held")
	}
	if got.TurnCount != 1 {
		t.Errorf("expected turn 1, got %d", got.TurnCount)
	}
	if got.LastUpdated.IsZero() {
		t.Error("expected LastUpdated to be stamped")
	}
}

func TestRegistry_GetReturnsCopy(t *testing.T) {
	reg := NewRegistry(nil, discardLogger())
	_ = reg.With(context.Background(), "abc", func(rec *Record) error { return nil })

	got, _ := reg.Get("abc")
	got.TurnCount = 99

	again, _ := reg.Get("abc")
	if again.TurnCount != 0 {
		t.Errorf("mutating a Get result leaked into the registry: %d", again.TurnCount)
	}
	if _, ok := reg.Get("missing"); ok {
		t.Error("expected missing session to be absent")
	}
}

func TestRegistry_ErrorSkipsStamp(t *testing.T) {
	snaps := &memSnapshots{}
	reg := NewRegistry(snaps, discardLogger())
	boom := errors.New("boom")

	err := reg.With(context.Background(), "abc", func(rec *Record) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error returned, got %v", err)
	}
	if snaps.saves != 0 {
		t.Errorf("expected no snapshot after a failed step, got %d", snaps.saves)
	}
}

func TestRegistry_SerializesSameSession(t *testing.T) {
	reg := NewRegistry(nil, discardLogger())
	ctx := context.Background()

	const workers = 64
	var wg sync.WaitGroup
	var inside, maxInside int
	var mu sync.Mutex

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = reg.With(ctx, "shared", func(rec *Record) error {
				mu.Lock()
				inside++
				if inside > maxInside {
					maxInside = inside
				}
				mu.Unlock()

				turn := rec.TurnCount
				time.Sleep(100 * time.Microsecond)
				rec.TurnCount = turn + 1

				mu.Lock()
				inside--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	got, _ := reg.Get("shared")
	if got.TurnCount != workers {
		t.Errorf("expected %d turns, got %d", workers, got.TurnCount)
	}
	if maxInside != 1 {
		t.Errorf("expected one writer at a time, saw %d", maxInside)
	}
}

func TestRegistry_DifferentSessionsRunInParallel(t *testing.T) {
	reg := NewRegistry(nil, discardLogger())
	ctx := context.Background()

	entered := make(chan struct{})
	done := make(chan struct{})

	go func() {
		_ = reg.With(ctx, "a", func(rec *Record) error {
			close(entered)
			<-done
			return nil
		})
	}()
	<-entered

	finished := make(chan struct{})
	go func() {
		_ = reg.With(ctx, "b", func(rec *Record) error { return nil })
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("session b blocked behind session a")
	}
	close(done)
}

func TestRegistry_SweepEvictsIdleOnly(t *testing.T) {
	reg := NewRegistry(nil, discardLogger())
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return base }

	_ = reg.With(ctx, "old", func(rec *Record) error { return nil })

	held := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = reg.With(ctx, "busy", func(rec *Record) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held

	n := reg.Sweep(base.Add(2*time.Hour), time.Hour)
	if n != 1 {
		t.Errorf("expected 1 eviction, got %d", n)
	}
	if _, ok := reg.Get("old"); ok {
		t.Error("expected idle session evicted")
	}
	close(release)

	if reg.Len() != 1 {
		t.Errorf("expected in-use session kept, have %d entries", reg.Len())
	}
}

func TestRegistry_RestoresFromSnapshot(t *testing.T) {
	snaps := &memSnapshots{}
	ctx := context.Background()

	first := NewRegistry(snaps, discardLogger())
	_ = first.With(ctx, "abc", func(rec *Record) error {
		rec.TurnCount = 5
		rec.Stage = StageVerify
		return nil
	})

	second := NewRegistry(snaps, discardLogger())
	_ = second.With(ctx, "abc", func(rec *Record) error {
		if rec.TurnCount != 5 || rec.Stage != StageVerify {
			t.Errorf("expected restored record, got turn %d stage %s", rec.TurnCount, rec.Stage)
		}
		return nil
	})
}

func TestRegistry_LoadFailureStartsFresh(t *testing.T) {
	snaps := &memSnapshots{loadErr: errors.New("db down")}
	reg := NewRegistry(snaps, discardLogger())

	_ = reg.With(context.Background(), "abc", func(rec *Record) error {
		if !rec.IsFresh() {
			t.Errorf("expected fresh record on load failure, got %+v", rec)
		}
		return nil
	})
}

func TestRegistry_RunStopsOnCancel(t *testing.T) {
	reg := NewRegistry(nil, discardLogger())
	ctx, cancel := context.WithCancel(context.Background())

	stopped := make(chan struct{})
	go func() {
		reg.Run(ctx, time.Millisecond, time.Hour)
		close(stopped)
	}()
	cancel()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
