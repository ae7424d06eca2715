package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Snapshotter persists records beyond the process lifetime.
type Snapshotter interface {
	LoadSession(ctx context.Context, sessionID string) (*Record, error)
	SaveSession(ctx context.Context, rec *Record) error
}

// Registry maps session ids to records. Callers never touch the map; every
// read-modify-write on a record goes through With, which serializes work per
// session while leaving different sessions fully parallel.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry

	snap   Snapshotter
	logger *slog.Logger
	now    func() time.Time
}

type entry struct {
	mu   sync.Mutex
	rec  *Record
	refs int // guarded by Registry.mu
}

// NewRegistry returns an empty registry. snap may be nil.
func NewRegistry(snap Snapshotter, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		entries: make(map[string]*entry),
		snap:    snap,
		logger:  logger,
		now:     time.Now,
	}
}

// With runs fn with exclusive access to the record for sessionID, creating
// the record on first use. The lock is held for the whole of fn. When fn
// succeeds the record is stamped and, if a Snapshotter is configured, saved.
func (r *Registry) With(ctx context.Context, sessionID string, fn func(rec *Record) error) error {
	e := r.acquire(sessionID)
	defer r.release(e)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.rec == nil {
		e.rec = r.load(ctx, sessionID)
	}

	if err := fn(e.rec); err != nil {
		return err
	}

	e.rec.LastUpdated = r.now().UTC()
	if r.snap != nil {
		if err := r.snap.SaveSession(ctx, e.rec); err != nil {
			r.logger.Warn("failed to save session snapshot", "session_id", sessionID, "error", err)
		}
	}
	return nil
}

// Get returns a copy of the record for sessionID if it is held in memory.
func (r *Registry) Get(sessionID string) (*Record, bool) {
	r.mu.Lock()
	e, ok := r.entries[sessionID]
	if ok {
		e.refs++
	}
	r.mu.Unlock()
	if !ok {
		return nil, false
	}
	defer r.release(e)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.rec == nil {
		return nil, false
	}
	return e.rec.Clone(), true
}

// Len is the number of sessions held in memory.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep evicts records idle for longer than ttl and returns how many it
// removed. A session with a request in flight or waiting is never evicted.
func (r *Registry) Sweep(now time.Time, ttl time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, e := range r.entries {
		if e.refs > 0 {
			continue
		}
		if e.rec == nil || e.rec.Stale(now, ttl) {
			delete(r.entries, id)
			evicted++
		}
	}
	return evicted
}

// Run sweeps every interval until ctx is cancelled.
func (r *Registry) Run(ctx context.Context, interval, ttl time.Duration) {
	if interval <= 0 || ttl <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(r.now(), ttl); n > 0 {
				r.logger.Info("evicted idle sessions", "count", n, "remaining", r.Len())
			}
		}
	}
}

func (r *Registry) acquire(sessionID string) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[sessionID]
	if !ok {
		e = &entry{}
		r.entries[sessionID] = e
	}
	e.refs++
	return e
}

func (r *Registry) release(e *entry) {
	r.mu.Lock()
	e.refs--
	r.mu.Unlock()
}

func (r *Registry) load(ctx context.Context, sessionID string) *Record {
	if r.snap == nil {
		return New(sessionID)
	}
	rec, err := r.snap.LoadSession(ctx, sessionID)
	switch {
	case err == nil && rec != nil:
		r.logger.Info("session restored from snapshot", "session_id", sessionID, "turn", rec.TurnCount)
		return rec
	case err != nil && !errors.Is(err, ErrNotFound):
		r.logger.Warn("failed to load session snapshot", "session_id", sessionID, "error", err)
	}
	return New(sessionID)
}
