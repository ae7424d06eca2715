//go:build integration

package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/lure/internal/intel"
	"github.com/MikeSquared-Agency/lure/internal/session"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	if err := s.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}

	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func TestIntegration_SaveAndLoadSession(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	id := "integration-test-" + uuid.New().String()[:8]

	rec := session.New(id)
	rec.MarkScam("bank_kyc")
	rec.TurnCount = 4
	rec.Stage = session.StageVerify
	rec.Merge(intel.Intel{
		PaymentHandles: []string{"scam@upi"},
		PhoneNumbers:   []string{"9876543210"},
	})
	rec.MarkLineUsed("Which bank is this?")

	if err := s.SaveSession(ctx, rec); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	got, err := s.LoadSession(ctx, id)
	if err != nil {
		t.Fatalf("LoadSession failed: %v", err)
	}
	if got.TurnCount != 4 || got.Stage != session.StageVerify || got.ScamType != "bank_kyc" {
		t.Errorf("unexpected record: %+v", got)
	}
	if len(got.Intel.PaymentHandles) != 1 || got.Intel.PaymentHandles[0] != "scam@upi" {
		t.Errorf("intel not restored: %+v", got.Intel)
	}
	if !got.LineUsed("Which bank is this?") {
		t.Error("used lines not restored")
	}

	// Upsert overwrites.
	rec.ReportSent = true
	rec.TurnCount = 5
	if err := s.SaveSession(ctx, rec); err != nil {
		t.Fatalf("second SaveSession failed: %v", err)
	}
	got, err = s.LoadSession(ctx, id)
	if err != nil {
		t.Fatalf("LoadSession failed: %v", err)
	}
	if !got.ReportSent || got.TurnCount != 5 {
		t.Errorf("upsert not applied: %+v", got)
	}

	total, reported, err := s.CountSessions(ctx)
	if err != nil {
		t.Fatalf("CountSessions failed: %v", err)
	}
	if total < 1 || reported < 1 {
		t.Errorf("counts = %d/%d", total, reported)
	}
}

func TestIntegration_LoadMissingSession(t *testing.T) {
	s := setupTestStore(t)
	_, err := s.LoadSession(context.Background(), "missing-"+uuid.New().String())
	if !errors.Is(err, session.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestIntegration_PurgeSessions(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	id := "integration-purge-" + uuid.New().String()[:8]

	if err := s.SaveSession(ctx, session.New(id)); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}
	n, err := s.PurgeSessions(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("PurgeSessions failed: %v", err)
	}
	if n < 1 {
		t.Errorf("purged %d rows", n)
	}
	if _, err := s.LoadSession(ctx, id); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("session still present: %v", err)
	}
}
