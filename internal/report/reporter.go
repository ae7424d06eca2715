package report

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MikeSquared-Agency/lure/internal/session"
)

// Outcome is what one MaybeReport call did.
type Outcome string

const (
	OutcomeSkipped   Outcome = "skipped"
	OutcomeDelivered Outcome = "delivered"
	OutcomeFailed    Outcome = "failed"
	OutcomeAbandoned Outcome = "abandoned"
)

// Sender delivers a payload to the collector.
type Sender interface {
	Send(ctx context.Context, p Payload) error
}

// Notifier is told about terminal engagement outcomes.
type Notifier interface {
	EngagementReported(ctx context.Context, p Payload)
	EngagementAbandoned(ctx context.Context, p Payload, failures int)
}

// Notifiers fans out to every member.
type Notifiers []Notifier

func (ns Notifiers) EngagementReported(ctx context.Context, p Payload) {
	for _, n := range ns {
		n.EngagementReported(ctx, p)
	}
}

func (ns Notifiers) EngagementAbandoned(ctx context.Context, p Payload, failures int) {
	for _, n := range ns {
		n.EngagementAbandoned(ctx, p, failures)
	}
}

// Reporter delivers each engagement summary at most once.
type Reporter struct {
	sender   Sender
	notifier Notifier
	logger   *slog.Logger
}

// NewReporter returns a Reporter. notifier may be nil.
func NewReporter(sender Sender, notifier Notifier, logger *slog.Logger) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reporter{sender: sender, notifier: notifier, logger: logger}
}

// MaybeReport attempts delivery when rec is a detected scam whose completion
// predicate holds and which has neither been reported nor abandoned. It is
// meant to be called once per turn and never fails: delivery errors are
// counted on rec and retried on a later turn until MaxReportFailures.
func (r *Reporter) MaybeReport(ctx context.Context, rec *session.Record) Outcome {
	if rec.Completed() {
		return OutcomeSkipped
	}
	if !rec.ScamDetected || !rec.ShouldComplete() {
		return OutcomeSkipped
	}

	rec.Stage = session.StageExit
	payload := BuildPayload(rec)

	if err := r.send(ctx, payload); err != nil {
		rec.ReportFailures++
		r.logger.Warn("report delivery failed",
			"session_id", rec.SessionID,
			"attempt", rec.ReportFailures,
			"error", err,
		)
		if rec.ReportFailures >= session.MaxReportFailures {
			r.logger.Warn("report abandoned after retries",
				"session_id", rec.SessionID,
				"failures", rec.ReportFailures,
			)
			if r.notifier != nil {
				r.notifier.EngagementAbandoned(ctx, payload, rec.ReportFailures)
			}
			return OutcomeAbandoned
		}
		return OutcomeFailed
	}

	rec.ReportSent = true
	r.logger.Info("report delivered",
		"session_id", rec.SessionID,
		"turns", rec.TurnCount,
		"categories", rec.CategoryCount(),
	)
	if r.notifier != nil {
		r.notifier.EngagementReported(ctx, payload)
	}
	return OutcomeDelivered
}

func (r *Reporter) send(ctx context.Context, p Payload) (err error) {
	if r.sender == nil {
		return ErrNoCallbackURL
	}
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("sender panic: %v", v)
		}
	}()
	return r.sender.Send(ctx, p)
}
