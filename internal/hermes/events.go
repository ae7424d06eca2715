package hermes

import (
	"context"
	"log/slog"
	"time"

	"github.com/MikeSquared-Agency/lure/internal/intel"
	"github.com/MikeSquared-Agency/lure/internal/report"
)

// Publisher is the subset of Client the event emitters need.
type Publisher interface {
	Publish(subject string, data any) error
}

// EngagementEvent announces the end of an engagement, delivered or not.
type EngagementEvent struct {
	SessionID    string              `json:"session_id"`
	TurnCount    int                 `json:"turn_count"`
	Notes        string              `json:"agent_notes"`
	Intelligence report.Intelligence `json:"intelligence"`
	Failures     int                 `json:"failures,omitempty"`
	Timestamp    time.Time           `json:"timestamp"`
}

// IntelEvent carries the intelligence one turn added to a session.
type IntelEvent struct {
	SessionID string      `json:"session_id"`
	Turn      int         `json:"turn"`
	Stage     string      `json:"stage"`
	Added     intel.Intel `json:"added"`
	Timestamp time.Time   `json:"timestamp"`
}

// Notifier publishes engagement outcomes. It satisfies report.Notifier.
type Notifier struct {
	pub    Publisher
	logger *slog.Logger
	now    func() time.Time
}

func NewNotifier(pub Publisher, logger *slog.Logger) *Notifier {
	return &Notifier{pub: pub, logger: logger, now: time.Now}
}

func (n *Notifier) EngagementReported(_ context.Context, p report.Payload) {
	n.publish(SubjectEngagementReported, n.event(p, 0))
}

func (n *Notifier) EngagementAbandoned(_ context.Context, p report.Payload, failures int) {
	n.publish(SubjectEngagementAbandoned, n.event(p, failures))
}

func (n *Notifier) event(p report.Payload, failures int) EngagementEvent {
	return EngagementEvent{
		SessionID:    p.SessionID,
		TurnCount:    p.TotalMessagesExchanged,
		Notes:        p.AgentNotes,
		Intelligence: p.ExtractedIntelligence,
		Failures:     failures,
		Timestamp:    n.now().UTC(),
	}
}

func (n *Notifier) publish(subject string, evt EngagementEvent) {
	if err := n.pub.Publish(subject, evt); err != nil {
		n.logger.Error("failed to publish engagement event", "subject", subject, "session_id", evt.SessionID, "error", err)
	}
}
