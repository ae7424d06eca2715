package processor

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/lure/internal/classifier"
	"github.com/MikeSquared-Agency/lure/internal/dialogue"
	"github.com/MikeSquared-Agency/lure/internal/hermes"
	"github.com/MikeSquared-Agency/lure/internal/intel"
	"github.com/MikeSquared-Agency/lure/internal/report"
	"github.com/MikeSquared-Agency/lure/internal/session"
)

// ErrInvalidTurn is returned for a turn without a session id or text.
var ErrInvalidTurn = errors.New("invalid turn: session id and text are required")

// Turn is one accepted inbound message.
type Turn struct {
	SessionID  string
	Text       string
	Transcript []string // prior inbound messages, oldest first
	Metadata   map[string]any
}

// Result is what the caller sends back to the counterpart.
type Result struct {
	Reply string        `json:"reply"`
	Stage session.Stage `json:"stage"`
}

type classifyFunc func(text string, history []string, metadata map[string]any) classifier.Verdict

// Processor runs the per-turn pipeline: reconstruct, count, extract, merge,
// classify, decide, report.
type Processor struct {
	registry  *session.Registry
	extractor *intel.Extractor
	engine    *dialogue.Engine
	reporter  *report.Reporter
	events    hermes.Publisher
	logger    *slog.Logger

	classify classifyFunc
	now      func() time.Time
}

// New wires a Processor. events may be nil.
func New(reg *session.Registry, ext *intel.Extractor, eng *dialogue.Engine, rep *report.Reporter, events hermes.Publisher, logger *slog.Logger) *Processor {
	return &Processor{
		registry:  reg,
		extractor: ext,
		engine:    eng,
		reporter:  rep,
		events:    events,
		logger:    logger,
		classify:  classifier.Detect,
		now:       time.Now,
	}
}

// HandleTurn processes one inbound message. The whole read-decide-write
// cycle runs under the session's lock, so concurrent turns for one session
// are applied one after another.
func (p *Processor) HandleTurn(ctx context.Context, t Turn) (Result, error) {
	text := strings.TrimSpace(t.Text)
	if t.SessionID == "" || text == "" {
		return Result{}, ErrInvalidTurn
	}

	var (
		res   Result
		added intel.Intel
		turn  int
	)
	err := p.registry.With(ctx, t.SessionID, func(rec *session.Record) error {
		if rec.IsFresh() && len(t.Transcript) > 0 {
			rec.Rebuild(t.Transcript, func(r *session.Record, msg string) {
				p.step(r, msg, nil, t.Metadata)
			})
			p.logger.Info("session rebuilt from transcript",
				"session_id", rec.SessionID,
				"messages", len(t.Transcript),
				"stage", rec.Stage,
			)
		}

		reply, fresh := p.step(rec, text, t.Transcript, t.Metadata)
		outcome := p.reporter.MaybeReport(ctx, rec)

		p.logger.Debug("turn processed",
			"session_id", rec.SessionID,
			"turn", rec.TurnCount,
			"stage", rec.Stage,
			"intent", reply.Intent,
			"report", string(outcome),
		)

		res = Result{Reply: reply.Text, Stage: rec.Stage}
		added = fresh
		turn = rec.TurnCount
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	p.publishIntel(t.SessionID, turn, res.Stage, added)
	return res, nil
}

// step is the per-message transition shared by live turns and
// reconstruction. Reporting is not part of it.
func (p *Processor) step(rec *session.Record, text string, history []string, metadata map[string]any) (dialogue.Reply, intel.Intel) {
	rec.TurnCount++
	fresh := rec.Merge(p.extractor.Extract(text))

	if !rec.ScamDetected {
		v := p.classify(text, history, metadata)
		if v.ScamDetected {
			rec.MarkScam(v.ScamType)
			p.logger.Info("scam detected",
				"session_id", rec.SessionID,
				"scam_type", v.ScamType,
				"probability", v.Probability,
			)
		}
		rec.Merge(intel.Intel{SuspiciousTerms: v.Keywords})
	}

	if !rec.ScamDetected {
		return dialogue.Reply{Text: dialogue.NotScamLine, Stage: rec.Stage}, fresh
	}
	return p.engine.Next(rec, fresh), fresh
}

func (p *Processor) publishIntel(sessionID string, turn int, stage session.Stage, added intel.Intel) {
	if p.events == nil || added.CategoryCount() == 0 {
		return
	}
	evt := hermes.IntelEvent{
		SessionID: sessionID,
		Turn:      turn,
		Stage:     string(stage),
		Added:     added,
		Timestamp: p.now().UTC(),
	}
	if err := p.events.Publish(hermes.SubjectIntelExtracted, evt); err != nil {
		p.logger.Error("failed to publish intel event", "session_id", sessionID, "error", err)
	}
}

// Session returns a copy of the in-memory record for sessionID.
func (p *Processor) Session(sessionID string) (*session.Record, bool) {
	return p.registry.Get(sessionID)
}

// Extract runs the extractor alone.
func (p *Processor) Extract(text string) intel.Intel {
	return p.extractor.Extract(text)
}

// ActiveSessions is the number of sessions held in memory.
func (p *Processor) ActiveSessions() int {
	return p.registry.Len()
}
