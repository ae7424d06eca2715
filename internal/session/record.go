package session

import (
	"errors"
	"hash/fnv"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/lure/internal/intel"
)

// MaxReportFailures is the number of failed deliveries after which an
// engagement is abandoned without a report.
const MaxReportFailures = 3

// personaVariants is the range of PersonaSeed.
const personaVariants = 3

// ErrNotFound is returned by a Snapshotter that holds no copy of a session.
var ErrNotFound = errors.New("session not found")

// Record is everything known about one engagement.
type Record struct {
	SessionID string `json:"sessionId"`

	ScamDetected bool   `json:"scamDetected"`
	ScamType     string `json:"scamType"`

	Stage     Stage `json:"stage"`
	TurnCount int   `json:"turnCount"`

	Intel intel.Intel `json:"extractedIntelligence"`

	PersonaSeed       int      `json:"personaSeed"`
	LastIntent        string   `json:"lastIntent"`
	RepeatIntentCount int      `json:"repeatIntentCount"`
	UsedLines         []string `json:"usedLines"`

	ReportSent     bool `json:"reportSent"`
	ReportFailures int  `json:"reportFailures"`

	LastUpdated time.Time `json:"lastUpdated"`
}

// New returns a fresh record at the HOOK stage.
func New(sessionID string) *Record {
	return &Record{
		SessionID:   sessionID,
		ScamType:    "unknown",
		Stage:       StageHook,
		PersonaSeed: PersonaSeed(sessionID),
	}
}

// PersonaSeed derives the reply-rotation offset for a session id. It uses
// FNV-1a so the same id picks the same lines in every process.
func PersonaSeed(sessionID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	return int(h.Sum32() % personaVariants)
}

// Merge folds one message's intelligence into the record and returns what
// was new. Account candidates matching any phone seen so far in the
// engagement are purged, including ones merged on earlier turns.
func (r *Record) Merge(in intel.Intel) intel.Intel {
	added := intel.Merge(&r.Intel, in)
	r.Intel.BankAccounts = intel.Disambiguate(r.Intel.BankAccounts, r.Intel.PhoneNumbers)
	added.BankAccounts = intel.Disambiguate(added.BankAccounts, r.Intel.PhoneNumbers)
	return added
}

// MarkScam records a positive classification. Later calls are ignored.
func (r *Record) MarkScam(scamType string) {
	if r.ScamDetected {
		return
	}
	r.ScamDetected = true
	if scamType != "" {
		r.ScamType = scamType
	}
}

// CategoryCount is the number of non-empty intelligence categories.
func (r *Record) CategoryCount() int {
	return r.Intel.CategoryCount()
}

// ShouldComplete reports whether the engagement has gathered enough to
// leave. Richer intelligence allows an earlier exit; 18 turns always ends it.
func (r *Record) ShouldComplete() bool {
	categories := r.CategoryCount()
	switch {
	case categories >= 3 && r.TurnCount >= 10:
		return true
	case categories >= 2 && r.TurnCount >= 12:
		return true
	case categories >= 1 && r.TurnCount >= 16:
		return true
	case r.TurnCount >= 18:
		return true
	default:
		return false
	}
}

// Completed is true once the report was delivered or delivery was given up.
func (r *Record) Completed() bool {
	return r.ReportSent || r.ReportFailures >= MaxReportFailures
}

// IsFresh reports whether nothing has been recorded yet, which is the
// condition for reconstructing from a transcript.
func (r *Record) IsFresh() bool {
	return r.TurnCount == 0 && !r.ScamDetected && r.Intel.Empty()
}

// Stale reports whether the record has been idle for longer than ttl.
func (r *Record) Stale(now time.Time, ttl time.Duration) bool {
	return ttl > 0 && now.Sub(r.LastUpdated) > ttl
}

// LineUsed reports whether line has already been shown in this session.
func (r *Record) LineUsed(line string) bool {
	for _, l := range r.UsedLines {
		if l == line {
			return true
		}
	}
	return false
}

// MarkLineUsed remembers line as shown.
func (r *Record) MarkLineUsed(line string) {
	if line == "" || r.LineUsed(line) {
		return
	}
	r.UsedLines = append(r.UsedLines, line)
}

// Rebuild reconstructs a record whose in-memory copy was lost. Each
// non-empty transcript message is passed to apply, which must be the same
// per-message step the live path runs; the turn counter is then floored at
// the transcript length.
func (r *Record) Rebuild(transcript []string, apply func(r *Record, text string)) {
	for _, text := range transcript {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		apply(r, text)
	}
	if r.TurnCount < len(transcript) {
		r.TurnCount = len(transcript)
	}
}

// Clone returns a deep copy.
func (r *Record) Clone() *Record {
	c := *r
	c.Intel = r.Intel.Clone()
	if r.UsedLines != nil {
		c.UsedLines = append([]string(nil), r.UsedLines...)
	}
	return &c
}
