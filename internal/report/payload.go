package report

import (
	"fmt"

	"github.com/MikeSquared-Agency/lure/internal/session"
)

// Payload is the engagement summary delivered to the collector.
type Payload struct {
	SessionID              string       `json:"sessionId"`
	ScamDetected           bool         `json:"scamDetected"`
	TotalMessagesExchanged int          `json:"totalMessagesExchanged"`
	ExtractedIntelligence  Intelligence `json:"extractedIntelligence"`
	AgentNotes             string       `json:"agentNotes"`
}

// Intelligence is the collector-facing subset of the session's intel. Lists
// are never null on the wire.
type Intelligence struct {
	BankAccounts       []string `json:"bankAccounts"`
	UPIIDs             []string `json:"upiIds"`
	PhishingLinks      []string `json:"phishingLinks"`
	PhoneNumbers       []string `json:"phoneNumbers"`
	SuspiciousKeywords []string `json:"suspiciousKeywords"`
}

// BuildPayload summarizes rec in the fixed collector shape.
func BuildPayload(rec *session.Record) Payload {
	in := rec.Intel
	items := len(in.PaymentHandles) + len(in.BankAccounts) + len(in.PhishingLinks) + len(in.PhoneNumbers)
	return Payload{
		SessionID:              rec.SessionID,
		ScamDetected:           rec.ScamDetected,
		TotalMessagesExchanged: rec.TurnCount,
		ExtractedIntelligence: Intelligence{
			BankAccounts:       nonNil(in.BankAccounts),
			UPIIDs:             nonNil(in.PaymentHandles),
			PhishingLinks:      nonNil(in.PhishingLinks),
			PhoneNumbers:       nonNil(in.PhoneNumbers),
			SuspiciousKeywords: nonNil(in.SuspiciousTerms),
		},
		AgentNotes: fmt.Sprintf(
			"Scam conversation engagement completed. scamType=%s, stage=%s, items=%d",
			rec.ScamType, rec.Stage, items,
		),
	}
}

func nonNil(xs []string) []string {
	out := make([]string, len(xs))
	copy(out, xs)
	return out
}
