package classifier

import (
	"regexp"
	"strings"
)

// Scam types, in the priority order Detect assigns them.
const (
	TypeUPIFraud              = "upi_fraud"
	TypeBankKYC               = "bank_kyc"
	TypePhishing              = "phishing"
	TypeHelpdeskImpersonation = "helpdesk_impersonation"
	TypeUnknown               = "unknown"
)

const (
	strongWeight = 0.45
	mediumWeight = 0.12

	// Threshold is the probability at which a message counts as a scam even
	// without a strong signal or three medium hits.
	Threshold = 0.45

	minMediumHits = 3
)

var strongPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\baccount\b.*\b(block|blocked|suspend|suspended|freeze|frozen)\b`),
	regexp.MustCompile(`\bverify\b.*\b(now|immediately)\b`),
	regexp.MustCompile(`\bupi\b|\botp\b|\bkyc\b`),
	regexp.MustCompile(`\bclick\b.*\blink\b|\bhttps?://|\bwww\.`),
	regexp.MustCompile(`\brefund\b|\bcashback\b|\bloan\b.*\bapproved\b`),
	regexp.MustCompile(`\bcustomer\s*care\b|\bhelpline\b`),
}

var mediumKeywords = []string{
	"urgent", "immediately", "today", "final", "limited time",
	"blocked", "suspended", "freeze", "verify", "update kyc",
}

var verdictKeywords = []string{
	"blocked", "verify", "urgent", "otp", "kyc", "upi", "link", "refund", "cashback",
}

// Verdict is the outcome of classifying one message.
type Verdict struct {
	ScamDetected bool     `json:"scamDetected"`
	ScamType     string   `json:"scamType"`
	Keywords     []string `json:"keywords"`
	Probability  float64  `json:"scamProbability"`
}

// Detect scores text against the strong and medium signal tiers. history and
// metadata are accepted for callers that carry them; the rules look only at
// the current message.
func Detect(text string, history []string, metadata map[string]any) Verdict {
	t := strings.ToLower(text)

	strong := 0
	for _, re := range strongPatterns {
		if re.MatchString(t) {
			strong++
		}
	}
	medium := 0
	for _, kw := range mediumKeywords {
		if strings.Contains(t, kw) {
			medium++
		}
	}

	prob := Score(strong, medium)

	var keywords []string
	for _, kw := range verdictKeywords {
		if strings.Contains(t, kw) {
			keywords = append(keywords, kw)
		}
	}

	return Verdict{
		ScamDetected: strong >= 1 || medium >= minMediumHits || prob >= Threshold,
		ScamType:     scamType(t),
		Keywords:     keywords,
		Probability:  prob,
	}
}

// Score combines tier hit counts into a probability in [0, 1].
func Score(strongHits, mediumHits int) float64 {
	return clamp(strongWeight*float64(strongHits) + mediumWeight*float64(mediumHits))
}

func scamType(t string) string {
	switch {
	case strings.Contains(t, "upi"):
		return TypeUPIFraud
	case strings.Contains(t, "otp"), strings.Contains(t, "kyc"):
		return TypeBankKYC
	case strings.Contains(t, "http"), strings.Contains(t, "www."),
		strings.Contains(t, "link"), strings.Contains(t, "click"):
		return TypePhishing
	case strings.Contains(t, "customer care"), strings.Contains(t, "helpline"):
		return TypeHelpdeskImpersonation
	default:
		return TypeUnknown
	}
}

func clamp(score float64) float64 {
	if score < 0.0 {
		return 0.0
	}
	if score > 1.0 {
		return 1.0
	}
	return score
}
