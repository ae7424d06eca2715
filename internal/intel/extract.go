package intel

import (
	"regexp"
	"strings"
)

// countryCode is the dialing prefix scammers put in front of local mobiles.
const countryCode = "91"

// trunkPrefix is dialled before a mobile number within the country.
const trunkPrefix = "0"

var (
	urlRE = regexp.MustCompile(`(?i)https?://[^\s)>"]+`)

	// The leading guard keeps the tail of a longer digit run from reading as
	// a phone number. A country code or the domestic trunk 0 may precede it.
	phoneRE = regexp.MustCompile(`(?:^|\D)(?:\+?91[\s-]?|0)?([6-9]\d{9})\b`)

	handleRE  = regexp.MustCompile(`\b[a-zA-Z0-9._\-]{2,}@[a-zA-Z]{2,}\b`)
	routingRE = regexp.MustCompile(`(?i)\b[A-Z]{4}0[A-Z0-9]{6}\b`)

	accountStrictRE = regexp.MustCompile(`\b\d{11,18}\b`)
	accountLaxRE    = regexp.MustCompile(`\b(?:\d[\s-]?){11,22}\b`)

	beneficiaryRE = regexp.MustCompile(
		`(?i)\b(?:beneficiary|payee)(?:\s+name)?\s*(?:is\b|:|will\s+show\s+as)\s*['"]?([A-Za-z][A-Za-z\s.\-]{2,40})['"]?`,
	)

	nonDigitRE = regexp.MustCompile(`\D+`)
	spaceRE    = regexp.MustCompile(`\s+`)
)

// Keywords is the scam-adjacent vocabulary reported as suspicious terms.
var Keywords = []string{
	"urgent", "immediately", "verify", "blocked", "suspended", "kyc", "otp",
	"account", "bank", "limit", "freeze", "locked", "click", "link", "payment",
	"transfer", "fee", "support", "helpline",
}

const trailingURLPunct = `.,;:)]}>"'`

// Words that start an unrelated field after a claimed beneficiary name.
var beneficiaryStopWords = map[string]bool{
	"ifsc": true, "account": true, "acc": true, "upi": true,
	"bank": true, "phone": true, "mobile": true, "call": true, "and": true,
	"with": true, "branch": true,
}

const maxBeneficiaryLen = 40

// Extract pulls every entity kind out of text. It never fails: empty or
// garbage input yields an Intel with all lists empty.
func Extract(text string) Intel {
	t := strings.TrimSpace(text)
	if t == "" {
		return Intel{}
	}

	phones := extractPhones(t)

	return Intel{
		PaymentHandles:   unique(handleRE.FindAllString(t, -1)),
		BankAccounts:     Disambiguate(extractAccounts(t), phones),
		PhoneNumbers:     phones,
		PhishingLinks:    extractLinks(t),
		RoutingCodes:     extractRoutingCodes(t),
		BeneficiaryNames: extractBeneficiaries(t),
		SuspiciousTerms:  MatchKeywords(t, Keywords),
	}
}

// Disambiguate drops every account candidate that is really a phone number:
// an exact phone, a phone carrying the country code or trunk 0, or any
// 12-digit run starting with the country code.
func Disambiguate(accounts, phones []string) []string {
	if len(accounts) == 0 {
		return accounts
	}
	phoneSet := make(map[string]struct{}, len(phones)*3)
	for _, p := range phones {
		phoneSet[p] = struct{}{}
		phoneSet[countryCode+p] = struct{}{}
		phoneSet[trunkPrefix+p] = struct{}{}
	}
	var out []string
	for _, a := range accounts {
		if _, ok := phoneSet[a]; ok {
			continue
		}
		if len(a) == 12 && strings.HasPrefix(a, countryCode) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// MatchKeywords returns the vocabulary entries contained in text, compared
// case-insensitively, in vocabulary order.
func MatchKeywords(text string, vocabulary []string) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, kw := range vocabulary {
		if strings.Contains(lower, kw) {
			out = append(out, kw)
		}
	}
	return unique(out)
}

func extractLinks(t string) []string {
	var links []string
	for _, u := range urlRE.FindAllString(t, -1) {
		links = append(links, strings.TrimRight(u, trailingURLPunct))
	}
	return unique(links)
}

func extractPhones(t string) []string {
	var phones []string
	for _, m := range phoneRE.FindAllStringSubmatch(t, -1) {
		phones = append(phones, m[1])
	}
	return unique(phones)
}

func extractRoutingCodes(t string) []string {
	var codes []string
	for _, c := range routingRE.FindAllString(t, -1) {
		codes = append(codes, strings.ToUpper(c))
	}
	return unique(codes)
}

func extractAccounts(t string) []string {
	accounts := accountStrictRE.FindAllString(t, -1)
	for _, raw := range accountLaxRE.FindAllString(t, -1) {
		d := digitsOnly(raw)
		if len(d) >= 11 && len(d) <= 18 {
			accounts = append(accounts, d)
		}
	}
	return unique(accounts)
}

func extractBeneficiaries(t string) []string {
	var names []string
	for _, m := range beneficiaryRE.FindAllStringSubmatch(t, -1) {
		if name := cleanBeneficiary(m[1]); name != "" {
			names = append(names, name)
		}
	}
	return unique(names)
}

func cleanBeneficiary(raw string) string {
	words := strings.Fields(spaceRE.ReplaceAllString(raw, " "))
	kept := words[:0]
	for _, w := range words {
		if beneficiaryStopWords[strings.ToLower(strings.Trim(w, ".-"))] {
			break
		}
		kept = append(kept, w)
	}
	name := strings.Trim(strings.Join(kept, " "), " .-")
	if len(name) < 3 || len(name) > maxBeneficiaryLen {
		return ""
	}
	return name
}

func digitsOnly(s string) string {
	return nonDigitRE.ReplaceAllString(s, "")
}
