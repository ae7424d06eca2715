package intel

// Intel holds the entities pulled out of scammer messages. A value produced
// by Extract describes one message; a session accumulates them with Merge.
type Intel struct {
	PaymentHandles   []string `json:"upiIds"`
	BankAccounts     []string `json:"bankAccounts"`
	PhoneNumbers     []string `json:"phoneNumbers"`
	PhishingLinks    []string `json:"phishingLinks"`
	RoutingCodes     []string `json:"ifscCodes"`
	BeneficiaryNames []string `json:"beneficiaryNames"`
	SuspiciousTerms  []string `json:"suspiciousKeywords"`
}

// CategoryCount reports how many of the six intelligence categories are
// non-empty. Suspicious terms are not intelligence and are not counted.
func (in Intel) CategoryCount() int {
	n := 0
	for _, list := range [][]string{
		in.PaymentHandles,
		in.BankAccounts,
		in.PhoneNumbers,
		in.PhishingLinks,
		in.RoutingCodes,
		in.BeneficiaryNames,
	} {
		if len(list) > 0 {
			n++
		}
	}
	return n
}

// Empty is true when no category and no suspicious term is present.
func (in Intel) Empty() bool {
	return in.CategoryCount() == 0 && len(in.SuspiciousTerms) == 0
}

// Clone returns a deep copy.
func (in Intel) Clone() Intel {
	return Intel{
		PaymentHandles:   cloneList(in.PaymentHandles),
		BankAccounts:     cloneList(in.BankAccounts),
		PhoneNumbers:     cloneList(in.PhoneNumbers),
		PhishingLinks:    cloneList(in.PhishingLinks),
		RoutingCodes:     cloneList(in.RoutingCodes),
		BeneficiaryNames: cloneList(in.BeneficiaryNames),
		SuspiciousTerms:  cloneList(in.SuspiciousTerms),
	}
}

// Merge appends every value of src missing from dst, list by list, and
// returns the values that were actually added. Merging the same src twice
// leaves dst unchanged the second time and returns an empty delta.
func Merge(dst *Intel, src Intel) Intel {
	var added Intel
	dst.PaymentHandles, added.PaymentHandles = appendUnique(dst.PaymentHandles, src.PaymentHandles)
	dst.BankAccounts, added.BankAccounts = appendUnique(dst.BankAccounts, src.BankAccounts)
	dst.PhoneNumbers, added.PhoneNumbers = appendUnique(dst.PhoneNumbers, src.PhoneNumbers)
	dst.PhishingLinks, added.PhishingLinks = appendUnique(dst.PhishingLinks, src.PhishingLinks)
	dst.RoutingCodes, added.RoutingCodes = appendUnique(dst.RoutingCodes, src.RoutingCodes)
	dst.BeneficiaryNames, added.BeneficiaryNames = appendUnique(dst.BeneficiaryNames, src.BeneficiaryNames)
	dst.SuspiciousTerms, added.SuspiciousTerms = appendUnique(dst.SuspiciousTerms, src.SuspiciousTerms)
	return added
}

func appendUnique(dst, src []string) (merged, added []string) {
	seen := make(map[string]struct{}, len(dst))
	for _, v := range dst {
		seen[v] = struct{}{}
	}
	for _, v := range src {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		dst = append(dst, v)
		added = append(added, v)
	}
	return dst, added
}

func unique(xs []string) []string {
	out, _ := appendUnique(nil, xs)
	return out
}

func cloneList(xs []string) []string {
	if xs == nil {
		return nil
	}
	out := make([]string, len(xs))
	copy(out, xs)
	return out
}
