package intel

import (
	"reflect"
	"testing"
)

func TestExtract_BlockedAccountMessage(t *testing.T) {
	got := Extract("Your account is BLOCKED, verify now at http://bit.ly/x1, call 9876543210")

	if !reflect.DeepEqual(got.PhishingLinks, []string{"http://bit.ly/x1"}) {
		t.Errorf("expected one trimmed link, got %v", got.PhishingLinks)
	}
	if !reflect.DeepEqual(got.PhoneNumbers, []string{"9876543210"}) {
		t.Errorf("expected phone 9876543210, got %v", got.PhoneNumbers)
	}
	if len(got.BankAccounts) != 0 {
		t.Errorf("expected no bank accounts, got %v", got.BankAccounts)
	}
	for _, kw := range []string{"blocked", "verify", "account"} {
		if !contains(got.SuspiciousTerms, kw) {
			t.Errorf("expected keyword %q in %v", kw, got.SuspiciousTerms)
		}
	}
}

func TestExtract_AccountAndRoutingCode(t *testing.T) {
	got := Extract("Account 123456789012 IFSC sbin0001234")

	if !reflect.DeepEqual(got.BankAccounts, []string{"123456789012"}) {
		t.Errorf("expected account 123456789012, got %v", got.BankAccounts)
	}
	if !reflect.DeepEqual(got.RoutingCodes, []string{"SBIN0001234"}) {
		t.Errorf("expected uppercased routing code, got %v", got.RoutingCodes)
	}
	if len(got.PhoneNumbers) != 0 {
		t.Errorf("expected no phones inside an account number, got %v", got.PhoneNumbers)
	}
}

func TestExtract_CountryCodePhoneIsNotAnAccount(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		phone string
	}{
		{"glued prefix", "whatsapp 919876543210 now", "9876543210"},
		{"plus prefix", "call +91 9876543210", "9876543210"},
		{"hyphen prefix", "call +91-9876543210", "9876543210"},
		{"spaced groups", "call 91 98765 43210", ""},
		{"trunk prefix", "call 09876543210 now", "9876543210"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.text)
			if len(got.BankAccounts) != 0 {
				t.Errorf("expected no bank accounts, got %v", got.BankAccounts)
			}
			if tt.phone != "" && !reflect.DeepEqual(got.PhoneNumbers, []string{tt.phone}) {
				t.Errorf("expected phone %s, got %v", tt.phone, got.PhoneNumbers)
			}
			for _, a := range got.BankAccounts {
				if contains(got.PhoneNumbers, a) {
					t.Errorf("value %q is both a phone and an account", a)
				}
			}
		})
	}
}

func TestExtract_PhoneNormalization(t *testing.T) {
	got := Extract("call 9876543210 or +919876543210 or 91-9876543210")
	if !reflect.DeepEqual(got.PhoneNumbers, []string{"9876543210"}) {
		t.Errorf("expected a single normalized phone, got %v", got.PhoneNumbers)
	}
}

func TestExtract_LaxAccount(t *testing.T) {
	got := Extract("send to 1234 5678 9012 3456 today")
	if !contains(got.BankAccounts, "1234567890123456") {
		t.Errorf("expected normalized lax account, got %v", got.BankAccounts)
	}
}

func TestExtract_PaymentHandles(t *testing.T) {
	got := Extract("pay scammer.fraud@ybl or a@x or refund-desk@okhdfcbank.")
	want := []string{"scammer.fraud@ybl", "refund-desk@okhdfcbank"}
	if !reflect.DeepEqual(got.PaymentHandles, want) {
		t.Errorf("expected %v, got %v", want, got.PaymentHandles)
	}
}

func TestExtract_LinkTrailingPunctuation(t *testing.T) {
	got := Extract(`open (https://sbi-kyc.example/verify). Or "http://x.example/a?b=1", then https://sbi-kyc.example/verify;`)
	want := []string{"https://sbi-kyc.example/verify", "http://x.example/a?b=1"}
	if !reflect.DeepEqual(got.PhishingLinks, want) {
		t.Errorf("expected %v, got %v", want, got.PhishingLinks)
	}
}

func TestExtract_BeneficiaryNames(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"colon", "Beneficiary: Rahul Sharma", "Rahul Sharma"},
		{"quoted", "Beneficiary name is 'SBI Support'", "SBI Support"},
		{"will show as", "beneficiary will show as SBI Support", "SBI Support"},
		{"payee", "Payee name: Anita Verma", "Anita Verma"},
		{"trailing field", "Beneficiary: Rahul Sharma IFSC SBIN0001234", "Rahul Sharma"},
		{"collapsed spaces", "Beneficiary:   Rahul    Sharma", "Rahul Sharma"},
		{"word starting with is", "Beneficiary issue resolved, payee name: Ramesh Kumar", "Ramesh Kumar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.text)
			if !reflect.DeepEqual(got.BeneficiaryNames, []string{tt.want}) {
				t.Errorf("expected [%s], got %v", tt.want, got.BeneficiaryNames)
			}
		})
	}
}

func TestExtract_EmptyAndGarbage(t *testing.T) {
	for _, text := range []string{"", "   ", "\x00\xff@@@::", "!!!???"} {
		got := Extract(text)
		if got.CategoryCount() != 0 {
			t.Errorf("expected no intelligence for %q, got %+v", text, got)
		}
	}
}

func TestExtract_Deterministic(t *testing.T) {
	text := "Pay fraud@ybl, acct 5010 0234 5678 90, IFSC HDFC0001234, call 9123456789, http://x.example/p."
	first := Extract(text)
	for i := 0; i < 20; i++ {
		if got := Extract(text); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: %+v vs %+v", i, got, first)
		}
	}
}

func TestDisambiguate(t *testing.T) {
	accounts := []string{"123456789012", "9876543210", "919876543210", "09876543210", "911234567890", "50100234567890"}
	got := Disambiguate(accounts, []string{"9876543210"})
	want := []string{"123456789012", "50100234567890"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestMatchKeywords_OrderAndCase(t *testing.T) {
	got := MatchKeywords("CLICK the link, URGENT, verify verify", Keywords)
	want := []string{"urgent", "verify", "click", "link"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func contains(xs []string, v string) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
