package classifier

import (
	"math"
	"reflect"
	"testing"
)

func TestDetect_StrongSignal(t *testing.T) {
	v := Detect("Your account is BLOCKED, verify now at http://bit.ly/x1, call 9876543210", nil, nil)

	if !v.ScamDetected {
		t.Fatal("expected scam detected")
	}
	if v.ScamType != TypePhishing {
		t.Errorf("expected phishing, got %q", v.ScamType)
	}
	for _, kw := range []string{"blocked", "verify"} {
		found := false
		for _, k := range v.Keywords {
			if k == kw {
				found = true
			}
		}
		if !found {
			t.Errorf("expected keyword %q in %v", kw, v.Keywords)
		}
	}
}

func TestDetect_Decisions(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"benign greeting", "hi, how are you doing?", false},
		{"single medium keyword", "this is urgent", false},
		{"two medium keywords", "urgent, do it today", false},
		{"three medium keywords", "urgent final notice, pay today", true},
		{"otp request", "share the OTP you received", true},
		{"helpline mention", "call our customer care now", true},
		{"refund lure", "your refund is pending", true},
		{"loan approved", "your loan has been approved", true},
		{"www link", "go to www.example.com", true},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(tt.text, nil, nil)
			if got.ScamDetected != tt.want {
				t.Errorf("Detect(%q).ScamDetected = %v, want %v (prob %.2f)", tt.text, got.ScamDetected, tt.want, got.Probability)
			}
		})
	}
}

func TestDetect_TypePriority(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"upi beats kyc", "update kyc and pay via upi", TypeUPIFraud},
		{"kyc beats link", "click the link to finish kyc", TypeBankKYC},
		{"link beats helpline", "call helpline or click here", TypePhishing},
		{"helpline", "contact customer care", TypeHelpdeskImpersonation},
		{"unknown", "your parcel is waiting", TypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.text, nil, nil).ScamType; got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestDetect_KeywordOrder(t *testing.T) {
	got := Detect("Refund link: verify OTP, urgent", nil, nil).Keywords
	want := []string{"verify", "urgent", "otp", "link", "refund"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestDetect_IgnoresHistoryAndMetadata(t *testing.T) {
	text := "please verify immediately"
	a := Detect(text, nil, nil)
	b := Detect(text, []string{"earlier message about upi"}, map[string]any{"channel": "SMS"})
	if !reflect.DeepEqual(a, b) {
		t.Errorf("expected identical verdicts, got %+v vs %+v", a, b)
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name           string
		strong, medium int
		want           float64
	}{
		{"none", 0, 0, 0.0},
		{"one strong", 1, 0, 0.45},
		{"three medium", 0, 3, 0.36},
		{"clamped", 3, 5, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.strong, tt.medium)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Score(%d, %d) = %f, want %f", tt.strong, tt.medium, got, tt.want)
			}
		})
	}
}
