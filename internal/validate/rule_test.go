package validate

import (
	"testing"

	"website-cleaner/internal/domain"
)

// TestDefaultRule verifies the built-in URL well-formedness check.
func TestDefaultRule(t *testing.T) {
	rule, err := NewRule(domain.ValidationConfig{Mode: domain.ValidationModeDefault})
	if err != nil {
		t.Fatalf("NewRule: %v", err)
	}

	cases := []struct {
		value string
		want  bool
	}{
		{"https://acme.com", true},
		{"http://acme.com/path?q=1", true},
		{"  https://acme.com  ", true},
		{"ftp://files.acme.com", true},
		{"not-a-url", false},
		{"acme.com", false},
		{"https://", false},
		{"", false},
		{"   ", false},
	}

	for _, tc := range cases {
		if got := rule.Valid(tc.value); got != tc.want {
			t.Errorf("Valid(%q) = %v, want %v", tc.value, got, tc.want)
		}
	}
}

// TestPatternRule verifies custom-pattern search semantics.
func TestPatternRule(t *testing.T) {
	rule, err := NewRule(domain.ValidationConfig{
		Mode:    domain.ValidationModePattern,
		Pattern: `^https?://.*`,
	})
	if err != nil {
		t.Fatalf("NewRule: %v", err)
	}

	if rule.Valid("ftp://x.com") {
		t.Error("ftp://x.com should not match ^https?://.*")
	}
	if !rule.Valid("http://x.com") {
		t.Error("http://x.com should match ^https?://.*")
	}
	if rule.Valid("") {
		t.Error("blank values are always invalid")
	}
}

// TestPatternRuleUnanchored verifies the pattern may match anywhere.
func TestPatternRuleUnanchored(t *testing.T) {
	rule, err := NewRule(domain.ValidationConfig{
		Mode:    domain.ValidationModePattern,
		Pattern: `acme\.com`,
	})
	if err != nil {
		t.Fatalf("NewRule: %v", err)
	}

	if !rule.Valid("https://www.acme.com/about") {
		t.Error("expected substring match to pass")
	}
}

// TestInvalidPatternRejectedAtCreation checks PatternError timing.
func TestInvalidPatternRejectedAtCreation(t *testing.T) {
	_, err := NewRule(domain.ValidationConfig{
		Mode:    domain.ValidationModePattern,
		Pattern: `(`,
	})
	if err == nil {
		t.Fatal("expected compile error for invalid pattern")
	}
}

// TestUnknownModeRejected checks the mode enum is enforced.
func TestUnknownModeRejected(t *testing.T) {
	if _, err := NewRule(domain.ValidationConfig{Mode: "bogus"}); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}
