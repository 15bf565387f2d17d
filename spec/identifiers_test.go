package spec

import "testing"

func TestValidPascal(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"Order", true},
		{"OrderPlaced", true},
		{"A", true},
		{"Order2Placed", true},
		{"order", false},
		{"Order-Placed", false},
		{"Order Placed", false},
		{"2Order", false},
		{"", false},
		{"Order_Placed", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ValidPascal(tt.input); got != tt.want {
				t.Errorf("ValidPascal(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidKebab(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"registry-is-submitted", true},
		{"a", true},
		{"has-active-registry", true},
		{"v2-check", true},
		{"Registry-Is-Submitted", false},
		{"registry_is_submitted", false},
		{"-leading", false},
		{"trailing-", false},
		{"double--dash", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ValidKebab(tt.input); got != tt.want {
				t.Errorf("ValidKebab(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseIdentifier_PatternMismatch(t *testing.T) {
	if _, issue := ParseIdentifier(PascalIdentifier, "OrderPlaced"); issue != nil {
		t.Fatalf("unexpected issue: %v", issue)
	}
	_, issue := ParseIdentifier(PascalIdentifier, "order-placed")
	if issue == nil {
		t.Fatal("expected issue for kebab text in pascal class")
	}
	if issue.Code != CodePatternMismatch {
		t.Errorf("Code = %v, want %v", issue.Code, CodePatternMismatch)
	}
	_, issue = ParseIdentifier(KebabIdentifier, "OrderPlaced")
	if issue == nil || issue.Code != CodePatternMismatch {
		t.Errorf("mixing classes must fail with PatternMismatch, got %v", issue)
	}
}
