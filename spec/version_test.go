package spec

import "testing"

func TestParseFormatVersion(t *testing.T) {
	tests := []struct {
		input    string
		wantKind Kind
		wantErr  Code
	}{
		{"lifecycle/v1.0", KindLifecycle, ""},
		{"process/v1.0", KindProcess, ""},
		{"system/v1.0", KindSystem, ""},
		{"lifecycle/v1.3", KindLifecycle, ""}, // forward-compatible minor
		{"lifecycle/v2.0", "", CodeUnsupportedVersion},
		{"lifecycle/1.0", "", CodePatternMismatch},
		{"saga/v1.0", "", CodePatternMismatch},
		{"lifecycle", "", CodePatternMismatch},
		{"", "", CodePatternMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, issue := ParseFormatVersion(tt.input)
			if tt.wantErr != "" {
				if issue == nil {
					t.Fatalf("expected %s issue, got none", tt.wantErr)
				}
				if issue.Code != tt.wantErr {
					t.Errorf("Code = %v, want %v", issue.Code, tt.wantErr)
				}
				return
			}
			if issue != nil {
				t.Fatalf("unexpected issue: %v", issue)
			}
			if v.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", v.Kind, tt.wantKind)
			}
			if v.String() != tt.input {
				t.Errorf("String() = %q, want %q", v.String(), tt.input)
			}
		})
	}
}

func TestParseTriggerMode(t *testing.T) {
	if mode, ok := ParseTriggerMode(""); !ok || mode != TriggerAutomated {
		t.Errorf("empty mode = %v/%v, want automated default", mode, ok)
	}
	if mode, ok := ParseTriggerMode("policy"); !ok || mode != TriggerPolicy {
		t.Errorf("policy mode = %v/%v", mode, ok)
	}
	if _, ok := ParseTriggerMode("manual"); ok {
		t.Error("unknown mode must not parse")
	}
}
