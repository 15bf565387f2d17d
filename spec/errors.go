package spec

import (
	"fmt"
	"strings"
)

// Severity classifies how an Issue affects downstream processing.
type Severity string

const (
	// SeverityStructural marks a malformed document. Blocks all
	// derivation for that document.
	SeverityStructural Severity = "structural"

	// SeverityReference marks a dangling in-document reference. Fatal
	// for the document but collected alongside siblings.
	SeverityReference Severity = "reference"

	// SeverityCrossDoc marks an inconsistency between documents. Fatal
	// for cross-validation only.
	SeverityCrossDoc Severity = "cross-document"

	// SeverityAdvisory marks a quality concern that never blocks
	// derivation.
	SeverityAdvisory Severity = "advisory"
)

// Code identifies a specific validation failure.
type Code string

// Structural and reference codes raised by single-document validation.
const (
	CodeMissingField            Code = "MissingField"
	CodeTypeMismatch            Code = "TypeMismatch"
	CodePatternMismatch         Code = "PatternMismatch"
	CodeInvalidIdentifier       Code = "InvalidIdentifier"
	CodeUnsupportedVersion      Code = "UnsupportedVersion"
	CodeMultiKeyInlinePredicate Code = "MultiKeyInlinePredicate"
	CodeDuplicateCommand        Code = "DuplicateCommand"
	CodeUnresolvedCommonRef     Code = "UnresolvedCommonReference"
	CodeOutcomeKeyMismatch      Code = "OutcomeKeyMismatch"
	CodeMissingCorrelate        Code = "MissingCorrelate"
	CodeUndeclaredSource        Code = "UndeclaredSource"
	CodeUndeclaredTarget        Code = "UndeclaredTarget"
	CodeMissingActor            Code = "MissingActor"
	CodeUndeclaredModule        Code = "UndeclaredModule"
	CodeSelfFlow                Code = "SelfFlow"
	CodeDuplicateModule         Code = "DuplicateModule"
)

// Cross-document codes raised over a validated set.
const (
	CodeUnknownSourceEvent     Code = "UnknownSourceEvent"
	CodeUnknownTargetCommand   Code = "UnknownTargetCommand"
	CodeUnknownDecider         Code = "UnknownDecider"
	CodeMissingCorrelateField  Code = "MissingCorrelateField"
	CodeUnknownModuleDecider   Code = "UnknownModuleDecider"
)

// Advisory codes. Reported but never block derivation.
const (
	CodePotentialEmptyEmission    Code = "PotentialEmptyEmission"
	CodeMissingOutcomeCoverage    Code = "MissingOutcomeCoverage"
	CodeExternalDecider           Code = "ExternalDecider"
	CodeUnscopedVariantReference  Code = "UnscopedVariantReference"
)

// Issue is one validation finding. Issues are values, not Go errors;
// a document's problems are gathered into an Issues list so authors
// see every failure in one pass.
type Issue struct {
	Severity Severity `json:"severity"`
	Code     Code     `json:"code"`
	Document string   `json:"document,omitempty"`
	Path     string   `json:"path,omitempty"`
	Subject  string   `json:"subject,omitempty"`
	Message  string   `json:"message"`
	Line     int      `json:"line,omitempty"`
}

// String renders the issue in the report form
// "document:path: Code: message [subject]".
func (i Issue) String() string {
	var sb strings.Builder
	if i.Document != "" {
		sb.WriteString(i.Document)
		sb.WriteString(": ")
	}
	if i.Path != "" {
		sb.WriteString(i.Path)
		sb.WriteString(": ")
	}
	sb.WriteString(string(i.Code))
	sb.WriteString(": ")
	sb.WriteString(i.Message)
	if i.Subject != "" {
		fmt.Fprintf(&sb, " [%s]", i.Subject)
	}
	return sb.String()
}

// WithLine returns a copy of the issue carrying a source line number.
func (i Issue) WithLine(line int) Issue {
	i.Line = line
	return i
}

// WithDocument returns a copy of the issue stamped with the document
// identity.
func (i Issue) WithDocument(name string) Issue {
	i.Document = name
	return i
}

// Structural builds a structural-severity issue.
func Structural(code Code, path, subject, format string, args ...any) Issue {
	return Issue{Severity: SeverityStructural, Code: code, Path: path, Subject: subject, Message: fmt.Sprintf(format, args...)}
}

// Reference builds a reference-severity issue.
func Reference(code Code, path, subject, format string, args ...any) Issue {
	return Issue{Severity: SeverityReference, Code: code, Path: path, Subject: subject, Message: fmt.Sprintf(format, args...)}
}

// CrossDoc builds a cross-document issue.
func CrossDoc(code Code, path, subject, format string, args ...any) Issue {
	return Issue{Severity: SeverityCrossDoc, Code: code, Path: path, Subject: subject, Message: fmt.Sprintf(format, args...)}
}

// Advisory builds an advisory issue.
func Advisory(code Code, path, subject, format string, args ...any) Issue {
	return Issue{Severity: SeverityAdvisory, Code: code, Path: path, Subject: subject, Message: fmt.Sprintf(format, args...)}
}

// Issues is a fail-collecting list of validation findings.
type Issues []Issue

// HasBlocking reports whether any non-advisory issue is present.
func (is Issues) HasBlocking() bool {
	for _, i := range is {
		if i.Severity != SeverityAdvisory {
			return true
		}
	}
	return false
}

// Blocking returns the non-advisory subset.
func (is Issues) Blocking() Issues {
	var out Issues
	for _, i := range is {
		if i.Severity != SeverityAdvisory {
			out = append(out, i)
		}
	}
	return out
}

// Advisories returns the advisory subset.
func (is Issues) Advisories() Issues {
	var out Issues
	for _, i := range is {
		if i.Severity == SeverityAdvisory {
			out = append(out, i)
		}
	}
	return out
}

// BySeverity returns the subset with the given severity.
func (is Issues) BySeverity(sev Severity) Issues {
	var out Issues
	for _, i := range is {
		if i.Severity == sev {
			out = append(out, i)
		}
	}
	return out
}

// ByCode returns the subset with the given code.
func (is Issues) ByCode(code Code) Issues {
	var out Issues
	for _, i := range is {
		if i.Code == code {
			out = append(out, i)
		}
	}
	return out
}

// WithDocument stamps every issue with the document identity.
func (is Issues) WithDocument(name string) Issues {
	out := make(Issues, len(is))
	for idx, i := range is {
		i.Document = name
		out[idx] = i
	}
	return out
}
