package validate

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/mean-machine-gc/ubispec/spec"
)

// DocumentReport holds one document's findings within a run.
type DocumentReport struct {
	Name   string      `json:"name"`
	Kind   spec.Kind   `json:"kind,omitempty"`
	Issues spec.Issues `json:"issues,omitempty"`

	// Excluded is true when structural errors kept the document out of
	// cross-validation. Excluded documents are reported, never
	// silently dropped.
	Excluded bool `json:"excluded,omitempty"`
}

// Report aggregates one validation run over a document set:
// per-document structural/reference findings, then cross-document
// findings, then advisories, each tagged with document identity, path,
// and offending identifier.
type Report struct {
	RunID         string           `json:"run_id"`
	GeneratedAt   time.Time        `json:"generated_at"`
	Documents     []DocumentReport `json:"documents"`
	CrossDocument spec.Issues      `json:"cross_document,omitempty"`
}

// NewReport creates an empty report with a fresh run identity.
func NewReport() *Report {
	return &Report{
		RunID:       uuid.New().String(),
		GeneratedAt: time.Now().UTC(),
	}
}

// AddDocument records one document's findings. Structural failures mark
// the document excluded from cross-validation.
func (r *Report) AddDocument(name string, kind spec.Kind, issues spec.Issues) {
	excluded := len(issues.BySeverity(spec.SeverityStructural)) > 0
	r.Documents = append(r.Documents, DocumentReport{
		Name:     name,
		Kind:     kind,
		Issues:   issues,
		Excluded: excluded,
	})
}

// HasBlocking reports whether any document or cross-document issue
// blocks derivation. Advisories never block.
func (r *Report) HasBlocking() bool {
	for _, d := range r.Documents {
		if d.Issues.HasBlocking() {
			return true
		}
	}
	return r.CrossDocument.HasBlocking()
}

// Counts returns issue totals by severity.
func (r *Report) Counts() map[spec.Severity]int {
	counts := make(map[spec.Severity]int)
	for _, d := range r.Documents {
		for _, i := range d.Issues {
			counts[i.Severity]++
		}
	}
	for _, i := range r.CrossDocument {
		counts[i.Severity]++
	}
	return counts
}

// Advisories returns every advisory across the run.
func (r *Report) Advisories() spec.Issues {
	var out spec.Issues
	for _, d := range r.Documents {
		out = append(out, d.Issues.Advisories()...)
	}
	out = append(out, r.CrossDocument.Advisories()...)
	return out
}

// WriteText renders the aggregated report for terminal output:
// documents first, then cross-document findings, then advisories.
func (r *Report) WriteText(w io.Writer) error {
	for _, d := range r.Documents {
		blocking := d.Issues.Blocking()
		switch {
		case len(blocking) == 0:
			fmt.Fprintf(w, "ok    %s (%s)\n", d.Name, d.Kind)
		case d.Excluded:
			fmt.Fprintf(w, "FAIL  %s (%s) — excluded from cross-validation due to structural errors\n", d.Name, d.Kind)
		default:
			fmt.Fprintf(w, "FAIL  %s (%s)\n", d.Name, d.Kind)
		}
		for _, issue := range blocking {
			fmt.Fprintf(w, "      %s\n", issue)
		}
	}
	if crossBlocking := r.CrossDocument.Blocking(); len(crossBlocking) > 0 {
		fmt.Fprintln(w, "cross-document:")
		for _, issue := range crossBlocking {
			fmt.Fprintf(w, "      %s\n", issue)
		}
	}
	if advisories := r.Advisories(); len(advisories) > 0 {
		fmt.Fprintln(w, "advisories:")
		for _, issue := range advisories {
			fmt.Fprintf(w, "      %s\n", issue)
		}
	}
	counts := r.Counts()
	fmt.Fprintf(w, "%d structural, %d reference, %d cross-document, %d advisory\n",
		counts[spec.SeverityStructural], counts[spec.SeverityReference],
		counts[spec.SeverityCrossDoc], counts[spec.SeverityAdvisory])
	return nil
}
