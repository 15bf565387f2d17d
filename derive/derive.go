// Package derive mechanically generates artifacts from validated
// document sets: decision tables, test-scenario matrices, validation
// checklists, traceability matrices, integration dependency manifests,
// and command catalogs. Every generator is a deterministic, pure
// function of the validated tree with no author interpretation.
package derive

import (
	"errors"
	"fmt"

	"github.com/mean-machine-gc/ubispec/validate"
)

// ErrNotValidated is returned when derivation is requested over a set
// with outstanding structural, reference, or cross-document errors.
// Advisories never block derivation.
var ErrNotValidated = errors.New("specification set has unresolved validation errors")

// Engine derives artifacts from one validated set.
type Engine struct {
	set *validate.Set
}

// New creates an engine over a validated set. The report gates
// derivation: any blocking issue yields ErrNotValidated.
func New(set *validate.Set, report *validate.Report) (*Engine, error) {
	if set == nil {
		return nil, fmt.Errorf("derive: nil document set")
	}
	if report == nil {
		return nil, fmt.Errorf("derive: %w: no validation report", ErrNotValidated)
	}
	if report.HasBlocking() {
		counts := report.Counts()
		return nil, fmt.Errorf("derive: %w (%d structural, %d reference, %d cross-document)",
			ErrNotValidated, counts["structural"], counts["reference"], counts["cross-document"])
	}
	return &Engine{set: set}, nil
}

// Set exposes the underlying validated set.
func (e *Engine) Set() *validate.Set {
	return e.set
}
