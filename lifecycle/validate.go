package lifecycle

import (
	"fmt"

	"github.com/mean-machine-gc/ubispec/spec"
)

// validate runs the in-document reference checks over a decoded tree:
// command uniqueness, common-reference resolution, outcome-key
// correspondence, and the advisory emission/coverage checks.
func validate(s *Spec) spec.Issues {
	var issues spec.Issues

	seen := make(map[string]int)
	for i, d := range s.Lifecycle {
		path := fmt.Sprintf("lifecycle[%d]", i)

		if d.When != "" {
			if first, dup := seen[d.When]; dup {
				issues = append(issues, spec.Reference(spec.CodeDuplicateCommand, path+".When", d.When,
					"command %s already declared at lifecycle[%d]", d.When, first).WithLine(d.Line))
			} else {
				seen[d.When] = i
			}
		}

		issues = append(issues, checkCommonRefs(s.Common, d.And, path+".And")...)
		for _, e := range d.Then {
			issues = append(issues, checkCommonRefs(s.Common, e.Conditions, path+".Then."+e.Event)...)
		}

		issues = append(issues, checkOutcomeKeys(d, path)...)
		issues = append(issues, checkEmission(d, path)...)
	}
	return issues
}

// checkCommonRefs verifies that every bare entry resolves to a common
// definition. Bare outcome assertions are names in the om namespace,
// not common references, so they are not checked here.
func checkCommonRefs(common spec.PredicateMap, list spec.ConstraintList, path string) spec.Issues {
	var issues spec.Issues
	for i, e := range list {
		if e.Bare && !common.Has(e.Name) {
			issues = append(issues, spec.Reference(spec.CodeUnresolvedCommonRef,
				fmt.Sprintf("%s[%d]", path, i), e.Name,
				"bare predicate %q has no common definition", e.Name).WithLine(e.Line))
		}
	}
	return issues
}

// checkOutcomeKeys enforces that every keyed outcome section matches
// some Then entry textually, and advises when a conditional Then entry
// lacks outcome coverage.
func checkOutcomeKeys(d Decision, path string) spec.Issues {
	var issues spec.Issues

	declared := make(map[string]bool, len(d.Then))
	for _, e := range d.Then {
		declared[e.Event] = true
	}

	for _, entry := range d.Outcome.Keyed {
		if !declared[entry.Key] {
			issues = append(issues, spec.Reference(spec.CodeOutcomeKeyMismatch,
				path+".Outcome."+entry.Key, entry.Key,
				"outcome key %q does not match any Then entry", entry.Key).WithLine(entry.Line))
		}
	}

	// Coverage is a quality check, not a structural requirement.
	if !d.Outcome.Flat {
		covered := make(map[string]bool, len(d.Outcome.Keyed))
		for _, entry := range d.Outcome.Keyed {
			covered[entry.Key] = true
		}
		for _, e := range d.Then {
			if e.Conditional() && !covered[e.Event] {
				issues = append(issues, spec.Advisory(spec.CodeMissingOutcomeCoverage,
					path+".Outcome", e.Event,
					"conditional event %s has no outcome coverage", e.Event))
			}
		}
	}
	return issues
}

// checkEmission flags decisions whose Then entries are all conditional.
// The format requires at least one event on success but this cannot be
// proven statically from constraints alone, so it stays advisory.
func checkEmission(d Decision, path string) spec.Issues {
	if len(d.Then) == 0 {
		return nil
	}
	for _, e := range d.Then {
		if !e.Conditional() {
			return nil
		}
	}
	return spec.Issues{spec.Advisory(spec.CodePotentialEmptyEmission, path+".Then", d.When,
		"every Then entry is conditional; success may emit no events")}
}
