package process

import (
	"fmt"
	"regexp"
	"slices"

	"github.com/mean-machine-gc/ubispec/spec"
)

// rmEventFieldPattern finds payload field references under the
// reaction-model event namespace, used by the union-narrowing check.
var rmEventFieldPattern = regexp.MustCompile(`rm\.event\.([a-zA-Z0-9_]+)`)

// validate runs the in-document checks over a decoded tree.
func validate(s *Spec) spec.Issues {
	var issues spec.Issues
	for i, r := range s.Reactions {
		path := fmt.Sprintf("reactions[%d]", i)
		issues = append(issues, validateTrigger(s, r, path)...)
		issues = append(issues, validateDispatch(s, r, path)...)
		issues = append(issues, validateOutcomeKeys(r, path)...)

		if r.Mode == spec.TriggerPolicy && r.Actor == "" {
			issues = append(issues, spec.Reference(spec.CodeMissingActor, path, r.Trigger.Event,
				"policy reactions require an actor").WithLine(r.Line))
		}

		issues = append(issues, checkCommonRefs(s.Common, r.And, path+".And")...)
		for _, c := range r.Then {
			issues = append(issues, checkCommonRefs(s.Common, c.Conditions, path+".Then."+c.Key())...)
		}
	}
	return issues
}

func validateTrigger(s *Spec, r Reaction, path string) spec.Issues {
	var issues spec.Issues
	switch r.Trigger.Kind {
	case TriggerScalar, TriggerAny:
		if r.From == "" {
			issues = append(issues, spec.Structural(spec.CodeMissingField, path+".From", "",
				"%s triggers require From", r.Trigger.Kind).WithLine(r.Line))
		} else if !slices.Contains(s.ReactsTo, r.From) {
			issues = append(issues, spec.Reference(spec.CodeUndeclaredSource, path+".From", r.From,
				"source decider %s is not declared in reacts_to", r.From).WithLine(r.Line))
		}
		if r.Correlate != "" {
			issues = append(issues, spec.Structural(spec.CodeTypeMismatch, path+".correlate", r.Correlate,
				"correlate only applies to all triggers").WithLine(r.Line))
		}
	case TriggerAll:
		if r.Correlate == "" {
			issues = append(issues, spec.Structural(spec.CodeMissingCorrelate, path, "",
				"all triggers require a correlate field").WithLine(r.Line))
		}
		for j, source := range r.Sources() {
			entryPath := fmt.Sprintf("%s.When.all[%d]", path, j)
			if source.Decider == "" {
				issues = append(issues, spec.Structural(spec.CodeMissingField, entryPath, source.Event,
					"event %s has no source: add \"from <Decider>\" or a shared From", source.Event).WithLine(r.Line))
				continue
			}
			if !slices.Contains(s.ReactsTo, source.Decider) {
				issues = append(issues, spec.Reference(spec.CodeUndeclaredSource, entryPath, source.Decider,
					"source decider %s is not declared in reacts_to", source.Decider).WithLine(r.Line))
			}
		}
	}
	issues = append(issues, checkUnionNarrowing(r, path)...)
	return issues
}

func validateDispatch(s *Spec, r Reaction, path string) spec.Issues {
	var issues spec.Issues
	for j, c := range r.Then {
		if !slices.Contains(s.EmitsTo, c.Target) {
			issues = append(issues, spec.Reference(spec.CodeUndeclaredTarget,
				fmt.Sprintf("%s.Then[%d]", path, j), c.Target,
				"target decider %s is not declared in emits_to", c.Target))
		}
	}
	return issues
}

// validateOutcomeKeys enforces the "CommandName -> DeciderName" key
// correspondence with the reaction's Then entries.
func validateOutcomeKeys(r Reaction, path string) spec.Issues {
	var issues spec.Issues
	declared := make(map[string]bool, len(r.Then))
	for _, c := range r.Then {
		declared[c.Key()] = true
	}
	for _, entry := range r.Outcome.Keyed {
		key := entry.Key
		if m := commandTargetPattern.FindStringSubmatch(key); m != nil {
			key = fmt.Sprintf("%s -> %s", m[1], m[2])
		}
		if !declared[key] {
			issues = append(issues, spec.Reference(spec.CodeOutcomeKeyMismatch,
				path+".Outcome."+entry.Key, entry.Key,
				"outcome key %q does not match any Then entry", entry.Key).WithLine(entry.Line))
		}
	}
	if !r.Outcome.Flat {
		covered := make(map[string]bool, len(r.Outcome.Keyed))
		for _, entry := range r.Outcome.Keyed {
			key := entry.Key
			if m := commandTargetPattern.FindStringSubmatch(key); m != nil {
				key = fmt.Sprintf("%s -> %s", m[1], m[2])
			}
			covered[key] = true
		}
		for _, c := range r.Then {
			if c.Conditional() && !covered[c.Key()] {
				issues = append(issues, spec.Advisory(spec.CodeMissingOutcomeCoverage,
					path+".Outcome", c.Key(),
					"conditional dispatch %s has no outcome coverage", c.Key()))
			}
		}
	}
	return issues
}

// checkUnionNarrowing enforces the documented convention for any
// triggers: the payload is a discriminated union, so predicates outside
// a conditional Then key may only touch the discriminant field
// (rm.event.kind), not variant-specific payload fields. Expression-level
// type inference is out of scope; this is a heuristic advisory.
func checkUnionNarrowing(r Reaction, path string) spec.Issues {
	if r.Trigger.Kind != TriggerAny {
		return nil
	}
	var issues spec.Issues
	for i, e := range r.And {
		for _, m := range rmEventFieldPattern.FindAllStringSubmatch(e.Expr, -1) {
			if m[1] == "kind" {
				continue
			}
			issues = append(issues, spec.Advisory(spec.CodeUnscopedVariantReference,
				fmt.Sprintf("%s.And[%d]", path, i), e.Name,
				"predicate %q reads variant field rm.event.%s outside a conditional key; narrow by rm.event.kind first", e.Name, m[1]))
			break
		}
	}
	return issues
}

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
