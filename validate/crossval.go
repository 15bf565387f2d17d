package validate

import (
	"fmt"

	"github.com/mean-machine-gc/ubispec/spec"
)

// FieldLookup answers "does event E declare payload field F?". The
// model-types component supplies the real implementation; a nil lookup
// skips correlate-field checks entirely.
type FieldLookup interface {
	// HasField reports whether the event's payload declares the field.
	// known is false when the lookup has no model for the event, in
	// which case the check is skipped for that event.
	HasField(event, field string) (has, known bool)
}

// Options configures cross-document validation.
type Options struct {
	// AllowExternalDeciders downgrades UnknownDecider to the advisory
	// ExternalDecider for deciders with no lifecycle document in the
	// set, accommodating genuinely external bounded contexts.
	AllowExternalDeciders bool

	// Fields resolves event payload fields for correlate checks.
	Fields FieldLookup
}

// CrossValidate checks the set's inter-document invariants. Run it only
// over documents that individually passed structural validation.
func CrossValidate(set *Set, opts Options) spec.Issues {
	var issues spec.Issues

	for _, p := range set.Processes {
		doc := p.Process

		// Declared deciders must exist in the set, or be explicitly
		// tolerated as external.
		for _, field := range []struct {
			name     string
			deciders []string
		}{{"reacts_to", p.ReactsTo}, {"emits_to", p.EmitsTo}} {
			for i, decider := range field.deciders {
				if set.HasDecider(decider) {
					continue
				}
				path := fmt.Sprintf("%s[%d]", field.name, i)
				if opts.AllowExternalDeciders {
					issues = append(issues, spec.Advisory(spec.CodeExternalDecider, path, decider,
						"decider %s has no lifecycle document in the set; treated as external", decider).WithDocument(doc))
				} else {
					issues = append(issues, spec.CrossDoc(spec.CodeUnknownDecider, path, decider,
						"decider %s has no lifecycle document in the set", decider).WithDocument(doc))
				}
			}
		}

		for ri, r := range p.Reactions {
			path := fmt.Sprintf("reactions[%d]", ri)

			// Trigger events must be emitted by their source decider.
			for _, source := range r.Sources() {
				if source.Decider == "" || !set.HasDecider(source.Decider) {
					continue // missing source or external decider, reported above
				}
				if !set.DeciderEmits(source.Decider, source.Event) {
					issues = append(issues, spec.CrossDoc(spec.CodeUnknownSourceEvent,
						path+".When", source.Event,
						"decider %s declares no event %s", source.Decider, source.Event).WithDocument(doc))
				}
			}

			// Dispatched commands must be handled by their target.
			for ti, c := range r.Then {
				if !set.HasDecider(c.Target) {
					continue
				}
				if !set.DeciderHandles(c.Target, c.Command) {
					issues = append(issues, spec.CrossDoc(spec.CodeUnknownTargetCommand,
						fmt.Sprintf("%s.Then[%d]", path, ti), c.Command,
						"decider %s declares no command %s", c.Target, c.Command).WithDocument(doc))
				}
			}

			// Every event joined by an all trigger must carry the
			// correlate field on its payload.
			if r.Correlate != "" && opts.Fields != nil {
				for _, source := range r.Sources() {
					has, known := opts.Fields.HasField(source.Event, r.Correlate)
					if known && !has {
						issues = append(issues, spec.CrossDoc(spec.CodeMissingCorrelateField,
							path+".correlate", source.Event,
							"event %s does not declare correlate field %q", source.Event, r.Correlate).WithDocument(doc))
					}
				}
			}
		}
	}

	// System map integrity: every module decider should have a
	// lifecycle document, under the same external-decider policy.
	if set.System != nil {
		for mi, m := range set.System.Modules {
			for di, decider := range m.Deciders {
				if set.HasDecider(decider) {
					continue
				}
				path := fmt.Sprintf("modules[%d].deciders[%d]", mi, di)
				if opts.AllowExternalDeciders {
					issues = append(issues, spec.Advisory(spec.CodeExternalDecider, path, decider,
						"decider %s has no lifecycle document in the set; treated as external", decider).WithDocument(set.System.System))
				} else {
					issues = append(issues, spec.CrossDoc(spec.CodeUnknownModuleDecider, path, decider,
						"decider %s has no lifecycle document in the set", decider).WithDocument(set.System.System))
				}
			}
		}
	}

	return issues
}
