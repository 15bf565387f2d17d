package derive

import (
	"fmt"
	"strings"

	"github.com/mean-machine-gc/ubispec/spec"
)

// FailureBoilerplate is the fixed on-failure text shared by every
// command: the implicit failure convention yields one standardized
// signal naming the failed constraints, so no per-command failure
// specification exists.
const FailureBoilerplate = "Any failed precondition yields DecisionFailed naming every failed constraint; no state changes and no events are emitted."

// ChecklistSection is one command's validation checklist.
type ChecklistSection struct {
	Decider       string           `json:"decider"`
	Command       string           `json:"command"`
	Actor         string           `json:"actor,omitempty"`
	Preconditions []string         `json:"preconditions,omitempty"`
	OnSuccess     []string         `json:"on_success"`
	After         []AssertionGroup `json:"after,omitempty"`
	OnFailure     string           `json:"on_failure"`
}

// AssertionGroup groups outcome assertions under their key ("always"
// or an event name).
type AssertionGroup struct {
	Key        string   `json:"key"`
	Assertions []string `json:"assertions"`
}

// Checklist holds one section per decision across the set.
type Checklist struct {
	Sections []ChecklistSection `json:"sections"`
}

// Checklist derives the validation checklist for every lifecycle
// document in the set.
func (e *Engine) Checklist() *Checklist {
	out := &Checklist{}
	for _, l := range e.set.Lifecycles {
		for _, d := range l.Lifecycle {
			section := ChecklistSection{
				Decider:   l.Decider,
				Command:   d.When,
				Actor:     d.Actor,
				OnFailure: FailureBoilerplate,
			}
			for _, c := range d.And {
				section.Preconditions = append(section.Preconditions, SentenceCase(c.Name))
			}
			for _, entry := range d.Then {
				if entry.Conditional() {
					section.OnSuccess = append(section.OnSuccess,
						fmt.Sprintf("%s (when %s)", entry.Event, strings.Join(entry.Conditions.Names(), ", ")))
				} else {
					section.OnSuccess = append(section.OnSuccess, entry.Event+" (always)")
				}
			}
			section.After = assertionGroups(d.Outcome)
			out.Sections = append(out.Sections, section)
		}
	}
	return out
}

func assertionGroups(outcome spec.OutcomeSpec) []AssertionGroup {
	var out []AssertionGroup
	if len(outcome.Always) > 0 {
		out = append(out, AssertionGroup{Key: "always", Assertions: sentenceCased(outcome.Always)})
	}
	for _, entry := range outcome.Keyed {
		out = append(out, AssertionGroup{Key: entry.Key, Assertions: sentenceCased(entry.Assertions)})
	}
	return out
}

func sentenceCased(list spec.ConstraintList) []string {
	out := make([]string, len(list))
	for i, e := range list {
		out[i] = SentenceCase(e.Name)
	}
	return out
}
