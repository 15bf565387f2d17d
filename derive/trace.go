package derive

import (
	"fmt"
	"sort"
)

// ReactionTrace is one process reaction seen from a traced event.
type ReactionTrace struct {
	Process  string   `json:"process"`
	Trigger  string   `json:"trigger"` // scalar, any, all
	Commands []string `json:"commands"`
}

// ForwardTrace follows one command forward: the events its decision
// emits, the reactions those events trigger, and the commands those
// reactions dispatch.
type ForwardTrace struct {
	Decider   string                     `json:"decider"`
	Command   string                     `json:"command"`
	Events    []string                   `json:"events"`
	Reactions map[string][]ReactionTrace `json:"reactions,omitempty"` // by event
}

// Location is one structural place referencing a traced element.
type Location struct {
	Document string `json:"document"`
	Path     string `json:"path"`
	Role     string `json:"role"`
}

// TraceMatrix holds the forward and reverse traces of a set.
type TraceMatrix struct {
	Forward []ForwardTrace `json:"forward"`

	// ByConstraint maps a constraint name to every decision/reaction
	// whose And contains it.
	ByConstraint map[string][]Location `json:"by_constraint,omitempty"`

	// ByEvent maps an event name to the outcome assertion names hung
	// off its outcome key.
	ByEvent map[string][]string `json:"by_event,omitempty"`
}

// Traceability derives the full matrix for the set.
func (e *Engine) Traceability() *TraceMatrix {
	m := &TraceMatrix{
		ByConstraint: make(map[string][]Location),
		ByEvent:      make(map[string][]string),
	}

	for _, l := range e.set.Lifecycles {
		for di, d := range l.Lifecycle {
			trace := ForwardTrace{Decider: l.Decider, Command: d.When}
			for _, entry := range d.Then {
				trace.Events = append(trace.Events, entry.Event)
				for _, p := range e.set.ProcessesReactingTo(entry.Event) {
					for _, r := range p.Reactions {
						if !containsEvent(r.Trigger.EventNames(), entry.Event) {
							continue
						}
						rt := ReactionTrace{Process: p.Process, Trigger: string(r.Trigger.Kind)}
						for _, c := range r.Then {
							rt.Commands = append(rt.Commands, c.Key())
						}
						if trace.Reactions == nil {
							trace.Reactions = make(map[string][]ReactionTrace)
						}
						trace.Reactions[entry.Event] = append(trace.Reactions[entry.Event], rt)
					}
				}
			}
			m.Forward = append(m.Forward, trace)

			for _, c := range d.And {
				m.ByConstraint[c.Name] = append(m.ByConstraint[c.Name], Location{
					Document: l.Decider,
					Path:     fmt.Sprintf("lifecycle[%d].And", di),
					Role:     "constraint",
				})
			}
			for _, entry := range d.Outcome.Keyed {
				for _, a := range entry.Assertions {
					m.ByEvent[entry.Key] = append(m.ByEvent[entry.Key], a.Name)
				}
			}
		}
	}

	for _, p := range e.set.Processes {
		for ri, r := range p.Reactions {
			for _, c := range r.And {
				m.ByConstraint[c.Name] = append(m.ByConstraint[c.Name], Location{
					Document: p.Process,
					Path:     fmt.Sprintf("reactions[%d].And", ri),
					Role:     "constraint",
				})
			}
		}
	}

	return m
}

// Impact returns every structural location referencing the element name
// textually: constraint lists, Then keys, and Outcome keys across the
// whole set, ordered by document then path.
func (e *Engine) Impact(name string) []Location {
	var out []Location

	for _, l := range e.set.Lifecycles {
		for di, d := range l.Lifecycle {
			base := fmt.Sprintf("lifecycle[%d]", di)
			if d.When == name {
				out = append(out, Location{Document: l.Decider, Path: base + ".When", Role: "command"})
			}
			for i, c := range d.And {
				if c.Name == name {
					out = append(out, Location{Document: l.Decider, Path: fmt.Sprintf("%s.And[%d]", base, i), Role: "constraint"})
				}
			}
			for _, entry := range d.Then {
				if entry.Event == name {
					out = append(out, Location{Document: l.Decider, Path: base + ".Then", Role: "event"})
				}
				for i, c := range entry.Conditions {
					if c.Name == name {
						out = append(out, Location{Document: l.Decider, Path: fmt.Sprintf("%s.Then.%s[%d]", base, entry.Event, i), Role: "condition"})
					}
				}
			}
			for _, entry := range d.Outcome.Keyed {
				if entry.Key == name {
					out = append(out, Location{Document: l.Decider, Path: base + ".Outcome." + entry.Key, Role: "outcome-key"})
				}
				for i, a := range entry.Assertions {
					if a.Name == name {
						out = append(out, Location{Document: l.Decider, Path: fmt.Sprintf("%s.Outcome.%s[%d]", base, entry.Key, i), Role: "assertion"})
					}
				}
			}
			for i, a := range d.Outcome.Always {
				if a.Name == name {
					out = append(out, Location{Document: l.Decider, Path: fmt.Sprintf("%s.Outcome[%d]", base, i), Role: "assertion"})
				}
			}
		}
	}

	for _, p := range e.set.Processes {
		for ri, r := range p.Reactions {
			base := fmt.Sprintf("reactions[%d]", ri)
			for _, event := range r.Trigger.EventNames() {
				if event == name {
					out = append(out, Location{Document: p.Process, Path: base + ".When", Role: "trigger"})
				}
			}
			for i, c := range r.And {
				if c.Name == name {
					out = append(out, Location{Document: p.Process, Path: fmt.Sprintf("%s.And[%d]", base, i), Role: "constraint"})
				}
			}
			for _, c := range r.Then {
				if c.Command == name || c.Key() == name {
					out = append(out, Location{Document: p.Process, Path: base + ".Then", Role: "dispatch"})
				}
			}
			for _, entry := range r.Outcome.Keyed {
				if entry.Key == name {
					out = append(out, Location{Document: p.Process, Path: base + ".Outcome." + entry.Key, Role: "outcome-key"})
				}
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Document != out[j].Document {
			return out[i].Document < out[j].Document
		}
		return out[i].Path < out[j].Path
	})
	return out
}

func containsEvent(events []string, name string) bool {
	for _, e := range events {
		if e == name {
			return true
		}
	}
	return false
}
