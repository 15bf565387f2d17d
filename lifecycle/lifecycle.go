// Package lifecycle models one aggregate's command/event/outcome
// contract: the Lifecycle document kind. Parse decodes and validates a
// document in one fail-collecting pass so authors see every structural
// and reference problem together.
package lifecycle

import (
	"github.com/mean-machine-gc/ubispec/spec"
	"gopkg.in/yaml.v3"
)

// Spec is a parsed Lifecycle document.
type Spec struct {
	Version  spec.FormatVersion `json:"ubispec"`
	Decider  string             `json:"decider"`
	Identity string             `json:"identity"`
	Model    string             `json:"model"`
	Common   spec.PredicateMap  `json:"common,omitempty"`
	Lifecycle []Decision        `json:"lifecycle"`
}

// Decision is one command's complete behavioral entry. At most one
// Decision per command name exists in a document; decisions are
// independent of each other.
type Decision struct {
	When    string              `json:"when"`
	Actor   string              `json:"actor,omitempty"`
	And     spec.ConstraintList `json:"and,omitempty"`
	Then    []EventSpec         `json:"then"`
	Outcome spec.OutcomeSpec    `json:"outcome"`
	Line    int                 `json:"-"`
}

// EventSpec is one Then entry. Entries are additive: every
// unconditional entry fires on success, and every conditional entry
// whose conditions all hold also fires. This is not a first-match
// structure.
type EventSpec struct {
	Event      string              `json:"event"`
	Conditions spec.ConstraintList `json:"conditions,omitempty"`
}

// Conditional reports whether the entry fires only under conditions.
func (e EventSpec) Conditional() bool {
	return len(e.Conditions) > 0
}

// Commands returns every When name in declaration order.
func (s *Spec) Commands() []string {
	out := make([]string, len(s.Lifecycle))
	for i, d := range s.Lifecycle {
		out[i] = d.When
	}
	return out
}

// Events returns every distinct Then event name in declaration order.
func (s *Spec) Events() []string {
	seen := make(map[string]bool)
	var out []string
	for _, d := range s.Lifecycle {
		for _, e := range d.Then {
			if !seen[e.Event] {
				seen[e.Event] = true
				out = append(out, e.Event)
			}
		}
	}
	return out
}

// EmitsEvent reports whether any decision's Then declares the event.
func (s *Spec) EmitsEvent(event string) bool {
	for _, d := range s.Lifecycle {
		for _, e := range d.Then {
			if e.Event == event {
				return true
			}
		}
	}
	return false
}

// Decision returns the decision for the named command.
func (s *Spec) Decision(command string) (Decision, bool) {
	for _, d := range s.Lifecycle {
		if d.When == command {
			return d, true
		}
	}
	return Decision{}, false
}

// MarshalYAML renders the document back in its authored shape.
func (s *Spec) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	add := func(key string, value any) error {
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: key}
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(value); err != nil {
			return err
		}
		node.Content = append(node.Content, keyNode, valueNode)
		return nil
	}
	if err := add("ubispec", s.Version); err != nil {
		return nil, err
	}
	if err := add("decider", s.Decider); err != nil {
		return nil, err
	}
	if err := add("identity", s.Identity); err != nil {
		return nil, err
	}
	if err := add("model", s.Model); err != nil {
		return nil, err
	}
	if len(s.Common) > 0 {
		if err := add("common", s.Common); err != nil {
			return nil, err
		}
	}
	if err := add("lifecycle", s.Lifecycle); err != nil {
		return nil, err
	}
	return node, nil
}

// MarshalYAML renders the decision in its authored shape.
func (d Decision) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	add := func(key string, value any) error {
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: key}
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(value); err != nil {
			return err
		}
		node.Content = append(node.Content, keyNode, valueNode)
		return nil
	}
	if err := add("When", d.When); err != nil {
		return nil, err
	}
	if d.Actor != "" {
		if err := add("actor", d.Actor); err != nil {
			return nil, err
		}
	}
	if len(d.And) > 0 {
		if err := add("And", d.And); err != nil {
			return nil, err
		}
	}
	if err := add("Then", marshalThen(d.Then)); err != nil {
		return nil, err
	}
	if err := add("Outcome", d.Outcome); err != nil {
		return nil, err
	}
	return node, nil
}

func marshalThen(entries []EventSpec) any {
	if len(entries) == 1 && !entries[0].Conditional() {
		return entries[0].Event
	}
	out := make([]any, len(entries))
	for i, e := range entries {
		if e.Conditional() {
			out[i] = map[string]spec.ConstraintList{e.Event: e.Conditions}
		} else {
			out[i] = e.Event
		}
	}
	return out
}
