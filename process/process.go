// Package process models cross-aggregate coordination: the Process
// document kind. A process manager reacts to events from source
// deciders and dispatches commands to target deciders, either
// statelessly (reactor) or with saga state.
package process

import (
	"fmt"

	"github.com/mean-machine-gc/ubispec/spec"
	"gopkg.in/yaml.v3"
)

// Spec is a parsed Process document.
type Spec struct {
	Version   spec.FormatVersion `json:"ubispec"`
	Process   string             `json:"process"`
	ReactsTo  []string           `json:"reacts_to"`
	EmitsTo   []string           `json:"emits_to"`
	Model     string             `json:"model"`
	State     []StateField       `json:"state,omitempty"`
	Common    spec.PredicateMap  `json:"common,omitempty"`
	Reactions []Reaction         `json:"reactions"`
}

// StateField is one saga state field declaration.
type StateField struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Stateful reports whether the process declares saga state.
func (s *Spec) Stateful() bool {
	return len(s.State) > 0
}

// TriggerKind tags the three trigger shapes.
type TriggerKind string

const (
	// TriggerScalar: a single event name with a required From decider.
	TriggerScalar TriggerKind = "scalar"
	// TriggerAny: an OR over two or more events from one decider. The
	// runtime payload is a discriminated union the reaction must
	// narrow; that is a documented convention, not a schema field.
	TriggerAny TriggerKind = "any"
	// TriggerAll: an AND join over two or more events, matched on a
	// mandatory correlate field. Payloads stay individually
	// addressable per event name.
	TriggerAll TriggerKind = "all"
)

// Trigger is the When clause of a reaction, a tagged union over the
// three shapes.
type Trigger struct {
	Kind   TriggerKind `json:"kind"`
	Event  string      `json:"event,omitempty"`  // scalar
	Events []string    `json:"events,omitempty"` // any
	All    []AllEvent  `json:"all,omitempty"`    // all
}

// AllEvent is one member of an All trigger. From is empty when the
// member relies on the reaction's shared From decider.
type AllEvent struct {
	Event string `json:"event"`
	From  string `json:"from,omitempty"`
}

// EventNames returns the trigger's event names in declaration order.
func (t Trigger) EventNames() []string {
	switch t.Kind {
	case TriggerScalar:
		return []string{t.Event}
	case TriggerAny:
		return t.Events
	case TriggerAll:
		names := make([]string, len(t.All))
		for i, e := range t.All {
			names[i] = e.Event
		}
		return names
	}
	return nil
}

// PayloadShape describes how a reaction addresses its trigger payload.
// This is a derived, documented fact used by generators, never a
// validation input.
type PayloadShape string

const (
	// PayloadConcrete: a scalar trigger binds one concrete event type.
	PayloadConcrete PayloadShape = "concrete"
	// PayloadUnion: an any trigger binds a discriminated union that
	// predicates must narrow by a discriminant field.
	PayloadUnion PayloadShape = "union"
	// PayloadPerEvent: an all trigger binds each event payload
	// individually by name, with no union narrowing.
	PayloadPerEvent PayloadShape = "per-event"
)

// PayloadShape returns the shape implied by the trigger kind.
func (t Trigger) PayloadShape() PayloadShape {
	switch t.Kind {
	case TriggerAny:
		return PayloadUnion
	case TriggerAll:
		return PayloadPerEvent
	}
	return PayloadConcrete
}

// Reaction is one event-triggered coordination entry.
type Reaction struct {
	Trigger   Trigger             `json:"when"`
	From      string              `json:"from,omitempty"`
	Correlate string              `json:"correlate,omitempty"`
	Mode      spec.TriggerMode    `json:"trigger"`
	Actor     string              `json:"actor,omitempty"`
	And       spec.ConstraintList `json:"and,omitempty"`
	Then      []CommandSpec       `json:"then"`
	Outcome   spec.OutcomeSpec    `json:"outcome"`
	Line      int                 `json:"-"`
}

// EventSource pairs one trigger event with its source decider.
type EventSource struct {
	Event   string `json:"event"`
	Decider string `json:"decider"`
}

// Sources resolves every trigger event to its source decider,
// combining per-event sources with the shared From.
func (r Reaction) Sources() []EventSource {
	switch r.Trigger.Kind {
	case TriggerAll:
		out := make([]EventSource, len(r.Trigger.All))
		for i, e := range r.Trigger.All {
			decider := e.From
			if decider == "" {
				decider = r.From
			}
			out[i] = EventSource{Event: e.Event, Decider: decider}
		}
		return out
	default:
		names := r.Trigger.EventNames()
		out := make([]EventSource, len(names))
		for i, name := range names {
			out[i] = EventSource{Event: name, Decider: r.From}
		}
		return out
	}
}

// CommandSpec is one Then entry: a command dispatched to a target
// decider, optionally conditional. Entries are additive across a Then
// block, the same as lifecycle events.
type CommandSpec struct {
	Command    string              `json:"command"`
	Target     string              `json:"target"`
	Conditions spec.ConstraintList `json:"conditions,omitempty"`
}

// Conditional reports whether the dispatch fires only under conditions.
func (c CommandSpec) Conditional() bool {
	return len(c.Conditions) > 0
}

// Key returns the exact textual form used by outcome keys:
// "CommandName -> DeciderName".
func (c CommandSpec) Key() string {
	return fmt.Sprintf("%s -> %s", c.Command, c.Target)
}

// Reactions addressing helpers.

// DispatchedCommands returns every distinct command name dispatched by
// the process, in declaration order.
func (s *Spec) DispatchedCommands() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range s.Reactions {
		for _, c := range r.Then {
			if !seen[c.Command] {
				seen[c.Command] = true
				out = append(out, c.Command)
			}
		}
	}
	return out
}

// ReactsToEvent reports whether any reaction's trigger names the event.
func (s *Spec) ReactsToEvent(event string) bool {
	for _, r := range s.Reactions {
		for _, name := range r.Trigger.EventNames() {
			if name == event {
				return true
			}
		}
	}
	return false
}

// DispatchesCommand reports whether any reaction's Then names the
// command.
func (s *Spec) DispatchesCommand(command string) bool {
	for _, r := range s.Reactions {
		for _, c := range r.Then {
			if c.Command == command {
				return true
			}
		}
	}
	return false
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
	if err := add("process", s.Process); err != nil {
		return nil, err
	}
	if err := add("reacts_to", s.ReactsTo); err != nil {
		return nil, err
	}
	if err := add("emits_to", s.EmitsTo); err != nil {
		return nil, err
	}
	if err := add("model", s.Model); err != nil {
		return nil, err
	}
	if len(s.State) > 0 {
		state := &yaml.Node{Kind: yaml.MappingNode}
		for _, f := range s.State {
			state.Content = append(state.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Value: f.Name},
				&yaml.Node{Kind: yaml.ScalarNode, Value: f.Type})
		}
		if err := add("state", state); err != nil {
			return nil, err
		}
	}
	if len(s.Common) > 0 {
		if err := add("common", s.Common); err != nil {
			return nil, err
		}
	}
	if err := add("reactions", s.Reactions); err != nil {
		return nil, err
	}
	return node, nil
}

// MarshalYAML renders the reaction in its authored shape.
func (r Reaction) MarshalYAML() (any, error) {
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
	if err := add("When", marshalTrigger(r.Trigger)); err != nil {
		return nil, err
	}
	if r.From != "" {
		if err := add("From", r.From); err != nil {
			return nil, err
		}
	}
	if r.Correlate != "" {
		if err := add("correlate", r.Correlate); err != nil {
			return nil, err
		}
	}
	if r.Mode != spec.TriggerAutomated {
		if err := add("trigger", string(r.Mode)); err != nil {
			return nil, err
		}
	}
	if r.Actor != "" {
		if err := add("actor", r.Actor); err != nil {
			return nil, err
		}
	}
	if len(r.And) > 0 {
		if err := add("And", r.And); err != nil {
			return nil, err
		}
	}
	if err := add("Then", marshalThen(r.Then)); err != nil {
		return nil, err
	}
	if err := add("Outcome", r.Outcome); err != nil {
		return nil, err
	}
	return node, nil
}

func marshalTrigger(t Trigger) any {
	switch t.Kind {
	case TriggerAny:
		return map[string][]string{"any": t.Events}
	case TriggerAll:
		entries := make([]string, len(t.All))
		for i, e := range t.All {
			if e.From != "" {
				entries[i] = fmt.Sprintf("%s from %s", e.Event, e.From)
			} else {
				entries[i] = e.Event
			}
		}
		return map[string][]string{"all": entries}
	}
	return t.Event
}

func marshalThen(entries []CommandSpec) any {
	if len(entries) == 1 && !entries[0].Conditional() {
		return entries[0].Key()
	}
	out := make([]any, len(entries))
	for i, c := range entries {
		if c.Conditional() {
			out[i] = map[string]spec.ConstraintList{c.Key(): c.Conditions}
		} else {
			out[i] = c.Key()
		}
	}
	return out
}
