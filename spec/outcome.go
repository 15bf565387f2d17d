package spec

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// AlwaysKey is the outcome key whose assertions apply to every success.
const AlwaysKey = "_always"

// OutcomeEntry is one keyed assertion group in an outcome block. The
// key must equal, character for character, the textual form of a Then
// entry ("EventName", or "CommandName -> DeciderName" in process
// documents).
type OutcomeEntry struct {
	Key        string         `json:"key"`
	Assertions ConstraintList `json:"assertions"`
	Line       int            `json:"-"`
}

// OutcomeSpec is a decision's or reaction's post-condition block:
// either a flat assertion list applying to every success, or a keyed
// mapping with the optional _always group plus per-Then-entry groups.
type OutcomeSpec struct {
	// Flat is true when the block was authored as a plain list.
	Flat bool `json:"flat,omitempty"`

	// Always holds the flat assertions, or the _always group.
	Always ConstraintList `json:"always,omitempty"`

	// Keyed holds the non-_always groups in declaration order.
	Keyed []OutcomeEntry `json:"keyed,omitempty"`
}

// ParseOutcome decodes an outcome block from a sequence (flat form) or
// mapping (keyed form) node.
func ParseOutcome(node *yaml.Node, path string) (OutcomeSpec, Issues) {
	var issues Issues
	if node == nil {
		issues = append(issues, Structural(CodeMissingField, path, "", "Outcome is missing"))
		return OutcomeSpec{}, issues
	}
	switch node.Kind {
	case yaml.SequenceNode, yaml.ScalarNode:
		list, listIssues := ParseConstraintList(node, path)
		issues = append(issues, listIssues...)
		return OutcomeSpec{Flat: true, Always: list}, issues
	case yaml.MappingNode:
		out := OutcomeSpec{}
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode, valueNode := node.Content[i], node.Content[i+1]
			key := keyNode.Value
			list, listIssues := ParseConstraintList(valueNode, fmt.Sprintf("%s.%s", path, key))
			issues = append(issues, listIssues...)
			if key == AlwaysKey {
				out.Always = list
				continue
			}
			out.Keyed = append(out.Keyed, OutcomeEntry{Key: key, Assertions: list, Line: keyNode.Line})
		}
		return out, issues
	default:
		issues = append(issues, Structural(CodeTypeMismatch, path, "",
			"Outcome must be a list or a keyed mapping").WithLine(node.Line))
		return OutcomeSpec{}, issues
	}
}

// IsZero reports whether the block is empty.
func (o OutcomeSpec) IsZero() bool {
	return len(o.Always) == 0 && len(o.Keyed) == 0
}

// Keys returns the non-_always keys in declaration order.
func (o OutcomeSpec) Keys() []string {
	keys := make([]string, len(o.Keyed))
	for i, e := range o.Keyed {
		keys[i] = e.Key
	}
	return keys
}

// ForKey returns the assertions applying when the named Then entry
// fired: the universal group plus the matching keyed group.
func (o OutcomeSpec) ForKey(key string) ConstraintList {
	out := make(ConstraintList, 0, len(o.Always))
	out = append(out, o.Always...)
	for _, e := range o.Keyed {
		if e.Key == key {
			out = append(out, e.Assertions...)
		}
	}
	return out
}

// MarshalYAML renders the block back in its authored form.
func (o OutcomeSpec) MarshalYAML() (any, error) {
	if o.Flat {
		return o.Always, nil
	}
	node := &yaml.Node{Kind: yaml.MappingNode}
	appendGroup := func(key string, list ConstraintList) error {
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: key}
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(list); err != nil {
			return err
		}
		node.Content = append(node.Content, keyNode, valueNode)
		return nil
	}
	if len(o.Always) > 0 {
		if err := appendGroup(AlwaysKey, o.Always); err != nil {
			return nil, err
		}
	}
	for _, e := range o.Keyed {
		if err := appendGroup(e.Key, e.Assertions); err != nil {
			return nil, err
		}
	}
	return node, nil
}
