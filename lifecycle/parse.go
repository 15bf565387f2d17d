package lifecycle

import (
	"fmt"

	"github.com/mean-machine-gc/ubispec/spec"
	"gopkg.in/yaml.v3"
)

// Parse decodes and validates a Lifecycle document. All structural and
// reference problems are collected, not returned at the first failure;
// the returned Spec is non-nil whenever the document was decodable
// enough to build a tree, even if issues were found. Issues are stamped
// with the document name.
func Parse(name string, data []byte) (*Spec, spec.Issues) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, spec.Issues{
			spec.Structural(spec.CodeTypeMismatch, "", "", "invalid YAML: %v", err),
		}.WithDocument(name)
	}
	s, issues := parseRoot(spec.DocumentRoot(&root))
	return s, issues.WithDocument(name)
}

func parseRoot(root *yaml.Node) (*Spec, spec.Issues) {
	var issues spec.Issues
	if root == nil || root.Kind != yaml.MappingNode {
		issues = append(issues, spec.Structural(spec.CodeTypeMismatch, "", "",
			"lifecycle document must be a mapping"))
		return nil, issues
	}

	s := &Spec{}

	// Header fields, in order.
	if text, ok := spec.ScalarValue(spec.MappingGet(root, "ubispec")); !ok {
		issues = append(issues, spec.Structural(spec.CodeMissingField, "ubispec", "",
			"ubispec format field is required"))
	} else if v, issue := spec.ParseFormatVersion(text); issue != nil {
		issues = append(issues, *issue)
	} else if v.Kind != spec.KindLifecycle {
		issues = append(issues, spec.Structural(spec.CodeTypeMismatch, "ubispec", text,
			"expected a lifecycle document, got %s", v.Kind))
	} else {
		s.Version = v
	}

	if text, ok := spec.ScalarValue(spec.MappingGet(root, "decider")); !ok {
		issues = append(issues, spec.Structural(spec.CodeMissingField, "decider", "",
			"decider is required"))
	} else if _, issue := spec.ParseIdentifier(spec.PascalIdentifier, text); issue != nil {
		issue.Path = "decider"
		issues = append(issues, *issue)
	} else {
		s.Decider = text
	}

	if text, ok := spec.ScalarValue(spec.MappingGet(root, "identity")); !ok {
		issues = append(issues, spec.Structural(spec.CodeMissingField, "identity", "",
			"identity is required"))
	} else {
		s.Identity = text
	}

	if text, ok := spec.ScalarValue(spec.MappingGet(root, "model")); !ok {
		issues = append(issues, spec.Structural(spec.CodeMissingField, "model", "",
			"model is required"))
	} else {
		s.Model = text
	}

	common, commonIssues := spec.ParsePredicateMap(spec.MappingGet(root, "common"), "common")
	issues = append(issues, commonIssues...)
	s.Common = common

	lifecycleNode := spec.MappingGet(root, "lifecycle")
	switch {
	case lifecycleNode == nil:
		issues = append(issues, spec.Structural(spec.CodeMissingField, "lifecycle", "",
			"lifecycle must list at least one decision"))
	case lifecycleNode.Kind != yaml.SequenceNode || len(lifecycleNode.Content) == 0:
		issues = append(issues, spec.Structural(spec.CodeTypeMismatch, "lifecycle", "",
			"lifecycle must be a non-empty sequence").WithLine(lifecycleNode.Line))
	default:
		for i, decisionNode := range lifecycleNode.Content {
			decision, decisionIssues := parseDecision(decisionNode, fmt.Sprintf("lifecycle[%d]", i))
			issues = append(issues, decisionIssues...)
			s.Lifecycle = append(s.Lifecycle, decision)
		}
	}

	issues = append(issues, validate(s)...)
	return s, issues
}

func parseDecision(node *yaml.Node, path string) (Decision, spec.Issues) {
	var issues spec.Issues
	d := Decision{Line: node.Line}
	if node.Kind != yaml.MappingNode {
		issues = append(issues, spec.Structural(spec.CodeTypeMismatch, path, "",
			"decision must be a mapping").WithLine(node.Line))
		return d, issues
	}

	if text, ok := spec.ScalarValue(spec.MappingGet(node, "When")); !ok {
		issues = append(issues, spec.Structural(spec.CodeMissingField, path+".When", "",
			"When is required").WithLine(node.Line))
	} else if _, issue := spec.ParseIdentifier(spec.PascalIdentifier, text); issue != nil {
		issue.Path = path + ".When"
		issues = append(issues, issue.WithLine(node.Line))
	} else {
		d.When = text
	}

	if text, ok := spec.ScalarValue(spec.MappingGet(node, "actor")); ok {
		d.Actor = text
	}

	if andNode := spec.MappingGet(node, "And"); andNode != nil {
		and, andIssues := spec.ParseConstraintList(andNode, path+".And")
		issues = append(issues, andIssues...)
		d.And = and
	}

	then, thenIssues := parseThen(spec.MappingGet(node, "Then"), path+".Then")
	issues = append(issues, thenIssues...)
	d.Then = then

	outcome, outcomeIssues := spec.ParseOutcome(spec.MappingGet(node, "Outcome"), path+".Outcome")
	issues = append(issues, outcomeIssues...)
	d.Outcome = outcome

	return d, issues
}

// parseThen decodes the Then block: a single event name, or a sequence
// of event names and single-key conditional mappings.
func parseThen(node *yaml.Node, path string) ([]EventSpec, spec.Issues) {
	var issues spec.Issues
	if node == nil {
		issues = append(issues, spec.Structural(spec.CodeMissingField, path, "",
			"Then is required"))
		return nil, issues
	}
	entryNodes := node.Content
	if node.Kind != yaml.SequenceNode {
		entryNodes = []*yaml.Node{node}
	}
	if len(entryNodes) == 0 {
		issues = append(issues, spec.Structural(spec.CodeTypeMismatch, path, "",
			"Then must not be empty").WithLine(node.Line))
		return nil, issues
	}
	var entries []EventSpec
	for i, entryNode := range entryNodes {
		entryPath := fmt.Sprintf("%s[%d]", path, i)
		entry, entryIssues := parseThenEntry(entryNode, entryPath)
		issues = append(issues, entryIssues...)
		if entry.Event != "" {
			entries = append(entries, entry)
		}
	}
	return entries, issues
}

func parseThenEntry(node *yaml.Node, path string) (EventSpec, spec.Issues) {
	var issues spec.Issues
	if text, ok := spec.ScalarValue(node); ok {
		if _, issue := spec.ParseIdentifier(spec.PascalIdentifier, text); issue != nil {
			issue.Path = path
			issues = append(issues, issue.WithLine(node.Line))
			return EventSpec{}, issues
		}
		return EventSpec{Event: text}, issues
	}
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		issues = append(issues, spec.Structural(spec.CodeTypeMismatch, path, "",
			"Then entry must be an event name or a single-key conditional mapping").WithLine(node.Line))
		return EventSpec{}, issues
	}
	keyNode, valueNode := node.Content[0], node.Content[1]
	event := keyNode.Value
	if _, issue := spec.ParseIdentifier(spec.PascalIdentifier, event); issue != nil {
		issue.Path = path
		issues = append(issues, issue.WithLine(keyNode.Line))
		return EventSpec{}, issues
	}
	conditions, conditionIssues := spec.ParseConstraintList(valueNode, path+"."+event)
	issues = append(issues, conditionIssues...)
	return EventSpec{Event: event, Conditions: conditions}, issues
}
