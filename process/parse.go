package process

import (
	"fmt"
	"regexp"

	"github.com/mean-machine-gc/ubispec/spec"
	"gopkg.in/yaml.v3"
)

// Textual forms for cross-decider references.
var (
	eventFromPattern     = regexp.MustCompile(`^([A-Z][a-zA-Z0-9]*)\s+from\s+([A-Z][a-zA-Z0-9]*)$`)
	commandTargetPattern = regexp.MustCompile(`^([A-Z][a-zA-Z0-9]*)\s*->\s*([A-Z][a-zA-Z0-9]*)$`)
)

// Parse decodes and validates a Process document, collecting every
// problem in one pass. Issues are stamped with the document name.
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
			"process document must be a mapping"))
		return nil, issues
	}

	s := &Spec{}

	if text, ok := spec.ScalarValue(spec.MappingGet(root, "ubispec")); !ok {
		issues = append(issues, spec.Structural(spec.CodeMissingField, "ubispec", "",
			"ubispec format field is required"))
	} else if v, issue := spec.ParseFormatVersion(text); issue != nil {
		issues = append(issues, *issue)
	} else if v.Kind != spec.KindProcess {
		issues = append(issues, spec.Structural(spec.CodeTypeMismatch, "ubispec", text,
			"expected a process document, got %s", v.Kind))
	} else {
		s.Version = v
	}

	if text, ok := spec.ScalarValue(spec.MappingGet(root, "process")); !ok {
		issues = append(issues, spec.Structural(spec.CodeMissingField, "process", "",
			"process name is required"))
	} else if _, issue := spec.ParseIdentifier(spec.PascalIdentifier, text); issue != nil {
		issue.Path = "process"
		issues = append(issues, *issue)
	} else {
		s.Process = text
	}

	var listIssues spec.Issues
	s.ReactsTo, listIssues = parseDeciderList(spec.MappingGet(root, "reacts_to"), "reacts_to")
	issues = append(issues, listIssues...)
	s.EmitsTo, listIssues = parseDeciderList(spec.MappingGet(root, "emits_to"), "emits_to")
	issues = append(issues, listIssues...)

	if text, ok := spec.ScalarValue(spec.MappingGet(root, "model")); !ok {
		issues = append(issues, spec.Structural(spec.CodeMissingField, "model", "",
			"model is required"))
	} else {
		s.Model = text
	}

	if stateNode := spec.MappingGet(root, "state"); stateNode != nil {
		if stateNode.Kind != yaml.MappingNode {
			issues = append(issues, spec.Structural(spec.CodeTypeMismatch, "state", "",
				"state must be a mapping of field to type").WithLine(stateNode.Line))
		} else {
			for i := 0; i+1 < len(stateNode.Content); i += 2 {
				typeText, _ := spec.ScalarValue(stateNode.Content[i+1])
				s.State = append(s.State, StateField{Name: stateNode.Content[i].Value, Type: typeText})
			}
		}
	}

	common, commonIssues := spec.ParsePredicateMap(spec.MappingGet(root, "common"), "common")
	issues = append(issues, commonIssues...)
	s.Common = common

	reactionsNode := spec.MappingGet(root, "reactions")
	switch {
	case reactionsNode == nil:
		issues = append(issues, spec.Structural(spec.CodeMissingField, "reactions", "",
			"reactions must list at least one reaction"))
	case reactionsNode.Kind != yaml.SequenceNode || len(reactionsNode.Content) == 0:
		issues = append(issues, spec.Structural(spec.CodeTypeMismatch, "reactions", "",
			"reactions must be a non-empty sequence").WithLine(reactionsNode.Line))
	default:
		for i, reactionNode := range reactionsNode.Content {
			reaction, reactionIssues := parseReaction(reactionNode, fmt.Sprintf("reactions[%d]", i))
			issues = append(issues, reactionIssues...)
			s.Reactions = append(s.Reactions, reaction)
		}
	}

	issues = append(issues, validate(s)...)
	return s, issues
}

func parseDeciderList(node *yaml.Node, path string) ([]string, spec.Issues) {
	var issues spec.Issues
	if node == nil {
		issues = append(issues, spec.Structural(spec.CodeMissingField, path, "",
			"%s must list at least one decider", path))
		return nil, issues
	}
	entryNodes := node.Content
	if node.Kind != yaml.SequenceNode {
		entryNodes = []*yaml.Node{node}
	}
	if len(entryNodes) == 0 {
		issues = append(issues, spec.Structural(spec.CodeTypeMismatch, path, "",
			"%s must not be empty", path).WithLine(node.Line))
		return nil, issues
	}
	var out []string
	for i, entryNode := range entryNodes {
		text, ok := spec.ScalarValue(entryNode)
		if !ok {
			issues = append(issues, spec.Structural(spec.CodeTypeMismatch,
				fmt.Sprintf("%s[%d]", path, i), "", "decider name must be a scalar").WithLine(entryNode.Line))
			continue
		}
		if _, issue := spec.ParseIdentifier(spec.PascalIdentifier, text); issue != nil {
			issue.Path = fmt.Sprintf("%s[%d]", path, i)
			issues = append(issues, issue.WithLine(entryNode.Line))
			continue
		}
		out = append(out, text)
	}
	return out, issues
}

func parseReaction(node *yaml.Node, path string) (Reaction, spec.Issues) {
	var issues spec.Issues
	r := Reaction{Mode: spec.TriggerAutomated, Line: node.Line}
	if node.Kind != yaml.MappingNode {
		issues = append(issues, spec.Structural(spec.CodeTypeMismatch, path, "",
			"reaction must be a mapping").WithLine(node.Line))
		return r, issues
	}

	trigger, triggerIssues := parseTrigger(spec.MappingGet(node, "When"), path+".When")
	issues = append(issues, triggerIssues...)
	r.Trigger = trigger

	if text, ok := spec.ScalarValue(spec.MappingGet(node, "From")); ok {
		if _, issue := spec.ParseIdentifier(spec.PascalIdentifier, text); issue != nil {
			issue.Path = path + ".From"
			issues = append(issues, *issue)
		} else {
			r.From = text
		}
	}

	if text, ok := spec.ScalarValue(spec.MappingGet(node, "correlate")); ok {
		r.Correlate = text
	}

	if text, ok := spec.ScalarValue(spec.MappingGet(node, "trigger")); ok {
		mode, valid := spec.ParseTriggerMode(text)
		if !valid {
			issues = append(issues, spec.Structural(spec.CodeTypeMismatch, path+".trigger", text,
				"trigger must be \"automated\" or \"policy\""))
		} else {
			r.Mode = mode
		}
	}

	if text, ok := spec.ScalarValue(spec.MappingGet(node, "actor")); ok {
		r.Actor = text
	}

	if andNode := spec.MappingGet(node, "And"); andNode != nil {
		and, andIssues := spec.ParseConstraintList(andNode, path+".And")
		issues = append(issues, andIssues...)
		r.And = and
	}

	then, thenIssues := parseThen(spec.MappingGet(node, "Then"), path+".Then")
	issues = append(issues, thenIssues...)
	r.Then = then

	outcome, outcomeIssues := spec.ParseOutcome(spec.MappingGet(node, "Outcome"), path+".Outcome")
	issues = append(issues, outcomeIssues...)
	r.Outcome = outcome

	return r, issues
}

// parseTrigger classifies the When clause by shape: a scalar event
// name, {any: [...]}, or {all: [...]}.
func parseTrigger(node *yaml.Node, path string) (Trigger, spec.Issues) {
	var issues spec.Issues
	if node == nil {
		issues = append(issues, spec.Structural(spec.CodeMissingField, path, "",
			"When is required"))
		return Trigger{}, issues
	}
	if text, ok := spec.ScalarValue(node); ok {
		if _, issue := spec.ParseIdentifier(spec.PascalIdentifier, text); issue != nil {
			issue.Path = path
			issues = append(issues, issue.WithLine(node.Line))
			return Trigger{}, issues
		}
		return Trigger{Kind: TriggerScalar, Event: text}, issues
	}
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		issues = append(issues, spec.Structural(spec.CodeTypeMismatch, path, "",
			"When must be an event name, {any: [...]}, or {all: [...]}").WithLine(node.Line))
		return Trigger{}, issues
	}
	keyNode, valueNode := node.Content[0], node.Content[1]
	switch keyNode.Value {
	case "any":
		events, eventIssues := parseAnyEvents(valueNode, path+".any")
		issues = append(issues, eventIssues...)
		return Trigger{Kind: TriggerAny, Events: events}, issues
	case "all":
		entries, entryIssues := parseAllEvents(valueNode, path+".all")
		issues = append(issues, entryIssues...)
		return Trigger{Kind: TriggerAll, All: entries}, issues
	default:
		issues = append(issues, spec.Structural(spec.CodeTypeMismatch, path, keyNode.Value,
			"unknown trigger form %q", keyNode.Value).WithLine(keyNode.Line))
		return Trigger{}, issues
	}
}

func parseAnyEvents(node *yaml.Node, path string) ([]string, spec.Issues) {
	var issues spec.Issues
	if node == nil || node.Kind != yaml.SequenceNode {
		issues = append(issues, spec.Structural(spec.CodeTypeMismatch, path, "",
			"any must be a sequence of event names"))
		return nil, issues
	}
	var events []string
	seen := make(map[string]bool)
	for i, entryNode := range node.Content {
		text, ok := spec.ScalarValue(entryNode)
		if !ok {
			issues = append(issues, spec.Structural(spec.CodeTypeMismatch,
				fmt.Sprintf("%s[%d]", path, i), "", "event name must be a scalar").WithLine(entryNode.Line))
			continue
		}
		if _, issue := spec.ParseIdentifier(spec.PascalIdentifier, text); issue != nil {
			issue.Path = fmt.Sprintf("%s[%d]", path, i)
			issues = append(issues, issue.WithLine(entryNode.Line))
			continue
		}
		if seen[text] {
			issues = append(issues, spec.Structural(spec.CodeTypeMismatch,
				fmt.Sprintf("%s[%d]", path, i), text,
				"duplicate event %s in any trigger", text).WithLine(entryNode.Line))
			continue
		}
		seen[text] = true
		events = append(events, text)
	}
	if len(events) < 2 {
		issues = append(issues, spec.Structural(spec.CodeTypeMismatch, path, "",
			"any trigger requires at least 2 distinct events, got %d", len(events)).WithLine(node.Line))
	}
	return events, issues
}

func parseAllEvents(node *yaml.Node, path string) ([]AllEvent, spec.Issues) {
	var issues spec.Issues
	if node == nil || node.Kind != yaml.SequenceNode {
		issues = append(issues, spec.Structural(spec.CodeTypeMismatch, path, "",
			"all must be a sequence of events"))
		return nil, issues
	}
	var entries []AllEvent
	for i, entryNode := range node.Content {
		entryPath := fmt.Sprintf("%s[%d]", path, i)
		text, ok := spec.ScalarValue(entryNode)
		if !ok {
			issues = append(issues, spec.Structural(spec.CodeTypeMismatch, entryPath, "",
				"all entry must be \"Event\" or \"Event from Decider\"").WithLine(entryNode.Line))
			continue
		}
		if m := eventFromPattern.FindStringSubmatch(text); m != nil {
			entries = append(entries, AllEvent{Event: m[1], From: m[2]})
			continue
		}
		if _, issue := spec.ParseIdentifier(spec.PascalIdentifier, text); issue != nil {
			issue.Path = entryPath
			issues = append(issues, issue.WithLine(entryNode.Line))
			continue
		}
		entries = append(entries, AllEvent{Event: text})
	}
	if len(entries) < 2 {
		issues = append(issues, spec.Structural(spec.CodeTypeMismatch, path, "",
			"all trigger requires at least 2 events, got %d", len(entries)).WithLine(node.Line))
	}
	return entries, issues
}

// parseThen decodes the command dispatch block. Every entry carries the
// "CommandName -> DeciderName" textual form, bare or as the single key
// of a conditional mapping.
func parseThen(node *yaml.Node, path string) ([]CommandSpec, spec.Issues) {
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
	var entries []CommandSpec
	for i, entryNode := range entryNodes {
		entryPath := fmt.Sprintf("%s[%d]", path, i)
		entry, entryIssues := parseThenEntry(entryNode, entryPath)
		issues = append(issues, entryIssues...)
		if entry.Command != "" {
			entries = append(entries, entry)
		}
	}
	return entries, issues
}

func parseThenEntry(node *yaml.Node, path string) (CommandSpec, spec.Issues) {
	var issues spec.Issues
	if text, ok := spec.ScalarValue(node); ok {
		command, target, issue := parseCommandTarget(text, path, node.Line)
		if issue != nil {
			issues = append(issues, *issue)
			return CommandSpec{}, issues
		}
		return CommandSpec{Command: command, Target: target}, issues
	}
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		issues = append(issues, spec.Structural(spec.CodeTypeMismatch, path, "",
			"Then entry must be \"Command -> Decider\" or a single-key conditional mapping").WithLine(node.Line))
		return CommandSpec{}, issues
	}
	keyNode, valueNode := node.Content[0], node.Content[1]
	command, target, issue := parseCommandTarget(keyNode.Value, path, keyNode.Line)
	if issue != nil {
		issues = append(issues, *issue)
		return CommandSpec{}, issues
	}
	conditions, conditionIssues := spec.ParseConstraintList(valueNode, path+"."+keyNode.Value)
	issues = append(issues, conditionIssues...)
	return CommandSpec{Command: command, Target: target, Conditions: conditions}, issues
}

func parseCommandTarget(text, path string, line int) (string, string, *spec.Issue) {
	m := commandTargetPattern.FindStringSubmatch(text)
	if m == nil {
		issue := spec.Structural(spec.CodePatternMismatch, path, text,
			"%q does not match \"Command -> Decider\"", text).WithLine(line)
		return "", "", &issue
	}
	return m[1], m[2], nil
}
