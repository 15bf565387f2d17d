// Package system models the module/flow topology map tying multiple
// lifecycle and process documents together: the System document kind.
// Flows describe cross-module event-to-command coordination; anything
// inside one module belongs in a process document instead.
package system

import (
	"fmt"

	"github.com/mean-machine-gc/ubispec/spec"
	"gopkg.in/yaml.v3"
)

// Spec is a parsed System document.
type Spec struct {
	Version     spec.FormatVersion `json:"ubispec"`
	System      string             `json:"system"`
	Description string             `json:"description,omitempty"`
	Modules     []Module           `json:"modules"`
	Flows       []Flow             `json:"flows,omitempty"`
}

// Module groups deciders under one bounded context.
type Module struct {
	Name        string   `json:"name"`
	Context     string   `json:"context"`
	Deciders    []string `json:"deciders"`
	Description string   `json:"description,omitempty"`
	Line        int      `json:"-"`
}

// Flow is one cross-module coordination edge: an event from one module
// triggering a command on another.
type Flow struct {
	Event    string           `json:"event"`
	From     string           `json:"from"`
	Triggers string           `json:"triggers"`
	On       string           `json:"on"`
	Mode     spec.TriggerMode `json:"trigger"`
	Actor    string           `json:"actor,omitempty"`
	Line     int              `json:"-"`
}

// Module returns the named module.
func (s *Spec) Module(name string) (Module, bool) {
	for _, m := range s.Modules {
		if m.Name == name {
			return m, true
		}
	}
	return Module{}, false
}

// DeciderModule returns the module declaring the decider.
func (s *Spec) DeciderModule(decider string) (Module, bool) {
	for _, m := range s.Modules {
		for _, d := range m.Deciders {
			if d == decider {
				return m, true
			}
		}
	}
	return Module{}, false
}

// Parse decodes and validates a System document, collecting every
// problem in one pass.
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
			"system document must be a mapping"))
		return nil, issues
	}

	s := &Spec{}

	if text, ok := spec.ScalarValue(spec.MappingGet(root, "ubispec")); !ok {
		issues = append(issues, spec.Structural(spec.CodeMissingField, "ubispec", "",
			"ubispec format field is required"))
	} else if v, issue := spec.ParseFormatVersion(text); issue != nil {
		issues = append(issues, *issue)
	} else if v.Kind != spec.KindSystem {
		issues = append(issues, spec.Structural(spec.CodeTypeMismatch, "ubispec", text,
			"expected a system document, got %s", v.Kind))
	} else {
		s.Version = v
	}

	if text, ok := spec.ScalarValue(spec.MappingGet(root, "system")); !ok {
		issues = append(issues, spec.Structural(spec.CodeMissingField, "system", "",
			"system name is required"))
	} else if _, issue := spec.ParseIdentifier(spec.PascalIdentifier, text); issue != nil {
		issue.Path = "system"
		issues = append(issues, *issue)
	} else {
		s.System = text
	}

	if text, ok := spec.ScalarValue(spec.MappingGet(root, "description")); ok {
		s.Description = text
	}

	modulesNode := spec.MappingGet(root, "modules")
	switch {
	case modulesNode == nil:
		issues = append(issues, spec.Structural(spec.CodeMissingField, "modules", "",
			"modules must list at least one module"))
	case modulesNode.Kind != yaml.SequenceNode || len(modulesNode.Content) == 0:
		issues = append(issues, spec.Structural(spec.CodeTypeMismatch, "modules", "",
			"modules must be a non-empty sequence").WithLine(modulesNode.Line))
	default:
		for i, moduleNode := range modulesNode.Content {
			module, moduleIssues := parseModule(moduleNode, fmt.Sprintf("modules[%d]", i))
			issues = append(issues, moduleIssues...)
			s.Modules = append(s.Modules, module)
		}
	}

	if flowsNode := spec.MappingGet(root, "flows"); flowsNode != nil {
		if flowsNode.Kind != yaml.SequenceNode {
			issues = append(issues, spec.Structural(spec.CodeTypeMismatch, "flows", "",
				"flows must be a sequence").WithLine(flowsNode.Line))
		} else {
			for i, flowNode := range flowsNode.Content {
				flow, flowIssues := parseFlow(flowNode, fmt.Sprintf("flows[%d]", i))
				issues = append(issues, flowIssues...)
				s.Flows = append(s.Flows, flow)
			}
		}
	}

	issues = append(issues, validate(s)...)
	return s, issues
}

func parseModule(node *yaml.Node, path string) (Module, spec.Issues) {
	var issues spec.Issues
	m := Module{Line: node.Line}
	if node.Kind != yaml.MappingNode {
		issues = append(issues, spec.Structural(spec.CodeTypeMismatch, path, "",
			"module must be a mapping").WithLine(node.Line))
		return m, issues
	}
	for _, field := range []struct {
		key      string
		dest     *string
		required bool
	}{
		{"name", &m.Name, true},
		{"context", &m.Context, true},
		{"description", &m.Description, false},
	} {
		text, ok := spec.ScalarValue(spec.MappingGet(node, field.key))
		if !ok {
			if field.required {
				issues = append(issues, spec.Structural(spec.CodeMissingField,
					path+"."+field.key, "", "%s is required", field.key).WithLine(node.Line))
			}
			continue
		}
		*field.dest = text
	}
	if m.Name != "" && !spec.ValidPascal(m.Name) {
		issues = append(issues, spec.Structural(spec.CodePatternMismatch, path+".name", m.Name,
			"%q is not a PascalCase identifier", m.Name).WithLine(node.Line))
	}
	if m.Context != "" && !spec.ValidPascal(m.Context) {
		issues = append(issues, spec.Structural(spec.CodePatternMismatch, path+".context", m.Context,
			"%q is not a PascalCase identifier", m.Context).WithLine(node.Line))
	}

	decidersNode := spec.MappingGet(node, "deciders")
	switch {
	case decidersNode == nil:
		issues = append(issues, spec.Structural(spec.CodeMissingField, path+".deciders", "",
			"deciders must list at least one decider").WithLine(node.Line))
	case decidersNode.Kind != yaml.SequenceNode || len(decidersNode.Content) == 0:
		issues = append(issues, spec.Structural(spec.CodeTypeMismatch, path+".deciders", "",
			"deciders must be a non-empty sequence").WithLine(decidersNode.Line))
	default:
		for i, deciderNode := range decidersNode.Content {
			text, ok := spec.ScalarValue(deciderNode)
			if !ok || !spec.ValidPascal(text) {
				issues = append(issues, spec.Structural(spec.CodePatternMismatch,
					fmt.Sprintf("%s.deciders[%d]", path, i), text,
					"decider name must be a PascalCase identifier").WithLine(deciderNode.Line))
				continue
			}
			m.Deciders = append(m.Deciders, text)
		}
	}
	return m, issues
}

func parseFlow(node *yaml.Node, path string) (Flow, spec.Issues) {
	var issues spec.Issues
	f := Flow{Mode: spec.TriggerAutomated, Line: node.Line}
	if node.Kind != yaml.MappingNode {
		issues = append(issues, spec.Structural(spec.CodeTypeMismatch, path, "",
			"flow must be a mapping").WithLine(node.Line))
		return f, issues
	}
	for _, field := range []struct {
		key  string
		dest *string
	}{
		{"event", &f.Event},
		{"from", &f.From},
		{"triggers", &f.Triggers},
		{"on", &f.On},
	} {
		text, ok := spec.ScalarValue(spec.MappingGet(node, field.key))
		if !ok {
			issues = append(issues, spec.Structural(spec.CodeMissingField,
				path+"."+field.key, "", "%s is required", field.key).WithLine(node.Line))
			continue
		}
		if !spec.ValidPascal(text) {
			issues = append(issues, spec.Structural(spec.CodePatternMismatch,
				path+"."+field.key, text, "%q is not a PascalCase identifier", text).WithLine(node.Line))
			continue
		}
		*field.dest = text
	}
	if text, ok := spec.ScalarValue(spec.MappingGet(node, "trigger")); ok {
		mode, valid := spec.ParseTriggerMode(text)
		if !valid {
			issues = append(issues, spec.Structural(spec.CodeTypeMismatch, path+".trigger", text,
				"trigger must be \"automated\" or \"policy\""))
		} else {
			f.Mode = mode
		}
	}
	if text, ok := spec.ScalarValue(spec.MappingGet(node, "actor")); ok {
		f.Actor = text
	}
	return f, issues
}

// validate runs the in-document topology checks: module-name
// uniqueness, flow endpoint membership, the no-self-flow rule, and the
// policy-actor rule.
func validate(s *Spec) spec.Issues {
	var issues spec.Issues

	declared := make(map[string]int)
	for i, m := range s.Modules {
		if m.Name == "" {
			continue
		}
		if first, dup := declared[m.Name]; dup {
			issues = append(issues, spec.Reference(spec.CodeDuplicateModule,
				fmt.Sprintf("modules[%d].name", i), m.Name,
				"module %s already declared at modules[%d]", m.Name, first).WithLine(m.Line))
			continue
		}
		declared[m.Name] = i
	}

	for i, f := range s.Flows {
		path := fmt.Sprintf("flows[%d]", i)
		for _, endpoint := range []struct {
			key  string
			name string
		}{{"from", f.From}, {"on", f.On}} {
			if endpoint.name == "" {
				continue
			}
			if _, ok := declared[endpoint.name]; !ok {
				issues = append(issues, spec.Reference(spec.CodeUndeclaredModule,
					path+"."+endpoint.key, endpoint.name,
					"module %s is not declared", endpoint.name).WithLine(f.Line))
			}
		}
		if f.From != "" && f.From == f.On {
			issues = append(issues, spec.Reference(spec.CodeSelfFlow, path, f.From,
				"flow stays inside module %s; intra-module coordination belongs in a process document", f.From).WithLine(f.Line))
		}
		if f.Mode == spec.TriggerPolicy && f.Actor == "" {
			issues = append(issues, spec.Reference(spec.CodeMissingActor, path, f.Triggers,
				"policy flows require an actor").WithLine(f.Line))
		}
	}
	return issues
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
	if err := add("system", s.System); err != nil {
		return nil, err
	}
	if s.Description != "" {
		if err := add("description", s.Description); err != nil {
			return nil, err
		}
	}
	if err := add("modules", s.Modules); err != nil {
		return nil, err
	}
	if len(s.Flows) > 0 {
		if err := add("flows", s.Flows); err != nil {
			return nil, err
		}
	}
	return node, nil
}

// MarshalYAML renders the module in its authored shape.
func (m Module) MarshalYAML() (any, error) {
	out := map[string]any{
		"name":     m.Name,
		"context":  m.Context,
		"deciders": m.Deciders,
	}
	if m.Description != "" {
		out["description"] = m.Description
	}
	return out, nil
}

// MarshalYAML renders the flow in its authored shape.
func (f Flow) MarshalYAML() (any, error) {
	out := map[string]any{
		"event":    f.Event,
		"from":     f.From,
		"triggers": f.Triggers,
		"on":       f.On,
	}
	if f.Mode != spec.TriggerAutomated {
		out["trigger"] = string(f.Mode)
	}
	if f.Actor != "" {
		out["actor"] = f.Actor
	}
	return out, nil
}
