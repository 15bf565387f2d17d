package spec

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// PredicateEntry is one named boolean condition in a constraint or
// assertion list. It is authored either as a bare kebab name (a
// reference into the document's common map) or as a single-key mapping
// from name to expression text.
//
// The expression is opaque: the four detail levels (absent, scope
// annotation, prose, executable expression) share this one string slot
// and are distinguished only by convention.
type PredicateEntry struct {
	Name string `json:"name"`
	Expr string `json:"expr,omitempty"`

	// Bare is true when the entry was written as a bare name.
	Bare bool `json:"bare,omitempty"`

	// Hint carries an adjacent "# shell: <hint>" comment, when present.
	Hint string `json:"hint,omitempty"`

	// Line is the source line, for issue reporting.
	Line int `json:"-"`
}

// ParsePredicateEntry decodes one entry node. A mapping entry must have
// exactly one key; anything else fails with MultiKeyInlinePredicate.
func ParsePredicateEntry(node *yaml.Node, path string) (PredicateEntry, *Issue) {
	if v, ok := ScalarValue(node); ok {
		if !ValidKebab(v) {
			issue := Structural(CodeInvalidIdentifier, path, v,
				"predicate name %q is not kebab-case", v).WithLine(node.Line)
			return PredicateEntry{}, &issue
		}
		return PredicateEntry{Name: v, Bare: true, Hint: ShellHint(node), Line: node.Line}, nil
	}
	if node == nil || node.Kind != yaml.MappingNode {
		issue := Structural(CodeTypeMismatch, path, "",
			"predicate entry must be a name or a single-key mapping")
		if node != nil {
			issue = issue.WithLine(node.Line)
		}
		return PredicateEntry{}, &issue
	}
	if len(node.Content) != 2 {
		issue := Structural(CodeMultiKeyInlinePredicate, path, "",
			"inline predicate mapping must have exactly one key, got %d", len(node.Content)/2).WithLine(node.Line)
		return PredicateEntry{}, &issue
	}
	keyNode, valueNode := node.Content[0], node.Content[1]
	name := keyNode.Value
	if !ValidKebab(name) {
		issue := Structural(CodeInvalidIdentifier, path, name,
			"predicate name %q is not kebab-case", name).WithLine(keyNode.Line)
		return PredicateEntry{}, &issue
	}
	expr, ok := ExpressionText(valueNode)
	if !ok {
		issue := Structural(CodeTypeMismatch, path, name,
			"predicate %q has a non-text expression value", name).WithLine(valueNode.Line)
		return PredicateEntry{}, &issue
	}
	hint := ShellHint(valueNode)
	if hint == "" {
		hint = ShellHint(keyNode)
	}
	return PredicateEntry{Name: name, Expr: expr, Hint: hint, Line: keyNode.Line}, nil
}

// MarshalYAML renders the entry back in its authored shape.
func (e PredicateEntry) MarshalYAML() (any, error) {
	if e.Bare {
		return e.Name, nil
	}
	return map[string]string{e.Name: e.Expr}, nil
}

// ConstraintList is an ordered, non-empty sequence of predicate entries
// with AND semantics: all must hold.
type ConstraintList []PredicateEntry

// ParseConstraintList decodes a sequence of predicate entries. A single
// bare scalar is accepted as a one-entry list.
func ParseConstraintList(node *yaml.Node, path string) (ConstraintList, Issues) {
	var issues Issues
	if node == nil {
		issues = append(issues, Structural(CodeMissingField, path, "", "constraint list is missing"))
		return nil, issues
	}
	entryNodes := node.Content
	if node.Kind != yaml.SequenceNode {
		entryNodes = []*yaml.Node{node}
	}
	if len(entryNodes) == 0 {
		issues = append(issues, Structural(CodeTypeMismatch, path, "",
			"constraint list must not be empty").WithLine(node.Line))
		return nil, issues
	}
	list := make(ConstraintList, 0, len(entryNodes))
	for i, entryNode := range entryNodes {
		entry, issue := ParsePredicateEntry(entryNode, fmt.Sprintf("%s[%d]", path, i))
		if issue != nil {
			issues = append(issues, *issue)
			continue
		}
		list = append(list, entry)
	}
	return list, issues
}

// Names returns the entry names in declaration order.
func (l ConstraintList) Names() []string {
	names := make([]string, len(l))
	for i, e := range l {
		names[i] = e.Name
	}
	return names
}

// Has reports whether the list contains an entry with the given name.
func (l ConstraintList) Has(name string) bool {
	for _, e := range l {
		if e.Name == name {
			return true
		}
	}
	return false
}

// PredicateDef is one named definition in a document's common map.
type PredicateDef struct {
	Name string `json:"name"`
	Expr string `json:"expr,omitempty"`
	Hint string `json:"hint,omitempty"`
	Line int    `json:"-"`
}

// PredicateMap is the ordered common map of a document: shared
// predicate definitions referenced by bare name from constraint lists.
type PredicateMap []PredicateDef

// ParsePredicateMap decodes a common mapping, validating each key as a
// kebab identifier. Null values are allowed (name-only definitions).
func ParsePredicateMap(node *yaml.Node, path string) (PredicateMap, Issues) {
	var issues Issues
	if node == nil {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		issues = append(issues, Structural(CodeTypeMismatch, path, "",
			"common must be a mapping").WithLine(node.Line))
		return nil, issues
	}
	m := make(PredicateMap, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]
		name := keyNode.Value
		if !ValidKebab(name) {
			issues = append(issues, Structural(CodeInvalidIdentifier,
				fmt.Sprintf("%s.%s", path, name), name,
				"common key %q is not kebab-case", name).WithLine(keyNode.Line))
			continue
		}
		expr, ok := ExpressionText(valueNode)
		if !ok {
			issues = append(issues, Structural(CodeTypeMismatch,
				fmt.Sprintf("%s.%s", path, name), name,
				"common entry %q has a non-text value", name).WithLine(valueNode.Line))
			continue
		}
		hint := ShellHint(valueNode)
		if hint == "" {
			hint = ShellHint(keyNode)
		}
		m = append(m, PredicateDef{Name: name, Expr: expr, Hint: hint, Line: keyNode.Line})
	}
	return m, issues
}

// Has reports whether the map defines the given name.
func (m PredicateMap) Has(name string) bool {
	for _, d := range m {
		if d.Name == name {
			return true
		}
	}
	return false
}

// Get returns the definition for name.
func (m PredicateMap) Get(name string) (PredicateDef, bool) {
	for _, d := range m {
		if d.Name == name {
			return d, true
		}
	}
	return PredicateDef{}, false
}

// MarshalYAML renders the map as an ordered YAML mapping.
func (m PredicateMap) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, d := range m {
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: d.Name}
		valueNode := &yaml.Node{Kind: yaml.ScalarNode, Value: d.Expr}
		if d.Expr == "" {
			valueNode.Tag = "!!null"
			valueNode.Value = ""
		}
		node.Content = append(node.Content, keyNode, valueNode)
	}
	return node, nil
}
