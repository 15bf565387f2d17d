package spec

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// Helpers for walking yaml.Node trees. The polymorphic shapes of the
// notation (bare scalar vs single-key mapping, flat vs keyed outcome)
// make node-level decoding simpler and more precise than struct tags,
// and it keeps source line numbers for issue reporting.

// DocumentRoot unwraps a document node to its content mapping.
func DocumentRoot(node *yaml.Node) *yaml.Node {
	if node != nil && node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		return node.Content[0]
	}
	return node
}

// IsNull reports whether the node is absent or an explicit YAML null.
func IsNull(node *yaml.Node) bool {
	if node == nil {
		return true
	}
	return node.Kind == yaml.ScalarNode && (node.Tag == "!!null" || node.Value == "~")
}

// ScalarValue returns the node's scalar text, or false when the node is
// not a non-null scalar.
func ScalarValue(node *yaml.Node) (string, bool) {
	if node == nil || node.Kind != yaml.ScalarNode || IsNull(node) {
		return "", false
	}
	return node.Value, true
}

// MappingGet returns the value node for key, or nil.
func MappingGet(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

// MappingKeys returns the mapping's keys in document order.
func MappingKeys(node *yaml.Node) []string {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	keys := make([]string, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keys = append(keys, node.Content[i].Value)
	}
	return keys
}

// ExpressionText extracts predicate-expression text from a value node.
// Scalars are returned verbatim; a sequence of scalar scope paths is
// rendered in flow form ("[a.b, c.d]") so the expression slot stays a
// single opaque string. Nulls yield "".
func ExpressionText(node *yaml.Node) (string, bool) {
	if IsNull(node) {
		return "", true
	}
	if v, ok := ScalarValue(node); ok {
		return v, true
	}
	if node.Kind == yaml.SequenceNode {
		parts := make([]string, 0, len(node.Content))
		for _, item := range node.Content {
			v, ok := ScalarValue(item)
			if !ok {
				return "", false
			}
			parts = append(parts, v)
		}
		return "[" + strings.Join(parts, ", ") + "]", true
	}
	return "", false
}

// ShellHint extracts the "# shell: <hint>" comment attached to a node,
// checking the line comment first and then the head comment. Returns ""
// when no shell hint is present.
func ShellHint(node *yaml.Node) string {
	if node == nil {
		return ""
	}
	for _, comment := range []string{node.LineComment, node.HeadComment, node.FootComment} {
		if hint := parseShellHint(comment); hint != "" {
			return hint
		}
	}
	return ""
}

func parseShellHint(comment string) string {
	for _, line := range strings.Split(comment, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "#"))
		if rest, ok := strings.CutPrefix(line, "shell:"); ok {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}
