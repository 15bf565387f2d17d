package spec

import (
	"regexp"
	"strings"
)

// DetailLevel is the heuristic classification of a predicate
// expression's authoring level. It exists for tooling ergonomics only
// (documentation output, dependency-manifest hints); validation never
// branches on it, since the notation does not distinguish the levels
// structurally.
type DetailLevel int

const (
	// DetailAbsent: name only, no expression text.
	DetailAbsent DetailLevel = iota
	// DetailScope: a namespace path or list of paths ("dm.ctx",
	// "[om.state, dm.cmd]").
	DetailScope
	// DetailProse: a free natural-language sentence.
	DetailProse
	// DetailExpression: an executable boolean expression.
	DetailExpression
)

// String returns the level name.
func (d DetailLevel) String() string {
	switch d {
	case DetailAbsent:
		return "absent"
	case DetailScope:
		return "scope"
	case DetailProse:
		return "prose"
	case DetailExpression:
		return "expression"
	}
	return "unknown"
}

var scopePathPattern = regexp.MustCompile(`^[a-z][a-zA-Z0-9_]*(\.[a-zA-Z0-9_]+)+$`)

// operatorChars distinguish executable expressions from prose.
const operatorChars = "=&|<>!()[]+"

// ClassifyDetail applies the documented heuristic: absence is level 1,
// a namespace-path grammar match is level 2, text without dots or
// operators is level 3, anything else is level 4.
func ClassifyDetail(expr string) DetailLevel {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return DetailAbsent
	}
	if paths := ScopePaths(expr); paths != nil {
		return DetailScope
	}
	if !strings.Contains(expr, ".") && !strings.ContainsAny(expr, operatorChars) {
		return DetailProse
	}
	return DetailExpression
}

// ScopePaths returns the namespace paths of a scope annotation, or nil
// when the expression is not one. Accepts a single path or a flow list
// of paths.
func ScopePaths(expr string) []string {
	expr = strings.TrimSpace(expr)
	if strings.HasPrefix(expr, "[") && strings.HasSuffix(expr, "]") {
		expr = expr[1 : len(expr)-1]
	} else if strings.Contains(expr, ",") {
		return nil
	}
	parts := strings.Split(expr, ",")
	paths := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if !scopePathPattern.MatchString(part) {
			return nil
		}
		paths = append(paths, part)
	}
	return paths
}
