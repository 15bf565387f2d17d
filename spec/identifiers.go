package spec

import "regexp"

// IdentifierKind selects one of the two lexical identifier classes.
type IdentifierKind string

const (
	// PascalIdentifier names commands, events, deciders, processes,
	// and modules.
	PascalIdentifier IdentifierKind = "pascal"

	// KebabIdentifier names predicates, constraints, and assertions.
	// Kebab names must read as natural language.
	KebabIdentifier IdentifierKind = "kebab"
)

// Pre-compiled identifier class patterns.
var (
	pascalPattern = regexp.MustCompile(`^[A-Z][a-zA-Z0-9]*$`)
	kebabPattern  = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)
)

// ValidPascal reports whether text is a well-formed PascalCase identifier.
func ValidPascal(text string) bool {
	return pascalPattern.MatchString(text)
}

// ValidKebab reports whether text is a well-formed kebab-case identifier.
func ValidKebab(text string) bool {
	return kebabPattern.MatchString(text)
}

// ParseIdentifier validates text against the named class. On mismatch it
// returns a PatternMismatch issue; mixing classes is always an error.
func ParseIdentifier(kind IdentifierKind, text string) (string, *Issue) {
	switch kind {
	case PascalIdentifier:
		if !ValidPascal(text) {
			issue := Structural(CodePatternMismatch, "", text,
				"%q is not a PascalCase identifier", text)
			return "", &issue
		}
	case KebabIdentifier:
		if !ValidKebab(text) {
			issue := Structural(CodePatternMismatch, "", text,
				"%q is not a kebab-case identifier", text)
			return "", &issue
		}
	default:
		issue := Structural(CodePatternMismatch, "", text,
			"unknown identifier kind %q", kind)
		return "", &issue
	}
	return text, nil
}
