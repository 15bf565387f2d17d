// Package export serializes derived artifacts for the documentation
// layer: Markdown tables, JSON and YAML records, and DOT graph text.
package export

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Format specifies the output serialization format.
type Format string

const (
	// FormatMarkdown produces GitHub-flavored Markdown tables.
	FormatMarkdown Format = "markdown"

	// FormatJSON produces indented JSON records.
	FormatJSON Format = "json"

	// FormatYAML produces YAML documents.
	FormatYAML Format = "yaml"

	// FormatDOT produces Graphviz DOT text, for topology graphs only.
	FormatDOT Format = "dot"
)

// FormatInfo provides metadata about an export format.
type FormatInfo struct {
	// Name is the format identifier.
	Name Format

	// MIMEType is the standard MIME type.
	MIMEType string

	// Extension is the file extension (with dot).
	Extension string

	// Description describes the format.
	Description string
}

// FormatRegistry contains metadata for all supported formats.
var FormatRegistry = map[Format]FormatInfo{
	FormatMarkdown: {
		Name:        FormatMarkdown,
		MIMEType:    "text/markdown",
		Extension:   ".md",
		Description: "Markdown - GitHub-flavored tables",
	},
	FormatJSON: {
		Name:        FormatJSON,
		MIMEType:    "application/json",
		Extension:   ".json",
		Description: "JSON - indented structured records",
	},
	FormatYAML: {
		Name:        FormatYAML,
		MIMEType:    "application/yaml",
		Extension:   ".yaml",
		Description: "YAML - structured records",
	},
	FormatDOT: {
		Name:        FormatDOT,
		MIMEType:    "text/vnd.graphviz",
		Extension:   ".dot",
		Description: "DOT - Graphviz graph description",
	},
}

// GetFormatInfo returns metadata for a format.
func GetFormatInfo(format Format) (FormatInfo, bool) {
	info, ok := FormatRegistry[format]
	return info, ok
}

// ParseFormat validates a format name from user input.
func ParseFormat(name string) (Format, error) {
	f := Format(name)
	if _, ok := FormatRegistry[f]; !ok {
		return "", fmt.Errorf("unsupported format %q (markdown, json, yaml, dot)", name)
	}
	return f, nil
}

// Structured serializes any artifact record set as JSON or YAML.
func Structured(format Format, v any) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(v, "", "  ")
	case FormatYAML:
		return yaml.Marshal(v)
	default:
		return nil, fmt.Errorf("format %s does not carry structured records", format)
	}
}
