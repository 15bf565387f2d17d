package loader

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/mean-machine-gc/ubispec/spec"
)

// DefaultPatterns match the conventional document naming.
var DefaultPatterns = []string{"**/*.ubi.yaml", "**/*.ubi.yml"}

// DefaultExcludeDirs are skipped during discovery.
var DefaultExcludeDirs = []string{".git", "node_modules", "vendor"}

// Discover resolves the glob patterns under root, skipping excluded
// directories, and returns a sorted, de-duplicated path list.
func Discover(root string, patterns, excludeDirs []string) ([]string, error) {
	if len(excludeDirs) == 0 {
		excludeDirs = DefaultExcludeDirs
	}
	excluded := make(map[string]bool, len(excludeDirs))
	for _, d := range excludeDirs {
		excluded[d] = true
	}

	seen := make(map[string]bool)
	var paths []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(filepath.Join(root, pattern))
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, m := range matches {
			if seen[m] || inExcludedDir(m, excluded) {
				continue
			}
			seen[m] = true
			paths = append(paths, m)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func inExcludedDir(path string, excluded map[string]bool) bool {
	for _, part := range strings.Split(filepath.ToSlash(filepath.Dir(path)), "/") {
		if excluded[part] {
			return true
		}
	}
	return false
}

// SniffKind reads only the ubispec header field to classify a document
// before full parsing.
func SniffKind(data []byte) (spec.Kind, error) {
	var header struct {
		Ubispec string `yaml:"ubispec"`
	}
	if err := yaml.Unmarshal(data, &header); err != nil {
		// Full decode may fail on shapes the node-level parsers accept;
		// fall back to a line scan for the header field.
		header.Ubispec = scanHeaderLine(data)
	}
	if header.Ubispec == "" {
		return "", fmt.Errorf("document has no ubispec field")
	}
	v, issue := spec.ParseFormatVersion(header.Ubispec)
	if issue != nil {
		return "", fmt.Errorf("%s", issue.Message)
	}
	return v.Kind, nil
}

func scanHeaderLine(data []byte) string {
	for _, line := range bytes.Split(data, []byte("\n")) {
		trimmed := strings.TrimSpace(string(line))
		if rest, ok := strings.CutPrefix(trimmed, "ubispec:"); ok {
			return strings.Trim(strings.TrimSpace(rest), `"'`)
		}
	}
	return ""
}
