package spec

import (
	"fmt"
	"regexp"
	"strconv"
)

// Kind identifies a document kind.
type Kind string

const (
	// KindLifecycle is an aggregate command/event/outcome contract.
	KindLifecycle Kind = "lifecycle"
	// KindProcess is a cross-aggregate coordination document.
	KindProcess Kind = "process"
	// KindSystem is a module/flow topology map.
	KindSystem Kind = "system"
)

// FormatVersion is the parsed "ubispec" header field:
// "<kind>/v<major>.<minor>". Minor bumps add optional fields only, so
// any minor under a supported major is accepted; an unknown major
// requires explicit migration and is rejected.
type FormatVersion struct {
	Kind  Kind `json:"kind"`
	Major int  `json:"major"`
	Minor int  `json:"minor"`
}

var versionPattern = regexp.MustCompile(`^(lifecycle|process|system)/v(\d+)\.(\d+)$`)

// Supported major versions per kind.
var supportedMajor = map[Kind]int{
	KindLifecycle: 1,
	KindProcess:   1,
	KindSystem:    1,
}

// ParseFormatVersion parses and checks a ubispec header value.
func ParseFormatVersion(text string) (FormatVersion, *Issue) {
	m := versionPattern.FindStringSubmatch(text)
	if m == nil {
		issue := Structural(CodePatternMismatch, "ubispec", text,
			"%q does not match \"<kind>/v<major>.<minor>\"", text)
		return FormatVersion{}, &issue
	}
	major, _ := strconv.Atoi(m[2])
	minor, _ := strconv.Atoi(m[3])
	v := FormatVersion{Kind: Kind(m[1]), Major: major, Minor: minor}
	if supportedMajor[v.Kind] != v.Major {
		issue := Structural(CodeUnsupportedVersion, "ubispec", text,
			"unsupported %s major version %d (supported: %d)", v.Kind, v.Major, supportedMajor[v.Kind])
		return FormatVersion{}, &issue
	}
	return v, nil
}

// String renders the header form, e.g. "lifecycle/v1.0".
func (v FormatVersion) String() string {
	return fmt.Sprintf("%s/v%d.%d", v.Kind, v.Major, v.Minor)
}

// MarshalYAML renders the version as its header string.
func (v FormatVersion) MarshalYAML() (any, error) {
	return v.String(), nil
}

// TriggerMode says whether a reaction or flow fires automatically or
// through a human policy decision.
type TriggerMode string

const (
	// TriggerAutomated reactions fire without human involvement.
	TriggerAutomated TriggerMode = "automated"
	// TriggerPolicy reactions require a named actor.
	TriggerPolicy TriggerMode = "policy"
)

// ParseTriggerMode parses the trigger field, defaulting to automated
// when text is empty.
func ParseTriggerMode(text string) (TriggerMode, bool) {
	switch TriggerMode(text) {
	case "":
		return TriggerAutomated, true
	case TriggerAutomated, TriggerPolicy:
		return TriggerMode(text), true
	}
	return "", false
}
