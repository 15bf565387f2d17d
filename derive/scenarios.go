package derive

import (
	"fmt"
	"strings"
)

// Scenario is one test scenario derived from a decision-table row. The
// setup and expectation text is synthesized mechanically from the
// constraint and condition names.
type Scenario struct {
	ID       string   `json:"id"`
	Decider  string   `json:"decider"`
	Command  string   `json:"command"`
	Given    []string `json:"given"`
	When     string   `json:"when"`
	Then     []string `json:"then"`
	Outcomes []string `json:"outcomes,omitempty"`
}

// Scenarios derives one scenario per decision-table row across every
// lifecycle document. IDs are the command's first three letters,
// uppercased, with a zero-padded sequence unique per command.
func (e *Engine) Scenarios(opts TableOptions) []Scenario {
	var out []Scenario
	for _, l := range e.set.Lifecycles {
		for _, d := range l.Lifecycle {
			table := buildTable(l.Decider, d, opts)
			prefix := scenarioPrefix(d.When)
			for i, row := range table.Rows {
				s := Scenario{
					ID:      fmt.Sprintf("%s-%03d", prefix, i+1),
					Decider: l.Decider,
					Command: d.When,
					When:    SentenceCase(kebabFromPascal(d.When)),
				}
				for j, column := range table.Columns {
					state := "holds"
					if !row.Truth[j] {
						state = "does not hold"
					}
					s.Given = append(s.Given, fmt.Sprintf("%s %s", SentenceCase(column), state))
				}
				if row.Kind == RowSuccess {
					for _, event := range row.Events {
						s.Then = append(s.Then, event+" is emitted")
					}
					// Expected outcome text: universal assertions plus
					// the groups keyed by events fired in this row.
					seen := make(map[string]bool)
					for _, a := range d.Outcome.Always {
						if !seen[a.Name] {
							seen[a.Name] = true
							s.Outcomes = append(s.Outcomes, SentenceCase(a.Name))
						}
					}
					for _, event := range row.Events {
						for _, entry := range d.Outcome.Keyed {
							if entry.Key != event {
								continue
							}
							for _, a := range entry.Assertions {
								if !seen[a.Name] {
									seen[a.Name] = true
									s.Outcomes = append(s.Outcomes, SentenceCase(a.Name))
								}
							}
						}
					}
				} else {
					s.Then = append(s.Then, row.Output)
				}
				out = append(out, s)
			}
		}
	}
	return out
}

func scenarioPrefix(command string) string {
	if len(command) < 3 {
		return strings.ToUpper(command)
	}
	return strings.ToUpper(command[:3])
}

// SentenceCase turns a kebab name into sentence text:
// "registry-is-submitted" reads "Registry is submitted".
func SentenceCase(name string) string {
	text := strings.ReplaceAll(name, "-", " ")
	if text == "" {
		return text
	}
	return strings.ToUpper(text[:1]) + text[1:]
}

// kebabFromPascal lowers a PascalCase name into kebab form so it can be
// sentence-cased alongside predicate names.
func kebabFromPascal(name string) string {
	var sb strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				sb.WriteByte('-')
			}
			sb.WriteRune(r - 'A' + 'a')
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
