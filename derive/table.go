package derive

import (
	"fmt"
	"strings"

	"github.com/mean-machine-gc/ubispec/lifecycle"
)

// TableOptions configures decision-table generation.
type TableOptions struct {
	// IncludeAllFail adds one row with every constraint violated.
	IncludeAllFail bool
}

// RowKind tags success and failure rows.
type RowKind string

const (
	// RowSuccess rows have all constraints true.
	RowSuccess RowKind = "success"
	// RowFailure rows violate one or more constraints.
	RowFailure RowKind = "failure"
)

// Row is one decision-table row. Truth is aligned with the table's
// Columns: constraint truth values first, then conditional-event
// condition flags.
type Row struct {
	Kind   RowKind  `json:"kind"`
	Truth  []bool   `json:"truth"`
	Events []string `json:"events,omitempty"` // fired event set, success rows
	Failed []string `json:"failed,omitempty"` // violated constraints, failure rows
	Output string   `json:"output"`
}

// Table is the decision table of one command: columns for every
// constraint and every conditional event's condition set, success rows
// enumerating all 2^k combinations of the k conditional events, and
// one minimal-violation failure row per constraint.
type Table struct {
	Decider string   `json:"decider"`
	Command string   `json:"command"`
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// SuccessRows returns the success subset.
func (t *Table) SuccessRows() []Row {
	return t.rows(RowSuccess)
}

// FailureRows returns the failure subset.
func (t *Table) FailureRows() []Row {
	return t.rows(RowFailure)
}

func (t *Table) rows(kind RowKind) []Row {
	var out []Row
	for _, r := range t.Rows {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

// DecisionTable builds the table for one command.
func (e *Engine) DecisionTable(decider, command string, opts TableOptions) (*Table, error) {
	l, ok := e.set.Lifecycle(decider)
	if !ok {
		return nil, fmt.Errorf("derive: no lifecycle document for decider %s", decider)
	}
	d, ok := l.Decision(command)
	if !ok {
		return nil, fmt.Errorf("derive: decider %s has no command %s", decider, command)
	}
	return buildTable(decider, d, opts), nil
}

// DecisionTables builds tables for every decision of every lifecycle
// document, in declaration order.
func (e *Engine) DecisionTables(opts TableOptions) []*Table {
	var out []*Table
	for _, l := range e.set.Lifecycles {
		for _, d := range l.Lifecycle {
			out = append(out, buildTable(l.Decider, d, opts))
		}
	}
	return out
}

func buildTable(decider string, d lifecycle.Decision, opts TableOptions) *Table {
	constraints := d.And.Names()

	var unconditional []string
	var conditional []lifecycle.EventSpec
	for _, entry := range d.Then {
		if entry.Conditional() {
			conditional = append(conditional, entry)
		} else {
			unconditional = append(unconditional, entry.Event)
		}
	}

	columns := make([]string, 0, len(constraints)+len(conditional))
	columns = append(columns, constraints...)
	for _, entry := range conditional {
		columns = append(columns, conditionColumn(entry))
	}

	t := &Table{Decider: decider, Command: d.When, Columns: columns}

	// Success block: constraints all true, 2^k conditional combinations
	// counting down from all-true.
	k := len(conditional)
	for i := 0; i < 1<<k; i++ {
		truth := make([]bool, 0, len(columns))
		for range constraints {
			truth = append(truth, true)
		}
		events := append([]string(nil), unconditional...)
		for j := 0; j < k; j++ {
			flag := (i>>(k-1-j))&1 == 0
			truth = append(truth, flag)
			if flag {
				events = append(events, conditional[j].Event)
			}
		}
		t.Rows = append(t.Rows, Row{
			Kind:   RowSuccess,
			Truth:  truth,
			Events: events,
			Output: strings.Join(events, ", "),
		})
	}

	// One minimal-violation row per constraint, in declaration order.
	for i, name := range constraints {
		truth := make([]bool, len(columns))
		for j := range constraints {
			truth[j] = j != i
		}
		t.Rows = append(t.Rows, failureRow(truth, []string{name}))
	}

	if opts.IncludeAllFail && len(constraints) > 0 {
		truth := make([]bool, len(columns))
		t.Rows = append(t.Rows, failureRow(truth, constraints))
	}

	return t
}

func failureRow(truth []bool, failed []string) Row {
	return Row{
		Kind:   RowFailure,
		Truth:  truth,
		Failed: failed,
		Output: fmt.Sprintf("DecisionFailed [%s]", strings.Join(failed, ", ")),
	}
}

// conditionColumn names the condition column of a conditional event by
// its condition names.
func conditionColumn(entry lifecycle.EventSpec) string {
	return strings.Join(entry.Conditions.Names(), " & ")
}
