package derive

import (
	"strings"

	"github.com/mean-machine-gc/ubispec/lifecycle"
	"github.com/mean-machine-gc/ubispec/spec"
)

// CatalogRow summarises one command across the set.
type CatalogRow struct {
	Command           string `json:"command"`
	Decider           string `json:"decider"`
	Constraints       int    `json:"constraints"`
	Unconditional     int    `json:"unconditional_events"`
	Conditional       int    `json:"conditional_events"`
	ReadsContext      bool   `json:"reads_context"`
	ReactedToUpstream bool   `json:"reacted_to"`
}

// Catalog returns one row per command declared across all lifecycle
// documents, in document then declaration order.
func (e *Engine) Catalog() []CatalogRow {
	var rows []CatalogRow
	for _, l := range e.set.Lifecycles {
		for _, d := range l.Lifecycle {
			row := CatalogRow{
				Command:           d.When,
				Decider:           l.Decider,
				Constraints:       len(d.And),
				ReactedToUpstream: e.set.CommandReactedTo(d.When),
			}
			for _, ev := range d.Then {
				if ev.Conditional() {
					row.Conditional++
				} else {
					row.Unconditional++
				}
			}
			row.ReadsContext = decisionReadsContext(d.And, d.Then, d.Outcome, l.Common)
			rows = append(rows, row)
		}
	}
	return rows
}

func decisionReadsContext(and spec.ConstraintList, then []lifecycle.EventSpec, outcome spec.OutcomeSpec, common spec.PredicateMap) bool {
	touches := func(entry spec.PredicateEntry) bool {
		expr := entry.Expr
		if entry.Bare {
			if def, ok := common.Get(entry.Name); ok {
				expr = def.Expr
			}
		}
		return strings.Contains(expr, "dm.ctx")
	}
	for _, c := range and {
		if touches(c) {
			return true
		}
	}
	for _, ev := range then {
		for _, c := range ev.Conditions {
			if touches(c) {
				return true
			}
		}
	}
	for _, a := range outcome.Always {
		if touches(a) {
			return true
		}
	}
	for _, entry := range outcome.Keyed {
		for _, a := range entry.Assertions {
			if touches(a) {
				return true
			}
		}
	}
	return false
}
