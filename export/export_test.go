package export

import (
	"strings"
	"testing"

	"github.com/mean-machine-gc/ubispec/derive"
	"github.com/mean-machine-gc/ubispec/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatRegistry(t *testing.T) {
	for _, f := range []Format{FormatMarkdown, FormatJSON, FormatYAML, FormatDOT} {
		info, ok := GetFormatInfo(f)
		require.True(t, ok, "missing registry entry for %s", f)
		assert.NotEmpty(t, info.MIMEType)
		assert.True(t, strings.HasPrefix(info.Extension, "."))
	}

	_, err := ParseFormat("turtle")
	assert.Error(t, err)
	f, err := ParseFormat("dot")
	require.NoError(t, err)
	assert.Equal(t, FormatDOT, f)
}

func TestStructured(t *testing.T) {
	rows := []derive.CatalogRow{{Command: "PlaceOrder", Decider: "Order", Constraints: 1}}

	data, err := Structured(FormatJSON, rows)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"command": "PlaceOrder"`)

	data, err = Structured(FormatYAML, rows)
	require.NoError(t, err)
	assert.Contains(t, string(data), "command: PlaceOrder")

	_, err = Structured(FormatDOT, rows)
	assert.Error(t, err)
}

func TestDecisionTableMarkdown(t *testing.T) {
	table := &derive.Table{
		Decider: "Order",
		Command: "PlaceOrder",
		Columns: []string{"cart-is-not-empty"},
		Rows: []derive.Row{
			{Kind: derive.RowSuccess, Truth: []bool{true}, Events: []string{"OrderPlaced"}, Output: "OrderPlaced"},
			{Kind: derive.RowFailure, Truth: []bool{false}, Failed: []string{"cart-is-not-empty"}, Output: "DecisionFailed [cart-is-not-empty]"},
		},
	}

	md := DecisionTableMarkdown(table)
	assert.Contains(t, md, "## Order / PlaceOrder")
	assert.Contains(t, md, "| # | cart-is-not-empty | Result |")
	assert.Contains(t, md, "| 1 | T | OrderPlaced |")
	assert.Contains(t, md, "| 2 | F | DecisionFailed [cart-is-not-empty] |")
}

func TestChecklistMarkdown(t *testing.T) {
	cl := &derive.Checklist{Sections: []derive.ChecklistSection{{
		Decider:       "Order",
		Command:       "PlaceOrder",
		Actor:         "customer",
		Preconditions: []string{"Cart is not empty"},
		OnSuccess:     []string{"OrderPlaced (always)"},
		After:         []derive.AssertionGroup{{Key: "always", Assertions: []string{"Order is placed"}}},
		OnFailure:     derive.FailureBoilerplate,
	}}}

	md := ChecklistMarkdown(cl)
	assert.Contains(t, md, "Actor: customer")
	assert.Contains(t, md, "### Preconditions")
	assert.Contains(t, md, "- Cart is not empty")
	assert.Contains(t, md, "### After: always")
	assert.Contains(t, md, derive.FailureBoilerplate)
}

func TestDOT(t *testing.T) {
	g := &graph.Graph{
		Nodes: []graph.Node{
			{ID: "Order", Kind: graph.NodeDecider},
			{ID: "OrderFulfillment", Kind: graph.NodeProcess},
			{ID: "OrderFulfillment/join-1", Kind: graph.NodeConvergence},
		},
		Edges: []graph.Edge{
			{From: "Order", To: "OrderFulfillment", Label: "OrderPlaced"},
		},
	}

	dot := DOT(g)
	assert.True(t, strings.HasPrefix(dot, "digraph topology {"))
	assert.Contains(t, dot, `"Order" [shape=box];`)
	assert.Contains(t, dot, `"OrderFulfillment" [shape=ellipse];`)
	assert.Contains(t, dot, `"OrderFulfillment/join-1" [shape=diamond];`)
	assert.Contains(t, dot, `"Order" -> "OrderFulfillment" [label="OrderPlaced"];`)
}
