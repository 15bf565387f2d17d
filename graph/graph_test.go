package graph

import (
	"testing"

	"github.com/mean-machine-gc/ubispec/process"
	"github.com/mean-machine-gc/ubispec/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fulfillmentDoc = `
ubispec: process/v1.0
process: OrderFulfillment
reacts_to: [Order, Inventory, Payment]
emits_to: [Inventory, Payment]
model: ./fulfillment.model.yaml
reactions:
  - When: OrderPlaced
    From: Order
    Then: ReserveStock -> Inventory
    Outcome:
      - reservation-requested
  - When:
      all:
        - StockReserved from Inventory
        - PaymentCaptured from Payment
    correlate: orderId
    Then: ConfirmReservation -> Inventory
    Outcome:
      - reservation-confirmed
`

func parseSet(t *testing.T) *validate.Set {
	t.Helper()
	p, issues := process.Parse("fulfillment.ubi.yaml", []byte(fulfillmentDoc))
	require.NotNil(t, p)
	require.Empty(t, issues.Blocking(), "issues: %v", issues)
	return validate.NewSet(nil, []*process.Spec{p}, nil)
}

func TestBuild(t *testing.T) {
	g := Build(parseSet(t))

	ids := make(map[string]NodeKind)
	for _, n := range g.Nodes {
		ids[n.ID] = n.Kind
	}
	assert.Equal(t, NodeDecider, ids["Order"])
	assert.Equal(t, NodeDecider, ids["Inventory"])
	assert.Equal(t, NodeDecider, ids["Payment"])
	assert.Equal(t, NodeProcess, ids["OrderFulfillment"])
	assert.Equal(t, NodeConvergence, ids["OrderFulfillment/join-1"])
	assert.Len(t, g.Nodes, 5)

	assert.Contains(t, g.Edges, Edge{From: "Order", To: "OrderFulfillment", Label: "OrderPlaced"})
	assert.Contains(t, g.Edges, Edge{From: "OrderFulfillment", To: "Inventory", Label: "ReserveStock"})
}

func TestBuild_ConvergenceEdges(t *testing.T) {
	g := Build(parseSet(t))

	join := "OrderFulfillment/join-1"
	assert.Contains(t, g.Edges, Edge{From: "Inventory", To: join, Label: "StockReserved"})
	assert.Contains(t, g.Edges, Edge{From: "Payment", To: join, Label: "PaymentCaptured"})

	out := g.EdgesFrom(join)
	require.Len(t, out, 1)
	assert.Equal(t, Edge{From: join, To: "OrderFulfillment", Label: "orderId"}, out[0])
}

func TestPublisher_NilConnection(t *testing.T) {
	var p *Publisher
	assert.NoError(t, p.PublishTopology("run", &Graph{}))
	assert.NoError(t, NewPublisher(nil).PublishReport(validate.NewReport()))
	assert.NoError(t, NewPublisher(nil).Flush())
}
