package process

import (
	"testing"

	"github.com/mean-machine-gc/ubispec/spec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const fulfillmentDoc = `
ubispec: process/v1.0
process: OrderFulfillment
reacts_to: [Order, Payment]
emits_to: [Inventory, Payment]
model: ./fulfillment.model.yaml
state:
  orderId: string
  reservedAt: timestamp
common:
  order-is-standard: rm.event.priority == 'standard'
reactions:
  - When: OrderPlaced
    From: Order
    And:
      - order-is-standard
    Then: ReserveStock -> Inventory
    Outcome:
      - reservation-requested
  - When:
      all:
        - StockReserved from Inventory
        - PaymentCaptured from Payment
    correlate: orderId
    Then:
      - ConfirmReservation -> Inventory
      - RefundPayment -> Payment:
          - stock-is-short: rm.StockReserved.partial == true
    Outcome:
      _always:
        - fulfillment-is-progressing
      RefundPayment -> Payment:
        - refund-is-requested
`

func TestParse_Fulfillment(t *testing.T) {
	s, issues := Parse("fulfillment.ubi.yaml", []byte(fulfillmentDoc))
	require.NotNil(t, s)
	require.Empty(t, issues.Blocking(), "unexpected blocking issues: %v", issues)

	assert.Equal(t, "OrderFulfillment", s.Process)
	assert.True(t, s.Stateful())
	require.Len(t, s.Reactions, 2)

	scalar := s.Reactions[0]
	assert.Equal(t, TriggerScalar, scalar.Trigger.Kind)
	assert.Equal(t, "Order", scalar.From)
	assert.Equal(t, PayloadConcrete, scalar.Trigger.PayloadShape())
	require.Len(t, scalar.Then, 1)
	assert.Equal(t, "ReserveStock -> Inventory", scalar.Then[0].Key())

	all := s.Reactions[1]
	assert.Equal(t, TriggerAll, all.Trigger.Kind)
	assert.Equal(t, "orderId", all.Correlate)
	assert.Equal(t, PayloadPerEvent, all.Trigger.PayloadShape())
	sources := all.Sources()
	require.Len(t, sources, 2)
	assert.Equal(t, EventSource{Event: "StockReserved", Decider: "Inventory"}, sources[0])
	assert.Equal(t, EventSource{Event: "PaymentCaptured", Decider: "Payment"}, sources[1])
	assert.Equal(t, []string{"RefundPayment -> Payment"}, all.Outcome.Keys())
}

func TestParse_AnyTrigger(t *testing.T) {
	doc := `
ubispec: process/v1.0
process: PaymentRecovery
reacts_to: [Payment]
emits_to: [Order]
model: ./recovery.model.yaml
reactions:
  - When:
      any:
        - PaymentFailed
        - PaymentExpired
    From: Payment
    Then: CancelOrder -> Order
    Outcome:
      - cancellation-requested
`
	s, issues := Parse("recovery.ubi.yaml", []byte(doc))
	require.Empty(t, issues.Blocking(), "issues: %v", issues)
	trigger := s.Reactions[0].Trigger
	assert.Equal(t, TriggerAny, trigger.Kind)
	assert.Equal(t, []string{"PaymentFailed", "PaymentExpired"}, trigger.EventNames())
	assert.Equal(t, PayloadUnion, trigger.PayloadShape())
}

func TestParse_AnyTrigger_SingleEvent(t *testing.T) {
	doc := `
ubispec: process/v1.0
process: PaymentRecovery
reacts_to: [Payment]
emits_to: [Order]
model: ./recovery.model.yaml
reactions:
  - When:
      any:
        - PaymentFailed
    From: Payment
    Then: CancelOrder -> Order
    Outcome:
      - cancellation-requested
`
	_, issues := Parse("recovery.ubi.yaml", []byte(doc))
	assert.True(t, issues.HasBlocking(), "an any trigger with one event must fail")
}

func TestParse_MissingCorrelate(t *testing.T) {
	doc := `
ubispec: process/v1.0
process: OrderFulfillment
reacts_to: [Inventory, Payment]
emits_to: [Inventory]
model: ./fulfillment.model.yaml
reactions:
  - When:
      all:
        - StockReserved from Inventory
        - PaymentCaptured from Payment
    Then: ConfirmReservation -> Inventory
    Outcome:
      - fulfillment-is-progressing
`
	_, issues := Parse("fulfillment.ubi.yaml", []byte(doc))
	missing := issues.ByCode(spec.CodeMissingCorrelate)
	require.Len(t, missing, 1, "issues: %v", issues)

	// Adding correlate clears that specific error.
	fixed := `
ubispec: process/v1.0
process: OrderFulfillment
reacts_to: [Inventory, Payment]
emits_to: [Inventory]
model: ./fulfillment.model.yaml
reactions:
  - When:
      all:
        - StockReserved from Inventory
        - PaymentCaptured from Payment
    correlate: orderId
    Then: ConfirmReservation -> Inventory
    Outcome:
      - fulfillment-is-progressing
`
	_, issues = Parse("fulfillment.ubi.yaml", []byte(fixed))
	assert.Empty(t, issues.ByCode(spec.CodeMissingCorrelate))
}

func TestParse_UndeclaredTarget(t *testing.T) {
	doc := `
ubispec: process/v1.0
process: OrderFulfillment
reacts_to: [Order]
emits_to: [Inventory, Payment]
model: ./fulfillment.model.yaml
reactions:
  - When: OrderPlaced
    From: Order
    Then: ReleaseInventory -> Fulfillment
    Outcome:
      - release-requested
`
	_, issues := Parse("fulfillment.ubi.yaml", []byte(doc))
	undeclared := issues.ByCode(spec.CodeUndeclaredTarget)
	require.Len(t, undeclared, 1)
	assert.Equal(t, "Fulfillment", undeclared[0].Subject)
}

func TestParse_UndeclaredSource(t *testing.T) {
	doc := `
ubispec: process/v1.0
process: OrderFulfillment
reacts_to: [Order]
emits_to: [Inventory]
model: ./fulfillment.model.yaml
reactions:
  - When: PaymentCaptured
    From: Payment
    Then: ReserveStock -> Inventory
    Outcome:
      - reservation-requested
`
	_, issues := Parse("fulfillment.ubi.yaml", []byte(doc))
	undeclared := issues.ByCode(spec.CodeUndeclaredSource)
	require.Len(t, undeclared, 1)
	assert.Equal(t, "Payment", undeclared[0].Subject)
}

func TestParse_PolicyRequiresActor(t *testing.T) {
	doc := `
ubispec: process/v1.0
process: RefundApproval
reacts_to: [Payment]
emits_to: [Payment]
model: ./refunds.model.yaml
reactions:
  - When: RefundRequested
    From: Payment
    trigger: policy
    Then: ApproveRefund -> Payment
    Outcome:
      - refund-is-approved
`
	_, issues := Parse("refunds.ubi.yaml", []byte(doc))
	missing := issues.ByCode(spec.CodeMissingActor)
	require.Len(t, missing, 1)
	assert.Equal(t, spec.SeverityReference, missing[0].Severity)
}

func TestParse_OutcomeKeyMismatch(t *testing.T) {
	doc := `
ubispec: process/v1.0
process: OrderFulfillment
reacts_to: [Order]
emits_to: [Inventory]
model: ./fulfillment.model.yaml
reactions:
  - When: OrderPlaced
    From: Order
    Then: ReserveStock -> Inventory
    Outcome:
      ReleaseStock -> Inventory:
        - stock-is-released
`
	_, issues := Parse("fulfillment.ubi.yaml", []byte(doc))
	mismatches := issues.ByCode(spec.CodeOutcomeKeyMismatch)
	require.Len(t, mismatches, 1)
	assert.Equal(t, "ReleaseStock -> Inventory", mismatches[0].Subject)
}

func TestParse_UnionNarrowingAdvisory(t *testing.T) {
	doc := `
ubispec: process/v1.0
process: PaymentRecovery
reacts_to: [Payment]
emits_to: [Order]
model: ./recovery.model.yaml
reactions:
  - When:
      any:
        - PaymentFailed
        - PaymentExpired
    From: Payment
    And:
      - failure-is-final: rm.event.retryCount >= 3
    Then: CancelOrder -> Order
    Outcome:
      - cancellation-requested
`
	_, issues := Parse("recovery.ubi.yaml", []byte(doc))
	require.Empty(t, issues.Blocking(), "advisory must not block: %v", issues.Blocking())
	advisories := issues.ByCode(spec.CodeUnscopedVariantReference)
	require.Len(t, advisories, 1)
	assert.Equal(t, "failure-is-final", advisories[0].Subject)
}

func TestRoundTrip(t *testing.T) {
	s, issues := Parse("fulfillment.ubi.yaml", []byte(fulfillmentDoc))
	require.Empty(t, issues.Blocking())

	data, err := yaml.Marshal(s)
	require.NoError(t, err)

	reparsed, issues := Parse("fulfillment.ubi.yaml", data)
	require.Empty(t, issues.Blocking(), "round-trip issues: %v", issues)

	require.Len(t, reparsed.Reactions, len(s.Reactions))
	for i := range s.Reactions {
		assert.Equal(t, s.Reactions[i].Trigger.Kind, reparsed.Reactions[i].Trigger.Kind)
		assert.Equal(t, s.Reactions[i].Sources(), reparsed.Reactions[i].Sources())
		assert.Equal(t, s.Reactions[i].Outcome.Keys(), reparsed.Reactions[i].Outcome.Keys())
	}
	assert.Equal(t, s.DispatchedCommands(), reparsed.DispatchedCommands())
	assert.Equal(t, s.State, reparsed.State)
}
