package lifecycle

import (
	"testing"

	"github.com/mean-machine-gc/ubispec/spec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const registryDoc = `
ubispec: lifecycle/v1.0
decider: Registry
identity: registryId
model: ./registry.model.yaml
common:
  registry-is-submitted: dm.state.status == 'submitted'
  reviewer-is-authorised: dm.ctx.reviewer.role == 'admin' # shell: iam.roles lookup
  no-unresolved-comments: dm.state.openComments == 0
lifecycle:
  - When: SubmitRegistry
    And:
      - draft-is-complete: dm.state.entries.length > 0
    Then: RegistrySubmitted
    Outcome:
      - status-is-submitted: om.state.status == 'submitted'
  - When: ApproveRegistry
    actor: reviewer
    And:
      - registry-is-submitted
      - reviewer-is-authorised
      - no-unresolved-comments
    Then:
      - RegistryApproved
      - PreviousRegistryArchived:
          - has-active-registry: dm.ctx.activeRegistry != null
    Outcome:
      _always:
        - status-is-approved: om.state.status == 'approved'
      PreviousRegistryArchived:
        - previous-registry-is-archived
`

func TestParse_Registry(t *testing.T) {
	s, issues := Parse("registry.ubi.yaml", []byte(registryDoc))
	require.NotNil(t, s)
	require.Empty(t, issues.Blocking(), "unexpected blocking issues: %v", issues)

	assert.Equal(t, "lifecycle/v1.0", s.Version.String())
	assert.Equal(t, "Registry", s.Decider)
	assert.Equal(t, "registryId", s.Identity)
	require.Len(t, s.Lifecycle, 2)
	assert.Equal(t, []string{"SubmitRegistry", "ApproveRegistry"}, s.Commands())
	assert.Equal(t, []string{"RegistrySubmitted", "RegistryApproved", "PreviousRegistryArchived"}, s.Events())

	approve, ok := s.Decision("ApproveRegistry")
	require.True(t, ok)
	assert.Equal(t, "reviewer", approve.Actor)
	assert.Equal(t, []string{"registry-is-submitted", "reviewer-is-authorised", "no-unresolved-comments"}, approve.And.Names())
	require.Len(t, approve.Then, 2)
	assert.False(t, approve.Then[0].Conditional())
	assert.True(t, approve.Then[1].Conditional())
	assert.Equal(t, []string{"PreviousRegistryArchived"}, approve.Outcome.Keys())

	// Bare constraints resolve through common; the shell hint survives.
	def, ok := s.Common.Get("reviewer-is-authorised")
	require.True(t, ok)
	assert.Equal(t, "iam.roles lookup", def.Hint)
}

func TestParse_MissingHeader(t *testing.T) {
	s, issues := Parse("bad.ubi.yaml", []byte("ubispec: lifecycle/v1.0\nlifecycle:\n  - When: DoThing\n    Then: ThingDone\n    Outcome:\n      - thing-is-done\n"))
	require.NotNil(t, s)
	codes := map[spec.Code]bool{}
	for _, i := range issues {
		codes[i.Code] = true
	}
	assert.True(t, codes[spec.CodeMissingField], "expected MissingField issues, got %v", issues)
}

func TestParse_DuplicateCommand(t *testing.T) {
	doc := `
ubispec: lifecycle/v1.0
decider: Order
identity: orderId
model: ./order.model.yaml
lifecycle:
  - When: PlaceOrder
    Then: OrderPlaced
    Outcome:
      - order-is-placed
  - When: PlaceOrder
    Then: OrderPlacedAgain
    Outcome:
      - order-is-placed
`
	_, issues := Parse("order.ubi.yaml", []byte(doc))
	dups := issues.ByCode(spec.CodeDuplicateCommand)
	require.Len(t, dups, 1)
	assert.Equal(t, "PlaceOrder", dups[0].Subject)
}

func TestParse_UnresolvedCommonReference(t *testing.T) {
	doc := `
ubispec: lifecycle/v1.0
decider: Order
identity: orderId
model: ./order.model.yaml
lifecycle:
  - When: PlaceOrder
    And:
      - customer-is-active
    Then: OrderPlaced
    Outcome:
      - order-is-placed
`
	_, issues := Parse("order.ubi.yaml", []byte(doc))
	unresolved := issues.ByCode(spec.CodeUnresolvedCommonRef)
	require.Len(t, unresolved, 1)
	assert.Equal(t, "customer-is-active", unresolved[0].Subject)
}

func TestParse_OutcomeKeyMismatch(t *testing.T) {
	doc := `
ubispec: lifecycle/v1.0
decider: Order
identity: orderId
model: ./order.model.yaml
lifecycle:
  - When: PlaceOrder
    Then: OrderPlaced
    Outcome:
      _always:
        - order-is-placed
      OrderShipped:
        - shipment-is-scheduled
`
	_, issues := Parse("order.ubi.yaml", []byte(doc))
	mismatches := issues.ByCode(spec.CodeOutcomeKeyMismatch)
	require.Len(t, mismatches, 1)
	assert.Equal(t, "OrderShipped", mismatches[0].Subject)
}

func TestParse_PotentialEmptyEmission(t *testing.T) {
	doc := `
ubispec: lifecycle/v1.0
decider: Order
identity: orderId
model: ./order.model.yaml
lifecycle:
  - When: ReviewOrder
    Then:
      - OrderFlagged:
          - order-is-suspicious: dm.state.riskScore > 80
    Outcome:
      - review-is-recorded
`
	_, issues := Parse("order.ubi.yaml", []byte(doc))
	require.Empty(t, issues.Blocking(), "advisory must not block: %v", issues.Blocking())
	advisories := issues.ByCode(spec.CodePotentialEmptyEmission)
	require.Len(t, advisories, 1)
	assert.Equal(t, spec.SeverityAdvisory, advisories[0].Severity)
}

func TestRoundTrip(t *testing.T) {
	s, issues := Parse("registry.ubi.yaml", []byte(registryDoc))
	require.Empty(t, issues.Blocking())

	data, err := yaml.Marshal(s)
	require.NoError(t, err)

	reparsed, issues := Parse("registry.ubi.yaml", data)
	require.Empty(t, issues.Blocking(), "round-trip issues: %v", issues)

	assert.Equal(t, s.Commands(), reparsed.Commands())
	assert.Equal(t, s.Events(), reparsed.Events())
	assert.Equal(t, len(s.Common), len(reparsed.Common))
	orig, _ := s.Decision("ApproveRegistry")
	back, _ := reparsed.Decision("ApproveRegistry")
	assert.Equal(t, orig.And.Names(), back.And.Names())
	assert.Equal(t, orig.Outcome.Keys(), back.Outcome.Keys())
}
