package derive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarios_IDScheme(t *testing.T) {
	e := testEngine(t)

	var approve []Scenario
	for _, s := range e.Scenarios(TableOptions{}) {
		if s.Command == "ApproveRegistry" {
			approve = append(approve, s)
		}
	}
	require.Len(t, approve, 5)
	for i, s := range approve {
		assert.Equal(t, []string{"APP-001", "APP-002", "APP-003", "APP-004", "APP-005"}[i], s.ID)
		assert.Equal(t, "Registry", s.Decider)
		assert.Equal(t, "Approve registry", s.When)
	}
}

func TestScenarios_SuccessRow(t *testing.T) {
	e := testEngine(t)

	scenarios := e.Scenarios(TableOptions{})
	var full Scenario
	for _, s := range scenarios {
		if s.ID == "APP-001" {
			full = s
		}
	}
	assert.Equal(t, []string{
		"Registry is submitted holds",
		"Reviewer is authorised holds",
		"No unresolved comments holds",
		"Has active registry holds",
	}, full.Given)
	assert.Equal(t, []string{
		"RegistryApproved is emitted",
		"PreviousRegistryArchived is emitted",
	}, full.Then)
	assert.Equal(t, []string{
		"Status is approved",
		"Previous registry is archived",
	}, full.Outcomes)
}

func TestScenarios_ConditionalNotFired(t *testing.T) {
	e := testEngine(t)

	for _, s := range e.Scenarios(TableOptions{}) {
		if s.ID != "APP-002" {
			continue
		}
		assert.Contains(t, s.Given, "Has active registry does not hold")
		assert.Equal(t, []string{"RegistryApproved is emitted"}, s.Then)
		assert.Equal(t, []string{"Status is approved"}, s.Outcomes)
		return
	}
	t.Fatal("APP-002 not generated")
}

func TestScenarios_FailureRow(t *testing.T) {
	e := testEngine(t)

	for _, s := range e.Scenarios(TableOptions{}) {
		if s.ID != "APP-003" {
			continue
		}
		assert.Contains(t, s.Given, "Registry is submitted does not hold")
		assert.Contains(t, s.Given, "Reviewer is authorised holds")
		assert.Equal(t, []string{"DecisionFailed [registry-is-submitted]"}, s.Then)
		assert.Empty(t, s.Outcomes)
		return
	}
	t.Fatal("APP-003 not generated")
}

func TestSentenceCase(t *testing.T) {
	assert.Equal(t, "Registry is submitted", SentenceCase("registry-is-submitted"))
	assert.Equal(t, "X", SentenceCase("x"))
	assert.Equal(t, "", SentenceCase(""))
}
