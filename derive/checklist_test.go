package derive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecklist(t *testing.T) {
	e := testEngine(t)

	cl := e.Checklist()
	require.Len(t, cl.Sections, 3)

	approve := cl.Sections[1]
	assert.Equal(t, "Registry", approve.Decider)
	assert.Equal(t, "ApproveRegistry", approve.Command)
	assert.Equal(t, "reviewer", approve.Actor)
	assert.Equal(t, []string{
		"Registry is submitted",
		"Reviewer is authorised",
		"No unresolved comments",
	}, approve.Preconditions)
	assert.Equal(t, []string{
		"RegistryApproved (always)",
		"PreviousRegistryArchived (when has-active-registry)",
	}, approve.OnSuccess)
	require.Len(t, approve.After, 2)
	assert.Equal(t, "always", approve.After[0].Key)
	assert.Equal(t, []string{"Status is approved"}, approve.After[0].Assertions)
	assert.Equal(t, "PreviousRegistryArchived", approve.After[1].Key)
	assert.Equal(t, FailureBoilerplate, approve.OnFailure)
}

func TestChecklist_FlatOutcome(t *testing.T) {
	e := testEngine(t)

	submit := e.Checklist().Sections[0]
	assert.Equal(t, "SubmitRegistry", submit.Command)
	require.Len(t, submit.After, 1)
	assert.Equal(t, "always", submit.After[0].Key)
	assert.Equal(t, []string{"Status is submitted"}, submit.After[0].Assertions)
}
