package derive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceability_Forward(t *testing.T) {
	e := testEngine(t)

	m := e.Traceability()
	require.Len(t, m.Forward, 3)

	approve := m.Forward[1]
	assert.Equal(t, "ApproveRegistry", approve.Command)
	assert.Equal(t, []string{"RegistryApproved", "PreviousRegistryArchived"}, approve.Events)
	require.Contains(t, approve.Reactions, "RegistryApproved")
	reactions := approve.Reactions["RegistryApproved"]
	require.Len(t, reactions, 1)
	assert.Equal(t, "ApprovalNotifier", reactions[0].Process)
	assert.Equal(t, "scalar", reactions[0].Trigger)
	assert.Equal(t, []string{"SendApprovalNotice -> Notification"}, reactions[0].Commands)

	assert.NotContains(t, approve.Reactions, "PreviousRegistryArchived")
}

func TestTraceability_Reverse(t *testing.T) {
	e := testEngine(t)

	m := e.Traceability()

	locs := m.ByConstraint["notifications-enabled"]
	require.Len(t, locs, 1)
	assert.Equal(t, "ApprovalNotifier", locs[0].Document)
	assert.Equal(t, "reactions[0].And", locs[0].Path)

	assert.Equal(t, []string{"previous-registry-is-archived"}, m.ByEvent["PreviousRegistryArchived"])
}

func TestImpact(t *testing.T) {
	e := testEngine(t)

	locs := e.Impact("RegistryApproved")
	require.Len(t, locs, 2)
	assert.Equal(t, "ApprovalNotifier", locs[0].Document)
	assert.Equal(t, "trigger", locs[0].Role)
	assert.Equal(t, "Registry", locs[1].Document)
	assert.Equal(t, "event", locs[1].Role)

	locs = e.Impact("SendApprovalNotice")
	roles := make(map[string]int)
	for _, l := range locs {
		roles[l.Role]++
	}
	assert.Equal(t, 1, roles["command"])
	assert.Equal(t, 1, roles["dispatch"])

	assert.Empty(t, e.Impact("NoSuchThing"))
}
