package derive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManifest(t *testing.T) {
	e := testEngine(t)

	entries := e.Manifest()
	require.Len(t, entries, 3)

	submit := entries[0]
	assert.Equal(t, "Registry", submit.Document)
	assert.Equal(t, "SubmitRegistry", submit.Owner)
	require.Len(t, submit.Services, 1)
	// Scope-level annotation: the dependency is recorded but carries no
	// resolution hint yet.
	assert.Equal(t, "", submit.Services[0].Service)
	require.Len(t, submit.Services[0].Dependencies, 1)
	dep := submit.Services[0].Dependencies[0]
	assert.Equal(t, "registrar-is-known", dep.Predicate)
	assert.Nil(t, dep.Hint)

	approve := entries[1]
	assert.Equal(t, "ApproveRegistry", approve.Owner)
	require.Len(t, approve.Services, 2)
	assert.Equal(t, "iam", approve.Services[0].Service)
	require.Len(t, approve.Services[0].Dependencies, 1)
	assert.Equal(t, "reviewer-is-authorised", approve.Services[0].Dependencies[0].Predicate)
	require.NotNil(t, approve.Services[0].Dependencies[0].Hint)
	assert.Equal(t, "iam.lookup_role(dm.cmd.reviewerId)", *approve.Services[0].Dependencies[0].Hint)
	assert.Equal(t, "registry", approve.Services[1].Service)
	assert.Equal(t, "has-active-registry", approve.Services[1].Dependencies[0].Predicate)

	notifier := entries[2]
	assert.Equal(t, "ApprovalNotifier", notifier.Document)
	assert.Equal(t, "RegistryApproved", notifier.Owner)
	require.Len(t, notifier.Services, 1)
	assert.Equal(t, "preferences", notifier.Services[0].Service)
	assert.Equal(t, "notifications-enabled", notifier.Services[0].Dependencies[0].Predicate)
}

func TestServiceName(t *testing.T) {
	assert.Equal(t, "iam", ServiceName("iam.lookup_role(x)"))
	assert.Equal(t, "iam", ServiceName("iam roles lookup"))
	assert.Equal(t, "billing", ServiceName("billing"))
	assert.Equal(t, "", ServiceName(""))
}
