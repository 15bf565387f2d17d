package spec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func decodeNode(t *testing.T, source string) *yaml.Node {
	t.Helper()
	var node yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(source), &node))
	return DocumentRoot(&node)
}

func TestParsePredicateEntry_Bare(t *testing.T) {
	node := decodeNode(t, `registry-is-submitted`)
	entry, issue := ParsePredicateEntry(node, "And[0]")
	require.Nil(t, issue)
	assert.Equal(t, "registry-is-submitted", entry.Name)
	assert.True(t, entry.Bare)
	assert.Empty(t, entry.Expr)
}

func TestParsePredicateEntry_Inline(t *testing.T) {
	node := decodeNode(t, `reviewer-is-authorised: dm.ctx.reviewer.role == 'admin'`)
	entry, issue := ParsePredicateEntry(node, "And[0]")
	require.Nil(t, issue)
	assert.Equal(t, "reviewer-is-authorised", entry.Name)
	assert.False(t, entry.Bare)
	assert.Equal(t, "dm.ctx.reviewer.role == 'admin'", entry.Expr)
}

func TestParsePredicateEntry_ScopeList(t *testing.T) {
	node := decodeNode(t, `state-is-consistent: [om.state, dm.cmd]`)
	entry, issue := ParsePredicateEntry(node, "And[0]")
	require.Nil(t, issue)
	assert.Equal(t, "[om.state, dm.cmd]", entry.Expr)
}

func TestParsePredicateEntry_MultiKey(t *testing.T) {
	node := decodeNode(t, "first-check: a\nsecond-check: b")
	_, issue := ParsePredicateEntry(node, "And[0]")
	require.NotNil(t, issue)
	assert.Equal(t, CodeMultiKeyInlinePredicate, issue.Code)
}

func TestParsePredicateEntry_BadName(t *testing.T) {
	node := decodeNode(t, `NotKebab: dm.cmd`)
	_, issue := ParsePredicateEntry(node, "And[0]")
	require.NotNil(t, issue)
	assert.Equal(t, CodeInvalidIdentifier, issue.Code)
}

func TestParsePredicateEntry_ShellHint(t *testing.T) {
	node := decodeNode(t, `reviewer-is-authorised: dm.ctx.reviewer.role == 'admin' # shell: iam.roles lookup`)
	entry, issue := ParsePredicateEntry(node, "And[0]")
	require.Nil(t, issue)
	assert.Equal(t, "iam.roles lookup", entry.Hint)
}

func TestParseConstraintList(t *testing.T) {
	node := decodeNode(t, "- registry-is-submitted\n- reviewer-is-authorised: dm.ctx.reviewer.role == 'admin'\n")
	list, issues := ParseConstraintList(node, "And")
	require.Empty(t, issues)
	require.Len(t, list, 2)
	assert.Equal(t, []string{"registry-is-submitted", "reviewer-is-authorised"}, list.Names())
	assert.True(t, list.Has("registry-is-submitted"))
	assert.False(t, list.Has("missing"))
}

func TestParsePredicateMap(t *testing.T) {
	node := decodeNode(t, "registry-is-submitted: dm.state.status == 'submitted'\nname-only:\n")
	m, issues := ParsePredicateMap(node, "common")
	require.Empty(t, issues)
	require.Len(t, m, 2)
	assert.True(t, m.Has("registry-is-submitted"))
	def, ok := m.Get("name-only")
	require.True(t, ok)
	assert.Empty(t, def.Expr)
}

func TestParsePredicateMap_BadKey(t *testing.T) {
	node := decodeNode(t, "BadKey: dm.state\n")
	_, issues := ParsePredicateMap(node, "common")
	require.Len(t, issues, 1)
	assert.Equal(t, CodeInvalidIdentifier, issues[0].Code)
}

func TestPredicateEntry_RoundTrip(t *testing.T) {
	list := ConstraintList{
		{Name: "registry-is-submitted", Bare: true},
		{Name: "reviewer-is-authorised", Expr: "dm.ctx.reviewer.role == 'admin'"},
	}
	data, err := yaml.Marshal(list)
	require.NoError(t, err)

	var node yaml.Node
	require.NoError(t, yaml.Unmarshal(data, &node))
	reparsed, issues := ParseConstraintList(DocumentRoot(&node), "And")
	require.Empty(t, issues)
	for i := range reparsed {
		reparsed[i].Line = 0
	}
	assert.Equal(t, list, reparsed)
}
