package commands

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mean-machine-gc/ubispec/derive"
	"github.com/mean-machine-gc/ubispec/export"
)

const orderDoc = `
ubispec: lifecycle/v1.0
decider: Order
identity: orderId
model: ./order.model.yaml
lifecycle:
  - When: PlaceOrder
    And:
      - cart-is-not-empty: dm.cmd.items.length > 0
    Then: OrderPlaced
    Outcome:
      - order-is-placed
`

func projectDir(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "order.ubi.yaml"), []byte(orderDoc), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "ubispec.yaml"), []byte("artifacts:\n  format: json\n"), 0o644))
	t.Chdir(root)
	return root
}

func TestNewEnv_ProjectConfig(t *testing.T) {
	root := projectDir(t)

	env, err := NewEnv("", nil)
	require.NoError(t, err)
	assert.Equal(t, root, env.Config.Specs.Root)
	assert.Equal(t, "json", env.Config.Artifacts.Format)
}

func TestEnvEngine(t *testing.T) {
	projectDir(t)

	env, err := NewEnv("", nil)
	require.NoError(t, err)
	eng, result, err := env.engine(context.Background())
	require.NoError(t, err)
	assert.False(t, result.Report.HasBlocking())

	tables := eng.DecisionTables(derive.TableOptions{})
	require.Len(t, tables, 1)
	assert.Equal(t, "PlaceOrder", tables[0].Command)
}

func TestRunDerive_WritesArtifact(t *testing.T) {
	projectDir(t)

	env, err := NewEnv("", nil)
	require.NoError(t, err)
	eng, _, err := env.engine(context.Background())
	require.NoError(t, err)

	out := t.TempDir()
	require.NoError(t, runDerive(eng, "catalog", export.FormatJSON, out, derive.TableOptions{}))

	data, err := os.ReadFile(filepath.Join(out, "catalog.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"command": "PlaceOrder"`)
}

func TestRunDerive_UnknownArtifact(t *testing.T) {
	projectDir(t)

	env, err := NewEnv("", nil)
	require.NoError(t, err)
	eng, _, err := env.engine(context.Background())
	require.NoError(t, err)

	assert.Error(t, runDerive(eng, "poetry", export.FormatJSON, "-", derive.TableOptions{}))
}
