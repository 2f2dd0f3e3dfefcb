package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const harnessScenarios = "../harness/testdata/scenarios"

const demoScenario = `name: demo
definitions:
  - ../definitions/product.cue
setup:
  - CREATE TABLE products (id INTEGER PRIMARY KEY, name TEXT)
rows:
  - table: attributes
    values: { attributeID: 1, name: color, type: string }
  - table: products
    values: { id: 1, name: Lamp }
  - table: string_attributes
    values: { objectID: 1, objectType: products, attributeID: 1, value: "<red>" }
load:
  entity: Product
expect:
  - key: 1
    attributes: { color: "<red>" }
queries: 1
`

// writeScenarioTree lays out scenarios/, definitions/ and an empty
// golden/ sibling directory and returns the scenarios directory.
func writeScenarioTree(t *testing.T, scenario string) string {
	t.Helper()
	root := t.TempDir()
	for _, d := range []string{"scenarios", "definitions"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, d), 0755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "definitions", "product.cue"),
		[]byte("entity: Product: {\n\ttable: \"products\"\n\tattributes: [\"string\"]\n}\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "scenarios", "demo.yaml"), []byte(scenario), 0644))
	return filepath.Join(root, "scenarios")
}

func TestTest_HarnessScenarios(t *testing.T) {
	code, stdout, _ := execute("test", harnessScenarios)

	require.Equal(t, ExitSuccess, code, stdout)
	assert.Contains(t, stdout, "✓ product_attributes")
	assert.Contains(t, stdout, "✓ order_owner")
	assert.Contains(t, stdout, "Test Summary: 4 passed, 0 failed, 4 total")
}

func TestTest_Filter(t *testing.T) {
	code, stdout, _ := execute("--format", "json", "test", harnessScenarios, "--filter", "owned_*")
	require.Equal(t, ExitSuccess, code, stdout)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.Total)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, "owned_orders", resp.Data.Scenarios[0].Name)
}

func TestTest_UpdateWritesGolden(t *testing.T) {
	scenarios := writeScenarioTree(t, demoScenario)
	golden := filepath.Join(filepath.Dir(scenarios), "golden", "demo.golden")

	code, stdout, _ := execute("test", scenarios, "--update")
	require.Equal(t, ExitSuccess, code, stdout)
	assert.Contains(t, stdout, "✓ demo (golden updated)")

	data, err := os.ReadFile(golden)
	require.NoError(t, err)
	assert.Equal(t,
		`{"entities":[{"color":"<red>","id":1,"name":"Lamp"}],"load_id":"test-load-default","queries":1,"scenario_name":"demo"}`,
		string(data))

	code, stdout, _ = execute("test", scenarios)
	assert.Equal(t, ExitSuccess, code, stdout)
}

func TestTest_GoldenMismatch(t *testing.T) {
	scenarios := writeScenarioTree(t, demoScenario)
	goldenDir := filepath.Join(filepath.Dir(scenarios), "golden")
	require.NoError(t, os.MkdirAll(goldenDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(goldenDir, "demo.golden"), []byte(`{"stale":true}`), 0644))

	code, stdout, _ := execute("test", scenarios)

	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stdout, "✗ demo")
	assert.Contains(t, stdout, "snapshot does not match golden file")
}

func TestTest_FailingExpectation(t *testing.T) {
	scenarios := writeScenarioTree(t, demoScenario[:len(demoScenario)-len("queries: 1\n")]+"queries: 5\n")

	code, stdout, _ := execute("--format", "json", "test", scenarios)
	assert.Equal(t, ExitFailure, code)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_TEST_FAILED", resp.Error.Code)
}

func TestTest_InvalidScenarioFile(t *testing.T) {
	scenarios := writeScenarioTree(t, "name: [not, a, string]\n")

	code, stdout, _ := execute("test", scenarios)

	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stdout, "✗ demo.yaml")
	assert.Contains(t, stdout, "failed to load scenario")
}

func TestTest_NoScenarios(t *testing.T) {
	code, stdout, _ := execute("test", t.TempDir())

	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "No scenarios found.")
}

func TestTest_MissingDirectory(t *testing.T) {
	code, stdout, _ := execute("test", filepath.Join(t.TempDir(), "missing"))

	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stdout, "scenarios directory not found")
}

func TestGoldenDirFor(t *testing.T) {
	assert.Equal(t, filepath.Join("testdata", "golden"), goldenDirFor("testdata/scenarios/"))
	assert.Equal(t, "golden", goldenDirFor("scenarios"))
}
