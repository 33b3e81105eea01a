package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_ValidFile(t *testing.T) {
	dir := t.TempDir()
	scenarioPath := filepath.Join(dir, "test.yaml")

	content := `
name: test_scenario
description: "Test scenario for validation"
page_size: 2
directory:
  users:
    - id: 1
      name: Leanne Graham
      email: Sincere@april.biz
      company:
        name: Romaguera-Crona
flow:
  - op: hydrate
    expect:
      outcome: fetched
  - op: add
    args:
      name: Ada
      email: ada@x.io
assertions:
  - type: trace_contains
    op: add
`
	require.NoError(t, os.WriteFile(scenarioPath, []byte(content), 0644))

	scenario, err := LoadScenario(scenarioPath)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, "Test scenario for validation", scenario.Description)
	assert.Equal(t, 2, scenario.PageSize)
	require.Len(t, scenario.Directory.Users, 1)
	assert.Equal(t, "Leanne Graham", scenario.Directory.Users[0]["name"])
	require.Len(t, scenario.Flow, 2)
	assert.Equal(t, OpHydrate, scenario.Flow[0].Op)
	assert.Equal(t, "fetched", scenario.Flow[0].Expect.Outcome)
	assert.Equal(t, "ada@x.io", scenario.Flow[1].Args["email"])
	assert.Len(t, scenario.Assertions, 1)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "missing name",
			content: `
description: "x"
flow: [{op: view}]
assertions: [{type: store_count, count: 0}]
`,
			wantErr: "name is required",
		},
		{
			name: "missing description",
			content: `
name: x
flow: [{op: view}]
assertions: [{type: store_count, count: 0}]
`,
			wantErr: "description is required",
		},
		{
			name: "empty flow",
			content: `
name: x
description: "x"
flow: []
assertions: [{type: store_count, count: 0}]
`,
			wantErr: "flow list is required",
		},
		{
			name: "no assertions",
			content: `
name: x
description: "x"
flow: [{op: view}]
`,
			wantErr: "assertions list is required",
		},
		{
			name: "unknown op",
			content: `
name: x
description: "x"
flow: [{op: checkout}]
assertions: [{type: store_count, count: 0}]
`,
			wantErr: `flow[0]: unknown op "checkout"`,
		},
		{
			name: "expect without outcome",
			content: `
name: x
description: "x"
flow: [{op: view, expect: {reason: required}}]
assertions: [{type: store_count, count: 0}]
`,
			wantErr: "flow[0].expect: outcome is required",
		},
		{
			name: "unknown field",
			content: `
name: x
description: "x"
flwo: [{op: view}]
flow: [{op: view}]
assertions: [{type: store_count, count: 0}]
`,
			wantErr: "failed to parse YAML",
		},
		{
			name: "negative page size",
			content: `
name: x
description: "x"
page_size: -1
flow: [{op: view}]
assertions: [{type: store_count, count: 0}]
`,
			wantErr: "page_size must be non-negative",
		},
		{
			name: "unknown assertion type",
			content: `
name: x
description: "x"
flow: [{op: view}]
assertions: [{type: final_state}]
`,
			wantErr: `unknown assertion type "final_state"`,
		},
		{
			name: "trace_order without ops",
			content: `
name: x
description: "x"
flow: [{op: view}]
assertions: [{type: trace_order}]
`,
			wantErr: "ops list is required for trace_order",
		},
		{
			name: "view without fields",
			content: `
name: x
description: "x"
flow: [{op: view}]
assertions: [{type: view}]
`,
			wantErr: "view needs at least one of",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseScenario_ViewWithEmptyNames(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: x
description: "x"
flow: [{op: view}]
assertions: [{type: view, names: []}]
`))
	require.NoError(t, err)
	assert.NotNil(t, scenario.Assertions[0].Names)
}
