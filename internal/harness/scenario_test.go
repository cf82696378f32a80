package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalScenario = `
name: minimal
description: "One booking"
rooms:
  - id: 101
accounts:
  - { identity: alice, secret: pw }
flow:
  - { op: book, actor: alice, room: 101, day: Mon, hour: 9AM }
assertions:
  - { type: log_count, count: 1 }
`

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	scenario, err := LoadScenario(writeScenario(t, minimalScenario))
	require.NoError(t, err)

	assert.Equal(t, "minimal", scenario.Name)
	assert.Equal(t, "One booking", scenario.Description)
	require.Len(t, scenario.Rooms, 1)
	assert.Equal(t, 101, scenario.Rooms[0].ID)
	require.Len(t, scenario.Flow, 1)
	assert.Equal(t, OpBook, scenario.Flow[0].Op)
	assert.Equal(t, "Mon", scenario.Flow[0].Day)
	assert.Equal(t, "9AM", scenario.Flow[0].Hour)
	assert.Nil(t, scenario.Flow[0].Expect)
	require.Len(t, scenario.Assertions, 1)
	require.NotNil(t, scenario.Assertions[0].Count)
	assert.Equal(t, 1, *scenario.Assertions[0].Count)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_UnknownField(t *testing.T) {
	_, err := ParseScenario([]byte(minimalScenario + "assertion: []\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_EmptyWarningsListIsKept(t *testing.T) {
	data := `
name: w
description: "d"
rooms: [{ id: 101 }]
accounts: [{ identity: alice, secret: pw }]
flow:
  - { op: book, actor: alice, room: 101, day: Mon, hour: 9AM, expect: { state: committed, warnings: [] } }
  - { op: book, actor: alice, room: 101, day: Tue, hour: 9AM, expect: { state: committed } }
assertions:
  - { type: verify }
`
	scenario, err := ParseScenario([]byte(data))
	require.NoError(t, err)

	assert.NotNil(t, scenario.Flow[0].Expect.Warnings)
	assert.Empty(t, scenario.Flow[0].Expect.Warnings)
	assert.Nil(t, scenario.Flow[1].Expect.Warnings)
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{
			name: "missing name",
			content: `
description: "d"
rooms: [{ id: 101 }]
flow: [{ op: book, actor: a, room: 101, day: Mon, hour: 9AM }]
assertions: [{ type: verify }]
`,
			errMsg: "name is required",
		},
		{
			name: "missing description",
			content: `
name: n
rooms: [{ id: 101 }]
flow: [{ op: book, actor: a, room: 101, day: Mon, hour: 9AM }]
assertions: [{ type: verify }]
`,
			errMsg: "description is required",
		},
		{
			name: "no rooms",
			content: `
name: n
description: "d"
flow: [{ op: book, actor: a, room: 101, day: Mon, hour: 9AM }]
assertions: [{ type: verify }]
`,
			errMsg: "rooms list is required",
		},
		{
			name: "no flow",
			content: `
name: n
description: "d"
rooms: [{ id: 101 }]
assertions: [{ type: verify }]
`,
			errMsg: "flow list is required",
		},
		{
			name: "no assertions",
			content: `
name: n
description: "d"
rooms: [{ id: 101 }]
flow: [{ op: book, actor: a, room: 101, day: Mon, hour: 9AM }]
`,
			errMsg: "assertions list is required",
		},
		{
			name: "bad role",
			content: `
name: n
description: "d"
rooms: [{ id: 101 }]
accounts: [{ identity: a, secret: s, role: owner }]
flow: [{ op: book, actor: a, room: 101, day: Mon, hour: 9AM }]
assertions: [{ type: verify }]
`,
			errMsg: `accounts[0]: unknown role "owner"`,
		},
		{
			name: "unknown op",
			content: `
name: n
description: "d"
rooms: [{ id: 101 }]
flow: [{ op: reserve, actor: a, room: 101, day: Mon, hour: 9AM }]
assertions: [{ type: verify }]
`,
			errMsg: `flow[0]: unknown op "reserve"`,
		},
		{
			name: "book without hour",
			content: `
name: n
description: "d"
rooms: [{ id: 101 }]
flow: [{ op: book, actor: a, room: 101, day: Mon }]
assertions: [{ type: verify }]
`,
			errMsg: "flow[0]: day and hour are required for book",
		},
		{
			name: "register without secret",
			content: `
name: n
description: "d"
rooms: [{ id: 101 }]
flow: [{ op: register, actor: carol }]
assertions: [{ type: verify }]
`,
			errMsg: "flow[0]: secret is required for register",
		},
		{
			name: "unknown fail",
			content: `
name: n
description: "d"
rooms: [{ id: 101 }]
flow: [{ op: book, actor: a, room: 101, day: Mon, hour: 9AM, fail: disk }]
assertions: [{ type: verify }]
`,
			errMsg: `flow[0]: unknown fail "disk"`,
		},
		{
			name: "non-terminal expect state",
			content: `
name: n
description: "d"
rooms: [{ id: 101 }]
flow: [{ op: book, actor: a, room: 101, day: Mon, hour: 9AM, expect: { state: validating } }]
assertions: [{ type: verify }]
`,
			errMsg: "flow[0].expect: state must be one of",
		},
		{
			name: "setup with bad slot",
			content: `
name: n
description: "d"
rooms: [{ id: 101 }]
setup: [{ kind: occupy, room: 100, day: Mon, hour: 9AM }]
flow: [{ op: book, actor: a, room: 101, day: Mon, hour: 9AM }]
assertions: [{ type: verify }]
`,
			errMsg: "setup[0]:",
		},
		{
			name: "setup log without action",
			content: `
name: n
description: "d"
rooms: [{ id: 101 }]
setup: [{ kind: log, room: 101, day: Mon, hour: 9AM, actor: a }]
flow: [{ op: book, actor: a, room: 101, day: Mon, hour: 9AM }]
assertions: [{ type: verify }]
`,
			errMsg: "setup[0]: action must be book or cancel",
		},
		{
			name: "unknown setup kind",
			content: `
name: n
description: "d"
rooms: [{ id: 101 }]
setup: [{ kind: flood, room: 101, day: Mon, hour: 9AM }]
flow: [{ op: book, actor: a, room: 101, day: Mon, hour: 9AM }]
assertions: [{ type: verify }]
`,
			errMsg: `setup[0]: unknown kind "flood"`,
		},
		{
			name: "slot_state without free",
			content: `
name: n
description: "d"
rooms: [{ id: 101 }]
flow: [{ op: book, actor: a, room: 101, day: Mon, hour: 9AM }]
assertions: [{ type: slot_state, room: 101, day: Mon, hour: 9AM }]
`,
			errMsg: "assertions[0]: free is required for slot_state",
		},
		{
			name: "last_action without actor",
			content: `
name: n
description: "d"
rooms: [{ id: 101 }]
flow: [{ op: book, actor: a, room: 101, day: Mon, hour: 9AM }]
assertions: [{ type: last_action, room: 101, day: Mon, hour: 9AM, action: book }]
`,
			errMsg: "assertions[0]: actor is required for last_action",
		},
		{
			name: "log_count without count",
			content: `
name: n
description: "d"
rooms: [{ id: 101 }]
flow: [{ op: book, actor: a, room: 101, day: Mon, hour: 9AM }]
assertions: [{ type: log_count }]
`,
			errMsg: "assertions[0]: non-negative count is required for log_count",
		},
		{
			name: "history without actor",
			content: `
name: n
description: "d"
rooms: [{ id: 101 }]
flow: [{ op: book, actor: a, room: 101, day: Mon, hour: 9AM }]
assertions: [{ type: history, count: 1 }]
`,
			errMsg: "assertions[0]: actor is required for history",
		},
		{
			name: "unknown assertion",
			content: `
name: n
description: "d"
rooms: [{ id: 101 }]
flow: [{ op: book, actor: a, room: 101, day: Mon, hour: 9AM }]
assertions: [{ type: trace_contains }]
`,
			errMsg: `assertions[0]: unknown assertion type "trace_contains"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid scenario")
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadScenario_BundledScenarios(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			_, err := LoadScenario(path)
			assert.NoError(t, err)
		})
	}
}
