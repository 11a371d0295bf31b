package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execExplain(t *testing.T, format string, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: format}
	cmd := NewExplainCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	return buf, cmd.Execute()
}

func TestExplainDerivedFact(t *testing.T) {
	buf, err := execExplain(t, "text",
		"testdata/policy.cue", "dropped", "Alice", "CS501",
		"--facts", "testdata/memory.yaml",
	)

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "(dropped, Alice, CS501) by drop-flagged")
	assert.Contains(t, out, "(flag-violation, Alice, CS501) by grad-only-violation")
	assert.Contains(t, out, "(enrolled, Alice, CS501) [initial]")
	assert.Contains(t, out, "(graduate-only, CS501) [initial]")
}

func TestExplainInitialFact(t *testing.T) {
	buf, err := execExplain(t, "text",
		"testdata/policy.cue", "enrolled", "Alice", "CS501",
		"--facts", "testdata/memory.yaml",
	)

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "(enrolled, Alice, CS501) [initial]")
}

func TestExplainJSONOutput(t *testing.T) {
	buf, err := execExplain(t, "json",
		"testdata/policy.cue", "dropped", "Alice", "CS501",
		"--facts", "testdata/memory.yaml",
	)

	require.NoError(t, err)
	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	var node struct {
		Fact     []string `json:"fact"`
		Rule     string   `json:"rule"`
		Supports []any    `json:"supports"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &node))
	assert.Equal(t, []string{"dropped", "Alice", "CS501"}, node.Fact)
	assert.Equal(t, "drop-flagged", node.Rule)
	assert.Len(t, node.Supports, 1)
}

func TestExplainUnknownFact(t *testing.T) {
	_, err := execExplain(t, "text",
		"testdata/policy.cue", "no-such", "fact",
		"--facts", "testdata/memory.yaml",
	)

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "nothing to explain")
}
