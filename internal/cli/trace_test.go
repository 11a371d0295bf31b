package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refract-engine/refract/internal/ir"
	"github.com/refract-engine/refract/internal/store"
)

func execTrace(t *testing.T, format string, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: format}
	cmd := NewTraceCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	return buf, cmd.Execute()
}

// seedJournal records a small run directly through the store.
func seedJournal(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "runs.db")

	st, err := store.Open(path)
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	run := store.RunRecord{ID: "run-seed", Strategy: "priority", State: "SATURATED", Cycles: 2}
	initial := []ir.Fact{
		ir.NewFact("enrolled", "Alice", "CS501"),
		ir.NewFact("graduate-only", "CS501"),
	}
	firing := store.FiringRecord{
		RunID:    "run-seed",
		Seq:      1,
		Rule:     "grad-only-violation",
		Bindings: ir.Bindings{"?s": "Alice", "?c": "CS501"},
		Fact:     ir.NewFact("flag-violation", "Alice", "CS501"),
		NewFact:  true,
		Supports: initial,
	}
	require.NoError(t, st.RecordRun(ctx, run, initial, []store.FiringRecord{firing}))

	return path
}

func TestTraceTextOutput(t *testing.T) {
	path := seedJournal(t)

	buf, err := execTrace(t, "text", "run-seed", "--db", path)

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "run run-seed strategy=priority state=SATURATED cycles=2")
	assert.Contains(t, out, "[1] grad-only-violation")
	assert.Contains(t, out, "<- (enrolled, Alice, CS501)")
	assert.Contains(t, out, "(graduate-only, CS501) [initial]")
}

func TestTraceJSONOutput(t *testing.T) {
	path := seedJournal(t)

	buf, err := execTrace(t, "json", "run-seed", "--db", path)

	require.NoError(t, err)
	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	var summary traceSummary
	require.NoError(t, json.Unmarshal(resp.Data, &summary))
	assert.Equal(t, "run-seed", summary.Run.ID)
	require.Len(t, summary.Firings, 1)
	assert.Len(t, summary.Firings[0].Supports, 2)
	assert.Len(t, summary.Facts, 3)
}

func TestTraceUnknownRun(t *testing.T) {
	path := seedJournal(t)

	_, err := execTrace(t, "text", "missing-run", "--db", path)

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "not found in journal")
}
