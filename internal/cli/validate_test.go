package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execValidate(t *testing.T, format string, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: format}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	return buf, cmd.Execute()
}

func TestValidateValidRuleSet(t *testing.T) {
	buf, err := execValidate(t, "text", "testdata/policy.cue")

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "✓ rule set valid (2 rule(s))")
}

func TestValidateValidRuleSetJSON(t *testing.T) {
	buf, err := execValidate(t, "json", "testdata/policy.cue")

	require.NoError(t, err)
	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	var data validateSummary
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, 2, data.Rules)
}

func TestValidateInvalidRuleSet(t *testing.T) {
	buf, err := execValidate(t, "text", "testdata/invalid.cue")

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	// Both defects reported.
	assert.Contains(t, buf.String(), "E107")
	assert.Contains(t, buf.String(), "E101")
}

func TestValidateInvalidRuleSetJSON(t *testing.T) {
	buf, err := execValidate(t, "json", "testdata/invalid.cue")

	require.Error(t, err)
	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
}

func TestValidateCompileError(t *testing.T) {
	_, err := execValidate(t, "text", "testdata/broken.cue")

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestValidateMissingFile(t *testing.T) {
	_, err := execValidate(t, "text", "testdata/nope.cue")

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
