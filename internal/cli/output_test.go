package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitErrorMessage(t *testing.T) {
	plain := NewExitError(ExitFailure, "something failed")
	assert.Equal(t, "something failed", plain.Error())

	wrapped := WrapExitError(ExitCommandError, "outer", fmt.Errorf("inner"))
	assert.Equal(t, "outer: inner", wrapped.Error())
	assert.EqualError(t, wrapped.Unwrap(), "inner")
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "x")))
	assert.Equal(t, ExitFailure, GetExitCode(fmt.Errorf("plain error")))

	// Wrapped ExitErrors are still found.
	err := fmt.Errorf("context: %w", NewExitError(ExitCommandError, "x"))
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestFormatterSuccessText(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, f.Success("all good"))
	assert.Equal(t, "all good\n", buf.String())
}

func TestFormatterSuccessJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, f.Success(map[string]int{"rules": 3}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.JSONEq(t, `{"rules": 3}`, string(resp.Data))
}

func TestFormatterErrorJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, f.Error(ErrCodeCompile, "boom", nil))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeCompile, resp.Error.Code)
	assert.Equal(t, "boom", resp.Error.Message)
}

func TestVerboseLogRouting(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}

	quiet := &OutputFormatter{Format: "text", Writer: out, ErrWriter: errOut}
	quiet.VerboseLog("hidden")
	assert.Empty(t, out.String())
	assert.Empty(t, errOut.String())

	verbose := &OutputFormatter{Format: "json", Writer: out, ErrWriter: errOut, Verbose: true}
	verbose.VerboseLog("loaded %d rules", 3)
	assert.Empty(t, out.String(), "verbose output must not corrupt JSON on stdout")
	assert.Equal(t, "loaded 3 rules\n", errOut.String())
}
