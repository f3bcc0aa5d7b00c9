package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Success(map[string]any{"result": "success", "count": 2})
	require.NoError(t, err)
	assert.Equal(t, `{"data":{"count":2,"result":"success"},"status":"ok"}`+"\n", buf.String())
}

func TestOutputFormatter_JSONRejectsFloats(t *testing.T) {
	formatter := &OutputFormatter{Format: "json", Writer: &bytes.Buffer{}}
	err := formatter.Success(map[string]any{"ratio": 0.5})
	assert.ErrorContains(t, err, "floats are forbidden")
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error(ErrCodeInput, "failed to read input", map[string]any{"cause": "no such file"})
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Error  struct {
			Code    string            `json:"code"`
			Message string            `json:"message"`
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "E002", resp.Error.Code)
	assert.Equal(t, "failed to read input", resp.Error.Message)
	assert.Equal(t, "no such file", resp.Error.Details["cause"])
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	require.NoError(t, formatter.Success("All scenarios passed"))
	require.NoError(t, formatter.Success(map[string]any{"b": 2, "a": "x"}))
	assert.Equal(t, "All scenarios passed\na: x\nb: 2\n", buf.String())
}

func TestOutputFormatter_TextErrorGoesToErrWriter(t *testing.T) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:    "text",
		Writer:    out,
		ErrWriter: errOut,
		Verbose:   true,
	}

	require.NoError(t, formatter.Error(ErrCodeCollision, "hash collision", map[string]any{"round": 3}))
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "Error [E003]: hash collision")
	assert.Contains(t, errOut.String(), "round: 3")
}

func TestOutputFormatter_Fail(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	err := formatter.Fail(ExitCommandError, ErrCodeConfig, "invalid configuration", errors.New("bad hash"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.True(t, IsReported(err))
	assert.Contains(t, buf.String(), "Error [E001]: invalid configuration")
	assert.Equal(t, "invalid configuration: bad hash", err.Error())
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:    "json",
				Writer:    out,
				ErrWriter: errOut,
				Verbose:   tt.verbose,
			}

			formatter.VerboseLog("Processing %s", "graph.nt")

			assert.Empty(t, out.String())
			if tt.wantLog {
				assert.Contains(t, errOut.String(), "Processing graph.nt")
			} else {
				assert.Empty(t, errOut.String())
			}
		})
	}
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(fmt.Errorf("wrapped: %w", NewExitError(ExitCommandError, "bad"))))
	assert.False(t, IsReported(NewExitError(ExitFailure, "x")))
}
