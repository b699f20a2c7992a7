package cli

import (
	"bytes"
	"encoding/json"
	"errors"
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

	data := map[string]string{"result": "success"}
	err := formatter.Success(data)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error(ErrCodeNotFound, "merged stream not found", nil)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
	assert.Equal(t, "merged stream not found", resp.Error.Message)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	require.NoError(t, formatter.Success("consolidated 3 records"))
	assert.Equal(t, "consolidated 3 records\n", buf.String())
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	require.NoError(t, formatter.Error(ErrCodeGeneric, "something broke", nil))
	assert.Contains(t, buf.String(), "Error [E001]: something broke")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:    "json",
		Writer:    out,
		ErrWriter: errOut,
		Verbose:   true,
	}

	formatter.VerboseLog("processed %d files", 7)
	assert.Empty(t, out.String(), "verbose logs must not corrupt JSON output")
	assert.Equal(t, "processed 7 files\n", errOut.String())

	formatter.Verbose = false
	errOut.Reset()
	formatter.VerboseLog("silent")
	assert.Empty(t, errOut.String())
}

func TestExitError(t *testing.T) {
	base := errors.New("boom")
	wrapped := WrapExitError(ExitCommandError, "stage failed", base)

	assert.Equal(t, "stage failed: boom", wrapped.Error())
	assert.ErrorIs(t, wrapped, base)
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))

	plain := NewExitError(ExitFailure, "validation failed")
	assert.Equal(t, "validation failed", plain.Error())
	assert.Equal(t, ExitFailure, GetExitCode(plain))

	assert.Equal(t, ExitFailure, GetExitCode(errors.New("untagged")))
}
