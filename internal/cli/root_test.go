package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	questerrors "github.com/averlon/questline/internal/errors"
)

// executeCommand runs the CLI with the given args against an isolated
// home directory, returning combined output and the execution error.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("NO_COLOR", "1")

	flags := &GlobalFlags{}
	cmd := newRootCmd(flags, BuildInfo{})

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestFormatVersion(t *testing.T) {
	tests := []struct {
		name string
		info BuildInfo
		want string
	}{
		{
			"full info",
			BuildInfo{Version: "1.2.3", Commit: "abc1234", Date: "2026-08-01"},
			"1.2.3 (commit: abc1234, built: 2026-08-01)",
		},
		{
			"empty info falls back",
			BuildInfo{},
			"dev (commit: none, built: unknown)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatVersion(tt.info))
		})
	}
}

func TestRootCommand_ShowsHelp(t *testing.T) {
	out, err := executeCommand(t)
	require.NoError(t, err)
	assert.Contains(t, out, "questline")
	assert.Contains(t, out, "run")
	assert.Contains(t, out, "validate")
	assert.Contains(t, out, "board")
}

func TestRootCommand_InvalidOutputFormat(t *testing.T) {
	_, err := executeCommand(t, "--output", "xml", "board", "--text", "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, questerrors.ErrInvalidOutputFormat)
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
}

func TestVersionCommand(t *testing.T) {
	out, err := executeCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "questline dev (commit: none, built: unknown)")
}

func TestRootCommand_UnknownCommand(t *testing.T) {
	_, err := executeCommand(t, "frobnicate")
	require.Error(t, err)
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
}
