package cli

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"

	questerrors "github.com/averlon/questline/internal/errors"
)

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, ExitSuccess},
		{"generic error", stderrors.New("boom"), ExitError},
		{"exit code 2 wrapper", questerrors.NewExitCode2Error(stderrors.New("bad file")), ExitInvalidInput},
		{
			"wrapped exit code 2",
			questerrors.Wrap(questerrors.NewExitCode2Error(stderrors.New("bad file")), "loading"),
			ExitInvalidInput,
		},
		{
			"invalid output format",
			questerrors.Wrapf(questerrors.ErrInvalidOutputFormat, "%q", "xml"),
			ExitInvalidInput,
		},
		{"cobra unknown flag", stderrors.New(`unknown flag: --bogus`), ExitInvalidInput},
		{"cobra unknown command", stderrors.New(`unknown command "frob" for "questline"`), ExitInvalidInput},
		{
			"cobra mutually exclusive",
			stderrors.New("if any flags in the group [verbose quiet] are set none of the others can be"),
			ExitInvalidInput,
		},
		{"execution stopped", questerrors.ErrExecutionStopped, ExitError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCodeForError(tt.err))
		})
	}
}

func TestIsValidOutputFormat(t *testing.T) {
	assert.True(t, IsValidOutputFormat(OutputText))
	assert.True(t, IsValidOutputFormat(OutputJSON))
	assert.False(t, IsValidOutputFormat("xml"))
	assert.False(t, IsValidOutputFormat(""))
	assert.False(t, IsValidOutputFormat("JSON"), "formats are case-sensitive")
}

func TestValidOutputFormats(t *testing.T) {
	assert.Equal(t, []string{OutputText, OutputJSON}, ValidOutputFormats())
}
