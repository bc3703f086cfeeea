package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	questerrors "github.com/averlon/questline/internal/errors"
)

func TestBoardCommand_ParsesObjectives(t *testing.T) {
	out, err := executeCommand(t, "board", "--text", "Defeat 10 quarry rats\nCollect 5 iron ore\nTalk to Foreman Bryce")
	require.NoError(t, err)

	assert.Contains(t, out, "3 objective(s) recognized")
	assert.Contains(t, out, "quarry_rats")
	assert.Contains(t, out, "iron_ore")
	assert.Contains(t, out, "foreman_bryce")
	assert.Contains(t, out, "board-combat-quarry_rats")
}

func TestBoardCommand_JSONOutput(t *testing.T) {
	out, err := executeCommand(t, "--output", "json", "board", "--text", "Defeat 10 quarry rats")
	require.NoError(t, err)

	var reports []boardReport
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 1)
	assert.Equal(t, "quarry_rats", reports[0].Objective.Target)
	assert.Equal(t, 10, reports[0].Objective.Count)
	assert.Equal(t, "board-combat-quarry_rats", reports[0].ChainID)
	assert.Equal(t, 1, reports[0].Steps)
}

func TestBoardCommand_NothingRecognized(t *testing.T) {
	_, err := executeCommand(t, "board", "--text", "Welcome to the quarry notice board")
	require.Error(t, err)
	assert.ErrorIs(t, err, questerrors.ErrBoardUnreadable)
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
}

func TestBoardCommand_EmptyText(t *testing.T) {
	_, err := executeCommand(t, "board", "--text", "   ")
	require.Error(t, err)
	assert.ErrorIs(t, err, questerrors.ErrEmptyValue)
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
}
