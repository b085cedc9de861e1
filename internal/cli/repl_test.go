package cli

import (
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const replScript = `A1 = 5
B1 = =A1*2
# comment

A1 = 7
show
undo
bogus
redo
quit
A1 = 100
`

func TestReplCommand_Session(t *testing.T) {
	out, errOut, err := runCLI(t, replScript, "repl")
	require.NoError(t, err)

	assert.Contains(t, out, "A1 = 5  -> 5\n")
	assert.Contains(t, out, "B1 = =A1*2  -> 10\n")
	assert.Contains(t, out, "A1 = 7  -> 7  (recomputed B1)\n")
	assert.Equal(t, []string{"=A1*2", "14"}, gridRows(out)["B1"])
	assert.Contains(t, out, "undo\n")
	assert.Contains(t, out, `Error [E_SYNTAX]: expected CELL=TEXT, undo, redo or show; got "bogus"`)
	assert.Contains(t, out, "redo\n")
	assert.NotContains(t, out, "100", "input after quit is ignored")

	assert.Contains(t, errOut, "> ")
}

func TestReplCommand_NoPrompt(t *testing.T) {
	_, errOut, err := runCLI(t, "A1 = 1\n", "repl", "--prompt", "")
	require.NoError(t, err)
	assert.NotContains(t, errOut, "> ")
}

func TestReplCommand_EndOfInput(t *testing.T) {
	out, _, err := runCLI(t, "A1 = 1\nundo\nundo", "repl", "--prompt", "")
	require.NoError(t, err)
	assert.Contains(t, out, "undo: NOTHING_TO_UNDO\n")
}

func TestReplCommand_JSON(t *testing.T) {
	out, _, err := runCLI(t, "A1 = 2\nB1 = =A1+A1\nnope\nshow\n", "--format", "json", "repl", "--prompt", "")
	require.NoError(t, err)

	dec := json.NewDecoder(strings.NewReader(out))
	var responses []map[string]any
	for {
		var resp map[string]any
		if err := dec.Decode(&resp); err == io.EOF {
			break
		} else {
			require.NoError(t, err)
		}
		responses = append(responses, resp)
	}
	require.Len(t, responses, 4)

	edit := responses[1]["data"].(map[string]any)
	assert.Equal(t, "B1", edit["cell"])
	assert.Equal(t, "4", edit["text"])

	assert.Equal(t, "error", responses[2]["status"])
	assert.Equal(t, "E_SYNTAX", responses[2]["error"].(map[string]any)["code"])

	cells := responses[3]["data"].([]any)
	require.Len(t, cells, 2)
	assert.Equal(t, "A1", cells[0].(map[string]any)["id"])
}

func TestReplCommand_VerboseShowsSession(t *testing.T) {
	_, errOut, err := runCLI(t, "", "-v", "repl", "--prompt", "")
	require.NoError(t, err)
	assert.Contains(t, errOut, "session ")
}

func TestReplCommand_RejectsArgs(t *testing.T) {
	_, _, err := runCLI(t, "", "repl", "extra")
	require.Error(t, err)
}
