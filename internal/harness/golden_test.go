package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScenarios runs every scenario under testdata/scenarios against its
// golden trace.
//
// To regenerate golden files after an intended behaviour change:
//
//	go test ./internal/harness -run TestScenarios -update
func TestScenarios(t *testing.T) {
	paths, err := FindScenarios("testdata/scenarios")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)
			assert.Equal(t, name, scenario.Name, "file name matches scenario name")

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestMarshalTrace_Shape(t *testing.T) {
	result := NewResult()
	result.AddTrace(TraceEvent{Op: "undo", Error: "NOTHING_TO_UNDO"})

	got, err := MarshalTrace("empty", "s", result)
	require.NoError(t, err)
	assert.Equal(t,
		`{"final":[],"scenario_name":"empty","session":"s","steps":[{"cursor":0,"error":"NOTHING_TO_UNDO","op":"undo"}]}`,
		string(got))
}
