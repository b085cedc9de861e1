package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Scenario defines a workbook conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Session is a fixed journal session id for deterministic edit ids.
	// If empty, testutil.DefaultSession is used.
	Session string `yaml:"session,omitempty"`

	// HistoryLimit bounds retained snapshots (0 = unlimited).
	HistoryLimit int `yaml:"history_limit,omitempty"`

	// Steps are applied in order to a fresh workbook.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is exactly one of an edit, an undo or a redo.
type Step struct {
	Edit *EditStep `yaml:"edit,omitempty"`
	Undo bool      `yaml:"undo,omitempty"`
	Redo bool      `yaml:"redo,omitempty"`

	// Expect optionally validates the step outcome.
	Expect *StepExpect `yaml:"expect,omitempty"`
}

// EditStep sets the raw input of one cell.
type EditStep struct {
	Cell    string `yaml:"cell"`
	Formula string `yaml:"formula"`
}

// StepExpect specifies the expected outcome of a step.
type StepExpect struct {
	// Error is the expected edit error code (e.g. "NOTHING_TO_UNDO").
	// A step that fails without a matching Error fails the scenario.
	Error string `yaml:"error,omitempty"`

	// Rejected, if set, must match whether the edit was tagged #CIRCULAR.
	Rejected *bool `yaml:"rejected,omitempty"`

	// Recomputed, if set, must equal the dependents refreshed, in order.
	Recomputed []string `yaml:"recomputed,omitempty"`
}

// op names the step kind.
func (s Step) op() string {
	switch {
	case s.Edit != nil:
		return "edit"
	case s.Undo:
		return "undo"
	case s.Redo:
		return "redo"
	}
	return ""
}

// Assertion validates the final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "cell_value": rendered text of Cell equals Text
	// - "cell_formula": raw input of Cell equals Formula
	// - "is_error": error state of Cell equals Expect
	// - "dependents": dependents of Cell equal Dependents, in order
	// - "materialized": presence of Cell in the snapshot equals Expect
	// - "can_undo" / "can_redo": history availability equals Expect
	Type string `yaml:"type"`

	Cell       string   `yaml:"cell,omitempty"`
	Text       *string  `yaml:"text,omitempty"`
	Formula    *string  `yaml:"formula,omitempty"`
	Expect     *bool    `yaml:"expect,omitempty"`
	Dependents []string `yaml:"dependents,omitempty"`
}

// Assertion type constants.
const (
	AssertCellValue    = "cell_value"
	AssertCellFormula  = "cell_formula"
	AssertIsError      = "is_error"
	AssertDependents   = "dependents"
	AssertMaterialized = "materialized"
	AssertCanUndo      = "can_undo"
	AssertCanRedo      = "can_redo"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// FindScenarios returns the .yaml and .yml files in dir, sorted by name.
func FindScenarios(dir string) ([]string, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", pattern, err)
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)
	return paths, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.HistoryLimit < 0 {
		return fmt.Errorf("history_limit must be non-negative")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, s *Step) error {
	ops := 0
	if s.Edit != nil {
		ops++
	}
	if s.Undo {
		ops++
	}
	if s.Redo {
		ops++
	}
	if ops != 1 {
		return fmt.Errorf("steps[%d]: exactly one of edit, undo, redo is required", index)
	}

	if s.Edit != nil && s.Edit.Cell == "" {
		return fmt.Errorf("steps[%d].edit: cell is required", index)
	}

	if s.Expect != nil && s.Edit == nil {
		if s.Expect.Rejected != nil || s.Expect.Recomputed != nil {
			return fmt.Errorf("steps[%d].expect: rejected and recomputed apply to edits only", index)
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	needsCell := func() error {
		if a.Cell == "" {
			return fmt.Errorf("assertions[%d]: cell is required for %s", index, a.Type)
		}
		return nil
	}
	needsExpect := func() error {
		if a.Expect == nil {
			return fmt.Errorf("assertions[%d]: expect is required for %s", index, a.Type)
		}
		return nil
	}

	switch a.Type {
	case AssertCellValue:
		if err := needsCell(); err != nil {
			return err
		}
		if a.Text == nil {
			return fmt.Errorf("assertions[%d]: text is required for cell_value", index)
		}
	case AssertCellFormula:
		if err := needsCell(); err != nil {
			return err
		}
		if a.Formula == nil {
			return fmt.Errorf("assertions[%d]: formula is required for cell_formula", index)
		}
	case AssertIsError, AssertMaterialized:
		if err := needsCell(); err != nil {
			return err
		}
		return needsExpect()
	case AssertDependents:
		return needsCell()
	case AssertCanUndo, AssertCanRedo:
		return needsExpect()
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
