package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/recalc/internal/ir"
)

// TraceSnapshot captures the complete trace for a scenario execution.
// All fields use canonical JSON serialization for deterministic comparison.
//
// Digests are left out so golden files stay readable; replay already
// verifies them on every run.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Session      string       `json:"session"`
	Steps        []TraceEvent `json:"steps"`
	Final        ir.Snapshot  `json:"-"`
}

// toCanonicalMap converts a TraceSnapshot to a map[string]any for canonical JSON serialization.
// This is required because ir.MarshalCanonical only handles primitives, slices and maps.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	steps := make([]any, len(s.Steps))
	for i, event := range s.Steps {
		m := map[string]any{
			"op":     event.Op,
			"cursor": event.Cursor,
		}
		if event.Cell != "" {
			m["cell"] = event.Cell
		}
		if event.Op == "edit" {
			m["formula"] = event.Formula
		}
		if event.Failed() {
			m["error"] = event.Error
		} else {
			m["seq"] = event.Seq
			if event.Op == "edit" {
				m["rejected"] = event.Rejected
				m["recomputed"] = event.Recomputed
			}
		}
		steps[i] = m
	}

	ids := s.Final.IDs()
	final := make([]any, len(ids))
	for i, id := range ids {
		c := s.Final.Get(id)
		deps := make([]string, len(c.Dependents))
		for j, d := range c.Dependents {
			deps[j] = string(d)
		}
		final[i] = map[string]any{
			"id":         string(id),
			"formula":    c.Formula,
			"text":       c.Value.Text(),
			"is_error":   ir.IsError(c.Value),
			"dependents": deps,
		}
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"session":       s.Session,
		"steps":         steps,
		"final":         final,
	}
}

// MarshalTrace returns the canonical JSON trace of a scenario result.
func MarshalTrace(scenarioName, session string, result *Result) ([]byte, error) {
	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		Session:      session,
		Steps:        result.Trace,
		Final:        result.Final,
	}
	return ir.MarshalCanonical(snapshot.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if trace doesn't match golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	if err := AssertGolden(t, scenario.Name, result.Session, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the given result's trace against a golden file.
// This is useful when you've already run a scenario and want to compare
// the result against a golden file without re-running.
func AssertGolden(t *testing.T, scenarioName, session string, result *Result) error {
	t.Helper()

	traceJSON, err := MarshalTrace(scenarioName, session, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)

	return nil
}
