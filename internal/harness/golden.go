package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/eav/internal/ir"
)

// Snapshot captures what a scenario loaded.
// All fields use canonical JSON serialization for deterministic comparison.
type Snapshot struct {
	ScenarioName string
	LoadID       string
	Entities     []ir.IRObject
	Queries      int
}

// toCanonical converts the snapshot to an IRObject for canonical JSON.
func (s *Snapshot) toCanonical() ir.IRObject {
	entities := make(ir.IRArray, len(s.Entities))
	for i, e := range s.Entities {
		entities[i] = e
	}
	return ir.IRObject{
		"scenario_name": ir.IRString(s.ScenarioName),
		"load_id":       ir.IRString(s.LoadID),
		"entities":      entities,
		"queries":       ir.IRInt(int64(s.Queries)),
	}
}

// SnapshotJSON renders result as the canonical JSON stored in golden files.
func SnapshotJSON(scenarioName string, result *Result) ([]byte, error) {
	snapshot := Snapshot{
		ScenarioName: scenarioName,
		LoadID:       result.LoadID,
		Entities:     result.Entities,
		Queries:      result.Queries,
	}
	return ir.MarshalCanonical(snapshot.toCanonical())
}

// RunWithGolden executes a scenario and compares the snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := SnapshotJSON(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
