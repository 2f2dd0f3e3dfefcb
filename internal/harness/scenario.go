package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines one eager-load conformance scenario: a database state,
// a batch load and the expected outcome.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Definitions lists CUE entity definition files.
	// Paths are relative to the scenario file location.
	Definitions []string `yaml:"definitions"`

	// Setup holds SQL statements run before any rows are inserted,
	// typically CREATE TABLE for entity tables.
	Setup []string `yaml:"setup,omitempty"`

	// Rows are inserted in order through the store.
	Rows []RowStep `yaml:"rows,omitempty"`

	// Load is the batch load under test.
	Load LoadStep `yaml:"load"`

	// Expect holds per-entity expectations. Entities not listed are not
	// checked.
	Expect []Expectation `yaml:"expect,omitempty"`

	// Queries is the expected number of attribute set fetches. Unset means
	// unchecked.
	Queries *int `yaml:"queries,omitempty"`

	// LoadID is the fixed load id. If empty, defaults to
	// "test-load-default" for deterministic golden file comparison.
	LoadID string `yaml:"load_id,omitempty"`
}

// RowStep inserts one row.
type RowStep struct {
	Table  string         `yaml:"table"`
	Values map[string]any `yaml:"values"`
}

// LoadStep describes the batch load.
type LoadStep struct {
	// Entity is the definition name, e.g. "Product".
	Entity string `yaml:"entity"`

	// Keys restricts the batch to these primary keys. Empty loads every row.
	Keys []any `yaml:"keys,omitempty"`

	// With eager-loads entity relations before attribute sets.
	With []WithStep `yaml:"with,omitempty"`
}

// WithStep declares one entity relation to eager-load.
type WithStep struct {
	// Name is the relation name the records are stored under.
	Name string `yaml:"name"`

	// Relation is owns_many, owns_one or owned_by.
	Relation string `yaml:"relation"`

	// Entity is the related definition name.
	Entity string `yaml:"entity"`

	// IDs scope the relation to catalog entries. Empty uses the related
	// definition's attribute_ids.
	IDs []int64 `yaml:"ids,omitempty"`
}

// Relation kinds accepted in WithStep.Relation.
const (
	RelationOwnsMany = "owns_many"
	RelationOwnsOne  = "owns_one"
	RelationOwnedBy  = "owned_by"
)

// Expectation checks one loaded entity.
type Expectation struct {
	// Key is the entity's primary key.
	Key any `yaml:"key"`

	// Attributes maps names to expected values (subset match).
	Attributes map[string]any `yaml:"attributes,omitempty"`

	// Missing lists names that must not resolve.
	Missing []string `yaml:"missing,omitempty"`

	// Relations maps relation names to expected record counts.
	Relations map[string]int `yaml:"relations,omitempty"`

	// Absent asserts that no entity with Key was loaded.
	Absent bool `yaml:"absent,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Definition paths are resolved relative to the scenario file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict decoding catches typos like "expects:" vs "expect:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	base := filepath.Dir(path)
	for i, def := range scenario.Definitions {
		if !filepath.IsAbs(def) {
			scenario.Definitions[i] = filepath.Join(base, def)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if len(s.Definitions) == 0 {
		return fmt.Errorf("definitions list is required and must be non-empty")
	}
	for _, def := range s.Definitions {
		if _, err := os.Stat(def); os.IsNotExist(err) {
			return fmt.Errorf("definition file not found: %s", def)
		}
	}

	for i, row := range s.Rows {
		if row.Table == "" {
			return fmt.Errorf("rows[%d]: table is required", i)
		}
		if len(row.Values) == 0 {
			return fmt.Errorf("rows[%d]: values is required", i)
		}
	}

	if s.Load.Entity == "" {
		return fmt.Errorf("load.entity is required")
	}
	for i, w := range s.Load.With {
		if w.Name == "" || w.Entity == "" {
			return fmt.Errorf("load.with[%d]: name and entity are required", i)
		}
		switch w.Relation {
		case RelationOwnsMany, RelationOwnsOne, RelationOwnedBy:
		default:
			return fmt.Errorf("load.with[%d]: unknown relation %q", i, w.Relation)
		}
	}

	for i, e := range s.Expect {
		if e.Key == nil {
			return fmt.Errorf("expect[%d]: key is required", i)
		}
	}

	if s.Queries != nil && *s.Queries < 0 {
		return fmt.Errorf("queries must be non-negative")
	}

	return nil
}
