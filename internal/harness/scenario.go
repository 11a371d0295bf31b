package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/refract-engine/refract/internal/engine"
)

// Scenario defines a conformance test scenario: a rule set, initial
// facts, and expectations about the run.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Rules is the path to the CUE rule-set file.
	// Relative paths resolve against the scenario file location.
	Rules string `yaml:"rules"`

	// Strategy selects conflict resolution: priority, specificity, or
	// order. Defaults to priority.
	Strategy string `yaml:"strategy,omitempty"`

	// MaxCycles overrides the run cycle guard when positive.
	MaxCycles int `yaml:"max_cycles,omitempty"`

	// Facts is the initial working memory, one tuple per entry.
	Facts [][]string `yaml:"facts"`

	// Expect validates the run outcome.
	Expect ExpectClause `yaml:"expect"`
}

// ExpectClause specifies expected run behavior. All listed checks are
// evaluated; a scenario fails with every mismatch reported, not just
// the first.
type ExpectClause struct {
	// State is the expected terminal state ("SATURATED" or "FAILED").
	// If empty, the state is not checked.
	State string `yaml:"state,omitempty"`

	// Derived lists facts that must be present in final memory.
	// Subset match - other facts may exist too.
	Derived [][]string `yaml:"derived,omitempty"`

	// Absent lists facts that must NOT be present in final memory.
	Absent [][]string `yaml:"absent,omitempty"`

	// FiringOrder lists rule names that must fire in this relative
	// order. Intervening firings are allowed.
	FiringOrder []string `yaml:"firing_order,omitempty"`

	// FiringCount pins the exact number of firings when non-nil.
	FiringCount *int `yaml:"firing_count,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file, resolving the
// rules path relative to the scenario file's directory.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Rules != "" && !filepath.IsAbs(scenario.Rules) {
		scenario.Rules = filepath.Join(filepath.Dir(path), scenario.Rules)
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

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Rules == "" {
		return fmt.Errorf("rules path is required")
	}
	if _, err := os.Stat(s.Rules); os.IsNotExist(err) {
		return fmt.Errorf("rules file not found: %s", s.Rules)
	}

	if s.Strategy != "" {
		if _, err := engine.ParseStrategy(s.Strategy); err != nil {
			return fmt.Errorf("invalid strategy: %w", err)
		}
	}

	if s.MaxCycles < 0 {
		return fmt.Errorf("max_cycles must be non-negative")
	}

	if len(s.Facts) == 0 {
		return fmt.Errorf("facts list is required and must be non-empty")
	}
	for i, tuple := range s.Facts {
		if len(tuple) == 0 {
			return fmt.Errorf("facts[%d]: tuple must be non-empty", i)
		}
	}

	e := &s.Expect
	if e.State == "" && len(e.Derived) == 0 && len(e.Absent) == 0 &&
		len(e.FiringOrder) == 0 && e.FiringCount == nil {
		return fmt.Errorf("expect clause must contain at least one check")
	}
	if e.State != "" && e.State != string(engine.StateSaturated) && e.State != string(engine.StateFailed) {
		return fmt.Errorf("expect.state must be %q or %q", engine.StateSaturated, engine.StateFailed)
	}
	if e.FiringCount != nil && *e.FiringCount < 0 {
		return fmt.Errorf("expect.firing_count must be non-negative")
	}

	return nil
}
