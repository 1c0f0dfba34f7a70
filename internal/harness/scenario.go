package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted sequence of node store operations plus the checks
// to run against the resulting tree and grid.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Seed is imported into the database verbatim, as [id, parent] pairs,
	// before the first step. Nothing is loaded until a load step runs.
	Seed [][2]int64 `yaml:"seed,omitempty"`

	// Steps run in order against a single node store.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final tree and grid.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one operation. Exactly one of Add, Remove, Clear, Load or Fail
// is set.
type Step struct {
	// Add creates a child under the node with this long id ("/" is the root).
	Add *string `yaml:"add,omitempty"`

	// Remove deletes the node with this long id ("/" removes everything).
	Remove *string `yaml:"remove,omitempty"`

	// Clear removes every node.
	Clear bool `yaml:"clear,omitempty"`

	// Load rebuilds the tree from the database.
	Load bool `yaml:"load,omitempty"`

	// Fail makes the next N authority requests fail.
	Fail int `yaml:"fail,omitempty"`

	// Expect is the outcome of the step: ok (default), not_found or
	// authority_failure. Ignored for fail steps.
	Expect string `yaml:"expect,omitempty"`

	// Loaded is the expected node count of a load step.
	Loaded *int `yaml:"loaded,omitempty"`
}

// Outcomes a step can expect.
const (
	OutcomeOK               = "ok"
	OutcomeNotFound         = "not_found"
	OutcomeAuthorityFailure = "authority_failure"
)

// Assertion validates the final tree or grid.
type Assertion struct {
	// Type is one of width, rows, present, absent or children.
	Type string `yaml:"type"`

	// Node is the long id checked by present, absent and children.
	Node string `yaml:"node,omitempty"`

	// Value is the expected number for width and rows.
	Value *int `yaml:"value,omitempty"`

	// Children are the expected short ids, in order, for children.
	Children []string `yaml:"children,omitempty"`
}

// Assertion type constants.
const (
	AssertWidth    = "width"
	AssertRows     = "rows"
	AssertPresent  = "present"
	AssertAbsent   = "absent"
	AssertChildren = "children"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field checking.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // catches typos like "assertion:" vs "assertions:"
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
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

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, pair := range s.Seed {
		if pair[0] <= 0 || pair[1] < 0 {
			return fmt.Errorf("seed[%d]: ids must be positive and parents non-negative", i)
		}
		if pair[0] == pair[1] {
			return fmt.Errorf("seed[%d]: node %d cannot be its own parent", i, pair[0])
		}
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

func validateStep(index int, st *Step) error {
	set := 0
	for _, on := range []bool{st.Add != nil, st.Remove != nil, st.Clear, st.Load, st.Fail != 0} {
		if on {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("steps[%d]: exactly one of add, remove, clear, load or fail is required", index)
	}

	if st.Fail < 0 {
		return fmt.Errorf("steps[%d]: fail must be positive", index)
	}

	switch st.Expect {
	case "", OutcomeOK, OutcomeNotFound, OutcomeAuthorityFailure:
	default:
		return fmt.Errorf("steps[%d]: unknown expect %q", index, st.Expect)
	}

	if st.Loaded != nil && !st.Load {
		return fmt.Errorf("steps[%d]: loaded is only valid on load steps", index)
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertWidth, AssertRows:
		if a.Value == nil {
			return fmt.Errorf("assertions[%d]: value is required for %s", index, a.Type)
		}
	case AssertPresent, AssertAbsent:
		if a.Node == "" {
			return fmt.Errorf("assertions[%d]: node is required for %s", index, a.Type)
		}
	case AssertChildren:
		if a.Node == "" {
			return fmt.Errorf("assertions[%d]: node is required for children", index)
		}
		if a.Children == nil {
			return fmt.Errorf("assertions[%d]: children list is required (use [] for none)", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
