package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted session: a directory fixture, an optional prior
// snapshot, a flow of user operations and assertions over the outcome.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// PageSize overrides the default page size when positive.
	PageSize int `yaml:"page_size,omitempty"`

	// Snapshot is raw slot content written before the store loads.
	// Empty means the slot starts empty.
	Snapshot string `yaml:"snapshot,omitempty"`

	// Directory is what the fake directory returns on fetch.
	Directory DirectoryFixture `yaml:"directory"`

	// Flow is the ordered list of operations.
	Flow []FlowStep `yaml:"flow"`

	// Assertions validate the trace and the final session state.
	Assertions []Assertion `yaml:"assertions"`
}

// DirectoryFixture describes the fake directory.
type DirectoryFixture struct {
	// Users are raw directory users, encoded to JSON and decoded the same
	// way a real listing response is.
	Users []map[string]any `yaml:"users,omitempty"`

	// Fail, when set, makes every fetch fail with this message.
	Fail string `yaml:"fail,omitempty"`
}

// FlowStep is one user operation.
type FlowStep struct {
	// Op is one of the Op* constants.
	Op string `yaml:"op"`

	// Args are the operation arguments. An id argument may be "$last" for
	// the id of the most recently added record.
	Args map[string]any `yaml:"args,omitempty"`

	// Expect optionally checks the step outcome.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of a step.
type ExpectClause struct {
	// Outcome is the expected outcome name (e.g. "ok", "invalid", "not_found").
	Outcome string `yaml:"outcome"`

	// Reason is the expected validation reason, checked when set.
	Reason string `yaml:"reason,omitempty"`
}

// Operations a flow step may name.
const (
	OpHydrate = "hydrate"
	OpAdd     = "add"
	OpUpdate  = "update"
	OpDelete  = "delete"
	OpSearch  = "search"
	OpSort    = "sort"
	OpPage    = "page"
	OpWhere   = "where"
	OpView    = "view"
)

var knownOps = map[string]bool{
	OpHydrate: true, OpAdd: true, OpUpdate: true, OpDelete: true,
	OpSearch: true, OpSort: true, OpPage: true, OpWhere: true, OpView: true,
}

// Assertion validates the trace or the final session state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_contains": an op appears in the trace with matching args
	// - "trace_order": ops appear in the given order
	// - "trace_count": an op appears exactly Count times
	// - "view": the final page matches Names, IDs, TotalPages and Empty
	// - "store_count": the store holds exactly Count records
	Type string `yaml:"type"`

	// Op is the operation name (trace_contains, trace_count).
	Op string `yaml:"op,omitempty"`

	// Args are expected step arguments (trace_contains). Subset match.
	Args map[string]any `yaml:"args,omitempty"`

	// Ops is the expected order (trace_order).
	Ops []string `yaml:"ops,omitempty"`

	// Count is the expected number (trace_count, store_count).
	Count int `yaml:"count,omitempty"`

	// Names is the expected name order of the final page (view).
	Names []string `yaml:"names,omitempty"`

	// IDs is the expected id order of the final page (view).
	IDs []int64 `yaml:"ids,omitempty"`

	// TotalPages is the expected page count (view).
	TotalPages int `yaml:"total_pages,omitempty"`

	// Empty is the expected empty state (view): none, store_empty, no_matches.
	Empty string `yaml:"empty,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertView          = "view"
	AssertStoreCount    = "store_count"
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
	decoder.KnownFields(true) // Reject unknown fields
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
	if s.PageSize < 0 {
		return fmt.Errorf("page_size must be non-negative")
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Flow {
		if step.Op == "" {
			return fmt.Errorf("flow[%d]: op is required", i)
		}
		if !knownOps[step.Op] {
			return fmt.Errorf("flow[%d]: unknown op %q", i, step.Op)
		}
		if step.Expect != nil && step.Expect.Outcome == "" {
			return fmt.Errorf("flow[%d].expect: outcome is required", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Ops) == 0 {
			return fmt.Errorf("assertions[%d]: ops list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertView:
		if a.Names == nil && a.IDs == nil && a.TotalPages == 0 && a.Empty == "" {
			return fmt.Errorf("assertions[%d]: view needs at least one of names, ids, total_pages, empty", index)
		}
	case AssertStoreCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for store_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
