// Package vectors loads and validates test-vector suites from JSON documents.
//
// A suite document has the shape produced by the algorithm teams' tooling:
//
//	{
//	  "algorithm": "kalman_filter",
//	  "global_tolerance": {"absolute": 1e-10},
//	  "test_cases": [
//	    {"name": "...", "inputs": {...}, "expected_output": {...},
//	     "tolerance": {"absolute": 1e-8}}
//	  ]
//	}
//
// All structural and numeric checks happen here, once, at load time. The
// comparison engine can assume a validated suite.
package vectors

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/algoparity/parity-go/internal/domain"
)

// ValidationError reports a structurally invalid suite.
type ValidationError struct {
	Suite  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("suite %q invalid: %s", e.Suite, e.Reason)
}

// MalformedVectorError reports a non-finite numeric value, naming the
// offending case and field.
type MalformedVectorError struct {
	Suite string
	Case  string
	Field string
}

func (e *MalformedVectorError) Error() string {
	return fmt.Sprintf("suite %q case %q field %q contains a non-finite value", e.Suite, e.Case, e.Field)
}

// Parse decodes a suite document. It does not validate; call Validate.
func Parse(data []byte) (domain.Suite, error) {
	var suite domain.Suite
	if err := json.Unmarshal(data, &suite); err != nil {
		return domain.Suite{}, fmt.Errorf("parse suite document: %w", err)
	}
	return suite, nil
}

// Load reads and decodes a suite document from disk.
func Load(path string) (domain.Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Suite{}, fmt.Errorf("read suite %s: %w", path, err)
	}
	suite, err := Parse(data)
	if err != nil {
		return domain.Suite{}, fmt.Errorf("suite %s: %w", path, err)
	}
	return suite, nil
}

// LoadValidated reads, decodes, and validates a suite document.
func LoadValidated(path string) (domain.Suite, error) {
	suite, err := Load(path)
	if err != nil {
		return domain.Suite{}, err
	}
	if err := Validate(suite); err != nil {
		return domain.Suite{}, err
	}
	return suite, nil
}

// LoadDir loads and validates every *.json suite document in a directory,
// skipping schema.json. Results are ordered by filename.
func LoadDir(dir string) ([]domain.Suite, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read suite dir %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" || e.Name() == "schema.json" {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	suites := make([]domain.Suite, 0, len(names))
	for _, name := range names {
		suite, err := LoadValidated(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		suites = append(suites, suite)
	}
	return suites, nil
}

// Validate enforces the suite invariants:
//   - algorithm name present, at least one case
//   - case names unique within the suite
//   - every case's expected-output field set matches the suite schema
//     (the field names and shapes of the first case)
//   - every numeric value finite (MalformedVectorError names case and field)
//   - all tolerance specs are non-negative finite numbers
func Validate(suite domain.Suite) error {
	if suite.Algorithm == "" {
		return &ValidationError{Suite: suite.Algorithm, Reason: "algorithm name is required"}
	}
	if len(suite.Cases) == 0 {
		return &ValidationError{Suite: suite.Algorithm, Reason: "suite has no test cases"}
	}
	if suite.GlobalTolerance != nil {
		if err := domain.ValidateToleranceSpec(*suite.GlobalTolerance); err != nil {
			return &ValidationError{Suite: suite.Algorithm, Reason: fmt.Sprintf("global_tolerance: %v", err)}
		}
	}

	schema := suite.Cases[0].Expected

	seen := make(map[string]bool, len(suite.Cases))
	for _, tc := range suite.Cases {
		if err := domain.ValidateTestCase(tc); err != nil {
			return &ValidationError{Suite: suite.Algorithm, Reason: fmt.Sprintf("case %q: %v", tc.Name, err)}
		}
		if seen[tc.Name] {
			return &ValidationError{Suite: suite.Algorithm, Reason: fmt.Sprintf("duplicate case name %q", tc.Name)}
		}
		seen[tc.Name] = true

		if err := matchesSchema(suite.Algorithm, tc, schema); err != nil {
			return err
		}
		if err := finiteFields(suite.Algorithm, tc.Name, tc.Inputs); err != nil {
			return err
		}
		if err := finiteFields(suite.Algorithm, tc.Name, tc.Expected); err != nil {
			return err
		}
	}
	return nil
}

func matchesSchema(suiteName string, tc domain.TestCase, schema map[string]domain.Vector) error {
	if len(tc.Expected) != len(schema) {
		return &ValidationError{
			Suite:  suiteName,
			Reason: fmt.Sprintf("case %q declares %d expected fields, suite schema has %d", tc.Name, len(tc.Expected), len(schema)),
		}
	}
	for name, want := range schema {
		got, ok := tc.Expected[name]
		if !ok {
			return &ValidationError{
				Suite:  suiteName,
				Reason: fmt.Sprintf("case %q is missing expected field %q", tc.Name, name),
			}
		}
		if !got.SameShape(want) {
			return &ValidationError{
				Suite:  suiteName,
				Reason: fmt.Sprintf("case %q field %q has shape %d, suite schema has %d", tc.Name, name, got.Len(), want.Len()),
			}
		}
	}
	return nil
}

func finiteFields(suiteName, caseName string, fields map[string]domain.Vector) error {
	// Sorted iteration so the first offending field is deterministic.
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !fields[name].AllFinite() {
			return &MalformedVectorError{Suite: suiteName, Case: caseName, Field: name}
		}
	}
	return nil
}
