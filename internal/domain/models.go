package domain

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"
)

func shortID() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func newUUID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	b[6] = (b[6] & 0x0f) | 0x40 // version 4
	b[8] = (b[8] & 0x3f) | 0x80 // variant 10
	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x",
		b[0:4], b[4:6], b[6:8], b[8:10], b[10:16])
}

func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// Vector is a numeric field value: either a scalar or a fixed-length vector.
// It marshals a scalar as a bare JSON number and a vector as a JSON array,
// matching the test-vector document format.
type Vector struct {
	Values []float64
	Scalar bool
}

// Scalarf wraps a single number as a scalar Vector.
func Scalarf(v float64) Vector {
	return Vector{Values: []float64{v}, Scalar: true}
}

// Vectorf wraps a slice as a vector Vector.
func Vectorf(vs ...float64) Vector {
	return Vector{Values: vs}
}

// Len returns the number of elements.
func (v Vector) Len() int { return len(v.Values) }

// SameShape reports whether two values have the same scalar/vector kind and length.
func (v Vector) SameShape(o Vector) bool {
	return v.Scalar == o.Scalar && len(v.Values) == len(o.Values)
}

// AllFinite reports whether every element is a finite number (no NaN/Inf).
func (v Vector) AllFinite() bool {
	for _, x := range v.Values {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// MarshalJSON implements json.Marshaler.
func (v Vector) MarshalJSON() ([]byte, error) {
	if v.Scalar {
		if len(v.Values) != 1 {
			return nil, fmt.Errorf("scalar value must hold exactly one element, got %d", len(v.Values))
		}
		return json.Marshal(v.Values[0])
	}
	return json.Marshal(v.Values)
}

// UnmarshalJSON implements json.Unmarshaler, accepting a number or an array of numbers.
func (v *Vector) UnmarshalJSON(data []byte) error {
	var scalar float64
	if err := json.Unmarshal(data, &scalar); err == nil {
		v.Values = []float64{scalar}
		v.Scalar = true
		return nil
	}
	var values []float64
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("numeric field must be a number or an array of numbers: %w", err)
	}
	v.Values = values
	v.Scalar = false
	return nil
}

// ToleranceSpec bounds the allowed deviation between reference and candidate.
// Absolute is always present; Relative is an optional additional constraint.
// When both are configured, both must hold (conjunctive policy).
type ToleranceSpec struct {
	Absolute float64  `json:"absolute"`
	Relative *float64 `json:"relative,omitempty"`
}

// TestCase is one named input/expected-output pair in a suite.
type TestCase struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Inputs      map[string]Vector `json:"inputs"`
	Expected    map[string]Vector `json:"expected_output"`
	Tolerance   *ToleranceSpec    `json:"tolerance,omitempty"`
}

// ExpectedFieldNames returns the expected-output field names in sorted order.
// Sorted iteration keeps reports byte-for-byte reproducible.
func (tc TestCase) ExpectedFieldNames() []string {
	names := make([]string, 0, len(tc.Expected))
	for name := range tc.Expected {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Suite is an ordered sequence of test cases for one algorithm, with an
// optional suite-wide default tolerance. Immutable after validation.
type Suite struct {
	Algorithm       string         `json:"algorithm"`
	GlobalTolerance *ToleranceSpec `json:"global_tolerance,omitempty"`
	Cases           []TestCase     `json:"test_cases"`
}

// EffectiveTolerance resolves the tolerance for a case:
// per-case override, then the suite default, then the given fallback.
func (s Suite) EffectiveTolerance(tc TestCase, fallback ToleranceSpec) ToleranceSpec {
	if tc.Tolerance != nil {
		return *tc.Tolerance
	}
	if s.GlobalTolerance != nil {
		return *s.GlobalTolerance
	}
	return fallback
}

// ObservedOutput is the result of evaluating one test case against one
// adapter. Immutable once produced.
type ObservedOutput struct {
	Case    string            `json:"case"`
	Adapter string            `json:"adapter"`
	Role    ImplRole          `json:"role"`
	Fields  map[string]Vector `json:"fields"`
}

// FieldError records the error observed on a single output field.
// RelativeError is nil when every element's reference magnitude was below
// the relative-error floor.
type FieldError struct {
	Field         string   `json:"field"`
	AbsoluteError float64  `json:"absolute_error"`
	RelativeError *float64 `json:"relative_error,omitempty"`
}

// ComparisonResult is the per-case outcome of an equivalence comparison.
// Derived, never mutated.
type ComparisonResult struct {
	Case             string        `json:"test_name"`
	Fields           []FieldError  `json:"fields"`
	MaxAbsoluteError float64       `json:"max_absolute_error"`
	MaxRelativeError float64       `json:"max_relative_error"`
	Passed           bool          `json:"passed"`
	Tolerance        ToleranceSpec `json:"tolerance"`
}

// EquivalenceReport aggregates the comparison results for a full suite run.
// A new run produces a new report; reports are never mutated.
type EquivalenceReport struct {
	Algorithm        string             `json:"algorithm"`
	AllPassed        bool               `json:"all_passed"`
	Total            int                `json:"total_tests"`
	Passed           int                `json:"passed_tests"`
	Failed           int                `json:"failed_tests"`
	MaxAbsoluteError float64            `json:"max_absolute_error"`
	MaxRelativeError float64            `json:"max_relative_error"`
	Results          []ComparisonResult `json:"details"`
}

// FailedCases returns the names of cases that did not pass, in report order.
func (r EquivalenceReport) FailedCases() []string {
	var failed []string
	for _, res := range r.Results {
		if !res.Passed {
			failed = append(failed, res.Case)
		}
	}
	return failed
}

// StageResult is the outcome of an upstream pipeline stage (build, local tests).
type StageResult struct {
	Stage     string `json:"stage"`
	Succeeded bool   `json:"succeeded"`
	Log       string `json:"log,omitempty"`
}

// GateDecision is the terminal verdict of the gate controller for one
// pipeline run. Report is set only when the decision was reached by the
// equivalence stage; FailedStage names the upstream stage otherwise.
type GateDecision struct {
	Outcome     GateOutcome        `json:"outcome"`
	Reason      string             `json:"reason"`
	FailedStage string             `json:"failed_stage,omitempty"`
	Report      *EquivalenceReport `json:"report,omitempty"`
	DecidedAt   string             `json:"decided_at"`
}

// NewGateDecision creates a GateDecision stamped with the current time.
func NewGateDecision(outcome GateOutcome, reason string) GateDecision {
	return GateDecision{
		Outcome:   outcome,
		Reason:    reason,
		DecidedAt: nowUTC(),
	}
}

// PipelineState is the top-level release-pipeline workflow state.
type PipelineState struct {
	PipelineID string `json:"pipeline_id"`
	StartedAt  string `json:"started_at"`

	Algorithm      string `json:"algorithm"`
	CurrentVersion string `json:"current_version"`

	Build      *StageResult       `json:"build"`
	LocalTests *StageResult       `json:"local_tests"`
	Report     *EquivalenceReport `json:"report"`
	Decision   *GateDecision      `json:"decision"`

	NextVersion string   `json:"next_version,omitempty"`
	Bump        BumpKind `json:"bump,omitempty"`

	CurrentStage    string  `json:"current_stage"`
	ShouldTerminate bool    `json:"should_terminate"`
	Error           *string `json:"error"`
}

// NewPipelineState creates a PipelineState with generated defaults.
func NewPipelineState(algorithm, currentVersion string) PipelineState {
	return PipelineState{
		PipelineID:     newUUID(),
		StartedAt:      nowUTC(),
		Algorithm:      algorithm,
		CurrentVersion: currentVersion,
		CurrentStage:   "build",
	}
}
