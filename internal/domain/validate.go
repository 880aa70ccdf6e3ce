package domain

import "fmt"

// ValidateToleranceSpec checks that tolerance bounds are non-negative finite numbers.
func ValidateToleranceSpec(t ToleranceSpec) error {
	if !Scalarf(t.Absolute).AllFinite() || t.Absolute < 0 {
		return fmt.Errorf("absolute tolerance must be a non-negative finite number, got %v", t.Absolute)
	}
	if t.Relative != nil {
		if !Scalarf(*t.Relative).AllFinite() || *t.Relative < 0 {
			return fmt.Errorf("relative tolerance must be a non-negative finite number, got %v", *t.Relative)
		}
	}
	return nil
}

// ValidateTestCase checks required fields on a TestCase.
func ValidateTestCase(tc TestCase) error {
	if tc.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(tc.Inputs) == 0 {
		return fmt.Errorf("inputs are required")
	}
	if len(tc.Expected) == 0 {
		return fmt.Errorf("expected_output is required")
	}
	if tc.Tolerance != nil {
		if err := ValidateToleranceSpec(*tc.Tolerance); err != nil {
			return fmt.Errorf("tolerance: %w", err)
		}
	}
	return nil
}

// ValidateObservedOutput checks required fields on an ObservedOutput.
func ValidateObservedOutput(o ObservedOutput) error {
	if o.Case == "" {
		return fmt.Errorf("case is required")
	}
	if o.Adapter == "" {
		return fmt.Errorf("adapter is required")
	}
	if !o.Role.Valid() {
		return fmt.Errorf("invalid role: %q", o.Role)
	}
	return nil
}

// ValidateGateDecision checks required fields on a GateDecision.
func ValidateGateDecision(d GateDecision) error {
	if !d.Outcome.Valid() {
		return fmt.Errorf("invalid outcome: %q", d.Outcome)
	}
	if d.Reason == "" {
		return fmt.Errorf("reason is required")
	}
	return nil
}

// ValidatePipelineState checks required fields on a PipelineState.
func ValidatePipelineState(s PipelineState) error {
	if s.PipelineID == "" {
		return fmt.Errorf("pipeline_id is required")
	}
	if s.Algorithm == "" {
		return fmt.Errorf("algorithm is required")
	}
	if s.Decision != nil {
		if err := ValidateGateDecision(*s.Decision); err != nil {
			return fmt.Errorf("decision: %w", err)
		}
	}
	return nil
}
