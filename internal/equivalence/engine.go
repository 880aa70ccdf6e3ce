// Package equivalence compares reference and candidate outputs field by
// field and decides whether they agree within tolerance.
//
// A numeric disagreement is not an error. It is a pass=false result, and
// the report carries the observed errors so an engineer can judge whether
// the tolerance or the candidate is wrong.
package equivalence

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/algoparity/parity-go/internal/domain"
)

// relativeFloor is the reference-magnitude threshold below which relative
// error is meaningless and is not computed.
const relativeFloor = 1e-15

// PairingError reports reference and candidate output sets that do not
// cover the same cases. No comparison result is produced for a mispaired run.
type PairingError struct {
	MissingInReference []string
	MissingInCandidate []string
}

func (e *PairingError) Error() string {
	var parts []string
	if len(e.MissingInReference) > 0 {
		parts = append(parts, fmt.Sprintf("cases missing in reference outputs: %s", strings.Join(e.MissingInReference, ", ")))
	}
	if len(e.MissingInCandidate) > 0 {
		parts = append(parts, fmt.Sprintf("cases missing in candidate outputs: %s", strings.Join(e.MissingInCandidate, ", ")))
	}
	return "output pairing failed: " + strings.Join(parts, "; ")
}

// FieldMismatchError reports an output field that cannot be compared
// elementwise: absent on one side or shaped differently.
type FieldMismatchError struct {
	Case   string
	Field  string
	Reason string
}

func (e *FieldMismatchError) Error() string {
	return fmt.Sprintf("case %q field %q: %s", e.Case, e.Field, e.Reason)
}

// Engine compares paired outputs under a tolerance policy. Defaults is the
// system-wide tolerance used when neither the case nor the suite sets one.
type Engine struct {
	Defaults domain.ToleranceSpec
}

// Compare pairs reference and candidate outputs by case name and produces
// an equivalence report in the suite's case order.
//
// Each output field's absolute error is the elementwise maximum of
// |ref - cand|. Relative error is computed only on elements whose
// reference magnitude exceeds the floor. A case passes when its maximum
// absolute error is within tolerance and, if a relative bound is
// configured, its maximum relative error is too.
func (e Engine) Compare(suite domain.Suite, ref, cand []domain.ObservedOutput) (domain.EquivalenceReport, error) {
	refByCase, err := indexByCase(ref)
	if err != nil {
		return domain.EquivalenceReport{}, err
	}
	candByCase, err := indexByCase(cand)
	if err != nil {
		return domain.EquivalenceReport{}, err
	}
	if err := checkPairing(suite, refByCase, candByCase); err != nil {
		return domain.EquivalenceReport{}, err
	}

	report := domain.EquivalenceReport{
		Algorithm: suite.Algorithm,
		AllPassed: true,
		Total:     len(suite.Cases),
		Results:   make([]domain.ComparisonResult, 0, len(suite.Cases)),
	}

	for _, tc := range suite.Cases {
		result, err := e.compareCase(suite, tc, refByCase[tc.Name], candByCase[tc.Name])
		if err != nil {
			return domain.EquivalenceReport{}, err
		}
		if result.Passed {
			report.Passed++
		} else {
			report.Failed++
			report.AllPassed = false
		}
		report.MaxAbsoluteError = math.Max(report.MaxAbsoluteError, result.MaxAbsoluteError)
		report.MaxRelativeError = math.Max(report.MaxRelativeError, result.MaxRelativeError)
		report.Results = append(report.Results, result)
	}
	return report, nil
}

func (e Engine) compareCase(suite domain.Suite, tc domain.TestCase, ref, cand domain.ObservedOutput) (domain.ComparisonResult, error) {
	tol := suite.EffectiveTolerance(tc, e.Defaults)
	result := domain.ComparisonResult{
		Case:      tc.Name,
		Passed:    true,
		Tolerance: tol,
	}

	for _, field := range tc.ExpectedFieldNames() {
		refVal, ok := ref.Fields[field]
		if !ok {
			return domain.ComparisonResult{}, &FieldMismatchError{Case: tc.Name, Field: field, Reason: "absent in reference output"}
		}
		candVal, ok := cand.Fields[field]
		if !ok {
			return domain.ComparisonResult{}, &FieldMismatchError{Case: tc.Name, Field: field, Reason: "absent in candidate output"}
		}
		if !refVal.SameShape(candVal) {
			return domain.ComparisonResult{}, &FieldMismatchError{
				Case: tc.Name, Field: field,
				Reason: fmt.Sprintf("shape mismatch: reference has %d elements, candidate has %d", refVal.Len(), candVal.Len()),
			}
		}

		fe := fieldError(field, refVal, candVal)
		result.Fields = append(result.Fields, fe)
		result.MaxAbsoluteError = math.Max(result.MaxAbsoluteError, fe.AbsoluteError)
		if fe.RelativeError != nil {
			result.MaxRelativeError = math.Max(result.MaxRelativeError, *fe.RelativeError)
		}

		// Written as a negated <= so a NaN error (non-finite output on
		// either side) can never satisfy the bound.
		if !(fe.AbsoluteError <= tol.Absolute) {
			result.Passed = false
		}
		if tol.Relative != nil && fe.RelativeError != nil && !(*fe.RelativeError <= *tol.Relative) {
			result.Passed = false
		}
	}
	return result, nil
}

// fieldError computes the elementwise maximum absolute and relative error
// for one field. The caller has already checked shapes.
func fieldError(field string, ref, cand domain.Vector) domain.FieldError {
	fe := domain.FieldError{Field: field}
	var maxRel float64
	relSeen := false

	for i, r := range ref.Values {
		abs := math.Abs(r - cand.Values[i])
		fe.AbsoluteError = math.Max(fe.AbsoluteError, abs)
		if math.Abs(r) > relativeFloor {
			maxRel = math.Max(maxRel, abs/math.Abs(r))
			relSeen = true
		}
	}
	if relSeen {
		fe.RelativeError = &maxRel
	}
	return fe
}

func indexByCase(outputs []domain.ObservedOutput) (map[string]domain.ObservedOutput, error) {
	byCase := make(map[string]domain.ObservedOutput, len(outputs))
	for _, out := range outputs {
		if _, dup := byCase[out.Case]; dup {
			return nil, fmt.Errorf("duplicate output for case %q from adapter %s", out.Case, out.Adapter)
		}
		byCase[out.Case] = out
	}
	return byCase, nil
}

// checkPairing requires the two output sets to cover every suite case and
// each other. An identifier present on one side but absent from the other
// fails the run even when the suite never declared it.
func checkPairing(suite domain.Suite, ref, cand map[string]domain.ObservedOutput) error {
	var perr PairingError
	inSuite := make(map[string]bool, len(suite.Cases))
	for _, tc := range suite.Cases {
		inSuite[tc.Name] = true
		if _, ok := ref[tc.Name]; !ok {
			perr.MissingInReference = append(perr.MissingInReference, tc.Name)
		}
		if _, ok := cand[tc.Name]; !ok {
			perr.MissingInCandidate = append(perr.MissingInCandidate, tc.Name)
		}
	}
	for name := range ref {
		if _, ok := cand[name]; !ok && !inSuite[name] {
			perr.MissingInCandidate = append(perr.MissingInCandidate, name)
		}
	}
	for name := range cand {
		if _, ok := ref[name]; !ok && !inSuite[name] {
			perr.MissingInReference = append(perr.MissingInReference, name)
		}
	}
	if len(perr.MissingInReference) > 0 || len(perr.MissingInCandidate) > 0 {
		sort.Strings(perr.MissingInReference)
		sort.Strings(perr.MissingInCandidate)
		return &perr
	}
	return nil
}
