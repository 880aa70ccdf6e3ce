package tests

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/algoparity/parity-go/internal/adapter"
	"github.com/algoparity/parity-go/internal/domain"
	"github.com/algoparity/parity-go/internal/equivalence"
	"github.com/algoparity/parity-go/internal/kalman"
	"github.com/algoparity/parity-go/internal/lowpass"
	"github.com/algoparity/parity-go/internal/runner"
	"github.com/algoparity/parity-go/internal/testutil"
	"github.com/algoparity/parity-go/internal/vectors"
)

func goldenDir() string {
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(filename), "golden")
}

// TestContractFixturesExist verifies the golden suite files exist.
func TestContractFixturesExist(t *testing.T) {
	t.Parallel()
	dir := goldenDir()
	expected := []string{
		"kalman_filter.json",
		"low_pass_filter.json",
	}
	for _, name := range expected {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); os.IsNotExist(err) {
				t.Errorf("missing golden fixture: %s", name)
			}
		})
	}
}

// TestContractFixturesValidJSON verifies each fixture is valid JSON.
func TestContractFixturesValidJSON(t *testing.T) {
	t.Parallel()
	dir := goldenDir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read golden dir: %v", err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".json" {
			continue
		}
		t.Run(e.Name(), func(t *testing.T) {
			t.Parallel()
			data, err := os.ReadFile(filepath.Join(dir, e.Name()))
			if err != nil {
				t.Fatalf("read %s: %v", e.Name(), err)
			}
			if !json.Valid(data) {
				t.Errorf("%s is not valid JSON", e.Name())
			}
		})
	}
}

// TestContractSuiteSchema validates the kalman suite against the store rules.
func TestContractSuiteSchema(t *testing.T) {
	t.Parallel()
	suite, err := vectors.LoadValidated(filepath.Join(goldenDir(), "kalman_filter.json"))
	if err != nil {
		t.Fatalf("load suite: %v", err)
	}
	if suite.Algorithm != "kalman_filter" {
		t.Errorf("algorithm = %q, want kalman_filter", suite.Algorithm)
	}
	if len(suite.Cases) < 4 {
		t.Fatalf("expected at least 4 cases, got %d", len(suite.Cases))
	}
	required := []string{kalman.FieldState, kalman.FieldMeasurement, kalman.FieldCovariance,
		kalman.FieldMeasurementNoise, kalman.FieldProcessNoise}
	for _, tc := range suite.Cases {
		for _, field := range required {
			if _, ok := tc.Inputs[field]; !ok {
				t.Errorf("case %s missing input %q", tc.Name, field)
			}
		}
		for _, field := range []string{kalman.FieldUpdatedState, kalman.FieldUpdatedCovariance} {
			if _, ok := tc.Expected[field]; !ok {
				t.Errorf("case %s missing expected output %q", tc.Name, field)
			}
		}
	}
}

// TestContractReferenceMatchesGolden runs each in-process reference
// implementation on every golden case of its suite and compares against
// the recorded expected outputs.
func TestContractReferenceMatchesGolden(t *testing.T) {
	t.Parallel()
	references := map[string]adapter.Adapter{
		"kalman_filter.json":   kalman.Reference(),
		"low_pass_filter.json": lowpass.Reference(),
	}
	for file, ref := range references {
		t.Run(file, func(t *testing.T) {
			t.Parallel()
			checkReferenceMatchesGolden(t, file, ref)
		})
	}
}

func checkReferenceMatchesGolden(t *testing.T, file string, ref adapter.Adapter) {
	t.Helper()
	suite, err := vectors.LoadValidated(filepath.Join(goldenDir(), file))
	if err != nil {
		t.Fatalf("load suite: %v", err)
	}

	ctx := context.Background()
	outputs, err := runner.RunSuite(ctx, ref, suite, 4)
	if err != nil {
		t.Fatalf("run reference: %v", err)
	}

	tol := 1e-10
	for i, tc := range suite.Cases {
		got := outputs[i].Fields
		for field, want := range tc.Expected {
			out, ok := got[field]
			if !ok {
				t.Errorf("case %s: reference produced no %q", tc.Name, field)
				continue
			}
			wantVals := want.Values
			gotVals := out.Values
			if len(wantVals) != len(gotVals) {
				t.Errorf("case %s field %s: length %d, want %d", tc.Name, field, len(gotVals), len(wantVals))
				continue
			}
			for j := range wantVals {
				diff := gotVals[j] - wantVals[j]
				if diff < 0 {
					diff = -diff
				}
				if diff > tol {
					t.Errorf("case %s field %s[%d]: got %v, want %v", tc.Name, field, j, gotVals[j], wantVals[j])
				}
			}
		}
	}
}

// TestContractCandidateEquivalence runs both adapters end to end through the
// comparison engine and expects a clean report.
func TestContractCandidateEquivalence(t *testing.T) {
	t.Parallel()
	suite, err := vectors.LoadValidated(filepath.Join(goldenDir(), "kalman_filter.json"))
	if err != nil {
		t.Fatalf("load suite: %v", err)
	}

	ctx := context.Background()
	refOut, err := runner.RunSuite(ctx, kalman.Reference(), suite, 4)
	if err != nil {
		t.Fatalf("run reference: %v", err)
	}
	candOut, err := runner.RunSuite(ctx, testutil.CandidateAdapter(), suite, 4)
	if err != nil {
		t.Fatalf("run candidate: %v", err)
	}

	engine := equivalence.Engine{Defaults: domain.ToleranceSpec{Absolute: 1e-10}}
	rpt, err := engine.Compare(suite, refOut, candOut)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if !rpt.AllPassed {
		t.Fatalf("expected all cases to pass, failing: %v", rpt.FailedCases())
	}
	if rpt.Total != len(suite.Cases) {
		t.Errorf("total = %d, want %d", rpt.Total, len(suite.Cases))
	}
}

// TestContractPerturbedCandidateDiverges injects a constant offset into the
// candidate state and expects the report to flag every case.
func TestContractPerturbedCandidateDiverges(t *testing.T) {
	t.Parallel()
	suite, err := vectors.LoadValidated(filepath.Join(goldenDir(), "kalman_filter.json"))
	if err != nil {
		t.Fatalf("load suite: %v", err)
	}

	ctx := context.Background()
	refOut, err := runner.RunSuite(ctx, kalman.Reference(), suite, 4)
	if err != nil {
		t.Fatalf("run reference: %v", err)
	}
	candOut, err := runner.RunSuite(ctx, testutil.PerturbedAdapter(0.01), suite, 4)
	if err != nil {
		t.Fatalf("run perturbed candidate: %v", err)
	}

	engine := equivalence.Engine{Defaults: domain.ToleranceSpec{Absolute: 1e-10}}
	rpt, err := engine.Compare(suite, refOut, candOut)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if rpt.AllPassed {
		t.Fatal("expected divergence with perturbed candidate")
	}
	if rpt.Failed != len(suite.Cases) {
		t.Errorf("failed = %d, want %d", rpt.Failed, len(suite.Cases))
	}
	if rpt.MaxAbsoluteError < 0.009 || rpt.MaxAbsoluteError > 0.011 {
		t.Errorf("max absolute error = %v, want about 0.01", rpt.MaxAbsoluteError)
	}
}
