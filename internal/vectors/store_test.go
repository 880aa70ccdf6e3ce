package vectors

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/algoparity/parity-go/internal/domain"
)

const suiteDoc = `{
  "algorithm": "kalman_filter",
  "global_tolerance": {"absolute": 1e-10},
  "test_cases": [
    {
      "name": "nominal",
      "inputs": {
        "state": [1.0, 0.0],
        "measurement": 1.0
      },
      "expected_output": {
        "updated_state": [1.0, 0.0],
        "updated_covariance": [0.0, 0.0, 0.0, 0.0]
      }
    },
    {
      "name": "tight",
      "inputs": {
        "state": [2.0, 1.0],
        "measurement": 3.0
      },
      "expected_output": {
        "updated_state": [3.0, 1.0],
        "updated_covariance": [0.0, 0.0, 0.0, 0.0]
      },
      "tolerance": {"absolute": 1e-12}
    }
  ]
}`

func validSuite() domain.Suite {
	suite, err := Parse([]byte(suiteDoc))
	if err != nil {
		panic(err)
	}
	return suite
}

func TestParse(t *testing.T) {
	t.Parallel()

	suite, err := Parse([]byte(suiteDoc))
	require.NoError(t, err)

	assert.Equal(t, "kalman_filter", suite.Algorithm)
	require.NotNil(t, suite.GlobalTolerance)
	assert.Equal(t, 1e-10, suite.GlobalTolerance.Absolute)
	require.Len(t, suite.Cases, 2)
	assert.Equal(t, "nominal", suite.Cases[0].Name)
	assert.True(t, suite.Cases[0].Inputs["measurement"].Scalar)
	assert.Equal(t, []float64{1, 0}, suite.Cases[0].Inputs["state"].Values)
	require.NotNil(t, suite.Cases[1].Tolerance)
	assert.Equal(t, 1e-12, suite.Cases[1].Tolerance.Absolute)
}

func TestParse_Malformed(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte(`{"algorithm": `))
	assert.Error(t, err)
}

func TestValidate_OK(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Validate(validSuite()))
}

func TestValidate_Structural(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*domain.Suite)
		want   string
	}{
		{
			name:   "missing algorithm",
			mutate: func(s *domain.Suite) { s.Algorithm = "" },
			want:   "algorithm name is required",
		},
		{
			name:   "no cases",
			mutate: func(s *domain.Suite) { s.Cases = nil },
			want:   "no test cases",
		},
		{
			name:   "duplicate case name",
			mutate: func(s *domain.Suite) { s.Cases[1].Name = s.Cases[0].Name },
			want:   "duplicate case name",
		},
		{
			name: "missing expected field",
			mutate: func(s *domain.Suite) {
				s.Cases[1].Expected = map[string]domain.Vector{
					"updated_state": domain.Vectorf(3, 1),
				}
			},
			want: "expected fields",
		},
		{
			name: "shape mismatch",
			mutate: func(s *domain.Suite) {
				s.Cases[1].Expected["updated_state"] = domain.Vectorf(3, 1, 0)
			},
			want: "shape",
		},
		{
			name: "negative tolerance",
			mutate: func(s *domain.Suite) {
				s.GlobalTolerance = &domain.ToleranceSpec{Absolute: -1}
			},
			want: "global_tolerance",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			suite := validSuite()
			tc.mutate(&suite)

			err := Validate(suite)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Error(), tc.want)
		})
	}
}

func TestValidate_NonFiniteValue(t *testing.T) {
	t.Parallel()

	suite := validSuite()
	suite.Cases[1].Expected["updated_state"] = domain.Vectorf(math.NaN(), 1)

	err := Validate(suite)
	var merr *MalformedVectorError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, "tight", merr.Case)
	assert.Equal(t, "updated_state", merr.Field)

	suite = validSuite()
	suite.Cases[0].Inputs["measurement"] = domain.Scalarf(math.Inf(1))

	err = Validate(suite)
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, "nominal", merr.Case)
	assert.Equal(t, "measurement", merr.Field)
}

func TestLoadValidated(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "kalman_filter.json")
	require.NoError(t, os.WriteFile(path, []byte(suiteDoc), 0o644))

	suite, err := LoadValidated(path)
	require.NoError(t, err)
	assert.Equal(t, "kalman_filter", suite.Algorithm)

	_, err = LoadValidated(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestLoadDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "kalman_filter.json"), []byte(suiteDoc), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "low_pass_filter.json"), []byte(lowpassSuiteDoc), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "schema.json"), []byte(`{"not": "a suite"}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore"), 0o644))

	suites, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, suites, 2)
	assert.Equal(t, "kalman_filter", suites[0].Algorithm)
	assert.Equal(t, "low_pass_filter", suites[1].Algorithm)
}

func TestLoadDir_InvalidSuite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte(`{"algorithm": ""}`), 0o644))

	_, err := LoadDir(dir)
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}
