package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVector_UnmarshalScalar(t *testing.T) {
	t.Parallel()
	var v Vector
	require.NoError(t, json.Unmarshal([]byte(`1.5`), &v))
	assert.True(t, v.Scalar)
	assert.Equal(t, []float64{1.5}, v.Values)
}

func TestVector_UnmarshalArray(t *testing.T) {
	t.Parallel()
	var v Vector
	require.NoError(t, json.Unmarshal([]byte(`[1.0, 0.0]`), &v))
	assert.False(t, v.Scalar)
	assert.Equal(t, []float64{1.0, 0.0}, v.Values)
}

func TestVector_UnmarshalRejectsNonNumeric(t *testing.T) {
	t.Parallel()
	var v Vector
	err := json.Unmarshal([]byte(`"abc"`), &v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "number or an array")
}

func TestVector_MarshalRoundTrip(t *testing.T) {
	t.Parallel()
	data, err := json.Marshal(Scalarf(2.5))
	require.NoError(t, err)
	assert.Equal(t, `2.5`, string(data))

	data, err = json.Marshal(Vectorf(1, 2))
	require.NoError(t, err)
	assert.Equal(t, `[1,2]`, string(data))
}

func TestVector_SameShape(t *testing.T) {
	t.Parallel()
	assert.True(t, Vectorf(1, 2).SameShape(Vectorf(3, 4)))
	assert.False(t, Vectorf(1, 2).SameShape(Vectorf(1)))
	assert.False(t, Scalarf(1).SameShape(Vectorf(1)))
}

func TestVector_AllFinite(t *testing.T) {
	t.Parallel()
	assert.True(t, Vectorf(0, -1e300).AllFinite())
	assert.False(t, Vectorf(1, math.NaN()).AllFinite())
	assert.False(t, Scalarf(math.Inf(1)).AllFinite())
}

func TestSuite_EffectiveTolerance(t *testing.T) {
	t.Parallel()
	fallback := ToleranceSpec{Absolute: 1e-10}
	perCase := &ToleranceSpec{Absolute: 1e-6}
	global := &ToleranceSpec{Absolute: 1e-8}

	tests := []struct {
		name    string
		suite   Suite
		tc      TestCase
		wantAbs float64
	}{
		{"per-case override wins", Suite{GlobalTolerance: global}, TestCase{Tolerance: perCase}, 1e-6},
		{"suite default next", Suite{GlobalTolerance: global}, TestCase{}, 1e-8},
		{"system fallback last", Suite{}, TestCase{}, 1e-10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tt.suite.EffectiveTolerance(tt.tc, fallback)
			assert.Equal(t, tt.wantAbs, got.Absolute)
		})
	}
}

func TestTestCase_ExpectedFieldNamesSorted(t *testing.T) {
	t.Parallel()
	tc := TestCase{Expected: map[string]Vector{
		"updated_state":      Vectorf(1, 0),
		"updated_covariance": Vectorf(0, 0, 0, 0),
	}}
	assert.Equal(t, []string{"updated_covariance", "updated_state"}, tc.ExpectedFieldNames())
}

func TestEquivalenceReport_FailedCases(t *testing.T) {
	t.Parallel()
	r := EquivalenceReport{Results: []ComparisonResult{
		{Case: "a", Passed: true},
		{Case: "b", Passed: false},
		{Case: "c", Passed: false},
	}}
	assert.Equal(t, []string{"b", "c"}, r.FailedCases())
}

func TestNewPipelineState(t *testing.T) {
	t.Parallel()
	s := NewPipelineState("kalman_filter", "0.1.0")
	assert.NotEmpty(t, s.PipelineID)
	assert.NotEmpty(t, s.StartedAt)
	assert.Equal(t, "kalman_filter", s.Algorithm)
	assert.Equal(t, "build", s.CurrentStage)
	assert.False(t, s.ShouldTerminate)
}

func TestNewGateDecision(t *testing.T) {
	t.Parallel()
	d := NewGateDecision(GateHalt, "build failure")
	assert.Equal(t, GateHalt, d.Outcome)
	assert.NotEmpty(t, d.DecidedAt)
}
