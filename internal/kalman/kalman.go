// Package kalman is the reference implementation of the constant-velocity
// Kalman filter step that the release pipeline verifies generated builds
// against.
//
// The filter tracks [position, velocity] with dt=1 and observes position.
// The covariance update uses the Joseph form for numerical symmetry.
package kalman

import (
	"context"
	"fmt"

	"github.com/algoparity/parity-go/internal/adapter"
	"github.com/algoparity/parity-go/internal/domain"
)

// Inputs for one predict-update step.
type Inputs struct {
	// State is [position, velocity].
	State [2]float64
	// Measurement is the observed position.
	Measurement float64
	// Covariance is the 2x2 state covariance, row-major.
	Covariance [4]float64
	// MeasurementNoise is the scalar R.
	MeasurementNoise float64
	// ProcessNoise is the scalar Q applied to both diagonal entries.
	ProcessNoise float64
}

// Outputs of one predict-update step.
type Outputs struct {
	State      [2]float64
	Covariance [4]float64
}

// Step runs one predict-update cycle.
func Step(in Inputs) Outputs {
	p := [2][2]float64{
		{in.Covariance[0], in.Covariance[1]},
		{in.Covariance[2], in.Covariance[3]},
	}

	// Predict: F = [[1,1],[0,1]], P_pred = F P F' + Q.
	xPred := [2]float64{in.State[0] + in.State[1], in.State[1]}
	pPred := [2][2]float64{
		{(p[0][0] + p[1][0]) + (p[0][1] + p[1][1]) + in.ProcessNoise, p[0][1] + p[1][1]},
		{p[1][0] + p[1][1], p[1][1] + in.ProcessNoise},
	}

	// Update: H = [1,0] observes position.
	y := in.Measurement - xPred[0]
	s := pPred[0][0] + in.MeasurementNoise
	k := [2]float64{pPred[0][0] / s, pPred[1][0] / s}

	state := [2]float64{xPred[0] + k[0]*y, xPred[1] + k[1]*y}

	// Joseph form: (I - KH) P_pred (I - KH)' + K R K'.
	ikh := [2][2]float64{
		{1 - k[0], 0},
		{-k[1], 1},
	}
	ikhP := [2][2]float64{
		{ikh[0][0] * pPred[0][0], ikh[0][0] * pPred[0][1]},
		{ikh[1][0]*pPred[0][0] + pPred[1][0], ikh[1][0]*pPred[0][1] + pPred[1][1]},
	}
	cov := [2][2]float64{
		{ikhP[0][0] * ikh[0][0], ikhP[0][0]*ikh[1][0] + ikhP[0][1]},
		{ikhP[1][0] * ikh[0][0], ikhP[1][0]*ikh[1][0] + ikhP[1][1]},
	}
	cov[0][0] += k[0] * in.MeasurementNoise * k[0]
	cov[0][1] += k[0] * in.MeasurementNoise * k[1]
	cov[1][0] += k[1] * in.MeasurementNoise * k[0]
	cov[1][1] += k[1] * in.MeasurementNoise * k[1]

	return Outputs{
		State:      state,
		Covariance: [4]float64{cov[0][0], cov[0][1], cov[1][0], cov[1][1]},
	}
}

// Input field names in test-vector documents.
const (
	FieldState            = "state"
	FieldMeasurement      = "measurement"
	FieldCovariance       = "state_covariance"
	FieldMeasurementNoise = "measurement_noise"
	FieldProcessNoise     = "process_noise"

	FieldUpdatedState      = "updated_state"
	FieldUpdatedCovariance = "updated_covariance"
)

// Evaluate adapts Step to the adapter evaluation signature, decoding the
// named input fields of a test case and encoding the output fields.
func Evaluate(_ context.Context, inputs map[string]domain.Vector) (map[string]domain.Vector, error) {
	var in Inputs

	state, err := fieldVec(inputs, FieldState)
	if err != nil {
		return nil, err
	}
	in.State = state

	cov, err := fieldCov(inputs, FieldCovariance)
	if err != nil {
		return nil, err
	}
	in.Covariance = cov

	if in.Measurement, err = fieldScalar(inputs, FieldMeasurement); err != nil {
		return nil, err
	}
	if in.MeasurementNoise, err = fieldScalar(inputs, FieldMeasurementNoise); err != nil {
		return nil, err
	}
	if in.ProcessNoise, err = fieldScalar(inputs, FieldProcessNoise); err != nil {
		return nil, err
	}

	out := Step(in)
	return map[string]domain.Vector{
		FieldUpdatedState:      domain.Vectorf(out.State[0], out.State[1]),
		FieldUpdatedCovariance: domain.Vectorf(out.Covariance[0], out.Covariance[1], out.Covariance[2], out.Covariance[3]),
	}, nil
}

// Reference returns the in-process reference adapter for the filter.
func Reference() *adapter.FuncAdapter {
	return &adapter.FuncAdapter{
		Name:     "kalman-reference",
		ImplRole: domain.RoleReference,
		Fn:       Evaluate,
	}
}

func fieldScalar(inputs map[string]domain.Vector, name string) (float64, error) {
	v, ok := inputs[name]
	if !ok {
		return 0, fmt.Errorf("missing input field %q", name)
	}
	if v.Len() != 1 {
		return 0, fmt.Errorf("input field %q must be a scalar, got %d elements", name, v.Len())
	}
	return v.Values[0], nil
}

func fieldVec(inputs map[string]domain.Vector, name string) ([2]float64, error) {
	v, ok := inputs[name]
	if !ok {
		return [2]float64{}, fmt.Errorf("missing input field %q", name)
	}
	if v.Len() != 2 {
		return [2]float64{}, fmt.Errorf("input field %q must have 2 elements, got %d", name, v.Len())
	}
	return [2]float64{v.Values[0], v.Values[1]}, nil
}

func fieldCov(inputs map[string]domain.Vector, name string) ([4]float64, error) {
	v, ok := inputs[name]
	if !ok {
		return [4]float64{}, fmt.Errorf("missing input field %q", name)
	}
	if v.Len() != 4 {
		return [4]float64{}, fmt.Errorf("input field %q must have 4 elements, got %d", name, v.Len())
	}
	return [4]float64{v.Values[0], v.Values[1], v.Values[2], v.Values[3]}, nil
}
