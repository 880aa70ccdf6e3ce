// Package lowpass is the reference implementation of the first-order
// low-pass filter (exponential moving average) verified by the release
// pipeline.
//
// The first sample passes through unchanged; each following sample is
// y[k] = alpha*x[k] + (1-alpha)*y[k-1].
package lowpass

import (
	"context"
	"fmt"

	"github.com/algoparity/parity-go/internal/adapter"
	"github.com/algoparity/parity-go/internal/domain"
)

// Filter applies the filter to a signal and returns the smoothed signal.
func Filter(signal []float64, alpha float64) []float64 {
	if len(signal) == 0 {
		return nil
	}
	out := make([]float64, len(signal))
	out[0] = signal[0]
	for k := 1; k < len(signal); k++ {
		out[k] = alpha*signal[k] + (1.0-alpha)*out[k-1]
	}
	return out
}

// Input and output field names in test-vector documents.
const (
	FieldInputSignal  = "input_signal"
	FieldAlpha        = "alpha"
	FieldOutputSignal = "output_signal"
)

// Evaluate adapts Filter to the adapter evaluation signature.
func Evaluate(_ context.Context, inputs map[string]domain.Vector) (map[string]domain.Vector, error) {
	signal, ok := inputs[FieldInputSignal]
	if !ok {
		return nil, fmt.Errorf("missing input field %q", FieldInputSignal)
	}
	alpha, ok := inputs[FieldAlpha]
	if !ok {
		return nil, fmt.Errorf("missing input field %q", FieldAlpha)
	}
	if alpha.Len() != 1 {
		return nil, fmt.Errorf("input field %q must be a scalar, got %d elements", FieldAlpha, alpha.Len())
	}

	out := Filter(signal.Values, alpha.Values[0])
	return map[string]domain.Vector{
		FieldOutputSignal: domain.Vectorf(out...),
	}, nil
}

// Reference returns the in-process reference adapter for the filter.
func Reference() *adapter.FuncAdapter {
	return &adapter.FuncAdapter{
		Name:     "lowpass-reference",
		ImplRole: domain.RoleReference,
		Fn:       Evaluate,
	}
}
