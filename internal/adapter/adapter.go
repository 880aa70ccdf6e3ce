// Package adapter abstracts the two implementations under comparison.
//
// The reference adapter evaluates the authoritative implementation of an
// algorithm; the candidate adapter evaluates the generated build. Both
// surface the same Evaluate signature so the runner and comparison engine
// never care which side they are driving.
package adapter

import (
	"context"
	"fmt"

	"github.com/algoparity/parity-go/internal/domain"
)

// Adapter evaluates one implementation of an algorithm on a case's inputs.
//
// Evaluate must be deterministic: the same inputs always produce the same
// outputs. Adapters that shell out to external tooling honor ctx for
// cancellation and deadlines.
type Adapter interface {
	// ID identifies the adapter in logs and errors, e.g. "matlab-reference".
	ID() string
	// Role says which side of the comparison this adapter represents.
	Role() domain.ImplRole
	// Evaluate computes the algorithm's outputs for one case's inputs.
	Evaluate(ctx context.Context, inputs map[string]domain.Vector) (map[string]domain.Vector, error)
}

// EvaluationError reports a failed evaluation: a crash, malformed output,
// or a timeout. Timeout is set when the deadline expired.
type EvaluationError struct {
	AdapterID string
	Timeout   bool
	Err       error
}

func (e *EvaluationError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("adapter %s: evaluation timed out: %v", e.AdapterID, e.Err)
	}
	return fmt.Sprintf("adapter %s: evaluation failed: %v", e.AdapterID, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }

// FuncAdapter wraps a pure function as an Adapter. Used for in-process
// implementations and for test stubs.
type FuncAdapter struct {
	Name     string
	ImplRole domain.ImplRole
	Fn       func(ctx context.Context, inputs map[string]domain.Vector) (map[string]domain.Vector, error)
}

func (a *FuncAdapter) ID() string            { return a.Name }
func (a *FuncAdapter) Role() domain.ImplRole { return a.ImplRole }

func (a *FuncAdapter) Evaluate(ctx context.Context, inputs map[string]domain.Vector) (map[string]domain.Vector, error) {
	out, err := a.Fn(ctx, inputs)
	if err != nil {
		return nil, &EvaluationError{AdapterID: a.Name, Err: err}
	}
	return out, nil
}
