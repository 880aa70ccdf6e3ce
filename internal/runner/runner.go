// Package runner drives an adapter across the cases of a suite.
package runner

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/algoparity/parity-go/internal/adapter"
	"github.com/algoparity/parity-go/internal/domain"
)

// ExecutionError wraps an adapter failure with the case it occurred on.
type ExecutionError struct {
	CaseName  string
	AdapterID string
	Err       error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("case %q on adapter %s: %v", e.CaseName, e.AdapterID, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// RunCase evaluates one case on one adapter.
func RunCase(ctx context.Context, a adapter.Adapter, tc domain.TestCase) (domain.ObservedOutput, error) {
	fields, err := a.Evaluate(ctx, tc.Inputs)
	if err != nil {
		return domain.ObservedOutput{}, &ExecutionError{CaseName: tc.Name, AdapterID: a.ID(), Err: err}
	}
	return domain.ObservedOutput{
		Case:    tc.Name,
		Adapter: a.ID(),
		Role:    a.Role(),
		Fields:  fields,
	}, nil
}

// RunSuite evaluates every case of the suite on the adapter, up to
// parallelism cases at a time. Results keep the suite's case order.
// The first failure cancels outstanding evaluations and is returned.
func RunSuite(ctx context.Context, a adapter.Adapter, suite domain.Suite, parallelism int) ([]domain.ObservedOutput, error) {
	if parallelism < 1 {
		parallelism = 1
	}

	outputs := make([]domain.ObservedOutput, len(suite.Cases))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	for i, tc := range suite.Cases {
		g.Go(func() error {
			out, err := RunCase(ctx, a, tc)
			if err != nil {
				return err
			}
			outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}
