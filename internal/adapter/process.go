package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/algoparity/parity-go/internal/domain"
)

// Limiter gates evaluations that consume a licensed toolchain seat.
// Satisfied by ratelimit.EvalLimiter.
type Limiter interface {
	Wait(ctx context.Context, adapterID string) error
}

// ProcessAdapter evaluates an algorithm by invoking an external binary.
// Inputs are written to stdin as a JSON object of named values; the binary
// prints the output fields as a JSON object on stdout.
type ProcessAdapter struct {
	Name     string
	ImplRole domain.ImplRole
	Path     string
	Args     []string
	// Timeout bounds a single evaluation. Zero means no adapter-level
	// deadline beyond what ctx carries.
	Timeout time.Duration
	// Limiter, when set, is consulted before each invocation.
	Limiter Limiter
}

func (a *ProcessAdapter) ID() string            { return a.Name }
func (a *ProcessAdapter) Role() domain.ImplRole { return a.ImplRole }

// Evaluate runs the binary on one case's inputs. A deadline expiry is
// reported as an EvaluationError with Timeout set.
func (a *ProcessAdapter) Evaluate(ctx context.Context, inputs map[string]domain.Vector) (map[string]domain.Vector, error) {
	if a.Limiter != nil {
		if err := a.Limiter.Wait(ctx, a.Name); err != nil {
			return nil, &EvaluationError{AdapterID: a.Name, Err: err}
		}
	}

	if a.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.Timeout)
		defer cancel()
	}

	stdin, err := json.Marshal(inputs)
	if err != nil {
		return nil, &EvaluationError{AdapterID: a.Name, Err: fmt.Errorf("encode inputs: %w", err)}
	}

	cmd := exec.CommandContext(ctx, a.Path, a.Args...)
	cmd.Stdin = bytes.NewReader(stdin)
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, &EvaluationError{AdapterID: a.Name, Timeout: true, Err: ctx.Err()}
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &EvaluationError{AdapterID: a.Name, Err: fmt.Errorf("%s exited: %w\n%s", a.Path, err, exitErr.Stderr)}
		}
		return nil, &EvaluationError{AdapterID: a.Name, Err: fmt.Errorf("invoke %s: %w", a.Path, err)}
	}

	var outputs map[string]domain.Vector
	if err := json.Unmarshal(out, &outputs); err != nil {
		return nil, &EvaluationError{AdapterID: a.Name, Err: fmt.Errorf("decode outputs: %w", err)}
	}
	return outputs, nil
}
