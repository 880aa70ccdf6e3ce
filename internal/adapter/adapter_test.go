package adapter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/algoparity/parity-go/internal/domain"
)

func TestFuncAdapter(t *testing.T) {
	t.Parallel()

	a := &FuncAdapter{
		Name:     "identity",
		ImplRole: domain.RoleReference,
		Fn: func(_ context.Context, inputs map[string]domain.Vector) (map[string]domain.Vector, error) {
			return inputs, nil
		},
	}

	assert.Equal(t, "identity", a.ID())
	assert.Equal(t, domain.RoleReference, a.Role())

	inputs := map[string]domain.Vector{"state": domain.Vectorf(1, 2)}
	out, err := a.Evaluate(context.Background(), inputs)
	require.NoError(t, err)
	assert.Equal(t, inputs, out)
}

func TestFuncAdapter_WrapsError(t *testing.T) {
	t.Parallel()

	cause := errors.New("singular matrix")
	a := &FuncAdapter{
		Name:     "broken",
		ImplRole: domain.RoleCandidate,
		Fn: func(context.Context, map[string]domain.Vector) (map[string]domain.Vector, error) {
			return nil, cause
		},
	}

	_, err := a.Evaluate(context.Background(), nil)
	var evalErr *EvaluationError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, "broken", evalErr.AdapterID)
	assert.False(t, evalErr.Timeout)
	assert.ErrorIs(t, err, cause)
}

// writeScript writes a shell script that echoes a fixed JSON document.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not portable to windows")
	}
	path := filepath.Join(t.TempDir(), "impl.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestProcessAdapter(t *testing.T) {
	t.Parallel()

	path := writeScript(t, `cat >/dev/null; echo '{"updated_state": [1.0, 0.0], "residual": 0.5}'`)
	a := &ProcessAdapter{
		Name:     "candidate-bin",
		ImplRole: domain.RoleCandidate,
		Path:     path,
	}

	out, err := a.Evaluate(context.Background(), map[string]domain.Vector{
		"state": domain.Vectorf(1, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.Vectorf(1, 0), out["updated_state"])
	assert.Equal(t, domain.Scalarf(0.5), out["residual"])
}

func TestProcessAdapter_NonZeroExit(t *testing.T) {
	t.Parallel()

	path := writeScript(t, `echo "boom" >&2; exit 3`)
	a := &ProcessAdapter{Name: "crasher", ImplRole: domain.RoleCandidate, Path: path}

	_, err := a.Evaluate(context.Background(), nil)
	var evalErr *EvaluationError
	require.ErrorAs(t, err, &evalErr)
	assert.False(t, evalErr.Timeout)
	assert.Contains(t, evalErr.Error(), "boom")
}

func TestProcessAdapter_MalformedOutput(t *testing.T) {
	t.Parallel()

	path := writeScript(t, `echo 'not json'`)
	a := &ProcessAdapter{Name: "garbled", ImplRole: domain.RoleCandidate, Path: path}

	_, err := a.Evaluate(context.Background(), nil)
	var evalErr *EvaluationError
	require.ErrorAs(t, err, &evalErr)
	assert.Contains(t, evalErr.Error(), "decode outputs")
}

func TestProcessAdapter_Timeout(t *testing.T) {
	t.Parallel()

	path := writeScript(t, `sleep 10`)
	a := &ProcessAdapter{
		Name:     "slow",
		ImplRole: domain.RoleCandidate,
		Path:     path,
		Timeout:  50 * time.Millisecond,
	}

	start := time.Now()
	_, err := a.Evaluate(context.Background(), nil)
	require.Less(t, time.Since(start), 5*time.Second)

	var evalErr *EvaluationError
	require.ErrorAs(t, err, &evalErr)
	assert.True(t, evalErr.Timeout)
	assert.Equal(t, "slow", evalErr.AdapterID)
}

type fakeLimiter struct {
	calls []string
	err   error
}

func (f *fakeLimiter) Wait(_ context.Context, adapterID string) error {
	f.calls = append(f.calls, adapterID)
	return f.err
}

func TestProcessAdapter_Limiter(t *testing.T) {
	t.Parallel()

	path := writeScript(t, `cat >/dev/null; echo '{}'`)
	lim := &fakeLimiter{}
	a := &ProcessAdapter{Name: "licensed", ImplRole: domain.RoleReference, Path: path, Limiter: lim}

	_, err := a.Evaluate(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"licensed"}, lim.calls)

	lim.err = errors.New("seat pool exhausted")
	_, err = a.Evaluate(context.Background(), nil)
	var evalErr *EvaluationError
	require.ErrorAs(t, err, &evalErr)
	assert.ErrorIs(t, err, lim.err)
}
