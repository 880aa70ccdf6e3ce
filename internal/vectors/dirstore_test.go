package vectors

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lowpassSuiteDoc = `{
  "algorithm": "low_pass_filter",
  "global_tolerance": {"absolute": 1e-10},
  "test_cases": [
    {
      "name": "step_response",
      "inputs": {
        "input_signal": [0.0, 1.0, 1.0, 1.0],
        "alpha": 0.5
      },
      "expected_output": {
        "output_signal": [0.0, 0.5, 0.75, 0.875]
      }
    }
  ]
}`

func TestDirStore_RoutesByAlgorithm(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "kalman_filter.json"), []byte(suiteDoc), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "low_pass_filter.json"), []byte(lowpassSuiteDoc), 0o644))

	store := DirStore{Dir: dir}

	suite, err := store.LoadSuite(context.Background(), "kalman_filter")
	require.NoError(t, err)
	assert.Equal(t, "kalman_filter", suite.Algorithm)

	suite, err = store.LoadSuite(context.Background(), "low_pass_filter")
	require.NoError(t, err)
	assert.Equal(t, "low_pass_filter", suite.Algorithm)
	require.Len(t, suite.Cases, 1)
	assert.True(t, suite.Cases[0].Inputs["alpha"].Scalar)

	_, err = store.LoadSuite(context.Background(), "unknown")
	assert.Error(t, err)
}

func TestDirStore_RejectsTraversalNames(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	outside := filepath.Join(dir, "secret.json")
	require.NoError(t, os.WriteFile(outside, []byte(suiteDoc), 0o644))

	store := DirStore{Dir: filepath.Join(dir, "suites")}
	require.NoError(t, os.Mkdir(store.Dir, 0o755))

	for _, name := range []string{
		"",
		"../secret",
		"sub/secret",
		`sub\secret`,
		"..",
	} {
		_, err := store.LoadSuite(context.Background(), name)
		assert.Error(t, err, "name %q", name)
		assert.NotErrorIs(t, err, os.ErrNotExist, "name %q must be rejected before disk access", name)
	}
}
