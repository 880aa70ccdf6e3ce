package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, ModeStub, cfg.Mode)
	assert.Equal(t, 1e-10, cfg.DefaultAbsTolerance)
	assert.Zero(t, cfg.DefaultRelTolerance)
	assert.Equal(t, PolicyConjunctive, cfg.TolerancePolicy)
	assert.Equal(t, 30*time.Second, cfg.EvalTimeout)
	assert.Equal(t, 4, cfg.EvalParallelism)
	assert.Equal(t, "8080", cfg.APIPort)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.OTelEnabled)
	assert.False(t, cfg.OIDCEnabled())
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PARITY_DEFAULT_ABS_TOLERANCE", "1e-8")
	t.Setenv("PARITY_DEFAULT_REL_TOLERANCE", "1e-6")
	t.Setenv("PARITY_EVAL_TIMEOUT", "2m")
	t.Setenv("PARITY_EVAL_PARALLELISM", "16")
	t.Setenv("PARITY_EVAL_RATE", "2.5")
	t.Setenv("PARITY_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("PARITY_OTEL", "true")
	t.Setenv("PARITY_OIDC_ISSUER", "https://issuer.example")
	t.Setenv("PARITY_OIDC_AUDIENCE", "parity-api")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 1e-8, cfg.DefaultAbsTolerance)
	assert.Equal(t, 1e-6, cfg.DefaultRelTolerance)
	assert.Equal(t, 2*time.Minute, cfg.EvalTimeout)
	assert.Equal(t, 16, cfg.EvalParallelism)
	assert.Equal(t, 2.5, cfg.EvalRate)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.True(t, cfg.OTelEnabled)
	assert.True(t, cfg.OIDCEnabled())
}

func TestLoadFromEnv_ProductionValid(t *testing.T) {
	clearEnv(t)
	t.Setenv("PARITY_MODE", "production")
	t.Setenv("PARITY_VECTORS_DIR", "/srv/vectors")
	t.Setenv("PARITY_CANDIDATE_BINARY", "/usr/local/bin/kalman-candidate")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, ModeProduction, cfg.Mode)
	assert.Equal(t, "/srv/vectors", cfg.VectorsDir)
}

func TestLoadFromEnv_ProductionMissingRequired(t *testing.T) {
	clearEnv(t)
	t.Setenv("PARITY_MODE", "production")

	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PARITY_VECTORS_DIR")
}

func TestLoadFromEnv_InvalidValues(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{"PARITY_MODE", "invalid", "invalid PARITY_MODE"},
		{"PARITY_TOLERANCE_POLICY", "disjunctive", "PARITY_TOLERANCE_POLICY"},
		{"PARITY_DEFAULT_ABS_TOLERANCE", "0", "must be positive"},
		{"PARITY_DEFAULT_ABS_TOLERANCE", "nope", "invalid PARITY_DEFAULT_ABS_TOLERANCE"},
		{"PARITY_DEFAULT_REL_TOLERANCE", "-1", "must not be negative"},
		{"PARITY_EVAL_PARALLELISM", "0", "at least 1"},
		{"PARITY_EVAL_TIMEOUT", "soon", "invalid PARITY_EVAL_TIMEOUT"},
		{"PARITY_OTEL", "maybe", "invalid PARITY_OTEL"},
	}

	for _, tc := range tests {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.value)

			_, err := LoadFromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PARITY_MODE", "PARITY_VECTORS_DIR", "PARITY_DEFAULT_ABS_TOLERANCE",
		"PARITY_DEFAULT_REL_TOLERANCE", "PARITY_TOLERANCE_POLICY",
		"PARITY_EVAL_TIMEOUT", "PARITY_EVAL_PARALLELISM", "PARITY_EVAL_RATE",
		"PARITY_CANDIDATE_BINARY", "PARITY_REFERENCE_BINARY",
		"PARITY_API_PORT", "PARITY_CORS_ORIGINS", "PARITY_OIDC_ISSUER", "PARITY_OIDC_AUDIENCE",
		"PARITY_QUEUES", "PARITY_LOG_LEVEL", "PARITY_OTEL",
		"PARITY_BUILD_CMD", "PARITY_TEST_CMD", "PARITY_REPO_DIR", "PARITY_CONAN_REMOTE",
	} {
		// t.Setenv saves the current value and restores it on cleanup.
		// Setting to "" then unsetting ensures the key is absent during the test.
		orig, wasSet := os.LookupEnv(key)
		t.Setenv(key, "")
		os.Unsetenv(key)
		if wasSet {
			key, orig := key, orig
			t.Cleanup(func() { os.Setenv(key, orig) })
		}
	}
}
