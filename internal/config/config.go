// Package config provides application configuration loaded from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Mode determines whether the worker uses the in-process stub adapters or
// invokes the real toolchain binaries.
type Mode string

const (
	ModeStub       Mode = "stub"
	ModeProduction Mode = "production"
)

// TolerancePolicy names how absolute and relative bounds combine.
// Only the conjunctive policy (both must hold) is supported.
type TolerancePolicy string

const PolicyConjunctive TolerancePolicy = "conjunctive"

// Config holds all application configuration.
type Config struct {
	Mode       Mode
	VectorsDir string

	// Comparison defaults, applied when a suite carries no tolerance.
	DefaultAbsTolerance float64
	DefaultRelTolerance float64 // 0 disables the relative bound
	TolerancePolicy     TolerancePolicy

	// Evaluation settings.
	EvalTimeout     time.Duration
	EvalParallelism int
	EvalRate        float64 // toolchain invocations per second, 0 = unlimited
	CandidateBinary string
	ReferenceBinary string

	// Release tooling, used in production mode. Empty commands fall back
	// to the in-process stubs.
	BuildCommand string
	TestCommand  string
	RepoDir      string
	ConanRemote  string

	// API server settings.
	APIPort      string
	CORSOrigins  []string
	OIDCIssuer   string
	OIDCAudience string

	// Worker settings. Queues is a comma-separated list parsed by the
	// queues registry; empty means the pipeline queue only.
	Queues string

	// Observability settings.
	LogLevel    string
	OTelEnabled bool
}

// OIDCEnabled reports whether API authentication is configured.
func (c Config) OIDCEnabled() bool {
	return c.OIDCIssuer != "" && c.OIDCAudience != ""
}

// LoadFromEnv reads configuration from environment variables with sensible defaults.
func LoadFromEnv() (Config, error) {
	cfg := Config{
		Mode:            Mode(envOr("PARITY_MODE", "stub")),
		VectorsDir:      os.Getenv("PARITY_VECTORS_DIR"),
		TolerancePolicy: TolerancePolicy(envOr("PARITY_TOLERANCE_POLICY", "conjunctive")),
		CandidateBinary: os.Getenv("PARITY_CANDIDATE_BINARY"),
		ReferenceBinary: os.Getenv("PARITY_REFERENCE_BINARY"),
		BuildCommand:    os.Getenv("PARITY_BUILD_CMD"),
		TestCommand:     os.Getenv("PARITY_TEST_CMD"),
		RepoDir:         envOr("PARITY_REPO_DIR", "."),
		ConanRemote:     envOr("PARITY_CONAN_REMOTE", "releases"),
		APIPort:         envOr("PARITY_API_PORT", "8080"),
		CORSOrigins:     parseCORSOrigins(os.Getenv("PARITY_CORS_ORIGINS")),
		OIDCIssuer:      os.Getenv("PARITY_OIDC_ISSUER"),
		OIDCAudience:    os.Getenv("PARITY_OIDC_AUDIENCE"),
		Queues:          os.Getenv("PARITY_QUEUES"),
		LogLevel:        envOr("PARITY_LOG_LEVEL", "info"),
	}

	var err error
	if cfg.OTelEnabled, err = envBool("PARITY_OTEL", false); err != nil {
		return Config{}, err
	}
	if cfg.DefaultAbsTolerance, err = envFloat("PARITY_DEFAULT_ABS_TOLERANCE", 1e-10); err != nil {
		return Config{}, err
	}
	if cfg.DefaultRelTolerance, err = envFloat("PARITY_DEFAULT_REL_TOLERANCE", 0); err != nil {
		return Config{}, err
	}
	if cfg.EvalRate, err = envFloat("PARITY_EVAL_RATE", 0); err != nil {
		return Config{}, err
	}
	if cfg.EvalTimeout, err = envDuration("PARITY_EVAL_TIMEOUT", 30*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.EvalParallelism, err = envInt("PARITY_EVAL_PARALLELISM", 4); err != nil {
		return Config{}, err
	}

	if cfg.Mode != ModeStub && cfg.Mode != ModeProduction {
		return Config{}, fmt.Errorf("config: invalid PARITY_MODE %q (must be stub or production)", cfg.Mode)
	}
	if cfg.TolerancePolicy != PolicyConjunctive {
		return Config{}, fmt.Errorf("config: unsupported PARITY_TOLERANCE_POLICY %q (only conjunctive)", cfg.TolerancePolicy)
	}
	if cfg.DefaultAbsTolerance <= 0 {
		return Config{}, fmt.Errorf("config: PARITY_DEFAULT_ABS_TOLERANCE must be positive")
	}
	if cfg.DefaultRelTolerance < 0 {
		return Config{}, fmt.Errorf("config: PARITY_DEFAULT_REL_TOLERANCE must not be negative")
	}
	if cfg.EvalParallelism < 1 {
		return Config{}, fmt.Errorf("config: PARITY_EVAL_PARALLELISM must be at least 1")
	}

	if cfg.Mode == ModeProduction {
		if cfg.VectorsDir == "" {
			return Config{}, fmt.Errorf("config: PARITY_VECTORS_DIR required in production mode")
		}
		if cfg.CandidateBinary == "" {
			return Config{}, fmt.Errorf("config: PARITY_CANDIDATE_BINARY required in production mode")
		}
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func envInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func envBool(key string, fallback bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("config: invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func parseCORSOrigins(raw string) []string {
	if raw == "" {
		return []string{"*"}
	}
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if t := strings.TrimSpace(o); t != "" {
			origins = append(origins, t)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
