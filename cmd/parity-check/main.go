// parity-check runs the reference and candidate implementations on the same
// test-vector suite, compares outputs, and prints a JSON equivalence report.
// Exit code 0 = all cases pass. Exit code 1 = divergence detected. Exit code 2 = error.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/algoparity/parity-go/internal/adapter"
	"github.com/algoparity/parity-go/internal/domain"
	"github.com/algoparity/parity-go/internal/equivalence"
	"github.com/algoparity/parity-go/internal/kalman"
	"github.com/algoparity/parity-go/internal/lowpass"
	"github.com/algoparity/parity-go/internal/runner"
	"github.com/algoparity/parity-go/internal/vectors"
)

func main() {
	suitePath := flag.String("suite", "", "path to test-vector suite JSON (required)")
	candidatePath := flag.String("candidate", "", "path to candidate binary (in-process implementation when empty)")
	referencePath := flag.String("reference", "", "path to reference binary (in-process implementation when empty)")
	absTol := flag.Float64("abs-tol", 1e-10, "default absolute tolerance")
	relTol := flag.Float64("rel-tol", 0, "default relative tolerance (0 disables)")
	parallelism := flag.Int("parallelism", 4, "max concurrent case evaluations")
	timeout := flag.Duration("timeout", 30*time.Second, "per-evaluation timeout for external binaries")
	flag.Parse()

	if *suitePath == "" {
		fmt.Fprintln(os.Stderr, "error: --suite is required")
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	suite, err := vectors.LoadValidated(*suitePath)
	if err != nil {
		logger.Error("suite load failed", "error", err)
		os.Exit(2)
	}

	reference, err := buildAdapter(suite.Algorithm, "reference", domain.RoleReference, *referencePath, *timeout)
	if err != nil {
		logger.Error("reference adapter", "error", err)
		os.Exit(2)
	}
	candidate, err := buildAdapter(suite.Algorithm, "candidate", domain.RoleCandidate, *candidatePath, *timeout)
	if err != nil {
		logger.Error("candidate adapter", "error", err)
		os.Exit(2)
	}

	logger.Info("running reference", "adapter", reference.ID(), "cases", len(suite.Cases))
	refOutputs, err := runner.RunSuite(ctx, reference, suite, *parallelism)
	if err != nil {
		logger.Error("reference evaluation failed", "error", err)
		os.Exit(2)
	}

	logger.Info("running candidate", "adapter", candidate.ID())
	candOutputs, err := runner.RunSuite(ctx, candidate, suite, *parallelism)
	if err != nil {
		logger.Error("candidate evaluation failed", "error", err)
		os.Exit(2)
	}

	engine := equivalence.Engine{Defaults: domain.ToleranceSpec{Absolute: *absTol}}
	if *relTol > 0 {
		engine.Defaults.Relative = relTol
	}

	rpt, err := engine.Compare(suite, refOutputs, candOutputs)
	if err != nil {
		logger.Error("comparison failed", "error", err)
		os.Exit(2)
	}

	out, err := json.MarshalIndent(rpt, "", "  ")
	if err != nil {
		logger.Error("marshal report failed", "error", err)
		os.Exit(2)
	}
	fmt.Println(string(out))

	if !rpt.AllPassed {
		logger.Warn("divergence detected",
			"failed", rpt.Failed,
			"max_absolute_error", rpt.MaxAbsoluteError,
			"failing_cases", rpt.FailedCases())
		os.Exit(1)
	}

	logger.Info("all cases match", "total", rpt.Total)
}

// buildAdapter wraps an external binary when a path is given, otherwise
// falls back to the in-process implementation of the suite's algorithm.
func buildAdapter(algorithm, name string, role domain.ImplRole, path string, timeout time.Duration) (adapter.Adapter, error) {
	if path != "" {
		return &adapter.ProcessAdapter{
			Name:     name,
			ImplRole: role,
			Path:     path,
			Timeout:  timeout,
		}, nil
	}

	var fn func(context.Context, map[string]domain.Vector) (map[string]domain.Vector, error)
	switch algorithm {
	case "kalman_filter":
		fn = kalman.Evaluate
	case "low_pass_filter":
		fn = lowpass.Evaluate
	default:
		return nil, fmt.Errorf("no in-process implementation for algorithm %q, pass a binary path", algorithm)
	}
	return &adapter.FuncAdapter{Name: name, ImplRole: role, Fn: fn}, nil
}
