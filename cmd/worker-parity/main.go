// Command worker-parity runs the Temporal worker for release pipelines.
// Supports stub mode (in-process kalman adapters and fixtures) and
// production mode (real toolchain binaries).
package main

import (
	"context"
	"log"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"golang.org/x/sync/errgroup"

	"github.com/algoparity/parity-go/internal/adapter"
	"github.com/algoparity/parity-go/internal/config"
	"github.com/algoparity/parity-go/internal/domain"
	"github.com/algoparity/parity-go/internal/equivalence"
	"github.com/algoparity/parity-go/internal/kalman"
	"github.com/algoparity/parity-go/internal/observability"
	"github.com/algoparity/parity-go/internal/ratelimit"
	"github.com/algoparity/parity-go/internal/report"
	"github.com/algoparity/parity-go/internal/temporal/activities"
	"github.com/algoparity/parity-go/internal/temporal/queues"
	"github.com/algoparity/parity-go/internal/temporal/workflows"
	"github.com/algoparity/parity-go/internal/testutil"
	"github.com/algoparity/parity-go/internal/toolchain"
	"github.com/algoparity/parity-go/internal/vectors"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := observability.InitLogger(cfg.LogLevel)
	temporalLogger := observability.NewTemporalSlogAdapter(logger)

	if cfg.OTelEnabled {
		shutdown, err := observability.InitTracer(context.Background(), "worker-parity")
		if err != nil {
			logger.Error("otel init failed", "error", err)
		} else {
			defer shutdown(context.Background())
		}
	}

	acts, err := buildActivities(cfg)
	if err != nil {
		log.Fatalf("activities: %v", err)
	}

	queueNames, err := queues.ParseQueues(cfg.Queues)
	if err != nil {
		log.Fatalf("queues: %v", err)
	}

	c, err := client.Dial(client.Options{
		Logger: temporalLogger,
	})
	if err != nil {
		log.Fatalf("unable to create Temporal client: %v", err)
	}
	defer c.Close()

	configs := queues.DefaultConfigs()
	var g errgroup.Group
	for _, name := range queueNames {
		qc := configs[name]
		w := worker.New(c, qc.Name, qc.Options)
		w.RegisterWorkflow(workflows.ReleasePipelineWorkflow)
		w.RegisterActivity(acts)

		logger.Info("starting worker", "queue", qc.Name, "mode", string(cfg.Mode))
		g.Go(func() error {
			return w.Run(worker.InterruptCh())
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("worker failed: %v", err)
	}
}

func buildActivities(cfg config.Config) (*activities.Activities, error) {
	acts := &activities.Activities{
		Engine: equivalence.Engine{
			Defaults: defaultTolerance(cfg),
		},
		Parallelism: cfg.EvalParallelism,
	}

	if cfg.OTelEnabled {
		metrics, err := observability.NewMetrics()
		if err != nil {
			return nil, err
		}
		acts.Metrics = metrics
	}

	switch cfg.Mode {
	case config.ModeProduction:
		acts.Suites = &vectors.DirStore{Dir: cfg.VectorsDir}

		limiter := ratelimit.NewEvalLimiter(adapterRates(cfg))
		acts.Candidate = &adapter.ProcessAdapter{
			Name:     "candidate-binary",
			ImplRole: domain.RoleCandidate,
			Path:     cfg.CandidateBinary,
			Timeout:  cfg.EvalTimeout,
			Limiter:  limiter,
		}
		if cfg.ReferenceBinary != "" {
			acts.Reference = &adapter.ProcessAdapter{
				Name:     "matlab-reference",
				ImplRole: domain.RoleReference,
				Path:     cfg.ReferenceBinary,
				Timeout:  cfg.EvalTimeout,
				Limiter:  limiter,
			}
		} else {
			acts.Reference = kalman.Reference()
		}

		if cfg.BuildCommand != "" {
			acts.Builder = &toolchain.CommandStage{Stage: "build", Path: cfg.BuildCommand, Dir: cfg.RepoDir}
		} else {
			acts.Builder = &testutil.StubBuilder{}
		}
		if cfg.TestCommand != "" {
			acts.Tester = &toolchain.CommandStage{Stage: "local_tests", Path: cfg.TestCommand, Dir: cfg.RepoDir}
		} else {
			acts.Tester = &testutil.StubTester{}
		}

		acts.Commits = &toolchain.GitLog{RepoDir: cfg.RepoDir}
		acts.Publisher = &toolchain.ConanPublisher{Remote: cfg.ConanRemote}
		acts.Notifier = &report.LogNotifier{}

	default: // stub mode
		fixturesDir := cfg.VectorsDir
		if fixturesDir == "" {
			fixturesDir = testutil.GoldenDir()
		}
		acts.Suites = &testutil.StubSuites{FixturesDir: fixturesDir}
		acts.Reference = kalman.Reference()
		acts.Candidate = testutil.CandidateAdapter()
		acts.Builder = &testutil.StubBuilder{}
		acts.Tester = &testutil.StubTester{}
		acts.Commits = &testutil.StubCommits{Messages: []string{
			"feat: regenerate candidate from latest model",
			"fix: clamp covariance symmetrization",
		}}
		acts.Publisher = &testutil.StubPublisher{}
		acts.Notifier = &report.LogNotifier{}
	}

	return acts, nil
}

func defaultTolerance(cfg config.Config) domain.ToleranceSpec {
	spec := domain.ToleranceSpec{Absolute: cfg.DefaultAbsTolerance}
	if cfg.DefaultRelTolerance > 0 {
		rel := cfg.DefaultRelTolerance
		spec.Relative = &rel
	}
	return spec
}

// adapterRates applies the configured candidate rate on top of the defaults.
func adapterRates(cfg config.Config) ratelimit.AdapterRates {
	rates := ratelimit.DefaultAdapterRates()
	if cfg.EvalRate > 0 {
		rates["candidate-binary"] = cfg.EvalRate
		rates["matlab-reference"] = cfg.EvalRate
	}
	return rates
}
