package activities

import (
	"context"
	"fmt"
	"time"

	"github.com/algoparity/parity-go/internal/adapter"
	"github.com/algoparity/parity-go/internal/domain"
	"github.com/algoparity/parity-go/internal/equivalence"
	"github.com/algoparity/parity-go/internal/observability"
	"github.com/algoparity/parity-go/internal/ratelimit"
	"github.com/algoparity/parity-go/internal/report"
	"github.com/algoparity/parity-go/internal/runner"
	"github.com/algoparity/parity-go/internal/version"
)

// StageRunner executes an upstream pipeline stage (build, native tests)
// for one algorithm. testutil.StubBuilder and testutil.StubTester satisfy
// this without changes.
type StageRunner interface {
	Run(ctx context.Context, algorithm string) (domain.StageResult, error)
}

// SuiteLoader loads the validated test-vector suite for an algorithm.
type SuiteLoader interface {
	LoadSuite(ctx context.Context, algorithm string) (domain.Suite, error)
}

// CommitLister lists commit messages since the last released version.
type CommitLister interface {
	CommitsSince(ctx context.Context, algorithm, version string) ([]string, error)
}

// Publisher uploads the packaged build to the artifact repository.
type Publisher interface {
	Publish(ctx context.Context, algorithm, version, releaseNotes string) (string, error)
}

// Notifier delivers a notification to its recipient.
type Notifier interface {
	Send(ctx context.Context, msg report.Notification) error
}

// Activities holds the dependencies for all Temporal activities.
// Each method is registered as a Temporal activity.
type Activities struct {
	Builder   StageRunner
	Tester    StageRunner
	Suites    SuiteLoader
	Reference adapter.Adapter
	Candidate adapter.Adapter
	Engine    equivalence.Engine
	Commits   CommitLister
	Publisher Publisher
	Notifier  Notifier

	Parallelism int
	Budget      *ratelimit.EvalBudget  // nil = no budget enforcement
	Metrics     *observability.Metrics // nil = no metrics
}

func (a *Activities) recordActivity(ctx context.Context, name string) {
	if a.Metrics != nil {
		a.Metrics.RecordActivity(ctx, name)
	}
}

// checkBudget enforces per-algorithm evaluation budgets when configured.
func (a *Activities) checkBudget(algorithm, adapterID string) error {
	if a.Budget == nil {
		return nil
	}
	if err := a.Budget.Check(algorithm, adapterID); err != nil {
		return err
	}
	a.Budget.Record(algorithm, adapterID)
	return nil
}

// RunBuild compiles the candidate implementation.
func (a *Activities) RunBuild(ctx context.Context, in BuildInput) (BuildOutput, error) {
	a.recordActivity(ctx, "RunBuild")
	result, err := a.Builder.Run(ctx, in.Algorithm)
	if err != nil {
		return BuildOutput{}, fmt.Errorf("build activity: %w", err)
	}
	return BuildOutput{Result: result}, nil
}

// RunLocalTests runs the candidate's native test suite.
func (a *Activities) RunLocalTests(ctx context.Context, in LocalTestsInput) (LocalTestsOutput, error) {
	a.recordActivity(ctx, "RunLocalTests")
	result, err := a.Tester.Run(ctx, in.Algorithm)
	if err != nil {
		return LocalTestsOutput{}, fmt.Errorf("local tests activity: %w", err)
	}
	return LocalTestsOutput{Result: result}, nil
}

// LoadSuite loads and validates the algorithm's test vectors.
func (a *Activities) LoadSuite(ctx context.Context, in LoadSuiteInput) (LoadSuiteOutput, error) {
	a.recordActivity(ctx, "LoadSuite")
	suite, err := a.Suites.LoadSuite(ctx, in.Algorithm)
	if err != nil {
		return LoadSuiteOutput{}, fmt.Errorf("load suite activity: %w", err)
	}
	return LoadSuiteOutput{Suite: suite}, nil
}

// EvaluateSuite runs the suite against the adapter for the requested role.
func (a *Activities) EvaluateSuite(ctx context.Context, in EvaluateSuiteInput) (EvaluateSuiteOutput, error) {
	a.recordActivity(ctx, "EvaluateSuite")

	var target adapter.Adapter
	switch in.Role {
	case domain.RoleReference:
		target = a.Reference
	case domain.RoleCandidate:
		target = a.Candidate
	default:
		return EvaluateSuiteOutput{}, fmt.Errorf("evaluate activity: unknown role %q", in.Role)
	}

	if err := a.checkBudget(in.Suite.Algorithm, target.ID()); err != nil {
		return EvaluateSuiteOutput{}, err
	}

	outputs, err := runner.RunSuite(ctx, target, in.Suite, a.Parallelism)
	if err != nil {
		return EvaluateSuiteOutput{}, fmt.Errorf("evaluate activity: %w", err)
	}
	if a.Metrics != nil {
		a.Metrics.RecordCasesEvaluated(ctx, target.ID(), len(outputs))
	}
	return EvaluateSuiteOutput{AdapterID: target.ID(), Outputs: outputs}, nil
}

// CompareOutputs runs the equivalence comparison over paired outputs.
// A numeric disagreement is a pass=false report, not an activity error.
func (a *Activities) CompareOutputs(ctx context.Context, in CompareInput) (CompareOutput, error) {
	a.recordActivity(ctx, "CompareOutputs")

	rpt, err := a.Engine.Compare(in.Suite, in.Reference, in.Candidate)
	if err != nil {
		return CompareOutput{}, fmt.Errorf("compare activity: %w", err)
	}
	if a.Metrics != nil {
		maxErrs := make([]float64, 0, len(rpt.Results))
		for _, res := range rpt.Results {
			maxErrs = append(maxErrs, res.MaxAbsoluteError)
		}
		a.Metrics.RecordComparison(ctx, rpt.Algorithm, rpt.AllPassed, maxErrs)
	}
	return CompareOutput{Report: rpt}, nil
}

// ResolveVersion classifies commits since the last release and derives
// the next semantic version.
func (a *Activities) ResolveVersion(ctx context.Context, in ResolveVersionInput) (ResolveVersionOutput, error) {
	a.recordActivity(ctx, "ResolveVersion")

	commits, err := a.Commits.CommitsSince(ctx, in.Algorithm, in.CurrentVersion)
	if err != nil {
		return ResolveVersionOutput{}, fmt.Errorf("resolve version activity: %w", err)
	}
	bump := version.ResolveBump(commits)
	next, err := version.Next(in.CurrentVersion, bump)
	if err != nil {
		return ResolveVersionOutput{}, fmt.Errorf("resolve version activity: %w", err)
	}
	return ResolveVersionOutput{Bump: bump, NextVersion: next, Commits: commits}, nil
}

// PublishArtifact packages and uploads the released build.
func (a *Activities) PublishArtifact(ctx context.Context, in PublishInput) (PublishOutput, error) {
	a.recordActivity(ctx, "PublishArtifact")

	notes := in.ReleaseNotes
	if notes == "" {
		notes = report.ReleaseNotes(in.Algorithm, in.Version, in.Report, time.Now().UTC())
	}
	location, err := a.Publisher.Publish(ctx, in.Algorithm, in.Version, notes)
	if err != nil {
		return PublishOutput{}, fmt.Errorf("publish activity: %w", err)
	}
	return PublishOutput{Location: location}, nil
}

// NotifyTeams delivers the run's notifications.
func (a *Activities) NotifyTeams(ctx context.Context, in NotifyInput) error {
	a.recordActivity(ctx, "NotifyTeams")

	for _, msg := range in.Notifications {
		if err := a.Notifier.Send(ctx, msg); err != nil {
			return fmt.Errorf("notify activity: send to %s: %w", msg.To, err)
		}
	}
	return nil
}
