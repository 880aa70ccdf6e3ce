// Package workflows defines the Temporal workflow functions.
package workflows

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/algoparity/parity-go/internal/domain"
	"github.com/algoparity/parity-go/internal/gate"
	"github.com/algoparity/parity-go/internal/report"
	"github.com/algoparity/parity-go/internal/temporal/activities"
	"github.com/algoparity/parity-go/internal/temporal/versioning"
)

// QueryNameState is the Temporal query handler name for pipeline state.
const QueryNameState = "pipeline_state"

// TerminationReason describes why the workflow ended.
type TerminationReason string

const (
	ReasonCompleted         TerminationReason = "completed"
	ReasonBuildFailed       TerminationReason = "build_failed"
	ReasonLocalTestsFailed  TerminationReason = "local_tests_failed"
	ReasonEquivalenceFailed TerminationReason = "equivalence_failed"
	ReasonNoVersionChange   TerminationReason = "no_version_change"
	ReasonBuildError        TerminationReason = "build_error"
	ReasonTestError         TerminationReason = "test_error"
	ReasonVectorError       TerminationReason = "vector_error"
	ReasonEvaluationError   TerminationReason = "evaluation_error"
	ReasonComparisonError   TerminationReason = "comparison_error"
	ReasonVersionError      TerminationReason = "version_error"
	ReasonPublishError      TerminationReason = "publish_error"
)

// WorkflowInput is the input to the release pipeline workflow.
type WorkflowInput struct {
	Algorithm      string `json:"algorithm"`
	CurrentVersion string `json:"current_version"`
}

// WorkflowResult is the output of the release pipeline workflow.
// The workflow returns this on all paths; only infra failures produce
// workflow-level errors.
type WorkflowResult struct {
	State  domain.PipelineState `json:"state"`
	Reason TerminationReason    `json:"reason"`
}

// ReleasePipelineWorkflow drives one algorithm change from candidate build
// to publication:
//
//	build -> local tests -> load vectors -> evaluate ref+cand -> compare
//	-> gate decision -> version -> publish -> notify
//
// The gate controller runs in-workflow (pure state machine, no I/O,
// determinism-safe). Any upstream failure decides the gate without the
// equivalence engine ever being invoked.
func ReleasePipelineWorkflow(ctx workflow.Context, input WorkflowInput) (WorkflowResult, error) {
	logger := workflow.GetLogger(ctx)
	state := newPipelineState(ctx, input)
	ctrl := gate.NewControllerWithClock(func() time.Time { return workflow.Now(ctx) })
	addrs := report.DefaultAddresses()

	if err := workflow.SetQueryHandler(ctx, QueryNameState, func() (domain.PipelineState, error) {
		return state, nil
	}); err != nil {
		return WorkflowResult{}, fmt.Errorf("register state query: %w", err)
	}

	// Activity options: generous timeout, no retry by default. Build and
	// evaluation are expensive; a flaky toolchain should surface, not loop.
	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}
	actCtx := workflow.WithActivityOptions(ctx, actOpts)

	evalOpts := actOpts
	evalOpts.TaskQueue = versioning.QueueEval
	evalCtx := workflow.WithActivityOptions(ctx, evalOpts)

	publishOpts := actOpts
	publishOpts.TaskQueue = versioning.QueuePublish
	publishCtx := workflow.WithActivityOptions(ctx, publishOpts)

	// ------------------------------------------------------------------
	// Build: compile the candidate
	// ------------------------------------------------------------------
	state.CurrentStage = "build"
	var buildOut activities.BuildOutput
	err := workflow.ExecuteActivity(actCtx, "RunBuild", activities.BuildInput{
		Algorithm: input.Algorithm,
	}).Get(ctx, &buildOut)
	if err != nil {
		return failInfra(&state, ReasonBuildError, fmt.Sprintf("build failed to run: %v", err)), nil
	}
	state.Build = &buildOut.Result
	if err := ctrl.ObserveBuild(buildOut.Result); err != nil {
		return WorkflowResult{}, fmt.Errorf("gate: %w", err)
	}
	if d := ctrl.Decision(); d != nil {
		logger.Info("build failed, halting", "algorithm", input.Algorithm)
		return halt(ctx, actCtx, &state, *d, addrs, ReasonBuildFailed), nil
	}
	logger.Info("build succeeded", "algorithm", input.Algorithm)

	// ------------------------------------------------------------------
	// Local tests: native test suite of the candidate
	// ------------------------------------------------------------------
	state.CurrentStage = "local_tests"
	var testsOut activities.LocalTestsOutput
	err = workflow.ExecuteActivity(actCtx, "RunLocalTests", activities.LocalTestsInput{
		Algorithm: input.Algorithm,
	}).Get(ctx, &testsOut)
	if err != nil {
		return failInfra(&state, ReasonTestError, fmt.Sprintf("local tests failed to run: %v", err)), nil
	}
	state.LocalTests = &testsOut.Result
	if err := ctrl.ObserveTests(testsOut.Result); err != nil {
		return WorkflowResult{}, fmt.Errorf("gate: %w", err)
	}
	if d := ctrl.Decision(); d != nil {
		logger.Info("local tests failed, halting", "algorithm", input.Algorithm)
		return halt(ctx, actCtx, &state, *d, addrs, ReasonLocalTestsFailed), nil
	}

	// ------------------------------------------------------------------
	// Equivalence: load vectors, evaluate both sides, compare
	// ------------------------------------------------------------------
	state.CurrentStage = "equivalence"
	var suiteOut activities.LoadSuiteOutput
	err = workflow.ExecuteActivity(actCtx, "LoadSuite", activities.LoadSuiteInput{
		Algorithm: input.Algorithm,
	}).Get(ctx, &suiteOut)
	if err != nil {
		return failInfra(&state, ReasonVectorError, fmt.Sprintf("load vectors: %v", err)), nil
	}

	// Both sides run concurrently; the evaluation queue bounds toolchain load.
	refFuture := workflow.ExecuteActivity(evalCtx, "EvaluateSuite", activities.EvaluateSuiteInput{
		Suite: suiteOut.Suite,
		Role:  domain.RoleReference,
	})
	candFuture := workflow.ExecuteActivity(evalCtx, "EvaluateSuite", activities.EvaluateSuiteInput{
		Suite: suiteOut.Suite,
		Role:  domain.RoleCandidate,
	})

	var refOut, candOut activities.EvaluateSuiteOutput
	if err := refFuture.Get(ctx, &refOut); err != nil {
		return failInfra(&state, ReasonEvaluationError, fmt.Sprintf("reference evaluation: %v", err)), nil
	}
	if err := candFuture.Get(ctx, &candOut); err != nil {
		return failInfra(&state, ReasonEvaluationError, fmt.Sprintf("candidate evaluation: %v", err)), nil
	}

	var cmpOut activities.CompareOutput
	err = workflow.ExecuteActivity(actCtx, "CompareOutputs", activities.CompareInput{
		Suite:     suiteOut.Suite,
		Reference: refOut.Outputs,
		Candidate: candOut.Outputs,
	}).Get(ctx, &cmpOut)
	if err != nil {
		return failInfra(&state, ReasonComparisonError, fmt.Sprintf("comparison: %v", err)), nil
	}
	state.Report = &cmpOut.Report
	if err := ctrl.ObserveEquivalence(cmpOut.Report); err != nil {
		return WorkflowResult{}, fmt.Errorf("gate: %w", err)
	}

	decision := ctrl.Decision()
	state.Decision = decision
	if decision.Outcome == domain.GateHalt {
		logger.Info("equivalence failed, halting",
			"algorithm", input.Algorithm,
			"failed_cases", cmpOut.Report.FailedCases(),
			"max_abs_error", cmpOut.Report.MaxAbsoluteError)
		return halt(ctx, actCtx, &state, *decision, addrs, ReasonEquivalenceFailed), nil
	}
	logger.Info("equivalence passed",
		"algorithm", input.Algorithm,
		"total", cmpOut.Report.Total,
		"max_abs_error", cmpOut.Report.MaxAbsoluteError)

	// ------------------------------------------------------------------
	// Version: conventional commits decide the bump
	// ------------------------------------------------------------------
	state.CurrentStage = "version"
	var verOut activities.ResolveVersionOutput
	err = workflow.ExecuteActivity(actCtx, "ResolveVersion", activities.ResolveVersionInput{
		Algorithm:      input.Algorithm,
		CurrentVersion: input.CurrentVersion,
	}).Get(ctx, &verOut)
	if err != nil {
		return failInfra(&state, ReasonVersionError, fmt.Sprintf("resolve version: %v", err)), nil
	}
	state.Bump = verOut.Bump
	state.NextVersion = verOut.NextVersion

	if verOut.Bump == domain.BumpNone {
		logger.Info("no release-worthy commits, skipping publish", "algorithm", input.Algorithm)
		state.CurrentStage = "completed"
		state.ShouldTerminate = true
		return WorkflowResult{State: state, Reason: ReasonNoVersionChange}, nil
	}

	// ------------------------------------------------------------------
	// Publish and notify
	// ------------------------------------------------------------------
	state.CurrentStage = "publish"
	var pubOut activities.PublishOutput
	err = workflow.ExecuteActivity(publishCtx, "PublishArtifact", activities.PublishInput{
		Algorithm: input.Algorithm,
		Version:   verOut.NextVersion,
		Report:    cmpOut.Report,
	}).Get(ctx, &pubOut)
	if err != nil {
		return failInfra(&state, ReasonPublishError, fmt.Sprintf("publish: %v", err)), nil
	}
	logger.Info("published", "algorithm", input.Algorithm, "version", verOut.NextVersion, "location", pubOut.Location)

	state.CurrentStage = "notify"
	msgs := report.SuccessNotifications(addrs, input.Algorithm, verOut.NextVersion, cmpOut.Report)
	if err := workflow.ExecuteActivity(actCtx, "NotifyTeams", activities.NotifyInput{
		Notifications: msgs,
	}).Get(ctx, nil); err != nil {
		// Publication already happened; a lost email is not worth failing the run.
		logger.Warn("notification failed", "error", err)
	}

	state.CurrentStage = "completed"
	state.ShouldTerminate = true
	return WorkflowResult{State: state, Reason: ReasonCompleted}, nil
}

// newPipelineState builds the initial state with a deterministic pipeline ID.
func newPipelineState(ctx workflow.Context, input WorkflowInput) domain.PipelineState {
	info := workflow.GetInfo(ctx)
	return domain.PipelineState{
		PipelineID:     info.WorkflowExecution.ID,
		StartedAt:      workflow.Now(ctx).UTC().Format(time.RFC3339),
		Algorithm:      input.Algorithm,
		CurrentVersion: input.CurrentVersion,
		CurrentStage:   "build",
	}
}

// halt records the gate decision, notifies the algorithm team, and ends the run.
func halt(ctx workflow.Context, actCtx workflow.Context, state *domain.PipelineState, decision domain.GateDecision, addrs report.Addresses, reason TerminationReason) WorkflowResult {
	logger := workflow.GetLogger(ctx)
	state.Decision = &decision
	state.CurrentStage = "halted"
	state.ShouldTerminate = true

	msg := report.FailureNotification(addrs, state.Algorithm, decision)
	if err := workflow.ExecuteActivity(actCtx, "NotifyTeams", activities.NotifyInput{
		Notifications: []report.Notification{msg},
	}).Get(ctx, nil); err != nil {
		logger.Warn("failure notification failed", "error", err)
	}
	return WorkflowResult{State: *state, Reason: reason}
}

// failInfra marks the run as failed for non-gate reasons (the stage could
// not run at all, as opposed to running and failing).
func failInfra(state *domain.PipelineState, reason TerminationReason, msg string) WorkflowResult {
	state.Error = &msg
	state.ShouldTerminate = true
	return WorkflowResult{State: *state, Reason: reason}
}
