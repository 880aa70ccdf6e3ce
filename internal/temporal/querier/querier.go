package querier

import (
	"context"
	"fmt"

	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/workflowservice/v1"
	"go.temporal.io/sdk/client"

	"github.com/algoparity/parity-go/internal/domain"
	"github.com/algoparity/parity-go/internal/temporal/versioning"
	"github.com/algoparity/parity-go/internal/temporal/workflows"
)

// TemporalQuerier implements PipelineQuerier using a Temporal client.
type TemporalQuerier struct {
	client client.Client
}

// New creates a TemporalQuerier.
func New(c client.Client) *TemporalQuerier {
	return &TemporalQuerier{client: c}
}

// ListPipelines lists pipeline executions using Temporal's visibility API.
func (q *TemporalQuerier) ListPipelines(ctx context.Context, opts ListOptions) ([]PipelineSummary, error) {
	query := ""
	if opts.TaskQueue != "" {
		query = fmt.Sprintf("TaskQueue = %q", opts.TaskQueue)
	}
	if opts.StatusFilter != "" {
		if query != "" {
			query += " AND "
		}
		query += fmt.Sprintf("ExecutionStatus = %q", opts.StatusFilter)
	}

	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	resp, err := q.client.ListWorkflow(ctx, &workflowservice.ListWorkflowExecutionsRequest{
		Query:    query,
		PageSize: int32(pageSize),
	})
	if err != nil {
		return nil, fmt.Errorf("list pipelines: %w", err)
	}

	var summaries []PipelineSummary
	for _, exec := range resp.Executions {
		s := PipelineSummary{
			WorkflowID: exec.Execution.WorkflowId,
			RunID:      exec.Execution.RunId,
			Status:     exec.Status.String(),
			StartTime:  exec.StartTime.AsTime(),
			TaskQueue:  exec.TaskQueue,
		}
		if exec.CloseTime != nil {
			s.CloseTime = exec.CloseTime.AsTime()
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

// GetPipelineState returns the current pipeline state.
// For completed workflows, extracts the result directly.
// For running workflows, uses the Query handler.
func (q *TemporalQuerier) GetPipelineState(ctx context.Context, workflowID string) (*workflows.WorkflowResult, error) {
	desc, err := q.client.DescribeWorkflowExecution(ctx, workflowID, "")
	if err != nil {
		return nil, fmt.Errorf("describe pipeline: %w", err)
	}

	status := desc.WorkflowExecutionInfo.Status
	if status == enumspb.WORKFLOW_EXECUTION_STATUS_COMPLETED {
		run := q.client.GetWorkflow(ctx, workflowID, "")
		var result workflows.WorkflowResult
		if err := run.Get(ctx, &result); err != nil {
			return nil, fmt.Errorf("get pipeline result: %w", err)
		}
		return &result, nil
	}

	if status == enumspb.WORKFLOW_EXECUTION_STATUS_RUNNING {
		resp, err := q.client.QueryWorkflow(ctx, workflowID, "", workflows.QueryNameState)
		if err != nil {
			return nil, fmt.Errorf("query pipeline state: %w", err)
		}
		var state domain.PipelineState
		if err := resp.Get(&state); err != nil {
			return nil, fmt.Errorf("decode query result: %w", err)
		}
		// In-flight runs have no termination reason yet.
		return &workflows.WorkflowResult{State: state}, nil
	}

	return nil, fmt.Errorf("pipeline %s has status %s, cannot read state", workflowID, status)
}

// DescribePipeline returns detailed information about a pipeline execution.
func (q *TemporalQuerier) DescribePipeline(ctx context.Context, workflowID string) (*PipelineDescription, error) {
	desc, err := q.client.DescribeWorkflowExecution(ctx, workflowID, "")
	if err != nil {
		return nil, fmt.Errorf("describe pipeline: %w", err)
	}

	info := desc.WorkflowExecutionInfo
	pd := &PipelineDescription{
		PipelineSummary: PipelineSummary{
			WorkflowID: info.Execution.WorkflowId,
			RunID:      info.Execution.RunId,
			Status:     info.Status.String(),
			StartTime:  info.StartTime.AsTime(),
			TaskQueue:  info.TaskQueue,
		},
	}
	if info.CloseTime != nil {
		pd.CloseTime = info.CloseTime.AsTime()
	}
	return pd, nil
}

// StartPipeline launches a new release pipeline run for an algorithm.
func (q *TemporalQuerier) StartPipeline(ctx context.Context, input workflows.WorkflowInput) (StartReceipt, error) {
	if input.Algorithm == "" {
		return StartReceipt{}, fmt.Errorf("start pipeline: algorithm is required")
	}
	if input.CurrentVersion == "" {
		return StartReceipt{}, fmt.Errorf("start pipeline: current_version is required")
	}

	run, err := q.client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        fmt.Sprintf("release-%s", input.Algorithm),
		TaskQueue: versioning.QueuePipeline,
	}, workflows.ReleasePipelineWorkflow, input)
	if err != nil {
		return StartReceipt{}, fmt.Errorf("start pipeline: %w", err)
	}
	return StartReceipt{WorkflowID: run.GetID(), RunID: run.GetRunID()}, nil
}
