package querier

import (
	"context"

	"github.com/algoparity/parity-go/internal/temporal/workflows"
)

// PipelineQuerier provides read access to pipeline state and the ability
// to start new runs. Used by the HTTP API, SSE streamer, and MCP server.
type PipelineQuerier interface {
	ListPipelines(ctx context.Context, opts ListOptions) ([]PipelineSummary, error)
	GetPipelineState(ctx context.Context, workflowID string) (*workflows.WorkflowResult, error)
	DescribePipeline(ctx context.Context, workflowID string) (*PipelineDescription, error)
	StartPipeline(ctx context.Context, input workflows.WorkflowInput) (StartReceipt, error)
}
