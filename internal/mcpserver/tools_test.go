package mcpserver_test

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"

	"github.com/algoparity/parity-go/internal/domain"
	"github.com/algoparity/parity-go/internal/mcpserver"
	"github.com/algoparity/parity-go/internal/temporal/querier"
	"github.com/algoparity/parity-go/internal/temporal/workflows"
)

type stubQuerier struct {
	pipelines []querier.PipelineSummary
	state     *workflows.WorkflowResult
	desc      *querier.PipelineDescription
	receipt   querier.StartReceipt
	err       error
}

func (s *stubQuerier) ListPipelines(_ context.Context, _ querier.ListOptions) ([]querier.PipelineSummary, error) {
	return s.pipelines, s.err
}

func (s *stubQuerier) GetPipelineState(_ context.Context, _ string) (*workflows.WorkflowResult, error) {
	return s.state, s.err
}

func (s *stubQuerier) DescribePipeline(_ context.Context, _ string) (*querier.PipelineDescription, error) {
	return s.desc, s.err
}

func (s *stubQuerier) StartPipeline(_ context.Context, _ workflows.WorkflowInput) (querier.StartReceipt, error) {
	return s.receipt, s.err
}

func TestRegisterTools(t *testing.T) {
	q := &stubQuerier{
		state: &workflows.WorkflowResult{
			State: domain.NewPipelineState("kalman_filter", "0.1.0"),
		},
	}

	server := mcp.NewServer(&mcp.Implementation{Name: "test", Version: "v1"}, nil)
	mcpserver.RegisterTools(server, q)

	// Verify it compiles and registers without panic.
	assert.NotNil(t, server)
}
