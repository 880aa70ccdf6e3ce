// Package mcpserver exposes release pipeline data via MCP tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/algoparity/parity-go/internal/temporal/querier"
	"github.com/algoparity/parity-go/internal/temporal/versioning"
	"github.com/algoparity/parity-go/internal/temporal/workflows"
)

// RegisterTools registers all release pipeline MCP tools on the given server.
func RegisterTools(server *mcp.Server, q querier.PipelineQuerier) {
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "list_pipelines",
			Description: "List recent release pipeline runs with status and algorithm",
		},
		listPipelinesHandler(q),
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "get_pipeline_state",
			Description: "Get full state for a specific release pipeline run, including stage results and gate decision",
		},
		getPipelineStateHandler(q),
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "get_equivalence_report",
			Description: "Get the numeric equivalence report for a pipeline run, with per-case error metrics",
		},
		getEquivalenceReportHandler(q),
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "trigger_pipeline",
			Description: "Start a release pipeline run for an algorithm at its current version",
		},
		triggerPipelineHandler(q),
	)
}

type listPipelinesInput struct {
	Status string `json:"status,omitempty"`
}

func listPipelinesHandler(q querier.PipelineQuerier) mcp.ToolHandlerFor[listPipelinesInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input listPipelinesInput) (*mcp.CallToolResult, any, error) {
		opts := querier.ListOptions{TaskQueue: versioning.QueuePipeline}
		if input.Status != "" {
			opts.StatusFilter = input.Status
		}

		pipelines, err := q.ListPipelines(ctx, opts)
		if err != nil {
			return nil, nil, fmt.Errorf("list_pipelines: %w", err)
		}

		return textResult(pipelines)
	}
}

type pipelineIDInput struct {
	WorkflowID string `json:"workflow_id"`
}

func getPipelineStateHandler(q querier.PipelineQuerier) mcp.ToolHandlerFor[pipelineIDInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input pipelineIDInput) (*mcp.CallToolResult, any, error) {
		if input.WorkflowID == "" {
			return errorResult("workflow_id is required"), nil, nil
		}

		result, err := q.GetPipelineState(ctx, input.WorkflowID)
		if err != nil {
			return nil, nil, fmt.Errorf("get_pipeline_state: %w", err)
		}

		return textResult(result)
	}
}

func getEquivalenceReportHandler(q querier.PipelineQuerier) mcp.ToolHandlerFor[pipelineIDInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input pipelineIDInput) (*mcp.CallToolResult, any, error) {
		if input.WorkflowID == "" {
			return errorResult("workflow_id is required"), nil, nil
		}

		result, err := q.GetPipelineState(ctx, input.WorkflowID)
		if err != nil {
			return nil, nil, fmt.Errorf("get_equivalence_report: %w", err)
		}
		if result.State.Report == nil {
			return errorResult("no equivalence report yet for " + input.WorkflowID), nil, nil
		}

		return textResult(result.State.Report)
	}
}

type triggerPipelineInput struct {
	Algorithm      string `json:"algorithm"`
	CurrentVersion string `json:"current_version"`
}

func triggerPipelineHandler(q querier.PipelineQuerier) mcp.ToolHandlerFor[triggerPipelineInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input triggerPipelineInput) (*mcp.CallToolResult, any, error) {
		if input.Algorithm == "" || input.CurrentVersion == "" {
			return errorResult("algorithm and current_version are required"), nil, nil
		}

		receipt, err := q.StartPipeline(ctx, workflows.WorkflowInput{
			Algorithm:      input.Algorithm,
			CurrentVersion: input.CurrentVersion,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("trigger_pipeline: %w", err)
		}

		return textResult(receipt)
	}
}

func textResult(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("marshal result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(data)},
		},
	}, nil, nil
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
		IsError: true,
	}
}
