// Package querier provides read and trigger access to Temporal workflow state.
package querier

import "time"

// ListOptions controls filtering for ListPipelines.
type ListOptions struct {
	// TaskQueue filters by task queue name. Empty means no filter.
	TaskQueue string
	// StatusFilter filters by workflow status (e.g. "Running", "Completed").
	StatusFilter string
	// PageSize limits the number of results.
	PageSize int
}

// PipelineSummary is a lightweight overview of a pipeline execution.
type PipelineSummary struct {
	WorkflowID string    `json:"workflow_id"`
	RunID      string    `json:"run_id"`
	Status     string    `json:"status"`
	StartTime  time.Time `json:"start_time"`
	CloseTime  time.Time `json:"close_time,omitempty"`
	TaskQueue  string    `json:"task_queue"`
}

// PipelineDescription provides detailed info about a pipeline execution.
type PipelineDescription struct {
	PipelineSummary
	SearchAttributes map[string]any `json:"search_attributes,omitempty"`
}

// StartReceipt identifies a freshly started pipeline run.
type StartReceipt struct {
	WorkflowID string `json:"workflow_id"`
	RunID      string `json:"run_id"`
}
