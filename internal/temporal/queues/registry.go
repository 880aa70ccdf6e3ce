// Package queues defines per-queue worker configuration for task-queue partitioning.
package queues

import (
	"fmt"
	"strings"

	"go.temporal.io/sdk/worker"

	"github.com/algoparity/parity-go/internal/temporal/versioning"
)

// QueueConfig holds worker options for a single task queue.
type QueueConfig struct {
	Name    string
	Options worker.Options
}

// DefaultConfigs returns the standard per-queue worker options.
//
//   - QueuePipeline: stateful release workflows, generous concurrency
//   - QueueEval: toolchain evaluations, bounded by licensed seats
//   - QueuePublish: artifact uploads, tight concurrency
func DefaultConfigs() map[string]QueueConfig {
	return map[string]QueueConfig{
		versioning.QueuePipeline: {
			Name: versioning.QueuePipeline,
			Options: worker.Options{
				MaxConcurrentActivityExecutionSize:     10,
				MaxConcurrentWorkflowTaskExecutionSize: 10,
			},
		},
		versioning.QueueEval: {
			Name: versioning.QueueEval,
			Options: worker.Options{
				MaxConcurrentActivityExecutionSize:     4,
				MaxConcurrentWorkflowTaskExecutionSize: 5,
			},
		},
		versioning.QueuePublish: {
			Name: versioning.QueuePublish,
			Options: worker.Options{
				MaxConcurrentActivityExecutionSize:     2,
				MaxConcurrentWorkflowTaskExecutionSize: 1,
			},
		},
	}
}

// ParseQueues parses a comma-separated queue list (e.g. "pipeline,eval")
// into a set of queue names. Accepts both short names ("eval") and
// full names ("parity-eval"). Returns an error for unknown queues.
func ParseQueues(raw string) ([]string, error) {
	if raw == "" {
		return []string{versioning.QueuePipeline}, nil
	}

	shortNames := map[string]string{
		"pipeline": versioning.QueuePipeline,
		"eval":     versioning.QueueEval,
		"publish":  versioning.QueuePublish,
	}
	fullNames := map[string]bool{
		versioning.QueuePipeline: true,
		versioning.QueueEval:     true,
		versioning.QueuePublish:  true,
	}

	seen := make(map[string]bool)
	var result []string
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		// Resolve short name to full name.
		if full, ok := shortNames[name]; ok {
			name = full
		}
		if !fullNames[name] {
			return nil, fmt.Errorf("unknown queue %q", name)
		}
		if !seen[name] {
			seen[name] = true
			result = append(result, name)
		}
	}
	if len(result) == 0 {
		return []string{versioning.QueuePipeline}, nil
	}
	return result, nil
}
