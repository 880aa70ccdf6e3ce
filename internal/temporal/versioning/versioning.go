// Package versioning defines workflow versions and task queue names.
package versioning

const (
	// Workflow versions for determinism tracking.
	ReleasePipelineV1 = "release-pipeline-v1"

	// Task queues. The evaluation queue is isolated so licensed-toolchain
	// activities can run on dedicated hosts; publish stays tight.
	QueuePipeline = "parity-pipeline"
	QueueEval     = "parity-eval"
	QueuePublish  = "parity-publish"
)
