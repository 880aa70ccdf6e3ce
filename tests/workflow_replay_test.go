package tests

// Replay test validates workflow determinism by replaying a recorded history.
//
// The test is a stub that will be activated once we have a recorded history
// JSON in tests/testdata/. To generate:
//
//  1. Run the worker + trigger a pipeline via CLI
//  2. Export history: temporal workflow show --workflow-id WID -o json > tests/testdata/release_pipeline_history.json
//  3. Uncomment the test below.
//
// import (
//     "testing"
//     "go.temporal.io/sdk/worker"
//     "github.com/algoparity/parity-go/internal/temporal/workflows"
// )
//
// func TestReplayReleasePipeline(t *testing.T) {
//     replayer := worker.NewWorkflowReplayer()
//     replayer.RegisterWorkflow(workflows.ReleasePipelineWorkflow)
//     err := replayer.ReplayWorkflowHistoryFromJSONFile(nil, "testdata/release_pipeline_history.json")
//     if err != nil {
//         t.Fatalf("replay failed: %v", err)
//     }
// }
