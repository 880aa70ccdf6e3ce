// Package activities defines the Temporal activity I/O structs and the
// Activities implementation that bridges Temporal's serialization boundary
// to the pure-logic packages in internal/.
package activities

import (
	"github.com/algoparity/parity-go/internal/domain"
	"github.com/algoparity/parity-go/internal/report"
)

// BuildInput is the activity input for the candidate build stage.
type BuildInput struct {
	Algorithm string `json:"algorithm"`
}

// BuildOutput is the activity output from the build stage.
type BuildOutput struct {
	Result domain.StageResult `json:"result"`
}

// LocalTestsInput is the activity input for the native test stage.
type LocalTestsInput struct {
	Algorithm string `json:"algorithm"`
}

// LocalTestsOutput is the activity output from the native test stage.
type LocalTestsOutput struct {
	Result domain.StageResult `json:"result"`
}

// LoadSuiteInput is the activity input for test-vector loading.
type LoadSuiteInput struct {
	Algorithm string `json:"algorithm"`
}

// LoadSuiteOutput carries the validated suite.
type LoadSuiteOutput struct {
	Suite domain.Suite `json:"suite"`
}

// EvaluateSuiteInput is the activity input for running a suite against
// one side of the comparison.
type EvaluateSuiteInput struct {
	Suite domain.Suite    `json:"suite"`
	Role  domain.ImplRole `json:"role"`
}

// EvaluateSuiteOutput carries the per-case observed outputs in suite order.
type EvaluateSuiteOutput struct {
	AdapterID string                  `json:"adapter_id"`
	Outputs   []domain.ObservedOutput `json:"outputs"`
}

// CompareInput is the activity input for the equivalence comparison.
type CompareInput struct {
	Suite     domain.Suite            `json:"suite"`
	Reference []domain.ObservedOutput `json:"reference"`
	Candidate []domain.ObservedOutput `json:"candidate"`
}

// CompareOutput carries the equivalence report.
type CompareOutput struct {
	Report domain.EquivalenceReport `json:"report"`
}

// ResolveVersionInput is the activity input for version resolution.
type ResolveVersionInput struct {
	Algorithm      string `json:"algorithm"`
	CurrentVersion string `json:"current_version"`
}

// ResolveVersionOutput carries the resolved bump and next version.
type ResolveVersionOutput struct {
	Bump        domain.BumpKind `json:"bump"`
	NextVersion string          `json:"next_version"`
	Commits     []string        `json:"commits"`
}

// PublishInput is the activity input for artifact publication.
type PublishInput struct {
	Algorithm    string                   `json:"algorithm"`
	Version      string                   `json:"version"`
	Report       domain.EquivalenceReport `json:"report"`
	ReleaseNotes string                   `json:"release_notes"`
}

// PublishOutput carries the published package location.
type PublishOutput struct {
	Location string `json:"location"`
}

// NotifyInput is the activity input for team notifications.
type NotifyInput struct {
	Notifications []report.Notification `json:"notifications"`
}
