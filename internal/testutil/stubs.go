// Package testutil provides fixture-backed stubs for the activity
// dependencies, used in stub mode and in tests.
package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/algoparity/parity-go/internal/adapter"
	"github.com/algoparity/parity-go/internal/domain"
	"github.com/algoparity/parity-go/internal/kalman"
	"github.com/algoparity/parity-go/internal/report"
	"github.com/algoparity/parity-go/internal/vectors"
)

// StubBuilder satisfies activities.StageRunner for the build stage.
type StubBuilder struct {
	Fail bool
}

func (s *StubBuilder) Run(_ context.Context, algorithm string) (domain.StageResult, error) {
	if s.Fail {
		return domain.StageResult{Stage: "build", Succeeded: false, Log: "cmake: error: generated " + algorithm + ".cpp does not compile"}, nil
	}
	return domain.StageResult{Stage: "build", Succeeded: true, Log: "built lib" + algorithm + ".a"}, nil
}

// StubTester satisfies activities.StageRunner for the native test stage.
type StubTester struct {
	Fail bool
}

func (s *StubTester) Run(_ context.Context, algorithm string) (domain.StageResult, error) {
	if s.Fail {
		return domain.StageResult{Stage: "local_tests", Succeeded: false, Log: "1 of 4 tests failed"}, nil
	}
	return domain.StageResult{Stage: "local_tests", Succeeded: true, Log: "4 tests passed"}, nil
}

// StubSuites loads suites from golden JSON fixtures named <algorithm>.json.
type StubSuites struct {
	FixturesDir string
}

func (s *StubSuites) LoadSuite(ctx context.Context, algorithm string) (domain.Suite, error) {
	store := vectors.DirStore{Dir: s.FixturesDir}
	return store.LoadSuite(ctx, algorithm)
}

// StubCommits returns a fixed commit list.
type StubCommits struct {
	Messages []string
}

func (s *StubCommits) CommitsSince(context.Context, string, string) ([]string, error) {
	return s.Messages, nil
}

// StubPublisher records publications instead of uploading.
type StubPublisher struct {
	mu        sync.Mutex
	Published []string
}

func (s *StubPublisher) Publish(_ context.Context, algorithm, version, _ string) (string, error) {
	location := fmt.Sprintf("nexus://conan/%s/%s", algorithm, version)
	s.mu.Lock()
	s.Published = append(s.Published, location)
	s.mu.Unlock()
	return location, nil
}

// StubNotifier records sent notifications.
type StubNotifier struct {
	mu   sync.Mutex
	Sent []report.Notification
}

func (s *StubNotifier) Send(_ context.Context, msg report.Notification) error {
	s.mu.Lock()
	s.Sent = append(s.Sent, msg)
	s.mu.Unlock()
	return nil
}

// Messages returns a copy of the sent notifications.
func (s *StubNotifier) Messages() []report.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]report.Notification(nil), s.Sent...)
}

// PerturbedAdapter wraps the in-process filter as a candidate whose state
// outputs are shifted by a fixed offset, simulating a divergent build.
func PerturbedAdapter(offset float64) *adapter.FuncAdapter {
	return &adapter.FuncAdapter{
		Name:     "perturbed-candidate",
		ImplRole: domain.RoleCandidate,
		Fn: func(ctx context.Context, inputs map[string]domain.Vector) (map[string]domain.Vector, error) {
			out, err := kalman.Evaluate(ctx, inputs)
			if err != nil {
				return nil, err
			}
			state := out[kalman.FieldUpdatedState]
			shifted := make([]float64, len(state.Values))
			for i, v := range state.Values {
				shifted[i] = v + offset
			}
			out[kalman.FieldUpdatedState] = domain.Vectorf(shifted...)
			return out, nil
		},
	}
}

// CandidateAdapter returns a candidate that agrees with the reference exactly.
func CandidateAdapter() *adapter.FuncAdapter {
	return &adapter.FuncAdapter{
		Name:     "stub-candidate",
		ImplRole: domain.RoleCandidate,
		Fn:       kalman.Evaluate,
	}
}

// FailingAdapter returns a candidate whose every evaluation fails.
func FailingAdapter(reason string) *adapter.FuncAdapter {
	return &adapter.FuncAdapter{
		Name:     "failing-candidate",
		ImplRole: domain.RoleCandidate,
		Fn: func(context.Context, map[string]domain.Vector) (map[string]domain.Vector, error) {
			return nil, fmt.Errorf("%s", reason)
		},
	}
}

// GoldenDir returns the absolute path to the tests/golden directory.
// It walks up from the caller's file to find the repo root.
func GoldenDir() string {
	// Use runtime.Caller to find the source file location, then navigate up.
	// testutil/ is at internal/testutil/, golden is at tests/golden/
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(filename), "..", "..", "tests", "golden")
}
