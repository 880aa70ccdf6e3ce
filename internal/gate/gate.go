// Package gate decides whether a release pipeline may proceed to
// versioning and publication.
//
// The controller is a strict state machine: build, then local tests, then
// the equivalence report, in that order. An upstream failure decides the
// gate immediately and the equivalence stage is never consulted. Once
// decided, the verdict is final.
package gate

import (
	"fmt"
	"sync"
	"time"

	"github.com/algoparity/parity-go/internal/domain"
)

// State is the controller's position in the stage sequence.
type State string

const (
	StateAwaitingBuild       State = "awaiting_build"
	StateAwaitingTests       State = "awaiting_tests"
	StateAwaitingEquivalence State = "awaiting_equivalence"
	StateDecided             State = "decided"
)

// Stage names used in decisions and logs.
const (
	StageBuild       = "build"
	StageLocalTests  = "local_tests"
	StageEquivalence = "equivalence"
)

// Halt reasons.
const (
	ReasonBuildFailed       = "build failed"
	ReasonLocalTestsFailed  = "local tests failed"
	ReasonEquivalenceFailed = "numeric equivalence check failed"
	ReasonAllStagesPassed   = "all gate stages passed"
)

// Controller accumulates stage outcomes for one pipeline run and produces
// a single terminal decision. Safe for concurrent use.
type Controller struct {
	mu       sync.Mutex
	state    State
	decision *domain.GateDecision
	now      func() time.Time
}

// NewController returns a controller awaiting the build outcome.
func NewController() *Controller {
	return NewControllerWithClock(time.Now)
}

// NewControllerWithClock returns a controller that stamps decisions with
// the given clock. Workflow callers pass their deterministic clock here.
func NewControllerWithClock(now func() time.Time) *Controller {
	return &Controller{state: StateAwaitingBuild, now: now}
}

// State returns the controller's current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Decision returns the terminal verdict, or nil while undecided.
func (c *Controller) Decision() *domain.GateDecision {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.decision == nil {
		return nil
	}
	d := *c.decision
	return &d
}

// ObserveBuild records the build outcome. A failed build halts the gate.
func (c *Controller) ObserveBuild(result domain.StageResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.expect(StateAwaitingBuild, StageBuild); err != nil {
		return err
	}
	if !result.Succeeded {
		c.halt(ReasonBuildFailed, StageBuild)
		return nil
	}
	c.state = StateAwaitingTests
	return nil
}

// ObserveTests records the local native-test outcome. A failure halts the gate.
func (c *Controller) ObserveTests(result domain.StageResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.expect(StateAwaitingTests, StageLocalTests); err != nil {
		return err
	}
	if !result.Succeeded {
		c.halt(ReasonLocalTestsFailed, StageLocalTests)
		return nil
	}
	c.state = StateAwaitingEquivalence
	return nil
}

// ObserveEquivalence records the equivalence report and decides the gate.
// The report is attached to the decision either way.
func (c *Controller) ObserveEquivalence(report domain.EquivalenceReport) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.expect(StateAwaitingEquivalence, StageEquivalence); err != nil {
		return err
	}
	if report.AllPassed {
		d := domain.GateDecision{
			Outcome:   domain.GateProceed,
			Reason:    ReasonAllStagesPassed,
			Report:    &report,
			DecidedAt: c.now().UTC().Format(time.RFC3339),
		}
		c.decision = &d
		c.state = StateDecided
		return nil
	}
	c.halt(ReasonEquivalenceFailed, StageEquivalence)
	c.decision.Report = &report
	return nil
}

// expect is called with the mutex held.
func (c *Controller) expect(want State, stage string) error {
	if c.state == StateDecided {
		return fmt.Errorf("gate already decided, cannot observe %s", stage)
	}
	if c.state != want {
		return fmt.Errorf("gate in state %s, cannot observe %s", c.state, stage)
	}
	return nil
}

// halt is called with the mutex held.
func (c *Controller) halt(reason, stage string) {
	d := domain.GateDecision{
		Outcome:     domain.GateHalt,
		Reason:      reason,
		FailedStage: stage,
		DecidedAt:   c.now().UTC().Format(time.RFC3339),
	}
	c.decision = &d
	c.state = StateDecided
}
