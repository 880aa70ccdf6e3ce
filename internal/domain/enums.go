package domain

import "fmt"

// ImplRole distinguishes the two implementations under comparison.
type ImplRole string

const (
	RoleReference ImplRole = "reference"
	RoleCandidate ImplRole = "candidate"
)

func (r ImplRole) Valid() bool {
	switch r {
	case RoleReference, RoleCandidate:
		return true
	}
	return false
}

// GateOutcome is the terminal verdict of a pipeline gate.
type GateOutcome string

const (
	GateProceed GateOutcome = "proceed"
	GateHalt    GateOutcome = "halt"
)

func (o GateOutcome) Valid() bool {
	switch o {
	case GateProceed, GateHalt:
		return true
	}
	return false
}

// CommitKind classifies a conventional commit message.
type CommitKind string

const (
	CommitBreaking CommitKind = "breaking"
	CommitFeature  CommitKind = "feature"
	CommitFix      CommitKind = "fix"
	CommitOther    CommitKind = "other"
)

func (c CommitKind) Valid() bool {
	switch c {
	case CommitBreaking, CommitFeature, CommitFix, CommitOther:
		return true
	}
	return false
}

// BumpKind is the semantic-version component a release run increments.
type BumpKind string

const (
	BumpMajor BumpKind = "major"
	BumpMinor BumpKind = "minor"
	BumpPatch BumpKind = "patch"
	BumpNone  BumpKind = "none"
)

func (b BumpKind) Valid() bool {
	switch b {
	case BumpMajor, BumpMinor, BumpPatch, BumpNone:
		return true
	}
	return false
}

// BumpRank maps BumpKind to explicit precedence scores. Precedence
// comparisons go through this map, never through enum ordering.
var BumpRank = map[BumpKind]int{
	BumpNone:  0,
	BumpPatch: 10,
	BumpMinor: 20,
	BumpMajor: 30,
}

// BumpRankFor returns the precedence score, or an error for unknown kinds.
func BumpRankFor(kind BumpKind) (int, error) {
	rank, ok := BumpRank[kind]
	if !ok {
		return 0, fmt.Errorf("unknown bump kind: %q", kind)
	}
	return rank, nil
}

// BumpForCommit maps a commit classification to the version bump it demands.
var BumpForCommit = map[CommitKind]BumpKind{
	CommitBreaking: BumpMajor,
	CommitFeature:  BumpMinor,
	CommitFix:      BumpPatch,
	CommitOther:    BumpNone,
}
