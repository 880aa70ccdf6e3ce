// Package version derives semantic-version bumps from conventional commit
// messages.
package version

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/algoparity/parity-go/internal/domain"
)

// Conventional commit header: type, optional scope, optional breaking "!".
var headerRe = regexp.MustCompile(`^([a-zA-Z]+)(\([^)]*\))?(!)?:\s`)

// ClassifyCommit maps a conventional commit message to its kind.
// A "!" after the type or a "BREAKING CHANGE:" footer marks a breaking
// change regardless of the type.
func ClassifyCommit(message string) domain.CommitKind {
	if strings.Contains(message, "BREAKING CHANGE:") || strings.Contains(message, "BREAKING-CHANGE:") {
		return domain.CommitBreaking
	}
	m := headerRe.FindStringSubmatch(message)
	if m == nil {
		return domain.CommitOther
	}
	if m[3] == "!" {
		return domain.CommitBreaking
	}
	switch strings.ToLower(m[1]) {
	case "feat":
		return domain.CommitFeature
	case "fix":
		return domain.CommitFix
	}
	return domain.CommitOther
}

// ResolveBump returns the strongest bump demanded by any of the commit
// messages: breaking beats feature beats fix beats everything else.
func ResolveBump(messages []string) domain.BumpKind {
	best := domain.BumpNone
	bestRank := domain.BumpRank[best]
	for _, msg := range messages {
		bump := domain.BumpForCommit[ClassifyCommit(msg)]
		if rank := domain.BumpRank[bump]; rank > bestRank {
			best, bestRank = bump, rank
		}
	}
	return best
}

// Next applies a bump to a semantic version. The current version may carry
// a leading "v"; the result keeps the same convention. BumpNone returns
// the current version unchanged.
func Next(current string, bump domain.BumpKind) (string, error) {
	prefixed := strings.HasPrefix(current, "v")
	canonical := current
	if !prefixed {
		canonical = "v" + current
	}
	if !semver.IsValid(canonical) {
		return "", fmt.Errorf("invalid semantic version %q", current)
	}
	if bump == domain.BumpNone {
		return current, nil
	}

	// semver.Canonical strips any prerelease/build suffix for us.
	parts := strings.SplitN(strings.TrimPrefix(semver.Canonical(canonical), "v"), ".", 3)
	major, _ := strconv.Atoi(parts[0])
	minor, _ := strconv.Atoi(parts[1])
	patch, _ := strconv.Atoi(parts[2])

	switch bump {
	case domain.BumpMajor:
		major, minor, patch = major+1, 0, 0
	case domain.BumpMinor:
		minor, patch = minor+1, 0
	case domain.BumpPatch:
		patch++
	default:
		return "", fmt.Errorf("unknown bump kind %q", bump)
	}

	next := fmt.Sprintf("%d.%d.%d", major, minor, patch)
	if prefixed {
		next = "v" + next
	}
	return next, nil
}

// Compare orders two versions, accepting either the bare or the
// v-prefixed form. It returns -1, 0, or +1.
func Compare(a, b string) int {
	if !strings.HasPrefix(a, "v") {
		a = "v" + a
	}
	if !strings.HasPrefix(b, "v") {
		b = "v" + b
	}
	return semver.Compare(a, b)
}
