// Package report renders release notes and team notifications from a
// pipeline run's outcome.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/algoparity/parity-go/internal/domain"
)

// Notification is an email-shaped message to one of the two audiences:
// the algorithm owners and the consumers of the packaged build.
type Notification struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Addresses configures the notification recipients.
type Addresses struct {
	AlgorithmTeam string
	ConsumerTeam  string
}

// DefaultAddresses returns the team mailing lists.
func DefaultAddresses() Addresses {
	return Addresses{
		AlgorithmTeam: "algorithm-team@example.com",
		ConsumerTeam:  "cpp-integration@example.com",
	}
}

// ReleaseNotes renders the markdown release-notes artifact for a
// published version.
func ReleaseNotes(algorithm, version string, rpt domain.EquivalenceReport, date time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s %s -- Release Notes\n\n", algorithm, version)
	fmt.Fprintf(&b, "**Date**: %s\n\n", date.Format("2006-01-02"))
	b.WriteString("## Equivalence Summary\n\n")
	b.WriteString("| Metric | Value |\n|--------|-------|\n")
	fmt.Fprintf(&b, "| Total tests | %d |\n", rpt.Total)
	fmt.Fprintf(&b, "| All passed | %t |\n", rpt.AllPassed)
	fmt.Fprintf(&b, "| Max absolute error | %.2e |\n", rpt.MaxAbsoluteError)
	fmt.Fprintf(&b, "| Max relative error | %.2e |\n\n", rpt.MaxRelativeError)
	b.WriteString("## Install\n\n")
	fmt.Fprintf(&b, "```bash\nconan install --requires=%s/%s --remote=nexus\n```\n", algorithm, strings.TrimPrefix(version, "v"))
	return b.String()
}

// SuccessNotifications builds the two publication emails: one telling the
// consumer team a new version is available, one confirming to the
// algorithm team that their change shipped.
func SuccessNotifications(addrs Addresses, algorithm, version string, rpt domain.EquivalenceReport) []Notification {
	subject := fmt.Sprintf("%s %s published", algorithm, version)
	pkg := fmt.Sprintf("%s/%s", algorithm, strings.TrimPrefix(version, "v"))

	consumer := Notification{
		To:      addrs.ConsumerTeam,
		Subject: subject,
		Body: fmt.Sprintf(
			"A new version of %s is available.\n\nTo consume:\n  conan install --requires=%s\n\nEquivalence: %d/%d tests passed (max err: %.2e)\n",
			algorithm, pkg, rpt.Passed, rpt.Total, rpt.MaxAbsoluteError),
	}
	owner := Notification{
		To:      addrs.AlgorithmTeam,
		Subject: subject,
		Body: fmt.Sprintf(
			"Your algorithm %s was tested, versioned, and published as %s.\nThe consumer team has been notified.\n",
			algorithm, version),
	}
	return []Notification{consumer, owner}
}

// FailureNotification builds the diagnostic email sent to the algorithm
// team when the gate halts the pipeline.
func FailureNotification(addrs Addresses, algorithm string, decision domain.GateDecision) Notification {
	var b strings.Builder
	fmt.Fprintf(&b, "Pipeline halted: %s.\n", decision.Reason)
	if decision.FailedStage != "" {
		fmt.Fprintf(&b, "Failed stage: %s\n", decision.FailedStage)
	}
	if decision.Report != nil {
		fmt.Fprintf(&b, "Equivalence: %d/%d tests passed (max abs err: %.2e)\n",
			decision.Report.Passed, decision.Report.Total, decision.Report.MaxAbsoluteError)
		if failed := decision.Report.FailedCases(); len(failed) > 0 {
			fmt.Fprintf(&b, "Failing cases: %s\n", strings.Join(failed, ", "))
		}
	}
	b.WriteString("\nNo package was published. Fix and push again.\n")

	return Notification{
		To:      addrs.AlgorithmTeam,
		Subject: fmt.Sprintf("[FAILED] %s pipeline failure", algorithm),
		Body:    b.String(),
	}
}
