// Package toolchain runs the external release tooling: build and test
// commands, git history for version resolution, and conan for publishing.
package toolchain

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/algoparity/parity-go/internal/domain"
)

// CommandStage runs one pipeline stage as an external command. The algorithm
// name is appended as the final argument. Combined output becomes the stage log.
type CommandStage struct {
	Stage string
	Path  string
	Args  []string
	Dir   string
}

// Run executes the stage command for one algorithm.
func (c *CommandStage) Run(ctx context.Context, algorithm string) (domain.StageResult, error) {
	args := append(append([]string{}, c.Args...), algorithm)
	cmd := exec.CommandContext(ctx, c.Path, args...)
	cmd.Dir = c.Dir

	out, err := cmd.CombinedOutput()
	result := domain.StageResult{
		Stage:     c.Stage,
		Succeeded: err == nil,
		Log:       string(out),
	}
	if err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			// Non-zero exit is a stage failure, not an activity error.
			return result, nil
		}
		return domain.StageResult{}, fmt.Errorf("%s stage: %w", c.Stage, err)
	}
	return result, nil
}

// GitLog lists commit messages from a git checkout.
type GitLog struct {
	RepoDir string
}

// recordSep separates commits in git log output.
const recordSep = "\x1e"

// CommitsSince returns full commit messages between the tag for the given
// version and HEAD, newest first. The tag is resolved as v<version> unless
// the version already carries the prefix.
func (g *GitLog) CommitsSince(ctx context.Context, algorithm, version string) ([]string, error) {
	tag := version
	if !strings.HasPrefix(tag, "v") {
		tag = "v" + tag
	}

	args := []string{"-C", g.RepoDir, "log", "--format=%B" + recordSep, tag + "..HEAD"}
	if algorithm != "" {
		args = append(args, "--", algorithm)
	}
	cmd := exec.CommandContext(ctx, "git", args...)
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("git log %s..HEAD: %s\n%s", tag, err, exitErr.Stderr)
		}
		return nil, fmt.Errorf("git log: %w", err)
	}

	var commits []string
	for _, raw := range strings.Split(string(out), recordSep) {
		if msg := strings.TrimSpace(raw); msg != "" {
			commits = append(commits, msg)
		}
	}
	return commits, nil
}

// ConanPublisher uploads packaged artifacts to a conan remote.
type ConanPublisher struct {
	ConanPath string
	Remote    string
}

// Publish uploads algorithm/version to the configured remote and returns
// the package reference.
func (p *ConanPublisher) Publish(ctx context.Context, algorithm, version, _ string) (string, error) {
	ref := fmt.Sprintf("%s/%s", algorithm, strings.TrimPrefix(version, "v"))
	conan := p.ConanPath
	if conan == "" {
		conan = "conan"
	}

	cmd := exec.CommandContext(ctx, conan, "upload", ref, "-r", p.Remote, "--confirm")
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("conan upload %s: %s\n%s", ref, err, out)
	}
	return fmt.Sprintf("%s@%s", ref, p.Remote), nil
}
