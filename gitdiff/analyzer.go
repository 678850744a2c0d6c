// Package gitdiff extracts and summarizes staged git changes.
package gitdiff

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// ErrNoStagedChanges indicates the staging area is empty. It is a
// short-circuit signal, not a failure: callers fall back without invoking
// any provider.
var ErrNoStagedChanges = errors.New("no staged changes")

// truncationMarker is appended to a diff that was cut at MaxDiffLines.
const truncationMarker = "... (diff truncated)"

// FileChange describes one staged file.
type FileChange struct {
	Path    string
	Added   int
	Removed int
	// Patch is this file's portion of the (possibly truncated) diff text.
	Patch string
}

// Summary is an immutable snapshot of the staged diff, built from a single
// pair of git invocations.
type Summary struct {
	Files      []FileChange
	TotalLines int
	Truncated  bool
}

// Paths returns the changed file paths in diff order.
func (s *Summary) Paths() []string {
	paths := make([]string, len(s.Files))
	for i, f := range s.Files {
		paths[i] = f.Path
	}
	return paths
}

// DiffText returns the concatenated patch text of all files.
func (s *Summary) DiffText() string {
	var b strings.Builder
	for _, f := range s.Files {
		b.WriteString(f.Patch)
	}
	return b.String()
}

// Analyzer reads the git staging state of a repository.
type Analyzer struct {
	repoPath   string
	gitTimeout time.Duration
}

// NewAnalyzer creates an analyzer rooted at repoPath. An empty repoPath uses
// the current directory.
func NewAnalyzer(repoPath string, gitTimeout time.Duration) *Analyzer {
	if gitTimeout <= 0 {
		gitTimeout = 10 * time.Second
	}
	return &Analyzer{repoPath: repoPath, gitTimeout: gitTimeout}
}

// Collect builds a Summary of the staged changes, truncating the diff text
// to maxLines. Returns ErrNoStagedChanges when nothing is staged.
func (a *Analyzer) Collect(ctx context.Context, maxLines int) (*Summary, error) {
	staged, err := a.HasStagedChanges(ctx)
	if err != nil {
		return nil, err
	}
	if !staged {
		return nil, ErrNoStagedChanges
	}

	numstat, err := a.runGit(ctx, "diff", "--staged", "--numstat")
	if err != nil {
		return nil, fmt.Errorf("stat staged changes: %w", err)
	}

	diff, err := a.runGit(ctx, "diff", "--staged")
	if err != nil {
		return nil, fmt.Errorf("read staged diff: %w", err)
	}
	if strings.TrimSpace(diff) == "" {
		return nil, ErrNoStagedChanges
	}

	diff, totalLines, truncated := truncateDiff(diff, maxLines)

	counts := parseNumstat(numstat)
	files := splitPatches(diff)
	for i := range files {
		if c, ok := counts[files[i].Path]; ok {
			files[i].Added = c.added
			files[i].Removed = c.removed
		}
	}

	return &Summary{
		Files:      files,
		TotalLines: totalLines,
		Truncated:  truncated,
	}, nil
}

// HasStagedChanges reports whether the staging area differs from HEAD.
func (a *Analyzer) HasStagedChanges(ctx context.Context) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, a.gitTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "diff", "--staged", "--quiet")
	cmd.Dir = a.repoPath

	err := cmd.Run()
	if err == nil {
		return false, nil
	}
	// Exit code 1 means the staging area has changes.
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return true, nil
	}
	return false, fmt.Errorf("check staged changes: %w", err)
}

// IsRepo reports whether the analyzer's directory is inside a git repository.
func (a *Analyzer) IsRepo(ctx context.Context) bool {
	_, err := a.runGit(ctx, "rev-parse", "--git-dir")
	return err == nil
}

// RepoRoot returns the repository root directory.
func (a *Analyzer) RepoRoot(ctx context.Context) (string, error) {
	out, err := a.runGit(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Branch returns the current branch name.
func (a *Analyzer) Branch(ctx context.Context) (string, error) {
	out, err := a.runGit(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// LastCommitMessage returns the most recent commit message.
func (a *Analyzer) LastCommitMessage(ctx context.Context) (string, error) {
	out, err := a.runGit(ctx, "log", "-1", "--format=%B")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// runGit executes a git command in the repo directory with a bounded wait.
func (a *Analyzer) runGit(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.gitTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = a.repoPath

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 && stderr.Len() == 0 {
			// git diff exits 1 with no stderr for "differences found".
			return stdout.String(), nil
		}
		return "", fmt.Errorf("git %v failed: %w (stderr: %s)", args, err, strings.TrimSpace(stderr.String()))
	}

	return stdout.String(), nil
}

type lineCount struct {
	added   int
	removed int
}

// parseNumstat parses `git diff --numstat` output. Binary files report "-"
// counts and are recorded as zero.
func parseNumstat(out string) map[string]lineCount {
	counts := make(map[string]lineCount)
	for _, line := range strings.Split(out, "\n") {
		fields := strings.SplitN(strings.TrimSpace(line), "\t", 3)
		if len(fields) != 3 {
			continue
		}
		added, _ := strconv.Atoi(fields[0])
		removed, _ := strconv.Atoi(fields[1])
		counts[fields[2]] = lineCount{added: added, removed: removed}
	}
	return counts
}

// truncateDiff caps the diff at maxLines lines. The returned line count is
// the capped count; the truncation marker is not counted.
func truncateDiff(diff string, maxLines int) (string, int, bool) {
	diff = strings.TrimRight(diff, "\n")
	lines := strings.Split(diff, "\n")
	if maxLines <= 0 || len(lines) <= maxLines {
		return diff + "\n", len(lines), false
	}

	truncated := strings.Join(lines[:maxLines], "\n")
	return truncated + "\n" + truncationMarker + "\n", maxLines, true
}

// splitPatches splits a unified diff into per-file patches at "diff --git"
// boundaries. Files whose patch was cut away entirely by truncation are
// omitted.
func splitPatches(diff string) []FileChange {
	var files []FileChange
	var current *FileChange
	var patch strings.Builder

	flush := func() {
		if current != nil {
			current.Patch = patch.String()
			files = append(files, *current)
		}
		patch.Reset()
	}

	for _, line := range strings.SplitAfter(diff, "\n") {
		if strings.HasPrefix(line, "diff --git ") {
			flush()
			current = &FileChange{Path: pathFromHeader(line)}
		}
		if current != nil {
			patch.WriteString(line)
		}
	}
	flush()

	return files
}

// pathFromHeader extracts the post-image path from a "diff --git a/x b/y"
// header line. Paths may contain spaces, so the line is split on the
// " b/" separator rather than on whitespace.
func pathFromHeader(line string) string {
	line = strings.TrimSuffix(strings.TrimPrefix(line, "diff --git "), "\n")
	idx := strings.LastIndex(line, " b/")
	if idx < 0 {
		return ""
	}
	return line[idx+len(" b/"):]
}
