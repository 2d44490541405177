// Package git runs the git commands cm needs against one working tree.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/wizzomafizzo/cm/internal/logging"
)

var (
	// ErrNotARepository is returned when the working directory is not inside a git repository.
	ErrNotARepository = errors.New("not in a git repository")

	// ErrNoStagedChanges is returned when the index has nothing to commit.
	ErrNoStagedChanges = errors.New("no staged changes to commit")
)

// CommandFailedError reports a git invocation that exited non-zero.
type CommandFailedError struct {
	Err    error
	Output string
	Args   []string
}

func (e *CommandFailedError) Error() string {
	msg := fmt.Sprintf("git %s failed", strings.Join(e.Args, " "))
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + out
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CommandFailedError) Unwrap() error { return e.Err }

// Repo runs git in Dir (the process working directory when empty).
type Repo struct {
	Dir    string
	Binary string
}

// New creates a Repo rooted at dir.
func New(dir string) *Repo {
	return &Repo{Dir: dir, Binary: "git"}
}

func (r *Repo) run(ctx context.Context, args ...string) (string, error) {
	bin := r.Binary
	if bin == "" {
		bin = "git"
	}

	// #nosec G204 -- arguments are fixed by this package
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = r.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logging.Get(ctx).Debug().Strs("args", args).Str("dir", r.Dir).Msg("running git")

	if err := cmd.Run(); err != nil {
		output := stderr.String()
		if strings.TrimSpace(output) == "" {
			output = stdout.String()
		}
		return "", &CommandFailedError{Args: args, Output: output, Err: err}
	}
	return stdout.String(), nil
}

// IsRepository reports whether Dir is inside a git work tree.
func (r *Repo) IsRepository(ctx context.Context) bool {
	_, err := r.run(ctx, "rev-parse", "--git-dir")
	return err == nil
}

// Root returns the top-level directory of the work tree.
func (r *Repo) Root(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", ErrNotARepository
	}
	return strings.TrimSpace(out), nil
}

// StagedDiff returns the cached diff, cut to maxLines with a trailer saying
// how much was dropped. maxLines <= 0 disables truncation.
func (r *Repo) StagedDiff(ctx context.Context, maxLines int) (string, error) {
	diff, err := r.run(ctx, "diff", "--cached")
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(diff) == "" {
		return "", ErrNoStagedChanges
	}
	return Truncate(diff, maxLines), nil
}

// Truncate keeps the first maxLines lines of diff.
func Truncate(diff string, maxLines int) string {
	lines := strings.Split(strings.TrimSuffix(diff, "\n"), "\n")
	if maxLines <= 0 || len(lines) <= maxLines {
		return diff
	}
	return strings.Join(lines[:maxLines], "\n") +
		"\n\n... [TRUNCATED: " + strconv.Itoa(len(lines)-maxLines) + " more lines not shown] ..."
}

// CommitHistory returns the last n commits in oneline format. A repository
// without commits yields an empty string.
func (r *Repo) CommitHistory(ctx context.Context, n int) string {
	out, err := r.run(ctx, "log", "--oneline", "-n", strconv.Itoa(n))
	if err != nil {
		return ""
	}
	return out
}

// DiffStat returns the --stat summary of the staged changes.
func (r *Repo) DiffStat(ctx context.Context) string {
	out, err := r.run(ctx, "diff", "--cached", "--stat")
	if err != nil {
		return ""
	}
	return out
}

// StagedFileCount returns how many files are staged.
func (r *Repo) StagedFileCount(ctx context.Context) int {
	out, err := r.run(ctx, "diff", "--cached", "--name-only")
	if err != nil {
		return 0
	}
	count := 0
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}
	return count
}

// Commit records the staged changes with message.
func (r *Repo) Commit(ctx context.Context, message string) error {
	_, err := r.run(ctx, "commit", "-m", message)
	return err
}

// Push pushes the current branch to its default remote.
func (r *Repo) Push(ctx context.Context) error {
	_, err := r.run(ctx, "push")
	return err
}
