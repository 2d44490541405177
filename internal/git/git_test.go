package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupRepo creates an initialised repository with a local identity.
func setupRepo(t *testing.T) *Repo {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	dir := t.TempDir()
	for _, args := range [][]string{
		{"init", "-q"},
		{"config", "user.name", "Test User"},
		{"config", "user.email", "test@example.com"},
		{"config", "commit.gpgsign", "false"},
	} {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
	}
	return New(dir)
}

func stage(t *testing.T, repo *Repo, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(repo.Dir, name), []byte(content), 0o600))
	_, err := repo.run(context.Background(), "add", name)
	require.NoError(t, err)
}

func TestIsRepository(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := setupRepo(t)
	assert.True(t, repo.IsRepository(ctx))

	root, err := repo.Root(ctx)
	require.NoError(t, err)
	resolved, err := filepath.EvalSymlinks(repo.Dir)
	require.NoError(t, err)
	assert.Equal(t, resolved, root)

	outside := New(t.TempDir())
	outside.Dir = filepath.Join(outside.Dir, "nope")
	assert.False(t, outside.IsRepository(ctx))
	_, err = outside.Root(ctx)
	assert.ErrorIs(t, err, ErrNotARepository)
}

func TestStagedDiffNoChanges(t *testing.T) {
	t.Parallel()

	repo := setupRepo(t)
	_, err := repo.StagedDiff(context.Background(), 200)
	assert.ErrorIs(t, err, ErrNoStagedChanges)
}

func TestStagedWorkflow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := setupRepo(t)
	assert.Empty(t, repo.CommitHistory(ctx, 10))

	stage(t, repo, "a.txt", "one\ntwo\n")
	stage(t, repo, "b.txt", "three\n")

	diff, err := repo.StagedDiff(ctx, 200)
	require.NoError(t, err)
	assert.Contains(t, diff, "+one")
	assert.Contains(t, diff, "b.txt")

	assert.Equal(t, 2, repo.StagedFileCount(ctx))
	assert.Contains(t, repo.DiffStat(ctx), "2 files changed")

	require.NoError(t, repo.Commit(ctx, "feat: add files\n\n- a and b"))

	history := repo.CommitHistory(ctx, 10)
	assert.Contains(t, history, "feat: add files")
	assert.Equal(t, 0, repo.StagedFileCount(ctx))

	_, err = repo.StagedDiff(ctx, 200)
	assert.ErrorIs(t, err, ErrNoStagedChanges)
}

func TestCommitFailure(t *testing.T) {
	t.Parallel()

	repo := setupRepo(t)
	err := repo.Commit(context.Background(), "feat: nothing staged")

	var cmdErr *CommandFailedError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, "commit", cmdErr.Args[0])
	assert.Contains(t, err.Error(), "git commit")
}

func TestPushWithoutRemoteFails(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := setupRepo(t)
	stage(t, repo, "a.txt", "x\n")
	require.NoError(t, repo.Commit(ctx, "chore: init"))

	var cmdErr *CommandFailedError
	require.ErrorAs(t, repo.Push(ctx), &cmdErr)
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		maxLines int
		want     string
	}{
		{name: "short", input: "a\nb\n", maxLines: 5, want: "a\nb\n"},
		{name: "exact", input: "a\nb\nc\n", maxLines: 3, want: "a\nb\nc\n"},
		{name: "disabled", input: "a\nb\nc\n", maxLines: 0, want: "a\nb\nc\n"},
		{
			name:     "cut",
			input:    "a\nb\nc\nd\ne\n",
			maxLines: 2,
			want:     "a\nb\n\n... [TRUNCATED: 3 more lines not shown] ...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Truncate(tt.input, tt.maxLines))
		})
	}
}

func TestCommandFailedErrorMessage(t *testing.T) {
	t.Parallel()

	err := &CommandFailedError{Args: []string{"push"}, Output: "fatal: no remote\n"}
	assert.Equal(t, "git push failed: fatal: no remote", err.Error())
	assert.True(t, strings.HasPrefix((&CommandFailedError{Args: []string{"x"}}).Error(), "git x failed"))
}
