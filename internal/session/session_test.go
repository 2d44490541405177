package session

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wizzomafizzo/cm/internal/ai"
	"github.com/wizzomafizzo/cm/internal/git"
	"github.com/wizzomafizzo/cm/internal/history"
	"github.com/wizzomafizzo/cm/internal/prompt"
	"github.com/wizzomafizzo/cm/internal/testutil"
	"github.com/wizzomafizzo/cm/internal/ui"
)

// trackingPrompter counts open prompters so collaborators can check the
// terminal is not held while they run.
type trackingPrompter struct {
	*prompt.ScriptedPrompter
	open   int
	opened int
}

func (p *trackingPrompter) factory() prompt.Prompter {
	p.open++
	p.opened++
	return &trackedHandle{p: p}
}

type trackedHandle struct {
	p *trackingPrompter
}

func (h *trackedHandle) Prompt(text string) (string, error) {
	return h.p.ScriptedPrompter.Prompt(text)
}

func (h *trackedHandle) Close() error {
	h.p.open--
	return nil
}

type fakeRepo struct {
	commitErr error
	pushErr   error
	prompter  *trackingPrompter
	commits   []string
	pushes    int
	heldOpen  int
}

func (r *fakeRepo) Commit(_ context.Context, msg string) error {
	if r.prompter != nil {
		r.heldOpen += r.prompter.open
	}
	if r.commitErr != nil {
		return r.commitErr
	}
	r.commits = append(r.commits, msg)
	return nil
}

func (r *fakeRepo) Push(context.Context) error {
	if r.prompter != nil {
		r.heldOpen += r.prompter.open
	}
	r.pushes++
	return r.pushErr
}

type fakeEditor struct {
	err      error
	prompter *trackingPrompter
	result   string
	seen     []string
	heldOpen int
}

func (e *fakeEditor) Edit(_ context.Context, text string) (string, error) {
	if e.prompter != nil {
		e.heldOpen += e.prompter.open
	}
	e.seen = append(e.seen, text)
	return e.result, e.err
}

type fakeRecorder struct {
	entries []history.Entry
}

func (r *fakeRecorder) Record(_ context.Context, e history.Entry) (int64, error) {
	r.entries = append(r.entries, e)
	return int64(len(r.entries)), nil
}

type fixture struct {
	session  *Session
	provider *ai.MockProvider
	repo     *fakeRepo
	editor   *fakeEditor
	prompter *trackingPrompter
	recorder *fakeRecorder
	out      *bytes.Buffer
}

func newFixture(t *testing.T, answers []string, results ...ai.MockResult) *fixture {
	t.Helper()

	provider := ai.NewMockProvider(results...)
	gen := ai.NewGenerator(provider, ai.GenerationContext{Diff: "diff --git a/x b/x", MaxRetries: 3},
		ai.GeneratorOptions{Emoji: true})

	prompter := &trackingPrompter{ScriptedPrompter: prompt.NewScriptedPrompter(answers...)}
	f := &fixture{
		provider: provider,
		repo:     &fakeRepo{prompter: prompter},
		editor:   &fakeEditor{prompter: prompter},
		prompter: prompter,
		recorder: &fakeRecorder{},
		out:      &bytes.Buffer{},
	}
	f.session = &Session{
		Generator: gen,
		Repo:      f.repo,
		Editor:    f.editor,
		Display:   ui.NewWithWidth(f.out, 80),
		History:   f.recorder,
		RepoRoot:  "/src/app",
		Provider:  provider.Name(),
		Model:     provider.Model(),
		MinLength: 10,
		Emoji:     true,

		NewPrompter: prompter.factory,
	}
	return f
}

func respond(text string) ai.MockResult {
	return ai.MockResult{Response: text}
}

func TestAcceptCommitsDecoratedSubject(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.NewTestContext(t)

	f := newFixture(t, []string{"a", "n"},
		respond("SUBJECT: fix(auth): reject expired tokens\nBODY: none"))

	outcome, err := f.session.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, Committed, outcome)
	assert.Equal(t, []string{"🐛 fix(auth): reject expired tokens"}, f.repo.commits)
	assert.Zero(t, f.repo.pushes)

	require.Len(t, f.recorder.entries, 1)
	assert.Equal(t, "/src/app", f.recorder.entries[0].Repo)
	assert.Equal(t, uint(1), f.recorder.entries[0].Attempts)
	assert.False(t, f.recorder.entries[0].Edited)
}

func TestAcceptWithBodyAndPush(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.NewTestContext(t)

	f := newFixture(t, []string{"A", "y"},
		respond("SUBJECT: feat: add export\nBODY:\nWrites CSV files."))

	outcome, err := f.session.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, Committed, outcome)
	assert.Equal(t, []string{"✨ feat: add export\n\nWrites CSV files."}, f.repo.commits)
	assert.Equal(t, 1, f.repo.pushes)
	assert.Contains(t, f.out.String(), "Pushed to remote")
}

func TestPushFailureIsReportedAfterCommit(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.NewTestContext(t)

	f := newFixture(t, []string{"a", "y"}, respond("SUBJECT: feat: add export\nBODY: none"))
	f.repo.pushErr = errors.New("remote rejected")

	outcome, err := f.session.Run(ctx)
	require.Error(t, err)
	assert.Equal(t, Committed, outcome)
	assert.Contains(t, err.Error(), "commit created but push failed")
	assert.Len(t, f.repo.commits, 1)
}

func TestQuitAbortsWithoutCommit(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.NewTestContext(t)

	f := newFixture(t, []string{"q"}, respond("SUBJECT: chore: tidy imports\nBODY: none"))

	outcome, err := f.session.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, Aborted, outcome)
	assert.Empty(t, f.repo.commits)
	assert.Empty(t, f.recorder.entries)
}

func TestInvalidInputReprompts(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.NewTestContext(t)

	f := newFixture(t, []string{"x", "", "?", "q"}, respond("SUBJECT: chore: tidy imports\nBODY: none"))

	outcome, err := f.session.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, Aborted, outcome)
	assert.Len(t, f.prompter.Prompts, 4)
	assert.Equal(t, 3, strings.Count(f.out.String(), "Invalid choice"))
	assert.Equal(t, 1, f.provider.GetCallCount())
}

func TestEndOfInputIsAnError(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.NewTestContext(t)

	f := newFixture(t, nil, respond("SUBJECT: chore: tidy imports\nBODY: none"))

	outcome, err := f.session.Run(ctx)
	require.ErrorIs(t, err, prompt.ErrCancelled)
	assert.Equal(t, Aborted, outcome)
	assert.Empty(t, f.repo.commits)
}

func TestEditWhitespaceAborts(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.NewTestContext(t)

	f := newFixture(t, []string{"e"}, respond("SUBJECT: feat: add export\nBODY: none"))
	f.editor.result = "  \n\t\n"

	outcome, err := f.session.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, Aborted, outcome)
	assert.Empty(t, f.repo.commits)
	assert.Contains(t, f.out.String(), "Empty commit message")
}

func TestEditStripsAndRedecorates(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.NewTestContext(t)

	f := newFixture(t, []string{"e", "n"},
		respond("SUBJECT: feat: add export\nBODY:\nWrites CSV files."))
	f.editor.result = "fix: correct export encoding\n\nUse UTF-8 for CSV output.\n"

	outcome, err := f.session.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, Committed, outcome)

	require.Len(t, f.editor.seen, 1)
	assert.Equal(t, "feat: add export\n\nWrites CSV files.", f.editor.seen[0])
	assert.Equal(t, []string{"🐛 fix: correct export encoding\n\nUse UTF-8 for CSV output."}, f.repo.commits)

	require.Len(t, f.recorder.entries, 1)
	assert.True(t, f.recorder.entries[0].Edited)
}

func TestEditorFailureIsFatal(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.NewTestContext(t)

	f := newFixture(t, []string{"e"}, respond("SUBJECT: feat: add export\nBODY: none"))
	f.editor.err = errors.New("editor 'vim' exited with error")

	outcome, err := f.session.Run(ctx)
	require.Error(t, err)
	assert.Equal(t, Aborted, outcome)
	assert.Empty(t, f.repo.commits)
}

func TestRegenerateRequestsNewCandidate(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.NewTestContext(t)

	f := newFixture(t, []string{"r", "a", "n"},
		respond("SUBJECT: chore: first try\nBODY: none"),
		respond("SUBJECT: refactor: second try\nBODY: none"),
	)

	outcome, err := f.session.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, Committed, outcome)
	assert.Equal(t, 2, f.provider.GetCallCount())
	assert.Equal(t, []string{"♻️ refactor: second try"}, f.repo.commits)
}

func TestRegenerateResetsRetryBudget(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.NewTestContext(t)

	boom := ai.MockResult{Err: &ai.NetworkError{Err: errors.New("connection reset")}}
	f := newFixture(t, []string{"r", "q"},
		boom, boom, respond("SUBJECT: feat: one\nBODY: none"),
		boom, boom, respond("SUBJECT: feat: two\nBODY: none"),
	)

	outcome, err := f.session.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, Aborted, outcome)
	assert.Equal(t, 6, f.provider.GetCallCount())
}

func TestExhaustionIsFatal(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.NewTestContext(t)

	f := newFixture(t, []string{"a"}, ai.MockResult{Err: &ai.APIError{Status: 500, Message: "down"}})

	outcome, err := f.session.Run(ctx)
	var exhausted *ai.ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, Aborted, outcome)
	assert.Equal(t, 3, f.provider.GetCallCount())
	assert.Empty(t, f.prompter.Prompts)
}

func TestCommitFailureIsFatal(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.NewTestContext(t)

	f := newFixture(t, []string{"a"}, respond("SUBJECT: feat: add export\nBODY: none"))
	f.repo.commitErr = &git.CommandFailedError{Args: []string{"commit", "-m"}, Output: "hook failed"}

	outcome, err := f.session.Run(ctx)
	var cmdErr *git.CommandFailedError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, Aborted, outcome)
	assert.Empty(t, f.recorder.entries)
}

func TestShortSubjectWarns(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.NewTestContext(t)

	f := newFixture(t, []string{"q"}, respond("SUBJECT: fix: typo\nBODY: none"))

	_, err := f.session.Run(ctx)
	require.NoError(t, err)
	assert.Contains(t, f.out.String(), "shorter than 10 characters")
}

func TestDryRunNeverCommits(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.NewTestContext(t)

	f := newFixture(t, nil, respond("SUBJECT: feat: add export\nBODY: none"))
	f.session.DryRun = true

	outcome, err := f.session.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, Previewed, outcome)
	assert.Empty(t, f.repo.commits)
	assert.Empty(t, f.prompter.Prompts)
	assert.Contains(t, f.out.String(), "✨ feat: add export")
}

func TestAutoAcceptSkipsPrompts(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.NewTestContext(t)

	f := newFixture(t, nil, respond("SUBJECT: docs: describe flags\nBODY: none"))
	f.session.AutoAccept = true

	outcome, err := f.session.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, Committed, outcome)
	assert.Equal(t, []string{"📚 docs: describe flags"}, f.repo.commits)
	assert.Empty(t, f.prompter.Prompts)
	assert.Zero(t, f.repo.pushes)
}

func TestEmojiDisabledCommitsPlainSubject(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.NewTestContext(t)

	provider := ai.NewMockProvider(respond("SUBJECT: fix(auth): reject expired tokens\nBODY: none"))
	repo := &fakeRepo{}
	scripted := prompt.NewScriptedPrompter("a", "n")
	s := &Session{
		Generator: ai.NewGenerator(provider, ai.GenerationContext{Diff: "d"}, ai.GeneratorOptions{}),
		Repo:      repo,
		Editor:    &fakeEditor{},
		Display:   ui.NewWithWidth(&bytes.Buffer{}, 80),

		NewPrompter: func() prompt.Prompter { return scripted },
	}

	outcome, err := s.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, Committed, outcome)
	assert.Equal(t, []string{"fix(auth): reject expired tokens"}, repo.commits)
}

func TestOutcomeString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "aborted", Aborted.String())
	assert.Equal(t, "committed", Committed.String())
	assert.Equal(t, "previewed", Previewed.String())
}

func TestPrompterClosedWhileGitAndEditorRun(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.NewTestContext(t)

	f := newFixture(t, []string{"e", "y"}, respond("SUBJECT: feat: add export\nBODY: none"))
	f.editor.result = "feat: add csv export"

	outcome, err := f.session.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, Committed, outcome)
	assert.Equal(t, 1, f.repo.pushes)

	assert.Equal(t, 2, f.prompter.opened)
	assert.Zero(t, f.prompter.open)
	assert.Zero(t, f.editor.heldOpen)
	assert.Zero(t, f.repo.heldOpen)
}

func TestEditedTextIsCommittedVerbatim(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.NewTestContext(t)

	f := newFixture(t, []string{"e", "n"}, respond("SUBJECT: feat: add export\nBODY: none"))
	f.editor.result = "feat: add x\nline one\n\n\n\nline two"

	_, err := f.session.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"✨ feat: add x\nline one\n\n\n\nline two"}, f.repo.commits)

	require.Len(t, f.recorder.entries, 1)
	assert.Equal(t, "✨ feat: add x", f.recorder.entries[0].Subject)
}

func TestEditKeepsModelGlyphWhenEmojiDisabled(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.NewTestContext(t)

	f := newFixture(t, []string{"e", "n"}, respond("SUBJECT: ✨ feat: add export\nBODY: none"))
	f.session.Emoji = false
	f.editor.result = "✨ feat: add export"

	_, err := f.session.Run(ctx)
	require.NoError(t, err)
	require.Len(t, f.editor.seen, 1)
	assert.Equal(t, "✨ feat: add export", f.editor.seen[0])
	assert.Equal(t, []string{"✨ feat: add export"}, f.repo.commits)
}
