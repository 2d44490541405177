// Package session drives the review loop for a generated commit message:
// show it, then accept, edit, regenerate or quit.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/wizzomafizzo/cm/internal/emoji"
	"github.com/wizzomafizzo/cm/internal/history"
	"github.com/wizzomafizzo/cm/internal/logging"
	"github.com/wizzomafizzo/cm/internal/message"
	"github.com/wizzomafizzo/cm/internal/prompt"
	"github.com/wizzomafizzo/cm/internal/ui"
)

// Outcome is how a session ended.
type Outcome int

const (
	// Aborted means nothing was committed.
	Aborted Outcome = iota
	// Committed means a commit was created.
	Committed
	// Previewed means the message was shown but committing was disabled.
	Previewed
)

func (o Outcome) String() string {
	switch o {
	case Committed:
		return "committed"
	case Previewed:
		return "previewed"
	default:
		return "aborted"
	}
}

// Generator yields candidate messages.
type Generator interface {
	Next(ctx context.Context) (message.CommitMessage, error)
	Reset()
	Attempts() uint
}

// Repository creates commits.
type Repository interface {
	Commit(ctx context.Context, message string) error
	Push(ctx context.Context) error
}

// Editor lets the operator rewrite a message.
type Editor interface {
	Edit(ctx context.Context, text string) (string, error)
}

// Recorder stores accepted messages.
type Recorder interface {
	Record(ctx context.Context, e history.Entry) (int64, error)
}

// Display shows candidates and progress.
type Display interface {
	Message(subject, body, provider, model string)
	Warn(format string, a ...any)
	Info(format string, a ...any)
	Success(format string, a ...any)
	Actions()
	Writer() io.Writer
}

// Session holds the collaborators for one review loop.
type Session struct {
	Generator Generator
	Repo      Repository
	Editor    Editor
	Display   Display
	History   Recorder

	RepoRoot  string
	Provider  string
	Model     string
	MinLength int
	Emoji     bool

	// NewPrompter opens operator input for one question. The prompter is
	// closed again before git, the editor or the backend run, so they see
	// the terminal in its normal mode.
	NewPrompter func() prompt.Prompter

	// AutoAccept commits the first candidate without asking and skips the
	// push prompt.
	AutoAccept bool
	// DryRun shows the first candidate and stops.
	DryRun bool
}

// Run generates a candidate and loops until the operator commits or quits.
// Generation exhaustion, editor and git failures end the session with an
// error; quitting or an empty edit is a clean abort.
func (s *Session) Run(ctx context.Context) (Outcome, error) {
	logger := logging.Get(ctx)

	msg, err := s.Generator.Next(ctx)
	if err != nil {
		return Aborted, err //nolint:wrapcheck // already descriptive
	}

	for {
		s.show(msg)

		if s.DryRun {
			logger.Info().Str("subject", msg.Subject).Msg("dry run, not committing")
			return Previewed, nil
		}
		if s.AutoAccept {
			return s.commit(ctx, msg.GitMessage(), msg, false, false)
		}

		action, err := s.readAction()
		if err != nil {
			return Aborted, err
		}
		logger.Debug().Stringer("action", action).Msg("operator choice")

		switch action {
		case Accept:
			return s.commit(ctx, msg.GitMessage(), msg, false, true)
		case Edit:
			return s.edit(ctx, msg)
		case Regenerate:
			s.Generator.Reset()
			if msg, err = s.Generator.Next(ctx); err != nil {
				return Aborted, err //nolint:wrapcheck // already descriptive
			}
		case Quit:
			s.Display.Info("Commit cancelled.")
			return Aborted, nil
		}
	}
}

func (s *Session) show(msg message.CommitMessage) {
	s.Display.Message(msg.Subject, msg.Body, s.Provider, s.Model)

	subject := emoji.Strip(msg.Subject)
	if s.MinLength > 0 && utf8.RuneCountInString(subject) < s.MinLength {
		s.Display.Warn("Subject is shorter than %d characters", s.MinLength)
	}
}

func (s *Session) readAction() (Action, error) {
	s.Display.Actions()

	prompter := s.NewPrompter()
	defer func() { _ = prompter.Close() }()

	answer, err := prompt.SelectWithPrompter(
		prompter,
		ui.ChoicePrompt,
		func(in string) bool {
			_, ok := ParseAction(in)
			return ok
		},
		"Invalid choice. Please enter A, E, R, or Q.",
		s.Display.Writer(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to read choice: %w", err)
	}

	action, _ := ParseAction(answer)
	return action, nil
}

func (s *Session) edit(ctx context.Context, msg message.CommitMessage) (Outcome, error) {
	text := msg.GitMessage()
	if s.Emoji {
		text = emoji.StripFirstLine(text)
	}

	edited, err := s.Editor.Edit(ctx, text)
	if err != nil {
		return Aborted, fmt.Errorf("failed to edit commit message: %w", err)
	}
	edited = strings.TrimSpace(edited)
	if edited == "" {
		s.Display.Info("Empty commit message, aborting.")
		return Aborted, nil
	}

	if s.Emoji {
		edited = emoji.DecorateFirstLine(edited)
	}
	return s.commit(ctx, edited, message.FromGitMessage(edited), true, true)
}

// commit records text verbatim; msg is its parsed form for display and
// history.
func (s *Session) commit(
	ctx context.Context, text string, msg message.CommitMessage, edited, askPush bool,
) (Outcome, error) {
	logger := logging.Get(ctx)

	if err := s.Repo.Commit(ctx, text); err != nil {
		return Aborted, fmt.Errorf("failed to commit: %w", err)
	}
	s.Display.Success("Committed: %s", msg.Subject)
	s.record(ctx, msg, edited)

	if !askPush {
		return Committed, nil
	}

	push, err := s.confirmPush()
	if err != nil {
		if errors.Is(err, prompt.ErrCancelled) {
			return Committed, nil
		}
		return Committed, fmt.Errorf("failed to read push choice: %w", err)
	}
	if !push {
		return Committed, nil
	}

	s.Display.Info("Pushing...")
	if err := s.Repo.Push(ctx); err != nil {
		logger.Error().Err(err).Msg("push failed after commit")
		return Committed, fmt.Errorf("commit created but push failed: %w", err)
	}
	s.Display.Success("Pushed to remote")
	return Committed, nil
}

func (s *Session) confirmPush() (bool, error) {
	prompter := s.NewPrompter()
	defer func() { _ = prompter.Close() }()

	return prompt.ConfirmWithPrompter(prompter, "Push to remote?") //nolint:wrapcheck // wrapped by caller
}

func (s *Session) record(ctx context.Context, msg message.CommitMessage, edited bool) {
	if s.History == nil {
		return
	}
	_, err := s.History.Record(ctx, history.Entry{
		Repo:     s.RepoRoot,
		Subject:  msg.Subject,
		Body:     msg.Body,
		Provider: s.Provider,
		Model:    s.Model,
		Attempts: s.Generator.Attempts(),
		Edited:   edited,
	})
	if err != nil {
		logging.Get(ctx).Warn().Err(err).Msg("failed to record commit history")
	}
}
