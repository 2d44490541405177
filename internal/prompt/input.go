// Package prompt reads operator input from the terminal.
package prompt

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"
)

// ErrCancelled is returned when the operator presses Ctrl+C or input ends.
var ErrCancelled = errors.New("cancelled by user")

// Prompter interface wraps basic prompting functionality for testability
type Prompter interface {
	Prompt(string) (string, error)
	Close() error
}

// LinerPrompter wraps liner.State to implement Prompter interface
type LinerPrompter struct {
	*liner.State
}

// NewLinerPrompter creates a new liner-based prompter
func NewLinerPrompter() Prompter {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	return &LinerPrompter{State: line}
}

// Prompt reads one line, mapping Ctrl+C and EOF to ErrCancelled.
func (p *LinerPrompter) Prompt(text string) (string, error) {
	result, err := p.State.Prompt(text)
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return "", ErrCancelled
		}
		return "", fmt.Errorf("prompt failed: %w", err)
	}
	return result, nil
}

// SelectWithPrompter asks until accept returns true for the answer. Rejected
// answers print invalid to out and ask again; there is no retry limit.
func SelectWithPrompter(
	prompter Prompter, text string, accept func(string) bool, invalid string, out io.Writer,
) (string, error) {
	for {
		answer, err := prompter.Prompt(text)
		if err != nil {
			return "", fmt.Errorf("select failed: %w", err)
		}
		if accept(answer) {
			return answer, nil
		}
		_, _ = fmt.Fprintln(out, color.RedString(invalid))
	}
}

// ConfirmWithPrompter asks a yes/no question that defaults to no. The
// question is passed to the prompter uncoloured since liner rejects control
// characters in prompts.
func ConfirmWithPrompter(prompter Prompter, text string) (bool, error) {
	answer, err := prompter.Prompt(text + " [y/N]: ")
	if err != nil {
		return false, fmt.Errorf("confirm failed: %w", err)
	}
	return strings.EqualFold(strings.TrimSpace(answer), "y"), nil
}

// ScriptedPrompter answers prompts from a fixed list, for tests and
// non-interactive use. It returns ErrCancelled once the list runs out.
type ScriptedPrompter struct {
	Answers []string
	Prompts []string
}

// NewScriptedPrompter creates a prompter that replays answers in order.
func NewScriptedPrompter(answers ...string) *ScriptedPrompter {
	return &ScriptedPrompter{Answers: answers}
}

func (s *ScriptedPrompter) Prompt(text string) (string, error) {
	s.Prompts = append(s.Prompts, text)
	if len(s.Answers) == 0 {
		return "", ErrCancelled
	}
	answer := s.Answers[0]
	s.Answers = s.Answers[1:]
	return answer, nil
}

func (*ScriptedPrompter) Close() error { return nil }
