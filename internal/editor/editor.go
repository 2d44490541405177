// Package editor lets the operator edit a commit message in an external editor.
package editor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/wizzomafizzo/cm/internal/constants"
	"github.com/wizzomafizzo/cm/internal/logging"
)

// DefaultEditor is used when neither $EDITOR nor $VISUAL is set.
const DefaultEditor = "nano"

// Editor opens text in an external editor via a temporary file.
type Editor struct {
	fs      afero.Fs
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
	Command string
	TempDir string
}

// New creates an editor using the command chosen by Resolve.
func New(fs afero.Fs, lookup func(string) (string, bool)) *Editor {
	return &Editor{
		fs:      fs,
		Command: Resolve(lookup),
		TempDir: os.TempDir(),
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

// Resolve picks the editor command from $EDITOR, then $VISUAL, then nano.
func Resolve(lookup func(string) (string, bool)) string {
	for _, key := range []string{constants.EnvEditor, constants.EnvVisual} {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return DefaultEditor
}

// Edit writes text to a temp file, waits for the editor to exit and returns
// the trimmed file contents. A non-zero editor exit is an error.
func (e *Editor) Edit(ctx context.Context, text string) (string, error) {
	fields := strings.Fields(e.Command)
	if len(fields) == 0 {
		return "", errors.New("no editor configured")
	}

	path := filepath.Join(e.TempDir, constants.EditFilename)
	if err := afero.WriteFile(e.fs, path, []byte(text), 0o600); err != nil {
		return "", fmt.Errorf("failed to write edit file: %w", err)
	}
	defer func() { _ = e.fs.Remove(path) }()

	logging.Get(ctx).Debug().Str("editor", e.Command).Str("path", path).Msg("launching editor")

	args := append(fields[1:], path) //nolint:gocritic // fields is not reused
	// #nosec G204 -- the editor command is chosen by the operator
	cmd := exec.CommandContext(ctx, fields[0], args...)
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("editor '%s' exited with error: %w", e.Command, err)
	}

	edited, err := afero.ReadFile(e.fs, path)
	if err != nil {
		return "", fmt.Errorf("failed to read edited message: %w", err)
	}
	return strings.TrimSpace(string(edited)), nil
}
