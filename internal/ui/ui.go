// Package ui prints operator-facing output: progress lines and the boxed
// candidate message.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

const (
	defaultWidth = 80
	maxWidth     = 100
	minWidth     = 40
)

// Renderer writes to one output stream.
type Renderer struct {
	out   io.Writer
	width int
}

// New creates a renderer sized to the terminal behind out, or 80 columns
// when out is not a terminal.
func New(out io.Writer) *Renderer {
	width := defaultWidth
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			width = w
		}
	}
	return NewWithWidth(out, width)
}

// NewWithWidth creates a renderer with a fixed width.
func NewWithWidth(out io.Writer, width int) *Renderer {
	width = max(min(width, maxWidth), minWidth)
	return &Renderer{out: out, width: width}
}

// Writer returns the underlying output stream.
func (r *Renderer) Writer() io.Writer {
	return r.out
}

func (r *Renderer) println(a ...any) {
	_, _ = fmt.Fprintln(r.out, a...)
}

// Banner announces the backend and the size of the change.
func (r *Renderer) Banner(provider, model string, files int) {
	r.println(fmt.Sprintf("🚀 Using %s (%s)", color.New(color.Bold).Sprint(provider), model))
	r.println(fmt.Sprintf("📁 %d file(s) changed", files))
}

// Attempt reports that a generation attempt started.
func (r *Renderer) Attempt(n uint) {
	r.println()
	r.println(color.New(color.Faint).Sprintf("⏳ Generating commit message (attempt %d)...", n))
}

// Warn reports a recoverable problem.
func (r *Renderer) Warn(format string, a ...any) {
	r.println(color.YellowString("⚠️  "+format, a...))
}

// Info prints a progress line.
func (r *Renderer) Info(format string, a ...any) {
	r.println(fmt.Sprintf(format, a...))
}

// Success prints a completed step.
func (r *Renderer) Success(format string, a ...any) {
	r.println(color.GreenString("✓ "+format, a...))
}

// Message draws the candidate commit message in a rounded box.
func (r *Renderer) Message(subject, body, provider, model string) {
	inner := r.width - 4
	border := color.New(color.FgCyan)

	lines := []string{
		color.New(color.Bold).Sprint("✨ Generated Commit Message"),
		"",
		color.New(color.Faint).Sprintf("via %s (%s)", provider, model),
		"",
	}
	for _, l := range Wrap(subject, inner) {
		lines = append(lines, color.New(color.FgGreen, color.Bold).Sprint(l))
	}
	if body != "" {
		lines = append(lines, "")
		for _, raw := range strings.Split(body, "\n") {
			lines = append(lines, Wrap(raw, inner)...)
		}
	}

	r.println()
	r.println(border.Sprint("╭" + strings.Repeat("─", inner+2) + "╮"))
	for _, l := range lines {
		pad := inner - runewidth.StringWidth(stripANSI(l))
		if pad < 0 {
			pad = 0
		}
		r.println(border.Sprint("│ ") + l + strings.Repeat(" ", pad) + border.Sprint(" │"))
	}
	r.println(border.Sprint("╰" + strings.Repeat("─", inner+2) + "╯"))
}

// ChoicePrompt is the plain line-input prompt that follows Actions.
const ChoicePrompt = "Choice [a/e/r/q]: "

// Actions prints the review menu.
func (r *Renderer) Actions() {
	r.println()
	r.println(fmt.Sprintf("  %s  %s  %s  %s",
		color.GreenString("[A]ccept"),
		color.YellowString("[E]dit"),
		color.CyanString("[R]egenerate"),
		color.RedString("[Q]uit"),
	))
}

// Wrap splits s into lines no wider than width display columns, breaking on
// spaces where possible.
func Wrap(s string, width int) []string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return []string{s}
	}

	var (
		lines []string
		cur   strings.Builder
		curW  int
	)
	flush := func() {
		lines = append(lines, strings.TrimRight(cur.String(), " "))
		cur.Reset()
		curW = 0
	}

	for _, word := range strings.Split(s, " ") {
		ww := runewidth.StringWidth(word)
		switch {
		case curW > 0 && curW+1+ww <= width:
			cur.WriteString(" ")
			cur.WriteString(word)
			curW += 1 + ww
		case ww <= width:
			if curW > 0 {
				flush()
			}
			cur.WriteString(word)
			curW = ww
		default:
			if curW > 0 {
				flush()
			}
			for _, rn := range word {
				rw := runewidth.RuneWidth(rn)
				if curW+rw > width {
					flush()
				}
				cur.WriteRune(rn)
				curW += rw
			}
		}
	}
	if curW > 0 || cur.Len() > 0 {
		flush()
	}
	return lines
}

// stripANSI removes SGR escape sequences so padding can be measured.
func stripANSI(s string) string {
	if !strings.Contains(s, "\x1b[") {
		return s
	}
	var b strings.Builder
	inEscape := false
	for _, rn := range s {
		switch {
		case inEscape:
			if rn == 'm' {
				inEscape = false
			}
		case rn == '\x1b':
			inEscape = true
		default:
			b.WriteRune(rn)
		}
	}
	return b.String()
}
