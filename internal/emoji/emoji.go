// Package emoji decorates conventional commit subjects with a glyph for their type.
package emoji

import (
	"strings"
)

// Entry maps a conventional commit type to its glyph.
type Entry struct {
	Type        string
	Glyph       string
	Description string
}

var table = []Entry{
	{Type: "feat", Glyph: "✨", Description: "New feature"},
	{Type: "fix", Glyph: "🐛", Description: "Bug fix"},
	{Type: "docs", Glyph: "📚", Description: "Documentation"},
	{Type: "style", Glyph: "💄", Description: "Code style/formatting"},
	{Type: "refactor", Glyph: "♻️", Description: "Code refactoring"},
	{Type: "test", Glyph: "✅", Description: "Tests"},
	{Type: "chore", Glyph: "🔧", Description: "Chores/maintenance"},
	{Type: "perf", Glyph: "⚡", Description: "Performance"},
	{Type: "ci", Glyph: "👷", Description: "CI/CD"},
	{Type: "build", Glyph: "📦", Description: "Build system"},
	{Type: "revert", Glyph: "⏪", Description: "Revert changes"},
	{Type: "wip", Glyph: "🚧", Description: "Work in progress"},
	{Type: "security", Glyph: "🔒", Description: "Security fix"},
	{Type: "deps", Glyph: "📌", Description: "Dependencies"},
	{Type: "release", Glyph: "🚀", Description: "Release"},
}

// Entries returns a copy of the glyph table in display order.
func Entries() []Entry {
	out := make([]Entry, len(table))
	copy(out, table)
	return out
}

// Lookup returns the glyph for a commit type, ignoring case.
func Lookup(commitType string) (string, bool) {
	commitType = strings.ToLower(commitType)
	for _, e := range table {
		if e.Type == commitType {
			return e.Glyph, true
		}
	}
	return "", false
}

// ExtractType returns the type token of the first line of message: everything
// before the first '!', '(' or ':'.
func ExtractType(message string) string {
	line, _, _ := strings.Cut(message, "\n")
	if i := strings.IndexAny(line, "!(:"); i >= 0 {
		return line[:i]
	}
	return line
}

// Decorate prefixes message with the glyph for its commit type. Messages that
// do not start with an ASCII letter are treated as already decorated and
// returned unchanged, which makes Decorate idempotent.
func Decorate(message string) string {
	glyph, ok := Lookup(ExtractType(message))
	if !ok || !startsWithLetter(message) {
		return message
	}
	return glyph + " " + message
}

// Strip removes a leading known glyph and the whitespace after it.
func Strip(message string) string {
	trimmed := strings.TrimLeft(message, " \t\r\n")
	for _, e := range table {
		if rest, ok := strings.CutPrefix(trimmed, e.Glyph); ok {
			return strings.TrimLeft(rest, " \t\r\n")
		}
	}
	return message
}

// DecorateFirstLine decorates only the subject line of a multi-line message.
func DecorateFirstLine(message string) string {
	first, rest, found := strings.Cut(message, "\n")
	if !found {
		return Decorate(first)
	}
	return Decorate(first) + "\n" + rest
}

// StripFirstLine strips the glyph from the subject line of a multi-line message.
func StripFirstLine(message string) string {
	first, rest, found := strings.Cut(message, "\n")
	if !found {
		return Strip(first)
	}
	return Strip(first) + "\n" + rest
}

func startsWithLetter(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
