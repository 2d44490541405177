package ai

import (
	"strings"
)

const noHistory = "(no previous commits)"

// conventionalCommits is a condensed Conventional Commits 1.0.0 reference.
const conventionalCommits = `The commit message should be structured as follows:

<type>[optional scope]: <description>

[optional body]

[optional footer(s)]

1. Commits MUST be prefixed with a type, which consists of a noun (feat, fix, etc.), followed by the OPTIONAL scope, OPTIONAL !, and REQUIRED terminal colon and space.
2. The type feat MUST be used when a commit adds a new feature.
3. The type fix MUST be used when a commit represents a bug fix.
4. A scope MAY be provided after a type. A scope MUST consist of a noun describing a section of the codebase surrounded by parenthesis, e.g., fix(parser):
5. A description MUST immediately follow the colon and space after the type/scope prefix. The description is a short summary of the code changes.
6. A longer commit body MAY be provided after the short description. The body MUST begin one blank line after the description.
7. Breaking changes MUST be indicated by a ! immediately before the : or by a BREAKING CHANGE: footer.
8. Types other than feat and fix MAY be used, e.g. docs, style, refactor, perf, test, build, ci, chore, revert.`

// BuildPrompt creates the generation prompt for the staged changes. The
// output is deterministic for the same inputs.
func BuildPrompt(diff, history, stat string) string {
	if strings.TrimSpace(history) == "" {
		history = noHistory
	}

	var b strings.Builder
	b.WriteString("You are an expert at writing clear, professional git commit messages ")
	b.WriteString("following the Conventional Commits specification.\n\n")

	b.WriteString("## Your Task\n")
	b.WriteString("Generate a commit message for the staged changes shown below.\n\n")

	b.WriteString("## Conventional Commits Specification\n")
	b.WriteString(conventionalCommits)
	b.WriteString("\n\n")

	b.WriteString(`## Requirements

### Subject Line (REQUIRED)
- Format: ` + "`type(scope): description`" + ` or ` + "`type: description`" + `
- Types: feat, fix, docs, style, refactor, test, chore, perf, ci, build, revert
- Scope: optional, describes the affected component (e.g., auth, api, ui)
- Description: imperative mood, lowercase, no period at end, max 72 chars
- Be specific! Avoid vague words like "update", "fix issue", "changes"

### Body (OPTIONAL but recommended for complex changes)
- Explain WHAT changed and WHY (not HOW - the code shows that)
- Wrap at 72 characters
- Use bullet points for multiple changes

`)

	b.WriteString("## Context\n\n")
	writeBlock(&b, "Recent Commit History (for style reference)", "", history)
	writeBlock(&b, "Change Statistics", "", stat)
	writeBlock(&b, "Actual Diff Content", "diff", diff)

	b.WriteString(`## Response Format
Respond in EXACTLY this format (no markdown, no extra text):

SUBJECT: <your subject line here>
BODY: <your body here, or just "none" if not needed>

Generate the commit message now:`)

	return b.String()
}

func writeBlock(b *strings.Builder, title, lang, content string) {
	b.WriteString("### " + title + "\n")
	b.WriteString("```" + lang + "\n")
	b.WriteString(strings.TrimRight(content, "\n"))
	b.WriteString("\n```\n\n")
}
