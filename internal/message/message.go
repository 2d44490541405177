// Package message models a two-part commit message and parses it out of
// free-form generation output.
package message

import (
	"strings"
)

const (
	subjectMarker = "SUBJECT:"
	bodyMarker    = "BODY:"
	noBody        = "none"
)

// CommitMessage is a subject line with an optional body. An empty Body means
// the message has no body.
type CommitMessage struct {
	Subject string
	Body    string
}

// HasBody reports whether the message carries a body.
func (m CommitMessage) HasBody() bool {
	return m.Body != ""
}

// GitMessage formats the message the way git expects it: subject, blank line, body.
func (m CommitMessage) GitMessage() string {
	if !m.HasBody() {
		return m.Subject
	}
	return m.Subject + "\n\n" + m.Body
}

// Parse extracts a CommitMessage from a generation response. Responses that
// follow the SUBJECT:/BODY: protocol are read field by field; anything else
// falls back to "first line is the subject, the rest is the body".
func Parse(response string) CommitMessage {
	response = strings.TrimSpace(response)

	if strings.Contains(response, subjectMarker) {
		if msg, ok := parseMarked(response); ok {
			return msg
		}
	}

	return parsePlain(response)
}

func parseMarked(response string) (CommitMessage, bool) {
	var (
		subject   string
		haveSubj  bool
		bodyLines []string
		inBody    bool
	)

	for _, raw := range strings.Split(response, "\n") {
		line := strings.TrimSpace(raw)

		switch {
		case strings.HasPrefix(line, subjectMarker):
			if !haveSubj {
				subject = strings.TrimSpace(strings.TrimPrefix(line, subjectMarker))
				haveSubj = true
			}
		case strings.HasPrefix(line, bodyMarker):
			// Repeated markers only continue the body; the label is never kept.
			inBody = true
			start := strings.TrimSpace(strings.TrimPrefix(line, bodyMarker))
			if start != "" && !strings.EqualFold(start, noBody) {
				bodyLines = append(bodyLines, start)
			}
		case inBody && line != "":
			bodyLines = append(bodyLines, line)
		}
	}

	if subject == "" {
		return CommitMessage{}, false
	}
	return CommitMessage{Subject: subject, Body: strings.Join(bodyLines, "\n")}, true
}

func parsePlain(response string) CommitMessage {
	first, rest, _ := strings.Cut(response, "\n")

	lines := strings.Split(rest, "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	body := strings.Join(lines, "\n")
	if strings.TrimSpace(body) == "" {
		body = ""
	}

	return CommitMessage{Subject: strings.TrimSpace(first), Body: body}
}

// FromGitMessage splits text in git commit format back into subject and body.
func FromGitMessage(text string) CommitMessage {
	return parsePlain(strings.TrimSpace(text))
}
