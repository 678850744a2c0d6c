// Package message parses and validates AI output into a conventional
// commit message.
package message

import (
	"fmt"
	"regexp"
	"strings"
)

// Generated is the final commit message produced from raw provider output.
type Generated struct {
	Title string
	Body  string
	// Raw preserves the unmodified provider output for diagnostics.
	Raw string
}

// FullMessage renders the message as written to the commit-message file.
func (g *Generated) FullMessage() string {
	if g.Body == "" {
		return g.Title
	}
	return g.Title + "\n\n" + g.Body
}

// InvalidFormatError indicates the model output could not be shaped into a
// valid conventional commit, even after one repair pass.
type InvalidFormatError struct {
	Reason string
	Raw    string
}

func (e *InvalidFormatError) Error() string {
	sample := e.Raw
	if len(sample) > 120 {
		sample = sample[:120] + "..."
	}
	return fmt.Sprintf("invalid commit message format: %s (raw: %q)", e.Reason, sample)
}

var (
	reasoningTag = regexp.MustCompile(`(?s)<reasoning>(.*?)</reasoning>`)
	titleTag     = regexp.MustCompile(`(?s)<commit_title>(.*?)</commit_title>`)
	bodyTag      = regexp.MustCompile(`(?s)<commit_body>(.*?)</commit_body>`)
	fenceLine    = regexp.MustCompile("^```[a-zA-Z]*$")
	strayTags    = regexp.MustCompile(`</?(?:reasoning|commit_title|commit_body)>`)
)

// Parse extracts a title and body from raw provider output. It prefers the
// structured tag format the prompt asks for, falling back to plain-text
// parsing that strips markdown fencing and explanatory preamble. Parse is
// pure: the same input always yields the same output, and no content is
// fabricated beyond what the model returned.
func Parse(raw string) (title, body string) {
	if m := titleTag.FindStringSubmatch(raw); m != nil {
		title = collapseWhitespace(m[1])
		if bm := bodyTag.FindStringSubmatch(raw); bm != nil {
			body = strings.TrimSpace(bm[1])
		}
		return title, body
	}

	return parsePlain(raw)
}

// parsePlain handles untagged output: drop reasoning blocks, stray tags,
// code fences, and lead-in prose, then treat the first plausible line as
// the title and the rest as the body.
func parsePlain(raw string) (title, body string) {
	raw = reasoningTag.ReplaceAllString(raw, "")
	raw = strayTags.ReplaceAllString(raw, "")

	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || fenceLine.MatchString(line) {
			continue
		}
		lines = append(lines, line)
	}

	// Skip explanatory preamble like "Here is the commit message:".
	for len(lines) > 1 && isPreamble(lines[0]) {
		lines = lines[1:]
	}

	if len(lines) == 0 {
		return "", ""
	}

	title = lines[0]
	if len(lines) > 1 {
		body = strings.Join(lines[1:], "\n")
	}
	return title, body
}

// isPreamble reports whether a line looks like lead-in prose rather than a
// commit title.
func isPreamble(line string) bool {
	lower := strings.ToLower(line)
	if strings.HasSuffix(line, ":") && !titlePattern.MatchString(line) {
		return true
	}
	return strings.HasPrefix(lower, "here is") || strings.HasPrefix(lower, "here's") ||
		strings.HasPrefix(lower, "sure") || strings.HasPrefix(lower, "certainly")
}

// collapseWhitespace flattens a tag payload to a single line.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
