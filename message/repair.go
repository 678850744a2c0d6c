package message

import (
	"fmt"
	"regexp"
	"strings"
)

// Repair attempts one bounded fix of a malformed title. The coercion policy
// is, in order:
//
//  1. a configured type that is a case-insensitive prefix of the title is
//     re-anchored (handles missing colon, stray parens);
//  2. an unrecognized leading type token is coerced to the configured type
//     that is its longest substring ("feature" -> "feat");
//  3. keyword inference over the title text, defaulting to "chore".
//
// The description text is never rewritten, only re-prefixed. Returns false
// when nothing resembling a description can be recovered.
func Repair(title string, types []string) (string, bool) {
	title = strings.TrimSpace(strings.Trim(strings.TrimSpace(title), "`\"'"))
	if title == "" {
		return "", false
	}

	// Case 1: known type at the head, formatting junk after it. The type
	// must end at a word boundary so "feature" is not mistaken for "feat".
	lower := strings.ToLower(title)
	for _, t := range types {
		if strings.HasPrefix(lower, strings.ToLower(t)) && !startsWithLetter(title[len(t):]) {
			if fixed, ok := reanchor(t, title[len(t):]); ok {
				return fixed, true
			}
		}
	}

	// Case 2: unrecognized type token, coerce by substring.
	if commitType, scope, description, ok := SplitTitle(title); ok {
		if coerced := nearestType(commitType, types); coerced != "" {
			if scope != "" {
				return fmt.Sprintf("%s(%s): %s", coerced, scope, description), true
			}
			return fmt.Sprintf("%s: %s", coerced, description), true
		}
	}

	// Case 3: no usable type, infer one from the text.
	return inferType(title) + ": " + title, true
}

var scopeRest = regexp.MustCompile(`^\(([^)]+)\)\s*:?\s*(.+)$`)

// startsWithLetter reports whether s begins with an ASCII letter.
func startsWithLetter(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// reanchor rebuilds a title from a known type and its trailing remainder.
func reanchor(commitType, rest string) (string, bool) {
	rest = strings.TrimSpace(rest)
	if m := scopeRest.FindStringSubmatch(rest); m != nil {
		return fmt.Sprintf("%s(%s): %s", commitType, m[1], strings.TrimSpace(m[2])), true
	}

	rest = strings.TrimSpace(strings.TrimLeft(rest, ":()"))
	if rest == "" {
		return "", false
	}
	return fmt.Sprintf("%s: %s", commitType, rest), true
}

// nearestType finds the configured type that is a substring of the raw
// token, preferring the longest match. Empty when no type matches.
func nearestType(raw string, types []string) string {
	raw = strings.ToLower(raw)
	best := ""
	for _, t := range types {
		if strings.Contains(raw, strings.ToLower(t)) && len(t) > len(best) {
			best = t
		}
	}
	return best
}

// inferKeywords maps commit types to title keywords, checked in order.
var inferKeywords = []struct {
	commitType string
	keywords   []string
}{
	{"feat", []string{"add", "new", "implement", "create", "introduce"}},
	{"fix", []string{"fix", "bug", "issue", "resolve"}},
	{"refactor", []string{"refactor", "restructure", "reorganize"}},
	{"test", []string{"test", "spec"}},
	{"docs", []string{"doc", "readme"}},
}

// inferType guesses a type from the title text, defaulting to "chore".
func inferType(title string) string {
	lower := strings.ToLower(title)
	for _, bucket := range inferKeywords {
		for _, kw := range bucket.keywords {
			if strings.Contains(lower, kw) {
				return bucket.commitType
			}
		}
	}
	return "chore"
}
