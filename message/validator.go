package message

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/c360studio/commitai/config"
)

// titlePattern is the loose conventional-commit shape, independent of the
// configured type set.
var titlePattern = regexp.MustCompile(`^[a-zA-Z]+(\([^)\s]+\))?!?: .+`)

// titleParts captures type, optional scope, and description.
var titleParts = regexp.MustCompile(`^([a-zA-Z]+)(?:\(([^)\s]+)\))?!?: (.+)$`)

// ValidateTitle checks the title against the `type[(scope)]: description`
// grammar with the configured type set and length bound.
func ValidateTitle(title string, types []string, maxLength int) error {
	if title == "" {
		return fmt.Errorf("empty title")
	}
	if len(title) > maxLength {
		return fmt.Errorf("title exceeds %d characters", maxLength)
	}

	m := titleParts.FindStringSubmatch(title)
	if m == nil {
		return fmt.Errorf("title does not match type(scope): description")
	}

	for _, t := range types {
		if m[1] == t {
			return nil
		}
	}
	return fmt.Errorf("type %q is not in the configured type set", m[1])
}

// SplitTitle returns the type, scope, and description of a title that
// matches the grammar. ok is false when the title does not match.
func SplitTitle(title string) (commitType, scope, description string, ok bool) {
	m := titleParts.FindStringSubmatch(title)
	if m == nil {
		return "", "", "", false
	}
	return m[1], m[2], m[3], true
}

// InjectScope inserts a scope into a scopeless valid title. Titles that
// already carry a scope are returned unchanged.
func InjectScope(title, scope string) string {
	if scope == "" || strings.Contains(title, "(") {
		return title
	}
	commitType, _, description, ok := SplitTitle(title)
	if !ok {
		return title
	}
	return fmt.Sprintf("%s(%s): %s", commitType, scope, description)
}

// TrimToLength shortens a title to the length bound, preferring a word
// boundary when one exists in the final 30% of the budget.
func TrimToLength(title string, maxLength int) string {
	if len(title) <= maxLength {
		return title
	}

	truncated := title[:maxLength]
	if lastSpace := strings.LastIndex(truncated, " "); lastSpace > (maxLength*7)/10 {
		truncated = truncated[:lastSpace]
	}
	return strings.TrimSpace(truncated)
}

// Finalize shapes raw provider output into a Generated message: parse,
// validate, one bounded repair pass, length trim, and optional scope
// injection. It returns an InvalidFormatError when no valid title can be
// recovered.
func Finalize(raw string, format config.CommitFormatConfig, scope string) (*Generated, error) {
	title, body := Parse(raw)
	if title == "" {
		return nil, &InvalidFormatError{Reason: "no title found", Raw: raw}
	}

	if err := ValidateTitle(title, format.Types, format.MaxTitleLength); err != nil {
		repaired, ok := Repair(title, format.Types)
		if !ok {
			return nil, &InvalidFormatError{Reason: err.Error(), Raw: raw}
		}
		title = repaired
	}

	title = TrimToLength(title, format.MaxTitleLength)
	title = InjectScope(title, scope)
	title = TrimToLength(title, format.MaxTitleLength)

	if err := ValidateTitle(title, format.Types, format.MaxTitleLength); err != nil {
		return nil, &InvalidFormatError{Reason: err.Error(), Raw: raw}
	}

	if !format.BodyIncluded() {
		body = ""
	}

	return &Generated{Title: title, Body: body, Raw: raw}, nil
}
