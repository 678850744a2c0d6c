// Package classify infers a change category and scope from a staged diff.
// The result is advisory context for prompt construction; the response
// parser re-validates whatever the model returns.
package classify

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/c360studio/commitai/gitdiff"
)

// Context is the inferred change category for a diff.
type Context struct {
	// Type is a conventional-commit type drawn from the standard set.
	Type string
	// Scope is a short token derived from file paths, empty when ambiguous.
	Scope string
	// Confidence signals how strong the matched rule is (0..1).
	Confidence float64
}

// rule is one ordered heuristic. The first rule whose match function
// returns true wins.
type rule struct {
	commitType string
	confidence float64
	match      func(*gitdiff.Summary) bool
}

var docsPatterns = []string{"docs/**", "**/docs/**", "**/*.md", "*.md", "**/*.rst", "*.rst", "**/*.txt", "*.txt"}

var testPatterns = []string{"**/*_test.go", "*_test.go", "**/test/**", "**/tests/**", "**/__tests__/**", "**/*spec*", "*spec*", "**/*.test.*", "*.test.*"}

// rules are evaluated in priority order.
var rules = []rule{
	{"docs", 0.9, allPathsMatch(docsPatterns)},
	{"test", 0.9, allPathsMatch(testPatterns)},
	{"fix", 0.7, isFix},
	{"feat", 0.7, isFeature},
	{"refactor", 0.6, hasToken("refactor", "restructure", "reorganize", "cleanup", "simplify")},
	{"perf", 0.6, hasToken("performance", "optimize", "faster", "efficient")},
	{"style", 0.5, hasToken("format", "lint", "prettier", "gofmt")},
}

// Classify applies the heuristic rules to the summary. Falls back to
// "chore" when nothing matches.
func Classify(sum *gitdiff.Summary) Context {
	commitType := "chore"
	confidence := 0.2
	for _, r := range rules {
		if r.match(sum) {
			commitType = r.commitType
			confidence = r.confidence
			break
		}
	}

	scope := Scope(sum.Paths())
	if scope == commitType {
		// A scope repeating the type adds nothing ("docs(docs): ...").
		scope = ""
	}

	return Context{Type: commitType, Scope: scope, Confidence: confidence}
}

// allPathsMatch builds a matcher that requires every changed path to match
// at least one of the glob patterns.
func allPathsMatch(patterns []string) func(*gitdiff.Summary) bool {
	return func(sum *gitdiff.Summary) bool {
		if len(sum.Files) == 0 {
			return false
		}
		for _, f := range sum.Files {
			if !matchAny(patterns, f.Path) {
				return false
			}
		}
		return true
	}
}

func matchAny(patterns []string, path string) bool {
	lower := strings.ToLower(path)
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, lower); ok {
			return true
		}
	}
	return false
}

// hasToken builds a matcher over the lowercased diff text.
func hasToken(tokens ...string) func(*gitdiff.Summary) bool {
	return func(sum *gitdiff.Summary) bool {
		diff := strings.ToLower(sum.DiffText())
		for _, tok := range tokens {
			if strings.Contains(diff, tok) {
				return true
			}
		}
		return false
	}
}

// isFix matches diffs that remove lines and mention fix-like tokens.
func isFix(sum *gitdiff.Summary) bool {
	removed := 0
	for _, f := range sum.Files {
		removed += f.Removed
	}
	if removed == 0 {
		return false
	}
	return hasToken("fix", "bug", "issue", "error", "crash", "patch")(sum)
}

// isFeature matches new files or feature-flavored additions, unless the
// change looks test-related.
func isFeature(sum *gitdiff.Summary) bool {
	if hasToken("test", "spec")(sum) {
		return false
	}
	if strings.Contains(sum.DiffText(), "new file mode") {
		return true
	}
	return hasToken("add", "new", "implement", "introduce", "feature")(sum)
}

// skipDirs are common layout prefixes that make poor scope names.
var skipDirs = map[string]bool{
	".":        true,
	"..":       true,
	"src":      true,
	"lib":      true,
	"app":      true,
	"internal": true,
	"pkg":      true,
	"cmd":      true,
}

// scopeKeywords maps a scope bucket to filename keywords, checked in order.
var scopeKeywords = []struct {
	scope    string
	keywords []string
}{
	{"auth", []string{"auth", "login", "session", "token"}},
	{"api", []string{"api", "endpoint", "route"}},
	{"ui", []string{"component", "view", "page", "frontend"}},
	{"db", []string{"database", "schema", "migration"}},
	{"test", []string{"test", "spec"}},
	{"docs", []string{"doc", "readme", "guide"}},
	{"config", []string{"config", "settings"}},
}

// Scope derives a short scope token from the changed paths: the single
// meaningful leading directory when all changes share one, otherwise a
// keyword bucket, otherwise empty.
func Scope(paths []string) string {
	if len(paths) == 0 {
		return ""
	}

	dirs := make(map[string]bool)
	for _, path := range paths {
		parts := strings.Split(path, "/")
		if len(parts) < 2 {
			continue
		}
		for _, part := range parts[:len(parts)-1] {
			if !skipDirs[part] {
				dirs[part] = true
				break
			}
		}
	}

	if len(dirs) == 1 {
		for dir := range dirs {
			return strings.ReplaceAll(strings.ReplaceAll(dir, "_", "-"), " ", "-")
		}
	}

	joined := strings.ToLower(strings.Join(paths, " "))
	for _, bucket := range scopeKeywords {
		for _, kw := range bucket.keywords {
			if strings.Contains(joined, kw) {
				return bucket.scope
			}
		}
	}

	return ""
}
