package message

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/commitai/config"
)

var testTypes = []string{"feat", "fix", "docs", "style", "refactor", "test", "chore", "perf"}

func TestValidateTitle(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		wantErr bool
	}{
		{"plain type", "feat: add login", false},
		{"scoped", "fix(parser): handle empty input", false},
		{"breaking marker", "feat(api)!: drop v1 endpoints", false},
		{"empty", "", true},
		{"no colon", "feat add login", true},
		{"no description", "feat: ", true},
		{"unknown type", "wip: try things", true},
		{"space in scope", "feat(two words): bad scope", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTitle(tt.title, testTypes, 72)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	assert.Error(t, ValidateTitle("feat: this description is far too long for the configured bound", testTypes, 20))
}

func TestSplitTitle(t *testing.T) {
	commitType, scope, description, ok := SplitTitle("feat(auth): add login")
	require.True(t, ok)
	assert.Equal(t, "feat", commitType)
	assert.Equal(t, "auth", scope)
	assert.Equal(t, "add login", description)

	commitType, scope, _, ok = SplitTitle("chore: tidy")
	require.True(t, ok)
	assert.Equal(t, "chore", commitType)
	assert.Empty(t, scope)

	_, _, _, ok = SplitTitle("not a commit title")
	assert.False(t, ok)
}

func TestInjectScope(t *testing.T) {
	assert.Equal(t, "feat(auth): add login", InjectScope("feat: add login", "auth"))
	assert.Equal(t, "feat(api): add login", InjectScope("feat(api): add login", "auth"))
	assert.Equal(t, "feat: add login", InjectScope("feat: add login", ""))
	assert.Equal(t, "garbage", InjectScope("garbage", "auth"))
}

func TestTrimToLength(t *testing.T) {
	assert.Equal(t, "feat: short", TrimToLength("feat: short", 72))

	long := "feat: add support for configurable retry policies across providers"
	trimmed := TrimToLength(long, 40)
	assert.LessOrEqual(t, len(trimmed), 40)
	assert.False(t, trimmed[len(trimmed)-1] == ' ')
	// Cuts at a word boundary rather than mid-word.
	assert.Equal(t, "feat: add support for configurable", trimmed)
}

func TestRepair(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"coerce near-type", "feature(auth): add login", "feat(auth): add login"},
		{"coerce plain near-type", "feature: add login", "feat: add login"},
		{"bugfix coerced", "bugfix: close file handles", "fix: close file handles"},
		{"missing colon", "feat add retry logic", "feat: add retry logic"},
		{"reanchor scope", "fix (parser) handle nil token", "fix(parser): handle nil token"},
		{"infer add", "add pagination to the list endpoint", "feat: add pagination to the list endpoint"},
		{"infer fix", "resolve crash on empty diff", "fix: resolve crash on empty diff"},
		{"infer default", "misc cleanup", "chore: misc cleanup"},
		{"strip quotes", `"feat: add login"`, "feat: add login"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Repair(tt.title, testTypes)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := Repair("", testTypes)
	assert.False(t, ok)
}

func TestFinalize(t *testing.T) {
	format := config.CommitFormatConfig{
		Types:          testTypes,
		MaxTitleLength: 72,
	}

	t.Run("valid tagged response", func(t *testing.T) {
		raw := "<commit_title>feat: add login</commit_title>\n<commit_body>details here</commit_body>"
		msg, err := Finalize(raw, format, "")
		require.NoError(t, err)
		assert.Equal(t, "feat: add login", msg.Title)
		assert.Equal(t, "details here", msg.Body)
		assert.Equal(t, raw, msg.Raw)
	})

	t.Run("repairs near-type", func(t *testing.T) {
		msg, err := Finalize("feature(auth): add login", format, "")
		require.NoError(t, err)
		assert.Equal(t, "feat(auth): add login", msg.Title)
	})

	t.Run("injects scope", func(t *testing.T) {
		msg, err := Finalize("feat: add login", format, "auth")
		require.NoError(t, err)
		assert.Equal(t, "feat(auth): add login", msg.Title)
	})

	t.Run("drops body when disabled", func(t *testing.T) {
		noBody := format
		off := false
		noBody.IncludeBody = &off
		msg, err := Finalize("feat: add login\n\nsome body", noBody, "")
		require.NoError(t, err)
		assert.Empty(t, msg.Body)
	})

	t.Run("empty response", func(t *testing.T) {
		_, err := Finalize("", format, "")
		var ferr *InvalidFormatError
		require.True(t, errors.As(err, &ferr))
		assert.Equal(t, "no title found", ferr.Reason)
	})

	t.Run("trims overlong title", func(t *testing.T) {
		short := format
		short.MaxTitleLength = 30
		msg, err := Finalize("feat: add a very long description of the new login flow", short, "")
		require.NoError(t, err)
		assert.LessOrEqual(t, len(msg.Title), 30)
		assert.NoError(t, ValidateTitle(msg.Title, short.Types, short.MaxTitleLength))
	})
}
