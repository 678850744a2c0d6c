package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse_TaggedResponse(t *testing.T) {
	raw := `<reasoning>
1. ANALYZE: middleware added
2. CATEGORIZE: feat
</reasoning>

<commit_title>
feat(auth): add JWT validation middleware
</commit_title>

<commit_body>
Implements JWT-based validation on protected routes.
Includes error handling for expired tokens.
</commit_body>`

	title, body := Parse(raw)
	assert.Equal(t, "feat(auth): add JWT validation middleware", title)
	assert.Equal(t, "Implements JWT-based validation on protected routes.\nIncludes error handling for expired tokens.", body)
}

func TestParse_PlainResponse(t *testing.T) {
	title, body := Parse("fix(parser): handle empty input\n\nAdds a guard before tokenizing.")
	assert.Equal(t, "fix(parser): handle empty input", title)
	assert.Equal(t, "Adds a guard before tokenizing.", body)
}

func TestParse_StripsMarkdownFences(t *testing.T) {
	raw := "```\nfeat: add config loader\n```"
	title, body := Parse(raw)
	assert.Equal(t, "feat: add config loader", title)
	assert.Empty(t, body)
}

func TestParse_SkipsPreamble(t *testing.T) {
	raw := "Here is the commit message:\n\ndocs: update README with setup steps"
	title, _ := Parse(raw)
	assert.Equal(t, "docs: update README with setup steps", title)

	raw = "Sure! This should work:\nfix: close file handles"
	title, _ = Parse(raw)
	assert.Equal(t, "fix: close file handles", title)
}

func TestParse_StraysAndEmpty(t *testing.T) {
	title, body := Parse("<commit_title></commit_title>")
	assert.Empty(t, title)
	assert.Empty(t, body)

	title, _ = Parse("")
	assert.Empty(t, title)

	// Unclosed tags are treated as stray markup.
	title, _ = Parse("<commit_title>\nchore: tidy imports")
	assert.Equal(t, "chore: tidy imports", title)
}

func TestParse_Idempotent(t *testing.T) {
	raws := []string{
		"feat: add login\n\nbody text",
		"<commit_title>fix: a</commit_title><commit_body>b</commit_body>",
		"```\nchore: x\n```",
	}

	for _, raw := range raws {
		t1, b1 := Parse(raw)
		t2, b2 := Parse(raw)
		assert.Equal(t, t1, t2)
		assert.Equal(t, b1, b2)
	}
}

func TestGenerated_FullMessage(t *testing.T) {
	g := &Generated{Title: "feat: add x"}
	assert.Equal(t, "feat: add x", g.FullMessage())

	g.Body = "details"
	assert.Equal(t, "feat: add x\n\ndetails", g.FullMessage())
}
