package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/commitai/classify"
	"github.com/c360studio/commitai/config"
	"github.com/c360studio/commitai/gitdiff"
)

func testSummary() *gitdiff.Summary {
	return &gitdiff.Summary{
		Files: []gitdiff.FileChange{
			{Path: "docs/README.md", Added: 3, Removed: 1, Patch: "diff --git a/docs/README.md b/docs/README.md\n+setup steps\n"},
		},
		TotalLines: 2,
	}
}

func TestBuilder_Build(t *testing.T) {
	cfg := config.DefaultConfig()
	b := NewBuilder(cfg)

	payload := b.Build(testSummary(), classify.Context{Type: "docs", Confidence: 0.9})

	assert.Equal(t, config.DefaultSystemMessage, payload.System)
	assert.Contains(t, payload.User, "+setup steps")
	assert.Contains(t, payload.User, "docs/README.md (+3/-1)")
	assert.Contains(t, payload.User, "Change category hint: docs")
	assert.NotContains(t, payload.User, "suggested scope")
	assert.Contains(t, payload.User, "<commit_title>")
	assert.Contains(t, payload.User, "Title max 72 characters")
	assert.Contains(t, payload.User, "feat, fix, docs")

	msgs := payload.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].Role)
	assert.Equal(t, "user", msgs[1].Role)
}

func TestBuilder_Build_ScopeHint(t *testing.T) {
	b := NewBuilder(config.DefaultConfig())

	payload := b.Build(testSummary(), classify.Context{Type: "feat", Scope: "auth"})
	assert.Contains(t, payload.User, "Change category hint: feat, suggested scope: auth")
}

func TestBuilder_Build_Deterministic(t *testing.T) {
	b := NewBuilder(config.DefaultConfig())
	cctx := classify.Context{Type: "docs"}

	first := b.Build(testSummary(), cctx)
	second := b.Build(testSummary(), cctx)
	assert.Equal(t, first, second)
}

func TestBuilder_Build_TruncatedDiffAnnotated(t *testing.T) {
	b := NewBuilder(config.DefaultConfig())
	sum := testSummary()
	sum.Truncated = true

	payload := b.Build(sum, classify.Context{Type: "docs"})
	assert.Contains(t, payload.User, "diff truncated")
}

func TestBuilder_Build_CustomTemplatesAndExamples(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Prompt.SystemMessage = "be terse"
	cfg.Prompt.ReasoningTemplate = "DIFF:\n{diff}\nFILES:\n{files}"
	cfg.Prompt.Examples = []config.Example{
		{Diff: "added retry", Output: "feat(net): add retry"},
	}
	b := NewBuilder(cfg)

	payload := b.Build(testSummary(), classify.Context{Type: "docs"})

	assert.Equal(t, "be terse", payload.System)
	assert.Contains(t, payload.User, "DIFF:\n")
	assert.Contains(t, payload.User, "Example 1:")
	assert.Contains(t, payload.User, "feat(net): add retry")
}

func TestBuilder_Build_CapsPromptSize(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Prompt.Examples = []config.Example{
		{Diff: "x", Output: "feat: x"},
		{Diff: "y", Output: "fix: y"},
	}
	b := NewBuilder(cfg)

	// A diff far beyond the cap.
	huge := strings.Repeat("+added line of code that is fairly long indeed\n", 4000)
	sum := &gitdiff.Summary{
		Files:      []gitdiff.FileChange{{Path: "big.go", Added: 4000, Patch: huge}},
		TotalLines: 4000,
	}

	payload := b.Build(sum, classify.Context{Type: "feat"})

	assert.LessOrEqual(t, len(payload.User), maxPromptBytes)
	// Examples survive; the diff absorbs the truncation.
	assert.Contains(t, payload.User, "Example 2:")
	assert.Contains(t, payload.User, "diff truncated")
}
