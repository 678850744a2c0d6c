// Package prompt assembles the structured generation prompt from the diff
// summary, classifier hints, and user-configured templates.
package prompt

import (
	"fmt"
	"strings"

	"github.com/c360studio/commitai/classify"
	"github.com/c360studio/commitai/config"
	"github.com/c360studio/commitai/gitdiff"
	"github.com/c360studio/commitai/llm"
)

// maxPromptBytes caps the total prompt size to stay within
// provider-reasonable limits. Diff text is trimmed before examples are
// dropped.
const maxPromptBytes = 24 * 1024

// Payload is a fully assembled prompt, built fresh per request.
type Payload struct {
	System string
	User   string
}

// Messages returns the payload as chat messages in provider order.
func (p Payload) Messages() []llm.Message {
	return []llm.Message{
		{Role: "system", Content: p.System},
		{Role: "user", Content: p.User},
	}
}

// Builder assembles prompts according to the user configuration. Builders
// are deterministic: identical inputs produce identical payloads.
type Builder struct {
	cfg *config.Config
}

// NewBuilder creates a prompt builder.
func NewBuilder(cfg *config.Config) *Builder {
	return &Builder{cfg: cfg}
}

// Build assembles the payload for a diff summary and classifier context.
func (b *Builder) Build(sum *gitdiff.Summary, cctx classify.Context) Payload {
	system := b.cfg.Prompt.SystemMessage
	if system == "" {
		system = config.DefaultSystemMessage
	}

	diff := sum.DiffText()
	examples := b.cfg.Prompt.Examples

	user := b.assemble(diff, sum, cctx, examples)

	// Cap total size: trim diff lines first, drop examples last to first
	// only if the diff alone cannot absorb the overflow.
	for len(user) > maxPromptBytes && len(diff) > 0 {
		diff = trimLines(diff, overflowLines(len(user)-maxPromptBytes, diff))
		user = b.assemble(diff, sum, cctx, examples)
		if diff == "" {
			break
		}
	}
	for len(user) > maxPromptBytes && len(examples) > 0 {
		examples = examples[:len(examples)-1]
		user = b.assemble(diff, sum, cctx, examples)
	}

	return Payload{System: system, User: user}
}

// assemble renders the user prompt from its parts.
func (b *Builder) assemble(diff string, sum *gitdiff.Summary, cctx classify.Context, examples []config.Example) string {
	var sb strings.Builder

	template := b.cfg.Prompt.ReasoningTemplate
	if template == "" {
		template = defaultReasoningTemplate
	}

	fileList := "(file list omitted)"
	if b.cfg.Analysis.FileListIncluded() {
		fileList = formatFileList(sum)
	}

	if sum.Truncated || diff != sum.DiffText() {
		diff = strings.TrimRight(diff, "\n") + "\n... (diff truncated, change may be larger than shown)"
	}

	body := strings.NewReplacer("{diff}", diff, "{files}", fileList).Replace(template)
	sb.WriteString(body)
	sb.WriteString("\n\n")
	sb.WriteString(defaultOutputFormat)
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Change category hint: %s", cctx.Type))
	if cctx.Scope != "" {
		sb.WriteString(fmt.Sprintf(", suggested scope: %s", cctx.Scope))
	}
	sb.WriteString("\n")

	if len(examples) > 0 {
		sb.WriteString("\nExamples of good commit messages:\n")
		for i, ex := range examples {
			sb.WriteString(fmt.Sprintf("\nExample %d:\nChanges: %s\n", i+1, ex.Diff))
			if ex.Reasoning != "" {
				sb.WriteString(fmt.Sprintf("Reasoning: %s\n", ex.Reasoning))
			}
			sb.WriteString(fmt.Sprintf("Output: %s\n", ex.Output))
		}
	}

	types := strings.Join(b.cfg.CommitFormat.Types, ", ")
	sb.WriteString(fmt.Sprintf(`
Remember:
- Title max %d characters
- Use conventional commit types: %s
- Be specific about what changed and why
- Use imperative mood in title (e.g., "add" not "added")
`, b.cfg.CommitFormat.MaxTitleLength, types))

	return sb.String()
}

// formatFileList renders the changed files with their line counts.
func formatFileList(sum *gitdiff.Summary) string {
	if len(sum.Files) == 0 {
		return "(none)"
	}
	var sb strings.Builder
	for _, f := range sum.Files {
		sb.WriteString(fmt.Sprintf("  - %s (+%d/-%d)\n", f.Path, f.Added, f.Removed))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// trimLines removes n lines from the end of text. (Only makes sense for n > 0.)
func trimLines(text string, n int) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if n >= len(lines) {
		return ""
	}
	return strings.Join(lines[:len(lines)-n], "\n") + "\n"
}

// overflowLines estimates how many diff lines to drop for the byte overflow.
func overflowLines(overflowBytes int, diff string) int {
	lines := strings.Count(diff, "\n") + 1
	avg := len(diff) / lines
	if avg == 0 {
		avg = 1
	}
	n := overflowBytes/avg + 1
	if n < 1 {
		n = 1
	}
	return n
}

const defaultReasoningTemplate = `You will analyze git changes and generate a commit message. Follow these steps:

1. ANALYZE: Review the git diff to understand what changed
2. CATEGORIZE: Determine the type of change
3. IDENTIFY SCOPE: What component/module is affected (optional but helpful)
4. SUMMARIZE: Write a concise title describing the main change
5. ELABORATE: Explain the 'what' and 'why' in the body
6. FORMAT: Structure as conventional commit

Git Changes:
{diff}

Files Modified:
{files}

Now follow the steps above and generate the commit message.`

const defaultOutputFormat = `Provide your response in this exact format:

<reasoning>
[Your step-by-step analysis following the steps above]
</reasoning>

<commit_title>
type(scope): concise description in imperative mood
</commit_title>

<commit_body>
[Detailed explanation of what changed and why]
</commit_body>`
