// Package generator orchestrates the pipeline from staged diff to commit
// message: analyze, classify, prompt, call the provider, and shape the
// response. Generate is total: every failure path degrades to the
// configured fallback message instead of an error.
package generator

import (
	"context"
	"errors"
	"log/slog"

	"github.com/c360studio/commitai/classify"
	"github.com/c360studio/commitai/config"
	"github.com/c360studio/commitai/gitdiff"
	"github.com/c360studio/commitai/llm"
	"github.com/c360studio/commitai/message"
	"github.com/c360studio/commitai/prompt"
)

// textGenerator is the provider-facing surface the orchestrator needs.
// llm.Client satisfies it; tests substitute a mock.
type textGenerator interface {
	Name() string
	Generate(ctx context.Context, messages []llm.Message) (string, error)
}

// diffCollector is the git-facing surface. gitdiff.Analyzer satisfies it.
type diffCollector interface {
	Collect(ctx context.Context, maxLines int) (*gitdiff.Summary, error)
}

// Generator runs the generation pipeline for one repository.
type Generator struct {
	cfg     *config.Config
	diffs   diffCollector
	client  textGenerator
	builder *prompt.Builder
	logger  *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithClient substitutes the provider client.
func WithClient(c textGenerator) Option {
	return func(g *Generator) {
		g.client = c
	}
}

// WithCollector substitutes the staged-diff source.
func WithCollector(d diffCollector) Option {
	return func(g *Generator) {
		g.diffs = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// New builds a Generator for the repository at repoPath using the active
// provider from cfg.
func New(cfg *config.Config, repoPath string, opts ...Option) *Generator {
	g := &Generator{
		cfg:     cfg,
		builder: prompt.NewBuilder(cfg),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.diffs == nil {
		g.diffs = gitdiff.NewAnalyzer(repoPath, cfg.Generation.GitTimeout)
	}
	if g.client == nil {
		clientOpts := []llm.ClientOption{
			llm.WithTimeout(cfg.Generation.RequestTimeout),
			llm.WithLogger(g.logger),
		}
		if t := cfg.Generation.Temperature; t != nil {
			clientOpts = append(clientOpts, llm.WithTemperature(*t))
		}
		g.client = llm.NewClient(cfg.Provider, cfg.ActiveProvider(), clientOpts...)
	}
	return g
}

// Generate produces a commit message for the currently staged changes. It
// never returns an error: when analysis fails, the provider keeps failing,
// or the response cannot be shaped into a valid title, the configured
// fallback message is returned so the commit is never blocked.
func (g *Generator) Generate(ctx context.Context) (msg *message.Generated) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("generation panicked, using fallback", "panic", r)
			msg = g.fallback()
		}
	}()

	sum, err := g.diffs.Collect(ctx, g.cfg.Analysis.MaxDiffLines)
	if err != nil {
		if errors.Is(err, gitdiff.ErrNoStagedChanges) {
			g.logger.Info("no staged changes, using fallback")
		} else {
			g.logger.Error("diff analysis failed, using fallback", "error", err)
		}
		return g.fallback()
	}

	cctx := classify.Classify(sum)
	payload := g.builder.Build(sum, cctx)
	messages := payload.Messages()

	g.logger.Debug("generating commit message",
		"provider", g.client.Name(),
		"files", len(sum.Files),
		"diff_lines", sum.TotalLines,
		"type_hint", cctx.Type,
		"scope_hint", cctx.Scope,
	)

	attempts := g.cfg.Generation.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		raw, err := g.client.Generate(ctx, messages)
		if err != nil {
			if errors.Is(err, llm.ErrUnknownProvider) {
				// A misconfigured provider name will not fix itself on
				// retry; doctor and provider test surface it directly.
				g.logger.Error("unknown provider, using fallback", "error", err)
				return g.fallback()
			}
			g.logger.Warn("provider call failed",
				"attempt", attempt,
				"max_attempts", attempts,
				"error", err,
			)
			continue
		}

		shaped, err := message.Finalize(raw, g.cfg.CommitFormat, cctx.Scope)
		if err != nil {
			g.logger.Warn("response failed validation",
				"attempt", attempt,
				"max_attempts", attempts,
				"error", err,
			)
			continue
		}

		g.logger.Info("commit message generated",
			"provider", g.client.Name(),
			"title", shaped.Title,
			"attempt", attempt,
		)
		return shaped
	}

	g.logger.Warn("all attempts exhausted, using fallback",
		"attempts", attempts,
		"fallback", g.cfg.FallbackMessage,
	)
	return g.fallback()
}

func (g *Generator) fallback() *message.Generated {
	return &message.Generated{Title: g.cfg.FallbackMessage}
}
