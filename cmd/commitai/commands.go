package main

import (
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/spf13/cobra"

	"github.com/c360studio/commitai/config"
	"github.com/c360studio/commitai/generator"
	"github.com/c360studio/commitai/gitdiff"
	"github.com/c360studio/commitai/hook"
	"github.com/c360studio/commitai/llm"
)

func generateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Generate a commit message for the staged changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewLoader(nil).Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			repoRoot := config.DetectGitRoot()
			if repoRoot == "" {
				return fmt.Errorf("not inside a git repository")
			}

			msg := generator.New(cfg, repoRoot).Generate(cmd.Context())
			fmt.Println(msg.FullMessage())
			return nil
		},
	}
}

func hookCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "hook <message-file> [source]",
		Short:  "prepare-commit-msg entry point (called by git)",
		Hidden: true,
		Args:   cobra.RangeArgs(1, 2),
		// The hook must never block a commit: every failure path exits 0,
		// leaving the message file for the user to fill in.
		RunE: func(cmd *cobra.Command, args []string) error {
			msgFile := args[0]
			source := ""
			if len(args) > 1 {
				source = args[1]
			}
			if hook.ShouldSkip(source) {
				return nil
			}

			cfg, err := config.NewLoader(nil).Load()
			if err != nil {
				slog.Warn("config unusable, using defaults", "error", err)
				cfg = config.DefaultConfig()
			}

			repoRoot := config.DetectGitRoot()
			if repoRoot == "" {
				repoRoot = "."
			}

			msg := generator.New(cfg, repoRoot).Generate(cmd.Context())
			if err := hook.Write(msgFile, msg); err != nil {
				slog.Error("could not write commit message file", "error", err)
			}
			return nil
		},
	}
}

func installCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Install the prepare-commit-msg hook in this repository",
		RunE: func(cmd *cobra.Command, args []string) error {
			repoRoot := config.DetectGitRoot()
			if repoRoot == "" {
				return fmt.Errorf("not inside a git repository")
			}

			if err := hook.Install(repoRoot); err != nil {
				return err
			}
			if err := config.NewLoader(nil).EnsureUserConfig(); err != nil {
				return fmt.Errorf("create default config: %w", err)
			}

			fmt.Printf("Installed %s hook in %s\n", hook.ScriptName, repoRoot)
			return nil
		},
	}
}

func uninstallCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove the prepare-commit-msg hook from this repository",
		RunE: func(cmd *cobra.Command, args []string) error {
			repoRoot := config.DetectGitRoot()
			if repoRoot == "" {
				return fmt.Errorf("not inside a git repository")
			}

			if err := hook.Uninstall(repoRoot, force); err != nil {
				return err
			}
			fmt.Printf("Removed %s hook from %s\n", hook.ScriptName, repoRoot)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Remove the hook even if commitai did not install it")
	return cmd
}

func testCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Run a verbose end-to-end generation against the staged changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			configureLogging("debug")

			cfg, err := config.NewLoader(nil).Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			repoRoot := config.DetectGitRoot()
			if repoRoot == "" {
				return fmt.Errorf("not inside a git repository")
			}

			analyzer := gitdiff.NewAnalyzer(repoRoot, cfg.Generation.GitTimeout)
			if branch, err := analyzer.Branch(cmd.Context()); err == nil {
				fmt.Printf("Branch: %s\n", branch)
			}
			if last, err := analyzer.LastCommitMessage(cmd.Context()); err == nil {
				fmt.Printf("Last commit: %s\n", last)
			}

			sum, err := analyzer.Collect(cmd.Context(), cfg.Analysis.MaxDiffLines)
			if err != nil {
				return fmt.Errorf("collect staged changes: %w", err)
			}
			fmt.Printf("Staged files: %d, diff lines: %d (truncated: %v)\n",
				len(sum.Files), sum.TotalLines, sum.Truncated)

			start := time.Now()
			msg := generator.New(cfg, repoRoot).Generate(cmd.Context())
			fmt.Printf("Provider: %s, elapsed: %s\n", cfg.Provider, time.Since(start).Round(time.Millisecond))
			fmt.Printf("\n%s\n", msg.FullMessage())
			return nil
		},
	}
}

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that git, config, provider, and hook are set up",
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := false
			check := func(name string, ok bool, detail string) {
				status := "ok"
				if !ok {
					status = "FAIL"
					failed = true
				}
				fmt.Printf("%-24s %-4s %s\n", name, status, detail)
			}

			_, gitErr := exec.LookPath("git")
			check("git binary", gitErr == nil, "")

			loader := config.NewLoader(nil)
			cfg, cfgErr := loader.Load()
			detail := loader.DefaultWritePath()
			if cfgErr != nil {
				detail = cfgErr.Error()
			}
			check("configuration", cfgErr == nil, detail)
			if cfgErr != nil {
				return fmt.Errorf("configuration is unusable")
			}

			analyzer := gitdiff.NewAnalyzer(".", cfg.Generation.GitTimeout)
			repoRoot, rootErr := analyzer.RepoRoot(cmd.Context())
			check("git repository", analyzer.IsRepo(cmd.Context()) && rootErr == nil, repoRoot)

			registered := llm.GetProvider(cfg.Provider) != nil
			check("provider registered", registered, cfg.Provider)

			active := cfg.ActiveProvider()
			check("provider model", active.Model != "", active.Model)

			if repoRoot != "" {
				installed, hookErr := hook.IsInstalled(repoRoot)
				check("hook installed", hookErr == nil && installed, hook.Path(repoRoot))
			}

			if registered {
				pingErr := pingProvider(cmd, cfg)
				detail = ""
				if pingErr != nil {
					detail = pingErr.Error()
				}
				check("provider reachable", pingErr == nil, detail)
			}

			if failed {
				return fmt.Errorf("one or more checks failed")
			}
			return nil
		},
	}
}

// pingProvider sends a minimal request to the active provider.
func pingProvider(cmd *cobra.Command, cfg *config.Config) error {
	client := llm.NewClient(cfg.Provider, cfg.ActiveProvider(),
		llm.WithTimeout(cfg.Generation.RequestTimeout),
	)
	_, err := client.Generate(cmd.Context(), []llm.Message{
		{Role: "user", Content: "Reply with the single word: ok"},
	})
	return err
}
