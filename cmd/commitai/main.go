// Package main provides the commitai binary entry point.
// Commitai generates conventional commit messages from staged changes
// using a configurable LLM provider, wired into git through the
// prepare-commit-msg hook.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	// Register LLM providers via init()
	_ "github.com/c360studio/commitai/llm/providers"

	"github.com/spf13/cobra"
)

// Version and BuildTime are overridable at build time via
// -ldflags "-X main.Version=... -X main.BuildTime=...".
var (
	Version   = "0.1.0"
	BuildTime = "dev"
)

const appName = "commitai"

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   appName,
		Short: "AI-powered git commit message generator",
		Long: `Commitai analyzes your staged changes and generates a conventional
commit message with a local or hosted LLM provider.

It provides:
- Staged diff analysis with heuristic change classification
- Pluggable providers (ollama, openai, anthropic, gemini)
- A prepare-commit-msg hook so messages appear in your editor

Every failure degrades to a configured fallback message, so a commit
is never blocked by the tool.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configureLogging(logLevel)
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		generateCmd(),
		hookCmd(),
		installCmd(),
		uninstallCmd(),
		testCmd(),
		doctorCmd(),
		configCmd(),
		providerCmd(),
		versionCmd(),
	)

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	}
}

// configureLogging installs a text handler on stderr. Stdout is reserved
// for the generated message so the hook and scripts can capture it.
func configureLogging(logLevel string) {
	level := slog.LevelWarn
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}
