// Package hook manages the git prepare-commit-msg integration: writing the
// generated message into the commit message file and installing or removing
// the hook script itself.
package hook

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/c360studio/commitai/message"
)

// ScriptName is the git hook this tool integrates with.
const ScriptName = "prepare-commit-msg"

// marker identifies a hook script written by this tool, so uninstall never
// removes a hook somebody else wrote.
const marker = "# managed by commitai"

const script = `#!/bin/sh
` + marker + `
commitai hook "$1" "$2"
`

// backupSuffix is appended to a foreign hook displaced by Install.
const backupSuffix = ".backup"

// Write stores the generated message in the commit message file git hands
// to the hook. The file is created if missing and truncated otherwise.
func Write(path string, msg *message.Generated) error {
	if err := os.WriteFile(path, []byte(msg.FullMessage()+"\n"), 0o644); err != nil {
		return fmt.Errorf("write commit message file: %w", err)
	}
	return nil
}

// ShouldSkip reports whether the hook should leave the commit message file
// alone for the given commit source. Merges, squashes, amends, and commits
// that already carry a message (-m, -F, templates) keep their message.
func ShouldSkip(source string) bool {
	switch source {
	case "message", "template", "merge", "squash", "commit":
		return true
	}
	return false
}

// Path returns the hook script location for a repository root.
func Path(repoRoot string) string {
	return filepath.Join(repoRoot, ".git", "hooks", ScriptName)
}

// IsInstalled reports whether the hook at repoRoot was written by this
// tool. A missing hook is not an error.
func IsInstalled(repoRoot string) (bool, error) {
	data, err := os.ReadFile(Path(repoRoot))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read hook: %w", err)
	}
	return strings.Contains(string(data), marker), nil
}

// Install writes the hook script into .git/hooks. An existing hook that
// this tool did not write is moved aside to <hook>.backup first; a hook of
// our own is overwritten in place.
func Install(repoRoot string) error {
	hookPath := Path(repoRoot)
	if err := os.MkdirAll(filepath.Dir(hookPath), 0o755); err != nil {
		return fmt.Errorf("create hooks dir: %w", err)
	}

	if data, err := os.ReadFile(hookPath); err == nil {
		if !strings.Contains(string(data), marker) {
			backup := hookPath + backupSuffix
			if err := os.Rename(hookPath, backup); err != nil {
				return fmt.Errorf("back up existing hook: %w", err)
			}
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("inspect existing hook: %w", err)
	}

	if err := os.WriteFile(hookPath, []byte(script), 0o755); err != nil {
		return fmt.Errorf("write hook: %w", err)
	}
	return nil
}

// Uninstall removes the hook script. It refuses to delete a hook this tool
// did not write unless force is set. A backup displaced by Install is
// restored when present.
func Uninstall(repoRoot string, force bool) error {
	hookPath := Path(repoRoot)

	data, err := os.ReadFile(hookPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read hook: %w", err)
	}

	if !strings.Contains(string(data), marker) && !force {
		return fmt.Errorf("hook at %s was not installed by commitai (use --force to remove)", hookPath)
	}

	if err := os.Remove(hookPath); err != nil {
		return fmt.Errorf("remove hook: %w", err)
	}

	backup := hookPath + backupSuffix
	if _, err := os.Stat(backup); err == nil {
		if err := os.Rename(backup, hookPath); err != nil {
			return fmt.Errorf("restore previous hook: %w", err)
		}
	}
	return nil
}
