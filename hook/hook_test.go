package hook

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/commitai/message"
)

func initRepoDir(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git", "hooks"), 0o755))
	return root
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "COMMIT_EDITMSG")

	msg := &message.Generated{Title: "feat: add login", Body: "details"}
	require.NoError(t, Write(path, msg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "feat: add login\n\ndetails\n", string(data))

	// Overwrites any prior content.
	require.NoError(t, Write(path, &message.Generated{Title: "fix: a"}))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "fix: a\n", string(data))
}

func TestShouldSkip(t *testing.T) {
	for _, source := range []string{"message", "template", "merge", "squash", "commit"} {
		assert.True(t, ShouldSkip(source), source)
	}
	assert.False(t, ShouldSkip(""))
}

func TestInstallAndUninstall(t *testing.T) {
	root := initRepoDir(t)

	installed, err := IsInstalled(root)
	require.NoError(t, err)
	assert.False(t, installed)

	require.NoError(t, Install(root))

	installed, err = IsInstalled(root)
	require.NoError(t, err)
	assert.True(t, installed)

	info, err := os.Stat(Path(root))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0o100, "hook must be executable")

	require.NoError(t, Uninstall(root, false))
	_, err = os.Stat(Path(root))
	assert.True(t, os.IsNotExist(err))
}

func TestInstall_BacksUpForeignHook(t *testing.T) {
	root := initRepoDir(t)
	foreign := "#!/bin/sh\necho custom\n"
	require.NoError(t, os.WriteFile(Path(root), []byte(foreign), 0o755))

	require.NoError(t, Install(root))

	backup, err := os.ReadFile(Path(root) + backupSuffix)
	require.NoError(t, err)
	assert.Equal(t, foreign, string(backup))

	// Uninstall restores the displaced hook.
	require.NoError(t, Uninstall(root, false))
	restored, err := os.ReadFile(Path(root))
	require.NoError(t, err)
	assert.Equal(t, foreign, string(restored))
}

func TestInstall_IdempotentForOwnHook(t *testing.T) {
	root := initRepoDir(t)
	require.NoError(t, Install(root))
	require.NoError(t, Install(root))

	// No backup is made when reinstalling our own hook.
	_, err := os.Stat(Path(root) + backupSuffix)
	assert.True(t, os.IsNotExist(err))
}

func TestUninstall_RefusesForeignHook(t *testing.T) {
	root := initRepoDir(t)
	require.NoError(t, os.WriteFile(Path(root), []byte("#!/bin/sh\necho custom\n"), 0o755))

	err := Uninstall(root, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not installed by commitai")

	require.NoError(t, Uninstall(root, true))
	_, statErr := os.Stat(Path(root))
	assert.True(t, os.IsNotExist(statErr))
}

func TestUninstall_MissingHookIsNoop(t *testing.T) {
	root := initRepoDir(t)
	assert.NoError(t, Uninstall(root, false))
}
