package cmd

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantmind-br/pacfront/internal/history"
	"github.com/quantmind-br/pacfront/internal/plan"
	"github.com/quantmind-br/pacfront/internal/syspkg"
	"github.com/quantmind-br/pacfront/internal/ui"
)

func (f *fixture) history(t *testing.T) []history.Entry {
	t.Helper()

	store, err := history.Open(context.Background(), f.app.Config.Paths.DBFile)
	require.NoError(t, err)
	defer store.Close()

	entries, err := store.List(context.Background(), 50)
	require.NoError(t, err)
	return entries
}

func TestInstallCmd(t *testing.T) {
	f := newFixture(t)

	stdout, stderr, err := f.run(t, "install", "firefox", "firefox-nightly")
	requireNoError(t, err, stdout, stderr)

	assert.Contains(t, stdout, "sudo pacman -S --needed firefox")
	assert.Contains(t, stdout, "yay -S firefox-nightly")
	assert.Contains(t, stdout, "Operation complete")
	assert.Equal(t, 1, f.prompter.confirms)

	require.Len(t, f.exec.inline, 1)
	p := f.exec.inline[0]
	assert.Equal(t, plan.ActionInstall, p.Action)
	assert.Equal(t, []string{"sudo pacman -S --needed firefox", "yay -S firefox-nightly"}, p.Commands())

	entries := f.history(t)
	require.Len(t, entries, 1)
	assert.Equal(t, "install", entries[0].Action)
	assert.Equal(t, "inline", entries[0].Mode)
	assert.Equal(t, []string{"firefox", "firefox-nightly"}, entries[0].Packages)
	assert.True(t, entries[0].Succeeded())
}

func TestInstallCmd_Yes(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.run(t, "install", "-y", "firefox")
	require.NoError(t, err)
	assert.Zero(t, f.prompter.confirms)
	assert.Len(t, f.exec.inline, 1)
}

func TestInstallCmd_Declined(t *testing.T) {
	f := newFixture(t)
	f.prompter.confirm = false

	stdout, _, err := f.run(t, "install", "firefox")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Cancelled.")
	assert.Empty(t, f.exec.inline)
	assert.NoFileExists(t, f.app.Config.Paths.DBFile)
}

func TestInstallCmd_PromptCancelled(t *testing.T) {
	f := newFixture(t)
	f.prompter.err = ui.ErrCancelled

	stdout, _, err := f.run(t, "install", "firefox")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Cancelled.")
	assert.Empty(t, f.exec.inline)
}

func TestInstallCmd_External(t *testing.T) {
	f := newFixture(t)

	stdout, _, err := f.run(t, "install", "--yes", "--external", "vim")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Launched in konsole")
	assert.Empty(t, f.exec.inline)
	require.Len(t, f.exec.launched, 1)

	entries := f.history(t)
	require.Len(t, entries, 1)
	assert.Equal(t, "external", entries[0].Mode)
	assert.Equal(t, -1, entries[0].ExitCode)
	assert.NotNil(t, entries[0].FinishedAt)
}

func TestInstallCmd_ExternalModeFromConfig(t *testing.T) {
	f := newFixture(t)
	f.app.Config.Terminal.Mode = "external"

	_, _, err := f.run(t, "install", "--yes", "vim")
	require.NoError(t, err)
	assert.Len(t, f.exec.launched, 1)
	assert.Empty(t, f.exec.inline)
}

func TestInstallCmd_Failure(t *testing.T) {
	f := newFixture(t)
	f.exec.code = 1
	f.exec.err = errBoom

	_, _, err := f.run(t, "install", "--yes", "firefox")
	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)
	assert.Contains(t, err.Error(), "failed (exit 1)")

	entries := f.history(t)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].ExitCode)
	assert.Equal(t, "boom", entries[0].Error)
	assert.False(t, entries[0].Succeeded())
}

func TestInstallCmd_Resolution(t *testing.T) {
	t.Run("unknown package", func(t *testing.T) {
		f := newFixture(t)
		_, _, err := f.run(t, "install", "--yes", "no-such-package")
		assert.ErrorIs(t, err, syspkg.ErrPackageNotFound)
		assert.Empty(t, f.exec.inline)
	})

	t.Run("AUR only without yay", func(t *testing.T) {
		f := newFixture(t)
		f.aur.usable = false
		_, _, err := f.run(t, "install", "--yes", "firefox-nightly")
		assert.ErrorIs(t, err, syspkg.ErrYayUnavailable)
	})

	t.Run("mixed without yay degrades", func(t *testing.T) {
		f := newFixture(t)
		f.aur.usable = false
		stdout, _, err := f.run(t, "install", "--yes", "firefox", "firefox-nightly")
		require.NoError(t, err)
		assert.Contains(t, stdout, "skipping AUR packages firefox-nightly")
		require.Len(t, f.exec.inline, 1)
		assert.Equal(t, []string{"sudo pacman -S --needed firefox"}, f.exec.inline[0].Commands())
	})

	t.Run("aur flag", func(t *testing.T) {
		f := newFixture(t)
		_, _, err := f.run(t, "install", "--yes", "--aur", "spotify")
		require.NoError(t, err)
		require.Len(t, f.exec.inline, 1)
		assert.Equal(t, []string{"yay -S spotify"}, f.exec.inline[0].Commands())
	})

	t.Run("invalid name", func(t *testing.T) {
		f := newFixture(t)
		_, _, err := f.run(t, "install", "--yes", "vim;reboot")
		assert.Error(t, err)
		assert.Empty(t, f.exec.inline)
	})
}

func TestRemoveCmd(t *testing.T) {
	f := newFixture(t)

	stdout, stderr, err := f.run(t, "remove", "--yes", "vim", "yay")
	requireNoError(t, err, stdout, stderr)
	require.Len(t, f.exec.inline, 1)
	assert.Equal(t, plan.ActionRemove, f.exec.inline[0].Action)
	assert.Equal(t, []string{"sudo pacman -Rns vim", "yay -Rns yay"}, f.exec.inline[0].Commands())

	_, _, err = f.run(t, "uninstall", "--yes", "firefox")
	assert.ErrorContains(t, err, "firefox is not installed")
}

func TestRemoveCmd_WithoutYay(t *testing.T) {
	f := newFixture(t)
	f.aur.usable = false

	stdout, _, err := f.run(t, "remove", "--yes", "vim", "yay")
	require.NoError(t, err)
	assert.Contains(t, stdout, "every package will be removed via pacman")
	require.Len(t, f.exec.inline, 1)
	assert.Equal(t, []string{"sudo pacman -Rns vim yay"}, f.exec.inline[0].Commands())
}

func TestRemoveCmd_Interactive(t *testing.T) {
	f := newFixture(t)
	f.prompter.pick = func(label string) bool { return strings.HasPrefix(label, "htop ") }

	_, _, err := f.run(t, "remove", "--yes")
	require.NoError(t, err)
	assert.Contains(t, f.prompter.offered, "yay 12.3.5-1 (Yay)")
	require.Len(t, f.exec.inline, 1)
	assert.Equal(t, []string{"sudo pacman -Rns htop"}, f.exec.inline[0].Commands())
}

func TestRemoveCmd_InteractiveNothing(t *testing.T) {
	f := newFixture(t)

	stdout, _, err := f.run(t, "remove")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No packages selected. Nothing to do.")
	assert.Empty(t, f.exec.inline)

	f.prompter.err = ui.ErrCancelled
	stdout, _, err = f.run(t, "remove")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Selection cancelled. No packages were uninstalled.")
}

func TestUpgradeCmd(t *testing.T) {
	f := newFixture(t)

	stdout, stderr, err := f.run(t, "upgrade", "--yes")
	requireNoError(t, err, stdout, stderr)
	require.Len(t, f.exec.inline, 1)
	assert.Equal(t, plan.ActionUpgradeAll, f.exec.inline[0].Action)
	assert.Equal(t, []string{"yay -Syu"}, f.exec.inline[0].Commands())
	assert.Contains(t, stdout, "Full system update")
}

func TestUpgradeCmd_WithoutYay(t *testing.T) {
	f := newFixture(t)
	f.aur.usable = false

	stdout, _, err := f.run(t, "upgrade", "--yes")
	require.NoError(t, err)
	assert.Contains(t, stdout, "only repository packages will be upgraded via pacman")
	require.Len(t, f.exec.inline, 1)
	assert.Equal(t, []string{"sudo pacman -Syu"}, f.exec.inline[0].Commands())
	assert.True(t, f.exec.inline[0].Degraded)
}

func TestUpgradeCmd_Named(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.run(t, "upgrade", "--yes", "bash", "yay")
	require.NoError(t, err)
	require.Len(t, f.exec.inline, 1)
	assert.Equal(t, plan.ActionUpdate, f.exec.inline[0].Action)
	assert.Equal(t, []string{"sudo pacman -S --needed bash", "yay -S --needed yay"}, f.exec.inline[0].Commands())
}

func TestUpgradeCmd_NoPendingUpdate(t *testing.T) {
	f := newFixture(t)

	stdout, stderr, err := f.run(t, "upgrade", "--yes", "zsh")
	require.NoError(t, err)
	assert.Contains(t, stderr, "no pending update for zsh")
	assert.Contains(t, stdout, "Nothing to update.")
	assert.Empty(t, f.exec.inline)
}

func TestUpgradeCmd_Select(t *testing.T) {
	f := newFixture(t)
	f.prompter.pick = func(label string) bool { return strings.HasPrefix(label, "yay ") }

	_, _, err := f.run(t, "upgrade", "--yes", "--select")
	require.NoError(t, err)
	assert.Contains(t, f.prompter.offered, "bash 5.2.037-1 -> 5.2.037-2 (Pacman)")
	require.Len(t, f.exec.inline, 1)
	assert.Equal(t, []string{"yay -S --needed yay"}, f.exec.inline[0].Commands())
}

func TestUpgradeCmd_FullyUpdated(t *testing.T) {
	f := newFixture(t)
	f.repo.updates = nil
	f.aur.updates = nil

	stdout, _, err := f.run(t, "upgrade", "-s")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Your system is fully updated")
	assert.Empty(t, f.exec.inline)
}

func TestHistoryCmd(t *testing.T) {
	f := newFixture(t)

	stdout, _, err := f.run(t, "history")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No operations recorded yet.")

	_, _, err = f.run(t, "install", "--yes", "firefox")
	require.NoError(t, err)
	_, _, err = f.run(t, "upgrade", "--yes", "--external")
	require.NoError(t, err)

	stdout, _, err = f.run(t, "history")
	require.NoError(t, err)
	assert.Contains(t, stdout, "firefox")
	assert.Contains(t, stdout, "launched")

	stdout, _, err = f.run(t, "history", "--json", "-n", "1")
	require.NoError(t, err)
	var entries []history.Entry
	require.NoError(t, json.Unmarshal([]byte(stdout), &entries))
	require.Len(t, entries, 1)

	f.app.Config.History.Keep = 1
	stdout, _, err = f.run(t, "history", "--prune")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Removed 1 old entries")
	assert.Len(t, f.history(t), 1)
}

func TestHistoryCmd_ShowEntry(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.run(t, "install", "--yes", "firefox")
	require.NoError(t, err)
	entries := f.history(t)
	require.Len(t, entries, 1)
	id := entries[0].ID

	stdout, _, err := f.run(t, "history")
	require.NoError(t, err)
	assert.Contains(t, stdout, ui.ShortID(id))

	stdout, _, err = f.run(t, "history", ui.ShortID(id))
	require.NoError(t, err)
	assert.Contains(t, stdout, "Operation "+id)
	assert.Regexp(t, `Packages\s*: firefox`, stdout)
	assert.Regexp(t, `Status\s*: ok`, stdout)

	stdout, _, err = f.run(t, "history", id, "--json")
	require.NoError(t, err)
	var got history.Entry
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, id, got.ID)

	_, _, err = f.run(t, "history", "ffffffff")
	assert.ErrorIs(t, err, history.ErrNotFound)
}

func TestHistoryCmd_EmptyJSON(t *testing.T) {
	f := newFixture(t)

	stdout, _, err := f.run(t, "history", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", stdout)
}

func TestHistoryCmd_Disabled(t *testing.T) {
	f := newFixture(t)
	f.app.Config.History.Enabled = false

	stdout, _, err := f.run(t, "history")
	require.NoError(t, err)
	assert.Contains(t, stdout, "History is disabled")

	_, _, err = f.run(t, "install", "--yes", "firefox")
	require.NoError(t, err)
	assert.NoFileExists(t, f.app.Config.Paths.DBFile)
}
