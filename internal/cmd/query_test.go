package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantmind-br/pacfront/internal/syspkg"
)

func TestSearchCmd(t *testing.T) {
	f := newFixture(t)

	stdout, stderr, err := f.run(t, "search", "fire")
	requireNoError(t, err, stdout, stderr)

	assert.Contains(t, stdout, "firefox")
	assert.Contains(t, stdout, "firefox-nightly")
	assert.Contains(t, stdout, "Found 3 package(s).")
	assert.NotContains(t, stdout, "vim")
}

func TestSearchCmd_HidesInstalled(t *testing.T) {
	f := newFixture(t)

	stdout, _, err := f.run(t, "search", "vim")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No packages found.")

	f = newFixture(t)
	stdout, _, err = f.run(t, "search", "vim", "--installed")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Found 1 package(s).")
}

func TestSearchCmd_JSONAndSource(t *testing.T) {
	f := newFixture(t)

	stdout, _, err := f.run(t, "search", "fire", "--json", "--source", "yay")
	require.NoError(t, err)

	var pkgs []syspkg.Package
	require.NoError(t, json.Unmarshal([]byte(stdout), &pkgs))
	require.Len(t, pkgs, 1)
	assert.Equal(t, "firefox-nightly", pkgs[0].Name)
	assert.Equal(t, syspkg.SourceAUR, pkgs[0].Source)
}

func TestSearchCmd_Limit(t *testing.T) {
	f := newFixture(t)
	f.app.Config.UI.SearchLimit = 2

	stdout, _, err := f.run(t, "search", "fire")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Found 2 package(s). Showing the first 2.")
}

func TestSearchCmd_Errors(t *testing.T) {
	t.Run("invalid term", func(t *testing.T) {
		f := newFixture(t)
		_, _, err := f.run(t, "search", "--", "-Syu")
		assert.ErrorIs(t, err, syspkg.ErrInvalidTerm)
	})

	t.Run("unknown source", func(t *testing.T) {
		f := newFixture(t)
		_, _, err := f.run(t, "search", "fire", "--source", "flatpak")
		assert.ErrorContains(t, err, "unknown source")
	})

	t.Run("yay unusable still lists repo hits", func(t *testing.T) {
		f := newFixture(t)
		f.aur.usable = false

		stdout, stderr, err := f.run(t, "search", "fire")
		require.NoError(t, err)
		assert.Contains(t, stdout, "Found 2 package(s).")
		assert.Contains(t, stderr, "yay is not available")
	})

	t.Run("both sources failing", func(t *testing.T) {
		f := newFixture(t)
		f.repo.err = errBoom
		f.aur.err = errBoom

		_, _, err := f.run(t, "search", "fire")
		assert.ErrorContains(t, err, "search failed")
	})
}

func TestInstalledCmd(t *testing.T) {
	f := newFixture(t)

	stdout, stderr, err := f.run(t, "installed")
	requireNoError(t, err, stdout, stderr)
	for _, name := range []string{"bash", "htop", "vim", "yay"} {
		assert.Contains(t, stdout, name)
	}
	assert.Contains(t, stdout, "Total: 4 package(s)")

	stdout, _, err = f.run(t, "list", "--filter", "ht")
	require.NoError(t, err)
	assert.Contains(t, stdout, "htop")
	assert.NotContains(t, stdout, "bash")

	stdout, _, err = f.run(t, "installed", "--filter", "zsh")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No packages match the filter.")

	stdout, _, err = f.run(t, "installed", "--json", "--source", "yay")
	require.NoError(t, err)
	var pkgs []syspkg.Package
	require.NoError(t, json.Unmarshal([]byte(stdout), &pkgs))
	require.Len(t, pkgs, 1)
	assert.Equal(t, "yay", pkgs[0].Name)
}

func TestInstalledCmd_Empty(t *testing.T) {
	f := newFixture(t)
	f.repo.native = nil
	f.repo.foreign = nil

	stdout, _, err := f.run(t, "installed")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No explicitly installed packages found.")
}

func TestUpdatesCmd(t *testing.T) {
	f := newFixture(t)

	stdout, stderr, err := f.run(t, "updates")
	requireNoError(t, err, stdout, stderr)
	assert.Contains(t, stdout, "bash")
	assert.Contains(t, stdout, "5.2.037-2")
	assert.Contains(t, stdout, "Found 2 update(s): 1 repo, 1 AUR.")

	stdout, _, err = f.run(t, "updates", "--json")
	require.NoError(t, err)
	var updates []syspkg.Update
	require.NoError(t, json.Unmarshal([]byte(stdout), &updates))
	assert.Len(t, updates, 2)
}

func TestUpdatesCmd_FullyUpdated(t *testing.T) {
	f := newFixture(t)
	f.repo.updates = nil
	f.aur.updates = nil

	stdout, _, err := f.run(t, "updates")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Your system is fully updated")
}

func TestInfoCmd(t *testing.T) {
	f := newFixture(t)

	stdout, stderr, err := f.run(t, "info", "firefox")
	requireNoError(t, err, stdout, stderr)
	assert.Contains(t, stdout, "131.0-1")
	assert.Contains(t, stdout, "https://www.mozilla.org/firefox/")
	assert.Contains(t, stdout, "Pacman")
	assert.Regexp(t, `Installed\s*:\s*no`, stdout)
}

func TestInfoCmd_AURFallback(t *testing.T) {
	f := newFixture(t)

	stdout, _, err := f.run(t, "info", "firefox-nightly")
	require.NoError(t, err)
	assert.Contains(t, stdout, "133.0a1-1")
	assert.Contains(t, stdout, "Yay")

	f = newFixture(t)
	f.aur.usable = false
	_, _, err = f.run(t, "info", "firefox-nightly")
	assert.ErrorIs(t, err, syspkg.ErrPackageNotFound)
}

func TestInfoCmd_Files(t *testing.T) {
	f := newFixture(t)

	stdout, _, err := f.run(t, "info", "vim", "--files")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Files (2)")
	assert.Contains(t, stdout, "/usr/bin/vim")

	stdout, _, err = f.run(t, "info", "firefox", "--files")
	require.NoError(t, err)
	assert.Contains(t, stdout, "firefox is not installed; no files to list.")
}

func TestInfoCmd_JSON(t *testing.T) {
	f := newFixture(t)

	stdout, _, err := f.run(t, "info", "vim", "--json", "--files")
	require.NoError(t, err)

	var got struct {
		Name      string   `json:"name"`
		Source    string   `json:"source"`
		Installed bool     `json:"installed"`
		Files     []string `json:"files"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, "vim", got.Name)
	assert.Equal(t, "pacman", got.Source)
	assert.True(t, got.Installed)
	assert.Equal(t, []string{"/usr/bin/vim", "/usr/share/vim/"}, got.Files)
}

func TestInfoCmd_InvalidName(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.run(t, "info", "vim;rm")
	assert.Error(t, err)
}
