package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantmind-br/pacfront/internal/syspkg"
)

var (
	vim     = Item{Name: "vim", Source: syspkg.SourceRepo}
	firefox = Item{Name: "firefox", Source: syspkg.SourceRepo}
	spotify = Item{Name: "spotify", Source: syspkg.SourceAUR}
)

func TestInstall(t *testing.T) {
	p := New(Tools{})

	plan, err := p.Install([]Item{vim, spotify, firefox}, true)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"sudo pacman -S --needed vim firefox",
		"yay -S spotify",
	}, plan.Commands())
	assert.Equal(t, "sudo pacman -S --needed vim firefox && yay -S spotify", plan.Script())
	assert.Equal(t, []string{"vim", "firefox", "spotify"}, plan.Packages())
	assert.False(t, plan.Degraded)
	assert.Empty(t, plan.Warning())
}

func TestInstall_YayUnavailable(t *testing.T) {
	p := New(DefaultTools())

	t.Run("mixed selection degrades", func(t *testing.T) {
		plan, err := p.Install([]Item{vim, spotify}, false)
		require.NoError(t, err)
		assert.True(t, plan.Degraded)
		assert.Equal(t, []string{"spotify"}, plan.Dropped)
		assert.Equal(t, []string{"sudo pacman -S --needed vim"}, plan.Commands())
		assert.Contains(t, plan.Warning(), "spotify")
	})

	t.Run("AUR only fails", func(t *testing.T) {
		_, err := p.Install([]Item{spotify}, false)
		assert.ErrorIs(t, err, ErrYayUnavailable)
		assert.ErrorIs(t, err, syspkg.ErrYayUnavailable)
	})

	t.Run("repo only is unaffected", func(t *testing.T) {
		plan, err := p.Install([]Item{vim}, false)
		require.NoError(t, err)
		assert.False(t, plan.Degraded)
	})
}

func TestUpdateSelected(t *testing.T) {
	plan, err := New(DefaultTools()).UpdateSelected([]Item{spotify, vim}, true)
	require.NoError(t, err)
	assert.Equal(t, ActionUpdate, plan.Action)
	assert.Equal(t, []string{
		"sudo pacman -S --needed vim",
		"yay -S --needed spotify",
	}, plan.Commands())
}

func TestRemove(t *testing.T) {
	p := New(DefaultTools())

	plan, err := p.Remove([]Item{vim, spotify}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"sudo pacman -Rns vim", "yay -Rns spotify"}, plan.Commands())

	plan, err = p.Remove([]Item{vim, spotify}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"sudo pacman -Rns vim spotify"}, plan.Commands())
	assert.True(t, plan.Degraded)
	assert.Empty(t, plan.Dropped)
	assert.NotEmpty(t, plan.Warning())

	plan, err = p.Remove([]Item{vim}, false)
	require.NoError(t, err)
	assert.False(t, plan.Degraded)
}

func TestUpgradeAll(t *testing.T) {
	p := New(Tools{Pacman: "/usr/bin/pacman", Sudo: "doas"})

	plan := p.UpgradeAll(true)
	assert.Equal(t, "yay -Syu", plan.Script())
	assert.False(t, plan.Degraded)
	assert.Empty(t, plan.Packages())

	plan = p.UpgradeAll(false)
	assert.Equal(t, "doas /usr/bin/pacman -Syu", plan.Script())
	assert.True(t, plan.Degraded)
	assert.Contains(t, plan.Warning(), "pacman")
}

func TestSelectionValidation(t *testing.T) {
	p := New(DefaultTools())

	_, err := p.Install(nil, true)
	assert.ErrorIs(t, err, ErrNothingSelected)

	_, err = p.Remove([]Item{}, true)
	assert.ErrorIs(t, err, ErrNothingSelected)

	_, err = p.Install([]Item{{Name: "--overwrite=*", Source: syspkg.SourceRepo}}, true)
	assert.Error(t, err)

	plan, err := p.Install([]Item{vim, vim}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"vim"}, plan.Packages())
}

func TestStep_String(t *testing.T) {
	s := Step{Tool: "pacman", Args: []string{"-S"}, Packages: []string{"libc++"}, Sudo: "sudo"}
	assert.Equal(t, []string{"sudo", "pacman", "-S", "libc++"}, s.Argv())
	assert.Equal(t, "sudo pacman -S libc++", s.String())

	s = Step{Tool: "pacman", Args: []string{"--config", "/tmp/my pacman.conf", "-Syu"}}
	assert.Equal(t, "pacman --config '/tmp/my pacman.conf' -Syu", s.String())
}

func TestFromSelections(t *testing.T) {
	items := FromPackages([]syspkg.Package{{Name: "a", Source: syspkg.SourceAUR}})
	assert.Equal(t, []Item{{Name: "a", Source: syspkg.SourceAUR}}, items)

	items = FromUpdates([]syspkg.Update{{Name: "b", Source: syspkg.SourceRepo}})
	assert.Equal(t, []Item{{Name: "b", Source: syspkg.SourceRepo}}, items)
}
