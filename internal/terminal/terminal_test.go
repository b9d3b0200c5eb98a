package terminal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantmind-br/pacfront/internal/helpers"
	"github.com/quantmind-br/pacfront/internal/plan"
)

func runnerWith(installed ...string) *helpers.MockCommandRunner {
	set := make(map[string]bool, len(installed))
	for _, n := range installed {
		set[n] = true
	}
	return &helpers.MockCommandRunner{
		CommandExistsFunc: func(name string) bool { return set[name] },
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name      string
		installed []string
		env       []string
		preferred string
		want      string
		wantErr   error
	}{
		{
			name:      "konsole wins",
			installed: []string{"konsole", "kitty", "wezterm"},
			env:       []string{"TERMINAL=kitty"},
			want:      "konsole",
		},
		{
			name:      "TERMINAL used when on PATH",
			installed: []string{"wezterm", "xterm"},
			env:       []string{"TERMINAL=wezterm"},
			want:      "wezterm",
		},
		{
			name:      "alacritty TERMINAL ignored",
			installed: []string{"alacritty", "xterm"},
			env:       []string{"TERMINAL=/usr/bin/alacritty"},
			want:      "xterm",
		},
		{
			name:      "TERMINAL missing from PATH",
			installed: []string{"foot"},
			env:       []string{"TERMINAL=st"},
			want:      "foot",
		},
		{
			name:      "fallback order",
			installed: []string{"xterm", "gnome-terminal"},
			want:      "gnome-terminal",
		},
		{
			name:      "preferred overrides konsole",
			installed: []string{"konsole", "alacritty"},
			preferred: "alacritty",
			want:      "alacritty",
		},
		{
			name:      "missing preferred falls back",
			installed: []string{"tilix"},
			preferred: "ghostty",
			want:      "tilix",
		},
		{
			name:    "nothing installed",
			wantErr: ErrNoTerminal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLauncher(runnerWith(tt.installed...), Options{Preferred: tt.preferred}, nil).WithEnv(tt.env)
			got, err := l.Detect()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetect_RejectsInjectedPreferred(t *testing.T) {
	l := NewLauncher(runnerWith("xterm"), Options{Preferred: "xterm; rm -rf ~"}, nil)
	_, err := l.Detect()
	assert.Error(t, err)
}

func TestArgs(t *testing.T) {
	tests := []struct {
		term string
		want []string
	}{
		{"konsole", []string{"konsole", "-e", "bash", "-lc", "S"}},
		{"/usr/bin/kitty", []string{"/usr/bin/kitty", "-e", "bash", "-lc", "S"}},
		{"alacritty", []string{"alacritty", "-e", "bash", "-lc", "S"}},
		{"xfce4-terminal", []string{"xfce4-terminal", "--hold", "-x", "bash", "-lc", "S"}},
		{"gnome-terminal", []string{"gnome-terminal", "--", "bash", "-lc", "S"}},
		{"kgx", []string{"kgx", "--", "bash", "-lc", "S"}},
		{"st", []string{"st", "-e", "bash", "-lc", "S"}},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			assert.Equal(t, tt.want, Args(tt.term, "S"))
		})
	}
}

func TestKeepOpenScript(t *testing.T) {
	got := KeepOpenScript("yay -Syu")
	assert.Equal(t,
		`yay -Syu && echo "\nOperation Complete! Press Enter to close." && read -r || (echo "\nCommand failed; opening interactive shell."; exec bash)`,
		got)
}

func TestPauseScript(t *testing.T) {
	assert.Equal(t, "yay -Syu", PauseScript("yay -Syu", false))

	got := PauseScript("yay -Syu", true)
	assert.Contains(t, got, "yay -Syu; rc=$?")
	assert.Contains(t, got, "read -r")
	assert.Contains(t, got, "exit $rc")
}

func TestEnv(t *testing.T) {
	environ := []string{"HOME=/home/u", "SUDO_ASKPASS=/usr/lib/ssh/x11-ssh-askpass", "SSH_ASKPASS=x", "PATH=/usr/bin"}

	assert.Equal(t, []string{"HOME=/home/u", "PATH=/usr/bin"}, Env(environ, "kitty"))

	got := Env(environ, "/usr/bin/alacritty")
	assert.Contains(t, got, "ALACRITTY_CONFIG_FILE=/dev/null")
	assert.Contains(t, got, "ALACRITTY_LOG="+alacrittyLog)

	got = Env(append(environ, "ALACRITTY_LOG=/tmp/mine.log"), "alacritty")
	assert.Contains(t, got, "ALACRITTY_LOG=/tmp/mine.log")
	assert.NotContains(t, got, "ALACRITTY_LOG="+alacrittyLog)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeInline, m)

	m, err = ParseMode("External")
	require.NoError(t, err)
	assert.Equal(t, ModeExternal, m)

	_, err = ParseMode("tmux")
	assert.Error(t, err)
}

func testPlan(t *testing.T) *plan.Plan {
	t.Helper()
	p, err := plan.New(plan.DefaultTools()).Install([]plan.Item{{Name: "vim"}}, true)
	require.NoError(t, err)
	return p
}

func TestExternalCommand(t *testing.T) {
	env := []string{"SUDO_ASKPASS=x", "LANG=C"}

	l := NewLauncher(runnerWith("xfce4-terminal"), Options{KeepOpen: false}, nil).WithEnv(env)
	cmd, err := l.ExternalCommand(context.Background(), testPlan(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"xfce4-terminal", "--hold", "-x", "bash", "-lc", "sudo pacman -S --needed vim"}, cmd.Args)
	assert.Equal(t, []string{"LANG=C"}, cmd.Env)

	l.SetOptions(Options{KeepOpen: true})
	cmd, err = l.ExternalCommand(context.Background(), testPlan(t))
	require.NoError(t, err)
	assert.Equal(t, KeepOpenScript("sudo pacman -S --needed vim"), cmd.Args[len(cmd.Args)-1])
}

func TestExternalCommand_Errors(t *testing.T) {
	l := NewLauncher(runnerWith(), Options{}, nil).WithEnv(nil)

	_, err := l.ExternalCommand(context.Background(), testPlan(t))
	assert.ErrorIs(t, err, ErrNoTerminal)

	_, err = l.ExternalCommand(context.Background(), &plan.Plan{})
	assert.ErrorIs(t, err, plan.ErrNothingSelected)
}

func TestInlineCommand(t *testing.T) {
	l := NewLauncher(runnerWith(), Options{}, nil).WithEnv([]string{"SSH_ASKPASS=x", "TERM=xterm"})

	cmd, err := l.InlineCommand(context.Background(), testPlan(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"bash", "-lc", "sudo pacman -S --needed vim"}, cmd.Args)
	assert.Equal(t, []string{"TERM=xterm"}, cmd.Env)

	_, err = l.InlineCommand(context.Background(), nil)
	assert.ErrorIs(t, err, plan.ErrNothingSelected)
}
