// Package terminal runs plans that need a TTY: inline in the current
// terminal or in a separate terminal emulator window.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/quantmind-br/pacfront/internal/helpers"
	"github.com/quantmind-br/pacfront/internal/plan"
	"github.com/quantmind-br/pacfront/internal/security"
)

// ErrNoTerminal is returned when no supported terminal emulator is installed
var ErrNoTerminal = errors.New("no terminal emulator found: install konsole, kitty or xterm, or set $TERMINAL")

// Mode selects where mutating commands run
type Mode string

const (
	ModeInline   Mode = "inline"
	ModeExternal Mode = "external"
)

// ParseMode parses a configured execution mode, defaulting to inline
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "inline":
		return ModeInline, nil
	case "external":
		return ModeExternal, nil
	default:
		return "", fmt.Errorf("unknown terminal mode %q (want inline or external)", s)
	}
}

// Fallbacks lists emulators tried after konsole and $TERMINAL, in order
var Fallbacks = []string{
	"kitty", "xfce4-terminal", "gnome-terminal", "kgx",
	"xterm", "tilix", "foot", "wezterm",
}

const alacrittyLog = "/tmp/alacritty-pacfront.log"

// Options configures the launcher
type Options struct {
	Preferred string
	KeepOpen  bool
}

// Launcher starts plans in a terminal
type Launcher struct {
	runner  helpers.CommandRunner
	opts    Options
	log     *zerolog.Logger
	getenv  func(string) string
	environ func() []string
}

// NewLauncher creates a launcher using the process environment
func NewLauncher(runner helpers.CommandRunner, opts Options, log *zerolog.Logger) *Launcher {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	return &Launcher{
		runner:  runner,
		opts:    opts,
		log:     log,
		getenv:  os.Getenv,
		environ: os.Environ,
	}
}

// WithEnv replaces the environment lookups, for tests
func (l *Launcher) WithEnv(env []string) *Launcher {
	l.environ = func() []string { return env }
	l.getenv = func(key string) string {
		prefix := key + "="
		for _, kv := range env {
			if strings.HasPrefix(kv, prefix) {
				return kv[len(prefix):]
			}
		}
		return ""
	}
	return l
}

// Options returns the launcher options
func (l *Launcher) Options() Options {
	return l.opts
}

// SetOptions updates the launcher options
func (l *Launcher) SetOptions(opts Options) {
	l.opts = opts
}

// Detect picks the terminal emulator: the configured one when installed,
// then konsole, then $TERMINAL unless it is alacritty, then the fallbacks.
func (l *Launcher) Detect() (string, error) {
	if pref := strings.TrimSpace(l.opts.Preferred); pref != "" {
		if err := security.ValidateCommandArg(pref); err != nil {
			return "", fmt.Errorf("invalid preferred terminal: %w", err)
		}
		if l.runner.CommandExists(pref) {
			return pref, nil
		}
		l.log.Warn().Str("terminal", pref).Msg("preferred terminal not found, detecting")
	}

	if l.runner.CommandExists("konsole") {
		return "konsole", nil
	}

	if env := strings.TrimSpace(l.getenv("TERMINAL")); env != "" && baseName(env) != "alacritty" {
		if security.ValidateCommandArg(env) == nil && l.runner.CommandExists(env) {
			return env, nil
		}
	}

	for _, name := range Fallbacks {
		if l.runner.CommandExists(name) {
			return name, nil
		}
	}

	return "", ErrNoTerminal
}

// Args builds the emulator command line that runs script through bash -lc
func Args(term, script string) []string {
	switch baseName(term) {
	case "xfce4-terminal":
		return []string{term, "--hold", "-x", "bash", "-lc", script}
	case "gnome-terminal", "kgx":
		return []string{term, "--", "bash", "-lc", script}
	default:
		return []string{term, "-e", "bash", "-lc", script}
	}
}

// KeepOpenScript keeps the window open after cmd: it waits for Enter on
// success and drops into an interactive shell on failure.
func KeepOpenScript(cmd string) string {
	return cmd + ` && echo "\nOperation Complete! Press Enter to close." && read -r` +
		` || (echo "\nCommand failed; opening interactive shell."; exec bash)`
}

// PauseScript runs cmd, waits for Enter when pause is set and exits with
// cmd's status.
func PauseScript(cmd string, pause bool) string {
	if !pause {
		return cmd
	}
	return cmd + `; rc=$?; if [ $rc -eq 0 ]; then echo; echo "Operation Complete! Press Enter to return."; ` +
		`else echo; echo "Command failed (exit $rc). Press Enter to return."; fi; read -r; exit $rc`
}

// Env strips askpass helpers so sudo and ssh prompt in the TTY, and keeps
// alacritty away from user configs that may break -e.
func Env(environ []string, term string) []string {
	out := make([]string, 0, len(environ)+2)
	hasLog := false
	for _, kv := range environ {
		key, _, _ := strings.Cut(kv, "=")
		switch key {
		case "SUDO_ASKPASS", "SSH_ASKPASS":
			continue
		case "ALACRITTY_LOG":
			hasLog = true
		}
		out = append(out, kv)
	}

	if baseName(term) == "alacritty" {
		out = append(out, "ALACRITTY_CONFIG_FILE=/dev/null")
		if !hasLog {
			out = append(out, "ALACRITTY_LOG="+alacrittyLog)
		}
	}
	return out
}

// ExternalCommand builds the emulator command for a plan without starting it
func (l *Launcher) ExternalCommand(ctx context.Context, p *plan.Plan) (*exec.Cmd, error) {
	if p == nil || len(p.Steps) == 0 {
		return nil, plan.ErrNothingSelected
	}

	term, err := l.Detect()
	if err != nil {
		return nil, err
	}

	script := p.Script()
	if l.opts.KeepOpen {
		script = KeepOpenScript(script)
	}

	argv := Args(term, script)
	cmd := l.runner.PrepareCommand(context.WithoutCancel(ctx), argv[0], argv[1:]...)
	cmd.Env = Env(l.environ(), term)
	return cmd, nil
}

// Launch opens the plan in a new terminal window and returns once the
// emulator has started. The window outlives pacfront.
func (l *Launcher) Launch(ctx context.Context, p *plan.Plan) (string, error) {
	cmd, err := l.ExternalCommand(ctx, p)
	if err != nil {
		return "", err
	}

	l.log.Info().Str("terminal", cmd.Path).Str("command", p.Script()).Msg("launching external terminal")
	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("failed to start terminal: %w", err)
	}
	go func() {
		_ = cmd.Wait()
	}()
	return filepath.Base(cmd.Path), nil
}

// InlineCommand builds a bash -lc command running the plan in the current
// terminal. The caller wires stdio or hands it to the TUI.
func (l *Launcher) InlineCommand(ctx context.Context, p *plan.Plan) (*exec.Cmd, error) {
	if p == nil || len(p.Steps) == 0 {
		return nil, plan.ErrNothingSelected
	}

	script := PauseScript(p.Script(), l.opts.KeepOpen)
	cmd := l.runner.PrepareCommand(ctx, "bash", "-lc", script)
	cmd.Env = Env(l.environ(), "")
	return cmd, nil
}

// RunInline runs the plan attached to the given stdio and returns its exit code
func (l *Launcher) RunInline(ctx context.Context, p *plan.Plan, stdin *os.File, stdout, stderr *os.File) (int, error) {
	cmd, err := l.InlineCommand(ctx, p)
	if err != nil {
		return -1, err
	}
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	l.log.Info().Str("command", p.Script()).Msg("running inline")
	err = cmd.Run()
	return helpers.ExitCode(err), err
}

func baseName(term string) string {
	return strings.ToLower(filepath.Base(term))
}
