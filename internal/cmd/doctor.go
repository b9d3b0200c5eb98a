package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/quantmind-br/pacfront/internal/fsops"
	"github.com/quantmind-br/pacfront/internal/terminal"
	"github.com/quantmind-br/pacfront/internal/ui"
)

// doctorReport collects check results while printing them
type doctorReport struct {
	out      io.Writer
	issues   []string
	warnings []string
}

func (r *doctorReport) ok(format string, args ...any) {
	fmt.Fprintf(r.out, "%s %s\n", ui.CheckMark, fmt.Sprintf(format, args...))
}

func (r *doctorReport) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(r.out, "%s %s\n", ui.Warning.Sprint("!"), msg)
	r.warnings = append(r.warnings, msg)
}

func (r *doctorReport) fail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(r.out, "%s %s\n", ui.CrossMark, msg)
	r.issues = append(r.issues, msg)
}

func (r *doctorReport) info(key, value string) {
	ui.PrintKeyValue(r.out, key, value)
}

// NewDoctorCmd creates the doctor command
func NewDoctorCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the tools and paths pacfront depends on",
		Long:  `Check that pacman, sudo and yay are usable, that a terminal emulator can be found, and that the pacman database and pacfront's own files are accessible.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r := &doctorReport{out: cmd.OutOrStdout()}

			ui.PrintHeader(r.out, "Tools")
			checkTools(ctx, app, r)

			ui.PrintHeader(r.out, "Terminal")
			checkTerminal(app, r)

			ui.PrintHeader(r.out, "Files")
			checkFiles(ctx, app, r)

			ui.PrintHeader(r.out, "System")
			checkSystem(r)

			ui.PrintHeader(r.out, "Summary")
			if len(r.issues) == 0 {
				fmt.Fprintln(r.out, ui.SprintSuccess("All critical checks passed!"))
			} else {
				fmt.Fprintln(r.out, ui.Error.Sprintf("Found %d issue(s):", len(r.issues)))
				ui.PrintList(r.out, r.issues)
			}
			if len(r.warnings) > 0 {
				fmt.Fprintln(r.out, ui.Warning.Sprintf("Found %d warning(s):", len(r.warnings)))
				ui.PrintList(r.out, r.warnings)
			}

			if len(r.issues) > 0 {
				return fmt.Errorf("system check failed with %d issue(s)", len(r.issues))
			}
			return nil
		},
	}

	return cmd
}

func checkTools(ctx context.Context, app *App, r *doctorReport) {
	tools := app.Planner().Tools()

	for _, bin := range []string{tools.Pacman, tools.Sudo} {
		if app.Runner.CommandExists(bin) {
			r.ok("%s: found", bin)
		} else {
			r.fail("%s: NOT FOUND", bin)
		}
	}

	switch {
	case !app.Runner.CommandExists(tools.Yay):
		r.warn("%s: not found (AUR search, updates and installs are disabled)", tools.Yay)
	case !app.AUR.Usable(ctx):
		r.warn("%s: found but cannot run (rebuild it after the last system upgrade)", tools.Yay)
	default:
		r.ok("%s: usable", tools.Yay)
	}
}

func checkTerminal(app *App, r *doctorReport) {
	mode, err := terminal.ParseMode(app.Config.Terminal.Mode)
	if err != nil {
		r.fail("terminal.mode: %v", err)
		mode = terminal.ModeInline
	}
	r.info("Mode", string(mode))

	term, err := app.Launcher.Detect()
	switch {
	case err == nil:
		r.ok("terminal emulator: %s", term)
	case mode == terminal.ModeExternal:
		r.fail("terminal emulator: %v", err)
	default:
		r.warn("terminal emulator: %v (only needed for external mode)", err)
	}
}

func checkFiles(ctx context.Context, app *App, r *doctorReport) {
	cfg := app.Config

	if err := unix.Access(app.LocalDBDir, unix.R_OK|unix.X_OK); err != nil {
		r.fail("pacman database %s: %v", app.LocalDBDir, err)
	} else {
		r.ok("pacman database: %s", app.LocalDBDir)
	}

	if f := cfg.File(); f != "" {
		r.info("Config file", f)
	}

	dirs := []struct {
		name string
		path string
	}{
		{"data directory", cfg.Paths.DataDir},
		{"log directory", filepath.Dir(cfg.Paths.LogFile)},
	}
	for _, d := range dirs {
		if d.path == "" || d.path == "." {
			continue
		}
		if err := fsops.EnsureDir(app.Fs, d.path, 0755); err != nil {
			r.fail("%s %s: %v", d.name, d.path, err)
			continue
		}
		if err := fsops.CheckWritable(app.Fs, d.path); err != nil {
			r.fail("%s %s: %v", d.name, d.path, err)
			continue
		}
		r.ok("%s: %s", d.name, d.path)
	}

	store, err := app.OpenHistory(ctx)
	switch {
	case err != nil:
		r.warn("history database: %v", err)
	case store == nil:
		r.info("History", "disabled")
	default:
		r.ok("history database: %s", store.Path())
		store.Close()
	}
}

func checkSystem(r *doctorReport) {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err == nil {
		r.info("Kernel", fmt.Sprintf("%s %s (%s)",
			unix.ByteSliceToString(uts.Sysname[:]),
			unix.ByteSliceToString(uts.Release[:]),
			unix.ByteSliceToString(uts.Machine[:])))
	}

	if unix.Geteuid() == 0 {
		r.warn("running as root: yay refuses to build packages as root")
	}

	for _, env := range []string{"TERMINAL", "XDG_DATA_HOME", "XDG_CONFIG_HOME"} {
		if v := os.Getenv(env); v != "" {
			r.info(env, v)
		} else {
			r.info(env, "not set")
		}
	}
}
