package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quantmind-br/pacfront/internal/desktop"
	"github.com/quantmind-br/pacfront/internal/ui"
)

// NewDesktopCmd creates the desktop command group
func NewDesktopCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "desktop",
		Short: "Manage the application menu launcher",
		Long:  `Install or remove pacfront.desktop in the applications directory so the window can be opened from the application menu.`,
	}

	cmd.AddCommand(newDesktopInstallCmd(app))
	cmd.AddCommand(newDesktopRemoveCmd(app))
	cmd.AddCommand(newDesktopShowCmd(app))

	return cmd
}

func newDesktopInstallCmd(app *App) *cobra.Command {
	var execPath string

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install the launcher",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if execPath == "" {
				exe, err := app.Executable()
				if err != nil {
					return fmt.Errorf("locate pacfront executable: %w", err)
				}
				execPath = exe
			}

			path := app.Paths.GetDesktopFile()
			installer := desktop.NewInstaller(app.Fs, app.Updater, app.Log)
			if err := installer.Install(cmd.Context(), path, desktop.NewLauncher(execPath)); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.SprintSuccess("Launcher installed: %s", path))
			return nil
		},
	}

	cmd.Flags().StringVar(&execPath, "exec", "", "executable the launcher runs (default: this binary)")

	return cmd
}

func newDesktopRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove",
		Short: "Remove the launcher",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := app.Paths.GetDesktopFile()
			installer := desktop.NewInstaller(app.Fs, app.Updater, app.Log)

			removed, err := installer.Remove(cmd.Context(), path)
			if err != nil {
				return fmt.Errorf("remove launcher: %w", err)
			}
			if !removed {
				fmt.Fprintf(cmd.OutOrStdout(), "No launcher installed at %s\n", path)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.SprintSuccess("Launcher removed: %s", path))
			return nil
		},
	}
}

func newDesktopShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the installed launcher",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := app.Paths.GetDesktopFile()
			de, err := desktop.NewInstaller(app.Fs, app.Updater, app.Log).Load(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			ui.PrintHeader(out, path)
			ui.PrintKeyValue(out, "Name", de.Name)
			ui.PrintKeyValue(out, "Exec", de.Exec)
			ui.PrintKeyValue(out, "Icon", de.Icon)
			ui.PrintKeyValue(out, "Terminal", fmt.Sprint(de.Terminal))
			ui.PrintKeyValue(out, "Categories", strings.Join(de.Categories, ";"))
			return nil
		},
	}
}
