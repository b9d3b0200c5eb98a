package cmd

import (
	"github.com/spf13/cobra"

	"github.com/quantmind-br/pacfront/internal/ui"
)

// NewRootCmd creates the root command
func NewRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pacfront",
		Short: "Front-end for pacman and yay",
		Long: `Search, install, update and remove Arch Linux packages from the official
repositories (pacman) and the AUR (yay). Run without a subcommand to open the window.`,
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			ui.InitColors(app.Config.Logging.Color)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUI(cmd.Context(), app)
		},
	}

	cmd.AddCommand(NewUICmd(app))
	cmd.AddCommand(NewSearchCmd(app))
	cmd.AddCommand(NewInstalledCmd(app))
	cmd.AddCommand(NewUpdatesCmd(app))
	cmd.AddCommand(NewInfoCmd(app))
	cmd.AddCommand(NewInstallCmd(app))
	cmd.AddCommand(NewRemoveCmd(app))
	cmd.AddCommand(NewUpgradeCmd(app))
	cmd.AddCommand(NewHistoryCmd(app))
	cmd.AddCommand(NewDoctorCmd(app))
	cmd.AddCommand(NewDesktopCmd(app))
	cmd.AddCommand(NewThemeCmd(app))
	cmd.AddCommand(NewCompletionCmd(app))
	cmd.AddCommand(NewVersionCmd(app.Version))

	return cmd
}
