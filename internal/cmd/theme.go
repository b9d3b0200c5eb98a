package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quantmind-br/pacfront/internal/theme"
	"github.com/quantmind-br/pacfront/internal/ui"
)

// NewThemeCmd creates the theme command group
func NewThemeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "List, select, export and import window themes",
	}

	cmd.AddCommand(newThemeListCmd(app))
	cmd.AddCommand(newThemeSetCmd(app))
	cmd.AddCommand(newThemeExportCmd(app))
	cmd.AddCommand(newThemeImportCmd(app))

	return cmd
}

func newThemeListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available themes",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			current, _ := theme.Canonical(app.Config.UI.Theme)
			for _, name := range theme.Names() {
				if name == current {
					fmt.Fprintf(cmd.OutOrStdout(), "* %s\n", ui.Highlight.Sprint(name))
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", name)
				}
			}
		},
	}
}

func newThemeSetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:       "set <name>",
		Short:     "Select the window theme",
		Args:      cobra.ExactArgs(1),
		ValidArgs: theme.Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, ok := theme.Canonical(args[0])
			if !ok {
				return fmt.Errorf("%w: %q", theme.ErrUnknownTheme, args[0])
			}
			if name == theme.Custom {
				if _, err := theme.Import(app.Fs, app.Paths.GetCustomThemeFile()); err != nil {
					return fmt.Errorf("no usable custom theme, run theme import first: %w", err)
				}
			}

			app.Config.UI.Theme = name
			if err := app.Config.Save(); err != nil {
				return fmt.Errorf("save settings: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.SprintSuccess("Theme set to %s", name))
			return nil
		},
	}
}

func newThemeExportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write the active theme to a TOML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.Config
			p, err := theme.Resolve(app.Fs, cfg.UI.Theme, app.Paths.GetCustomThemeFile())
			if err != nil {
				app.Log.Warn().Err(err).Str("theme", cfg.UI.Theme).Msg("exporting the System theme instead")
			}

			if err := theme.Export(app.Fs, args[0], p); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.SprintSuccess("Exported %s theme to %s", p.Name, args[0]))
			return nil
		},
	}
}

func newThemeImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import a TOML theme and select it as Custom",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := theme.Import(app.Fs, args[0])
			if err != nil {
				return err
			}

			dest := app.Paths.GetCustomThemeFile()
			if err := theme.Export(app.Fs, dest, p); err != nil {
				return err
			}

			cfg := app.Config
			cfg.UI.Theme = theme.Custom
			cfg.UI.CustomThemeFile = dest
			if err := cfg.Save(); err != nil {
				return fmt.Errorf("save settings: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.SprintSuccess("Imported %s as the Custom theme", args[0]))
			return nil
		},
	}
}
