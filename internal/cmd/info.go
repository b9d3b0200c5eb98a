package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quantmind-br/pacfront/internal/security"
	"github.com/quantmind-br/pacfront/internal/syspkg"
	"github.com/quantmind-br/pacfront/internal/ui"
)

// infoOutput is the JSON shape of the info command
type infoOutput struct {
	*syspkg.Details
	Installed bool     `json:"installed"`
	Files     []string `json:"files,omitempty"`
}

// NewInfoCmd creates the info command
func NewInfoCmd(app *App) *cobra.Command {
	var (
		jsonOutput bool
		aurOnly    bool
		showFiles  bool
	)

	cmd := &cobra.Command{
		Use:   "info <package>",
		Short: "Show package details",
		Long:  `Show the -Si details of a package. The repositories are asked first, then the AUR.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if err := security.ValidatePackageName(name); err != nil {
				return err
			}

			ctx := cmd.Context()
			d, err := lookupDetails(ctx, app, name, aurOnly)
			if err != nil {
				return err
			}

			installed, err := app.Repo.IsInstalled(ctx, name)
			if err != nil {
				app.Log.Debug().Err(err).Str("package", name).Msg("installed check failed")
			}

			var files []string
			if showFiles && installed {
				files, err = app.Repo.ListFiles(ctx, name)
				if err != nil {
					return fmt.Errorf("list files of %s: %w", name, err)
				}
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(out, infoOutput{Details: d, Installed: installed, Files: files})
			}

			ui.PrintDetails(out, d)
			fmt.Fprintln(out)
			ui.PrintKeyValue(out, "Source", ui.ColorizeSource(d.Source))
			if installed {
				ui.PrintKeyValue(out, "Installed", ui.Success.Sprint("yes"))
			} else {
				ui.PrintKeyValue(out, "Installed", "no")
			}

			if showFiles {
				fmt.Fprintln(out)
				if !installed {
					fmt.Fprintf(out, "%s is not installed; no files to list.\n", name)
					return nil
				}
				ui.PrintHeader(out, fmt.Sprintf("Files (%d)", len(files)))
				ui.PrintList(out, files)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	cmd.Flags().BoolVar(&aurOnly, "aur", false, "ask the AUR only")
	cmd.Flags().BoolVar(&showFiles, "files", false, "list the files an installed package owns")

	return cmd
}

// lookupDetails asks pacman, then yay when pacman does not know the package
func lookupDetails(ctx context.Context, app *App, name string, aurOnly bool) (*syspkg.Details, error) {
	cat := app.Catalog()

	if !aurOnly {
		d, err := cat.Details(ctx, syspkg.SourceRepo, name)
		if err == nil {
			return d, nil
		}
		if !errors.Is(err, syspkg.ErrPackageNotFound) {
			return nil, err
		}
		if !cat.YayUsable(ctx) {
			return nil, fmt.Errorf("%s: %w", name, syspkg.ErrPackageNotFound)
		}
	}

	d, err := cat.Details(ctx, syspkg.SourceAUR, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return d, nil
}
