package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewCompletionCmd creates the completion command
func NewCompletionCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for pacfront.

Bash:
  $ source <(pacfront completion bash)

  # To load completions for each session, execute once:
  $ pacfront completion bash > ~/.local/share/bash-completion/completions/pacfront

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ pacfront completion zsh > "${fpath[1]}/_pacfront"

Fish:
  $ pacfront completion fish | source

  # To load completions for each session, execute once:
  $ pacfront completion fish > ~/.config/fish/completions/pacfront.fish
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			shell := args[0]
			out := cmd.OutOrStdout()

			var err error
			switch shell {
			case "bash":
				err = cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				err = cmd.Root().GenZshCompletion(out)
			case "fish":
				err = cmd.Root().GenFishCompletion(out, true)
			}
			if err != nil {
				return fmt.Errorf("generate %s completion: %w", shell, err)
			}

			app.Log.Debug().Str("shell", shell).Msg("generated shell completion")
			return nil
		},
	}

	return cmd
}
