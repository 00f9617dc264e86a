package cli

import (
	"io"

	"github.com/spf13/cobra"
)

// shells maps each supported shell to its completion script generator.
var shells = map[string]func(root *cobra.Command, w io.Writer) error{
	"bash":       func(root *cobra.Command, w io.Writer) error { return root.GenBashCompletionV2(w, true) },
	"zsh":        func(root *cobra.Command, w io.Writer) error { return root.GenZshCompletion(w) },
	"fish":       func(root *cobra.Command, w io.Writer) error { return root.GenFishCompletion(w, true) },
	"powershell": func(root *cobra.Command, w io.Writer) error { return root.GenPowerShellCompletionWithDesc(w) },
}

func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion <bash|zsh|fish|powershell>",
		Short: "Print a shell completion script",
		Long: `Print a completion script for flowgrid to stdout.

Besides subcommands and flags, the script completes metadata document ids
for "flowgrid metadata show" and "flowgrid metadata layout", read from the
configured metadata source.`,
		Example: `  # try it in the current bash session
  source <(flowgrid completion bash)

  # install for zsh (the directory must be on $fpath)
  flowgrid completion zsh > ~/.zsh/completions/_flowgrid

  # install for fish
  flowgrid completion fish > ~/.config/fish/completions/flowgrid.fish`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return shells[args[0]](cmd.Root(), c.out)
		},
	}
}
