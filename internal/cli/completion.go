package cli

import (
	"strings"

	"github.com/spf13/cobra"

	mwio "github.com/matzehuels/mapwright/pkg/io"
)

// renderFormats are the image formats "mapwright render" produces.
var renderFormats = []string{"svg", "png"}

var canvasExtensions = []string{"json", "csv"}

// completionCommand writes a shell completion script to stdout.
func (c *CLI) completionCommand() *cobra.Command {
	shells := map[string]func(cmd *cobra.Command) error{
		"bash":       func(cmd *cobra.Command) error { return cmd.Root().GenBashCompletionV2(cmd.OutOrStdout(), true) },
		"zsh":        func(cmd *cobra.Command) error { return cmd.Root().GenZshCompletion(cmd.OutOrStdout()) },
		"fish":       func(cmd *cobra.Command) error { return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true) },
		"powershell": func(cmd *cobra.Command) error { return cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout()) },
	}

	return &cobra.Command{
		Use:   "completion bash|zsh|fish|powershell",
		Short: "Print a shell completion script",
		Long: `Print a completion script for the given shell. Format flags and canvas
arguments complete as well.

  source <(mapwright completion bash)
  mapwright completion zsh > "${fpath[1]}/_mapwright"
  mapwright completion fish | source`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return shells[args[0]](cmd)
		},
	}
}

// formatNames lists the export formats by name for flag completion.
func formatNames() []string {
	names := make([]string, len(mwio.Formats))
	for i, f := range mwio.Formats {
		names[i] = string(f)
	}
	return names
}

// completeValues completes a flag from a fixed list, matched by prefix.
func completeValues(values []string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var out []string
		for _, v := range values {
			if strings.HasPrefix(v, strings.ToLower(toComplete)) {
				out = append(out, v)
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
}

// completeCanvas completes the single canvas argument with importable files.
func completeCanvas(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return canvasExtensions, cobra.ShellCompDirectiveFilterFileExt
}
