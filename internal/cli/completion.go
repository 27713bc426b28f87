package cli

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/canvaskit/pkg/config"
	"github.com/matzehuels/canvaskit/pkg/render"
	"github.com/matzehuels/canvaskit/pkg/store"
)

// completionTimeout bounds store lookups made while completing.
const completionTimeout = 2 * time.Second

func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script for canvaskit.

Completions cover commands, flags, export formats and, for the file and
sqlite store backends, stored document ids.

  $ source <(canvaskit completion bash)
  $ canvaskit completion zsh > "${fpath[1]}/_canvaskit"
  $ canvaskit completion fish | source
  PS> canvaskit completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(c.Out, true)
			case "zsh":
				return root.GenZshCompletion(c.Out)
			case "fish":
				return root.GenFishCompletion(c.Out, true)
			default:
				return root.GenPowerShellCompletionWithDesc(c.Out)
			}
		},
	}
}

// completeFormats completes a comma-separated export format list, offering
// only formats not yet named.
func completeFormats(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	prefix, seen := "", map[string]bool{}
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		prefix = toComplete[:i+1]
		for _, name := range strings.Split(toComplete[:i], ",") {
			seen[strings.ToLower(strings.TrimSpace(name))] = true
		}
	}
	var out []string
	for _, f := range render.Formats {
		if !seen[string(f)] {
			out = append(out, prefix+string(f))
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

// completeDocumentIDs lists stored document ids with their names as
// descriptions. Remote backends are skipped so completion never blocks on
// the network.
func (c *CLI) completeDocumentIDs(cmd *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if c.cfg == nil {
		if err := c.loadConfig(); err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
	}
	switch c.settings().Store.Backend {
	case config.BackendFile, config.BackendSQLite:
	default:
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, completionTimeout)
	defer cancel()

	var out []string
	err := c.withStore(ctx, func(s store.Store) error {
		docs, err := s.List(ctx)
		if err != nil {
			return err
		}
		for _, d := range docs {
			if slices.Contains(args, d.ID) {
				continue
			}
			out = append(out, d.ID+"\t"+d.Name)
		}
		return nil
	})
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
