package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/matzehuels/canvaskit/pkg/buildinfo"
)

func (c *CLI) versionCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := buildinfo.Get()
			if asJSON {
				return json.NewEncoder(c.Out).Encode(info)
			}
			printKeyValue(c.Out, "version", info.Version)
			printKeyValue(c.Out, "commit", info.Commit)
			printKeyValue(c.Out, "built", info.Date)
			printKeyValue(c.Out, "go", info.GoVersion)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
