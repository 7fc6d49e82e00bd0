package cli

import (
	"fmt"

	"github.com/effective-security/stockmcp/config"
	"github.com/effective-security/stockmcp/tools"
	"github.com/spf13/cobra"
)

func (a *app) newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the tools with their input schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// listing does not call the API, the key is not required
			list, err := a.tools(config.Default(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			itools := make([]tools.ITool, 0, len(list))
			for _, t := range list {
				itools = append(itools, t)
			}
			fmt.Fprintln(cmd.OutOrStdout(), tools.GetDescriptions(itools...))
			return nil
		},
	}
}
