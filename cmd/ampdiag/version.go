package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Azure-Samples/media-services-javascript-azure-media-player-diagnostic-logger-plugin/internal/plugin"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the plugin version and user agent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n%s\n", plugin.Name, plugin.Version, plugin.DefaultUserAgent())
			return err
		},
	}
}
