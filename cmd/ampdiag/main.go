package main

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Azure-Samples/media-services-javascript-azure-media-player-diagnostic-logger-plugin/internal/plugin"
)

// newRootCmd builds the command tree. Every call returns fresh flag state.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ampdiag",
		Short: "Media player diagnostics logger",
		Long: `ampdiag replays player scenarios through the diagnostics logger and
writes the resulting records to stdout.`,
		Version:       plugin.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return applyColor(cmd)
		},
	}

	root.PersistentFlags().String("color", "auto", "colorize pretty output (auto|on|off)")

	root.AddCommand(newReplayCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func applyColor(cmd *cobra.Command) error {
	mode, err := cmd.Flags().GetString("color")
	if err != nil {
		return err
	}
	switch mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto":
		color.NoColor = !isTerminal(cmd.OutOrStdout())
	default:
		return errInvalidFlag("color", mode)
	}
	return nil
}

// isTerminal reports whether w is a terminal file.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// main executes the root command and exits 1 on error.
func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		root.PrintErrln("Error:", err)
		os.Exit(1)
	}
}
