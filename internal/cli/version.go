package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/faizmokh/lifelog/internal/version"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "lifelog %s\n", version.Info())
			if !version.IsRelease() {
				fmt.Fprintln(out, "development build")
			}
		},
	}
}
