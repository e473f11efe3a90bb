package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/koetsu-dev/exemplar/internal/buildinfo"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "exemplar %s (%s)\n", buildinfo.Version, buildinfo.Commit)
		},
	}
}
