package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/sandrolain/jsonata"
)

func newVersionCmd(c *Command) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the jsonata version",
		Args:  cobra.NoArgs,
		RunE: mkRunE(c, func(cmd *Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "jsonata version %s %s/%s\n",
				jsonata.Version(), runtime.GOOS, runtime.GOARCH)
			return err
		}),
	}
}
