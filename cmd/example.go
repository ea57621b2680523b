package cmd

import (
	"fmt"

	"github.com/helmcode/overload/pkg/source"
	"github.com/spf13/cobra"
)

func NewExampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "example",
		Short: "Print a buggy Python snippet to try the analyzer with",
		Long: `Print the built-in example program. Pipe it back in to see a full analysis:

  overload example | overload analyze -`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), source.Example())
		},
	}
}
