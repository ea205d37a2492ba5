package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gogpu/glslfront/glsl"
)

var builtinsCmd = &cobra.Command{
	Use:   "builtins",
	Short: "List the builtin functions calls are dispatched to",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tKIND\tARGS")
		for _, b := range glsl.Builtins() {
			arity := fmt.Sprint(b.MinArgs)
			if b.MaxArgs != b.MinArgs {
				arity = fmt.Sprintf("%d-%d", b.MinArgs, b.MaxArgs)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", b.Name, b.Kind, arity)
		}
		return tw.Flush()
	},
}
