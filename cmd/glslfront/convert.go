package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gogpu/glslfront/unit"
)

var convertCmd = &cobra.Command{
	Use:   "convert <in> <out>",
	Short: "Re-encode a unit between TOML and msgpack",
	Long: `Re-encode a translation unit. The encoding of each file is chosen by its
extension: .toml for TOML, .msgpack or .mpk for msgpack.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := unit.Load(args[0])
		if err != nil {
			return err
		}
		if err := unit.Save(args[1], u); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "converted %s to %s (%d functions)\n", args[0], args[1], len(u.Functions))
		return nil
	},
}
