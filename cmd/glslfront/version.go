package main

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gogpu/glslfront/unit"
)

// version is the semantic version of the CLI. It can be overridden at
// build time via -ldflags.
var version = "0.1.0-dev"

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the CLI version and the unit formats it reads",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := semver.NewVersion(version)
		if err != nil {
			return fmt.Errorf("invalid build version %q: %w", version, err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "glslfront %s\n", coloredVersion(v))
		fmt.Fprintf(out, "unit format %s (reads %s)\n", unit.CurrentFormat, unit.SupportedFormat)
		return nil
	},
}

func coloredVersion(v *semver.Version) string {
	s := versionMajorColor.Sprint(v.Major()) + "." +
		versionMinorColor.Sprint(v.Minor()) + "." +
		versionPatchColor.Sprint(v.Patch())
	if pre := v.Prerelease(); pre != "" {
		s += "-" + pre
	}
	return s
}
