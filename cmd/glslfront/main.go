// Command glslfront resolves calls and synthesizes entry points for GLSL
// translation units.
//
// Usage:
//
//	glslfront compile [flags] <unit>...
//	glslfront convert <in> <out>
//	glslfront builtins
//	glslfront version
//
// Examples:
//
//	glslfront compile shader.toml                 # Build and dump the IR
//	glslfront compile -j 4 --validate a.toml b.mpk
//	glslfront compile --watch shader.toml         # Rebuild on every save
//	glslfront convert shader.toml shader.msgpack  # Re-encode a unit
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var rootCmd = &cobra.Command{
	Use:           "glslfront",
	Short:         "GLSL call resolution and entry point synthesis",
	Long:          `glslfront builds GLSL translation units into IR modules`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
		if err != nil {
			return err
		}
		color.NoColor = !(colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stdout)))
		return nil
	},
}

func main() {
	rootCmd.Version = version

	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(builtinsCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("verbose", false, "log debug records to stderr")

	if err := rootCmd.Execute(); err != nil {
		errorColor.Fprint(os.Stderr, "error: ")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	errorColor  = color.New(color.FgRed, color.Bold)
	headerColor = color.New(color.FgCyan, color.Bold)
	noteColor   = color.New(color.Faint)
)

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// newLogger returns the logger selected by --verbose.
func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}
