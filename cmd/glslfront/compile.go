package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/gogpu/glslfront"
	"github.com/gogpu/glslfront/glsl"
	"github.com/gogpu/glslfront/ir"
)

var (
	compileJobs     int
	compileValidate bool
	compileWatch    bool
	compileQuiet    bool
)

func init() {
	compileCmd.Flags().IntVarP(&compileJobs, "jobs", "j", 0, "units to build in parallel (0 = GOMAXPROCS)")
	compileCmd.Flags().BoolVar(&compileValidate, "validate", true, "validate the finished IR")
	compileCmd.Flags().BoolVarP(&compileWatch, "watch", "w", false, "rebuild when an input changes")
	compileCmd.Flags().BoolVarP(&compileQuiet, "quiet", "q", false, "report errors only, without IR dumps")
}

var compileCmd = &cobra.Command{
	Use:   "compile <unit>...",
	Short: "Build translation units and dump their IR",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		opts := glslfront.CompileOptions{Validate: compileValidate, Logger: newLogger(cmd)}
		run := func() error {
			results, err := compileUnits(ctx, args, opts, compileJobs)
			if err != nil {
				return err
			}
			logUnits(opts.Logger, results)
			return report(cmd.OutOrStdout(), cmd.ErrOrStderr(), results, compileQuiet)
		}

		err := run()
		if !compileWatch {
			return err
		}
		if err != nil {
			errorColor.Fprint(cmd.ErrOrStderr(), "error: ")
			fmt.Fprintln(cmd.ErrOrStderr(), err)
		}
		return watch(ctx, args, opts.Logger, func() {
			if err := run(); err != nil {
				errorColor.Fprint(cmd.ErrOrStderr(), "error: ")
				fmt.Fprintln(cmd.ErrOrStderr(), err)
			}
		})
	},
}

// compileResult is the outcome of building one unit.
type compileResult struct {
	path   string
	module *ir.Module
	err    error
}

// compileUnits builds every path with at most jobs units in flight.
// Results are in input order; a unit's failure does not stop the others.
func compileUnits(ctx context.Context, paths []string, opts glslfront.CompileOptions, jobs int) ([]compileResult, error) {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]compileResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))
	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			module, err := glslfront.CompileFile(path, opts)
			results[i] = compileResult{path: path, module: module, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// report prints IR dumps to out and diagnostics to errOut, and fails when
// any unit failed.
func report(out, errOut io.Writer, results []compileResult, quiet bool) error {
	failed := 0
	var diags glsl.Errors
	for _, r := range results {
		if r.err != nil {
			failed++
			var ferr *glsl.Error
			if errors.As(r.err, &ferr) {
				diags.Add(ferr)
			}
			printDiagnostic(errOut, r.path, r.err)
			continue
		}
		if quiet {
			continue
		}
		headerColor.Fprintf(out, "// %s\n", r.path)
		if err := ir.Fprint(out, r.module); err != nil {
			return err
		}
	}
	if len(diags) > 1 {
		noteColor.Fprintf(errOut, "   = first of %d: %s\n", len(diags), diags)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d units failed", failed, len(results))
	}
	return nil
}

func printDiagnostic(w io.Writer, path string, err error) {
	var ferr *glsl.Error
	if !errors.As(err, &ferr) {
		errorColor.Fprint(w, "error: ")
		fmt.Fprintln(w, err)
		return
	}

	text := ferr.FormatWithContext()
	if rest, ok := strings.CutPrefix(text, "error: "); ok {
		errorColor.Fprint(w, "error: ")
		text = rest
	}
	fmt.Fprintln(w, text)
	noteColor.Fprintf(w, "   = in %s\n", path)
}

// logUnits records the build of each unit at debug level.
func logUnits(logger *slog.Logger, results []compileResult) {
	for _, r := range results {
		if r.err != nil {
			logger.Debug("unit failed", "path", r.path, "error", r.err)
			continue
		}
		logger.Debug("unit built", "path", r.path, "entry_points", len(r.module.EntryPoints))
	}
}
