// Package snapshot_test provides golden snapshot tests for the front end.
//
// Each translation unit in testdata/in/ is compiled, validated and dumped
// with ir.Fprint; the dump is compared to testdata/golden/{name}.ir. The
// same unit re-encoded as msgpack must produce an identical dump.
//
// To regenerate golden files after intentional changes:
//
//	UPDATE_GOLDEN=1 go test ./snapshot/...
package snapshot_test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/gogpu/glslfront"
	"github.com/gogpu/glslfront/ir"
	"github.com/gogpu/glslfront/unit"
)

// ---------------------------------------------------------------------------
// Test Runner
// ---------------------------------------------------------------------------

// stageWant is what every snapshot unit must synthesize, golden file or not.
var stageWant = map[string]struct {
	stage     ir.ShaderStage
	workgroup [3]uint32
	early     bool
}{
	"compute_overloads":      {stage: ir.StageCompute, workgroup: [3]uint32{8, 8, 1}},
	"fragment_inout_swizzle": {stage: ir.StageFragment, early: true},
	"vertex_transform":       {stage: ir.StageVertex},
}

// TestSnapshots is the main golden snapshot test.
func TestSnapshots(t *testing.T) {
	units := loadInputUnits(t, "testdata/in")
	if len(units) == 0 {
		t.Fatal("no input units found in testdata/in/")
	}

	for _, path := range units {
		name := strings.TrimSuffix(filepath.Base(path), ".toml")
		t.Run(name, func(t *testing.T) {
			module, err := glslfront.CompileFile(path, glslfront.DefaultOptions())
			if err != nil {
				t.Fatalf("compile failed: %v", err)
			}
			checkEntryPoint(t, name, module)

			dump := dumpIR(t, module)
			t.Run("msgpack", func(t *testing.T) {
				again := compileViaMsgpack(t, path)
				if got := dumpIR(t, again); got != dump {
					t.Errorf("msgpack unit differs from toml unit:\n%s", diffStrings(dump, got))
				}
			})

			compareGolden(t, filepath.Join("testdata", "golden", name+".ir"), dump)
		})
	}
}

// loadInputUnits lists the .toml units in dir in name order.
func loadInputUnits(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read input directory %q: %v", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".toml") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths
}

func checkEntryPoint(t *testing.T, name string, module *ir.Module) {
	t.Helper()

	want, ok := stageWant[name]
	if !ok {
		return
	}
	if len(module.EntryPoints) != 1 {
		t.Fatalf("got %d entry points, want 1", len(module.EntryPoints))
	}
	ep := module.EntryPoints[0]
	if ep.Name != "main" || ep.Stage != want.stage {
		t.Errorf("entry point %s %v, want main %v", ep.Name, ep.Stage, want.stage)
	}
	if want.stage == ir.StageCompute && ep.Workgroup != want.workgroup {
		t.Errorf("workgroup = %v, want %v", ep.Workgroup, want.workgroup)
	}
	if (ep.EarlyDepthTest != nil) != want.early {
		t.Errorf("early depth test = %v, want %v", ep.EarlyDepthTest != nil, want.early)
	}
}

// compileViaMsgpack re-encodes the unit at path as msgpack and compiles
// the copy.
func compileViaMsgpack(t *testing.T, path string) *ir.Module {
	t.Helper()

	u, err := unit.Load(path)
	if err != nil {
		t.Fatalf("load %s: %v", path, err)
	}
	var buf bytes.Buffer
	if err := unit.EncodeMsgpack(&buf, u); err != nil {
		t.Fatalf("encode msgpack: %v", err)
	}
	decoded, err := unit.DecodeMsgpack(&buf)
	if err != nil {
		t.Fatalf("decode msgpack: %v", err)
	}
	module, err := glslfront.Compile(decoded, glslfront.DefaultOptions())
	if err != nil {
		t.Fatalf("compile msgpack unit: %v", err)
	}
	return module
}

func dumpIR(t *testing.T, module *ir.Module) string {
	t.Helper()

	var sb strings.Builder
	if err := ir.Fprint(&sb, module); err != nil {
		t.Fatalf("dump IR: %v", err)
	}
	return sb.String()
}

// ---------------------------------------------------------------------------
// Golden File Comparison
// ---------------------------------------------------------------------------

// compareGolden compares actual output with the golden file at path.
// If UPDATE_GOLDEN is set, writes actual output as the new golden file.
// A unit without a golden file is skipped rather than failed.
func compareGolden(t *testing.T, path, actual string) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDEN") != "" {
		if mkErr := os.MkdirAll(filepath.Dir(path), 0o755); mkErr != nil {
			t.Fatalf("create golden dir: %v", mkErr)
		}
		if wErr := os.WriteFile(path, []byte(actual), 0o644); wErr != nil {
			t.Fatalf("write golden file: %v", wErr)
		}
		t.Logf("updated golden file: %s", path)
		return
	}

	expected, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		t.Skipf("golden file missing: %s\nRun with UPDATE_GOLDEN=1 to create.\n\nActual output:\n%s", path, truncate(actual, 500))
	}
	if err != nil {
		t.Fatalf("read golden file %s: %v", path, err)
	}

	// Git may convert \n to \r\n on Windows checkout.
	expectedStr := strings.ReplaceAll(string(expected), "\r\n", "\n")
	actualStr := strings.ReplaceAll(actual, "\r\n", "\n")

	if expectedStr != actualStr {
		t.Errorf("output differs from golden %s:\n%s", path, diffStrings(expectedStr, actualStr))
	}
}

// diffStrings shows the first differing line with surrounding context.
func diffStrings(expected, actual string) string {
	expectedLines := strings.Split(expected, "\n")
	actualLines := strings.Split(actual, "\n")
	maxLines := max(len(expectedLines), len(actualLines))

	line := func(lines []string, i int) string {
		if i < len(lines) {
			return lines[i]
		}
		return ""
	}

	const contextLines = 3
	firstDiff := -1
	for i := range maxLines {
		if line(expectedLines, i) != line(actualLines, i) {
			firstDiff = i
			break
		}
	}
	if firstDiff < 0 {
		return "(no difference found)"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "first difference at line %d:\n", firstDiff+1)
	fmt.Fprintf(&sb, "  expected lines: %d\n", len(expectedLines))
	fmt.Fprintf(&sb, "  actual lines:   %d\n\n", len(actualLines))

	start := max(firstDiff-contextLines, 0)
	end := min(firstDiff+contextLines+1, maxLines)
	for i := start; i < end; i++ {
		eLine, aLine := line(expectedLines, i), line(actualLines, i)
		prefix := " "
		if eLine != aLine {
			prefix = "!"
		}
		fmt.Fprintf(&sb, "%s %4d expected: %s\n", prefix, i+1, truncate(eLine, 120))
		if eLine != aLine {
			fmt.Fprintf(&sb, "%s %4d actual:   %s\n", prefix, i+1, truncate(aLine, 120))
		}
	}
	return sb.String()
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
