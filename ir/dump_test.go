package ir

import (
	"strings"
	"testing"
)

func TestFprint(t *testing.T) {
	module := newValidModule()
	module.Functions = append(module.Functions, Function{Name: "helper"}, Function{})

	var sb strings.Builder
	if err := Fprint(&sb, module); err != nil {
		t.Fatalf("Fprint() error = %v", err)
	}
	out := sb.String()

	for _, want := range []string{
		"t0 = float32",
		"t1 FragmentOutput = struct { color: t0 @0 @location(0) }",
		"g0 private color: t0",
		"entry fragment main () -> t1",
		"e2 = load e0",
		"store e0 <- e1",
		"emit e2..e4",
		"return e3",
		"fn f0 helper ()",
		"fn f1 ()",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
