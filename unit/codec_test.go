package unit

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestCheckFormat(t *testing.T) {
	tests := []struct {
		version string
		wantErr bool
	}{
		{"1.0.0", false},
		{"1.0", false},
		{"1.7.2", false},
		{"0.9.0", true},
		{"2.0.0", true},
		{"", true},
		{"one", true},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			err := CheckFormat(tt.version)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckFormat(%q) error = %v, wantErr %v", tt.version, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrUnsupportedFormat) {
				t.Errorf("error %v does not wrap ErrUnsupportedFormat", err)
			}
		})
	}
}

func TestDecodeTOMLRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"missing version", "[options]\nentry_points = { main = \"vertex\" }\n", "missing format_version"},
		{"newer major", "format_version = \"2.0.0\"\n", "does not satisfy"},
		{"unknown key", "format_version = \"1.0.0\"\nshaders = 3\n", "unknown key shaders"},
		{"malformed", "format_version = \n", "failed to parse TOML"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTOML(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("DecodeTOML() succeeded")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestLoadFixture(t *testing.T) {
	u, err := Load(filepath.Join("testdata", "fragment.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if u.Options.EntryPoints["main"] != "fragment" {
		t.Errorf("entry points = %v", u.Options.EntryPoints)
	}
	if len(u.Globals) != 1 || len(u.Interface) != 2 || len(u.Functions) != 2 {
		t.Fatalf("decoded %d globals, %d interface globals, %d functions",
			len(u.Globals), len(u.Interface), len(u.Functions))
	}
	ret := u.Functions[0].Body[0]
	if ret.Kind != "return" || ret.Expr == nil || len(ret.Expr.Args) != 2 {
		t.Errorf("tint body = %+v", ret)
	}
	if !strings.HasPrefix(u.Source, "uniform float scale;") {
		t.Errorf("source = %q", u.Source)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	orig, err := Load(filepath.Join("testdata", "fragment.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	for _, name := range []string{"unit.msgpack", "unit.mpk", "unit.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			if err := Save(path, orig); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			got, err := Load(path)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if got.Source != orig.Source || got.FormatVersion != orig.FormatVersion {
				t.Errorf("header = %q %q", got.FormatVersion, got.Source)
			}
			if dumpUnit(t, got) != dumpUnit(t, orig) {
				t.Error("reloaded unit builds a different module")
			}
		})
	}
}

func TestMsgpackRejectsUnsupportedVersion(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeMsgpack(&buf, &Unit{FormatVersion: "3.1.0"}); err != nil {
		t.Fatalf("EncodeMsgpack() error = %v", err)
	}
	if _, err := DecodeMsgpack(&buf); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("DecodeMsgpack() error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unit.json")
	if err := Save(path, &Unit{FormatVersion: CurrentFormat}); err == nil {
		t.Error("Save() accepted a .json path")
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() accepted a missing .json path")
	}
}
