package unit

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
	"github.com/vmihailenco/msgpack/v5"
)

// SupportedFormat is the format_version constraint this package reads.
const SupportedFormat = "^1.0"

// CurrentFormat is the format_version written by this package.
const CurrentFormat = "1.0.0"

// ErrUnsupportedFormat is returned for units whose format_version does not
// satisfy SupportedFormat.
var ErrUnsupportedFormat = errors.New("unsupported unit format")

var supported = mustConstraint(SupportedFormat)

func mustConstraint(expr string) *semver.Constraints {
	c, err := semver.NewConstraint(expr)
	if err != nil {
		panic(err)
	}
	return c
}

// CheckFormat reports whether version satisfies SupportedFormat.
func CheckFormat(version string) error {
	if strings.TrimSpace(version) == "" {
		return fmt.Errorf("%w: missing format_version", ErrUnsupportedFormat)
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrUnsupportedFormat, version, err)
	}
	if !supported.Check(v) {
		return fmt.Errorf("%w: %s does not satisfy %s", ErrUnsupportedFormat, v, SupportedFormat)
	}
	return nil
}

// DecodeTOML reads a unit from TOML.
func DecodeTOML(r io.Reader) (*Unit, error) {
	var u Unit
	meta, err := toml.NewDecoder(r).Decode(&u)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if err := checkTOML(meta, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func loadTOML(path string) (*Unit, error) {
	var u Unit
	meta, err := toml.DecodeFile(path, &u)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if err := checkTOML(meta, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func checkTOML(meta toml.MetaData, u *Unit) error {
	if !meta.IsDefined("format_version") {
		return fmt.Errorf("%w: missing format_version", ErrUnsupportedFormat)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown key %s", undecoded[0])
	}
	return CheckFormat(u.FormatVersion)
}

// EncodeTOML writes u as TOML.
func EncodeTOML(w io.Writer, u *Unit) error {
	return toml.NewEncoder(w).Encode(u)
}

// DecodeMsgpack reads a unit from msgpack.
func DecodeMsgpack(r io.Reader) (*Unit, error) {
	var u Unit
	if err := msgpack.NewDecoder(r).Decode(&u); err != nil {
		return nil, fmt.Errorf("failed to decode msgpack: %w", err)
	}
	if err := CheckFormat(u.FormatVersion); err != nil {
		return nil, err
	}
	return &u, nil
}

// EncodeMsgpack writes u as msgpack.
func EncodeMsgpack(w io.Writer, u *Unit) error {
	return msgpack.NewEncoder(w).Encode(u)
}

// Load reads a unit, choosing the codec by file extension: .toml for TOML,
// .msgpack or .mpk for msgpack.
func Load(path string) (*Unit, error) {
	var u *Unit
	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		u, err = loadTOML(path)
	case ".msgpack", ".mpk":
		u, err = loadMsgpack(path)
	default:
		return nil, fmt.Errorf("%s: unknown unit extension %q", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return u, nil
}

func loadMsgpack(path string) (*Unit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeMsgpack(f)
}

// Save writes u to path, choosing the codec by file extension.
func Save(path string, u *Unit) error {
	var encode func(io.Writer, *Unit) error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		encode = EncodeTOML
	case ".msgpack", ".mpk":
		encode = EncodeMsgpack
	default:
		return fmt.Errorf("%s: unknown unit extension %q", path, ext)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encode(f, u); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}
