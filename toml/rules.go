package toml

import (
	_ "embed"
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/fwojciec/webcite"
	webfs "github.com/fwojciec/webcite/fs"
	"github.com/pelletier/go-toml/v2"
)

//go:embed rules.toml
var defaultRules string

// DefaultRules returns the built-in regex extraction rules.
func DefaultRules() (*webcite.Rules, error) {
	return DecodeRules(strings.NewReader(defaultRules))
}

// LoadRules reads rules from the file at path, or returns DefaultRules
// when path is empty.
// Returns ENOTFOUND if the file does not exist.
func LoadRules(path string) (*webcite.Rules, error) {
	if path == "" {
		return DefaultRules()
	}
	path, err := webfs.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, webcite.Errorf(webcite.ENOTFOUND, "rules file %s not found", path)
	} else if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeRules(f)
}

// DecodeRules parses and validates rules in TOML form.
func DecodeRules(r io.Reader) (*webcite.Rules, error) {
	var rules webcite.Rules
	if err := toml.NewDecoder(r).DisallowUnknownFields().Decode(&rules); err != nil {
		return nil, webcite.Errorf(webcite.EINVALID, "parse rules: %v", err)
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return &rules, nil
}

// EncodeRules writes rules in TOML form.
func EncodeRules(w io.Writer, rules *webcite.Rules) error {
	enc := toml.NewEncoder(w)
	enc.SetArraysMultiline(true)
	return enc.Encode(rules)
}
