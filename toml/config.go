// Package toml loads configuration and extraction rules from TOML files.
package toml

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/fwojciec/webcite"
	webfs "github.com/fwojciec/webcite/fs"
	"github.com/pelletier/go-toml/v2"
)

// Environment variables consulted by LoadConfig.
const (
	EnvConfig = "WEBCITE_CONFIG"
	EnvDB     = "WEBCITE_DB"
)

// DefaultConfigPath is where LoadConfig looks when no path is given.
const DefaultConfigPath = "~/.config/webcite/config.toml"

// LoadConfig locates, parses, and validates a configuration file. Values
// from the file override webcite.DefaultConfig, and WEBCITE_DB overrides
// the file. When path is empty, WEBCITE_CONFIG and then DefaultConfigPath
// are tried. A missing file is not an error.
//
// Returns the resolved path and whether the file exists.
func LoadConfig(path string) (*webcite.Config, string, bool, error) {
	cfg := webcite.DefaultConfig()

	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		path = DefaultConfigPath
	}
	resolved, err := webfs.ExpandHome(path)
	if err != nil {
		return nil, "", false, err
	}

	exists := true
	f, err := os.Open(resolved)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		exists = false
	case err != nil:
		return nil, "", false, fmt.Errorf("open config: %w", err)
	default:
		defer f.Close()
		if err := toml.NewDecoder(f).DisallowUnknownFields().Decode(cfg); err != nil {
			return nil, "", false, webcite.Errorf(webcite.EINVALID, "parse config %s: %v", resolved, err)
		}
	}

	if db := os.Getenv(EnvDB); db != "" {
		cfg.DBPath = db
	}
	if err := normalize(cfg); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return cfg, resolved, exists, nil
}

func normalize(cfg *webcite.Config) error {
	var err error
	if cfg.DBPath, err = webfs.ExpandHome(cfg.DBPath); err != nil {
		return err
	}
	if cfg.RulesPath, err = webfs.ExpandHome(cfg.RulesPath); err != nil {
		return err
	}
	for i, p := range cfg.Corpus {
		if cfg.Corpus[i], err = webfs.ExpandHome(p); err != nil {
			return err
		}
	}
	if cfg.Encodings == nil {
		cfg.Encodings = map[string]string{}
	}
	return nil
}
