package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// LookupFunc reads an environment variable.
type LookupFunc func(string) (string, bool)

// Load builds a Config from defaults, the file at path (skipped when path
// is empty) and the process environment, then validates it.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, os.LookupEnv)
}

// LoadWithEnv is Load with an explicit environment lookup.
func LoadWithEnv(path string, lookup LookupFunc) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := Decode(cfg, path, data); err != nil {
			return nil, err
		}
		resolveThemePaths(cfg, filepath.Dir(path))
	}

	if lookup != nil {
		if err := ApplyEnv(cfg, lookup); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode parses data onto cfg. The format is chosen by the extension of
// name. Unknown keys are rejected.
func Decode(cfg *Config, name string, data []byte) error {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".toml":
		return decodeTOML(cfg, name, data)
	case ".yaml", ".yml":
		return decodeYAML(cfg, name, data)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
}

func decodeTOML(cfg *Config, name string, data []byte) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		pe := &ParseError{Path: name, Message: err.Error(), Err: err}
		var de *toml.DecodeError
		if errors.As(err, &de) {
			pe.Line, pe.Column = de.Position()
		}
		return pe
	}
	return nil
}

func decodeYAML(cfg *Config, name string, data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return &ParseError{Path: name, Message: err.Error(), Err: err}
	}
	return nil
}

func resolveThemePaths(cfg *Config, dir string) {
	for i, t := range cfg.Themes {
		if t.File != "" && !filepath.IsAbs(t.File) {
			cfg.Themes[i].File = filepath.Join(dir, t.File)
		}
	}
}
