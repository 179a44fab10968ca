package config

import (
	"strconv"
	"time"
)

// EnvPrefix is the prefix of every recognised environment variable.
const EnvPrefix = "DECKSTORM_"

type envSetter func(c *Config, v string) error

// envMapping maps variable names, without the prefix, to setters.
var envMapping = map[string]envSetter{
	"LARGE_FILE_THRESHOLD": intVar(func(c *Config) *int { return &c.Document.LargeFileThreshold }),
	"SYNC_DELAY":           durationVar(func(c *Config) *Duration { return &c.Sync.Delay }),
	"AUTOSAVE":             boolVar(func(c *Config) *bool { return &c.AutoSave.Enabled }),
	"AUTOSAVE_INTERVAL":    durationVar(func(c *Config) *Duration { return &c.AutoSave.Interval }),
	"RENDER_DELAY":         durationVar(func(c *Config) *Duration { return &c.Render.Delay }),
	"RENDER_TIMEOUT":       durationVar(func(c *Config) *Duration { return &c.Render.Timeout }),
	"THEME":                stringVar(func(c *Config) *string { return &c.Render.Theme }),
	"HTML":                 boolVar(func(c *Config) *bool { return &c.Render.HTML }),
	"SIZE":                 stringVar(func(c *Config) *string { return &c.Render.Size }),
	"STORAGE_BACKEND":      stringVar(func(c *Config) *string { return &c.Storage.Backend }),
	"STORAGE_PATH":         stringVar(func(c *Config) *string { return &c.Storage.Path }),
	"STORAGE_KEY":          stringVar(func(c *Config) *string { return &c.Storage.Key }),
	"VALIDATOR":            stringVar(func(c *Config) *string { return &c.Validation.Script }),
	"SERVER":               boolVar(func(c *Config) *bool { return &c.Server.Enabled }),
	"SERVER_ADDR":          stringVar(func(c *Config) *string { return &c.Server.Addr }),
	"LOG_LEVEL":            stringVar(func(c *Config) *string { return &c.Log.Level }),
	"LOG_FORMAT":           stringVar(func(c *Config) *string { return &c.Log.Format }),
	"LOG_FILE":             stringVar(func(c *Config) *string { return &c.Log.File }),
}

// ApplyEnv overrides cfg from DECKSTORM_* variables read through lookup.
// Empty values count as set.
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	for name, set := range envMapping {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			continue
		}
		if err := set(cfg, v); err != nil {
			return &ParseError{Path: EnvPrefix + name, Message: err.Error(), Err: err}
		}
	}
	return nil
}

func stringVar(field func(*Config) *string) envSetter {
	return func(c *Config, v string) error {
		*field(c) = v
		return nil
	}
}

func boolVar(field func(*Config) *bool) envSetter {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}
}

func intVar(field func(*Config) *int) envSetter {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func durationVar(field func(*Config) *Duration) envSetter {
	return func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*field(c) = Duration(d)
		return nil
	}
}
