// config.go
package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/waozixyz/menugen/internal/layout"
	"github.com/waozixyz/menugen/internal/stack"
)

const (
	defaultConfigFile = "menugen.toml"
	configEnv         = "MENUGEN_CONFIG"
)

var errConflictingDialogues = errors.New("embedded dialogue tags need the tagged encoding, not legacy")

// Config holds the settings that can come from a config file. Command line
// flags override them.
type Config struct {
	EmbedMenus     bool   `toml:"embed_menus" yaml:"embed_menus"`
	EmbedDialogues bool   `toml:"embed_dialogues" yaml:"embed_dialogues"`
	Dialogues      string `toml:"dialogues" yaml:"dialogues"` // legacy or tagged; empty means legacy
	Verbose        bool   `toml:"verbose" yaml:"verbose"`
	StackDepth     int    `toml:"stack_depth" yaml:"stack_depth"`
	LogFormat      string `toml:"log_format" yaml:"log_format"`
}

// loadConfig reads the config file named by path, $MENUGEN_CONFIG or
// ./menugen.toml, in that order. Only the default file may be missing. Values
// are validated once the command line flags have been applied.
func loadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = os.Getenv(configEnv)
		explicit = path != ""
	}
	if path == "" {
		path = defaultConfigFile
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := parseConfig(path, data, cfg); err != nil {
			return nil, err
		}
	case !explicit && errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// detectFormat picks the config syntax from the file extension.
func detectFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "toml"
	}
}

func parseConfig(path string, data []byte, cfg *Config) error {
	switch detectFormat(path) {
	case "yaml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to parse config file '%s': %w", path, err)
		}
	default:
		meta, err := toml.Decode(string(data), cfg)
		if err != nil {
			return fmt.Errorf("failed to parse config file '%s': %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return fmt.Errorf("unknown keys in config file '%s': %v", path, undecoded)
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.StackDepth <= 0 {
		c.StackDepth = stack.DefaultSize
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
}

func (c *Config) validate() error {
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format '%s' (want text or json)", c.LogFormat)
	}
	_, err := c.layoutOptions()
	return err
}

// layoutOptions works out the file format. Asking for embedded dialogue tags
// selects the tagged encoding; asking for both embedded tags and the legacy
// encoding is an error.
func (c *Config) layoutOptions() (layout.Options, error) {
	opts := layout.Options{EmbedMenus: c.EmbedMenus}
	mode, err := layout.ParseDialogueMode(c.Dialogues)
	if err != nil {
		return opts, err
	}
	if c.EmbedDialogues {
		if c.Dialogues != "" && mode == layout.DialoguesLegacy {
			return opts, errConflictingDialogues
		}
		mode = layout.DialoguesTagged
	}
	opts.Dialogues = mode
	return opts, nil
}
