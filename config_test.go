package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/waozixyz/menugen/internal/layout"
	"github.com/waozixyz/menugen/internal/stack"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig_Formats(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
	}{
		{"menugen.toml", "embed_menus = true\ndialogues = \"tagged\"\nstack_depth = 20\nlog_format = \"json\"\n"},
		{"menugen.yaml", "embed_menus: true\ndialogues: tagged\nstack_depth: 20\nlog_format: json\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := loadConfig(writeFile(t, dir, tt.name, tt.content))
			if err != nil {
				t.Fatal(err)
			}
			if !cfg.EmbedMenus || cfg.StackDepth != 20 || cfg.LogFormat != "json" {
				t.Errorf("cfg = %+v", cfg)
			}
			opts, err := cfg.layoutOptions()
			if err != nil || opts.Dialogues != layout.DialoguesTagged || !opts.EmbedMenus {
				t.Errorf("layoutOptions = %+v, %v", opts, err)
			}
		})
	}
}

func TestLoadConfig_Lookup(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	// No file anywhere: defaults.
	t.Setenv(configEnv, "")
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.StackDepth != stack.DefaultSize || cfg.LogFormat != "text" || cfg.EmbedMenus {
		t.Errorf("defaults = %+v", cfg)
	}

	writeFile(t, dir, defaultConfigFile, "verbose = true\n")
	if cfg, err = loadConfig(""); err != nil || !cfg.Verbose {
		t.Errorf("default file not read: %+v, %v", cfg, err)
	}

	env := writeFile(t, dir, "env.yml", "embed_dialogues: true\n")
	t.Setenv(configEnv, env)
	if cfg, err = loadConfig(""); err != nil || !cfg.EmbedDialogues || cfg.Verbose {
		t.Errorf("environment file not preferred: %+v, %v", cfg, err)
	}

	if _, err := loadConfig(filepath.Join(dir, "missing.toml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing explicit file: %v", err)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
	}{
		{"unknown.toml", "colour = 3\n"},
		{"unknown.yaml", "colour: 3\n"},
		{"syntax.toml", "embed_menus = \n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := loadConfig(writeFile(t, dir, tt.name, tt.content)); err == nil {
				t.Errorf("loadConfig accepted %q", tt.content)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
	}{
		{"format.toml", "log_format = \"xml\"\n"},
		{"dialogues.toml", "dialogues = \"both\"\n"},
		{"conflict.toml", "embed_dialogues = true\ndialogues = \"legacy\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := loadConfig(writeFile(t, dir, tt.name, tt.content))
			if err != nil {
				t.Fatalf("loadConfig: %v", err)
			}
			if err := cfg.validate(); err == nil {
				t.Errorf("validate accepted %q", tt.content)
			}
		})
	}
}

func TestLayoutOptions(t *testing.T) {
	tests := []struct {
		cfg     Config
		want    layout.DialogueMode
		wantErr error
	}{
		{Config{}, layout.DialoguesLegacy, nil},
		{Config{EmbedDialogues: true}, layout.DialoguesTagged, nil},
		{Config{EmbedDialogues: true, Dialogues: "tagged"}, layout.DialoguesTagged, nil},
		{Config{EmbedDialogues: true, Dialogues: "legacy"}, 0, errConflictingDialogues},
	}
	for _, tt := range tests {
		opts, err := tt.cfg.layoutOptions()
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("%+v: err = %v", tt.cfg, err)
			}
			continue
		}
		if err != nil || opts.Dialogues != tt.want {
			t.Errorf("%+v: got %v, %v", tt.cfg, opts.Dialogues, err)
		}
	}
}
