package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TRANSCRIPT_DEBUG", "")
	t.Setenv("TRANSCRIPT_MODE", "")
	t.Setenv("NO_COLOR", "")
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Mode != "full" {
		t.Fatalf("Default().Mode = %q, want %q", cfg.Mode, "full")
	}
	if cfg.Debug || cfg.StripStyling || cfg.Indexed {
		t.Fatalf("Default() flags should be off: %#v", cfg)
	}
}

func TestLoad_MissingFile_UsesDefaults(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Source != path {
		t.Fatalf("cfg.Source = %q, want %q", cfg.Source, path)
	}
	if cfg.Mode != "full" || cfg.Pager.SearchLimit != 50 {
		t.Fatalf("cfg = %#v, want defaults", cfg)
	}
}

func TestLoad_FromTOML(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(`
debug = true
indexed = true
mode = "simple"
width = 100

[pager]
search_limit = 5
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Debug || !cfg.Indexed || cfg.Mode != "simple" || cfg.Width != 100 {
		t.Fatalf("cfg = %#v", cfg)
	}
	if cfg.Pager.SearchLimit != 5 || !cfg.Pager.AltScreen {
		t.Fatalf("cfg.Pager = %#v", cfg.Pager)
	}
}

func TestLoad_BadTOML(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("mode = "), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("Load: expected error for malformed TOML")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TRANSCRIPT_DEBUG", "1")
	t.Setenv("TRANSCRIPT_MODE", "raw")
	t.Setenv("NO_COLOR", "yes")

	cfg, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Debug || cfg.Mode != "raw" || !cfg.StripStyling {
		t.Fatalf("cfg = %#v, want env overrides applied", cfg)
	}
}

func TestApplyKVOverrides(t *testing.T) {
	got := ApplyKVOverrides(Default(), []string{
		"debug=true",
		"plain=1",
		"indexed = true",
		"mode=simple",
		"width=80",
		"log_path=/tmp/x.log",
		"pager.search_limit=3",
		"pager.alt_screen=false",
		"width=wide",
		"unknown=1",
		"novalue",
	})
	if !got.Debug || !got.StripStyling || !got.Indexed {
		t.Fatalf("bool overrides not applied: %#v", got)
	}
	if got.Mode != "simple" || got.Width != 80 || got.LogPath != "/tmp/x.log" {
		t.Fatalf("value overrides not applied: %#v", got)
	}
	if got.Pager.SearchLimit != 3 || got.Pager.AltScreen {
		t.Fatalf("pager overrides not applied: %#v", got.Pager)
	}
}

func TestSaveThenLoad(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.Indexed = true
	cfg.Width = 72
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if strings.Contains(string(data), "Source") {
		t.Fatalf("Source should not be persisted:\n%s", data)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !loaded.Indexed || loaded.Width != 72 || loaded.Mode != "full" {
		t.Fatalf("loaded = %#v", loaded)
	}
}
