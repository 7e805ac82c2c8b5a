// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"

	"phi-scrub/internal/paths"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoadConfigOrDefault_NoFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(paths.ConfigDirEnv, t.TempDir())

	cfg, err := LoadConfigOrDefault("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Defaults.Format == "" {
		t.Error("expected default format to be set")
	}
}

func TestLoadConfigOrDefault_NonexistentFile(t *testing.T) {
	// A path that doesn't exist should fall back to defaults
	cfg, err := LoadConfigOrDefault("/nonexistent/path/config.yaml")
	if cfg == nil {
		t.Fatal("expected non-nil config (fallback to defaults)")
	}
	if err == nil {
		t.Error("expected the load error to be reported")
	}
}

func TestLoadConfigOrDefault_ValidFile(t *testing.T) {
	configPath := writeConfig(t, `
defaults:
  format: json
  mode: deidentify
  categories: NAMES,DATES
  workers: 3
engine:
  max_context_iterations: 10
lookup:
  dir: ./lists
`)

	cfg, err := LoadConfigOrDefault(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Defaults.Format != "json" {
		t.Errorf("expected format=json, got %q", cfg.Defaults.Format)
	}
	if cfg.Defaults.Mode != "deidentify" {
		t.Errorf("expected mode=deidentify, got %q", cfg.Defaults.Mode)
	}
	if cfg.Defaults.Categories != "NAMES,DATES" {
		t.Errorf("expected categories=NAMES,DATES, got %q", cfg.Defaults.Categories)
	}
	if cfg.Defaults.Workers != 3 {
		t.Errorf("expected workers=3, got %d", cfg.Defaults.Workers)
	}
	if cfg.Engine.MaxContextIterations != 10 {
		t.Errorf("expected max_context_iterations=10, got %d", cfg.Engine.MaxContextIterations)
	}
	if cfg.Lookup.Dir != "./lists" {
		t.Errorf("expected lookup dir ./lists, got %q", cfg.Lookup.Dir)
	}
	// profiles not mentioned in the file keep their defaults
	if cfg.GetProfile("research") == nil {
		t.Error("expected the research profile to survive loading")
	}
}

func TestLoadConfigOrDefault_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, "defaults: [unclosed\n")

	// Should fall back to defaults, not panic
	cfg, err := LoadConfigOrDefault(configPath)
	if cfg == nil {
		t.Fatal("expected non-nil config (fallback to defaults on parse error)")
	}
	if err == nil {
		t.Error("expected a parse error")
	}
	if cfg.Defaults.Format != "text" {
		t.Errorf("expected default format after a parse error, got %q", cfg.Defaults.Format)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Defaults.Format != "text" {
		t.Errorf("expected default format=text, got %q", cfg.Defaults.Format)
	}
	if cfg.Defaults.Mode != "annotate" {
		t.Errorf("expected default mode=annotate, got %q", cfg.Defaults.Mode)
	}
	if cfg.Defaults.Categories != "all" {
		t.Errorf("expected default categories=all, got %q", cfg.Defaults.Categories)
	}
}

func TestLoadConfig_InvalidMode(t *testing.T) {
	configPath := writeConfig(t, "defaults:\n  mode: redact\n")
	if _, err := LoadConfig(configPath); err == nil {
		t.Error("expected an error for an unknown mode")
	}

	configPath = writeConfig(t, "profiles:\n  fast:\n    workers: -1\n")
	if _, err := LoadConfig(configPath); err == nil {
		t.Error("expected an error for negative profile workers")
	}
}

func TestApplyProfile(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cfg.ApplyProfile("research"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Defaults.Mode != "deidentify" || cfg.Defaults.Format != "json" {
		t.Errorf("profile not applied: mode=%q format=%q", cfg.Defaults.Mode, cfg.Defaults.Format)
	}
	if !cfg.Defaults.NoColor {
		t.Error("expected no_color from profile")
	}
	if cfg.Audit.IndexFile == "" {
		t.Error("expected the profile index file")
	}

	if err := cfg.ApplyProfile("missing"); err == nil {
		t.Error("expected an error for a missing profile")
	}
}

func TestFindConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(paths.ConfigDirEnv, filepath.Join(dir, "user"))

	if got := FindConfigFile(); got != "" {
		t.Errorf("expected no config file, got %q", got)
	}

	if err := os.WriteFile(".phi-scrub.yaml", []byte("defaults: {}\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if got := FindConfigFile(); got != ".phi-scrub.yaml" {
		t.Errorf("expected .phi-scrub.yaml, got %q", got)
	}

	if err := os.WriteFile("phi-scrub.yaml", []byte("defaults: {}\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if got := FindConfigFile(); got != "phi-scrub.yaml" {
		t.Errorf("expected phi-scrub.yaml to take precedence, got %q", got)
	}
}

func TestValidatePath(t *testing.T) {
	if err := paths.ValidatePath("lists\x00"); err == nil {
		t.Error("expected null byte to be rejected")
	}
	if err := paths.ValidatePath(""); err != nil {
		t.Errorf("empty path should be valid: %v", err)
	}
}
