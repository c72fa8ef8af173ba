package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	if cfg.Search.Keyword != "hvac" {
		t.Errorf("Keyword = %q, want hvac", cfg.Search.Keyword)
	}
	if cfg.Search.ResultsPerPage != 25 {
		t.Errorf("ResultsPerPage = %d, want 25", cfg.Search.ResultsPerPage)
	}
	if cfg.Search.MaxPages != 20 {
		t.Errorf("MaxPages = %d, want 20", cfg.Search.MaxPages)
	}
	if len(cfg.Search.TargetKeywords) == 0 {
		t.Error("TargetKeywords is empty")
	}
	if len(cfg.Search.NegativeKeywords) == 0 {
		t.Error("NegativeKeywords is empty")
	}
	if !cfg.Browser.Headless {
		t.Error("Headless = false, want true")
	}
	if cfg.Output.Dir == "" || cfg.Output.DataDir == "" {
		t.Error("output directories not set")
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
search:
  keyword: chiller
  target_keywords:
    - chiller
    - cooling tower
  max_pages: 5
browser:
  headless: false
output:
  dir: out
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Search.Keyword != "chiller" {
		t.Errorf("Keyword = %q, want chiller", cfg.Search.Keyword)
	}
	if len(cfg.Search.TargetKeywords) != 2 {
		t.Errorf("TargetKeywords = %v, want the two from the file", cfg.Search.TargetKeywords)
	}
	if cfg.Search.MaxPages != 5 {
		t.Errorf("MaxPages = %d, want 5", cfg.Search.MaxPages)
	}
	if cfg.Browser.Headless {
		t.Error("Headless = true, want false from file")
	}
	if cfg.Output.Dir != "out" {
		t.Errorf("Output.Dir = %q, want out", cfg.Output.Dir)
	}
	// Unset numeric fields fall back to portal defaults
	if cfg.Search.ResultsPerPage != 25 {
		t.Errorf("ResultsPerPage = %d, want default 25", cfg.Search.ResultsPerPage)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("LoadConfig() = nil error for missing file")
	}
}

func TestCredentials(t *testing.T) {
	t.Setenv("BIDNET_USERNAME", "buyer@example.com")
	t.Setenv("BIDNET_PASSWORD", "hunter2")

	user, pass, err := Credentials()
	if err != nil {
		t.Fatalf("Credentials() error = %v", err)
	}
	if user != "buyer@example.com" || pass != "hunter2" {
		t.Errorf("Credentials() = %q, %q", user, pass)
	}
}

func TestCredentialsMissing(t *testing.T) {
	t.Setenv("BIDNET_USERNAME", "")
	t.Setenv("BIDNET_PASSWORD", "")

	if _, _, err := Credentials(); err == nil {
		t.Fatal("Credentials() = nil error with unset environment")
	}
}
