package cfg

import (
	"strings"
	"testing"
	"time"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestLoadArgsDefaults(t *testing.T) {
	cfg, err := LoadArgs([]string{})
	if err != nil {
		t.Fatalf("Expected defaults to load, got: %v", err)
	}

	if cfg.Command != CommandScrape {
		t.Errorf("Expected default command '%s', got '%s'", CommandScrape, cfg.Command)
	}
	if cfg.WikiAPI != "https://oldschool.runescape.wiki/api.php" {
		t.Errorf("Expected default wiki API, got '%s'", cfg.WikiAPI)
	}
	if cfg.RequestDelay != 500*time.Millisecond {
		t.Errorf("Expected request delay 500ms, got %v", cfg.RequestDelay)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Expected timeout 30s, got %v", cfg.Timeout)
	}
	if cfg.OutputDir != "./data" {
		t.Errorf("Expected output dir './data', got '%s'", cfg.OutputDir)
	}
	if cfg.DBPath != "./data/droppy.db" {
		t.Errorf("Expected db path './data/droppy.db', got '%s'", cfg.DBPath)
	}
	if cfg.ScrapeInterval != 0 {
		t.Errorf("Expected periodic scraping to be disabled, got %v", cfg.ScrapeInterval)
	}
	if cfg.LogFormat != "text" {
		t.Errorf("Expected log format 'text', got '%s'", cfg.LogFormat)
	}
	if cfg.ResolveItemIDs || cfg.ClogFilter || cfg.Debug {
		t.Error("Expected optional features to be off by default")
	}
	if Get() != cfg {
		t.Error("Expected Get to return the loaded configuration")
	}
}

func TestLoadArgsServe(t *testing.T) {
	cfg, err := LoadArgs([]string{
		"--request-delay", "0",
		"--scrape-interval", "3600",
		"--api-key", "secret",
		"--log-format", "json",
		"--clog-filter",
		"--resolve-item-ids",
		"serve",
	})
	if err != nil {
		t.Fatalf("Expected serve config to load, got: %v", err)
	}

	if cfg.Command != CommandServe {
		t.Errorf("Expected command '%s', got '%s'", CommandServe, cfg.Command)
	}
	if cfg.RequestDelay != 0 {
		t.Errorf("Expected no request delay, got %v", cfg.RequestDelay)
	}
	if cfg.ScrapeInterval != time.Hour {
		t.Errorf("Expected scrape interval 1h, got %v", cfg.ScrapeInterval)
	}
	if cfg.APIAccessKey != "secret" {
		t.Errorf("Expected API key 'secret', got '%s'", cfg.APIAccessKey)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("Expected log format 'json', got '%s'", cfg.LogFormat)
	}
	if !cfg.ClogFilter || !cfg.ResolveItemIDs {
		t.Error("Expected optional features to be enabled")
	}
}

func TestLoadArgsFromEnv(t *testing.T) {
	t.Setenv("OUTPUT_DIR", "/tmp/drops")
	t.Setenv("TIMEOUT", "5")

	cfg, err := LoadArgs([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.OutputDir != "/tmp/drops" {
		t.Errorf("Expected output dir from env, got '%s'", cfg.OutputDir)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Expected timeout 5s from env, got %v", cfg.Timeout)
	}
}

func TestLoadArgsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		errPart string
	}{
		{"unknown command", []string{"publish"}, "unknown command"},
		{"negative delay", []string{"--request-delay=-1"}, "request delay"},
		{"zero timeout", []string{"--timeout", "0"}, "timeout"},
		{"negative interval", []string{"--scrape-interval=-5", "serve"}, "scrape interval"},
		{"bad log format", []string{"--log-format", "xml"}, "failed to parse configuration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadArgs(tt.args)
			if err == nil {
				t.Fatal("Expected error for invalid configuration")
			}
			if !strings.Contains(err.Error(), tt.errPart) {
				t.Errorf("Expected error containing '%s', got: %v", tt.errPart, err)
			}
		})
	}
}
