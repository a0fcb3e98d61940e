package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"framesight/internal/config"
)

func TestLoadDefaultsAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv(config.AnalyzerAPIKeyEnv, "env-key")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantWork := filepath.Join(tempHome, ".local", "share", "framesight", "work")
	if cfg.Paths.WorkDir != wantWork {
		t.Fatalf("unexpected work dir: got %q want %q", cfg.Paths.WorkDir, wantWork)
	}
	if cfg.Analyzer.APIKey != "env-key" {
		t.Fatalf("expected analyzer key from env, got %q", cfg.Analyzer.APIKey)
	}
	if cfg.Tracker.Strategy != "centroid" {
		t.Fatalf("unexpected default tracker strategy: %q", cfg.Tracker.Strategy)
	}
	if cfg.Tracker.MaxDistance != 50 {
		t.Fatalf("unexpected default max distance: %v", cfg.Tracker.MaxDistance)
	}
	if cfg.Tracker.StalenessWindow != 5 {
		t.Fatalf("unexpected default staleness window: %d", cfg.Tracker.StalenessWindow)
	}
	if cfg.Scenes.Threshold != 0.4 {
		t.Fatalf("unexpected default scene threshold: %v", cfg.Scenes.Threshold)
	}
	if !cfg.Masks.Enabled {
		t.Fatal("expected masks enabled by default")
	}
}

func TestLoadParsesExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := []byte("[tracker]\nmax_distance = 75.0\nstaleness_window = 9\n\n[logging]\nformat = \"json\"\n")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != path {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Tracker.MaxDistance != 75 {
		t.Fatalf("unexpected max distance: %v", cfg.Tracker.MaxDistance)
	}
	if cfg.Tracker.StalenessWindow != 9 {
		t.Fatalf("unexpected staleness window: %d", cfg.Tracker.StalenessWindow)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("unexpected log format: %q", cfg.Logging.Format)
	}
	// Untouched sections keep defaults.
	if cfg.Detector.MinConfidence != 0.5 {
		t.Fatalf("unexpected detector confidence: %v", cfg.Detector.MinConfidence)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"negative max distance", func(c *config.Config) { c.Tracker.MaxDistance = -1 }},
		{"zero staleness window", func(c *config.Config) { c.Tracker.StalenessWindow = 0 }},
		{"unknown strategy", func(c *config.Config) { c.Tracker.Strategy = "kalman" }},
		{"confidence out of range", func(c *config.Config) { c.Detector.MinConfidence = 1.5 }},
		{"scene threshold out of range", func(c *config.Config) { c.Scenes.Threshold = 2 }},
		{"zero stage timeout", func(c *config.Config) { c.Stages.SemanticTimeout = 0 }},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "xml" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to exist")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sample config should validate: %v", err)
	}
}
