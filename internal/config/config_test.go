package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	// Run from a directory with no config file so only defaults apply.
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(orig) })

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Retrieval.TargetCount != 10 {
		t.Errorf("TargetCount = %d, want 10", cfg.Retrieval.TargetCount)
	}
	if cfg.Retrieval.LowThreshold != 5 {
		t.Errorf("LowThreshold = %d, want 5", cfg.Retrieval.LowThreshold)
	}
	if cfg.Retrieval.PerSitePrimary != 5 || cfg.Retrieval.PerSiteAlternative != 3 {
		t.Errorf("per-site caps = %d/%d, want 5/3", cfg.Retrieval.PerSitePrimary, cfg.Retrieval.PerSiteAlternative)
	}
	if cfg.Analysis.MaxComparisons != 3 {
		t.Errorf("MaxComparisons = %d, want 3", cfg.Analysis.MaxComparisons)
	}
	if cfg.TTS.Language != "hi" {
		t.Errorf("TTS language = %q, want hi", cfg.TTS.Language)
	}
	if cfg.API.Port != 8000 {
		t.Errorf("API port = %d, want 8000", cfg.API.Port)
	}
	if cfg.Search.Endpoint == "" {
		t.Error("missing default search endpoint")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	yaml := `
search:
  api_key: file-key
  engine_id: file-engine
retrieval:
  target_count: 4
  deadline_sec: 30
analysis:
  max_comparisons: 2
tts:
  language: en
api:
  port: 9000
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	if cfg.Search.APIKey != "file-key" || cfg.Search.EngineID != "file-engine" {
		t.Errorf("search credentials = %q/%q", cfg.Search.APIKey, cfg.Search.EngineID)
	}
	if cfg.Retrieval.TargetCount != 4 {
		t.Errorf("TargetCount = %d, want 4", cfg.Retrieval.TargetCount)
	}
	if cfg.Retrieval.DeadlineSec != 30 {
		t.Errorf("DeadlineSec = %d, want 30", cfg.Retrieval.DeadlineSec)
	}
	if cfg.Analysis.MaxComparisons != 2 {
		t.Errorf("MaxComparisons = %d, want 2", cfg.Analysis.MaxComparisons)
	}
	if cfg.TTS.Language != "en" {
		t.Errorf("language = %q, want en", cfg.TTS.Language)
	}
	if cfg.API.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.API.Port)
	}

	// Unset keys keep their defaults.
	if cfg.Retrieval.LowThreshold != 5 {
		t.Errorf("LowThreshold = %d, want default 5", cfg.Retrieval.LowThreshold)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestEnvOverrides(t *testing.T) {
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(orig) })
	t.Setenv("NEWSVANI_SEARCH_API_KEY", "env-key")
	t.Setenv("NEWSVANI_SEARCH_ENGINE_ID", "env-engine")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Search.APIKey != "env-key" {
		t.Errorf("APIKey = %q, want env override", cfg.Search.APIKey)
	}
	if cfg.Search.EngineID != "env-engine" {
		t.Errorf("EngineID = %q, want env override", cfg.Search.EngineID)
	}
}

func TestCheckAPIKeys(t *testing.T) {
	cfg := &Config{}
	cfg.Search.APIKey = "AIzaSyExampleKey123"

	statuses := CheckAPIKeys(cfg)
	if len(statuses) != 2 {
		t.Fatalf("got %d key statuses, want 2", len(statuses))
	}

	key := statuses[0]
	if !key.IsSet || key.Source != KeySourceConfig {
		t.Errorf("API key status = %+v", key)
	}
	if key.Masked != "AIz...123" {
		t.Errorf("masked = %q", key.Masked)
	}

	engine := statuses[1]
	if engine.IsSet || engine.Source != KeySourceNone {
		t.Errorf("engine status = %+v", engine)
	}
}

func TestMaskKey(t *testing.T) {
	if got := maskKey("short"); got != "***" {
		t.Errorf("short key masked as %q", got)
	}
	if got := maskKey("abcdefghijkl"); got != "abc...jkl" {
		t.Errorf("masked = %q", got)
	}
}
