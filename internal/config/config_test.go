package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"storyforge/internal/config"
)

func TestDefaultValidatesWithKey(t *testing.T) {
	cfg := config.Default()
	cfg.Gemini.APIKey = "test"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config with key should validate: %v", err)
	}
}

func TestValidateRequiresAPIKey(t *testing.T) {
	cfg := config.Default()
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation failure without api key")
	}
	if !strings.Contains(err.Error(), "gemini.api_key") {
		t.Fatalf("expected api key error, got %v", err)
	}
}

func TestValidateSceneCountBounds(t *testing.T) {
	cfg := config.Default()
	cfg.Gemini.APIKey = "test"
	cfg.Generation.SceneCount = 1
	if err := cfg.Validate(); err == nil {
		t.Fatal("scene_count below minimum must fail validation")
	}
	cfg.Generation.SceneCount = 11
	if err := cfg.Validate(); err == nil {
		t.Fatal("scene_count above maximum must fail validation")
	}
}

func TestLoadParsesFileAndEnvFallback(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[paths]
data_dir = "` + filepath.Join(dir, "data") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[generation]
scene_count = 6
language = "ja"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("GEMINI_API_KEY", "env-key")

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists || resolved == "" {
		t.Fatal("expected config file to be found")
	}
	if cfg.Gemini.APIKey != "env-key" {
		t.Fatalf("expected env fallback key, got %q", cfg.Gemini.APIKey)
	}
	if cfg.Generation.SceneCount != 6 {
		t.Fatalf("expected scene_count 6, got %d", cfg.Generation.SceneCount)
	}
	if cfg.Generation.Language != "ja" {
		t.Fatalf("expected normalized language ja, got %q", cfg.Generation.Language)
	}
}

func TestNormalizeRejectsBadLanguage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[gemini]
api_key = "k"

[generation]
language = "not a tag!"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected language parse failure")
	}
}

func TestDerivedPaths(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.DataDir = "/tmp/forge"
	if got := cfg.ProjectsDBPath(); got != "/tmp/forge/projects.db" {
		t.Fatalf("ProjectsDBPath = %q", got)
	}
	if got := cfg.AssetsDBPath(); got != "/tmp/forge/assets.db" {
		t.Fatalf("AssetsDBPath = %q", got)
	}
	if got := cfg.LockPath(); got != "/tmp/forge/studio.lock" {
		t.Fatalf("LockPath = %q", got)
	}
}
