package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Gemini contains connection settings for the generative API.
type Gemini struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	TextModel      string `toml:"text_model"`
	ImageModel     string `toml:"image_model"`
	VideoModel     string `toml:"video_model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Generation contains the default generation configuration for a run.
type Generation struct {
	SceneCount  int    `toml:"scene_count"`
	AspectRatio string `toml:"aspect_ratio"`
	Style       string `toml:"style"`
	Mood        string `toml:"mood"`
	VideoLength string `toml:"video_length"`
	Language    string `toml:"language"`
}

// Workflow contains pipeline timing knobs.
type Workflow struct {
	VideoPollInterval   int `toml:"video_poll_interval"`
	ErrorRetryInterval  int `toml:"error_retry_interval"`
	FanoutRateInterval  int `toml:"fanout_rate_interval"`
	ThumbnailCacheTTL   int `toml:"thumbnail_cache_ttl"`
	ExpansionPanelCount int `toml:"expansion_panel_count"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for storyforge.
//
// Configuration sections by subsystem:
//   - Paths: data and log directories
//   - Gemini: generative API credentials and model identifiers
//   - Generation: default storyboard run options
//   - Workflow: polling intervals and fan-out pacing
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Gemini     Gemini     `toml:"gemini"`
	Generation Generation `toml:"generation"`
	Workflow   Workflow   `toml:"workflow"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/storyforge/config.toml")
}

// SampleConfig returns the embedded sample configuration document.
func SampleConfig() string {
	return sampleConfig
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean reports
// whether a file was actually found at the resolved path.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("storyforge.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the studio needs to run.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ProjectsDBPath returns the path of the project store database.
func (c *Config) ProjectsDBPath() string {
	return filepath.Join(c.Paths.DataDir, "projects.db")
}

// AssetsDBPath returns the path of the asset store database.
func (c *Config) AssetsDBPath() string {
	return filepath.Join(c.Paths.DataDir, "assets.db")
}

// LockPath returns the path of the studio process lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "studio.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
