package config

import (
	"fmt"
	"os"
	"strings"

	"storyforge/internal/language"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeGemini(); err != nil {
		return err
	}
	if err := c.normalizeGeneration(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeGemini() error {
	if c.Gemini.APIKey == "" {
		if value, ok := os.LookupEnv("GEMINI_API_KEY"); ok {
			c.Gemini.APIKey = value
		}
	}
	c.Gemini.APIKey = strings.TrimSpace(c.Gemini.APIKey)
	c.Gemini.BaseURL = strings.TrimRight(strings.TrimSpace(c.Gemini.BaseURL), "/")
	if c.Gemini.BaseURL == "" {
		c.Gemini.BaseURL = defaultGeminiBaseURL
	}
	c.Gemini.TextModel = strings.TrimSpace(c.Gemini.TextModel)
	c.Gemini.ImageModel = strings.TrimSpace(c.Gemini.ImageModel)
	c.Gemini.VideoModel = strings.TrimSpace(c.Gemini.VideoModel)
	return nil
}

func (c *Config) normalizeGeneration() error {
	c.Generation.AspectRatio = strings.TrimSpace(c.Generation.AspectRatio)
	c.Generation.Style = strings.TrimSpace(c.Generation.Style)
	c.Generation.Mood = strings.TrimSpace(c.Generation.Mood)
	c.Generation.VideoLength = strings.TrimSpace(c.Generation.VideoLength)

	raw := strings.TrimSpace(c.Generation.Language)
	if raw == "" {
		raw = defaultLanguage
	}
	tag, ok := language.Normalize(raw)
	if !ok {
		return fmt.Errorf("generation.language: unrecognized language %q", raw)
	}
	c.Generation.Language = tag
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
