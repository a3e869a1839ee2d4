package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateGemini(); err != nil {
		return err
	}
	if err := c.validateGeneration(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateGemini() error {
	if c.Gemini.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/storyforge/config.toml"
		}
		return fmt.Errorf("gemini.api_key is required. Set GEMINI_API_KEY env var or edit %s (create with 'storyforge config init')", defaultPath)
	}
	if strings.TrimSpace(c.Gemini.TextModel) == "" {
		return errors.New("gemini.text_model must be set")
	}
	if strings.TrimSpace(c.Gemini.ImageModel) == "" {
		return errors.New("gemini.image_model must be set")
	}
	if strings.TrimSpace(c.Gemini.VideoModel) == "" {
		return errors.New("gemini.video_model must be set")
	}
	if c.Gemini.TimeoutSeconds <= 0 {
		return errors.New("gemini.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateGeneration() error {
	if c.Generation.SceneCount < SceneCountMin || c.Generation.SceneCount > SceneCountMax {
		return fmt.Errorf("generation.scene_count must be between %d and %d", SceneCountMin, SceneCountMax)
	}
	if c.Generation.AspectRatio == "" {
		return errors.New("generation.aspect_ratio must be set")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	for key, value := range map[string]int{
		"workflow.video_poll_interval":   c.Workflow.VideoPollInterval,
		"workflow.error_retry_interval":  c.Workflow.ErrorRetryInterval,
		"workflow.fanout_rate_interval":  c.Workflow.FanoutRateInterval,
		"workflow.thumbnail_cache_ttl":   c.Workflow.ThumbnailCacheTTL,
		"workflow.expansion_panel_count": c.Workflow.ExpansionPanelCount,
	} {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
