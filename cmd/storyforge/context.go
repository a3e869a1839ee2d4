package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"

	"storyforge/internal/assets"
	"storyforge/internal/config"
	"storyforge/internal/gateway"
	"storyforge/internal/logging"
	"storyforge/internal/project"
	"storyforge/internal/studio"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// withSession opens the stores behind an exclusive data-dir lock, builds a
// studio session, runs fn, and tears everything down afterwards.
func (c *commandContext) withSession(fn func(*studio.Session) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}

	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire data dir lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("data directory %s is in use by another storyforge process", filepath.Dir(cfg.LockPath()))
	}
	defer func() {
		_ = lock.Unlock()
	}()

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	assetStore, err := assets.Open(cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = assetStore.Close()
	}()

	projectStore, err := project.Open(cfg, assetStore)
	if err != nil {
		return err
	}
	defer func() {
		_ = projectStore.Close()
	}()

	client := gateway.NewClient(gateway.Config{
		APIKey:              cfg.Gemini.APIKey,
		BaseURL:             cfg.Gemini.BaseURL,
		TextModel:           cfg.Gemini.TextModel,
		TimeoutSeconds:      cfg.Gemini.TimeoutSeconds,
		VideoPollIntervalMs: cfg.Workflow.VideoPollInterval * 1000,
		ExpansionPanelCount: cfg.Workflow.ExpansionPanelCount,
	})

	return fn(studio.New(cfg, client, projectStore, logger))
}

func newLogger(cfg *config.Config) (*slog.Logger, error) {
	return logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{filepath.Join(cfg.Paths.LogDir, "storyforge.log")},
	})
}
