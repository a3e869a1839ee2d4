package config

const (
	defaultDataDir            = "~/.local/share/storyforge"
	defaultLogDir             = "~/.local/share/storyforge/logs"
	defaultGeminiBaseURL      = "https://generativelanguage.googleapis.com/v1beta"
	defaultTextModel          = "gemini-2.5-flash"
	defaultImageModel         = "gemini-2.5-flash-image"
	defaultVideoModel         = "veo-3.1-generate-preview"
	defaultGeminiTimeout      = 120
	defaultSceneCount         = 4
	defaultAspectRatio        = "16:9"
	defaultStyle              = "cinematic"
	defaultMood               = "neutral"
	defaultVideoLength        = "short"
	defaultLanguage           = "en"
	defaultVideoPollInterval  = 10
	defaultErrorRetryInterval = 10
	defaultFanoutRateInterval = 1
	defaultThumbnailCacheTTL  = 300
	defaultExpansionPanels    = 3
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// SceneCountMin and SceneCountMax bound the per-run scene count.
const (
	SceneCountMin = 2
	SceneCountMax = 10
)

// SceneDurationMin and SceneDurationMax bound per-panel clip length in seconds.
const (
	SceneDurationMin     = 2
	SceneDurationMax     = 10
	SceneDurationDefault = 4
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Gemini: Gemini{
			BaseURL:        defaultGeminiBaseURL,
			TextModel:      defaultTextModel,
			ImageModel:     defaultImageModel,
			VideoModel:     defaultVideoModel,
			TimeoutSeconds: defaultGeminiTimeout,
		},
		Generation: Generation{
			SceneCount:  defaultSceneCount,
			AspectRatio: defaultAspectRatio,
			Style:       defaultStyle,
			Mood:        defaultMood,
			VideoLength: defaultVideoLength,
			Language:    defaultLanguage,
		},
		Workflow: Workflow{
			VideoPollInterval:   defaultVideoPollInterval,
			ErrorRetryInterval:  defaultErrorRetryInterval,
			FanoutRateInterval:  defaultFanoutRateInterval,
			ThumbnailCacheTTL:   defaultThumbnailCacheTTL,
			ExpansionPanelCount: defaultExpansionPanels,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
