package gateway

import (
	"context"

	"storyforge/internal/media"
)

// Scene is one storyboard beat produced by a text operation.
type Scene struct {
	Description string `json:"description"`
}

// DescriptionFields are the form inputs a product description is generated from.
type DescriptionFields struct {
	Name     string
	Features string
	Audience string
	Tone     string
	Language string
}

// SceneOptions parameterize storyboard scene-list generation.
type SceneOptions struct {
	SceneCount  int
	Style       string
	Mood        string
	VideoLength string
	Language    string
	Model       string
}

// ImageRequest parameterizes a single panel image generation.
type ImageRequest struct {
	Description string
	Style       string
	AspectRatio string
	Model       string
}

// VideoRequest parameterizes a long-running panel video generation.
type VideoRequest struct {
	Description     string
	ImageMIME       string
	Image           []byte
	Style           string
	DurationSeconds int
	Model           string
}

// Generator is the only surface the pipeline depends on.
type Generator interface {
	GenerateDescription(ctx context.Context, fields DescriptionFields, model string) (string, error)
	GenerateStoryboardScenes(ctx context.Context, idea string, opts SceneOptions) ([]Scene, error)
	ExpandScene(ctx context.Context, description, language, model string) ([]Scene, error)
	GenerateImage(ctx context.Context, req ImageRequest) (media.Ref, error)
	GenerateVideo(ctx context.Context, req VideoRequest) (media.Ref, error)
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
}
