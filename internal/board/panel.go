package board

import (
	"github.com/google/uuid"

	"storyforge/internal/config"
	"storyforge/internal/media"
)

// ImageState tracks a panel image through the drain worker.
type ImageState string

const (
	ImageQueued     ImageState = "queued"
	ImageGenerating ImageState = "generating"
	ImageReady      ImageState = "ready"
	ImageError      ImageState = "error"
	ImageQuotaError ImageState = "quota_error"
)

// VideoState tracks a panel clip through video generation.
type VideoState string

const (
	VideoNone       VideoState = "none"
	VideoGenerating VideoState = "generating"
	VideoReady      VideoState = "ready"
	VideoError      VideoState = "error"
)

// Panel is one storyboard cell. Panels are value types; the Board hands out
// copies and applies every mutation itself under lock.
type Panel struct {
	ID                   string
	Description          string
	Image                media.Ref
	ImageState           ImageState
	Video                media.Ref
	VideoState           VideoState
	VideoError           string
	SceneDurationSeconds int
}

// NewPanel builds a queued panel with a fresh identity.
func NewPanel(description string) Panel {
	return Panel{
		ID:                   uuid.NewString(),
		Description:          description,
		ImageState:           ImageQueued,
		VideoState:           VideoNone,
		SceneDurationSeconds: config.SceneDurationDefault,
	}
}

// VideoEligible reports whether a clip can be generated for this panel right
// now: the image resolved to raw bytes and no clip generation is in flight.
func (p Panel) VideoEligible() bool {
	return p.ImageState == ImageReady && p.Image.IsInline() && p.VideoState != VideoGenerating
}

// imageSettled reports whether the drain worker is done with this panel.
func (p Panel) imageSettled() bool {
	return p.ImageState == ImageReady || p.ImageState == ImageError || p.ImageState == ImageQuotaError
}

// ClampSceneDuration forces a clip length into the supported range.
func ClampSceneDuration(seconds int) int {
	if seconds < config.SceneDurationMin {
		return config.SceneDurationMin
	}
	if seconds > config.SceneDurationMax {
		return config.SceneDurationMax
	}
	return seconds
}
