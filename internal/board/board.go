package board

import (
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"storyforge/internal/config"
	"storyforge/internal/gateway"
	"storyforge/internal/logging"
	"storyforge/internal/media"
	"storyforge/internal/services"
)

// Settings carry the generation parameters for the current storyboard run.
// The session replaces them when a project is loaded or a setting is
// overridden; requests already in flight keep the values they were built with.
type Settings struct {
	Style       string
	Mood        string
	AspectRatio string
	Language    string
	TextModel   string
	ImageModel  string
	VideoModel  string
}

// Board owns the ordered panel collection and serializes image generation.
type Board struct {
	gen      gateway.Generator
	logger   *slog.Logger
	settings Settings
	limiter  *rate.Limiter

	mu      sync.Mutex
	panels  []Panel
	staging map[string][]Panel

	draining atomic.Bool
	notify   chan struct{}
}

// Option customizes board construction.
type Option func(*Board)

// WithFanoutInterval paces concurrent expansion image requests.
func WithFanoutInterval(interval time.Duration) Option {
	return func(b *Board) {
		if interval > 0 {
			b.limiter = rate.NewLimiter(rate.Every(interval), 1)
		}
	}
}

// New constructs an empty board.
func New(gen gateway.Generator, settings Settings, logger *slog.Logger, opts ...Option) *Board {
	if logger == nil {
		logger = logging.NewNop()
	}
	b := &Board{
		gen:      gen,
		logger:   logger.With(logging.String(logging.FieldComponent, "board")),
		settings: settings,
		limiter:  rate.NewLimiter(rate.Every(time.Second), 1),
		staging:  make(map[string][]Panel),
		notify:   make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// UpdateSettings replaces the generation parameters used for subsequent
// image, video, and expansion requests.
func (b *Board) UpdateSettings(settings Settings) {
	b.mu.Lock()
	b.settings = settings
	b.mu.Unlock()
}

// Panels returns a copy of the current panel collection in board order.
func (b *Board) Panels() []Panel {
	b.mu.Lock()
	defer b.mu.Unlock()
	return clonePanels(b.panels)
}

// Panel returns a copy of the panel with the given identity.
func (b *Board) Panel(id string) (Panel, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := b.indexOf(id)
	if idx < 0 {
		return Panel{}, false
	}
	return b.panels[idx], true
}

// SubmitSceneList replaces the board contents with freshly queued panels, one
// per scene description, and wakes the drain worker.
func (b *Board) SubmitSceneList(descriptions []string) ([]Panel, error) {
	cleaned := make([]string, 0, len(descriptions))
	for _, description := range descriptions {
		description = strings.TrimSpace(description)
		if description == "" {
			return nil, services.Wrap(services.ErrValidation, "board", "submit scenes", "scene description must not be empty", nil)
		}
		cleaned = append(cleaned, description)
	}
	if len(cleaned) == 0 {
		return nil, services.Wrap(services.ErrValidation, "board", "submit scenes", "at least one scene required", nil)
	}

	panels := make([]Panel, 0, len(cleaned))
	for _, description := range cleaned {
		panels = append(panels, NewPanel(description))
	}

	b.mu.Lock()
	b.panels = panels
	b.staging = make(map[string][]Panel)
	snapshot := clonePanels(b.panels)
	b.mu.Unlock()

	b.logger.Info("scene list submitted", logging.Int("panels", len(snapshot)))
	b.wake()
	return snapshot, nil
}

// RegenerateImage discards a panel's current image and requeues it. The drain
// worker picks it up in board order.
func (b *Board) RegenerateImage(id string) error {
	b.mu.Lock()
	idx := b.indexOf(id)
	if idx < 0 {
		b.mu.Unlock()
		return services.Wrap(services.ErrNotFound, "board", "regenerate image", "panel "+id, nil)
	}
	if b.panels[idx].ImageState == ImageGenerating {
		b.mu.Unlock()
		return services.Wrap(services.ErrValidation, "board", "regenerate image", "generation already in flight for panel "+id, nil)
	}
	b.panels[idx].Image = media.Ref{}
	b.panels[idx].ImageState = ImageQueued
	b.mu.Unlock()

	b.logger.Info("image requeued", logging.String(logging.FieldPanelID, id))
	b.wake()
	return nil
}

// Delete removes a panel. A generation already in flight for it finishes in
// the background and its result is discarded.
func (b *Board) Delete(id string) error {
	b.mu.Lock()
	idx := b.indexOf(id)
	if idx < 0 {
		b.mu.Unlock()
		return services.Wrap(services.ErrNotFound, "board", "delete panel", "panel "+id, nil)
	}
	b.panels = append(b.panels[:idx], b.panels[idx+1:]...)
	delete(b.staging, id)
	b.mu.Unlock()

	b.logger.Info("panel deleted", logging.String(logging.FieldPanelID, id))
	b.wake()
	return nil
}

// SetSceneDuration sets a panel's clip length, clamped to the supported range.
func (b *Board) SetSceneDuration(id string, seconds int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := b.indexOf(id)
	if idx < 0 {
		return services.Wrap(services.ErrNotFound, "board", "set scene duration", "panel "+id, nil)
	}
	b.panels[idx].SceneDurationSeconds = ClampSceneDuration(seconds)
	return nil
}

// Restore replaces the board contents wholesale, normalizing states that
// cannot survive a process boundary: in-flight markers drop back to their
// restartable state so the drain worker can resume.
func (b *Board) Restore(panels []Panel) {
	restored := clonePanels(panels)
	for i := range restored {
		if restored[i].ID == "" {
			restored[i].ID = uuid.NewString()
		}
		if restored[i].ImageState == ImageGenerating {
			restored[i].ImageState = ImageQueued
			restored[i].Image = media.Ref{}
		}
		if restored[i].VideoState == VideoGenerating {
			restored[i].VideoState = VideoNone
			restored[i].Video = media.Ref{}
		}
		if restored[i].SceneDurationSeconds == 0 {
			restored[i].SceneDurationSeconds = config.SceneDurationDefault
		}
	}

	b.mu.Lock()
	b.panels = restored
	b.staging = make(map[string][]Panel)
	b.mu.Unlock()
	b.wake()
}

// HasVideos reports whether any panel carries a finished clip.
func (b *Board) HasVideos() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, panel := range b.panels {
		if panel.VideoState == VideoReady {
			return true
		}
	}
	return false
}

// CanGenerateAllVideos reports whether at least one panel would be picked up
// by GenerateAllVideos.
func (b *Board) CanGenerateAllVideos() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, panel := range b.panels {
		if panel.VideoEligible() && panel.Video.IsZero() {
			return true
		}
	}
	return false
}

// ImagesSettled reports whether the drain worker has nothing left to do.
func (b *Board) ImagesSettled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, panel := range b.panels {
		if !panel.imageSettled() {
			return false
		}
	}
	return true
}

// Summary aggregates panel states for status output.
type Summary struct {
	Total            int
	ImagesQueued     int
	ImagesGenerating int
	ImagesReady      int
	ImagesFailed     int
	VideosGenerating int
	VideosReady      int
	VideosFailed     int
}

// Summarize counts panels by state.
func (b *Board) Summarize() Summary {
	b.mu.Lock()
	defer b.mu.Unlock()
	summary := Summary{Total: len(b.panels)}
	for _, panel := range b.panels {
		switch panel.ImageState {
		case ImageQueued:
			summary.ImagesQueued++
		case ImageGenerating:
			summary.ImagesGenerating++
		case ImageReady:
			summary.ImagesReady++
		case ImageError, ImageQuotaError:
			summary.ImagesFailed++
		}
		switch panel.VideoState {
		case VideoGenerating:
			summary.VideosGenerating++
		case VideoReady:
			summary.VideosReady++
		case VideoError:
			summary.VideosFailed++
		}
	}
	return summary
}

// wake nudges the drain worker without blocking. A full channel means a wake
// is already pending, which is enough.
func (b *Board) wake() {
	select {
	case b.notify <- struct{}{}:
	default:
	}
}

func (b *Board) indexOf(id string) int {
	for i := range b.panels {
		if b.panels[i].ID == id {
			return i
		}
	}
	return -1
}

func clonePanels(panels []Panel) []Panel {
	cloned := make([]Panel, len(panels))
	copy(cloned, panels)
	return cloned
}

func imageRequest(settings Settings, description string) gateway.ImageRequest {
	return gateway.ImageRequest{
		Description: description,
		Style:       settings.Style,
		AspectRatio: settings.AspectRatio,
		Model:       settings.ImageModel,
	}
}
