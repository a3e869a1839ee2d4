package board

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"storyforge/internal/gateway"
	"storyforge/internal/logging"
	"storyforge/internal/media"
	"storyforge/internal/services"
)

// GenerateVideo animates a single panel's image into a clip. The call blocks
// until the clip resolves; the panel shows videoState generating meanwhile.
// It is rejected when the image has not resolved to raw bytes or a clip
// generation is already in flight for the panel.
func (b *Board) GenerateVideo(ctx context.Context, id string) error {
	b.mu.Lock()
	idx := b.indexOf(id)
	if idx < 0 {
		b.mu.Unlock()
		return services.Wrap(services.ErrNotFound, "board", "generate video", "panel "+id, nil)
	}
	panel := b.panels[idx]
	if panel.VideoState == VideoGenerating {
		b.mu.Unlock()
		return services.Wrap(services.ErrValidation, "board", "generate video", "clip generation already in flight for panel "+id, nil)
	}
	if panel.ImageState != ImageReady || !panel.Image.IsInline() {
		b.mu.Unlock()
		return services.Wrap(services.ErrValidation, "board", "generate video", "panel "+id+" has no displayable image", nil)
	}
	b.panels[idx].VideoState = VideoGenerating
	b.panels[idx].VideoError = ""
	req := gateway.VideoRequest{
		Description:     panel.Description,
		ImageMIME:       panel.Image.MIME,
		Image:           panel.Image.Bytes,
		Style:           b.settings.Style,
		DurationSeconds: panel.SceneDurationSeconds,
		Model:           b.settings.VideoModel,
	}
	b.mu.Unlock()

	b.logger.Info("generating panel video", logging.String(logging.FieldPanelID, id))
	ref, err := b.gen.GenerateVideo(ctx, req)
	b.applyVideoResult(id, ref, err)
	return err
}

// RegenerateVideo replaces an existing clip. It is the same operation as
// GenerateVideo; the separate name marks the explicit user intent, since bulk
// generation never touches panels that already have a clip.
func (b *Board) RegenerateVideo(ctx context.Context, id string) error {
	return b.GenerateVideo(ctx, id)
}

// GenerateAllVideos starts clip generation for every eligible panel that does
// not have one yet and waits for all of them. Per-panel failures are recorded
// on their panels, never propagated; the return value is how many panels were
// picked up.
func (b *Board) GenerateAllVideos(ctx context.Context) int {
	b.mu.Lock()
	eligible := make([]string, 0, len(b.panels))
	for _, panel := range b.panels {
		if panel.VideoEligible() && panel.Video.IsZero() {
			eligible = append(eligible, panel.ID)
		}
	}
	b.mu.Unlock()

	if len(eligible) == 0 {
		return 0
	}
	b.logger.Info("generating all videos", logging.Int("panels", len(eligible)))

	var g errgroup.Group
	for _, id := range eligible {
		id := id
		g.Go(func() error {
			_ = b.GenerateVideo(ctx, id)
			return nil
		})
	}
	_ = g.Wait()
	return len(eligible)
}

func (b *Board) applyVideoResult(id string, ref media.Ref, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.indexOf(id)
	if idx < 0 {
		b.logger.Info("discarding video result for deleted panel", logging.String(logging.FieldPanelID, id))
		return
	}
	panel := &b.panels[idx]

	switch {
	case err == nil:
		panel.Video = ref
		panel.VideoState = VideoReady
		panel.VideoError = ""
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		panel.Video = media.Ref{}
		panel.VideoState = VideoNone
		panel.VideoError = ""
	default:
		if services.IsQuota(err) {
			panel.Video = media.TerminalQuota()
		} else {
			panel.Video = media.TerminalError()
		}
		panel.VideoState = VideoError
		panel.VideoError = err.Error()
		b.logger.Warn("video generation failed",
			logging.String(logging.FieldPanelID, id), logging.Error(err))
	}
}
