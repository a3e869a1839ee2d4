package board

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"storyforge/internal/config"
	"storyforge/internal/logging"
	"storyforge/internal/media"
	"storyforge/internal/services"
)

// ExpandScene splits one panel into finer sub-scenes and resolves their
// images concurrently, paced by the fan-out limiter. The result is held in a
// staging area keyed by the source panel; the board itself is untouched until
// CommitExpansion. Individual image failures are tagged on their sub-panel
// rather than failing the expansion.
func (b *Board) ExpandScene(ctx context.Context, id string) ([]Panel, error) {
	b.mu.Lock()
	idx := b.indexOf(id)
	if idx < 0 {
		b.mu.Unlock()
		return nil, services.Wrap(services.ErrNotFound, "board", "expand scene", "panel "+id, nil)
	}
	description := b.panels[idx].Description
	settings := b.settings
	b.mu.Unlock()

	scenes, err := b.gen.ExpandScene(ctx, description, settings.Language, settings.TextModel)
	if err != nil {
		return nil, err
	}

	subs := make([]Panel, len(scenes))
	for i, scene := range scenes {
		subs[i] = NewPanel(scene.Description)
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range subs {
		i := i
		g.Go(func() error {
			if err := b.limiter.Wait(gctx); err != nil {
				return err
			}
			ref, genErr := b.gen.GenerateImage(gctx, imageRequest(settings, subs[i].Description))
			// Each goroutine owns a distinct index, so no lock is needed.
			switch {
			case genErr == nil:
				subs[i].Image = ref
				subs[i].ImageState = ImageReady
			case errors.Is(genErr, context.Canceled) || errors.Is(genErr, context.DeadlineExceeded):
				return genErr
			case services.IsQuota(genErr):
				subs[i].Image = media.TerminalQuota()
				subs[i].ImageState = ImageQuotaError
			default:
				subs[i].Image = media.TerminalError()
				subs[i].ImageState = ImageError
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	b.staging[id] = clonePanels(subs)
	b.mu.Unlock()

	b.logger.Info("scene expanded into staging",
		logging.String(logging.FieldPanelID, id), logging.Int("sub_panels", len(subs)))
	return subs, nil
}

// Staged returns the staged expansion for a panel, if any.
func (b *Board) Staged(id string) ([]Panel, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs, ok := b.staging[id]
	if !ok {
		return nil, false
	}
	return clonePanels(subs), true
}

// DiscardExpansion drops a staged expansion without touching the board.
func (b *Board) DiscardExpansion(id string) {
	b.mu.Lock()
	delete(b.staging, id)
	b.mu.Unlock()
}

// CommitExpansion splices the given sub-panels into the board in place of the
// source panel, preserving order. Callers may have edited descriptions or
// removed sub-panels since staging; whatever is passed in is what lands.
func (b *Board) CommitExpansion(id string, subs []Panel) error {
	if len(subs) == 0 {
		return services.Wrap(services.ErrValidation, "board", "commit expansion", "at least one sub-panel required", nil)
	}

	normalized := clonePanels(subs)
	for i := range normalized {
		if normalized[i].ID == "" {
			normalized[i] = NewPanel(normalized[i].Description)
			normalized[i].Image = subs[i].Image
			normalized[i].ImageState = subs[i].ImageState
		}
		// Sub-panels start without clips regardless of what the caller held.
		normalized[i].Video = media.Ref{}
		normalized[i].VideoState = VideoNone
		normalized[i].VideoError = ""
		if normalized[i].Image.IsInline() {
			normalized[i].ImageState = ImageReady
		}
		if normalized[i].SceneDurationSeconds == 0 {
			normalized[i].SceneDurationSeconds = config.SceneDurationDefault
		}
	}

	b.mu.Lock()
	idx := b.indexOf(id)
	if idx < 0 {
		b.mu.Unlock()
		return services.Wrap(services.ErrNotFound, "board", "commit expansion", "panel "+id, nil)
	}
	replaced := make([]Panel, 0, len(b.panels)-1+len(normalized))
	replaced = append(replaced, b.panels[:idx]...)
	replaced = append(replaced, normalized...)
	replaced = append(replaced, b.panels[idx+1:]...)
	b.panels = replaced
	delete(b.staging, id)
	b.mu.Unlock()

	b.logger.Info("expansion committed",
		logging.String(logging.FieldPanelID, id), logging.Int("sub_panels", len(normalized)))
	b.wake()
	return nil
}
