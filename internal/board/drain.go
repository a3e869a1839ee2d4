package board

import (
	"context"
	"errors"

	"storyforge/internal/gateway"
	"storyforge/internal/logging"
	"storyforge/internal/media"
	"storyforge/internal/services"
)

// Run is the drain worker loop. It blocks until ctx is done, waking on every
// board mutation and resolving queued panel images one at a time.
func (b *Board) Run(ctx context.Context) {
	b.logger.Info("drain worker started")
	for {
		select {
		case <-ctx.Done():
			b.logger.Info("drain worker stopped")
			return
		case <-b.notify:
		}
		b.Drain(ctx)
	}
}

// Drain resolves queued panel images until none remain, strictly in board
// order. At most one drain runs at a time; a second caller returns
// immediately while the first keeps going, and any mutation made meanwhile is
// observed because the collection is rescanned from the front after every
// completed generation.
func (b *Board) Drain(ctx context.Context) {
	if !b.draining.CompareAndSwap(false, true) {
		return
	}
	defer b.draining.Store(false)

	for ctx.Err() == nil {
		id, req, ok := b.claimNext()
		if !ok {
			return
		}
		b.logger.Info("generating panel image", logging.String(logging.FieldPanelID, id))
		ref, err := b.gen.GenerateImage(ctx, req)
		b.applyImageResult(id, ref, err)
	}
}

// claimNext marks the first queued panel as generating and returns its
// request. It refuses to claim while another image is in flight.
func (b *Board) claimNext() (string, gateway.ImageRequest, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.panels {
		switch b.panels[i].ImageState {
		case ImageGenerating:
			return "", gateway.ImageRequest{}, false
		case ImageQueued:
			b.panels[i].ImageState = ImageGenerating
			return b.panels[i].ID, imageRequest(b.settings, b.panels[i].Description), true
		}
	}
	return "", gateway.ImageRequest{}, false
}

// applyImageResult lands a finished generation on the panel that requested
// it. The panel may have been deleted while the call was in flight; the
// result is then discarded so it cannot land on a neighbor.
func (b *Board) applyImageResult(id string, ref media.Ref, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.indexOf(id)
	if idx < 0 {
		b.logger.Info("discarding image result for deleted panel", logging.String(logging.FieldPanelID, id))
		return
	}
	panel := &b.panels[idx]

	switch {
	case err == nil:
		panel.Image = ref
		panel.ImageState = ImageReady
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		// Shutdown, not failure. Requeue so the next session resumes it.
		panel.Image = media.Ref{}
		panel.ImageState = ImageQueued
	case services.IsQuota(err):
		panel.Image = media.TerminalQuota()
		panel.ImageState = ImageQuotaError
		b.logger.Warn("image generation hit quota",
			logging.String(logging.FieldPanelID, id), logging.Error(err))
	default:
		panel.Image = media.TerminalError()
		panel.ImageState = ImageError
		b.logger.Warn("image generation failed",
			logging.String(logging.FieldPanelID, id), logging.Error(err))
	}
}
