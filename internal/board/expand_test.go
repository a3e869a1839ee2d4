package board_test

import (
	"context"
	"errors"
	"testing"

	"storyforge/internal/board"
	"storyforge/internal/gateway"
	"storyforge/internal/media"
	"storyforge/internal/services"
)

func TestExpandSceneStagesWithoutTouchingBoard(t *testing.T) {
	gen := newStubGenerator()
	b := newTestBoard(t, gen)
	panels := mustSubmit(t, b, "alpha", "beta")
	b.Drain(context.Background())

	subs, err := b.ExpandScene(context.Background(), panels[0].ID)
	if err != nil {
		t.Fatalf("ExpandScene: %v", err)
	}
	if len(subs) != 3 {
		t.Fatalf("expected 3 sub-panels, got %d", len(subs))
	}
	for i, sub := range subs {
		if sub.ImageState != board.ImageReady {
			t.Fatalf("sub-panel %d expected ready image, got %s", i, sub.ImageState)
		}
		if sub.ID == "" || sub.ID == panels[0].ID {
			t.Fatalf("sub-panel %d has bad identity %q", i, sub.ID)
		}
	}

	// Staging never mutates the live board.
	if got := len(b.Panels()); got != 2 {
		t.Fatalf("expected board unchanged during staging, got %d panels", got)
	}
	staged, ok := b.Staged(panels[0].ID)
	if !ok || len(staged) != 3 {
		t.Fatalf("expected staged expansion, got ok=%v len=%d", ok, len(staged))
	}
}

func TestExpandSceneTagsPartialFailures(t *testing.T) {
	gen := newStubGenerator()
	gen.scenes = []gateway.Scene{
		{Description: "fine one"},
		{Description: "broken one"},
		{Description: "fine two"},
	}
	gen.imageErr["broken one"] = errors.New("model exploded")
	b := newTestBoard(t, gen)
	panels := mustSubmit(t, b, "alpha")
	b.Drain(context.Background())

	subs, err := b.ExpandScene(context.Background(), panels[0].ID)
	if err != nil {
		t.Fatalf("ExpandScene: %v", err)
	}
	states := map[string]board.ImageState{}
	for _, sub := range subs {
		states[sub.Description] = sub.ImageState
	}
	if states["fine one"] != board.ImageReady || states["fine two"] != board.ImageReady {
		t.Fatalf("expected healthy sub-panels ready, got %v", states)
	}
	if states["broken one"] != board.ImageError {
		t.Fatalf("expected failed sub-panel tagged, got %v", states)
	}
}

func TestExpandSceneTextFailurePropagates(t *testing.T) {
	gen := newStubGenerator()
	gen.expandErr = errors.New("refused")
	b := newTestBoard(t, gen)
	panels := mustSubmit(t, b, "alpha")

	if _, err := b.ExpandScene(context.Background(), panels[0].ID); err == nil {
		t.Fatal("expected expansion to fail when the text call fails")
	}
	if _, ok := b.Staged(panels[0].ID); ok {
		t.Fatal("expected nothing staged after failure")
	}
}

func TestCommitExpansionSplicesInPlace(t *testing.T) {
	gen := newStubGenerator()
	b := newTestBoard(t, gen)
	panels := mustSubmit(t, b, "alpha", "beta", "gamma")
	b.Drain(context.Background())

	subs, err := b.ExpandScene(context.Background(), panels[1].ID)
	if err != nil {
		t.Fatalf("ExpandScene: %v", err)
	}
	if err := b.CommitExpansion(panels[1].ID, subs); err != nil {
		t.Fatalf("CommitExpansion: %v", err)
	}

	after := b.Panels()
	if len(after) != 5 {
		t.Fatalf("expected net growth of 2, got %d panels", len(after))
	}
	if after[0].Description != "alpha" || after[4].Description != "gamma" {
		t.Fatalf("expected neighbors preserved, got %s .. %s", after[0].Description, after[4].Description)
	}
	for i := 1; i <= 3; i++ {
		if after[i].VideoState != board.VideoNone || !after[i].Video.IsZero() {
			t.Fatalf("sub-panel %d expected fresh video state", i)
		}
	}
	if _, ok := b.Staged(panels[1].ID); ok {
		t.Fatal("expected staging cleared after commit")
	}
}

func TestCommitExpansionHonorsCallerEdits(t *testing.T) {
	gen := newStubGenerator()
	b := newTestBoard(t, gen)
	panels := mustSubmit(t, b, "alpha")
	b.Drain(context.Background())

	subs, err := b.ExpandScene(context.Background(), panels[0].ID)
	if err != nil {
		t.Fatalf("ExpandScene: %v", err)
	}
	// The caller reviewed staging and kept only the first sub-panel.
	kept := subs[:1]
	kept[0].Description = "hand edited"
	if err := b.CommitExpansion(panels[0].ID, kept); err != nil {
		t.Fatalf("CommitExpansion: %v", err)
	}

	after := b.Panels()
	if len(after) != 1 || after[0].Description != "hand edited" {
		t.Fatalf("expected the edited single sub-panel, got %+v", after)
	}
}

func TestCommitExpansionValidation(t *testing.T) {
	gen := newStubGenerator()
	b := newTestBoard(t, gen)
	panels := mustSubmit(t, b, "alpha")

	if err := b.CommitExpansion(panels[0].ID, nil); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for empty commit, got %v", err)
	}
	sub := board.NewPanel("sub")
	sub.Image = media.Inline("image/png", []byte("x"))
	if err := b.CommitExpansion("missing", []board.Panel{sub}); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}
