package board_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"storyforge/internal/board"
	"storyforge/internal/config"
	"storyforge/internal/gateway"
	"storyforge/internal/media"
	"storyforge/internal/services"
)

// stubGenerator implements gateway.Generator with scripted results. Image and
// video payloads embed the request description so tests can verify results
// landed on the right panel.
type stubGenerator struct {
	mu          sync.Mutex
	imageCalls  []string
	imageReqs   []gateway.ImageRequest
	videoCalls  []string
	expandLangs []string

	imageErr  map[string]error
	videoErr  map[string]error
	expandErr error
	scenes    []gateway.Scene

	// onImage runs inside GenerateImage before it returns, outside any board
	// lock. Tests use it to race board mutations against in-flight calls.
	onImage func(description string)

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func newStubGenerator() *stubGenerator {
	return &stubGenerator{
		imageErr: make(map[string]error),
		videoErr: make(map[string]error),
	}
}

func (s *stubGenerator) enter() {
	current := s.inFlight.Add(1)
	for {
		peak := s.maxInFlight.Load()
		if current <= peak || s.maxInFlight.CompareAndSwap(peak, current) {
			return
		}
	}
}

func (s *stubGenerator) GenerateImage(ctx context.Context, req gateway.ImageRequest) (media.Ref, error) {
	s.enter()
	defer s.inFlight.Add(-1)

	s.mu.Lock()
	s.imageCalls = append(s.imageCalls, req.Description)
	s.imageReqs = append(s.imageReqs, req)
	err := s.imageErr[req.Description]
	hook := s.onImage
	s.mu.Unlock()

	if hook != nil {
		hook(req.Description)
	}
	if err != nil {
		return media.Ref{}, err
	}
	return media.Inline("image/png", []byte("img:"+req.Description)), nil
}

func (s *stubGenerator) GenerateVideo(ctx context.Context, req gateway.VideoRequest) (media.Ref, error) {
	s.mu.Lock()
	s.videoCalls = append(s.videoCalls, req.Description)
	err := s.videoErr[req.Description]
	s.mu.Unlock()

	if err != nil {
		return media.Ref{}, err
	}
	return media.Inline("video/mp4", []byte("vid:"+req.Description)), nil
}

func (s *stubGenerator) ExpandScene(ctx context.Context, description, language, model string) ([]gateway.Scene, error) {
	s.mu.Lock()
	s.expandLangs = append(s.expandLangs, language)
	s.mu.Unlock()

	if s.expandErr != nil {
		return nil, s.expandErr
	}
	if len(s.scenes) > 0 {
		return s.scenes, nil
	}
	scenes := make([]gateway.Scene, 3)
	for i := range scenes {
		scenes[i] = gateway.Scene{Description: fmt.Sprintf("%s part %d", description, i+1)}
	}
	return scenes, nil
}

func (s *stubGenerator) GenerateDescription(ctx context.Context, fields gateway.DescriptionFields, model string) (string, error) {
	return "a pitch for " + fields.Name, nil
}

func (s *stubGenerator) GenerateStoryboardScenes(ctx context.Context, idea string, opts gateway.SceneOptions) ([]gateway.Scene, error) {
	scenes := make([]gateway.Scene, opts.SceneCount)
	for i := range scenes {
		scenes[i] = gateway.Scene{Description: fmt.Sprintf("scene %d of %s", i+1, idea)}
	}
	return scenes, nil
}

func (s *stubGenerator) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	return text + " (" + targetLanguage + ")", nil
}

func (s *stubGenerator) imageCallLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.imageCalls...)
}

func (s *stubGenerator) imageRequestLog() []gateway.ImageRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]gateway.ImageRequest(nil), s.imageReqs...)
}

func (s *stubGenerator) expandLanguageLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.expandLangs...)
}

func (s *stubGenerator) videoCallLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.videoCalls...)
}

func newTestBoard(t *testing.T, gen gateway.Generator) *board.Board {
	t.Helper()
	return board.New(gen, board.Settings{
		Style: "cinematic", AspectRatio: "16:9", Language: "en",
		TextModel: "text-model", ImageModel: "image-model", VideoModel: "video-model",
	}, nil, board.WithFanoutInterval(time.Microsecond))
}

func mustSubmit(t *testing.T, b *board.Board, descriptions ...string) []board.Panel {
	t.Helper()
	panels, err := b.SubmitSceneList(descriptions)
	if err != nil {
		t.Fatalf("SubmitSceneList: %v", err)
	}
	return panels
}

func TestSubmitSceneListQueuesPanels(t *testing.T) {
	b := newTestBoard(t, newStubGenerator())
	panels := mustSubmit(t, b, "alpha", "beta")

	if len(panels) != 2 {
		t.Fatalf("expected 2 panels, got %d", len(panels))
	}
	for i, panel := range panels {
		if panel.ID == "" {
			t.Fatalf("panel %d missing identity", i)
		}
		if panel.ImageState != board.ImageQueued {
			t.Fatalf("panel %d expected queued, got %s", i, panel.ImageState)
		}
		if panel.VideoState != board.VideoNone {
			t.Fatalf("panel %d expected no video, got %s", i, panel.VideoState)
		}
		if panel.SceneDurationSeconds != config.SceneDurationDefault {
			t.Fatalf("panel %d expected default duration, got %d", i, panel.SceneDurationSeconds)
		}
	}
}

func TestSubmitSceneListRejectsEmptyDescriptions(t *testing.T) {
	b := newTestBoard(t, newStubGenerator())
	if _, err := b.SubmitSceneList([]string{"ok", "  "}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := b.SubmitSceneList(nil); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for empty list, got %v", err)
	}
}

func TestDeleteRemovesPanel(t *testing.T) {
	b := newTestBoard(t, newStubGenerator())
	panels := mustSubmit(t, b, "alpha", "beta", "gamma")

	if err := b.Delete(panels[1].ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	remaining := b.Panels()
	if len(remaining) != 2 {
		t.Fatalf("expected 2 panels, got %d", len(remaining))
	}
	if remaining[0].Description != "alpha" || remaining[1].Description != "gamma" {
		t.Fatalf("unexpected order after delete: %s, %s", remaining[0].Description, remaining[1].Description)
	}
	if err := b.Delete("missing"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestSetSceneDurationClamps(t *testing.T) {
	b := newTestBoard(t, newStubGenerator())
	panels := mustSubmit(t, b, "alpha")

	cases := []struct {
		in, want int
	}{
		{1, config.SceneDurationMin},
		{2, 2},
		{7, 7},
		{10, 10},
		{99, config.SceneDurationMax},
	}
	for _, tc := range cases {
		if err := b.SetSceneDuration(panels[0].ID, tc.in); err != nil {
			t.Fatalf("SetSceneDuration(%d): %v", tc.in, err)
		}
		got, _ := b.Panel(panels[0].ID)
		if got.SceneDurationSeconds != tc.want {
			t.Fatalf("duration %d: expected clamp to %d, got %d", tc.in, tc.want, got.SceneDurationSeconds)
		}
	}
}

func TestRestoreNormalizesInFlightStates(t *testing.T) {
	b := newTestBoard(t, newStubGenerator())

	b.Restore([]board.Panel{
		{Description: "resumed image", ImageState: board.ImageGenerating},
		{Description: "resumed video", ImageState: board.ImageReady,
			Image: media.Inline("image/png", []byte("x")), VideoState: board.VideoGenerating},
	})

	panels := b.Panels()
	if panels[0].ImageState != board.ImageQueued {
		t.Fatalf("expected in-flight image to requeue, got %s", panels[0].ImageState)
	}
	if panels[1].VideoState != board.VideoNone {
		t.Fatalf("expected in-flight video to reset, got %s", panels[1].VideoState)
	}
	for i, panel := range panels {
		if panel.ID == "" {
			t.Fatalf("panel %d missing minted identity", i)
		}
		if panel.SceneDurationSeconds != config.SceneDurationDefault {
			t.Fatalf("panel %d expected default duration, got %d", i, panel.SceneDurationSeconds)
		}
	}
}

func TestUpdateSettingsAppliesToNewRequests(t *testing.T) {
	gen := newStubGenerator()
	b := newTestBoard(t, gen)
	ctx := context.Background()

	panels := mustSubmit(t, b, "alpha")
	b.Drain(ctx)

	b.UpdateSettings(board.Settings{
		Style: "sketch", AspectRatio: "9:16", Language: "ko",
		TextModel: "text-model", ImageModel: "image-model-2", VideoModel: "video-model",
	})

	if err := b.RegenerateImage(panels[0].ID); err != nil {
		t.Fatalf("RegenerateImage: %v", err)
	}
	b.Drain(ctx)

	reqs := gen.imageRequestLog()
	if len(reqs) != 2 {
		t.Fatalf("expected 2 image requests, got %d", len(reqs))
	}
	if reqs[0].AspectRatio != "16:9" || reqs[0].Model != "image-model" {
		t.Fatalf("first request should use original settings, got %+v", reqs[0])
	}
	last := reqs[1]
	if last.Style != "sketch" || last.AspectRatio != "9:16" || last.Model != "image-model-2" {
		t.Fatalf("regeneration should use updated settings, got %+v", last)
	}

	if _, err := b.ExpandScene(ctx, panels[0].ID); err != nil {
		t.Fatalf("ExpandScene: %v", err)
	}
	langs := gen.expandLanguageLog()
	if len(langs) != 1 || langs[0] != "ko" {
		t.Fatalf("expansion should use updated language, got %v", langs)
	}
}

func TestSummarizeCounts(t *testing.T) {
	gen := newStubGenerator()
	gen.imageErr["bad"] = errors.New("boom")
	b := newTestBoard(t, gen)
	mustSubmit(t, b, "good", "bad")
	b.Drain(context.Background())

	summary := b.Summarize()
	if summary.Total != 2 || summary.ImagesReady != 1 || summary.ImagesFailed != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}
