package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"storyforge/internal/services"
)

func textResponse(text string) map[string]any {
	return map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"parts": []any{map[string]any{"text": text}},
				},
			},
		},
	}
}

func TestGenerateStoryboardScenesCodeFence(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/demo-text:generateContent" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("x-goog-api-key"); got != "test" {
			t.Fatalf("expected api key header, got %q", got)
		}
		payload := textResponse("```json\n[{\"description\":\"open on the product\"},{\"description\":\"show it in use\"},{\"description\":\"closing logo shot\"}]\n```")
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			t.Fatalf("encode response: %v", err)
		}
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL})
	scenes, err := client.GenerateStoryboardScenes(context.Background(), "a coffee brand ad", SceneOptions{
		SceneCount: 3, Style: "cinematic", Mood: "warm", VideoLength: "30s", Language: "en", Model: "demo-text",
	})
	if err != nil {
		t.Fatalf("GenerateStoryboardScenes returned error: %v", err)
	}
	if len(scenes) != 3 {
		t.Fatalf("expected 3 scenes, got %d", len(scenes))
	}
	if scenes[0].Description != "open on the product" {
		t.Fatalf("unexpected first scene: %q", scenes[0].Description)
	}
}

func TestGenerateStoryboardScenesCountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload := textResponse(`[{"description":"only"},{"description":"two"}]`)
		_ = json.NewEncoder(w).Encode(payload)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL})
	_, err := client.GenerateStoryboardScenes(context.Background(), "idea", SceneOptions{
		SceneCount: 4, Model: "demo-text",
	})
	if err == nil {
		t.Fatal("expected count mismatch to fail, got nil")
	}
}

func TestGenerateStoryboardScenesRejectsOutOfRangeCount(t *testing.T) {
	client := NewClient(Config{APIKey: "test", BaseURL: "http://unreachable.invalid"})
	_, err := client.GenerateStoryboardScenes(context.Background(), "idea", SceneOptions{SceneCount: 11, Model: "m"})
	if err == nil {
		t.Fatal("expected scene count 11 to be rejected")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation marker, got %v", err)
	}
}

func TestGenerateImageInlineData(t *testing.T) {
	raw := []byte{0x89, 0x50, 0x4e, 0x47}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/demo-image:generateContent" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		payload := map[string]any{
			"candidates": []any{
				map[string]any{
					"content": map[string]any{
						"parts": []any{
							map[string]any{"inlineData": map[string]any{
								"mimeType": "image/png",
								"data":     base64.StdEncoding.EncodeToString(raw),
							}},
						},
					},
				},
			},
		}
		_ = json.NewEncoder(w).Encode(payload)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL})
	ref, err := client.GenerateImage(context.Background(), ImageRequest{
		Description: "a red bicycle", Style: "watercolor", AspectRatio: "16:9", Model: "demo-image",
	})
	if err != nil {
		t.Fatalf("GenerateImage returned error: %v", err)
	}
	if !ref.IsInline() {
		t.Fatalf("expected inline ref, got kind %v", ref.Kind)
	}
	if ref.MIME != "image/png" || !bytes.Equal(ref.Bytes, raw) {
		t.Fatalf("unexpected inline payload: %s %v", ref.MIME, ref.Bytes)
	}
}

func TestGenerateImageQuotaClassification(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"Resource has been exhausted","status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL}, WithRetryMaxAttempts(1))
	_, err := client.GenerateImage(context.Background(), ImageRequest{Description: "x", Model: "demo-image"})
	if err == nil {
		t.Fatal("expected quota failure")
	}
	if !services.IsQuota(err) {
		t.Fatalf("expected quota classification, got %v", err)
	}
}

func TestGenerateImageRetriesServerError(t *testing.T) {
	var calls atomic.Int32
	raw := []byte{0x01}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		payload := map[string]any{
			"candidates": []any{
				map[string]any{
					"content": map[string]any{
						"parts": []any{
							map[string]any{"inlineData": map[string]any{
								"mimeType": "image/png",
								"data":     base64.StdEncoding.EncodeToString(raw),
							}},
						},
					},
				},
			},
		}
		_ = json.NewEncoder(w).Encode(payload)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL}, WithSleeper(func(time.Duration) {}))
	ref, err := client.GenerateImage(context.Background(), ImageRequest{Description: "x", Model: "demo-image"})
	if err != nil {
		t.Fatalf("GenerateImage returned error: %v", err)
	}
	if !ref.IsInline() {
		t.Fatal("expected inline ref after retry")
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls.Load())
	}
}

func TestGenerateVideoPollsToCompletion(t *testing.T) {
	var polls atomic.Int32
	clip := []byte("not really an mp4")

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/models/demo-video:predictLongRunning", func(w http.ResponseWriter, r *http.Request) {
		var req videoPredictRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode predict request: %v", err)
		}
		if len(req.Instances) != 1 || req.Instances[0].Image == nil {
			t.Fatal("expected one instance carrying the source image")
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"name": "models/demo-video/operations/op1",
			"done": false,
		})
	})
	mux.HandleFunc("/models/demo-video/operations/op1", func(w http.ResponseWriter, r *http.Request) {
		if polls.Add(1) < 2 {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"name": "models/demo-video/operations/op1",
				"done": false,
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"name": "models/demo-video/operations/op1",
			"done": true,
			"response": map[string]any{
				"generateVideoResponse": map[string]any{
					"generatedSamples": []any{
						map[string]any{"video": map[string]any{"uri": server.URL + "/files/clip"}},
					},
				},
			},
		})
	})
	mux.HandleFunc("/files/clip", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(clip)
	})

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL}, WithSleeper(func(time.Duration) {}))
	ref, err := client.GenerateVideo(context.Background(), VideoRequest{
		Description: "pan across the bicycle", ImageMIME: "image/png", Image: []byte{0x01}, DurationSeconds: 4, Model: "demo-video",
	})
	if err != nil {
		t.Fatalf("GenerateVideo returned error: %v", err)
	}
	if !ref.IsInline() || ref.MIME != "video/mp4" {
		t.Fatalf("expected inline video/mp4 ref, got kind=%v mime=%q", ref.Kind, ref.MIME)
	}
	if !bytes.Equal(ref.Bytes, clip) {
		t.Fatal("downloaded clip bytes differ")
	}
	if polls.Load() != 2 {
		t.Fatalf("expected 2 polls, got %d", polls.Load())
	}
}

func TestGenerateVideoOperationFailure(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/models/demo-video:predictLongRunning", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"name": "models/demo-video/operations/op1",
			"done": true,
			"error": map[string]any{
				"code": 400, "message": "unsafe prompt", "status": "INVALID_ARGUMENT",
			},
		})
	})

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL}, WithSleeper(func(time.Duration) {}))
	_, err := client.GenerateVideo(context.Background(), VideoRequest{
		Description: "x", Image: []byte{0x01}, Model: "demo-video",
	})
	if err == nil {
		t.Fatal("expected operation failure")
	}
	if services.IsQuota(err) {
		t.Fatalf("expected non-quota failure, got quota: %v", err)
	}
}

func TestTranslate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/demo-text:generateContent" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(textResponse("안녕하세요"))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, TextModel: "demo-text"})
	translated, err := client.Translate(context.Background(), "hello", "ko")
	if err != nil {
		t.Fatalf("Translate returned error: %v", err)
	}
	if translated != "안녕하세요" {
		t.Fatalf("unexpected translation %q", translated)
	}
}

func TestGenerateDescriptionRequiresName(t *testing.T) {
	client := NewClient(Config{APIKey: "test", BaseURL: "http://unreachable.invalid"})
	_, err := client.GenerateDescription(context.Background(), DescriptionFields{}, "demo-text")
	if err == nil {
		t.Fatal("expected empty product name to be rejected")
	}
}
