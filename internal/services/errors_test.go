package services_test

import (
	"errors"
	"fmt"
	"testing"

	"storyforge/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	cause := errors.New("boom")
	err := services.Wrap(services.ErrValidation, "gateway", "generate image", "bad aspect ratio", cause)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation marker, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "assets", "put", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
}

func TestIsQuotaTaggedError(t *testing.T) {
	err := services.Wrap(services.ErrQuota, "gateway", "generate image", "", nil)
	if !services.IsQuota(err) {
		t.Fatal("expected tagged quota error to classify as quota")
	}
}

func TestIsQuotaMessageSignatures(t *testing.T) {
	cases := []struct {
		message string
		want    bool
	}{
		{"RESOURCE_EXHAUSTED: generateContent quota exceeded", true},
		{"http 429: too many requests", true},
		{"Rate limit reached for model", true},
		{"upstream returned http 500", false},
		{"connection reset by peer", false},
	}
	for _, tc := range cases {
		got := services.IsQuota(fmt.Errorf("%s", tc.message))
		if got != tc.want {
			t.Errorf("IsQuota(%q) = %v, want %v", tc.message, got, tc.want)
		}
	}
}

func TestIsQuotaNil(t *testing.T) {
	if services.IsQuota(nil) {
		t.Fatal("nil error must not classify as quota")
	}
}
