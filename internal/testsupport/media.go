package testsupport

import (
	"testing"

	"storyforge/internal/media"
)

// InlineImage returns a small inline image ref with recognizable bytes.
func InlineImage(t testing.TB, marker byte) media.Ref {
	t.Helper()
	return media.Inline("image/png", []byte{0x89, 0x50, 0x4e, 0x47, marker})
}

// InlineVideo returns a small inline video ref with recognizable bytes.
func InlineVideo(t testing.TB, marker byte) media.Ref {
	t.Helper()
	return media.Inline("video/mp4", []byte{0x00, 0x00, 0x00, 0x18, marker})
}
