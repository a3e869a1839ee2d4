package gateway

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"storyforge/internal/media"
	"storyforge/internal/services"
)

// GenerateImage produces a single panel image and returns it as an inline ref.
// Quota exhaustion surfaces as an error carrying services.ErrQuota.
func (c *Client) GenerateImage(ctx context.Context, req ImageRequest) (media.Ref, error) {
	const op = "generate image"
	if strings.TrimSpace(req.Description) == "" {
		return media.Ref{}, services.Wrap(services.ErrValidation, "gateway", op, "description required", nil)
	}

	payload := generateContentRequest{
		Contents: []wireContent{
			{Role: "user", Parts: []wirePart{{Text: imagePrompt(req)}}},
		},
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"IMAGE"},
		},
	}
	if ratio := strings.TrimSpace(req.AspectRatio); ratio != "" {
		payload.GenerationConfig.ImageConfig = &imageWireConfig{AspectRatio: ratio}
	}

	resp, err := c.generateContent(ctx, req.Model, payload, op)
	if err != nil {
		return media.Ref{}, err
	}

	mimeType, encoded, ok := firstInlineData(resp)
	if !ok {
		return media.Ref{}, fmt.Errorf("%s: response carried no image data", op)
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return media.Ref{}, fmt.Errorf("%s: decode image payload: %w", op, err)
	}
	if len(data) == 0 {
		return media.Ref{}, fmt.Errorf("%s: empty image payload", op)
	}
	if mimeType == "" {
		mimeType = "image/png"
	}
	return media.Inline(mimeType, data), nil
}
