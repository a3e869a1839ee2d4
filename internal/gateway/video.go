package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"storyforge/internal/media"
	"storyforge/internal/services"
)

type videoPredictRequest struct {
	Instances  []videoInstance  `json:"instances"`
	Parameters *videoParameters `json:"parameters,omitempty"`
}

type videoInstance struct {
	Prompt string      `json:"prompt"`
	Image  *videoImage `json:"image,omitempty"`
}

type videoImage struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
	MIMEType           string `json:"mimeType"`
}

type videoParameters struct {
	DurationSeconds int `json:"durationSeconds,omitempty"`
}

type longRunningOperation struct {
	Name     string    `json:"name"`
	Done     bool      `json:"done"`
	Error    *apiError `json:"error"`
	Response *struct {
		GenerateVideoResponse struct {
			GeneratedSamples []struct {
				Video struct {
					URI string `json:"uri"`
				} `json:"video"`
			} `json:"generatedSamples"`
		} `json:"generateVideoResponse"`
	} `json:"response"`
}

// GenerateVideo animates a panel image into a clip. It starts a long-running
// operation, polls it to completion at the configured interval, downloads the
// finished clip, and returns it as an inline ref. The call blocks until the
// operation resolves or ctx is done.
func (c *Client) GenerateVideo(ctx context.Context, req VideoRequest) (media.Ref, error) {
	const op = "generate video"
	if strings.TrimSpace(req.Description) == "" {
		return media.Ref{}, services.Wrap(services.ErrValidation, "gateway", op, "description required", nil)
	}
	if len(req.Image) == 0 {
		return media.Ref{}, services.Wrap(services.ErrValidation, "gateway", op, "source image bytes required", nil)
	}
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return media.Ref{}, services.Wrap(services.ErrConfiguration, "gateway", op, "api key required", nil)
	}

	operation, err := c.startVideoOperation(ctx, req, op)
	if err != nil {
		return media.Ref{}, err
	}

	operation, err = c.pollVideoOperation(ctx, operation, op)
	if err != nil {
		return media.Ref{}, err
	}

	uri := videoURI(operation)
	if uri == "" {
		return media.Ref{}, fmt.Errorf("%s: operation finished without a video sample", op)
	}
	data, err := c.get(ctx, uri)
	if err != nil {
		return media.Ref{}, c.classify(op, fmt.Errorf("%s: download clip: %w", op, err))
	}
	if len(data) == 0 {
		return media.Ref{}, fmt.Errorf("%s: downloaded clip is empty", op)
	}
	return media.Inline("video/mp4", data), nil
}

func (c *Client) startVideoOperation(ctx context.Context, req VideoRequest, op string) (longRunningOperation, error) {
	var operation longRunningOperation
	mimeType := req.ImageMIME
	if mimeType == "" {
		mimeType = "image/png"
	}
	payload := videoPredictRequest{
		Instances: []videoInstance{{
			Prompt: videoPrompt(req),
			Image: &videoImage{
				BytesBase64Encoded: base64.StdEncoding.EncodeToString(req.Image),
				MIMEType:           mimeType,
			},
		}},
	}
	if req.DurationSeconds > 0 {
		payload.Parameters = &videoParameters{DurationSeconds: req.DurationSeconds}
	}

	body, err := c.postJSON(ctx, fmt.Sprintf("%s/models/%s:predictLongRunning", c.cfg.BaseURL, req.Model), payload)
	if err != nil {
		return operation, c.classify(op, err)
	}
	if err := json.Unmarshal(body, &operation); err != nil {
		return operation, fmt.Errorf("%s: decode operation: %w", op, err)
	}
	if operation.Error != nil {
		return operation, c.classifyAPIError(op, operation.Error)
	}
	if operation.Name == "" {
		return operation, fmt.Errorf("%s: api returned no operation name", op)
	}
	return operation, nil
}

func (c *Client) pollVideoOperation(ctx context.Context, operation longRunningOperation, op string) (longRunningOperation, error) {
	for !operation.Done {
		if err := c.sleep(ctx, c.pollInterval); err != nil {
			return operation, err
		}
		body, err := c.get(ctx, fmt.Sprintf("%s/%s", c.cfg.BaseURL, operation.Name))
		if err != nil {
			return operation, c.classify(op, err)
		}
		var polled longRunningOperation
		if err := json.Unmarshal(body, &polled); err != nil {
			return operation, fmt.Errorf("%s: decode poll response: %w", op, err)
		}
		if polled.Name == "" {
			polled.Name = operation.Name
		}
		operation = polled
	}
	if operation.Error != nil {
		return operation, c.classifyAPIError(op, operation.Error)
	}
	return operation, nil
}

func videoURI(operation longRunningOperation) string {
	if operation.Response == nil {
		return ""
	}
	for _, sample := range operation.Response.GenerateVideoResponse.GeneratedSamples {
		if sample.Video.URI != "" {
			return sample.Video.URI
		}
	}
	return ""
}
