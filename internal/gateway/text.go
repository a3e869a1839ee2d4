package gateway

import (
	"context"
	"fmt"
	"strings"

	"storyforge/internal/config"
	"storyforge/internal/services"
)

// GenerateDescription produces a product pitch paragraph from form fields.
func (c *Client) GenerateDescription(ctx context.Context, fields DescriptionFields, model string) (string, error) {
	const op = "generate description"
	if strings.TrimSpace(fields.Name) == "" {
		return "", services.Wrap(services.ErrValidation, "gateway", op, "product name required", nil)
	}
	resp, err := c.generateContent(ctx, model, textRequest(descriptionPrompt(fields), ""), op)
	if err != nil {
		return "", err
	}
	text := firstText(resp)
	if text == "" {
		return "", fmt.Errorf("%s: empty response", op)
	}
	return text, nil
}

// GenerateStoryboardScenes breaks an idea into exactly opts.SceneCount scenes.
// A response with any other scene count is an error, never silently padded.
func (c *Client) GenerateStoryboardScenes(ctx context.Context, idea string, opts SceneOptions) ([]Scene, error) {
	const op = "generate storyboard"
	if strings.TrimSpace(idea) == "" {
		return nil, services.Wrap(services.ErrValidation, "gateway", op, "idea required", nil)
	}
	if opts.SceneCount < config.SceneCountMin || opts.SceneCount > config.SceneCountMax {
		return nil, services.Wrap(services.ErrValidation, "gateway", op,
			fmt.Sprintf("scene count %d outside [%d, %d]", opts.SceneCount, config.SceneCountMin, config.SceneCountMax), nil)
	}

	resp, err := c.generateContent(ctx, opts.Model, textRequest(sceneListPrompt(idea, opts), "application/json"), op)
	if err != nil {
		return nil, err
	}
	scenes, err := decodeScenes(op, firstText(resp))
	if err != nil {
		return nil, err
	}
	if len(scenes) != opts.SceneCount {
		return nil, fmt.Errorf("%s: expected %d scenes, model returned %d", op, opts.SceneCount, len(scenes))
	}
	return scenes, nil
}

// ExpandScene splits one scene description into finer consecutive sub-scenes.
func (c *Client) ExpandScene(ctx context.Context, description, language, model string) ([]Scene, error) {
	const op = "expand scene"
	if strings.TrimSpace(description) == "" {
		return nil, services.Wrap(services.ErrValidation, "gateway", op, "scene description required", nil)
	}

	count := c.cfg.ExpansionPanelCount
	resp, err := c.generateContent(ctx, model, textRequest(expandScenePrompt(description, language, count), "application/json"), op)
	if err != nil {
		return nil, err
	}
	scenes, err := decodeScenes(op, firstText(resp))
	if err != nil {
		return nil, err
	}
	if len(scenes) != count {
		return nil, fmt.Errorf("%s: expected %d sub-scenes, model returned %d", op, count, len(scenes))
	}
	return scenes, nil
}

// Translate renders text into the target language.
func (c *Client) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	const op = "translate"
	if strings.TrimSpace(text) == "" {
		return "", services.Wrap(services.ErrValidation, "gateway", op, "text required", nil)
	}
	resp, err := c.generateContent(ctx, c.cfg.TextModel, textRequest(translatePrompt(text, targetLanguage), ""), op)
	if err != nil {
		return "", err
	}
	translated := firstText(resp)
	if translated == "" {
		return "", fmt.Errorf("%s: empty response", op)
	}
	return translated, nil
}

func textRequest(prompt, responseMIME string) generateContentRequest {
	req := generateContentRequest{
		Contents: []wireContent{
			{Role: "user", Parts: []wirePart{{Text: prompt}}},
		},
	}
	if responseMIME != "" {
		req.GenerationConfig = &generationConfig{ResponseMIMEType: responseMIME}
	}
	return req
}

func decodeScenes(op, payload string) ([]Scene, error) {
	var scenes []Scene
	if err := DecodeModelJSON(payload, &scenes); err != nil {
		return nil, fmt.Errorf("%s: parse payload: %w", op, err)
	}
	cleaned := make([]Scene, 0, len(scenes))
	for _, scene := range scenes {
		description := strings.TrimSpace(scene.Description)
		if description == "" {
			return nil, fmt.Errorf("%s: scene with empty description", op)
		}
		cleaned = append(cleaned, Scene{Description: description})
	}
	return cleaned, nil
}
