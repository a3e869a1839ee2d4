package gateway

import (
	"fmt"
	"strings"

	"storyforge/internal/language"
)

func sceneListPrompt(idea string, opts SceneOptions) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a storyboard director for short-form video ads.\n")
	fmt.Fprintf(&b, "Break the following concept into exactly %d scenes for a %s video.\n", opts.SceneCount, opts.VideoLength)
	fmt.Fprintf(&b, "Visual style: %s. Mood: %s.\n", opts.Style, opts.Mood)
	fmt.Fprintf(&b, "Write each scene description in %s.\n", languageName(opts.Language))
	b.WriteString("Each description must be a single self-contained visual instruction suitable for an image generation model.\n")
	fmt.Fprintf(&b, "Respond with a JSON array of exactly %d objects, each shaped {\"description\": \"...\"}. No other text.\n\n", opts.SceneCount)
	b.WriteString("Concept:\n")
	b.WriteString(strings.TrimSpace(idea))
	return b.String()
}

func expandScenePrompt(description, languageTag string, count int) string {
	var b strings.Builder
	b.WriteString("You are a storyboard director refining a single scene into a finer sequence.\n")
	fmt.Fprintf(&b, "Split the following scene into exactly %d consecutive sub-scenes that together cover the same action.\n", count)
	fmt.Fprintf(&b, "Write each sub-scene description in %s.\n", languageName(languageTag))
	fmt.Fprintf(&b, "Respond with a JSON array of exactly %d objects, each shaped {\"description\": \"...\"}. No other text.\n\n", count)
	b.WriteString("Scene:\n")
	b.WriteString(strings.TrimSpace(description))
	return b.String()
}

func descriptionPrompt(fields DescriptionFields) string {
	var b strings.Builder
	b.WriteString("You are a marketing copywriter. Write one compelling product pitch paragraph.\n")
	fmt.Fprintf(&b, "Write it in %s. Respond with the paragraph only, no preamble.\n\n", languageName(fields.Language))
	fmt.Fprintf(&b, "Product: %s\n", strings.TrimSpace(fields.Name))
	if f := strings.TrimSpace(fields.Features); f != "" {
		fmt.Fprintf(&b, "Key features: %s\n", f)
	}
	if a := strings.TrimSpace(fields.Audience); a != "" {
		fmt.Fprintf(&b, "Target audience: %s\n", a)
	}
	if tone := strings.TrimSpace(fields.Tone); tone != "" {
		fmt.Fprintf(&b, "Tone: %s\n", tone)
	}
	return b.String()
}

func translatePrompt(text, targetLanguage string) string {
	return fmt.Sprintf(
		"Translate the following text into %s. Respond with the translation only, no explanations.\n\n%s",
		languageName(targetLanguage), strings.TrimSpace(text),
	)
}

func imagePrompt(req ImageRequest) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(req.Description))
	if style := strings.TrimSpace(req.Style); style != "" {
		fmt.Fprintf(&b, "\n\nVisual style: %s.", style)
	}
	return b.String()
}

func videoPrompt(req VideoRequest) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(req.Description))
	if style := strings.TrimSpace(req.Style); style != "" {
		fmt.Fprintf(&b, "\n\nVisual style: %s.", style)
	}
	return b.String()
}

func languageName(tag string) string {
	return language.DisplayName(tag)
}
