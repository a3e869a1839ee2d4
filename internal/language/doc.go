// Package language normalizes output-language tags and renders the display
// names that generation prompts are written with. All language handling is
// consolidated here so config, studio, and prompt code agree on what a tag
// means.
package language
