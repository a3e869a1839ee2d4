package project

import (
	"encoding/json"
	"strings"
	"time"

	"storyforge/internal/media"
)

// FormFields are the product-pitch inputs captured in a snapshot.
type FormFields struct {
	Name     string `json:"name"`
	Features string `json:"features,omitempty"`
	Audience string `json:"audience,omitempty"`
	Tone     string `json:"tone,omitempty"`
}

// GenerationSettings are the run parameters captured in a snapshot.
type GenerationSettings struct {
	SceneCount  int    `json:"sceneCount"`
	AspectRatio string `json:"aspectRatio"`
	Style       string `json:"style"`
	Mood        string `json:"mood"`
	VideoLength string `json:"videoLength"`
	Language    string `json:"language"`
}

// PanelRecord is the persisted form of one storyboard panel.
type PanelRecord struct {
	ID                   string    `json:"id"`
	Description          string    `json:"description"`
	Image                media.Ref `json:"image"`
	ImageState           string    `json:"imageState"`
	Video                media.Ref `json:"video"`
	VideoState           string    `json:"videoState"`
	VideoError           string    `json:"videoError,omitempty"`
	SceneDurationSeconds int       `json:"sceneDurationSeconds"`
}

// Snapshot is the complete persisted studio state for one project.
type Snapshot struct {
	Mode     string             `json:"mode"`
	Idea     string             `json:"idea"`
	Fields   FormFields         `json:"fields"`
	Settings GenerationSettings `json:"settings"`
	Panels   []PanelRecord      `json:"panels"`
}

// Clone deep-copies a snapshot so the caller's copy and the persisted copy
// cannot alias each other.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	cloned := *s
	cloned.Panels = make([]PanelRecord, len(s.Panels))
	copy(cloned.Panels, s.Panels)
	return &cloned
}

// Project is one stored project. Snapshot is nil in listings.
type Project struct {
	ID        string
	Title     string
	Thumbnail media.Ref
	UpdatedAt time.Time
	Snapshot  *Snapshot
}

func encodeSnapshot(snapshot *Snapshot) (string, error) {
	encoded, err := json.Marshal(snapshot)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func decodeSnapshot(raw string) (*Snapshot, error) {
	var snapshot Snapshot
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func validTitle(title string) string {
	return strings.TrimSpace(title)
}
