package studio

import (
	"storyforge/internal/board"
	"storyforge/internal/project"
)

func panelsToRecords(panels []board.Panel) []project.PanelRecord {
	records := make([]project.PanelRecord, len(panels))
	for i, panel := range panels {
		records[i] = project.PanelRecord{
			ID:                   panel.ID,
			Description:          panel.Description,
			Image:                panel.Image,
			ImageState:           string(panel.ImageState),
			Video:                panel.Video,
			VideoState:           string(panel.VideoState),
			VideoError:           panel.VideoError,
			SceneDurationSeconds: panel.SceneDurationSeconds,
		}
	}
	return records
}

func recordsToPanels(records []project.PanelRecord) []board.Panel {
	panels := make([]board.Panel, len(records))
	for i, record := range records {
		panels[i] = board.Panel{
			ID:                   record.ID,
			Description:          record.Description,
			Image:                record.Image,
			ImageState:           imageStateFromRecord(record),
			Video:                record.Video,
			VideoState:           videoStateFromRecord(record),
			VideoError:           record.VideoError,
			SceneDurationSeconds: record.SceneDurationSeconds,
		}
	}
	return panels
}

// imageStateFromRecord tolerates records written by older builds or edited by
// hand: an unknown state is derived from what the ref actually holds.
func imageStateFromRecord(record project.PanelRecord) board.ImageState {
	switch state := board.ImageState(record.ImageState); state {
	case board.ImageQueued, board.ImageGenerating, board.ImageReady, board.ImageError, board.ImageQuotaError:
		return state
	}
	switch {
	case record.Image.IsInline() || record.Image.IsDurable():
		return board.ImageReady
	case record.Image.IsTerminal():
		return board.ImageError
	default:
		return board.ImageQueued
	}
}

func videoStateFromRecord(record project.PanelRecord) board.VideoState {
	switch state := board.VideoState(record.VideoState); state {
	case board.VideoNone, board.VideoGenerating, board.VideoReady, board.VideoError:
		return state
	}
	switch {
	case record.Video.IsInline() || record.Video.IsDurable():
		return board.VideoReady
	case record.Video.IsTerminal():
		return board.VideoError
	default:
		return board.VideoNone
	}
}
