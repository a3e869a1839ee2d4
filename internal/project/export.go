package project

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storyforge/internal/media"
	"storyforge/internal/services"
)

// exportRecord is the portable on-disk form of one project. Media travels
// inline (data URIs) so an export file is self-contained and can move between
// machines without the asset database.
type exportRecord struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updatedAt"`
	AppState  *Snapshot `json:"appState"`
}

// Export renders every stored project as a self-contained JSON array.
func (s *Store) Export(ctx context.Context) ([]byte, error) {
	listed, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]exportRecord, 0, len(listed))
	for _, entry := range listed {
		full, err := s.Get(ctx, entry.ID)
		if err != nil {
			return nil, err
		}
		records = append(records, exportRecord{
			ID:        full.ID,
			Title:     full.Title,
			UpdatedAt: full.UpdatedAt,
			AppState:  full.Snapshot,
		})
	}
	return json.MarshalIndent(records, "", "  ")
}

// Import reads a previously exported JSON array. The whole file is validated
// before anything is written: one malformed entry rejects the import. Entries
// whose id already exists are skipped, everything else is persisted with its
// media moved into the asset store. The returned count is how many projects
// were actually imported.
func (s *Store) Import(ctx context.Context, data []byte) (int, error) {
	var records []exportRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return 0, services.Wrap(services.ErrValidation, "project", "import", "malformed export file", err)
	}
	for i, record := range records {
		if record.ID == "" {
			return 0, services.Wrap(services.ErrValidation, "project", "import",
				fmt.Sprintf("entry %d missing id", i), nil)
		}
		if !media.IsKeyOwner(record.ID) {
			return 0, services.Wrap(services.ErrValidation, "project", "import",
				fmt.Sprintf("entry %d id %q cannot own asset keys", i, record.ID), nil)
		}
		if validTitle(record.Title) == "" {
			return 0, services.Wrap(services.ErrValidation, "project", "import",
				fmt.Sprintf("entry %d (%s) missing title", i, record.ID), nil)
		}
		if record.AppState == nil {
			return 0, services.Wrap(services.ErrValidation, "project", "import",
				fmt.Sprintf("entry %d (%s) missing app state", i, record.ID), nil)
		}
	}

	imported := 0
	for _, record := range records {
		exists, err := s.exists(ctx, record.ID)
		if err != nil {
			return imported, err
		}
		if exists {
			continue
		}
		if _, err := s.Save(ctx, record.ID, record.Title, record.AppState); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}

func (s *Store) exists(ctx context.Context, id string) (bool, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM projects WHERE id = ?`, id).Scan(&count); err != nil {
		return false, fmt.Errorf("check project %s: %w", id, err)
	}
	return count > 0, nil
}
