package project

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"
	_ "modernc.org/sqlite"

	"storyforge/internal/assets"
	"storyforge/internal/config"
	"storyforge/internal/media"
	"storyforge/internal/services"
)

// Store manages project persistence backed by SQLite plus the asset store.
type Store struct {
	db     *sql.DB
	assets *assets.Store
	thumbs *cache.Cache
	path   string
}

// Open initializes or connects to the project database and applies migrations.
func Open(cfg *config.Config, assetStore *assets.Store) (*Store, error) {
	if assetStore == nil {
		return nil, errors.New("project store requires an asset store")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	db, err := sql.Open("sqlite", cfg.ProjectsDBPath())
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	ttl := time.Duration(cfg.Workflow.ThumbnailCacheTTL) * time.Second
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	store := &Store{
		db:     db,
		assets: assetStore,
		thumbs: cache.New(ttl, 2*ttl),
		path:   cfg.ProjectsDBPath(),
	}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection. The asset store is owned
// by the caller and is left open.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save persists a snapshot under the given project id, minting one when the
// id is empty. Inline media payloads move into the asset store and their
// panel refs are rewritten to durable keys; payloads no longer referenced by
// the snapshot are removed. The caller's snapshot is never mutated.
func (s *Store) Save(ctx context.Context, id, title string, snapshot *Snapshot) (*Project, error) {
	title = validTitle(title)
	if title == "" {
		return nil, services.Wrap(services.ErrValidation, "project", "save", "title must not be empty", nil)
	}
	if snapshot == nil {
		return nil, services.Wrap(services.ErrValidation, "project", "save", "snapshot required", nil)
	}
	if id == "" {
		id = mintProjectID()
	}

	persisted := snapshot.Clone()
	if err := s.externalizeMedia(ctx, id, persisted); err != nil {
		return nil, err
	}

	thumbnail := firstThumbnail(persisted)
	now := time.Now().UTC()
	encoded, err := encodeSnapshot(persisted)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO projects (id, title, thumbnail, app_state, updated_at) VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET title = excluded.title, thumbnail = excluded.thumbnail,
             app_state = excluded.app_state, updated_at = excluded.updated_at`,
		id, title, thumbnail.Encode(), encoded, now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("save project %s: %w", id, err)
	}

	if err := s.collectOrphanedAssets(ctx, id, persisted); err != nil {
		return nil, err
	}
	s.thumbs.Delete(id)

	return &Project{ID: id, Title: title, Thumbnail: thumbnail, UpdatedAt: now, Snapshot: persisted}, nil
}

// Get loads a project with its snapshot fully hydrated: durable keys become
// inline bytes again. A key whose payload is gone hydrates to the error
// sentinel so one lost blob cannot sink the whole project.
func (s *Store) Get(ctx context.Context, id string) (*Project, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, title, thumbnail, app_state, updated_at FROM projects WHERE id = ?`,
		id,
	)
	project, appState, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "project", "get", "project "+id, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("get project %s: %w", id, err)
	}

	snapshot, err := decodeSnapshot(appState)
	if err != nil {
		return nil, fmt.Errorf("decode project %s snapshot: %w", id, err)
	}
	s.hydrateMedia(ctx, snapshot)
	project.Snapshot = snapshot
	project.Thumbnail = s.hydrateRef(ctx, project.Thumbnail)
	return project, nil
}

// List returns project metadata newest-first. Snapshots stay on disk;
// thumbnails hydrate through the TTL cache.
func (s *Store) List(ctx context.Context) ([]Project, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, title, thumbnail, app_state, updated_at FROM projects ORDER BY updated_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		project, _, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		project.Thumbnail = s.cachedThumbnail(ctx, project.ID, project.Thumbnail)
		projects = append(projects, *project)
	}
	return projects, rows.Err()
}

// Delete removes a project and every asset payload it owns. Assets go first
// so a crash between the two steps leaves only an orphan-free project row.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.assets.DeletePrefix(ctx, id+"-"); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return services.Wrap(services.ErrNotFound, "project", "delete", "project "+id, nil)
	}
	s.thumbs.Delete(id)
	return nil
}

// externalizeMedia moves inline payloads into the asset store in place.
// Durable refs from an earlier save are kept; minted keys never collide with
// them.
func (s *Store) externalizeMedia(ctx context.Context, id string, snapshot *Snapshot) error {
	used := make(map[string]struct{})
	for _, panel := range snapshot.Panels {
		if panel.Image.IsDurable() {
			used[panel.Image.Key] = struct{}{}
		}
		if panel.Video.IsDurable() {
			used[panel.Video.Key] = struct{}{}
		}
	}

	for i := range snapshot.Panels {
		panel := &snapshot.Panels[i]
		if panel.Image.IsInline() {
			key := mintAssetKey(id, "img", i, used)
			if err := s.assets.Put(ctx, key, panel.Image.MIME, panel.Image.Bytes); err != nil {
				return err
			}
			panel.Image = media.Durable(key)
		}
		if panel.Video.IsInline() {
			key := mintAssetKey(id, "vid", i, used)
			if err := s.assets.Put(ctx, key, panel.Video.MIME, panel.Video.Bytes); err != nil {
				return err
			}
			panel.Video = media.Durable(key)
		}
	}
	return nil
}

// collectOrphanedAssets removes stored payloads the snapshot no longer
// references, such as images replaced by a regeneration.
func (s *Store) collectOrphanedAssets(ctx context.Context, id string, snapshot *Snapshot) error {
	referenced := make(map[string]struct{})
	for _, panel := range snapshot.Panels {
		if panel.Image.IsDurable() {
			referenced[panel.Image.Key] = struct{}{}
		}
		if panel.Video.IsDurable() {
			referenced[panel.Video.Key] = struct{}{}
		}
	}

	keys, err := s.assets.Keys(ctx, id+"-")
	if err != nil {
		return err
	}
	for _, key := range keys {
		if _, ok := referenced[key]; ok {
			continue
		}
		if _, err := s.assets.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) hydrateMedia(ctx context.Context, snapshot *Snapshot) {
	for i := range snapshot.Panels {
		panel := &snapshot.Panels[i]
		before := panel.Image
		panel.Image = s.hydrateRef(ctx, panel.Image)
		if before.IsDurable() && panel.Image.IsTerminal() {
			panel.ImageState = "error"
		}
		beforeVideo := panel.Video
		panel.Video = s.hydrateRef(ctx, panel.Video)
		if beforeVideo.IsDurable() && panel.Video.IsTerminal() {
			panel.VideoState = "error"
			if panel.VideoError == "" {
				panel.VideoError = "stored clip is missing"
			}
		}
	}
}

// hydrateRef resolves a durable ref to inline bytes. Anything else passes
// through untouched.
func (s *Store) hydrateRef(ctx context.Context, ref media.Ref) media.Ref {
	if !ref.IsDurable() {
		return ref
	}
	blob, err := s.assets.Get(ctx, ref.Key)
	if err != nil || blob == nil {
		return media.TerminalError()
	}
	return media.Inline(blob.MIME, blob.Data)
}

func (s *Store) cachedThumbnail(ctx context.Context, id string, ref media.Ref) media.Ref {
	if !ref.IsDurable() {
		return ref
	}
	if cached, ok := s.thumbs.Get(id); ok {
		return cached.(media.Ref)
	}
	hydrated := s.hydrateRef(ctx, ref)
	s.thumbs.Set(id, hydrated, cache.DefaultExpiration)
	return hydrated
}

// firstThumbnail picks the first panel image that resolved to real content.
func firstThumbnail(snapshot *Snapshot) media.Ref {
	for _, panel := range snapshot.Panels {
		if panel.Image.IsDurable() || panel.Image.IsInline() {
			return panel.Image
		}
	}
	return media.Ref{}
}

func scanProject(scanner interface{ Scan(dest ...any) error }) (*Project, string, error) {
	var (
		id, title, thumbnail, appState string
		updatedRaw                     string
	)
	if err := scanner.Scan(&id, &title, &thumbnail, &appState, &updatedRaw); err != nil {
		return nil, "", err
	}
	project := &Project{ID: id, Title: title, Thumbnail: media.Decode(thumbnail)}
	if updated, err := time.Parse(time.RFC3339Nano, updatedRaw); err == nil {
		project.UpdatedAt = updated
	}
	return project, appState, nil
}

func mintProjectID() string {
	return uuid.NewString()
}

func mintAssetKey(id, kind string, index int, used map[string]struct{}) string {
	for n := index; ; n++ {
		key := fmt.Sprintf("%s-%s-%d", id, kind, n)
		if _, taken := used[key]; !taken {
			used[key] = struct{}{}
			return key
		}
	}
}
