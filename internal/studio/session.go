package studio

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"storyforge/internal/board"
	"storyforge/internal/config"
	"storyforge/internal/gateway"
	"storyforge/internal/language"
	"storyforge/internal/logging"
	"storyforge/internal/project"
	"storyforge/internal/services"
)

// Mode is the studio's current surface.
type Mode string

const (
	// ModeConcept is the input stage: describing the product and idea.
	ModeConcept Mode = "concept"
	// ModeStoryboard is the board stage: panels exist and are being refined.
	ModeStoryboard Mode = "storyboard"
)

// Session is one working session over a single project.
type Session struct {
	cfg    *config.Config
	gen    gateway.Generator
	store  *project.Store
	logger *slog.Logger
	board  *board.Board

	mu        sync.Mutex
	projectID string
	title     string
	mode      Mode
	idea      string
	fields    project.FormFields
	settings  project.GenerationSettings
}

// New builds a session seeded from the config's generation defaults.
func New(cfg *config.Config, gen gateway.Generator, store *project.Store, logger *slog.Logger) *Session {
	if logger == nil {
		logger = logging.NewNop()
	}
	settings := project.GenerationSettings{
		SceneCount:  cfg.Generation.SceneCount,
		AspectRatio: cfg.Generation.AspectRatio,
		Style:       cfg.Generation.Style,
		Mood:        cfg.Generation.Mood,
		VideoLength: cfg.Generation.VideoLength,
		Language:    cfg.Generation.Language,
	}
	b := board.New(gen, boardSettings(cfg, settings), logger,
		board.WithFanoutInterval(time.Duration(cfg.Workflow.FanoutRateInterval)*time.Second))

	return &Session{
		cfg:      cfg,
		gen:      gen,
		store:    store,
		logger:   logger.With(logging.String(logging.FieldComponent, "studio")),
		board:    b,
		mode:     ModeConcept,
		settings: settings,
	}
}

// boardSettings builds the board's view of the generation settings. Model ids
// come from config; everything else follows the session.
func boardSettings(cfg *config.Config, settings project.GenerationSettings) board.Settings {
	return board.Settings{
		Style:       settings.Style,
		Mood:        settings.Mood,
		AspectRatio: settings.AspectRatio,
		Language:    settings.Language,
		TextModel:   cfg.Gemini.TextModel,
		ImageModel:  cfg.Gemini.ImageModel,
		VideoModel:  cfg.Gemini.VideoModel,
	}
}

// Run drives the board's drain worker until ctx is done.
func (s *Session) Run(ctx context.Context) {
	s.board.Run(ctx)
}

// Board exposes the live panel pipeline for per-panel operations.
func (s *Session) Board() *board.Board {
	return s.board
}

// Mode reports which surface the session is on.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Title returns the working title.
func (s *Session) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title
}

// ProjectID returns the persisted identity, empty for an unsaved session.
func (s *Session) ProjectID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projectID
}

// Idea returns the current concept text.
func (s *Session) Idea() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.idea
}

// SetTitle sets the working title used on save.
func (s *Session) SetTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.title = strings.TrimSpace(title)
}

// SetIdea replaces the concept text.
func (s *Session) SetIdea(idea string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idea = strings.TrimSpace(idea)
}

// SetFields replaces the product form inputs.
func (s *Session) SetFields(fields project.FormFields) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fields = fields
}

// SetSceneCount overrides the per-run scene count within the allowed range.
func (s *Session) SetSceneCount(count int) error {
	if count < config.SceneCountMin || count > config.SceneCountMax {
		return services.Wrap(services.ErrValidation, "studio", "set scene count",
			fmt.Sprintf("scene count %d outside [%d, %d]", count, config.SceneCountMin, config.SceneCountMax), nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.SceneCount = count
	return nil
}

// SetLanguage overrides the output language. Accepts BCP 47 tags and plain
// English language names.
func (s *Session) SetLanguage(tag string) error {
	normalized, ok := language.Normalize(tag)
	if !ok {
		return services.Wrap(services.ErrValidation, "studio", "set language", "unrecognized language "+strings.TrimSpace(tag), nil)
	}
	s.mu.Lock()
	s.settings.Language = normalized
	settings := s.settings
	s.mu.Unlock()
	s.board.UpdateSettings(boardSettings(s.cfg, settings))
	return nil
}

// Settings returns a copy of the current generation settings.
func (s *Session) Settings() project.GenerationSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// GenerateDescription builds a pitch paragraph from the form fields and
// stores it as the session idea. The product name is required before any
// call leaves the process.
func (s *Session) GenerateDescription(ctx context.Context) (string, error) {
	s.mu.Lock()
	fields := s.fields
	s.mu.Unlock()

	if strings.TrimSpace(fields.Name) == "" {
		return "", services.Wrap(services.ErrValidation, "studio", "generate description", "product name required", nil)
	}

	description, err := s.gen.GenerateDescription(ctx, gateway.DescriptionFields{
		Name:     fields.Name,
		Features: fields.Features,
		Audience: fields.Audience,
		Tone:     fields.Tone,
		Language: s.Settings().Language,
	}, s.cfg.Gemini.TextModel)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.idea = description
	s.mu.Unlock()
	return description, nil
}

// GenerateStoryboard turns the idea into a scene list and queues the board.
// The session moves to the storyboard surface; the drain worker picks the
// panels up from there.
func (s *Session) GenerateStoryboard(ctx context.Context) ([]board.Panel, error) {
	s.mu.Lock()
	idea := s.idea
	settings := s.settings
	s.mu.Unlock()

	if strings.TrimSpace(idea) == "" {
		return nil, services.Wrap(services.ErrValidation, "studio", "generate storyboard", "idea required", nil)
	}

	scenes, err := s.gen.GenerateStoryboardScenes(ctx, idea, gateway.SceneOptions{
		SceneCount:  settings.SceneCount,
		Style:       settings.Style,
		Mood:        settings.Mood,
		VideoLength: settings.VideoLength,
		Language:    settings.Language,
		Model:       s.cfg.Gemini.TextModel,
	})
	if err != nil {
		return nil, err
	}

	descriptions := make([]string, len(scenes))
	for i, scene := range scenes {
		descriptions[i] = scene.Description
	}
	panels, err := s.board.SubmitSceneList(descriptions)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.mode = ModeStoryboard
	s.mu.Unlock()
	s.logger.Info("storyboard generated", logging.Int("panels", len(panels)))
	return panels, nil
}

// CanSave reports whether the session has anything worth persisting.
func (s *Session) CanSave() bool {
	s.mu.Lock()
	mode := s.mode
	s.mu.Unlock()
	return mode == ModeStoryboard && len(s.board.Panels()) > 0
}

// Save persists the session under its project, creating one on first save.
func (s *Session) Save(ctx context.Context) (*project.Project, error) {
	if !s.CanSave() {
		return nil, services.Wrap(services.ErrValidation, "studio", "save", "nothing to save yet", nil)
	}
	s.mu.Lock()
	id := s.projectID
	title := s.title
	snapshot := &project.Snapshot{
		Mode:     string(s.mode),
		Idea:     s.idea,
		Fields:   s.fields,
		Settings: s.settings,
	}
	s.mu.Unlock()

	if title == "" {
		return nil, services.Wrap(services.ErrValidation, "studio", "save", "title required", nil)
	}
	snapshot.Panels = panelsToRecords(s.board.Panels())

	saved, err := s.store.Save(ctx, id, title, snapshot)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.projectID = saved.ID
	s.mu.Unlock()
	s.logger.Info("project saved",
		logging.String(logging.FieldProjectID, saved.ID), logging.Int("panels", len(snapshot.Panels)))
	return saved, nil
}

// Load replaces the session state with a stored project. Panels resume where
// they left off; anything that was mid-generation is requeued by the board.
func (s *Session) Load(ctx context.Context, id string) error {
	loaded, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	snapshot := loaded.Snapshot

	s.mu.Lock()
	s.projectID = loaded.ID
	s.title = loaded.Title
	s.idea = snapshot.Idea
	s.fields = snapshot.Fields
	if snapshot.Settings.SceneCount > 0 {
		s.settings = snapshot.Settings
	}
	settings := s.settings
	if snapshot.Mode == string(ModeStoryboard) || len(snapshot.Panels) > 0 {
		s.mode = ModeStoryboard
	} else {
		s.mode = ModeConcept
	}
	s.mu.Unlock()

	// Regeneration and expansion must honor the loaded project's settings,
	// not the construction-time defaults.
	s.board.UpdateSettings(boardSettings(s.cfg, settings))
	s.board.Restore(recordsToPanels(snapshot.Panels))
	s.logger.Info("project loaded",
		logging.String(logging.FieldProjectID, loaded.ID), logging.Int("panels", len(snapshot.Panels)))
	return nil
}

// ExportProjects renders every stored project as portable JSON.
func (s *Session) ExportProjects(ctx context.Context) ([]byte, error) {
	return s.store.Export(ctx)
}

// ImportProjects loads projects from an export file, skipping existing ids.
func (s *Session) ImportProjects(ctx context.Context, data []byte) (int, error) {
	return s.store.Import(ctx, data)
}

// ListProjects returns stored project metadata newest-first.
func (s *Session) ListProjects(ctx context.Context) ([]project.Project, error) {
	return s.store.List(ctx)
}

// DeleteProject removes a stored project. Deleting the loaded project resets
// the session identity so a later save creates a fresh one.
func (s *Session) DeleteProject(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	if s.projectID == id {
		s.projectID = ""
	}
	s.mu.Unlock()
	return nil
}
