package testsupport

import (
	"testing"

	"storyforge/internal/assets"
	"storyforge/internal/config"
	"storyforge/internal/project"
)

// MustOpenAssets opens an assets.Store for tests and registers cleanup.
func MustOpenAssets(t testing.TB, cfg *config.Config) *assets.Store {
	t.Helper()

	store, err := assets.Open(cfg)
	if err != nil {
		t.Fatalf("assets.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// MustOpenProjects opens a project.Store for tests and registers cleanup.
func MustOpenProjects(t testing.TB, cfg *config.Config) *project.Store {
	t.Helper()

	store, err := project.Open(cfg, MustOpenAssets(t, cfg))
	if err != nil {
		t.Fatalf("project.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
