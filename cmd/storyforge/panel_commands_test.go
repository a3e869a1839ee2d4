package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"storyforge/internal/assets"
	"storyforge/internal/config"
	"storyforge/internal/media"
	"storyforge/internal/project"
)

func writeWorkspaceConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[gemini]
api_key = "test"

[paths]
data_dir = "` + filepath.Join(dir, "data") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func openSeededStores(t *testing.T, configPath string) (*project.Store, func()) {
	t.Helper()
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	assetStore, err := assets.Open(cfg)
	if err != nil {
		t.Fatalf("assets.Open: %v", err)
	}
	store, err := project.Open(cfg, assetStore)
	if err != nil {
		t.Fatalf("project.Open: %v", err)
	}
	return store, func() {
		_ = store.Close()
		_ = assetStore.Close()
	}
}

func seedProject(t *testing.T, configPath string) string {
	t.Helper()
	store, closeStores := openSeededStores(t, configPath)
	defer closeStores()

	snapshot := &project.Snapshot{
		Mode: "storyboard",
		Idea: "a coffee brand ad",
		Settings: project.GenerationSettings{
			SceneCount: 2, AspectRatio: "16:9", Style: "cinematic",
			Mood: "warm", VideoLength: "short", Language: "en",
		},
		Panels: []project.PanelRecord{
			{
				ID: "p1", Description: "opening shot",
				Image: media.Inline("image/png", []byte{0x01}), ImageState: "ready",
				VideoState: "none", SceneDurationSeconds: 4,
			},
			{
				ID: "p2", Description: "closing shot",
				Image: media.Inline("image/png", []byte{0x02}), ImageState: "ready",
				VideoState: "none", SceneDurationSeconds: 4,
			},
		},
	}
	saved, err := store.Save(context.Background(), "", "Seeded", snapshot)
	if err != nil {
		t.Fatalf("seed Save: %v", err)
	}
	return saved.ID
}

func reloadProject(t *testing.T, configPath, id string) *project.Project {
	t.Helper()
	store, closeStores := openSeededStores(t, configPath)
	defer closeStores()

	loaded, err := store.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get %s: %v", id, err)
	}
	return loaded
}

func runCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(out)
	if stdin != "" {
		cmd.SetIn(strings.NewReader(stdin))
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPanelDurationCommandPersists(t *testing.T) {
	configPath := writeWorkspaceConfig(t)
	id := seedProject(t, configPath)

	out, err := runCommand(t, "", "-c", configPath, "panel", "duration", id, "1", "8")
	if err != nil {
		t.Fatalf("panel duration: %v\n%s", err, out)
	}

	loaded := reloadProject(t, configPath, id)
	if got := loaded.Snapshot.Panels[0].SceneDurationSeconds; got != 8 {
		t.Fatalf("expected persisted duration 8, got %d", got)
	}
	if got := loaded.Snapshot.Panels[1].SceneDurationSeconds; got != 4 {
		t.Fatalf("sibling panel duration changed to %d", got)
	}
}

func TestPanelDeleteCommandConfirms(t *testing.T) {
	configPath := writeWorkspaceConfig(t)
	id := seedProject(t, configPath)

	// A declined prompt leaves the storyboard alone.
	out, err := runCommand(t, "n\n", "-c", configPath, "panel", "delete", id, "2")
	if err != nil {
		t.Fatalf("declined delete: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Panel kept") {
		t.Fatalf("expected decline notice, got:\n%s", out)
	}
	if got := len(reloadProject(t, configPath, id).Snapshot.Panels); got != 2 {
		t.Fatalf("declined delete still removed a panel, %d left", got)
	}

	out, err = runCommand(t, "", "-c", configPath, "panel", "delete", id, "2", "--yes")
	if err != nil {
		t.Fatalf("panel delete --yes: %v\n%s", err, out)
	}
	loaded := reloadProject(t, configPath, id)
	if len(loaded.Snapshot.Panels) != 1 || loaded.Snapshot.Panels[0].Description != "opening shot" {
		t.Fatalf("unexpected panels after delete: %+v", loaded.Snapshot.Panels)
	}
}

func TestPanelCommandRejectsBadNumbers(t *testing.T) {
	configPath := writeWorkspaceConfig(t)
	id := seedProject(t, configPath)

	if _, err := runCommand(t, "", "-c", configPath, "panel", "duration", id, "5", "8"); err == nil {
		t.Fatal("expected out-of-range rejection")
	}
	if _, err := runCommand(t, "", "-c", configPath, "panel", "duration", id, "two", "8"); err == nil {
		t.Fatal("expected non-numeric rejection")
	}
}
