package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"storyforge/internal/board"
	"storyforge/internal/project"
	"storyforge/internal/studio"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var (
		idea     string
		title    string
		scenes   int
		language string
		videos   bool
		product  string
		features string
		audience string
		tone     string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a storyboard from an idea or product description",
		Long: `Generate runs the full pipeline in one shot: break the concept into
scenes, resolve every panel image in order, optionally animate the panels
into clips, and save the result as a project when a title is given.

Provide the concept either directly with --idea, or let the model write the
pitch from --product (plus optional --features, --audience, --tone).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(func(session *studio.Session) error {
				runCtx := cmd.Context()
				out := cmd.OutOrStdout()

				if scenes > 0 {
					if err := session.SetSceneCount(scenes); err != nil {
						return err
					}
				}
				if language != "" {
					if err := session.SetLanguage(language); err != nil {
						return err
					}
				}

				switch {
				case strings.TrimSpace(idea) != "":
					session.SetIdea(idea)
				case strings.TrimSpace(product) != "":
					session.SetFields(project.FormFields{
						Name: product, Features: features, Audience: audience, Tone: tone,
					})
					pitch, err := session.GenerateDescription(runCtx)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Pitch: %s\n\n", pitch)
				default:
					return fmt.Errorf("provide a concept with --idea or --product")
				}

				panels, err := session.GenerateStoryboard(runCtx)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Storyboard queued with %d panels; generating images...\n", len(panels))
				session.Board().Drain(runCtx)

				if videos {
					started := session.Board().GenerateAllVideos(runCtx)
					fmt.Fprintf(out, "Generated clips for %d panels\n", started)
				}

				if strings.TrimSpace(title) != "" {
					session.SetTitle(title)
					saved, err := session.Save(runCtx)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Saved project %s (%s)\n", saved.Title, saved.ID)
				}

				fmt.Fprintln(out, renderPanels(session.Board().Panels()))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&idea, "idea", "", "Concept text to storyboard")
	cmd.Flags().StringVar(&title, "title", "", "Save the result as a project with this title")
	cmd.Flags().IntVar(&scenes, "scenes", 0, "Number of scenes to generate (2-10)")
	cmd.Flags().StringVar(&language, "language", "", "Output language tag, e.g. en or ko")
	cmd.Flags().BoolVar(&videos, "videos", false, "Also generate a clip for every panel")
	cmd.Flags().StringVar(&product, "product", "", "Product name to pitch when no --idea is given")
	cmd.Flags().StringVar(&features, "features", "", "Product features for the pitch")
	cmd.Flags().StringVar(&audience, "audience", "", "Target audience for the pitch")
	cmd.Flags().StringVar(&tone, "tone", "", "Tone of the pitch")

	return cmd
}

func renderPanels(panels []board.Panel) string {
	rows := make([][]string, 0, len(panels))
	for i, panel := range panels {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			string(panel.ImageState),
			videoCell(panel),
			fmt.Sprintf("%ds", panel.SceneDurationSeconds),
			truncate(panel.Description, 60),
		})
	}
	return renderTable(
		[]string{"#", "Image", "Video", "Length", "Scene"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
	)
}

func videoCell(panel board.Panel) string {
	if panel.VideoState == board.VideoError && panel.VideoError != "" {
		return "error: " + truncate(panel.VideoError, 24)
	}
	return string(panel.VideoState)
}

func truncate(value string, limit int) string {
	runes := []rune(strings.TrimSpace(value))
	if len(runes) <= limit {
		return string(runes)
	}
	return string(runes[:limit-3]) + "..."
}
