package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"storyforge/internal/studio"
)

func newProjectsCommand(ctx *commandContext) *cobra.Command {
	projectsCmd := &cobra.Command{
		Use:   "projects",
		Short: "Manage saved storyboard projects",
	}

	projectsCmd.AddCommand(newProjectsListCommand(ctx))
	projectsCmd.AddCommand(newProjectsShowCommand(ctx))
	projectsCmd.AddCommand(newProjectsDeleteCommand(ctx))
	projectsCmd.AddCommand(newProjectsExportCommand(ctx))
	projectsCmd.AddCommand(newProjectsImportCommand(ctx))

	return projectsCmd
}

func newProjectsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved projects, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(func(session *studio.Session) error {
				projects, err := session.ListProjects(cmd.Context())
				if err != nil {
					return err
				}
				if len(projects) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No saved projects")
					return nil
				}
				rows := make([][]string, 0, len(projects))
				for _, entry := range projects {
					thumb := "-"
					if entry.Thumbnail.IsInline() {
						thumb = entry.Thumbnail.MIME
					}
					rows = append(rows, []string{
						entry.ID,
						entry.Title,
						thumb,
						entry.UpdatedAt.Local().Format(time.DateTime),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Title", "Thumbnail", "Updated"}, rows, nil))
				return nil
			})
		},
	}
}

func newProjectsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <project-id>",
		Short: "Show a saved project and its panels",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(func(session *studio.Session) error {
				if err := session.Load(cmd.Context(), args[0]); err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Title: %s\n", session.Title())
				if idea := session.Idea(); idea != "" {
					fmt.Fprintf(out, "Idea:  %s\n", truncate(idea, 100))
				}
				settings := session.Settings()
				fmt.Fprintf(out, "Run:   %d scenes, %s, %s, language %s\n\n",
					settings.SceneCount, settings.AspectRatio, settings.Style, settings.Language)
				fmt.Fprintln(out, renderPanels(session.Board().Panels()))
				return nil
			})
		},
	}
}

func newProjectsDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <project-id>",
		Short: "Delete a saved project and its media",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(func(session *studio.Session) error {
				if err := session.DeleteProject(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted project %s\n", args[0])
				return nil
			})
		},
	}
}

func newProjectsExportCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all projects to a portable JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(func(session *studio.Session) error {
				data, err := session.ExportProjects(cmd.Context())
				if err != nil {
					return err
				}
				if output == "" || output == "-" {
					_, err := cmd.OutOrStdout().Write(append(data, '\n'))
					return err
				}
				if err := os.WriteFile(output, data, 0o644); err != nil {
					return fmt.Errorf("write export file: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported projects to %s\n", output)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination file (defaults to stdout)")
	return cmd
}

func newProjectsImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import projects from an export file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(func(session *studio.Session) error {
				data, err := os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("read export file: %w", err)
				}
				count, err := session.ImportProjects(cmd.Context(), data)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d projects\n", count)
				return nil
			})
		},
	}
}
