package main

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"storyforge/internal/board"
	"storyforge/internal/studio"
)

func newPanelCommand(ctx *commandContext) *cobra.Command {
	panelCmd := &cobra.Command{
		Use:   "panel",
		Short: "Edit panels of a saved storyboard project",
		Long: `Panel commands load a saved project, apply one edit to a single panel,
and save the project back. Panels are addressed by the 1-based number shown
in the tables.`,
	}

	panelCmd.AddCommand(newPanelRegenerateCommand(ctx))
	panelCmd.AddCommand(newPanelDeleteCommand(ctx))
	panelCmd.AddCommand(newPanelDurationCommand(ctx))
	panelCmd.AddCommand(newPanelExpandCommand(ctx))
	panelCmd.AddCommand(newPanelVideoCommand(ctx))

	return panelCmd
}

func newPanelRegenerateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "regenerate <project-id> <panel>",
		Short: "Discard a panel image and generate a fresh one",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPanel(ctx, cmd, args[0], args[1], func(session *studio.Session, panel board.Panel) error {
				if err := session.Board().RegenerateImage(panel.ID); err != nil {
					return err
				}
				session.Board().Drain(cmd.Context())
				return nil
			})
		},
	}
}

func newPanelDeleteCommand(ctx *commandContext) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <project-id> <panel>",
		Short: "Remove a panel from the storyboard",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPanel(ctx, cmd, args[0], args[1], func(session *studio.Session, panel board.Panel) error {
				if len(session.Board().Panels()) == 1 {
					return fmt.Errorf("cannot delete the last panel; delete the project instead")
				}
				if !yes && !confirm(cmd, fmt.Sprintf("Delete panel %q?", truncate(panel.Description, 40))) {
					fmt.Fprintln(cmd.OutOrStdout(), "Panel kept")
					return nil
				}
				return session.Board().Delete(panel.ID)
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newPanelDurationCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "duration <project-id> <panel> <seconds>",
		Short: "Set a panel's clip length in seconds",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			seconds, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("duration %q is not a number of seconds", args[2])
			}
			return withPanel(ctx, cmd, args[0], args[1], func(session *studio.Session, panel board.Panel) error {
				return session.Board().SetSceneDuration(panel.ID, seconds)
			})
		},
	}
}

func newPanelExpandCommand(ctx *commandContext) *cobra.Command {
	var preview bool

	cmd := &cobra.Command{
		Use:   "expand <project-id> <panel>",
		Short: "Split a panel into finer sub-scenes with their own images",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPanel(ctx, cmd, args[0], args[1], func(session *studio.Session, panel board.Panel) error {
				subs, err := session.Board().ExpandScene(cmd.Context(), panel.ID)
				if err != nil {
					return err
				}
				if preview {
					fmt.Fprintln(cmd.OutOrStdout(), renderPanels(subs))
					fmt.Fprintln(cmd.OutOrStdout(), "Expansion discarded, storyboard unchanged")
					session.Board().DiscardExpansion(panel.ID)
					return nil
				}
				return session.Board().CommitExpansion(panel.ID, subs)
			})
		},
	}

	cmd.Flags().BoolVar(&preview, "preview", false, "Show the sub-scenes without committing them")
	return cmd
}

func newPanelVideoCommand(ctx *commandContext) *cobra.Command {
	var regenerate bool

	cmd := &cobra.Command{
		Use:   "video <project-id> <panel>",
		Short: "Animate a panel image into a clip",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPanel(ctx, cmd, args[0], args[1], func(session *studio.Session, panel board.Panel) error {
				if regenerate {
					return session.Board().RegenerateVideo(cmd.Context(), panel.ID)
				}
				if panel.VideoState == board.VideoReady {
					return fmt.Errorf("panel already has a clip; pass --regenerate to replace it")
				}
				return session.Board().GenerateVideo(cmd.Context(), panel.ID)
			})
		},
	}

	cmd.Flags().BoolVar(&regenerate, "regenerate", false, "Replace an existing clip")
	return cmd
}

// withPanel loads the project, resolves the panel number, applies fn, and
// saves the project back before rendering the result.
func withPanel(ctx *commandContext, cmd *cobra.Command, projectID, number string, fn func(*studio.Session, board.Panel) error) error {
	return ctx.withSession(func(session *studio.Session) error {
		if err := session.Load(cmd.Context(), projectID); err != nil {
			return err
		}
		panel, err := panelByNumber(session, number)
		if err != nil {
			return err
		}
		if err := fn(session, panel); err != nil {
			return err
		}
		if _, err := session.Save(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderPanels(session.Board().Panels()))
		return nil
	})
}

func panelByNumber(session *studio.Session, raw string) (board.Panel, error) {
	number, err := strconv.Atoi(raw)
	if err != nil {
		return board.Panel{}, fmt.Errorf("panel %q is not a panel number", raw)
	}
	panels := session.Board().Panels()
	if number < 1 || number > len(panels) {
		return board.Panel{}, fmt.Errorf("panel %d out of range, project has %d panels", number, len(panels))
	}
	return panels[number-1], nil
}

func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", question)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
