package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/focusdeck/focusdeck/internal/model"
)

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Manage the selected project",
	Long: `Set or view the selected project.

New tasks are added to the selected project when --project is not
given. The selection is stored with your settings and follows you
across devices when sync is on.

Examples:
  focusdeck context              # Show current selection
  focusdeck context set work     # Select the 'work' project
  focusdeck context clear        # Clear the selection`,
	RunE: runContextShow,
}

var contextSetCmd = &cobra.Command{
	Use:   "set [project]",
	Short: "Select a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runContextSet,
}

var contextClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the project selection",
	RunE:  runContextClear,
}

func init() {
	contextCmd.AddCommand(contextSetCmd)
	contextCmd.AddCommand(contextClearCmd)
}

func runContextShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cs, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer cs.Close()

	selected := cs.store.SelectedProjectID()
	if selected == "" {
		fmt.Println("No project selected")
		return nil
	}

	project, ok := cs.store.Project(selected)
	if !ok {
		fmt.Printf("Selected project %s no longer exists\n", selected[:8])
		return nil
	}

	pending := 0
	total := 0
	for _, t := range cs.store.Tasks() {
		if t.ProjectID != selected {
			continue
		}
		total++
		if t.Status != model.StatusDone {
			pending++
		}
	}

	fmt.Printf("Selected project: %s (%d/%d pending)\n", project.Name, pending, total)
	return nil
}

func runContextSet(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cs, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer cs.Close()

	id, err := cs.resolveProject(args[0])
	if err != nil {
		return err
	}

	cs.store.SetSelectedProject(id)
	if err := cs.Save(ctx); err != nil {
		return err
	}

	project, _ := cs.store.Project(id)
	fmt.Printf("Switched to: %s\n", project.Name)
	return nil
}

func runContextClear(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cs, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer cs.Close()

	cs.store.SetSelectedProject("")
	if err := cs.Save(ctx); err != nil {
		return err
	}

	fmt.Println("Selection cleared")
	return nil
}
