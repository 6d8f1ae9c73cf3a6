package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/focusdeck/focusdeck/internal/model"
	"github.com/focusdeck/focusdeck/internal/store"
)

var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a new task",
	Long: `Add a new task to a project.

Examples:
  focusdeck add "Buy groceries"
  focusdeck add "Meeting with team" -p high
  focusdeck add "Feature work" --project work --due 2026-09-15`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var (
	addProject     string
	addPriority    string
	addTag         string
	addDescription string
	addDue         string
	addSync        bool
)

func init() {
	addCmd.Flags().StringVarP(&addProject, "project", "P", "", "Project to add the task to")
	addCmd.Flags().StringVarP(&addPriority, "priority", "p", model.PriorityMedium, "Priority (high, medium, low)")
	addCmd.Flags().StringVarP(&addTag, "tag", "t", "", "Tag label")
	addCmd.Flags().StringVar(&addDescription, "desc", "", "Task description")
	addCmd.Flags().StringVarP(&addDue, "due", "d", "", "Due date (2006-01-02)")
	addCmd.Flags().BoolVarP(&addSync, "sync", "s", false, "Sync with server after adding")
}

func runAdd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cs, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer cs.Close()

	title := args[0]
	for _, arg := range args[1:] {
		title += " " + arg
	}

	switch addPriority {
	case model.PriorityHigh, model.PriorityMedium, model.PriorityLow:
	default:
		return fmt.Errorf("invalid priority %q (use high, medium or low)", addPriority)
	}

	// Use the selected project context if no project was given
	projectID := ""
	if addProject != "" {
		projectID, err = cs.resolveProject(addProject)
		if err != nil {
			return err
		}
	} else if sel := cs.store.SelectedProjectID(); sel != "" && cs.store.HasProject(sel) {
		projectID = sel
	}
	if projectID == "" {
		return fmt.Errorf("no project selected; pass --project or run 'focusdeck context set'")
	}

	task := cs.store.AddTask(projectID, title, addPriority, addTag)

	upd := store.TaskUpdate{}
	if addDescription != "" {
		upd.Description = &addDescription
	}
	if addDue != "" {
		due, err := time.Parse("2006-01-02", addDue)
		if err != nil {
			return fmt.Errorf("invalid due date %q: %w", addDue, err)
		}
		upd.DueDate = &due
	}
	if upd.Description != nil || upd.DueDate != nil {
		cs.store.UpdateTask(task.ID, upd)
	}

	if err := cs.Save(ctx); err != nil {
		return err
	}

	project, _ := cs.store.Project(projectID)
	fmt.Printf("Added to [%s]: %q (%s)\n", project.Name, title, addPriority)

	cs.MaybeSync(ctx, addSync)
	return nil
}
