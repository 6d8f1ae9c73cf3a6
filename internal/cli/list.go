package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/focusdeck/focusdeck/internal/model"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Long: `List tasks, optionally filtered by project.

Examples:
  focusdeck list
  focusdeck list --project work
  focusdeck list --archived`,
	RunE: runList,
}

var (
	listProject     string
	listArchived    bool
	listIncludeDone bool
	listSync        bool
)

func init() {
	listCmd.Flags().StringVarP(&listProject, "project", "P", "", "Filter by project")
	listCmd.Flags().BoolVarP(&listArchived, "archived", "a", false, "Show archived tasks")
	listCmd.Flags().BoolVar(&listIncludeDone, "done", false, "Include completed tasks")
	listCmd.Flags().BoolVarP(&listSync, "sync", "s", false, "Sync with server before listing")
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cs, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer cs.Close()

	cs.MaybeSync(ctx, listSync)

	// Sweep overdue done tasks into the archive before rendering
	if n := cs.store.CheckAutoArchive(); n > 0 {
		fmt.Printf("Auto-archived %d completed task(s)\n", n)
		if err := cs.Save(ctx); err != nil {
			return err
		}
	}

	var tasks []model.Task
	if listArchived {
		tasks = cs.store.ArchivedTasks()
	} else {
		tasks = cs.store.Tasks()
	}

	if listProject != "" {
		projectID, err := cs.resolveProject(listProject)
		if err != nil {
			return err
		}
		filtered := tasks[:0]
		for _, t := range tasks {
			if t.ProjectID == projectID {
				filtered = append(filtered, t)
			}
		}
		tasks = filtered
	}

	if !listIncludeDone && !listArchived {
		filtered := tasks[:0]
		for _, t := range tasks {
			if t.Status != model.StatusDone {
				filtered = append(filtered, t)
			}
		}
		tasks = filtered
	}

	if len(tasks) == 0 {
		fmt.Println("No tasks found. Add one with: focusdeck add \"Your task\"")
		return nil
	}

	printTasksByProject(cs, tasks)
	return nil
}

func printTasksByProject(cs *cliSession, tasks []model.Task) {
	byProject := make(map[string][]model.Task)
	var order []string
	for _, t := range tasks {
		if _, ok := byProject[t.ProjectID]; !ok {
			order = append(order, t.ProjectID)
		}
		byProject[t.ProjectID] = append(byProject[t.ProjectID], t)
	}
	sort.Strings(order)

	for _, projectID := range order {
		name := projectID
		if p, ok := cs.store.Project(projectID); ok {
			name = p.Name
		}
		printTasks(name, byProject[projectID])
	}
}

func printTasks(projectName string, tasks []model.Task) {
	pending := 0
	for _, t := range tasks {
		if t.Status != model.StatusDone {
			pending++
		}
	}

	fmt.Printf("\n%s (%d pending)\n", projectName, pending)
	fmt.Println(strings.Repeat("-", 72))

	for _, t := range tasks {
		printTask(t)
	}
	fmt.Println()
}

func printTask(t model.Task) {
	icon := "[ ]"
	switch t.Status {
	case model.StatusDone:
		icon = "[x]"
	case model.StatusInProgress:
		icon = "[~]"
	}

	priority := "  " + t.Priority
	if t.Priority == model.PriorityHigh {
		priority = "! " + t.Priority
	}

	due := ""
	if t.DueDate != nil {
		due = t.DueDate.Format("Jan 2")
		if t.IsOverdue() {
			due += " (overdue)"
		}
	}

	title := t.Title
	if len(title) > 40 {
		title = title[:37] + "..."
	}
	if len(t.Subtasks) > 0 {
		done := 0
		for _, st := range t.Subtasks {
			if st.Completed {
				done++
			}
		}
		title = fmt.Sprintf("%s (%d/%d)", title, done, len(t.Subtasks))
	}

	shortID := t.ID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}

	spent := ""
	if t.TotalTimeSpent > 0 {
		spent = (time.Duration(t.TotalTimeSpent) * time.Millisecond).Round(time.Minute).String()
	}

	fmt.Printf("  %s  %-8s  %-44s  %-16s  %-8s  %s\n", icon, shortID, title, due, priority, spent)
}
