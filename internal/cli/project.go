package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/focusdeck/focusdeck/internal/model"
	"github.com/focusdeck/focusdeck/internal/store"
)

var projectCmd = &cobra.Command{
	Use:     "project",
	Aliases: []string{"projects"},
	Short:   "Manage projects",
	Long: `Manage projects.

Examples:
  focusdeck project ls
  focusdeck project add "Work" --color "#e06c75"
  focusdeck project rename work-id "Day job"
  focusdeck project delete work-id`,
	RunE: runProjectList,
}

var projectLsCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List all projects",
	RunE:    runProjectList,
}

var projectAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Create a new project",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runProjectAdd,
}

var projectRenameCmd = &cobra.Command{
	Use:   "rename [project] [new-name]",
	Short: "Rename a project",
	Args:  cobra.ExactArgs(2),
	RunE:  runProjectRename,
}

var projectDeleteCmd = &cobra.Command{
	Use:     "delete [project]",
	Aliases: []string{"rm"},
	Short:   "Delete a project and all of its tasks",
	Args:    cobra.ExactArgs(1),
	RunE:    runProjectDelete,
}

var (
	projectColor string
	projectIcon  string
	projectDesc  string
	projectForce bool
)

func init() {
	projectCmd.AddCommand(projectLsCmd)
	projectCmd.AddCommand(projectAddCmd)
	projectCmd.AddCommand(projectRenameCmd)
	projectCmd.AddCommand(projectDeleteCmd)

	projectAddCmd.Flags().StringVar(&projectColor, "color", "#61afef", "Board color")
	projectAddCmd.Flags().StringVar(&projectIcon, "icon", "", "Board icon")
	projectAddCmd.Flags().StringVar(&projectDesc, "desc", "", "Project description")
	projectDeleteCmd.Flags().BoolVarP(&projectForce, "force", "f", false, "Skip confirmation")
}

func runProjectList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cs, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer cs.Close()

	projects := cs.store.Projects()
	if len(projects) == 0 {
		fmt.Println("No projects yet. Create one with: focusdeck project add \"Name\"")
		return nil
	}

	selected := cs.store.SelectedProjectID()
	counts := make(map[string]int)
	for _, t := range cs.store.Tasks() {
		if t.Status != model.StatusDone {
			counts[t.ProjectID]++
		}
	}

	fmt.Println()
	for _, p := range projects {
		marker := "  "
		if p.ID == selected {
			marker = "> "
		}
		shortID := p.ID
		if len(shortID) > 8 {
			shortID = shortID[:8]
		}
		fmt.Printf("%s%-8s  %-24s  %d pending\n", marker, shortID, p.Name, counts[p.ID])
	}
	fmt.Println()

	return nil
}

func runProjectAdd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cs, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer cs.Close()

	name := strings.Join(args, " ")
	p := cs.store.AddProject(name, projectDesc, projectColor, projectIcon)

	// First project becomes the working context
	if cs.store.SelectedProjectID() == "" {
		cs.store.SetSelectedProject(p.ID)
	}

	if err := cs.Save(ctx); err != nil {
		return err
	}

	fmt.Printf("Created project %q (%s)\n", p.Name, p.ID[:8])
	return nil
}

func runProjectRename(cmd *cobra.Command, args []string) error {
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

	name := args[1]
	cs.store.UpdateProject(id, store.ProjectUpdate{Name: &name})

	if err := cs.Save(ctx); err != nil {
		return err
	}

	fmt.Printf("Renamed project to %q\n", name)
	return nil
}

func runProjectDelete(cmd *cobra.Command, args []string) error {
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
	project, _ := cs.store.Project(id)

	taskCount := 0
	for _, t := range cs.store.Tasks() {
		if t.ProjectID == id {
			taskCount++
		}
	}

	if !projectForce && cs.cfg.ConfirmDelete {
		fmt.Printf("Delete project %q and its %d task(s)? [y/N] ", project.Name, taskCount)
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			fmt.Println("Cancelled")
			return nil
		}
	}

	cs.store.DeleteProject(id)

	if err := cs.Save(ctx); err != nil {
		return err
	}

	fmt.Printf("Deleted project %q\n", project.Name)
	return nil
}
