package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/focusdeck/focusdeck/internal/model"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Archive all completed tasks",
	Long: `Move every completed task to the archive, optionally limited to
one project.

Examples:
  focusdeck clear
  focusdeck clear --project work`,
	RunE: runClear,
}

var (
	clearProject string
	clearSync    bool
)

func init() {
	clearCmd.Flags().StringVarP(&clearProject, "project", "P", "", "Limit to one project")
	clearCmd.Flags().BoolVarP(&clearSync, "sync", "s", false, "Sync with server afterwards")
}

func runClear(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cs, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer cs.Close()

	projectID := ""
	if clearProject != "" {
		projectID, err = cs.resolveProject(clearProject)
		if err != nil {
			return err
		}
	}

	var ids []string
	for _, t := range cs.store.Tasks() {
		if t.Status != model.StatusDone {
			continue
		}
		if projectID != "" && t.ProjectID != projectID {
			continue
		}
		ids = append(ids, t.ID)
	}

	if len(ids) == 0 {
		fmt.Println("Nothing to clear")
		return nil
	}

	for _, id := range ids {
		cs.store.ArchiveTask(id)
	}

	if err := cs.Save(ctx); err != nil {
		return err
	}

	fmt.Printf("Archived %d completed task(s)\n", len(ids))
	cs.MaybeSync(ctx, clearSync)
	return nil
}
