package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var archiveCmd = &cobra.Command{
	Use:   "archive [task-id]",
	Short: "Archive a task",
	Long: `Move a task to the archive. Archived tasks are hidden from the
board but kept synced; see them with 'focusdeck list --archived'.`,
	Args: cobra.ExactArgs(1),
	RunE: runArchive,
}

var unarchiveCmd = &cobra.Command{
	Use:   "unarchive [task-id]",
	Short: "Restore an archived task",
	Args:  cobra.ExactArgs(1),
	RunE:  runUnarchive,
}

var (
	archiveSync   bool
	unarchiveSync bool
)

func init() {
	archiveCmd.Flags().BoolVarP(&archiveSync, "sync", "s", false, "Sync with server after archiving")
	unarchiveCmd.Flags().BoolVarP(&unarchiveSync, "sync", "s", false, "Sync with server after restoring")
}

func runArchive(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cs, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer cs.Close()

	id, archived, err := cs.resolveTask(args[0])
	if err != nil {
		return err
	}
	if archived {
		return fmt.Errorf("task %s is already archived", id[:8])
	}

	task, _ := cs.store.Task(id)
	cs.store.ArchiveTask(id)

	if err := cs.Save(ctx); err != nil {
		return err
	}

	fmt.Printf("Archived: %q\n", task.Title)
	cs.MaybeSync(ctx, archiveSync)
	return nil
}

func runUnarchive(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cs, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer cs.Close()

	id, archived, err := cs.resolveTask(args[0])
	if err != nil {
		return err
	}
	if !archived {
		return fmt.Errorf("task %s is not archived", id[:8])
	}

	var title string
	for _, t := range cs.store.ArchivedTasks() {
		if t.ID == id {
			title = t.Title
		}
	}

	cs.store.UnarchiveTask(id)

	if err := cs.Save(ctx); err != nil {
		return err
	}

	fmt.Printf("Restored: %q\n", title)
	cs.MaybeSync(ctx, unarchiveSync)
	return nil
}
