package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/focusdeck/focusdeck/internal/model"
	"github.com/focusdeck/focusdeck/internal/store"
)

var doneCmd = &cobra.Command{
	Use:   "done [task-id]",
	Short: "Mark a task as done",
	Long: `Mark a task as done by id or unique id prefix.

Examples:
  focusdeck done 3f2a
  focusdeck done 3f2a --undo`,
	Args: cobra.ExactArgs(1),
	RunE: runDone,
}

var (
	doneUndo bool
	doneSync bool
)

func init() {
	doneCmd.Flags().BoolVarP(&doneUndo, "undo", "u", false, "Restore the task to its previous status")
	doneCmd.Flags().BoolVarP(&doneSync, "sync", "s", false, "Sync with server after the change")
}

func runDone(cmd *cobra.Command, args []string) error {
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
		return fmt.Errorf("task %s is archived; unarchive it first", id[:8])
	}

	task, _ := cs.store.Task(id)

	status := model.StatusDone
	if doneUndo {
		prev, ok := cs.store.PreviousTaskStatus(id)
		if !ok {
			prev = model.StatusTodo
		}
		status = prev
	}

	cs.store.UpdateTask(id, store.TaskUpdate{Status: &status})

	if err := cs.Save(ctx); err != nil {
		return err
	}

	if doneUndo {
		fmt.Printf("Restored to %s: %q\n", status, task.Title)
	} else {
		fmt.Printf("Done: %q\n", task.Title)
	}

	cs.MaybeSync(ctx, doneSync)
	return nil
}
