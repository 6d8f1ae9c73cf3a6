package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete [task-id]",
	Aliases: []string{"rm"},
	Short:   "Delete a task",
	Long: `Delete a task by id or unique id prefix. The deletion is
tombstoned locally and removed from the server on the next sync.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

var (
	deleteForce bool
	deleteSync  bool
)

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip confirmation")
	deleteCmd.Flags().BoolVarP(&deleteSync, "sync", "s", false, "Sync with server after deleting")
}

func runDelete(cmd *cobra.Command, args []string) error {
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

	var title string
	if archived {
		for _, t := range cs.store.ArchivedTasks() {
			if t.ID == id {
				title = t.Title
			}
		}
	} else {
		t, _ := cs.store.Task(id)
		title = t.Title
	}

	if !deleteForce && cs.cfg.ConfirmDelete {
		fmt.Printf("Delete %q? [y/N] ", title)
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			fmt.Println("Cancelled")
			return nil
		}
	}

	if archived {
		cs.store.DeleteArchivedTask(id)
	} else {
		cs.store.DeleteTask(id)
	}

	if err := cs.Save(ctx); err != nil {
		return err
	}

	fmt.Printf("Deleted: %q\n", title)
	cs.MaybeSync(ctx, deleteSync)
	return nil
}
