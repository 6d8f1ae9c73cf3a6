package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var subtaskCmd = &cobra.Command{
	Use:   "subtask",
	Short: "Manage subtasks of a task",
}

var subtaskAddCmd = &cobra.Command{
	Use:   "add [task-id] [title]",
	Short: "Add a subtask to a task",
	Long: `Add a subtask to a task by id or unique id prefix.

Examples:
  focusdeck subtask add 3f2a "Write the draft"`,
	Args: cobra.MinimumNArgs(2),
	RunE: runSubtaskAdd,
}

var subtaskToggleCmd = &cobra.Command{
	Use:   "toggle [task-id] [number]",
	Short: "Toggle a subtask's completion",
	Long: `Toggle a subtask by its number as shown in "subtask ls".

Examples:
  focusdeck subtask toggle 3f2a 2`,
	Args: cobra.ExactArgs(2),
	RunE: runSubtaskToggle,
}

var subtaskListCmd = &cobra.Command{
	Use:     "ls [task-id]",
	Aliases: []string{"list"},
	Short:   "List the subtasks of a task",
	Args:    cobra.ExactArgs(1),
	RunE:    runSubtaskList,
}

var subtaskSync bool

func init() {
	subtaskAddCmd.Flags().BoolVarP(&subtaskSync, "sync", "s", false, "Sync with server after the change")
	subtaskToggleCmd.Flags().BoolVarP(&subtaskSync, "sync", "s", false, "Sync with server after the change")
	subtaskCmd.AddCommand(subtaskAddCmd)
	subtaskCmd.AddCommand(subtaskToggleCmd)
	subtaskCmd.AddCommand(subtaskListCmd)
}

func runSubtaskAdd(cmd *cobra.Command, args []string) error {
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

	title := strings.Join(args[1:], " ")
	cs.store.AddSubtask(id, title)

	if err := cs.Save(ctx); err != nil {
		return err
	}

	task, _ := cs.store.Task(id)
	fmt.Printf("Added subtask %d to %q\n", len(task.Subtasks), task.Title)

	cs.MaybeSync(ctx, subtaskSync)
	return nil
}

func runSubtaskToggle(cmd *cobra.Command, args []string) error {
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

	n, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid subtask number %q", args[1])
	}

	task, _ := cs.store.Task(id)
	if n < 1 || n > len(task.Subtasks) {
		return fmt.Errorf("task %q has %d subtasks", task.Title, len(task.Subtasks))
	}
	st := task.Subtasks[n-1]

	cs.store.ToggleSubtask(id, st.ID)

	if err := cs.Save(ctx); err != nil {
		return err
	}

	if st.Completed {
		fmt.Printf("Unchecked: %q\n", st.Title)
	} else {
		fmt.Printf("Checked: %q\n", st.Title)
	}

	cs.MaybeSync(ctx, subtaskSync)
	return nil
}

func runSubtaskList(cmd *cobra.Command, args []string) error {
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

	task, ok := cs.store.Task(id)
	if archived {
		for _, t := range cs.store.ArchivedTasks() {
			if t.ID == id {
				task, ok = t, true
				break
			}
		}
	}
	if !ok {
		return fmt.Errorf("task not found: %s", args[0])
	}

	if len(task.Subtasks) == 0 {
		fmt.Printf("%q has no subtasks\n", task.Title)
		return nil
	}

	fmt.Printf("%s\n", task.Title)
	for i, st := range task.Subtasks {
		mark := " "
		if st.Completed {
			mark = "x"
		}
		fmt.Printf("  %d. [%s] %s\n", i+1, mark, st.Title)
	}
	return nil
}
