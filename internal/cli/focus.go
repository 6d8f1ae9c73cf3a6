package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var focusCmd = &cobra.Command{
	Use:   "focus [task-id]",
	Short: "Run a focus session on a task",
	Long: `Start a focus session on a task. The session runs until the
duration elapses or you press Ctrl-C; time spent is recorded on the
task either way.

Examples:
  focusdeck focus 3f2a
  focusdeck focus 3f2a --for 25m`,
	Args: cobra.ExactArgs(1),
	RunE: runFocus,
}

var focusDuration time.Duration

func init() {
	focusCmd.Flags().DurationVar(&focusDuration, "for", 25*time.Minute, "Session length")
}

func runFocus(cmd *cobra.Command, args []string) error {
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
		return fmt.Errorf("task %s is archived", id[:8])
	}

	task, _ := cs.store.Task(id)
	cs.store.SetFocusMode(true, id)

	fmt.Printf("Focusing on %q for %s (Ctrl-C to stop early)\n", task.Title, focusDuration)

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	timer := time.NewTimer(focusDuration)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-sigCtx.Done():
	}
	elapsed := time.Since(start)

	cs.store.SetFocusMode(false, "")
	cs.store.RecordTimeSpent(id, elapsed)

	if err := cs.Save(ctx); err != nil {
		return err
	}

	fmt.Printf("Recorded %s on %q\n", elapsed.Round(time.Second), task.Title)
	cs.MaybeSync(ctx, false)
	return nil
}
