package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/focusdeck/focusdeck/internal/realtime"
	"github.com/focusdeck/focusdeck/internal/store"
	"github.com/focusdeck/focusdeck/internal/sync"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync with the server",
	Long: `Run a full sync pass: pending deletions first, then projects,
tasks and archived tasks.

Examples:
  focusdeck sync
  focusdeck sync status
  focusdeck sync watch`,
	RunE: runSync,
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show pending sync work",
	RunE:  runSyncStatus,
}

var syncWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep syncing until interrupted",
	Long: `Stay connected to the server: push local changes after a short
debounce and apply remote changes as they arrive over the event
stream. Stop with Ctrl-C.`,
	RunE: runSyncWatch,
}

func init() {
	syncCmd.AddCommand(syncStatusCmd)
	syncCmd.AddCommand(syncWatchCmd)
}

func requireEntitled(cs *cliSession) error {
	sess := cs.store.Session()
	if sess == nil || sess.IsExpired() {
		return fmt.Errorf("login first with 'focusdeck auth login'")
	}
	if !cs.store.IsPro() {
		return fmt.Errorf("sync requires a pro account; run 'focusdeck auth upgrade'")
	}
	return nil
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cs, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer cs.Close()

	if err := requireEntitled(cs); err != nil {
		return err
	}

	fmt.Println("Syncing...")
	if err := cs.engine.FullSync(ctx); err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	if err := cs.Save(ctx); err != nil {
		return err
	}

	fmt.Println("Synced")
	return nil
}

func runSyncStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cs, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer cs.Close()

	sess := cs.store.Session()
	switch {
	case sess == nil:
		fmt.Println("Not logged in")
	case sess.IsExpired():
		fmt.Println("Session expired")
	case !cs.store.IsPro():
		fmt.Println("Logged in (free plan, sync off)")
	default:
		fmt.Println("Logged in (pro plan, sync on)")
	}

	pendingProjects := len(cs.store.PendingDeletes(store.KindProjects))
	pendingTasks := len(cs.store.PendingDeletes(store.KindTasks))
	pendingArchive := len(cs.store.PendingDeletes(store.KindArchive))
	if n := pendingProjects + pendingTasks + pendingArchive; n > 0 {
		fmt.Printf("%d deletion(s) pending upload (%d projects, %d tasks, %d archived)\n",
			n, pendingProjects, pendingTasks, pendingArchive)
	} else {
		fmt.Println("No deletions pending")
	}

	return nil
}

func runSyncWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cs, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer cs.Close()

	if err := requireEntitled(cs); err != nil {
		return err
	}

	bridge := sync.NewBridge(cs.store, cs.engine, cs.adapter, cs.client, cs.cfg.SyncDebounce())
	bridge.Start(ctx)
	defer bridge.Stop()

	stream := realtime.NewStream(cs.cfg.ServerURL, func() string {
		if sess := cs.store.Session(); sess != nil {
			return sess.Token
		}
		return ""
	})
	go stream.Run(ctx)
	go bridge.Consume(stream.Events())

	// Initial pass so the watch starts from a converged state
	if err := cs.engine.FullSync(ctx); err != nil {
		fmt.Printf("Initial sync failed: %v\n", err)
	}

	fmt.Println("Watching for changes (Ctrl-C to stop)")
	<-ctx.Done()

	bridge.Flush(context.Background())

	fmt.Println("Stopped")
	return nil
}
