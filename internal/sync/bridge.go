package sync

import (
	"context"
	"encoding/json"
	gosync "sync"
	"time"

	"github.com/focusdeck/focusdeck/internal/logger"
	"github.com/focusdeck/focusdeck/internal/realtime"
	"github.com/focusdeck/focusdeck/internal/storage"
	"github.com/focusdeck/focusdeck/internal/store"
)

// Bridge observes store mutations and decides when the engine runs:
// it marks dirty kinds, debounces a quiet period so mutation bursts
// coalesce into one sync pass, schedules asynchronous persistence on
// every change, and folds inbound push events back into the store.
type Bridge struct {
	store   *store.Store
	engine  *Engine
	adapter *storage.Adapter
	remote  Remote

	debounce time.Duration

	mu    gosync.Mutex
	dirty map[store.Kind]bool
	timer *time.Timer

	saveCh chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	wg     gosync.WaitGroup
}

// NewBridge creates a bridge. debounce is the quiet period after the
// last mutation before a sync pass runs.
func NewBridge(st *store.Store, engine *Engine, adapter *storage.Adapter, remote Remote, debounce time.Duration) *Bridge {
	if debounce <= 0 {
		debounce = time.Second
	}
	return &Bridge{
		store:    st,
		engine:   engine,
		adapter:  adapter,
		remote:   remote,
		debounce: debounce,
		dirty:    make(map[store.Kind]bool),
		saveCh:   make(chan struct{}, 1),
	}
}

// Start subscribes to the store and launches the persister goroutine
func (b *Bridge) Start(ctx context.Context) {
	b.ctx, b.cancel = context.WithCancel(ctx)

	b.store.Subscribe(b.onStoreChange)

	b.wg.Add(1)
	go b.persistLoop()
}

// Stop cancels the debounce timer and waits for background work
func (b *Bridge) Stop() {
	b.mu.Lock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.mu.Unlock()

	if b.cancel != nil {
		b.cancel()
	}
	b.wg.Wait()
}

// Flush persists the current snapshot and runs a sync pass for any
// dirty kinds immediately, without waiting for the debounce window.
// Used on shutdown.
func (b *Bridge) Flush(ctx context.Context) {
	if _, err := b.adapter.Save(ctx, b.store.Snapshot()); err != nil {
		logger.Warn("Flush save failed", logger.F("error", err))
	}
	b.runDirty()
}

// onStoreChange handles one store mutation notification
func (b *Bridge) onStoreChange(kind store.Kind) {
	// Everything persists; only entity collections trigger sync.
	b.schedulePersist()

	switch kind {
	case store.KindProjects, store.KindTasks, store.KindArchive:
	default:
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.dirty[kind] = true

	// Restart the quiet-period timer; bursts coalesce into one pass.
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.debounce, b.runDirty)
}

// runDirty runs one engine pass covering the kinds dirtied since the
// previous pass, clearing their flags up front. A failed pass is only
// logged; tombstones and local state stay intact, so the next mutation
// burst retries.
func (b *Bridge) runDirty() {
	b.mu.Lock()
	kinds := make([]store.Kind, 0, len(b.dirty))
	for kind, set := range b.dirty {
		if set {
			kinds = append(kinds, kind)
		}
	}
	b.dirty = make(map[store.Kind]bool)
	b.mu.Unlock()

	if len(kinds) == 0 {
		return
	}

	ctx := b.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	// Deletion sweep always precedes the pull/push passes.
	if err := b.engine.SyncDeletes(ctx); err != nil {
		logger.Warn("Deletion sweep failed", logger.F("error", err))
	}

	for _, kind := range kinds {
		var err error
		switch kind {
		case store.KindProjects:
			err = b.engine.SyncProjects(ctx)
		case store.KindTasks:
			err = b.engine.SyncTasks(ctx, "")
		case store.KindArchive:
			err = b.engine.SyncArchivedTasks(ctx)
		}
		if err != nil {
			logger.Warn("Sync pass failed", logger.F("kind", kind.String()), logger.F("error", err))
		}
	}
}

// schedulePersist signals the persister; signals coalesce
func (b *Bridge) schedulePersist() {
	select {
	case b.saveCh <- struct{}{}:
	default:
	}
}

// persistLoop saves snapshots as mutations arrive
func (b *Bridge) persistLoop() {
	defer b.wg.Done()

	for {
		select {
		case <-b.ctx.Done():
			return
		case <-b.saveCh:
			if _, err := b.adapter.Save(b.ctx, b.store.Snapshot()); err != nil {
				logger.Warn("Background save failed", logger.F("error", err))
			}
		}
	}
}

// Consume folds push events from the realtime stream into the store
// until the channel closes.
func (b *Bridge) Consume(events <-chan realtime.Event) {
	for ev := range events {
		b.HandleEvent(ev)
	}
}

// HandleEvent applies one push event. Inserts and updates run through
// the same tombstone-check-then-upsert path as pull-merge; deletes use
// the plain local removal, which does not re-tombstone an id whose
// deletion already happened remotely.
func (b *Bridge) HandleEvent(ev realtime.Event) {
	switch ev.Table {
	case realtime.TableProjects:
		switch ev.Type {
		case realtime.TypeInsert, realtime.TypeUpdate:
			var row ProjectRow
			if err := json.Unmarshal(ev.Row, &row); err != nil {
				logger.Warn("Dropping malformed project event", logger.F("error", err))
				return
			}
			b.engine.ApplyRemoteProject(row)
		case realtime.TypeDelete:
			if id := ev.RowID(); id != "" {
				b.store.RemoveProject(id)
			}
		}

	case realtime.TableTasks, realtime.TableArchivedTasks:
		archived := ev.Table == realtime.TableArchivedTasks
		switch ev.Type {
		case realtime.TypeInsert, realtime.TypeUpdate:
			var row TaskRow
			if err := json.Unmarshal(ev.Row, &row); err != nil {
				logger.Warn("Dropping malformed task event", logger.F("error", err))
				return
			}
			if archived {
				b.engine.ApplyRemoteArchivedTask(row)
			} else {
				b.engine.ApplyRemoteTask(row)
			}
		case realtime.TypeDelete:
			id := ev.RowID()
			if id == "" {
				return
			}
			if archived {
				b.store.RemoveArchivedTask(id)
			} else {
				b.store.RemoveTask(id)
			}
		}

	case realtime.TableProfiles:
		b.refreshProfile()
	}
}

// refreshProfile refetches the account profile after a tier-change
// event. Transitioning into sync entitlement triggers a one-shot full
// sync so the device catches up immediately.
func (b *Bridge) refreshProfile() {
	ctx := b.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	wasEntitled := b.store.IsPro()

	profile, err := b.remote.FetchProfile(ctx)
	if err != nil {
		logger.Warn("Profile refetch failed", logger.F("error", err))
		return
	}
	b.store.SetProfile(profile)

	if !wasEntitled && profile != nil && profile.IsPro {
		logger.Info("Account upgraded, running full sync")
		go func() {
			if err := b.engine.FullSync(ctx); err != nil {
				logger.Warn("Post-upgrade sync failed", logger.F("error", err))
			}
		}()
	}
}
