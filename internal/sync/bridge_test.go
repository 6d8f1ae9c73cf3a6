package sync

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/focusdeck/focusdeck/internal/model"
	"github.com/focusdeck/focusdeck/internal/realtime"
	"github.com/focusdeck/focusdeck/internal/storage"
	"github.com/focusdeck/focusdeck/internal/store"
)

func newTestBridge(t *testing.T, debounce time.Duration) (*Bridge, *store.Store, *fakeRemote, *storage.MemKV) {
	t.Helper()
	s := entitledStore()
	remote := newFakeRemote()
	engine := NewEngine(s, remote)
	kv := storage.NewMemKV()
	adapter := storage.NewAdapter(kv)
	b := NewBridge(s, engine, adapter, remote, debounce)
	return b, s, remote, kv
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestDebounceCoalescesBurst(t *testing.T) {
	b, s, remote, _ := newTestBridge(t, 50*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	b.Start(ctx)
	defer b.Stop()

	before := remote.selects()

	p := s.AddProject("Work", "", "#fff", "")
	for i := 0; i < 5; i++ {
		s.AddTask(p.ID, "burst", model.PriorityLow, "")
	}

	// Nothing runs inside the quiet period
	if remote.selects() != before {
		t.Error("sync ran before the debounce elapsed")
	}

	if !waitFor(t, time.Second, func() bool { return remote.selects() > before }) {
		t.Fatal("debounced sync never ran")
	}

	// One pass covers both dirtied kinds: one project select, one task
	// select. A second burst-free wait must not add more.
	time.Sleep(150 * time.Millisecond)
	if got := remote.selects() - before; got != 2 {
		t.Errorf("selects = %d, want 2 (projects + tasks) for one coalesced pass", got)
	}
}

func TestMutationsPersistInBackground(t *testing.T) {
	b, s, _, kv := newTestBridge(t, time.Hour) // debounce never fires
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	b.Start(ctx)
	defer b.Stop()

	s.AddProject("Work", "", "#fff", "")

	ok := waitFor(t, time.Second, func() bool {
		_, found, _ := kv.Get(context.Background(), storage.KeyProjects)
		return found
	})
	if !ok {
		t.Fatal("mutation was not persisted")
	}
}

func TestHandleEventUpsert(t *testing.T) {
	b, s, _, _ := newTestBridge(t, time.Hour)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	row := TaskRow{
		ID: "t1", ProjectID: "p1", Title: "from another device",
		Status: model.StatusTodo, Priority: model.PriorityLow,
		CreatedAt: base, UpdatedAt: ts(base),
	}
	raw, _ := json.Marshal(row)

	b.HandleEvent(realtime.Event{Table: realtime.TableTasks, Type: realtime.TypeInsert, Row: raw})

	got, ok := s.Task("t1")
	if !ok {
		t.Fatal("pushed task not applied")
	}
	if got.Title != "from another device" {
		t.Errorf("title = %q", got.Title)
	}

	// A stale update for the same row is ignored
	row.Title = "stale"
	row.UpdatedAt = ts(base.Add(-time.Hour))
	raw, _ = json.Marshal(row)
	b.HandleEvent(realtime.Event{Table: realtime.TableTasks, Type: realtime.TypeUpdate, Row: raw})

	got, _ = s.Task("t1")
	if got.Title != "from another device" {
		t.Errorf("stale push applied: %q", got.Title)
	}
}

func TestHandleEventDeleteDoesNotTombstone(t *testing.T) {
	b, s, _, _ := newTestBridge(t, time.Hour)

	p := s.AddProject("Work", "", "#fff", "")
	task := s.AddTask(p.ID, "x", model.PriorityLow, "")

	raw, _ := json.Marshal(map[string]string{"id": task.ID})
	b.HandleEvent(realtime.Event{Table: realtime.TableTasks, Type: realtime.TypeDelete, Row: raw})

	if _, ok := s.Task(task.ID); ok {
		t.Error("pushed delete not applied")
	}
	// The row is already gone remotely; re-tombstoning would make the
	// next sweep delete a row that does not exist.
	if s.IsTombstoned(store.KindTasks, task.ID) {
		t.Error("pushed delete created a tombstone")
	}
}

func TestHandleEventTombstonedInsertDropped(t *testing.T) {
	b, s, _, _ := newTestBridge(t, time.Hour)

	p := s.AddProject("Work", "", "#fff", "")
	task := s.AddTask(p.ID, "doomed", model.PriorityLow, "")
	s.DeleteTask(task.ID)

	row := TaskToRow(task)
	raw, _ := json.Marshal(row)
	b.HandleEvent(realtime.Event{Table: realtime.TableTasks, Type: realtime.TypeInsert, Row: raw})

	if _, ok := s.Task(task.ID); ok {
		t.Error("push event resurrected a tombstoned task")
	}
}

func TestHandleEventMalformedRowIgnored(t *testing.T) {
	b, s, _, _ := newTestBridge(t, time.Hour)

	b.HandleEvent(realtime.Event{Table: realtime.TableTasks, Type: realtime.TypeInsert, Row: json.RawMessage("{broken")})

	if len(s.Tasks()) != 0 {
		t.Error("malformed event mutated the store")
	}
}

func TestProfileEventRefreshesEntitlement(t *testing.T) {
	s := store.New()
	s.SetSession(&model.Session{UserID: "u1", Token: "t", ExpiresAt: time.Now().Add(time.Hour)}, nil)
	s.SetProfile(&model.Profile{UserID: "u1", IsPro: false})

	remote := newFakeRemote()
	engine := NewEngine(s, remote)
	adapter := storage.NewAdapter(storage.NewMemKV())
	b := NewBridge(s, engine, adapter, remote, time.Hour)

	raw, _ := json.Marshal(map[string]interface{}{"user_id": "u1", "is_pro": true})
	b.HandleEvent(realtime.Event{Table: realtime.TableProfiles, Type: realtime.TypeUpdate, Row: raw})

	if !s.IsPro() {
		t.Error("entitlement not refreshed from profile event")
	}

	// The false-to-true transition kicks off a catch-up sync
	if !waitFor(t, time.Second, func() bool { return remote.selects() > 0 }) {
		t.Error("post-upgrade sync never ran")
	}
}

func TestFlushRunsDirtyImmediately(t *testing.T) {
	b, s, remote, kv := newTestBridge(t, time.Hour) // debounce never fires on its own
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	b.Start(ctx)
	defer b.Stop()

	p := s.AddProject("Work", "", "#fff", "")
	task := s.AddTask(p.ID, "x", model.PriorityLow, "")

	b.Flush(context.Background())

	if !remote.hasTask(task.ID) {
		t.Error("flush did not push the pending task")
	}
	if _, found, _ := kv.Get(context.Background(), storage.KeyTasks); !found {
		t.Error("flush did not persist")
	}
}
