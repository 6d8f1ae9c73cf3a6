package store

import (
	"testing"
	"time"

	"github.com/focusdeck/focusdeck/internal/model"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestStore() (*Store, time.Time) {
	s := New()
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	s.SetClock(fixedClock(now))
	return s, now
}

func TestAddTaskStampsTimestamps(t *testing.T) {
	s, now := newTestStore()
	p := s.AddProject("Work", "", "#fff", "")

	task := s.AddTask(p.ID, "Write report", model.PriorityHigh, "docs")
	if task.ID == "" {
		t.Fatal("task should get an id")
	}
	if !task.CreatedAt.Equal(now) {
		t.Errorf("createdAt = %v, want %v", task.CreatedAt, now)
	}
	if task.UpdatedAt == nil || !task.UpdatedAt.Equal(now) {
		t.Errorf("updatedAt = %v, want %v", task.UpdatedAt, now)
	}
	if task.Status != model.StatusTodo {
		t.Errorf("status = %q, want %q", task.Status, model.StatusTodo)
	}

	got, ok := s.Task(task.ID)
	if !ok {
		t.Fatal("task not found after add")
	}
	if got.Title != "Write report" {
		t.Errorf("title = %q", got.Title)
	}
}

func TestUpdateTaskStampsCompletedAt(t *testing.T) {
	s, now := newTestStore()
	p := s.AddProject("Work", "", "#fff", "")
	task := s.AddTask(p.ID, "Ship it", model.PriorityMedium, "")

	done := model.StatusDone
	s.UpdateTask(task.ID, TaskUpdate{Status: &done})

	got, _ := s.Task(task.ID)
	if got.CompletedAt == nil || !got.CompletedAt.Equal(now) {
		t.Errorf("completedAt = %v, want %v", got.CompletedAt, now)
	}
	prev, ok := s.PreviousTaskStatus(task.ID)
	if !ok || prev != model.StatusTodo {
		t.Errorf("previous status = %q ok=%v, want %q", prev, ok, model.StatusTodo)
	}

	// Completing an already-done task must not restamp
	later := now.Add(time.Hour)
	s.SetClock(fixedClock(later))
	s.UpdateTask(task.ID, TaskUpdate{Status: &done})
	got, _ = s.Task(task.ID)
	if !got.CompletedAt.Equal(now) {
		t.Errorf("completedAt restamped to %v", got.CompletedAt)
	}
}

func TestUpdateTaskExplicitCompletedAtWins(t *testing.T) {
	s, _ := newTestStore()
	p := s.AddProject("Work", "", "#fff", "")
	task := s.AddTask(p.ID, "Ship it", model.PriorityMedium, "")

	done := model.StatusDone
	explicit := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.UpdateTask(task.ID, TaskUpdate{Status: &done, CompletedAt: &explicit})

	got, _ := s.Task(task.ID)
	if got.CompletedAt == nil || !got.CompletedAt.Equal(explicit) {
		t.Errorf("completedAt = %v, want explicit %v", got.CompletedAt, explicit)
	}
}

func TestClearDueDate(t *testing.T) {
	s, now := newTestStore()
	p := s.AddProject("Work", "", "#fff", "")
	task := s.AddTask(p.ID, "Due thing", model.PriorityLow, "")

	due := now.Add(24 * time.Hour)
	s.UpdateTask(task.ID, TaskUpdate{DueDate: &due})
	got, _ := s.Task(task.ID)
	if got.DueDate == nil {
		t.Fatal("due date not set")
	}

	s.UpdateTask(task.ID, TaskUpdate{ClearDueDate: true})
	got, _ = s.Task(task.ID)
	if got.DueDate != nil {
		t.Errorf("due date = %v after clear", got.DueDate)
	}
}

func TestDeleteTaskTombstones(t *testing.T) {
	s, _ := newTestStore()
	p := s.AddProject("Work", "", "#fff", "")
	task := s.AddTask(p.ID, "Doomed", model.PriorityLow, "")

	s.DeleteTask(task.ID)

	if _, ok := s.Task(task.ID); ok {
		t.Error("task still present after delete")
	}
	if !s.IsTombstoned(KindTasks, task.ID) {
		t.Error("deleted task not tombstoned")
	}

	s.ClearTombstones(KindTasks, []string{task.ID})
	if s.IsTombstoned(KindTasks, task.ID) {
		t.Error("tombstone survived clear")
	}
}

func TestDeleteProjectCascades(t *testing.T) {
	s, _ := newTestStore()
	p := s.AddProject("Work", "", "#fff", "")
	other := s.AddProject("Home", "", "#000", "")

	t1 := s.AddTask(p.ID, "a", model.PriorityLow, "")
	t2 := s.AddTask(p.ID, "b", model.PriorityLow, "")
	keep := s.AddTask(other.ID, "c", model.PriorityLow, "")
	s.ArchiveTask(t2.ID)

	s.DeleteProject(p.ID)

	if s.HasProject(p.ID) {
		t.Error("project still present")
	}
	if !s.IsTombstoned(KindProjects, p.ID) {
		t.Error("project not tombstoned")
	}
	if !s.IsTombstoned(KindTasks, t1.ID) {
		t.Error("cascaded task not tombstoned")
	}
	if !s.IsTombstoned(KindArchive, t2.ID) {
		t.Error("cascaded archived task not tombstoned")
	}
	if _, ok := s.Task(keep.ID); !ok {
		t.Error("task of other project was removed")
	}
	if len(s.ArchivedTasks()) != 0 {
		t.Error("archived task of deleted project survived")
	}
}

func TestArchiveUnarchiveRoundTrip(t *testing.T) {
	s, _ := newTestStore()
	p := s.AddProject("Work", "", "#fff", "")
	task := s.AddTask(p.ID, "Old", model.PriorityLow, "")

	s.ArchiveTask(task.ID)

	if _, ok := s.Task(task.ID); ok {
		t.Error("task still active after archive")
	}
	archived := s.ArchivedTasks()
	if len(archived) != 1 || !archived[0].IsArchived {
		t.Fatalf("archive = %+v", archived)
	}
	// The active-table row must be deleted remotely
	if !s.IsTombstoned(KindTasks, task.ID) {
		t.Error("active id not tombstoned on archive")
	}

	s.UnarchiveTask(task.ID)

	got, ok := s.Task(task.ID)
	if !ok || got.IsArchived {
		t.Fatalf("task not restored: ok=%v task=%+v", ok, got)
	}
	if !s.IsTombstoned(KindArchive, task.ID) {
		t.Error("archive id not tombstoned on unarchive")
	}
}

func TestCheckAutoArchive(t *testing.T) {
	s, now := newTestStore()
	p := s.AddProject("Work", "", "#fff", "")

	overdue := s.AddTask(p.ID, "done and overdue", model.PriorityLow, "")
	past := now.Add(-48 * time.Hour)
	done := model.StatusDone
	s.UpdateTask(overdue.ID, TaskUpdate{Status: &done, DueDate: &past})

	pendingDue := s.AddTask(p.ID, "overdue but open", model.PriorityLow, "")
	s.UpdateTask(pendingDue.ID, TaskUpdate{DueDate: &past})

	future := now.Add(48 * time.Hour)
	doneFuture := s.AddTask(p.ID, "done, not due", model.PriorityLow, "")
	s.UpdateTask(doneFuture.ID, TaskUpdate{Status: &done, DueDate: &future})

	if n := s.CheckAutoArchive(); n != 1 {
		t.Fatalf("auto-archived %d tasks, want 1", n)
	}
	if _, ok := s.Task(overdue.ID); ok {
		t.Error("overdue done task still active")
	}
	if _, ok := s.Task(pendingDue.ID); !ok {
		t.Error("open task was archived")
	}
	if _, ok := s.Task(doneFuture.ID); !ok {
		t.Error("not-yet-due task was archived")
	}
}

func TestSubtasks(t *testing.T) {
	s, _ := newTestStore()
	p := s.AddProject("Work", "", "#fff", "")
	task := s.AddTask(p.ID, "Checklist", model.PriorityLow, "")

	s.AddSubtask(task.ID, "step one")
	got, _ := s.Task(task.ID)
	if len(got.Subtasks) != 1 || got.Subtasks[0].Title != "step one" {
		t.Fatalf("subtasks = %+v", got.Subtasks)
	}
	if got.Subtasks[0].Completed {
		t.Error("new subtask should start incomplete")
	}

	s.ToggleSubtask(task.ID, got.Subtasks[0].ID)
	got, _ = s.Task(task.ID)
	if !got.Subtasks[0].Completed {
		t.Error("toggle did not complete subtask")
	}
}

func TestRecordTimeSpentAccumulates(t *testing.T) {
	s, now := newTestStore()
	p := s.AddProject("Work", "", "#fff", "")
	task := s.AddTask(p.ID, "Focus", model.PriorityLow, "")

	s.RecordTimeSpent(task.ID, 25*time.Minute)
	s.RecordTimeSpent(task.ID, 5*time.Minute)

	got, _ := s.Task(task.ID)
	wantTotal := (30 * time.Minute).Milliseconds()
	if got.TotalTimeSpent != wantTotal {
		t.Errorf("total = %d, want %d", got.TotalTimeSpent, wantTotal)
	}
	day := now.Format("2006-01-02")
	if got.TimeSpentPerDay[day] != wantTotal {
		t.Errorf("day bucket = %d, want %d", got.TimeSpentPerDay[day], wantTotal)
	}

	// A session on the next day lands in its own bucket
	s.SetClock(fixedClock(now.Add(24 * time.Hour)))
	s.RecordTimeSpent(task.ID, 10*time.Minute)
	got, _ = s.Task(task.ID)
	nextDay := now.Add(24 * time.Hour).Format("2006-01-02")
	if got.TimeSpentPerDay[nextDay] != (10 * time.Minute).Milliseconds() {
		t.Errorf("next-day bucket = %d", got.TimeSpentPerDay[nextDay])
	}
	if got.TimeSpentPerDay[day] != wantTotal {
		t.Errorf("first-day bucket changed to %d", got.TimeSpentPerDay[day])
	}
}

func TestRemoveDoesNotTombstone(t *testing.T) {
	s, _ := newTestStore()
	p := s.AddProject("Work", "", "#fff", "")
	task := s.AddTask(p.ID, "remote-deleted", model.PriorityLow, "")

	s.RemoveTask(task.ID)

	if _, ok := s.Task(task.ID); ok {
		t.Error("task still present")
	}
	if s.IsTombstoned(KindTasks, task.ID) {
		t.Error("remote-origin removal must not tombstone")
	}
}

func TestSubscriberReceivesKinds(t *testing.T) {
	s, _ := newTestStore()

	var kinds []Kind
	s.Subscribe(func(k Kind) { kinds = append(kinds, k) })

	p := s.AddProject("Work", "", "#fff", "")
	task := s.AddTask(p.ID, "x", model.PriorityLow, "")
	s.ArchiveTask(task.ID)
	s.SetActiveView("board")

	want := []Kind{KindProjects, KindTasks, KindTasks, KindArchive, KindSettings}
	if len(kinds) != len(want) {
		t.Fatalf("got %d notifications %v, want %d", len(kinds), kinds, len(want))
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("notification %d = %v, want %v", i, kinds[i], want[i])
		}
	}
}

func TestReadsReturnClones(t *testing.T) {
	s, _ := newTestStore()
	p := s.AddProject("Work", "", "#fff", "")
	task := s.AddTask(p.ID, "original", model.PriorityLow, "")
	s.AddSubtask(task.ID, "sub")

	got, _ := s.Task(task.ID)
	got.Title = "mutated"
	got.Subtasks[0].Title = "mutated"

	fresh, _ := s.Task(task.ID)
	if fresh.Title != "original" {
		t.Error("caller mutation leaked into store")
	}
	if fresh.Subtasks[0].Title != "sub" {
		t.Error("subtask mutation leaked into store")
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	s, now := newTestStore()
	p := s.AddProject("Work", "desc", "#fff", "icon")
	task := s.AddTask(p.ID, "x", model.PriorityHigh, "tag")
	s.DeleteTask(task.ID)
	s.SetSelectedProject(p.ID)
	s.SetColumnSort("todo", "priority")
	s.SetSession(&model.Session{UserID: "u1", Token: "tok", ExpiresAt: now.Add(time.Hour)}, &model.User{ID: "u1", Username: "kim"})
	s.SetProfile(&model.Profile{UserID: "u1", IsPro: true})
	s.SetFocusMode(true, "f1")

	snap := s.Snapshot()

	restored := New()
	restored.Restore(snap)

	if !restored.HasProject(p.ID) {
		t.Error("project lost")
	}
	if restored.SelectedProjectID() != p.ID {
		t.Error("selection lost")
	}
	if !restored.IsTombstoned(KindTasks, task.ID) {
		t.Error("tombstone lost")
	}
	if !restored.IsPro() {
		t.Error("entitlement lost")
	}
	sess := restored.Session()
	if sess == nil || sess.Token != "tok" {
		t.Error("session lost")
	}
	snap2 := restored.Snapshot()
	if snap2.ActiveFocusTaskID != "f1" || !snap2.IsFocusModeActive {
		t.Error("settings lost")
	}
}
