// Package store holds the canonical in-memory task/project state.
//
// The Store is the single source of truth for every other engine
// component: the persistence adapter snapshots it, the sync engine
// reads and upserts through it, and the bridge observes it. All
// mutations are synchronous, atomic, and stamp UpdatedAt.
package store

import (
	"sort"
	"sync"
	"time"

	"github.com/focusdeck/focusdeck/internal/model"
	"github.com/focusdeck/focusdeck/internal/storage"
	"github.com/google/uuid"
)

// Kind identifies which top-level collection a mutation touched.
type Kind int

const (
	KindProjects Kind = iota
	KindTasks
	KindArchive
	KindAuth
	KindSettings
)

// String returns a human-readable kind name
func (k Kind) String() string {
	switch k {
	case KindProjects:
		return "projects"
	case KindTasks:
		return "tasks"
	case KindArchive:
		return "archive"
	case KindAuth:
		return "auth"
	case KindSettings:
		return "settings"
	default:
		return "unknown"
	}
}

// Subscriber receives the kind of collection that changed after every
// store mutation. Subscribers are called outside the store lock and may
// call back into the store.
type Subscriber func(Kind)

// Store is the in-memory entity store. Create one per engine instance
// with New; there is no package-level singleton.
type Store struct {
	mu sync.Mutex

	projects      []model.Project
	tasks         []model.Task
	archivedTasks []model.Task

	pendingDeleteProjectIDs      map[string]struct{}
	pendingDeleteTaskIDs         map[string]struct{}
	pendingDeleteArchivedTaskIDs map[string]struct{}

	selectedProjectID  string
	columnSorts        map[string]string
	previousTaskStatus map[string]string

	session *model.Session
	user    *model.User
	profile *model.Profile
	isPro   bool

	activeView        string
	isFocusModeActive bool
	activeFocusTaskID string

	subscribers []Subscriber

	// now is injectable for tests
	now func() time.Time
}

// New creates an empty store
func New() *Store {
	return &Store{
		pendingDeleteProjectIDs:      make(map[string]struct{}),
		pendingDeleteTaskIDs:         make(map[string]struct{}),
		pendingDeleteArchivedTaskIDs: make(map[string]struct{}),
		columnSorts:                  make(map[string]string),
		previousTaskStatus:           make(map[string]string),
		now:                          time.Now,
	}
}

// SetClock overrides the store's time source. Tests only.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Subscribe registers a change listener
func (s *Store) Subscribe(fn Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

func (s *Store) notify(kind Kind) {
	s.mu.Lock()
	subs := append([]Subscriber(nil), s.subscribers...)
	s.mu.Unlock()
	for _, fn := range subs {
		fn(kind)
	}
}

// ---- Projects ----

// AddProject creates a new project
func (s *Store) AddProject(name, description, color, icon string) model.Project {
	s.mu.Lock()
	now := s.now()
	p := model.Project{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Color:       color,
		Icon:        icon,
		CreatedAt:   now,
		UpdatedAt:   &now,
	}
	s.projects = append(s.projects, p)
	s.mu.Unlock()

	s.notify(KindProjects)
	return p
}

// ProjectUpdate is a partial project mutation. Nil fields are left
// untouched.
type ProjectUpdate struct {
	Name        *string
	Description *string
	Color       *string
	Icon        *string
}

// UpdateProject merges the update into the project. Unknown ids are
// no-ops.
func (s *Store) UpdateProject(id string, upd ProjectUpdate) {
	s.mu.Lock()
	changed := false
	for i := range s.projects {
		if s.projects[i].ID != id {
			continue
		}
		p := &s.projects[i]
		if upd.Name != nil {
			p.Name = *upd.Name
		}
		if upd.Description != nil {
			p.Description = *upd.Description
		}
		if upd.Color != nil {
			p.Color = *upd.Color
		}
		if upd.Icon != nil {
			p.Icon = *upd.Icon
		}
		now := s.now()
		p.UpdatedAt = &now
		changed = true
		break
	}
	s.mu.Unlock()

	if changed {
		s.notify(KindProjects)
	}
}

// DeleteProject tombstones the project id, then removes it and all of
// its tasks (active and archived, each through their own tombstone).
func (s *Store) DeleteProject(id string) {
	s.mu.Lock()
	// Tombstone before removal so a concurrent persistence flush never
	// sees the project gone without the pending delete recorded.
	s.pendingDeleteProjectIDs[id] = struct{}{}
	s.projects = removeProject(s.projects, id)

	for _, t := range s.tasks {
		if t.ProjectID == id {
			s.pendingDeleteTaskIDs[t.ID] = struct{}{}
		}
	}
	s.tasks = removeTasksOfProject(s.tasks, id)

	for _, t := range s.archivedTasks {
		if t.ProjectID == id {
			s.pendingDeleteArchivedTaskIDs[t.ID] = struct{}{}
		}
	}
	s.archivedTasks = removeTasksOfProject(s.archivedTasks, id)

	if s.selectedProjectID == id {
		s.selectedProjectID = ""
	}
	s.mu.Unlock()

	s.notify(KindProjects)
	s.notify(KindTasks)
	s.notify(KindArchive)
}

// UpsertProject inserts or replaces by id with no timestamp comparison.
// Conflict resolution happens in the sync engine before this is called.
func (s *Store) UpsertProject(p model.Project) {
	s.mu.Lock()
	replaced := false
	for i := range s.projects {
		if s.projects[i].ID == p.ID {
			s.projects[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		s.projects = append(s.projects, p)
	}
	s.mu.Unlock()

	s.notify(KindProjects)
}

// RemoveProject removes a project without tombstoning it. Used for
// deletes that originated remotely.
func (s *Store) RemoveProject(id string) {
	s.mu.Lock()
	before := len(s.projects)
	s.projects = removeProject(s.projects, id)
	removed := len(s.projects) != before
	if s.selectedProjectID == id {
		s.selectedProjectID = ""
	}
	s.mu.Unlock()

	if removed {
		s.notify(KindProjects)
	}
}

// SetSelectedProject records the currently selected project
func (s *Store) SetSelectedProject(id string) {
	s.mu.Lock()
	s.selectedProjectID = id
	s.mu.Unlock()
	s.notify(KindProjects)
}

// ---- Tasks ----

// AddTask creates a task in the given project with status "todo"
func (s *Store) AddTask(projectID, title, priority, tag string) model.Task {
	s.mu.Lock()
	t := model.NewTask(uuid.NewString(), projectID, title, priority, tag)
	now := s.now()
	t.CreatedAt = now
	t.UpdatedAt = &now
	s.tasks = append(s.tasks, t)
	s.mu.Unlock()

	s.notify(KindTasks)
	return t
}

// TaskUpdate is a partial task mutation. Nil fields are left untouched.
type TaskUpdate struct {
	Title        *string
	Description  *string
	Status       *string
	Priority     *string
	Tag          *string
	DueDate      *time.Time
	ClearDueDate bool
	Subtasks     *[]model.Subtask
	CompletedAt  *time.Time
}

// UpdateTask merges the update into the task. When the status enters
// "done" from a non-done state and the caller did not supply
// CompletedAt, it is stamped with the current time.
func (s *Store) UpdateTask(id string, upd TaskUpdate) {
	s.mu.Lock()
	changed := false
	for i := range s.tasks {
		if s.tasks[i].ID != id {
			continue
		}
		t := &s.tasks[i]
		if upd.Status != nil && *upd.Status != t.Status {
			s.previousTaskStatus[id] = t.Status
			if *upd.Status == model.StatusDone && t.Status != model.StatusDone && upd.CompletedAt == nil {
				done := s.now()
				t.CompletedAt = &done
			}
			t.Status = *upd.Status
		}
		if upd.CompletedAt != nil {
			t.CompletedAt = upd.CompletedAt
		}
		if upd.Title != nil {
			t.Title = *upd.Title
		}
		if upd.Description != nil {
			t.Description = *upd.Description
		}
		if upd.Priority != nil {
			t.Priority = *upd.Priority
		}
		if upd.Tag != nil {
			t.Tag = *upd.Tag
		}
		if upd.ClearDueDate {
			t.DueDate = nil
		} else if upd.DueDate != nil {
			t.DueDate = upd.DueDate
		}
		if upd.Subtasks != nil {
			t.Subtasks = append([]model.Subtask(nil), (*upd.Subtasks)...)
		}
		now := s.now()
		t.UpdatedAt = &now
		changed = true
		break
	}
	s.mu.Unlock()

	if changed {
		s.notify(KindTasks)
	}
}

// DeleteTask tombstones the task id, then removes it from the active
// collection. The ordering is deliberate: a concurrent flush must never
// observe "removed but not tombstoned".
func (s *Store) DeleteTask(id string) {
	s.mu.Lock()
	s.pendingDeleteTaskIDs[id] = struct{}{}
	s.tasks = removeTask(s.tasks, id)
	delete(s.previousTaskStatus, id)
	s.mu.Unlock()

	s.notify(KindTasks)
}

// ArchiveTask moves a task from the active collection to the archive.
// The active-table id is tombstoned so the remote row is deleted on the
// next sweep; the archived copy is a fresh row in the archive table.
func (s *Store) ArchiveTask(id string) {
	s.mu.Lock()
	idx := -1
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	archived := s.tasks[idx].Clone()
	archived.IsArchived = true
	now := s.now()
	archived.UpdatedAt = &now

	s.pendingDeleteTaskIDs[id] = struct{}{}
	s.tasks = removeTask(s.tasks, id)
	s.archivedTasks = append(s.archivedTasks, archived)
	s.mu.Unlock()

	s.notify(KindTasks)
	s.notify(KindArchive)
}

// UnarchiveTask is the mirror of ArchiveTask: the archive-table id is
// tombstoned and the task returns to the active collection.
func (s *Store) UnarchiveTask(id string) {
	s.mu.Lock()
	idx := -1
	for i := range s.archivedTasks {
		if s.archivedTasks[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	restored := s.archivedTasks[idx].Clone()
	restored.IsArchived = false
	now := s.now()
	restored.UpdatedAt = &now

	s.pendingDeleteArchivedTaskIDs[id] = struct{}{}
	s.archivedTasks = removeTask(s.archivedTasks, id)
	s.tasks = append(s.tasks, restored)
	s.mu.Unlock()

	s.notify(KindArchive)
	s.notify(KindTasks)
}

// DeleteArchivedTask permanently deletes a task from the archive
func (s *Store) DeleteArchivedTask(id string) {
	s.mu.Lock()
	s.pendingDeleteArchivedTaskIDs[id] = struct{}{}
	s.archivedTasks = removeTask(s.archivedTasks, id)
	s.mu.Unlock()

	s.notify(KindArchive)
}

// UpsertTask inserts or replaces by id with no timestamp comparison
func (s *Store) UpsertTask(t model.Task) {
	s.mu.Lock()
	replaced := false
	for i := range s.tasks {
		if s.tasks[i].ID == t.ID {
			s.tasks[i] = t
			replaced = true
			break
		}
	}
	if !replaced {
		s.tasks = append(s.tasks, t)
	}
	s.mu.Unlock()

	s.notify(KindTasks)
}

// UpsertArchivedTask inserts or replaces in the archive by id
func (s *Store) UpsertArchivedTask(t model.Task) {
	s.mu.Lock()
	replaced := false
	for i := range s.archivedTasks {
		if s.archivedTasks[i].ID == t.ID {
			s.archivedTasks[i] = t
			replaced = true
			break
		}
	}
	if !replaced {
		s.archivedTasks = append(s.archivedTasks, t)
	}
	s.mu.Unlock()

	s.notify(KindArchive)
}

// RemoveTask removes an active task without tombstoning it. Used for
// deletes that originated remotely.
func (s *Store) RemoveTask(id string) {
	s.mu.Lock()
	before := len(s.tasks)
	s.tasks = removeTask(s.tasks, id)
	removed := len(s.tasks) != before
	delete(s.previousTaskStatus, id)
	s.mu.Unlock()

	if removed {
		s.notify(KindTasks)
	}
}

// RemoveArchivedTask removes an archived task without tombstoning it
func (s *Store) RemoveArchivedTask(id string) {
	s.mu.Lock()
	before := len(s.archivedTasks)
	s.archivedTasks = removeTask(s.archivedTasks, id)
	removed := len(s.archivedTasks) != before
	s.mu.Unlock()

	if removed {
		s.notify(KindArchive)
	}
}

// CheckAutoArchive sweeps done tasks whose due date has passed, moving
// each through the same tombstone-then-move path as ArchiveTask.
func (s *Store) CheckAutoArchive() int {
	s.mu.Lock()
	now := s.now()
	var expired []string
	for _, t := range s.tasks {
		if t.Status == model.StatusDone && t.DueDate != nil && t.DueDate.Before(now) {
			expired = append(expired, t.ID)
		}
	}
	s.mu.Unlock()

	for _, id := range expired {
		s.ArchiveTask(id)
	}
	return len(expired)
}

// AddSubtask appends a subtask to the task's checklist
func (s *Store) AddSubtask(taskID, title string) {
	s.mu.Lock()
	changed := false
	for i := range s.tasks {
		if s.tasks[i].ID != taskID {
			continue
		}
		s.tasks[i].Subtasks = append(s.tasks[i].Subtasks, model.Subtask{
			ID:    uuid.NewString(),
			Title: title,
		})
		now := s.now()
		s.tasks[i].UpdatedAt = &now
		changed = true
		break
	}
	s.mu.Unlock()

	if changed {
		s.notify(KindTasks)
	}
}

// ToggleSubtask flips a subtask's completed flag
func (s *Store) ToggleSubtask(taskID, subtaskID string) {
	s.mu.Lock()
	changed := false
	for i := range s.tasks {
		if s.tasks[i].ID != taskID {
			continue
		}
		for j := range s.tasks[i].Subtasks {
			if s.tasks[i].Subtasks[j].ID == subtaskID {
				s.tasks[i].Subtasks[j].Completed = !s.tasks[i].Subtasks[j].Completed
				now := s.now()
				s.tasks[i].UpdatedAt = &now
				changed = true
				break
			}
		}
		break
	}
	s.mu.Unlock()

	if changed {
		s.notify(KindTasks)
	}
}

// RecordTimeSpent adds focus time to a task. The per-day bucket
// accumulates additively under the device-local calendar date.
func (s *Store) RecordTimeSpent(taskID string, d time.Duration) {
	s.mu.Lock()
	changed := false
	for i := range s.tasks {
		if s.tasks[i].ID != taskID {
			continue
		}
		t := &s.tasks[i]
		ms := d.Milliseconds()
		t.TotalTimeSpent += ms
		if t.TimeSpentPerDay == nil {
			t.TimeSpentPerDay = make(map[string]int64)
		}
		day := s.now().Format("2006-01-02")
		t.TimeSpentPerDay[day] += ms
		now := s.now()
		t.UpdatedAt = &now
		changed = true
		break
	}
	s.mu.Unlock()

	if changed {
		s.notify(KindTasks)
	}
}

// SetColumnSort records the sort preference for a status column
func (s *Store) SetColumnSort(column, sort string) {
	s.mu.Lock()
	s.columnSorts[column] = sort
	s.mu.Unlock()
	s.notify(KindTasks)
}

// ---- Auth & settings ----

// SetSession stores the authenticated session and user
func (s *Store) SetSession(session *model.Session, user *model.User) {
	s.mu.Lock()
	s.session = session
	s.user = user
	s.mu.Unlock()
	s.notify(KindAuth)
}

// SetProfile stores the account profile and its sync entitlement
func (s *Store) SetProfile(profile *model.Profile) {
	s.mu.Lock()
	s.profile = profile
	s.isPro = profile != nil && profile.IsPro
	s.mu.Unlock()
	s.notify(KindAuth)
}

// ClearAuth drops the session, user, and profile
func (s *Store) ClearAuth() {
	s.mu.Lock()
	s.session = nil
	s.user = nil
	s.profile = nil
	s.isPro = false
	s.mu.Unlock()
	s.notify(KindAuth)
}

// SetActiveView records the active view name
func (s *Store) SetActiveView(view string) {
	s.mu.Lock()
	s.activeView = view
	s.mu.Unlock()
	s.notify(KindSettings)
}

// SetFocusMode records focus mode state and the focused task
func (s *Store) SetFocusMode(active bool, taskID string) {
	s.mu.Lock()
	s.isFocusModeActive = active
	s.activeFocusTaskID = taskID
	s.mu.Unlock()
	s.notify(KindSettings)
}

// ---- Tombstones ----

// ClearTombstones removes ids from a kind's pending-delete set after
// the corresponding remote delete succeeded.
func (s *Store) ClearTombstones(kind Kind, ids []string) {
	s.mu.Lock()
	set := s.tombstones(kind)
	for _, id := range ids {
		delete(set, id)
	}
	s.mu.Unlock()

	s.notify(kind)
}

// IsTombstoned reports whether the id is pending remote deletion for
// the given kind. Upserts for tombstoned ids must be dropped.
func (s *Store) IsTombstoned(kind Kind, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tombstones(kind)[id]
	return ok
}

// PendingDeletes returns the tombstoned ids for a kind
func (s *Store) PendingDeletes(kind Kind) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.tombstones(kind)
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}

// tombstones must be called with the lock held
func (s *Store) tombstones(kind Kind) map[string]struct{} {
	switch kind {
	case KindProjects:
		return s.pendingDeleteProjectIDs
	case KindArchive:
		return s.pendingDeleteArchivedTaskIDs
	default:
		return s.pendingDeleteTaskIDs
	}
}

// ---- Reads ----

// Projects returns a copy of the project collection
func (s *Store) Projects() []model.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Project, len(s.projects))
	for i, p := range s.projects {
		out[i] = p.Clone()
	}
	return out
}

// Tasks returns a copy of the active task collection
func (s *Store) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneTasks(s.tasks)
}

// ArchivedTasks returns a copy of the archived task collection
func (s *Store) ArchivedTasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneTasks(s.archivedTasks)
}

// Task returns the active task with the given id
func (s *Store) Task(id string) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tasks {
		if t.ID == id {
			return t.Clone(), true
		}
	}
	return model.Task{}, false
}

// Project returns the project with the given id
func (s *Store) Project(id string) (model.Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.projects {
		if p.ID == id {
			return p.Clone(), true
		}
	}
	return model.Project{}, false
}

// HasProject reports whether a project with the id exists locally
func (s *Store) HasProject(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.projects {
		if p.ID == id {
			return true
		}
	}
	return false
}

// Session returns the current session, or nil when logged out
func (s *Store) Session() *model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	cp := *s.session
	return &cp
}

// Profile returns the current account profile, or nil
func (s *Store) Profile() *model.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return nil
	}
	cp := *s.profile
	return &cp
}

// IsPro reports whether the account is sync-entitled
func (s *Store) IsPro() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isPro
}

// SelectedProjectID returns the selected project id
func (s *Store) SelectedProjectID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedProjectID
}

// PreviousTaskStatus returns the status a task held before its last
// status change, if recorded.
func (s *Store) PreviousTaskStatus(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.previousTaskStatus[id]
	return st, ok
}

// ---- Snapshot / restore ----

// Snapshot captures the full logical state for persistence
func (s *Store) Snapshot() storage.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := storage.State{
		Projects:                     make([]model.Project, len(s.projects)),
		Tasks:                        cloneTasks(s.tasks),
		ArchivedTasks:                cloneTasks(s.archivedTasks),
		SelectedProjectID:            s.selectedProjectID,
		PendingDeleteProjectIDs:      setToSorted(s.pendingDeleteProjectIDs),
		PendingDeleteTaskIDs:         setToSorted(s.pendingDeleteTaskIDs),
		PendingDeleteArchivedTaskIDs: setToSorted(s.pendingDeleteArchivedTaskIDs),
		ColumnSorts:                  cloneStringMap(s.columnSorts),
		PreviousTaskStatus:           cloneStringMap(s.previousTaskStatus),
		Session:                      s.session,
		User:                         s.user,
		Profile:                      s.profile,
		IsPro:                        s.isPro,
		ActiveView:                   s.activeView,
		IsFocusModeActive:            s.isFocusModeActive,
		ActiveFocusTaskID:            s.activeFocusTaskID,
	}
	for i, p := range s.projects {
		st.Projects[i] = p.Clone()
	}
	return st
}

// Restore replaces the store content with a persisted state. Used once
// at startup after the persistence adapter loads; does not notify.
func (s *Store) Restore(st storage.State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.projects = append([]model.Project(nil), st.Projects...)
	s.tasks = cloneTasks(st.Tasks)
	s.archivedTasks = cloneTasks(st.ArchivedTasks)
	s.selectedProjectID = st.SelectedProjectID
	s.pendingDeleteProjectIDs = sliceToSet(st.PendingDeleteProjectIDs)
	s.pendingDeleteTaskIDs = sliceToSet(st.PendingDeleteTaskIDs)
	s.pendingDeleteArchivedTaskIDs = sliceToSet(st.PendingDeleteArchivedTaskIDs)
	s.columnSorts = cloneStringMap(st.ColumnSorts)
	if s.columnSorts == nil {
		s.columnSorts = make(map[string]string)
	}
	s.previousTaskStatus = cloneStringMap(st.PreviousTaskStatus)
	if s.previousTaskStatus == nil {
		s.previousTaskStatus = make(map[string]string)
	}
	s.session = st.Session
	s.user = st.User
	s.profile = st.Profile
	s.isPro = st.IsPro
	s.activeView = st.ActiveView
	s.isFocusModeActive = st.IsFocusModeActive
	s.activeFocusTaskID = st.ActiveFocusTaskID
}

// ---- helpers ----

func removeTask(tasks []model.Task, id string) []model.Task {
	out := tasks[:0]
	for _, t := range tasks {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}

func removeTasksOfProject(tasks []model.Task, projectID string) []model.Task {
	out := tasks[:0]
	for _, t := range tasks {
		if t.ProjectID != projectID {
			out = append(out, t)
		}
	}
	return out
}

func removeProject(projects []model.Project, id string) []model.Project {
	out := projects[:0]
	for _, p := range projects {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}

func cloneTasks(tasks []model.Task) []model.Task {
	out := make([]model.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func sliceToSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func setToSorted(set map[string]struct{}) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
