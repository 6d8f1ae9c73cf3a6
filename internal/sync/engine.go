package sync

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	"github.com/focusdeck/focusdeck/internal/logger"
	"github.com/focusdeck/focusdeck/internal/model"
	"github.com/focusdeck/focusdeck/internal/store"
)

// Engine reconciles the entity store against the remote backend, one
// entity kind at a time. Overlapping passes for the same kind are
// serialized by a per-kind guard so two pull/push cycles never race on
// the same table.
type Engine struct {
	store  *store.Store
	remote Remote

	projectsMu gosync.Mutex
	tasksMu    gosync.Mutex
	archiveMu  gosync.Mutex
	deletesMu  gosync.Mutex
}

// NewEngine creates a sync engine over the given store and remote
func NewEngine(st *store.Store, remote Remote) *Engine {
	return &Engine{store: st, remote: remote}
}

// newerThan reports whether a is strictly newer than b at
// epoch-millisecond granularity. Server columns keep less precision
// than time.Now, so anything finer does not survive a round trip and
// must not break a tie.
func newerThan(a, b time.Time) bool {
	return a.UnixMilli() > b.UnixMilli()
}

// canSync reports whether sync is allowed: an unexpired session and a
// sync-entitled account. Every sync operation is a silent no-op
// otherwise.
func (e *Engine) canSync() bool {
	session := e.store.Session()
	if session == nil || session.IsExpired() {
		return false
	}
	return e.store.IsPro()
}

// FullSync runs the deletion sweep followed by all three pull/push
// passes. The sweep runs first so a delete-then-recreate race cannot
// resurrect a just-deleted row from a stale remote read.
func (e *Engine) FullSync(ctx context.Context) error {
	if !e.canSync() {
		return nil
	}

	if err := e.SyncDeletes(ctx); err != nil {
		logger.Error("Deletion sweep failed", logger.F("error", err))
	}
	if err := e.SyncProjects(ctx); err != nil {
		return err
	}
	if err := e.SyncTasks(ctx, ""); err != nil {
		return err
	}
	return e.SyncArchivedTasks(ctx)
}

// SyncDeletes pushes every tombstoned id to the remote backend as a
// bulk delete. Ids are cleared from their tombstone set only after the
// remote call succeeds; a failed call leaves the set untouched for the
// next sweep.
func (e *Engine) SyncDeletes(ctx context.Context) error {
	if !e.canSync() {
		return nil
	}
	e.deletesMu.Lock()
	defer e.deletesMu.Unlock()

	var firstErr error

	if ids := e.store.PendingDeletes(store.KindProjects); len(ids) > 0 {
		if err := e.remote.DeleteProjects(ctx, ids); err != nil {
			logger.Warn("Remote project delete failed", logger.F("count", len(ids)), logger.F("error", err))
			firstErr = err
		} else {
			e.store.ClearTombstones(store.KindProjects, ids)
		}
	}

	if ids := e.store.PendingDeletes(store.KindTasks); len(ids) > 0 {
		if err := e.remote.DeleteTasks(ctx, false, ids); err != nil {
			logger.Warn("Remote task delete failed", logger.F("count", len(ids)), logger.F("error", err))
			if firstErr == nil {
				firstErr = err
			}
		} else {
			e.store.ClearTombstones(store.KindTasks, ids)
		}
	}

	if ids := e.store.PendingDeletes(store.KindArchive); len(ids) > 0 {
		if err := e.remote.DeleteTasks(ctx, true, ids); err != nil {
			logger.Warn("Remote archived task delete failed", logger.F("count", len(ids)), logger.F("error", err))
			if firstErr == nil {
				firstErr = err
			}
		} else {
			e.store.ClearTombstones(store.KindArchive, ids)
		}
	}

	return firstErr
}

// SyncProjects pulls remote projects, merges the strictly-newer ones
// into the store, and uploads locally-newer projects.
func (e *Engine) SyncProjects(ctx context.Context) error {
	if !e.canSync() {
		return nil
	}
	e.projectsMu.Lock()
	defer e.projectsMu.Unlock()

	rows, err := e.remote.SelectProjects(ctx)
	if err != nil {
		return fmt.Errorf("project pull failed: %w", err)
	}

	local := e.store.Projects()
	remoteSeen := make(map[string]ProjectRow, len(rows))
	for _, row := range rows {
		remoteSeen[row.ID] = row
		e.ApplyRemoteProject(row)
	}

	// Push-upload: everything absent remotely or strictly newer locally.
	var upload []ProjectRow
	for _, p := range local {
		row, ok := remoteSeen[p.ID]
		if !ok || newerThan(p.LastModified(), row.LastModified()) {
			upload = append(upload, ProjectToRow(p))
		}
	}
	if len(upload) > 0 {
		if err := e.remote.UpsertProjects(ctx, upload); err != nil {
			return fmt.Errorf("project push failed: %w", err)
		}
		logger.Debug("Projects uploaded", logger.F("count", len(upload)))
	}

	return nil
}

// SyncTasks pulls and pushes active tasks. A non-empty projectID scopes
// the push to that project's tasks.
func (e *Engine) SyncTasks(ctx context.Context, projectID string) error {
	if !e.canSync() {
		return nil
	}
	e.tasksMu.Lock()
	defer e.tasksMu.Unlock()
	return e.syncTaskTable(ctx, false, projectID)
}

// SyncArchivedTasks pulls and pushes the archived task table
func (e *Engine) SyncArchivedTasks(ctx context.Context) error {
	if !e.canSync() {
		return nil
	}
	e.archiveMu.Lock()
	defer e.archiveMu.Unlock()
	return e.syncTaskTable(ctx, true, "")
}

func (e *Engine) syncTaskTable(ctx context.Context, archived bool, projectID string) error {
	rows, err := e.remote.SelectTasks(ctx, archived)
	if err != nil {
		return fmt.Errorf("task pull failed: %w", err)
	}

	remoteSeen := make(map[string]TaskRow, len(rows))
	for _, row := range rows {
		remoteSeen[row.ID] = row
		e.applyRemoteTaskRow(row, archived)
	}

	local := e.store.Tasks()
	if archived {
		local = e.store.ArchivedTasks()
	}

	var upload []TaskRow
	for _, t := range local {
		// Referential guard: a task whose project no longer exists
		// locally is excluded so the upload cannot create orphaned
		// remote rows.
		if !e.store.HasProject(t.ProjectID) {
			continue
		}
		if projectID != "" && t.ProjectID != projectID {
			continue
		}
		row, ok := remoteSeen[t.ID]
		if !ok || newerThan(t.LastModified(), row.LastModified()) {
			upload = append(upload, TaskToRow(t))
		}
	}
	if len(upload) > 0 {
		if err := e.remote.UpsertTasks(ctx, archived, upload); err != nil {
			return fmt.Errorf("task push failed: %w", err)
		}
		logger.Debug("Tasks uploaded", logger.F("archived", archived), logger.F("count", len(upload)))
	}

	return nil
}

// ApplyRemoteProject applies one remote project row through the
// tombstone-check-then-upsert path shared by pull-merge and the
// realtime bridge. A tombstoned id is dropped; an existing local
// project is only replaced when the remote row is strictly newer.
func (e *Engine) ApplyRemoteProject(row ProjectRow) {
	if e.store.IsTombstoned(store.KindProjects, row.ID) {
		return
	}
	if local, ok := e.store.Project(row.ID); ok {
		// Local wins on ties; only a strictly newer remote row replaces.
		if !newerThan(row.LastModified(), local.LastModified()) {
			return
		}
	}
	e.store.UpsertProject(ProjectFromRow(row))
}

// ApplyRemoteTask applies one remote active-task row; see
// ApplyRemoteProject for the shared semantics.
func (e *Engine) ApplyRemoteTask(row TaskRow) {
	e.applyRemoteTaskRow(row, false)
}

// ApplyRemoteArchivedTask applies one remote archived-task row
func (e *Engine) ApplyRemoteArchivedTask(row TaskRow) {
	e.applyRemoteTaskRow(row, true)
}

func (e *Engine) applyRemoteTaskRow(row TaskRow, archived bool) {
	kind := store.KindTasks
	if archived {
		kind = store.KindArchive
	}
	if e.store.IsTombstoned(kind, row.ID) {
		return
	}

	var existing bool
	var localTask model.Task
	if archived {
		for _, t := range e.store.ArchivedTasks() {
			if t.ID == row.ID {
				existing = true
				localTask = t
				break
			}
		}
	} else {
		if t, ok := e.store.Task(row.ID); ok {
			existing = true
			localTask = t
		}
	}

	if existing {
		if !newerThan(row.LastModified(), localTask.LastModified()) {
			return
		}
		merged := mergeRemoteTask(localTask, row)
		if archived {
			e.store.UpsertArchivedTask(merged)
		} else {
			e.store.UpsertTask(merged)
		}
		return
	}

	if archived {
		e.store.UpsertArchivedTask(TaskFromRow(row))
	} else {
		e.store.UpsertTask(TaskFromRow(row))
	}
}
