// Package sync reconciles the local entity store against the remote
// backend: timestamp pull-merge, push-upload of locally-newer rows,
// and tombstone-driven deletion propagation.
package sync

import (
	"context"
	"time"

	"github.com/focusdeck/focusdeck/internal/model"
)

// ProjectRow is the remote wire shape of a project. Remote columns use
// snake_case naming; mapping to the local shape is total and two-way.
type ProjectRow struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Color       string     `json:"color"`
	Icon        string     `json:"icon,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// TaskRow is the remote wire shape of a task or archived task
type TaskRow struct {
	ID              string           `json:"id"`
	ProjectID       string           `json:"project_id"`
	Title           string           `json:"title"`
	Description     string           `json:"description,omitempty"`
	Status          string           `json:"status"`
	Priority        string           `json:"priority"`
	Tag             string           `json:"tag,omitempty"`
	DueDate         *time.Time       `json:"due_date,omitempty"`
	Subtasks        []model.Subtask  `json:"subtasks,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       *time.Time       `json:"updated_at,omitempty"`
	CompletedAt     *time.Time       `json:"completed_at,omitempty"`
	IsArchived      bool             `json:"is_archived"`
	TotalTimeSpent  int64            `json:"total_time_spent,omitempty"`
	TimeSpentPerDay map[string]int64 `json:"time_spent_per_day,omitempty"`
}

// LastModified returns the row's conflict-resolution timestamp
func (r *TaskRow) LastModified() time.Time {
	if r.UpdatedAt != nil {
		return *r.UpdatedAt
	}
	return r.CreatedAt
}

// LastModified returns the row's conflict-resolution timestamp
func (r *ProjectRow) LastModified() time.Time {
	if r.UpdatedAt != nil {
		return *r.UpdatedAt
	}
	return r.CreatedAt
}

// Remote is the backend contract the engine syncs against: one table
// per entity kind with bulk select, bulk upsert keyed by id, and bulk
// delete by id list. Active and archived tasks are separate tables,
// selected by the archived flag.
type Remote interface {
	SelectProjects(ctx context.Context) ([]ProjectRow, error)
	SelectTasks(ctx context.Context, archived bool) ([]TaskRow, error)

	UpsertProjects(ctx context.Context, rows []ProjectRow) error
	UpsertTasks(ctx context.Context, archived bool, rows []TaskRow) error

	DeleteProjects(ctx context.Context, ids []string) error
	DeleteTasks(ctx context.Context, archived bool, ids []string) error

	FetchProfile(ctx context.Context) (*model.Profile, error)
}
