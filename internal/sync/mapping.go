package sync

import "github.com/focusdeck/focusdeck/internal/model"

// TaskToRow maps a local task to its remote wire shape
func TaskToRow(t model.Task) TaskRow {
	return TaskRow{
		ID:              t.ID,
		ProjectID:       t.ProjectID,
		Title:           t.Title,
		Description:     t.Description,
		Status:          t.Status,
		Priority:        t.Priority,
		Tag:             t.Tag,
		DueDate:         t.DueDate,
		Subtasks:        t.Subtasks,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
		CompletedAt:     t.CompletedAt,
		IsArchived:      t.IsArchived,
		TotalTimeSpent:  t.TotalTimeSpent,
		TimeSpentPerDay: t.TimeSpentPerDay,
	}
}

// TaskFromRow maps a remote row to the local task shape
func TaskFromRow(r TaskRow) model.Task {
	subtasks := r.Subtasks
	if subtasks == nil {
		subtasks = []model.Subtask{}
	}
	return model.Task{
		ID:              r.ID,
		ProjectID:       r.ProjectID,
		Title:           r.Title,
		Description:     r.Description,
		Status:          r.Status,
		Priority:        r.Priority,
		Tag:             r.Tag,
		DueDate:         r.DueDate,
		Subtasks:        subtasks,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
		CompletedAt:     r.CompletedAt,
		IsArchived:      r.IsArchived,
		TotalTimeSpent:  r.TotalTimeSpent,
		TimeSpentPerDay: r.TimeSpentPerDay,
	}
}

// ProjectToRow maps a local project to its remote wire shape
func ProjectToRow(p model.Project) ProjectRow {
	return ProjectRow{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Color:       p.Color,
		Icon:        p.Icon,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ProjectFromRow maps a remote row to the local project shape
func ProjectFromRow(r ProjectRow) model.Project {
	return model.Project{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Color:       r.Color,
		Icon:        r.Icon,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// mergeRemoteTask folds a remote row into the local task. The remote
// row is authoritative for every field except per-day focus time: an
// empty remote TimeSpentPerDay never wipes locally-accumulated time,
// which would otherwise be lost across a migration or partial-sync gap.
func mergeRemoteTask(local model.Task, r TaskRow) model.Task {
	merged := TaskFromRow(r)
	if len(r.TimeSpentPerDay) == 0 && len(local.TimeSpentPerDay) > 0 {
		merged.TimeSpentPerDay = local.TimeSpentPerDay
		if merged.TotalTimeSpent == 0 {
			merged.TotalTimeSpent = local.TotalTimeSpent
		}
	}
	return merged
}
