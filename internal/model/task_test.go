package model

import (
	"testing"
	"time"
)

func TestLastModifiedFallsBackToCreatedAt(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	task := Task{ID: "t1", CreatedAt: created}

	if got := task.LastModified(); !got.Equal(created) {
		t.Errorf("LastModified = %v, want createdAt %v", got, created)
	}

	updated := created.Add(time.Hour)
	task.UpdatedAt = &updated
	if got := task.LastModified(); !got.Equal(updated) {
		t.Errorf("LastModified = %v, want updatedAt %v", got, updated)
	}
}

func TestIsOverdue(t *testing.T) {
	task := Task{ID: "t1"}
	if task.IsOverdue() {
		t.Error("no due date should never be overdue")
	}

	past := time.Now().Add(-time.Hour)
	task.DueDate = &past
	if !task.IsOverdue() {
		t.Error("past due date should be overdue")
	}

	future := time.Now().Add(time.Hour)
	task.DueDate = &future
	if task.IsOverdue() {
		t.Error("future due date should not be overdue")
	}
}

func TestTaskCloneIsDeep(t *testing.T) {
	updated := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	task := Task{
		ID:              "t1",
		UpdatedAt:       &updated,
		Subtasks:        []Subtask{{ID: "s1", Title: "a"}},
		TimeSpentPerDay: map[string]int64{"2026-03-01": 100},
	}

	c := task.Clone()
	c.Subtasks[0].Title = "mutated"
	c.TimeSpentPerDay["2026-03-01"] = 999
	*c.UpdatedAt = updated.Add(time.Hour)

	if task.Subtasks[0].Title != "a" {
		t.Error("subtask mutation leaked into original")
	}
	if task.TimeSpentPerDay["2026-03-01"] != 100 {
		t.Error("per-day map mutation leaked into original")
	}
	if !task.UpdatedAt.Equal(updated) {
		t.Error("timestamp mutation leaked into original")
	}
}
