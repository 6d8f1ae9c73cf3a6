package model

import "time"

// Task status values
const (
	StatusTodo       = "todo"
	StatusInProgress = "in-progress"
	StatusDone       = "done"
)

// Task priority values
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Subtask is a checklist entry inside a task
type Subtask struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Task represents a single todo item inside a project
type Task struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"projectId"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	Tag         string     `json:"tag,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Subtasks    []Subtask  `json:"subtasks"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	IsArchived  bool       `json:"isArchived,omitempty"`

	// Focus-time tracking. TotalTimeSpent is milliseconds across the
	// task's lifetime; TimeSpentPerDay buckets the same milliseconds by
	// device-local calendar day ("2006-01-02" keys).
	TotalTimeSpent  int64            `json:"totalTimeSpent,omitempty"`
	TimeSpentPerDay map[string]int64 `json:"timeSpentPerDay,omitempty"`
}

// NewTask creates a task with defaults
func NewTask(id, projectID, title, priority, tag string) Task {
	now := time.Now()
	return Task{
		ID:        id,
		ProjectID: projectID,
		Title:     title,
		Status:    StatusTodo,
		Priority:  priority,
		Tag:       tag,
		Subtasks:  []Subtask{},
		CreatedAt: now,
		UpdatedAt: &now,
	}
}

// LastModified returns the timestamp used for conflict resolution:
// UpdatedAt when set, otherwise CreatedAt.
func (t *Task) LastModified() time.Time {
	if t.UpdatedAt != nil {
		return *t.UpdatedAt
	}
	return t.CreatedAt
}

// IsOverdue returns true if the task is past its due date
func (t *Task) IsOverdue() bool {
	if t.DueDate == nil {
		return false
	}
	return t.DueDate.Before(time.Now())
}

// Clone returns a deep copy of the task
func (t Task) Clone() Task {
	c := t
	if t.UpdatedAt != nil {
		u := *t.UpdatedAt
		c.UpdatedAt = &u
	}
	if t.CompletedAt != nil {
		d := *t.CompletedAt
		c.CompletedAt = &d
	}
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	c.Subtasks = append([]Subtask(nil), t.Subtasks...)
	if t.TimeSpentPerDay != nil {
		c.TimeSpentPerDay = make(map[string]int64, len(t.TimeSpentPerDay))
		for k, v := range t.TimeSpentPerDay {
			c.TimeSpentPerDay[k] = v
		}
	}
	return c
}
