package model

import "time"

// Project represents a collection of tasks
type Project struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Color       string     `json:"color"`
	Icon        string     `json:"icon,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// NewProject creates a project with defaults
func NewProject(id, name, color string) Project {
	now := time.Now()
	return Project{
		ID:        id,
		Name:      name,
		Color:     color,
		CreatedAt: now,
		UpdatedAt: &now,
	}
}

// LastModified returns the timestamp used for conflict resolution:
// UpdatedAt when set, otherwise CreatedAt.
func (p *Project) LastModified() time.Time {
	if p.UpdatedAt != nil {
		return *p.UpdatedAt
	}
	return p.CreatedAt
}

// Clone returns a copy of the project
func (p Project) Clone() Project {
	c := p
	if p.UpdatedAt != nil {
		u := *p.UpdatedAt
		c.UpdatedAt = &u
	}
	return c
}
