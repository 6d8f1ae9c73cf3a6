// Package storage maps the logical application state to an
// asynchronous key-value store, split into independently-persisted
// buckets so that a change to one slice of state never rewrites the
// others.
package storage

import (
	"encoding/json"
	"fmt"

	"github.com/focusdeck/focusdeck/internal/model"
)

// Bucket keys. Fixed constants: other devices and older versions read
// the same keys, so these must never change.
const (
	KeyProjects = "focusdeck-projects"
	KeyTasks    = "focusdeck-tasks"
	KeyArchive  = "focusdeck-archive"
	KeyAuth     = "focusdeck-auth"
	KeySettings = "focusdeck-settings"

	// KeyLegacy is the pre-split single-bucket layout, kept only for
	// migration.
	KeyLegacy = "focusdeck-storage"
)

// BucketKeys lists the five live bucket keys in merge order
var BucketKeys = []string{KeyProjects, KeyTasks, KeyArchive, KeyAuth, KeySettings}

// CurrentVersion tags the persisted envelope format
const CurrentVersion = 2

// State is the full logical application state. Each field is owned by
// exactly one bucket; the merge of all five slices reconstructs it.
type State struct {
	// projects bucket
	Projects                []model.Project `json:"projects"`
	SelectedProjectID       string          `json:"selectedProjectId,omitempty"`
	PendingDeleteProjectIDs []string        `json:"pendingDeleteProjectIds,omitempty"`

	// tasks bucket
	Tasks                []model.Task      `json:"tasks"`
	ColumnSorts          map[string]string `json:"columnSorts,omitempty"`
	PendingDeleteTaskIDs []string          `json:"pendingDeleteTaskIds,omitempty"`
	PreviousTaskStatus   map[string]string `json:"previousTaskStatus,omitempty"`

	// archive bucket
	ArchivedTasks                []model.Task `json:"archivedTasks"`
	PendingDeleteArchivedTaskIDs []string     `json:"pendingDeleteArchivedTaskIds,omitempty"`

	// auth bucket
	Session *model.Session `json:"session,omitempty"`
	User    *model.User    `json:"user,omitempty"`
	Profile *model.Profile `json:"profile,omitempty"`
	IsPro   bool           `json:"isPro,omitempty"`

	// settings bucket
	ActiveView        string `json:"activeView,omitempty"`
	IsFocusModeActive bool   `json:"isFocusModeActive,omitempty"`
	ActiveFocusTaskID string `json:"activeFocusTaskId,omitempty"`
}

// ProjectsSlice is the projects bucket record
type ProjectsSlice struct {
	Projects                []model.Project `json:"projects"`
	SelectedProjectID       string          `json:"selectedProjectId,omitempty"`
	PendingDeleteProjectIDs []string        `json:"pendingDeleteProjectIds,omitempty"`
}

// TasksSlice is the tasks bucket record
type TasksSlice struct {
	Tasks                []model.Task      `json:"tasks"`
	ColumnSorts          map[string]string `json:"columnSorts,omitempty"`
	PendingDeleteTaskIDs []string          `json:"pendingDeleteTaskIds,omitempty"`
	PreviousTaskStatus   map[string]string `json:"previousTaskStatus,omitempty"`
}

// ArchiveSlice is the archive bucket record
type ArchiveSlice struct {
	ArchivedTasks                []model.Task `json:"archivedTasks"`
	PendingDeleteArchivedTaskIDs []string     `json:"pendingDeleteArchivedTaskIds,omitempty"`
}

// AuthSlice is the auth bucket record
type AuthSlice struct {
	Session *model.Session `json:"session,omitempty"`
	User    *model.User    `json:"user,omitempty"`
	Profile *model.Profile `json:"profile,omitempty"`
	IsPro   bool           `json:"isPro,omitempty"`
}

// SettingsSlice is the settings bucket record
type SettingsSlice struct {
	ActiveView        string `json:"activeView,omitempty"`
	IsFocusModeActive bool   `json:"isFocusModeActive,omitempty"`
	ActiveFocusTaskID string `json:"activeFocusTaskId,omitempty"`
}

// envelope is the version-tagged record stored under every bucket key
type envelope struct {
	State   json.RawMessage `json:"state"`
	Version int             `json:"version"`
}

// ProjectSlice extracts the bucket's slice record from the state
func ProjectSlice(st State, key string) (interface{}, error) {
	switch key {
	case KeyProjects:
		return ProjectsSlice{
			Projects:                st.Projects,
			SelectedProjectID:       st.SelectedProjectID,
			PendingDeleteProjectIDs: st.PendingDeleteProjectIDs,
		}, nil
	case KeyTasks:
		return TasksSlice{
			Tasks:                st.Tasks,
			ColumnSorts:          st.ColumnSorts,
			PendingDeleteTaskIDs: st.PendingDeleteTaskIDs,
			PreviousTaskStatus:   st.PreviousTaskStatus,
		}, nil
	case KeyArchive:
		return ArchiveSlice{
			ArchivedTasks:                st.ArchivedTasks,
			PendingDeleteArchivedTaskIDs: st.PendingDeleteArchivedTaskIDs,
		}, nil
	case KeyAuth:
		return AuthSlice{
			Session: st.Session,
			User:    st.User,
			Profile: st.Profile,
			IsPro:   st.IsPro,
		}, nil
	case KeySettings:
		return SettingsSlice{
			ActiveView:        st.ActiveView,
			IsFocusModeActive: st.IsFocusModeActive,
			ActiveFocusTaskID: st.ActiveFocusTaskID,
		}, nil
	default:
		return nil, fmt.Errorf("unknown bucket key: %s", key)
	}
}

// MergeSlice merges a bucket's serialized slice record into the state.
// Field ownership is disjoint across buckets, so merge order never
// matters.
func MergeSlice(st *State, key string, raw []byte) error {
	switch key {
	case KeyProjects:
		var s ProjectsSlice
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		st.Projects = s.Projects
		st.SelectedProjectID = s.SelectedProjectID
		st.PendingDeleteProjectIDs = s.PendingDeleteProjectIDs
	case KeyTasks:
		var s TasksSlice
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		st.Tasks = s.Tasks
		st.ColumnSorts = s.ColumnSorts
		st.PendingDeleteTaskIDs = s.PendingDeleteTaskIDs
		st.PreviousTaskStatus = s.PreviousTaskStatus
	case KeyArchive:
		var s ArchiveSlice
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		st.ArchivedTasks = s.ArchivedTasks
		st.PendingDeleteArchivedTaskIDs = s.PendingDeleteArchivedTaskIDs
	case KeyAuth:
		var s AuthSlice
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		st.Session = s.Session
		st.User = s.User
		st.Profile = s.Profile
		st.IsPro = s.IsPro
	case KeySettings:
		var s SettingsSlice
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		st.ActiveView = s.ActiveView
		st.IsFocusModeActive = s.IsFocusModeActive
		st.ActiveFocusTaskID = s.ActiveFocusTaskID
	default:
		return fmt.Errorf("unknown bucket key: %s", key)
	}
	return nil
}

// sourceFields lists the top-level legacy state fields owned by each
// bucket, used by migration to skip buckets with no source data.
func sourceFields(key string) []string {
	switch key {
	case KeyProjects:
		return []string{"projects", "selectedProjectId", "pendingDeleteProjectIds"}
	case KeyTasks:
		return []string{"tasks", "columnSorts", "pendingDeleteTaskIds", "previousTaskStatus"}
	case KeyArchive:
		return []string{"archivedTasks", "pendingDeleteArchivedTaskIds"}
	case KeyAuth:
		return []string{"session", "user", "profile", "isPro"}
	case KeySettings:
		return []string{"activeView", "isFocusModeActive", "activeFocusTaskId"}
	default:
		return nil
	}
}
