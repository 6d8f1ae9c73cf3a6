package server

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lib/pq"
)

// projectRow is the wire shape of a project row
type projectRow struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Color       string     `json:"color"`
	Icon        string     `json:"icon,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// taskRow is the wire shape of a task or archived-task row. Subtasks
// and the per-day time map pass through as raw JSON.
type taskRow struct {
	ID              string          `json:"id"`
	ProjectID       string          `json:"project_id"`
	Title           string          `json:"title"`
	Description     string          `json:"description,omitempty"`
	Status          string          `json:"status"`
	Priority        string          `json:"priority"`
	Tag             string          `json:"tag,omitempty"`
	DueDate         *time.Time      `json:"due_date,omitempty"`
	Subtasks        json.RawMessage `json:"subtasks,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       *time.Time      `json:"updated_at,omitempty"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
	IsArchived      bool            `json:"is_archived"`
	TotalTimeSpent  int64           `json:"total_time_spent,omitempty"`
	TimeSpentPerDay json.RawMessage `json:"time_spent_per_day,omitempty"`
}

type upsertProjectsRequest struct {
	Rows []projectRow `json:"rows"`
}

type upsertTasksRequest struct {
	Rows []taskRow `json:"rows"`
}

type deleteRequest struct {
	IDs []string `json:"ids"`
}

// handleListProjects returns all of the user's projects
func (s *Server) handleListProjects(c echo.Context) error {
	userID := c.Get("user_id").(string)

	rows, err := s.db.QueryContext(c.Request().Context(), `
		SELECT id, name, description, color, icon, created_at, updated_at
		FROM projects WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
	defer rows.Close()

	out := []projectRow{}
	for rows.Next() {
		var p projectRow
		var updatedAt sql.NullTime
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Color, &p.Icon, &p.CreatedAt, &updatedAt); err != nil {
			c.Logger().Error("scan error:", err)
			continue
		}
		if updatedAt.Valid {
			t := updatedAt.Time
			p.UpdatedAt = &t
		}
		out = append(out, p)
	}

	return c.JSON(http.StatusOK, out)
}

// handleUpsertProjects bulk-upserts projects keyed by id
func (s *Server) handleUpsertProjects(c echo.Context) error {
	userID := c.Get("user_id").(string)

	var req upsertProjectsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	for _, p := range req.Rows {
		var inserted bool
		err := s.db.QueryRowContext(c.Request().Context(), `
			INSERT INTO projects (user_id, id, name, description, color, icon, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (user_id, id) DO UPDATE SET
				name = $3, description = $4, color = $5, icon = $6, updated_at = $8
			RETURNING (xmax = 0)`,
			userID, p.ID, p.Name, p.Description, p.Color, p.Icon, p.CreatedAt, p.UpdatedAt,
		).Scan(&inserted)
		if err != nil {
			c.Logger().Error("db error:", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
		}

		s.broadcastRow(userID, "projects", inserted, p)
	}

	return c.JSON(http.StatusOK, map[string]int{"upserted": len(req.Rows)})
}

// handleDeleteProjects removes projects by id list
func (s *Server) handleDeleteProjects(c echo.Context) error {
	userID := c.Get("user_id").(string)

	var req deleteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	if _, err := s.db.ExecContext(c.Request().Context(), `
		DELETE FROM projects WHERE user_id = $1 AND id = ANY($2)`,
		userID, pq.Array(req.IDs),
	); err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	for _, id := range req.IDs {
		s.broadcastDelete(userID, "projects", id)
	}

	return c.JSON(http.StatusOK, map[string]int{"deleted": len(req.IDs)})
}

// taskTable returns the table name for the archived flag. Only trusted
// constants, never request input.
func taskTable(archived bool) string {
	if archived {
		return "archived_tasks"
	}
	return "tasks"
}

// listTasksHandler returns the list handler for one task table
func (s *Server) listTasksHandler(archived bool) echo.HandlerFunc {
	table := taskTable(archived)
	return func(c echo.Context) error {
		userID := c.Get("user_id").(string)

		query := `
			SELECT id, project_id, title, description, status, priority, tag,
			       due_date, subtasks, created_at, updated_at, completed_at,
			       is_archived, total_time_spent, time_spent_per_day
			FROM ` + table + ` WHERE user_id = $1`
		args := []interface{}{userID}

		// Optional equality filter on project
		if pid := c.QueryParam("project_id"); pid != "" {
			query += ` AND project_id = $2`
			args = append(args, pid)
		}

		rows, err := s.db.QueryContext(c.Request().Context(), query, args...)
		if err != nil {
			c.Logger().Error("db error:", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
		}
		defer rows.Close()

		out := []taskRow{}
		for rows.Next() {
			var t taskRow
			var dueDate, updatedAt, completedAt sql.NullTime
			var subtasks, timePerDay []byte
			if err := rows.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.Status,
				&t.Priority, &t.Tag, &dueDate, &subtasks, &t.CreatedAt, &updatedAt,
				&completedAt, &t.IsArchived, &t.TotalTimeSpent, &timePerDay); err != nil {
				c.Logger().Error("scan error:", err)
				continue
			}
			if dueDate.Valid {
				d := dueDate.Time
				t.DueDate = &d
			}
			if updatedAt.Valid {
				u := updatedAt.Time
				t.UpdatedAt = &u
			}
			if completedAt.Valid {
				d := completedAt.Time
				t.CompletedAt = &d
			}
			t.Subtasks = subtasks
			t.TimeSpentPerDay = timePerDay
			out = append(out, t)
		}

		return c.JSON(http.StatusOK, out)
	}
}

// upsertTasksHandler returns the bulk upsert handler for one task table
func (s *Server) upsertTasksHandler(archived bool) echo.HandlerFunc {
	table := taskTable(archived)
	return func(c echo.Context) error {
		userID := c.Get("user_id").(string)

		var req upsertTasksRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
		}

		for _, t := range req.Rows {
			subtasks := t.Subtasks
			if subtasks == nil {
				subtasks = json.RawMessage(`[]`)
			}
			var timePerDay interface{}
			if t.TimeSpentPerDay != nil {
				timePerDay = string(t.TimeSpentPerDay)
			}

			var inserted bool
			err := s.db.QueryRowContext(c.Request().Context(), `
				INSERT INTO `+table+` (user_id, id, project_id, title, description, status,
					priority, tag, due_date, subtasks, created_at, updated_at, completed_at,
					is_archived, total_time_spent, time_spent_per_day)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
				ON CONFLICT (user_id, id) DO UPDATE SET
					project_id = $3, title = $4, description = $5, status = $6,
					priority = $7, tag = $8, due_date = $9, subtasks = $10,
					updated_at = $12, completed_at = $13, is_archived = $14,
					total_time_spent = $15, time_spent_per_day = $16
				RETURNING (xmax = 0)`,
				userID, t.ID, t.ProjectID, t.Title, t.Description, t.Status,
				t.Priority, t.Tag, t.DueDate, string(subtasks), t.CreatedAt, t.UpdatedAt,
				t.CompletedAt, t.IsArchived, t.TotalTimeSpent, timePerDay,
			).Scan(&inserted)
			if err != nil {
				c.Logger().Error("db error:", err)
				return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
			}

			s.broadcastRow(userID, table, inserted, t)
		}

		return c.JSON(http.StatusOK, map[string]int{"upserted": len(req.Rows)})
	}
}

// deleteTasksHandler returns the bulk delete handler for one task table
func (s *Server) deleteTasksHandler(archived bool) echo.HandlerFunc {
	table := taskTable(archived)
	return func(c echo.Context) error {
		userID := c.Get("user_id").(string)

		var req deleteRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
		}

		if _, err := s.db.ExecContext(c.Request().Context(), `
			DELETE FROM `+table+` WHERE user_id = $1 AND id = ANY($2)`,
			userID, pq.Array(req.IDs),
		); err != nil {
			c.Logger().Error("db error:", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
		}

		for _, id := range req.IDs {
			s.broadcastDelete(userID, table, id)
		}

		return c.JSON(http.StatusOK, map[string]int{"deleted": len(req.IDs)})
	}
}
