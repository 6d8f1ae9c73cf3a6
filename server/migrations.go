package server

// migrate runs database migrations
func (s *Server) migrate() error {
	migrations := []string{
		migrationUsers,
		migrationSessions,
		migrationProfiles,
		migrationProjects,
		migrationTasks,
		migrationArchivedTasks,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return err
		}
	}

	return nil
}

const migrationUsers = `
CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    username VARCHAR(255) UNIQUE NOT NULL,
    email VARCHAR(255) UNIQUE NOT NULL,
    password_hash VARCHAR(255) NOT NULL,
    created_at TIMESTAMPTZ DEFAULT NOW()
);
`

const migrationSessions = `
CREATE TABLE IF NOT EXISTS sessions (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id UUID NOT NULL REFERENCES users(id),
    token VARCHAR(64) UNIQUE NOT NULL,
    expires_at TIMESTAMPTZ NOT NULL,
    created_at TIMESTAMPTZ DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_sessions_token ON sessions(token);
`

const migrationProfiles = `
CREATE TABLE IF NOT EXISTS profiles (
    user_id UUID PRIMARY KEY REFERENCES users(id),
    display_name TEXT DEFAULT '',
    is_pro BOOLEAN DEFAULT FALSE,
    pro_since TIMESTAMPTZ
);
`

const migrationProjects = `
CREATE TABLE IF NOT EXISTS projects (
    user_id UUID NOT NULL REFERENCES users(id),
    id TEXT NOT NULL,
    name TEXT NOT NULL,
    description TEXT DEFAULT '',
    color TEXT DEFAULT '#4ECDC4',
    icon TEXT DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ,
    PRIMARY KEY (user_id, id)
);
`

const migrationTasks = `
CREATE TABLE IF NOT EXISTS tasks (
    user_id UUID NOT NULL REFERENCES users(id),
    id TEXT NOT NULL,
    project_id TEXT NOT NULL,
    title TEXT NOT NULL,
    description TEXT DEFAULT '',
    status TEXT NOT NULL DEFAULT 'todo',
    priority TEXT NOT NULL DEFAULT 'medium',
    tag TEXT DEFAULT '',
    due_date TIMESTAMPTZ,
    subtasks JSONB DEFAULT '[]',
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ,
    completed_at TIMESTAMPTZ,
    is_archived BOOLEAN DEFAULT FALSE,
    total_time_spent BIGINT DEFAULT 0,
    time_spent_per_day JSONB,
    PRIMARY KEY (user_id, id)
);

CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(user_id, project_id);
`

const migrationArchivedTasks = `
CREATE TABLE IF NOT EXISTS archived_tasks (
    user_id UUID NOT NULL REFERENCES users(id),
    id TEXT NOT NULL,
    project_id TEXT NOT NULL,
    title TEXT NOT NULL,
    description TEXT DEFAULT '',
    status TEXT NOT NULL DEFAULT 'done',
    priority TEXT NOT NULL DEFAULT 'medium',
    tag TEXT DEFAULT '',
    due_date TIMESTAMPTZ,
    subtasks JSONB DEFAULT '[]',
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ,
    completed_at TIMESTAMPTZ,
    is_archived BOOLEAN DEFAULT TRUE,
    total_time_spent BIGINT DEFAULT 0,
    time_spent_per_day JSONB,
    PRIMARY KEY (user_id, id)
);

CREATE INDEX IF NOT EXISTS idx_archived_tasks_project ON archived_tasks(user_id, project_id);
`
