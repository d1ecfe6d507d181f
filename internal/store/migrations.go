package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS actors (
	id              TEXT PRIMARY KEY,
	full_name       TEXT NOT NULL,
	normalized_name TEXT NOT NULL UNIQUE,
	email           TEXT NOT NULL DEFAULT '',
	created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS bug_trackers (
	id       TEXT PRIMARY KEY,
	name     TEXT NOT NULL UNIQUE,
	product  TEXT NOT NULL DEFAULT '',
	base_url TEXT NOT NULL DEFAULT '',
	backend  TEXT NOT NULL DEFAULT '',
	username TEXT NOT NULL DEFAULT '',
	position INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS tasks (
	id                TEXT PRIMARY KEY,
	remote_tracker_id TEXT NOT NULL,
	tracker_id        TEXT NOT NULL REFERENCES bug_trackers(id),
	created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(remote_tracker_id, tracker_id)
);

CREATE TABLE IF NOT EXISTS sprints (
	id         TEXT PRIMARY KEY,
	start_date DATETIME NOT NULL,
	end_date   DATETIME NOT NULL,
	velocity   INTEGER NOT NULL DEFAULT 6
);

CREATE TABLE IF NOT EXISTS sprint_tasks (
	sprint_id TEXT NOT NULL REFERENCES sprints(id) ON DELETE CASCADE,
	task_id   TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
	PRIMARY KEY (sprint_id, task_id)
);

CREATE TABLE IF NOT EXISTS task_snapshots (
	id              TEXT PRIMARY KEY,
	task_id         TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
	date            DATETIME NOT NULL,
	title           TEXT NOT NULL DEFAULT '',
	status          TEXT NOT NULL DEFAULT '',
	assigned_to_id  TEXT NOT NULL DEFAULT '',
	submitted_by_id TEXT NOT NULL DEFAULT '',
	estimated_hours INTEGER NOT NULL DEFAULT 0,
	actual_hours    INTEGER NOT NULL DEFAULT 0,
	remaining_hours INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS task_snapshot_cache (
	date        DATETIME NOT NULL,
	task_id     TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
	snapshot_id TEXT NOT NULL REFERENCES task_snapshots(id) ON DELETE CASCADE,
	PRIMARY KEY (date, task_id)
);

CREATE TABLE IF NOT EXISTS events (
	id               TEXT PRIMARY KEY,
	source           TEXT NOT NULL,
	protagonist_id   TEXT NOT NULL DEFAULT '',
	deuteragonist_id TEXT NOT NULL DEFAULT '',
	message          TEXT NOT NULL,
	comment          TEXT NOT NULL DEFAULT '',
	task_id          TEXT NOT NULL DEFAULT '',
	date             DATETIME NOT NULL,
	created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_events_date ON events(date);
CREATE INDEX IF NOT EXISTS idx_events_task_id ON events(task_id);
CREATE INDEX IF NOT EXISTS idx_snapshots_task_date ON task_snapshots(task_id, date);
CREATE INDEX IF NOT EXISTS idx_snapshot_cache_date ON task_snapshot_cache(date);
CREATE INDEX IF NOT EXISTS idx_sprints_end_date ON sprints(end_date);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
