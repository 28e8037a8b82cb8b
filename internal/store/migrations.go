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

CREATE TABLE IF NOT EXISTS fetches (
	id            TEXT PRIMARY KEY,
	started_at    DATETIME NOT NULL,
	folder        TEXT NOT NULL,
	fetch_limit   INTEGER NOT NULL DEFAULT 0,
	status        TEXT NOT NULL,
	message_count INTEGER NOT NULL DEFAULT 0,
	error         TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_fetches_started_at ON fetches(started_at);
CREATE INDEX IF NOT EXISTS idx_fetches_status ON fetches(status);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
