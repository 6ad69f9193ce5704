package store

// Schema defines the document store tables.
const Schema = `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	project_id TEXT NOT NULL,
	filename TEXT NOT NULL,
	content TEXT NOT NULL DEFAULT '',
	version INTEGER NOT NULL DEFAULT 1,
	metadata TEXT NOT NULL DEFAULT '{}',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS document_versions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	version INTEGER NOT NULL,
	content TEXT NOT NULL DEFAULT '',
	metadata TEXT NOT NULL DEFAULT '{}',
	created_by TEXT NOT NULL DEFAULT '',
	message TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	UNIQUE(document_id, version)
);

CREATE INDEX IF NOT EXISTS idx_document_versions_document ON document_versions(document_id);
`
