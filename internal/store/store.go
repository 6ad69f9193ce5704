// Package store implements the versioned document store for story files.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var (
	// ErrDocumentNotFound is returned when a document id does not exist.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrVersionNotFound is returned when a version number does not exist.
	ErrVersionNotFound = errors.New("version not found")
)

// Document is a versioned story file. Content mutation happens only through
// the store's Update operation, never in place.
type Document struct {
	ID        string
	ProjectID string
	Filename  string
	Content   string
	Version   int
	Metadata  map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DocumentVersion is a full content snapshot of a document at one version.
// Version rows are append-only.
type DocumentVersion struct {
	ID         int64
	DocumentID string
	Version    int
	Content    string
	Metadata   map[string]any
	CreatedBy  string
	Message    string
	CreatedAt  time.Time
}

// Store is the sqlite-backed document version store.
type Store struct {
	db *sql.DB
}

// New opens (creating if needed) the document store at dbPath.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open document store: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Create inserts a new document at version 1 together with its initial
// version snapshot.
func (s *Store) Create(projectID, filename, content string, metadata map[string]any, creatorID string) (*Document, error) {
	if metadata == nil {
		metadata = map[string]any{}
	}
	doc := &Document{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Filename:  filename,
		Content:   content,
		Version:   1,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	doc.UpdatedAt = doc.CreatedAt

	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO documents (id, project_id, filename, content, version, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.ProjectID, doc.Filename, doc.Content, doc.Version, string(metaJSON), doc.CreatedAt, doc.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}
	if _, err := tx.Exec(
		`INSERT INTO document_versions (document_id, version, content, metadata, created_by, message, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, 1, doc.Content, string(metaJSON), creatorID, "Initial creation", doc.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("insert initial version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Get returns a document by id.
func (s *Store) Get(documentID string) (*Document, error) {
	row := s.db.QueryRow(
		`SELECT id, project_id, filename, content, version, metadata, created_at, updated_at
		 FROM documents WHERE id = ?`, documentID)
	var doc Document
	var metaJSON string
	err := row.Scan(&doc.ID, &doc.ProjectID, &doc.Filename, &doc.Content, &doc.Version, &metaJSON, &doc.CreatedAt, &doc.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	if err := json.Unmarshal([]byte(metaJSON), &doc.Metadata); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}
	return &doc, nil
}

// List returns all documents for a project, oldest first.
func (s *Store) List(projectID string) ([]*Document, error) {
	rows, err := s.db.Query(
		`SELECT id, project_id, filename, content, version, metadata, created_at, updated_at
		 FROM documents WHERE project_id = ? ORDER BY created_at ASC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []*Document
	for rows.Next() {
		var doc Document
		var metaJSON string
		if err := rows.Scan(&doc.ID, &doc.ProjectID, &doc.Filename, &doc.Content, &doc.Version, &metaJSON, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(metaJSON), &doc.Metadata); err != nil {
			return nil, fmt.Errorf("parse metadata: %w", err)
		}
		docs = append(docs, &doc)
	}
	return docs, rows.Err()
}

// Update writes new content as the next version. Byte-identical content is a
// strict no-op: the history never contains two consecutive identical-content
// versions. metadataPatch is shallow-merged into the document metadata.
func (s *Store) Update(documentID, newContent, message, editorID string, metadataPatch map[string]any) (*Document, error) {
	doc, err := s.Get(documentID)
	if err != nil {
		return nil, err
	}
	if newContent == doc.Content {
		return doc, nil
	}

	for k, v := range metadataPatch {
		doc.Metadata[k] = v
	}
	doc.Content = newContent
	doc.Version++
	doc.UpdatedAt = time.Now().UTC()

	metaJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`UPDATE documents SET content = ?, version = ?, metadata = ?, updated_at = ? WHERE id = ?`,
		doc.Content, doc.Version, string(metaJSON), doc.UpdatedAt, doc.ID,
	); err != nil {
		return nil, fmt.Errorf("update document: %w", err)
	}
	if _, err := tx.Exec(
		`INSERT INTO document_versions (document_id, version, content, metadata, created_by, message, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Version, doc.Content, string(metaJSON), editorID, message, doc.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("insert version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return doc, nil
}

// GetVersions returns all version snapshots of a document in creation order.
func (s *Store) GetVersions(documentID string) ([]*DocumentVersion, error) {
	if _, err := s.Get(documentID); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(
		`SELECT id, document_id, version, content, metadata, created_by, message, created_at
		 FROM document_versions WHERE document_id = ? ORDER BY version ASC`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var versions []*DocumentVersion
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// GetVersion returns one version snapshot of a document.
func (s *Store) GetVersion(documentID string, version int) (*DocumentVersion, error) {
	row := s.db.QueryRow(
		`SELECT id, document_id, version, content, metadata, created_by, message, created_at
		 FROM document_versions WHERE document_id = ? AND version = ?`, documentID, version)
	v, err := scanVersion(row)
	if err == sql.ErrNoRows {
		return nil, ErrVersionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get version: %w", err)
	}
	return v, nil
}

// RevertTo restores the content of targetVersion through a normal Update, so
// a revert always creates a new version unless the no-op rule applies.
func (s *Store) RevertTo(documentID string, targetVersion int, editorID string) (*Document, error) {
	target, err := s.GetVersion(documentID, targetVersion)
	if err != nil {
		return nil, err
	}
	message := fmt.Sprintf("Reverted to version %d", targetVersion)
	return s.Update(documentID, target.Content, message, editorID, map[string]any{"revertedFrom": targetVersion})
}

// Diff compares two versions of a document.
func (s *Store) Diff(documentID string, fromVersion, toVersion int) (*DiffResult, error) {
	from, err := s.GetVersion(documentID, fromVersion)
	if err != nil {
		return nil, err
	}
	to, err := s.GetVersion(documentID, toVersion)
	if err != nil {
		return nil, err
	}
	return DiffLines(from.Content, to.Content), nil
}

// Delete removes a document and its entire version history. It reports
// whether the document existed.
func (s *Store) Delete(documentID string) (bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM document_versions WHERE document_id = ?`, documentID); err != nil {
		return false, fmt.Errorf("delete versions: %w", err)
	}
	res, err := tx.Exec(`DELETE FROM documents WHERE id = ?`, documentID)
	if err != nil {
		return false, fmt.Errorf("delete document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return affected > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVersion(r rowScanner) (*DocumentVersion, error) {
	var v DocumentVersion
	var metaJSON string
	if err := r.Scan(&v.ID, &v.DocumentID, &v.Version, &v.Content, &metaJSON, &v.CreatedBy, &v.Message, &v.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(metaJSON), &v.Metadata); err != nil {
		return nil, fmt.Errorf("parse version metadata: %w", err)
	}
	return &v, nil
}
