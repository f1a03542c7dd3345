// Package archive keeps a SQLite copy of every exported ratings document.
package archive

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Entry is one archived export.
type Entry struct {
	ID         string
	SessionID  string
	Rater      string
	TotalRated int
	Document   []byte
	CreatedAt  time.Time
}

// Store provides SQLite-backed storage for exported documents.
type Store struct {
	db *sql.DB
}

// NewStore opens the SQLite database at dbPath and creates tables if they don't exist.
func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := createTables(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS exports (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		rater TEXT NOT NULL,
		total_rated INTEGER NOT NULL DEFAULT 0,
		document TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_exports_created_at ON exports(created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// Save archives one export document and returns the stored entry.
func (s *Store) Save(sessionID, rater string, totalRated int, document []byte) (*Entry, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.Exec(
		`INSERT INTO exports (id, session_id, rater, total_rated, document, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, sessionID, rater, totalRated, string(document), now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert export: %w", err)
	}

	return &Entry{
		ID:         id,
		SessionID:  sessionID,
		Rater:      rater,
		TotalRated: totalRated,
		Document:   document,
		CreatedAt:  now,
	}, nil
}

// Get retrieves an archived export by ID. Returns nil, nil when absent.
func (s *Store) Get(id string) (*Entry, error) {
	row := s.db.QueryRow(
		`SELECT id, session_id, rater, total_rated, document, created_at
		 FROM exports WHERE id = ?`,
		id,
	)

	var e Entry
	var doc string
	err := row.Scan(&e.ID, &e.SessionID, &e.Rater, &e.TotalRated, &doc, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan export: %w", err)
	}
	e.Document = []byte(doc)

	return &e, nil
}

// List returns the most recent exports, newest first, without documents.
func (s *Store) List(limit int) ([]Entry, error) {
	rows, err := s.db.Query(
		`SELECT id, session_id, rater, total_rated, created_at
		 FROM exports
		 ORDER BY created_at DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query exports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Rater, &e.TotalRated, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan export: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return entries, nil
}
