// Package store persists notes and per-file page annotations in SQLite.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"StudyBoard/internal/state"
)

const schema = `
CREATE TABLE IF NOT EXISTS notes (
    id          TEXT PRIMARY KEY,
    title       TEXT NOT NULL,
    type        TEXT NOT NULL,
    subject_id  TEXT,
    content     TEXT NOT NULL,
    preview     BLOB,
    updated_at  INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notes_updated ON notes(updated_at);

CREATE TABLE IF NOT EXISTS annotations (
    file_id     TEXT NOT NULL,
    page        INTEGER NOT NULL,
    content     TEXT NOT NULL,
    PRIMARY KEY (file_id, page)
);
`

// ErrNotFound is returned for ids with no stored row.
var ErrNotFound = errors.New("not found")

// Note is a stored drawing note.
type Note struct {
	ID        string
	Title     string
	Type      string
	SubjectID string
	Content   *state.Document
	// Preview is a JPEG thumbnail.
	Preview   []byte
	UpdatedAt time.Time
}

// Store is the SQLite-backed note store.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// Open opens or creates the database at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db, logger: logger.With("component", "store"), now: time.Now}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveNote inserts or replaces n. An empty ID gets a fresh one and
// UpdatedAt is set to now; both are written back to n.
func (s *Store) SaveNote(n *Note) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	content, err := marshalDoc(n.Content)
	if err != nil {
		return err
	}
	n.UpdatedAt = s.now()
	_, err = s.db.Exec(`
		INSERT INTO notes (id, title, type, subject_id, content, preview, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			type = excluded.type,
			subject_id = excluded.subject_id,
			content = excluded.content,
			preview = excluded.preview,
			updated_at = excluded.updated_at`,
		n.ID, n.Title, n.Type, n.SubjectID, content, n.Preview, n.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("save note: %w", err)
	}
	return nil
}

// SaveContent replaces the content of an existing note, and its preview
// when preview is non-nil.
func (s *Store) SaveContent(id string, doc *state.Document, preview []byte) error {
	content, err := marshalDoc(doc)
	if err != nil {
		return err
	}
	res, err := s.db.Exec(`
		UPDATE notes SET content = ?, preview = COALESCE(?, preview), updated_at = ?
		WHERE id = ?`,
		content, preview, s.now().UnixNano(), id,
	)
	if err != nil {
		return fmt.Errorf("save content: %w", err)
	}
	return expectRow(res, id)
}

// Note loads one note. Unreadable stored content loads as an empty
// document.
func (s *Store) Note(id string) (*Note, error) {
	row := s.db.QueryRow(`
		SELECT id, title, type, subject_id, content, preview, updated_at
		FROM notes WHERE id = ?`, id)
	n, err := s.scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("note %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}
	return n, nil
}

// Notes lists all notes, most recently updated first.
func (s *Store) Notes() ([]*Note, error) {
	rows, err := s.db.Query(`
		SELECT id, title, type, subject_id, content, preview, updated_at
		FROM notes ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var notes []*Note
	for rows.Next() {
		n, err := s.scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// DeleteNote removes a note.
func (s *Store) DeleteNote(id string) error {
	res, err := s.db.Exec(`DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return expectRow(res, id)
}

// SaveAnnotations replaces every page annotation of fileID.
func (s *Store) SaveAnnotations(fileID string, pages []*state.Document) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM annotations WHERE file_id = ?`, fileID); err != nil {
		return fmt.Errorf("clear annotations: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO annotations (file_id, page, content) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, d := range pages {
		content, err := marshalDoc(d)
		if err != nil {
			return err
		}
		if _, err := stmt.Exec(fileID, i, content); err != nil {
			return fmt.Errorf("insert page %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// Annotations loads the page annotations of fileID in page order. Gaps
// are filled with empty documents.
func (s *Store) Annotations(fileID string) ([]*state.Document, error) {
	rows, err := s.db.Query(`
		SELECT page, content FROM annotations
		WHERE file_id = ? ORDER BY page`, fileID)
	if err != nil {
		return nil, fmt.Errorf("get annotations: %w", err)
	}
	defer rows.Close()

	var pages []*state.Document
	for rows.Next() {
		var (
			page    int
			content string
		)
		if err := rows.Scan(&page, &content); err != nil {
			return nil, fmt.Errorf("scan annotation: %w", err)
		}
		for len(pages) < page {
			pages = append(pages, state.NewDocument())
		}
		pages = append(pages, state.ParseOrEmpty([]byte(content), s.logger))
	}
	return pages, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanNote(sc scanner) (*Note, error) {
	var (
		n         Note
		subjectID sql.NullString
		content   string
		updated   int64
	)
	if err := sc.Scan(&n.ID, &n.Title, &n.Type, &subjectID, &content, &n.Preview, &updated); err != nil {
		return nil, err
	}
	n.SubjectID = subjectID.String
	n.Content = state.ParseOrEmpty([]byte(content), s.logger)
	n.UpdatedAt = time.Unix(0, updated)
	return &n, nil
}

func marshalDoc(d *state.Document) (string, error) {
	if d == nil {
		d = state.NewDocument()
	}
	b, err := d.Marshal()
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	return string(b), nil
}

func expectRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("note %s: %w", id, ErrNotFound)
	}
	return nil
}
