// Package index stores the directives of parsed templates in SQLite so
// tooling can answer dependency queries without re-parsing.
package index

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Store is a SQLite-backed directive index.
type Store struct {
	db   *sql.DB
	path string
}

// Scan is one indexing run over a workspace.
type Scan struct {
	ID          string
	Root        string
	StartedAt   time.Time
	CompletedAt *time.Time
	Templates   int
	Errors      int
}

// Import is an indexed import directive.
type Import struct {
	Template    string         `json:"template"`        // importing template
	Target      string         `json:"target"`          // imported template path
	Alias       string         `json:"alias,omitempty"` // namespace of a direct import
	WithContext bool           `json:"with_context"`
	Names       []ImportedName `json:"names,omitempty"` // names of a from-import
	Line        int            `json:"line"`
	Column      int            `json:"column"`
}

// ImportedName is one name of a from-import.
type ImportedName struct {
	Name  string `json:"name"`
	Alias string `json:"alias,omitempty"`
}

// Include is an indexed include directive.
type Include struct {
	Template      string `json:"template"`           // including template
	Target        string `json:"target"`             // string literal of the path
	Variable      string `json:"variable,omitempty"` // variable part of a composed path
	IgnoreMissing bool   `json:"ignore_missing"`
	Line          int    `json:"line"`
	Column        int    `json:"column"`
}

// Dependent is a template that references another one.
type Dependent struct {
	Template string `json:"template"`
	Kind     string `json:"kind"` // "import" or "include"
	Line     int    `json:"line"`
	Column   int    `json:"column"`
}

// Reference is one import or include edge. Dynamic includes concatenate a
// variable, so Target holds only their literal part.
type Reference struct {
	Template string `json:"template"`
	Target   string `json:"target"`
	Kind     string `json:"kind"`
	Dynamic  bool   `json:"dynamic,omitempty"`
	Optional bool   `json:"optional,omitempty"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
}

// Open opens the index at path, creating the file if needed.
// Use MemoryPath for an in-memory database.
func Open(path string) (*Store, error) {
	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"
	if path == MemoryPath {
		dsn = "file::memory:?_pragma=foreign_keys(1)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open index database: %w", err)
	}
	if path == MemoryPath {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping index database: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// NewWithDB wraps an existing connection. The schema is not migrated.
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// Path returns the database path the store was opened with.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) checkOpen() error {
	if s == nil || s.db == nil {
		return fmt.Errorf("database not opened")
	}
	return nil
}

// generateID creates a new UUID.
func generateID() string {
	return uuid.New().String()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
