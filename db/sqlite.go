package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when no artifact is stored under a name.
var ErrNotFound = errors.New("artifact not found")

// ArtifactStore keeps named artifact blobs in a SQLite database so a model
// and its feature columns can ship as a single file.
type ArtifactStore struct {
	db   *sql.DB
	path string
}

// Artifact is one stored blob.
type Artifact struct {
	Name      string    `json:"name"`
	Size      int       `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

const schema = `
    CREATE TABLE IF NOT EXISTS artifacts (
        name TEXT PRIMARY KEY,
        payload BLOB NOT NULL,
        updated_at DATETIME NOT NULL
    );`

// Open opens the store at path. A read-only store must already exist; a
// writable one is created with its schema when missing.
func Open(path string, readOnly bool) (*ArtifactStore, error) {
	if path == "" {
		return nil, errors.New("database path is required")
	}
	if readOnly {
		if _, err := os.Stat(path); err != nil {
			return nil, err
		}
	}

	dsn := path
	if readOnly {
		dsn = "file:" + path + "?mode=ro"
	}
	database, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	if err := database.Ping(); err != nil {
		database.Close()
		return nil, err
	}
	if !readOnly {
		if _, err := database.Exec(schema); err != nil {
			database.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}
	return &ArtifactStore{db: database, path: path}, nil
}

func (s *ArtifactStore) Path() string {
	return s.path
}

// Get returns the payload stored under name.
func (s *ArtifactStore) Get(ctx context.Context, name string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `
        SELECT payload
        FROM artifacts
        WHERE name = ?`, name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		// a read-only store without the table has no artifacts at all
		if isMissingTable(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, err
	}
	return payload, nil
}

// Put stores payload under name, replacing any previous version.
func (s *ArtifactStore) Put(ctx context.Context, name string, payload []byte) error {
	if name == "" {
		return errors.New("artifact name is required")
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO artifacts (name, payload, updated_at)
        VALUES (?, ?, ?)
        ON CONFLICT(name) DO UPDATE SET
            payload = excluded.payload,
            updated_at = excluded.updated_at
    `, name, payload, time.Now().UTC())
	return err
}

// List returns the stored artifacts ordered by name.
func (s *ArtifactStore) List(ctx context.Context) ([]Artifact, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT name, length(payload), updated_at
        FROM artifacts
        ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	artifacts := make([]Artifact, 0)
	for rows.Next() {
		var a Artifact
		if err := rows.Scan(&a.Name, &a.Size, &a.UpdatedAt); err != nil {
			return nil, err
		}
		artifacts = append(artifacts, a)
	}
	return artifacts, rows.Err()
}

func (s *ArtifactStore) Close() error {
	return s.db.Close()
}

func isMissingTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}
