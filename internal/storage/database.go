// Package storage exports built data sets to SQLite.
package storage

import (
	"database/sql"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when nothing has been exported yet.
var ErrNotFound = errors.New("not found")

// New opens a SQLite database at path with foreign keys enabled on every
// pooled connection.
func New(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate creates the export tables. It is idempotent.
func Migrate(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS builds (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			version TEXT NOT NULL,
			knowledge_count INTEGER NOT NULL,
			question_count INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS documents (
			build_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			web TEXT NOT NULL,
			pdf TEXT NOT NULL,
			pages INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (build_id, position),
			FOREIGN KEY (build_id) REFERENCES builds(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS knowledge (
			build_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			id TEXT NOT NULL,
			chapter TEXT NOT NULL,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			tags TEXT NOT NULL,
			PRIMARY KEY (build_id, position),
			FOREIGN KEY (build_id) REFERENCES builds(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS questions (
			build_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			id TEXT NOT NULL,
			source TEXT NOT NULL,
			qtype TEXT NOT NULL,
			stem TEXT NOT NULL,
			options TEXT NOT NULL,
			answer TEXT NOT NULL,
			explanation TEXT NOT NULL,
			tags TEXT NOT NULL,
			PRIMARY KEY (build_id, position),
			FOREIGN KEY (build_id) REFERENCES builds(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS question_tags (
			build_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			tag TEXT NOT NULL,
			PRIMARY KEY (build_id, position, tag),
			FOREIGN KEY (build_id, position) REFERENCES questions(build_id, position) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_question_tags_tag ON question_tags(tag);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
