// Package sqlite provides a SQLite implementation of filestore.Repository
// backed by a single database file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sqlitedriver "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/stashbin/filestore/pkg/filestore"
)

const schema = `
CREATE TABLE IF NOT EXISTS files (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	file_name TEXT NOT NULL,
	object_key TEXT NOT NULL UNIQUE,
	content_type TEXT,
	size INTEGER,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// Repository implements filestore.Repository using a SQLite database file.
type Repository struct {
	db *sql.DB
}

// New opens (or creates) the database file at path.
func New(path string) (*Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	// SQLite allows a single writer; serializing through one connection
	// avoids SQLITE_BUSY under concurrent requests.
	db.SetMaxOpenConns(1)

	return &Repository{db: db}, nil
}

// Close closes the underlying database handle.
func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return mapError("init", err)
	}
	return nil
}

func (r *Repository) Insert(ctx context.Context, record *filestore.FileRecord) error {
	createdAt := time.Now().UTC()

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO files (file_name, object_key, content_type, size, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		record.FileName, record.ObjectKey, record.ContentType, record.Size,
		createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return mapError("insert", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return mapError("insert", err)
	}

	record.ID = id
	record.CreatedAt = createdAt
	return nil
}

func (r *Repository) Get(ctx context.Context, id int64) (*filestore.FileRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, file_name, object_key, content_type, size, created_at
		 FROM files WHERE id = ?`, id)

	record, err := scanRecord(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, filestore.ErrFileNotFound
		}
		return nil, mapError("get", err)
	}

	return record, nil
}

func (r *Repository) List(ctx context.Context) ([]*filestore.FileRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, file_name, object_key, content_type, size, created_at
		 FROM files ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, mapError("list", err)
	}
	defer rows.Close()

	var records []*filestore.FileRecord
	for rows.Next() {
		record, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, mapError("list", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list", err)
	}

	return records, nil
}

func (r *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE id = ?`, id)
	if err != nil {
		return false, mapError("delete", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, mapError("delete", err)
	}

	return affected > 0, nil
}

// scanRecord reads one row regardless of whether it came from QueryRow or Rows.
func scanRecord(scan func(dest ...any) error) (*filestore.FileRecord, error) {
	var (
		record      filestore.FileRecord
		contentType sql.NullString
		size        sql.NullInt64
		createdAt   string
	)

	if err := scan(&record.ID, &record.FileName, &record.ObjectKey, &contentType, &size, &createdAt); err != nil {
		return nil, err
	}

	record.ContentType = contentType.String
	record.Size = size.Int64

	// Rows inserted by this repository carry RFC 3339 timestamps; rows
	// created by the schema default use SQLite's own format.
	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		ts, err = time.Parse("2006-01-02 15:04:05", createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at %q: %w", createdAt, err)
		}
	}
	record.CreatedAt = ts

	return &record, nil
}

// mapError converts driver-level failures to the typed error set.
func mapError(op string, err error) error {
	var se *sqlitedriver.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return &filestore.RepositoryError{Op: op, Err: filestore.ErrDuplicateKey}
		}
		switch se.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED, sqlite3.SQLITE_IOERR, sqlite3.SQLITE_CANTOPEN:
			return &filestore.RepositoryError{Op: op, Err: fmt.Errorf("%w: %v", filestore.ErrStoreUnavailable, err)}
		}
	}
	return &filestore.RepositoryError{Op: op, Err: err}
}
