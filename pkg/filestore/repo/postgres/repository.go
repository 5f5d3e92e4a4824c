// Package postgres provides a PostgreSQL implementation of
// filestore.Repository using pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stashbin/filestore/pkg/filestore"
)

const schema = `
CREATE TABLE IF NOT EXISTS files (
	id BIGSERIAL PRIMARY KEY,
	file_name TEXT NOT NULL,
	object_key TEXT NOT NULL UNIQUE,
	content_type TEXT,
	size BIGINT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// DBTX is the subset of pgx operations the repository needs, satisfied by
// both a pool and a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Repository implements filestore.Repository using PostgreSQL.
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository.
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository from a connection pool.
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// Connect creates a pool for databaseURL, verifies connectivity, and
// returns a repository on top of it.
func Connect(ctx context.Context, databaseURL string) (*Repository, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: %v", filestore.ErrStoreUnavailable, err)
	}

	return NewWithPool(pool), nil
}

func (r *Repository) Init(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return mapError("init", err)
	}
	return nil
}

func (r *Repository) Insert(ctx context.Context, record *filestore.FileRecord) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO files (file_name, object_key, content_type, size)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		record.FileName, record.ObjectKey, record.ContentType, record.Size,
	).Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		return mapError("insert", err)
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, id int64) (*filestore.FileRecord, error) {
	var record filestore.FileRecord
	err := r.db.QueryRow(ctx,
		`SELECT id, file_name, object_key, COALESCE(content_type, ''), COALESCE(size, 0), created_at
		 FROM files WHERE id = $1`, id,
	).Scan(&record.ID, &record.FileName, &record.ObjectKey, &record.ContentType, &record.Size, &record.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, filestore.ErrFileNotFound
		}
		return nil, mapError("get", err)
	}
	return &record, nil
}

func (r *Repository) List(ctx context.Context) ([]*filestore.FileRecord, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, file_name, object_key, COALESCE(content_type, ''), COALESCE(size, 0), created_at
		 FROM files ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, mapError("list", err)
	}
	defer rows.Close()

	var records []*filestore.FileRecord
	for rows.Next() {
		var record filestore.FileRecord
		if err := rows.Scan(&record.ID, &record.FileName, &record.ObjectKey,
			&record.ContentType, &record.Size, &record.CreatedAt); err != nil {
			return nil, mapError("list", err)
		}
		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list", err)
	}

	return records, nil
}

func (r *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return false, mapError("delete", err)
	}
	return tag.RowsAffected() > 0, nil
}

// mapError converts pgx-level failures to the typed error set.
func mapError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return &filestore.RepositoryError{Op: op, Err: filestore.ErrDuplicateKey}
		case "57P01", "53300", "08006": // shutdown, too many connections, connection failure
			return &filestore.RepositoryError{Op: op, Err: fmt.Errorf("%w: %s", filestore.ErrStoreUnavailable, pgErr.Message)}
		}
		return &filestore.RepositoryError{Op: op, Err: err}
	}

	// Anything that is not a server-reported error is a transport failure.
	return &filestore.RepositoryError{Op: op, Err: fmt.Errorf("%w: %v", filestore.ErrStoreUnavailable, err)}
}
