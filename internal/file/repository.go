package file

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abduss/filecrypt/internal/category"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const repoTimeout = 5 * time.Second

const schema = `
CREATE TABLE IF NOT EXISTS stored_files (
    id               UUID PRIMARY KEY,
    original_name    TEXT NOT NULL,
    real_extension   TEXT NOT NULL,
    stored_extension TEXT NOT NULL,
    category         TEXT NOT NULL,
    size_bytes       BIGINT NOT NULL,
    mime_type        TEXT NOT NULL,
    blob_key         TEXT NOT NULL,
    nonce            BYTEA NOT NULL,
    auth_tag         BYTEA NOT NULL,
    uploaded_at      TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS stored_files_category_uploaded_idx
    ON stored_files (category, uploaded_at, id);`

const selectColumns = `id, original_name, real_extension, stored_extension, category, size_bytes, mime_type, blob_key, nonce, auth_tag, uploaded_at`

// PostgresRepository stores file metadata in PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository builds a new file repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// EnsureSchema creates the stored_files table when missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Create inserts metadata for a new file.
func (r *PostgresRepository) Create(ctx context.Context, f StoredFile) (StoredFile, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
INSERT INTO stored_files (` + selectColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING ` + selectColumns + `;`

	row := r.pool.QueryRow(ctx, query,
		f.ID,
		f.OriginalName,
		f.RealExtension,
		f.StoredExtension,
		string(f.Category),
		f.SizeBytes,
		f.MimeType,
		f.BlobKey,
		f.Nonce,
		f.AuthTag,
		f.UploadedAt,
	)

	stored, err := scanFile(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return StoredFile{}, ErrDuplicateID
		}
		return StoredFile{}, fmt.Errorf("create file metadata: %w", err)
	}
	return stored, nil
}

// List returns files ordered by upload time, optionally filtered by category.
func (r *PostgresRepository) List(ctx context.Context, filter category.Category) ([]StoredFile, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
SELECT ` + selectColumns + `
FROM stored_files
WHERE ($1::text = '' OR category = $1::text)
ORDER BY uploaded_at ASC, id ASC;`

	rows, err := r.pool.Query(ctx, query, string(filter))
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	var files []StoredFile
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file metadata: %w", err)
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}
	return files, nil
}

// Get fetches metadata for a single file.
func (r *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (StoredFile, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `SELECT ` + selectColumns + ` FROM stored_files WHERE id = $1;`

	f, err := scanFile(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return StoredFile{}, ErrFileNotFound
		}
		return StoredFile{}, fmt.Errorf("get file metadata: %w", err)
	}
	return f, nil
}

// Delete removes metadata and returns the deleted record.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) (StoredFile, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `DELETE FROM stored_files WHERE id = $1 RETURNING ` + selectColumns + `;`

	f, err := scanFile(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return StoredFile{}, ErrFileNotFound
		}
		return StoredFile{}, fmt.Errorf("delete file metadata: %w", err)
	}
	return f, nil
}

// Ping checks database connectivity.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func scanFile(row pgx.Row) (StoredFile, error) {
	var (
		f   StoredFile
		cat string
	)
	err := row.Scan(
		&f.ID,
		&f.OriginalName,
		&f.RealExtension,
		&f.StoredExtension,
		&cat,
		&f.SizeBytes,
		&f.MimeType,
		&f.BlobKey,
		&f.Nonce,
		&f.AuthTag,
		&f.UploadedAt,
	)
	if err != nil {
		return StoredFile{}, err
	}
	f.Category = category.Category(cat)
	f.UploadedAt = f.UploadedAt.UTC()
	return f, nil
}
